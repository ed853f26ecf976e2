// Copyright 2020 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package textsearch

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
)

func readTestdata(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("failed to read testdata %v: %v", name, err)
	}
	return data
}

func phraseFrom(tokens ...string) Phrase {
	texts := make([]Text, len(tokens))
	for i, tok := range tokens {
		texts[i] = NewTextFromString(tok)
	}
	return NewPhrase(texts...)
}

func collectAll(t *testing.T, f *Finder) []PhraseInstance {
	t.Helper()
	var out []PhraseInstance
	ctx := context.Background()
	for f.Scan(ctx) {
		out = append(out, f.Group()...)
	}
	if err := f.Err(); err != nil {
		t.Fatalf("finder error: %v", err)
	}
	return out
}

func TestFinderASCII(t *testing.T) {
	data := readTestdata(t, "sonnet1.txt")
	phrases := []Phrase{phraseFrom("famine", "where")}
	f := NewFinder(phrases, 40, 20, bytes.NewReader(data))
	got := collectAll(t, f)
	want := []PhraseInstance{{PhraseIndex: 0, FilePos: 279, CodepointShift: 0, BytesPerCharacter: 1}}
	if !equalInstances(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestFinderMultiToken(t *testing.T) {
	data := readTestdata(t, "sonnet2.txt")
	phrases := []Phrase{phraseFrom("within", "sunken", "deep")}
	f := NewFinder(phrases, 64, 32, bytes.NewReader(data))
	got := collectAll(t, f)
	want := []PhraseInstance{{PhraseIndex: 0, FilePos: 270, CodepointShift: 0, BytesPerCharacter: 1}}
	if !equalInstances(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestFinderShortInputFlush(t *testing.T) {
	data := []byte("Four letter word")
	phrases := []Phrase{phraseFrom("word")}
	f := NewFinder(phrases, 8, 4, bytes.NewReader(data))
	got := collectAll(t, f)
	want := []PhraseInstance{{PhraseIndex: 0, FilePos: 12, CodepointShift: 0, BytesPerCharacter: 1}}
	if !equalInstances(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestFinderMultiplePhrases(t *testing.T) {
	data := readTestdata(t, "sonnet2.txt")
	phrases := []Phrase{
		phraseFrom("within", "sunken", "deep"),
		phraseFrom("sum", "my", "count"),
	}
	f := NewFinder(phrases, 64, 32, bytes.NewReader(data))
	got := collectAll(t, f)
	want := []PhraseInstance{
		{PhraseIndex: 0, FilePos: 270, CodepointShift: 0, BytesPerCharacter: 1},
		{PhraseIndex: 1, FilePos: 456, CodepointShift: 0, BytesPerCharacter: 1},
	}
	if !equalInstances(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestFinder2ByteLittleEndian(t *testing.T) {
	data := readTestdata(t, "sonnet2.txt")
	le := make([]byte, 0, len(data)*2)
	for _, b := range data {
		le = append(le, b, 0)
	}
	phrases := []Phrase{phraseFrom("within", "sunken", "deep")}
	f := NewFinder(phrases, 128, 64, bytes.NewReader(le))
	got := collectAll(t, f)
	want := []PhraseInstance{{PhraseIndex: 0, FilePos: 540, CodepointShift: 0, BytesPerCharacter: 2}}
	if !equalInstances(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestFinder2ByteBigEndian(t *testing.T) {
	data := readTestdata(t, "sonnet2.txt")
	be := make([]byte, 0, len(data)*2)
	for _, b := range data {
		be = append(be, 0, b)
	}
	phrases := []Phrase{phraseFrom("within", "sunken", "deep")}
	f := NewFinder(phrases, 128, 64, bytes.NewReader(be))
	got := collectAll(t, f)
	// The big-endian stream is matched by the little-endian 2-byte primitive
	// one byte in, where each pair is (character, next character's zero
	// byte): the shift stays 0 and the byte offset is one past the
	// little-endian case's.
	want := []PhraseInstance{{PhraseIndex: 0, FilePos: 541, CodepointShift: 0, BytesPerCharacter: 2}}
	if !equalInstances(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestFinderCaesarShift(t *testing.T) {
	data := readTestdata(t, "sonnet2.txt")
	shifted := make([]byte, len(data))
	for i, b := range data {
		shifted[i] = b + 13
	}
	phrases := []Phrase{phraseFrom("within", "sunken", "deep")}
	f := NewFinder(phrases, 64, 32, bytes.NewReader(shifted))
	got := collectAll(t, f)
	want := []PhraseInstance{{PhraseIndex: 0, FilePos: 270, CodepointShift: 13, BytesPerCharacter: 1}}
	if !equalInstances(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestFinderContext(t *testing.T) {
	data := readTestdata(t, "sonnet1.txt")
	phrases := []Phrase{phraseFrom("famine", "where")}
	f := NewFinder(phrases, 40, 20, bytes.NewReader(data))
	if !f.Scan(context.Background()) {
		t.Fatalf("expected at least one hit")
	}
	hit := f.Group()[0]
	ctx := f.GetContext(hit.CodepointShift, hit.BytesPerCharacter)
	want := NewTextFromString(" fuel,\n  Making a famine where abundance")
	if !ctx.Equal(want) {
		t.Errorf("got context %q, want %q", ctx.String(), want.String())
	}
}

func TestFinderIdempotentAcrossReads(t *testing.T) {
	data := readTestdata(t, "sonnet2.txt")
	phrases := []Phrase{
		phraseFrom("within", "sunken", "deep"),
		phraseFrom("sum", "my", "count"),
	}
	first := collectAll(t, NewFinder(phrases, 64, 32, bytes.NewReader(data)))
	second := collectAll(t, NewFinder(phrases, 64, 32, bytes.NewReader(data)))
	if !equalInstances(first, second) {
		t.Errorf("reading the same stream twice diverged: %+v vs %+v", first, second)
	}
}

func TestFinderSkipNoDuplicateFilePos(t *testing.T) {
	data := readTestdata(t, "sonnet2.txt")
	phrases := []Phrase{phraseFrom("within", "sunken", "deep")}
	got := collectAll(t, NewFinder(phrases, 64, 32, bytes.NewReader(data)))
	seen := map[int]bool{}
	for _, inst := range got {
		if seen[inst.FilePos] {
			t.Errorf("duplicate file_pos %v for phrase %v", inst.FilePos, inst.PhraseIndex)
		}
		seen[inst.FilePos] = true
	}
}

func TestFinderFlushBoundaryDoesNotAffectEarlierHits(t *testing.T) {
	data := readTestdata(t, "sonnet2.txt")
	phrases := []Phrase{phraseFrom("within", "sunken", "deep")}
	const contextSize, windowSize = 64, 32

	original := collectAll(t, NewFinder(phrases, contextSize, windowSize, bytes.NewReader(data)))

	// Mirrors NewFinder's w_right computation for this context/window pair.
	half := windowSize / 2
	mid := contextSize / 2
	wLeft := mid - half
	if wLeft < 0 {
		wLeft = 0
	}
	wRight := wLeft + windowSize
	if wRight > contextSize {
		wRight = contextSize
	}
	trailing := contextSize - wRight
	zeroed := append([]byte(nil), data...)
	for i := len(zeroed) - trailing; i < len(zeroed); i++ {
		if i >= 0 {
			zeroed[i] = 0
		}
	}
	withZeroedTail := collectAll(t, NewFinder(phrases, contextSize, windowSize, bytes.NewReader(zeroed)))

	nonTrailingCutoff := len(data) - trailing
	for _, inst := range original {
		if inst.FilePos >= nonTrailingCutoff {
			continue
		}
		found := false
		for _, other := range withZeroedTail {
			if other == inst {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("hit %+v in the non-trailing region vanished after zeroing the trailing bytes", inst)
		}
	}
}

func TestFinderPanicsOnBadContextSize(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for context size not divisible by 4")
		}
	}()
	NewFinder([]Phrase{phraseFrom("x")}, 10, 4, bytes.NewReader(nil))
}

func TestFinderPanicsOnWindowLargerThanContext(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for window size > context size")
		}
	}()
	NewFinder([]Phrase{phraseFrom("x")}, 8, 16, bytes.NewReader(nil))
}

func equalInstances(a, b []PhraseInstance) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
