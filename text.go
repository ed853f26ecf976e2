// Copyright 2020 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package textsearch

import (
	"strings"
)

// Text is an ordered sequence of codepoints, the unit that phrase tokens and
// reconstructed context are expressed in.
type Text []uint32

// NewTextFromString builds a Text by treating each rune's scalar value as a
// codepoint, one codepoint per character.
func NewTextFromString(s string) Text {
	runes := []rune(s)
	t := make(Text, len(runes))
	for i, r := range runes {
		t[i] = uint32(r)
	}
	return t
}

// NewTextFromBytes decodes slice under the given (bytesPerChar,
// codepointShift) interpretation. bytesPerChar must be 1 or 2; any other
// value is a fatal misuse, matching the Rust original's "Invalid
// bytes_per_char" panic.
func NewTextFromBytes(slice []byte, codepointShift int32, bytesPerChar int) Text {
	switch bytesPerChar {
	case 1:
		return newTextFrom1Byte(slice, codepointShift)
	case 2:
		return newTextFrom2Byte(slice, codepointShift)
	default:
		panic("textsearch: bytes_per_char must be 1 or 2")
	}
}

func newTextFrom1Byte(slice []byte, shift int32) Text {
	t := make(Text, len(slice))
	for i, b := range slice {
		t[i] = uint32(int32(b) - shift)
	}
	return t
}

func newTextFrom2Byte(slice []byte, shift int32) Text {
	n := len(slice) / 2
	t := make(Text, n)
	for i := 0; i < n; i++ {
		lo, hi := slice[2*i], slice[2*i+1]
		v := uint32(lo) | uint32(hi)<<8
		t[i] = uint32(int32(v) - shift)
	}
	return t
}

// String renders printable ASCII (32..=126) verbatim, replaces whitespace
// control codes with a space, and replaces everything else with '?'.
func (t Text) String() string {
	var b strings.Builder
	b.Grow(len(t))
	for _, cp := range t {
		switch {
		case cp >= 32 && cp <= 126:
			b.WriteByte(byte(cp))
		case cp == '\n' || cp == '\r' || cp == '\t':
			b.WriteByte(' ')
		default:
			b.WriteByte('?')
		}
	}
	return b.String()
}

// Equal reports whether t and other have the same codepoint sequence.
func (t Text) Equal(other Text) bool {
	if len(t) != len(other) {
		return false
	}
	for i := range t {
		if t[i] != other[i] {
			return false
		}
	}
	return true
}

// Compare orders t and other lexicographically by codepoint.
func (t Text) Compare(other Text) int {
	for i := 0; i < len(t) && i < len(other); i++ {
		if t[i] < other[i] {
			return -1
		}
		if t[i] > other[i] {
			return 1
		}
	}
	switch {
	case len(t) < len(other):
		return -1
	case len(t) > len(other):
		return 1
	default:
		return 0
	}
}

// Phrase is an ordered, non-empty sequence of tokens.
type Phrase []Text

// NewPhrase builds a Phrase from one Text per token. It panics if tokens is
// empty or contains an empty Text, matching the model's invariant that a
// Phrase always has at least one non-empty token.
func NewPhrase(tokens ...Text) Phrase {
	if len(tokens) == 0 {
		panic("textsearch: phrase must have at least one token")
	}
	for _, tok := range tokens {
		if len(tok) == 0 {
			panic("textsearch: phrase token must not be empty")
		}
	}
	p := make(Phrase, len(tokens))
	copy(p, tokens)
	return p
}

// ParsePhrase splits s on ASCII whitespace and builds one Text per
// non-empty run, matching the CLI's "--phrase <token> <token>..." surface.
func ParsePhrase(s string) Phrase {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\v' || r == '\f'
	})
	tokens := make([]Text, len(fields))
	for i, f := range fields {
		tokens[i] = NewTextFromString(f)
	}
	return NewPhrase(tokens...)
}

// String renders the phrase as its space-joined token rendering, the
// inverse of ParsePhrase.
func (p Phrase) String() string {
	parts := make([]string, len(p))
	for i, tok := range p {
		parts[i] = tok.String()
	}
	return strings.Join(parts, " ")
}

// Equal reports whether p and other have the same ordered tokens.
func (p Phrase) Equal(other Phrase) bool {
	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if !p[i].Equal(other[i]) {
			return false
		}
	}
	return true
}
