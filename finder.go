// Copyright 2020 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package textsearch

import (
	"context"
	"io"
)

// PhraseInstance is one reported hit: the phrase it belongs to, the
// absolute byte position in the stream where its earliest matched token
// starts, and the codepoint shift / byte width the match was found under.
type PhraseInstance struct {
	PhraseIndex       int
	FilePos           int
	CodepointShift    int32
	BytesPerCharacter int
}

// PhraseInstanceGroup is a non-empty batch of instances detected in a
// single Finder step (same window contents).
type PhraseInstanceGroup []PhraseInstance

// Finder drives byte ingestion from a source, maintains the CircleBuffer
// and per-phrase skip counters, and yields PhraseInstanceGroup values one
// driver step at a time. It is a single-use, single-threaded iterator:
// call Scan repeatedly until it returns false, reading Group after each
// true return. Construction panics on misconfigured parameters, matching
// the reference Scanner's constructor style.
type Finder struct {
	phrases []Phrase
	src     io.Reader

	buf          *CircleBuffer
	windowSize   int
	windowRight  int // fixed right edge of the window, full-capacity regime
	skipCounters []int
	filePos      int
	flushCounter int
	eof          bool

	group   PhraseInstanceGroup
	scratch []PhraseInstance
	err     error
}

// NewFinder constructs a Finder over src searching for phrases, using a
// CircleBuffer of contextSize bytes and a search window of windowSize
// bytes. contextSize must be a positive multiple of 4 and windowSize must
// be in (0, contextSize]; violating either is a fatal misuse.
func NewFinder(phrases []Phrase, contextSize, windowSize int, src io.Reader) *Finder {
	if len(phrases) == 0 {
		panic("textsearch: at least one phrase is required")
	}
	if contextSize <= 0 || contextSize%4 != 0 {
		panic("textsearch: context size must be a positive multiple of 4")
	}
	if windowSize <= 0 || windowSize > contextSize {
		panic("textsearch: window size must be > 0 and <= context size")
	}

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

	return &Finder{
		phrases:      phrases,
		src:          src,
		buf:          NewCircleBuffer(contextSize),
		windowSize:   windowSize,
		windowRight:  wRight,
		skipCounters: make([]int, len(phrases)),
		flushCounter: contextSize - wRight,
		scratch:      make([]PhraseInstance, 0, len(phrases)),
	}
}

// Err returns the terminal error, if any. Source read failures never
// surface here — per spec they are treated silently as end-of-stream.
func (f *Finder) Err() error {
	return f.err
}

// Group returns the group produced by the most recent Scan call that
// returned true.
func (f *Finder) Group() PhraseInstanceGroup {
	return f.group
}

// GetContext decodes the Finder's current buffer contents as Text under
// the given (shift, width) pair. Typically called with the shift/width
// reported on a PhraseInstance from the most recent group.
func (f *Finder) GetContext(codepointShift int32, bytesPerCharacter int) Text {
	return NewTextFromBytes(f.buf.View(), codepointShift, bytesPerCharacter)
}

// Scan advances the Finder by one driver step (or, once the source is
// exhausted, one flush step), checking ctx once per call. It returns true
// iff a non-empty PhraseInstanceGroup was produced, available via Group.
// Scan returns false forever once the source is exhausted and flushing is
// complete: the iterator is single-use.
func (f *Finder) Scan(ctx context.Context) bool {
	for {
		select {
		case <-ctx.Done():
			f.err = ctx.Err()
			return false
		default:
		}

		var b byte
		if !f.eof {
			var one [1]byte
			n, err := f.src.Read(one[:])
			if n == 0 || err != nil {
				f.eof = true
				if f.flushCounter <= 0 {
					return false
				}
			} else {
				b = one[0]
			}
		}
		if f.eof {
			if f.flushCounter <= 0 {
				return false
			}
			f.flushCounter--
			b = 0
		}

		f.group = f.step(b)
		if len(f.group) > 0 {
			return true
		}
	}
}

// step pushes b into the buffer, searches every non-skipped phrase within
// the current window, and returns the group of instances found (possibly
// empty).
func (f *Finder) step(b byte) PhraseInstanceGroup {
	f.buf.Push(b)
	wLeft, wRight := f.windowBounds()
	window := f.buf.View()[wLeft:wRight]

	f.scratch = f.scratch[:0]
	for i, phrase := range f.phrases {
		if f.skipCounters[i] > 0 {
			f.skipCounters[i]--
			continue
		}
		if inst, ok := f.findPhrase(i, phrase, window, wLeft); ok {
			f.scratch = append(f.scratch, inst)
		}
	}
	f.filePos++

	if len(f.scratch) == 0 {
		return nil
	}
	out := make(PhraseInstanceGroup, len(f.scratch))
	copy(out, f.scratch)
	return out
}

// windowBounds returns the current effective [left, right) window offsets
// into the buffer, accounting for the buffer not yet being at capacity.
func (f *Finder) windowBounds() (int, int) {
	wRight := f.windowRight
	if bl := f.buf.Len(); wRight > bl {
		wRight = bl
	}
	wLeft := wRight - f.windowSize
	if wLeft < 0 {
		wLeft = 0
	}
	return wLeft, wRight
}

// findPhrase searches window for every token of phrase, requiring a single
// consistent (shift, width) across all of them, and reports the earliest
// within-window token offset on success.
func (f *Finder) findPhrase(phraseIndex int, phrase Phrase, window []byte, wLeft int) (PhraseInstance, bool) {
	earliest := -1
	var shift int32
	var width int
	haveConstraint := false

	for _, tok := range phrase {
		var fixedShift *int32
		var fixedWidth *int
		if haveConstraint {
			fixedShift = &shift
			fixedWidth = &width
		}
		ti, ok := searchToken(tok, window, fixedShift, fixedWidth)
		if !ok {
			return PhraseInstance{}, false
		}
		if haveConstraint && (ti.shift != shift || ti.width != width) {
			return PhraseInstance{}, false
		}
		if earliest == -1 || ti.index < earliest {
			earliest = ti.index
			shift = ti.shift
			width = ti.width
			haveConstraint = true
		}
	}

	bytesIngestedAfterPush := f.filePos + 1
	filePos := bytesIngestedAfterPush - f.buf.Len() + wLeft + earliest
	// Skip this phrase until the window's absolute start has moved past
	// filePos. Once the buffer is full the start advances one byte per step,
	// which makes the skip equal to earliest; while the buffer fills the
	// start stands still for some steps, so the step at which it reaches
	// filePos+1 is computed from the window geometry.
	fullLeft := f.windowRight - f.windowSize
	resume := filePos + 1 + f.buf.Cap() - fullLeft
	if filePos+1 <= fullLeft {
		resume = filePos + 1 + f.windowSize
	}
	f.skipCounters[phraseIndex] = resume - bytesIngestedAfterPush - 1
	return PhraseInstance{
		PhraseIndex:       phraseIndex,
		FilePos:           filePos,
		CodepointShift:    shift,
		BytesPerCharacter: width,
	}, true
}
