// Copyright 2020 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package textsearch

// tokenInstance is the result of locating a single token inside a search
// window: the byte offset it starts at, the codepoint shift that made it
// match, and the byte width the match was found under.
type tokenInstance struct {
	index int
	shift int32
	width int
}

// searchToken locates tok inside window, trying the 1-byte primitive before
// the 2-byte primitive, returning on the first hit. If fixedShift and
// fixedWidth are non-nil, only that (shift, width) pair is accepted.
func searchToken(tok Text, window []byte, fixedShift *int32, fixedWidth *int) (tokenInstance, bool) {
	if fixedWidth == nil || *fixedWidth == 1 {
		if ti, ok := search1Byte(tok, window, fixedShift); ok {
			return ti, true
		}
	}
	if fixedWidth == nil || *fixedWidth == 2 {
		if ti, ok := search2Byte(tok, window, fixedShift); ok {
			return ti, true
		}
	}
	return tokenInstance{}, false
}

// search1Byte finds the first offset in window where tok occurs under a
// uniform 1-byte-per-character shift. If fixedShift is non-nil, only that
// shift is tried.
func search1Byte(tok Text, window []byte, fixedShift *int32) (tokenInstance, bool) {
	if len(tok) == 0 || len(tok) > len(window) {
		return tokenInstance{}, false
	}
	last := len(window) - len(tok)
outer:
	for i := 0; i <= last; i++ {
		shift := int32(window[i]) - int32(tok[0])
		if fixedShift != nil && shift != *fixedShift {
			continue
		}
		for k := 0; k < len(tok); k++ {
			if uint32(int32(window[i+k])-shift) != tok[k] {
				continue outer
			}
		}
		return tokenInstance{index: i, shift: shift, width: 1}, true
	}
	return tokenInstance{}, false
}

// search2Byte finds the first offset in window where tok occurs under a
// uniform 2-byte-per-character (little-endian pair) shift. If fixedShift is
// non-nil, only that shift is tried. The reported index is a byte offset
// (2*pair index). Pairs are always assembled little-endian; a big-endian
// stream of ASCII-range characters matches when the window starts one byte
// into a character, so that each pair reads (character, next zero byte),
// with no second decoder and no change to the shift.
func search2Byte(tok Text, window []byte, fixedShift *int32) (tokenInstance, bool) {
	pairs := len(window) / 2
	if len(tok) == 0 || len(tok) > pairs {
		return tokenInstance{}, false
	}
	pair := func(i int) int32 {
		return int32(window[2*i]) | int32(window[2*i+1])<<8
	}
	last := pairs - len(tok)
outer:
	for i := 0; i <= last; i++ {
		shift := pair(i) - int32(tok[0])
		if fixedShift != nil && shift != *fixedShift {
			continue
		}
		for k := 0; k < len(tok); k++ {
			if uint32(pair(i+k)-shift) != tok[k] {
				continue outer
			}
		}
		return tokenInstance{index: 2 * i, shift: shift, width: 2}, true
	}
	return tokenInstance{}, false
}
