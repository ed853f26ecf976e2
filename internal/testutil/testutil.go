// Copyright 2021 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package testutil provides reproducible random byte generators used by the
// engine's property-based tests (idempotent-by-window, round-trip, and
// similar invariants that want large, varied inputs rather than hand-picked
// fixtures).
package testutil

import (
	"fmt"
	"math/rand"
	"time"
)

// Seed for the pseudorandom generator used by GenPredictableRandomData.
const fixedRandSeed = 0x1234

var randSource rand.Source

func init() {
	randSeed := time.Now().UnixNano()
	fmt.Printf("rand seed for GenReproducibleRandomData: %v\n", randSeed)
	randSource = rand.NewSource(randSeed)
}

// GenPredictableRandomData generates random data starting from a fixed,
// known seed: two calls with the same size always return the same bytes.
func GenPredictableRandomData(size int) []byte {
	gen := rand.New(rand.NewSource(fixedRandSeed))
	out := make([]byte, size)
	for i := range out {
		out[i] = byte(gen.Intn(256))
	}
	return out
}

// GenReproducibleRandomData uses the random seed printed by this package's
// init function, so a failing run can be reproduced by pinning that seed.
func GenReproducibleRandomData(size int) []byte {
	gen := rand.New(randSource)
	out := make([]byte, size)
	for i := range out {
		out[i] = byte(gen.Intn(256))
	}
	return out
}

// EmbedAt copies needle into a copy of carrier starting at offset, for tests
// that need a known phrase occurrence inside otherwise-random bytes.
func EmbedAt(carrier []byte, offset int, needle []byte) []byte {
	out := append([]byte(nil), carrier...)
	copy(out[offset:], needle)
	return out
}
