// Copyright 2020 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package textsearch implements a streaming phrase-finding engine for
// binary byte streams. It locates multi-token phrases under a uniform
// additive codepoint shift (a Caesar-style offset) and a fixed-width
// (1 or 2 byte) character encoding of either endianness, and reconstructs
// the surrounding byte context for each hit.
package textsearch
