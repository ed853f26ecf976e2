// Copyright 2020 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package csvreport renders scan hits as CSV rows, one per PhraseInstance.
package csvreport

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/cosnicolaou/textsearch"
)

var header = []string{"file", "phrase", "file_pos", "codepoint_diff", "bytes_per_character", "context"}

// Writer renders scan hits as CSV rows, writing the header on the first
// call to Write.
type Writer struct {
	w           *csv.Writer
	wroteHeader bool
}

// NewWriter returns a Writer over w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: csv.NewWriter(w)}
}

// Write renders a single hit, deriving its row directly from a
// PhraseInstance plus the file it came from and the phrase and context text
// that instance refers to.
func (cw *Writer) Write(file string, phrase textsearch.Phrase, inst textsearch.PhraseInstance, context textsearch.Text) error {
	if !cw.wroteHeader {
		if err := cw.w.Write(header); err != nil {
			return fmt.Errorf("csvreport: write header: %w", err)
		}
		cw.wroteHeader = true
	}
	row := []string{
		file,
		phrase.String(),
		fmt.Sprintf("%d", inst.FilePos),
		fmt.Sprintf("%d", inst.CodepointShift),
		fmt.Sprintf("%d", inst.BytesPerCharacter),
		context.String(),
	}
	if err := cw.w.Write(row); err != nil {
		return fmt.Errorf("csvreport: write row: %w", err)
	}
	return nil
}

// Flush flushes any buffered rows and returns the first error encountered.
func (cw *Writer) Flush() error {
	cw.w.Flush()
	return cw.w.Error()
}
