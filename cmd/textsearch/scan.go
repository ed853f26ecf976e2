// Copyright 2020 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"cloudeng.io/cmdutil"
	"cloudeng.io/errors"
	"github.com/schollz/progressbar/v2"
	"golang.org/x/crypto/ssh/terminal"

	"github.com/cosnicolaou/textsearch"
	"github.com/cosnicolaou/textsearch/internal/csvreport"
	"github.com/cosnicolaou/textsearch/internal/scanjob"
	"github.com/cosnicolaou/textsearch/internal/source"
)

func isRemote(name string) bool {
	return strings.HasPrefix(name, "http://") ||
		strings.HasPrefix(name, "https://") ||
		strings.HasPrefix(name, "s3://")
}

func hasExtension(name string, extensions []string) bool {
	if len(extensions) == 0 {
		return true
	}
	ext := strings.TrimPrefix(filepath.Ext(name), ".")
	if len(ext) == 0 {
		return false
	}
	for _, want := range extensions {
		if ext == strings.TrimPrefix(want, ".") {
			return true
		}
	}
	return false
}

// expandInputs resolves the --file arguments into the concrete list of
// inputs to scan, walking local directories recursively and applying the
// extension filter. It also reports the total size of the local inputs for
// the progress bar; remote inputs contribute an unknown (zero) size.
func expandInputs(inputs, extensions []string, errs *errors.M) ([]string, int64) {
	var names []string
	var totalSize int64
	for _, input := range inputs {
		if isRemote(input) {
			if hasExtension(input, extensions) {
				names = append(names, input)
			}
			continue
		}
		info, err := os.Stat(input)
		if err != nil {
			errs.Append(err)
			continue
		}
		if !info.IsDir() {
			if hasExtension(input, extensions) {
				names = append(names, input)
				totalSize += info.Size()
			}
			continue
		}
		err = filepath.WalkDir(input, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || !hasExtension(path, extensions) {
				return nil
			}
			fi, err := d.Info()
			if err != nil {
				return err
			}
			names = append(names, path)
			totalSize += fi.Size()
			return nil
		})
		errs.Append(err)
	}
	return names, totalSize
}

func progressBar(ctx context.Context, wr io.Writer, ch chan scanjob.Progress, size int64) {
	bar := progressbar.NewOptions64(size,
		progressbar.OptionSetBytes64(size),
		progressbar.OptionSetWriter(wr),
		progressbar.OptionSetPredictTime(true))
	bar.RenderBlank()
	for {
		select {
		case p, ok := <-ch:
			if !ok {
				fmt.Fprintf(wr, "\n")
				return
			}
			bar.Add(p.Size)
		case <-ctx.Done():
			return
		}
	}
}

func parsePhraseFlags(raw []string) ([]textsearch.Phrase, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("at least one --phrase is required")
	}
	phrases := make([]textsearch.Phrase, 0, len(raw))
	for _, p := range raw {
		if len(strings.Fields(p)) == 0 {
			return nil, fmt.Errorf("phrase %q has no tokens", p)
		}
		phrases = append(phrases, textsearch.ParsePhrase(p))
	}
	return phrases, nil
}

func scan(ctx context.Context, values interface{}, args []string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	cl := values.(*scanFlags)
	cmdutil.HandleSignals(cancel, os.Interrupt)

	phrases, err := parsePhraseFlags(cl.Phrases)
	if err != nil {
		return err
	}
	if len(cl.Files) == 0 {
		return fmt.Errorf("at least one --file is required")
	}

	errs := &errors.M{}
	names, totalSize := expandInputs(cl.Files, cl.Extensions, errs)
	if len(names) == 0 {
		return errs.Err()
	}

	wr, writerCleanup, err := source.Create(ctx, cl.OutputFile)
	if err != nil {
		return err
	}
	csvw := csvreport.NewWriter(wr)

	// Kick off the progress bar, if requested and either the CSV report is
	// written to a file or stdout is not a terminal; in the latter case the
	// bar renders to stderr.
	isTTY := terminal.IsTerminal(int(os.Stdout.Fd()))
	var (
		progressCh    chan scanjob.Progress
		progressWg    sync.WaitGroup
		progressBarWr = os.Stdout
	)
	if cl.ProgressBar && (len(cl.OutputFile) > 0 || !isTTY) {
		progressCh = make(chan scanjob.Progress, cl.Threads)
		progressWg.Add(1)
		if !isTTY {
			progressBarWr = os.Stderr
		}
		go func() {
			progressBar(ctx, progressBarWr, progressCh, totalSize)
			progressWg.Done()
		}()
	}

	poolOpts := []scanjob.Option{
		scanjob.Concurrency(cl.Threads),
		scanjob.Verbose(cl.Verbose),
	}
	if progressCh != nil {
		poolOpts = append(poolOpts, scanjob.SendUpdates(progressCh))
	}
	pool := scanjob.New(ctx, phrases, cl.ContextSize, cl.WindowSize, func(hit scanjob.Hit) {
		errs.Append(csvw.Write(hit.File, hit.Phrase, hit.Instance, hit.Context))
	}, poolOpts...)

	for _, name := range names {
		if err := pool.Scan(name); err != nil {
			errs.Append(err)
			break
		}
	}
	errs.Append(pool.Finish())

	if progressCh != nil {
		close(progressCh)
		progressWg.Wait()
	}

	errs.Append(csvw.Flush())
	errs.Append(writerCleanup(ctx))
	return errs.Err()
}
