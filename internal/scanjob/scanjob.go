// Copyright 2020 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package scanjob runs phrase searches over many files concurrently. A
// fixed-size pool of workers pulls file names off a work channel, scans
// each file with its own Finder, and delivers the resulting hits to a
// single assembling goroutine which invokes the caller's emit function in
// arrival order. There is no ordering requirement across files, so no
// reassembly step is needed.
package scanjob

import (
	"bufio"
	"context"
	"log"
	"runtime"
	"sync"
	"time"

	"cloudeng.io/errors"
	"github.com/cosnicolaou/textsearch"
	"github.com/cosnicolaou/textsearch/internal/source"
)

type poolOpts struct {
	verbose     bool
	concurrency int
	progressCh  chan<- Progress
}

// Option represents an option to New.
type Option func(*poolOpts)

// Verbose controls verbose logging for the scan workers.
func Verbose(v bool) Option {
	return func(o *poolOpts) {
		o.verbose = v
	}
}

// Concurrency sets the degree of concurrency to use, that is, the number
// of files scanned in parallel.
func Concurrency(n int) Option {
	return func(o *poolOpts) {
		if n > 0 {
			o.concurrency = n
		}
	}
}

// SendUpdates sets the channel for sending progress updates over, one per
// completed file.
func SendUpdates(ch chan<- Progress) Option {
	return func(o *poolOpts) {
		o.progressCh = ch
	}
}

// Progress is used to report the progress of a scan. Each report pertains
// to one completed file.
type Progress struct {
	File     string
	Size     int
	Hits     int
	Duration time.Duration
}

// Hit is one reported occurrence: the instance the engine produced,
// together with the file it came from, the phrase it belongs to and the
// buffer context captured at the moment of the hit.
type Hit struct {
	File     string
	Phrase   textsearch.Phrase
	Instance textsearch.PhraseInstance
	Context  textsearch.Text
}

type fileJob struct {
	name     string
	size     int
	hits     []Hit
	duration time.Duration
	err      error
}

// Pool scans files for a fixed phrase list using a pool of workers, one
// Finder per file. Hits are delivered via the emit function passed to New,
// which is invoked from a single goroutine; per-file errors are collected
// and returned from Finish.
type Pool struct {
	ctx         context.Context
	phrases     []textsearch.Phrase
	contextSize int
	windowSize  int

	workWg     sync.WaitGroup
	doneWg     sync.WaitGroup
	workCh     chan *fileJob
	doneCh     chan *fileJob
	progressCh chan<- Progress
	emit       func(Hit)
	errs       *errors.M
	verbose    bool
}

// New creates a new scan pool for the supplied phrase list and finder
// geometry. phrases must be non-empty and emit must be non-nil.
func New(ctx context.Context, phrases []textsearch.Phrase, contextSize, windowSize int, emit func(Hit), opts ...Option) *Pool {
	o := poolOpts{
		concurrency: runtime.GOMAXPROCS(-1),
	}
	for _, fn := range opts {
		fn(&o)
	}
	p := &Pool{
		ctx:         ctx,
		phrases:     phrases,
		contextSize: contextSize,
		windowSize:  windowSize,
		workCh:      make(chan *fileJob, o.concurrency),
		doneCh:      make(chan *fileJob, o.concurrency),
		progressCh:  o.progressCh,
		emit:        emit,
		errs:        &errors.M{},
		verbose:     o.verbose,
	}
	p.workWg.Add(o.concurrency)
	for i := 0; i < o.concurrency; i++ {
		go func() {
			p.worker(ctx, p.workCh, p.doneCh)
			p.workWg.Done()
		}()
	}
	p.doneWg.Add(1)
	go func() {
		p.assemble(ctx, p.doneCh)
		p.doneWg.Done()
	}()
	return p
}

func (p *Pool) trace(format string, args ...interface{}) {
	if p.verbose {
		log.Printf(format, args...)
	}
}

// Scan is called for each file to be scanned. It queues the file for one
// of the pool's workers, blocking while the work queue is full, and returns
// without waiting for the scan itself.
func (p *Pool) Scan(name string) error {
	select {
	case p.workCh <- &fileJob{name: name}:
	case <-p.ctx.Done():
		return p.ctx.Err()
	}
	return nil
}

func (p *Pool) worker(ctx context.Context, in <-chan *fileJob, out chan<- *fileJob) {
	for {
		select {
		case jb := <-in:
			if jb == nil {
				return
			}
			p.trace("scanning: %v", jb.name)
			p.scanFile(ctx, jb)
			p.trace("scanned: %v: %v hits, %v", jb.name, len(jb.hits), jb.duration)
			select {
			case out <- jb:
			case <-ctx.Done():
			}
		case <-ctx.Done():
			return
		}
	}
}

func (p *Pool) scanFile(ctx context.Context, jb *fileJob) {
	start := time.Now()
	rd, size, cleanup, err := source.Open(ctx, jb.name)
	if err != nil {
		jb.err = err
		return
	}
	defer cleanup(ctx)
	jb.size = int(size)
	finder := textsearch.NewFinder(p.phrases, p.contextSize, p.windowSize, bufio.NewReader(rd))
	for finder.Scan(ctx) {
		for _, inst := range finder.Group() {
			jb.hits = append(jb.hits, Hit{
				File:     jb.name,
				Phrase:   p.phrases[inst.PhraseIndex],
				Instance: inst,
				Context:  finder.GetContext(inst.CodepointShift, inst.BytesPerCharacter),
			})
		}
	}
	jb.err = finder.Err()
	jb.duration = time.Since(start)
}

func (p *Pool) assemble(ctx context.Context, ch <-chan *fileJob) {
	for {
		select {
		case jb := <-ch:
			if jb == nil {
				return
			}
			p.errs.Append(jb.err)
			for _, hit := range jb.hits {
				p.emit(hit)
			}
			if p.progressCh != nil {
				p.progressCh <- Progress{
					File:     jb.name,
					Size:     jb.size,
					Hits:     len(jb.hits),
					Duration: jb.duration,
				}
			}
		case <-ctx.Done():
			return
		}
	}
}

// Finish must be called to wait for all of the currently queued scans to
// finish and their hits to be emitted. It should be called exactly once
// and returns the accumulated per-file errors.
func (p *Pool) Finish() error {
	close(p.workCh)
	p.workWg.Wait()
	close(p.doneCh)
	p.doneWg.Wait()
	return p.errs.Err()
}
