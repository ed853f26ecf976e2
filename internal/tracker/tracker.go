// Copyright 2020 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package tracker keeps the set of files and phrases the scanner is
// configured to search: files to monitor and the phrases to look for in
// them. The state persists to a single JSON document; the engine itself
// never consults it.
package tracker

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/cosnicolaou/textsearch"
)

// State is the on-disk document: the tracked files and the tracked
// phrases, each phrase rendered as its space-joined token string.
type State struct {
	Files   []string `json:"files"`
	Phrases []string `json:"phrases"`
}

// Service guards a mutable tracked-file/tracked-phrase set behind a mutex
// and persists it to a JSON document. All methods are safe for concurrent
// use.
type Service struct {
	persistFile string

	mu      sync.Mutex
	files   map[string]bool
	phrases map[string]textsearch.Phrase // keyed by rendered form
}

// New returns a Service persisting to persistFile. If the file already
// exists its contents are loaded; a missing file yields an empty service.
// A file that exists but cannot be parsed is an error.
func New(persistFile string) (*Service, error) {
	s := &Service{
		persistFile: persistFile,
		files:       map[string]bool{},
		phrases:     map[string]textsearch.Phrase{},
	}
	data, err := os.ReadFile(persistFile)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("tracker: read %v: %w", persistFile, err)
	}
	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("tracker: parse %v: %w", persistFile, err)
	}
	for _, f := range state.Files {
		s.files[f] = true
	}
	for _, p := range state.Phrases {
		if len(strings.Fields(p)) == 0 {
			continue
		}
		s.phrases[p] = textsearch.ParsePhrase(p)
	}
	return s, nil
}

// AddFile tracks the named file. If name is a regular file only that file
// is tracked; if it is a directory every file beneath it is tracked
// recursively.
func (s *Service) AddFile(name string) error {
	info, err := os.Stat(name)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		s.mu.Lock()
		s.files[name] = true
		s.mu.Unlock()
		return nil
	}
	return filepath.WalkDir(name, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			s.mu.Lock()
			s.files[path] = true
			s.mu.Unlock()
		}
		return nil
	})
}

// RemoveFiles stops tracking every file whose path equals prefix or lies
// beneath it, if any.
func (s *Service) RemoveFiles(prefix string) {
	prefix = filepath.Clean(prefix)
	s.mu.Lock()
	defer s.mu.Unlock()
	for f := range s.files {
		cf := filepath.Clean(f)
		if cf == prefix || strings.HasPrefix(cf, prefix+string(filepath.Separator)) {
			delete(s.files, f)
		}
	}
}

// AddPhrase tracks the given phrase.
func (s *Service) AddPhrase(p textsearch.Phrase) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.phrases[p.String()] = p
}

// RemovePhrase stops tracking the given phrase, reporting whether it was
// tracked.
func (s *Service) RemovePhrase(p textsearch.Phrase) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := p.String()
	_, ok := s.phrases[key]
	delete(s.phrases, key)
	return ok
}

// Files returns the tracked files in sorted order.
func (s *Service) Files() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.files))
	for f := range s.files {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// Phrases returns the tracked phrases, sorted by their rendered form.
func (s *Service) Phrases() []textsearch.Phrase {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.phrases))
	for k := range s.phrases {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]textsearch.Phrase, len(keys))
	for i, k := range keys {
		out[i] = s.phrases[k]
	}
	return out
}

// Persist writes the current state to the service's persist file,
// replacing any previous contents.
func (s *Service) Persist() error {
	state := State{Files: s.Files()}
	for _, p := range s.Phrases() {
		state.Phrases = append(state.Phrases, p.String())
	}
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("tracker: marshal state: %w", err)
	}
	if err := os.WriteFile(s.persistFile, data, 0660); err != nil {
		return fmt.Errorf("tracker: write %v: %w", s.persistFile, err)
	}
	return nil
}
