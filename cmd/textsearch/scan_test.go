// Copyright 2020 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package main

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"cloudeng.io/errors"
)

func TestHasExtension(t *testing.T) {
	for _, tc := range []struct {
		name       string
		extensions []string
		want       bool
	}{
		{"file.txt", nil, true},
		{"file.txt", []string{"txt"}, true},
		{"file.txt", []string{".txt"}, true},
		{"file.txt", []string{"bin"}, false},
		{"file.txt", []string{"bin", "txt"}, true},
		{"file", []string{"txt"}, false},
		{"dir.d/file", []string{"txt"}, false},
	} {
		if got := hasExtension(tc.name, tc.extensions); got != tc.want {
			t.Errorf("%v with %v: got %v, want %v", tc.name, tc.extensions, got, tc.want)
		}
	}
}

func TestExpandInputs(t *testing.T) {
	tmp := t.TempDir()
	mk := func(name string, size int) string {
		path := filepath.Join(tmp, name)
		if err := os.MkdirAll(filepath.Dir(path), 0770); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, make([]byte, size), 0660); err != nil {
			t.Fatal(err)
		}
		return path
	}
	a := mk("dir/a.txt", 10)
	mk("dir/b.bin", 20)
	c := mk("c.txt", 30)

	errs := &errors.M{}
	names, size := expandInputs([]string{filepath.Join(tmp, "dir"), c}, []string{"txt"}, errs)
	if err := errs.Err(); err != nil {
		t.Fatal(err)
	}
	want := []string{a, c}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("got %v, want %v", names, want)
	}
	if size != 40 {
		t.Errorf("got total size %v, want 40", size)
	}

	errs = &errors.M{}
	names, _ = expandInputs([]string{filepath.Join(tmp, "missing")}, nil, errs)
	if errs.Err() == nil {
		t.Errorf("expected an error for a missing input")
	}
	if len(names) != 0 {
		t.Errorf("got %v, want no inputs", names)
	}

	errs = &errors.M{}
	names, _ = expandInputs([]string{"s3://bucket/key.txt", "https://host/path.bin"}, []string{"txt"}, errs)
	if err := errs.Err(); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(names, []string{"s3://bucket/key.txt"}) {
		t.Errorf("got %v, want just the s3 txt input", names)
	}
}

func TestParsePhraseFlags(t *testing.T) {
	phrases, err := parsePhraseFlags([]string{"famine where", "sum my count"})
	if err != nil {
		t.Fatal(err)
	}
	if len(phrases) != 2 || len(phrases[0]) != 2 || len(phrases[1]) != 3 {
		t.Errorf("unexpected phrases: %v", phrases)
	}
	if _, err := parsePhraseFlags(nil); err == nil {
		t.Errorf("expected an error for no phrases")
	}
	if _, err := parsePhraseFlags([]string{"  "}); err == nil {
		t.Errorf("expected an error for a tokenless phrase")
	}
}
