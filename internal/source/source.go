// Copyright 2020 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package source opens the byte streams that textsearch scans: local
// files, http(s) URLs, and s3:// paths, behind a single uniform API.
package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/file/s3file"
)

func init() {
	file.RegisterImplementation("s3", func() file.Implementation {
		return s3file.NewImplementation(
			s3file.NewDefaultProvider(session.Options{}), s3file.Options{})
	})
}

// Closer is called once the caller is done reading from the opened source.
type Closer func(context.Context) error

// Open returns a reader over name, its size in bytes (0 if unknown, as for
// an http(s) source with no Content-Length), and a Closer to release any
// underlying resources. name may be a local path, an http(s):// URL, or an
// s3:// path.
func Open(ctx context.Context, name string) (io.Reader, int64, Closer, error) {
	if strings.HasPrefix(name, "http://") || strings.HasPrefix(name, "https://") {
		resp, err := http.Get(name)
		if err != nil {
			return nil, 0, nil, fmt.Errorf("source: get %v: %w", name, err)
		}
		size := resp.ContentLength
		if size < 0 {
			size = 0
		}
		return resp.Body, size, func(context.Context) error {
			return resp.Body.Close()
		}, nil
	}
	info, err := file.Stat(ctx, name)
	if err != nil {
		return nil, 0, nil, fmt.Errorf("source: stat %v: %w", name, err)
	}
	f, err := file.Open(ctx, name)
	if err != nil {
		return nil, 0, nil, fmt.Errorf("source: open %v: %w", name, err)
	}
	return f.Reader(ctx), info.Size(), f.Close, nil
}

// Create returns a writer for name and a Closer, or stdout and a no-op
// Closer when name is empty.
func Create(ctx context.Context, name string) (io.Writer, Closer, error) {
	if len(name) == 0 {
		return os.Stdout, func(context.Context) error { return nil }, nil
	}
	f, err := file.Create(ctx, name)
	if err != nil {
		return nil, nil, fmt.Errorf("source: create %v: %w", name, err)
	}
	return f.Writer(ctx), f.Close, nil
}
