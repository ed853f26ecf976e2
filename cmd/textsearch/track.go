// Copyright 2020 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"

	"cloudeng.io/cmdutil"
	"cloudeng.io/errors"

	"github.com/cosnicolaou/textsearch/internal/httpapi"
)

// trackRequest sends one JSON request to the tracking server and decodes
// the response into out. Non-2xx responses are returned as errors carrying
// the server's error message.
func trackRequest(ctx context.Context, method, rawurl string, body, out interface{}) error {
	var data []byte
	if body != nil {
		var err error
		if data, err = json.Marshal(body); err != nil {
			return err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, rawurl, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var remote struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&remote); err == nil && len(remote.Error) > 0 {
			return fmt.Errorf("%v %v: %v: %v", method, rawurl, resp.Status, remote.Error)
		}
		return fmt.Errorf("%v %v: %v", method, rawurl, resp.Status)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func trackAddFile(ctx context.Context, values interface{}, args []string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	cmdutil.HandleSignals(cancel, os.Interrupt)
	cl := values.(*trackFlags)
	errs := errors.M{}
	for _, path := range args {
		errs.Append(trackRequest(ctx, "POST", cl.Server+"/files",
			map[string]string{"path": path}, nil))
	}
	return errs.Err()
}

func trackRemoveFile(ctx context.Context, values interface{}, args []string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	cmdutil.HandleSignals(cancel, os.Interrupt)
	cl := values.(*trackFlags)
	errs := errors.M{}
	for _, prefix := range args {
		errs.Append(trackRequest(ctx, "DELETE",
			cl.Server+"/files?prefix="+url.QueryEscape(prefix), nil, nil))
	}
	return errs.Err()
}

func trackAddPhrase(ctx context.Context, values interface{}, args []string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	cmdutil.HandleSignals(cancel, os.Interrupt)
	cl := values.(*trackFlags)
	errs := errors.M{}
	for _, phrase := range args {
		errs.Append(trackRequest(ctx, "POST", cl.Server+"/phrases",
			map[string]string{"phrase": phrase}, nil))
	}
	return errs.Err()
}

func trackRemovePhrase(ctx context.Context, values interface{}, args []string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	cmdutil.HandleSignals(cancel, os.Interrupt)
	cl := values.(*trackFlags)
	errs := errors.M{}
	for _, phrase := range args {
		errs.Append(trackRequest(ctx, "DELETE", cl.Server+"/phrases",
			map[string]string{"phrase": phrase}, nil))
	}
	return errs.Err()
}

func trackList(ctx context.Context, values interface{}, args []string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	cmdutil.HandleSignals(cancel, os.Interrupt)
	cl := values.(*trackFlags)

	var files httpapi.FilesResponse
	if err := trackRequest(ctx, "GET", cl.Server+"/files", nil, &files); err != nil {
		return err
	}
	var phrases httpapi.PhrasesResponse
	if err := trackRequest(ctx, "GET", cl.Server+"/phrases", nil, &phrases); err != nil {
		return err
	}
	fmt.Printf("files:\n")
	for _, f := range files.Files {
		fmt.Printf("  %v\n", f)
	}
	fmt.Printf("phrases:\n")
	for _, p := range phrases.Phrases {
		fmt.Printf("  %v\n", p)
	}
	return nil
}
