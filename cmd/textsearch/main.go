// Copyright 2020 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"runtime"
	"strings"

	"cloudeng.io/cmdutil/subcmd"
)

// repeatedFlag collects every occurrence of a repeatable flag.
type repeatedFlag []string

func (r *repeatedFlag) String() string {
	return strings.Join(*r, ",")
}

func (r *repeatedFlag) Set(v string) error {
	*r = append(*r, v)
	return nil
}

type scanFlags struct {
	Phrases     repeatedFlag `subcmd:"phrase,,'phrase to search for with tokens separated by spaces; repeat for multiple phrases'"`
	Files       repeatedFlag `subcmd:"file,,'file, directory, URL or s3 path to search; directories are walked recursively; repeat for multiple inputs'"`
	Extensions  repeatedFlag `subcmd:"extension,,'restrict directory walks to files with this extension; repeat for multiple extensions'"`
	ContextSize int          `subcmd:"context_size,256,'bytes of surrounding context retained for each hit; must be a positive multiple of 4'"`
	WindowSize  int          `subcmd:"window_size,256,'bytes searched on each step; at most context_size'"`
	Threads     int          `subcmd:"threads,,'number of files scanned concurrently'"`
	ProgressBar bool         `subcmd:"progress,true,display a progress bar"`
	OutputFile  string       `subcmd:"output,,'output file or s3 path for the CSV report, omit for stdout'"`
	Verbose     bool         `subcmd:"verbose,false,verbose debug/trace information"`
}

type trackFlags struct {
	Server string `subcmd:"server,http://localhost:8989,'address of the running textsearch-server'"`
}

var cmdSet *subcmd.CommandSet

func init() {
	defaultThreads := map[string]interface{}{
		"threads": runtime.GOMAXPROCS(-1),
	}

	scanCmd := subcmd.NewCommand("scan",
		subcmd.MustRegisterFlagStruct(&scanFlags{}, defaultThreads, nil),
		scan, subcmd.ExactlyNumArguments(0))
	scanCmd.Document(`scan files for the supplied phrases and write hits as CSV. Files may be local, on S3 or a URL.`)

	trackAddFileCmd := subcmd.NewCommand("track-add-file",
		subcmd.MustRegisterFlagStruct(&trackFlags{}, nil, nil),
		trackAddFile, subcmd.AtLeastNArguments(1))
	trackAddFileCmd.Document(`track one or more files or directories on a running textsearch-server.`)

	trackRemoveFileCmd := subcmd.NewCommand("track-remove-file",
		subcmd.MustRegisterFlagStruct(&trackFlags{}, nil, nil),
		trackRemoveFile, subcmd.AtLeastNArguments(1))
	trackRemoveFileCmd.Document(`stop tracking all files under one or more path prefixes on a running textsearch-server.`)

	trackAddPhraseCmd := subcmd.NewCommand("track-add-phrase",
		subcmd.MustRegisterFlagStruct(&trackFlags{}, nil, nil),
		trackAddPhrase, subcmd.AtLeastNArguments(1))
	trackAddPhraseCmd.Document(`track one or more phrases on a running textsearch-server.`)

	trackRemovePhraseCmd := subcmd.NewCommand("track-remove-phrase",
		subcmd.MustRegisterFlagStruct(&trackFlags{}, nil, nil),
		trackRemovePhrase, subcmd.AtLeastNArguments(1))
	trackRemovePhraseCmd.Document(`stop tracking one or more phrases on a running textsearch-server.`)

	trackListCmd := subcmd.NewCommand("track-list",
		subcmd.MustRegisterFlagStruct(&trackFlags{}, nil, nil),
		trackList, subcmd.ExactlyNumArguments(0))
	trackListCmd.Document(`list the files and phrases tracked by a running textsearch-server.`)

	cmdSet = subcmd.NewCommandSet(scanCmd, trackAddFileCmd, trackRemoveFileCmd,
		trackAddPhraseCmd, trackRemovePhraseCmd, trackListCmd)
	cmdSet.Document(`search for phrases in binary files, tolerating a uniform codepoint shift and 1 or 2 byte character encodings. Files may be local, on S3 or a URL.`)
}

func main() {
	cmdSet.MustDispatch(context.Background())
}
