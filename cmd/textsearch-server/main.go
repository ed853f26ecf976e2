// Copyright 2020 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Command textsearch-server serves the tracked-file and tracked-phrase
// collections over HTTP and persists them to a JSON document. The scan
// endpoint runs the phrase-finding engine over the tracked configuration.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"runtime"
	"time"

	"cloudeng.io/cmdutil"
	"cloudeng.io/cmdutil/subcmd"

	"github.com/cosnicolaou/textsearch/internal/httpapi"
	"github.com/cosnicolaou/textsearch/internal/tracker"
)

type serveFlags struct {
	Address     string `subcmd:"address,:8989,'address to listen on'"`
	PersistFile string `subcmd:"persist_file,textsearch-state.json,'path of the JSON document the tracked state persists to'"`
	ContextSize int    `subcmd:"context_size,256,'bytes of surrounding context retained for each hit; must be a positive multiple of 4'"`
	WindowSize  int    `subcmd:"window_size,256,'bytes searched on each step; at most context_size'"`
	Threads     int    `subcmd:"threads,,'number of files scanned concurrently by the scan endpoint'"`
}

var cmdSet *subcmd.CommandSet

func init() {
	defaultThreads := map[string]interface{}{
		"threads": runtime.GOMAXPROCS(-1),
	}
	serveCmd := subcmd.NewCommand("serve",
		subcmd.MustRegisterFlagStruct(&serveFlags{}, defaultThreads, nil),
		serve, subcmd.ExactlyNumArguments(0))
	serveCmd.Document(`serve the tracked-file and tracked-phrase collections over HTTP.`)

	cmdSet = subcmd.NewCommandSet(serveCmd)
	cmdSet.Document(`track files and phrases for the textsearch scanner and persist them to disk.`)
}

func serve(ctx context.Context, values interface{}, args []string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	cl := values.(*serveFlags)
	cmdutil.HandleSignals(cancel, os.Interrupt)

	svc, err := tracker.New(cl.PersistFile)
	if err != nil {
		return err
	}
	api := httpapi.New(svc, cl.ContextSize, cl.WindowSize, cl.Threads)
	srv := &http.Server{
		Addr:    cl.Address,
		Handler: api.Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("listening on %v, persisting to %v", cl.Address, cl.PersistFile)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func main() {
	cmdSet.MustDispatch(context.Background())
}
