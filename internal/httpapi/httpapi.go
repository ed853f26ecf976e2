// Copyright 2020 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package httpapi exposes the tracked-file and tracked-phrase collections
// over HTTP and offers a single scan endpoint that runs the engine over
// the tracked configuration. The mutating endpoints persist the tracker
// state on every change.
package httpapi

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/cosnicolaou/textsearch"
	"github.com/cosnicolaou/textsearch/internal/scanjob"
	"github.com/cosnicolaou/textsearch/internal/tracker"
)

// Server handles the tracked-state endpoints for a single tracker.Service.
type Server struct {
	svc         *tracker.Service
	contextSize int
	windowSize  int
	concurrency int
}

// New returns a Server over svc. contextSize and windowSize configure the
// Finders built by the scan endpoint; concurrency bounds the scan pool,
// with 0 meaning the pool's default.
func New(svc *tracker.Service, contextSize, windowSize, concurrency int) *Server {
	return &Server{
		svc:         svc,
		contextSize: contextSize,
		windowSize:  windowSize,
		concurrency: concurrency,
	}
}

// Router returns the route table for the server.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/files", s.addFile).Methods("POST")
	r.HandleFunc("/files", s.removeFiles).Methods("DELETE")
	r.HandleFunc("/files", s.listFiles).Methods("GET")
	r.HandleFunc("/phrases", s.addPhrase).Methods("POST")
	r.HandleFunc("/phrases", s.removePhrase).Methods("DELETE")
	r.HandleFunc("/phrases", s.listPhrases).Methods("GET")
	r.HandleFunc("/scan", s.scan).Methods("POST")
	return r
}

type fileRequest struct {
	Path string `json:"path"`
}

type phraseRequest struct {
	Phrase string `json:"phrase"`
}

// FilesResponse is the body of GET /files and of the mutating /files
// endpoints.
type FilesResponse struct {
	Files []string `json:"files"`
}

// PhrasesResponse is the body of GET /phrases and of the mutating
// /phrases endpoints.
type PhrasesResponse struct {
	Phrases []string `json:"phrases"`
}

// HitResponse is one scan hit as returned by POST /scan, mirroring the
// CSV column set.
type HitResponse struct {
	File              string `json:"file"`
	Phrase            string `json:"phrase"`
	FilePos           int    `json:"file_pos"`
	CodepointDiff     int32  `json:"codepoint_diff"`
	BytesPerCharacter int    `json:"bytes_per_character"`
	Context           string `json:"context"`
}

// ScanResponse is the body of POST /scan.
type ScanResponse struct {
	Hits []HitResponse `json:"hits"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("httpapi: encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// persist writes the tracker state, reporting a 500 on failure. The
// in-memory mutation that triggered the persist is not rolled back.
func (s *Server) persist(w http.ResponseWriter) bool {
	if err := s.svc.Persist(); err != nil {
		log.Printf("httpapi: persist failed: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return false
	}
	return true
}

func (s *Server) addFile(w http.ResponseWriter, r *http.Request) {
	var req fileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	if req.Path == "" {
		writeError(w, http.StatusBadRequest, "missing required field: path")
		return
	}
	if err := s.svc.AddFile(req.Path); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !s.persist(w) {
		return
	}
	writeJSON(w, http.StatusOK, FilesResponse{Files: s.svc.Files()})
}

func (s *Server) removeFiles(w http.ResponseWriter, r *http.Request) {
	prefix := r.URL.Query().Get("prefix")
	if prefix == "" {
		writeError(w, http.StatusBadRequest, "missing required query parameter: prefix")
		return
	}
	s.svc.RemoveFiles(prefix)
	if !s.persist(w) {
		return
	}
	writeJSON(w, http.StatusOK, FilesResponse{Files: s.svc.Files()})
}

func (s *Server) listFiles(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, FilesResponse{Files: s.svc.Files()})
}

func (s *Server) phrasesResponse() PhrasesResponse {
	resp := PhrasesResponse{Phrases: []string{}}
	for _, p := range s.svc.Phrases() {
		resp.Phrases = append(resp.Phrases, p.String())
	}
	return resp
}

func (s *Server) addPhrase(w http.ResponseWriter, r *http.Request) {
	var req phraseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	if len(strings.Fields(req.Phrase)) == 0 {
		writeError(w, http.StatusBadRequest, "phrase must contain at least one token")
		return
	}
	s.svc.AddPhrase(textsearch.ParsePhrase(req.Phrase))
	if !s.persist(w) {
		return
	}
	writeJSON(w, http.StatusOK, s.phrasesResponse())
}

func (s *Server) removePhrase(w http.ResponseWriter, r *http.Request) {
	var req phraseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	if len(strings.Fields(req.Phrase)) == 0 {
		writeError(w, http.StatusBadRequest, "phrase must contain at least one token")
		return
	}
	if !s.svc.RemovePhrase(textsearch.ParsePhrase(req.Phrase)) {
		writeError(w, http.StatusNotFound, "phrase is not tracked: "+req.Phrase)
		return
	}
	if !s.persist(w) {
		return
	}
	writeJSON(w, http.StatusOK, s.phrasesResponse())
}

func (s *Server) listPhrases(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.phrasesResponse())
}

func (s *Server) scan(w http.ResponseWriter, r *http.Request) {
	phrases := s.svc.Phrases()
	files := s.svc.Files()
	resp := ScanResponse{Hits: []HitResponse{}}
	if len(phrases) == 0 || len(files) == 0 {
		writeJSON(w, http.StatusOK, resp)
		return
	}
	opts := []scanjob.Option{}
	if s.concurrency > 0 {
		opts = append(opts, scanjob.Concurrency(s.concurrency))
	}
	pool := scanjob.New(r.Context(), phrases, s.contextSize, s.windowSize, func(hit scanjob.Hit) {
		resp.Hits = append(resp.Hits, HitResponse{
			File:              hit.File,
			Phrase:            hit.Phrase.String(),
			FilePos:           hit.Instance.FilePos,
			CodepointDiff:     hit.Instance.CodepointShift,
			BytesPerCharacter: hit.Instance.BytesPerCharacter,
			Context:           hit.Context.String(),
		})
	}, opts...)
	for _, name := range files {
		if err := pool.Scan(name); err != nil {
			break
		}
	}
	if err := pool.Finish(); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
