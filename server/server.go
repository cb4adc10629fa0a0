// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package server exposes the orchestrator over a JSON HTTP API.
//
// Error classes map to status codes: validation failures are 400,
// answering-leg failures are 503, everything else is 500. Ingestion is
// accepted with 202 and a job ID for polling.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/poiesic/askit/orchestrator"
)

// Server serves the question answering and ingestion API.
type Server struct {
	orch   *orchestrator.Orchestrator
	addr   string
	logger *slog.Logger
}

// New creates a Server on addr.
func New(orch *orchestrator.Orchestrator, addr string) *Server {
	return &Server{
		orch:   orch,
		addr:   addr,
		logger: slog.Default().With("component", "server"),
	}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /query", s.handleQuery)
	mux.HandleFunc("GET /history/{session}", s.handleHistory)
	mux.HandleFunc("POST /ingest", s.handleIngest)
	mux.HandleFunc("GET /jobs/{id}", s.handleJob)
	mux.HandleFunc("GET /files", s.handleListFiles)
	mux.HandleFunc("DELETE /files/{name}", s.handleDeleteFile)
	mux.HandleFunc("GET /health", s.handleHealth)

	return s.loggingMiddleware(mux)
}

// Start runs the server until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Start(ctx context.Context) error {
	server := &http.Server{
		Addr:         s.addr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second, // Generation can be slow
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("server starting", "addr", s.addr)
	err := server.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// loggingMiddleware logs each request with its duration.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}
