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


package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/poiesic/askit/core"
	"github.com/poiesic/askit/orchestrator"
)

type queryRequest struct {
	SessionID string `json:"session_id"`
	Query     string `json:"query"`
}

type queryResponse struct {
	Answer string `json:"answer"`
}

type turnDTO struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

type historyResponse struct {
	SessionID string    `json:"session_id"`
	Turns     []turnDTO `json:"turns"`
}

type ingestRequest struct {
	File      string `json:"file"`
	Requester string `json:"requester,omitempty"`
}

type ingestResponse struct {
	JobID string `json:"job_id"`
}

type jobResponse struct {
	JobID      string `json:"job_id"`
	File       string `json:"file"`
	Status     string `json:"status"`
	Error      string `json:"error,omitempty"`
	Chunks     int    `json:"chunks"`
	AcceptedAt string `json:"accepted_at"`
	FinishedAt string `json:"finished_at,omitempty"`
}

type filesResponse struct {
	Files []string `json:"files"`
}

type deleteResponse struct {
	Name          string `json:"name"`
	FileRemoved   bool   `json:"file_removed"`
	FileError     string `json:"file_error,omitempty"`
	ChunksRemoved int    `json:"chunks_removed"`
	IndexError    string `json:"index_error,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// writeError maps orchestrator error classes to HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrValidation):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, core.ErrUpstreamUnavailable):
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: core.ErrUpstreamUnavailable.Error()})
	case errors.Is(err, orchestrator.ErrJobNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: core.ErrBackendInternal.Error()})
	}
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}

	answer, err := s.orch.Query(r.Context(), req.SessionID, req.Query)
	if err != nil {
		s.logger.Error("query failed", "session_id", req.SessionID, "error", err)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, queryResponse{Answer: answer})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("session")

	turns, err := s.orch.History(r.Context(), sessionID)
	if err != nil {
		writeError(w, err)
		return
	}

	dtos := make([]turnDTO, len(turns))
	for i, t := range turns {
		dtos[i] = turnDTO{
			Role:      t.Role.String(),
			Content:   t.Content,
			Timestamp: t.Timestamp,
		}
	}
	writeJSON(w, http.StatusOK, historyResponse{SessionID: sessionID, Turns: dtos})
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}

	jobID, err := s.orch.Ingest(r.Context(), req.File, req.Requester)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, ingestResponse{JobID: jobID})
}

func (s *Server) handleJob(w http.ResponseWriter, r *http.Request) {
	job, err := s.orch.Job(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	resp := jobResponse{
		JobID:      job.ID,
		File:       job.FileRef,
		Status:     job.Status.String(),
		Error:      job.ErrorDetail,
		Chunks:     job.Chunks,
		AcceptedAt: job.AcceptedAt.Format(time.RFC3339),
	}
	if !job.FinishedAt.IsZero() {
		resp.FinishedAt = job.FinishedAt.Format(time.RFC3339)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListFiles(w http.ResponseWriter, r *http.Request) {
	names, err := s.orch.ListSources(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, filesResponse{Files: names})
}

func (s *Server) handleDeleteFile(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	result, err := s.orch.DeleteSource(r.Context(), name)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := deleteResponse{
		Name:          name,
		FileRemoved:   result.FileRemoved,
		ChunksRemoved: result.ChunksRemoved,
	}
	if result.FileErr != nil {
		resp.FileError = result.FileErr.Error()
	}
	if result.IndexErr != nil {
		resp.IndexError = result.IndexErr.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
