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


package core

import "errors"

// Failure classes surfaced to callers. Only the class and a short message
// cross the API boundary; internal detail stays in the server logs.
var (
	// ErrValidation indicates a malformed request. Rejected before any side effect.
	ErrValidation = errors.New("invalid request")

	// ErrUpstreamUnavailable indicates the retrieval/generation backend was
	// unreachable or timed out. Surfaced distinctly so callers can retry.
	ErrUpstreamUnavailable = errors.New("answer service unavailable")

	// ErrBackendInternal indicates an unexpected failure in generation or storage.
	ErrBackendInternal = errors.New("internal error")
)

// Domain validation errors
var (
	// ErrInvalidRole indicates a Role value outside user/assistant.
	ErrInvalidRole = errors.New("invalid role")

	// ErrEmptyContent indicates an empty turn content.
	ErrEmptyContent = errors.New("content cannot be empty")

	// ErrEmptySessionID indicates a missing session identifier.
	ErrEmptySessionID = errors.New("session id cannot be empty")

	// ErrEmptyQuery indicates a missing query string.
	ErrEmptyQuery = errors.New("query cannot be empty")

	// ErrEmptyFileRef indicates a missing file reference on an ingestion trigger.
	ErrEmptyFileRef = errors.New("file reference cannot be empty")
)
