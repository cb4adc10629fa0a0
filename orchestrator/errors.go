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


package orchestrator

import "errors"

var (
	// ErrHistoryRequired is returned when constructing without a history store.
	ErrHistoryRequired = errors.New("history store is required")

	// ErrRetrievalRequired is returned when constructing without a retrieval service.
	ErrRetrievalRequired = errors.New("retrieval service is required")

	// ErrGeneratorRequired is returned when constructing without a generator.
	ErrGeneratorRequired = errors.New("generator is required")

	// ErrJobNotFound is returned when looking up an unknown ingestion job.
	ErrJobNotFound = errors.New("ingestion job not found")

	// ErrInvalidMaxAttempts is returned for a non-positive retry attempt count.
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")
)
