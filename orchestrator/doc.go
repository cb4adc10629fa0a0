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


// Package orchestrator coordinates the question answering and ingestion
// flows on top of the storage, retrieval, and AI layers.
//
// Query runs synchronously under a bounded deadline: the user turn is
// persisted before any answering work so that a failed answer never
// loses the question. Ingest runs asynchronously on a worker pool; the
// caller gets a job ID immediately and can poll the job or receive a
// notification when it finishes.
package orchestrator
