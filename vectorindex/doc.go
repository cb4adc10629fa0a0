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


// Package vectorindex defines the vector index abstraction used for
// document retrieval, plus a factory that selects a concrete backend.
//
// Two backends are provided:
//
//   - local: an embedded BadgerDB index with exhaustive cosine scoring.
//     Suitable for single node deployments with modest corpora.
//   - qdrant: a remote Qdrant server accessed over gRPC.
//
// Chunk identity is derived from the source name and chunk position
// (core.ChunkID), so re-ingesting the same source overwrites its points
// in place rather than accumulating duplicates.
package vectorindex
