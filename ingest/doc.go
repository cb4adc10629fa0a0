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


// Package ingest turns raw source documents into embedded chunks ready
// for the vector index.
//
// The pipeline runs three stages per source:
//
//  1. Convert: raw bytes to plain text (Converter).
//  2. Split: text into overlapping fixed-size windows (SplitText).
//  3. Embed: windows to vectors via the AI provider.
//
// Batch processing is per-source fault isolated: one document failing to
// convert or embed does not abort the rest of the batch.
package ingest
