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


// Package storage provides the conversation history abstraction for askit.
//
// This package defines the HistoryStore interface that decouples history
// persistence from the query orchestration logic. Two interchangeable
// backends implement it:
//
//   - storage/file: a single JSON document mapping session ids to ordered
//     turns, fully rewritten on every append. Simple, debuggable, and
//     explicitly single-process: concurrent multi-process writers may lose
//     updates. Suitable for local deployments.
//   - storage/badger: one BadgerDB row per turn, keyed by (session id,
//     timestamp) so a prefix scan replays a session in order. Suitable when
//     history must survive heavy concurrent use.
//
// Both backends tolerate an unreadable or corrupt backing store on startup
// by initializing to an empty dataset rather than failing hard, and both
// assign strictly increasing timestamps within a session at append time.
//
// # Constructor Return Type Pattern
//
// Public constructors return the storage.HistoryStore interface to enforce
// abstraction and keep callers swappable between backends:
//
//	store, err := file.OpenStore("history.json")   // returns storage.HistoryStore
//	store, err := badger.OpenStore("/path/to/db")  // returns storage.HistoryStore
//
// # Thread Safety
//
// All implementations must be safe for concurrent use and must serialize
// writes per session: two concurrent appends for the same session must both
// be retained.
package storage
