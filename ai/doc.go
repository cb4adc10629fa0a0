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


// Package ai provides abstractions for the AI services used in askit.
//
// This package defines interfaces for the two external model calls the
// system makes: text embedding (text -> vector) and grounded answer
// generation ((query, context) -> answer). The core domain and the
// orchestration logic depend on these abstractions, never on a concrete
// model client.
//
// The package includes two implementation sub-packages:
//
//   - ai/openai: production implementation using OpenAI-compatible APIs
//     (Ollama, LocalAI, vLLM, or the hosted service)
//   - ai/mock: deterministic test doubles for unit testing without external
//     services
//
// Public constructors (openai.NewProvider, openai.NewEmbedder,
// openai.NewGenerator) return interface types to enforce abstraction. Mock
// constructors return concrete types so tests can inject behavior and make
// call-count assertions.
//
// Heavy model clients are constructed once at process start; a construction
// failure (bad host, missing model) fails startup fast and loudly rather
// than surfacing as a runtime query error.
package ai
