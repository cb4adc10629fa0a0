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


// Package retrieval assembles the document context for answer generation.
//
// The service embeds the question, searches the vector index, and joins
// the matched chunk texts into a single context block. Retrieval is a
// quality feature, not a liveness dependency: if the index is unreachable
// the service degrades to an empty context so that answering can proceed
// without document grounding.
package retrieval

import (
	"context"
	"log/slog"
	"strings"

	"github.com/poiesic/askit/ai"
	"github.com/poiesic/askit/vectorindex"
)

// Separator joins chunk texts in the assembled context.
const Separator = "\n\n---\n\n"

// DefaultTopK is the number of chunks retrieved per question.
const DefaultTopK = 5

// Service retrieves document context for questions.
type Service struct {
	embedder   ai.Embedder
	index      vectorindex.Index
	collection string
	topK       int
	logger     *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithTopK overrides the number of chunks retrieved.
func WithTopK(k int) Option {
	return func(s *Service) {
		if k > 0 {
			s.topK = k
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService creates a retrieval service over the given index collection.
func NewService(embedder ai.Embedder, index vectorindex.Index, collection string, opts ...Option) *Service {
	s := &Service{
		embedder:   embedder,
		index:      index,
		collection: collection,
		topK:       DefaultTopK,
		logger:     slog.Default().With("component", "retrieval"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Context returns the assembled document context for the query, or an
// empty string when nothing relevant is indexed or the index is
// unavailable. Only embedding failures are reported as errors; index
// failures degrade to an empty context.
func (s *Service) Context(ctx context.Context, query string) (string, error) {
	vector, err := s.embedder.EmbedText(ctx, query)
	if err != nil {
		return "", err
	}

	matches, err := s.index.Search(ctx, s.collection, vector, s.topK)
	if err != nil {
		s.logger.Warn("index unavailable, answering without context", "error", err)
		return "", nil
	}
	if len(matches) == 0 {
		return "", nil
	}

	texts := make([]string, len(matches))
	for i, m := range matches {
		texts[i] = m.Text
	}
	return strings.Join(texts, Separator), nil
}
