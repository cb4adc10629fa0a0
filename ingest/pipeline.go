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


package ingest

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/askit/ai"
	"github.com/poiesic/askit/core"
)

// Pipeline converts, chunks, and embeds source documents.
type Pipeline struct {
	converter Converter
	embedder  ai.Embedder
	chunkSize int
	overlap   int
	logger    *slog.Logger
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithChunkSize overrides the chunk window size in characters.
func WithChunkSize(size int) PipelineOption {
	return func(p *Pipeline) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithChunkOverlap overrides the window overlap in characters.
func WithChunkOverlap(overlap int) PipelineOption {
	return func(p *Pipeline) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) PipelineOption {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// NewPipeline creates a Pipeline with the given converter and embedder.
func NewPipeline(converter Converter, embedder ai.Embedder, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		converter: converter,
		embedder:  embedder,
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
		logger:    slog.Default().With("component", "ingest"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process converts one raw document into embedded chunks.
// A document whose text is empty after conversion yields zero chunks and
// no error.
func (p *Pipeline) Process(ctx context.Context, raw []byte, sourceID string) ([]core.DocumentChunk, error) {
	text, err := p.converter.Convert(ctx, raw, sourceID)
	if err != nil {
		return nil, fmt.Errorf("convert %s: %w", sourceID, err)
	}

	windows := SplitText(text, p.chunkSize, p.overlap)
	if len(windows) == 0 {
		p.logger.Info("source produced no chunks", "source_id", sourceID)
		return nil, nil
	}

	vectors, err := p.embedder.EmbedTexts(ctx, windows)
	if err != nil {
		return nil, fmt.Errorf("embed %s: %w", sourceID, err)
	}
	if len(vectors) != len(windows) {
		return nil, fmt.Errorf("%w: %d texts, %d vectors", ErrEmbeddingMismatch, len(windows), len(vectors))
	}

	chunks := make([]core.DocumentChunk, len(windows))
	for i, window := range windows {
		chunks[i] = core.DocumentChunk{
			SourceID: sourceID,
			Index:    i,
			Text:     window,
			Vector:   vectors[i],
		}
	}

	p.logger.Debug("processed source", "source_id", sourceID, "chunks", len(chunks))
	return chunks, nil
}

// Source is one raw document in a batch.
type Source struct {
	ID  string
	Raw []byte
}

// ProcessBatch processes each source independently. A failing source is
// reported in its SourceReport and does not stop the batch.
func (p *Pipeline) ProcessBatch(ctx context.Context, sources []Source) ([][]core.DocumentChunk, []core.SourceReport) {
	results := make([][]core.DocumentChunk, 0, len(sources))
	reports := make([]core.SourceReport, 0, len(sources))

	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			reports = append(reports, core.SourceReport{SourceID: src.ID, Err: err})
			continue
		}

		chunks, err := p.Process(ctx, src.Raw, src.ID)
		if err != nil {
			p.logger.Error("source failed", "source_id", src.ID, "error", err)
			reports = append(reports, core.SourceReport{SourceID: src.ID, Err: err})
			continue
		}

		results = append(results, chunks)
		reports = append(reports, core.SourceReport{SourceID: src.ID, Chunks: len(chunks)})
	}

	return results, reports
}
