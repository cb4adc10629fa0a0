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


// Package askit is a document-grounded question answering system.
//
// It wires conversation history storage, a vector index, an embedding
// and generation provider, and an asynchronous ingestion pipeline into
// one orchestrator. See cmd/askit for the server binary.
package askit

import (
	"context"
	"log/slog"
	"time"

	"github.com/poiesic/askit/ai"
	"github.com/poiesic/askit/ai/openai"
	"github.com/poiesic/askit/blob"
	"github.com/poiesic/askit/ingest"
	"github.com/poiesic/askit/notify"
	"github.com/poiesic/askit/orchestrator"
	"github.com/poiesic/askit/retrieval"
	"github.com/poiesic/askit/storage"
	badgerstore "github.com/poiesic/askit/storage/badger"
	filestore "github.com/poiesic/askit/storage/file"
	"github.com/poiesic/askit/vectorindex"
)

// History backend identifiers.
const (
	HistoryBadger = "badger"
	HistoryFile   = "file"
)

// DefaultCollection is the vector index collection for documents.
const DefaultCollection = "documents"

// Config selects and parameterizes every component of the system.
type Config struct {
	// HistoryBackend is HistoryBadger or HistoryFile.
	HistoryBackend string
	// HistoryPath is the database directory (badger) or JSON file (file).
	HistoryPath string

	// Index configures the vector index backend.
	Index vectorindex.Config
	// Collection is the index collection name. Defaults to DefaultCollection.
	Collection string

	// DocumentsDir holds the raw source documents.
	DocumentsDir string
	// ConverterURL is the optional external conversion service for
	// binary formats. Empty disables binary formats.
	ConverterURL string

	// Chunking parameters. Zero values use the ingest defaults.
	ChunkSize    int
	ChunkOverlap int

	// TopK is the number of chunks retrieved per question.
	TopK int
	// AnswerTimeout bounds the retrieval and generation leg of a query.
	AnswerTimeout time.Duration

	// TelegramToken enables Telegram completion notifications when set.
	TelegramToken string

	// AI configures the embedding and generation endpoints.
	AI *ai.Config
}

// DefaultConfig returns a single node configuration rooted at dataDir.
func DefaultConfig(dataDir string) Config {
	return Config{
		HistoryBackend: HistoryBadger,
		HistoryPath:    dataDir + "/history",
		Index:          vectorindex.DefaultConfig(dataDir + "/index"),
		Collection:     DefaultCollection,
		DocumentsDir:   dataDir + "/documents",
		AnswerTimeout:  orchestrator.DefaultAnswerTimeout,
		AI:             ai.DefaultConfig(),
	}
}

// System is a fully wired question answering system.
type System struct {
	history  storage.HistoryStore
	index    vectorindex.Index
	provider ai.Provider
	blobs    *blob.DirStore
	orch     *orchestrator.Orchestrator
	logger   *slog.Logger
}

// NewSystem wires a System from the configuration. Components are
// closed in reverse order if any later one fails to construct.
func NewSystem(cfg Config) (*System, error) {
	if cfg.Collection == "" {
		cfg.Collection = DefaultCollection
	}
	if cfg.AI == nil {
		cfg.AI = ai.DefaultConfig()
	}

	var history storage.HistoryStore
	var err error
	switch cfg.HistoryBackend {
	case HistoryFile:
		history, err = filestore.OpenStore(cfg.HistoryPath)
	default:
		history, err = badgerstore.OpenStore(cfg.HistoryPath)
	}
	if err != nil {
		return nil, err
	}

	index, err := vectorindex.Open(cfg.Index)
	if err != nil {
		history.Close()
		return nil, err
	}

	provider, err := openai.NewProvider(cfg.AI)
	if err != nil {
		index.Close()
		history.Close()
		return nil, err
	}

	blobs, err := blob.NewDirStore(cfg.DocumentsDir)
	if err != nil {
		provider.Close()
		index.Close()
		history.Close()
		return nil, err
	}

	var converter ingest.Converter = ingest.NewDispatchConverter(nil)
	if cfg.ConverterURL != "" {
		converter = ingest.NewDispatchConverter(ingest.NewRemoteConverter(cfg.ConverterURL))
	}

	var pipelineOpts []ingest.PipelineOption
	if cfg.ChunkSize > 0 {
		pipelineOpts = append(pipelineOpts, ingest.WithChunkSize(cfg.ChunkSize))
	}
	if cfg.ChunkOverlap > 0 {
		pipelineOpts = append(pipelineOpts, ingest.WithChunkOverlap(cfg.ChunkOverlap))
	}
	pipeline := ingest.NewPipeline(converter, provider.Embedder(), pipelineOpts...)

	var retrievalOpts []retrieval.Option
	if cfg.TopK > 0 {
		retrievalOpts = append(retrievalOpts, retrieval.WithTopK(cfg.TopK))
	}
	retriever := retrieval.NewService(provider.Embedder(), index, cfg.Collection, retrievalOpts...)

	var orchOpts []orchestrator.Option
	if cfg.AnswerTimeout > 0 {
		orchOpts = append(orchOpts, orchestrator.WithAnswerTimeout(cfg.AnswerTimeout))
	}
	if cfg.TelegramToken != "" {
		orchOpts = append(orchOpts, orchestrator.WithNotifier(notify.NewTelegram(cfg.TelegramToken)))
	}

	orch, err := orchestrator.New(history, retriever, provider.Generator(),
		pipeline, blobs, index, cfg.Collection, orchOpts...)
	if err != nil {
		provider.Close()
		index.Close()
		history.Close()
		return nil, err
	}

	return &System{
		history:  history,
		index:    index,
		provider: provider,
		blobs:    blobs,
		orch:     orch,
		logger:   slog.Default(),
	}, nil
}

// Orchestrator returns the wired orchestrator.
func (s *System) Orchestrator() *orchestrator.Orchestrator {
	return s.orch
}

// Documents returns the source document store.
func (s *System) Documents() *blob.DirStore {
	return s.blobs
}

// WatchDocuments ingests documents dropped into the documents directory
// until ctx is cancelled. Removals drop the source's chunks from the
// index. Blocks; run it on its own goroutine.
func (s *System) WatchDocuments(ctx context.Context) error {
	watcher, err := blob.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Stop()

	events, err := watcher.Watch(ctx, s.blobs.Dir())
	if err != nil {
		return err
	}

	s.logger.Info("watching documents", "dir", s.blobs.Dir())
	for event := range events {
		switch event.Op {
		case blob.DocumentWritten:
			if _, err := s.orch.Ingest(ctx, event.Name, ""); err != nil {
				s.logger.Error("watch ingestion failed", "name", event.Name, "error", err)
			}
		case blob.DocumentRemoved:
			if _, err := s.orch.DeleteSource(ctx, event.Name); err != nil {
				s.logger.Error("watch delete failed", "name", event.Name, "error", err)
			}
		}
	}
	return nil
}

// Close releases every component.
func (s *System) Close() error {
	s.orch.Release()

	if err := s.provider.Close(); err != nil {
		s.logger.Error("error closing AI provider", "err", err)
	}
	if err := s.index.Close(); err != nil {
		s.logger.Error("error closing vector index", "err", err)
		return err
	}
	if err := s.history.Close(); err != nil {
		s.logger.Error("error closing history store", "err", err)
		return err
	}
	return nil
}
