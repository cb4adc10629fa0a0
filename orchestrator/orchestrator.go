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

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/askit/ai"
	"github.com/poiesic/askit/blob"
	"github.com/poiesic/askit/core"
	"github.com/poiesic/askit/ingest"
	"github.com/poiesic/askit/notify"
	"github.com/poiesic/askit/storage"
	"github.com/poiesic/askit/vectorindex"
)

// DefaultAnswerTimeout bounds the retrieval and generation leg of a query.
const DefaultAnswerTimeout = 60 * time.Second

// Retry parameters for committing chunks to the vector index.
const (
	commitMaxAttempts = 3
	commitBaseDelay   = 500 * time.Millisecond
)

// ContextProvider supplies the document context for a question.
// Implemented by retrieval.Service.
type ContextProvider interface {
	Context(ctx context.Context, query string) (string, error)
}

// Orchestrator runs the question answering and ingestion flows.
type Orchestrator struct {
	history    storage.HistoryStore
	retrieval  ContextProvider
	generator  ai.Generator
	pipeline   *ingest.Pipeline
	blobs      blob.Store
	index      vectorindex.Index
	collection string
	notifier   notify.Notifier

	jobPool       *ants.Pool
	jobs          *jobRegistry
	answerTimeout time.Duration
	logger        *slog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator) error

// WithAnswerTimeout bounds how long a single query may spend on
// retrieval and generation combined.
func WithAnswerTimeout(d time.Duration) Option {
	return func(o *Orchestrator) error {
		if d > 0 {
			o.answerTimeout = d
		}
		return nil
	}
}

// WithPoolSize sets the worker pool size for background ingestion.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(o *Orchestrator) error {
		if size < 1 {
			size = 1
		}
		if o.jobPool != nil {
			o.jobPool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		o.jobPool = pool
		return nil
	}
}

// WithNotifier sets the completion notifier. Default is notify.Noop.
func WithNotifier(n notify.Notifier) Option {
	return func(o *Orchestrator) error {
		if n != nil {
			o.notifier = n
		}
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) error {
		if logger == nil {
			logger = slog.Default()
		}
		o.logger = logger
		return nil
	}
}

// New creates an Orchestrator over the given components. blobs, pipeline,
// and index may be nil for a query-only deployment; Ingest then reports
// backend errors.
func New(
	history storage.HistoryStore,
	retrieval ContextProvider,
	generator ai.Generator,
	pipeline *ingest.Pipeline,
	blobs blob.Store,
	index vectorindex.Index,
	collection string,
	opts ...Option,
) (*Orchestrator, error) {
	if history == nil {
		return nil, ErrHistoryRequired
	}
	if retrieval == nil {
		return nil, ErrRetrievalRequired
	}
	if generator == nil {
		return nil, ErrGeneratorRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	o := &Orchestrator{
		history:       history,
		retrieval:     retrieval,
		generator:     generator,
		pipeline:      pipeline,
		blobs:         blobs,
		index:         index,
		collection:    collection,
		notifier:      notify.Noop{},
		jobPool:       pool,
		jobs:          newJobRegistry(),
		answerTimeout: DefaultAnswerTimeout,
		logger:        slog.Default().With("component", "orchestrator"),
	}

	for _, opt := range opts {
		if optErr := opt(o); optErr != nil {
			o.Release()
			return nil, optErr
		}
	}

	return o, nil
}

// classifyAnswerError maps a retrieval or generation failure to the
// public error taxonomy. A deadline expiry or a network-level failure
// means the answering services are unreachable; anything else is an
// internal fault in the answering path itself.
func classifyAnswerError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return core.ErrUpstreamUnavailable
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return core.ErrUpstreamUnavailable
	}
	return core.ErrBackendInternal
}

// Query answers a question in the context of a session.
//
// The user turn is persisted before any answering work, so a failed
// answer never loses the question. Retrieval and generation run under
// one shared deadline; timeouts and connectivity failures on that leg
// are reported as core.ErrUpstreamUnavailable, any other failure as
// core.ErrBackendInternal.
func (o *Orchestrator) Query(ctx context.Context, sessionID, query string) (string, error) {
	if err := core.ValidateQuery(sessionID, query); err != nil {
		return "", err
	}

	if _, err := o.history.Append(ctx, sessionID, core.RoleUser, query); err != nil {
		return "", fmt.Errorf("%w: saving question: %v", core.ErrBackendInternal, err)
	}

	answerCtx, cancel := context.WithTimeout(ctx, o.answerTimeout)
	defer cancel()

	docContext, err := o.retrieval.Context(answerCtx, query)
	if err != nil {
		return "", fmt.Errorf("%w: %v", classifyAnswerError(err), err)
	}

	answer, err := o.generator.Generate(answerCtx, query, docContext)
	if err != nil {
		return "", fmt.Errorf("%w: %v", classifyAnswerError(err), err)
	}

	if _, err := o.history.Append(ctx, sessionID, core.RoleAssistant, answer); err != nil {
		return "", fmt.Errorf("%w: saving answer: %v", core.ErrBackendInternal, err)
	}

	return answer, nil
}

// History returns the session's turns in conversation order.
func (o *Orchestrator) History(ctx context.Context, sessionID string) ([]core.Turn, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("%w: %v", core.ErrValidation, core.ErrEmptySessionID)
	}
	turns, err := o.history.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrBackendInternal, err)
	}
	return turns, nil
}

// Ingest accepts a background ingestion job for the named document and
// returns its job ID. requesterRef optionally identifies who to notify
// when the job finishes.
func (o *Orchestrator) Ingest(ctx context.Context, fileRef, requesterRef string) (string, error) {
	if fileRef == "" {
		return "", fmt.Errorf("%w: %v", core.ErrValidation, core.ErrEmptyFileRef)
	}
	if o.blobs == nil || o.pipeline == nil || o.index == nil {
		return "", fmt.Errorf("%w: ingestion is not configured", core.ErrBackendInternal)
	}

	jobID := uuid.NewString()
	o.jobs.register(jobID, fileRef, requesterRef)

	if err := o.jobPool.Submit(func() { o.runJob(jobID, fileRef, requesterRef) }); err != nil {
		o.jobs.remove(jobID)
		return "", fmt.Errorf("%w: %v", core.ErrBackendInternal, err)
	}

	o.logger.Info("ingestion accepted", "job_id", jobID, "file", fileRef)
	return jobID, nil
}

// runJob executes one ingestion job to a terminal state.
// Jobs outlive the request that accepted them, so they run on a
// background context.
func (o *Orchestrator) runJob(jobID, fileRef, requesterRef string) {
	ctx := context.Background()

	o.jobs.setStatus(jobID, core.JobDownloading)
	raw, err := o.blobs.Get(ctx, fileRef)
	if err != nil {
		o.finishJob(ctx, jobID, fileRef, requesterRef, 0, fmt.Errorf("fetching document: %w", err))
		return
	}

	o.jobs.setStatus(jobID, core.JobProcessing)
	chunks, err := o.pipeline.Process(ctx, raw, fileRef)
	if err != nil {
		o.finishJob(ctx, jobID, fileRef, requesterRef, 0, err)
		return
	}

	o.jobs.setStatus(jobID, core.JobCommitting)

	// Remove stale chunks first: if the document shrank since the last
	// ingestion, leftover high-index chunks would otherwise survive.
	if _, err := o.index.DeleteBySource(ctx, o.collection, fileRef); err != nil {
		o.logger.Warn("could not clear previous chunks", "file", fileRef, "error", err)
	}

	err = RetryWithBackoff(ctx, func() error {
		return o.index.Upsert(ctx, o.collection, chunks)
	}, commitMaxAttempts, commitBaseDelay)
	if err != nil {
		o.finishJob(ctx, jobID, fileRef, requesterRef, 0, fmt.Errorf("committing chunks: %w", err))
		return
	}

	o.finishJob(ctx, jobID, fileRef, requesterRef, len(chunks), nil)
}

// finishJob records the terminal state and notifies the requester.
func (o *Orchestrator) finishJob(ctx context.Context, jobID, fileRef, requesterRef string, chunks int, jobErr error) {
	var message string
	if jobErr != nil {
		o.jobs.fail(jobID, jobErr.Error())
		o.logger.Error("ingestion failed", "job_id", jobID, "file", fileRef, "error", jobErr)
		message = fmt.Sprintf("Ingestion of %s failed: %v", fileRef, jobErr)
	} else {
		o.jobs.succeed(jobID, chunks)
		o.logger.Info("ingestion finished", "job_id", jobID, "file", fileRef, "chunks", chunks)
		message = fmt.Sprintf("Ingestion of %s finished: %d chunks indexed", fileRef, chunks)
	}

	if requesterRef == "" {
		return
	}
	if err := o.notifier.Notify(ctx, requesterRef, message); err != nil {
		o.logger.Warn("notification failed", "job_id", jobID, "error", err)
	}
}

// Job returns the current state of an ingestion job.
func (o *Orchestrator) Job(id string) (core.IngestionJob, error) {
	job, ok := o.jobs.get(id)
	if !ok {
		return core.IngestionJob{}, ErrJobNotFound
	}
	return job, nil
}

// ListSources returns the names of all stored source documents.
func (o *Orchestrator) ListSources(ctx context.Context) ([]string, error) {
	if o.blobs == nil {
		return nil, fmt.Errorf("%w: document store is not configured", core.ErrBackendInternal)
	}
	names, err := o.blobs.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrBackendInternal, err)
	}
	return names, nil
}

// DeleteResult reports the independent outcomes of removing a source
// document and its indexed chunks.
type DeleteResult struct {
	FileRemoved   bool
	FileErr       error
	ChunksRemoved int // -1 when the backend cannot report a count
	IndexErr      error
}

// DeleteSource removes the named document from the blob store and its
// chunks from the vector index. The two removals are independent; each
// outcome is reported separately so a partial failure is visible.
func (o *Orchestrator) DeleteSource(ctx context.Context, name string) (DeleteResult, error) {
	if name == "" {
		return DeleteResult{}, fmt.Errorf("%w: %v", core.ErrValidation, core.ErrEmptyFileRef)
	}
	if o.blobs == nil || o.index == nil {
		return DeleteResult{}, fmt.Errorf("%w: ingestion is not configured", core.ErrBackendInternal)
	}

	var result DeleteResult

	result.FileErr = o.blobs.Delete(ctx, name)
	result.FileRemoved = result.FileErr == nil

	result.ChunksRemoved, result.IndexErr = o.index.DeleteBySource(ctx, o.collection, name)

	o.logger.Info("source deleted", "name", name,
		"file_removed", result.FileRemoved, "chunks_removed", result.ChunksRemoved)
	return result, nil
}

// Release stops the worker pool. In-flight jobs run to completion;
// queued jobs are dropped. The orchestrator must not be used afterwards.
func (o *Orchestrator) Release() {
	if o.jobPool != nil {
		o.jobPool.Release()
	}
}
