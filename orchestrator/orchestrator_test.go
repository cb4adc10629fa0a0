package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/poiesic/askit/ai/mock"
	"github.com/poiesic/askit/blob"
	"github.com/poiesic/askit/core"
	"github.com/poiesic/askit/ingest"
	"github.com/poiesic/askit/storage"
	"github.com/poiesic/askit/storage/badger"
	"github.com/poiesic/askit/vectorindex"
	"github.com/poiesic/askit/vectorindex/local"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubContext is a fixed ContextProvider.
type stubContext struct {
	text string
	err  error
}

func (s *stubContext) Context(ctx context.Context, query string) (string, error) {
	return s.text, s.err
}

// captureNotifier records notifications for assertions.
type captureNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (c *captureNotifier) Notify(ctx context.Context, ref, message string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, message)
	return nil
}

func (c *captureNotifier) all() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.messages...)
}

type fixture struct {
	orch     *Orchestrator
	history  storage.HistoryStore
	blobs    *blob.DirStore
	index    vectorindex.Index
	notifier *captureNotifier
	gen      *mock.MockGenerator
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()

	history, err := badger.NewMemoryStore()
	require.NoError(t, err)
	t.Cleanup(func() { history.Close() })

	index, err := local.NewMemoryIndex()
	require.NoError(t, err)
	t.Cleanup(func() { index.Close() })

	blobs, err := blob.NewDirStore(t.TempDir())
	require.NoError(t, err)

	gen := mock.NewMockGenerator()
	notifier := &captureNotifier{}
	pipeline := ingest.NewPipeline(ingest.TextConverter{}, mock.NewMockEmbedder(),
		ingest.WithChunkSize(50), ingest.WithChunkOverlap(10))

	allOpts := append([]Option{WithNotifier(notifier), WithPoolSize(2)}, opts...)
	orch, err := New(history, &stubContext{text: "some context"}, gen,
		pipeline, blobs, index, "docs", allOpts...)
	require.NoError(t, err)
	t.Cleanup(orch.Release)

	return &fixture{
		orch:     orch,
		history:  history,
		blobs:    blobs,
		index:    index,
		notifier: notifier,
		gen:      gen,
	}
}

func waitForJob(t *testing.T, orch *Orchestrator, jobID string) core.IngestionJob {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		job, err := orch.Job(jobID)
		require.NoError(t, err)
		if job.Status.Terminal() {
			return job
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("job did not reach a terminal state")
	return core.IngestionJob{}
}

func TestQueryTwoTurnCycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	answer, err := f.orch.Query(ctx, "session-1", "what is in the docs?")
	require.NoError(t, err)
	assert.NotEmpty(t, answer)

	turns, err := f.orch.History(ctx, "session-1")
	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Equal(t, core.RoleUser, turns[0].Role)
	assert.Equal(t, "what is in the docs?", turns[0].Content)
	assert.Equal(t, core.RoleAssistant, turns[1].Role)
	assert.Equal(t, answer, turns[1].Content)
}

func TestQueryValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.orch.Query(ctx, "", "question")
	assert.ErrorIs(t, err, core.ErrValidation)

	_, err = f.orch.Query(ctx, "session", "")
	assert.ErrorIs(t, err, core.ErrValidation)

	_, err = f.orch.History(ctx, "")
	assert.ErrorIs(t, err, core.ErrValidation)
}

func TestQueryUserTurnSurvivesGeneratorFailure(t *testing.T) {
	f := newFixture(t)
	f.gen.GenerateFunc = func(ctx context.Context, query, docContext string) (string, error) {
		return "", errors.New("model crashed")
	}

	ctx := context.Background()
	_, err := f.orch.Query(ctx, "session-1", "doomed question")
	assert.Error(t, err)

	turns, err := f.orch.History(ctx, "session-1")
	require.NoError(t, err)
	require.Len(t, turns, 1)
	assert.Equal(t, core.RoleUser, turns[0].Role)
	assert.Equal(t, "doomed question", turns[0].Content)
}

func TestQueryTimeoutIsUpstreamUnavailable(t *testing.T) {
	f := newFixture(t, WithAnswerTimeout(50*time.Millisecond))
	f.gen.GenerateFunc = func(ctx context.Context, query, docContext string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}

	_, err := f.orch.Query(context.Background(), "session-1", "slow question")
	assert.ErrorIs(t, err, core.ErrUpstreamUnavailable)
}

func TestQueryGeneratorErrorClassification(t *testing.T) {
	tests := []struct {
		name    string
		genErr  error
		wantErr error
	}{
		{
			name:    "connectivity failure is upstream unavailable",
			genErr:  &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")},
			wantErr: core.ErrUpstreamUnavailable,
		},
		{
			name:    "deadline expiry is upstream unavailable",
			genErr:  fmt.Errorf("calling model: %w", context.DeadlineExceeded),
			wantErr: core.ErrUpstreamUnavailable,
		},
		{
			name:    "generation fault is internal",
			genErr:  errors.New("nil prompt template"),
			wantErr: core.ErrBackendInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.gen.GenerateFunc = func(ctx context.Context, query, docContext string) (string, error) {
				return "", tt.genErr
			}

			_, err := f.orch.Query(context.Background(), "session-1", "question")
			assert.ErrorIs(t, err, tt.wantErr)
			if tt.wantErr == core.ErrUpstreamUnavailable {
				assert.NotErrorIs(t, err, core.ErrBackendInternal)
			} else {
				assert.NotErrorIs(t, err, core.ErrUpstreamUnavailable)
			}
		})
	}
}

func TestQueryRetrievalFailureIsUpstreamUnavailable(t *testing.T) {
	f := newFixture(t)
	history := f.history

	embedDown := &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}
	orch, err := New(history, &stubContext{err: embedDown},
		f.gen, nil, nil, nil, "docs")
	require.NoError(t, err)
	defer orch.Release()

	_, err = orch.Query(context.Background(), "session-1", "question")
	assert.ErrorIs(t, err, core.ErrUpstreamUnavailable)
}

func TestIngestLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.blobs.Put(ctx, "notes.txt", []byte("the capital of France is Paris")))

	jobID, err := f.orch.Ingest(ctx, "notes.txt", "chat-42")
	require.NoError(t, err)
	require.NotEmpty(t, jobID)

	job := waitForJob(t, f.orch, jobID)
	assert.Equal(t, core.JobSucceeded, job.Status)
	assert.Greater(t, job.Chunks, 0)
	assert.False(t, job.FinishedAt.IsZero())

	// Committed chunks are searchable.
	matches, err := f.index.Search(ctx, "docs", make([]float32, mock.VectorDim), 10)
	require.NoError(t, err)
	assert.NotEmpty(t, matches)

	messages := f.notifier.all()
	require.Len(t, messages, 1)
	assert.Contains(t, messages[0], "notes.txt")
	assert.Contains(t, messages[0], "finished")
}

func TestIngestMissingFileFails(t *testing.T) {
	f := newFixture(t)

	jobID, err := f.orch.Ingest(context.Background(), "ghost.txt", "chat-42")
	require.NoError(t, err)

	job := waitForJob(t, f.orch, jobID)
	assert.Equal(t, core.JobFailed, job.Status)
	assert.Contains(t, job.ErrorDetail, "fetching document")

	messages := f.notifier.all()
	require.Len(t, messages, 1)
	assert.Contains(t, messages[0], "failed")
}

func TestIngestValidation(t *testing.T) {
	f := newFixture(t)

	_, err := f.orch.Ingest(context.Background(), "", "")
	assert.ErrorIs(t, err, core.ErrValidation)
}

func TestJobNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.orch.Job("no-such-job")
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestListAndDeleteSources(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.blobs.Put(ctx, "a.txt", []byte("alpha document")))

	jobID, err := f.orch.Ingest(ctx, "a.txt", "")
	require.NoError(t, err)
	waitForJob(t, f.orch, jobID)

	names, err := f.orch.ListSources(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt"}, names)

	result, err := f.orch.DeleteSource(ctx, "a.txt")
	require.NoError(t, err)
	assert.True(t, result.FileRemoved)
	assert.NoError(t, result.IndexErr)
	assert.Greater(t, result.ChunksRemoved, 0)

	names, err = f.orch.ListSources(ctx)
	require.NoError(t, err)
	assert.Empty(t, names)

	matches, err := f.index.Search(ctx, "docs", make([]float32, mock.VectorDim), 10)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestDeleteSourceReportsPartialFailure(t *testing.T) {
	f := newFixture(t)

	result, err := f.orch.DeleteSource(context.Background(), "never-stored.txt")
	require.NoError(t, err)
	assert.False(t, result.FileRemoved)
	assert.Error(t, result.FileErr)
	assert.NoError(t, result.IndexErr)
	assert.Zero(t, result.ChunksRemoved)
}
