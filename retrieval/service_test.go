package retrieval

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/poiesic/askit/ai/mock"
	"github.com/poiesic/askit/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubIndex is a minimal vectorindex.Index for service tests.
type stubIndex struct {
	matches   []core.Match
	searchErr error
	gotK      int
}

func (s *stubIndex) Upsert(ctx context.Context, collection string, chunks []core.DocumentChunk) error {
	return nil
}

func (s *stubIndex) DeleteBySource(ctx context.Context, collection, sourceID string) (int, error) {
	return 0, nil
}

func (s *stubIndex) Search(ctx context.Context, collection string, vector []float32, k int) ([]core.Match, error) {
	s.gotK = k
	if s.searchErr != nil {
		return nil, s.searchErr
	}
	return s.matches, nil
}

func (s *stubIndex) Close() error { return nil }

func TestContextJoinsMatches(t *testing.T) {
	index := &stubIndex{matches: []core.Match{
		{Text: "first chunk", Score: 0.9},
		{Text: "second chunk", Score: 0.8},
	}}
	svc := NewService(mock.NewMockEmbedder(), index, "docs")

	got, err := svc.Context(context.Background(), "what is this about?")
	require.NoError(t, err)
	assert.Equal(t, "first chunk"+Separator+"second chunk", got)
	assert.Equal(t, DefaultTopK, index.gotK)
}

func TestContextNoMatches(t *testing.T) {
	svc := NewService(mock.NewMockEmbedder(), &stubIndex{}, "docs")

	got, err := svc.Context(context.Background(), "anything")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestContextDegradesOnIndexFailure(t *testing.T) {
	index := &stubIndex{searchErr: errors.New("connection refused")}
	svc := NewService(mock.NewMockEmbedder(), index, "docs")

	got, err := svc.Context(context.Background(), "anything")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestContextEmbeddingFailureIsAnError(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return nil, errors.New("model not loaded")
	}
	svc := NewService(embedder, &stubIndex{}, "docs")

	_, err := svc.Context(context.Background(), "anything")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "model not loaded"))
}

func TestWithTopK(t *testing.T) {
	index := &stubIndex{}
	svc := NewService(mock.NewMockEmbedder(), index, "docs", WithTopK(3))

	_, err := svc.Context(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, 3, index.gotK)
}
