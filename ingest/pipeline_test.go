package ingest

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/poiesic/askit/ai/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessProducesContiguousChunks(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	pipeline := NewPipeline(TextConverter{}, embedder, WithChunkSize(50), WithChunkOverlap(10))

	text := strings.Repeat("the quick brown fox ", 20)
	chunks, err := pipeline.Process(context.Background(), []byte(text), "fox.txt")
	require.NoError(t, err)
	require.NotEmpty(t, chunks)

	for i, c := range chunks {
		assert.Equal(t, "fox.txt", c.SourceID)
		assert.Equal(t, i, c.Index)
		assert.NotEmpty(t, c.Text)
		assert.NotEmpty(t, c.Vector)
	}
	assert.Equal(t, 1, embedder.CallCount())
}

func TestProcessEmptyDocument(t *testing.T) {
	pipeline := NewPipeline(TextConverter{}, mock.NewMockEmbedder())

	chunks, err := pipeline.Process(context.Background(), []byte("   \n  "), "empty.txt")
	require.NoError(t, err)
	assert.Nil(t, chunks)
}

func TestProcessConversionError(t *testing.T) {
	pipeline := NewPipeline(TextConverter{}, mock.NewMockEmbedder())

	_, err := pipeline.Process(context.Background(), []byte("%PDF-1.4"), "doc.pdf")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestProcessEmbedError(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, errors.New("embedding service down")
	}
	pipeline := NewPipeline(TextConverter{}, embedder)

	_, err := pipeline.Process(context.Background(), []byte("some text"), "doc.txt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "embedding service down")
}

func TestProcessBatchIsolatesFailures(t *testing.T) {
	pipeline := NewPipeline(TextConverter{}, mock.NewMockEmbedder())

	sources := []Source{
		{ID: "good.txt", Raw: []byte("first document")},
		{ID: "bad.pdf", Raw: []byte("%PDF-1.4")},
		{ID: "also-good.txt", Raw: []byte("second document")},
	}

	results, reports := pipeline.ProcessBatch(context.Background(), sources)

	require.Len(t, results, 2)
	require.Len(t, reports, 3)

	assert.Equal(t, "good.txt", reports[0].SourceID)
	assert.NoError(t, reports[0].Err)
	assert.Equal(t, 1, reports[0].Chunks)

	assert.Equal(t, "bad.pdf", reports[1].SourceID)
	assert.Error(t, reports[1].Err)

	assert.Equal(t, "also-good.txt", reports[2].SourceID)
	assert.NoError(t, reports[2].Err)
}

func TestTextConverterRejectsBinary(t *testing.T) {
	conv := TextConverter{}

	_, err := conv.Convert(context.Background(), []byte{0xff, 0xfe, 0x00, 0x80}, "garbage.txt")
	assert.ErrorIs(t, err, ErrConversionFailed)
}

func TestDispatchConverterWithoutRemote(t *testing.T) {
	conv := NewDispatchConverter(nil)

	text, err := conv.Convert(context.Background(), []byte("hello"), "note.md")
	require.NoError(t, err)
	assert.Equal(t, "hello", text)

	_, err = conv.Convert(context.Background(), []byte("binary"), "doc.docx")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}
