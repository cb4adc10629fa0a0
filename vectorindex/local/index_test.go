package local

import (
	"context"
	"testing"

	"github.com/poiesic/askit/core"
)

func newTestIndex(t *testing.T) *Index {
	t.Helper()
	idx, err := NewMemoryIndex()
	if err != nil {
		t.Fatalf("NewMemoryIndex: %v", err)
	}
	t.Cleanup(func() { idx.Close() })
	return idx
}

func chunk(sourceID string, index int, text string, vector []float32) core.DocumentChunk {
	return core.DocumentChunk{SourceID: sourceID, Index: index, Text: text, Vector: vector}
}

func TestUpsertAndSearch(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	err := idx.Upsert(ctx, "docs", []core.DocumentChunk{
		chunk("a.txt", 0, "close match", []float32{1, 0, 0}),
		chunk("a.txt", 1, "far match", []float32{0, 1, 0}),
		chunk("b.txt", 0, "middle match", []float32{0.7, 0.7, 0}),
	})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	matches, err := idx.Search(ctx, "docs", []float32{1, 0, 0}, 2)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}
	if matches[0].Text != "close match" {
		t.Errorf("expected best match first, got %q", matches[0].Text)
	}
	if matches[1].Text != "middle match" {
		t.Errorf("expected middle match second, got %q", matches[1].Text)
	}
	if matches[0].Score <= matches[1].Score {
		t.Errorf("scores not descending: %v, %v", matches[0].Score, matches[1].Score)
	}
}

func TestUpsertOverwritesSameSource(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	first := []core.DocumentChunk{
		chunk("doc.txt", 0, "version one", []float32{1, 0}),
	}
	if err := idx.Upsert(ctx, "docs", first); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	second := []core.DocumentChunk{
		chunk("doc.txt", 0, "version two", []float32{1, 0}),
	}
	if err := idx.Upsert(ctx, "docs", second); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	matches, err := idx.Search(ctx, "docs", []float32{1, 0}, 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("expected 1 match after re-upsert, got %d", len(matches))
	}
	if matches[0].Text != "version two" {
		t.Errorf("expected updated text, got %q", matches[0].Text)
	}
}

func TestDeleteBySource(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	err := idx.Upsert(ctx, "docs", []core.DocumentChunk{
		chunk("keep.txt", 0, "keep zero", []float32{1, 0}),
		chunk("drop.txt", 0, "drop zero", []float32{0, 1}),
		chunk("drop.txt", 1, "drop one", []float32{0, 1}),
	})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	removed, err := idx.DeleteBySource(ctx, "docs", "drop.txt")
	if err != nil {
		t.Fatalf("DeleteBySource: %v", err)
	}
	if removed != 2 {
		t.Errorf("expected 2 removed, got %d", removed)
	}

	matches, err := idx.Search(ctx, "docs", []float32{0, 1}, 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	for _, m := range matches {
		if m.SourceID == "drop.txt" {
			t.Errorf("deleted chunk still searchable: %+v", m)
		}
	}

	// Deleting an unknown source is not an error.
	removed, err = idx.DeleteBySource(ctx, "docs", "missing.txt")
	if err != nil {
		t.Fatalf("DeleteBySource missing: %v", err)
	}
	if removed != 0 {
		t.Errorf("expected 0 removed for unknown source, got %d", removed)
	}
}

func TestCollectionsAreIsolated(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	if err := idx.Upsert(ctx, "docs", []core.DocumentChunk{
		chunk("a.txt", 0, "in docs", []float32{1, 0}),
	}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if err := idx.Upsert(ctx, "doc", []core.DocumentChunk{
		chunk("b.txt", 0, "in doc", []float32{1, 0}),
	}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	matches, err := idx.Search(ctx, "doc", []float32{1, 0}, 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(matches) != 1 || matches[0].Text != "in doc" {
		t.Errorf("collection prefix leaked: %+v", matches)
	}
}

func TestSearchValidation(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	if _, err := idx.Search(ctx, "", []float32{1}, 5); err != ErrEmptyCollection {
		t.Errorf("expected ErrEmptyCollection, got %v", err)
	}
	if _, err := idx.Search(ctx, "docs", nil, 5); err != ErrEmptyVector {
		t.Errorf("expected ErrEmptyVector, got %v", err)
	}

	matches, err := idx.Search(ctx, "docs", []float32{1}, 0)
	if err != nil {
		t.Fatalf("Search k=0: %v", err)
	}
	if matches != nil {
		t.Errorf("expected nil matches for k=0, got %+v", matches)
	}
}

func TestLargeBatchUpsert(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	chunks := make([]core.DocumentChunk, 200)
	for i := range chunks {
		chunks[i] = chunk("big.txt", i, "chunk", []float32{float32(i), 1})
	}
	if err := idx.Upsert(ctx, "docs", chunks); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	matches, err := idx.Search(ctx, "docs", []float32{1, 0}, 500)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(matches) != 200 {
		t.Errorf("expected 200 matches, got %d", len(matches))
	}
}
