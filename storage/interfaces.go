package storage

import (
	"context"

	"github.com/poiesic/askit/core"
)

// HistoryStore is a durable, append-only log of conversation turns grouped
// by session. Implementations must be thread-safe and must serialize writes
// per session so concurrent appends are never silently dropped.
type HistoryStore interface {
	// Append stores a new turn for the session and returns it with the
	// store-assigned timestamp. Timestamps are strictly increasing within
	// a session. Turns are never mutated, reordered, or deduplicated.
	Append(ctx context.Context, sessionID string, role core.Role, content string) (core.Turn, error)

	// ListBySession returns the session's turns ordered by ascending
	// timestamp. An unknown session yields an empty slice, not an error.
	ListBySession(ctx context.Context, sessionID string) ([]core.Turn, error)

	// Close closes the backing store and releases resources.
	Close() error
}
