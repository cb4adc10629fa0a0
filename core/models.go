package core

import (
	"encoding/binary"
	"strconv"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for indexed entities.
// It is generated using content-based hashing.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// ChunkID generates the deterministic index ID for a chunk of a source
// document. Re-ingesting the same source with the same chunking configuration
// produces the same IDs, so an upsert overwrites instead of duplicating.
func ChunkID(sourceID string, index int) ID {
	return IDFromContent(sourceID + "#" + strconv.Itoa(index))
}

// Role identifies the author of a conversation turn.
type Role int

const (
	// RoleUser represents the human asking questions.
	RoleUser Role = iota + 1
	// RoleAssistant represents the answering model.
	RoleAssistant
)

// String returns the wire name of the role.
func (r Role) String() string {
	switch r {
	case RoleUser:
		return "user"
	case RoleAssistant:
		return "assistant"
	default:
		return "unknown"
	}
}

// ParseRole converts a wire name back into a Role.
// Returns ErrInvalidRole for anything else.
func ParseRole(s string) (Role, error) {
	switch s {
	case "user":
		return RoleUser, nil
	case "assistant":
		return RoleAssistant, nil
	default:
		return 0, ErrInvalidRole
	}
}

// Turn is a single message in a conversation session.
// Turns are append-only: once stored they are never mutated or reordered.
type Turn struct {
	SessionID string
	Role      Role
	Content   string
	Timestamp time.Time // Assigned by the history store at append time
}

// DocumentChunk is the unit of embedding and retrieval: a bounded slice of a
// source document's text with its position and embedding vector.
type DocumentChunk struct {
	SourceID string // Originating file name/key
	Index    int    // Contiguous from 0 within one source for one ingestion run
	Text     string
	Vector   []float32 // Length fixed by the embedding model
}

// Match is a retrieval hit: chunk text with its similarity score.
// Search results are ordered by descending score.
type Match struct {
	SourceID string
	Index    int
	Text     string
	Score    float32
}

// JobStatus tracks an ingestion job through its lifecycle.
type JobStatus int

const (
	JobAccepted JobStatus = iota + 1
	JobDownloading
	JobProcessing
	JobCommitting
	JobSucceeded
	JobFailed
)

// String returns the wire name of the status.
func (s JobStatus) String() string {
	switch s {
	case JobAccepted:
		return "accepted"
	case JobDownloading:
		return "downloading"
	case JobProcessing:
		return "processing"
	case JobCommitting:
		return "committing"
	case JobSucceeded:
		return "succeeded"
	case JobFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether the status is a terminal state.
func (s JobStatus) Terminal() bool {
	return s == JobSucceeded || s == JobFailed
}

// IngestionJob is the transient state of one background ingestion run.
// Jobs live in process memory only; re-triggering the same FileRef after a
// crash is safe because chunk IDs are content-derived.
type IngestionJob struct {
	ID           string
	FileRef      string
	RequesterRef string // Optional identity to notify on completion
	Status       JobStatus
	ErrorDetail  string
	AcceptedAt   time.Time
	FinishedAt   time.Time
	Chunks       int // Number of chunks committed (0 for a no-op source)
}

// SourceReport is the per-file outcome of a batch ingestion.
type SourceReport struct {
	SourceID string
	Chunks   int
	Err      error
}
