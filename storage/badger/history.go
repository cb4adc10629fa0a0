// Package badger implements storage.HistoryStore on BadgerDB.
//
// Each turn is one row keyed by (session id as partition, timestamp as sort
// key); listing a session is a prefix scan that returns rows in sort-key
// order. Values are MUS-encoded.
package badger

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/askit/core"
	"github.com/poiesic/askit/storage"
)

// Store implements storage.HistoryStore for BadgerDB.
type Store struct {
	backend *Backend
	idSeq   *badger.Sequence
	logger  *slog.Logger

	// mu serializes appends so per-session timestamps stay strictly increasing.
	mu        sync.Mutex
	lastMicro map[string]int64
}

var _ storage.HistoryStore = (*Store)(nil)

// OpenStore opens a BadgerDB-backed history store at path.
// A corrupt database directory is moved aside and replaced with an empty
// dataset rather than failing startup.
func OpenStore(path string) (storage.HistoryStore, error) {
	logger := slog.Default().With("component", "badger-history")

	backend, err := OpenBackend(path, false)
	if err != nil {
		// Unreadable store: move the damaged directory aside and start empty.
		aside := fmt.Sprintf("%s.corrupt-%d", path, time.Now().UTC().Unix())
		logger.Warn("history database unreadable, starting from empty dataset",
			"path", path, "moved_to", aside, "err", err)
		if mvErr := os.Rename(path, aside); mvErr != nil {
			return nil, err
		}
		backend, err = OpenBackend(path, false)
		if err != nil {
			return nil, err
		}
	}

	return newStore(backend, logger)
}

// NewMemoryStore creates an in-memory history store for testing.
func NewMemoryStore() (storage.HistoryStore, error) {
	backend, err := OpenBackend("", true)
	if err != nil {
		return nil, err
	}
	return newStore(backend, slog.Default().With("component", "badger-history"))
}

func newStore(backend *Backend, logger *slog.Logger) (*Store, error) {
	idSeq, err := backend.GetSequence(turnIDSeq)
	if err != nil {
		backend.Close()
		return nil, err
	}
	return &Store{
		backend:   backend,
		idSeq:     idSeq,
		logger:    logger,
		lastMicro: make(map[string]int64),
	}, nil
}

// Append stores a new turn under a (session, timestamp, seq) composite key.
// The sequence component disambiguates equal clock readings so two appends
// in the same microsecond still sort in insertion order.
func (s *Store) Append(ctx context.Context, sessionID string, role core.Role, content string) (core.Turn, error) {
	turn := core.Turn{SessionID: sessionID, Role: role, Content: content}
	if err := core.ValidateTurn(&turn); err != nil {
		return core.Turn{}, err
	}

	s.mu.Lock()
	micro := time.Now().UTC().UnixMicro()
	if last := s.lastMicro[sessionID]; micro <= last {
		micro = last + 1
	}
	s.lastMicro[sessionID] = micro
	s.mu.Unlock()

	seq, err := s.idSeq.Next()
	if err != nil {
		return core.Turn{}, err
	}

	turn.Timestamp = time.UnixMicro(micro).UTC()

	err = s.backend.WithTx(func(tx *badger.Txn) error {
		key := makeTurnKey(sessionID, micro, seq)
		if err := tx.Set(key, storage.MarshalTurn(&turn)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return core.Turn{}, err
	}
	return turn, nil
}

// ListBySession issues a range query over the session partition and returns
// rows in ascending sort-key order.
func (s *Store) ListBySession(ctx context.Context, sessionID string) ([]core.Turn, error) {
	turns := make([]core.Turn, 0)

	err := s.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeSessionPrefix(sessionID)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			err := iter.Item().Value(func(val []byte) error {
				turn, err := storage.UnmarshalTurn(val)
				if err != nil {
					return fmt.Errorf("%w: %w", storage.ErrSerializationFailed, err)
				}
				turns = append(turns, *turn)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return turns, nil
}

// Close releases the ID sequence and the backing database.
func (s *Store) Close() error {
	if err := s.idSeq.Release(); err != nil {
		s.logger.Warn("error releasing turn sequence", "err", err)
	}
	return s.backend.Close()
}
