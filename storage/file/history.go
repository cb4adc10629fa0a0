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


// Package file implements storage.HistoryStore on a single JSON document.
//
// Every append re-reads the document, appends the turn, and rewrites the
// whole file. A process-wide mutex serializes writers; concurrent writers in
// separate processes may lose updates. That limitation is documented, not
// fixed: this backend targets single-process local deployments.
package file

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/poiesic/askit/core"
	"github.com/poiesic/askit/storage"
)

// turnDoc is the JSON representation of one stored turn.
type turnDoc struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Store implements storage.HistoryStore backed by one JSON file.
type Store struct {
	path   string
	mu     sync.Mutex
	closed bool
	logger *slog.Logger
}

var _ storage.HistoryStore = (*Store)(nil)

// OpenStore opens (or initializes) a file-backed history store at path.
// A missing, unreadable, or corrupt file is treated as an empty dataset.
func OpenStore(path string) (storage.HistoryStore, error) {
	s := &Store{
		path:   path,
		logger: slog.Default().With("component", "file-history"),
	}

	// Probe the existing document once so corruption is reported at startup
	// instead of on the first query.
	if _, err := os.Stat(path); err == nil {
		if _, loadErr := s.load(); loadErr != nil {
			s.logger.Warn("history file unreadable, starting from empty dataset",
				"path", path, "err", loadErr)
		}
	}

	return s, nil
}

// load reads the full session map from disk.
// Any read or decode failure yields an empty dataset.
func (s *Store) load() (map[string][]turnDoc, error) {
	data := make(map[string][]turnDoc)

	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return data, nil
		}
		return data, err
	}

	if len(raw) == 0 {
		return data, nil
	}

	if err := json.Unmarshal(raw, &data); err != nil {
		return make(map[string][]turnDoc), err
	}
	return data, nil
}

// save rewrites the full session map. The write goes through a temp file and
// rename so a crash mid-write cannot leave a half-written document behind.
func (s *Store) save(data map[string][]turnDoc) error {
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".history-*.json")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}

// Append stores a new turn, assigning a timestamp that is strictly greater
// than the session's previous one.
func (s *Store) Append(ctx context.Context, sessionID string, role core.Role, content string) (core.Turn, error) {
	turn := core.Turn{SessionID: sessionID, Role: role, Content: content}
	if err := core.ValidateTurn(&turn); err != nil {
		return core.Turn{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return core.Turn{}, storage.ErrStorageClosed
	}

	data, err := s.load()
	if err != nil {
		// Corrupt document mid-flight: keep serving, but say so.
		s.logger.Warn("history file unreadable on append, restarting from empty dataset", "err", err)
	}

	ts := time.Now().UTC()
	if turns := data[sessionID]; len(turns) > 0 {
		if last := turns[len(turns)-1].Timestamp; !ts.After(last) {
			ts = last.Add(time.Microsecond)
		}
	}
	turn.Timestamp = ts

	data[sessionID] = append(data[sessionID], turnDoc{
		Role:      role.String(),
		Content:   content,
		Timestamp: ts,
	})

	if err := s.save(data); err != nil {
		return core.Turn{}, err
	}
	return turn, nil
}

// ListBySession returns the session's turns in stored (ascending timestamp)
// order. Unknown sessions yield an empty slice.
func (s *Store) ListBySession(ctx context.Context, sessionID string) ([]core.Turn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, storage.ErrStorageClosed
	}

	data, err := s.load()
	if err != nil {
		s.logger.Warn("history file unreadable on list, returning empty dataset", "err", err)
	}

	docs := data[sessionID]
	turns := make([]core.Turn, 0, len(docs))
	for _, doc := range docs {
		role, err := core.ParseRole(doc.Role)
		if err != nil {
			s.logger.Warn("skipping turn with unknown role", "session", sessionID, "role", doc.Role)
			continue
		}
		turns = append(turns, core.Turn{
			SessionID: sessionID,
			Role:      role,
			Content:   doc.Content,
			Timestamp: doc.Timestamp,
		})
	}
	return turns, nil
}

// Close marks the store closed. The JSON document needs no teardown.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
