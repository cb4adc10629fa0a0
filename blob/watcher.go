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


package blob

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// EventOp describes what happened to a watched document.
type EventOp int

const (
	// DocumentWritten fires when a document appears or changes.
	DocumentWritten EventOp = iota + 1
	// DocumentRemoved fires when a document is deleted.
	DocumentRemoved
)

// Event is one change to a watched document directory.
type Event struct {
	Name string // Document name (base name, not path)
	Op   EventOp
}

// Watcher emits Events for changes in a document directory.
type Watcher struct {
	watcher *fsnotify.Watcher
	logger  *slog.Logger
}

// NewWatcher creates a directory watcher.
func NewWatcher() (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		watcher: w,
		logger:  slog.Default().With("component", "blob-watcher"),
	}, nil
}

// Watch starts monitoring dir and emits events until ctx is cancelled.
// Hidden files and temp files from DirStore.Put are ignored.
func (w *Watcher) Watch(ctx context.Context, dir string) (<-chan Event, error) {
	if err := w.watcher.Add(dir); err != nil {
		return nil, err
	}

	events := make(chan Event, 100)

	go func() {
		defer close(events)
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.watcher.Events:
				if !ok {
					return
				}

				name := filepath.Base(event.Name)
				if strings.HasPrefix(name, ".") {
					continue
				}

				var op EventOp
				switch {
				case event.Op&(fsnotify.Create|fsnotify.Write) != 0:
					op = DocumentWritten
				case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
					op = DocumentRemoved
				default:
					continue
				}

				select {
				case events <- Event{Name: name, Op: op}:
				case <-ctx.Done():
					return
				}
			case err, ok := <-w.watcher.Errors:
				if !ok {
					return
				}
				w.logger.Error("watch error", "error", err)
			}
		}
	}()

	return events, nil
}

// Stop stops the watcher and releases its resources.
func (w *Watcher) Stop() error {
	return w.watcher.Close()
}
