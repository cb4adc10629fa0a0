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
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Store is a flat namespace of raw source documents keyed by name.
type Store interface {
	// Get returns the document bytes, or ErrNotFound.
	Get(ctx context.Context, name string) ([]byte, error)

	// Put writes the document, replacing any existing one.
	Put(ctx context.Context, name string, data []byte) error

	// List returns all document names in lexical order.
	List(ctx context.Context) ([]string, error)

	// Delete removes the document. Deleting a missing document returns
	// ErrNotFound.
	Delete(ctx context.Context, name string) error
}

// DirStore is a Store over a single filesystem directory.
type DirStore struct {
	dir string
}

// NewDirStore creates a store rooted at dir, creating it if needed.
func NewDirStore(dir string) (*DirStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating document directory: %w", err)
	}
	return &DirStore{dir: dir}, nil
}

// Dir returns the directory backing the store.
func (s *DirStore) Dir() string {
	return s.dir
}

// resolve maps a document name to a path inside the store directory,
// rejecting names that would escape it.
func (s *DirStore) resolve(name string) (string, error) {
	if name == "" || strings.Contains(name, "/") || strings.Contains(name, "\\") ||
		name == "." || name == ".." {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return filepath.Join(s.dir, name), nil
}

func (s *DirStore) Get(ctx context.Context, name string) ([]byte, error) {
	path, err := s.resolve(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, err
	}
	return data, nil
}

func (s *DirStore) Put(ctx context.Context, name string, data []byte) error {
	path, err := s.resolve(name)
	if err != nil {
		return err
	}

	// Write then rename so readers never observe a partial document.
	tmp, err := os.CreateTemp(s.dir, ".put-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}

func (s *DirStore) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names, nil
}

func (s *DirStore) Delete(ctx context.Context, name string) error {
	path, err := s.resolve(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return err
	}
	return nil
}
