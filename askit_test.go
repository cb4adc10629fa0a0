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

package askit

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig("/data")

	assert.Equal(t, HistoryBadger, cfg.HistoryBackend)
	assert.Equal(t, "/data/history", cfg.HistoryPath)
	assert.Equal(t, "/data/index", cfg.Index.Path)
	assert.Equal(t, DefaultCollection, cfg.Collection)
	assert.Equal(t, "/data/documents", cfg.DocumentsDir)
	assert.NotNil(t, cfg.AI)
	assert.NotZero(t, cfg.AnswerTimeout)
}

func TestNewSystem(t *testing.T) {
	t.Run("wires all components", func(t *testing.T) {
		sys, err := NewSystem(DefaultConfig(t.TempDir()))
		require.NoError(t, err)
		require.NotNil(t, sys)
		defer sys.Close()

		assert.NotNil(t, sys.Orchestrator())
		assert.NotNil(t, sys.Documents())
		assert.NotNil(t, sys.history)
		assert.NotNil(t, sys.index)
		assert.NotNil(t, sys.provider)
	})

	t.Run("file history backend", func(t *testing.T) {
		cfg := DefaultConfig(t.TempDir())
		cfg.HistoryBackend = HistoryFile
		cfg.HistoryPath = filepath.Join(t.TempDir(), "history.json")

		sys, err := NewSystem(cfg)
		require.NoError(t, err)
		defer sys.Close()

		assert.NotNil(t, sys.Orchestrator())
	})

	t.Run("error with invalid documents dir", func(t *testing.T) {
		cfg := DefaultConfig(t.TempDir())
		tmpFile := filepath.Join(t.TempDir(), "not_a_dir")
		require.NoError(t, os.WriteFile(tmpFile, []byte("x"), 0644))
		cfg.DocumentsDir = tmpFile

		sys, err := NewSystem(cfg)
		assert.Error(t, err)
		assert.Nil(t, sys)
	})
}

func TestSystem_Close(t *testing.T) {
	sys, err := NewSystem(DefaultConfig(t.TempDir()))
	require.NoError(t, err)
	require.NotNil(t, sys)

	assert.NoError(t, sys.Close())
}
