package blob

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func collectEvent(t *testing.T, events <-chan Event, want EventOp, name string) {
	t.Helper()
	deadline := time.After(3 * time.Second)
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				t.Fatal("event channel closed")
			}
			if ev.Name == name && ev.Op == want {
				return
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %v on %s", want, name)
		}
	}
}

func TestWatcherSeesWritesAndRemoves(t *testing.T) {
	dir := t.TempDir()
	watcher, err := NewWatcher()
	require.NoError(t, err)
	defer watcher.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := watcher.Watch(ctx, dir)
	require.NoError(t, err)

	path := filepath.Join(dir, "new.txt")
	require.NoError(t, os.WriteFile(path, []byte("content"), 0644))
	collectEvent(t, events, DocumentWritten, "new.txt")

	require.NoError(t, os.Remove(path))
	collectEvent(t, events, DocumentRemoved, "new.txt")
}

func TestWatcherIgnoresHiddenFiles(t *testing.T) {
	dir := t.TempDir()
	watcher, err := NewWatcher()
	require.NoError(t, err)
	defer watcher.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := watcher.Watch(ctx, dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".hidden"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "seen.txt"), []byte("x"), 0644))

	// The first event through must be for the visible file.
	select {
	case ev := <-events:
		require.Equal(t, "seen.txt", ev.Name)
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for event")
	}
}
