package watch

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsRelevantChange(t *testing.T) {
	tests := []struct {
		name  string
		event fsnotify.Event
		want  bool
	}{
		{"typescript write", fsnotify.Event{Name: "/p/src/a.ts", Op: fsnotify.Write}, true},
		{"tsx create", fsnotify.Event{Name: "/p/src/a.tsx", Op: fsnotify.Create}, true},
		{"js remove", fsnotify.Event{Name: "/p/src/a.js", Op: fsnotify.Remove}, true},
		{"declaration rename", fsnotify.Event{Name: "/p/src/a.d.ts", Op: fsnotify.Rename}, true},
		{"tsconfig write", fsnotify.Event{Name: "/p/tsconfig.json", Op: fsnotify.Write}, true},
		{"package.json write", fsnotify.Event{Name: "/p/package.json", Op: fsnotify.Write}, true},
		{"config file write", fsnotify.Event{Name: "/p/.pkgtrace.yaml", Op: fsnotify.Write}, true},
		{"chmod only", fsnotify.Event{Name: "/p/src/a.ts", Op: fsnotify.Chmod}, false},
		{"markdown write", fsnotify.Event{Name: "/p/README.md", Op: fsnotify.Write}, false},
		{"other json write", fsnotify.Event{Name: "/p/data.json", Op: fsnotify.Write}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isRelevantChange(tt.event))
		})
	}
}

func TestAddWatchDirsWithAdder_SkipsIgnoredDirectories(t *testing.T) {
	root := t.TempDir()
	for _, dir := range []string{"src/components", "node_modules/react", ".git/objects", "dist", "src/build"} {
		require.NoError(t, os.MkdirAll(filepath.Join(root, dir), 0o755))
	}

	var added []string
	err := addWatchDirsWithAdder(root, func(path string) error {
		rel, err := filepath.Rel(root, path)
		require.NoError(t, err)
		added = append(added, filepath.ToSlash(rel))
		return nil
	})
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{".", "src", "src/components"}, added)
}

func TestAddWatchDirsWithAdder_IgnoresMissingDirectories(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(root, "gone")
	require.NoError(t, os.MkdirAll(target, 0o755))

	err := addWatchDirsWithAdder(root, func(path string) error {
		if path == target {
			return fs.ErrNotExist
		}
		return nil
	})
	assert.NoError(t, err)
}

func TestWatchAndRetrace_RetracesAfterSourceChange(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "src"), 0o755))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	retraced := make(chan struct{}, 8)
	done := make(chan error, 1)
	go func() {
		done <- watchAndRetrace(ctx, root, func() { retraced <- struct{}{} }, io.Discard)
	}()

	// Give the watcher time to register directories before writing.
	time.Sleep(200 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(root, "src", "index.ts"), []byte("export {};\n"), 0o644))

	select {
	case <-retraced:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for retrace")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch loop did not stop after cancel")
	}
}

func TestWatchAndRetrace_IgnoresIrrelevantChange(t *testing.T) {
	root := t.TempDir()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	retraced := make(chan struct{}, 8)
	done := make(chan error, 1)
	go func() {
		done <- watchAndRetrace(ctx, root, func() { retraced <- struct{}{} }, io.Discard)
	}()

	time.Sleep(200 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(root, "NOTES.md"), []byte("notes\n"), 0o644))

	select {
	case <-retraced:
		t.Fatal("retraced after an irrelevant change")
	case <-time.After(2 * debounceInterval):
	}

	cancel()
	assert.NoError(t, <-done)
}
