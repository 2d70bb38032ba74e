package codebase

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhamidi/scry/lint"
)

const component = `function Counter() {
  let count = 0;
  useEffect(() => {
    console.log(count);
  });
}
`

func newCodebase(t *testing.T) (*Codebase, string) {
	t.Helper()
	dir := t.TempDir()
	rule := lint.NewExhaustiveDependencies(lint.DefaultExhaustiveDependenciesOptions())
	return New(dir, lint.NewRunner([]lint.Rule{rule})), dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestUpdateFile(t *testing.T) {
	c, dir := newCodebase(t)
	path := filepath.Join(dir, "counter.js")

	f, err := c.UpdateFile(context.Background(), path, []byte(component))
	require.NoError(t, err)
	assert.Equal(t, path, f.Path)
	assert.Equal(t, component, f.Tree.Text())
	require.Len(t, f.Diagnostics, 1)
	assert.Equal(t, lint.ExhaustiveDependenciesName, f.Diagnostics[0].Rule)
	assert.Same(t, f, c.GetFile(path))

	_, err = c.UpdateFile(context.Background(), filepath.Join(dir, "notes.txt"), []byte("x"))
	assert.ErrorIs(t, err, ErrUnsupportedFile)

	assert.True(t, c.RemoveFile(path))
	assert.False(t, c.RemoveFile(path))
	assert.Nil(t, c.GetFile(path))
}

func TestScanAll(t *testing.T) {
	c, dir := newCodebase(t)
	writeFile(t, filepath.Join(dir, "src", "counter.js"), component)
	writeFile(t, filepath.Join(dir, "src", "types.ts"), "let x: number = 1;\n")
	writeFile(t, filepath.Join(dir, "package.json"), `{"name": "app"}`)
	writeFile(t, filepath.Join(dir, "README.md"), "# app\n")
	writeFile(t, filepath.Join(dir, "node_modules", "dep", "index.js"), "x(")
	writeFile(t, filepath.Join(dir, ".git", "hooks.js"), "x(")

	require.NoError(t, c.ScanAll(context.Background()))

	var paths []string
	for _, f := range c.Files() {
		rel, err := filepath.Rel(dir, f.Path)
		require.NoError(t, err)
		paths = append(paths, filepath.ToSlash(rel))
	}
	assert.Equal(t, []string{"package.json", "src/counter.js", "src/types.ts"}, paths)

	ts := c.GetFile(filepath.Join(dir, "src", "types.ts"))
	require.NotNil(t, ts)
	assert.Empty(t, ts.Diagnostics)
}

func TestScanAllCancelled(t *testing.T) {
	c, dir := newCodebase(t)
	writeFile(t, filepath.Join(dir, "a.js"), "a;")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, c.ScanAll(ctx), context.Canceled)
}

func TestSourceFilesSkipsHiddenAndVendored(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b.ts"), "b;")
	writeFile(t, filepath.Join(dir, "a.js"), "a;")
	writeFile(t, filepath.Join(dir, "README.md"), "# a")
	writeFile(t, filepath.Join(dir, ".git", "hook.js"), "x;")
	writeFile(t, filepath.Join(dir, "node_modules", "react", "index.js"), "x;")

	paths, err := SourceFiles(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.js"), filepath.Join(dir, "b.ts")}, paths)
}

func TestScanFileMissing(t *testing.T) {
	c, dir := newCodebase(t)
	_, err := c.ScanFile(context.Background(), filepath.Join(dir, "missing.js"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestWatcherHandleEvent(t *testing.T) {
	c, dir := newCodebase(t)
	w, err := NewWatcher(c)
	require.NoError(t, err)
	defer w.w.Close()

	ctx := context.Background()
	path := filepath.Join(dir, "counter.js")
	writeFile(t, path, component)

	w.handleEvent(ctx, fsnotify.Event{Name: path, Op: fsnotify.Create})
	change := <-w.Changes()
	assert.Equal(t, path, change.Path)
	require.NotNil(t, change.File)
	assert.Len(t, change.File.Diagnostics, 1)

	w.handleEvent(ctx, fsnotify.Event{Name: filepath.Join(dir, "notes.txt"), Op: fsnotify.Write})
	w.handleEvent(ctx, fsnotify.Event{Name: path, Op: fsnotify.Remove})
	change = <-w.Changes()
	assert.Equal(t, path, change.Path)
	assert.Nil(t, change.File)
	assert.Nil(t, c.GetFile(path))
}

func TestWatcherRun(t *testing.T) {
	c, dir := newCodebase(t)
	w, err := NewWatcher(c)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	path := filepath.Join(dir, "app.js")
	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()

	var got *File
	for got == nil {
		select {
		case change := <-w.Changes():
			if change.Path == path && change.File != nil && string(change.File.Content) == "a;\n" {
				got = change.File
			}
		case <-tick.C:
			// Rewrite until the watch is established and an event arrives.
			writeFile(t, path, "a;\n")
		case <-deadline:
			t.Fatal("no change event received")
		}
	}
	assert.Equal(t, "a;\n", got.Tree.Text())

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
	_, open := <-w.Changes()
	for open {
		_, open = <-w.Changes()
	}
}
