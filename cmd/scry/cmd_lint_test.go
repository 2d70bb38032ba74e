package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhamidi/scry/codebase"
	"github.com/dhamidi/scry/config"
	"github.com/dhamidi/scry/lint"
)

const counter = `function Counter() {
  let count = 0;
  useEffect(() => {
    console.log(count);
  });
}
`

func project(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"src/counter.js":    counter,
		"src/clean.ts":      "export const x: number = 1;\n",
		"package.json":      `{"name": "demo"}`,
		"node_modules/a.js": counter,
	}
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

func defaultRunner() *lint.Runner {
	return lint.NewRunner(config.Default().Rules())
}

func TestRunLintLineFormat(t *testing.T) {
	dir := project(t)
	var stdout, stderr bytes.Buffer
	opts := &lintOptions{format: "line", maxDiagnostics: 20, jobs: 2}

	err := runLint(context.Background(), defaultRunner(), []string{dir}, opts, &stdout, &stderr)
	assert.ErrorIs(t, err, errProblemsFound)

	path := filepath.Join(dir, "src", "counter.js")
	assert.Equal(t,
		path+":3:3: error lint/correctness/useExhaustiveDependencies: This hook does not specify all of its dependencies.\n"+
			"\t"+path+":4:17: this dependency is not specified in the hook dependency list\n",
		stdout.String())
	assert.Equal(t, "Checked 3 files. Found 1 error and 0 warnings.\n", stderr.String())
}

func TestRunLintJSONFormat(t *testing.T) {
	dir := project(t)
	var stdout, stderr bytes.Buffer
	opts := &lintOptions{format: "json", maxDiagnostics: 20}

	err := runLint(context.Background(), defaultRunner(), []string{filepath.Join(dir, "src")}, opts, &stdout, &stderr)
	assert.ErrorIs(t, err, errProblemsFound)

	lines := bytes.Split(bytes.TrimSpace(stdout.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)
	var doc struct {
		Path        string            `json:"path"`
		Diagnostics []json.RawMessage `json:"diagnostics"`
	}
	require.NoError(t, json.Unmarshal(lines[0], &doc))
	assert.Equal(t, filepath.Join(dir, "src", "clean.ts"), doc.Path)
	assert.Empty(t, doc.Diagnostics)
	require.NoError(t, json.Unmarshal(lines[1], &doc))
	assert.Len(t, doc.Diagnostics, 1)
}

func TestRunLintMaxDiagnostics(t *testing.T) {
	dir := project(t)
	var stdout, stderr bytes.Buffer
	opts := &lintOptions{format: "line", maxDiagnostics: 0}

	err := runLint(context.Background(), defaultRunner(), []string{dir}, opts, &stdout, &stderr)
	assert.ErrorIs(t, err, errProblemsFound)
	assert.Empty(t, stdout.String())
	assert.Contains(t, stderr.String(), "1 more diagnostic not shown")
}

func TestRunLintClean(t *testing.T) {
	dir := project(t)
	var stdout, stderr bytes.Buffer
	opts := &lintOptions{format: "line", maxDiagnostics: 20}

	err := runLint(context.Background(), defaultRunner(), []string{filepath.Join(dir, "src", "clean.ts")}, opts, &stdout, &stderr)
	require.NoError(t, err)
	assert.Empty(t, stdout.String())
	assert.Equal(t, "Checked 1 file. Found 0 errors and 0 warnings.\n", stderr.String())
}

func TestRunLintErrors(t *testing.T) {
	dir := project(t)
	var stdout, stderr bytes.Buffer

	err := runLint(context.Background(), defaultRunner(), []string{dir}, &lintOptions{format: "xml"}, &stdout, &stderr)
	assert.ErrorContains(t, err, "unknown output format")

	notes := filepath.Join(dir, "notes.md")
	require.NoError(t, os.WriteFile(notes, []byte("# notes"), 0o644))
	err = runLint(context.Background(), defaultRunner(), []string{notes}, &lintOptions{format: "line"}, &stdout, &stderr)
	assert.ErrorIs(t, err, codebase.ErrUnsupportedFile)

	err = runLint(context.Background(), defaultRunner(), []string{filepath.Join(dir, "missing")}, &lintOptions{format: "line"}, &stdout, &stderr)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRunLintSkipErrors(t *testing.T) {
	dir := project(t)
	broken := filepath.Join(dir, "src", "broken.js")
	require.NoError(t, os.WriteFile(broken, []byte("const = ;\n"), 0o644))
	src := filepath.Join(dir, "src")

	var stdout, stderr bytes.Buffer
	opts := &lintOptions{format: "line", maxDiagnostics: 20}
	err := runLint(context.Background(), defaultRunner(), []string{src}, opts, &stdout, &stderr)
	assert.ErrorIs(t, err, errProblemsFound)
	assert.Contains(t, stdout.String(), broken+":1:")
	assert.Contains(t, stdout.String(), "error parse:")
	assert.Contains(t, stderr.String(), "Checked 3 files.")

	stdout.Reset()
	stderr.Reset()
	opts.skipErrors = true
	err = runLint(context.Background(), defaultRunner(), []string{src}, opts, &stdout, &stderr)
	assert.ErrorIs(t, err, errProblemsFound)
	assert.NotContains(t, stdout.String(), broken)
	assert.Contains(t, stdout.String(), "counter.js")
	assert.Equal(t,
		"Checked 2 files. Found 1 error and 0 warnings.\nSkipped 1 file with syntax errors.\n",
		stderr.String())
}

func TestRunLintUnmatched(t *testing.T) {
	dir := t.TempDir()
	notes := filepath.Join(dir, "notes.md")
	require.NoError(t, os.WriteFile(notes, []byte("# notes"), 0o644))

	var stdout, stderr bytes.Buffer
	err := runLint(context.Background(), defaultRunner(), []string{dir}, &lintOptions{format: "line"}, &stdout, &stderr)
	assert.ErrorIs(t, err, errNoFilesProcessed)

	opts := &lintOptions{format: "line", noErrorsOnUnmatched: true}
	err = runLint(context.Background(), defaultRunner(), []string{dir}, opts, &stdout, &stderr)
	require.NoError(t, err)
	assert.Equal(t, "Checked 0 files. Found 0 errors and 0 warnings.\n", stderr.String())

	stderr.Reset()
	err = runLint(context.Background(), defaultRunner(), []string{notes}, opts, &stdout, &stderr)
	require.NoError(t, err)
	assert.Empty(t, stdout.String())
}

func TestLintHelpMentionsJSX(t *testing.T) {
	cmd := newLintCmd(&globalOptions{})
	assert.Contains(t, cmd.Long, "JSX is not supported")
	assert.Contains(t, cmd.Long, ".jsx and .tsx files are never matched")
	assert.NotNil(t, cmd.Flags().Lookup("skip-errors"))
	assert.NotNil(t, cmd.Flags().Lookup("no-errors-on-unmatched"))
}

func TestResolveMode(t *testing.T) {
	mode, err := resolveMode("a.ts", "")
	require.NoError(t, err)
	assert.Equal(t, "typescript", mode.String())

	mode, err = resolveMode("-", "json")
	require.NoError(t, err)
	assert.Equal(t, "json", mode.String())

	_, err = resolveMode("-", "")
	assert.Error(t, err)
	_, err = resolveMode("a.ts", "cobol")
	assert.Error(t, err)
}
