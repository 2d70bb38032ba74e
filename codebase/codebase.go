// Package codebase keeps the parsed and linted state of the files under a
// root directory and feeds it to the watcher and the language server.
package codebase

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/tliron/commonlog"

	"github.com/dhamidi/scry/diagnostic"
	"github.com/dhamidi/scry/lint"
	"github.com/dhamidi/scry/syntax"
)

// ErrUnsupportedFile is returned for paths whose extension selects no
// grammar.
var ErrUnsupportedFile = errors.New("unsupported file type")

var log = commonlog.GetLogger("scry.codebase")

type Codebase struct {
	mu      sync.RWMutex
	rootDir string
	runner  *lint.Runner
	files   map[string]*File
}

// File is the state of one source file after its last update. A File is
// replaced, never modified, when the file changes.
type File struct {
	Path        string
	Content     []byte
	Mode        syntax.Mode
	Tree        *syntax.Tree
	Diagnostics []diagnostic.Diagnostic
}

func New(rootDir string, runner *lint.Runner) *Codebase {
	return &Codebase{
		rootDir: rootDir,
		runner:  runner,
		files:   make(map[string]*File),
	}
}

func (c *Codebase) RootDir() string {
	return c.rootDir
}

// Supported reports whether path has an extension scry can parse.
func Supported(path string) bool {
	_, ok := syntax.ModeForPath(path)
	return ok
}

// skipDir reports directories that are never scanned.
func skipDir(name string) bool {
	return name != "." && (strings.HasPrefix(name, ".") || name == "node_modules")
}

// SourceFiles returns every supported file below root in lexical order.
// Hidden directories and node_modules are skipped. Unreadable entries are
// logged and skipped.
func SourceFiles(ctx context.Context, root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			log.Warningf("scan %s: %s", path, err)
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() {
			if path != root && skipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if Supported(path) {
			paths = append(paths, path)
		}
		return nil
	})
	return paths, err
}

// ScanAll loads every supported file below the root directory. Files that
// cannot be read are logged and skipped.
func (c *Codebase) ScanAll(ctx context.Context) error {
	paths, err := SourceFiles(ctx, c.rootDir)
	if err != nil {
		return err
	}
	for _, path := range paths {
		if _, err := c.ScanFile(ctx, path); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			log.Warningf("scan %s: %s", path, err)
		}
	}
	return nil
}

// ScanFile reads path from disk and updates it.
func (c *Codebase) ScanFile(ctx context.Context, path string) (*File, error) {
	if !Supported(path) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFile, path)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return c.UpdateFile(ctx, path, content)
}

// UpdateFile parses and lints content as the new state of path.
func (c *Codebase) UpdateFile(ctx context.Context, path string, content []byte) (*File, error) {
	mode, ok := syntax.ModeForPath(path)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFile, path)
	}
	result, err := c.runner.Lint(ctx, path, content, mode)
	if err != nil {
		return nil, fmt.Errorf("linting %s: %w", path, err)
	}
	f := &File{
		Path:        path,
		Content:     content,
		Mode:        mode,
		Tree:        result.Tree,
		Diagnostics: result.Diagnostics,
	}

	c.mu.Lock()
	c.files[path] = f
	c.mu.Unlock()

	log.Debugf("updated %s: %d diagnostics", path, len(f.Diagnostics))
	return f, nil
}

func (c *Codebase) RemoveFile(path string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.files[path]
	delete(c.files, path)
	return ok
}

func (c *Codebase) GetFile(path string) *File {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.files[path]
}

// Files returns all known files ordered by path.
func (c *Codebase) Files() []*File {
	c.mu.RLock()
	files := make([]*File, 0, len(c.files))
	for _, f := range c.files {
		files = append(files, f)
	}
	c.mu.RUnlock()

	sort.Slice(files, func(i, j int) bool {
		return files[i].Path < files[j].Path
	})
	return files
}
