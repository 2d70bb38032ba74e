package codebase

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Change reports that a file was updated or removed. File is nil for
// removals.
type Change struct {
	Path string
	File *File
}

// Watcher keeps a Codebase in sync with the file system. fsnotify watches
// single directories, so every directory below the root is added, including
// ones created while the watcher runs.
type Watcher struct {
	codebase *Codebase
	w        *fsnotify.Watcher
	changes  chan Change
}

func NewWatcher(c *Codebase) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		codebase: c,
		w:        w,
		changes:  make(chan Change, 128),
	}, nil
}

// Changes delivers one Change per processed event. The channel is closed
// when Run returns.
func (w *Watcher) Changes() <-chan Change {
	return w.changes
}

// Run watches the root directory until ctx is done or the watcher fails.
func (w *Watcher) Run(ctx context.Context) error {
	defer close(w.changes)
	defer w.w.Close()

	if err := w.addTree(w.codebase.RootDir()); err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-w.w.Events:
			if !ok {
				return nil
			}
			w.handleEvent(ctx, ev)
		case err, ok := <-w.w.Errors:
			if !ok {
				return nil
			}
			log.Errorf("watch: %s", err)
		}
	}
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && skipDir(d.Name()) {
			return filepath.SkipDir
		}
		log.Debugf("watching %s", path)
		return w.w.Add(path)
	})
}

func (w *Watcher) handleEvent(ctx context.Context, ev fsnotify.Event) {
	switch {
	case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		if w.codebase.RemoveFile(ev.Name) {
			w.emit(ctx, Change{Path: ev.Name})
		}
	case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
		info, err := os.Stat(ev.Name)
		if err != nil {
			return
		}
		if info.IsDir() {
			if ev.Op&fsnotify.Create != 0 && !skipDir(info.Name()) {
				if err := w.addTree(ev.Name); err != nil {
					log.Warningf("watch %s: %s", ev.Name, err)
				}
			}
			return
		}
		if !Supported(ev.Name) {
			return
		}
		f, err := w.codebase.ScanFile(ctx, ev.Name)
		if err != nil {
			if !errors.Is(err, context.Canceled) {
				log.Warningf("update %s: %s", ev.Name, err)
			}
			return
		}
		w.emit(ctx, Change{Path: ev.Name, File: f})
	}
}

func (w *Watcher) emit(ctx context.Context, c Change) {
	select {
	case w.changes <- c:
	case <-ctx.Done():
	}
}
