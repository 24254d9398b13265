// Package filesystem scans and watches a directory for ingestible files.
package filesystem

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

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/sercha-rag/internal/logger"
)

// ChangeType describes what happened to a file.
type ChangeType int

const (
	// ChangeCreated is a new file.
	ChangeCreated ChangeType = iota
	// ChangeUpdated is a modified file.
	ChangeUpdated
	// ChangeDeleted is a removed or renamed-away file.
	ChangeDeleted
)

// String returns the change type name.
func (c ChangeType) String() string {
	switch c {
	case ChangeCreated:
		return "created"
	case ChangeUpdated:
		return "updated"
	case ChangeDeleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// Change is one file event under the watched root.
type Change struct {
	Type ChangeType
	Path string
}

// Connector reports files under rootPath that accept admits.
// Hidden files and directories are skipped.
type Connector struct {
	rootPath string
	accept   func(name string) bool

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	closed  bool
}

// New creates a connector for rootPath. A nil accept admits every file.
func New(rootPath string, accept func(name string) bool) *Connector {
	if accept == nil {
		accept = func(string) bool { return true }
	}
	return &Connector{rootPath: rootPath, accept: accept}
}

// RootPath returns the watched directory.
func (c *Connector) RootPath() string {
	return c.rootPath
}

// Validate checks that the root exists and is a directory.
func (c *Connector) Validate() error {
	if c.rootPath == "" {
		return errors.New("root path is required")
	}
	info, err := os.Stat(c.rootPath)
	if err != nil {
		return fmt.Errorf("root path: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("root path %s is not a directory", c.rootPath)
	}
	return nil
}

// Scan lists accepted files under the root in lexical order.
func (c *Connector) Scan(ctx context.Context) ([]string, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c.files(ctx, c.rootPath)
}

// files lists accepted files under dir in lexical order.
func (c *Connector) files(ctx context.Context, dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logger.Warn("Skipping %s: %v", path, err)
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if path != dir && isHidden(d.Name()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() && c.accept(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

// Watch streams changes under the root until ctx is done or Close is called.
// Subdirectories, including ones created later, are watched too.
func (c *Connector) Watch(ctx context.Context) (<-chan Change, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		w.Close()
		return nil, errors.New("connector closed")
	}
	c.watcher = w
	c.mu.Unlock()

	if err := c.addTree(c.rootPath); err != nil {
		c.Close()
		return nil, err
	}

	changes := make(chan Change)
	go c.loop(ctx, w, changes)
	return changes, nil
}

func (c *Connector) loop(ctx context.Context, w *fsnotify.Watcher, changes chan<- Change) {
	defer close(changes)
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Create) && !isHidden(filepath.Base(event.Name)) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if !c.sendTree(ctx, event.Name, changes) {
						return
					}
					continue
				}
			}
			change := c.handleFsEvent(event)
			if change == nil {
				continue
			}
			select {
			case changes <- *change:
			case <-ctx.Done():
				return
			}
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			logger.Warn("Watch error: %v", err)
		}
	}
}

// sendTree watches a directory that appeared under the root and reports the
// files it already holds, such as a directory moved in whole. It returns
// false when ctx is done.
func (c *Connector) sendTree(ctx context.Context, dir string, changes chan<- Change) bool {
	if err := c.addTree(dir); err != nil {
		logger.Warn("Cannot watch %s: %v", dir, err)
	}
	files, err := c.files(ctx, dir)
	if err != nil {
		return ctx.Err() == nil
	}
	for _, path := range files {
		select {
		case changes <- Change{Type: ChangeCreated, Path: path}:
		case <-ctx.Done():
			return false
		}
	}
	return true
}

// handleFsEvent maps a raw event to a change, or nil when it is ignored.
func (c *Connector) handleFsEvent(event fsnotify.Event) *Change {
	if c.hiddenUnderRoot(event.Name) || !c.accept(event.Name) {
		return nil
	}

	switch {
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		return &Change{Type: ChangeDeleted, Path: event.Name}
	case event.Has(fsnotify.Create), event.Has(fsnotify.Write):
		info, err := os.Stat(event.Name)
		if err != nil || !info.Mode().IsRegular() {
			return nil
		}
		if event.Has(fsnotify.Create) {
			return &Change{Type: ChangeCreated, Path: event.Name}
		}
		return &Change{Type: ChangeUpdated, Path: event.Name}
	default:
		return nil
	}
}

// addTree watches dir and every non-hidden directory below it.
func (c *Connector) addTree(dir string) error {
	c.mu.Lock()
	w := c.watcher
	c.mu.Unlock()
	if w == nil {
		return errors.New("watcher not started")
	}

	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil //nolint:nilerr // unreadable entries are skipped
		}
		if path != dir && isHidden(d.Name()) {
			return filepath.SkipDir
		}
		if err := w.Add(path); err != nil {
			return fmt.Errorf("watching %s: %w", path, err)
		}
		return nil
	})
}

// Close stops watching. It is safe to call more than once.
func (c *Connector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	if c.watcher != nil {
		return c.watcher.Close()
	}
	return nil
}

// hiddenUnderRoot reports whether path has a hidden element below the root.
func (c *Connector) hiddenUnderRoot(path string) bool {
	rel, err := filepath.Rel(c.rootPath, path)
	if err != nil {
		return isHidden(filepath.Base(path))
	}
	return isHidden(rel)
}

// isHidden reports whether any element of path starts with a dot.
// "." and ".." are not hidden.
func isHidden(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part != "" && part != "." && part != ".." && strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}
