package lock

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

// Ensure File implements the interface.
var _ driven.CollectionLocker = (*File)(nil)

// DefaultRetryDelay is the polling interval while another process holds a lock.
const DefaultRetryDelay = 200 * time.Millisecond

// File combines an in-process lock with a flock(2) lock file per collection.
type File struct {
	dir        string
	retryDelay time.Duration
	local      *Memory
}

// NewFile creates a locker that keeps lock files in dir.
func NewFile(dir string) (*File, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}
	return &File{
		dir:        dir,
		retryDelay: DefaultRetryDelay,
		local:      NewMemory(),
	}, nil
}

// Lock blocks until both the in-process and the file lock are held.
// Collections that would name a file outside the lock directory are refused.
func (f *File) Lock(ctx context.Context, collection string) (func(), error) {
	if !safeName(collection) {
		return nil, fmt.Errorf("%w: collection %q cannot name a lock file", domain.ErrInvalidInput, collection)
	}

	unlockLocal, err := f.local.Lock(ctx, collection)
	if err != nil {
		return nil, err
	}

	path := f.Path(collection)
	fl := flock.New(path)
	for {
		locked, err := fl.TryLock()
		if err != nil {
			unlockLocal()
			return nil, fmt.Errorf("lock %s: %w", path, err)
		}
		if locked {
			break
		}
		logger.Debug("lock: waiting for %s", path)
		select {
		case <-ctx.Done():
			unlockLocal()
			return nil, fmt.Errorf("lock %s: %w", path, ctx.Err())
		case <-time.After(f.retryDelay):
		}
	}

	return func() {
		if err := fl.Unlock(); err != nil {
			logger.Warn("unlock %s: %v", path, err)
		}
		unlockLocal()
	}, nil
}

// Path returns the lock file used for a collection.
func (f *File) Path(collection string) string {
	return filepath.Join(f.dir, collection+".lock")
}

func safeName(collection string) bool {
	return collection != "" && collection != "." && collection != ".." &&
		!strings.ContainsAny(collection, `/\`)
}
