package lock

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gofrs/flock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

func lockers(t *testing.T) map[string]driven.CollectionLocker {
	t.Helper()
	fileLocker, err := NewFile(t.TempDir())
	require.NoError(t, err)
	return map[string]driven.CollectionLocker{
		"memory": NewMemory(),
		"file":   fileLocker,
	}
}

func TestLock_SingleWriterPerCollection(t *testing.T) {
	for name, l := range lockers(t) {
		t.Run(name, func(t *testing.T) {
			var active, maxActive atomic.Int32
			var wg sync.WaitGroup
			for i := 0; i < 8; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					unlock, err := l.Lock(context.Background(), "ds_a")
					if !assert.NoError(t, err) {
						return
					}
					n := active.Add(1)
					for {
						m := maxActive.Load()
						if n <= m || maxActive.CompareAndSwap(m, n) {
							break
						}
					}
					time.Sleep(5 * time.Millisecond)
					active.Add(-1)
					unlock()
				}()
			}
			wg.Wait()
			assert.Equal(t, int32(1), maxActive.Load())
		})
	}
}

func TestLock_CollectionsIndependent(t *testing.T) {
	for name, l := range lockers(t) {
		t.Run(name, func(t *testing.T) {
			unlockA, err := l.Lock(context.Background(), "ds_a")
			require.NoError(t, err)
			defer unlockA()

			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			unlockB, err := l.Lock(ctx, "ds_b")
			require.NoError(t, err)
			unlockB()
		})
	}
}

func TestLock_ContextCancelled(t *testing.T) {
	for name, l := range lockers(t) {
		t.Run(name, func(t *testing.T) {
			unlock, err := l.Lock(context.Background(), "ds_a")
			require.NoError(t, err)
			defer unlock()

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
			defer cancel()
			_, err = l.Lock(ctx, "ds_a")
			assert.ErrorIs(t, err, context.DeadlineExceeded)
		})
	}
}

func TestMemory_UnlockIdempotent(t *testing.T) {
	m := NewMemory()
	unlock, err := m.Lock(context.Background(), "x")
	require.NoError(t, err)
	unlock()
	unlock()

	unlock, err = m.Lock(context.Background(), "x")
	require.NoError(t, err)
	unlock()
}

func TestFile_WaitsForOtherHolder(t *testing.T) {
	l, err := NewFile(t.TempDir())
	require.NoError(t, err)
	l.retryDelay = 10 * time.Millisecond

	// Another process is simulated by a separate flock handle.
	other := flock.New(l.Path("ds_a"))
	locked, err := other.TryLock()
	require.NoError(t, err)
	require.True(t, locked)

	go func() {
		time.Sleep(50 * time.Millisecond)
		_ = other.Unlock()
	}()

	start := time.Now()
	unlock, err := l.Lock(context.Background(), "ds_a")
	require.NoError(t, err)
	unlock()
	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
}

func TestFile_RejectsNamesOutsideDir(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "locks")
	l, err := NewFile(dir)
	require.NoError(t, err)

	for _, name := range []string{"", ".", "..", "../ds_a", "ds_../../x", `ds_a\..\x`, "a/b"} {
		t.Run(name, func(t *testing.T) {
			unlock, err := l.Lock(context.Background(), name)

			assert.ErrorIs(t, err, domain.ErrInvalidInput)
			assert.Nil(t, unlock)
		})
	}

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "locks", entries[0].Name())

	locks, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, locks)
}
