package session

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/gofrs/flock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	for _, kind := range []string{KindMemory, KindFile, KindSQLite} {
		backend, err := Open(kind, dir, "s1")
		require.NoError(t, err, kind)
		require.NoError(t, backend.Close())
	}

	_, err := Open("redis", dir, "s1")
	assert.ErrorIs(t, err, ErrUnknownBackend)
}

func TestBackendsPersistAcrossReopen(t *testing.T) {
	ctx := context.Background()
	for _, kind := range []string{KindFile, KindSQLite} {
		t.Run(kind, func(t *testing.T) {
			dir := t.TempDir()
			first, err := Open(kind, dir, "s1")
			require.NoError(t, err)
			require.NoError(t, first.Set(ctx, "k", "v1"))
			require.NoError(t, first.Close())

			second, err := Open(kind, dir, "s1")
			require.NoError(t, err)
			defer second.Close()
			val, ok, err := second.Get(ctx, "k")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "v1", val)

			other, err := Open(kind, dir, "s2")
			require.NoError(t, err)
			defer other.Close()
			_, ok, err = other.Get(ctx, "k")
			require.NoError(t, err)
			assert.False(t, ok, "sessions must not share keys")
		})
	}
}

func TestBackendsUpdateIsAtomic(t *testing.T) {
	ctx := context.Background()
	for name, backend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			const workers = 8
			var wg sync.WaitGroup
			for i := 0; i < workers; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					err := backend.Update(ctx, "counter", func(old string, ok bool) (string, error) {
						n := 0
						if ok {
							n, _ = strconv.Atoi(old)
						}
						return strconv.Itoa(n + 1), nil
					})
					assert.NoError(t, err)
				}()
			}
			wg.Wait()

			val, _, err := backend.Get(ctx, "counter")
			require.NoError(t, err)
			assert.Equal(t, strconv.Itoa(workers), val)
		})
	}
}

func TestFileBackendLeftoverLockFileDoesNotBlock(t *testing.T) {
	backend, err := NewFileBackend(t.TempDir(), "s")
	require.NoError(t, err)

	// a holder that died leaves the file behind but no lock on it
	require.NoError(t, os.WriteFile(filepath.Join(backend.Dir(), lockFileName), nil, 0o600))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	err = backend.Update(ctx, "k", func(string, bool) (string, error) { return "v", nil })
	require.NoError(t, err)

	val, ok, err := backend.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", val)
}

func TestFileBackendLockReleasedWhenHolderCloses(t *testing.T) {
	backend, err := NewFileBackend(t.TempDir(), "s")
	require.NoError(t, err)

	holder := flock.New(filepath.Join(backend.Dir(), lockFileName))
	require.NoError(t, holder.Lock())
	require.NoError(t, holder.Close())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	err = backend.Update(ctx, "k", func(string, bool) (string, error) { return "v", nil })
	assert.NoError(t, err)
}

func TestFileBackendLockHonoursContext(t *testing.T) {
	backend, err := NewFileBackend(t.TempDir(), "s")
	require.NoError(t, err)

	holder := flock.New(filepath.Join(backend.Dir(), lockFileName))
	require.NoError(t, holder.Lock())
	defer holder.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	called := false
	err = backend.Update(ctx, "k", func(string, bool) (string, error) {
		called = true
		return "v", nil
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, called)
}
