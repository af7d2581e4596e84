package session

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gofrs/flock"
)

const (
	lockFileName = ".lock"
	lockRetry    = 10 * time.Millisecond
)

// FileBackend stores one file per key under <dir>/<id>. Writes go through a
// temporary file and a rename, and Update holds an exclusive flock on a lock
// file so two processes cannot interleave a read-modify-write.
type FileBackend struct {
	root string
}

// NewFileBackend creates the session directory if needed
func NewFileBackend(dir, id string) (*FileBackend, error) {
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "hwenhancer")
	}
	if id == "" {
		id = "default"
	}
	root := filepath.Join(dir, filepath.Base(id))
	if err := os.MkdirAll(root, 0o700); err != nil {
		return nil, errors.Wrap(err, "failed to create session directory")
	}
	return &FileBackend{root: root}, nil
}

// Dir returns the directory holding the session
func (f *FileBackend) Dir() string { return f.root }

func (f *FileBackend) path(key string) string {
	return filepath.Join(f.root, filepath.Base(key))
}

func (f *FileBackend) Get(ctx context.Context, key string) (string, bool, error) {
	data, err := os.ReadFile(f.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrapf(err, "failed to read session key %s", key)
	}
	return string(data), true, nil
}

func (f *FileBackend) Set(ctx context.Context, key, value string) error {
	tmp, err := os.CreateTemp(f.root, "."+filepath.Base(key)+".*")
	if err != nil {
		return errors.Wrap(err, "failed to create temp file")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(value); err != nil {
		tmp.Close()
		return errors.Wrapf(err, "failed to write session key %s", key)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrapf(err, "failed to write session key %s", key)
	}
	if err := os.Rename(tmp.Name(), f.path(key)); err != nil {
		return errors.Wrapf(err, "failed to store session key %s", key)
	}
	return nil
}

func (f *FileBackend) Delete(ctx context.Context, key string) error {
	if err := os.Remove(f.path(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return errors.Wrapf(err, "failed to delete session key %s", key)
	}
	return nil
}

func (f *FileBackend) Update(ctx context.Context, key string, fn UpdateFunc) error {
	unlock, err := f.lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	old, ok, err := f.Get(ctx, key)
	if err != nil {
		return err
	}
	val, err := fn(old, ok)
	if err != nil {
		return err
	}
	return f.Set(ctx, key, val)
}

func (f *FileBackend) Clear(ctx context.Context) error {
	entries, err := os.ReadDir(f.root)
	if err != nil {
		return errors.Wrap(err, "failed to list session directory")
	}
	for _, e := range entries {
		if e.Name() == lockFileName {
			continue
		}
		if err := os.RemoveAll(filepath.Join(f.root, e.Name())); err != nil {
			return errors.Wrap(err, "failed to clear session")
		}
	}
	return nil
}

func (f *FileBackend) Close() error { return nil }

// lock takes an advisory lock on the session lock file. The OS releases it
// when the holding process exits, so a crashed holder never blocks others.
func (f *FileBackend) lock(ctx context.Context) (func(), error) {
	fl := flock.New(filepath.Join(f.root, lockFileName))
	locked, err := fl.TryLockContext(ctx, lockRetry)
	if err != nil {
		return nil, errors.Wrap(err, "waiting for session lock")
	}
	if !locked {
		return nil, errors.New("failed to acquire session lock")
	}
	return func() { _ = fl.Unlock() }, nil
}
