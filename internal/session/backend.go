// Package session persists the crawl state between page loads.
//
// A Backend is a flat string key/value store scoped to one browsing session.
// State layers the two typed entries of the enhancer on top of it.
package session

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"
)

// UpdateFunc receives the current value of a key (ok is false when the key
// is absent) and returns the value to store.
type UpdateFunc func(old string, ok bool) (string, error)

// Backend is a session-scoped key/value store
type Backend interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	// Update performs a read-modify-write of one key as a single step.
	// No other writer may observe or change the key in between.
	Update(ctx context.Context, key string, fn UpdateFunc) error
	// Clear drops every key of the session
	Clear(ctx context.Context) error
	Close() error
}

// Backend kinds accepted by Open
const (
	KindMemory = "memory"
	KindFile   = "file"
	KindSQLite = "sqlite"
)

// ErrUnknownBackend is returned by Open for an unsupported kind
var ErrUnknownBackend = errors.New("unknown session backend")

// Open creates a backend of the given kind. dir is the storage directory and
// id names the session inside it; both are ignored by the memory backend.
func Open(kind, dir, id string) (Backend, error) {
	switch kind {
	case KindMemory:
		return NewMemoryBackend(), nil
	case KindFile:
		return NewFileBackend(dir, id)
	case KindSQLite:
		return NewSQLiteBackend(dir, id)
	}
	return nil, errors.WithHint(errors.Wrapf(ErrUnknownBackend, "%q", kind),
		"use one of: memory, file, sqlite")
}

// MemoryBackend keeps the session in process memory
type MemoryBackend struct {
	mu    sync.Mutex
	items map[string]string
}

// NewMemoryBackend creates an empty in-memory session
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{items: make(map[string]string)}
}

func (m *MemoryBackend) Get(ctx context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.items[key]
	return val, ok, nil
}

func (m *MemoryBackend) Set(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = value
	return nil
}

func (m *MemoryBackend) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
	return nil
}

func (m *MemoryBackend) Update(ctx context.Context, key string, fn UpdateFunc) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	old, ok := m.items[key]
	val, err := fn(old, ok)
	if err != nil {
		return err
	}
	m.items[key] = val
	return nil
}

func (m *MemoryBackend) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = make(map[string]string)
	return nil
}

func (m *MemoryBackend) Close() error { return nil }
