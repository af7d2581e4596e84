package session

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	_ "github.com/mattn/go-sqlite3"
)

const busyTimeoutMS = 5000

// SQLiteBackend stores the session in a sqlite database, one row per key.
// Update runs in an immediate transaction so the write lock is taken before
// the read.
type SQLiteBackend struct {
	db      *sql.DB
	session string
}

// NewSQLiteBackend opens (and creates) <dir>/session.db. Several sessions can
// share the file; id separates them.
func NewSQLiteBackend(dir, id string) (*SQLiteBackend, error) {
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "hwenhancer")
	}
	if id == "" {
		id = "default"
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, errors.Wrap(err, "failed to create session directory")
	}

	dsn := fmt.Sprintf("file:%s?_busy_timeout=%d&_journal_mode=WAL&_txlock=immediate",
		filepath.Join(dir, "session.db"), busyTimeoutMS)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open session database")
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS session_kv (
		session TEXT NOT NULL,
		key     TEXT NOT NULL,
		value   TEXT NOT NULL,
		PRIMARY KEY (session, key)
	)`)
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to create session table")
	}

	return &SQLiteBackend{db: db, session: id}, nil
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *SQLiteBackend) get(ctx context.Context, q queryer, key string) (string, bool, error) {
	var val string
	err := q.QueryRowContext(ctx,
		`SELECT value FROM session_kv WHERE session = ? AND key = ?`, s.session, key).Scan(&val)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrapf(err, "failed to read session key %s", key)
	}
	return val, true, nil
}

func (s *SQLiteBackend) set(ctx context.Context, q queryer, key, value string) error {
	_, err := q.ExecContext(ctx,
		`INSERT INTO session_kv (session, key, value) VALUES (?, ?, ?)
		 ON CONFLICT (session, key) DO UPDATE SET value = excluded.value`,
		s.session, key, value)
	if err != nil {
		return errors.Wrapf(err, "failed to store session key %s", key)
	}
	return nil
}

func (s *SQLiteBackend) Get(ctx context.Context, key string) (string, bool, error) {
	return s.get(ctx, s.db, key)
}

func (s *SQLiteBackend) Set(ctx context.Context, key, value string) error {
	return s.set(ctx, s.db, key, value)
}

func (s *SQLiteBackend) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM session_kv WHERE session = ? AND key = ?`, s.session, key)
	if err != nil {
		return errors.Wrapf(err, "failed to delete session key %s", key)
	}
	return nil
}

func (s *SQLiteBackend) Update(ctx context.Context, key string, fn UpdateFunc) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin session transaction")
	}
	defer tx.Rollback()

	old, ok, err := s.get(ctx, tx, key)
	if err != nil {
		return err
	}
	val, err := fn(old, ok)
	if err != nil {
		return err
	}
	if err := s.set(ctx, tx, key, val); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "failed to commit session transaction")
	}
	return nil
}

func (s *SQLiteBackend) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM session_kv WHERE session = ?`, s.session); err != nil {
		return errors.Wrap(err, "failed to clear session")
	}
	return nil
}

func (s *SQLiteBackend) Close() error {
	return s.db.Close()
}
