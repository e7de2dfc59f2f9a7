package kv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pressly/goose/v3"

	"github.com/dmitrijs2005/littlex/internal/client/migrations"
	"github.com/dmitrijs2005/littlex/internal/dbx"
	"github.com/dmitrijs2005/littlex/internal/filex"

	_ "modernc.org/sqlite" // pure-Go SQLite driver
)

// SQLiteStore keeps entries in the "kv" table. TTLs are evaluated against
// the store's clock on every read.
type SQLiteStore struct {
	db    *sql.DB // nil when bound to a transaction
	q     dbx.DBTX
	clock clock.Clock
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore wraps an already-migrated database.
func NewSQLiteStore(db *sql.DB, clk clock.Clock) *SQLiteStore {
	if clk == nil {
		clk = clock.New()
	}
	return &SQLiteStore{db: db, q: db, clock: clk}
}

// OpenSQLite opens (creating if needed) the database at path, applies the
// embedded migrations and returns a store over it.
func OpenSQLite(ctx context.Context, path string, clk clock.Clock) (*SQLiteStore, error) {
	if err := filex.EnsureParentDir(path); err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// One connection: serializes timer-driven and request-driven access and
	// keeps ":memory:" databases alive across calls.
	db.SetMaxOpenConns(1)

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate sqlite %s: %w", path, err)
	}
	return NewSQLiteStore(db, clk), nil
}

// RunMigrations applies the embedded goose migrations to db.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, ".")
}

func (s *SQLiteStore) Get(ctx context.Context, key string) ([]byte, error) {
	var (
		value    []byte
		storedAt int64
		ttl      int64
	)
	err := s.q.QueryRowContext(ctx,
		`SELECT value, stored_at, ttl_ms FROM kv WHERE key = ?`, key,
	).Scan(&value, &storedAt, &ttl)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get kv[%s]: %w", key, err)
	}

	if ttl > 0 && s.clock.Now().UnixMilli()-storedAt > ttl {
		// Conditional on stored_at so a concurrent fresh write survives.
		if _, err := s.q.ExecContext(ctx,
			`DELETE FROM kv WHERE key = ? AND stored_at = ?`, key, storedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to expire kv[%s]: %w", key, err)
		}
		return nil, nil
	}
	return value, nil
}

func (s *SQLiteStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if value == nil {
		value = []byte{}
	}
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO kv (key, value, stored_at, ttl_ms) VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			stored_at = excluded.stored_at,
			ttl_ms = excluded.ttl_ms
	`, key, value, s.clock.Now().UnixMilli(), ttlMillis(ttl))
	if err != nil {
		return fmt.Errorf("failed to set kv[%s]: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	if _, err := s.q.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete kv[%s]: %w", key, err)
	}
	return nil
}

// Update runs fn in a single transaction. Nested calls join the outer one.
func (s *SQLiteStore) Update(ctx context.Context, fn func(ctx context.Context, w Writer) error) error {
	if s.db == nil {
		return fn(ctx, s)
	}
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return fn(ctx, &SQLiteStore{q: tx, clock: s.clock})
	})
}

func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
