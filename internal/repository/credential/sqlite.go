package credential

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"storefront-orders/internal/domain"
	"storefront-orders/internal/migrate"
)

// SQLiteStore keeps credentials in a local SQLite file.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLite opens (or creates) the credential file and applies its schema.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("credential path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := migrate.ApplySQLite(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db, now: time.Now}, nil
}

// Close closes the underlying database handle.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteStore) Put(ctx context.Context, c Credential) error {
	const q = `
INSERT INTO session_credentials (name, token, expires_at, created_at)
VALUES (?, ?, ?, ?)
ON CONFLICT (name) DO UPDATE
SET token = excluded.token,
    expires_at = excluded.expires_at,
    created_at = excluded.created_at
`
	_, err := s.db.ExecContext(ctx, q, c.Name, c.Token, toMillis(c.ExpiresAt), toMillis(s.now()))
	return err
}

func (s *SQLiteStore) Get(ctx context.Context, name string) (*Credential, error) {
	const q = `
SELECT name, token, expires_at, created_at
FROM session_credentials
WHERE name = ? AND expires_at > ?
LIMIT 1
`
	var (
		out       Credential
		expiresAt int64
		createdAt int64
	)
	err := s.db.QueryRowContext(ctx, q, name, toMillis(s.now())).Scan(&out.Name, &out.Token, &expiresAt, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	out.ExpiresAt = fromMillis(expiresAt)
	out.CreatedAt = fromMillis(createdAt)
	return &out, nil
}

func (s *SQLiteStore) Delete(ctx context.Context, name string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM session_credentials WHERE name = ?`, name)
	return err
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromMillis(v int64) time.Time {
	return time.UnixMilli(v).UTC()
}
