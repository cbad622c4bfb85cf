package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/serroba/url-shortener/internal/shortener"
)

// AUTOINCREMENT keeps ids monotonic and never reused.
const sqliteSchema = `
	CREATE TABLE IF NOT EXISTS urls (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		short_code   TEXT NOT NULL,
		original_url TEXT NOT NULL,
		created_at   TIMESTAMP NOT NULL
	);
	CREATE UNIQUE INDEX IF NOT EXISTS ix_urls_short_code ON urls (short_code);
	CREATE INDEX IF NOT EXISTS ix_urls_original_url ON urls (original_url);
`

// SQLiteStore is an embedded, file-backed implementation of shortener.Repository.
type SQLiteStore struct {
	db *sql.DB
}

// sqliteDSN builds a URI filename; the path is escaped so '?', '#' and '%'
// stay part of the file name.
func sqliteDSN(path string) string {
	escaped := (&url.URL{Path: path}).EscapedPath()

	return "file:" + escaped + "?_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=on"
}

// OpenSQLiteStore opens (creating if needed) the database file at path and
// ensures the schema exists.
func OpenSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", sqliteDSN(path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	// a single writer connection avoids SQLITE_BUSY between pooled connections
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("create urls schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Insert(ctx context.Context, code shortener.Code, originalURL string) (*shortener.Mapping, error) {
	createdAt := time.Now().UTC()

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO urls (short_code, original_url, created_at) VALUES (?, ?, ?)`,
		string(code), originalURL, createdAt,
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return nil, shortener.ErrDuplicateCode
		}

		return nil, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("read inserted id: %w", err)
	}

	return &shortener.Mapping{
		ID:          id,
		Code:        code,
		OriginalURL: originalURL,
		CreatedAt:   createdAt,
	}, nil
}

func (s *SQLiteStore) GetByCode(ctx context.Context, code shortener.Code) (*shortener.Mapping, error) {
	query := `SELECT id, short_code, original_url, created_at FROM urls WHERE short_code = ?`

	return s.queryOne(ctx, query, string(code))
}

func (s *SQLiteStore) GetByOriginalURL(ctx context.Context, originalURL string) (*shortener.Mapping, error) {
	query := `SELECT id, short_code, original_url, created_at FROM urls WHERE original_url = ? ORDER BY id LIMIT 1`

	return s.queryOne(ctx, query, originalURL)
}

func (s *SQLiteStore) queryOne(ctx context.Context, query string, arg string) (*shortener.Mapping, error) {
	mapping, err := scanMapping(s.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, shortener.ErrNotFound
		}

		return nil, err
	}

	mapping.CreatedAt = mapping.CreatedAt.UTC()

	return mapping, nil
}

// Ping checks that the database file is reachable.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Shutdown closes the database.
func (s *SQLiteStore) Shutdown() error {
	return s.db.Close()
}

var _ shortener.Repository = (*SQLiteStore)(nil)
