package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/serroba/url-shortener/internal/shortener"
)

const pgErrCodeUniqueViolation = "23505"

// postgresSchema uses a hash index on original_url: btree entries are capped
// at roughly 2.7kB and URLs are unbounded.
const postgresSchema = `
	CREATE TABLE IF NOT EXISTS urls (
		id           BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
		short_code   VARCHAR(64) NOT NULL,
		original_url TEXT NOT NULL,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	CREATE UNIQUE INDEX IF NOT EXISTS ix_urls_short_code ON urls (short_code);
	CREATE INDEX IF NOT EXISTS ix_urls_original_url ON urls USING hash (original_url);
`

// PostgresStore is a PostgreSQL implementation of shortener.Repository.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL-backed URL store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Migrate creates the urls table and its indexes if they do not exist.
func (p *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("create urls schema: %w", err)
	}

	return nil
}

func (p *PostgresStore) Insert(ctx context.Context, code shortener.Code, originalURL string) (*shortener.Mapping, error) {
	query := `
		INSERT INTO urls (short_code, original_url)
		VALUES ($1, $2)
		RETURNING id, short_code, original_url, created_at
	`

	mapping, err := scanMapping(p.pool.QueryRow(ctx, query, string(code), originalURL))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgErrCodeUniqueViolation {
			return nil, shortener.ErrDuplicateCode
		}

		return nil, err
	}

	return mapping, nil
}

func (p *PostgresStore) GetByCode(ctx context.Context, code shortener.Code) (*shortener.Mapping, error) {
	query := `
		SELECT id, short_code, original_url, created_at
		FROM urls
		WHERE short_code = $1
	`

	return p.queryOne(ctx, query, string(code))
}

func (p *PostgresStore) GetByOriginalURL(ctx context.Context, originalURL string) (*shortener.Mapping, error) {
	query := `
		SELECT id, short_code, original_url, created_at
		FROM urls
		WHERE original_url = $1
		ORDER BY id
		LIMIT 1
	`

	return p.queryOne(ctx, query, originalURL)
}

func (p *PostgresStore) queryOne(ctx context.Context, query string, arg string) (*shortener.Mapping, error) {
	mapping, err := scanMapping(p.pool.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shortener.ErrNotFound
		}

		return nil, err
	}

	return mapping, nil
}

// Ping checks database connectivity.
func (p *PostgresStore) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// Shutdown closes the connection pool.
func (p *PostgresStore) Shutdown() error {
	p.pool.Close()

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMapping(row rowScanner) (*shortener.Mapping, error) {
	var (
		mapping shortener.Mapping
		code    string
	)

	if err := row.Scan(&mapping.ID, &code, &mapping.OriginalURL, &mapping.CreatedAt); err != nil {
		return nil, err
	}

	mapping.Code = shortener.Code(code)

	return &mapping, nil
}

var _ shortener.Repository = (*PostgresStore)(nil)
