package store_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/serroba/url-shortener/internal/shortener"
	"github.com/serroba/url-shortener/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openSQLite(t *testing.T, path string) *store.SQLiteStore {
	t.Helper()

	s, err := store.OpenSQLiteStore(context.Background(), path)
	if err != nil {
		// go-sqlite3 needs cgo; without it every open fails
		t.Skipf("SQLite not available: %v", err)
	}

	t.Cleanup(func() { _ = s.Shutdown() })

	return s
}

func TestSQLiteStore_Contract(t *testing.T) {
	s := openSQLite(t, filepath.Join(t.TempDir(), "urls.db"))

	testRepositoryContract(t, s)
}

func TestSQLiteStore_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "database", "urls.db")

	s := openSQLite(t, path)

	assert.FileExists(t, path)
	require.NoError(t, s.Ping(context.Background()))
}

func TestSQLiteStore_KeepsReservedCharactersInPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "urls?mode=ro#100%.db")

	s := openSQLite(t, path)

	_, err := s.Insert(context.Background(), "resv01", "https://example.com/reserved")
	require.NoError(t, err)

	assert.FileExists(t, path)
	assert.NoFileExists(t, filepath.Join(dir, "urls"))
}

func TestSQLiteStore_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "urls.db")

	first, err := store.OpenSQLiteStore(ctx, path)
	if err != nil {
		t.Skipf("SQLite not available: %v", err)
	}

	inserted, err := first.Insert(ctx, "keep01", "https://example.com/durable")
	require.NoError(t, err)
	require.NoError(t, first.Shutdown())

	second := openSQLite(t, path)

	got, err := second.GetByCode(ctx, "keep01")
	require.NoError(t, err)
	assert.Equal(t, inserted.ID, got.ID)
	assert.Equal(t, "https://example.com/durable", got.OriginalURL)

	_, err = second.Insert(ctx, "keep01", "https://example.com/other")
	require.ErrorIs(t, err, shortener.ErrDuplicateCode)

	next, err := second.Insert(ctx, "next01", "https://example.com/next")
	require.NoError(t, err)
	assert.Greater(t, next.ID, inserted.ID)
}
