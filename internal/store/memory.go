package store

import (
	"context"
	"sync"
	"time"

	"github.com/serroba/url-shortener/internal/shortener"
)

// MemoryStore is an in-memory implementation of shortener.Repository.
// Contents are lost on restart.
type MemoryStore struct {
	mu     sync.RWMutex
	nextID int64
	codes  map[shortener.Code]shortener.Mapping
	urls   map[string]shortener.Code // original url -> oldest code
}

// NewMemoryStore creates a new in-memory URL store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		codes: make(map[shortener.Code]shortener.Mapping),
		urls:  make(map[string]shortener.Code),
	}
}

func (m *MemoryStore) Insert(_ context.Context, code shortener.Code, originalURL string) (*shortener.Mapping, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.codes[code]; exists {
		return nil, shortener.ErrDuplicateCode
	}

	m.nextID++
	mapping := shortener.Mapping{
		ID:          m.nextID,
		Code:        code,
		OriginalURL: originalURL,
		CreatedAt:   time.Now().UTC(),
	}

	m.codes[code] = mapping

	if _, exists := m.urls[originalURL]; !exists {
		m.urls[originalURL] = code
	}

	return &mapping, nil
}

func (m *MemoryStore) GetByCode(_ context.Context, code shortener.Code) (*shortener.Mapping, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	mapping, ok := m.codes[code]
	if !ok {
		return nil, shortener.ErrNotFound
	}

	return &mapping, nil
}

func (m *MemoryStore) GetByOriginalURL(_ context.Context, originalURL string) (*shortener.Mapping, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	code, ok := m.urls[originalURL]
	if !ok {
		return nil, shortener.ErrNotFound
	}

	mapping := m.codes[code]

	return &mapping, nil
}

// Len returns the number of stored mappings.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.codes)
}

// Ping always succeeds.
func (m *MemoryStore) Ping(_ context.Context) error {
	return nil
}

var _ shortener.Repository = (*MemoryStore)(nil)
