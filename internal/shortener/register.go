package shortener

import (
	"context"
	"errors"
	"fmt"
)

// DefaultMaxAttempts is the number of codes tried before giving up on a registration.
const DefaultMaxAttempts = 10

// Registrar registers URLs, returning the existing mapping for an already known URL.
type Registrar struct {
	store        Repository
	generateCode CodeGenerator
	maxAttempts  int
}

// NewRegistrar creates a registrar that tries at most maxAttempts codes per registration.
func NewRegistrar(store Repository, generator CodeGenerator, maxAttempts int) (*Registrar, error) {
	if maxAttempts < 1 {
		return nil, fmt.Errorf("max attempts must be positive, got %d", maxAttempts)
	}

	return &Registrar{
		store:        store,
		generateCode: generator,
		maxAttempts:  maxAttempts,
	}, nil
}

// Register normalizes rawURL and returns its mapping. The boolean reports
// whether a new mapping was created by this call.
//
// The lookup and the insert are not atomic: two concurrent registrations of
// the same new URL may both create a mapping.
func (r *Registrar) Register(ctx context.Context, rawURL string) (*Mapping, bool, error) {
	normalizedURL, err := Normalize(rawURL)
	if err != nil {
		return nil, false, err
	}

	existing, err := r.store.GetByOriginalURL(ctx, normalizedURL)
	if err == nil {
		return existing, false, nil
	}

	if !errors.Is(err, ErrNotFound) {
		return nil, false, fmt.Errorf("lookup by original url: %w", err)
	}

	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		mapping, err := r.store.Insert(ctx, Code(r.generateCode()), normalizedURL)
		if err == nil {
			return mapping, true, nil
		}

		if !errors.Is(err, ErrDuplicateCode) {
			return nil, false, fmt.Errorf("insert mapping: %w", err)
		}
	}

	return nil, false, fmt.Errorf("%w after %d attempts", ErrCodeSpaceExhausted, r.maxAttempts)
}
