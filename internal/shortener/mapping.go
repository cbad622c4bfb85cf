package shortener

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrInvalidURL is returned when a raw URL cannot be normalized into a well-formed absolute URL.
	ErrInvalidURL = errors.New("invalid url")
	// ErrNotFound is returned when no mapping matches a lookup.
	ErrNotFound = errors.New("url not found")
	// ErrDuplicateCode is returned by a Repository when an insert violates the short code uniqueness constraint.
	ErrDuplicateCode = errors.New("short code already exists")
	// ErrCodeSpaceExhausted is returned when every generation attempt collided with an existing code.
	ErrCodeSpaceExhausted = errors.New("unable to generate a unique short code")
)

// Code represents a short URL code.
type Code string

// Mapping links a short code to its original URL.
type Mapping struct {
	ID          int64
	Code        Code
	OriginalURL string
	CreatedAt   time.Time
}

// Repository is the durable store of mappings.
//
// Implementations must enforce uniqueness of Code in the storage engine itself
// and report a violation as ErrDuplicateCode. OriginalURL is indexed but not unique.
type Repository interface {
	GetByCode(ctx context.Context, code Code) (*Mapping, error)

	// GetByOriginalURL returns the oldest mapping whose original URL matches exactly.
	GetByOriginalURL(ctx context.Context, originalURL string) (*Mapping, error)

	// Insert stores a new mapping, assigning its ID and CreatedAt.
	Insert(ctx context.Context, code Code, originalURL string) (*Mapping, error)
}
