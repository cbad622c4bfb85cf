package shortener

import "context"

// Resolver looks up mappings by short code.
type Resolver struct {
	store Repository
}

// NewResolver creates a new resolver.
func NewResolver(store Repository) *Resolver {
	return &Resolver{store: store}
}

// Resolve returns the mapping for code, or ErrNotFound.
func (r *Resolver) Resolve(ctx context.Context, code Code) (*Mapping, error) {
	return r.store.GetByCode(ctx, code)
}
