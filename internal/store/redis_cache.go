package store

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/serroba/url-shortener/internal/shortener"
)

// RedisCacheRepository wraps a Repository with Redis caching for reads.
// Mappings are immutable, so cached entries never need invalidation; the TTL
// only bounds memory use.
//
// The URL index is filled only from GetByOriginalURL results, so it always
// points at the mapping the underlying store reports as the oldest.
type RedisCacheRepository struct {
	store       shortener.Repository
	client      *redis.Client
	prefix      string
	indexPrefix string
	ttl         time.Duration
}

// NewRedisCacheRepository creates a new Redis-cached repository decorator.
func NewRedisCacheRepository(
	store shortener.Repository, client *redis.Client, ttl time.Duration,
) *RedisCacheRepository {
	return &RedisCacheRepository{
		store:       store,
		client:      client,
		prefix:      "cache:url:",
		indexPrefix: "cache:url_index:",
		ttl:         ttl,
	}
}

// Insert stores a mapping in the underlying store and caches it by code.
func (r *RedisCacheRepository) Insert(
	ctx context.Context, code shortener.Code, originalURL string,
) (*shortener.Mapping, error) {
	mapping, err := r.store.Insert(ctx, code, originalURL)
	if err != nil {
		return nil, err
	}

	// Write-through: update cache after successful insert
	r.cacheMapping(ctx, mapping)

	return mapping, nil
}

// GetByCode retrieves a mapping by its code, checking cache first.
func (r *RedisCacheRepository) GetByCode(ctx context.Context, code shortener.Code) (*shortener.Mapping, error) {
	if mapping, err := r.getFromCache(ctx, code); err == nil {
		return mapping, nil
	}

	mapping, err := r.store.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	r.cacheMapping(ctx, mapping)

	return mapping, nil
}

// GetByOriginalURL retrieves a mapping by its original URL, checking the cached index first.
func (r *RedisCacheRepository) GetByOriginalURL(ctx context.Context, originalURL string) (*shortener.Mapping, error) {
	code, err := r.client.Get(ctx, r.indexPrefix+originalURL).Result()
	if err == nil {
		if mapping, err := r.getFromCache(ctx, shortener.Code(code)); err == nil {
			return mapping, nil
		}
	}

	mapping, err := r.store.GetByOriginalURL(ctx, originalURL)
	if err != nil {
		return nil, err
	}

	r.cacheMapping(ctx, mapping)
	_ = r.client.Set(ctx, r.indexPrefix+originalURL, string(mapping.Code), r.ttl).Err()

	return mapping, nil
}

func (r *RedisCacheRepository) getFromCache(ctx context.Context, code shortener.Code) (*shortener.Mapping, error) {
	result, err := r.client.HGetAll(ctx, r.prefix+string(code)).Result()
	if err != nil {
		return nil, err
	}

	if len(result) == 0 {
		return nil, shortener.ErrNotFound
	}

	return mappingFromHash(result), nil
}

func (r *RedisCacheRepository) cacheMapping(ctx context.Context, mapping *shortener.Mapping) {
	pipe := r.client.Pipeline()
	key := r.prefix + string(mapping.Code)

	pipe.HSet(ctx, key, map[string]interface{}{
		"id":           mapping.ID,
		"code":         string(mapping.Code),
		"original_url": mapping.OriginalURL,
		"created_at":   mapping.CreatedAt.UnixNano(),
	})

	if r.ttl > 0 {
		pipe.Expire(ctx, key, r.ttl)
	}

	_, _ = pipe.Exec(ctx)
}

// Ping checks Redis connectivity.
func (r *RedisCacheRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Compile-time check.
var _ shortener.Repository = (*RedisCacheRepository)(nil)
