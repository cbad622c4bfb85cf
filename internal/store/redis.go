package store

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/serroba/url-shortener/internal/shortener"
)

// insertScript creates the mapping hash only if the code is free, so the
// uniqueness check and the write happen atomically inside Redis.
//
// KEYS[1] mapping hash, KEYS[2] id sequence, KEYS[3] original url index
// ARGV[1] code, ARGV[2] original url, ARGV[3] created at (unix nanos)
var insertScript = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 1 then
	return 0
end
local id = redis.call("INCR", KEYS[2])
redis.call("HSET", KEYS[1], "id", id, "code", ARGV[1], "original_url", ARGV[2], "created_at", ARGV[3])
redis.call("HSETNX", KEYS[3], ARGV[2], ARGV[1])
return id
`)

// RedisStore is a Redis implementation of shortener.Repository. Durability
// depends on the server's persistence settings (AOF or RDB).
type RedisStore struct {
	client  *redis.Client
	prefix  string // "url:" + code -> mapping hash
	seqKey  string // "url_seq" id counter
	hashKey string // "url_index" original url -> oldest code
}

// NewRedisStore creates a new Redis-backed URL store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{
		client:  client,
		prefix:  "url:",
		seqKey:  "url_seq",
		hashKey: "url_index",
	}
}

func (r *RedisStore) Insert(ctx context.Context, code shortener.Code, originalURL string) (*shortener.Mapping, error) {
	createdAt := time.Now().UTC()

	id, err := insertScript.Run(ctx, r.client,
		[]string{r.prefix + string(code), r.seqKey, r.hashKey},
		string(code), originalURL, createdAt.UnixNano(),
	).Int64()
	if err != nil {
		return nil, err
	}

	if id == 0 {
		return nil, shortener.ErrDuplicateCode
	}

	return &shortener.Mapping{
		ID:          id,
		Code:        code,
		OriginalURL: originalURL,
		CreatedAt:   createdAt,
	}, nil
}

func (r *RedisStore) GetByCode(ctx context.Context, code shortener.Code) (*shortener.Mapping, error) {
	result, err := r.client.HGetAll(ctx, r.prefix+string(code)).Result()
	if err != nil {
		return nil, err
	}

	if len(result) == 0 {
		return nil, shortener.ErrNotFound
	}

	return mappingFromHash(result), nil
}

func (r *RedisStore) GetByOriginalURL(ctx context.Context, originalURL string) (*shortener.Mapping, error) {
	code, err := r.client.HGet(ctx, r.hashKey, originalURL).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, shortener.ErrNotFound
		}

		return nil, err
	}

	return r.GetByCode(ctx, shortener.Code(code))
}

// Ping checks Redis connectivity.
func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func mappingFromHash(fields map[string]string) *shortener.Mapping {
	mapping := &shortener.Mapping{
		Code:        shortener.Code(fields["code"]),
		OriginalURL: fields["original_url"],
	}

	if id, err := strconv.ParseInt(fields["id"], 10, 64); err == nil {
		mapping.ID = id
	}

	if nanos, err := strconv.ParseInt(fields["created_at"], 10, 64); err == nil {
		mapping.CreatedAt = time.Unix(0, nanos).UTC()
	}

	return mapping
}

var _ shortener.Repository = (*RedisStore)(nil)
