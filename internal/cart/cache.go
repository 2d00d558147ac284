package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss is returned when no cached view exists.
var ErrCacheMiss = errors.New("cart cache miss")

// Cache stores rendered cart views per user.
// Set must not replace a cached view whose Version is newer than view.Version.
type Cache interface {
	Get(ctx context.Context, userID uuid.UUID) (View, error)
	Set(ctx context.Context, userID uuid.UUID, view View) error
	Delete(ctx context.Context, userID uuid.UUID) error
}

// setScript writes the view and its version marker unless the marker is newer.
// KEYS[1] view, KEYS[2] version marker; ARGV[1] version, ARGV[2] payload, ARGV[3] ttl ms.
var setScript = redis.NewScript(`local cur = redis.call("GET", KEYS[2])
if cur and tonumber(cur) > tonumber(ARGV[1]) then
	return 0
end
redis.call("SET", KEYS[1], ARGV[2], "PX", ARGV[3])
redis.call("SET", KEYS[2], ARGV[1], "PX", ARGV[3])
return 1`)

// RedisCache is a Cache backed by Redis string keys with jittered expiry.
// Each view key has a version marker so a slow reader cannot overwrite a newer write.
type RedisCache struct {
	client  redis.Cmdable
	baseTTL time.Duration
	jitter  time.Duration
}

// NewRedisCache returns a cache with the given base TTL; a fifth of it is added as random jitter.
func NewRedisCache(client redis.Cmdable, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &RedisCache{client: client, baseTTL: ttl, jitter: ttl / 5}
}

func (r *RedisCache) Get(ctx context.Context, userID uuid.UUID) (View, error) {
	data, err := r.client.Get(ctx, cacheKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return View{}, ErrCacheMiss
	}
	if err != nil {
		return View{}, fmt.Errorf("redis get failed: %w", err)
	}
	var view View
	if err := json.Unmarshal(data, &view); err != nil {
		return View{}, fmt.Errorf("unmarshal cart failed: %w", err)
	}
	return view, nil
}

func (r *RedisCache) Set(ctx context.Context, userID uuid.UUID, view View) error {
	data, err := json.Marshal(view)
	if err != nil {
		return fmt.Errorf("marshal cart failed: %w", err)
	}
	ttl := r.baseTTL
	if r.jitter > 0 {
		ttl += rand.N(r.jitter)
	}
	keys := []string{cacheKey(userID), versionKey(userID)}
	if err := setScript.Run(ctx, r.client, keys, view.Version, data, ttl.Milliseconds()).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

// Delete drops the view but keeps the version marker, so older views stay rejected.
func (r *RedisCache) Delete(ctx context.Context, userID uuid.UUID) error {
	if err := r.client.Del(ctx, cacheKey(userID)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

// Both keys share a hash tag so the script stays on one cluster slot.
func cacheKey(userID uuid.UUID) string {
	return fmt.Sprintf("cart:{%s}", userID)
}

func versionKey(userID uuid.UUID) string {
	return fmt.Sprintf("cart:{%s}:version", userID)
}
