package service

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const revocationKeyPrefix = "revoked:"

// RedisRevocations keeps signed-out token IDs in redis with a TTL
// matching the token's remaining life, so the set cleans itself up.
type RedisRevocations struct {
	rdb *redis.Client
}

func NewRedisRevocations(redisClient *redis.Client) *RedisRevocations {
	return &RedisRevocations{rdb: redisClient}
}

func (r *RedisRevocations) Revoke(ctx context.Context, jti string, until time.Time) error {
	ttl := time.Until(until)
	if ttl <= 0 {
		// Already expired, nothing to remember.
		return nil
	}
	return r.rdb.Set(ctx, revocationKeyPrefix+jti, "1", ttl).Err()
}

func (r *RedisRevocations) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := r.rdb.Exists(ctx, revocationKeyPrefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
