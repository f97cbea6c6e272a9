// internal/service/inventory/infrastructure/redis_idempotency.go
package infrastructure

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const idempotencyKeyPrefix = "inventory:orderplaced:"

// RedisIdempotencyStore 是 port.IdempotencyStore 的 Redis 实现。
// SETNX + TTL: 第一次见到 orderId 时占位成功，重复投递直接短路。
// Redis 故障时调用方放行请求: 数据库唯一约束仍然兜底。
type RedisIdempotencyStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisIdempotencyStore 创建一个新的幂等存储实例。
// TTL 取预占超时的两倍: 键过期时，对应预占要么早已进入终态，
// 要么已被 Reaper 取消，重复创建会撞上唯一约束。
func NewRedisIdempotencyStore(client *redis.Client, reservationTTL time.Duration) *RedisIdempotencyStore {
	return &RedisIdempotencyStore{client: client, ttl: 2 * reservationTTL}
}

func (s *RedisIdempotencyStore) SetIdempotency(ctx context.Context, key string) (bool, error) {
	ok, err := s.client.SetNX(ctx, idempotencyKeyPrefix+key, 1, s.ttl).Result()
	if err != nil {
		return false, errors.Wrap(err, "idempotency setnx")
	}
	return ok, nil
}
