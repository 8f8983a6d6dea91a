package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type RedisClient struct {
	client  *redis.Client
	lockTTL time.Duration
	log     *zap.Logger
}

func NewRedisClient(addr, password string, db int, lockTTL time.Duration, log *zap.Logger) (*RedisClient, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Info("Redis connected successfully", zap.String("addr", addr))

	if lockTTL <= 0 {
		lockTTL = 30 * time.Second
	}

	return &RedisClient{
		client:  rdb,
		lockTTL: lockTTL,
		log:     log,
	}, nil
}

func (r *RedisClient) Close() error {
	return r.client.Close()
}

// AcquireOrderLock — SETNX-замок на заказ с TTL на случай падения держателя.
// Implements service.Locker.
func (r *RedisClient) AcquireOrderLock(ctx context.Context, orderID uuid.UUID) (func(), bool, error) {
	key := fmt.Sprintf("cancel:lock:%s", orderID)
	token := uuid.NewString()

	ok, err := r.client.SetNX(ctx, key, token, r.lockTTL).Result()
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}

	release := func() {
		// Снимаем только свой замок: токен сверяется перед удалением.
		const script = `if redis.call("get", KEYS[1]) == ARGV[1] then return redis.call("del", KEYS[1]) else return 0 end`
		if err := r.client.Eval(context.Background(), script, []string{key}, token).Err(); err != nil {
			r.log.Warn("failed to release order lock", zap.String("key", key), zap.Error(err))
		}
	}
	return release, true, nil
}
