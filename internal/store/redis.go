package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "portfolio:"

// maxUpdateRetries bounds how often Update retries after another client
// changed the watched key.
const maxUpdateRetries = 50

// RedisStore keeps values in Redis without expiry, so several server
// instances share visitor preferences.
type RedisStore struct {
	client *redis.Client
}

// OpenRedis connects to addr and verifies the connection.
func OpenRedis(ctx context.Context, addr string, db int) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, DB: db})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connecting to redis at %s: %w", addr, err)
	}
	return NewRedisStore(client), nil
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (r *RedisStore) Get(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, redisKeyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("err redis get %s: %w", key, err)
	}
	return val, nil
}

func (r *RedisStore) Set(ctx context.Context, key, value string) error {
	if err := r.client.Set(ctx, redisKeyPrefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("err redis set %s: %w", key, err)
	}
	return nil
}

// Update uses WATCH/MULTI: the write is discarded and retried when the key
// changed after it was read.
func (r *RedisStore) Update(ctx context.Context, key string, fn UpdateFunc) (string, error) {
	k := redisKeyPrefix + key
	var next string
	txf := func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, k).Result()
		found := true
		if errors.Is(err, redis.Nil) {
			found = false
		} else if err != nil {
			return err
		}
		next, err = fn(current, found)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, k, next, 0)
			return nil
		})
		return err
	}

	for i := 0; i < maxUpdateRetries; i++ {
		err := r.client.Watch(ctx, txf, k)
		if err == nil {
			return next, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return "", fmt.Errorf("err redis update %s: %w", key, err)
	}
	return "", fmt.Errorf("err redis update %s: too much contention", key)
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}
