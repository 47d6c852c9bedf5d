package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// maxTxRetries bounds optimistic retries when a watched key changes under Update.
const maxTxRetries = 10

// RedisKV stores board keys in Redis without expiry, under an optional prefix.
type RedisKV struct {
	rdb    *redis.Client
	prefix string
}

// NewRedisKV returns a RedisKV. prefix is prepended to every key (e.g. "board:").
func NewRedisKV(rdb *redis.Client, prefix string) *RedisKV {
	return &RedisKV{rdb: rdb, prefix: prefix}
}

func (r *RedisKV) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := r.rdb.Get(ctx, r.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (r *RedisKV) Set(ctx context.Context, key, value string) error {
	return r.rdb.Set(ctx, r.prefix+key, value, 0).Err()
}

func (r *RedisKV) Delete(ctx context.Context, key string) error {
	return r.rdb.Del(ctx, r.prefix+key).Err()
}

// Update runs fn inside WATCH/MULTI and retries when another client wrote the key first.
func (r *RedisKV) Update(ctx context.Context, key string, fn UpdateFunc) error {
	k := r.prefix + key
	txf := func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, k).Result()
		ok := true
		if errors.Is(err, redis.Nil) {
			ok = false
		} else if err != nil {
			return err
		}
		next, err := fn(cur, ok)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, k, next, 0)
			return nil
		})
		return err
	}
	for i := 0; i < maxTxRetries; i++ {
		err := r.rdb.Watch(ctx, txf, k)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return fmt.Errorf("update %s: %w", k, redis.TxFailedErr)
}
