// Package redis keeps delta records in Redis so that pollers on several hosts
// share the previous sample of a check.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/and161185/pgsql-check/internal/errs"
	"github.com/and161185/pgsql-check/model"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "pgsql-check:"

// Client is the subset of *redis.Client the store needs.
type Client interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

type RedisStorage struct {
	client Client
	ttl    time.Duration
}

// NewRedisStorage wraps client. A zero ttl keeps records forever.
func NewRedisStorage(client Client, ttl time.Duration) *RedisStorage {
	return &RedisStorage{client: client, ttl: ttl}
}

// Connect dials addr and checks the connection.
func Connect(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:       addr,
		Password:   password,
		DB:         db,
		MaxRetries: 3,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: failed to connect to redis %s: %w", errs.ErrPersistence, addr, err)
	}
	return client, nil
}

// Key returns the redis key that holds the record for id.
func Key(id model.Identity) string {
	return keyPrefix + id.Key()
}

func (store *RedisStorage) Load(ctx context.Context, id model.Identity) (*model.DeltaRecord, error) {
	data, err := store.client.Get(ctx, Key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get from redis: %w", errs.ErrPersistence, err)
	}

	var rec model.DeltaRecord
	if err := json.Unmarshal(data, &rec); err != nil || rec.ObservedAt.IsZero() {
		return nil, nil
	}
	return &rec, nil
}

func (store *RedisStorage) Save(ctx context.Context, id model.Identity, rec model.DeltaRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("%w: failed to marshal record: %w", errs.ErrPersistence, err)
	}
	if err := store.client.Set(ctx, Key(id), data, store.ttl).Err(); err != nil {
		return fmt.Errorf("%w: failed to set in redis: %w", errs.ErrPersistence, err)
	}
	return nil
}
