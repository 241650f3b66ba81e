package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/and161185/pgsql-check/internal/errs"
	"github.com/and161185/pgsql-check/storage/file"
	"github.com/and161185/pgsql-check/storage/postgres"
	redisstore "github.com/and161185/pgsql-check/storage/redis"
)

// Backends accepted by Open.
const (
	BackendFile     = "file"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// Options select and configure a DeltaStore backend.
type Options struct {
	Backend       string
	Dir           string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	TTL           time.Duration
	DSN           string // state database for the postgres backend
}

// Open builds the store described by opts. The returned close func releases
// its connections.
func Open(ctx context.Context, opts Options) (DeltaStore, func() error, error) {
	switch opts.Backend {
	case BackendFile, "":
		return file.NewFileStorage(opts.Dir), func() error { return nil }, nil
	case BackendRedis:
		client, err := redisstore.Connect(ctx, opts.RedisAddr, opts.RedisPassword, opts.RedisDB)
		if err != nil {
			return nil, nil, err
		}
		return redisstore.NewRedisStorage(client, opts.TTL), client.Close, nil
	case BackendPostgres:
		pool, err := postgres.Connect(ctx, opts.DSN)
		if err != nil {
			return nil, nil, err
		}
		return postgres.NewPostgresStorage(pool), func() error { pool.Close(); return nil }, nil
	}
	return nil, nil, fmt.Errorf("%w: unknown state backend %q", errs.ErrConfiguration, opts.Backend)
}
