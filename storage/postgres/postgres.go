// Package postgres keeps delta records in a PostgreSQL table, for setups
// where several pollers share one state database.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/and161185/pgsql-check/internal/errs"
	"github.com/and161185/pgsql-check/internal/source"
	"github.com/and161185/pgsql-check/model"
)

const (
	createTable = `CREATE TABLE IF NOT EXISTS pgsql_check_delta (
	key         text PRIMARY KEY,
	observed_at timestamptz NOT NULL,
	value       double precision NOT NULL
)`
	selectRecord = `SELECT observed_at, value FROM pgsql_check_delta WHERE key = $1`
	upsertRecord = `INSERT INTO pgsql_check_delta (key, observed_at, value) VALUES ($1, $2, $3)
ON CONFLICT (key) DO UPDATE SET observed_at = EXCLUDED.observed_at, value = EXCLUDED.value`
)

// DB is the subset of *pgxpool.Pool the store needs.
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type PostgresStorage struct {
	db DB
}

func NewPostgresStorage(db DB) *PostgresStorage {
	return &PostgresStorage{db: db}
}

// Connect opens a pool for dsn and creates the delta table if needed.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: state database: %w", errs.ErrPersistence, err)
	}
	err = source.WithRetry(ctx, func() error {
		_, err := pool.Exec(ctx, createTable)
		return err
	})
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: state database: %w", errs.ErrPersistence, err)
	}
	return pool, nil
}

func (store *PostgresStorage) Load(ctx context.Context, id model.Identity) (*model.DeltaRecord, error) {
	var rec model.DeltaRecord
	err := store.db.QueryRow(ctx, selectRecord, id.Key()).Scan(&rec.ObservedAt, &rec.Value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: load delta record: %w", errs.ErrPersistence, err)
	}
	return &rec, nil
}

func (store *PostgresStorage) Save(ctx context.Context, id model.Identity, rec model.DeltaRecord) error {
	if _, err := store.db.Exec(ctx, upsertRecord, id.Key(), rec.ObservedAt, rec.Value); err != nil {
		return fmt.Errorf("%w: save delta record: %w", errs.ErrPersistence, err)
	}
	return nil
}
