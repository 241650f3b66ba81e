// Package source runs metric queries against PostgreSQL.
package source

//go:generate mockgen -destination=mocks/mock_querier.go -package=mocks github.com/and161185/pgsql-check/internal/source Querier

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/and161185/pgsql-check/internal/errs"
	"github.com/and161185/pgsql-check/model"
)

// Querier runs a query and returns its rows as numbers.
type Querier interface {
	Query(ctx context.Context, query string) (model.Rows, error)
}

// Postgres is a Querier backed by a pgx connection pool.
type Postgres struct {
	pool        *pgxpool.Pool
	host        string
	connectTime time.Duration
}

// Connect opens a pool for dsn and waits until the server answers.
// Retriable connection failures are retried until ctx expires.
func Connect(ctx context.Context, dsn string) (*Postgres, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid connection string: %w", errs.ErrConfiguration, err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrDataAccess, err)
	}

	var elapsed time.Duration
	err = WithRetry(ctx, func() error {
		start := time.Now()
		err := pool.Ping(ctx)
		elapsed = time.Since(start)
		return err
	})
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: %w", errs.ErrDataAccess, err)
	}

	return &Postgres{pool: pool, host: cfg.ConnConfig.Host, connectTime: elapsed}, nil
}

// Host returns the server host the pool connects to.
func (p *Postgres) Host() string {
	return p.host
}

// ConnectTime returns how long the successful connection attempt took.
func (p *Postgres) ConnectTime() time.Duration {
	return p.connectTime
}

func (p *Postgres) Query(ctx context.Context, query string) (model.Rows, error) {
	rows, err := p.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrDataAccess, err)
	}
	defer rows.Close()

	var out model.Rows
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", errs.ErrDataAccess, err)
		}
		row := make([]float64, len(values))
		for i, v := range values {
			f, err := toFloat(v)
			if err != nil {
				return nil, fmt.Errorf("%w: column %d: %w", errs.ErrDataAccess, i, err)
			}
			row[i] = f
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrDataAccess, err)
	}
	return out, nil
}

func (p *Postgres) Ping(ctx context.Context) error {
	if err := p.pool.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %w", errs.ErrDataAccess, err)
	}
	return nil
}

func (p *Postgres) Close() {
	p.pool.Close()
}

func toFloat(v any) (float64, error) {
	switch x := v.(type) {
	case nil:
		return 0, fmt.Errorf("value is NULL")
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case int32:
		return float64(x), nil
	case int16:
		return float64(x), nil
	case int8:
		return float64(x), nil
	case uint32:
		return float64(x), nil
	case uint64:
		return float64(x), nil
	case bool:
		if x {
			return 1, nil
		}
		return 0, nil
	case string:
		return strconv.ParseFloat(x, 64)
	case time.Time:
		return float64(x.UnixNano()) / float64(time.Second), nil
	case pgtype.Numeric:
		f, err := x.Float64Value()
		if err != nil {
			return 0, err
		}
		if !f.Valid {
			return 0, fmt.Errorf("value is NULL")
		}
		return f.Float64, nil
	}
	return 0, fmt.Errorf("unsupported type %T", v)
}
