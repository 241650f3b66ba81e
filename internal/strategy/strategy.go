// Package strategy turns raw query rows into a single metric result.
//
// The set of strategies is closed: Direct, Ratio and Rate are the only
// implementations of Strategy, and New is the only place that picks one.
package strategy

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/and161185/pgsql-check/internal/errs"
	"github.com/and161185/pgsql-check/model"
	"github.com/and161185/pgsql-check/storage"
)

// Strategy computes a result from raw rows.
type Strategy interface {
	Compute(ctx context.Context, rows model.Rows) (model.Result, error)
	Kind() model.StrategyKind
	sealed()
}

// Env carries what the Rate strategy needs beyond the mode itself.
type Env struct {
	Store storage.DeltaStore
	Host  string
	Now   func() time.Time
}

// New returns the strategy for mode.
func New(mode model.Mode, env Env) (Strategy, error) {
	m := meta{label: mode.Label, unit: mode.Unit, modifier: mode.Scale()}

	switch mode.Kind {
	case model.Direct:
		return Direct{meta: m}, nil
	case model.Ratio:
		return Ratio{meta: m}, nil
	case model.Rate:
		if env.Store == nil {
			return nil, fmt.Errorf("%w: mode %q needs a state store", errs.ErrConfiguration, mode.Name)
		}
		now := env.Now
		if now == nil {
			now = time.Now
		}
		return Rate{
			meta:     m,
			store:    env.Store,
			identity: model.Identity{Host: env.Host, Query: mode.Query},
			now:      now,
		}, nil
	}
	return nil, fmt.Errorf("%w: unknown strategy %q for mode %q", errs.ErrConfiguration, mode.Kind, mode.Name)
}

type meta struct {
	label    string
	unit     string
	modifier float64
}

func (m meta) result(v *float64) model.Result {
	return model.Result{Value: v, Label: m.label, Unit: m.unit}
}

func (meta) sealed() {}

// Direct reports the first value of the first row.
type Direct struct {
	meta
}

func (Direct) Kind() model.StrategyKind { return model.Direct }

func (s Direct) Compute(ctx context.Context, rows model.Rows) (model.Result, error) {
	v, err := first(rows)
	if err != nil {
		return model.Result{}, err
	}
	return s.result(model.Float(v * s.modifier)), nil
}

// Ratio divides the first column of row 0 by the first column of row 1,
// rounded to two decimals. A zero divisor yields the scaled dividend.
type Ratio struct {
	meta
}

func (Ratio) Kind() model.StrategyKind { return model.Ratio }

func (s Ratio) Compute(ctx context.Context, rows model.Rows) (model.Result, error) {
	values := make([]float64, 0, len(rows))
	for _, row := range rows {
		if len(row) > 0 {
			values = append(values, row[0])
		}
	}
	if len(values) < 2 {
		return model.Result{}, fmt.Errorf("%w: ratio needs two values, got %d", errs.ErrMissingData, len(values))
	}

	a, b := values[0], values[1]
	if b == 0 {
		return s.result(model.Float(a * s.modifier)), nil
	}
	return s.result(model.Float(round2(a / b * s.modifier))), nil
}

// Rate reports the change per second of the first value since the previous run.
// The first run for an identity yields an absent value. The current sample is
// stored on every run.
type Rate struct {
	meta
	store    storage.DeltaStore
	identity model.Identity
	now      func() time.Time
}

func (Rate) Kind() model.StrategyKind { return model.Rate }

func (s Rate) Compute(ctx context.Context, rows model.Rows) (model.Result, error) {
	v, err := first(rows)
	if err != nil {
		return model.Result{}, err
	}

	prev, err := s.store.Load(ctx, s.identity)
	if err != nil {
		return model.Result{}, err
	}

	now := s.now()
	var value *float64
	if prev != nil {
		if elapsed := now.Sub(prev.ObservedAt).Seconds(); elapsed > 0 {
			value = model.Float((v - prev.Value) / elapsed * s.modifier)
		}
	}

	if err := s.store.Save(ctx, s.identity, model.DeltaRecord{ObservedAt: now, Value: v}); err != nil {
		return model.Result{}, err
	}
	return s.result(value), nil
}

func first(rows model.Rows) (float64, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return 0, errs.ErrMissingData
	}
	return rows[0][0], nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
