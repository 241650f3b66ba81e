// Package check runs a named mode end to end: fetch rows, compute the result,
// classify it and produce an Outcome.
package check

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/and161185/pgsql-check/internal/errs"
	"github.com/and161185/pgsql-check/internal/evaluator"
	"github.com/and161185/pgsql-check/internal/modes"
	"github.com/and161185/pgsql-check/internal/source"
	"github.com/and161185/pgsql-check/internal/strategy"
	"github.com/and161185/pgsql-check/internal/threshold"
	"github.com/and161185/pgsql-check/model"
	"github.com/and161185/pgsql-check/storage"
)

// Request is a validated check: the mode plus parsed ranges.
type Request struct {
	Mode     model.Mode
	Warning  *threshold.Range
	Critical *threshold.Range
}

// Prepare resolves the mode and parses both ranges. It touches nothing
// outside the process, so configuration faults surface before any query.
// An empty name selects the connect-time mode.
func Prepare(table modes.Table, name, warning, critical string) (Request, error) {
	if name == "" {
		name = modes.ConnectTime
	}
	mode, err := table.Lookup(name)
	if err != nil {
		return Request{}, err
	}
	w, c, err := ParseRanges(warning, critical)
	if err != nil {
		return Request{}, err
	}
	return Request{Mode: mode, Warning: w, Critical: c}, nil
}

// ParseRanges parses the warning and critical range texts.
func ParseRanges(warning, critical string) (*threshold.Range, *threshold.Range, error) {
	w, err := threshold.Parse(warning)
	if err != nil {
		return nil, nil, fmt.Errorf("%w (warning)", err)
	}
	c, err := threshold.Parse(critical)
	if err != nil {
		return nil, nil, fmt.Errorf("%w (critical)", err)
	}
	return w, c, nil
}

// Runner executes prepared requests against one server.
type Runner struct {
	Source      source.Querier
	Store       storage.DeltaStore
	Host        string
	ConnectTime time.Duration
	Now         func() time.Time
	Logger      *zap.SugaredLogger
}

func (r *Runner) logger() *zap.SugaredLogger {
	if r.Logger == nil {
		return zap.NewNop().Sugar()
	}
	return r.Logger
}

// Execute runs req and never panics on a fault: every error becomes an
// UNKNOWN outcome.
func (r *Runner) Execute(ctx context.Context, req Request) Outcome {
	log := r.logger().With("mode", req.Mode.Name)

	strat, err := strategy.New(req.Mode, strategy.Env{Store: r.Store, Host: r.Host, Now: r.Now})
	if err != nil {
		return Failure(err)
	}

	rows, err := r.fetch(ctx, req.Mode)
	if err != nil {
		log.Debugw("fetch failed", "err", err)
		return Failure(err)
	}
	log.Debugw("rows fetched", "rows", len(rows))

	res, err := strat.Compute(ctx, rows)
	if err != nil {
		log.Debugw("compute failed", "strategy", strat.Kind(), "err", err)
		return Failure(err)
	}

	rep := evaluator.Evaluate(res, req.Mode.Message, req.Warning, req.Critical)
	log.Infow("check evaluated", "status", rep.Severity.String(), "value", model.FormatValue(rep.Value))
	return Reported(rep)
}

// Run prepares and executes the named mode.
func (r *Runner) Run(ctx context.Context, table modes.Table, name, warning, critical string) Outcome {
	req, err := Prepare(table, name, warning, critical)
	if err != nil {
		return Failure(err)
	}
	return r.Execute(ctx, req)
}

// SelfTest runs every query mode in name order and writes one line per mode
// to w. time2connect is skipped: reaching this point already proved the
// connection. Malformed ranges fail the whole run before any query.
// The returned outcome carries the summary line; it is OK only when no mode
// failed.
func (r *Runner) SelfTest(ctx context.Context, table modes.Table, warning, critical string, w io.Writer) Outcome {
	if _, _, err := ParseRanges(warning, critical); err != nil {
		return Failure(err)
	}

	names := make([]string, 0, len(table))
	for _, name := range table.Names() {
		if name != modes.ConnectTime {
			names = append(names, name)
		}
	}
	failed := 0
	for _, name := range names {
		o := r.Run(ctx, table, name, warning, critical)
		if o.Err != nil {
			failed++
			fmt.Fprintf(w, "%s failed with: %v\n", name, o.Err)
			continue
		}
		fmt.Fprintf(w, "%s passed!\n", name)
	}

	sev := model.OK
	if failed > 0 {
		sev = model.Unknown
	}
	return Outcome{Severity: sev, Line: fmt.Sprintf("%d/%d tests failed.", failed, len(names))}
}

func (r *Runner) fetch(ctx context.Context, mode model.Mode) (model.Rows, error) {
	if mode.Query == "" {
		return model.Rows{{r.ConnectTime.Seconds()}}, nil
	}
	if r.Source == nil {
		return nil, fmt.Errorf("%w: mode %q: no data source", errs.ErrDataAccess, mode.Name)
	}
	return r.Source.Query(ctx, mode.Query)
}
