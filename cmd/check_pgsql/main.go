// Command check_pgsql is a Nagios-compatible PostgreSQL health check.
//
// It runs one named mode, prints a single status line with performance data
// and exits with 0 (OK), 1 (WARNING), 2 (CRITICAL) or 3 (UNKNOWN).
//
//	check_pgsql -H db1 -U nagios -mode connections -w 80 -c 95
//	check_pgsql -H db1 -U nagios --commits -c 1000
//	check_pgsql -H db1 -U nagios -mode test
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/and161185/pgsql-check/internal/buildinfo"
	"github.com/and161185/pgsql-check/internal/check"
	"github.com/and161185/pgsql-check/internal/config"
	"github.com/and161185/pgsql-check/internal/exporter"
	"github.com/and161185/pgsql-check/internal/modes"
	"github.com/and161185/pgsql-check/internal/source"
	"github.com/and161185/pgsql-check/model"
	"github.com/and161185/pgsql-check/storage"
)

const program = "check_pgsql"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run is the single dispatcher: whatever happens below ends up as exactly one
// line on stdout and an exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) (code int) {
	defer func() {
		if r := recover(); r != nil {
			code = dispatch(stdout, recovered(r))
		}
	}()
	return dispatch(stdout, execute(ctx, args, stdout, stderr))
}

func dispatch(w io.Writer, o check.Outcome) int {
	fmt.Fprintln(w, o.Line)
	return o.ExitCode()
}

func recovered(r any) check.Outcome {
	return check.Outcome{
		Severity: model.Unknown,
		Line:     fmt.Sprintf("%sunexpected error (%T): %v", model.Unknown.Prefix(), r, r),
	}
}

func execute(ctx context.Context, args []string, stdout, stderr io.Writer) check.Outcome {
	table := modes.Default()

	cfg, err := config.NewCheckConfig(args, table.Names(), stderr)
	if err != nil {
		return check.Failure(err)
	}
	if cfg.Version {
		var b strings.Builder
		buildinfo.Write(&b, program)
		return check.Outcome{Severity: model.OK, Line: strings.TrimSuffix(b.String(), "\n")}
	}

	logger, err := config.NewLogger(cfg.LogLevel, "stderr")
	if err != nil {
		return check.Failure(err)
	}
	defer func() { _ = logger.Sync() }()

	if cfg.ModesFile != "" {
		if table, err = modes.Load(cfg.ModesFile); err != nil {
			return check.Failure(err)
		}
	}

	// Everything that can be validated offline is validated before connecting.
	selfTest := cfg.Mode == modes.SelfTest
	var req check.Request
	if selfTest {
		if _, _, err = check.ParseRanges(cfg.Warning, cfg.Critical); err != nil {
			return check.Failure(err)
		}
	} else if req, err = check.Prepare(table, cfg.Mode, cfg.Warning, cfg.Critical); err != nil {
		return check.Failure(err)
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	store, closeStore, err := storage.Open(ctx, cfg.State)
	if err != nil {
		return check.Failure(err)
	}
	defer func() {
		if err := closeStore(); err != nil {
			logger.Warnw("failed to close state store", "err", err)
		}
	}()

	pg, err := source.Connect(ctx, cfg.ConnString())
	if err != nil {
		return check.Failure(err)
	}
	defer pg.Close()
	logger.Debugw("connected", "host", pg.Host(), "connect_time", pg.ConnectTime())

	runner := &check.Runner{
		Source:      pg,
		Store:       store,
		Host:        pg.Host(),
		ConnectTime: pg.ConnectTime(),
		Logger:      logger,
	}

	if selfTest {
		return runner.SelfTest(ctx, table, cfg.Warning, cfg.Critical, stdout)
	}

	start := time.Now()
	o := runner.Execute(ctx, req)
	if cfg.Textfile != "" {
		writeTextfile(cfg.Textfile, req.Mode, o, time.Since(start), logger)
	}
	return o
}

// writeTextfile exports the outcome for the node_exporter textfile collector.
// A failure here is logged and does not change the check result.
func writeTextfile(path string, mode model.Mode, o check.Outcome, took time.Duration, logger *zap.SugaredLogger) {
	exp := exporter.New(prometheus.NewRegistry())
	var value *float64
	if o.Report != nil {
		value = o.Report.Value
	}
	exp.Observe(mode.Name, o.Severity, value, mode.Unit, took)
	if err := exp.WriteTextfile(path); err != nil {
		logger.Warnw("failed to write textfile", "path", path, "err", err)
	}
}
