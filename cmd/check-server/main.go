// Command check-server serves PostgreSQL checks over HTTP.
//
//	GET /check/{mode}?warning=..&critical=..   plugin line, X-Check-Status header
//	GET /modes                                 available modes
//	GET /ping                                  database reachability
//	GET /metrics                               Prometheus metrics
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/and161185/pgsql-check/internal/buildinfo"
	"github.com/and161185/pgsql-check/internal/check"
	"github.com/and161185/pgsql-check/internal/config"
	"github.com/and161185/pgsql-check/internal/exporter"
	"github.com/and161185/pgsql-check/internal/modes"
	"github.com/and161185/pgsql-check/internal/server"
	"github.com/and161185/pgsql-check/internal/source"
	"github.com/and161185/pgsql-check/storage"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stderr)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stderr io.Writer) error {
	cfg, err := config.NewServerConfig(args, stderr)
	if err != nil {
		return err
	}
	buildinfo.Write(stderr, "check-server")

	logger, err := config.NewLogger(cfg.LogLevel, "stdout")
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	table := modes.Default()
	if cfg.ModesFile != "" {
		if table, err = modes.Load(cfg.ModesFile); err != nil {
			return err
		}
	}

	store, closeStore, err := storage.Open(ctx, cfg.State)
	if err != nil {
		return err
	}
	defer closeStore()

	pg, err := source.Connect(ctx, cfg.ConnString())
	if err != nil {
		return err
	}
	defer pg.Close()

	logger.Infow("server config",
		"addr", cfg.Addr,
		"db_host", pg.Host(),
		"state_backend", cfg.State.Backend,
		"modes", len(table),
		"trusted_subnet", cfg.TrustedSubnet,
	)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	runner := &check.Runner{
		Source:      pg,
		Store:       store,
		Host:        pg.Host(),
		ConnectTime: pg.ConnectTime(),
		Logger:      logger,
	}
	srv := server.NewServer(runner, table, pg, exporter.New(registry), cfg, logger)
	return srv.Run(ctx)
}
