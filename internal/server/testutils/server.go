// Package testutils builds check servers wired to in-memory collaborators.
package testutils

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/and161185/pgsql-check/internal/check"
	"github.com/and161185/pgsql-check/internal/config"
	"github.com/and161185/pgsql-check/internal/exporter"
	"github.com/and161185/pgsql-check/internal/modes"
	"github.com/and161185/pgsql-check/internal/server"
	"github.com/and161185/pgsql-check/internal/source"
	"github.com/and161185/pgsql-check/storage/inmemory"
)

// PingFunc adapts a function to server.Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// NewTestServer returns a server over q with the built-in modes, an in-memory
// delta store and a fresh metrics registry.
func NewTestServer(q source.Querier, ping PingFunc, trustedSubnet string) (*server.Server, *exporter.Exporter) {
	if ping == nil {
		ping = func(context.Context) error { return nil }
	}
	runner := &check.Runner{
		Source:      q,
		Store:       inmemory.NewMemStorage(),
		Host:        "test",
		ConnectTime: 20 * time.Millisecond,
		Logger:      zap.NewNop().Sugar(),
	}
	exp := exporter.New(prometheus.NewRegistry())
	cfg := &config.ServerConfig{Timeout: time.Second, TrustedSubnet: trustedSubnet}
	return server.NewServer(runner, modes.Default(), ping, exp, cfg, zap.NewNop().Sugar()), exp
}
