// Package server exposes checks over HTTP for pull-based supervisors.
package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/and161185/pgsql-check/internal/check"
	"github.com/and161185/pgsql-check/internal/config"
	"github.com/and161185/pgsql-check/internal/errs"
	"github.com/and161185/pgsql-check/internal/exporter"
	"github.com/and161185/pgsql-check/internal/modes"
	"github.com/and161185/pgsql-check/internal/server/middleware"
	"github.com/and161185/pgsql-check/model"
)

// StatusHeader carries the plugin exit status of a check response.
const StatusHeader = "X-Check-Status"

type Pinger interface {
	Ping(ctx context.Context) error
}

type Server struct {
	runner   *check.Runner
	table    modes.Table
	pinger   Pinger
	exporter *exporter.Exporter
	config   *config.ServerConfig
	logger   *zap.SugaredLogger
}

func NewServer(runner *check.Runner, table modes.Table, pinger Pinger, exp *exporter.Exporter, cfg *config.ServerConfig, logger *zap.SugaredLogger) *Server {
	return &Server{
		runner:   runner,
		table:    table,
		pinger:   pinger,
		exporter: exp,
		config:   cfg,
		logger:   logger,
	}
}

// Router builds the HTTP routes.
func (srv *Server) Router() (http.Handler, error) {
	trusted, err := middleware.TrustedCIDR(srv.config.TrustedSubnet)
	if err != nil {
		return nil, err
	}

	router := chi.NewRouter()
	router.Use(chiMiddleware.StripSlashes)
	router.Use(chiMiddleware.Recoverer)
	router.Use(middleware.LogMiddleware(srv.logger))
	router.Use(trusted)
	router.Get("/check/{mode}", srv.CheckHandler)
	router.Get("/modes", srv.ModesHandler)
	router.Get("/ping", srv.PingHandler)
	router.Handle("/metrics", srv.exporter.Handler())
	return router, nil
}

// Run serves until ctx is done, then shuts down gracefully.
func (srv *Server) Run(ctx context.Context) error {
	router, err := srv.Router()
	if err != nil {
		return err
	}

	hs := &http.Server{Addr: srv.config.Addr, Handler: router, ReadHeaderTimeout: 5 * time.Second}
	done := make(chan error, 1)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		done <- hs.Shutdown(shutdownCtx)
	}()

	srv.logger.Infow("server started", "addr", srv.config.Addr)
	if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return <-done
}

// CheckHandler runs one mode and answers with the plugin line.
func (srv *Server) CheckHandler(w http.ResponseWriter, r *http.Request) {
	mode := chi.URLParam(r, "mode")
	q := r.URL.Query()

	ctx, cancel := context.WithTimeout(r.Context(), srv.config.Timeout)
	defer cancel()

	start := time.Now()
	var o check.Outcome
	var body bytes.Buffer
	if mode == modes.SelfTest {
		o = srv.runner.SelfTest(ctx, srv.table, q.Get("warning"), q.Get("critical"), &body)
	} else {
		o = srv.runner.Run(ctx, srv.table, mode, q.Get("warning"), q.Get("critical"))
		srv.observe(mode, o, time.Since(start))
	}
	body.WriteString(o.Line)
	body.WriteByte('\n')

	status := http.StatusOK
	if o.Severity == model.Unknown {
		status = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set(StatusHeader, fmt.Sprint(o.ExitCode()))
	w.WriteHeader(status)
	_, _ = w.Write(body.Bytes())
}

func (srv *Server) observe(mode string, o check.Outcome, took time.Duration) {
	if errors.Is(o.Err, errs.ErrUnknownMode) {
		return
	}
	if o.Report != nil {
		srv.exporter.Observe(mode, o.Severity, o.Report.Value, o.Report.Unit, took)
		return
	}
	srv.exporter.Observe(mode, o.Severity, nil, "", took)
}

// ModesHandler lists the modes, one "name<TAB>help" per line.
func (srv *Server) ModesHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	for _, name := range srv.table.Names() {
		fmt.Fprintf(w, "%s\t%s\n", name, srv.table[name].Help)
	}
}

func (srv *Server) PingHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), srv.config.Timeout)
	defer cancel()

	if err := srv.pinger.Ping(ctx); err != nil {
		srv.logger.Warnw("ping failed", "err", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}
