// Package exporter publishes check outcomes as Prometheus metrics.
package exporter

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/and161185/pgsql-check/internal/errs"
	"github.com/and161185/pgsql-check/model"
)

// Exporter bundles the collectors fed by check outcomes.
type Exporter struct {
	registry *prometheus.Registry
	Status   *prometheus.GaugeVec
	Value    *prometheus.GaugeVec
	Checks   *prometheus.CounterVec
	Duration *prometheus.HistogramVec
}

func New(registry *prometheus.Registry) *Exporter {
	e := &Exporter{
		registry: registry,
		Status: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "pgsql_check_status",
			Help: "Last check status: 0 OK, 1 WARNING, 2 CRITICAL, 3 UNKNOWN.",
		}, []string{"mode"}),
		Value: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "pgsql_check_value",
			Help: "Last computed value of the check.",
		}, []string{"mode", "unit"}),
		Checks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pgsql_check_runs_total",
			Help: "Total number of checks run.",
		}, []string{"mode", "status"}),
		Duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pgsql_check_duration_seconds",
			Help:    "Check duration in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"mode"}),
	}

	registry.MustRegister(e.Status, e.Value, e.Checks, e.Duration)
	return e
}

// Observe records one finished check. A check without a value drops the
// mode's value series, whatever its unit, so no stale value is exported.
func (e *Exporter) Observe(mode string, sev model.Severity, value *float64, unit string, took time.Duration) {
	e.Status.WithLabelValues(mode).Set(float64(sev))
	e.Checks.WithLabelValues(mode, sev.String()).Inc()
	e.Duration.WithLabelValues(mode).Observe(took.Seconds())
	if value == nil {
		e.Value.DeletePartialMatch(prometheus.Labels{"mode": mode})
		return
	}
	e.Value.WithLabelValues(mode, unit).Set(*value)
}

// Handler serves the registry in the exposition format.
func (e *Exporter) Handler() http.Handler {
	return promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{Registry: e.registry})
}

// WriteTextfile writes the registry for the node_exporter textfile collector.
func (e *Exporter) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, e.registry); err != nil {
		return fmt.Errorf("%w: textfile: %w", errs.ErrPersistence, err)
	}
	return nil
}
