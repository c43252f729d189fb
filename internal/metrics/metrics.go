// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Holocron Contributors

// Package metrics exposes Prometheus collectors for imports, relationship
// fetches and change subscribers. A nil *Metrics is valid and records nothing.
package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	holoerr "github.com/holocron-dev/holocron/pkg/errors"
)

const namespace = "holocron"

// Result labels.
const (
	ResultSuccess   = "success"
	ResultError     = "error"
	ResultCancelled = "cancelled"
)

type Metrics struct {
	registry *prometheus.Registry

	imports        *prometheus.CounterVec
	importDuration prometheus.Histogram
	importedRows   *prometheus.GaugeVec
	fetches        *prometheus.CounterVec
	fetchDuration  *prometheus.HistogramVec
	subscribers    prometheus.Gauge
	batches        prometheus.Counter
}

// New builds a Metrics on its own registry, including the Go runtime and
// process collectors.
func New() (*Metrics, error) {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		imports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "import",
			Name:      "runs_total",
			Help:      "Snapshot imports by result.",
		}, []string{"result"}),
		importDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "import",
			Name:      "duration_seconds",
			Help:      "Wall time of snapshot import transactions.",
			Buckets:   prometheus.DefBuckets,
		}),
		importedRows: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "import",
			Name:      "rows",
			Help:      "Rows written by the last successful import, per entity kind or pivot.",
		}, []string{"table"}),
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "fetches_total",
			Help:      "Underlying relationship fetches started by caches, by relation and result.",
		}, []string{"relation", "result"}),
		fetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "fetch_duration_seconds",
			Help:      "Duration of relationship fetches.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"relation"}),
		subscribers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "notify",
			Name:      "subscribers",
			Help:      "Open change subscriptions.",
		}),
		batches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notify",
			Name:      "batches_total",
			Help:      "Change batches published.",
		}),
	}

	for _, c := range []prometheus.Collector{
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.imports, m.importDuration, m.importedRows,
		m.fetches, m.fetchDuration,
		m.subscribers, m.batches,
	} {
		if err := m.registry.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				return nil, holoerr.Wrap(err, holoerr.CodeMetricsRegisterConflict, "registering collector")
			}
			return nil, holoerr.Wrap(err, holoerr.CodeMetricsRegisterFailure, "registering collector")
		}
	}
	return m, nil
}

// Registry returns the registry backing m.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveImport records one import outcome. rows is only applied on success.
func (m *Metrics) ObserveImport(success bool, d time.Duration, rows map[string]int) {
	if m == nil {
		return
	}
	result := ResultError
	if success {
		result = ResultSuccess
		for table, n := range rows {
			m.importedRows.WithLabelValues(table).Set(float64(n))
		}
	}
	m.imports.WithLabelValues(result).Inc()
	m.importDuration.Observe(d.Seconds())
}

// ObserveFetch records one relationship fetch.
func (m *Metrics) ObserveFetch(relation, result string, d time.Duration) {
	if m == nil {
		return
	}
	m.fetches.WithLabelValues(relation, result).Inc()
	m.fetchDuration.WithLabelValues(relation).Observe(d.Seconds())
}

func (m *Metrics) SubscriberAdded() {
	if m == nil {
		return
	}
	m.subscribers.Inc()
}

func (m *Metrics) SubscriberRemoved() {
	if m == nil {
		return
	}
	m.subscribers.Dec()
}

func (m *Metrics) BatchPublished() {
	if m == nil {
		return
	}
	m.batches.Inc()
}
