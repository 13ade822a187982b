// Package metrics exposes the service's Prometheus instrumentation.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups the collectors observed by the report pipeline. A single
// instance is constructed at startup and injected where needed so tests can
// use an isolated registry.
type Metrics struct {
	ReportsByStatus   *prometheus.CounterVec
	FetchDuration     *prometheus.HistogramVec
	FetchErrors       *prometheus.CounterVec
	EntriesClassified *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ReportsByStatus: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "keywordgap_reports_total",
			Help: "Gap reports by terminal status",
		}, []string{"status"}),
		FetchDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "keywordgap_provider_fetch_duration_seconds",
			Help:    "Duration of keyword-set fetches against the SERP data provider",
			Buckets: prometheus.DefBuckets,
		}, []string{"provider"}),
		FetchErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "keywordgap_provider_fetch_errors_total",
			Help: "Provider fetch failures by retryability",
		}, []string{"provider", "retryable"}),
		EntriesClassified: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "keywordgap_entries_classified_total",
			Help: "Classified gap entries by kind",
		}, []string{"kind"}),
	}
}

// ObserveFetch records one provider fetch outcome.
func (m *Metrics) ObserveFetch(provider string, start time.Time, err error, retryable bool) {
	m.FetchDuration.WithLabelValues(provider).Observe(time.Since(start).Seconds())
	if err != nil {
		label := "false"
		if retryable {
			label = "true"
		}
		m.FetchErrors.WithLabelValues(provider, label).Inc()
	}
}
