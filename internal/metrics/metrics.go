// Package metrics holds the Prometheus collectors for cleaning runs and trip loads.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "trip_pipeline"

// Collectors groups the pipeline collectors with the registry they are registered on
type Collectors struct {
	Registry *prometheus.Registry

	Runs          *prometheus.CounterVec
	RowsOutput    *prometheus.CounterVec
	RowsExcluded  *prometheus.CounterVec
	RunDuration   prometheus.Histogram
	StageDuration *prometheus.HistogramVec
	TripsLoaded   prometheus.Counter
}

// New creates the collectors on a fresh registry
func New() *Collectors {
	c := &Collectors{
		Registry: prometheus.NewRegistry(),
		Runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Cleaning runs by final status.",
		}, []string{"status"}),
		RowsOutput: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_total",
			Help:      "Rows written per output partition.",
		}, []string{"partition"}),
		RowsExcluded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_excluded_total",
			Help:      "Rows excluded per stage.",
		}, []string{"stage"}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of complete cleaning runs.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
		}),
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Wall time per pipeline stage.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}, []string{"stage"}),
		TripsLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "trips_loaded_total",
			Help:      "Trips inserted into the trips table.",
		}),
	}

	c.Registry.MustRegister(
		c.Runs,
		c.RowsOutput,
		c.RowsExcluded,
		c.RunDuration,
		c.StageDuration,
		c.TripsLoaded,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// Handler serves the registry in the Prometheus exposition format
func (c *Collectors) Handler() http.Handler {
	return promhttp.HandlerFor(c.Registry, promhttp.HandlerOpts{})
}
