// Package metrics records Prometheus metrics for simulation runs.
//
// The simulator is a batch job, so metrics are kept on a private registry
// and written once at the end of a run to a node exporter textfile rather
// than served over HTTP. A nil *Collector is safe to use; all methods are
// no-ops on a nil receiver.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "montecarlo"
	subsystem = "engine"
)

// Collector holds the metrics for one process.
type Collector struct {
	registry *prometheus.Registry

	// Entities counts input records accumulated.
	Entities prometheus.Counter

	// Draws counts uniform draws consumed (entities * trials).
	Draws prometheus.Counter

	// Assignments counts (entity, trial) pairs routed to each group.
	// Labels: group
	Assignments *prometheus.CounterVec

	// Cells is the size of the accumulator matrix.
	Cells prometheus.Gauge

	// RunDuration measures the streaming phase of a run.
	RunDuration prometheus.Histogram
}

// New creates a Collector registered on a fresh registry.
func New() *Collector {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Collector{
		registry: reg,
		Entities: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "entities_total",
			Help:      "Total input entities accumulated",
		}),
		Draws: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "draws_total",
			Help:      "Total uniform draws consumed",
		}),
		Assignments: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "assignments_total",
			Help:      "Total (entity, trial) assignments by group",
		}, []string{"group"}),
		Cells: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "cells",
			Help:      "Number of (trial, group) cells in the accumulator matrix",
		}),
		RunDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "run_duration_seconds",
			Help:      "Duration of the streaming phase in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.01, 4, 10),
		}),
	}
}

// Registry returns the registry backing c.
func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

// SetCells records the accumulator size.
func (c *Collector) SetCells(n int) {
	if c == nil {
		return
	}
	c.Cells.Set(float64(n))
}

// ObserveRun records the totals of a completed streaming phase.
func (c *Collector) ObserveRun(entities int64, trials int, assignments []uint64, d time.Duration) {
	if c == nil {
		return
	}
	c.Entities.Add(float64(entities))
	c.Draws.Add(float64(entities) * float64(trials))
	for g, n := range assignments {
		c.Assignments.WithLabelValues(strconv.Itoa(g)).Add(float64(n))
	}
	c.RunDuration.Observe(d.Seconds())
}

// WriteTextfile writes all metrics to path in the Prometheus text format.
// The file is written atomically.
func (c *Collector) WriteTextfile(path string) error {
	if c == nil || path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, c.registry)
}
