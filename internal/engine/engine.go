// Package engine runs the trial assignment and accumulation loop.
//
// For every entity read from the input the engine draws one uniform value
// per trial, maps each draw to a group through a distribution.Sampler, and
// adds the entity's values into the (trial, group) cell of the accumulator.
// Entities are consumed one at a time; the input is never materialized.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/monetate/monte-carlo-simulator/internal/distribution"
	"github.com/monetate/monte-carlo-simulator/internal/draws"
	"github.com/monetate/monte-carlo-simulator/internal/metrics"
	"github.com/monetate/monte-carlo-simulator/internal/record"
)

// cancelCheckInterval is how many entities the sequential loop processes
// between context checks.
const cancelCheckInterval = 1024

// RecordSource yields entity summaries until it returns io.EOF.
type RecordSource interface {
	Next() (record.Summary, error)
}

// Config holds the run parameters.
type Config struct {
	// Trials is the number of independent simulation trials.
	Trials int
	// Workers is the number of trial shards. Values below 2 run sequentially.
	Workers int
	// Seed and Algorithm select the draw sources.
	Seed      uint64
	Algorithm draws.Algorithm
	// MaxCells bounds trials*groups; 0 disables the check.
	MaxCells int
}

// Result is the outcome of a run.
type Result struct {
	Matrix *Matrix
	// Entities is the number of records accumulated.
	Entities int64
	// Assignments counts the (entity, trial) pairs routed to each group.
	Assignments []uint64
	// Duration covers the streaming phase.
	Duration time.Duration
}

// Engine accumulates entity outcomes across trials.
type Engine struct {
	sampler distribution.Sampler
	cfg     Config
	logger  *slog.Logger
	metrics *metrics.Collector
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for run diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithMetrics sets the metrics collector. A nil collector disables metrics.
func WithMetrics(m *metrics.Collector) Option {
	return func(e *Engine) { e.metrics = m }
}

// New creates an engine over sampler.
func New(sampler distribution.Sampler, cfg Config, opts ...Option) (*Engine, error) {
	if sampler == nil {
		return nil, errors.New("engine: sampler is required")
	}
	if cfg.Trials <= 0 {
		return nil, fmt.Errorf("engine: trials must be positive, got %d", cfg.Trials)
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.Workers > cfg.Trials {
		cfg.Workers = cfg.Trials
	}
	if cfg.Algorithm == "" {
		cfg.Algorithm = draws.MT19937
	}

	e := &Engine{
		sampler: sampler,
		cfg:     cfg,
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Workers returns the effective number of trial shards.
func (e *Engine) Workers() int {
	return e.cfg.Workers
}

// Run streams records to completion using the configured draw sources.
// With one worker the run is sequential over a single source; otherwise the
// trial axis is sharded across workers, each with its own source.
func (e *Engine) Run(ctx context.Context, records RecordSource) (*Result, error) {
	if e.cfg.Workers > 1 {
		return e.runSharded(ctx, records)
	}
	src, err := draws.New(e.cfg.Algorithm, e.cfg.Seed, 0)
	if err != nil {
		return nil, err
	}
	return e.RunWithSource(ctx, records, src)
}

// RunWithSource streams records sequentially, taking one batch of Trials
// draws from src per entity.
func (e *Engine) RunWithSource(ctx context.Context, records RecordSource, src draws.Source) (*Result, error) {
	m, err := e.newMatrix()
	if err != nil {
		return nil, err
	}

	start := time.Now()
	buf := make([]float64, e.cfg.Trials)
	assignments := make([]uint64, m.groups)
	var entities int64

	for {
		if entities%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		s, err := records.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		src.Fill(buf)
		accumulate(m, 0, buf, s, e.sampler, assignments)
		entities++
	}

	return e.finish(m, entities, assignments, start), nil
}

func (e *Engine) newMatrix() (*Matrix, error) {
	m, err := NewMatrix(e.cfg.Trials, e.sampler.Groups(), e.cfg.MaxCells)
	if err != nil {
		return nil, err
	}
	e.metrics.SetCells(m.Len())
	e.logger.Debug("allocated accumulator",
		"trials", m.trials, "groups", m.groups, "cells", m.Len())
	return m, nil
}

func (e *Engine) finish(m *Matrix, entities int64, assignments []uint64, start time.Time) *Result {
	d := time.Since(start)
	e.metrics.ObserveRun(entities, e.cfg.Trials, assignments, d)
	e.logger.Debug("streaming complete",
		"entities", entities, "trials", e.cfg.Trials, "workers", e.cfg.Workers, "duration", d)
	return &Result{
		Matrix:      m,
		Entities:    entities,
		Assignments: assignments,
		Duration:    d,
	}
}

// accumulate routes s into one group per trial for the trials starting at
// row lo, one draw per trial.
func accumulate(m *Matrix, lo int, us []float64, s record.Summary, sampler distribution.Sampler, assignments []uint64) {
	row := lo * m.groups
	for _, u := range us {
		g := sampler.Group(u)
		m.cells[row+g].Add(s)
		assignments[g]++
		row += m.groups
	}
}
