package main

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/monetate/monte-carlo-simulator/internal/config"
	"github.com/monetate/monte-carlo-simulator/internal/constants"
	"github.com/monetate/monte-carlo-simulator/internal/distribution"
	"github.com/monetate/monte-carlo-simulator/internal/draws"
	"github.com/monetate/monte-carlo-simulator/internal/engine"
	"github.com/monetate/monte-carlo-simulator/internal/logging"
	"github.com/monetate/monte-carlo-simulator/internal/metrics"
	"github.com/monetate/monte-carlo-simulator/internal/output"
	"github.com/monetate/monte-carlo-simulator/internal/record"
	"github.com/monetate/monte-carlo-simulator/internal/store"
)

func simulationArgs(_ *cobra.Command, args []string) error {
	if len(args) < 2 {
		return usageErrorf("need SIMULATIONS and at least one weight, got %d argument(s)", len(args))
	}
	return nil
}

// parseSimulations parses the trial count. Non-numeric text is a parse
// error; a number below one is a usage error.
func parseSimulations(tok string) (int, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(tok), 10, 64)
	if err != nil {
		var ne *strconv.NumError
		if errors.As(err, &ne) && errors.Is(ne.Err, strconv.ErrRange) {
			return 0, usageErrorf("simulations %q out of range", tok)
		}
		return 0, &argParseError{name: "simulations", token: tok, err: err}
	}
	if n < 1 {
		return 0, usageErrorf("simulations must be positive, got %d", n)
	}
	if int64(int(n)) != n {
		return 0, usageErrorf("simulations %d out of range", n)
	}
	return int(n), nil
}

// runSimulation is the root command: Init, Streaming, then Finalize.
// Nothing is written to stdout unless streaming completes.
func runSimulation(cmd *cobra.Command, opts *rootOptions, args []string) error {
	cfg, err := opts.loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := logging.NewLogger(cfg.Logging.Level, cmd.ErrOrStderr())
	sim := cfg.Simulation

	trials, err := parseSimulations(args[0])
	if err != nil {
		return err
	}
	weights, err := distribution.ParseWeights(args[1:])
	if err != nil {
		return err
	}
	sampler, err := distribution.New(distribution.Options{
		Strategy: distribution.Strategy(sim.Sampler),
		Search:   distribution.Search(sim.Search),
		Weights:  weights,
	})
	if err != nil {
		return err
	}
	if _, ok := sampler.(*distribution.CDFSampler); ok && sim.Sampler == string(distribution.StrategyChoices) {
		logger.Info("choices table too large, using cdf sampler", "groups", len(weights))
	}

	collector := metrics.New()
	eng, err := engine.New(sampler, engine.Config{
		Trials:    trials,
		Workers:   sim.Workers,
		Seed:      sim.Seed,
		Algorithm: draws.Algorithm(sim.RNG),
		MaxCells:  sim.MaxCells,
	}, engine.WithLogger(logger), engine.WithMetrics(collector))
	if err != nil {
		return err
	}

	profile := constants.Profile(sim.Profile)
	writer, err := output.New(output.Format(cfg.Output.Format), cmd.OutOrStdout(), profile)
	if err != nil {
		return &usageError{err: err}
	}
	runLog, err := logging.NewRunLogger(cfg.Logging.RunLogDir)
	if err != nil {
		return &ioError{op: "run log", err: err}
	}
	defer runLog.Close()

	logger.Debug("starting run",
		"simulations", trials, "groups", len(weights), "seed", sim.Seed,
		"rng", sim.RNG, "workers", eng.Workers(), "profile", profile)

	reader := record.NewReader(cmd.InOrStdin(), profile, cfg.Input.MaxLineBytes)
	res, err := eng.Run(cmd.Context(), reader)
	if err != nil {
		return classifyRunError(err)
	}

	if err := writer.Write(res.Matrix); err != nil {
		return &ioError{op: "write results", err: err}
	}

	rec := logging.RunRecord{
		Seed:        sim.Seed,
		RNG:         sim.RNG,
		Profile:     sim.Profile,
		Sampler:     sim.Sampler,
		Simulations: trials,
		Weights:     weights,
		Workers:     eng.Workers(),
		Entities:    res.Entities,
		DurationMS:  float64(res.Duration.Microseconds()) / 1000,
		Format:      cfg.Output.Format,
	}
	if cfg.Output.SQLitePath != "" {
		id, err := saveRun(cmd.Context(), cfg, rec, res)
		if err != nil {
			return &ioError{op: "store run", err: err}
		}
		rec.RunID = id
		logger.Info("stored run", "id", id, "path", cfg.Output.SQLitePath)
	}
	if err := collector.WriteTextfile(cfg.Metrics.Textfile); err != nil {
		return &ioError{op: "write metrics", err: err}
	}
	if err := runLog.Log(rec); err != nil {
		return &ioError{op: "run log", err: err}
	}
	return nil
}

// classifyRunError passes through errors with a known exit status and
// treats anything else from the streaming phase as an input failure.
func classifyRunError(err error) error {
	var rpe *record.ParseError
	switch {
	case errors.As(err, &rpe),
		errors.Is(err, engine.ErrResourceExhausted),
		errors.Is(err, context.Canceled):
		return err
	default:
		return &ioError{op: "read input", err: err}
	}
}

func saveRun(ctx context.Context, cfg *config.Config, rec logging.RunRecord, res *engine.Result) (int64, error) {
	s, err := store.Open(cfg.Output.SQLitePath)
	if err != nil {
		return 0, err
	}
	defer s.Close()

	return s.SaveRun(ctx, store.RunInfo{
		Seed:      rec.Seed,
		Algorithm: rec.RNG,
		Profile:   rec.Profile,
		Sampler:   rec.Sampler,
		Weights:   rec.Weights,
		Workers:   rec.Workers,
	}, res)
}
