package main

import (
	"github.com/spf13/cobra"

	"github.com/monetate/monte-carlo-simulator/internal/config"
)

// rootOptions holds the flag values shared by the commands.
type rootOptions struct {
	configPath  string
	sqlitePath  string
	logLevel    string
	seed        uint64
	workers     int
	profile     string
	sampler     string
	search      string
	rng         string
	format      string
	metricsFile string
}

// loadConfig resolves defaults, the config file, the environment and the
// flags set on cmd, in that order, and validates the result.
func (o *rootOptions) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.LoadPath(o.configPath)
	if err != nil {
		return nil, &usageError{err: err}
	}

	flags := cmd.Flags()
	if flags.Changed("seed") {
		cfg.Simulation.Seed = o.seed
	}
	if flags.Changed("workers") {
		cfg.Simulation.Workers = o.workers
	}
	if flags.Changed("profile") {
		cfg.Simulation.Profile = o.profile
	}
	if flags.Changed("sampler") {
		cfg.Simulation.Sampler = o.sampler
	}
	if flags.Changed("search") {
		cfg.Simulation.Search = o.search
	}
	if flags.Changed("rng") {
		cfg.Simulation.RNG = o.rng
	}
	if flags.Changed("format") {
		cfg.Output.Format = o.format
	}
	if flags.Changed("sqlite") {
		cfg.Output.SQLitePath = o.sqlitePath
	}
	if flags.Changed("metrics-file") {
		cfg.Metrics.Textfile = o.metricsFile
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = o.logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, &usageError{err: err}
	}
	return cfg, nil
}
