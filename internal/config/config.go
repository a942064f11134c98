// Package config provides unified configuration loading for the simulator.
// It supports loading from YAML files and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/monetate/monte-carlo-simulator/internal/constants"
)

// Config contains all simulator configuration settings.
type Config struct {
	// Simulation controls draws, sampling and parallelism.
	Simulation SimulationConfig `json:"simulation" yaml:"simulation"`

	// Input controls record parsing.
	Input InputConfig `json:"input" yaml:"input"`

	// Output controls where results are written.
	Output OutputConfig `json:"output" yaml:"output"`

	// Metrics controls the Prometheus textfile export.
	Metrics MetricsConfig `json:"metrics" yaml:"metrics"`

	// Logging contains settings for operational and run logging.
	Logging LoggingConfig `json:"logging" yaml:"logging"`
}

// SimulationConfig configures the trial engine.
type SimulationConfig struct {
	// Seed for the uniform draw generators. Shard k of a parallel run
	// uses Seed+k.
	Seed uint64 `json:"seed" yaml:"seed"`

	// RNG names the generator: mt19937, mt19937_64, xoshiro256** or splitmix64.
	RNG string `json:"rng" yaml:"rng" validate:"oneof=mt19937 mt19937_64 xoshiro256** splitmix64"`

	// Workers is the number of trial shards. 1 runs sequentially.
	Workers int `json:"workers" yaml:"workers" validate:"gte=1,lte=1024"`

	// Profile selects numeric handling of y0: "real" or "count".
	Profile string `json:"profile" yaml:"profile" validate:"oneof=real count"`

	// Sampler selects the group lookup strategy: "cdf" or "choices".
	// "choices" requires whole-number weights.
	Sampler string `json:"sampler" yaml:"sampler" validate:"oneof=cdf choices"`

	// Search selects the CDF lookup: "linear" or "binary".
	Search string `json:"search" yaml:"search" validate:"oneof=linear binary"`

	// MaxCells caps trials*groups. 0 disables the check.
	MaxCells int `json:"max_cells" yaml:"max_cells" validate:"gte=0"`
}

// InputConfig configures record parsing.
type InputConfig struct {
	// MaxLineBytes bounds one input record; longer lines are parse errors.
	MaxLineBytes int `json:"max_line_bytes" yaml:"max_line_bytes" validate:"gte=16"`
}

// OutputConfig configures result output.
type OutputConfig struct {
	// Format of stdout results: "csv" or "arrow".
	Format string `json:"format" yaml:"format" validate:"oneof=csv arrow"`

	// SQLitePath, when set, also stores every run in a SQLite database.
	// Supports ${VAR} and a leading ~/.
	SQLitePath string `json:"sqlite_path,omitempty" yaml:"sqlite_path,omitempty"`
}

// MetricsConfig configures metrics export.
type MetricsConfig struct {
	// Textfile, when set, receives Prometheus metrics in text format after
	// each run, for the node exporter textfile collector.
	Textfile string `json:"textfile,omitempty" yaml:"textfile,omitempty"`
}

// LoggingConfig configures logging behavior.
type LoggingConfig struct {
	// Level sets the log verbosity: "info" (default), "debug", or "trace".
	Level string `json:"level" yaml:"level" validate:"omitempty,oneof=info debug trace"`

	// RunLogDir, when set, receives runs.jsonl with one record per run.
	RunLogDir string `json:"run_log_dir,omitempty" yaml:"run_log_dir,omitempty"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Simulation: SimulationConfig{
			Seed:     constants.DefaultSeed,
			RNG:      constants.DefaultRNG,
			Workers:  1,
			Profile:  string(constants.ProfileReal),
			Sampler:  "cdf",
			Search:   "linear",
			MaxCells: constants.DefaultMaxCells,
		},
		Input: InputConfig{
			MaxLineBytes: constants.DefaultMaxLineBytes,
		},
		Output: OutputConfig{
			Format: "csv",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// DefaultPath returns ~/.montecarlo/config.yaml, or "" when the home
// directory is unknown.
func DefaultPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".montecarlo", "config.yaml")
}

// Load loads configuration from the default locations and environment variables.
// Order: defaults -> ~/.montecarlo/config.yaml -> environment variables
func Load() (*Config, error) {
	config := Default()

	if configPath := DefaultPath(); configPath != "" {
		if _, statErr := os.Stat(configPath); statErr == nil {
			fileConfig, loadErr := LoadFromFile(configPath)
			if loadErr != nil {
				return nil, fmt.Errorf("loading config file: %w", loadErr)
			}
			config = fileConfig
		}
	}

	if err := applyEnvOverrides(config); err != nil {
		return nil, err
	}

	return config, nil
}

// LoadPath loads path, or the default locations when path is empty, and
// applies environment overrides.
func LoadPath(path string) (*Config, error) {
	if path == "" {
		return Load()
	}
	config, err := LoadFromFile(path)
	if err != nil {
		return nil, err
	}
	if err := applyEnvOverrides(config); err != nil {
		return nil, err
	}
	return config, nil
}

// LoadFromFile loads configuration from a specific YAML file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	config.Output.SQLitePath = expandPath(config.Output.SQLitePath)
	config.Metrics.Textfile = expandPath(config.Metrics.Textfile)
	config.Logging.RunLogDir = expandPath(config.Logging.RunLogDir)

	return config, nil
}

var validate = validator.New()

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: invalid value %v (%s=%s)",
			yamlPath(fe.Namespace()), fe.Value(), fe.Tag(), fe.Param()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

// yamlPath turns "Config.Simulation.RNG" into "simulation.rng".
func yamlPath(ns string) string {
	parts := strings.Split(ns, ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	for i, p := range parts {
		parts[i] = fieldNames[p]
		if parts[i] == "" {
			parts[i] = strings.ToLower(p)
		}
	}
	return strings.Join(parts, ".")
}

var fieldNames = map[string]string{
	"Simulation":   "simulation",
	"MaxCells":     "max_cells",
	"MaxLineBytes": "max_line_bytes",
	"SQLitePath":   "sqlite_path",
	"RunLogDir":    "run_log_dir",
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(config *Config) error {
	if v := os.Getenv("MONTECARLO_SEED"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("MONTECARLO_SEED: %w", err)
		}
		config.Simulation.Seed = n
	}
	if v := os.Getenv("MONTECARLO_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("MONTECARLO_WORKERS: %w", err)
		}
		config.Simulation.Workers = n
	}
	if v := os.Getenv("MONTECARLO_RNG"); v != "" {
		config.Simulation.RNG = v
	}
	if v := os.Getenv("MONTECARLO_PROFILE"); v != "" {
		config.Simulation.Profile = v
	}
	if v := os.Getenv("MONTECARLO_SAMPLER"); v != "" {
		config.Simulation.Sampler = v
	}
	if v := os.Getenv("MONTECARLO_SEARCH"); v != "" {
		config.Simulation.Search = v
	}
	if v := os.Getenv("MONTECARLO_FORMAT"); v != "" {
		config.Output.Format = v
	}
	if v := os.Getenv("MONTECARLO_SQLITE_PATH"); v != "" {
		config.Output.SQLitePath = expandPath(v)
	}
	if v := os.Getenv("MONTECARLO_METRICS_FILE"); v != "" {
		config.Metrics.Textfile = expandPath(v)
	}
	if v := os.Getenv("MONTECARLO_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}
	return nil
}

// expandPath expands ${VAR} patterns and a leading ~/ in a path.
func expandPath(s string) string {
	if strings.Contains(s, "${") {
		s = os.Expand(s, os.Getenv)
	}
	if strings.HasPrefix(s, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			s = filepath.Join(home, s[2:])
		}
	}
	return s
}
