package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefault(t *testing.T) {
	config := Default()

	if config.Simulation.Seed != 1234 {
		t.Errorf("expected Seed 1234, got %d", config.Simulation.Seed)
	}
	if config.Simulation.RNG != "mt19937" {
		t.Errorf("expected RNG 'mt19937', got '%s'", config.Simulation.RNG)
	}
	if config.Simulation.Workers != 1 {
		t.Errorf("expected Workers 1, got %d", config.Simulation.Workers)
	}
	if config.Simulation.Profile != "real" {
		t.Errorf("expected Profile 'real', got '%s'", config.Simulation.Profile)
	}
	if config.Simulation.Sampler != "cdf" || config.Simulation.Search != "linear" {
		t.Errorf("expected cdf/linear sampler, got %s/%s", config.Simulation.Sampler, config.Simulation.Search)
	}
	if config.Input.MaxLineBytes != 1024 {
		t.Errorf("expected MaxLineBytes 1024, got %d", config.Input.MaxLineBytes)
	}
	if config.Output.Format != "csv" {
		t.Errorf("expected Format 'csv', got '%s'", config.Output.Format)
	}
	if config.Output.SQLitePath != "" || config.Metrics.Textfile != "" {
		t.Error("expected sqlite and metrics outputs disabled by default")
	}
	if config.Logging.Level != "info" {
		t.Errorf("expected Logging.Level 'info', got '%s'", config.Logging.Level)
	}
	if err := config.Validate(); err != nil {
		t.Errorf("Default() should validate, got %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
simulation:
  seed: 42
  rng: xoshiro256**
  workers: 4
  profile: count
  sampler: choices

output:
  format: arrow
  sqlite_path: ${MC_TEST_DIR}/runs.db

logging:
  level: debug
`
	if err := os.WriteFile(configPath, []byte(configContent), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	t.Setenv("MC_TEST_DIR", tmpDir)

	config, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}

	if config.Simulation.Seed != 42 {
		t.Errorf("expected Seed 42, got %d", config.Simulation.Seed)
	}
	if config.Simulation.RNG != "xoshiro256**" {
		t.Errorf("expected RNG 'xoshiro256**', got '%s'", config.Simulation.RNG)
	}
	if config.Simulation.Workers != 4 {
		t.Errorf("expected Workers 4, got %d", config.Simulation.Workers)
	}
	if config.Simulation.Profile != "count" || config.Simulation.Sampler != "choices" {
		t.Errorf("unexpected profile/sampler %s/%s", config.Simulation.Profile, config.Simulation.Sampler)
	}
	// Unset keys keep their defaults
	if config.Simulation.Search != "linear" {
		t.Errorf("expected default Search 'linear', got '%s'", config.Simulation.Search)
	}
	if config.Output.Format != "arrow" {
		t.Errorf("expected Format 'arrow', got '%s'", config.Output.Format)
	}
	if want := filepath.Join(tmpDir, "runs.db"); config.Output.SQLitePath != want {
		t.Errorf("expected SQLitePath %q, got %q", want, config.Output.SQLitePath)
	}
	if config.Logging.Level != "debug" {
		t.Errorf("expected Level 'debug', got '%s'", config.Logging.Level)
	}
	if err := config.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestLoadFromFile_Errors(t *testing.T) {
	if _, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("simulation: [unclosed"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFromFile(path); err == nil {
		t.Error("expected error for malformed YAML")
	}
}

func TestLoad_HomeConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	if err := os.MkdirAll(filepath.Join(home, ".montecarlo"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(home, ".montecarlo", "config.yaml"),
		[]byte("simulation:\n  seed: 7\n"), 0600); err != nil {
		t.Fatal(err)
	}

	config, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if config.Simulation.Seed != 7 {
		t.Errorf("expected Seed 7 from home config, got %d", config.Simulation.Seed)
	}
}

func TestLoad_NoHomeConfig(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	config, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if config.Simulation.Seed != 1234 {
		t.Errorf("expected default Seed, got %d", config.Simulation.Seed)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("MONTECARLO_SEED", "99")
	t.Setenv("MONTECARLO_WORKERS", "3")
	t.Setenv("MONTECARLO_RNG", "splitmix64")
	t.Setenv("MONTECARLO_PROFILE", "count")
	t.Setenv("MONTECARLO_SAMPLER", "choices")
	t.Setenv("MONTECARLO_SEARCH", "binary")
	t.Setenv("MONTECARLO_FORMAT", "arrow")
	t.Setenv("MONTECARLO_SQLITE_PATH", "/tmp/mc.db")
	t.Setenv("MONTECARLO_METRICS_FILE", "/tmp/mc.prom")
	t.Setenv("MONTECARLO_LOG_LEVEL", "trace")

	config, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	s := config.Simulation
	if s.Seed != 99 || s.Workers != 3 || s.RNG != "splitmix64" {
		t.Errorf("seed/workers/rng = %d/%d/%s", s.Seed, s.Workers, s.RNG)
	}
	if s.Profile != "count" || s.Sampler != "choices" || s.Search != "binary" {
		t.Errorf("profile/sampler/search = %s/%s/%s", s.Profile, s.Sampler, s.Search)
	}
	if config.Output.Format != "arrow" || config.Output.SQLitePath != "/tmp/mc.db" {
		t.Errorf("output = %+v", config.Output)
	}
	if config.Metrics.Textfile != "/tmp/mc.prom" {
		t.Errorf("metrics textfile = %q", config.Metrics.Textfile)
	}
	if config.Logging.Level != "trace" {
		t.Errorf("log level = %q", config.Logging.Level)
	}
}

func TestEnvOverrides_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  string
		val  string
	}{
		{"seed", "MONTECARLO_SEED", "-1"},
		{"workers", "MONTECARLO_WORKERS", "many"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("HOME", t.TempDir())
			t.Setenv(tt.env, tt.val)
			_, err := Load()
			if err == nil || !strings.Contains(err.Error(), tt.env) {
				t.Errorf("Load() error = %v, want mention of %s", err, tt.env)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{"valid default", func(c *Config) {}, ""},
		{"unknown rng", func(c *Config) { c.Simulation.RNG = "lcg" }, "simulation.rng"},
		{"zero workers", func(c *Config) { c.Simulation.Workers = 0 }, "simulation.workers"},
		{"bad profile", func(c *Config) { c.Simulation.Profile = "int" }, "simulation.profile"},
		{"bad sampler", func(c *Config) { c.Simulation.Sampler = "alias" }, "simulation.sampler"},
		{"bad search", func(c *Config) { c.Simulation.Search = "hash" }, "simulation.search"},
		{"negative max cells", func(c *Config) { c.Simulation.MaxCells = -1 }, "simulation.max_cells"},
		{"tiny line buffer", func(c *Config) { c.Input.MaxLineBytes = 4 }, "input.max_line_bytes"},
		{"bad format", func(c *Config) { c.Output.Format = "json" }, "output.format"},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }, "logging.level"},
		{"empty log level", func(c *Config) { c.Logging.Level = "" }, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := Default()
			tt.modify(config)
			err := config.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want mention of %s", err, tt.wantErr)
			}
		})
	}
}

func TestExpandPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("MC_DIR", "/data")

	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"/abs/runs.db", "/abs/runs.db"},
		{"${MC_DIR}/runs.db", "/data/runs.db"},
		{"~/runs.db", filepath.Join(home, "runs.db")},
	}
	for _, tt := range tests {
		if got := expandPath(tt.in); got != tt.want {
			t.Errorf("expandPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
