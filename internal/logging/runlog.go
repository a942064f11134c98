package logging

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// RunLogFile is the file name written inside the run log directory.
const RunLogFile = "runs.jsonl"

// RunRecord describes one completed simulation run.
type RunRecord struct {
	Time        time.Time `json:"time"`
	Seed        uint64    `json:"seed"`
	RNG         string    `json:"rng"`
	Profile     string    `json:"profile"`
	Sampler     string    `json:"sampler"`
	Simulations int       `json:"simulations"`
	Weights     []float64 `json:"weights"`
	Workers     int       `json:"workers"`
	Entities    int64     `json:"entities"`
	DurationMS  float64   `json:"duration_ms"`
	Format      string    `json:"format"`
	// RunID is the SQLite run id when the run was stored.
	RunID int64 `json:"run_id,omitempty"`
}

// RunLogger appends run records to a JSONL file.
// It is safe for concurrent use. A nil RunLogger is safe to use;
// all methods are no-ops on nil receiver.
type RunLogger struct {
	mu   sync.Mutex
	file *os.File
}

// NewRunLogger opens dir/runs.jsonl for append. An empty dir disables run
// logging and returns nil without error.
func NewRunLogger(dir string) (*RunLogger, error) {
	if dir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("creating run log directory: %w", err)
	}

	path := filepath.Join(dir, RunLogFile)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("opening run log: %w", err)
	}
	return &RunLogger{file: f}, nil
}

// Log writes rec as a single JSONL line. A zero Time is set to now.
// Safe to call on nil receiver.
func (rl *RunLogger) Log(rec RunRecord) error {
	if rl == nil {
		return nil
	}
	if rec.Time.IsZero() {
		rec.Time = time.Now().UTC()
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding run record: %w", err)
	}
	data = append(data, '\n')

	rl.mu.Lock()
	defer rl.mu.Unlock()
	if rl.file == nil {
		return nil
	}
	if _, err := rl.file.Write(data); err != nil {
		return fmt.Errorf("writing run log: %w", err)
	}
	return nil
}

// Close closes the underlying file. Safe to call on nil receiver.
func (rl *RunLogger) Close() error {
	if rl == nil {
		return nil
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	if rl.file == nil {
		return nil
	}
	err := rl.file.Close()
	rl.file = nil
	return err
}
