package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/monetate/monte-carlo-simulator/internal/engine"

	_ "modernc.org/sqlite" // SQLite driver
)

// ErrRunNotFound is returned by LoadRun for an unknown run id.
var ErrRunNotFound = errors.New("run not found")

// RunInfo describes the parameters and totals of one run.
type RunInfo struct {
	ID          int64     `json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	Seed        uint64    `json:"seed"`
	Algorithm   string    `json:"algorithm"`
	Profile     string    `json:"profile"`
	Sampler     string    `json:"sampler"`
	Simulations int       `json:"simulations"`
	Groups      int       `json:"groups"`
	Weights     []float64 `json:"weights"`
	Workers     int       `json:"workers"`
	Entities    int64     `json:"entities"`
}

// SQLiteResultStore stores run matrices in a SQLite database.
type SQLiteResultStore struct {
	db   *sql.DB
	path string
}

// Open opens or creates the database at path.
func Open(path string) (*SQLiteResultStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite works best with single writer
	db.SetMaxOpenConns(1)

	if err := InitSchema(context.Background(), db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteResultStore{db: db, path: path}, nil
}

// Path returns the database file path.
func (s *SQLiteResultStore) Path() string {
	return s.path
}

// SaveRun stores info and the result matrix in one transaction and returns
// the new run id. info.ID, CreatedAt, Groups and Entities are filled from
// the result when zero.
func (s *SQLiteResultStore) SaveRun(ctx context.Context, info RunInfo, res *engine.Result) (int64, error) {
	m := res.Matrix
	if info.CreatedAt.IsZero() {
		info.CreatedAt = time.Now().UTC()
	}
	weights, err := json.Marshal(info.Weights)
	if err != nil {
		return 0, fmt.Errorf("failed to encode weights: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	r, err := tx.ExecContext(ctx, `
		INSERT INTO runs (created_at, seed, algorithm, profile, sampler, simulations, groups, weights, workers, entities)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		info.CreatedAt.Format(time.RFC3339Nano), int64(info.Seed), info.Algorithm, info.Profile, info.Sampler,
		m.Trials(), m.Groups(), string(weights), info.Workers, res.Entities)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}
	id, err := r.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get run id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO cells (run_id, trial, group_idx, sum_y0, sum_y1, sum_y2)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare cell insert: %w", err)
	}
	defer stmt.Close()

	err = m.Each(func(trial, group int, c engine.Cell) error {
		if _, err := stmt.ExecContext(ctx, id, trial, group, c.Y0, c.Y1, c.Y2); err != nil {
			return fmt.Errorf("failed to insert cell (%d,%d): %w", trial, group, err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit run: %w", err)
	}
	return id, nil
}

// LoadRun returns the stored parameters and matrix of run id.
func (s *SQLiteResultStore) LoadRun(ctx context.Context, id int64) (RunInfo, *engine.Matrix, error) {
	info, err := scanRun(s.db.QueryRowContext(ctx, runColumns+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return RunInfo{}, nil, fmt.Errorf("%w: %d", ErrRunNotFound, id)
	}
	if err != nil {
		return RunInfo{}, nil, err
	}

	m, err := engine.NewMatrix(info.Simulations, info.Groups, 0)
	if err != nil {
		return RunInfo{}, nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT trial, group_idx, sum_y0, sum_y1, sum_y2 FROM cells WHERE run_id = ?`, id)
	if err != nil {
		return RunInfo{}, nil, fmt.Errorf("failed to query cells: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var trial, group int
		var c engine.Cell
		if err := rows.Scan(&trial, &group, &c.Y0, &c.Y1, &c.Y2); err != nil {
			return RunInfo{}, nil, fmt.Errorf("failed to scan cell: %w", err)
		}
		if trial < 0 || trial >= m.Trials() || group < 0 || group >= m.Groups() {
			return RunInfo{}, nil, fmt.Errorf("cell (%d,%d) outside %dx%d run", trial, group, m.Trials(), m.Groups())
		}
		m.Set(trial, group, c)
	}
	if err := rows.Err(); err != nil {
		return RunInfo{}, nil, fmt.Errorf("failed to read cells: %w", err)
	}
	return info, m, nil
}

// ListRuns returns all runs, newest first.
func (s *SQLiteResultStore) ListRuns(ctx context.Context) ([]RunInfo, error) {
	rows, err := s.db.QueryContext(ctx, runColumns+` ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []RunInfo
	for rows.Next() {
		info, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, info)
	}
	return runs, rows.Err()
}

// Close closes the database.
func (s *SQLiteResultStore) Close() error {
	return s.db.Close()
}

const runColumns = `SELECT id, created_at, seed, algorithm, profile, sampler, simulations, groups, weights, workers, entities FROM runs`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (RunInfo, error) {
	var info RunInfo
	var createdAt, weights string
	var seed int64
	err := row.Scan(&info.ID, &createdAt, &seed, &info.Algorithm, &info.Profile, &info.Sampler,
		&info.Simulations, &info.Groups, &weights, &info.Workers, &info.Entities)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return RunInfo{}, err
		}
		return RunInfo{}, fmt.Errorf("failed to scan run: %w", err)
	}
	info.Seed = uint64(seed)
	if info.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return RunInfo{}, fmt.Errorf("failed to parse created_at %q: %w", createdAt, err)
	}
	if err := json.Unmarshal([]byte(weights), &info.Weights); err != nil {
		return RunInfo{}, fmt.Errorf("failed to decode weights: %w", err)
	}
	return info, nil
}
