package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/monetate/monte-carlo-simulator/internal/engine"
	"github.com/monetate/monte-carlo-simulator/internal/store"
	"github.com/monetate/monte-carlo-simulator/internal/summary"
)

func newSummarizeCmd(opts *rootOptions) *cobra.Command {
	var runID int64
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "summarize",
		Short: "Per-group statistics across trials",
		Long: `Summarize reports, for every group, the mean and standard deviation of
each outcome sum across trials and the mean y1/y0 ratio.

Results are read as CSV from stdin, or from a stored run with --run.

Examples:
  simulate 1000 1 1 < entities.csv | simulate summarize
  simulate summarize --sqlite runs.db --run 3 --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := loadMatrix(cmd, opts, runID)
			if err != nil {
				return err
			}
			stats := summary.Summarize(m)

			out := cmd.OutOrStdout()
			if jsonOut {
				if err := json.NewEncoder(out).Encode(map[string]any{
					"trials": m.Trials(),
					"groups": stats,
				}); err != nil {
					return &ioError{op: "write summary", err: err}
				}
				return nil
			}
			if err := writeSummaryCSV(out, stats); err != nil {
				return &ioError{op: "write summary", err: err}
			}
			return nil
		},
	}

	cmd.Flags().Int64Var(&runID, "run", 0, "Summarize stored run ID (requires --sqlite)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")

	return cmd
}

func loadMatrix(cmd *cobra.Command, opts *rootOptions, runID int64) (*engine.Matrix, error) {
	if runID == 0 {
		m, err := summary.ReadCSV(cmd.InOrStdin())
		if err != nil {
			return nil, &dataError{err: fmt.Errorf("reading results: %w", err)}
		}
		return m, nil
	}

	cfg, err := opts.loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	if cfg.Output.SQLitePath == "" {
		return nil, usageErrorf("--run requires --sqlite or output.sqlite_path")
	}
	s, err := store.Open(cfg.Output.SQLitePath)
	if err != nil {
		return nil, &ioError{op: "open store", err: err}
	}
	defer s.Close()

	_, m, err := s.LoadRun(cmd.Context(), runID)
	if errors.Is(err, store.ErrRunNotFound) {
		return nil, &usageError{err: err}
	}
	if err != nil {
		return nil, &ioError{op: "load run", err: err}
	}
	return m, nil
}

func writeSummaryCSV(w io.Writer, stats []summary.GroupStats) error {
	if _, err := fmt.Fprintln(w, "group,mean_y0,std_y0,mean_y1,std_y1,mean_y2,std_y2,mean_ratio,empty_trials"); err != nil {
		return err
	}
	for _, s := range stats {
		_, err := fmt.Fprintf(w, "%d,%f,%f,%f,%f,%f,%f,%f,%d\n",
			s.Group, s.Y0.Mean, s.Y0.StdDev, s.Y1.Mean, s.Y1.StdDev,
			s.Y2.Mean, s.Y2.StdDev, s.Ratio, s.Empty)
		if err != nil {
			return err
		}
	}
	return nil
}
