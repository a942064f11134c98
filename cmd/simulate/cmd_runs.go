package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/monetate/monte-carlo-simulator/internal/store"
)

func newRunsCmd(opts *rootOptions) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List runs stored in the SQLite database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig(cmd)
			if err != nil {
				return err
			}
			if cfg.Output.SQLitePath == "" {
				return usageErrorf("runs requires --sqlite or output.sqlite_path")
			}

			s, err := store.Open(cfg.Output.SQLitePath)
			if err != nil {
				return &ioError{op: "open store", err: err}
			}
			defer s.Close()

			runs, err := s.ListRuns(cmd.Context())
			if err != nil {
				return &ioError{op: "list runs", err: err}
			}

			out := cmd.OutOrStdout()
			if jsonOut {
				if runs == nil {
					runs = []store.RunInfo{}
				}
				return json.NewEncoder(out).Encode(runs)
			}

			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs stored.")
				return nil
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tCREATED\tSEED\tRNG\tPROFILE\tSAMPLER\tSIMULATIONS\tGROUPS\tWORKERS\tENTITIES")
			for _, r := range runs {
				fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%s\t%s\t%d\t%d\t%d\t%d\n",
					r.ID, r.CreatedAt.Local().Format(time.DateTime), r.Seed, r.Algorithm, r.Profile,
					r.Sampler, r.Simulations, r.Groups, r.Workers, r.Entities)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}
