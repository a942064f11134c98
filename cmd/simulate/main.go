package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/monetate/monte-carlo-simulator/internal/constants"
)

var version = "0.1.0-dev"

func main() {
	ctx, stop := withSignals(context.Background())
	code := execute(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// execute runs the command line args and returns the process exit code.
func execute(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	rootCmd := newRootCmd()
	rootCmd.SetArgs(args)
	rootCmd.SetIn(stdin)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return constants.ExitOK
	}
	fmt.Fprintf(stderr, "simulate: %v\n", err)
	var ue *usageError
	if errors.As(err, &ue) {
		fmt.Fprintln(stderr, "Run 'simulate --help' for usage.")
	}
	return exitCode(err)
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	rootCmd := &cobra.Command{
		Use:   "simulate [flags] SIMULATIONS WEIGHT0 [WEIGHT1 ...]",
		Short: "Monte Carlo re-simulation of experiment group assignment",
		Long: `simulate re-runs the random assignment of an experiment's entities to
weighted groups, SIMULATIONS times, and reports the outcome sums of every
(trial, group) pair.

Entities are read from stdin, one "identifier,y0,y1,y2" record per line.
Results are written to stdout as "trial,group,sum_y0,sum_y1,sum_y2" lines
in trial-major order, or as an Arrow IPC stream with --format arrow.

Examples:
  simulate 1000 1 1 < entities.csv          # two equal groups, 1000 trials
  simulate --seed 7 --workers 4 500 9 1     # 90/10 split on 4 trial shards
  simulate 100 1 1 < entities.csv | simulate summarize`,
		Args:          simulationArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulation(cmd, opts, args)
		},
	}
	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{err: err}
	})

	// Weights may be negative numbers; stop flag parsing at the first
	// positional argument so they reach validation instead of the flag parser.
	rootCmd.Flags().SetInterspersed(false)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "Config file (default ~/.montecarlo/config.yaml)")
	pf.StringVar(&opts.sqlitePath, "sqlite", "", "SQLite database for stored runs")
	pf.StringVar(&opts.logLevel, "log-level", "", "Log level: info, debug, or trace")

	f := rootCmd.Flags()
	f.Uint64Var(&opts.seed, "seed", constants.DefaultSeed, "Random seed")
	f.IntVar(&opts.workers, "workers", 1, "Number of trial shards run in parallel")
	f.StringVar(&opts.profile, "profile", string(constants.ProfileReal), "Numeric profile: real or count")
	f.StringVar(&opts.sampler, "sampler", "cdf", "Group sampler: cdf or choices")
	f.StringVar(&opts.search, "search", "linear", "CDF lookup: linear or binary")
	f.StringVar(&opts.rng, "rng", constants.DefaultRNG, "Generator: mt19937, mt19937_64, xoshiro256**, or splitmix64")
	f.StringVar(&opts.format, "format", "csv", "Output format: csv or arrow")
	f.StringVar(&opts.metricsFile, "metrics-file", "", "Write Prometheus metrics to this textfile")

	rootCmd.AddCommand(
		newVersionCmd(),
		newConfigCmd(opts),
		newSummarizeCmd(opts),
		newRunsCmd(opts),
	)

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "simulate version %s\n", version)
		},
	}
}
