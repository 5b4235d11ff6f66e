// Command ibmols runs a single local search from the command line and prints
// the resulting non-dominated front as JSON.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/copyleftdev/IBMOLS/internal/config"
	"github.com/copyleftdev/IBMOLS/internal/logging"
	"github.com/copyleftdev/IBMOLS/internal/optimization/solver"
	"github.com/copyleftdev/IBMOLS/internal/plot"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:          "ibmols",
		Short:        "Indicator-based multi-objective local search",
		SilenceUsage: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.AddCommand(newRunCmd(stdout, stderr))
	return root
}

type runOptions struct {
	params   solver.Params
	logLevel string
	plotPath string
	pretty   bool
}

func newRunCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one search and print the final archive",
		Long: `Run one search on a generated instance and print the final archive.

Defaults come from the SEARCH_* environment variables and are overridden by flags.
Interrupting the command stops the search and still prints the archive found so far.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSearch(cmd.Context(), opts, stdout, stderr)
		},
	}

	defaults := solver.DefaultParams()
	if cfg, err := config.Load(); err == nil {
		defaults = cfg.SearchParams()
	}
	addSearchFlags(cmd.Flags(), &opts.params, defaults)
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	cmd.Flags().StringVar(&opts.plotPath, "plot", "", "write an HTML scatter plot of the front to this file")
	cmd.Flags().BoolVar(&opts.pretty, "pretty", false, "indent the JSON output")
	return cmd
}

func addSearchFlags(fs *pflag.FlagSet, p *solver.Params, defaults solver.Params) {
	fs.StringVar(&p.Problem, "problem", defaults.Problem, "problem to solve (flowshop, linear)")
	fs.IntVar(&p.Size, "size", defaults.Size, "number of jobs (flowshop) or items (linear)")
	fs.IntVar(&p.Machines, "machines", defaults.Machines, "number of machines (flowshop)")
	fs.IntVarP(&p.PopulationSize, "population", "n", defaults.PopulationSize, "population size, at least 2")
	fs.IntVar(&p.MaxSteps, "max-steps", defaults.MaxSteps, "stop after this many continuator polls, 0 for no limit")
	fs.Float64Var(&p.Kappa, "kappa", defaults.Kappa, "fitness scaling factor")
	fs.StringVar(&p.Indicator, "indicator", defaults.Indicator, "quality indicator (epsilon, hypervolume)")
	fs.Int64Var(&p.Seed, "seed", defaults.Seed, "seed of the instance and initial population")
	fs.DurationVar(&p.Timeout, "timeout", defaults.Timeout, "stop after this long, 0 for no limit")
}

func runSearch(ctx context.Context, opts *runOptions, stdout, stderr io.Writer) error {
	logger := logging.New(logging.ParseLevel(opts.logLevel), stderr)
	defer func() { _ = logger.Sync() }()

	report, err := solver.Solve(ctx, opts.params, logging.NewZapLogger(logger, "ibmols"), nil)
	if report == nil {
		return err
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	if err != nil {
		logger.Warn("search interrupted, printing the archive found so far")
	}

	if opts.plotPath != "" {
		if perr := writePlot(opts.plotPath, report); perr != nil {
			return perr
		}
	}

	enc := json.NewEncoder(stdout)
	if opts.pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(report)
}

func writePlot(path string, report *solver.Report) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating plot file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing plot file: %w", cerr)
		}
	}()

	return plot.Front(f, fmt.Sprintf("%s front", report.Problem), report.Front)
}
