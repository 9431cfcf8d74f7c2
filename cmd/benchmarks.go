package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/eloiseboudon/crossfit-audit/internal/benchmark"
	"github.com/eloiseboudon/crossfit-audit/internal/intake"
	"github.com/eloiseboudon/crossfit-audit/internal/model"
)

var benchmarksCmd = &cobra.Command{
	Use:   "benchmarks",
	Short: "Market reference values",
	Long:  "Commands for listing and seeding market benchmarks and comparing a gym against them.",
}

var benchmarksListCmd = &cobra.Command{
	Use:   "list",
	Short: "List benchmarks",
	RunE: func(cmd *cobra.Command, _ []string) error {
		builtin, _ := cmd.Flags().GetBool("builtin")
		list, err := loadBenchmarks(cmd.Context(), builtin)
		if err != nil {
			return err
		}
		formatBenchmarks(os.Stdout, list)
		return nil
	},
}

var benchmarksSeedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Write the built-in benchmarks to the store",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		defaults := benchmark.Defaults()
		if err := st.SeedBenchmarks(ctx, defaults); err != nil {
			return eris.Wrap(err, "benchmarks seed")
		}
		fmt.Fprintf(os.Stderr, "Seeded %d benchmarks.\n", len(defaults))
		return nil
	},
}

var benchmarksCompareCmd = &cobra.Command{
	Use:   "compare <file.json|file.yaml|->",
	Short: "Compare a gym against the benchmarks",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := readInput(args[0])
		if err != nil {
			return err
		}
		raw, err := intake.ParseDocument(data)
		if err != nil {
			return err
		}
		m, err := intake.FromMap(raw)
		if err != nil {
			return err
		}

		builtin, _ := cmd.Flags().GetBool("builtin")
		list, err := loadBenchmarks(cmd.Context(), builtin)
		if err != nil {
			return err
		}

		formatComparisons(os.Stdout, benchmark.Compare(m, list))
		return nil
	},
}

func init() {
	benchmarksListCmd.Flags().Bool("builtin", false, "use the built-in benchmarks instead of the store")
	benchmarksCompareCmd.Flags().Bool("builtin", false, "use the built-in benchmarks instead of the store")

	benchmarksCmd.AddCommand(benchmarksListCmd)
	benchmarksCmd.AddCommand(benchmarksSeedCmd)
	benchmarksCmd.AddCommand(benchmarksCompareCmd)
	rootCmd.AddCommand(benchmarksCmd)
}

// loadBenchmarks reads the stored benchmarks, falling back to the built-in
// set when the store holds none.
func loadBenchmarks(ctx context.Context, builtin bool) ([]model.Benchmark, error) {
	if builtin {
		return benchmark.Defaults(), nil
	}
	st, err := initStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer st.Close() //nolint:errcheck

	list, err := st.ListBenchmarks(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "list benchmarks")
	}
	if len(list) == 0 {
		return benchmark.Defaults(), nil
	}
	return list, nil
}

func formatBenchmarks(out io.Writer, list []model.Benchmark) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "KEY\tCATEGORY\tVALUE\tUNIT\tNAME")
	for _, b := range list {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%.2f\t%s\t%s\n", b.Key, b.Category, b.Value, b.Unit, b.Name)
	}
	_ = w.Flush()
}

func formatComparisons(out io.Writer, cmp []benchmark.Comparison) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "BENCHMARK\tTARGET\tACTUAL\tGAP\tSTATUS")
	for _, c := range cmp {
		actual, gap, status := "-", "-", "n/a"
		if c.Actual != nil {
			actual = fmt.Sprintf("%.2f", *c.Actual)
		}
		if c.Gap != nil {
			gap = fmt.Sprintf("%+.2f", *c.Gap)
		}
		if c.Meets != nil {
			status = "miss"
			if *c.Meets {
				status = "ok"
			}
		}
		_, _ = fmt.Fprintf(w, "%s\t%.2f %s\t%s\t%s\t%s\n", c.Name, c.Target, c.Unit, actual, gap, status)
	}
	_ = w.Flush()
}
