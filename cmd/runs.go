package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/eloiseboudon/crossfit-audit/internal/model"
	"github.com/eloiseboudon/crossfit-audit/internal/monitoring"
	"github.com/eloiseboudon/crossfit-audit/internal/store"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect saved analyses",
	Long:  "Commands for listing, viewing, deleting and summarizing persisted analysis runs.",
}

// -- runs list --

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved analyses",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		name, _ := cmd.Flags().GetString("name")
		grade, _ := cmd.Flags().GetString("grade")
		minScore, _ := cmd.Flags().GetFloat64("min-score")
		limit, _ := cmd.Flags().GetInt("limit")
		since, _ := cmd.Flags().GetDuration("since")

		filter := store.RunFilter{
			Name:     name,
			Grade:    model.Grade(strings.ToUpper(grade)),
			MinScore: minScore,
			Limit:    limit,
		}
		if since > 0 {
			filter.CreatedAfter = time.Now().Add(-since)
		}

		runs, err := st.ListAnalyses(ctx, filter)
		if err != nil {
			return eris.Wrap(err, "runs list")
		}

		if len(runs) == 0 {
			fmt.Fprintln(os.Stderr, "No runs found.")
			return nil
		}

		formatRunsList(os.Stdout, runs)
		return nil
	},
}

// -- runs show --

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show a saved analysis",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		run, err := st.GetAnalysis(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "runs show")
		}

		format, _ := cmd.Flags().GetString("format")
		if err := checkFormat(format, "json", "text", "xlsx"); err != nil {
			return err
		}
		if format == "json" {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(run)
		}
		if run.Result == nil {
			return eris.Errorf("run %s has no stored result", run.ID)
		}
		return renderResult(os.Stdout, format, run.Name, run.Result)
	},
}

// -- runs delete --

var runsDeleteCmd = &cobra.Command{
	Use:   "delete <run-id>",
	Short: "Delete a saved analysis",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		if err := st.DeleteAnalysis(ctx, args[0]); err != nil {
			return eris.Wrap(err, "runs delete")
		}
		fmt.Fprintf(os.Stderr, "Deleted run %s.\n", args[0])
		return nil
	},
}

// -- runs stats --

var runsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show score statistics over recent analyses",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		since, _ := cmd.Flags().GetDuration("since")
		hours := int(since.Hours())
		if hours < 1 {
			hours = 1
		}

		snap, err := monitoring.NewCollector(st).Collect(ctx, hours)
		if err != nil {
			return eris.Wrap(err, "runs stats")
		}

		formatRunStats(os.Stdout, snap)
		return nil
	},
}

func init() {
	runsListCmd.Flags().String("name", "", "filter by gym name (substring)")
	runsListCmd.Flags().String("grade", "", "filter by grade (A+, A, B+, B, C, D, F)")
	runsListCmd.Flags().Float64("min-score", 0, "only runs scoring at least this much")
	runsListCmd.Flags().Int("limit", 50, "max number of runs to display")
	runsListCmd.Flags().Duration("since", 0, "only runs created within this window (e.g. 24h)")

	runsShowCmd.Flags().String("format", "json", "output format: json, text or xlsx")

	runsStatsCmd.Flags().Duration("since", 24*time.Hour, "time window for stats (e.g. 24h, 72h, 168h)")

	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
	runsCmd.AddCommand(runsDeleteCmd)
	runsCmd.AddCommand(runsStatsCmd)
	rootCmd.AddCommand(runsCmd)
}

// formatRunsList writes a tabular list of runs to w.
func formatRunsList(out io.Writer, runs []model.AnalysisRun) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tGYM\tSCORE\tGRADE\tCREATED")
	_, _ = fmt.Fprintln(w, "--\t---\t-----\t-----\t-------")

	for _, r := range runs {
		name := r.Name
		if name == "" {
			name = "-"
		}
		if len(name) > 30 {
			name = name[:27] + "..."
		}
		grade := string(r.Grade)
		if grade == "" {
			grade = "-"
		}

		_, _ = fmt.Fprintf(w, "%s\t%s\t%.2f\t%s\t%s\n",
			truncateID(r.ID),
			name,
			r.OverallScore,
			grade,
			r.CreatedAt.Format("2006-01-02 15:04"),
		)
	}
	_ = w.Flush()
}

// formatRunStats writes aggregate stats to w.
func formatRunStats(out io.Writer, s *monitoring.MetricsSnapshot) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Window:\t%dh\n", s.LookbackHours)
	_, _ = fmt.Fprintf(w, "Total runs:\t%d\n", s.RunsTotal)
	_, _ = fmt.Fprintf(w, "Average score:\t%.2f\n", s.AverageScore)
	_, _ = fmt.Fprintf(w, "Failing (D/F):\t%d (%.0f%%)\n", s.FailingRuns, s.FailingShare*100)
	for _, g := range model.Grades {
		if n := s.GradeCounts[g]; n > 0 {
			_, _ = fmt.Fprintf(w, "  %s:\t%d\n", g, n)
		}
	}
	_ = w.Flush()
}

// truncateID returns the first 8 characters of a UUID for compact display.
func truncateID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
