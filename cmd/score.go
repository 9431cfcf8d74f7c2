package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/eloiseboudon/crossfit-audit/internal/intake"
	"github.com/eloiseboudon/crossfit-audit/internal/model"
)

var scoreFormat string

var scoreCmd = &cobra.Command{
	Use:   "score <file.json|file.yaml|->",
	Short: "Print the five category scores and the overall grade",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkFormat(scoreFormat, "table", "csv"); err != nil {
			return err
		}

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

		a, err := newAnalyzer(cfg)
		if err != nil {
			return err
		}
		scores, err := a.QuickScore(m)
		if err != nil {
			return err
		}

		if scoreFormat == "csv" {
			return writeScoresCSV(os.Stdout, scores)
		}
		return writeScoresTable(os.Stdout, scores)
	},
}

func writeScoresTable(out io.Writer, s model.OverallScore) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CATEGORY\tSCORE\tWEIGHT")
	for _, c := range model.ScoreCategories {
		cs, ok := s.Category(c)
		if !ok {
			continue
		}
		fmt.Fprintf(w, "%s\t%.2f\t%.2f\n", c.Label(), cs.Score, cs.Weight)
	}
	fmt.Fprintf(w, "Overall\t%.2f\t%s (%s)\n", s.Score, s.Grade, s.GradeLabel)
	return w.Flush()
}

func writeScoresCSV(out io.Writer, s model.OverallScore) error {
	w := csv.NewWriter(out)
	if err := w.Write([]string{"category", "score", "weight"}); err != nil {
		return eris.Wrap(err, "write csv header")
	}
	for _, c := range model.ScoreCategories {
		cs, ok := s.Category(c)
		if !ok {
			continue
		}
		if err := w.Write([]string{string(c), formatFloat(cs.Score), formatFloat(cs.Weight)}); err != nil {
			return eris.Wrap(err, "write csv row")
		}
	}
	if err := w.Write([]string{"overall", formatFloat(s.Score), string(s.Grade)}); err != nil {
		return eris.Wrap(err, "write csv row")
	}
	w.Flush()
	return eris.Wrap(w.Error(), "flush csv")
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func init() {
	scoreCmd.Flags().StringVar(&scoreFormat, "format", "table", "output format: table or csv")
	rootCmd.AddCommand(scoreCmd)
}
