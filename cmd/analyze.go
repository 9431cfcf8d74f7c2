package main

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/eloiseboudon/crossfit-audit/internal/analyzer"
	"github.com/eloiseboudon/crossfit-audit/internal/intake"
	"github.com/eloiseboudon/crossfit-audit/internal/model"
	"github.com/eloiseboudon/crossfit-audit/internal/monitoring"
	"github.com/eloiseboudon/crossfit-audit/internal/report"
)

var (
	analyzePrice  float64
	analyzeFormat string
	analyzeOutput string
	analyzeSave   bool
	analyzeName   string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file.json|file.yaml|->",
	Short: "Run a full audit of one gym",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := checkFormat(analyzeFormat, "text", "json", "xlsx"); err != nil {
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
		if cmd.Flags().Changed("price") {
			raw["purchase_price"] = analyzePrice
		}

		a, err := newAnalyzer(cfg)
		if err != nil {
			return err
		}

		m, result, err := analyzeDocument(ctx, a, raw)
		if err != nil {
			return err
		}

		name := analyzeName
		if name == "" {
			name = intake.GymName(raw)
		}

		if analyzeSave {
			st, err := initStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer st.Close() //nolint:errcheck

			run := &model.AnalysisRun{Name: name, Metrics: m, Result: result}
			if err := st.SaveAnalysis(ctx, run); err != nil {
				return eris.Wrap(err, "save analysis")
			}
			zap.L().Info("analysis saved", zap.String("id", run.ID), zap.String("name", name))
		}

		out, err := createOutput(analyzeOutput)
		if err != nil {
			return err
		}
		defer out.Close() //nolint:errcheck

		return renderResult(out, analyzeFormat, name, result)
	},
}

// analyzeDocument converts raw into a metrics record and analyzes it.
func analyzeDocument(ctx context.Context, a *analyzer.Analyzer, raw map[string]any) (model.Metrics, *model.AnalysisResult, error) {
	start := time.Now()
	m, err := intake.FromMap(raw)
	if err != nil {
		monitoring.RecordAnalysis("cli", monitoring.OutcomeInvalid, nil, time.Since(start))
		return model.Metrics{}, nil, err
	}

	result, err := a.Run(ctx, m, intake.PurchasePrice(raw))
	if err != nil {
		outcome := monitoring.OutcomeError
		if eris.Is(err, model.ErrInvalidInput) {
			outcome = monitoring.OutcomeInvalid
		}
		monitoring.RecordAnalysis("cli", outcome, nil, time.Since(start))
		return model.Metrics{}, nil, err
	}
	result.GeneratedAt = time.Now().UTC()
	monitoring.RecordAnalysis("cli", monitoring.OutcomeOK, result, time.Since(start))

	return m, result, nil
}

// renderResult writes result to w in the requested format.
func renderResult(w io.Writer, format, name string, result *model.AnalysisResult) error {
	switch format {
	case "json":
		data, err := analyzer.Export(result)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case "xlsx":
		return report.Write(w, name, result)
	default:
		_, err := io.WriteString(w, analyzer.Summary(result))
		return err
	}
}

func checkFormat(format string, allowed ...string) error {
	for _, a := range allowed {
		if format == a {
			return nil
		}
	}
	return eris.Errorf("unknown format %q (want one of %v)", format, allowed)
}

func init() {
	analyzeCmd.Flags().Float64Var(&analyzePrice, "price", 0, "purchase price for the acquisition analysis")
	analyzeCmd.Flags().StringVar(&analyzeFormat, "format", "text", "output format: text, json or xlsx")
	analyzeCmd.Flags().StringVarP(&analyzeOutput, "output", "o", "", "output file (default stdout)")
	analyzeCmd.Flags().BoolVar(&analyzeSave, "save", false, "persist the run to the configured store")
	analyzeCmd.Flags().StringVar(&analyzeName, "name", "", "gym name (default from the document)")
	rootCmd.AddCommand(analyzeCmd)
}
