package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync/atomic"
	"syscall"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/eloiseboudon/crossfit-audit/internal/analyzer"
	"github.com/eloiseboudon/crossfit-audit/internal/intake"
	"github.com/eloiseboudon/crossfit-audit/internal/model"
	"github.com/eloiseboudon/crossfit-audit/internal/report"
)

var (
	batchConcurrency int
	batchOutput      string
	batchSave        bool
)

var batchCmd = &cobra.Command{
	Use:   "batch <file.csv>",
	Short: "Analyze every gym of a CSV file",
	Long:  "Reads a CSV file whose header row names the input fields, one gym per row, and analyzes the rows concurrently.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if batchConcurrency > 0 {
			cfg.Batch.MaxConcurrent = batchConcurrency
		}
		if err := cfg.Validate("batch"); err != nil {
			return err
		}

		f, err := os.Open(args[0])
		if err != nil {
			return eris.Wrapf(err, "open %s", args[0])
		}
		defer f.Close() //nolint:errcheck

		docs, err := readBatchCSV(f)
		if err != nil {
			return err
		}
		zap.L().Info("batch loaded", zap.Int("rows", len(docs)))

		a, err := newAnalyzer(cfg)
		if err != nil {
			return err
		}

		rows, metrics, stats := runBatch(ctx, a, docs, cfg.Batch.MaxConcurrent)
		zap.L().Info("batch complete",
			zap.Int64("succeeded", stats.succeeded),
			zap.Int64("failed", stats.failed),
		)

		if batchSave {
			if err := saveBatch(ctx, rows, metrics); err != nil {
				return err
			}
		}

		return writeBatch(batchOutput, rows)
	},
}

// batchDoc is one CSV row keyed by header name.
type batchDoc struct {
	Name string
	Raw  map[string]any
}

type batchStats struct {
	succeeded, failed int64
}

// readBatchCSV parses a CSV with a header row. Empty cells are left out so
// that required fields are reported as missing.
func readBatchCSV(r io.Reader) ([]batchDoc, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, eris.Wrap(err, "batch: read header")
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}

	var docs []batchDoc
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrapf(err, "batch: read line %d", line)
		}

		raw := make(map[string]any, len(header))
		for i, v := range rec {
			if i >= len(header) || header[i] == "" {
				continue
			}
			if v = strings.TrimSpace(v); v != "" {
				raw[header[i]] = v
			}
		}
		if len(raw) == 0 {
			continue
		}

		name := gymNameOr(raw, fmt.Sprintf("row %d", line))
		docs = append(docs, batchDoc{Name: name, Raw: raw})
	}
	return docs, nil
}

// runBatch analyzes docs with at most limit analyses in flight. Rows keep
// their input order; a failed row carries its error.
func runBatch(ctx context.Context, a *analyzer.Analyzer, docs []batchDoc, limit int) ([]report.BatchRow, []model.Metrics, batchStats) {
	rows := make([]report.BatchRow, len(docs))
	metrics := make([]model.Metrics, len(docs))
	var succeeded, failed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, doc := range docs {
		rows[i].Name = doc.Name
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				rows[i].Err = err
				failed.Add(1)
				return nil
			}
			m, result, err := analyzeDocument(gctx, a, doc.Raw)
			if err != nil {
				zap.L().Warn("batch row failed", zap.String("gym", doc.Name), zap.Error(err))
				rows[i].Err = err
				failed.Add(1)
				return nil
			}
			rows[i].Result = result
			metrics[i] = m
			succeeded.Add(1)
			return nil
		})
	}
	_ = g.Wait()

	return rows, metrics, batchStats{succeeded: succeeded.Load(), failed: failed.Load()}
}

func saveBatch(ctx context.Context, rows []report.BatchRow, metrics []model.Metrics) error {
	st, err := initStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close() //nolint:errcheck

	var runs []*model.AnalysisRun
	for i, row := range rows {
		if row.Result == nil {
			continue
		}
		runs = append(runs, &model.AnalysisRun{Name: row.Name, Metrics: metrics[i], Result: row.Result})
	}
	if err := st.SaveAnalyses(ctx, runs); err != nil {
		return eris.Wrap(err, "save batch")
	}
	zap.L().Info("batch saved", zap.Int("runs", len(runs)))
	return nil
}

// writeBatch picks the output format from the file extension: .xlsx, .json,
// or a table on stdout when path is empty.
func writeBatch(path string, rows []report.BatchRow) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		out, err := createOutput(path)
		if err != nil {
			return err
		}
		defer out.Close() //nolint:errcheck
		return report.WriteBatch(out, rows)
	case ".json":
		out, err := createOutput(path)
		if err != nil {
			return err
		}
		defer out.Close() //nolint:errcheck
		return writeBatchJSON(out, rows)
	case "":
		if path != "" && path != "-" {
			return eris.Errorf("batch: output %q has no extension", path)
		}
		return writeBatchTable(os.Stdout, rows)
	default:
		return eris.Errorf("batch: unsupported output %q (want .xlsx or .json)", path)
	}
}

type batchJSONRow struct {
	Name   string                `json:"name"`
	Result *model.AnalysisResult `json:"result,omitempty"`
	Error  string                `json:"error,omitempty"`
}

func writeBatchJSON(w io.Writer, rows []report.BatchRow) error {
	out := make([]batchJSONRow, len(rows))
	for i, row := range rows {
		out[i] = batchJSONRow{Name: row.Name, Result: row.Result}
		if row.Err != nil {
			out[i].Error = row.Err.Error()
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return eris.Wrap(enc.Encode(out), "batch: encode json")
}

func writeBatchTable(out io.Writer, rows []report.BatchRow) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "GYM\tSCORE\tGRADE\tINSIGHTS\tERROR")
	for _, row := range rows {
		if row.Result == nil {
			fmt.Fprintf(w, "%s\t-\t-\t-\t%v\n", row.Name, row.Err)
			continue
		}
		s := row.Result.Scores
		fmt.Fprintf(w, "%s\t%.2f\t%s\t%d\t\n", row.Name, s.Score, s.Grade, len(row.Result.Insights))
	}
	return w.Flush()
}

func gymNameOr(raw map[string]any, fallback string) string {
	if name := intake.GymName(raw); name != "" {
		return name
	}
	return fallback
}

func init() {
	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 0, "max concurrent analyses (default from config)")
	batchCmd.Flags().StringVarP(&batchOutput, "output", "o", "", "output file: .xlsx or .json (default table on stdout)")
	batchCmd.Flags().BoolVar(&batchSave, "save", false, "persist successful runs to the configured store")
	rootCmd.AddCommand(batchCmd)
}
