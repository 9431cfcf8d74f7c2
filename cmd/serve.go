package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/eloiseboudon/crossfit-audit/internal/api"
	"github.com/eloiseboudon/crossfit-audit/internal/benchmark"
	"github.com/eloiseboudon/crossfit-audit/internal/monitoring"
	"github.com/eloiseboudon/crossfit-audit/internal/store"
)

var (
	servePort    int
	serveNoStore bool
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP analysis API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if servePort != 0 {
			cfg.Server.Port = servePort
		}
		mode := "serve"
		if serveNoStore {
			mode = "analyze"
		}
		if err := cfg.Validate(mode); err != nil {
			return err
		}

		a, err := newAnalyzer(cfg)
		if err != nil {
			return err
		}

		var st store.Store
		if !serveNoStore {
			st, err = store.Open(ctx, cfg.Store)
			if err != nil {
				return err
			}
			defer st.Close() //nolint:errcheck

			if err := ensureBenchmarks(ctx, st); err != nil {
				return err
			}

			if cfg.Monitoring.Enabled {
				checker := monitoring.NewChecker(
					monitoring.NewCollector(st),
					monitoring.NewAlerter(cfg.Monitoring),
					cfg.Monitoring,
				)
				go checker.Run(ctx)
			}
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:           api.New(a, st, cfg.Server).Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				zap.L().Warn("server shutdown", zap.Error(err))
			}
		}()

		zap.L().Info("starting server",
			zap.Int("port", cfg.Server.Port),
			zap.Bool("store", st != nil),
			zap.Bool("monitoring", cfg.Monitoring.Enabled && st != nil),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

// ensureBenchmarks seeds the built-in benchmarks into an empty store.
func ensureBenchmarks(ctx context.Context, st store.Store) error {
	existing, err := st.ListBenchmarks(ctx)
	if err != nil {
		return eris.Wrap(err, "list benchmarks")
	}
	if len(existing) > 0 {
		return nil
	}
	defaults := benchmark.Defaults()
	if err := st.SeedBenchmarks(ctx, defaults); err != nil {
		return eris.Wrap(err, "seed benchmarks")
	}
	zap.L().Info("benchmarks seeded", zap.Int("count", len(defaults)))
	return nil
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	serveCmd.Flags().BoolVar(&serveNoStore, "no-store", false, "serve analyses without persistence")
	rootCmd.AddCommand(serveCmd)
}
