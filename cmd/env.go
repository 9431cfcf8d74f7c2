package main

import (
	"context"
	"io"
	"os"

	"github.com/rotisserie/eris"

	"github.com/eloiseboudon/crossfit-audit/internal/analyzer"
	"github.com/eloiseboudon/crossfit-audit/internal/config"
	"github.com/eloiseboudon/crossfit-audit/internal/store"
)

// newAnalyzer builds the engine from the loaded configuration.
func newAnalyzer(c *config.Config) (*analyzer.Analyzer, error) {
	eng, err := c.Engine()
	if err != nil {
		return nil, err
	}
	return analyzer.New(eng)
}

// initStore validates the store settings and opens the configured backend.
func initStore(ctx context.Context, c *config.Config) (store.Store, error) {
	if err := c.Validate("store"); err != nil {
		return nil, err
	}
	return store.Open(ctx, c.Store)
}

// readInput reads path, or stdin when path is "-".
func readInput(path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		return data, eris.Wrap(err, "read stdin")
	}
	data, err := os.ReadFile(path)
	return data, eris.Wrapf(err, "read %s", path)
}

// createOutput opens path for writing, or returns stdout when path is empty.
func createOutput(path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopCloser{os.Stdout}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, eris.Wrapf(err, "create %s", path)
	}
	return f, nil
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }
