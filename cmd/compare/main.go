// Package main fits one single-feature linear model per candidate predictor
// and writes them ranked by R² to a CSV report.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/your-org/wwtp-flow-predictor/internal/config"
	"github.com/your-org/wwtp-flow-predictor/internal/dataset"
	"github.com/your-org/wwtp-flow-predictor/internal/pipeline"
	"github.com/your-org/wwtp-flow-predictor/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "Path to the configuration file (defaults are used when empty)")
	candidates := flag.String("candidates", "", "Comma-separated candidate features, overriding the config")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *candidates != "" {
		cfg.Candidates = splitList(*candidates)
	}
	logger.SetGlobalLogLevel(cfg.LogLevel)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, os.Stdout); err != nil {
		logger.Errorf("Comparison failed: %v", err)
		logger.Sync()
		os.Exit(1)
	}
}

// run compares the candidates and writes the report. A comparison that trains
// no model only warns.
func run(ctx context.Context, cfg *config.Config, stdout io.Writer) error {
	pc := cfg.Pipeline
	table, err := dataset.Load(pc.SourcePath, dataset.LoadOptions{RenameMap: pc.RenameMap, DateColumn: pc.DateColumn}, logger.L())
	if err != nil {
		return fmt.Errorf("failed to load source data: %w", err)
	}

	results, err := pipeline.NewPipeline(cfg, logger.L(), pipeline.WithOutput(stdout)).Compare(ctx, table)
	switch {
	case errors.Is(err, pipeline.ErrNoModels):
		logger.Warnf("%v; no report written", err)
		return nil
	case err != nil:
		return err
	}
	logger.Infof("Ranked %d models by R² into %s", len(results), pc.ReportPath)
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
