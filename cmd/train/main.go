// Package main trains, evaluates and saves one regression model.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/your-org/wwtp-flow-predictor/internal/config"
	"github.com/your-org/wwtp-flow-predictor/internal/dataset"
	"github.com/your-org/wwtp-flow-predictor/internal/pipeline"
	"github.com/your-org/wwtp-flow-predictor/internal/runstore"
	"github.com/your-org/wwtp-flow-predictor/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "Path to the configuration file (defaults are used when empty)")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	logger.SetGlobalLogLevel(cfg.LogLevel)
	defer logger.Sync()

	// シグナルで各ステージの合間に中断する
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logger.Errorf("Training failed: %v", err)
		logger.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	pc := cfg.Pipeline
	logger.Infof("Loading %s", pc.SourcePath)
	table, err := dataset.Load(pc.SourcePath, dataset.LoadOptions{RenameMap: pc.RenameMap, DateColumn: pc.DateColumn}, logger.L())
	if err != nil {
		if errors.Is(err, dataset.ErrMissingFile) {
			return fmt.Errorf("source data not found: %w", err)
		}
		return err
	}
	logger.Infof("Loaded %d rows with columns %v", table.Len(), table.Columns())

	opts := []pipeline.Option{pipeline.WithOutput(os.Stdout)}
	if cfg.RunStore.Enabled() {
		store, err := runstore.Open(ctx, cfg.RunStore.Driver, cfg.RunStore.DSN, logger.L())
		if err != nil {
			return err
		}
		defer store.Close()
		opts = append(opts, pipeline.WithRunStore(store))
	}

	res, err := pipeline.NewPipeline(cfg, logger.L(), opts...).Train(ctx, table)
	if err != nil {
		return err
	}
	logger.Infof("Model %s (%s) trained on %d rows, evaluated on %d rows, saved to %s",
		res.Package.Version, res.Package.Family(), res.TrainSize, res.TestSize, pc.OutputPath)
	return nil
}
