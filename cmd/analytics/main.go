// Package main prints prediction analytics for one model version and can
// attach an observed value to an earlier prediction run.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/your-org/wwtp-flow-predictor/internal/config"
	"github.com/your-org/wwtp-flow-predictor/internal/modelpkg"
	"github.com/your-org/wwtp-flow-predictor/internal/runstore"
	"github.com/your-org/wwtp-flow-predictor/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "Path to the configuration file (defaults are used when empty)")
	version := flag.String("version", "", "Model version; read from the model artifact when empty")
	modelPath := flag.String("model", "", "Model artifact used to look up the version (overrides MODEL_PATH)")
	runID := flag.Int64("run", 0, "Prediction run id to attach -actual to")
	actual := flag.Float64("actual", 0, "Observed value for -run")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	logger.SetGlobalLogLevel(cfg.LogLevel)
	defer logger.Sync()

	if !cfg.RunStore.Enabled() {
		logger.Fatal("Run store is not configured; set run_store.driver or RUN_STORE_DRIVER")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := runstore.Open(ctx, cfg.RunStore.Driver, cfg.RunStore.DSN, logger.L())
	if err != nil {
		logger.Fatalf("Failed to open run store: %v", err)
	}
	defer store.Close()

	if *runID > 0 {
		if err := store.RecordActual(ctx, *runID, *actual); err != nil {
			logger.Fatalf("Failed to record actual value: %v", err)
		}
		logger.Infof("Recorded actual %v for run %d", *actual, *runID)
	}

	v := *version
	if v == "" {
		path := *modelPath
		if path == "" {
			path = cfg.ModelPath
		}
		if path == "" {
			path = cfg.Pipeline.OutputPath
		}
		pkg, err := modelpkg.Load(path)
		if err != nil {
			logger.Fatalf("Failed to read model version from %s: %v", path, err)
		}
		v = pkg.Version
	}

	a, err := store.Analytics(ctx, v)
	if err != nil {
		logger.Fatalf("Failed to compute analytics: %v", err)
	}
	printAnalytics(os.Stdout, a)
}

func printAnalytics(w io.Writer, a runstore.ModelAnalytics) {
	fmt.Fprintf(w, "Model:                 %s\n", a.ModelVersion)
	fmt.Fprintf(w, "Total predictions:     %d\n", a.Total)
	fmt.Fprintf(w, "Evaluated predictions: %d\n", a.Evaluated)
	fmt.Fprintf(w, "Failed predictions:    %d\n", a.Failed)
	if a.Scores == nil {
		fmt.Fprintln(w, "No evaluated predictions yet.")
		return
	}
	s := a.Scores
	fmt.Fprintf(w, "MAE:      %s\n", s.MAE.StringFixed(4))
	fmt.Fprintf(w, "MSE:      %s\n", s.MSE.StringFixed(4))
	fmt.Fprintf(w, "RMSE:     %s\n", s.RMSE.StringFixed(4))
	fmt.Fprintf(w, "R^2:      %s\n", s.R2.StringFixed(4))
	fmt.Fprintf(w, "Accuracy: %s%%\n", s.Accuracy.StringFixed(2))
	fmt.Fprintf(w, "MAPE:     %s%%\n", s.MAPE.StringFixed(2))
}
