// Package main loads a saved model and predicts one value from positional
// feature arguments given in the model's stored feature order.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/your-org/wwtp-flow-predictor/internal/config"
	"github.com/your-org/wwtp-flow-predictor/internal/predict"
	"github.com/your-org/wwtp-flow-predictor/internal/runstore"
	"github.com/your-org/wwtp-flow-predictor/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout)
	stop()
	os.Exit(code)
}

type options struct {
	configPath string
	modelPath  string
	actual     string
}

func newFlagSet(opts *options) *flag.FlagSet {
	fs := flag.NewFlagSet("predict", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.StringVar(&opts.configPath, "config", "", "Path to the configuration file (defaults are used when empty)")
	fs.StringVar(&opts.modelPath, "model", "", "Path to the model artifact (overrides MODEL_PATH)")
	fs.StringVar(&opts.actual, "actual", "", "Observed value to store with the prediction run")
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "Usage: predict [flags] value1 value2 ...")
		fs.PrintDefaults()
	}
	return fs
}

// splitArgs separates leading flags from feature values. Values start at the
// first token that is a number (negative ones included), does not begin with
// "-", or follows "--".
func splitArgs(fs *flag.FlagSet, args []string) (flags, values []string) {
	for i := 0; i < len(args); i++ {
		a := args[i]
		if a == "--" {
			return args[:i], args[i+1:]
		}
		if !strings.HasPrefix(a, "-") || isNumber(a) {
			return args[:i], args[i:]
		}
		if strings.Contains(a, "=") {
			continue
		}
		if f := fs.Lookup(strings.TrimLeft(a, "-")); f != nil && !isBoolFlag(f) {
			i++ // the next token is this flag's value
		}
	}
	return args, nil
}

func isNumber(s string) bool {
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

func isBoolFlag(f *flag.Flag) bool {
	b, ok := f.Value.(interface{ IsBoolFlag() bool })
	return ok && b.IsBoolFlag()
}

// run executes one prediction and returns the process exit code. Only the
// prediction (or the count mismatch message) is written to stdout.
func run(ctx context.Context, args []string, stdout io.Writer) int {
	var opts options
	fs := newFlagSet(&opts)
	flagArgs, values := splitArgs(fs, args)
	if err := fs.Parse(flagArgs); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	values = append(append([]string(nil), fs.Args()...), values...)

	cfg, err := config.LoadConfig(opts.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		return 1
	}
	// stdout carries the prediction, so every log line goes to stderr
	logger.UseStderr(cfg.LogLevel)
	defer logger.Sync()

	var store runstore.Repository
	if cfg.RunStore.Enabled() {
		s, err := runstore.Open(ctx, cfg.RunStore.Driver, cfg.RunStore.DSN, logger.L())
		if err != nil {
			logger.Errorf("Failed to open run store: %v", err)
			return 1
		}
		defer s.Close()
		store = s
	}

	runner, err := predict.NewRunner(resolveModelPath(opts.modelPath, cfg), store, logger.L())
	if err != nil {
		logger.Errorf("Failed to load model: %v", err)
		return 1
	}

	pred, err := runner.Run(ctx, values)
	var mismatch *predict.ArgumentCountMismatchError
	switch {
	case errors.As(err, &mismatch):
		fmt.Fprintf(stdout, "Error: %v\n", mismatch)
		return 0
	case err != nil:
		logger.Errorf("%v", err)
		return 1
	}
	fmt.Fprintln(stdout, predict.FormatValue(pred.Value))

	if opts.actual != "" {
		recordActual(ctx, store, pred.RunID, opts.actual)
	}
	return 0
}

// resolveModelPath prefers the flag, then MODEL_PATH, then the configured training output.
func resolveModelPath(flagValue string, cfg *config.Config) string {
	switch {
	case flagValue != "":
		return flagValue
	case cfg.ModelPath != "":
		return cfg.ModelPath
	}
	return cfg.Pipeline.OutputPath
}

func recordActual(ctx context.Context, store runstore.Repository, runID int64, raw string) {
	if store == nil || runID == 0 {
		logger.Warn("-actual given but no run store is configured; ignoring")
		return
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		logger.Errorf("Invalid -actual value %q: %v", raw, err)
		return
	}
	if err := store.RecordActual(ctx, runID, v); err != nil {
		logger.Errorf("Failed to record actual value: %v", err)
		return
	}
	logger.Infof("Recorded actual %v for run %d", v, runID)
}
