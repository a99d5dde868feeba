// Package predict runs a persisted model on command-line feature values.
package predict

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/your-org/wwtp-flow-predictor/internal/modelpkg"
	"github.com/your-org/wwtp-flow-predictor/internal/runstore"
)

// ArgumentCountMismatchError reports a feature count that differs from the model's.
type ArgumentCountMismatchError struct {
	Expected int
	Got      int
}

func (e *ArgumentCountMismatchError) Error() string {
	return fmt.Sprintf("Expected %d features, got %d", e.Expected, e.Got)
}

// NonNumericInputError reports an argument that is not a number.
type NonNumericInputError struct {
	Index int
	Value string
}

func (e *NonNumericInputError) Error() string {
	return fmt.Sprintf("argument %d (%q) is not a number", e.Index+1, e.Value)
}

// Runner predicts with one loaded model package.
type Runner struct {
	pkg    *modelpkg.Package
	store  runstore.Repository
	logger *zap.Logger
}

// NewRunner loads the artifact at path. store may be nil.
func NewRunner(path string, store runstore.Repository, logger *zap.Logger) (*Runner, error) {
	pkg, err := modelpkg.Load(path)
	if err != nil {
		return nil, err
	}
	logger.Debug("Model loaded",
		zap.String("path", path),
		zap.String("version", pkg.Version),
		zap.String("family", string(pkg.Family())),
		zap.Strings("features", pkg.Features))
	return &Runner{pkg: pkg, store: store, logger: logger}, nil
}

// NewRunnerWithPackage wraps an already loaded package.
func NewRunnerWithPackage(pkg *modelpkg.Package, store runstore.Repository, logger *zap.Logger) *Runner {
	return &Runner{pkg: pkg, store: store, logger: logger}
}

// Package returns the loaded model package.
func (r *Runner) Package() *modelpkg.Package {
	return r.pkg
}

// Prediction is the outcome of one run. RunID is zero when no run store is configured.
type Prediction struct {
	Value float64
	RunID int64
}

// Run parses args in the model's feature order and predicts a single value.
// A count mismatch is recorded as a failed run without predicting.
func (r *Runner) Run(ctx context.Context, args []string) (Prediction, error) {
	row, err := ParseInputs(args)
	if len(args) != len(r.pkg.Features) {
		mismatch := &ArgumentCountMismatchError{Expected: len(r.pkg.Features), Got: len(args)}
		r.record(ctx, row, nil, mismatch)
		return Prediction{}, mismatch
	}
	if err != nil {
		r.record(ctx, row, nil, err)
		return Prediction{}, err
	}

	out, err := r.pkg.Predict([][]float64{row})
	if err != nil {
		r.record(ctx, row, nil, err)
		return Prediction{}, fmt.Errorf("prediction failed: %w", err)
	}
	value := out[0]
	return Prediction{Value: value, RunID: r.record(ctx, row, &value, nil)}, nil
}

// ParseInputs converts arguments to floats. On failure the values parsed so far are returned.
func ParseInputs(args []string) ([]float64, error) {
	row := make([]float64, 0, len(args))
	for i, a := range args {
		v, err := strconv.ParseFloat(strings.TrimSpace(a), 64)
		if err != nil {
			return row, &NonNumericInputError{Index: i, Value: a}
		}
		row = append(row, v)
	}
	return row, nil
}

func (r *Runner) record(ctx context.Context, inputs []float64, predicted *float64, runErr error) int64 {
	if r.store == nil {
		return 0
	}
	run := runstore.PredictionRun{
		ModelVersion: r.pkg.Version,
		Inputs:       inputs,
		Predicted:    predicted,
	}
	if runErr != nil {
		run.Error = runErr.Error()
	}
	id, err := r.store.RecordPrediction(ctx, run)
	if err != nil {
		r.logger.Warn("Failed to record prediction run", zap.Error(err))
		return 0
	}
	return id
}
