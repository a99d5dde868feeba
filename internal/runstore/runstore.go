// Package runstore keeps a history of training and prediction runs and
// derives per-model analytics from it.
package runstore

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/your-org/wwtp-flow-predictor/internal/evaluation"
)

// ErrRunNotFound is returned when a prediction run id does not exist.
var ErrRunNotFound = errors.New("prediction run not found")

// TrainingRun is one completed training of a model.
type TrainingRun struct {
	ID           int64
	ModelVersion string
	Family       string
	Target       string
	Features     []string
	ArtifactPath string
	TrainSize    int
	TestSize     int
	Metrics      evaluation.Metrics
	CreatedAt    time.Time
}

// PredictionRun is one invocation of a model. Predicted is nil when the
// prediction failed; Actual is set once the observed value is known.
type PredictionRun struct {
	ID           int64
	ModelVersion string
	Inputs       []float64
	Predicted    *float64
	Actual       *float64
	Error        string
	CreatedAt    time.Time
}

// Scores are the rounded metrics over evaluated prediction runs.
type Scores struct {
	MAE      decimal.Decimal
	MSE      decimal.Decimal
	RMSE     decimal.Decimal
	R2       decimal.Decimal
	Accuracy decimal.Decimal
	MAPE     decimal.Decimal
}

// ModelAnalytics summarises the prediction history of one model version.
// Scores is nil until at least one run has both a prediction and an actual.
type ModelAnalytics struct {
	ModelVersion string
	Total        int
	Evaluated    int
	Failed       int
	Scores       *Scores
}

// Repository is the run history storage.
type Repository interface {
	RecordTraining(ctx context.Context, run TrainingRun) (int64, error)
	RecordPrediction(ctx context.Context, run PredictionRun) (int64, error)
	RecordActual(ctx context.Context, id int64, actual float64) error
	PredictionRuns(ctx context.Context, modelVersion string) ([]PredictionRun, error)
	Analytics(ctx context.Context, modelVersion string) (ModelAnalytics, error)
	Close() error
}

// Summarize computes analytics over the given runs. Metrics are rounded to
// four decimals, accuracy and MAPE to two.
func Summarize(modelVersion string, runs []PredictionRun) ModelAnalytics {
	a := ModelAnalytics{ModelVersion: modelVersion, Total: len(runs)}

	var pred, truth []float64
	for _, r := range runs {
		if r.Predicted == nil {
			a.Failed++
			continue
		}
		if r.Actual == nil {
			continue
		}
		pred = append(pred, *r.Predicted)
		truth = append(truth, *r.Actual)
	}
	a.Evaluated = len(pred)
	if a.Evaluated == 0 {
		return a
	}

	m, err := evaluation.Compute(truth, pred)
	if err != nil {
		return a
	}
	a.Scores = &Scores{
		MAE:      round(m.MAE, 4),
		MSE:      round(m.MSE, 4),
		RMSE:     round(m.RMSE, 4),
		R2:       round(m.R2, 4),
		Accuracy: round(evaluation.Accuracy(truth, pred), 2),
		MAPE:     round(evaluation.MAPE(truth, pred), 2),
	}
	return a
}

func round(v float64, places int32) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(places)
}
