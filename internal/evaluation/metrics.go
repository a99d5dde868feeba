// Package evaluation scores predictions against held-out truth.
package evaluation

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// perfectFitTolerance is the residual sum of squares treated as an exact fit
// when the truth has zero variance.
const perfectFitTolerance = 1e-12

// Metrics are the regression error measures on one set of predictions.
type Metrics struct {
	MAE  float64
	MSE  float64
	RMSE float64
	R2   float64
}

// Compute returns MAE, MSE, RMSE and R² of pred against truth.
func Compute(truth, pred []float64) (Metrics, error) {
	if len(truth) != len(pred) {
		return Metrics{}, fmt.Errorf("truth (%d) and predictions (%d) differ in length", len(truth), len(pred))
	}
	if len(truth) == 0 {
		return Metrics{}, errors.New("no samples to evaluate")
	}
	n := float64(len(truth))

	l2 := floats.Distance(truth, pred, 2)
	ssRes := l2 * l2
	mse := ssRes / n
	return Metrics{
		MAE:  floats.Distance(truth, pred, 1) / n,
		MSE:  mse,
		RMSE: math.Sqrt(mse),
		R2:   rSquared(truth, pred, ssRes),
	}, nil
}

// rSquared is stat.RSquaredFrom except for constant truth, where it is 1 for
// an exact fit and 0 otherwise.
func rSquared(truth, pred []float64, ssRes float64) float64 {
	if floats.Min(truth) == floats.Max(truth) {
		if ssRes <= perfectFitTolerance {
			return 1
		}
		return 0
	}
	return stat.RSquaredFrom(pred, truth, nil)
}

// MAPE is the mean absolute percentage error over the samples whose truth is non-zero.
// It returns 0 when every truth value is zero.
func MAPE(truth, pred []float64) float64 {
	var sum float64
	var count int
	for i := range truth {
		if truth[i] == 0 {
			continue
		}
		sum += math.Abs((truth[i] - pred[i]) / truth[i])
		count++
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count) * 100
}

// Accuracy is 100 - MAPE.
func Accuracy(truth, pred []float64) float64 {
	return 100 - MAPE(truth, pred)
}
