package evaluation

import (
	"fmt"

	"github.com/your-org/wwtp-flow-predictor/internal/regression"
)

// Result is the evaluation of one fitted model on its held-out subset.
// Intercept and Slope are only meaningful when HasLine is true.
type Result struct {
	Features  []string
	Samples   int
	HasLine   bool
	Intercept float64
	Slope     float64
	Metrics
}

// Evaluate predicts X with the model and scores it against y.
func Evaluate(model regression.Model, X [][]float64, y []float64) (Metrics, []float64, error) {
	pred, err := model.Predict(X)
	if err != nil {
		return Metrics{}, nil, fmt.Errorf("failed to predict test set: %w", err)
	}
	m, err := Compute(y, pred)
	if err != nil {
		return Metrics{}, nil, err
	}
	return m, pred, nil
}

// NewResult builds a Result, taking intercept and slope from a single-feature linear model.
func NewResult(model regression.Model, features []string, samples int, m Metrics) Result {
	r := Result{
		Features: append([]string(nil), features...),
		Samples:  samples,
		Metrics:  m,
	}
	if lm, ok := model.(*regression.LinearModel); ok && len(lm.Coefficients) == 1 {
		r.HasLine = true
		r.Intercept = lm.Intercept
		r.Slope = lm.Coefficients[0]
	}
	return r
}
