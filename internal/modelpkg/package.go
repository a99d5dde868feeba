// Package modelpkg bundles a fitted model with the metadata needed to reuse it
// and persists the bundle as a single artifact file.
package modelpkg

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/your-org/wwtp-flow-predictor/internal/regression"
)

// Package is a fitted model plus the ordered feature names it expects.
// Features order is the contract with prediction-time input.
type Package struct {
	Version      string
	Model        regression.Model
	Features     []string
	Target       string
	Intercept    *float64
	Coefficients []float64
	TrainedAt    time.Time
}

// New bundles a fitted model. For linear models the intercept and
// coefficients are taken from the model's own parameters.
func New(model regression.Model, features []string, target string) (*Package, error) {
	pkg := &Package{
		Version:   fmt.Sprintf("model-%s", uuid.New().String()),
		Model:     model,
		Features:  append([]string(nil), features...),
		Target:    target,
		TrainedAt: time.Now().UTC(),
	}
	if lm, ok := model.(*regression.LinearModel); ok {
		intercept := lm.Intercept
		pkg.Intercept = &intercept
		pkg.Coefficients = append([]float64(nil), lm.Coefficients...)
	}
	if err := pkg.Validate(); err != nil {
		return nil, err
	}
	return pkg, nil
}

// Family returns the model family tag.
func (p *Package) Family() regression.Family {
	return p.Model.Family()
}

// Validate checks that the feature list matches what the model expects.
func (p *Package) Validate() error {
	if p.Model == nil {
		return errors.New("model package has no model")
	}
	if len(p.Features) == 0 {
		return errors.New("model package has no feature names")
	}
	if got, want := len(p.Features), p.Model.NumFeatures(); got != want {
		return fmt.Errorf("model package lists %d feature names but the model expects %d", got, want)
	}
	if p.Coefficients != nil && len(p.Coefficients) != len(p.Features) {
		return fmt.Errorf("model package has %d coefficients for %d features", len(p.Coefficients), len(p.Features))
	}
	return nil
}

// Predict runs the model on rows whose columns follow p.Features.
func (p *Package) Predict(X [][]float64) ([]float64, error) {
	return p.Model.Predict(X)
}
