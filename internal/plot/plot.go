// Package plot renders diagnostic charts for a trained regression model.
package plot

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Output file names inside the plot directory.
const (
	ScatterFile     = "scatter_feature_vs_target.png"
	PredictionsFile = "regression_predictions.png"
	ResidualsFile   = "residuals_plot.png"
)

var (
	actualColor    = color.RGBA{R: 20, G: 80, B: 200, A: 200}
	predictedColor = color.RGBA{R: 200, G: 30, B: 30, A: 220}
	zeroLineColor  = color.RGBA{R: 90, G: 90, B: 90, A: 255}
)

// Diagnostics holds the values every chart is drawn from. Feature, Truth and
// Predicted describe the test subset; FeatureAll and TargetAll the full frame.
type Diagnostics struct {
	FeatureName string
	TargetName  string
	FeatureAll  []float64
	TargetAll   []float64
	Feature     []float64
	Truth       []float64
	Predicted   []float64
}

// Write renders all three charts into dir and returns their paths.
func Write(dir string, d Diagnostics, logger *zap.Logger) ([]string, error) {
	if len(d.Truth) != len(d.Predicted) || len(d.Feature) != len(d.Truth) {
		return nil, errors.New("plot: test feature, truth and predictions must have equal length")
	}
	if len(d.FeatureAll) != len(d.TargetAll) {
		return nil, errors.New("plot: feature and target columns must have equal length")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create plot directory: %w", err)
	}

	residuals := make([]float64, len(d.Truth))
	floats.SubTo(residuals, d.Truth, d.Predicted)
	if len(residuals) > 0 {
		logger.Info("Residual summary",
			zap.Float64("mean", stat.Mean(residuals, nil)),
			zap.Float64("max_abs", maxAbs(residuals)))
	}

	steps := []struct {
		file   string
		render func() (*plot.Plot, error)
	}{
		{ScatterFile, func() (*plot.Plot, error) { return scatterPlot(d) }},
		{PredictionsFile, func() (*plot.Plot, error) { return predictionsPlot(d) }},
		{ResidualsFile, func() (*plot.Plot, error) { return residualsPlot(d.Predicted, residuals) }},
	}

	paths := make([]string, 0, len(steps))
	for _, s := range steps {
		p, err := s.render()
		if err != nil {
			return paths, fmt.Errorf("failed to build %s: %w", s.file, err)
		}
		path := filepath.Join(dir, s.file)
		if err := p.Save(8*vg.Inch, 6*vg.Inch, path); err != nil {
			return paths, fmt.Errorf("failed to save %s: %w", path, err)
		}
		logger.Debug("Plot saved", zap.String("path", path))
		paths = append(paths, path)
	}
	return paths, nil
}

func scatterPlot(d Diagnostics) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s vs %s", d.TargetName, d.FeatureName)
	p.X.Label.Text = d.FeatureName
	p.Y.Label.Text = d.TargetName

	s, err := plotter.NewScatter(pairs(d.FeatureAll, d.TargetAll))
	if err != nil {
		return nil, err
	}
	s.GlyphStyle.Color = actualColor
	s.GlyphStyle.Radius = vg.Points(2)
	p.Add(s, plotter.NewGrid())
	return p, nil
}

func predictionsPlot(d Diagnostics) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Regression: %s vs %s", d.TargetName, d.FeatureName)
	p.X.Label.Text = d.FeatureName
	p.Y.Label.Text = d.TargetName

	actual, err := plotter.NewScatter(pairs(d.Feature, d.Truth))
	if err != nil {
		return nil, err
	}
	actual.GlyphStyle.Color = actualColor
	actual.GlyphStyle.Radius = vg.Points(2)

	predicted, err := plotter.NewScatter(pairs(d.Feature, d.Predicted))
	if err != nil {
		return nil, err
	}
	predicted.GlyphStyle.Color = predictedColor
	predicted.GlyphStyle.Radius = vg.Points(2)

	p.Add(actual, predicted, plotter.NewGrid())
	p.Legend.Add("actual", actual)
	p.Legend.Add("predicted", predicted)
	return p, nil
}

func residualsPlot(predicted, residuals []float64) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "Residuals vs Predicted"
	p.X.Label.Text = "predicted"
	p.Y.Label.Text = "residual (actual - predicted)"

	s, err := plotter.NewScatter(pairs(predicted, residuals))
	if err != nil {
		return nil, err
	}
	s.GlyphStyle.Color = actualColor
	s.GlyphStyle.Radius = vg.Points(2)
	p.Add(s, plotter.NewGrid())

	if len(predicted) > 0 {
		zero, err := plotter.NewLine(plotter.XYs{
			{X: floats.Min(predicted), Y: 0},
			{X: floats.Max(predicted), Y: 0},
		})
		if err != nil {
			return nil, err
		}
		zero.Color = zeroLineColor
		zero.Dashes = []vg.Length{vg.Points(5), vg.Points(5)}
		p.Add(zero)
	}
	return p, nil
}

func pairs(x, y []float64) plotter.XYs {
	xys := make(plotter.XYs, len(x))
	for i := range x {
		xys[i] = plotter.XY{X: x[i], Y: y[i]}
	}
	return xys
}

func maxAbs(v []float64) float64 {
	var m float64
	for _, x := range v {
		m = math.Max(m, math.Abs(x))
	}
	return m
}
