package regression

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func column(vals ...float64) [][]float64 {
	out := make([][]float64, len(vals))
	for i, v := range vals {
		out[i] = []float64{v}
	}
	return out
}

func TestFitLinear_PerfectLine(t *testing.T) {
	// y = 2x + 8
	X := column(1, 2, 3, 4, 5, 6)
	y := []float64{10, 12, 14, 16, 18, 20}

	m, err := FitLinear(X, y)
	require.NoError(t, err)

	assert.InDelta(t, 8.0, m.Intercept, 1e-9)
	require.Len(t, m.Coefficients, 1)
	assert.InDelta(t, 2.0, m.Coefficients[0], 1e-9)
	assert.Equal(t, 1, m.NumFeatures())
	assert.Equal(t, Linear, m.Family())

	pred, err := m.Predict(column(10))
	require.NoError(t, err)
	assert.InDelta(t, 28.0, pred[0], 1e-9)
}

func TestFitLinear_MultiFeature(t *testing.T) {
	// y = 1 + 2a - 3b + 0.5c, exact
	rnd := rand.New(rand.NewSource(1))
	var X [][]float64
	var y []float64
	for i := 0; i < 50; i++ {
		a, b, c := rnd.Float64()*10, rnd.Float64()*5, rnd.NormFloat64()
		X = append(X, []float64{a, b, c})
		y = append(y, 1+2*a-3*b+0.5*c)
	}

	m, err := FitLinear(X, y)
	require.NoError(t, err)

	want := []float64{2, -3, 0.5}
	if !cmp.Equal(want, m.Coefficients, cmpopts.EquateApprox(0, 1e-9)) {
		t.Errorf("FitLinear() coefficients = %v, want %v, diff: %s", m.Coefficients, want, cmp.Diff(want, m.Coefficients, cmpopts.EquateApprox(0, 1e-9)))
	}
	assert.InDelta(t, 1.0, m.Intercept, 1e-9)
}

func TestFitLinear_NoisyMatchesClosedForm(t *testing.T) {
	X := column(1, 2, 3, 4, 5)
	y := []float64{2.1, 3.9, 6.2, 7.8, 10.1}

	m, err := FitLinear(X, y)
	require.NoError(t, err)

	// slope = cov(x,y)/var(x), intercept = ȳ - slope*x̄
	xm, ym := 3.0, (2.1+3.9+6.2+7.8+10.1)/5
	var sxy, sxx float64
	for i, row := range X {
		sxy += (row[0] - xm) * (y[i] - ym)
		sxx += (row[0] - xm) * (row[0] - xm)
	}
	slope := sxy / sxx
	assert.InDelta(t, slope, m.Coefficients[0], 1e-12)
	assert.InDelta(t, ym-slope*xm, m.Intercept, 1e-12)
}

func TestFitLinear_ConstantFeature(t *testing.T) {
	m, err := FitLinear(column(3, 3, 3), []float64{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, 0.0, m.Coefficients[0])
	assert.InDelta(t, 2.0, m.Intercept, 1e-12)
}

func TestFit_DegenerateTrainingSet(t *testing.T) {
	for _, family := range []Family{Linear, Forest} {
		_, err := Fit(context.Background(), family, nil, nil, DefaultOptions())
		assert.True(t, errors.Is(err, ErrDegenerateTrainingSet), "family %s", family)
	}
}

func TestFit_ShapeErrors(t *testing.T) {
	_, err := Fit(context.Background(), Linear, column(1, 2), []float64{1}, DefaultOptions())
	assert.Error(t, err)
	_, err = Fit(context.Background(), Linear, [][]float64{{1}, {1, 2}}, []float64{1, 2}, DefaultOptions())
	assert.Error(t, err)
	_, err = Fit(context.Background(), "svm", column(1), []float64{1}, DefaultOptions())
	assert.Error(t, err)
}

func TestPredict_RowWidthMismatch(t *testing.T) {
	m := &LinearModel{Intercept: 1, Coefficients: []float64{1, 2}}
	_, err := m.Predict([][]float64{{1}})
	assert.Error(t, err)
}

func stepData() ([][]float64, []float64) {
	var X [][]float64
	var y []float64
	for i := 0; i < 40; i++ {
		x := float64(i)
		X = append(X, []float64{x, math.Mod(x, 3)})
		if x < 20 {
			y = append(y, 5)
		} else {
			y = append(y, 15)
		}
	}
	return X, y
}

func TestFitForest_LearnsStep(t *testing.T) {
	X, y := stepData()
	opts := DefaultOptions()
	opts.Trees = 20

	m, err := FitForest(context.Background(), X, y, opts)
	require.NoError(t, err)
	assert.Equal(t, Forest, m.Family())
	assert.Equal(t, 2, m.NumFeatures())
	assert.Len(t, m.Trees, 20)

	pred, err := m.Predict([][]float64{{2, 2}, {35, 2}})
	require.NoError(t, err)
	assert.InDelta(t, 5.0, pred[0], 1.0)
	assert.InDelta(t, 15.0, pred[1], 1.0)
}

func TestFitForest_DeterministicForSeed(t *testing.T) {
	X, y := stepData()
	opts := DefaultOptions()
	opts.Trees = 10

	a, err := FitForest(context.Background(), X, y, opts)
	require.NoError(t, err)
	b, err := FitForest(context.Background(), X, y, opts)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestFitForest_MaxDepthOne(t *testing.T) {
	X, y := stepData()
	opts := DefaultOptions()
	opts.Trees = 3
	opts.MaxDepth = 1

	m, err := FitForest(context.Background(), X, y, opts)
	require.NoError(t, err)
	for _, tree := range m.Trees {
		assert.LessOrEqual(t, len(tree.Nodes), 3, "a depth-one tree has at most a root and two leaves")
	}
}

func TestFitForest_Cancelled(t *testing.T) {
	X, y := stepData()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := FitForest(ctx, X, y, DefaultOptions())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseFamily(t *testing.T) {
	f, err := ParseFamily("forest")
	require.NoError(t, err)
	assert.Equal(t, Forest, f)
	_, err = ParseFamily("tree")
	assert.Error(t, err)
}
