package predict

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/your-org/wwtp-flow-predictor/internal/modelpkg"
	"github.com/your-org/wwtp-flow-predictor/internal/regression"
	"github.com/your-org/wwtp-flow-predictor/internal/runstore"
)

func saveModel(t *testing.T, lm *regression.LinearModel, features []string) string {
	t.Helper()
	pkg, err := modelpkg.New(lm, features, "Plant_Influent")
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "plant_influent_model.bin")
	require.NoError(t, modelpkg.Save(path, pkg))
	return path
}

func TestRunner_SingleFeature(t *testing.T) {
	path := saveModel(t, &regression.LinearModel{Intercept: 8, Coefficients: []float64{2}}, []string{"Vista_Level_ft"})
	r, err := NewRunner(path, nil, zap.NewNop())
	require.NoError(t, err)

	got, err := r.Run(context.Background(), []string{"5.0"})
	require.NoError(t, err)
	assert.InDelta(t, 18.0, got.Value, 1e-12)
	assert.Zero(t, got.RunID)
}

func TestRunner_UsesStoredFeatureOrder(t *testing.T) {
	path := saveModel(t, &regression.LinearModel{Intercept: 1, Coefficients: []float64{10, 100}}, []string{"Flow1_cfs", "PRCP_in"})
	r, err := NewRunner(path, nil, zap.NewNop())
	require.NoError(t, err)

	got, err := r.Run(context.Background(), []string{"2", "3"})
	require.NoError(t, err)
	assert.InDelta(t, 321.0, got.Value, 1e-12)
}

func TestRunner_ArgumentCountMismatch(t *testing.T) {
	path := saveModel(t, &regression.LinearModel{Intercept: 8, Coefficients: []float64{2}}, []string{"Vista_Level_ft"})
	store := runstore.NewInMemRepository()
	r, err := NewRunner(path, store, zap.NewNop())
	require.NoError(t, err)

	_, err = r.Run(context.Background(), []string{"1", "2"})
	var mismatch *ArgumentCountMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, 1, mismatch.Expected)
	assert.Equal(t, 2, mismatch.Got)
	assert.Equal(t, "Expected 1 features, got 2", err.Error())

	runs, err := store.PredictionRuns(context.Background(), r.Package().Version)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Nil(t, runs[0].Predicted)
	assert.Equal(t, []float64{1, 2}, runs[0].Inputs)
	assert.Equal(t, "Expected 1 features, got 2", runs[0].Error)

	a, err := store.Analytics(context.Background(), r.Package().Version)
	require.NoError(t, err)
	assert.Equal(t, 1, a.Total)
	assert.Equal(t, 1, a.Failed)
}

func TestRunner_ArgumentCountMismatchWithText(t *testing.T) {
	path := saveModel(t, &regression.LinearModel{Intercept: 8, Coefficients: []float64{2}}, []string{"Vista_Level_ft"})
	r, err := NewRunner(path, nil, zap.NewNop())
	require.NoError(t, err)

	// the count is checked before the values are
	_, err = r.Run(context.Background(), []string{"abc", "2"})
	var mismatch *ArgumentCountMismatchError
	assert.ErrorAs(t, err, &mismatch)
}

func TestRunner_NonNumericInput(t *testing.T) {
	path := saveModel(t, &regression.LinearModel{Intercept: 1, Coefficients: []float64{1, 1}}, []string{"a", "b"})
	store := runstore.NewInMemRepository()
	r, err := NewRunner(path, store, zap.NewNop())
	require.NoError(t, err)

	_, err = r.Run(context.Background(), []string{"1.5", "abc"})
	var nonNumeric *NonNumericInputError
	require.ErrorAs(t, err, &nonNumeric)
	assert.Equal(t, 1, nonNumeric.Index)
	assert.Equal(t, "abc", nonNumeric.Value)

	a, err := store.Analytics(context.Background(), r.Package().Version)
	require.NoError(t, err)
	assert.Equal(t, 1, a.Total)
	assert.Equal(t, 1, a.Failed)
}

func TestRunner_RecordsRun(t *testing.T) {
	path := saveModel(t, &regression.LinearModel{Intercept: 8, Coefficients: []float64{2}}, []string{"Vista_Level_ft"})
	store := runstore.NewInMemRepository()
	r, err := NewRunner(path, store, zap.NewNop())
	require.NoError(t, err)

	got, err := r.Run(context.Background(), []string{"3"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.RunID)

	runs, err := store.PredictionRuns(context.Background(), r.Package().Version)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, []float64{3}, runs[0].Inputs)
	require.NotNil(t, runs[0].Predicted)
	assert.InDelta(t, 14.0, *runs[0].Predicted, 1e-12)
}

func TestNewRunner_MissingArtifact(t *testing.T) {
	_, err := NewRunner(filepath.Join(t.TempDir(), "absent.bin"), nil, zap.NewNop())
	assert.True(t, errors.Is(err, modelpkg.ErrMissingArtifact))
}

func TestParseInputs(t *testing.T) {
	row, err := ParseInputs([]string{" 1 ", "-2.5", "1e3"})
	require.NoError(t, err)
	assert.Equal(t, []float64{1, -2.5, 1000}, row)
}
