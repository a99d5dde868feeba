package plot

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestWrite_CreatesAllCharts(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "plots")
	d := Diagnostics{
		FeatureName: "Vista_Level_ft",
		TargetName:  "Plant_Influent",
		FeatureAll:  []float64{1, 2, 3, 4, 5, 6},
		TargetAll:   []float64{10, 12, 14, 16, 18, 20},
		Feature:     []float64{2, 5},
		Truth:       []float64{12, 18},
		Predicted:   []float64{12.5, 17.5},
	}

	paths, err := Write(dir, d, zap.NewNop())
	require.NoError(t, err)
	require.Len(t, paths, 3)

	for _, name := range []string{ScatterFile, PredictionsFile, ResidualsFile} {
		info, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err, name)
		assert.Positive(t, info.Size(), name)
	}
}

func TestWrite_LengthMismatch(t *testing.T) {
	_, err := Write(t.TempDir(), Diagnostics{Feature: []float64{1}, Truth: []float64{1, 2}, Predicted: []float64{1, 2}}, zap.NewNop())
	assert.Error(t, err)
}

func TestMaxAbs(t *testing.T) {
	assert.Equal(t, 3.0, maxAbs([]float64{1, -3, 2}))
	assert.Equal(t, 0.0, maxAbs(nil))
}
