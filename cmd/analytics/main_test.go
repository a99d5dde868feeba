package main

import (
	"bytes"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/your-org/wwtp-flow-predictor/internal/runstore"
)

func TestPrintAnalytics(t *testing.T) {
	t.Run("評価済みの予測あり", func(t *testing.T) {
		var buf bytes.Buffer
		printAnalytics(&buf, runstore.ModelAnalytics{
			ModelVersion: "model-1",
			Total:        3,
			Evaluated:    2,
			Failed:       1,
			Scores: &runstore.Scores{
				MAE:      decimal.NewFromFloat(1.5),
				MSE:      decimal.NewFromFloat(2.25),
				RMSE:     decimal.NewFromFloat(1.5),
				R2:       decimal.NewFromFloat(0.8123),
				Accuracy: decimal.NewFromFloat(91.2),
				MAPE:     decimal.NewFromFloat(8.8),
			},
		})
		out := buf.String()
		assert.Contains(t, out, "Total predictions:     3")
		assert.Contains(t, out, "MAE:      1.5000")
		assert.Contains(t, out, "Accuracy: 91.20%")
	})

	t.Run("評価済みの予測なし", func(t *testing.T) {
		var buf bytes.Buffer
		printAnalytics(&buf, runstore.ModelAnalytics{ModelVersion: "model-1", Total: 1})
		assert.Contains(t, buf.String(), "No evaluated predictions yet.")
	})
}
