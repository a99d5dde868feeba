// Package report は評価結果のランキングとコンソール出力を扱います。
package report

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/your-org/wwtp-flow-predictor/internal/csvwriter"
	"github.com/your-org/wwtp-flow-predictor/internal/evaluation"
)

// ComparisonHeader はランキングCSVのヘッダーです。
var ComparisonHeader = []string{"feature", "n_samples", "intercept", "slope", "MAE", "MSE", "RMSE", "R2"}

// SortByR2 は結果をR²の降順に並べ替えます。同じR²なら元の順序を保ちます。
func SortByR2(results []evaluation.Result) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].R2 > results[j].R2
	})
}

// WriteComparison はランキング済みの結果をCSVに書き出します。
func WriteComparison(path string, results []evaluation.Result, logger *zap.Logger) error {
	w, err := csvwriter.NewWriter(path, logger)
	if err != nil {
		return err
	}
	if err := w.Write(ComparisonHeader); err != nil {
		w.Abort()
		return err
	}
	for _, r := range results {
		if err := w.Write(comparisonRecord(r)); err != nil {
			w.Abort()
			return err
		}
	}
	return w.Close()
}

func comparisonRecord(r evaluation.Result) []string {
	intercept, slope := "", ""
	if r.HasLine {
		intercept = formatFloat(r.Intercept)
		slope = formatFloat(r.Slope)
	}
	return []string{
		FeatureLabel(r.Features),
		strconv.Itoa(r.Samples),
		intercept,
		slope,
		formatFloat(r.MAE),
		formatFloat(r.MSE),
		formatFloat(r.RMSE),
		formatFloat(r.R2),
	}
}

// FeatureLabel は特徴量名を"+"で連結します。
func FeatureLabel(features []string) string {
	return strings.Join(features, "+")
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// fixed は小数点以下4桁に丸めた文字列を返します。
func fixed(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(4)
}

// PrintModel は単一特徴量の線形モデルの式を出力します。
func PrintModel(w io.Writer, target string, r evaluation.Result) {
	if !r.HasLine {
		return
	}
	feature := FeatureLabel(r.Features)
	fmt.Fprintln(w, "Model fitted:")
	fmt.Fprintf(w, "  Intercept: %s\n", fixed(r.Intercept))
	fmt.Fprintf(w, "  Slope for %s: %s\n", feature, fixed(r.Slope))
	fmt.Fprintf(w, "MODEL:  %s = %s + (%s) * %s\n", target, fixed(r.Intercept), fixed(r.Slope), feature)
}

// PrintMetrics はテストセットの評価指標と品質ラベルを出力します。
func PrintMetrics(w io.Writer, m evaluation.Metrics) {
	g := m.Grade()
	fmt.Fprintln(w, "Test performance:")
	fmt.Fprintf(w, "  MAE:  %s (%s)\n", fixed(m.MAE), g.MAE)
	fmt.Fprintf(w, "  MSE:  %s (%s)\n", fixed(m.MSE), g.MSE)
	fmt.Fprintf(w, "  RMSE: %s (%s)\n", fixed(m.RMSE), g.RMSE)
	fmt.Fprintf(w, "  R^2:  %s (%s)\n", fixed(m.R2), g.R2)
}

// PrintResult は比較モードの1特徴量分の結果を出力します。
func PrintResult(w io.Writer, r evaluation.Result) {
	fmt.Fprintf(w, "[RESULT] Feature: %s\n", FeatureLabel(r.Features))
	fmt.Fprintf(w, "  n = %d\n", r.Samples)
	if r.HasLine {
		fmt.Fprintf(w, "  Intercept = %s\n", fixed(r.Intercept))
		fmt.Fprintf(w, "  Slope     = %s\n", fixed(r.Slope))
	}
	fmt.Fprintf(w, "  MAE       = %s\n", fixed(r.MAE))
	fmt.Fprintf(w, "  MSE       = %s\n", fixed(r.MSE))
	fmt.Fprintf(w, "  RMSE      = %s\n", fixed(r.RMSE))
	fmt.Fprintf(w, "  R^2       = %s\n", fixed(r.R2))
}

// PrintTop はランキングの上位limit件を表形式で出力します。
func PrintTop(w io.Writer, results []evaluation.Result, limit int) {
	if limit <= 0 || limit > len(results) {
		limit = len(results)
	}
	fmt.Fprintf(w, "%-26s %9s %10s %10s %10s %8s\n", "feature", "n_samples", "MAE", "MSE", "RMSE", "R2")
	for _, r := range results[:limit] {
		fmt.Fprintf(w, "%-26s %9d %10s %10s %10s %8s\n",
			FeatureLabel(r.Features), r.Samples, fixed(r.MAE), fixed(r.MSE), fixed(r.RMSE), fixed(r.R2))
	}
}
