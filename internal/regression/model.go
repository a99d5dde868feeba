// Package regression は流入量予測に使う回帰モデル（線形回帰とランダムフォレスト）を提供します。
package regression

import (
	"context"
	"errors"
	"fmt"
)

// Familyはモデルの種類を表すタグです。
type Family string

const (
	// Linearは最小二乗法による線形回帰です。
	Linear Family = "linear"
	// Forestは回帰木のアンサンブルです。
	Forest Family = "forest"
)

// ParseFamilyは設定値の文字列をFamilyに変換します。
func ParseFamily(s string) (Family, error) {
	switch Family(s) {
	case Linear, Forest:
		return Family(s), nil
	}
	return "", fmt.Errorf("unknown model family %q", s)
}

// ErrDegenerateTrainingSet は訓練データが空のときに返されます。
var ErrDegenerateTrainingSet = errors.New("training set is empty")

// Modelは学習済みモデルのインターフェースです。
// 実装は *LinearModel と *ForestModel のみです。
type Model interface {
	// Familyはモデルの種類を返します。
	Family() Family
	// NumFeaturesはモデルが期待する列数を返します。
	NumFeatures() int
	// Predictは各行の予測値を返します。
	Predict(X [][]float64) ([]float64, error)
}

// Options は訓練のパラメータです。
type Options struct {
	Seed            int64
	Trees           int
	MaxDepth        int // 0は無制限
	MinSamplesSplit int
}

// DefaultOptions はランダムフォレストの既定値を返します。
func DefaultOptions() Options {
	return Options{
		Seed:            42,
		Trees:           100,
		MaxDepth:        0,
		MinSamplesSplit: 2,
	}
}

// Fit は指定された種類のモデルを訓練します。
func Fit(ctx context.Context, family Family, X [][]float64, y []float64, opts Options) (Model, error) {
	if err := checkShape(X, y); err != nil {
		return nil, err
	}
	switch family {
	case Linear:
		return FitLinear(X, y)
	case Forest:
		return FitForest(ctx, X, y, opts)
	}
	return nil, fmt.Errorf("unknown model family %q", family)
}

func checkShape(X [][]float64, y []float64) error {
	if len(X) == 0 || len(y) == 0 {
		return ErrDegenerateTrainingSet
	}
	if len(X) != len(y) {
		return fmt.Errorf("feature rows (%d) and target values (%d) differ", len(X), len(y))
	}
	width := len(X[0])
	if width == 0 {
		return errors.New("feature matrix has no columns")
	}
	for i, row := range X {
		if len(row) != width {
			return fmt.Errorf("row %d has %d features, expected %d", i, len(row), width)
		}
	}
	return nil
}

func checkRows(X [][]float64, want int) error {
	for i, row := range X {
		if len(row) != want {
			return fmt.Errorf("row %d has %d features, model expects %d", i, len(row), want)
		}
	}
	return nil
}
