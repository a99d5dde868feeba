package regression

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// LinearModel は切片付きの線形回帰モデルです。
type LinearModel struct {
	Intercept    float64
	Coefficients []float64
}

// Family はLinearを返します。
func (m *LinearModel) Family() Family { return Linear }

// NumFeatures は係数の数を返します。
func (m *LinearModel) NumFeatures() int { return len(m.Coefficients) }

// Predict は intercept + X·coef を返します。
func (m *LinearModel) Predict(X [][]float64) ([]float64, error) {
	if err := checkRows(X, len(m.Coefficients)); err != nil {
		return nil, err
	}
	out := make([]float64, len(X))
	for i, row := range X {
		out[i] = m.Intercept + floats.Dot(row, m.Coefficients)
	}
	return out, nil
}

// FitLinear は残差二乗和を最小化する切片と係数を求めます。
// 中心化した計画行列をSVDで解くため、ランク落ちの場合は最小ノルム解になります。
func FitLinear(X [][]float64, y []float64) (*LinearModel, error) {
	if err := checkShape(X, y); err != nil {
		return nil, err
	}
	n, p := len(X), len(X[0])

	xMean := make([]float64, p)
	col := make([]float64, n)
	for j := 0; j < p; j++ {
		for i := 0; i < n; i++ {
			col[i] = X[i][j]
		}
		xMean[j] = stat.Mean(col, nil)
	}
	yMean := stat.Mean(y, nil)

	a := mat.NewDense(n, p, nil)
	b := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < p; j++ {
			a.Set(i, j, X[i][j]-xMean[j])
		}
		b.SetVec(i, y[i]-yMean)
	}

	coef := make([]float64, p)
	var svd mat.SVD
	if ok := svd.Factorize(a, mat.SVDThin); !ok {
		return nil, errors.New("linear regression: SVD factorization failed")
	}
	rcond := math.Nextafter(1, 2) - 1
	rcond *= float64(max(n, p))
	if rank := svd.Rank(rcond); rank > 0 {
		var sol mat.VecDense
		svd.SolveVecTo(&sol, b, rank)
		for j := 0; j < p; j++ {
			coef[j] = sol.AtVec(j)
		}
	}

	return &LinearModel{
		Intercept:    yMean - floats.Dot(xMean, coef),
		Coefficients: coef,
	}, nil
}
