package evaluation

import "math"

// Band is an open interval (Lower, Upper) with a label. Values equal to a
// bound fall outside the band.
type Band struct {
	Lower float64
	Upper float64
	Label string
}

// Contains reports whether Lower < v < Upper.
func (b Band) Contains(v float64) bool {
	return v > b.Lower && v < b.Upper
}

// Bands is an ordered, non-overlapping list of bands for one metric.
type Bands []Band

// Unclassified is reported for values outside every band.
const Unclassified = "unclassified"

// Classify returns the label of the band containing v.
func (bs Bands) Classify(v float64) (string, bool) {
	for _, b := range bs {
		if b.Contains(v) {
			return b.Label, true
		}
	}
	return Unclassified, false
}

var inf = math.Inf(1)

// Quality bands for each metric. They only affect human-readable output.
var (
	MAEBands = Bands{
		{-inf, 2, "great"},
		{2, 3, "good"},
		{3, 5, "needs tuning"},
		{5, inf, "bad"},
	}
	MSEBands = Bands{
		{-inf, 10, "great"},
		{10, 25, "good"},
		{25, 50, "needs work"},
		{50, inf, "bad"},
	}
	RMSEBands = Bands{
		{-inf, 2, "great"},
		{2, 3, "good"},
		{3, 5, "needs tuning"},
		{5, inf, "bad"},
	}
	R2Bands = Bands{
		{0, 0.3, "weak"},
		{0.3, 0.5, "moderate"},
		{0.5, 0.7, "good"},
		{0.7, 0.85, "very good"},
		{0.85, inf, "rare"},
	}
)

// Grades holds one label per metric.
type Grades struct {
	MAE  string
	MSE  string
	RMSE string
	R2   string
}

// Grade classifies every metric.
func (m Metrics) Grade() Grades {
	mae, _ := MAEBands.Classify(m.MAE)
	mse, _ := MSEBands.Classify(m.MSE)
	rmse, _ := RMSEBands.Classify(m.RMSE)
	r2, _ := R2Bands.Classify(m.R2)
	return Grades{MAE: mae, MSE: mse, RMSE: rmse, R2: r2}
}
