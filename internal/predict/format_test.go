package predict

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatValue(t *testing.T) {
	// runtime sum; a constant 0.1 + 0.2 folds to exactly 0.3
	a, b := 0.1, 0.2
	cases := []struct {
		in   float64
		want string
	}{
		{18, "18.0"},
		{-3.25, "-3.25"},
		{0, "0.0"},
		{1234567, "1234567.0"},
		{a + b, "0.30000000000000004"},
		{1.5e-5, "1.5e-05"},
		{1e16, "1e+16"},
		{math.NaN(), "nan"},
		{math.Inf(-1), "-inf"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, FormatValue(c.in))
	}
}
