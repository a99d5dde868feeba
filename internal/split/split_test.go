package split

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit_DisjointAndComplete(t *testing.T) {
	for _, n := range []int{0, 1, 5, 6, 10, 97, 1000} {
		for _, size := range []float64{0, 0.1, 0.2, 0.25, 0.5, 0.99} {
			for _, seed := range []int64{0, 1, 42, -7} {
				p, err := Split(n, size, seed)
				require.NoError(t, err)

				wantTest := int(float64(n) * size)
				assert.Len(t, p.Test, wantTest, "n=%d size=%v seed=%d", n, size, seed)
				assert.Len(t, p.Train, n-wantTest)

				all := append(append([]int(nil), p.Train...), p.Test...)
				sort.Ints(all)
				for i, v := range all {
					if !assert.Equal(t, i, v, "every index must appear exactly once") {
						break
					}
				}
			}
		}
	}
}

func TestSplit_Deterministic(t *testing.T) {
	a, err := Split(200, 0.2, 42)
	require.NoError(t, err)
	b, err := Split(200, 0.2, 42)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	c, err := Split(200, 0.2, 43)
	require.NoError(t, err)
	assert.NotEqual(t, a.Test, c.Test, "a different seed should shuffle differently")
}

func TestSplit_InvalidInput(t *testing.T) {
	_, err := Split(10, 1, 42)
	assert.Error(t, err)
	_, err = Split(10, -0.1, 42)
	assert.Error(t, err)
	_, err = Split(-1, 0.2, 42)
	assert.Error(t, err)
}
