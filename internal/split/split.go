// Package split partitions row indices into training and held-out test sets.
package split

import (
	"fmt"
	"math"
	"math/rand"
)

const (
	// DefaultTestSize is the fraction of rows held out for evaluation.
	DefaultTestSize = 0.2
	// DefaultSeed makes partitions reproducible across runs.
	DefaultSeed int64 = 42
)

// Partition holds disjoint train/test row indices.
type Partition struct {
	Train []int
	Test  []int
}

// Split shuffles 0..n-1 with a generator seeded by seed and puts the first
// floor(n*testSize) indices into Test and the rest into Train.
// The result depends only on (n, testSize, seed).
func Split(n int, testSize float64, seed int64) (Partition, error) {
	if n < 0 {
		return Partition{}, fmt.Errorf("split: negative row count %d", n)
	}
	if testSize < 0 || testSize >= 1 || math.IsNaN(testSize) {
		return Partition{}, fmt.Errorf("split: test size must be in [0, 1), got %v", testSize)
	}

	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	rnd := rand.New(rand.NewSource(seed))
	rnd.Shuffle(n, func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })

	nTest := int(math.Floor(float64(n) * testSize))
	return Partition{
		Test:  idx[:nTest:nTest],
		Train: idx[nTest:],
	}, nil
}
