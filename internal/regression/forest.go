package regression

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
)

// Node は回帰木のノードです。Feature が -1 のとき葉になります。
type Node struct {
	Feature   int
	Threshold float64
	Value     float64
	Left      int
	Right     int
}

// Tree はノードを配列で保持する回帰木です。Nodes[0]が根です。
type Tree struct {
	Nodes []Node
}

func (t *Tree) predict(x []float64) float64 {
	i := 0
	for {
		n := t.Nodes[i]
		if n.Feature < 0 {
			return n.Value
		}
		if x[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}

// ForestModel はブートストラップで訓練した回帰木の平均を返すモデルです。
type ForestModel struct {
	Trees    []Tree
	Features int
	Seed     int64
	MaxDepth int
	MinSplit int
}

// Family はForestを返します。
func (m *ForestModel) Family() Family { return Forest }

// NumFeatures は訓練時の列数を返します。
func (m *ForestModel) NumFeatures() int { return m.Features }

// Predict は全ての木の予測値の平均を返します。
func (m *ForestModel) Predict(X [][]float64) ([]float64, error) {
	if len(m.Trees) == 0 {
		return nil, fmt.Errorf("forest has no trees")
	}
	if err := checkRows(X, m.Features); err != nil {
		return nil, err
	}
	out := make([]float64, len(X))
	for i, row := range X {
		sum := 0.0
		for t := range m.Trees {
			sum += m.Trees[t].predict(row)
		}
		out[i] = sum / float64(len(m.Trees))
	}
	return out, nil
}

// FitForest はシード固定でランダムフォレストを訓練します。
// 各分割では全ての特徴量を候補にします。
func FitForest(ctx context.Context, X [][]float64, y []float64, opts Options) (*ForestModel, error) {
	if err := checkShape(X, y); err != nil {
		return nil, err
	}
	if opts.Trees <= 0 {
		opts.Trees = DefaultOptions().Trees
	}
	if opts.MinSamplesSplit < 2 {
		opts.MinSamplesSplit = 2
	}

	m := &ForestModel{
		Trees:    make([]Tree, 0, opts.Trees),
		Features: len(X[0]),
		Seed:     opts.Seed,
		MaxDepth: opts.MaxDepth,
		MinSplit: opts.MinSamplesSplit,
	}
	rnd := rand.New(rand.NewSource(opts.Seed))
	n := len(y)
	for t := 0; t < opts.Trees; t++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		sample := make([]int, n)
		for i := range sample {
			sample[i] = rnd.Intn(n)
		}
		b := &treeBuilder{x: X, y: y, maxDepth: opts.MaxDepth, minSplit: opts.MinSamplesSplit}
		b.build(sample, 0)
		m.Trees = append(m.Trees, Tree{Nodes: b.nodes})
	}
	return m, nil
}

type treeBuilder struct {
	x        [][]float64
	y        []float64
	maxDepth int
	minSplit int
	nodes    []Node
}

// build は idx の行から部分木を作り、そのノード番号を返します。
func (b *treeBuilder) build(idx []int, depth int) int {
	self := len(b.nodes)
	b.nodes = append(b.nodes, Node{Feature: -1, Value: b.mean(idx)})

	if len(idx) < b.minSplit || (b.maxDepth > 0 && depth >= b.maxDepth) {
		return self
	}
	feature, threshold, ok := b.bestSplit(idx)
	if !ok {
		return self
	}

	var left, right []int
	for _, i := range idx {
		if b.x[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) == 0 || len(right) == 0 {
		return self
	}
	l := b.build(left, depth+1)
	r := b.build(right, depth+1)
	b.nodes[self] = Node{Feature: feature, Threshold: threshold, Left: l, Right: r}
	return self
}

func (b *treeBuilder) mean(idx []int) float64 {
	if len(idx) == 0 {
		return 0
	}
	sum := 0.0
	for _, i := range idx {
		sum += b.y[i]
	}
	return sum / float64(len(idx))
}

// bestSplit は二乗誤差の合計が最小になる(特徴量, 閾値)を探します。
// 値を並べ替えて累積和を使うので、特徴量ごとに O(n log n) です。
func (b *treeBuilder) bestSplit(idx []int) (int, float64, bool) {
	n := len(idx)
	var total, totalSq float64
	for _, i := range idx {
		total += b.y[i]
		totalSq += b.y[i] * b.y[i]
	}
	parentSSE := totalSq - total*total/float64(n)
	if parentSSE <= 1e-12 {
		return 0, 0, false
	}

	bestFeature, bestThreshold := -1, 0.0
	bestSSE := parentSSE
	order := make([]int, n)
	for f := 0; f < len(b.x[idx[0]]); f++ {
		copy(order, idx)
		sort.SliceStable(order, func(a, c int) bool {
			return b.x[order[a]][f] < b.x[order[c]][f]
		})

		var leftSum, leftSq float64
		for k := 0; k < n-1; k++ {
			v := b.y[order[k]]
			leftSum += v
			leftSq += v * v
			cur, next := b.x[order[k]][f], b.x[order[k+1]][f]
			if cur == next {
				continue
			}
			nl, nr := float64(k+1), float64(n-k-1)
			rightSum, rightSq := total-leftSum, totalSq-leftSq
			sse := (leftSq - leftSum*leftSum/nl) + (rightSq - rightSum*rightSum/nr)
			if sse < bestSSE {
				bestSSE = sse
				bestFeature = f
				bestThreshold = cur + (next-cur)/2
				if bestThreshold >= next {
					bestThreshold = cur
				}
			}
		}
	}
	if bestFeature < 0 {
		return 0, 0, false
	}
	return bestFeature, bestThreshold, true
}
