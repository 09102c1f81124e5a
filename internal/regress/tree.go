// ABOUTME: CART regression tree grown by greedy variance reduction.
// ABOUTME: Tracks impurity decrease per feature for importance rankings.
package regress

import (
	"fmt"
	"math/rand"
	"sort"
)

// Tree is a CART regression tree. Leaves predict the mean target of their
// training rows.
type Tree struct {
	MaxDepth        int   // 0 means unlimited
	MinSamplesSplit int   // minimum rows to attempt a split
	MinSamplesLeaf  int   // minimum rows on each side of a split
	MaxFeatures     int   // features tried per split, 0 means all
	Seed            int64 // drives feature subsampling

	root        *treeNode
	p           int
	importances []float64
}

type treeNode struct {
	leaf      bool
	value     float64
	feature   int
	threshold float64 // x <= threshold goes left
	left      *treeNode
	right     *treeNode
	n         int
}

type treeSplit struct {
	feature   int
	threshold float64
	gain      float64
}

// TreeOption configures a Tree.
type TreeOption func(*Tree)

func WithMaxDepth(d int) TreeOption       { return func(t *Tree) { t.MaxDepth = d } }
func WithMinSamplesLeaf(n int) TreeOption { return func(t *Tree) { t.MinSamplesLeaf = n } }
func WithMaxFeatures(k int) TreeOption    { return func(t *Tree) { t.MaxFeatures = k } }
func WithSeed(seed int64) TreeOption      { return func(t *Tree) { t.Seed = seed } }

// NewTree returns a tree with sklearn-like defaults.
func NewTree(opts ...TreeOption) *Tree {
	t := &Tree{
		MinSamplesSplit: 2,
		MinSamplesLeaf:  1,
	}
	for _, o := range opts {
		o(t)
	}
	if t.MinSamplesLeaf < 1 {
		t.MinSamplesLeaf = 1
	}
	if t.MinSamplesSplit < 2*t.MinSamplesLeaf {
		t.MinSamplesSplit = 2 * t.MinSamplesLeaf
	}
	return t
}

func (t *Tree) Name() string { return "tree" }

func (t *Tree) Fit(X [][]float64, y []float64) error {
	p, err := checkXY(X, y)
	if err != nil {
		return fmt.Errorf("tree: %w", err)
	}
	idx := make([]int, len(X))
	for i := range idx {
		idx[i] = i
	}
	t.fitIndices(X, y, idx, p)
	return nil
}

// fitIndices grows the tree on the given rows. Rows may repeat, which is
// how the forest passes bootstrap samples without copying X.
func (t *Tree) fitIndices(X [][]float64, y []float64, idx []int, p int) {
	t.p = p
	gain := make([]float64, p)
	rng := rand.New(rand.NewSource(t.Seed))
	t.root = t.build(X, y, idx, 0, gain, rng)
	t.importances = normalize(gain)
}

func (t *Tree) build(X [][]float64, y []float64, idx []int, depth int, gain []float64, rng *rand.Rand) *treeNode {
	mean, sse := meanSSE(y, idx)
	node := &treeNode{leaf: true, value: mean, n: len(idx)}

	if len(idx) < t.MinSamplesSplit || sse <= 1e-12 {
		return node
	}
	if t.MaxDepth > 0 && depth >= t.MaxDepth {
		return node
	}

	best := t.bestSplit(X, y, idx, sse, rng)
	if best.feature < 0 {
		return node
	}
	gain[best.feature] += best.gain

	var left, right []int
	for _, i := range idx {
		if X[i][best.feature] <= best.threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	node.leaf = false
	node.feature = best.feature
	node.threshold = best.threshold
	node.left = t.build(X, y, left, depth+1, gain, rng)
	node.right = t.build(X, y, right, depth+1, gain, rng)
	return node
}

// bestSplit scans every candidate threshold using running sums so each
// feature costs one sort.
func (t *Tree) bestSplit(X [][]float64, y []float64, idx []int, parentSSE float64, rng *rand.Rand) treeSplit {
	best := treeSplit{feature: -1}
	n := len(idx)
	order := make([]int, n)

	var total, totalSq float64
	for _, i := range idx {
		total += y[i]
		totalSq += y[i] * y[i]
	}

	for _, f := range t.candidateFeatures(rng) {
		copy(order, idx)
		sort.SliceStable(order, func(a, b int) bool { return X[order[a]][f] < X[order[b]][f] })

		var ls, lsq float64
		for s := 1; s < n; s++ {
			v := y[order[s-1]]
			ls += v
			lsq += v * v
			lo, hi := X[order[s-1]][f], X[order[s]][f]
			if lo == hi || s < t.MinSamplesLeaf || n-s < t.MinSamplesLeaf {
				continue
			}
			rs, rsq := total-ls, totalSq-lsq
			sse := (lsq - ls*ls/float64(s)) + (rsq - rs*rs/float64(n-s))
			if g := parentSSE - sse; g > best.gain+1e-12 {
				best = treeSplit{feature: f, threshold: (lo + hi) / 2, gain: g}
			}
		}
	}
	return best
}

func (t *Tree) candidateFeatures(rng *rand.Rand) []int {
	if t.MaxFeatures <= 0 || t.MaxFeatures >= t.p {
		all := make([]int, t.p)
		for j := range all {
			all[j] = j
		}
		return all
	}
	picked := rng.Perm(t.p)[:t.MaxFeatures]
	sort.Ints(picked)
	return picked
}

func (t *Tree) Predict(X [][]float64) ([]float64, error) {
	if t.root == nil {
		return nil, ErrNotFitted
	}
	if err := checkPredict(X, t.p); err != nil {
		return nil, fmt.Errorf("tree: %w", err)
	}
	out := make([]float64, len(X))
	for i, row := range X {
		out[i] = t.predictRow(row)
	}
	return out, nil
}

func (t *Tree) predictRow(x []float64) float64 {
	node := t.root
	for !node.leaf {
		if x[node.feature] <= node.threshold {
			node = node.left
		} else {
			node = node.right
		}
	}
	return node.value
}

// Importances returns the normalised total variance reduction per feature.
func (t *Tree) Importances() []float64 {
	return append([]float64(nil), t.importances...)
}

// Depth returns the depth of the fitted tree (a single leaf is depth 0).
func (t *Tree) Depth() int {
	return nodeDepth(t.root)
}

func nodeDepth(n *treeNode) int {
	if n == nil || n.leaf {
		return 0
	}
	return 1 + max(nodeDepth(n.left), nodeDepth(n.right))
}

func meanSSE(y []float64, idx []int) (mean, sse float64) {
	if len(idx) == 0 {
		return 0, 0
	}
	for _, i := range idx {
		mean += y[i]
	}
	mean /= float64(len(idx))
	for _, i := range idx {
		d := y[i] - mean
		sse += d * d
	}
	return mean, sse
}
