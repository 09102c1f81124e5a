// ABOUTME: Random forest regressor: bagged CART trees with feature subsampling.
// ABOUTME: Trees are grown concurrently, each from its own seeded RNG.
package regress

import (
	"fmt"
	"math/rand"
	"sync"
)

// Forest averages the predictions of bootstrap-trained trees. Results are
// deterministic for a given Seed regardless of goroutine scheduling.
type Forest struct {
	Estimators     int
	MaxDepth       int
	MinSamplesLeaf int
	MaxFeatures    int // 0 means a third of the features, at least one
	Seed           int64

	trees       []*Tree
	p           int
	importances []float64
}

// ForestOption configures a Forest.
type ForestOption func(*Forest)

func WithEstimators(n int) ForestOption        { return func(f *Forest) { f.Estimators = n } }
func WithForestMaxDepth(d int) ForestOption    { return func(f *Forest) { f.MaxDepth = d } }
func WithForestMaxFeatures(k int) ForestOption { return func(f *Forest) { f.MaxFeatures = k } }
func WithForestSeed(seed int64) ForestOption   { return func(f *Forest) { f.Seed = seed } }

// NewForest returns a forest of 100 trees unless configured otherwise.
func NewForest(opts ...ForestOption) *Forest {
	f := &Forest{
		Estimators:     100,
		MinSamplesLeaf: 2,
	}
	for _, o := range opts {
		o(f)
	}
	if f.Estimators < 1 {
		f.Estimators = 100
	}
	return f
}

func (f *Forest) Name() string { return "forest" }

func (f *Forest) Fit(X [][]float64, y []float64) error {
	p, err := checkXY(X, y)
	if err != nil {
		return fmt.Errorf("forest: %w", err)
	}
	n := len(X)
	maxFeatures := f.MaxFeatures
	if maxFeatures <= 0 {
		maxFeatures = max(1, p/3)
	}

	trees := make([]*Tree, f.Estimators)
	var wg sync.WaitGroup
	for i := range trees {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			seed := f.Seed + int64(i)
			rng := rand.New(rand.NewSource(seed))
			sample := make([]int, n)
			for j := range sample {
				sample[j] = rng.Intn(n)
			}
			tree := NewTree(
				WithMaxDepth(f.MaxDepth),
				WithMinSamplesLeaf(f.MinSamplesLeaf),
				WithMaxFeatures(maxFeatures),
				WithSeed(seed),
			)
			tree.fitIndices(X, y, sample, p)
			trees[i] = tree
		}(i)
	}
	wg.Wait()

	sum := make([]float64, p)
	for _, t := range trees {
		for j, v := range t.importances {
			sum[j] += v
		}
	}
	f.trees = trees
	f.p = p
	f.importances = normalize(sum)
	return nil
}

func (f *Forest) Predict(X [][]float64) ([]float64, error) {
	if f.trees == nil {
		return nil, ErrNotFitted
	}
	if err := checkPredict(X, f.p); err != nil {
		return nil, fmt.Errorf("forest: %w", err)
	}
	out := make([]float64, len(X))
	for i, row := range X {
		var s float64
		for _, t := range f.trees {
			s += t.predictRow(row)
		}
		out[i] = s / float64(len(f.trees))
	}
	return out, nil
}

// Importances returns the mean impurity importance across trees.
func (f *Forest) Importances() []float64 {
	return append([]float64(nil), f.importances...)
}
