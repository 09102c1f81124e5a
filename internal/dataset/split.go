// ABOUTME: Time-ordered train/test splitting.
// ABOUTME: Holdout and walk-forward folds never place test rows before train rows.
package dataset

import (
	"fmt"
	"math"
)

// Split is a pair of index sets into a chronologically ordered table.
type Split struct {
	Train []int
	Test  []int
}

// TimeSplit holds out the final testFraction of n rows as the test set.
func TimeSplit(n int, testFraction float64) (Split, error) {
	if testFraction <= 0 || testFraction >= 1 {
		return Split{}, fmt.Errorf("test fraction must be in (0, 1), got %g", testFraction)
	}
	nTest := int(math.Round(float64(n) * testFraction))
	if nTest < 1 {
		nTest = 1
	}
	nTrain := n - nTest
	if nTrain < 2 {
		return Split{}, fmt.Errorf("time split of %d rows: %w", n, ErrNotEnoughRows)
	}
	return Split{Train: indexRange(0, nTrain), Test: indexRange(nTrain, n)}, nil
}

// WalkForward produces expanding-window folds. Each fold tests on the next
// block of n/(folds+1) rows and trains on everything before it.
func WalkForward(n, folds int) ([]Split, error) {
	if folds < 2 {
		return nil, fmt.Errorf("walk-forward needs at least 2 folds, got %d", folds)
	}
	testSize := n / (folds + 1)
	if testSize < 1 {
		return nil, fmt.Errorf("walk-forward of %d rows into %d folds: %w", n, folds, ErrNotEnoughRows)
	}

	splits := make([]Split, 0, folds)
	for k := 0; k < folds; k++ {
		testStart := n - (folds-k)*testSize
		splits = append(splits, Split{
			Train: indexRange(0, testStart),
			Test:  indexRange(testStart, testStart+testSize),
		})
	}
	return splits, nil
}

func indexRange(start, end int) []int {
	idx := make([]int, 0, end-start)
	for i := start; i < end; i++ {
		idx = append(idx, i)
	}
	return idx
}
