// ABOUTME: Tunables for an analysis run with their defaults.
// ABOUTME: Values normally come from config and command-line flags.
package analysis

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/harperreed/focus/internal/regress"
)

// Options controls splitting, model hyperparameters and significance.
type Options struct {
	TestFraction       float64
	Folds              int
	Seed               int64
	Trees              int
	MaxDepth           int
	Neighbors          int
	RidgeAlpha         float64
	Alpha              float64 // significance level
	PermutationRepeats int
	StrongPair         float64 // |r| above which two features are flagged as collinear

	Logger *log.Logger
}

// DefaultOptions returns the settings used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		TestFraction:       0.2,
		Folds:              5,
		Seed:               42,
		Trees:              100,
		MaxDepth:           6,
		Neighbors:          5,
		RidgeAlpha:         1.0,
		Alpha:              0.05,
		PermutationRepeats: 10,
		StrongPair:         0.7,
	}
}

// ErrInvalidOptions is wrapped by Validate for out-of-range settings.
var ErrInvalidOptions = errors.New("invalid analysis options")

// withDefaults fills zero values from DefaultOptions. Anything set
// explicitly is left alone for Validate to judge.
func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.TestFraction == 0 {
		o.TestFraction = d.TestFraction
	}
	if o.Folds == 0 {
		o.Folds = d.Folds
	}
	if o.Trees == 0 {
		o.Trees = d.Trees
	}
	if o.Neighbors == 0 {
		o.Neighbors = d.Neighbors
	}
	if o.RidgeAlpha == 0 {
		o.RidgeAlpha = d.RidgeAlpha
	}
	if o.Alpha == 0 {
		o.Alpha = d.Alpha
	}
	if o.PermutationRepeats == 0 {
		o.PermutationRepeats = d.PermutationRepeats
	}
	if o.StrongPair == 0 {
		o.StrongPair = d.StrongPair
	}
	if o.Logger == nil {
		o.Logger = log.Default()
	}
	return o
}

// Validate reports the first setting the pipeline cannot run with.
func (o Options) Validate() error {
	switch {
	case !(o.TestFraction > 0 && o.TestFraction < 1):
		return fmt.Errorf("%w: test fraction must be in (0, 1), got %g", ErrInvalidOptions, o.TestFraction)
	case o.Folds < 2:
		return fmt.Errorf("%w: folds must be at least 2, got %d", ErrInvalidOptions, o.Folds)
	case o.Trees < 1:
		return fmt.Errorf("%w: trees must be at least 1, got %d", ErrInvalidOptions, o.Trees)
	case o.MaxDepth < 0:
		return fmt.Errorf("%w: max depth must not be negative, got %d", ErrInvalidOptions, o.MaxDepth)
	case o.Neighbors < 1:
		return fmt.Errorf("%w: neighbors must be at least 1, got %d", ErrInvalidOptions, o.Neighbors)
	case !(o.RidgeAlpha > 0):
		return fmt.Errorf("%w: ridge alpha must be positive, got %g", ErrInvalidOptions, o.RidgeAlpha)
	case !(o.Alpha > 0 && o.Alpha < 1):
		return fmt.Errorf("%w: significance level must be in (0, 1), got %g", ErrInvalidOptions, o.Alpha)
	case o.PermutationRepeats < 1:
		return fmt.Errorf("%w: permutation repeats must be at least 1, got %d", ErrInvalidOptions, o.PermutationRepeats)
	case !(o.StrongPair > 0 && o.StrongPair <= 1):
		return fmt.Errorf("%w: collinearity threshold must be in (0, 1], got %g", ErrInvalidOptions, o.StrongPair)
	}
	return nil
}

func (o Options) suite() []regress.Regressor {
	return regress.NewSuite(regress.SuiteOptions{
		Seed:       o.Seed,
		Trees:      o.Trees,
		MaxDepth:   o.MaxDepth,
		Neighbors:  o.Neighbors,
		RidgeAlpha: o.RidgeAlpha,
	})
}
