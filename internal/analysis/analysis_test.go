// ABOUTME: Tests for the analysis pipeline on generated datasets.
// ABOUTME: Covers report shape, determinism, cancellation and degenerate data.
package analysis

import (
	"context"
	"errors"
	"io"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/focus/internal/dataset"
	"github.com/harperreed/focus/internal/models"
)

func testOptions() Options {
	o := DefaultOptions()
	o.Trees = 15
	o.PermutationRepeats = 3
	o.Logger = log.New(io.Discard)
	return o
}

func generated(t *testing.T, days int) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.Generate(dataset.GenerateOptions{
		Days:  days,
		Start: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Seed:  42,
	})
	require.NoError(t, err)
	return ds
}

func TestRunReportShape(t *testing.T) {
	r, err := Run(context.Background(), generated(t, 120), testOptions())
	require.NoError(t, err)

	assert.Equal(t, 120, r.Summary.Rows)
	assert.Equal(t, 119, r.Summary.Pairs)
	assert.Equal(t, 95, r.Summary.TrainPairs)
	assert.Equal(t, 24, r.Summary.TestPairs)
	assert.True(t, r.Summary.TestFrom.After(r.Summary.Start))

	assert.Len(t, r.Descriptives, len(models.AllFeatures))
	require.NotNil(t, r.Correlations)
	assert.Equal(t, 1.0, r.Correlations.At("focus_score", "focus_score"))
	assert.Len(t, r.SameDay, len(models.AllFeatures)-1)
	assert.Len(t, r.NextDay, len(models.PredictorFeatures))
	assert.Len(t, r.Tests, 3)

	assert.Len(t, r.Holdout, 6)
	assert.Len(t, r.CrossValidation, 6)
	for _, s := range r.Holdout {
		assert.True(t, s.OK(), s.Model)
		assert.False(t, math.IsNaN(s.R2), s.Model)
	}
	assert.NotEmpty(t, r.BestModel)

	require.NotEmpty(t, r.Importances)
	assert.Equal(t, MethodPermutation, r.Importances[0].Method)
	assert.Equal(t, r.BestModel, r.Importances[0].Model)

	require.NotEmpty(t, r.Findings)
	assert.True(t, strings.HasPrefix(r.Findings[0], "120 days from 2024-01-01"))
}

func TestRunIsDeterministic(t *testing.T) {
	ds := generated(t, 90)
	a, err := Run(context.Background(), ds, testOptions())
	require.NoError(t, err)
	b, err := Run(context.Background(), ds, testOptions())
	require.NoError(t, err)

	assert.Equal(t, a.Holdout, b.Holdout)
	assert.Equal(t, a.CrossValidation, b.CrossValidation)
	assert.Equal(t, a.Importances, b.Importances)
	assert.Equal(t, a.Findings, b.Findings)
}

func TestRunNotEnoughRows(t *testing.T) {
	_, err := Run(context.Background(), generated(t, 8), testOptions())
	assert.True(t, errors.Is(err, dataset.ErrNotEnoughRows))
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Run(ctx, generated(t, 40), testOptions())
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestRunConstantColumn(t *testing.T) {
	obs := generated(t, 60).Observations()
	for _, o := range obs {
		o.Cycle = 0
	}
	ds, err := dataset.New(obs)
	require.NoError(t, err)

	r, err := Run(context.Background(), ds, testOptions())
	require.NoError(t, err)

	joined := strings.Join(r.Warnings, "\n")
	assert.Contains(t, joined, "cycle is constant")
	assert.Contains(t, joined, "skipped focus by cycle")
	assert.Len(t, r.Tests, 2)

	for _, c := range r.NextDay {
		if c.Feature == "cycle" {
			assert.True(t, c.Constant)
			assert.Equal(t, 0.0, c.R)
		}
	}
}

func TestOptionsDefaults(t *testing.T) {
	o := Options{}.withDefaults()
	d := DefaultOptions()
	assert.Equal(t, d.TestFraction, o.TestFraction)
	assert.Equal(t, d.Folds, o.Folds)
	assert.Equal(t, d.Alpha, o.Alpha)
	assert.NotNil(t, o.Logger)

	custom := Options{TestFraction: 0.3, Folds: 3}.withDefaults()
	assert.Equal(t, 0.3, custom.TestFraction)
	assert.Equal(t, 3, custom.Folds)
}

func TestOptionsExplicitValuesAreKept(t *testing.T) {
	o := Options{TestFraction: 1, Folds: 1}.withDefaults()
	assert.Equal(t, 1.0, o.TestFraction)
	assert.Equal(t, 1, o.Folds)
}

func TestRunRejectsInvalidOptions(t *testing.T) {
	ds := generated(t, 60)

	tests := []struct {
		name   string
		modify func(*Options)
		want   string
	}{
		{"test fraction of one", func(o *Options) { o.TestFraction = 1 }, "test fraction must be in (0, 1), got 1"},
		{"negative test fraction", func(o *Options) { o.TestFraction = -0.2 }, "test fraction"},
		{"single fold", func(o *Options) { o.Folds = 1 }, "folds must be at least 2, got 1"},
		{"negative trees", func(o *Options) { o.Trees = -3 }, "trees"},
		{"negative depth", func(o *Options) { o.MaxDepth = -1 }, "max depth"},
		{"alpha of one", func(o *Options) { o.Alpha = 1 }, "significance level"},
		{"negative ridge", func(o *Options) { o.RidgeAlpha = -1 }, "ridge alpha"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := testOptions()
			tt.modify(&o)
			_, err := Run(context.Background(), ds, o)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidOptions), "got %v", err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestFormatP(t *testing.T) {
	tests := []struct {
		p    float64
		want string
	}{
		{0.0001, "p<0.001"},
		{0.0123, "p=0.012"},
		{0.5, "p=0.500"},
		{math.NaN(), "p=n/a"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatP(tt.p))
	}
}
