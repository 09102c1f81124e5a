// ABOUTME: Ordered in-memory dataset of daily observations.
// ABOUTME: Builds feature columns and next-day focus modelling pairs.
package dataset

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/harperreed/focus/internal/models"
)

// ErrNotEnoughRows is returned when a dataset is too small for an operation.
var ErrNotEnoughRows = errors.New("not enough rows")

// Dataset holds observations sorted by date, one per day.
type Dataset struct {
	obs []*models.Observation
}

// New builds a Dataset, sorting by date and rejecting duplicate days.
func New(obs []*models.Observation) (*Dataset, error) {
	sorted := make([]*models.Observation, len(obs))
	copy(sorted, obs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	for i := 1; i < len(sorted); i++ {
		if sorted[i].Date.Equal(sorted[i-1].Date) {
			return nil, fmt.Errorf("duplicate observation for %s", sorted[i].DateString())
		}
	}

	return &Dataset{obs: sorted}, nil
}

// Len returns the number of observations.
func (d *Dataset) Len() int {
	return len(d.obs)
}

// Observations returns the observations in chronological order.
func (d *Dataset) Observations() []*models.Observation {
	return d.obs
}

// Span returns the first and last observed dates.
func (d *Dataset) Span() (time.Time, time.Time) {
	if len(d.obs) == 0 {
		return time.Time{}, time.Time{}
	}
	return d.obs[0].Date, d.obs[len(d.obs)-1].Date
}

// Column returns the values of one feature in chronological order.
func (d *Dataset) Column(f models.Feature) []float64 {
	col := make([]float64, len(d.obs))
	for i, o := range d.obs {
		col[i] = o.Value(f)
	}
	return col
}

// Columns returns one slice per feature.
func (d *Dataset) Columns(features []models.Feature) [][]float64 {
	cols := make([][]float64, len(features))
	for i, f := range features {
		cols[i] = d.Column(f)
	}
	return cols
}

// Pairs holds model inputs for day t and the focus score of day t+1.
type Pairs struct {
	Features []models.Feature
	X        [][]float64
	Y        []float64
	Dates    []time.Time
}

// Len returns the number of modelling pairs.
func (p *Pairs) Len() int {
	return len(p.Y)
}

// NextDayPairs pairs each day's features with the focus score of the
// following calendar day. Days whose successor is missing are dropped.
func (d *Dataset) NextDayPairs(features []models.Feature) *Pairs {
	p := &Pairs{Features: features}
	for i := 0; i+1 < len(d.obs); i++ {
		today, tomorrow := d.obs[i], d.obs[i+1]
		if !tomorrow.Date.Equal(today.Date.AddDate(0, 0, 1)) {
			continue
		}
		row := make([]float64, len(features))
		for j, f := range features {
			row[j] = today.Value(f)
		}
		p.X = append(p.X, row)
		p.Y = append(p.Y, tomorrow.FocusScore)
		p.Dates = append(p.Dates, today.Date)
	}
	return p
}

// NextDayColumn returns, for every observation that has a next-day row,
// the pair (today's feature value, tomorrow's focus).
func (d *Dataset) NextDayColumn(f models.Feature) ([]float64, []float64) {
	p := d.NextDayPairs([]models.Feature{f})
	x := make([]float64, p.Len())
	for i, row := range p.X {
		x[i] = row[0]
	}
	return x, p.Y
}

// Subset returns the rows of p at the given indices.
func (p *Pairs) Subset(idx []int) ([][]float64, []float64) {
	X := make([][]float64, len(idx))
	y := make([]float64, len(idx))
	for i, j := range idx {
		X[i] = p.X[j]
		y[i] = p.Y[j]
	}
	return X, y
}
