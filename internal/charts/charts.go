// ABOUTME: PNG charts for observations and analysis results using gonum/plot.
// ABOUTME: Timeline, feature-vs-next-day-focus scatter, and importance bars.
package charts

import (
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/harperreed/focus/internal/analysis"
	"github.com/harperreed/focus/internal/dataset"
	"github.com/harperreed/focus/internal/models"
	"github.com/harperreed/focus/internal/stats"
)

const (
	width  = 8 * vg.Inch
	height = 4 * vg.Inch
)

// TimelineFeatures are plotted by RenderAll when no features are given.
var TimelineFeatures = []models.Feature{
	models.FeatureFocusScore,
	models.FeatureSleepHours,
	models.FeatureStressLevel,
}

// Timeline plots one line per feature against the observation date.
func Timeline(ds *dataset.Dataset, features []models.Feature) (*plot.Plot, error) {
	if ds.Len() == 0 {
		return nil, fmt.Errorf("timeline: no observations")
	}
	p := plot.New()
	p.Title.Text = "Daily metrics"
	p.X.Label.Text = "date"
	p.X.Tick.Marker = plot.TimeTicks{Format: "Jan 2"}
	p.Add(plotter.NewGrid())
	p.Legend.Top = true

	obs := ds.Observations()
	for i, f := range features {
		pts := make(plotter.XYs, len(obs))
		for j, o := range obs {
			pts[j].X = float64(o.Date.Unix())
			pts[j].Y = o.Value(f)
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, fmt.Errorf("timeline %s: %w", f, err)
		}
		line.Color = plotutil.Color(i)
		line.Width = vg.Points(1.5)
		p.Add(line)
		p.Legend.Add(string(f), line)
	}
	return p, nil
}

// Scatter plots a feature against next-day focus with its least squares line.
func Scatter(ds *dataset.Dataset, f models.Feature) (*plot.Plot, error) {
	x, y := ds.NextDayColumn(f)
	if len(x) == 0 {
		return nil, fmt.Errorf("scatter %s: no next-day pairs", f)
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s vs next-day focus", f)
	p.X.Label.Text = string(f)
	if unit := models.FeatureUnits[f]; unit != "" {
		p.X.Label.Text = fmt.Sprintf("%s (%s)", f, unit)
	}
	p.Y.Label.Text = "next-day focus"
	p.Add(plotter.NewGrid())

	pts := make(plotter.XYs, len(x))
	for i := range x {
		pts[i].X, pts[i].Y = x[i], y[i]
	}
	s, err := plotter.NewScatter(pts)
	if err != nil {
		return nil, fmt.Errorf("scatter %s: %w", f, err)
	}
	s.Color = color.RGBA{R: 50, G: 50, B: 255, A: 255}
	s.Shape = draw.CircleGlyph{}
	s.Radius = vg.Points(2.5)
	p.Add(s)

	if fit, err := stats.SimpleRegression(x, y); err == nil {
		xmin, xmax, _, _ := plotter.XYRange(pts)
		line, err := plotter.NewLine(plotter.XYs{
			{X: xmin, Y: fit.At(xmin)},
			{X: xmax, Y: fit.At(xmax)},
		})
		if err != nil {
			return nil, fmt.Errorf("scatter %s: %w", f, err)
		}
		line.Color = color.RGBA{R: 255, A: 255}
		line.Width = vg.Points(2)
		p.Add(line)
		p.Legend.Add(fmt.Sprintf("fit R²=%.2f", fit.R2), line)
	}
	return p, nil
}

// Importance draws a horizontal bar chart with the strongest feature on top.
func Importance(imp analysis.ModelImportance) (*plot.Plot, error) {
	n := len(imp.Ranking)
	if n == 0 {
		return nil, fmt.Errorf("importance: empty ranking")
	}
	values := make(plotter.Values, n)
	names := make([]string, n)
	for i, it := range imp.Ranking {
		values[n-1-i] = it.Score
		names[n-1-i] = it.Feature
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Feature importance: %s (%s)", imp.Model, imp.Method)
	bars, err := plotter.NewBarChart(values, vg.Points(12))
	if err != nil {
		return nil, fmt.Errorf("importance: %w", err)
	}
	bars.Horizontal = true
	bars.Color = plotutil.Color(2)
	bars.LineStyle.Width = 0
	p.Add(bars)
	p.NominalY(names...)
	p.X.Label.Text = "score"
	return p, nil
}

// WritePNG renders p as a PNG.
func WritePNG(w io.Writer, p *plot.Plot) error {
	wt, err := p.WriterTo(width, height, "png")
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}

// Save writes p to path; the format follows the file extension.
func Save(p *plot.Plot, path string) error {
	return p.Save(width, height, path)
}

// RenderAll writes a timeline, a scatter for each of the three strongest
// next-day correlates, and one bar chart per importance ranking into dir.
// It returns the files written.
func RenderAll(dir string, ds *dataset.Dataset, r *analysis.Report) ([]string, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("create plot directory: %w", err)
	}

	var written []string
	save := func(p *plot.Plot, name string) error {
		path := filepath.Join(dir, name)
		if err := Save(p, path); err != nil {
			return fmt.Errorf("save %s: %w", name, err)
		}
		written = append(written, path)
		return nil
	}

	tl, err := Timeline(ds, TimelineFeatures)
	if err != nil {
		return written, err
	}
	if err := save(tl, "timeline.png"); err != nil {
		return written, err
	}

	if r == nil {
		return written, nil
	}

	count := 0
	for _, c := range r.NextDay {
		if c.Constant || count == 3 {
			continue
		}
		sc, err := Scatter(ds, models.Feature(c.Feature))
		if err != nil {
			return written, err
		}
		if err := save(sc, fmt.Sprintf("scatter_%s.png", c.Feature)); err != nil {
			return written, err
		}
		count++
	}

	for _, imp := range r.Importances {
		ip, err := Importance(imp)
		if err != nil {
			return written, err
		}
		if err := save(ip, fmt.Sprintf("importance_%s_%s.png", imp.Model, imp.Method)); err != nil {
			return written, err
		}
	}
	return written, nil
}
