// ABOUTME: Tests for chart construction and PNG output.
// ABOUTME: Checks PNG signatures and the files RenderAll writes.
package charts

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/focus/internal/analysis"
	"github.com/harperreed/focus/internal/dataset"
	"github.com/harperreed/focus/internal/models"
	"github.com/harperreed/focus/internal/regress"
	"github.com/harperreed/focus/internal/stats"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func testData(t *testing.T) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.Generate(dataset.GenerateOptions{
		Days:  30,
		Start: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Seed:  3,
	})
	require.NoError(t, err)
	return ds
}

func TestTimelinePNG(t *testing.T) {
	p, err := Timeline(testData(t), TimelineFeatures)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WritePNG(&buf, p))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic))
}

func TestScatterHasTitle(t *testing.T) {
	p, err := Scatter(testData(t), models.FeatureSleepHours)
	require.NoError(t, err)
	assert.Equal(t, "sleep_hours vs next-day focus", p.Title.Text)
	assert.Equal(t, "sleep_hours (hours)", p.X.Label.Text)
}

func TestImportanceRejectsEmpty(t *testing.T) {
	_, err := Importance(analysis.ModelImportance{Model: "forest"})
	assert.Error(t, err)
}

func TestRenderAll(t *testing.T) {
	ds := testData(t)
	r := &analysis.Report{
		NextDay: []stats.Correlation{
			{Feature: "cycle", Constant: true},
			{Feature: "sleep_hours", R: 0.4},
			{Feature: "stress_level", R: -0.3},
		},
		Importances: []analysis.ModelImportance{{
			Model:  "forest",
			Method: analysis.MethodNative,
			Ranking: []regress.Importance{
				{Feature: "sleep_hours", Score: 0.6},
				{Feature: "stress_level", Score: 0.4},
			},
		}},
	}

	dir := filepath.Join(t.TempDir(), "plots")
	files, err := RenderAll(dir, ds, r)
	require.NoError(t, err)

	want := []string{
		"timeline.png",
		"scatter_sleep_hours.png",
		"scatter_stress_level.png",
		"importance_forest_native.png",
	}
	require.Len(t, files, len(want))
	for i, name := range want {
		assert.Equal(t, filepath.Join(dir, name), files[i])
		data, err := os.ReadFile(files[i])
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(data, pngMagic), name)
	}
}
