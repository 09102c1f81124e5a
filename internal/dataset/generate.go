// ABOUTME: Deterministic synthetic dataset generator.
// ABOUTME: Weekday and cycle effects, 1/f stress noise, next-day carry-over.
package dataset

import (
	"fmt"
	"math"
	"math/cmplx"
	"math/rand"
	"time"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/stat"

	"github.com/harperreed/focus/internal/models"
)

// GenerateOptions controls the synthetic dataset.
type GenerateOptions struct {
	Days  int
	Start time.Time
	Seed  int64
}

const cycleLength = 28

// Generate builds a reproducible dataset with realistic structure:
// weekends shift sleep, exercise and study; a 28-day cycle raises stress
// for a few days; stress drifts with pink noise; and the previous night's
// sleep and stress carry into the next day's focus.
func Generate(opts GenerateOptions) (*Dataset, error) {
	if opts.Days < 2 {
		return nil, fmt.Errorf("generate %d days: %w", opts.Days, ErrNotEnoughRows)
	}
	start := opts.Start
	if start.IsZero() {
		start = models.TruncateDay(time.Now()).AddDate(0, 0, -opts.Days)
	}

	rng := rand.New(rand.NewSource(opts.Seed))
	drift := PinkNoise(rng, opts.Days)
	cycleOffset := rng.Intn(cycleLength)

	obs := make([]*models.Observation, 0, opts.Days)
	var prev *models.Observation
	for i := 0; i < opts.Days; i++ {
		o := models.NewObservation(start.AddDate(0, 0, i))
		weekend := 0.0
		if o.DayOfWeek >= 5 {
			weekend = 1
		}
		if (i+cycleOffset)%cycleLength < 5 {
			o.Cycle = 1
		}

		prevStress := 5.0
		if prev != nil {
			prevStress = prev.StressLevel
		}

		o.SleepHours = round1(clamp(7+0.8*weekend-0.15*(prevStress-5)+rng.NormFloat64()*0.9, 3, 11))
		o.ExerciseMinutes = math.Round(clamp(30+15*weekend+rng.NormFloat64()*18, 0, 150))
		o.ScreenTimeHours = round1(clamp(5+1.5*weekend+rng.NormFloat64()*1.5, 0.5, 14))
		o.StudyHours = round1(clamp(4-2.5*weekend+rng.NormFloat64()*1.2, 0, 10))
		o.SocialHours = round1(clamp(1.5+1.5*weekend+rng.NormFloat64()*0.8, 0, 8))
		o.NutritionScore = round1(clamp(6.5+rng.NormFloat64()*1.3, 1, 10))
		o.CaffeineMg = math.Round(clamp(150+30*(7-o.SleepHours)+rng.NormFloat64()*50, 0, 500))
		o.StressLevel = round1(clamp(5+0.35*(o.StudyHours-3)-0.02*(o.ExerciseMinutes-30)+
			0.8*float64(o.Cycle)+1.2*drift[i]+rng.NormFloat64()*0.5, 1, 10))

		focus := 5 +
			0.35*(o.SleepHours-7) +
			0.01*(o.ExerciseMinutes-30) -
			0.2*(o.ScreenTimeHours-5) -
			0.3*(o.StressLevel-5) +
			0.15*(o.NutritionScore-6.5) -
			0.4*float64(o.Cycle)
		if prev != nil {
			focus += 0.45*(prev.SleepHours-7) -
				0.2*(prev.StressLevel-5) -
				0.002*(prev.CaffeineMg-150) +
				0.25*(prev.FocusScore-5)
		}
		o.FocusScore = round1(clamp(focus+rng.NormFloat64()*0.6, 0, 10))

		obs = append(obs, o)
		prev = o
	}

	return New(obs)
}

// PinkNoise returns n samples of 1/f noise with zero mean and unit variance,
// shaped in the frequency domain from white noise.
func PinkNoise(rng *rand.Rand, n int) []float64 {
	if n < 2 {
		return make([]float64, n)
	}
	white := make([]float64, n)
	for i := range white {
		white[i] = rng.NormFloat64()
	}

	fft := fourier.NewFFT(n)
	coeff := fft.Coefficients(nil, white)
	for k := range coeff {
		f := fft.Freq(k)
		if f == 0 {
			f = 1
		}
		coeff[k] = coeff[k] / cmplx.Sqrt(complex(f, 0))
	}
	seq := fft.Sequence(nil, coeff)

	mean, std := stat.MeanStdDev(seq, nil)
	if std == 0 {
		return make([]float64, n)
	}
	for i := range seq {
		seq[i] = (seq[i] - mean) / std
	}
	return seq
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
