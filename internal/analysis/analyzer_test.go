package analysis

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vocalis-audio/vocalis/internal/audio"
)

func TestAnalyzePureTone(t *testing.T) {
	clip := audio.Sine(150, 22050, 1.0, 0.5)

	result, err := NewAnalyzer().Analyze(clip)
	require.NoError(t, err)

	// a steady 150 Hz tone should track within a few Hz
	assert.InDelta(t, 150.0, result.Metrics.MeanPitchHz, 5.0)

	// perfectly periodic signal: negligible perturbation, high harmonicity
	assert.Less(t, result.Metrics.Jitter, 0.02)
	assert.Less(t, result.Metrics.Shimmer, 0.05)
	assert.Greater(t, result.Metrics.HNRdB, 20.0)

	// all energy sits below 1000 Hz
	assert.Greater(t, result.Metrics.LowHighRatio, 5.0)
}

func TestAnalyzeHighTone(t *testing.T) {
	clip := audio.Sine(3000, 22050, 0.5, 0.5)

	result, err := NewAnalyzer().Analyze(clip)
	require.NoError(t, err)

	// energy concentrated above the cutoff pushes the ratio toward zero
	assert.Less(t, result.Metrics.LowHighRatio, 1.0)
}

func TestAnalyzeSilence(t *testing.T) {
	clip := &audio.Clip{Samples: make([]float64, 22050), SampleRate: 22050}

	result, err := NewAnalyzer().Analyze(clip)
	require.NoError(t, err)

	assert.Zero(t, result.Metrics.MeanPitchHz)
	assert.Zero(t, result.Metrics.Jitter)
	assert.Zero(t, result.Metrics.Shimmer)
	assert.Zero(t, result.Metrics.HNRdB)
	assert.Zero(t, result.Metrics.LowHighRatio)
}

func TestAnalyzeEmptyClip(t *testing.T) {
	_, err := NewAnalyzer().Analyze(&audio.Clip{SampleRate: 22050})
	assert.Error(t, err)
}

func TestAnalyzeShortClip(t *testing.T) {
	// shorter than one analysis window: no frames, everything zero
	clip := audio.Sine(150, 22050, 0.01, 0.5)

	result, err := NewAnalyzer().Analyze(clip)
	require.NoError(t, err)

	assert.Zero(t, result.Metrics.MeanPitchHz)
	assert.Zero(t, result.Metrics.Jitter)
	assert.Zero(t, result.Metrics.Shimmer)
}

func TestAnalyzeTrackShapes(t *testing.T) {
	clip := audio.Sine(200, 22050, 2.0, 0.5)

	result, err := NewAnalyzer().Analyze(clip)
	require.NoError(t, err)

	tracks := result.FormantTracks
	require.NotNil(t, tracks)
	assert.Equal(t, len(tracks.Times), len(tracks.F1))
	assert.Equal(t, len(tracks.Times), len(tracks.F2))
	assert.Equal(t, len(tracks.Times), len(tracks.F3))

	spec := result.Spectrogram
	require.NotNil(t, spec)
	assert.LessOrEqual(t, len(spec.Times), maxSpectrogramFrames)
	assert.Equal(t, len(spec.Times), len(spec.MagnitudeDB))
	for _, row := range spec.MagnitudeDB {
		assert.Equal(t, len(spec.Frequencies), len(row))
	}
}

func TestWithPitchRange(t *testing.T) {
	// a profile range that excludes the tone leaves it unvoiced
	clip := audio.Sine(150, 22050, 0.5, 0.5)

	result, err := NewAnalyzer(WithPitchRange(300, 600)).Analyze(clip)
	require.NoError(t, err)
	assert.Zero(t, result.Metrics.MeanPitchHz)

	// invalid bounds fall back to the defaults
	result, err = NewAnalyzer(WithPitchRange(500, 100)).Analyze(clip)
	require.NoError(t, err)
	assert.InDelta(t, 150.0, result.Metrics.MeanPitchHz, 5.0)
}

func TestSafeScalar(t *testing.T) {
	assert.Zero(t, safeScalar(math.NaN()))
	assert.Zero(t, safeScalar(math.Inf(1)))
	assert.Zero(t, safeScalar(math.Inf(-1)))
	assert.Equal(t, 42.5, safeScalar(42.5))
}

func TestRelativePerturbation(t *testing.T) {
	// identical values: zero perturbation
	v, err := relativePerturbation([]float64{0.01, 0.01, 0.01}, maxPeriodFactor)
	require.NoError(t, err)
	assert.Zero(t, v)

	// alternating values within the ratio bound
	v, err = relativePerturbation([]float64{0.010, 0.011, 0.010}, maxPeriodFactor)
	require.NoError(t, err)
	assert.InDelta(t, 0.001/0.0105, v, 1e-9)

	// pairs beyond the ratio bound are all rejected
	_, err = relativePerturbation([]float64{0.001, 0.019, 0.001}, maxPeriodFactor)
	assert.Error(t, err)
}

func TestJitterShimmerTooFewPulses(t *testing.T) {
	samples := make([]float64, 1000)
	_, _, err := jitterShimmer(samples, 22050, []int{10, 20})
	assert.Error(t, err)
}

func TestHarmonicity(t *testing.T) {
	assert.Zero(t, harmonicity(0))
	assert.Zero(t, harmonicity(-0.5))
	// r = 0.5 splits energy evenly: 0 dB
	assert.InDelta(t, 0.0, harmonicity(0.5), 1e-9)
	assert.Greater(t, harmonicity(0.9), harmonicity(0.6))
	// clamped near r = 1 instead of +Inf
	assert.False(t, math.IsInf(harmonicity(1.0), 1))
}

func TestEnergyRatioNoHighEnergy(t *testing.T) {
	s := &stftResult{
		sampleRate: 22050,
		windowSize: 1024,
		Magnitude:  [][]float64{make([]float64, 513)},
	}
	s.Magnitude[0][2] = 1.0 // ~43 Hz bin only
	// zero out the high band entirely
	assert.Equal(t, 0.0, s.energyRatio(22050))
}

func TestLevinsonDurbin(t *testing.T) {
	// AR(1) process x[n] = 0.9*x[n-1] + e[n] has r[k] proportional to 0.9^k
	r := []float64{1.0, 0.9, 0.81, 0.729}
	a, err := levinsonDurbin(r, 2)
	require.NoError(t, err)
	require.Len(t, a, 3)
	assert.InDelta(t, 1.0, a[0], 1e-9)
	assert.InDelta(t, -0.9, a[1], 1e-6)
	assert.InDelta(t, 0.0, a[2], 1e-6)

	_, err = levinsonDurbin([]float64{0, 0, 0}, 2)
	assert.Error(t, err)
}
