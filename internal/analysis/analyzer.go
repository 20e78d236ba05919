package analysis

import (
	"fmt"
	"math"

	"github.com/rs/zerolog/log"

	"github.com/vocalis-audio/vocalis/internal/audio"
	"github.com/vocalis-audio/vocalis/pkg/models"
)

const (
	defaultPitchFloorHz   = 75
	defaultPitchCeilingHz = 500

	// spectral balance cutoff between the low and high band
	lowHighCutoffHz = 1000
)

// Result bundles everything one analysis pass produces.
type Result struct {
	Metrics       models.AcousticMetrics
	Spectrogram   *models.Spectrogram
	FormantTracks *models.FormantTracks
}

// Analyzer computes acoustic metrics from a decoded clip. The zero value is
// not usable; construct with NewAnalyzer.
type Analyzer struct {
	pitchFloorHz   float64
	pitchCeilingHz float64
}

// Option adjusts analyzer behavior.
type Option func(*Analyzer)

// WithPitchRange overrides the default pitch search range, typically from a
// speaker profile. Non-positive or inverted bounds are ignored.
func WithPitchRange(floorHz, ceilingHz float64) Option {
	return func(a *Analyzer) {
		if floorHz > 0 && ceilingHz > floorHz {
			a.pitchFloorHz = floorHz
			a.pitchCeilingHz = ceilingHz
		}
	}
}

func NewAnalyzer(opts ...Option) *Analyzer {
	a := &Analyzer{
		pitchFloorHz:   defaultPitchFloorHz,
		pitchCeilingHz: defaultPitchCeilingHz,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze runs the full measurement pass over a clip: pitch, formants,
// perturbation, harmonicity and spectral balance, plus the spectrogram and
// formant trajectories for display.
func (a *Analyzer) Analyze(clip *audio.Clip) (*Result, error) {
	if clip == nil || len(clip.Samples) == 0 {
		return nil, fmt.Errorf("empty clip")
	}

	tracker := newPitchTracker(clip.SampleRate, a.pitchFloorHz, a.pitchCeilingHz)
	pitch := tracker.track(clip.Samples)

	formants := newFormantTracker(clip.SampleRate).track(clip.Samples, pitch)
	f1, f2, f3 := formants.Means()

	pulses := pointProcess(clip.Samples, clip.SampleRate, pitch, tracker.hopSize)
	jitter, shimmer, err := jitterShimmer(clip.Samples, clip.SampleRate, pulses)
	if err != nil {
		// perturbation is undefined for clips without enough stable
		// cycles; report zero rather than failing the whole analysis
		log.Debug().Err(err).Msg("Perturbation measurement unavailable")
		jitter, shimmer = 0, 0
	}

	spec := stft(clip.Samples, clip.SampleRate, defaultWindowSize, defaultHopSize)
	db, times := spec.decibels()
	nBins := defaultWindowSize/2 + 1
	freqs := make([]float64, nBins)
	for b := range freqs {
		freqs[b] = spec.binFreq(b)
	}

	metrics := models.AcousticMetrics{
		MeanPitchHz:  safeScalar(pitch.MeanF0()),
		F1Hz:         safeScalar(f1),
		F2Hz:         safeScalar(f2),
		F3Hz:         safeScalar(f3),
		Jitter:       safeScalar(jitter),
		Shimmer:      safeScalar(shimmer),
		HNRdB:        safeScalar(pitch.MeanHNR()),
		LowHighRatio: safeScalar(spec.energyRatio(lowHighCutoffHz)),
	}

	return &Result{
		Metrics: metrics,
		Spectrogram: &models.Spectrogram{
			Times:       times,
			Frequencies: freqs,
			MagnitudeDB: db,
		},
		FormantTracks: &models.FormantTracks{
			Times: formants.Times,
			F1:    formants.F1,
			F2:    formants.F2,
			F3:    formants.F3,
		},
	}, nil
}

// safeScalar maps NaN and infinities to zero so results always serialize to
// plain JSON numbers.
func safeScalar(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
