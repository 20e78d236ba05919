package analysis

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// PitchTrack holds the fundamental frequency contour of a clip. F0 is zero
// for unvoiced frames. Times, F0 and HNR have equal length.
type PitchTrack struct {
	Times []float64
	F0    []float64
	// HNR holds the per-frame harmonics-to-noise ratio in dB for voiced
	// frames, zero elsewhere.
	HNR []float64
}

// MeanF0 returns the mean fundamental frequency over voiced frames, or 0 if
// the track has no voiced frames.
func (t *PitchTrack) MeanF0() float64 {
	voiced := make([]float64, 0, len(t.F0))
	for _, f := range t.F0 {
		if f > 0 {
			voiced = append(voiced, f)
		}
	}
	if len(voiced) == 0 {
		return 0
	}
	return stat.Mean(voiced, nil)
}

// MeanHNR returns the mean harmonics-to-noise ratio over voiced frames in
// dB, or 0 if the track has no voiced frames.
func (t *PitchTrack) MeanHNR() float64 {
	vals := make([]float64, 0, len(t.HNR))
	for i, f := range t.F0 {
		if f > 0 {
			vals = append(vals, t.HNR[i])
		}
	}
	if len(vals) == 0 {
		return 0
	}
	return stat.Mean(vals, nil)
}

type pitchTracker struct {
	sampleRate int
	floorHz    float64
	ceilingHz  float64
	windowSize int
	hopSize    int

	// voicingThreshold is the minimum normalized autocorrelation peak for
	// a frame to count as voiced.
	voicingThreshold float64
	// silenceThreshold is the minimum frame RMS relative to the clip peak.
	silenceThreshold float64
}

func newPitchTracker(sampleRate int, floorHz, ceilingHz float64) *pitchTracker {
	return &pitchTracker{
		sampleRate:       sampleRate,
		floorHz:          floorHz,
		ceilingHz:        ceilingHz,
		windowSize:       defaultWindowSize,
		hopSize:          defaultHopSize,
		voicingThreshold: 0.45,
		silenceThreshold: 0.01,
	}
}

// track runs autocorrelation pitch detection over the clip.
func (p *pitchTracker) track(samples []float64) *PitchTrack {
	tr := &PitchTrack{}
	if len(samples) < p.windowSize {
		return tr
	}

	minLag := int(float64(p.sampleRate) / p.ceilingHz)
	maxLag := int(float64(p.sampleRate) / p.floorHz)
	if minLag < 2 {
		minLag = 2
	}
	if maxLag >= p.windowSize {
		maxLag = p.windowSize - 1
	}

	peak := 0.0
	for _, s := range samples {
		if a := math.Abs(s); a > peak {
			peak = a
		}
	}

	nFrames := 1 + (len(samples)-p.windowSize)/p.hopSize
	tr.Times = make([]float64, nFrames)
	tr.F0 = make([]float64, nFrames)
	tr.HNR = make([]float64, nFrames)

	frame := make([]float64, p.windowSize)
	for fi := 0; fi < nFrames; fi++ {
		start := fi * p.hopSize
		copy(frame, samples[start:start+p.windowSize])
		tr.Times[fi] = (float64(start) + float64(p.windowSize)/2) / float64(p.sampleRate)

		// remove DC before correlating
		mean := stat.Mean(frame, nil)
		var energy float64
		for i := range frame {
			frame[i] -= mean
			energy += frame[i] * frame[i]
		}
		rms := math.Sqrt(energy / float64(len(frame)))
		if peak == 0 || rms < p.silenceThreshold*peak {
			continue
		}

		lag, r := p.bestLag(frame, energy, minLag, maxLag)
		if lag <= 0 || r < p.voicingThreshold {
			continue
		}
		tr.F0[fi] = float64(p.sampleRate) / lag
		tr.HNR[fi] = harmonicity(r)
	}
	return tr
}

// bestLag finds the strongest local autocorrelation peak in [minLag, maxLag]
// and refines it by parabolic interpolation. Returns the fractional lag and
// the normalized correlation at the peak.
func (p *pitchTracker) bestLag(frame []float64, energy float64, minLag, maxLag int) (float64, float64) {
	if energy == 0 {
		return 0, 0
	}
	ac := autocorrelate(frame, maxLag)

	bestIdx := -1
	bestVal := 0.0
	for lag := minLag + 1; lag < maxLag; lag++ {
		if ac[lag] > ac[lag-1] && ac[lag] >= ac[lag+1] && ac[lag] > bestVal {
			bestIdx = lag
			bestVal = ac[lag]
		}
	}
	if bestIdx < 0 {
		return 0, 0
	}

	// parabolic interpolation around the integer peak
	y0, y1, y2 := ac[bestIdx-1], ac[bestIdx], ac[bestIdx+1]
	denom := y0 - 2*y1 + y2
	delta := 0.0
	if denom != 0 {
		delta = 0.5 * (y0 - y2) / denom
		if delta > 0.5 {
			delta = 0.5
		} else if delta < -0.5 {
			delta = -0.5
		}
	}
	refined := y1 - 0.25*(y0-y2)*delta

	// correct for the shrinking overlap at higher lags, otherwise a
	// perfectly periodic frame never reaches r = 1
	n := float64(len(frame))
	r := refined / ac[0] * n / (n - float64(bestIdx))
	if r > 1 {
		r = 1
	}
	return float64(bestIdx) + delta, r
}
