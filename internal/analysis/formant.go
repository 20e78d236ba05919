package analysis

import (
	"gonum.org/v1/gonum/stat"
)

// FormantTrack holds the first three formant contours sampled at the pitch
// frame times. A zero entry marks a frame where the formant could not be
// measured. All slices have equal length.
type FormantTrack struct {
	Times []float64
	F1    []float64
	F2    []float64
	F3    []float64
}

// Means returns the average of each formant over frames where it was
// measured. An unmeasured formant yields 0.
func (t *FormantTrack) Means() (f1, f2, f3 float64) {
	return trackMean(t.F1), trackMean(t.F2), trackMean(t.F3)
}

func trackMean(vals []float64) float64 {
	nonzero := make([]float64, 0, len(vals))
	for _, v := range vals {
		if v > 0 {
			nonzero = append(nonzero, v)
		}
	}
	if len(nonzero) == 0 {
		return 0
	}
	return stat.Mean(nonzero, nil)
}

type formantTracker struct {
	sampleRate int
	windowSize int
	hopSize    int
	order      int

	// preEmphasis flattens the spectral tilt before LPC fitting.
	preEmphasis float64
	// minFreqHz and maxFreqHz bound the envelope peaks accepted as formants.
	minFreqHz float64
	maxFreqHz float64
	// envelopeBins is the resolution of the evaluated LPC envelope.
	envelopeBins int
}

func newFormantTracker(sampleRate int) *formantTracker {
	return &formantTracker{
		sampleRate:   sampleRate,
		windowSize:   defaultWindowSize,
		hopSize:      defaultHopSize,
		order:        2 + sampleRate/1000,
		preEmphasis:  0.97,
		minFreqHz:    90,
		maxFreqHz:    5500,
		envelopeBins: 512,
	}
}

// track estimates F1-F3 per frame from the peaks of the LPC spectral
// envelope. Unvoiced frames in the pitch track are skipped.
func (f *formantTracker) track(samples []float64, pitch *PitchTrack) *FormantTrack {
	tr := &FormantTrack{
		Times: pitch.Times,
		F1:    make([]float64, len(pitch.Times)),
		F2:    make([]float64, len(pitch.Times)),
		F3:    make([]float64, len(pitch.Times)),
	}
	if len(samples) < f.windowSize {
		return tr
	}

	emphasized := preEmphasize(samples, f.preEmphasis)
	coeffs := hammingWindow(f.windowSize)
	frame := make([]float64, f.windowSize)

	for fi := range pitch.Times {
		if pitch.F0[fi] == 0 {
			continue
		}
		start := fi * f.hopSize
		if start+f.windowSize > len(emphasized) {
			break
		}
		copy(frame, emphasized[start:start+f.windowSize])
		applyWindow(frame, coeffs)

		peaks := f.framePeaks(frame)
		if len(peaks) > 0 {
			tr.F1[fi] = peaks[0]
		}
		if len(peaks) > 1 {
			tr.F2[fi] = peaks[1]
		}
		if len(peaks) > 2 {
			tr.F3[fi] = peaks[2]
		}
	}
	return tr
}

// framePeaks returns the envelope peak frequencies of one windowed frame in
// ascending order, bounded to the accepted formant range.
func (f *formantTracker) framePeaks(frame []float64) []float64 {
	r := autocorrelate(frame, f.order)
	a, err := levinsonDurbin(r, f.order)
	if err != nil {
		return nil
	}
	env := lpcEnvelope(a, f.envelopeBins)

	binWidth := float64(f.sampleRate) / 2 / float64(f.envelopeBins)
	var peaks []float64
	for b := 1; b < len(env)-1; b++ {
		if env[b] <= env[b-1] || env[b] < env[b+1] {
			continue
		}
		// parabolic refinement of the peak bin
		y0, y1, y2 := env[b-1], env[b], env[b+1]
		denom := y0 - 2*y1 + y2
		delta := 0.0
		if denom != 0 {
			delta = 0.5 * (y0 - y2) / denom
		}
		freq := (float64(b) + delta) * binWidth
		if freq < f.minFreqHz || freq > f.maxFreqHz {
			continue
		}
		peaks = append(peaks, freq)
		if len(peaks) == 3 {
			break
		}
	}
	return peaks
}
