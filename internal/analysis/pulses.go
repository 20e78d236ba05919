package analysis

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

const (
	// periodFloorSec and periodCeilingSec bound acceptable glottal periods.
	periodFloorSec   = 0.0001
	periodCeilingSec = 0.02
	// maxPeriodFactor is the largest ratio allowed between consecutive
	// periods; larger jumps are treated as pulse detection errors.
	maxPeriodFactor = 1.3
	// maxAmplitudeFactor is the analogous bound for consecutive pulse
	// amplitudes when computing shimmer.
	maxAmplitudeFactor = 1.6
)

// pointProcess marks one glottal pulse per pitch period by locating the
// waveform maximum near each expected pulse position inside voiced regions.
// Returns pulse sample indices.
func pointProcess(samples []float64, sampleRate int, pitch *PitchTrack, hopSize int) []int {
	var pulses []int
	i := 0
	for i < len(pitch.F0) {
		if pitch.F0[i] == 0 {
			i++
			continue
		}
		// walk one voiced region pulse by pulse
		pos := i * hopSize
		for {
			fi := pos / hopSize
			if fi >= len(pitch.F0) || pitch.F0[fi] == 0 {
				break
			}
			period := int(float64(sampleRate) / pitch.F0[fi])
			if period <= 0 {
				break
			}
			lo := pos
			hi := pos + period
			if hi > len(samples) {
				break
			}
			best := lo
			for j := lo; j < hi; j++ {
				if samples[j] > samples[best] {
					best = j
				}
			}
			pulses = append(pulses, best)
			pos = best + period/2 + 1
			if pos <= best {
				break
			}
		}
		i = pos/hopSize + 1
	}
	return pulses
}

// jitterShimmer computes cycle-to-cycle perturbation of period (jitter) and
// amplitude (shimmer) from a pulse sequence. Both are local relative
// measures. An input with too few usable cycles is an error; callers treat
// that as zero perturbation.
func jitterShimmer(samples []float64, sampleRate int, pulses []int) (float64, float64, error) {
	if len(pulses) < 3 {
		return 0, 0, fmt.Errorf("too few pulses: %d", len(pulses))
	}

	periods := make([]float64, 0, len(pulses)-1)
	amps := make([]float64, 0, len(pulses)-1)
	for i := 1; i < len(pulses); i++ {
		p := float64(pulses[i]-pulses[i-1]) / float64(sampleRate)
		if p < periodFloorSec || p > periodCeilingSec {
			continue
		}
		periods = append(periods, p)
		amps = append(amps, math.Abs(samples[pulses[i]]))
	}
	if len(periods) < 2 {
		return 0, 0, fmt.Errorf("too few valid periods: %d", len(periods))
	}

	jitter, err := relativePerturbation(periods, maxPeriodFactor)
	if err != nil {
		return 0, 0, err
	}
	shimmer, err := relativePerturbation(amps, maxAmplitudeFactor)
	if err != nil {
		return 0, 0, err
	}
	return jitter, shimmer, nil
}

// relativePerturbation is the mean absolute difference between consecutive
// values divided by the mean value, skipping pairs whose ratio exceeds
// maxFactor.
func relativePerturbation(vals []float64, maxFactor float64) (float64, error) {
	var diffs []float64
	var kept []float64
	for i := 1; i < len(vals); i++ {
		a, b := vals[i-1], vals[i]
		if a <= 0 || b <= 0 {
			continue
		}
		ratio := a / b
		if ratio < 1 {
			ratio = b / a
		}
		if ratio > maxFactor {
			continue
		}
		diffs = append(diffs, math.Abs(b-a))
		kept = append(kept, a, b)
	}
	if len(diffs) == 0 {
		return 0, fmt.Errorf("no valid consecutive pairs")
	}
	mean := stat.Mean(kept, nil)
	if mean == 0 {
		return 0, fmt.Errorf("zero mean value")
	}
	return stat.Mean(diffs, nil) / mean, nil
}
