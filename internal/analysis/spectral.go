package analysis

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

const (
	defaultWindowSize = 1024
	defaultHopSize    = 256

	// spectrogram output is decimated to keep result payloads bounded
	maxSpectrogramFrames = 400
	// silence floor for the dB spectrogram, relative to the peak bin
	spectrogramFloorDB = -80.0
)

// stftResult is a magnitude spectrogram: Magnitude[frame][bin] with
// windowSize/2+1 bins per frame.
type stftResult struct {
	Magnitude  [][]float64
	Times      []float64
	sampleRate int
	windowSize int
}

func (s *stftResult) binFreq(bin int) float64 {
	return float64(bin) * float64(s.sampleRate) / float64(s.windowSize)
}

// stft computes a short-time Fourier transform with a Hann window.
func stft(samples []float64, sampleRate, windowSize, hopSize int) *stftResult {
	res := &stftResult{sampleRate: sampleRate, windowSize: windowSize}
	if len(samples) < windowSize {
		return res
	}

	coeffs := hannWindow(windowSize)
	nBins := windowSize/2 + 1
	nFrames := 1 + (len(samples)-windowSize)/hopSize

	res.Magnitude = make([][]float64, nFrames)
	res.Times = make([]float64, nFrames)

	frame := make([]float64, windowSize)
	for fi := 0; fi < nFrames; fi++ {
		start := fi * hopSize
		copy(frame, samples[start:start+windowSize])
		applyWindow(frame, coeffs)

		spectrum := fft.FFTReal(frame)
		mags := make([]float64, nBins)
		for b := 0; b < nBins; b++ {
			mags[b] = cmplx.Abs(spectrum[b])
		}
		res.Magnitude[fi] = mags
		res.Times[fi] = (float64(start) + float64(windowSize)/2) / float64(sampleRate)
	}
	return res
}

// energyRatio returns the summed magnitude at or below cutoffHz divided by
// the summed magnitude above it. A signal with no energy above the cutoff
// yields 0 rather than a division error.
func (s *stftResult) energyRatio(cutoffHz float64) float64 {
	var low, high float64
	for _, frame := range s.Magnitude {
		for b, m := range frame {
			if s.binFreq(b) <= cutoffHz {
				low += m
			} else {
				high += m
			}
		}
	}
	if high == 0 {
		return 0
	}
	return low / high
}

// decibels converts the magnitude matrix to dB relative to its peak bin,
// floored at spectrogramFloorDB, decimating frames to at most
// maxSpectrogramFrames. Returns the dB matrix and the kept frame times.
func (s *stftResult) decibels() ([][]float64, []float64) {
	if len(s.Magnitude) == 0 {
		return nil, nil
	}

	peak := 0.0
	for _, frame := range s.Magnitude {
		for _, m := range frame {
			if m > peak {
				peak = m
			}
		}
	}
	if peak == 0 {
		peak = 1
	}

	step := 1
	if len(s.Magnitude) > maxSpectrogramFrames {
		step = (len(s.Magnitude) + maxSpectrogramFrames - 1) / maxSpectrogramFrames
	}

	var db [][]float64
	var times []float64
	for fi := 0; fi < len(s.Magnitude); fi += step {
		frame := s.Magnitude[fi]
		row := make([]float64, len(frame))
		for b, m := range frame {
			v := spectrogramFloorDB
			if m > 0 {
				v = 20 * math.Log10(m/peak)
				if v < spectrogramFloorDB {
					v = spectrogramFloorDB
				}
			}
			row[b] = v
		}
		db = append(db, row)
		times = append(times, s.Times[fi])
	}
	return db, times
}
