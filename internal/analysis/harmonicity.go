package analysis

import "math"

// harmonicity converts a normalized autocorrelation peak r into a
// harmonics-to-noise ratio in dB. r is treated as the harmonic fraction of
// the frame energy, so HNR = 10*log10(r / (1-r)). The value is clamped so a
// perfectly periodic frame does not produce +Inf.
func harmonicity(r float64) float64 {
	const maxR = 1 - 1e-6
	if r <= 0 {
		return 0
	}
	if r > maxR {
		r = maxR
	}
	return 10 * math.Log10(r/(1-r))
}
