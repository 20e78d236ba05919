package analysis

import "math"

// hannWindow returns periodic Hann coefficients of the given size
func hannWindow(size int) []float64 {
	w := make([]float64, size)
	for i := range w {
		w[i] = 0.5 * (1.0 - math.Cos(2*math.Pi*float64(i)/float64(size)))
	}
	return w
}

// hammingWindow returns symmetric Hamming coefficients of the given size
func hammingWindow(size int) []float64 {
	w := make([]float64, size)
	for i := range w {
		w[i] = 0.54 - 0.46*math.Cos(2*math.Pi*float64(i)/float64(size-1))
	}
	return w
}

// applyWindow multiplies frame by coefficients in place. Lengths must match.
func applyWindow(frame, coeffs []float64) {
	for i := range frame {
		frame[i] *= coeffs[i]
	}
}
