package analysis

import (
	"fmt"
	"math"
	"math/cmplx"
)

// autocorrelate computes the raw autocorrelation of x for lags 0..maxLag.
func autocorrelate(x []float64, maxLag int) []float64 {
	r := make([]float64, maxLag+1)
	for lag := 0; lag <= maxLag; lag++ {
		var sum float64
		for i := 0; i+lag < len(x); i++ {
			sum += x[i] * x[i+lag]
		}
		r[lag] = sum
	}
	return r
}

// levinsonDurbin solves the Toeplitz normal equations for LPC coefficients
// of the given order from autocorrelation values r (length >= order+1).
// The returned slice has order+1 entries with a[0] == 1.
func levinsonDurbin(r []float64, order int) ([]float64, error) {
	if len(r) < order+1 {
		return nil, fmt.Errorf("autocorrelation too short for order %d", order)
	}
	if r[0] == 0 {
		return nil, fmt.Errorf("zero-energy frame")
	}

	a := make([]float64, order+1)
	prev := make([]float64, order+1)
	a[0] = 1.0
	e := r[0]

	for i := 1; i <= order; i++ {
		acc := r[i]
		for j := 1; j < i; j++ {
			acc += a[j] * r[i-j]
		}
		k := -acc / e

		copy(prev, a)
		for j := 1; j < i; j++ {
			a[j] = prev[j] + k*prev[i-j]
		}
		a[i] = k

		e *= 1.0 - k*k
		if e <= 0 {
			return nil, fmt.Errorf("unstable recursion at order %d", i)
		}
	}
	return a, nil
}

// lpcEnvelope evaluates the all-pole spectral envelope 1/|A(e^jw)| of the
// LPC coefficients at nBins equally spaced frequencies from 0 to Nyquist.
func lpcEnvelope(a []float64, nBins int) []float64 {
	env := make([]float64, nBins)
	for b := 0; b < nBins; b++ {
		omega := math.Pi * float64(b) / float64(nBins)
		den := complex(0, 0)
		for k, ak := range a {
			den += complex(ak, 0) * cmplx.Exp(complex(0, -omega*float64(k)))
		}
		mag := cmplx.Abs(den)
		if mag < 1e-12 {
			mag = 1e-12
		}
		env[b] = 1.0 / mag
	}
	return env
}

// preEmphasize applies a first-order high-pass y[n] = x[n] - c*x[n-1],
// returning a new slice.
func preEmphasize(x []float64, c float64) []float64 {
	out := make([]float64, len(x))
	if len(x) == 0 {
		return out
	}
	out[0] = x[0]
	for i := 1; i < len(x); i++ {
		out[i] = x[i] - c*x[i-1]
	}
	return out
}
