package analysis

import (
	"errors"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/stat"
)

var ErrShortSeries = errors.New("analysis: series too short")

// PowerSpectrum returns the magnitude of each non-negative frequency bin of
// series after removing its mean. Bin i lies at i/(len(series)*dt).
func PowerSpectrum(series []float64) []float64 {
	if len(series) < 2 {
		return nil
	}
	mean := stat.Mean(series, nil)
	centered := make([]float64, len(series))
	for i, v := range series {
		centered[i] = v - mean
	}

	fft := fourier.NewFFT(len(centered))
	coeffs := fft.Coefficients(nil, centered)
	ps := make([]float64, len(coeffs))
	for i, c := range coeffs {
		ps[i] = cmplx.Abs(c)
	}
	return ps
}

// DominantFrequency returns the frequency in Hz of the strongest bin above
// zero for a series sampled every dt seconds, and that bin's magnitude.
func DominantFrequency(series []float64, dt float64) (float64, float64, error) {
	if len(series) < 4 {
		return 0, 0, ErrShortSeries
	}
	if dt <= 0 {
		return 0, 0, errors.New("analysis: sample interval must be positive")
	}
	ps := PowerSpectrum(series)

	best := 1
	for i := 2; i < len(ps); i++ {
		if ps[i] > ps[best] {
			best = i
		}
	}
	fft := fourier.NewFFT(len(series))
	return fft.Freq(best) / dt, ps[best], nil
}
