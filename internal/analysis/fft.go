package analysis

import (
	"errors"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

var ErrNoPeriod = errors.New("analysis: no periodic component found")

// PowerSpectrum returns the magnitude of the first half of the FFT of data
// after removing its mean.
func PowerSpectrum(data []float64) []float64 {
	if len(data) == 0 {
		return nil
	}

	mean := 0.0
	for _, v := range data {
		mean += v
	}
	mean /= float64(len(data))

	centered := make([]float64, len(data))
	for i, v := range data {
		centered[i] = v - mean
	}

	spectrum := fft.FFTReal(centered)
	ps := make([]float64, len(spectrum)/2)
	for i := range ps {
		ps[i] = cmplx.Abs(spectrum[i])
	}
	return ps
}

// OrbitalPeriod estimates the dominant period of samples taken every dt
// seconds. The peak bin is refined by parabolic interpolation.
func OrbitalPeriod(samples []float64, dt float64) (float64, error) {
	if len(samples) < 4 || dt <= 0 {
		return 0, ErrNoPeriod
	}

	ps := PowerSpectrum(samples)
	peak := 1
	for k := 2; k < len(ps); k++ {
		if ps[k] > ps[peak] {
			peak = k
		}
	}
	if ps[peak] == 0 {
		return 0, ErrNoPeriod
	}

	bin := float64(peak)
	if peak > 1 && peak < len(ps)-1 {
		a, b, c := ps[peak-1], ps[peak], ps[peak+1]
		if denom := a - 2*b + c; denom != 0 {
			bin += 0.5 * (a - c) / denom
		}
	}

	period := float64(len(samples)) * dt / bin
	if math.IsInf(period, 0) || math.IsNaN(period) {
		return 0, ErrNoPeriod
	}
	return period, nil
}
