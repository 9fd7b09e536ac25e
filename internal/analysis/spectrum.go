package analysis

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// PowerSpectrum returns the magnitude of the first half of the DFT of data
// after removing its mean, so a constant offset does not swamp bin 0.
func PowerSpectrum(data []float64) []float64 {
	n := len(data)
	if n < 2 {
		return nil
	}

	mean := 0.0
	for _, v := range data {
		mean += v
	}
	mean /= float64(n)

	centred := make([]float64, n)
	for i, v := range data {
		centred[i] = v - mean
	}

	spectrum := fft.FFTReal(centred)
	ps := make([]float64, n/2)
	for i := range ps {
		ps[i] = cmplx.Abs(spectrum[i])
	}
	return ps
}

// DominantFrequency returns the strongest non-DC frequency in data sampled
// at sampleRate, and its magnitude. Zero when there is no signal.
func DominantFrequency(data []float64, sampleRate float64) (float64, float64) {
	ps := PowerSpectrum(data)
	if len(ps) < 2 {
		return 0, 0
	}

	maxIdx, maxPower := 0, 0.0
	for i := 1; i < len(ps); i++ {
		if ps[i] > maxPower {
			maxIdx, maxPower = i, ps[i]
		}
	}
	if maxIdx == 0 {
		return 0, 0
	}
	return float64(maxIdx) * sampleRate / float64(len(data)), maxPower
}

// SettleTick returns the first index after which every value stays at or
// above threshold, or -1 if that never happens.
func SettleTick(series []float64, threshold float64) int {
	settled := -1
	for i, v := range series {
		if v >= threshold {
			if settled < 0 {
				settled = i
			}
		} else {
			settled = -1
		}
	}
	return settled
}
