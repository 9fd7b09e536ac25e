package analysis

import (
	"math"
	"testing"
)

func TestDominantFrequency(t *testing.T) {
	const rate = 60.0
	const freq = 5.0
	data := make([]float64, 240)
	for i := range data {
		data[i] = 3 + math.Sin(2*math.Pi*freq*float64(i)/rate)
	}

	got, power := DominantFrequency(data, rate)
	if math.Abs(got-freq) > 0.5 {
		t.Errorf("expected ~%.1f hz, got %.3f", freq, got)
	}
	if power <= 0 {
		t.Error("expected positive power")
	}
}

func TestPowerSpectrumRemovesOffset(t *testing.T) {
	data := []float64{5, 5, 5, 5, 5, 5, 5, 5}
	ps := PowerSpectrum(data)
	if len(ps) != 4 {
		t.Fatalf("expected 4 bins, got %d", len(ps))
	}
	for i, v := range ps {
		if v > 1e-9 {
			t.Errorf("bin %d: expected 0 for constant input, got %f", i, v)
		}
	}

	if f, _ := DominantFrequency(data, 60); f != 0 {
		t.Errorf("expected no dominant frequency, got %f", f)
	}
}

func TestPowerSpectrumShortInput(t *testing.T) {
	if PowerSpectrum([]float64{1}) != nil {
		t.Error("expected nil for a single sample")
	}
}

func TestSettleTick(t *testing.T) {
	tests := []struct {
		series   []float64
		expected int
	}{
		{[]float64{0, 0.5, 1, 1}, 2},
		{[]float64{1, 0, 1, 1}, 2},
		{[]float64{0, 0, 0}, -1},
		{[]float64{1, 1}, 0},
		{nil, -1},
	}

	for _, tt := range tests {
		if got := SettleTick(tt.series, 1); got != tt.expected {
			t.Errorf("%v: expected %d, got %d", tt.series, tt.expected, got)
		}
	}
}
