package series

import (
	"errors"
	"math"
	"testing"
)

func TestPeak(t *testing.T) {
	tests := []struct {
		name   string
		signal []float64
		want   float64
	}{
		{"empty", nil, 0},
		{"positive max", []float64{1, 3, 2}, 3},
		{"negative max", []float64{1, -5, 2}, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Peak(tt.signal); got != tt.want {
				t.Fatalf("Peak = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRMS(t *testing.T) {
	if got := RMS([]float64{3, 4, 3, 4}); math.Abs(got-math.Sqrt(12.5)) > 1e-12 {
		t.Fatalf("RMS = %v", got)
	}

	if got := RMS(nil); got != 0 {
		t.Fatalf("RMS(nil) = %v, want 0", got)
	}
}

func TestMeanStd(t *testing.T) {
	s := []float64{2, 4, 4, 4, 5, 5, 7, 9}

	if got := Mean(s); got != 5 {
		t.Fatalf("Mean = %v, want 5", got)
	}

	if got := Std(s); got != 2 {
		t.Fatalf("Std = %v, want 2", got)
	}
}

func TestSNR_SpikeOverNoise(t *testing.T) {
	rate := 1.0
	n := 600
	signal := make([]float64, n)
	for i := range signal {
		signal[i] = 0.1
	}
	signal[400] = 10 // the event

	snr, err := SNR(signal, 300, rate)
	if err != nil {
		t.Fatal(err)
	}

	if math.Abs(snr-100) > 1e-9 {
		t.Fatalf("SNR = %v, want 100", snr)
	}
}

func TestSNR_WindowOutOfRange(t *testing.T) {
	signal := make([]float64, 100)

	if _, err := SNR(signal, 50, 1); !errors.Is(err, ErrNoiseWindow) {
		t.Fatalf("err = %v, want ErrNoiseWindow", err)
	}
}
