// Package series provides the simple amplitude statistics reported
// alongside the correlation results: peak amplitudes, RMS, and the
// signal-to-noise ratio measured against a pre-arrival noise window.
package series

import (
	"errors"
	"math"
)

// ErrNoiseWindow indicates that the requested noise window does not fit
// inside the signal.
var ErrNoiseWindow = errors.New("series: noise window out of range")

// Peak returns the peak absolute amplitude of the signal.
func Peak(signal []float64) float64 {
	var peak float64
	for _, x := range signal {
		if a := math.Abs(x); a > peak {
			peak = a
		}
	}

	return peak
}

// RMS returns the root-mean-square of the signal.
func RMS(signal []float64) float64 {
	if len(signal) == 0 {
		return 0
	}

	var sumSq float64
	for _, x := range signal {
		sumSq += x * x
	}

	return math.Sqrt(sumSq / float64(len(signal)))
}

// Mean returns the arithmetic mean using Kahan summation.
func Mean(signal []float64) float64 {
	if len(signal) == 0 {
		return 0
	}

	var sum, c float64
	for _, x := range signal {
		y := x - c
		t := sum + y
		c = (t - sum) - y
		sum = t
	}

	return sum / float64(len(signal))
}

// Std returns the population standard deviation.
func Std(signal []float64) float64 {
	n := len(signal)
	if n == 0 {
		return 0
	}

	mean := Mean(signal)

	var sumSq float64
	for _, x := range signal {
		d := x - mean
		sumSq += d * d
	}

	return math.Sqrt(sumSq / float64(n))
}

// SNR characterizes the signal-to-noise ratio as the peak amplitude of the
// whole wave train over the mean absolute amplitude in a noise window
// ending before the first theoretical arrival. pArrivalSec is the P arrival
// in seconds after the first sample.
func SNR(signal []float64, pArrivalSec, sampleRate float64) (float64, error) {
	// Noise window: 180 s to 100 s before the P arrival.
	i0 := int(math.Round((pArrivalSec - 180) * sampleRate))
	i1 := int(math.Round((pArrivalSec - 100) * sampleRate))

	if i0 < 0 || i1 <= i0 || i1 > len(signal) {
		return 0, ErrNoiseWindow
	}

	var noise float64
	for _, x := range signal[i0:i1] {
		noise += math.Abs(x)
	}
	noise /= float64(i1 - i0)

	if noise == 0 {
		return 0, ErrNoiseWindow
	}

	return Peak(signal) / noise, nil
}
