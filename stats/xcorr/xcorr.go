// Package xcorr computes zero-lag Pearson correlation coefficients between
// equally sampled signals.
package xcorr

import (
	"errors"
	"math"
)

var (
	// ErrLengthMismatch indicates input slices of different lengths.
	ErrLengthMismatch = errors.New("xcorr: length mismatch")
	// ErrEmpty indicates empty input.
	ErrEmpty = errors.New("xcorr: empty input")
)

// Pearson returns the zero-lag Pearson correlation coefficient of a and b.
// Both signals are demeaned. The result is clamped to [-1, 1]; a degenerate
// (zero-variance) input yields 0.
func Pearson(a, b []float64) (float64, error) {
	if len(a) == 0 {
		return 0, ErrEmpty
	}

	if len(a) != len(b) {
		return 0, ErrLengthMismatch
	}

	var meanA, meanB float64
	for i := range a {
		meanA += a[i]
		meanB += b[i]
	}

	nf := float64(len(a))
	meanA /= nf
	meanB /= nf

	var cross, energyA, energyB float64
	for i := range a {
		da := a[i] - meanA
		db := b[i] - meanB
		cross += da * db
		energyA += da * da
		energyB += db * db
	}

	if energyA == 0 || energyB == 0 {
		return 0, nil
	}

	r := cross / math.Sqrt(energyA*energyB)

	// Floating-point roundoff can push |r| marginally past 1.
	if r > 1 {
		r = 1
	}

	if r < -1 {
		r = -1
	}

	return r, nil
}

// PerWindow partitions a and b into contiguous non-overlapping windows of
// perWindow samples and returns the Pearson coefficient of each whole
// window. A trailing partial window is discarded.
func PerWindow(a, b []float64, perWindow int) ([]float64, error) {
	if perWindow <= 0 {
		return nil, ErrEmpty
	}

	if len(a) != len(b) {
		return nil, ErrLengthMismatch
	}

	count := len(a) / perWindow
	out := make([]float64, 0, count)

	for w := 0; w < count; w++ {
		i0 := w * perWindow
		i1 := i0 + perWindow

		r, err := Pearson(a[i0:i1], b[i0:i1])
		if err != nil {
			return nil, err
		}

		out = append(out, r)
	}

	return out, nil
}
