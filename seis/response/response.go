// Package response removes instrument responses from recorded traces by
// water-level-stabilized spectral division, given a poles-and-zeros
// descriptor. Response estimation is out of scope; descriptors are
// supplied by the caller.
package response

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	algofft "github.com/MeKo-Christian/algo-fft"
)

var (
	// ErrMissingResponse indicates a nil or unusable response descriptor.
	ErrMissingResponse = errors.New("response: missing instrument response")
	// ErrEmpty indicates an empty input trace.
	ErrEmpty = errors.New("response: empty input")
)

// DefaultWaterLevelDB stabilizes the spectral division where the response
// magnitude collapses toward zero.
const DefaultWaterLevelDB = 600.0

// PAZ describes an instrument transfer function in the Laplace domain:
// poles, zeros, the A0 normalization gain, and the overall sensitivity in
// counts per physical unit.
type PAZ struct {
	Poles       []complex128
	Zeros       []complex128
	Gain        float64
	Sensitivity float64
}

// Valid reports whether the descriptor can be used for deconvolution.
func (p PAZ) Valid() bool {
	if p.Sensitivity == 0 || math.IsNaN(p.Sensitivity) || math.IsInf(p.Sensitivity, 0) {
		return false
	}

	if p.Gain == 0 || math.IsNaN(p.Gain) || math.IsInf(p.Gain, 0) {
		return false
	}

	return true
}

// at evaluates the transfer function at angular frequency w (rad/s).
func (p PAZ) at(w float64) complex128 {
	s := complex(0, w)

	num := complex(1, 0)
	for _, z := range p.Zeros {
		num *= s - z
	}

	den := complex(1, 0)
	for _, pole := range p.Poles {
		den *= s - pole
	}

	if den == 0 {
		return 0
	}

	return complex(p.Gain*p.Sensitivity, 0) * num / den
}

// RemoveSensitivity divides the trace by the descriptor's overall
// sensitivity. This is the full response removal for instruments described
// by a flat response with a scale factor, such as the ring laser.
func RemoveSensitivity(data []float64, paz PAZ) ([]float64, error) {
	if len(data) == 0 {
		return nil, ErrEmpty
	}

	if !paz.Valid() {
		return nil, ErrMissingResponse
	}

	out := make([]float64, len(data))
	inv := 1 / paz.Sensitivity
	for i, v := range data {
		out[i] = v * inv
	}

	return out, nil
}

// Remove deconvolves the instrument response from data sampled at
// sampleRate, returning the trace in physical units. The division is
// stabilized with the given water level in dB below the peak response
// magnitude (use DefaultWaterLevelDB when in doubt).
func Remove(data []float64, sampleRate float64, paz PAZ, waterLevelDB float64) ([]float64, error) {
	if len(data) == 0 {
		return nil, ErrEmpty
	}

	if !paz.Valid() {
		return nil, ErrMissingResponse
	}

	if sampleRate <= 0 {
		return nil, fmt.Errorf("response: invalid sample rate %v", sampleRate)
	}

	size := nextPowerOf2(len(data))

	plan, err := algofft.NewPlan64(size)
	if err != nil {
		return nil, fmt.Errorf("response: fft plan: %w", err)
	}

	spec := make([]complex128, size)
	for i, v := range data {
		spec[i] = complex(v, 0)
	}

	if err := plan.Forward(spec, spec); err != nil {
		return nil, fmt.Errorf("response: forward fft: %w", err)
	}

	resp := p2Response(paz, size, sampleRate)
	applyWaterLevel(resp, waterLevelDB)

	for i := range spec {
		if resp[i] == 0 {
			spec[i] = 0
			continue
		}

		spec[i] /= resp[i]
	}

	if err := plan.Inverse(spec, spec); err != nil {
		return nil, fmt.Errorf("response: inverse fft: %w", err)
	}

	out := make([]float64, len(data))
	for i := range out {
		out[i] = real(spec[i])
	}

	return out, nil
}

// p2Response samples the transfer function at every FFT bin, negative
// frequencies included.
func p2Response(paz PAZ, size int, sampleRate float64) []complex128 {
	resp := make([]complex128, size)
	df := sampleRate / float64(size)

	for k := range resp {
		freq := float64(k) * df
		if k > size/2 {
			freq = float64(k-size) * df
		}

		resp[k] = paz.at(2 * math.Pi * freq)
	}

	return resp
}

// applyWaterLevel lifts response bins whose magnitude falls below the
// water level, preserving their phase. Bins that are exactly zero get the
// water-level magnitude with zero phase.
func applyWaterLevel(resp []complex128, waterLevelDB float64) {
	var peak float64
	for _, h := range resp {
		if a := cmplx.Abs(h); a > peak {
			peak = a
		}
	}

	if peak == 0 {
		return
	}

	level := peak * math.Pow(10, -waterLevelDB/20)

	for i, h := range resp {
		a := cmplx.Abs(h)
		if a >= level {
			continue
		}

		if a == 0 {
			resp[i] = complex(level, 0)
			continue
		}

		resp[i] = h * complex(level/a, 0)
	}
}

func nextPowerOf2(n int) int {
	size := 1
	for size < n {
		size <<= 1
	}

	return size
}
