package filt

import "errors"

// ErrTooShort indicates a signal shorter than the zero-phase padding
// requirement for the cascade.
var ErrTooShort = errors.New("filt: signal too short for zero-phase filtering")

// ZeroPhase filters data forward and then backward through a fresh cascade
// built from coeffs, cancelling the phase delay and squaring the magnitude
// response. Returns a new slice; the input is not modified.
func ZeroPhase(data []float64, coeffs []Coefficients) ([]float64, error) {
	if len(coeffs) == 0 {
		return nil, errors.New("filt: empty coefficient cascade")
	}

	if len(data) < MinSamples(coeffs) {
		return nil, ErrTooShort
	}

	buf := make([]float64, len(data))
	copy(buf, data)

	chain := NewChain(coeffs)
	chain.ProcessBlock(buf)

	reverse(buf)
	chain.Reset()
	chain.ProcessBlock(buf)
	reverse(buf)

	return buf, nil
}

func reverse(buf []float64) {
	for i, j := 0, len(buf)-1; i < j; i, j = i+1, j-1 {
		buf[i], buf[j] = buf[j], buf[i]
	}
}
