package filt

import "math"

const defaultQ = 1 / math.Sqrt2

// ButterworthLP designs a lowpass Butterworth cascade of the given order.
// For odd orders the final section is first-order (B2=A2=0). Returns nil
// for invalid parameters.
func ButterworthLP(freq float64, order int, sampleRate float64) []Coefficients {
	if order <= 0 || !validBand(freq, sampleRate) {
		return nil
	}

	sections := make([]Coefficients, 0, (order+1)/2)

	n2 := order / 2
	for i := n2 - 1; i >= 0; i-- {
		sections = append(sections, lowpassRBJ(freq, butterworthQ(order, i), sampleRate))
	}

	if order%2 != 0 {
		sections = append(sections, firstOrderLP(freq, sampleRate))
	}

	return sections
}

// ButterworthHP designs a highpass Butterworth cascade of the given order.
func ButterworthHP(freq float64, order int, sampleRate float64) []Coefficients {
	if order <= 0 || !validBand(freq, sampleRate) {
		return nil
	}

	sections := make([]Coefficients, 0, (order+1)/2)

	n2 := order / 2
	for i := n2 - 1; i >= 0; i-- {
		sections = append(sections, highpassRBJ(freq, butterworthQ(order, i), sampleRate))
	}

	if order%2 != 0 {
		sections = append(sections, firstOrderHP(freq, sampleRate))
	}

	return sections
}

// Bandpass designs a band filter passing [lowHz, highHz] as a highpass
// cascade at the lower corner followed by a lowpass cascade at the upper
// corner, each of the given order.
func Bandpass(lowHz, highHz float64, order int, sampleRate float64) []Coefficients {
	if lowHz >= highHz {
		return nil
	}

	hp := ButterworthHP(lowHz, order, sampleRate)
	lp := ButterworthLP(highHz, order, sampleRate)

	if hp == nil || lp == nil {
		return nil
	}

	return append(hp, lp...)
}

// Bandstop designs a band-rejection filter over [lowHz, highHz] as a
// cascade of identical RBJ notch sections centered on the geometric mean
// of the corners. sections controls the rejection depth.
func Bandstop(lowHz, highHz float64, sections int, sampleRate float64) []Coefficients {
	if sections <= 0 || lowHz >= highHz {
		return nil
	}

	if !validBand(lowHz, sampleRate) || !validBand(highHz, sampleRate) {
		return nil
	}

	f0 := math.Sqrt(lowHz * highHz)
	q := f0 / (highHz - lowHz)

	out := make([]Coefficients, sections)
	for i := range out {
		out[i] = notchRBJ(f0, q, sampleRate)
	}

	return out
}

// MinSamples returns the minimum trace length required to run a zero-phase
// pass over a cascade without the edge transients dominating: three times
// the cascade's nominal kernel length.
func MinSamples(coeffs []Coefficients) int {
	return 3 * (2*len(coeffs) + 1)
}

func butterworthQ(order, index int) float64 {
	theta := math.Pi * float64(2*index+1) / (2 * float64(order))

	s := math.Sin(theta)
	if s == 0 {
		return defaultQ
	}

	return 1 / (2 * s)
}

func validBand(freq, sampleRate float64) bool {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return false
	}

	return freq > 0 && freq < sampleRate/2 && !math.IsNaN(freq)
}

func lowpassRBJ(freq, q, sampleRate float64) Coefficients {
	w0 := 2 * math.Pi * freq / sampleRate
	cw := math.Cos(w0)
	sw := math.Sin(w0)
	alpha := sw / (2 * q)

	b1 := 1 - cw
	b0 := b1 / 2
	b2 := b0
	a0 := 1 + alpha
	a1 := -2 * cw
	a2 := 1 - alpha

	return normalize(b0, b1, b2, a0, a1, a2)
}

func highpassRBJ(freq, q, sampleRate float64) Coefficients {
	w0 := 2 * math.Pi * freq / sampleRate
	cw := math.Cos(w0)
	sw := math.Sin(w0)
	alpha := sw / (2 * q)

	b0 := (1 + cw) / 2
	b1 := -(1 + cw)
	b2 := b0
	a0 := 1 + alpha
	a1 := -2 * cw
	a2 := 1 - alpha

	return normalize(b0, b1, b2, a0, a1, a2)
}

func notchRBJ(freq, q, sampleRate float64) Coefficients {
	w0 := 2 * math.Pi * freq / sampleRate
	cw := math.Cos(w0)
	sw := math.Sin(w0)
	alpha := sw / (2 * q)

	b0 := 1.0
	b1 := -2 * cw
	b2 := 1.0
	a0 := 1 + alpha
	a1 := -2 * cw
	a2 := 1 - alpha

	return normalize(b0, b1, b2, a0, a1, a2)
}

func firstOrderLP(freq, sampleRate float64) Coefficients {
	k := math.Tan(math.Pi * freq / sampleRate)
	norm := 1 / (1 + k)

	return Coefficients{
		B0: k * norm,
		B1: k * norm,
		A1: (k - 1) * norm,
	}
}

func firstOrderHP(freq, sampleRate float64) Coefficients {
	k := math.Tan(math.Pi * freq / sampleRate)
	norm := 1 / (1 + k)

	return Coefficients{
		B0: norm,
		B1: -norm,
		A1: (k - 1) * norm,
	}
}

func normalize(b0, b1, b2, a0, a1, a2 float64) Coefficients {
	if a0 == 0 || math.IsNaN(a0) || math.IsInf(a0, 0) {
		return Coefficients{}
	}

	return Coefficients{
		B0: b0 / a0,
		B1: b1 / a0,
		B2: b2 / a0,
		A1: a1 / a0,
		A2: a2 / a0,
	}
}
