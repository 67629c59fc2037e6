// Package trace provides the immutable sample-sequence type shared by every
// pipeline stage, together with the basic time-domain operations the
// conditioner is built from. Every operation returns a new Trace; produced
// traces are never mutated in place.
package trace

import (
	"errors"
	"math"
	"time"
)

var (
	// ErrEmpty indicates a trace with no samples.
	ErrEmpty = errors.New("trace: empty data")
	// ErrInvalidRate indicates a non-positive or non-finite sample rate.
	ErrInvalidRate = errors.New("trace: invalid sample rate")
	// ErrInvalidFactor indicates a decimation factor < 1.
	ErrInvalidFactor = errors.New("trace: invalid decimation factor")
)

// Trace is an ordered sequence of real-valued samples with a fixed sample
// rate and start time.
type Trace struct {
	data       []float64
	sampleRate float64
	start      time.Time
}

// New creates a Trace, copying the sample data.
func New(data []float64, sampleRate float64, start time.Time) (Trace, error) {
	if len(data) == 0 {
		return Trace{}, ErrEmpty
	}

	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return Trace{}, ErrInvalidRate
	}

	d := make([]float64, len(data))
	copy(d, data)

	return Trace{data: d, sampleRate: sampleRate, start: start}, nil
}

// fromOwned wraps an already-owned slice without copying. Internal
// constructor for operations that just built the slice themselves.
func fromOwned(data []float64, sampleRate float64, start time.Time) Trace {
	return Trace{data: data, sampleRate: sampleRate, start: start}
}

// Data returns the backing sample slice. Callers must not modify it; use
// the transforming methods instead.
func (t Trace) Data() []float64 { return t.data }

// Len returns the number of samples.
func (t Trace) Len() int { return len(t.data) }

// SampleRate returns the sample rate in Hz.
func (t Trace) SampleRate() float64 { return t.sampleRate }

// Start returns the time of the first sample.
func (t Trace) Start() time.Time { return t.start }

// Duration returns the trace length in seconds.
func (t Trace) Duration() float64 {
	if t.sampleRate <= 0 {
		return 0
	}

	return float64(len(t.data)) / t.sampleRate
}

// Detrend removes the least-squares straight line from the samples.
func (t Trace) Detrend() Trace {
	n := len(t.data)
	out := make([]float64, n)

	if n < 2 {
		copy(out, t.data)
		return fromOwned(out, t.sampleRate, t.start)
	}

	// Least-squares line y = a + b*x over x = 0..n-1.
	var sumX, sumY, sumXY, sumXX float64
	for i, y := range t.data {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}

	nf := float64(n)
	denom := nf*sumXX - sumX*sumX

	var a, b float64
	if denom != 0 {
		b = (nf*sumXY - sumX*sumY) / denom
		a = (sumY - b*sumX) / nf
	} else {
		a = sumY / nf
	}

	for i, y := range t.data {
		out[i] = y - (a + b*float64(i))
	}

	return fromOwned(out, t.sampleRate, t.start)
}

// Taper applies a symmetric cosine (Hann-edge) taper covering the given
// fraction of the trace on each end. Fractions outside (0, 0.5] are clamped.
func (t Trace) Taper(fraction float64) Trace {
	if fraction <= 0 {
		fraction = 0.05
	}

	if fraction > 0.5 {
		fraction = 0.5
	}

	n := len(t.data)
	out := make([]float64, n)
	copy(out, t.data)

	edge := int(math.Floor(float64(n) * fraction))
	if edge < 1 {
		return fromOwned(out, t.sampleRate, t.start)
	}

	for i := 0; i < edge; i++ {
		w := 0.5 * (1 - math.Cos(math.Pi*float64(i)/float64(edge)))
		out[i] *= w
		out[n-1-i] *= w
	}

	return fromOwned(out, t.sampleRate, t.start)
}

// Scale multiplies every sample by f.
func (t Trace) Scale(f float64) Trace {
	out := make([]float64, len(t.data))
	for i, v := range t.data {
		out[i] = v * f
	}

	return fromOwned(out, t.sampleRate, t.start)
}

// Differentiate returns the time derivative using central differences
// (one-sided at the edges). Used to turn velocity into acceleration.
func (t Trace) Differentiate() Trace {
	n := len(t.data)
	out := make([]float64, n)

	if n < 2 {
		return fromOwned(out, t.sampleRate, t.start)
	}

	dt := 1 / t.sampleRate
	out[0] = (t.data[1] - t.data[0]) / dt
	out[n-1] = (t.data[n-1] - t.data[n-2]) / dt

	for i := 1; i < n-1; i++ {
		out[i] = (t.data[i+1] - t.data[i-1]) / (2 * dt)
	}

	return fromOwned(out, t.sampleRate, t.start)
}

// Slice returns the samples in [i0, i1) as a new Trace with an adjusted
// start time. Indices are clamped to the valid range.
func (t Trace) Slice(i0, i1 int) (Trace, error) {
	if i0 < 0 {
		i0 = 0
	}

	if i1 > len(t.data) {
		i1 = len(t.data)
	}

	if i0 >= i1 {
		return Trace{}, ErrEmpty
	}

	out := make([]float64, i1-i0)
	copy(out, t.data[i0:i1])

	offset := time.Duration(float64(i0) / t.sampleRate * float64(time.Second))

	return fromOwned(out, t.sampleRate, t.start.Add(offset)), nil
}

// SliceSeconds returns the samples between t0 and t1 seconds after the
// trace start.
func (t Trace) SliceSeconds(t0, t1 float64) (Trace, error) {
	i0 := int(math.Round(t0 * t.sampleRate))
	i1 := int(math.Round(t1 * t.sampleRate))

	return t.Slice(i0, i1)
}

// Decimate keeps every factor-th sample. It performs no anti-alias
// filtering itself; the conditioner lowpasses before calling it.
func (t Trace) Decimate(factor int) (Trace, error) {
	if factor < 1 {
		return Trace{}, ErrInvalidFactor
	}

	if factor == 1 {
		out := make([]float64, len(t.data))
		copy(out, t.data)

		return fromOwned(out, t.sampleRate, t.start), nil
	}

	out := make([]float64, 0, (len(t.data)+factor-1)/factor)
	for i := 0; i < len(t.data); i += factor {
		out = append(out, t.data[i])
	}

	return fromOwned(out, t.sampleRate/float64(factor), t.start), nil
}

// WindowSamples returns the number of samples in a window of the given
// length, and the number of whole windows that fit into the trace. A
// trailing partial window is not counted.
func (t Trace) WindowSamples(windowSeconds float64) (perWindow, count int) {
	perWindow = int(math.Round(windowSeconds * t.sampleRate))
	if perWindow <= 0 {
		return 0, 0
	}

	return perWindow, len(t.data) / perWindow
}

// Aligned reports whether two traces share sample rate and length, the
// invariant every correlation pair must satisfy.
func Aligned(a, b Trace) bool {
	return a.sampleRate == b.sampleRate && len(a.data) == len(b.data)
}
