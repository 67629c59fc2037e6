// Package phasevel estimates Love-wave phase velocities from the amplitude
// ratio of transverse acceleration to rotation rate. With both signals in
// physical units (nm/s^2 and nrad/s) the ratio is a velocity in m/s.
package phasevel

import (
	"errors"
	"fmt"

	"github.com/Nicolucas/RLdatabase/internal/filt"
	"github.com/Nicolucas/RLdatabase/seis/trace"
	"github.com/Nicolucas/RLdatabase/stats/series"
	"github.com/Nicolucas/RLdatabase/stats/xcorr"
)

// DefaultThreshold is the exclusive correlation bound a window must clear
// before its amplitude ratio is trusted as a phase velocity.
const DefaultThreshold = 0.75

const bandpassOrder = 3

var (
	// ErrMisaligned indicates traces that do not share sample rate and
	// length.
	ErrMisaligned = errors.New("phasevel: input traces not aligned")
	// ErrTooShort indicates a trace shorter than one correlation window
	// or the bandpass kernel.
	ErrTooShort = errors.New("phasevel: trace too short")
)

// Estimate is one accepted window's phase velocity.
type Estimate struct {
	// Index is the window's position, counting from the trace start.
	Index int
	// CC is the window's zero-lag correlation coefficient.
	CC float64
	// Velocity is the phase velocity in m/s.
	Velocity float64
}

// PerWindow correlates rotation rate and transverse acceleration in
// non-overlapping windows and returns an estimate for every window whose
// coefficient exceeds threshold:
//
//	v = peak(transverse) / (2 * peak(rotation))
//
// Windows with a degenerate rotation peak are skipped. A trailing partial
// window is discarded.
func PerWindow(rotation, transverse trace.Trace, windowSeconds, threshold float64) ([]Estimate, error) {
	if !trace.Aligned(rotation, transverse) {
		return nil, ErrMisaligned
	}

	perWindow, count := rotation.WindowSamples(windowSeconds)
	if count < 1 {
		return nil, fmt.Errorf("%w: %d samples, window %v s at %v Hz",
			ErrTooShort, rotation.Len(), windowSeconds, rotation.SampleRate())
	}

	rot := rotation.Data()
	trans := transverse.Data()

	out := make([]Estimate, 0, count)
	for w := 0; w < count; w++ {
		i0 := w * perWindow
		i1 := i0 + perWindow

		cc, err := xcorr.Pearson(rot[i0:i1], trans[i0:i1])
		if err != nil {
			return nil, err
		}

		if cc <= threshold {
			continue
		}

		peakRot := series.Peak(rot[i0:i1])
		if peakRot == 0 {
			continue
		}

		out = append(out, Estimate{
			Index:    w,
			CC:       cc,
			Velocity: 0.5 * series.Peak(trans[i0:i1]) / peakRot,
		})
	}

	return out, nil
}

// Band is one frequency band of the dispersion analysis. Longer-period
// bands use longer correlation windows.
type Band struct {
	LowHz         float64
	HighHz        float64
	WindowSeconds float64
}

// DefaultBands returns the eight standard dispersion bands between 0.01
// and 1 Hz.
func DefaultBands() []Band {
	return []Band{
		{0.01, 0.02, 200},
		{0.02, 0.04, 100},
		{0.04, 0.1, 50},
		{0.1, 0.2, 20},
		{0.2, 0.3, 12},
		{0.3, 0.4, 10},
		{0.4, 0.6, 8},
		{0.6, 1.0, 6},
	}
}

// BandStats summarizes the accepted estimates of one band. Mean and Std
// are meaningful only when Count is positive.
type BandStats struct {
	Band  Band
	Count int
	// Mean is the average phase velocity in m/s.
	Mean float64
	// Std is the population standard deviation of the estimates.
	Std float64
}

// Analyze bandpasses both traces into each band and collects the accepted
// per-window estimates. Bands that cannot be realized at the trace's
// sample rate, or whose window does not fit the trace, are reported with
// Count zero.
func Analyze(rotation, transverse trace.Trace, bands []Band, threshold float64) ([]BandStats, error) {
	if !trace.Aligned(rotation, transverse) {
		return nil, ErrMisaligned
	}

	out := make([]BandStats, 0, len(bands))
	for _, band := range bands {
		stats, err := analyzeBand(rotation, transverse, band, threshold)
		if err != nil {
			return nil, err
		}

		out = append(out, stats)
	}

	return out, nil
}

func analyzeBand(rotation, transverse trace.Trace, band Band, threshold float64) (BandStats, error) {
	stats := BandStats{Band: band}

	bp := filt.Bandpass(band.LowHz, band.HighHz, bandpassOrder, rotation.SampleRate())
	if bp == nil {
		return stats, nil
	}

	if _, count := rotation.WindowSamples(band.WindowSeconds); count < 1 {
		return stats, nil
	}

	rot, err := zeroPhase(rotation, bp)
	if err != nil {
		return BandStats{}, err
	}

	trans, err := zeroPhase(transverse, bp)
	if err != nil {
		return BandStats{}, err
	}

	estimates, err := PerWindow(rot, trans, band.WindowSeconds, threshold)
	if err != nil {
		return BandStats{}, err
	}

	if len(estimates) == 0 {
		return stats, nil
	}

	velocities := make([]float64, len(estimates))
	for i, est := range estimates {
		velocities[i] = est.Velocity
	}

	stats.Count = len(estimates)
	stats.Mean = series.Mean(velocities)
	stats.Std = series.Std(velocities)

	return stats, nil
}

func zeroPhase(tr trace.Trace, coeffs []filt.Coefficients) (trace.Trace, error) {
	data, err := filt.ZeroPhase(tr.Data(), coeffs)
	if err != nil {
		if errors.Is(err, filt.ErrTooShort) {
			return trace.Trace{}, fmt.Errorf("%w: %d samples", ErrTooShort, tr.Len())
		}

		return trace.Trace{}, err
	}

	out, err := trace.New(data, tr.SampleRate(), tr.Start())
	if err != nil {
		return trace.Trace{}, err
	}

	return out, nil
}
