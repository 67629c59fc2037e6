// Package condition turns raw co-located recordings into the time-aligned,
// physical-unit trace sets the correlation engine consumes. Each stage
// produces a new immutable trace; a conditioning failure aborts the run for
// the event-station pair.
package condition

import (
	"errors"
	"fmt"

	"github.com/Nicolucas/RLdatabase/internal/filt"
	"github.com/Nicolucas/RLdatabase/seis/response"
	"github.com/Nicolucas/RLdatabase/seis/trace"
	"github.com/Nicolucas/RLdatabase/seis/zone"
)

var (
	// ErrTraceTooShort indicates a trace shorter than one conditioning
	// filter kernel.
	ErrTraceTooShort = errors.New("condition: trace too short")
	// ErrMisaligned indicates input traces that do not share sample rate
	// and length.
	ErrMisaligned = errors.New("condition: input traces not aligned")
)

// Filter orders, fixed for reproducibility.
const (
	lowpassOrder  = 2
	highpassOrder = 2
	bandstopOrder = 4

	// dcCutoffHz removes the residual drift left after response removal.
	dcCutoffHz = 0.005

	// pcodaHighpassHz isolates the higher-frequency P-coda wavefield.
	pcodaHighpassHz = 0.5

	// taperFraction is the cosine taper applied after detrending.
	taperFraction = 0.05
)

// Input carries the raw traces and response descriptors for one
// event-station pair. The rotational instrument is described by a
// sensitivity in counts per nrad/s; the translational one by a full
// poles-and-zeros descriptor with sensitivity in counts per nm/s.
type Input struct {
	Rotation trace.Trace
	North    trace.Trace
	East     trace.Trace
	Vertical trace.Trace

	RotationResponse    response.PAZ
	TranslationResponse response.PAZ

	// VelocityInput marks the translational recordings as velocity, to be
	// differentiated to acceleration after response removal.
	VelocityInput bool
}

// Set is one conditioned, time-aligned trace group: rotation rate in
// nrad/s and translational acceleration in nm/s^2, all at one rate.
type Set struct {
	Rotation trace.Trace
	North    trace.Trace
	East     trace.Trace
	Vertical trace.Trace
}

// SampleRate returns the common sample rate of the set.
func (s Set) SampleRate() float64 { return s.Rotation.SampleRate() }

// Output holds the main conditioned set and the P-coda variant.
type Output struct {
	// Main is lowpassed at the zone cutoff and decimated by the zone
	// factor; in the teleseismic zone the secondary microseism band is
	// also stopped.
	Main Set

	// PCoda is highpassed at 0.5 Hz instead, and decimated by the zone's
	// P-coda factor.
	PCoda Set
}

// Run conditions the raw input according to the zone parameters.
func Run(in Input, zp zone.Parameters) (*Output, error) {
	if err := checkAlignment(in); err != nil {
		return nil, err
	}

	// Stages 1-2: detrend, taper, physical units.
	rot, err := physicalRotation(in)
	if err != nil {
		return nil, err
	}

	n, e, z, err := physicalTranslation(in)
	if err != nil {
		return nil, err
	}

	base := Set{Rotation: rot, North: n, East: e, Vertical: z}

	main, err := mainSet(base, zp)
	if err != nil {
		return nil, err
	}

	pcoda, err := pcodaSet(base, zp)
	if err != nil {
		return nil, err
	}

	return &Output{Main: *main, PCoda: *pcoda}, nil
}

func checkAlignment(in Input) error {
	for _, tr := range []trace.Trace{in.North, in.East, in.Vertical} {
		if !trace.Aligned(in.Rotation, tr) {
			return ErrMisaligned
		}
	}

	return nil
}

// physicalRotation detrends, tapers, and converts the ring laser trace to
// nrad/s by sensitivity division.
func physicalRotation(in Input) (trace.Trace, error) {
	tr := in.Rotation.Detrend().Taper(taperFraction)

	data, err := response.RemoveSensitivity(tr.Data(), in.RotationResponse)
	if err != nil {
		return trace.Trace{}, fmt.Errorf("conditioning rotation: %w", err)
	}

	out, err := trace.New(data, tr.SampleRate(), tr.Start())
	if err != nil {
		return trace.Trace{}, err
	}

	return out, nil
}

// physicalTranslation detrends, tapers, deconvolves the instrument
// response, and differentiates velocity to acceleration.
func physicalTranslation(in Input) (n, e, z trace.Trace, err error) {
	components := [3]trace.Trace{in.North, in.East, in.Vertical}
	out := [3]trace.Trace{}

	for i, raw := range components {
		tr := raw.Detrend().Taper(taperFraction)

		data, rerr := response.Remove(tr.Data(), tr.SampleRate(), in.TranslationResponse, response.DefaultWaterLevelDB)
		if rerr != nil {
			return trace.Trace{}, trace.Trace{}, trace.Trace{}, fmt.Errorf("conditioning translation: %w", rerr)
		}

		phys, terr := trace.New(data, tr.SampleRate(), tr.Start())
		if terr != nil {
			return trace.Trace{}, trace.Trace{}, trace.Trace{}, terr
		}

		if in.VelocityInput {
			phys = phys.Differentiate()
		}

		out[i] = phys
	}

	return out[0], out[1], out[2], nil
}

// mainSet applies the zone lowpass, drift highpass, decimation, and the
// optional microseism bandstop to every trace of the set.
func mainSet(base Set, zp zone.Parameters) (*Set, error) {
	out := Set{}
	dst := []*trace.Trace{&out.Rotation, &out.North, &out.East, &out.Vertical}
	src := []trace.Trace{base.Rotation, base.North, base.East, base.Vertical}

	for i, tr := range src {
		rate := tr.SampleRate()

		lp := filt.ButterworthLP(zp.LowpassHz, lowpassOrder, rate)
		hp := filt.ButterworthHP(dcCutoffHz, highpassOrder, rate)
		if lp == nil || hp == nil {
			return nil, fmt.Errorf("condition: lowpass %v Hz unrealizable at %v Hz", zp.LowpassHz, rate)
		}

		filtered, err := zeroPhase(tr, lp)
		if err != nil {
			return nil, err
		}

		filtered, err = zeroPhase(filtered, hp)
		if err != nil {
			return nil, err
		}

		decimated, err := decimate(filtered, zp.Decimation, zp.LowpassHz)
		if err != nil {
			return nil, err
		}

		if zp.Bandstop {
			bs := filt.Bandstop(zp.BandstopLowHz, zp.BandstopHighHz, bandstopOrder, decimated.SampleRate())
			if bs == nil {
				return nil, fmt.Errorf("condition: bandstop unrealizable at %v Hz", decimated.SampleRate())
			}

			decimated, err = zeroPhase(decimated, bs)
			if err != nil {
				return nil, err
			}

			decimated = decimated.Taper(taperFraction)
		}

		*dst[i] = decimated
	}

	return &out, nil
}

// pcodaSet decimates by the P-coda factor and highpasses at 0.5 Hz.
func pcodaSet(base Set, zp zone.Parameters) (*Set, error) {
	out := Set{}
	dst := []*trace.Trace{&out.Rotation, &out.North, &out.East, &out.Vertical}
	src := []trace.Trace{base.Rotation, base.North, base.East, base.Vertical}

	for i, tr := range src {
		decimated, err := decimate(tr, zp.PCodaDecimation, tr.SampleRate()/2)
		if err != nil {
			return nil, err
		}

		hp := filt.ButterworthHP(pcodaHighpassHz, highpassOrder, decimated.SampleRate())
		if hp == nil {
			return nil, fmt.Errorf("condition: p-coda highpass unrealizable at %v Hz", decimated.SampleRate())
		}

		filtered, err := zeroPhase(decimated, hp)
		if err != nil {
			return nil, err
		}

		*dst[i] = filtered
	}

	return &out, nil
}

// decimate reduces the sample rate by an integer factor, guarding against
// aliasing with an extra lowpass at 0.4 times the new rate when prior
// filtering has not already removed the content above it.
func decimate(tr trace.Trace, factor int, contentCutoffHz float64) (trace.Trace, error) {
	if factor <= 1 {
		return tr, nil
	}

	newRate := tr.SampleRate() / float64(factor)
	guard := 0.4 * newRate

	if contentCutoffHz > guard {
		lp := filt.ButterworthLP(guard, 4, tr.SampleRate())
		if lp == nil {
			return trace.Trace{}, fmt.Errorf("condition: decimation guard unrealizable at %v Hz", tr.SampleRate())
		}

		var err error
		tr, err = zeroPhase(tr, lp)
		if err != nil {
			return trace.Trace{}, err
		}
	}

	return tr.Decimate(factor)
}

func zeroPhase(tr trace.Trace, coeffs []filt.Coefficients) (trace.Trace, error) {
	data, err := filt.ZeroPhase(tr.Data(), coeffs)
	if err != nil {
		if errors.Is(err, filt.ErrTooShort) {
			return trace.Trace{}, fmt.Errorf("%w: %d samples", ErrTraceTooShort, tr.Len())
		}

		return trace.Trace{}, err
	}

	out, err := trace.New(data, tr.SampleRate(), tr.Start())
	if err != nil {
		return trace.Trace{}, err
	}

	return out, nil
}
