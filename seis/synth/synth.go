// Package synth generates deterministic synthetic event recordings:
// co-located rotation rate and three-component acceleration traces with a
// known backazimuth and transverse-to-rotation amplitude ratio.
package synth

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/Nicolucas/RLdatabase/seis/rotate"
	"github.com/Nicolucas/RLdatabase/seis/trace"
)

// Generator creates deterministic signals from a shared configuration.
type Generator struct {
	sampleRate float64
	seed       int64
}

// Option configures a Generator.
type Option func(*Generator)

// WithSeed sets the deterministic random seed for noise generation.
func WithSeed(seed int64) Option {
	return func(g *Generator) { g.seed = seed }
}

// WithSampleRate overrides the default 20 Hz sampling.
func WithSampleRate(rate float64) Option {
	return func(g *Generator) { g.sampleRate = rate }
}

// NewGenerator creates a configured signal generator.
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{sampleRate: 20, seed: 1}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}

	return g
}

// SampleRate returns the generator's sampling rate in Hz.
func (g *Generator) SampleRate() float64 { return g.sampleRate }

// Sine generates a sine wave.
func (g *Generator) Sine(freqHz, amplitude float64, samples int) ([]float64, error) {
	if samples <= 0 {
		return nil, fmt.Errorf("synth: sine samples must be > 0: %d", samples)
	}

	if g.sampleRate <= 0 {
		return nil, fmt.Errorf("synth: sample rate must be > 0: %f", g.sampleRate)
	}

	out := make([]float64, samples)
	step := 2 * math.Pi * freqHz / g.sampleRate
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}

	return out, nil
}

// WhiteNoise generates deterministic white noise in [-amplitude, amplitude].
func (g *Generator) WhiteNoise(amplitude float64, samples int) ([]float64, error) {
	if samples <= 0 {
		return nil, fmt.Errorf("synth: noise samples must be > 0: %d", samples)
	}

	if amplitude < 0 {
		return nil, fmt.Errorf("synth: noise amplitude must be >= 0: %f", amplitude)
	}

	out := make([]float64, samples)
	rng := rand.New(rand.NewSource(g.seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}

	return out, nil
}

// EventParams describes a synthetic event recording.
type EventParams struct {
	// BackazimuthDeg is the direction the wavefield arrives from.
	BackazimuthDeg float64
	// AmplitudeRatio is the transverse acceleration peak per unit
	// rotation rate peak. Half of it is the phase velocity the analysis
	// should recover.
	AmplitudeRatio float64
	// SignalHz is the Love-wave carrier; LeakHz an uncorrelated tone on
	// the radial component that breaks the angular degeneracy.
	SignalHz float64
	LeakHz   float64
	// NoiseAmplitude adds white noise to every component.
	NoiseAmplitude float64
	DurationSec    float64
}

// Recording is one synthetic trace set.
type Recording struct {
	Rotation trace.Trace
	North    trace.Trace
	East     trace.Trace
	Vertical trace.Trace
}

// Event synthesizes a recording whose transverse projection at the true
// backazimuth is AmplitudeRatio times the rotation rate.
func (g *Generator) Event(p EventParams, start time.Time) (*Recording, error) {
	samples := int(p.DurationSec * g.sampleRate)

	s, err := g.Sine(p.SignalHz, 1, samples)
	if err != nil {
		return nil, err
	}

	radial, err := g.Sine(p.LeakHz, 1, samples)
	if err != nil {
		return nil, err
	}

	transverse := make([]float64, samples)
	for i, v := range s {
		transverse[i] = p.AmplitudeRatio * v
	}

	n, e, err := rotate.RT2NE(radial, transverse, p.BackazimuthDeg)
	if err != nil {
		return nil, err
	}

	vertical := make([]float64, samples)

	if p.NoiseAmplitude > 0 {
		for i, component := range [][]float64{s, n, e, vertical} {
			noise, nerr := (&Generator{sampleRate: g.sampleRate, seed: g.seed + int64(i)}).
				WhiteNoise(p.NoiseAmplitude, samples)
			if nerr != nil {
				return nil, nerr
			}

			for j := range component {
				component[j] += noise[j]
			}
		}
	}

	rec := &Recording{}
	dst := []*trace.Trace{&rec.Rotation, &rec.North, &rec.East, &rec.Vertical}
	for i, data := range [][]float64{s, n, e, vertical} {
		tr, terr := trace.New(data, g.sampleRate, start)
		if terr != nil {
			return nil, terr
		}

		*dst[i] = tr
	}

	return rec, nil
}
