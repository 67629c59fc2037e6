package synth

import (
	"math"
	"testing"
	"time"

	"github.com/Nicolucas/RLdatabase/seis/rotate"
	"github.com/Nicolucas/RLdatabase/seis/trace"
)

func TestSine_FrequencyAndAmplitude(t *testing.T) {
	g := NewGenerator(WithSampleRate(100))

	data, err := g.Sine(1, 2, 400)
	if err != nil {
		t.Fatal(err)
	}

	var peak float64
	for _, v := range data {
		if a := math.Abs(v); a > peak {
			peak = a
		}
	}

	if math.Abs(peak-2) > 1e-3 {
		t.Fatalf("peak = %v, want 2", peak)
	}

	// One full period at 1 Hz and 100 Hz sampling is 100 samples.
	if math.Abs(data[0]-data[100]) > 1e-9 {
		t.Fatalf("samples one period apart differ: %v vs %v", data[0], data[100])
	}
}

func TestSine_InvalidArgs(t *testing.T) {
	g := NewGenerator()

	if _, err := g.Sine(1, 1, 0); err == nil {
		t.Fatal("expected error for zero samples")
	}

	if _, err := NewGenerator(WithSampleRate(0)).Sine(1, 1, 10); err == nil {
		t.Fatal("expected error for zero sample rate")
	}
}

func TestWhiteNoise_DeterministicAndBounded(t *testing.T) {
	first, err := NewGenerator(WithSeed(7)).WhiteNoise(0.5, 1000)
	if err != nil {
		t.Fatal(err)
	}

	second, err := NewGenerator(WithSeed(7)).WhiteNoise(0.5, 1000)
	if err != nil {
		t.Fatal(err)
	}

	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("sample %d differs between identically seeded runs", i)
		}

		if math.Abs(first[i]) > 0.5 {
			t.Fatalf("sample %d = %v outside [-0.5, 0.5]", i, first[i])
		}
	}
}

func TestEvent_TransverseProjectionRecoversRatio(t *testing.T) {
	g := NewGenerator(WithSampleRate(10))

	rec, err := g.Event(EventParams{
		BackazimuthDeg: 123,
		AmplitudeRatio: 2,
		SignalHz:       0.2,
		LeakHz:         0.4,
		DurationSec:    300,
	}, time.Time{})
	if err != nil {
		t.Fatal(err)
	}

	transverse, err := rotate.Transverse(rec.North.Data(), rec.East.Data(), 123)
	if err != nil {
		t.Fatal(err)
	}

	rot := rec.Rotation.Data()
	for i := range transverse {
		if math.Abs(transverse[i]-2*rot[i]) > 1e-9 {
			t.Fatalf("sample %d: transverse = %v, want %v", i, transverse[i], 2*rot[i])
		}
	}
}

func TestEvent_TracesAligned(t *testing.T) {
	rec, err := NewGenerator().Event(EventParams{
		BackazimuthDeg: 45,
		AmplitudeRatio: 1,
		SignalHz:       0.1,
		LeakHz:         0.3,
		NoiseAmplitude: 0.01,
		DurationSec:    60,
	}, time.Time{})
	if err != nil {
		t.Fatal(err)
	}

	for _, tr := range []trace.Trace{rec.North, rec.East, rec.Vertical} {
		if !trace.Aligned(rec.Rotation, tr) {
			t.Fatal("recording traces not aligned")
		}
	}
}
