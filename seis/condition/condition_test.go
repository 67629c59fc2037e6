package condition

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/Nicolucas/RLdatabase/seis/response"
	"github.com/Nicolucas/RLdatabase/seis/trace"
	"github.com/Nicolucas/RLdatabase/seis/zone"
)

const testRate = 20.0

// flat returns a response with no poles or zeros, so removal is a plain
// division by gain*sensitivity; convenient for checking stage arithmetic.
func flat(sensitivity float64) response.PAZ {
	return response.PAZ{Gain: 1, Sensitivity: sensitivity}
}

func sineTrace(t *testing.T, freq, amp float64, n int) trace.Trace {
	t.Helper()

	data := make([]float64, n)
	for i := range data {
		data[i] = amp * math.Sin(2*math.Pi*freq*float64(i)/testRate)
	}

	tr, err := trace.New(data, testRate, time.Time{})
	if err != nil {
		t.Fatal(err)
	}

	return tr
}

func testInput(t *testing.T, n int) Input {
	t.Helper()

	return Input{
		Rotation:            sineTrace(t, 0.1, 100, n),
		North:               sineTrace(t, 0.1, 50, n),
		East:                sineTrace(t, 0.1, 30, n),
		Vertical:            sineTrace(t, 0.1, 10, n),
		RotationResponse:    flat(2),
		TranslationResponse: flat(1),
	}
}

// interiorPeak measures amplitude away from taper and filter edges.
func interiorPeak(tr trace.Trace) float64 {
	data := tr.Data()
	lo := len(data) / 4
	hi := 3 * len(data) / 4

	var peak float64
	for _, v := range data[lo:hi] {
		if a := math.Abs(v); a > peak {
			peak = a
		}
	}

	return peak
}

func TestRun_MissingRotationResponse(t *testing.T) {
	in := testInput(t, 4096)
	in.RotationResponse = response.PAZ{}

	_, err := Run(in, zone.Classify(500))
	if !errors.Is(err, response.ErrMissingResponse) {
		t.Fatalf("err = %v, want ErrMissingResponse", err)
	}
}

func TestRun_MissingTranslationResponse(t *testing.T) {
	in := testInput(t, 4096)
	in.TranslationResponse = response.PAZ{}

	_, err := Run(in, zone.Classify(500))
	if !errors.Is(err, response.ErrMissingResponse) {
		t.Fatalf("err = %v, want ErrMissingResponse", err)
	}
}

func TestRun_Misaligned(t *testing.T) {
	in := testInput(t, 4096)
	in.East = sineTrace(t, 0.1, 30, 4000)

	_, err := Run(in, zone.Classify(500))
	if !errors.Is(err, ErrMisaligned) {
		t.Fatalf("err = %v, want ErrMisaligned", err)
	}
}

func TestRun_TooShort(t *testing.T) {
	in := testInput(t, 8)

	_, err := Run(in, zone.Classify(500))
	if !errors.Is(err, ErrTraceTooShort) {
		t.Fatalf("err = %v, want ErrTraceTooShort", err)
	}
}

func TestRun_DecimatedRate(t *testing.T) {
	tests := []struct {
		distanceKm float64
		wantMain   float64
		wantPCoda  float64
	}{
		{100, testRate / 2, testRate},
		{500, testRate / 2, testRate},
		{5000, testRate / 4, testRate / 2},
	}

	for _, tt := range tests {
		out, err := Run(testInput(t, 16384), zone.Classify(tt.distanceKm))
		if err != nil {
			t.Fatalf("d=%v: %v", tt.distanceKm, err)
		}

		if got := out.Main.SampleRate(); got != tt.wantMain {
			t.Fatalf("d=%v: main rate = %v, want %v", tt.distanceKm, got, tt.wantMain)
		}

		if got := out.PCoda.SampleRate(); got != tt.wantPCoda {
			t.Fatalf("d=%v: p-coda rate = %v, want %v", tt.distanceKm, got, tt.wantPCoda)
		}

		// All traces of a set share rate and length.
		for _, tr := range []trace.Trace{out.Main.North, out.Main.East, out.Main.Vertical} {
			if !trace.Aligned(out.Main.Rotation, tr) {
				t.Fatalf("d=%v: main set not aligned", tt.distanceKm)
			}
		}
	}
}

func TestRun_RotationUnitConversion(t *testing.T) {
	// Sensitivity 2 counts per nrad/s: a 100-count sine is 50 nrad/s.
	out, err := Run(testInput(t, 8192), zone.Classify(500))
	if err != nil {
		t.Fatal(err)
	}

	peak := interiorPeak(out.Main.Rotation)
	if math.Abs(peak-50) > 2 {
		t.Fatalf("rotation peak = %v nrad/s, want ~50", peak)
	}
}

func TestRun_VelocityDifferentiated(t *testing.T) {
	in := testInput(t, 8192)
	in.VelocityInput = true

	out, err := Run(in, zone.Classify(500))
	if err != nil {
		t.Fatal(err)
	}

	// d/dt of a 0.1 Hz, 50 nm/s sine peaks at w*50 nm/s^2.
	want := 2 * math.Pi * 0.1 * 50
	peak := interiorPeak(out.Main.North)
	if math.Abs(peak-want) > 0.05*want {
		t.Fatalf("north acceleration peak = %v, want ~%v", peak, want)
	}
}

func TestRun_LowpassRemovesHighFrequency(t *testing.T) {
	in := testInput(t, 8192)

	// Stack a 4 Hz tone on the north component; the local zone's 2 Hz
	// lowpass must remove it.
	n := in.North.Data()
	stacked := make([]float64, len(n))
	for i := range stacked {
		stacked[i] = n[i] + 40*math.Sin(2*math.Pi*4*float64(i)/testRate)
	}

	var err error
	in.North, err = trace.New(stacked, testRate, time.Time{})
	if err != nil {
		t.Fatal(err)
	}

	out, err := Run(in, zone.Classify(500))
	if err != nil {
		t.Fatal(err)
	}

	// The 0.1 Hz carrier (peak 50) must dominate; the 4 Hz tone would
	// have pushed the peak toward 90.
	peak := interiorPeak(out.Main.North)
	if peak > 60 {
		t.Fatalf("north peak = %v, 4 Hz tone not removed", peak)
	}
}

func TestRun_CloseZoneKeepsToneBelowCutoff(t *testing.T) {
	// A 3 Hz tone sits inside the close zone's 4 Hz passband and below
	// the 5 Hz Nyquist after decimation, so no anti-alias guard filter
	// may touch it. The order-2 zero-phase lowpass leaves |H|^2 = 0.76
	// of the amplitude; the decimated sampling grid sees 0.95 of the
	// crest.
	in := testInput(t, 8192)
	in.RotationResponse = flat(1)

	data := make([]float64, 8192)
	for i := range data {
		data[i] = 50 * math.Sin(2*math.Pi*3*float64(i)/testRate)
	}

	var err error
	in.Rotation, err = trace.New(data, testRate, time.Time{})
	if err != nil {
		t.Fatal(err)
	}

	out, err := Run(in, zone.Classify(100))
	if err != nil {
		t.Fatal(err)
	}

	peak := interiorPeak(out.Main.Rotation)
	if peak < 30 || peak > 42 {
		t.Fatalf("rotation peak = %v, want ~36 (0.72 of 50)", peak)
	}
}

func TestRun_TeleseismicBandstop(t *testing.T) {
	n := 32768

	// Microseism-band tone at 0.13 Hz on every trace, carrier at 0.03 Hz.
	mk := func(amp float64) trace.Trace {
		data := make([]float64, n)
		for i := range data {
			tt := float64(i) / testRate
			data[i] = amp*math.Sin(2*math.Pi*0.03*tt) + amp*math.Sin(2*math.Pi*0.13*tt)
		}

		tr, err := trace.New(data, testRate, time.Time{})
		if err != nil {
			t.Fatal(err)
		}

		return tr
	}

	in := Input{
		Rotation:            mk(100),
		North:               mk(50),
		East:                mk(30),
		Vertical:            mk(10),
		RotationResponse:    flat(1),
		TranslationResponse: flat(1),
	}

	out, err := Run(in, zone.Classify(5000))
	if err != nil {
		t.Fatal(err)
	}

	// After the bandstop the 0.13 Hz tone is gone: peak ~ carrier alone.
	peak := interiorPeak(out.Main.Rotation)
	if peak > 120 {
		t.Fatalf("rotation peak = %v, microseism band not stopped", peak)
	}
}

func TestRun_PCodaHighpassRemovesCarrier(t *testing.T) {
	// The P-coda set is highpassed at 0.5 Hz: a 0.1 Hz carrier should be
	// strongly attenuated there while surviving in the main set.
	out, err := Run(testInput(t, 8192), zone.Classify(500))
	if err != nil {
		t.Fatal(err)
	}

	mainPeak := interiorPeak(out.Main.Rotation)
	pcodaPeak := interiorPeak(out.PCoda.Rotation)

	if pcodaPeak > mainPeak/10 {
		t.Fatalf("p-coda peak = %v vs main %v; 0.1 Hz carrier not removed", pcodaPeak, mainPeak)
	}
}
