package xcorr

import (
	"errors"
	"math"
	"testing"
)

func sine(freq, rate float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.Sin(2 * math.Pi * freq * float64(i) / rate)
	}

	return out
}

func TestPearson_SelfCorrelation(t *testing.T) {
	s := sine(0.5, 20, 400)

	r, err := Pearson(s, s)
	if err != nil {
		t.Fatal(err)
	}

	if math.Abs(r-1) > 1e-12 {
		t.Fatalf("self correlation = %v, want 1", r)
	}
}

func TestPearson_Negation(t *testing.T) {
	s := sine(0.5, 20, 400)
	neg := make([]float64, len(s))
	for i, v := range s {
		neg[i] = -v
	}

	r, err := Pearson(s, neg)
	if err != nil {
		t.Fatal(err)
	}

	if math.Abs(r+1) > 1e-12 {
		t.Fatalf("correlation with negation = %v, want -1", r)
	}
}

func TestPearson_ScaleAndOffsetInvariant(t *testing.T) {
	s := sine(0.5, 20, 400)
	scaled := make([]float64, len(s))
	for i, v := range s {
		scaled[i] = 3*v + 7
	}

	r, err := Pearson(s, scaled)
	if err != nil {
		t.Fatal(err)
	}

	if math.Abs(r-1) > 1e-12 {
		t.Fatalf("correlation = %v, want 1 (scale/offset invariant)", r)
	}
}

func TestPearson_Bounds(t *testing.T) {
	a := sine(0.5, 20, 200)
	b := sine(0.9, 20, 200)

	r, err := Pearson(a, b)
	if err != nil {
		t.Fatal(err)
	}

	if r < -1 || r > 1 {
		t.Fatalf("correlation %v out of [-1, 1]", r)
	}
}

func TestPearson_Degenerate(t *testing.T) {
	constant := []float64{2, 2, 2, 2}
	varying := []float64{1, 2, 3, 4}

	r, err := Pearson(constant, varying)
	if err != nil {
		t.Fatal(err)
	}

	if r != 0 {
		t.Fatalf("zero-variance correlation = %v, want 0", r)
	}
}

func TestPearson_Errors(t *testing.T) {
	if _, err := Pearson(nil, nil); !errors.Is(err, ErrEmpty) {
		t.Fatalf("empty: err = %v", err)
	}

	if _, err := Pearson([]float64{1, 2}, []float64{1}); !errors.Is(err, ErrLengthMismatch) {
		t.Fatalf("mismatch: err = %v", err)
	}
}

func TestPerWindow_DiscardsPartial(t *testing.T) {
	a := sine(0.5, 20, 105)
	b := sine(0.5, 20, 105)

	out, err := PerWindow(a, b, 20)
	if err != nil {
		t.Fatal(err)
	}

	if len(out) != 5 {
		t.Fatalf("windows = %d, want 5 (trailing partial discarded)", len(out))
	}

	for i, r := range out {
		if math.Abs(r-1) > 1e-12 {
			t.Fatalf("window %d: r = %v, want 1", i, r)
		}
	}
}

func TestPerWindow_Errors(t *testing.T) {
	if _, err := PerWindow([]float64{1}, []float64{1}, 0); !errors.Is(err, ErrEmpty) {
		t.Fatalf("bad window: err = %v", err)
	}

	if _, err := PerWindow([]float64{1, 2}, []float64{1}, 1); !errors.Is(err, ErrLengthMismatch) {
		t.Fatalf("mismatch: err = %v", err)
	}
}
