package arrival

import (
	"math"
	"testing"

	"github.com/Nicolucas/RLdatabase/seis/zone"
)

func TestEstimate_Ordering(t *testing.T) {
	tests := []struct {
		distanceKm float64
		depthKm    float64
	}{
		{100, 10},
		{500, 33},
		{5000, 100},
		{12000, 600},
	}

	for _, tt := range tests {
		got := Estimate(tt.distanceKm, tt.depthKm, 0)

		if got.P <= 0 {
			t.Fatalf("d=%v: P = %v, want > 0", tt.distanceKm, got.P)
		}

		if got.S <= got.P {
			t.Fatalf("d=%v: S = %v not after P = %v", tt.distanceKm, got.S, got.P)
		}

		// The fitted surface curve overtakes the body-wave estimates
		// only at teleseismic range.
		if tt.distanceKm > 1111.11 && got.Surface <= got.S {
			t.Fatalf("d=%v: surface = %v not after S = %v", tt.distanceKm, got.Surface, got.S)
		}
	}
}

func TestEstimate_OriginOffsetShifts(t *testing.T) {
	base := Estimate(500, 33, 0)
	shifted := Estimate(500, 33, 120)

	if shifted.P != base.P+120 {
		t.Fatalf("P = %v, want %v", shifted.P, base.P+120)
	}

	if shifted.S != base.S+120 {
		t.Fatalf("S = %v, want %v", shifted.S, base.S+120)
	}

	if shifted.Surface != base.Surface+120 {
		t.Fatalf("surface = %v, want %v", shifted.Surface, base.Surface+120)
	}
}

func TestEstimate_WholeSeconds(t *testing.T) {
	got := Estimate(777, 42, 13.7)

	for _, v := range []float64{got.P, got.S, got.Surface} {
		if v != math.Floor(v) {
			t.Fatalf("arrival %v not floored to whole seconds", v)
		}
	}
}

func TestEstimate_DepthDelaysArrivals(t *testing.T) {
	shallow := Estimate(30, 5, 0)
	deep := Estimate(30, 300, 0)

	if deep.P <= shallow.P {
		t.Fatalf("deep P = %v not after shallow P = %v", deep.P, shallow.P)
	}
}

func TestSurfaceFit_MatchesTableScale(t *testing.T) {
	slope, _ := surfaceFit()

	// The table climbs 3600 s over 135 degrees, roughly 26.7 s/degree.
	if slope < 25 || slope > 28 {
		t.Fatalf("slope = %v s/deg, want ~26.7", slope)
	}
}

func TestAnalysis_WindowOrdering(t *testing.T) {
	kinds := []zone.Kind{zone.Close, zone.Local, zone.Teleseismic}
	distances := []float64{100, 500, 5000}

	for i, kind := range kinds {
		times := Estimate(distances[i], 33, 0)
		w := Analysis(times, distances[i], kind)

		checks := []struct {
			name   string
			lo, hi float64
		}{
			{"p", w.PStart, w.PEnd},
			{"s", w.SStart, w.SEnd},
			{"surf initial", w.SurfInitialStart, w.SurfInitialEnd},
			{"surf later", w.SurfLaterStart, w.SurfLaterEnd},
		}

		for _, c := range checks {
			if c.hi <= c.lo {
				t.Fatalf("%v: %s window [%v, %v] not increasing", kind, c.name, c.lo, c.hi)
			}
		}

		if w.SurfLaterStart != w.SurfInitialEnd {
			t.Fatalf("%v: surface windows not contiguous", kind)
		}

		if w.PStart != times.P {
			t.Fatalf("%v: p window start = %v, want %v", kind, w.PStart, times.P)
		}
	}
}

func TestAnalysis_TeleseismicWindowsGrowWithDistance(t *testing.T) {
	near := Analysis(Estimate(3000, 33, 0), 3000, zone.Teleseismic)
	far := Analysis(Estimate(9000, 33, 0), 9000, zone.Teleseismic)

	nearLen := near.SurfInitialEnd - near.SurfInitialStart
	farLen := far.SurfInitialEnd - far.SurfInitialStart

	if farLen <= nearLen {
		t.Fatalf("initial surface window %v s at 9000 km, %v s at 3000 km", farLen, nearLen)
	}

	if want := 9000.0 / 1000 * 50; farLen != want {
		t.Fatalf("initial surface window = %v s, want %v", farLen, want)
	}
}

func TestWindows_PCodaEnd(t *testing.T) {
	w := Windows{SurfInitialStart: 100, SurfInitialEnd: 200}

	if got := w.PCodaEnd(); got != 150 {
		t.Fatalf("p-coda end = %v, want 150", got)
	}
}
