// Package arrival provides a simple travel-time model for the analysis
// windows of an event recording: straight-path P and S estimates and a
// surface-wave arrival from an IASP91-derived travel-time table.
package arrival

import (
	"math"

	"github.com/Nicolucas/RLdatabase/seis/zone"
)

// Straight-path velocities, km/s. Deliberately coarse: the windows built
// from these arrivals are tens of seconds wide.
const (
	pVelocityKmS = 7.8
	sVelocityKmS = 4.4
)

const degreeKm = 111.11

// iasp91Surface tabulates surface-wave travel times (seconds) at 5 degree
// increments of epicentral distance, 0 through 135 degrees.
var iasp91Surface = [28]float64{
	0, 120, 240, 372, 504, 660, 780, 912, 1068, 1164, 1320, 1446, 1596,
	1716, 1848, 1980, 2136, 2244, 2388, 2520, 2652, 2784, 2928, 3054,
	3216, 3312, 3468, 3600,
}

// Times holds arrival estimates in seconds after the trace start.
type Times struct {
	P       float64
	S       float64
	Surface float64
}

// Estimate computes the arrival times for an event at the given epicentral
// distance and depth. originOffsetSec is the event origin time relative to
// the trace start. Estimates are floored to whole seconds.
func Estimate(distanceKm, depthKm, originOffsetSec float64) Times {
	hypo := math.Sqrt(distanceKm*distanceKm + depthKm*depthKm)

	return Times{
		P:       math.Floor(originOffsetSec + hypo/pVelocityKmS),
		S:       math.Floor(originOffsetSec + hypo/sVelocityKmS),
		Surface: math.Floor(originOffsetSec + surfaceTravelTime(distanceKm/degreeKm)),
	}
}

// surfaceTravelTime evaluates the least-squares line through the IASP91
// surface-wave table at the given distance in degrees.
func surfaceTravelTime(distanceDeg float64) float64 {
	slope, intercept := surfaceFit()

	t := slope*distanceDeg + intercept
	if t < 0 {
		return 0
	}

	return t
}

func surfaceFit() (slope, intercept float64) {
	n := float64(len(iasp91Surface))

	var sumX, sumY, sumXY, sumXX float64
	for i, t := range iasp91Surface {
		x := float64(i) * 5
		sumX += x
		sumY += t
		sumXY += x * t
		sumXX += x * x
	}

	slope = (n*sumXY - sumX*sumY) / (n*sumXX - sumX*sumX)
	intercept = (sumY - slope*sumX) / n

	return slope, intercept
}

// Windows are the analysis intervals of one event, in seconds after the
// trace start.
type Windows struct {
	PStart, PEnd float64
	SStart, SEnd float64
	// SurfInitialStart through SurfLaterEnd bracket the early and late
	// surface-wave trains.
	SurfInitialStart, SurfInitialEnd float64
	SurfLaterStart, SurfLaterEnd     float64
}

// PCodaEnd is the upper bound of the P-coda analysis segment: halfway into
// the initial surface-wave window.
func (w Windows) PCodaEnd() float64 {
	return (w.SurfInitialStart + w.SurfInitialEnd) / 2
}

// Analysis derives the zone-dependent windows from the arrival estimates.
// Surface-wave window lengths grow with distance in the teleseismic zone
// (50 s and 60 s per 1000 km) and are fixed for closer events.
func Analysis(t Times, distanceKm float64, kind zone.Kind) Windows {
	var w Windows

	switch kind {
	case zone.Teleseismic:
		w.PStart = t.P
		w.PEnd = t.P + math.Floor((t.S-t.P)/4)
		w.SStart = t.S - 0.001*(t.S-t.P)
		w.SEnd = t.S + 150
		w.SurfInitialStart = t.Surface - 20
		w.SurfInitialEnd = w.SurfInitialStart + distanceKm/1000*50
		w.SurfLaterStart = w.SurfInitialEnd
		w.SurfLaterEnd = w.SurfLaterStart + distanceKm/1000*60
	case zone.Local:
		w.PStart = t.P
		w.PEnd = t.P + 20
		w.SStart = t.S - 5
		w.SEnd = w.SStart + 20
		w.SurfInitialStart = t.Surface + 20
		w.SurfInitialEnd = w.SurfInitialStart + 50
		w.SurfLaterStart = w.SurfInitialEnd
		w.SurfLaterEnd = w.SurfLaterStart + 80
	default:
		w.PStart = t.P
		w.PEnd = t.P + 7
		w.SStart = t.S
		w.SEnd = t.S + 7
		w.SurfInitialStart = t.Surface + 5
		w.SurfInitialEnd = w.SurfInitialStart + 12
		w.SurfLaterStart = w.SurfInitialEnd
		w.SurfLaterEnd = w.SurfLaterStart + 80
	}

	return w
}
