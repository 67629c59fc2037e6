// Package geo derives source-receiver geometry from event and station
// coordinates: epicentral distance and theoretical backazimuth.
package geo

import (
	"errors"
	"math"

	"github.com/golang/geo/s2"
)

// ErrInvalidGeometry indicates non-finite or out-of-range coordinates.
var ErrInvalidGeometry = errors.New("geo: invalid geometry")

// EarthRadiusKm is the mean Earth radius used for angle-to-distance
// conversion.
const EarthRadiusKm = 6371.0

// Geometry holds the derived source-receiver quantities. Computed once per
// run and read-only afterwards.
type Geometry struct {
	EventLat   float64
	EventLon   float64
	StationLat float64
	StationLon float64

	// DepthKm is the hypocenter depth.
	DepthKm float64

	// DistanceKm and DistanceDeg are the epicentral great-circle distance.
	DistanceKm  float64
	DistanceDeg float64

	// BackazimuthDeg is the theoretical backazimuth: the initial bearing
	// from the station back toward the event, in [0, 360).
	BackazimuthDeg float64
}

// New validates the coordinates and computes the geometry.
func New(evLat, evLon, depthKm, stLat, stLon float64) (Geometry, error) {
	for _, v := range []float64{evLat, evLon, depthKm, stLat, stLon} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Geometry{}, ErrInvalidGeometry
		}
	}

	if math.Abs(evLat) > 90 || math.Abs(stLat) > 90 {
		return Geometry{}, ErrInvalidGeometry
	}

	if math.Abs(evLon) > 180 || math.Abs(stLon) > 180 {
		return Geometry{}, ErrInvalidGeometry
	}

	if depthKm < 0 {
		return Geometry{}, ErrInvalidGeometry
	}

	event := s2.LatLngFromDegrees(evLat, evLon)
	station := s2.LatLngFromDegrees(stLat, stLon)

	angle := event.Distance(station)

	return Geometry{
		EventLat:       evLat,
		EventLon:       evLon,
		StationLat:     stLat,
		StationLon:     stLon,
		DepthKm:        depthKm,
		DistanceKm:     angle.Radians() * EarthRadiusKm,
		DistanceDeg:    angle.Degrees(),
		BackazimuthDeg: bearing(station, event),
	}, nil
}

// bearing returns the initial great-circle bearing from p1 to p2 in
// degrees, normalized to [0, 360). 0 is North, 90 is East.
func bearing(p1, p2 s2.LatLng) float64 {
	lat1 := p1.Lat.Radians()
	lat2 := p2.Lat.Radians()
	lonDiff := p2.Lng.Radians() - p1.Lng.Radians()

	y := math.Sin(lonDiff) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(lonDiff)

	deg := math.Atan2(y, x) * 180 / math.Pi

	return math.Mod(deg+360, 360)
}
