// Package zone classifies an event into a processing zone by epicentral
// distance and exposes the zone-dependent conditioning parameters.
package zone

// Kind names a processing zone.
type Kind int

const (
	// Close covers events up to 333.33 km (3 degrees).
	Close Kind = iota
	// Local covers events up to 1111.11 km (10 degrees).
	Local
	// Teleseismic covers everything beyond the local range.
	Teleseismic
)

// String returns the zone name.
func (k Kind) String() string {
	switch k {
	case Close:
		return "close"
	case Local:
		return "local"
	case Teleseismic:
		return "teleseismic"
	default:
		return "unknown"
	}
}

// Zone boundaries in km. Upper bounds are inclusive.
const (
	closeMaxKm = 333.33
	localMaxKm = 1111.11
)

// Parameters holds the conditioning and correlation settings derived from
// the epicentral distance. Values are fixed per zone; there are no error
// conditions (negative distances clamp to zero).
type Parameters struct {
	Kind       Kind
	DistanceKm float64

	// LowpassHz is the zero-phase lowpass cutoff applied during conditioning.
	LowpassHz float64

	// Decimation is the integer decimation factor for the main trace set.
	Decimation int

	// PCodaDecimation is the decimation factor for the P-coda trace set:
	// 2 in the teleseismic zone (where the main set uses 4), 1 otherwise
	// (the P-coda set keeps the original rate for close and local events).
	PCodaDecimation int

	// WindowSeconds is the coarse correlation window length.
	WindowSeconds float64

	// Bandstop enables removal of the secondary microseism band.
	Bandstop bool

	// BandstopLowHz and BandstopHighHz bound the stopped band (5-12 s
	// period, 0.083-0.2 Hz). Only meaningful when Bandstop is set.
	BandstopLowHz  float64
	BandstopHighHz float64
}

// Classify maps an epicentral distance in km to its zone parameters.
// Pure function; distance is clamped to >= 0 before the lookup.
func Classify(distanceKm float64) Parameters {
	if distanceKm < 0 {
		distanceKm = 0
	}

	p := Parameters{DistanceKm: distanceKm}

	switch {
	case distanceKm <= closeMaxKm:
		p.Kind = Close
		p.LowpassHz = 4.0
		p.Decimation = 2
		p.PCodaDecimation = 1
		p.WindowSeconds = 3
	case distanceKm <= localMaxKm:
		p.Kind = Local
		p.LowpassHz = 2.0
		p.Decimation = 2
		p.PCodaDecimation = 1
		p.WindowSeconds = 5
	default:
		p.Kind = Teleseismic
		p.LowpassHz = 1.0
		p.Decimation = 4
		p.PCodaDecimation = 2
		p.WindowSeconds = 120
		p.Bandstop = true
		p.BandstopLowHz = 0.083
		p.BandstopHighHz = 0.2
	}

	return p
}
