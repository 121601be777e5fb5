package astro

import (
	"math"
	"time"

	"github.com/sixdouglas/suncalc"
)

// Position is the apparent position of the sun in degrees. Azimuth is
// measured clockwise from north in [0, 360); elevation is above the
// horizon, negative at night. Atmospheric refraction is ignored.
type Position struct {
	Azimuth   float64 `json:"azimuth"`
	Elevation float64 `json:"elevation"`
}

// AboveHorizon reports whether the sun is up.
func (p Position) AboveHorizon() bool {
	return p.Elevation > 0
}

// SunPosition computes the sun's position at t for an observer at lat/lon
// (degrees, north and east positive).
func SunPosition(t time.Time, lat, lon float64) Position {
	p := suncalc.GetPosition(t, lat, lon)
	// suncalc measures azimuth from south towards west.
	return Position{
		Azimuth:   mod(deg(p.Azimuth)+180, 360),
		Elevation: deg(p.Altitude),
	}
}

func deg(r float64) float64 { return r * 180 / math.Pi }

// mod returns x modulo m in [0, m).
func mod(x, m float64) float64 {
	r := math.Mod(x, m)
	if r < 0 {
		r += m
	}
	return r
}
