package astro

import (
	"fmt"
	"time"
)

// FacadeState is a facade's exposure at a point in time.
type FacadeState struct {
	ID   string    `json:"id"`
	Time time.Time `json:"time"`
	Sun  Position  `json:"sun"`
	Exposure
}

// Tracker evaluates the configured facades of one site.
type Tracker struct {
	lat, lon float64
	facades  []*Facade
}

// NewTracker validates the site coordinates and every facade. Facade IDs
// must be unique.
func NewTracker(lat, lon float64, facades []FacadeConfig) (*Tracker, error) {
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return nil, fmt.Errorf("%w: %.4f,%.4f", ErrInvalidLocation, lat, lon)
	}

	t := &Tracker{lat: lat, lon: lon, facades: make([]*Facade, 0, len(facades))}
	seen := make(map[string]struct{}, len(facades))
	for _, cfg := range facades {
		f, err := NewFacade(cfg)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[cfg.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate id %q", ErrInvalidFacade, cfg.ID)
		}
		seen[cfg.ID] = struct{}{}
		t.facades = append(t.facades, f)
	}
	return t, nil
}

// Facades returns the facades in configuration order.
func (t *Tracker) Facades() []*Facade {
	out := make([]*Facade, len(t.facades))
	copy(out, t.facades)
	return out
}

// States evaluates every facade at the given instant.
func (t *Tracker) States(at time.Time) []FacadeState {
	sun := SunPosition(at, t.lat, t.lon)
	states := make([]FacadeState, 0, len(t.facades))
	for _, f := range t.facades {
		states = append(states, FacadeState{
			ID:       f.ID(),
			Time:     at,
			Sun:      sun,
			Exposure: f.Evaluate(sun.Azimuth, sun.Elevation),
		})
	}
	return states
}
