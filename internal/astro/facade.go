package astro

import (
	"fmt"
	"math"
	"strings"
)

// Side says where the sun stands relative to a facade.
type Side string

const (
	// SideFront: the sun is inside the facade's exposure window.
	SideFront Side = "front"
	// SideMargin: the sun is just outside the window, within the margin.
	SideMargin Side = "margin"
	// SideBack: the sun is behind the facade.
	SideBack Side = "back"
)

// FacadeConfig describes a building facade. Orientation is the compass
// bearing the facade faces. The sun is in front of the facade while its
// azimuth lies between Orientation-NegativeOffset and
// Orientation+PositiveOffset; Margin widens that window on both sides.
type FacadeConfig struct {
	ID             string `json:"id" yaml:"id"`
	Orientation    int    `json:"orientation" yaml:"orientation"`
	NegativeOffset int    `json:"negative_offset" yaml:"negative_offset"`
	PositiveOffset int    `json:"positive_offset" yaml:"positive_offset"`
	Margin         int    `json:"margin" yaml:"margin"`
}

// Validate checks every field and reports all problems at once.
func (c FacadeConfig) Validate() error {
	var problems []string
	if strings.TrimSpace(c.ID) == "" {
		problems = append(problems, "id is required")
	}
	if c.Orientation < 0 || c.Orientation > 359 {
		problems = append(problems, fmt.Sprintf("orientation %d outside 0-359", c.Orientation))
	}
	if c.NegativeOffset < 0 || c.NegativeOffset > 90 {
		problems = append(problems, fmt.Sprintf("negative_offset %d outside 0-90", c.NegativeOffset))
	}
	if c.PositiveOffset < 0 || c.PositiveOffset > 90 {
		problems = append(problems, fmt.Sprintf("positive_offset %d outside 0-90", c.PositiveOffset))
	}
	if c.Margin < 0 {
		problems = append(problems, fmt.Sprintf("margin %d is negative", c.Margin))
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w %q: %s", ErrInvalidFacade, c.ID, strings.Join(problems, "; "))
	}
	return nil
}

// Facade is a validated facade configuration.
type Facade struct {
	cfg FacadeConfig
}

// NewFacade validates cfg.
func NewFacade(cfg FacadeConfig) (*Facade, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Facade{cfg: cfg}, nil
}

// ID returns the facade identifier.
func (f *Facade) ID() string { return f.cfg.ID }

// Orientation returns the bearing the facade faces.
func (f *Facade) Orientation() int { return f.cfg.Orientation }

// NegativeOffset returns the window width counter-clockwise of Orientation.
func (f *Facade) NegativeOffset() int { return f.cfg.NegativeOffset }

// PositiveOffset returns the window width clockwise of Orientation.
func (f *Facade) PositiveOffset() int { return f.cfg.PositiveOffset }

// Margin returns the extra width on each side of the window.
func (f *Facade) Margin() int { return f.cfg.Margin }

// Exposure is the relation of the sun to a facade at one instant.
type Exposure struct {
	// FacingSun is true when the sun is up and in front of the facade.
	FacingSun bool `json:"facing_sun"`
	// Bearing is the sun's azimuth relative to the facade orientation in
	// (-180, 180]; negative is counter-clockwise.
	Bearing float64 `json:"bearing"`
	Side    Side    `json:"side"`
}

// Evaluate places the sun at azimuth/elevation relative to the facade.
func (f *Facade) Evaluate(azimuth, elevation float64) Exposure {
	bearing := relativeBearing(azimuth, float64(f.cfg.Orientation))
	low := -float64(f.cfg.NegativeOffset)
	high := float64(f.cfg.PositiveOffset)
	margin := float64(f.cfg.Margin)

	side := SideBack
	switch {
	case bearing >= low && bearing <= high:
		side = SideFront
	case bearing >= low-margin && bearing <= high+margin:
		side = SideMargin
	}

	return Exposure{
		FacingSun: side == SideFront && elevation > 0,
		Bearing:   math.Round(bearing*100) / 100,
		Side:      side,
	}
}

// relativeBearing returns azimuth-orientation normalised to (-180, 180].
func relativeBearing(azimuth, orientation float64) float64 {
	d := mod(azimuth-orientation, 360)
	if d > 180 {
		d -= 360
	}
	return d
}
