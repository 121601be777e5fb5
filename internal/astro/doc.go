// Package astro tracks the sun relative to the facades of a building.
//
// SunPosition gives the sun's azimuth and elevation for a site; a Facade
// turns that into an Exposure (front, margin or back, and whether the
// facade is in sunlight). Tracker evaluates all configured facades at once
// for publishing.
//
//	tracker, err := astro.NewTracker(51.5, -0.13, []astro.FacadeConfig{
//	    {ID: "south", Orientation: 180, NegativeOffset: 60, PositiveOffset: 60, Margin: 10},
//	})
//	for _, s := range tracker.States(time.Now()) {
//	    fmt.Println(s.ID, s.Side, s.FacingSun)
//	}
package astro
