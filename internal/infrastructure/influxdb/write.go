package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// Measurement names.
const (
	MeasurementEphemeris = "ephemeris"
	MeasurementFacade    = "astro_facade"
)

// DayRecord is the calendar summary of one day.
type DayRecord struct {
	Date        time.Time
	Country     string
	Holiday     bool
	HolidayName string
	Weekend     bool
	Daysets     map[string]bool
}

// FacadeRecord is the sun exposure of one facade at one instant.
type FacadeRecord struct {
	ID        string
	Time      time.Time
	Side      string
	FacingSun bool
	Bearing   float64
	Azimuth   float64
	Elevation float64
}

// WriteEphemeris queues a day summary. Nothing is written after Close.
func (c *Client) WriteEphemeris(r DayRecord) {
	c.writePoint(EphemerisPoint(r))
}

// WriteFacade queues a facade exposure sample.
func (c *Client) WriteFacade(r FacadeRecord) {
	c.writePoint(FacadePoint(r))
}

// EphemerisPoint builds the point for a day: tagged by country, one boolean
// field per dayset prefixed "dayset_".
func EphemerisPoint(r DayRecord) *write.Point {
	fields := map[string]any{
		"holiday": r.Holiday,
		"weekend": r.Weekend,
	}
	if r.HolidayName != "" {
		fields["holiday_name"] = r.HolidayName
	}
	for name, member := range r.Daysets {
		fields["dayset_"+name] = member
	}

	tags := map[string]string{}
	if r.Country != "" {
		tags["country"] = r.Country
	}
	return write.NewPoint(MeasurementEphemeris, tags, fields, r.Date)
}

// FacadePoint builds the point for a facade sample, tagged by facade and side.
func FacadePoint(r FacadeRecord) *write.Point {
	return write.NewPoint(MeasurementFacade,
		map[string]string{"facade": r.ID, "side": r.Side},
		map[string]any{
			"facing_sun": r.FacingSun,
			"bearing":    r.Bearing,
			"azimuth":    r.Azimuth,
			"elevation":  r.Elevation,
		},
		r.Time,
	)
}
