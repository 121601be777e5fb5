package astro

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSunPosition(t *testing.T) {
	tests := []struct {
		name          string
		at            time.Time
		lat, lon      float64
		wantAzimuth   float64
		wantElevation float64
	}{
		{
			name:          "London summer solstice noon",
			at:            time.Date(2026, 6, 21, 12, 0, 0, 0, time.UTC),
			lat:           51.5,
			lon:           -0.13,
			wantAzimuth:   179,
			wantElevation: 61.9,
		},
		{
			name:          "London summer solstice midnight",
			at:            time.Date(2026, 6, 21, 0, 0, 0, 0, time.UTC),
			lat:           51.5,
			lon:           -0.13,
			wantAzimuth:   359.5,
			wantElevation: -15.1,
		},
		{
			name:          "equator equinox sunrise",
			at:            time.Date(2026, 3, 20, 6, 0, 0, 0, time.UTC),
			wantAzimuth:   90.1,
			wantElevation: -1.9,
		},
		{
			name:          "equator equinox sunset",
			at:            time.Date(2026, 3, 20, 18, 0, 0, 0, time.UTC),
			wantAzimuth:   270.1,
			wantElevation: 1.8,
		},
		{
			name:          "Munich summer morning",
			at:            time.Date(2026, 6, 21, 11, 0, 0, 0, time.FixedZone("CEST", 2*3600)),
			lat:           48.14,
			lon:           11.58,
			wantAzimuth:   120.6,
			wantElevation: 53.6,
		},
		{
			name:          "Sydney summer morning",
			at:            time.Date(2026, 12, 21, 1, 0, 0, 0, time.UTC),
			lat:           -33.87,
			lon:           151.21,
			wantAzimuth:   51.5,
			wantElevation: 74.4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SunPosition(tt.at, tt.lat, tt.lon)
			assert.InDelta(t, 0, angleBetween(tt.wantAzimuth, got.Azimuth), 1, "azimuth %.2f", got.Azimuth)
			assert.InDelta(t, tt.wantElevation, got.Elevation, 1, "elevation")
			assert.Equal(t, tt.wantElevation > 0, got.AboveHorizon())
		})
	}
}

// angleBetween is the unsigned difference of two bearings in [0, 180].
func angleBetween(a, b float64) float64 {
	d := mod(a-b, 360)
	if d > 180 {
		d = 360 - d
	}
	return d
}

func TestSunPosition_AzimuthRange(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for h := range 24 * 7 {
		p := SunPosition(start.Add(time.Duration(h)*time.Hour), 60.17, 24.94)
		assert.GreaterOrEqual(t, p.Azimuth, 0.0)
		assert.Less(t, p.Azimuth, 360.0)
		assert.LessOrEqual(t, p.Elevation, 90.0)
		assert.GreaterOrEqual(t, p.Elevation, -90.0)
	}
}
