package ephemeris

import (
	"testing"
	"time"

	"github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/au"
	"github.com/rickar/cal/v2/ch"
	"github.com/rickar/cal/v2/de"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 9, 30, 0, 0, time.UTC)
}

func TestNewCountryManager(t *testing.T) {
	t.Run("unknown country", func(t *testing.T) {
		_, err := NewCountryManager("zz")
		require.ErrorIs(t, err, ErrUnknownCountry)
	})

	t.Run("library countries", func(t *testing.T) {
		for _, code := range []string{"ch", "it", "es", "dk", "se", "no", "pl", "cz", "au", "ca"} {
			_, err := NewCountryManager(code)
			assert.NoError(t, err, code)
		}
	})

	t.Run("alias and case", func(t *testing.T) {
		m, err := NewCountryManager(" UK ")
		require.NoError(t, err)
		assert.Equal(t, "country:gb", m.Source())
	})

	t.Run("every listed country builds", func(t *testing.T) {
		for _, code := range Countries() {
			m, err := NewCountryManager(code)
			require.NoError(t, err, code)
			assert.NotEmpty(t, m.base.Holidays, code)
		}
	})
}

func TestHolidayManager_National(t *testing.T) {
	m, err := NewCountryManager("us")
	require.NoError(t, err)

	_, ok := m.Holiday(date(2025, time.December, 25))
	assert.True(t, ok, "Christmas Day")

	_, ok = m.Holiday(date(2025, time.December, 26))
	assert.False(t, ok)
}

func TestHolidayManager_RegionAndCity(t *testing.T) {
	m, err := NewCountryManager("de")
	require.NoError(t, err)

	tests := []struct {
		name     string
		date     time.Time
		params   []string
		wantName string
	}{
		{name: "epiphany not national", date: date(2025, time.January, 6)},
		{name: "epiphany in bavaria", date: date(2025, time.January, 6), params: []string{"by"}, wantName: "Heilige Drei Könige"},
		{name: "region is case insensitive", date: date(2025, time.January, 6), params: []string{"BY"}, wantName: "Heilige Drei Könige"},
		{name: "corpus christi", date: date(2025, time.June, 19), params: []string{"nw"}, wantName: "Fronleichnam"},
		{name: "corpus christi in hesse", date: date(2026, time.June, 4), params: []string{"he"}, wantName: "Fronleichnam"},
		{name: "corpus christi in saarland", date: date(2026, time.June, 4), params: []string{"sl"}, wantName: "Fronleichnam"},
		{name: "city holiday needs the city", date: date(2025, time.August, 8), params: []string{"by"}},
		{name: "augsburg", date: date(2025, time.August, 8), params: []string{"by", "augsburg"}, wantName: "Friedensfest"},
		{name: "augsburg keeps bavarian holidays", date: date(2025, time.January, 6), params: []string{"by", "augsburg"}, wantName: "Heilige Drei Könige"},
		{name: "unknown city uses the region", date: date(2025, time.January, 6), params: []string{"by", "nuremberg"}, wantName: "Heilige Drei Könige"},
		{name: "unknown region uses the country", date: date(2025, time.January, 6), params: []string{"xx"}},
		{name: "unknown region keeps national holidays", date: date(2025, time.December, 25), params: []string{"xx"}, wantName: "Weihnachtstag"},
		{name: "berlin womens day", date: date(2019, time.March, 8), params: []string{"be"}, wantName: "Frauentag"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, ok := m.Holiday(tt.date, tt.params...)
			if tt.wantName == "" {
				assert.False(t, ok, "unexpected holiday %q", h.Name)
				return
			}
			require.True(t, ok)
			assert.Equal(t, tt.wantName, h.Name)
			assert.Equal(t, holidayKey(tt.wantName), h.Key)
			assert.Equal(t, time.Date(tt.date.Year(), tt.date.Month(), tt.date.Day(), 0, 0, 0, 0, time.UTC), h.Date)
		})
	}
}

// holidayDates collects the actual and observed dates of holidays in year.
func holidayDates(holidays []*cal.Holiday, year int) map[string]bool {
	dates := make(map[string]bool)
	for _, h := range holidays {
		actual, observed := h.Calc(year)
		for _, d := range []time.Time{actual, observed} {
			if !d.IsZero() {
				dates[d.Format(time.DateOnly)] = true
			}
		}
	}
	return dates
}

func TestHolidayManager_RegionsMatchLibraryLists(t *testing.T) {
	tests := []struct {
		country  string
		region   string
		holidays []*cal.Holiday
	}{
		{"de", "bw", de.HolidaysBW},
		{"de", "by", de.HolidaysBY},
		{"de", "be", de.HolidaysBE},
		{"de", "he", de.HolidaysHE},
		{"de", "sl", de.HolidaysSL},
		{"de", "sn", de.HolidaysSN},
		{"de", "th", de.HolidaysTH},
		{"ch", "zh", ch.HolidaysZH},
		{"ch", "ti", ch.HolidaysTI},
		{"au", "vic", au.HolidaysVIC},
	}
	for _, tt := range tests {
		t.Run(tt.country+"-"+tt.region, func(t *testing.T) {
			m, err := NewCountryManager(tt.country)
			require.NoError(t, err)

			want := holidayDates(tt.holidays, 2026)
			for d := date(2026, time.January, 1); d.Year() == 2026; d = d.AddDate(0, 0, 1) {
				_, got := m.Holiday(d, tt.region)
				assert.Equal(t, want[d.Format(time.DateOnly)], got, d.Format(time.DateOnly))
			}
		})
	}
}

func TestRegions(t *testing.T) {
	assert.Len(t, Regions("de"), 16)
	assert.Contains(t, Regions("DE"), "he")
	assert.Len(t, Regions("ch"), 26)
	assert.Nil(t, Regions("fr"))
	assert.Nil(t, Regions("zz"))
}

func TestShared(t *testing.T) {
	a, b, c := &cal.Holiday{Name: "a"}, &cal.Holiday{Name: "b"}, &cal.Holiday{Name: "c"}
	assert.Equal(t, []*cal.Holiday{a, c}, shared([]*cal.Holiday{a, b, c}, []*cal.Holiday{c, a}))
	assert.Nil(t, shared())

	m, err := NewCountryManager("au")
	require.NoError(t, err)
	_, ok := m.Holiday(date(2025, time.December, 25))
	assert.True(t, ok, "Christmas Day is shared by every state")
}

func TestHolidayKey(t *testing.T) {
	tests := map[string]string{
		"Christmas Day":       "CHRISTMAS_DAY",
		"St Andrew's Day":     "ST_ANDREW_S_DAY",
		"2nd January":         "2ND_JANUARY",
		"Mariä Himmelfahrt":   "MARIÄ_HIMMELFAHRT",
		"  New   Year  ":      "NEW_YEAR",
		"Battle of the Boyne": "BATTLE_OF_THE_BOYNE",
	}
	for in, want := range tests {
		assert.Equal(t, want, holidayKey(in), in)
	}
}
