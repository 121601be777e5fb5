package ephemeris

import (
	"strings"
	"time"
	"unicode"

	"github.com/rickar/cal/v2"
)

// Holiday is a holiday falling on a particular date.
type Holiday struct {
	// Key is the stable identifier of the holiday ("CHRISTMAS_DAY", or the
	// key given in a holiday file).
	Key string `json:"key"`

	// Name is the display name.
	Name string `json:"name"`

	// Date is the calendar date the holiday was matched on.
	Date time.Time `json:"date"`
}

// holidayKey derives an identifier from a display name:
// "Christmas Day" becomes "CHRISTMAS_DAY".
func holidayKey(name string) string {
	var b strings.Builder
	underscore := false
	for _, r := range name {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if underscore && b.Len() > 0 {
				b.WriteByte('_')
			}
			underscore = false
			b.WriteRune(unicode.ToUpper(r))
		default:
			underscore = true
		}
	}
	return b.String()
}

// newCalendar wraps holidays in a calendar whose lookups are cached.
func newCalendar(holidays []*cal.Holiday) *cal.BusinessCalendar {
	c := cal.NewBusinessCalendar()
	c.AddHoliday(holidays...)
	c.Cacheable = true
	return c
}

// HolidayManager computes the holidays of one calendar: a country with its
// regional refinements, or a user holiday file.
//
// A HolidayManager is immutable once built and safe for concurrent use.
type HolidayManager struct {
	source  string
	base    *cal.BusinessCalendar
	regions map[string]*cal.BusinessCalendar
	cities  map[string]map[string]*cal.BusinessCalendar

	// keys overrides the name-derived key of a holiday.
	keys map[*cal.Holiday]string
}

// Source names the calendar the manager was built from.
func (m *HolidayManager) Source() string {
	return m.source
}

// calendar selects the most specific calendar for params: the city
// (params[1]) within the region (params[0]), then the region, then the
// country. Unknown regions and cities fall back to the next level.
func (m *HolidayManager) calendar(params ...string) *cal.BusinessCalendar {
	if len(params) == 0 {
		return m.base
	}
	region := strings.ToLower(params[0])
	if len(params) > 1 {
		if c, ok := m.cities[region][strings.ToLower(params[1])]; ok {
			return c
		}
	}
	if c, ok := m.regions[region]; ok {
		return c
	}
	return m.base
}

// Holiday returns the holiday on date, matched on its actual or observed
// day. When several holidays share the date the first in definition order
// wins.
func (m *HolidayManager) Holiday(date time.Time, params ...string) (Holiday, bool) {
	c := m.calendar(params...)
	if c == nil {
		return Holiday{}, false
	}
	_, _, h := c.IsHoliday(date)
	if h == nil {
		return Holiday{}, false
	}
	key, ok := m.keys[h]
	if !ok {
		key = holidayKey(h.Name)
	}
	return Holiday{Key: key, Name: h.Name, Date: startOfDay(date)}, true
}

func startOfDay(t time.Time) time.Time {
	y, mo, d := t.Date()
	return time.Date(y, mo, d, 0, 0, 0, 0, t.Location())
}
