package ephemeris

import "time"

// DaySummary collects the calendar facts of one day.
type DaySummary struct {
	Day         time.Time       `json:"-"`
	Date        string          `json:"date"`
	Holiday     bool            `json:"holiday"`
	HolidayName string          `json:"holiday_name,omitempty"`
	Weekend     bool            `json:"weekend"`
	Daysets     map[string]bool `json:"daysets"`
}

// Summary returns the facts of the day offset days from today. Day is
// midnight of that day in the site time zone. Unlike IsWeekEnd, a missing
// weekend dayset is not logged.
func (s *Service) Summary(offset int) (DaySummary, error) {
	date := s.Date(offset)
	h, holiday, err := s.holiday(date)
	if err != nil {
		return DaySummary{}, err
	}

	names := s.daysets.Names()
	sum := DaySummary{
		Day:     startOfDay(date),
		Date:    date.Format(time.DateOnly),
		Holiday: holiday,
		Daysets: make(map[string]bool, len(names)),
	}
	if holiday {
		sum.HolidayName = h.Name
	}
	for _, name := range names {
		if set, ok := s.daysets.Get(name); ok {
			sum.Daysets[name] = set.Contains(date.Weekday())
		}
	}
	sum.Weekend = sum.Daysets[WeekendDayset]
	return sum, nil
}
