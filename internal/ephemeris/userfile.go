package ephemeris

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/rickar/cal/v2"
	"gopkg.in/yaml.v3"
)

// holidayFile is the YAML layout of a user holiday-definition file:
//
//	name: Family
//	holidays:
//	  - key: GRANDMA_BIRTHDAY
//	    name: Grandma's birthday
//	    fixed: {month: 3, day: 14}
//	  - key: FAMILY_EASTER_PICNIC
//	    easter_offset: 1
//	  - key: HARVEST_SUPPER
//	    weekday: {month: 9, weekday: SATURDAY, nth: -1}
//	    valid_from: 2020
type holidayFile struct {
	Name     string             `yaml:"name"`
	Holidays []holidayFileEntry `yaml:"holidays"`
}

type holidayFileEntry struct {
	Key          string       `yaml:"key"`
	Name         string       `yaml:"name"`
	Fixed        *fixedRule   `yaml:"fixed"`
	EasterOffset *int         `yaml:"easter_offset"`
	Weekday      *weekdayRule `yaml:"weekday"`
	ValidFrom    int          `yaml:"valid_from"`
	ValidTo      int          `yaml:"valid_to"`
}

type fixedRule struct {
	Month int `yaml:"month"`
	Day   int `yaml:"day"`
}

// weekdayRule is the nth weekday of a month; a negative nth counts from
// the end of the month.
type weekdayRule struct {
	Month   int    `yaml:"month"`
	Weekday string `yaml:"weekday"`
	Nth     int    `yaml:"nth"`
}

// LoadHolidayFile builds a holiday manager from the YAML file a file: URL
// points at.
func LoadHolidayFile(u *url.URL) (*HolidayManager, error) {
	if u == nil || u.Scheme != "file" {
		return nil, fmt.Errorf("%w: not a file URL", ErrHolidayFileLoad)
	}
	path := filePath(u)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrHolidayFileLoad, err)
	}

	var doc holidayFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: parsing %s: %w", ErrHolidayFileLoad, path, err)
	}

	holidays, keys, err := doc.calendar()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrHolidayFileLoad, path, err)
	}

	return &HolidayManager{source: u.String(), base: newCalendar(holidays), keys: keys}, nil
}

// calendar converts the file entries to library holidays in file order,
// with the key of each holiday.
func (f holidayFile) calendar() ([]*cal.Holiday, map[*cal.Holiday]string, error) {
	var errs []error
	holidays := make([]*cal.Holiday, 0, len(f.Holidays))
	keys := make(map[*cal.Holiday]string, len(f.Holidays))
	for i, entry := range f.Holidays {
		h, err := entry.holiday()
		if err != nil {
			errs = append(errs, fmt.Errorf("holiday %d (%s): %w", i+1, entry.Key, err))
			continue
		}
		if h.Name == "" {
			h.Name = entry.Key
		}
		holidays = append(holidays, h)
		keys[h] = entry.Key
	}
	if len(errs) > 0 {
		return nil, nil, errors.Join(errs...)
	}
	return holidays, keys, nil
}

func (e holidayFileEntry) holiday() (*cal.Holiday, error) {
	if strings.TrimSpace(e.Key) == "" {
		return nil, errors.New("key is required")
	}
	if e.ValidFrom != 0 && e.ValidTo != 0 && e.ValidTo < e.ValidFrom {
		return nil, fmt.Errorf("valid_to %d before valid_from %d", e.ValidTo, e.ValidFrom)
	}

	h := &cal.Holiday{
		Name:      e.Name,
		StartYear: e.ValidFrom,
		EndYear:   e.ValidTo,
	}

	rules := 0
	if e.Fixed != nil {
		rules++
		if err := validMonthDay(e.Fixed.Month, e.Fixed.Day); err != nil {
			return nil, err
		}
		h.Month = time.Month(e.Fixed.Month)
		h.Day = e.Fixed.Day
		h.Func = cal.CalcDayOfMonth
	}
	if e.EasterOffset != nil {
		rules++
		h.Offset = *e.EasterOffset
		h.Func = cal.CalcEasterOffset
	}
	if e.Weekday != nil {
		rules++
		if e.Weekday.Month < 1 || e.Weekday.Month > 12 {
			return nil, fmt.Errorf("month %d out of range", e.Weekday.Month)
		}
		wd, err := ParseWeekday(e.Weekday.Weekday)
		if err != nil {
			return nil, err
		}
		if e.Weekday.Nth == 0 || e.Weekday.Nth < -5 || e.Weekday.Nth > 5 {
			return nil, fmt.Errorf("nth %d out of range", e.Weekday.Nth)
		}
		h.Month = time.Month(e.Weekday.Month)
		h.Weekday = wd
		h.Offset = e.Weekday.Nth
		h.Func = cal.CalcWeekdayOffset
	}

	if rules != 1 {
		return nil, errors.New("exactly one of fixed, easter_offset or weekday is required")
	}
	return h, nil
}

func validMonthDay(month, day int) error {
	if month < 1 || month > 12 {
		return fmt.Errorf("month %d out of range", month)
	}
	// 2024 is a leap year, so 29 February is accepted.
	last := time.Date(2024, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if day < 1 || day > last {
		return fmt.Errorf("day %d out of range for month %d", day, month)
	}
	return nil
}
