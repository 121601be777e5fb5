package automation

import (
	"context"
	"fmt"
)

// Module type UIDs of the calendar conditions.
const (
	HolidayConditionType    = "ephemeris.HolidayCondition"
	NotHolidayConditionType = "ephemeris.NotHolidayCondition"
	WeekendConditionType    = "ephemeris.WeekendCondition"
	WeekdayConditionType    = "ephemeris.WeekdayCondition"
	DaysetConditionType     = "ephemeris.DaysetCondition"
)

// Calendar is the part of the ephemeris service the conditions need.
type Calendar interface {
	IsBankHoliday(offset int) (bool, error)
	IsWeekEnd(offset int) bool
	IsInDayset(name string, offset int) bool
}

// EphemerisFactory builds conditions that gate rules on calendar facts.
// Every condition accepts an optional integer "offset" (days from today);
// the dayset condition also requires "dayset".
type EphemerisFactory struct {
	BaseFactory
	calendar Calendar
}

// NewEphemerisFactory creates the factory.
func NewEphemerisFactory(calendar Calendar) *EphemerisFactory {
	f := &EphemerisFactory{calendar: calendar}
	f.BaseFactory.init(f.create)
	return f
}

// Types returns the calendar condition types.
func (f *EphemerisFactory) Types() []string {
	return []string{
		HolidayConditionType,
		NotHolidayConditionType,
		WeekendConditionType,
		WeekdayConditionType,
		DaysetConditionType,
	}
}

func (f *EphemerisFactory) create(m Module, _ string) (ModuleHandler, error) {
	offset, _, err := configInt(m, "offset")
	if err != nil {
		return nil, err
	}

	var check func() (bool, error)
	switch m.TypeUID {
	case HolidayConditionType:
		check = func() (bool, error) { return f.calendar.IsBankHoliday(offset) }
	case NotHolidayConditionType:
		check = func() (bool, error) {
			holiday, err := f.calendar.IsBankHoliday(offset)
			return !holiday, err
		}
	case WeekendConditionType:
		check = func() (bool, error) { return f.calendar.IsWeekEnd(offset), nil }
	case WeekdayConditionType:
		check = func() (bool, error) { return !f.calendar.IsWeekEnd(offset), nil }
	case DaysetConditionType:
		name, err := configString(m, "dayset", "")
		if err != nil {
			return nil, err
		}
		if name == "" {
			return nil, fmt.Errorf("%w: %s: dayset is required", ErrInvalidModule, m.ID)
		}
		check = func() (bool, error) { return f.calendar.IsInDayset(name, offset), nil }
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedModuleType, m.TypeUID)
	}
	return &calendarCondition{check: check}, nil
}

type calendarCondition struct {
	check func() (bool, error)
}

func (c *calendarCondition) IsSatisfied(context.Context, map[string]any) (bool, error) {
	return c.check()
}

func (c *calendarCondition) Dispose() {}
