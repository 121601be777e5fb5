package ephemeris

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// Configuration property names.
const (
	// DaysetPrefix starts every dayset property key ("dayset-weekend").
	DaysetPrefix = "dayset-"

	// WeekendDayset is the dayset consulted by IsWeekEnd.
	WeekendDayset = "weekend"

	PropertyCountry = "country"
	PropertyRegion  = "region"
	PropertyCity    = "city"
)

// weekOrder lists the weekdays starting on Monday, the order used for
// option lists and dayset rendering.
var weekOrder = [...]time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
	time.Friday, time.Saturday, time.Sunday,
}

// WeekdayName returns the upper-case configuration name of d ("MONDAY").
func WeekdayName(d time.Weekday) string {
	return strings.ToUpper(d.String())
}

// ParseWeekday parses a weekday name case-insensitively.
func ParseWeekday(s string) (time.Weekday, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	for _, d := range weekOrder {
		if WeekdayName(d) == name {
			return d, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown weekday %q", ErrInvalidDayset, s)
}

// Dayset is an immutable set of weekdays.
type Dayset uint8

// ParseDayset parses a comma separated weekday list such as
// "saturday,SUNDAY". Every token must be a weekday name; duplicates collapse.
func ParseDayset(value string) (Dayset, error) {
	if strings.TrimSpace(value) == "" {
		return 0, fmt.Errorf("%w: empty day list", ErrInvalidDayset)
	}
	var set Dayset
	for _, token := range strings.Split(value, ",") {
		d, err := ParseWeekday(token)
		if err != nil {
			return 0, err
		}
		set |= 1 << uint(d)
	}
	return set, nil
}

// DaysetOf builds a Dayset from the given weekdays.
func DaysetOf(days ...time.Weekday) Dayset {
	var set Dayset
	for _, d := range days {
		set |= 1 << uint(d)
	}
	return set
}

// Contains reports whether d is a member of the set.
func (s Dayset) Contains(d time.Weekday) bool {
	return s&(1<<uint(d)) != 0
}

// Days returns the members in Monday-first order.
func (s Dayset) Days() []time.Weekday {
	days := make([]time.Weekday, 0, len(weekOrder))
	for _, d := range weekOrder {
		if s.Contains(d) {
			days = append(days, d)
		}
	}
	return days
}

// String renders the set in configuration form, e.g. "SATURDAY,SUNDAY".
func (s Dayset) String() string {
	names := make([]string, 0, len(weekOrder))
	for _, d := range s.Days() {
		names = append(names, WeekdayName(d))
	}
	return strings.Join(names, ",")
}

// daysetName extracts the dayset name from a property key. ok is false
// when key is not a dayset property.
func daysetName(key string) (name string, ok bool) {
	name, ok = strings.CutPrefix(key, DaysetPrefix)
	return name, ok
}

// DaysetRegistry holds the named daysets of the current configuration.
//
// All methods are safe for concurrent use.
type DaysetRegistry struct {
	mu     sync.RWMutex
	sets   map[string]Dayset
	logger Logger
}

// NewDaysetRegistry creates an empty registry. A nil logger discards output.
func NewDaysetRegistry(logger Logger) *DaysetRegistry {
	if logger == nil {
		logger = noopLogger{}
	}
	return &DaysetRegistry{
		sets:   make(map[string]Dayset),
		logger: logger,
	}
}

// Update applies every dayset-<name> property in props. A malformed entry
// is logged and skipped, leaving any earlier definition of that name in
// place. Daysets absent from props keep their previous definition; use
// Reset first for a full replacement.
//
// It returns the number of daysets applied.
func (r *DaysetRegistry) Update(props map[string]string) int {
	parsed := make(map[string]Dayset)
	for key, value := range props {
		name, ok := daysetName(key)
		if !ok {
			continue
		}
		if name == "" {
			r.logger.Warn("erroneous dayset definition", "key", key, "value", value, "error", "missing name")
			continue
		}
		set, err := ParseDayset(value)
		if err != nil {
			r.logger.Warn("erroneous dayset definition", "key", key, "value", value, "error", err)
			continue
		}
		parsed[name] = set
	}

	r.mu.Lock()
	for name, set := range parsed {
		r.sets[name] = set
	}
	r.mu.Unlock()

	if len(parsed) > 0 {
		r.logger.Debug("daysets updated", "count", len(parsed))
	}
	return len(parsed)
}

// Reset removes every dayset.
func (r *DaysetRegistry) Reset() {
	r.mu.Lock()
	r.sets = make(map[string]Dayset)
	r.mu.Unlock()
}

// Get returns the named dayset.
func (r *DaysetRegistry) Get(name string) (Dayset, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	set, ok := r.sets[name]
	return set, ok
}

// IsInDayset reports whether date falls on a day of the named dayset.
// An unknown name is logged and reported as false.
func (r *DaysetRegistry) IsInDayset(name string, date time.Time) bool {
	set, ok := r.Get(name)
	if !ok {
		r.logger.Warn("dayset is not configured", "dayset", name)
		return false
	}
	return set.Contains(date.Weekday())
}

// Names returns the configured dayset names, sorted.
func (r *DaysetRegistry) Names() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.sets))
	for name := range r.sets {
		names = append(names, name)
	}
	r.mu.RUnlock()

	sort.Strings(names)
	return names
}

// Properties renders the registry back into dayset-<name> properties.
func (r *DaysetRegistry) Properties() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	props := make(map[string]string, len(r.sets))
	for name, set := range r.sets {
		props[DaysetPrefix+name] = set.String()
	}
	return props
}
