package ephemeris

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingLogger captures warnings for assertions.
type recordingLogger struct {
	noopLogger
	mu    sync.Mutex
	warns []string
}

func (l *recordingLogger) Warn(msg string, _ ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warns = append(l.warns, msg)
}

func (l *recordingLogger) warnings() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.warns...)
}

// testMonday is 6 January 2025; testMonday.AddDate(0, 0, i) walks one full week.
var testMonday = time.Date(2025, time.January, 6, 12, 0, 0, 0, time.UTC)

func TestParseWeekday(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Weekday
		wantErr bool
	}{
		{in: "MONDAY", want: time.Monday},
		{in: "sunday", want: time.Sunday},
		{in: "  Friday ", want: time.Friday},
		{in: "MON", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseWeekday(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidDayset)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseDayset(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		want    []time.Weekday
		wantErr bool
	}{
		{name: "weekend", value: "SATURDAY,SUNDAY", want: []time.Weekday{time.Saturday, time.Sunday}},
		{name: "lower case and spaces", value: "monday, tuesday", want: []time.Weekday{time.Monday, time.Tuesday}},
		{name: "duplicates collapse", value: "FRIDAY,FRIDAY", want: []time.Weekday{time.Friday}},
		{name: "empty", value: "", wantErr: true},
		{name: "bad token", value: "SATURDAY,FUNDAY", wantErr: true},
		{name: "trailing comma", value: "SATURDAY,", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDayset(tt.value)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidDayset)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Days())
		})
	}
}

func TestDayset_String(t *testing.T) {
	set := DaysetOf(time.Sunday, time.Monday, time.Saturday)
	assert.Equal(t, "MONDAY,SATURDAY,SUNDAY", set.String())
	assert.Equal(t, "", Dayset(0).String())
}

// TestDaysetRegistry_EveryWeekdayCombination checks membership for all 127
// non-empty weekday lists: exactly the listed days are members.
func TestDaysetRegistry_EveryWeekdayCombination(t *testing.T) {
	reg := NewDaysetRegistry(nil)

	for mask := 1; mask < 1<<7; mask++ {
		var names []string
		listed := map[time.Weekday]bool{}
		for i, d := range weekOrder {
			if mask&(1<<i) != 0 {
				names = append(names, WeekdayName(d))
				listed[d] = true
			}
		}

		applied := reg.Update(map[string]string{"dayset-test": strings.Join(names, ",")})
		require.Equal(t, 1, applied)

		for i := 0; i < 7; i++ {
			date := testMonday.AddDate(0, 0, i)
			assert.Equal(t, listed[date.Weekday()], reg.IsInDayset("test", date),
				"mask %07b day %s", mask, date.Weekday())
		}
	}
}

func TestDaysetRegistry_Update(t *testing.T) {
	t.Run("ignores non-dayset keys", func(t *testing.T) {
		reg := NewDaysetRegistry(nil)
		n := reg.Update(map[string]string{
			"country":        "de",
			"dayset-weekend": "SATURDAY,SUNDAY",
		})
		assert.Equal(t, 1, n)
		assert.Equal(t, []string{"weekend"}, reg.Names())
	})

	t.Run("malformed entry is skipped and logged", func(t *testing.T) {
		log := &recordingLogger{}
		reg := NewDaysetRegistry(log)
		reg.Update(map[string]string{"dayset-weekend": "SATURDAY,SUNDAY"})

		n := reg.Update(map[string]string{
			"dayset-weekend": "SATURDAY,NOTADAY",
			"dayset-":        "MONDAY",
			"dayset-school":  "MONDAY,TUESDAY,WEDNESDAY,THURSDAY,FRIDAY",
		})
		assert.Equal(t, 1, n)
		assert.Len(t, log.warnings(), 2)

		// The earlier weekend definition is untouched; no partial set stored.
		weekend, ok := reg.Get("weekend")
		require.True(t, ok)
		assert.Equal(t, "SATURDAY,SUNDAY", weekend.String())
	})

	t.Run("absent names keep their definition", func(t *testing.T) {
		reg := NewDaysetRegistry(nil)
		reg.Update(map[string]string{"dayset-weekend": "SATURDAY,SUNDAY"})
		reg.Update(map[string]string{"dayset-gym": "TUESDAY"})

		assert.Equal(t, []string{"gym", "weekend"}, reg.Names())
	})

	t.Run("redefinition overwrites", func(t *testing.T) {
		reg := NewDaysetRegistry(nil)
		reg.Update(map[string]string{"dayset-weekend": "SATURDAY,SUNDAY"})
		reg.Update(map[string]string{"dayset-weekend": "FRIDAY,SATURDAY"})

		set, _ := reg.Get("weekend")
		assert.Equal(t, "FRIDAY,SATURDAY", set.String())
	})

	t.Run("names may contain dashes", func(t *testing.T) {
		reg := NewDaysetRegistry(nil)
		reg.Update(map[string]string{"dayset-school-days": "MONDAY"})
		_, ok := reg.Get("school-days")
		assert.True(t, ok)
	})
}

func TestDaysetRegistry_UnknownDayset(t *testing.T) {
	log := &recordingLogger{}
	reg := NewDaysetRegistry(log)

	assert.False(t, reg.IsInDayset("foo", testMonday))
	assert.Equal(t, []string{"dayset is not configured"}, log.warnings())
}

func TestDaysetRegistry_ResetAndProperties(t *testing.T) {
	reg := NewDaysetRegistry(nil)
	reg.Update(map[string]string{
		"dayset-weekend": "sunday,saturday",
		"dayset-gym":     "TUESDAY,THURSDAY",
	})

	assert.Equal(t, map[string]string{
		"dayset-weekend": "SATURDAY,SUNDAY",
		"dayset-gym":     "TUESDAY,THURSDAY",
	}, reg.Properties())

	reg.Reset()
	assert.Empty(t, reg.Names())
	assert.False(t, reg.IsInDayset("weekend", testMonday.AddDate(0, 0, 5)))
}
