package ephemeris

import (
	"fmt"
	"maps"
	"net/url"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/language"
)

// Logger defines the logging interface used by the ephemeris package.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

// Now returns f().
func (f ClockFunc) Now() time.Time { return f() }

// SystemClock reads the wall clock.
var SystemClock Clock = ClockFunc(time.Now)

// Settings is the location part of the configuration: the country whose
// calendar is used and up to two refinement parameters (region, city).
type Settings struct {
	Country    string   `json:"country"`
	Parameters []string `json:"parameters,omitempty"`
}

// Service answers ephemeris queries relative to "today" in the site time
// zone. It is safe for concurrent use.
type Service struct {
	clock    Clock
	location *time.Location
	locale   language.Tag
	logger   Logger

	daysets    *DaysetRegistry
	managers   *ManagerCache
	holidayDir string

	mu       sync.RWMutex
	settings Settings
	props    map[string]string
}

// Option configures a Service.
type Option func(*Service)

// WithClock sets the time source. Defaults to SystemClock.
func WithClock(c Clock) Option {
	return func(s *Service) { s.clock = c }
}

// WithLocation sets the site time zone used to resolve dates.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.location = loc
		}
	}
}

// WithLocale sets the site locale. It supplies the default country and the
// language of weekday labels.
func WithLocale(tag language.Tag) Option {
	return func(s *Service) { s.locale = tag }
}

// WithLogger sets the logger.
func WithLogger(l Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithManagerCache replaces the holiday manager cache.
func WithManagerCache(c *ManagerCache) Option {
	return func(s *Service) { s.managers = c }
}

// WithHolidayDir confines user holiday files to dir. Relative names resolve
// inside it and names that leave it are rejected. Without it any path is
// accepted.
func WithHolidayDir(dir string) Option {
	return func(s *Service) {
		if dir == "" {
			return
		}
		abs, err := filepath.Abs(dir)
		if err != nil {
			abs = filepath.Clean(dir)
		}
		s.holidayDir = abs
	}
}

// NewService creates an unconfigured Service. Call Configure before use;
// until then no daysets exist and the country is derived from the locale.
func NewService(opts ...Option) *Service {
	s := &Service{
		clock:    SystemClock,
		location: time.UTC,
		locale:   language.BritishEnglish,
		logger:   noopLogger{},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.managers == nil {
		s.managers = NewManagerCache(DefaultMaxUserFiles)
	}
	s.daysets = NewDaysetRegistry(s.logger)
	s.settings = Settings{Country: localeCountry(s.locale)}
	s.props = map[string]string{}
	return s
}

// Configure applies a property map: dayset-<name>, country, region, city.
// Daysets merge into the existing ones; the country settings are rebuilt
// from props alone.
func (s *Service) Configure(props map[string]string) {
	s.daysets.Update(props)

	settings := Settings{Country: strings.ToLower(strings.TrimSpace(props[PropertyCountry]))}
	if settings.Country == "" {
		settings.Country = localeCountry(s.locale)
		s.logger.Debug("using locale default country", "country", settings.Country, "locale", s.locale.String())
	}
	region := strings.TrimSpace(props[PropertyRegion])
	city := strings.TrimSpace(props[PropertyCity])
	switch {
	case region != "" && city != "":
		settings.Parameters = []string{strings.ToLower(region), strings.ToLower(city)}
	case region != "":
		settings.Parameters = []string{strings.ToLower(region)}
	case city != "":
		s.logger.Warn("ignoring city without region", "city", city)
	}

	s.mu.Lock()
	s.settings = settings
	s.props = maps.Clone(props)
	s.mu.Unlock()

	s.logger.Info("ephemeris configured",
		"country", settings.Country,
		"parameters", strings.Join(settings.Parameters, "/"),
		"daysets", strings.Join(s.daysets.Names(), ","),
	)
}

// Settings returns the active country settings.
func (s *Service) Settings() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Settings{
		Country:    s.settings.Country,
		Parameters: append([]string(nil), s.settings.Parameters...),
	}
}

// Properties returns the effective configuration as a property map. The
// daysets reflect the registry, including definitions kept from earlier
// updates.
func (s *Service) Properties() map[string]string {
	s.mu.RLock()
	props := make(map[string]string, len(s.props))
	for k, v := range s.props {
		if _, isDayset := daysetName(k); !isDayset {
			props[k] = v
		}
	}
	s.mu.RUnlock()

	maps.Copy(props, s.daysets.Properties())
	return props
}

// Daysets exposes the dayset registry.
func (s *Service) Daysets() *DaysetRegistry {
	return s.daysets
}

// CachedManagers returns how many country and file holiday managers are
// loaded.
func (s *Service) CachedManagers() (countries, files int) {
	return s.managers.Len()
}

// Date resolves an offset in days from today, in the site time zone.
func (s *Service) Date(offset int) time.Time {
	return s.clock.Now().In(s.location).AddDate(0, 0, offset)
}

// IsBankHoliday reports whether the day offset days from today is a bank
// holiday for the configured country, region and city.
func (s *Service) IsBankHoliday(offset int) (bool, error) {
	_, ok, err := s.holiday(s.Date(offset))
	return ok, err
}

// GetBankHolidayName returns the display name of the bank holiday offset
// days from today. ok is false when the day is not a holiday.
func (s *Service) GetBankHolidayName(offset int) (name string, ok bool, err error) {
	h, ok, err := s.holiday(s.Date(offset))
	if err != nil || !ok {
		return "", false, err
	}
	return h.Name, true, nil
}

// BankHoliday returns the holiday on date, if any.
func (s *Service) BankHoliday(date time.Time) (Holiday, bool, error) {
	return s.holiday(date.In(s.location))
}

func (s *Service) holiday(date time.Time) (Holiday, bool, error) {
	settings := s.Settings()
	m, err := s.managers.Get(CountryKey{Code: settings.Country})
	if err != nil {
		return Holiday{}, false, err
	}
	h, ok := m.Holiday(date, settings.Parameters...)
	return h, ok, nil
}

// IsWeekEnd reports whether the day offset days from today belongs to the
// "weekend" dayset. Without that dayset it is always false.
func (s *Service) IsWeekEnd(offset int) bool {
	return s.IsInDayset(WeekendDayset, offset)
}

// IsInDayset reports whether the day offset days from today belongs to the
// named dayset. Unknown names are logged and reported as false.
func (s *Service) IsInDayset(name string, offset int) bool {
	return s.daysets.IsInDayset(name, s.Date(offset))
}

// GetHolidayUserFile returns the key of the holiday defined in filename that
// falls offset days from today. A malformed file name fails with
// ErrInvalidHolidayFile; an unreadable or invalid file with
// ErrHolidayFileLoad.
func (s *Service) GetHolidayUserFile(offset int, filename string) (key string, ok bool, err error) {
	u, err := s.holidayFileURL(filename)
	if err != nil {
		return "", false, err
	}
	m, err := s.managers.Get(FileKey{URL: u})
	if err != nil {
		return "", false, err
	}
	h, ok := m.Holiday(s.Date(offset))
	if !ok {
		return "", false, nil
	}
	return h.Key, true, nil
}

// holidayFileURL validates filename and, with a holiday directory set,
// resolves it inside that directory.
func (s *Service) holidayFileURL(filename string) (*url.URL, error) {
	u, err := FileURL(filename)
	if err != nil || s.holidayDir == "" {
		return u, err
	}

	p := filePath(u)
	if !filepath.IsAbs(p) {
		p = filepath.Join(s.holidayDir, p)
	}
	p = filepath.Clean(p)
	rel, err := filepath.Rel(s.holidayDir, p)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return nil, fmt.Errorf("%w: %q is outside %s", ErrInvalidHolidayFile, filename, s.holidayDir)
	}
	return &url.URL{Scheme: "file", Path: p}, nil
}

// ValidateProperties checks a property map before it is persisted. Unlike
// Configure, which skips bad entries, it reports every problem.
func ValidateProperties(props map[string]string) error {
	var problems []string
	for key, value := range props {
		if name, ok := daysetName(key); ok {
			if name == "" {
				problems = append(problems, fmt.Sprintf("%s: missing dayset name", key))
				continue
			}
			if _, err := ParseDayset(value); err != nil {
				problems = append(problems, fmt.Sprintf("%s: %v", key, err))
			}
		}
	}
	if country := strings.TrimSpace(props[PropertyCountry]); country != "" {
		if _, err := NewCountryManager(country); err != nil {
			problems = append(problems, err.Error())
		}
	}
	if strings.TrimSpace(props[PropertyCity]) != "" && strings.TrimSpace(props[PropertyRegion]) == "" {
		problems = append(problems, "city requires region")
	}
	if len(problems) > 0 {
		sort.Strings(problems)
		return fmt.Errorf("%w: %s", ErrInvalidProperty, strings.Join(problems, "; "))
	}
	return nil
}

// localeCountry derives a lower-case country code from a locale, "" when
// the locale carries no usable region.
func localeCountry(tag language.Tag) string {
	region, conf := tag.Region()
	if conf == language.No {
		return ""
	}
	return strings.ToLower(region.String())
}
