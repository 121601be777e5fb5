// Package ephemeris answers calendar questions for automation rules: is a day
// a bank holiday, is it a weekend day, does it belong to a named dayset, and
// what is the holiday called.
//
// Architecture:
//
//	┌──────────────────────────────────────────────────────┐
//	│                 Service (service.go)                 │
//	│  resolves "today + offset" with the injected Clock   │
//	│  ┌────────────────┐       ┌───────────────────────┐  │
//	│  │ DaysetRegistry │       │     ManagerCache      │  │
//	│  │  (dayset.go)   │       │      (cache.go)       │  │
//	│  └────────────────┘       └───────────┬───────────┘  │
//	│                                       ▼              │
//	│                    ┌──────────────────────────────┐  │
//	│                    │ HolidayManager (manager.go)  │  │
//	│                    │ country calendars / files    │  │
//	│                    └──────────────────────────────┘  │
//	└──────────────────────────────────────────────────────┘
//
// Holiday dates are computed by github.com/rickar/cal/v2. Country calendars
// come from its country packages, refined by region and city tables kept in
// calendars.go. User holiday files are YAML documents loaded through a
// file: URL (userfile.go).
//
// # Configuration
//
// The service is configured with a flat property map, the same shape that
// is persisted in SQLite and accepted by the HTTP API:
//
//	dayset-weekend = SATURDAY,SUNDAY
//	dayset-school  = MONDAY,TUESDAY,WEDNESDAY,THURSDAY,FRIDAY
//	country        = de
//	region         = by
//	city           = augsburg
//
// # Thread Safety
//
// Service, DaysetRegistry and ManagerCache are safe for concurrent use.
// Configure may run while queries are in flight.
//
// # Usage
//
//	svc := ephemeris.NewService(
//	    ephemeris.WithLocation(cfg.GetLocation()),
//	    ephemeris.WithLocale(language.BritishEnglish),
//	    ephemeris.WithLogger(log.Component("ephemeris")),
//	)
//	svc.Configure(cfg.Ephemeris.Properties())
//
//	holiday, err := svc.IsBankHoliday(1) // tomorrow
package ephemeris
