package publisher

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/nerrad567/gray-logic-ephemeris/internal/astro"
	"github.com/nerrad567/gray-logic-ephemeris/internal/ephemeris"
	"github.com/nerrad567/gray-logic-ephemeris/internal/infrastructure/influxdb"
	"github.com/nerrad567/gray-logic-ephemeris/internal/infrastructure/mqtt"
)

// Default schedules.
const (
	DefaultEphemerisSchedule = "5 0 * * *"
	DefaultAstroSchedule     = "@every 5m"
)

// Calendar supplies the daily facts.
type Calendar interface {
	Summary(offset int) (ephemeris.DaySummary, error)
	Settings() ephemeris.Settings
}

// Facades supplies facade exposure.
type Facades interface {
	States(at time.Time) []astro.FacadeState
}

// Broker publishes JSON messages.
type Broker interface {
	PublishJSON(topic string, v any, retained bool) error
}

// History records samples in a time-series store.
type History interface {
	WriteEphemeris(r influxdb.DayRecord)
	WriteFacade(r influxdb.FacadeRecord)
}

// Logger is the logging the publisher needs.
type Logger interface {
	Info(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Config holds the schedules in cron syntax (five fields or @descriptors).
// Empty values use the defaults.
type Config struct {
	EphemerisSchedule string
	AstroSchedule     string
	Location          *time.Location
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithBroker publishes to MQTT.
func WithBroker(b Broker) Option { return func(p *Publisher) { p.broker = b } }

// WithHistory records to a time-series store.
func WithHistory(h History) Option { return func(p *Publisher) { p.history = h } }

// WithFacades enables the facade schedule.
func WithFacades(f Facades) Option { return func(p *Publisher) { p.facades = f } }

// WithLogger sets the logger.
func WithLogger(l Logger) Option { return func(p *Publisher) { p.logger = l } }

// WithClock sets the time source of facade evaluations.
func WithClock(now func() time.Time) Option { return func(p *Publisher) { p.now = now } }

// Publisher pushes the day's calendar facts once a day and the facade
// exposure on a shorter schedule, to MQTT and optionally to InfluxDB.
type Publisher struct {
	cron     *cron.Cron
	calendar Calendar
	facades  Facades
	broker   Broker
	history  History
	logger   Logger
	now      func() time.Time
	topics   mqtt.Topics
}

// New registers the schedules. Invalid cron expressions are an error.
func New(cfg Config, calendar Calendar, opts ...Option) (*Publisher, error) {
	p := &Publisher{
		calendar: calendar,
		logger:   noopLogger{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}

	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}
	p.cron = cron.New(
		cron.WithLocation(loc),
		cron.WithChain(cron.Recover(cronLogger{p.logger}), cron.SkipIfStillRunning(cronLogger{p.logger})),
	)

	if _, err := p.cron.AddFunc(orDefault(cfg.EphemerisSchedule, DefaultEphemerisSchedule), p.runToday); err != nil {
		return nil, fmt.Errorf("ephemeris publish schedule: %w", err)
	}
	if p.facades != nil {
		if _, err := p.cron.AddFunc(orDefault(cfg.AstroSchedule, DefaultAstroSchedule), p.runFacades); err != nil {
			return nil, fmt.Errorf("astro publish schedule: %w", err)
		}
	}
	return p, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// Start publishes everything once, then follows the schedules.
func (p *Publisher) Start() {
	p.runToday()
	if p.facades != nil {
		p.runFacades()
	}
	p.cron.Start()
	p.logger.Info("publisher started", "jobs", len(p.cron.Entries()))
}

// Stop halts the schedules and waits for running jobs or ctx.
func (p *Publisher) Stop(ctx context.Context) error {
	select {
	case <-p.cron.Stop().Done():
		return nil
	case <-ctx.Done():
		return fmt.Errorf("stopping publisher: %w", ctx.Err())
	}
}

func (p *Publisher) runToday() {
	if err := p.PublishToday(); err != nil {
		p.logger.Error("publishing ephemeris", "error", err)
	}
}

func (p *Publisher) runFacades() {
	if err := p.PublishFacades(); err != nil {
		p.logger.Error("publishing facades", "error", err)
	}
}

// PublishToday publishes the retained facts of the current day and records
// them in the history store.
func (p *Publisher) PublishToday() error {
	sum, err := p.calendar.Summary(0)
	if err != nil {
		return err
	}

	if p.history != nil {
		p.history.WriteEphemeris(influxdb.DayRecord{
			Date:        sum.Day,
			Country:     p.calendar.Settings().Country,
			Holiday:     sum.Holiday,
			HolidayName: sum.HolidayName,
			Weekend:     sum.Weekend,
			Daysets:     sum.Daysets,
		})
	}
	if p.broker != nil {
		if err := p.broker.PublishJSON(p.topics.EphemerisToday(), sum, true); err != nil {
			return err
		}
	}
	p.logger.Info("ephemeris published", "date", sum.Date, "holiday", sum.HolidayName, "weekend", sum.Weekend)
	return nil
}

// PublishFacades publishes the retained exposure of every facade. A failed
// publish does not stop the others; all failures are returned together.
func (p *Publisher) PublishFacades() error {
	if p.facades == nil {
		return nil
	}

	var errs []error
	for _, s := range p.facades.States(p.now()) {
		if p.history != nil {
			p.history.WriteFacade(influxdb.FacadeRecord{
				ID:        s.ID,
				Time:      s.Time,
				Side:      string(s.Side),
				FacingSun: s.FacingSun,
				Bearing:   s.Bearing,
				Azimuth:   s.Sun.Azimuth,
				Elevation: s.Sun.Elevation,
			})
		}
		if p.broker != nil {
			if err := p.broker.PublishJSON(p.topics.AstroFacade(s.ID), s, true); err != nil {
				errs = append(errs, fmt.Errorf("facade %s: %w", s.ID, err))
			}
		}
	}
	return errors.Join(errs...)
}

// cronLogger adapts Logger to cron.Logger.
type cronLogger struct {
	l Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...any) {
	c.l.Info("cron: "+msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...any) {
	c.l.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
