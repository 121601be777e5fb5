package publisher

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nerrad567/gray-logic-ephemeris/internal/astro"
	"github.com/nerrad567/gray-logic-ephemeris/internal/ephemeris"
	"github.com/nerrad567/gray-logic-ephemeris/internal/infrastructure/influxdb"
)

type fakeCalendar struct {
	summary ephemeris.DaySummary
	err     error
}

func (c *fakeCalendar) Summary(int) (ephemeris.DaySummary, error) { return c.summary, c.err }
func (c *fakeCalendar) Settings() ephemeris.Settings              { return ephemeris.Settings{Country: "gb"} }

type fakeFacades struct {
	states []astro.FacadeState
	asked  time.Time
}

func (f *fakeFacades) States(at time.Time) []astro.FacadeState {
	f.asked = at
	return f.states
}

type published struct {
	topic    string
	value    any
	retained bool
}

type fakeBroker struct {
	mu      sync.Mutex
	msgs    []published
	failFor string
}

func (b *fakeBroker) PublishJSON(topic string, v any, retained bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if topic == b.failFor {
		return errors.New("broker down")
	}
	b.msgs = append(b.msgs, published{topic, v, retained})
	return nil
}

func (b *fakeBroker) topics() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, 0, len(b.msgs))
	for _, m := range b.msgs {
		out = append(out, m.topic)
	}
	return out
}

type fakeHistory struct {
	days    []influxdb.DayRecord
	facades []influxdb.FacadeRecord
}

func (h *fakeHistory) WriteEphemeris(r influxdb.DayRecord) { h.days = append(h.days, r) }
func (h *fakeHistory) WriteFacade(r influxdb.FacadeRecord) { h.facades = append(h.facades, r) }

var boxingDay = ephemeris.DaySummary{
	Day:         time.Date(2025, 12, 26, 0, 0, 0, 0, time.UTC),
	Date:        "2025-12-26",
	Holiday:     true,
	HolidayName: "Boxing Day",
	Daysets:     map[string]bool{"weekend": false},
}

func TestPublishToday(t *testing.T) {
	broker := &fakeBroker{}
	history := &fakeHistory{}
	p, err := New(Config{}, &fakeCalendar{summary: boxingDay}, WithBroker(broker), WithHistory(history))
	require.NoError(t, err)

	require.NoError(t, p.PublishToday())

	require.Len(t, broker.msgs, 1)
	msg := broker.msgs[0]
	assert.Equal(t, "graylogic/core/ephemeris/today", msg.topic)
	assert.True(t, msg.retained)
	assert.Equal(t, boxingDay, msg.value)

	require.Len(t, history.days, 1)
	assert.Equal(t, influxdb.DayRecord{
		Date:        boxingDay.Day,
		Country:     "gb",
		Holiday:     true,
		HolidayName: "Boxing Day",
		Daysets:     map[string]bool{"weekend": false},
	}, history.days[0])
}

func TestPublishToday_CalendarError(t *testing.T) {
	broker := &fakeBroker{}
	p, err := New(Config{}, &fakeCalendar{err: ephemeris.ErrUnknownCountry}, WithBroker(broker))
	require.NoError(t, err)

	assert.ErrorIs(t, p.PublishToday(), ephemeris.ErrUnknownCountry)
	assert.Empty(t, broker.msgs)
}

func TestPublishFacades(t *testing.T) {
	now := time.Date(2026, 6, 21, 12, 0, 0, 0, time.UTC)
	facades := &fakeFacades{states: []astro.FacadeState{
		{ID: "south", Time: now, Sun: astro.Position{Azimuth: 179, Elevation: 62}, Exposure: astro.Exposure{FacingSun: true, Side: astro.SideFront, Bearing: -1}},
		{ID: "north", Time: now, Sun: astro.Position{Azimuth: 179, Elevation: 62}, Exposure: astro.Exposure{Side: astro.SideBack, Bearing: 179}},
	}}
	broker := &fakeBroker{failFor: "graylogic/core/astro/facade/south"}
	history := &fakeHistory{}

	p, err := New(Config{}, &fakeCalendar{}, WithFacades(facades), WithBroker(broker), WithHistory(history),
		WithClock(func() time.Time { return now }))
	require.NoError(t, err)

	err = p.PublishFacades()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "facade south")
	assert.Equal(t, now, facades.asked)

	assert.Equal(t, []string{"graylogic/core/astro/facade/north"}, broker.topics())
	require.Len(t, history.facades, 2)
	assert.Equal(t, "front", history.facades[0].Side)
	assert.InDelta(t, 62, history.facades[0].Elevation, 1e-9)
}

func TestPublishFacades_NoFacades(t *testing.T) {
	p, err := New(Config{}, &fakeCalendar{})
	require.NoError(t, err)
	assert.NoError(t, p.PublishFacades())
	assert.Len(t, p.cron.Entries(), 1)
}

func TestNew_Schedules(t *testing.T) {
	p, err := New(Config{AstroSchedule: "*/10 * * * *"}, &fakeCalendar{}, WithFacades(&fakeFacades{}))
	require.NoError(t, err)
	assert.Len(t, p.cron.Entries(), 2)

	_, err = New(Config{EphemerisSchedule: "not a schedule"}, &fakeCalendar{})
	assert.ErrorContains(t, err, "ephemeris publish schedule")

	_, err = New(Config{AstroSchedule: "61 * * * *"}, &fakeCalendar{}, WithFacades(&fakeFacades{}))
	assert.ErrorContains(t, err, "astro publish schedule")
}

func TestStartStop(t *testing.T) {
	broker := &fakeBroker{}
	p, err := New(Config{Location: time.UTC}, &fakeCalendar{summary: boxingDay},
		WithBroker(broker), WithFacades(&fakeFacades{states: []astro.FacadeState{{ID: "east"}}}))
	require.NoError(t, err)

	p.Start()
	assert.Equal(t, []string{
		"graylogic/core/ephemeris/today",
		"graylogic/core/astro/facade/east",
	}, broker.topics())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, p.Stop(ctx))
}
