package influxdb

import (
	"errors"
	"testing"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/nerrad567/gray-logic-ephemeris/internal/infrastructure/config"
)

func fieldMap(p *write.Point) map[string]any {
	out := make(map[string]any)
	for _, f := range p.FieldList() {
		out[f.Key] = f.Value
	}
	return out
}

func tagMap(p *write.Point) map[string]string {
	out := make(map[string]string)
	for _, tag := range p.TagList() {
		out[tag.Key] = tag.Value
	}
	return out
}

func TestEphemerisPoint(t *testing.T) {
	day := time.Date(2025, 12, 25, 0, 0, 0, 0, time.UTC)
	p := EphemerisPoint(DayRecord{
		Date:        day,
		Country:     "de",
		Holiday:     true,
		HolidayName: "Erster Weihnachtstag",
		Daysets:     map[string]bool{"school": false, "weekend": false},
	})

	if p.Name() != MeasurementEphemeris {
		t.Errorf("Name() = %q", p.Name())
	}
	if !p.Time().Equal(day) {
		t.Errorf("Time() = %v, want %v", p.Time(), day)
	}
	if tags := tagMap(p); tags["country"] != "de" || len(tags) != 1 {
		t.Errorf("tags = %v", tags)
	}

	fields := fieldMap(p)
	want := map[string]any{
		"holiday":        true,
		"holiday_name":   "Erster Weihnachtstag",
		"weekend":        false,
		"dayset_school":  false,
		"dayset_weekend": false,
	}
	if len(fields) != len(want) {
		t.Fatalf("fields = %v", fields)
	}
	for k, v := range want {
		if fields[k] != v {
			t.Errorf("field %s = %v, want %v", k, fields[k], v)
		}
	}
}

func TestEphemerisPoint_OrdinaryDay(t *testing.T) {
	p := EphemerisPoint(DayRecord{Date: time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC)})

	fields := fieldMap(p)
	if _, ok := fields["holiday_name"]; ok {
		t.Error("holiday_name should be omitted on ordinary days")
	}
	if len(p.TagList()) != 0 {
		t.Errorf("tags = %v, want none without a country", tagMap(p))
	}
}

func TestFacadePoint(t *testing.T) {
	at := time.Date(2026, 6, 21, 12, 0, 0, 0, time.UTC)
	p := FacadePoint(FacadeRecord{
		ID: "south", Time: at, Side: "front", FacingSun: true,
		Bearing: -1.14, Azimuth: 178.86, Elevation: 61.93,
	})

	if p.Name() != MeasurementFacade {
		t.Errorf("Name() = %q", p.Name())
	}
	tags := tagMap(p)
	if tags["facade"] != "south" || tags["side"] != "front" {
		t.Errorf("tags = %v", tags)
	}
	fields := fieldMap(p)
	if fields["facing_sun"] != true || fields["elevation"] != 61.93 {
		t.Errorf("fields = %v", fields)
	}
}

func TestWriteOptions(t *testing.T) {
	opts := writeOptions(config.InfluxDBConfig{BatchSize: -1, FlushInterval: 0})
	if opts.BatchSize() != defaultBatchSize {
		t.Errorf("BatchSize() = %d, want %d", opts.BatchSize(), defaultBatchSize)
	}
	if opts.FlushInterval() != defaultFlushInterval*1000 {
		t.Errorf("FlushInterval() = %d", opts.FlushInterval())
	}

	opts = writeOptions(config.InfluxDBConfig{BatchSize: 10, FlushInterval: 2})
	if opts.BatchSize() != 10 || opts.FlushInterval() != 2000 {
		t.Errorf("options = %d/%d, want 10/2000", opts.BatchSize(), opts.FlushInterval())
	}
}

func TestConnect_Disabled(t *testing.T) {
	client, err := Connect(config.InfluxDBConfig{Enabled: false})
	if !errors.Is(err, ErrDisabled) {
		t.Fatalf("Connect() error = %v, want ErrDisabled", err)
	}
	if client != nil {
		t.Error("Connect() returned a client while disabled")
	}
}

func TestNilClient(t *testing.T) {
	var c *Client
	if c.IsConnected() {
		t.Error("nil client reports connected")
	}
	if err := c.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}
