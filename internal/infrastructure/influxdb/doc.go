// Package influxdb records ephemeris history in InfluxDB v2.
//
// Each daily publish writes an "ephemeris" point (holiday, holiday name,
// weekend and one dayset_* field per configured dayset, tagged by country),
// and each facade evaluation writes an "astro_facade" point. Writes are
// batched by the client library and never block the caller; failures are
// reported through SetOnError.
//
//	client, err := influxdb.Connect(cfg.InfluxDB)
//	if errors.Is(err, influxdb.ErrDisabled) {
//	    // history is optional
//	}
//	defer client.Close()
//	client.WriteEphemeris(influxdb.DayRecord{Date: day, Holiday: true, HolidayName: "Christmas Day"})
package influxdb
