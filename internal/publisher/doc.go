// Package publisher runs the service's schedules: the day's calendar facts
// shortly after midnight (graylogic/core/ephemeris/today) and the sun
// exposure of each facade every few minutes
// (graylogic/core/astro/facade/{id}). Both are retained MQTT messages and
// are optionally recorded in InfluxDB.
package publisher
