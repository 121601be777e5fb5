package api

import (
	"net/http"
	"runtime"
	"time"
)

// SystemMetrics represents the complete system metrics response.
type SystemMetrics struct {
	Timestamp     string           `json:"timestamp"`
	Version       string           `json:"version"`
	UptimeSeconds int64            `json:"uptime_seconds"`
	Runtime       RuntimeMetrics   `json:"runtime"`
	MQTT          ConnMetrics      `json:"mqtt"`
	InfluxDB      ConnMetrics      `json:"influxdb"`
	Ephemeris     EphemerisMetrics `json:"ephemeris"`
	Automation    RuleMetrics      `json:"automation"`
	Database      *DatabaseMetrics `json:"database,omitempty"`
}

// RuntimeMetrics contains Go runtime statistics.
type RuntimeMetrics struct {
	Goroutines    int     `json:"goroutines"`
	MemoryAllocMB float64 `json:"memory_alloc_mb"`
	MemoryTotalMB float64 `json:"memory_total_mb"`
	NumGC         uint32  `json:"num_gc"`
}

// ConnMetrics describes an outbound connection.
type ConnMetrics struct {
	Configured bool `json:"configured"`
	Connected  bool `json:"connected"`
}

// EphemerisMetrics contains calendar statistics.
type EphemerisMetrics struct {
	Country       string `json:"country"`
	Daysets       int    `json:"daysets"`
	CountryCaches int    `json:"cached_countries"`
	HolidayFiles  int    `json:"cached_holiday_files"`
	Facades       int    `json:"facades"`
}

// RuleMetrics contains rule engine statistics.
type RuleMetrics struct {
	ActiveRules int `json:"active_rules"`
}

// DatabaseMetrics contains database connection pool statistics.
type DatabaseMetrics struct {
	OpenConnections int   `json:"open_connections"`
	InUse           int   `json:"in_use"`
	Idle            int   `json:"idle"`
	WaitCount       int64 `json:"wait_count"`
}

// handleMetrics returns system metrics.
func (s *Server) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	countries, files := s.ephemeris.CachedManagers()
	metrics := SystemMetrics{
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		Version:       s.version,
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
		Runtime: RuntimeMetrics{
			Goroutines:    runtime.NumGoroutine(),
			MemoryAllocMB: float64(memStats.Alloc) / 1024 / 1024,
			MemoryTotalMB: float64(memStats.TotalAlloc) / 1024 / 1024,
			NumGC:         memStats.NumGC,
		},
		MQTT:     connMetrics(s.mqtt),
		InfluxDB: connMetrics(s.influx),
		Ephemeris: EphemerisMetrics{
			Country:       s.ephemeris.Settings().Country,
			Daysets:       len(s.ephemeris.Daysets().Names()),
			CountryCaches: countries,
			HolidayFiles:  files,
		},
	}

	if s.tracker != nil {
		metrics.Ephemeris.Facades = len(s.tracker.Facades())
	}
	if s.rules != nil {
		metrics.Automation.ActiveRules = len(s.rules.ActiveRules())
	}
	if s.db != nil {
		dbStats := s.db.Stats()
		metrics.Database = &DatabaseMetrics{
			OpenConnections: dbStats.OpenConnections,
			InUse:           dbStats.InUse,
			Idle:            dbStats.Idle,
			WaitCount:       dbStats.WaitCount,
		}
	}

	writeJSON(w, http.StatusOK, metrics)
}

func connMetrics(c ConnectionStatus) ConnMetrics {
	if c == nil {
		return ConnMetrics{}
	}
	return ConnMetrics{Configured: true, Connected: c.IsConnected()}
}
