package config

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for the ephemeris service.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Site       SiteConfig       `yaml:"site"`
	Database   DatabaseConfig   `yaml:"database"`
	MQTT       MQTTConfig       `yaml:"mqtt"`
	API        APIConfig        `yaml:"api"`
	InfluxDB   InfluxDBConfig   `yaml:"influxdb"`
	Logging    LoggingConfig    `yaml:"logging"`
	Security   SecurityConfig   `yaml:"security"`
	Ephemeris  EphemerisConfig  `yaml:"ephemeris"`
	Automation AutomationConfig `yaml:"automation"`
	Astro      AstroConfig      `yaml:"astro"`
}

// SiteConfig contains site-specific information.
type SiteConfig struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	Timezone string `yaml:"timezone"`

	// Locale is a BCP 47 tag (e.g. "en-GB", "de-DE"). Its region is the
	// default holiday country and its language selects display labels.
	Locale   string         `yaml:"locale"`
	Location LocationConfig `yaml:"location"`
}

// LocationConfig contains geographic coordinates for astronomical calculations.
type LocationConfig struct {
	Latitude  float64 `yaml:"latitude"`
	Longitude float64 `yaml:"longitude"`
}

// DatabaseConfig contains SQLite database settings.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Enabled   bool                `yaml:"enabled"`
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
}

// APIConfig contains HTTP API server settings.
type APIConfig struct {
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	TLS      TLSConfig        `yaml:"tls"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
	CORS     CORSConfig       `yaml:"cors"`
}

// TLSConfig contains TLS certificate settings.
type TLSConfig struct {
	Enabled  bool   `yaml:"enabled"`
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
}

// APITimeoutConfig contains HTTP timeout settings.
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// CORSConfig contains Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers"`
}

// InfluxDBConfig contains InfluxDB connection settings.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// SecurityConfig contains security settings.
type SecurityConfig struct {
	JWT JWTConfig `yaml:"jwt"`
}

// JWTConfig contains JWT token settings.
type JWTConfig struct {
	Secret string `yaml:"secret"`
	Issuer string `yaml:"issuer"`
}

// EphemerisConfig contains the calendar settings used to seed the ephemeris
// service. Values stored through the API take precedence at runtime.
type EphemerisConfig struct {
	// Country is an ISO 3166 alpha-2 code. Empty means "use the site locale's region".
	Country string `yaml:"country"`

	// Region and City refine the country calendar (e.g. "by" for Bavaria).
	Region string `yaml:"region"`
	City   string `yaml:"city"`

	// Daysets maps a dayset name to its weekday names.
	//
	//	daysets:
	//	  weekend: [SATURDAY, SUNDAY]
	//	  school: [MONDAY, TUESDAY, WEDNESDAY, THURSDAY, FRIDAY]
	Daysets map[string][]string `yaml:"daysets"`

	// MaxUserFiles bounds the number of user holiday files kept loaded.
	MaxUserFiles int `yaml:"max_user_files"`

	// HolidayDir is the only directory user holiday files are read from.
	HolidayDir string `yaml:"holiday_dir"`

	// PublishSchedule is the cron spec for publishing today's facts.
	PublishSchedule string `yaml:"publish_schedule"`
}

// AutomationConfig contains rule engine settings.
type AutomationConfig struct {
	// RulesFile is an optional YAML file of rules to load at startup.
	RulesFile string `yaml:"rules_file"`
}

// AstroConfig contains astronomical settings.
type AstroConfig struct {
	Facades         []FacadeConfig `yaml:"facades"`
	PublishSchedule string         `yaml:"publish_schedule"`
}

// FacadeConfig describes a building facade for sun exposure tracking.
// Angles are in degrees; orientation is the compass bearing the facade faces.
type FacadeConfig struct {
	ID             string `yaml:"id"`
	Orientation    int    `yaml:"orientation"`
	NegativeOffset int    `yaml:"negative_offset"`
	PositiveOffset int    `yaml:"positive_offset"`
	Margin         int    `yaml:"margin"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: GRAYLOGIC_SECTION_KEY
// For example: GRAYLOGIC_DATABASE_PATH, GRAYLOGIC_EPHEMERIS_COUNTRY
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Site: SiteConfig{
			ID:       "site-001",
			Name:     "Gray Logic",
			Timezone: "UTC",
			Locale:   "en-GB",
		},
		Database: DatabaseConfig{
			Path:        "./data/ephemeris.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		MQTT: MQTTConfig{
			Enabled: true,
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "graylogic-ephemeris",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
			},
		},
		API: APIConfig{
			Host: "0.0.0.0",
			Port: 8080,
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 30,
				Idle:  60,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Security: SecurityConfig{
			JWT: JWTConfig{
				Issuer: "graylogic",
			},
		},
		Ephemeris: EphemerisConfig{
			Daysets: map[string][]string{
				"weekend": {"SATURDAY", "SUNDAY"},
			},
			MaxUserFiles:    32,
			HolidayDir:      "./holidays",
			PublishSchedule: "5 0 * * *",
		},
		Astro: AstroConfig{
			PublishSchedule: "@every 5m",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: GRAYLOGIC_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("GRAYLOGIC_SITE_TIMEZONE"); v != "" {
		cfg.Site.Timezone = v
	}
	if v := os.Getenv("GRAYLOGIC_SITE_LOCALE"); v != "" {
		cfg.Site.Locale = v
	}

	if v := os.Getenv("GRAYLOGIC_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}

	if v := os.Getenv("GRAYLOGIC_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("GRAYLOGIC_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("GRAYLOGIC_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	if v := os.Getenv("GRAYLOGIC_API_HOST"); v != "" {
		cfg.API.Host = v
	}

	if v := os.Getenv("GRAYLOGIC_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}

	// Security - JWT secret (IMPORTANT: always override in production)
	if v := os.Getenv("GRAYLOGIC_JWT_SECRET"); v != "" {
		cfg.Security.JWT.Secret = v
	}

	if v := os.Getenv("GRAYLOGIC_EPHEMERIS_COUNTRY"); v != "" {
		cfg.Ephemeris.Country = v
	}
	if v := os.Getenv("GRAYLOGIC_EPHEMERIS_REGION"); v != "" {
		cfg.Ephemeris.Region = v
	}
}

// Validate checks the configuration for errors and security issues.
func (c *Config) Validate() error {
	var errs []string

	if c.Site.ID == "" {
		errs = append(errs, "site.id is required")
	}
	if _, err := time.LoadLocation(c.Site.Timezone); err != nil {
		errs = append(errs, fmt.Sprintf("site.timezone %q is not a known time zone", c.Site.Timezone))
	}
	if _, err := language.Parse(c.Site.Locale); c.Site.Locale != "" && err != nil {
		errs = append(errs, fmt.Sprintf("site.locale %q is not a valid language tag", c.Site.Locale))
	}
	if c.Site.Location.Latitude < -90 || c.Site.Location.Latitude > 90 {
		errs = append(errs, "site.location.latitude must be between -90 and 90")
	}
	if c.Site.Location.Longitude < -180 || c.Site.Location.Longitude > 180 {
		errs = append(errs, "site.location.longitude must be between -180 and 180")
	}

	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}

	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}

	if c.API.Port < 1 || c.API.Port > 65535 {
		errs = append(errs, "api.port must be between 1 and 65535")
	}

	// The JWT secret guards configuration changes and rule triggers.
	const minJWTSecretLength = 32
	if c.Security.JWT.Secret == "" {
		errs = append(errs, "security.jwt.secret is required (set GRAYLOGIC_JWT_SECRET environment variable)")
	} else if len(c.Security.JWT.Secret) < minJWTSecretLength {
		errs = append(errs, "security.jwt.secret must be at least 32 characters for adequate security")
	}

	if c.Ephemeris.Country != "" && len(c.Ephemeris.Country) != 2 {
		errs = append(errs, "ephemeris.country must be a two-letter ISO 3166 code")
	}
	if c.Ephemeris.City != "" && c.Ephemeris.Region == "" {
		errs = append(errs, "ephemeris.city requires ephemeris.region")
	}
	if c.Ephemeris.MaxUserFiles < 0 {
		errs = append(errs, "ephemeris.max_user_files cannot be negative")
	}
	if strings.TrimSpace(c.Ephemeris.HolidayDir) == "" {
		errs = append(errs, "ephemeris.holiday_dir is required")
	}

	seen := make(map[string]bool, len(c.Astro.Facades))
	for i, f := range c.Astro.Facades {
		if f.ID == "" {
			errs = append(errs, fmt.Sprintf("astro.facades[%d].id is required", i))
			continue
		}
		if seen[f.ID] {
			errs = append(errs, fmt.Sprintf("astro.facades[%d].id %q is duplicated", i, f.ID))
		}
		seen[f.ID] = true
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// Properties flattens the ephemeris section into the property map understood
// by the ephemeris service ("country", "region", "city", "dayset-<name>").
func (e EphemerisConfig) Properties() map[string]string {
	props := make(map[string]string, len(e.Daysets)+3)
	if e.Country != "" {
		props["country"] = e.Country
	}
	if e.Region != "" {
		props["region"] = e.Region
	}
	if e.City != "" {
		props["city"] = e.City
	}

	names := make([]string, 0, len(e.Daysets))
	for name := range e.Daysets {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		props["dayset-"+name] = strings.Join(e.Daysets[name], ",")
	}
	return props
}

// GetLocation returns the site time zone. Validate guarantees it loads.
func (c *Config) GetLocation() *time.Location {
	loc, err := time.LoadLocation(c.Site.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// GetReadTimeout returns the API read timeout as a Duration.
func (c *Config) GetReadTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Read) * time.Second
}

// GetWriteTimeout returns the API write timeout as a Duration.
func (c *Config) GetWriteTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Write) * time.Second
}

// GetIdleTimeout returns the API idle timeout as a Duration.
func (c *Config) GetIdleTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Idle) * time.Second
}
