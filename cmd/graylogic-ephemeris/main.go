// Gray Logic Ephemeris - calendar and sun facts for building automation
//
// This is the main entry point of the ephemeris service. It answers
// "is today a bank holiday / weekend / school day" for the site's country,
// tracks the sun against the building facades, publishes both over MQTT
// and gates automation rules on them.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/text/language"

	_ "github.com/nerrad567/gray-logic-ephemeris/migrations"

	"github.com/nerrad567/gray-logic-ephemeris/internal/api"
	"github.com/nerrad567/gray-logic-ephemeris/internal/astro"
	"github.com/nerrad567/gray-logic-ephemeris/internal/automation"
	"github.com/nerrad567/gray-logic-ephemeris/internal/ephemeris"
	"github.com/nerrad567/gray-logic-ephemeris/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-ephemeris/internal/infrastructure/database"
	"github.com/nerrad567/gray-logic-ephemeris/internal/infrastructure/influxdb"
	"github.com/nerrad567/gray-logic-ephemeris/internal/infrastructure/logging"
	"github.com/nerrad567/gray-logic-ephemeris/internal/infrastructure/mqtt"
	"github.com/nerrad567/gray-logic-ephemeris/internal/publisher"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

// shutdownTimeout bounds the wait for the publisher's running jobs.
const shutdownTimeout = 10 * time.Second

func main() {
	// Cancel on Ctrl+C and SIGTERM for graceful shutdown.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting Gray Logic Ephemeris",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Open database
	db, err := database.Open(ctx, database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	// Ephemeris service: configuration file seeded, stored settings on top
	store := ephemeris.NewSQLiteStore(db.DB)
	svc, err := newEphemerisService(ctx, cfg, store, log.Component("ephemeris"))
	if err != nil {
		return err
	}
	settings := svc.Settings()
	log.Info("ephemeris service initialised",
		"country", settings.Country,
		"parameters", strings.Join(settings.Parameters, "/"),
		"daysets", strings.Join(svc.Daysets().Names(), ","),
	)

	tracker, err := astro.NewTracker(cfg.Site.Location.Latitude, cfg.Site.Location.Longitude, facadeConfigs(cfg.Astro.Facades))
	if err != nil {
		return fmt.Errorf("configuring facades: %w", err)
	}
	log.Info("astro tracker initialised", "facades", len(cfg.Astro.Facades))

	// Connect to MQTT broker (optional)
	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		mqttClient, err = mqtt.Connect(cfg.MQTT)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		mqttClient.SetLogger(log.Component("mqtt"))
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)
	} else {
		log.Info("MQTT disabled")
	}

	// Connect to InfluxDB (optional)
	influxClient, err := influxdb.Connect(cfg.InfluxDB)
	switch {
	case errors.Is(err, influxdb.ErrDisabled):
		log.Info("InfluxDB disabled")
	case err != nil:
		return fmt.Errorf("connecting to InfluxDB: %w", err)
	default:
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)
	}

	// Rule engine
	engine, err := startRuleEngine(ctx, cfg, svc, mqttClient, log.Component("automation"))
	if err != nil {
		return err
	}
	defer func() {
		log.Info("stopping rule engine")
		engine.Stop()
	}()

	if mqttClient != nil {
		topic := mqtt.Topics{}.AllAutomationTriggers()
		if subErr := mqttClient.Subscribe(topic, 1, ruleTriggerHandler(ctx, engine)); subErr != nil {
			return fmt.Errorf("subscribing to rule triggers: %w", subErr)
		}
		log.Info("listening for rule triggers", "topic", topic)
	}

	// Scheduled publishing of today's facts and facade exposure
	pubOpts := []publisher.Option{
		publisher.WithLogger(log.Component("publisher")),
		publisher.WithFacades(tracker),
	}
	if mqttClient != nil {
		pubOpts = append(pubOpts, publisher.WithBroker(mqttClient))
	}
	if influxClient != nil {
		pubOpts = append(pubOpts, publisher.WithHistory(influxClient))
	}
	pub, err := publisher.New(publisher.Config{
		EphemerisSchedule: cfg.Ephemeris.PublishSchedule,
		AstroSchedule:     cfg.Astro.PublishSchedule,
		Location:          cfg.GetLocation(),
	}, svc, pubOpts...)
	if err != nil {
		return fmt.Errorf("creating publisher: %w", err)
	}
	pub.Start()
	defer func() {
		log.Info("stopping publisher")
		stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if stopErr := pub.Stop(stopCtx); stopErr != nil {
			log.Error("error stopping publisher", "error", stopErr)
		}
	}()

	// HTTP API
	deps := api.Deps{
		Config:    cfg.API,
		Security:  cfg.Security,
		Logger:    log.Component("api"),
		Ephemeris: svc,
		Store:     store,
		Tracker:   tracker,
		Rules:     engine,
		DB:        db.DB,
		Version:   version,
	}
	if mqttClient != nil {
		deps.MQTT = mqttClient
	}
	if influxClient != nil {
		deps.InfluxDB = influxClient
	}
	server, err := api.New(deps)
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if startErr := server.Start(ctx); startErr != nil {
		return fmt.Errorf("starting API server: %w", startErr)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	if err := healthCheck(ctx, db, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")
	<-ctx.Done()
	log.Info("shutdown signal received, cleaning up")

	// Deferred calls run in reverse order: API, publisher, rule engine,
	// InfluxDB, MQTT, database.
	return nil
}

// getConfigPath returns the configuration file path.
// Uses GRAYLOGIC_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("GRAYLOGIC_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// newEphemerisService builds and configures the ephemeris service from the
// configuration file and the stored settings.
func newEphemerisService(ctx context.Context, cfg *config.Config, store ephemeris.Store, log *logging.Logger) (*ephemeris.Service, error) {
	opts := []ephemeris.Option{
		ephemeris.WithLocation(cfg.GetLocation()),
		ephemeris.WithLogger(log),
		ephemeris.WithManagerCache(ephemeris.NewManagerCache(cfg.Ephemeris.MaxUserFiles)),
		ephemeris.WithHolidayDir(cfg.Ephemeris.HolidayDir),
	}
	if cfg.Site.Locale != "" {
		tag, err := language.Parse(cfg.Site.Locale)
		if err != nil {
			return nil, fmt.Errorf("parsing site locale: %w", err)
		}
		opts = append(opts, ephemeris.WithLocale(tag))
	}
	svc := ephemeris.NewService(opts...)

	stored, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading ephemeris settings: %w", err)
	}
	props := effectiveProperties(cfg.Ephemeris.Properties(), stored)
	if err := ephemeris.ValidateProperties(props); err != nil {
		// Configure skips what it cannot apply; the service still starts.
		log.Warn("ephemeris configuration has invalid entries", "error", err)
	}
	svc.Configure(props)
	return svc, nil
}

// effectiveProperties overlays stored settings on the configuration file.
// Stored daysets add to or replace the file's daysets. When anything is
// stored, the country, region and city come from the store alone so a
// region saved for one country is never combined with another country.
func effectiveProperties(file, stored map[string]string) map[string]string {
	if len(stored) == 0 {
		return maps.Clone(file)
	}
	props := make(map[string]string, len(file)+len(stored))
	for k, v := range file {
		if strings.HasPrefix(k, ephemeris.DaysetPrefix) {
			props[k] = v
		}
	}
	maps.Copy(props, stored)
	return props
}

// facadeConfigs converts the astro section of the configuration.
func facadeConfigs(in []config.FacadeConfig) []astro.FacadeConfig {
	out := make([]astro.FacadeConfig, 0, len(in))
	for _, f := range in {
		out = append(out, astro.FacadeConfig{
			ID:             f.ID,
			Orientation:    f.Orientation,
			NegativeOffset: f.NegativeOffset,
			PositiveOffset: f.PositiveOffset,
			Margin:         f.Margin,
		})
	}
	return out
}

// startRuleEngine loads the rules file and activates every rule. Rules that
// fail to activate are logged and skipped; the service keeps running.
func startRuleEngine(ctx context.Context, cfg *config.Config, svc *ephemeris.Service, mqttClient *mqtt.Client, log *logging.Logger) (*automation.Engine, error) {
	var repo automation.Repository
	if cfg.Automation.RulesFile != "" {
		repo = automation.NewFileRepository(cfg.Automation.RulesFile)
	}
	registry := automation.NewRegistry(repo)
	registry.SetLogger(log)

	// A nil *mqtt.Client must not become a non-nil interface.
	var broker automation.MQTTClient
	if mqttClient != nil {
		broker = mqttClient
	}

	engine := automation.NewEngine(registry, broker, log)
	for _, f := range []automation.HandlerFactory{
		automation.NewWelcomeHomeFactory(broker, log),
		automation.NewEphemerisFactory(svc),
	} {
		if err := engine.RegisterFactory(f); err != nil {
			return nil, fmt.Errorf("registering rule handlers: %w", err)
		}
	}

	if err := engine.Start(ctx); err != nil {
		log.Error("some rules could not be activated", "rules_file", cfg.Automation.RulesFile, "error", err)
	}
	return engine, nil
}

// ruleTrigger is the part of the rule engine the trigger topic needs.
type ruleTrigger interface {
	TriggerRule(ctx context.Context, uid string, outputs map[string]any) error
}

// ruleTriggerHandler fires rules from graylogic/core/automation/{uid}/trigger
// messages. A non-empty payload must be a JSON object; it becomes the
// trigger outputs.
func ruleTriggerHandler(ctx context.Context, rules ruleTrigger) mqtt.MessageHandler {
	return func(topic string, payload []byte) error {
		uid, ok := mqtt.RuleUIDFromTriggerTopic(topic)
		if !ok {
			return fmt.Errorf("not a rule trigger topic: %s", topic)
		}

		var outputs map[string]any
		if len(strings.TrimSpace(string(payload))) > 0 {
			if err := json.Unmarshal(payload, &outputs); err != nil {
				return fmt.Errorf("rule %s: decoding trigger payload: %w", uid, err)
			}
		}
		if err := rules.TriggerRule(ctx, uid, outputs); err != nil {
			return fmt.Errorf("rule %s: %w", uid, err)
		}
		return nil
	}
}

// healthCheck verifies all infrastructure connections are healthy.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - db: Database connection to check
//   - mqttClient: MQTT client to check (may be nil if disabled)
//   - influxClient: InfluxDB client to check (may be nil if disabled)
//
// Returns:
//   - error: First health check failure, or nil if all healthy
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if mqttClient != nil {
		if err := mqttClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("mqtt: %w", err)
		}
	}
	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}
	return nil
}
