package api

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/nerrad567/gray-logic-ephemeris/internal/astro"
	"github.com/nerrad567/gray-logic-ephemeris/internal/ephemeris"
	"github.com/nerrad567/gray-logic-ephemeris/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-ephemeris/internal/infrastructure/logging"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// RuleTrigger fires automation rules on request.
type RuleTrigger interface {
	TriggerRule(ctx context.Context, uid string, outputs map[string]any) error
	ActiveRules() []string
}

// ConnectionStatus reports whether an outbound connection is up.
type ConnectionStatus interface {
	IsConnected() bool
}

// DBStats exposes connection pool statistics.
type DBStats interface {
	Stats() sql.DBStats
}

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config    config.APIConfig
	Security  config.SecurityConfig
	Logger    *logging.Logger
	Ephemeris *ephemeris.Service
	Store     ephemeris.Store  // optional: configuration changes are not persisted without it
	Tracker   *astro.Tracker   // optional
	Rules     RuleTrigger      // optional
	MQTT      ConnectionStatus // optional
	InfluxDB  ConnectionStatus // optional
	DB        DBStats          // optional
	Version   string
}

// Server is the HTTP API server of the ephemeris service.
//
// The server is created with New() and started with Start().
type Server struct {
	cfg       config.APIConfig
	secCfg    config.SecurityConfig
	logger    *logging.Logger
	ephemeris *ephemeris.Service
	store     ephemeris.Store
	tracker   *astro.Tracker
	rules     RuleTrigger
	mqtt      ConnectionStatus
	influx    ConnectionStatus
	db        DBStats
	version   string
	startTime time.Time
	now       func() time.Time
	server    *http.Server
}

// New creates a new API server with the given dependencies.
//
// The server is not started until Start() is called.
//
// Parameters:
//   - deps: Required dependencies (config, logger, ephemeris service)
//
// Returns:
//   - *Server: Configured server ready to start
//   - error: If required dependencies are missing
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Ephemeris == nil {
		return nil, fmt.Errorf("ephemeris service is required")
	}

	return &Server{
		cfg:       deps.Config,
		secCfg:    deps.Security,
		logger:    deps.Logger,
		ephemeris: deps.Ephemeris,
		store:     deps.Store,
		tracker:   deps.Tracker,
		rules:     deps.Rules,
		mqtt:      deps.MQTT,
		influx:    deps.InfluxDB,
		db:        deps.DB,
		version:   deps.Version,
		startTime: time.Now(),
		now:       time.Now,
	}, nil
}

// Start begins listening for HTTP connections in a background goroutine.
// The server can be stopped with Close().
//
// Returns:
//   - error: If the server is already running
func (s *Server) Start(_ context.Context) error {
	if s.server != nil {
		return fmt.Errorf("api server already started")
	}

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           s.buildRouter(),
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	go func() {
		var err error
		if s.cfg.TLS.Enabled {
			s.logger.Info("API server starting with TLS",
				"address", s.server.Addr,
				"cert", s.cfg.TLS.CertFile,
			)
			err = s.server.ListenAndServeTLS(s.cfg.TLS.CertFile, s.cfg.TLS.KeyFile)
		} else {
			s.logger.Info("API server starting", "address", s.server.Addr)
			err = s.server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Close gracefully shuts down the API server.
//
// It waits up to 10 seconds for in-flight requests to complete,
// then forcefully closes remaining connections.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck verifies the API server is running.
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}

	if s.server == nil {
		return fmt.Errorf("api server not started")
	}

	return nil
}
