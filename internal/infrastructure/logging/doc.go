// Package logging provides structured logging for the ephemeris service.
//
// This package wraps Go's standard log/slog package to provide
// consistent, structured logging across the entire application.
//
// # Configuration
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// # Usage
//
//	logger := logging.New(cfg.Logging, "1.0.0")
//	logger.Component("ephemeris").Warn("dayset not configured", "dayset", name)
//
// Never log secrets, tokens, or passwords.
package logging
