// Package config handles loading and validating ephemeris service configuration.
//
// This package manages:
//   - Loading configuration from YAML files
//   - Overriding with environment variables
//   - Validation of required fields
//   - Flattening the ephemeris section into the service's property map
//
// Security Considerations:
//   - Sensitive values (passwords, tokens) should be set via environment variables
//   - The config file should have restricted permissions (0600)
//   - The JWT secret guards every mutating API route
//
// Usage:
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	props := cfg.Ephemeris.Properties() // {"dayset-weekend": "SATURDAY,SUNDAY", ...}
package config
