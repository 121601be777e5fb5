// Package api implements the HTTP REST API of the ephemeris service.
//
// This package provides:
//   - Calendar queries relative to today: bank holiday, weekend, dayset
//     membership and user holiday files
//   - The ephemeris configuration, readable by anyone and writable with a JWT
//   - Current sun exposure of the configured facades
//   - Manual rule triggers for the automation engine
//   - Middleware stack (request ID, logging, recovery, CORS, body limit)
//
// # Routes
//
//	GET  /api/v1/health
//	GET  /api/v1/metrics
//	GET  /api/v1/ephemeris/holiday?offset=N
//	GET  /api/v1/ephemeris/weekend?offset=N
//	GET  /api/v1/ephemeris/daysets
//	GET  /api/v1/ephemeris/daysets/{name}?offset=N
//	GET  /api/v1/ephemeris/holiday-file?file=PATH&offset=N (JWT)
//	GET  /api/v1/ephemeris/options?uri=system:ephemeris&locale=de
//	GET  /api/v1/ephemeris/config
//	PUT  /api/v1/ephemeris/config                 (JWT)
//	GET  /api/v1/astro/facades
//	POST /api/v1/automation/rules/{uid}/trigger   (JWT)
//
// # Security
//
// Write routes and holiday file lookups require an HS256 bearer token
// signed with security.jwt.secret. Holiday files are read only from
// ephemeris.holiday_dir. When security.jwt.issuer is set the token's iss
// claim must match it.
//
// # Graceful Degradation
//
// The store, tracker, rule engine and connection checks are optional. Without
// a store, configuration changes apply until restart; without a tracker the
// facade list is empty; without a rule engine triggers answer 503.
package api
