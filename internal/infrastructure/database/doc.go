// Package database provides the SQLite handle used by the ephemeris service.
//
// The database holds operator overrides for the ephemeris configuration
// (country, region, city and dayset definitions) so that changes made
// through the API survive a restart. Everything else is derived at runtime.
//
// Connections run in WAL mode with a single writer. Schema changes are
// embedded migrations named YYYYMMDD_HHMMSS_description.up.sql with an
// optional matching .down.sql:
//
//	db, err := database.Open(ctx, database.Config{Path: cfg.Database.Path, WALMode: true})
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx); err != nil {
//	    return err
//	}
//
// All queries use parameterised statements and the file is created 0600.
package database
