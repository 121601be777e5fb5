package ephemeris

import "errors"

// Domain errors for the ephemeris package.
//
// Check them with errors.Is:
//
//	if errors.Is(err, ephemeris.ErrInvalidHolidayFile) {
//	    // reject the request
//	}
var (
	// ErrUnknownCountry is returned when no holiday calendar exists for the
	// configured country code.
	ErrUnknownCountry = errors.New("ephemeris: unknown country")

	// ErrInvalidHolidayFile is returned when a holiday file name cannot be
	// turned into a file URL.
	ErrInvalidHolidayFile = errors.New("ephemeris: invalid holiday file name")

	// ErrHolidayFileLoad is returned when a holiday file cannot be read or
	// does not contain valid holiday definitions.
	ErrHolidayFileLoad = errors.New("ephemeris: loading holiday file")

	// ErrInvalidDayset is returned when a dayset definition is malformed.
	ErrInvalidDayset = errors.New("ephemeris: invalid dayset")

	// ErrInvalidProperty is returned by ValidateProperties for a property
	// value that can never be applied.
	ErrInvalidProperty = errors.New("ephemeris: invalid property")
)
