package astro

import "errors"

// Domain errors for the astro package.
var (
	// ErrInvalidFacade is returned when a facade configuration is out of range.
	ErrInvalidFacade = errors.New("astro: invalid facade")

	// ErrInvalidLocation is returned for coordinates off the globe.
	ErrInvalidLocation = errors.New("astro: invalid location")
)
