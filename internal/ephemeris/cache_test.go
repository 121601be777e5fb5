package ephemeris

import (
	"errors"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingLoaders wraps the real constructors and counts calls per variant.
type countingLoaders struct {
	countries atomic.Int32
	files     atomic.Int32
}

func (c *countingLoaders) options() []CacheOption {
	return []CacheOption{
		WithCountryLoader(func(code string) (*HolidayManager, error) {
			c.countries.Add(1)
			return NewCountryManager(code)
		}),
		WithFileLoader(func(u *url.URL) (*HolidayManager, error) {
			c.files.Add(1)
			return &HolidayManager{source: u.String()}, nil
		}),
	}
}

func TestManagerCache_BuildsOncePerKey(t *testing.T) {
	loaders := &countingLoaders{}
	cache := NewManagerCache(4, loaders.options()...)

	var wg sync.WaitGroup
	managers := make([]*HolidayManager, 32)
	for i := range managers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			m, err := cache.Get(CountryKey{Code: "de"})
			assert.NoError(t, err)
			managers[i] = m
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), loaders.countries.Load())
	for _, m := range managers {
		assert.Same(t, managers[0], m)
	}

	// Country codes are case-insensitive.
	again, err := cache.Get(CountryKey{Code: "DE"})
	require.NoError(t, err)
	assert.Same(t, managers[0], again)
	assert.Equal(t, int32(1), loaders.countries.Load())
}

func TestManagerCache_KeySpacesAreDisjoint(t *testing.T) {
	loaders := &countingLoaders{}
	cache := NewManagerCache(4, loaders.options()...)

	u, err := FileURL("de")
	require.NoError(t, err)

	country, err := cache.Get(CountryKey{Code: "de"})
	require.NoError(t, err)
	file, err := cache.Get(FileKey{URL: u})
	require.NoError(t, err)

	assert.NotSame(t, country, file)
	assert.Equal(t, "country:de", country.Source())
	assert.Equal(t, "file:de", file.Source())

	countries, files := cache.Len()
	assert.Equal(t, 1, countries)
	assert.Equal(t, 1, files)
}

func TestManagerCache_FailedBuildIsNotCached(t *testing.T) {
	var calls atomic.Int32
	boom := errors.New("disk on fire")
	cache := NewManagerCache(4, WithFileLoader(func(u *url.URL) (*HolidayManager, error) {
		if calls.Add(1) == 1 {
			return nil, boom
		}
		return &HolidayManager{source: u.String()}, nil
	}))

	u, err := FileURL("/srv/holidays.yml")
	require.NoError(t, err)

	_, err = cache.Get(FileKey{URL: u})
	require.ErrorIs(t, err, boom)

	m, err := cache.Get(FileKey{URL: u})
	require.NoError(t, err)
	assert.Equal(t, u.String(), m.Source())
	assert.Equal(t, int32(2), calls.Load())
}

func TestManagerCache_FileEntriesAreBounded(t *testing.T) {
	loaders := &countingLoaders{}
	cache := NewManagerCache(2, loaders.options()...)

	get := func(name string) {
		t.Helper()
		u, err := FileURL(name)
		require.NoError(t, err)
		_, err = cache.Get(FileKey{URL: u})
		require.NoError(t, err)
	}

	get("/a.yml")
	get("/b.yml")
	get("/a.yml") // hit, a becomes most recent
	get("/c.yml") // evicts b
	assert.Equal(t, int32(3), loaders.files.Load())

	_, files := cache.Len()
	assert.Equal(t, 2, files)

	get("/a.yml") // still cached
	assert.Equal(t, int32(3), loaders.files.Load())
	get("/b.yml") // rebuilt
	assert.Equal(t, int32(4), loaders.files.Load())

	cache.Purge()
	_, files = cache.Len()
	assert.Zero(t, files)
}

func TestManagerCache_UnknownCountry(t *testing.T) {
	cache := NewManagerCache(0)
	_, err := cache.Get(CountryKey{Code: "zz"})
	require.ErrorIs(t, err, ErrUnknownCountry)

	countries, _ := cache.Len()
	assert.Zero(t, countries)
}

func TestManagerCache_FileKeyWithoutURL(t *testing.T) {
	cache := NewManagerCache(0)
	_, err := cache.Get(FileKey{})
	require.ErrorIs(t, err, ErrInvalidHolidayFile)
}
