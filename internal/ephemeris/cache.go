package ephemeris

import (
	"fmt"
	"net/url"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"
)

// DefaultMaxUserFiles bounds the number of holiday files kept loaded when
// the configuration does not say otherwise.
const DefaultMaxUserFiles = 32

// ManagerCache hands out holiday managers by key, building each one on
// first use.
//
// Country managers are kept for the life of the process; there are only as
// many as supported countries. File managers live in an LRU bounded by
// maxFiles since their key space is user controlled. Concurrent first
// requests for one key build the manager once. A failed build is returned
// to every waiting caller and is not cached, so the next request retries.
type ManagerCache struct {
	mu        sync.RWMutex
	countries map[string]*HolidayManager
	files     *lru.Cache[string, *HolidayManager]
	group     singleflight.Group

	byCode func(code string) (*HolidayManager, error)
	byURL  func(u *url.URL) (*HolidayManager, error)
}

// CacheOption configures a ManagerCache.
type CacheOption func(*ManagerCache)

// WithCountryLoader replaces the constructor used for CountryKey entries.
func WithCountryLoader(fn func(code string) (*HolidayManager, error)) CacheOption {
	return func(c *ManagerCache) { c.byCode = fn }
}

// WithFileLoader replaces the constructor used for FileKey entries.
func WithFileLoader(fn func(u *url.URL) (*HolidayManager, error)) CacheOption {
	return func(c *ManagerCache) { c.byURL = fn }
}

// NewManagerCache creates a cache holding at most maxFiles file managers.
// maxFiles <= 0 selects DefaultMaxUserFiles.
func NewManagerCache(maxFiles int, opts ...CacheOption) *ManagerCache {
	if maxFiles <= 0 {
		maxFiles = DefaultMaxUserFiles
	}
	files, err := lru.New[string, *HolidayManager](maxFiles)
	if err != nil {
		// lru.New only fails for a non-positive size.
		panic(fmt.Sprintf("ephemeris: creating file manager cache: %v", err))
	}

	c := &ManagerCache{
		countries: make(map[string]*HolidayManager),
		files:     files,
		byCode:    NewCountryManager,
		byURL:     LoadHolidayFile,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the manager for key, building it on first access.
func (c *ManagerCache) Get(key ManagerKey) (*HolidayManager, error) {
	if m, ok := c.lookup(key); ok {
		return m, nil
	}

	v, err, _ := c.group.Do(key.cacheKey(), func() (any, error) {
		// Another caller may have finished the build between lookup and Do.
		if m, ok := c.lookup(key); ok {
			return m, nil
		}
		m, err := c.build(key)
		if err != nil {
			return nil, err
		}
		c.store(key, m)
		return m, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*HolidayManager), nil
}

// Len returns the number of cached country and file managers.
func (c *ManagerCache) Len() (countries, files int) {
	c.mu.RLock()
	countries = len(c.countries)
	c.mu.RUnlock()
	return countries, c.files.Len()
}

// Purge drops every cached file manager so edited files are reloaded.
func (c *ManagerCache) Purge() {
	c.files.Purge()
}

func (c *ManagerCache) lookup(key ManagerKey) (*HolidayManager, bool) {
	switch key.(type) {
	case CountryKey:
		c.mu.RLock()
		defer c.mu.RUnlock()
		m, ok := c.countries[key.cacheKey()]
		return m, ok
	case FileKey:
		return c.files.Get(key.cacheKey())
	}
	return nil, false
}

func (c *ManagerCache) build(key ManagerKey) (*HolidayManager, error) {
	switch k := key.(type) {
	case CountryKey:
		return c.byCode(k.Code)
	case FileKey:
		if k.URL == nil {
			return nil, fmt.Errorf("%w: missing URL", ErrInvalidHolidayFile)
		}
		return c.byURL(k.URL)
	}
	return nil, fmt.Errorf("ephemeris: unsupported manager key %T", key)
}

func (c *ManagerCache) store(key ManagerKey, m *HolidayManager) {
	switch key.(type) {
	case CountryKey:
		c.mu.Lock()
		c.countries[key.cacheKey()] = m
		c.mu.Unlock()
	case FileKey:
		c.files.Add(key.cacheKey(), m)
	}
}
