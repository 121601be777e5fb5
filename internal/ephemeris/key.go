package ephemeris

import (
	"fmt"
	"net/url"
	"strings"
)

// ManagerKey identifies a holiday manager in the ManagerCache. It is either
// a CountryKey or a FileKey; the two key spaces never collide.
type ManagerKey interface {
	cacheKey() string
	String() string
}

// CountryKey selects the built-in calendar of an ISO 3166 country.
type CountryKey struct {
	Code string
}

func (k CountryKey) cacheKey() string { return "country:" + strings.ToLower(k.Code) }

func (k CountryKey) String() string { return strings.ToLower(k.Code) }

// FileKey selects a user holiday-definition file by URL.
type FileKey struct {
	URL *url.URL
}

func (k FileKey) cacheKey() string { return "file:" + k.String() }

func (k FileKey) String() string {
	if k.URL == nil {
		return ""
	}
	return k.URL.String()
}

// FileURL turns a file name into the file: URL used as a FileKey. Names
// that do not form a valid URL, such as ones containing control characters,
// broken percent escapes or a query or fragment, fail with
// ErrInvalidHolidayFile.
func FileURL(filename string) (*url.URL, error) {
	u, err := url.Parse("file:" + filename)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidHolidayFile, filename, err)
	}
	// Relative names parse as opaque URLs, which net/url does not unescape.
	if u.Opaque != "" {
		if _, err := url.PathUnescape(u.Opaque); err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrInvalidHolidayFile, filename, err)
		}
	}
	if u.Fragment != "" || u.RawQuery != "" || u.ForceQuery {
		return nil, fmt.Errorf("%w: %q: '#' and '?' are not allowed", ErrInvalidHolidayFile, filename)
	}
	if filePath(u) == "" {
		return nil, fmt.Errorf("%w: %q: empty path", ErrInvalidHolidayFile, filename)
	}
	return u, nil
}

// filePath returns the local file system path a file: URL points at.
func filePath(u *url.URL) string {
	if u.Opaque != "" {
		p, err := url.PathUnescape(u.Opaque)
		if err != nil {
			return ""
		}
		return p
	}
	return u.Path
}
