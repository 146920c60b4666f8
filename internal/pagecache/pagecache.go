// Package pagecache caches raw provider responses (search result pages,
// encyclopedia summaries) keyed by request URL, so repeated runs do not
// re-hit the same external endpoints. Entries are TTL-bounded: source
// pages drift, and a stale hit is worse than a re-fetch.
package pagecache

import "time"

// Cache is the interface shared by the memory and SQLite backends. The
// TTL is fixed per cache at construction time.
type Cache interface {
	// Get retrieves a response body by URL. Returns the body and true
	// when present and not expired.
	Get(url string) ([]byte, bool)

	// Set stores a response body under its URL.
	Set(url string, body []byte) error

	// Clear removes all entries.
	Clear() error

	// Close releases backend resources.
	Close() error
}

// DefaultTTL bounds how long a cached page is trusted.
const DefaultTTL = 24 * time.Hour

// Disabled is a Cache that stores nothing; every lookup misses. Used when
// page caching is turned off in configuration.
type Disabled struct{}

func (Disabled) Get(string) ([]byte, bool) { return nil, false }
func (Disabled) Set(string, []byte) error  { return nil }
func (Disabled) Clear() error              { return nil }
func (Disabled) Close() error              { return nil }
