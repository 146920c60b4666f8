package pagecache

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Memory is an in-process page cache backed by an expirable LRU. It is the
// default backend: fetch volume is human-paced, so a few hundred pages
// cover a whole session.
type Memory struct {
	lru *expirable.LRU[string, []byte]
}

// NewMemory creates a memory cache holding at most maxEntries pages, each
// expiring after ttl.
func NewMemory(maxEntries int, ttl time.Duration) *Memory {
	if maxEntries <= 0 {
		maxEntries = 256
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Memory{lru: expirable.NewLRU[string, []byte](maxEntries, nil, ttl)}
}

// Get retrieves a response body by URL.
func (m *Memory) Get(url string) ([]byte, bool) {
	return m.lru.Get(url)
}

// Set stores a response body under its URL.
func (m *Memory) Set(url string, body []byte) error {
	m.lru.Add(url, body)
	return nil
}

// Clear removes all entries.
func (m *Memory) Clear() error {
	m.lru.Purge()
	return nil
}

// Close is a no-op for the memory backend.
func (m *Memory) Close() error {
	return nil
}
