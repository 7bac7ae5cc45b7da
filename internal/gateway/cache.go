package gateway

import (
	"time"
)

// cacheEntry is the single remembered (query, result) pair.
type cacheEntry struct {
	// Key is the encoded query.
	Key string

	// Result is the denormalized page returned for Key.
	Result Page

	// CreatedAt is when the entry was stored.
	CreatedAt time.Time
}

func newCacheEntry(key string, result Page) *cacheEntry {
	return &cacheEntry{
		Key:       key,
		Result:    result.clone(),
		CreatedAt: time.Now(),
	}
}

// Matches reports whether the entry answers key.
func (e *cacheEntry) Matches(key string) bool {
	return e != nil && e.Key == key
}

// Age returns the duration since the entry was created.
func (e *cacheEntry) Age() time.Duration {
	return time.Since(e.CreatedAt)
}
