package driven

import "time"

// Cache is a TTL key/value cache for derived connector data. Entries are
// never invalidated proactively; staleness is bounded only by TTL expiry.
type Cache interface {
	// Get retrieves a cached value. The second return is false when the
	// key is absent or expired.
	Get(key string) ([]byte, bool)

	// Set stores a value with the given TTL.
	Set(key string, value []byte, ttl time.Duration)
}
