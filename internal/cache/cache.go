// Package cache provides small in-process caches scoped to one invocation.
package cache

// Cache defines a generic cache interface
type Cache[K comparable, V any] interface {
	// Get retrieves a value from the cache
	Get(key K) (V, bool)

	// Set stores a value in the cache
	Set(key K, value V)

	// Len returns the current number of items in the cache
	Len() int
}
