package cache

import "context"

// Cache defines the port interface for commit date caching.
// This interface follows the port-adapter pattern, allowing different
// cache implementations to be swapped without changing the fetcher logic.
//
// Keys are composite owner/repo/path strings (see Key) and values are the
// ISO-8601 commit timestamps exactly as the API returned them.
type Cache interface {
	// Get retrieves a value from the cache by key.
	// Returns the cached value and true if found, or empty string and false if not found.
	Get(ctx context.Context, key string) (string, bool)

	// Put stores a key-value pair in the cache.
	// If the key already exists, the value is overwritten.
	Put(ctx context.Context, key string, value string)
}

// Key builds the composite cache key for one file in one repository.
func Key(owner, repo, path string) string {
	return owner + "/" + repo + "/" + path
}
