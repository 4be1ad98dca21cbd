// Package cache provides TTL-based read-through caching of normalized
// events on top of the persistent store.
package cache
