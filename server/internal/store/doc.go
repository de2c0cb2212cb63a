// Package store caches inferred results in memory. Entries are keyed by a
// fingerprint of the observation and engine options, are reachable by their
// result ID, and are evicted once older than the configured TTL.
package store
