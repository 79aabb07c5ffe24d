// Package redis connects to a Redis server with startup retries.
// The resulting client backs the optional plan cache.
package redis
