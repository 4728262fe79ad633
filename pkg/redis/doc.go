// Package redis connects to a Redis server with retries and exposes a
// health probe. The session layer uses the resulting client for its
// Redis-backed persistence adapter when several processes share one login.
package redis
