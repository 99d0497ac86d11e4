// Package redis connects the service to Redis with env-backed configuration,
// startup retry, and a healthcheck closure. The rate limiter's shared store
// builds on the returned client.
package redis
