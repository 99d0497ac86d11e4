// Package pg connects the service to PostgreSQL. It wraps pgxpool with
// env-backed configuration, retrying startup connects, a healthcheck closure
// for the HTTP health endpoint, and goose-driven schema migrations.
package pg
