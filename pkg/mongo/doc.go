// Package mongo connects the service to MongoDB with env-backed
// configuration, startup retry, and a healthcheck closure. Filing and
// referral stores build on the returned client.
package mongo
