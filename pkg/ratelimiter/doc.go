// Package ratelimiter implements a token-bucket rate limiter behind a
// pluggable Store. The in-memory store suits a single process; the Redis
// store shares buckets across instances so credential endpoints stay limited
// under horizontal scaling.
//
//	limiter, err := ratelimiter.New(ratelimiter.NewMemoryStore(), ratelimiter.Config{
//	    Capacity:       10,
//	    RefillRate:     1,
//	    RefillInterval: time.Second,
//	})
//
//	r.Use(ratelimiter.Middleware(limiter, ratelimiter.KeyByIP))
package ratelimiter
