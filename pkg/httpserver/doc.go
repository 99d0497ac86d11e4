// Package httpserver wraps net/http with graceful shutdown, env-backed
// timeouts, and a health endpoint that aggregates dependency probes.
//
//	srv := httpserver.New(httpserver.WithAddr(":8080"), httpserver.WithLogger(log))
//	if err := srv.Run(ctx, router); err != nil {
//	    log.Error("server stopped", "error", err)
//	}
package httpserver
