// Package config loads application configuration from environment variables
// into tagged structs, backed by github.com/caarlos0/env and godotenv.
//
// Each configuration type is parsed once per process and served from an
// in-memory cache afterwards, so packages can call Load for their own Config
// without coordinating. A .env file in the working directory is loaded
// opportunistically before the first parse; its absence is not an error.
//
//	type ServerConfig struct {
//	    Addr string `env:"HTTP_ADDR" envDefault:":8080"`
//	}
//
//	var cfg ServerConfig
//	if err := config.Load(&cfg); err != nil {
//	    log.Fatal(err)
//	}
//
// Use Reset in tests to drop cached values after mutating the environment.
package config
