// Package config loads typed configuration structs from environment
// variables.
//
// A .env file in the working directory is loaded once, lazily, before the
// first parse; missing files are fine. Struct fields declare their source
// with `env` tags and defaults with `envDefault`:
//
//	type HTTPConfig struct {
//	    Addr string `env:"HTTP_ADDR" envDefault:":8080"`
//	}
//
//	var cfg HTTPConfig
//	config.MustLoad(&cfg)
package config
