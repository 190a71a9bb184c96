// Package config loads service configuration with Viper.
//
// Values come from a config.yml found in the standard search paths, an
// optional .env file (loaded with godotenv) and the process environment.
// Environment variables map onto nested keys by splitting on underscores,
// so ENGINE_MODEL overrides engine.model.
//
// # Usage
//
//	var cfg AppConfig // embeds config.ServiceConfig
//	if err := config.Load("scribed", &cfg); err != nil { ... }
package config
