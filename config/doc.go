// Package config loads service configuration from YAML files, .env files and
// environment variables using Viper.
//
// Files are searched in the standard locations (./cmd/<service>/config.yml,
// ./config/config.yml, ./config.yml and the matching .env files). Environment
// variables are bound explicitly per key so flat names such as PORT or
// CONSUL_HOST map onto nested settings.
//
// # Usage
//
//	var cfg MySettings
//	err := config.LoadConfig("my-service", &cfg,
//	    config.WithDefaults(map[string]any{"server.port": 8000}),
//	    config.WithEnvBindings(map[string]string{"server.port": "PORT"}),
//	)
package config
