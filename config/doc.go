// Package config loads service configuration from YAML files, .env files
// and environment variables.
//
// Files are resolved from standard locations (./cmd/<name>/config.yml,
// ./config/config.yml, ./config.yml and their .env siblings) unless given
// explicitly. Environment variables override file values; SEQUENCE_LIMIT is
// bound to sequence.limit as well as sequence_limit.
//
// Durations decode from strings such as "250ms" and string lists from
// comma-separated values.
//
//	var cfg AppConfig
//	err := config.LoadConfig("foremit", &cfg, config.WithConfigFile(path))
package config
