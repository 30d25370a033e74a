// Package logger provides structured logging built on zerolog.
//
// It supports JSON and console output, per-logger level configuration,
// and component-scoped loggers with structured fields. Sequence diagnostics
// write through it at debug level.
//
// # Configuration
//
//	logging:
//	  level: "debug"
//	  format: "json"
//
// # Usage
//
//	log := logger.NewDefault("foremit").WithComponent("sequence")
//	log.Debug("race started", logger.Fields("sequence_id", id))
package logger
