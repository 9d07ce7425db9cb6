// Package logger provides structured logging using zerolog.
//
// It supports console and JSON output, level configuration, and
// component-scoped loggers that carry structured fields.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//
// # Usage
//
//	log := logger.WithComponent("discovery")
//	log.Info("service registered", logger.Fields("service_id", id))
package logger
