// Package logging provides structured logging for the device service.
//
// This package wraps Go's standard log/slog package so every component logs
// the same way:
//
//   - JSON output for production (machine-parsable)
//   - Text output for development (human-readable)
//   - Default fields (service, version) on all log entries
//   - Level-based filtering (debug, info, warn, error)
//
// # Configuration
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// # Usage
//
//	logger := logging.New(cfg.Logging, "1.0.0")
//	logger.Info("reconciled crontab", "namespace", ns, "name", name)
//
// # Security
//
// Device credentials pass through the credential-query path. Never log
// password values; log the credential type and the field names instead.
package logging
