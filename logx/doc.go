// Package logx provides leveled, printf-style logging configured from environment variables.
// Entries are encoded by zap, either as human-readable console lines or as JSON.
//
// Environment Variables:
//   - LOG_LEVEL: Set the minimum log level (DEBUG, INFO, WARN, ERROR, OFF)
//   - LOG_FORMAT: Set output format (console, json)
//   - LOG_CALLER: Enable/disable caller information (true/false, default: true)
//
// Basic Usage:
//
//	logx.Info("Webhook server listening on %s", addr)
//	logx.Error("Failed to send message: %v", err)
//
// Request-scoped loggers:
//
//	log := logx.GetLogger().With("request_id", id)
//	log.Debug("POST %s", url)
package logx
