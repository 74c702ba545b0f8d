// Package logger provides structured logging for the service.
//
// It builds on log/slog with a JSON handler, a configurable level, and helpers
// for carrying a request-scoped logger through a context.Context.
package logger
