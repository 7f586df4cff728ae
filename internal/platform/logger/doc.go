// Package logger provides structured logging functionality for the application.
//
// It utilizes Go's standard library log/slog package to implement structured JSON logging
// with configurable log levels. Request handlers attach a request-scoped logger
// to the context with WithLogger and retrieve it with FromContext.
package logger
