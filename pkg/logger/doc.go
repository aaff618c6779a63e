// Package logger builds configured log/slog loggers with a small option set
// covering level, output format and static attributes.
package logger
