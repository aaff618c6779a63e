// Package httpserver wraps net/http's server with graceful shutdown on
// context cancellation or termination signals.
package httpserver
