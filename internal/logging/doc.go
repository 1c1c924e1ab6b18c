// Package logging configures slog for the daemon: a human-oriented console
// handler, a JSON handler, shared attribute helpers, and an in-memory stream
// hub that feeds the administrative live log endpoint.
package logging
