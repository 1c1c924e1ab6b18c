// Package daemon coordinates the long-running stagehand process.
//
// It wires configuration, the switch-history store, the orchestration
// engine, and the notifier into a single lifecycle with flock-based
// locking to prevent multiple instances. The daemon also serves the
// administrative HTTP API when an api_bind address is configured.
//
// Keep orchestration logic here: comment handling and scene decisions
// live in the engine while the daemon focuses on startup, shutdown, and
// high level coordination.
package daemon
