// Package notifications delivers operational events via pluggable notifiers.
//
// The default implementation publishes to ntfy using the topic configured in
// config.toml and gracefully degrades to a no-op when notifications are
// disabled. The daemon runs unattended next to a live stream; when the chat
// feed drops or the display surface misbehaves, the host needs to hear about
// it without watching logs.
//
// Extend this package if you need alternative transports; all engine code
// depends only on the simple Service interface.
package notifications
