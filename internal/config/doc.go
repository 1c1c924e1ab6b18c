// Package config loads, validates, and normalizes the stagehand TOML
// configuration: daemon paths, the product catalog, classifier credentials,
// display-surface settings, and engine tunables.
package config
