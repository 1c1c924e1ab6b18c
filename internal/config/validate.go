package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks configuration consistency. It returns the first problem
// found; warnings that should not block startup are reported by Warnings.
func (c *Config) Validate() error {
	if c.Paths.APIBind == "" {
		return errors.New("paths.api_bind must not be empty")
	}
	if c.Engine.ConfidenceThreshold <= 0 || c.Engine.ConfidenceThreshold > 1 {
		return fmt.Errorf("engine.confidence_threshold must be in (0, 1], got %v", c.Engine.ConfidenceThreshold)
	}
	switch c.Engine.QueueOverflowPolicy {
	case OverflowDropNewest, OverflowDropOldest:
	default:
		return fmt.Errorf("engine.queue_overflow_policy must be %q or %q, got %q",
			OverflowDropNewest, OverflowDropOldest, c.Engine.QueueOverflowPolicy)
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}

	seen := make(map[string]struct{}, len(c.Products))
	for i, p := range c.Products {
		if p.Name == "" {
			return fmt.Errorf("products[%d]: name must not be empty", i)
		}
		if p.Scene == "" {
			return fmt.Errorf("products[%d] (%s): scene must not be empty", i, p.Name)
		}
		key := strings.ToLower(p.Name)
		if _, dup := seen[key]; dup {
			return fmt.Errorf("products: duplicate name %q", p.Name)
		}
		seen[key] = struct{}{}
	}
	return nil
}

// Warnings reports non-fatal configuration issues worth surfacing on the
// administrative status output.
func (c *Config) Warnings() []string {
	var warnings []string
	if len(c.Products) == 0 {
		warnings = append(warnings, "no products configured; comments will never trigger a scene switch")
	}
	if c.Classifier.APIKey == "" {
		warnings = append(warnings, "classifier.api_key not set; falling back to direct fuzzy matching of comment text")
	}
	if c.Chat.Username == "" && c.Chat.ScriptPath == "" {
		warnings = append(warnings, "no chat source configured (chat.username or chat.script_path)")
	}
	for _, p := range c.Products {
		if strings.EqualFold(p.Scene, c.Display.DefaultScene) {
			warnings = append(warnings, fmt.Sprintf("product %q maps to the default scene %q; playback will never return", p.Name, p.Scene))
		}
	}
	return warnings
}
