package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"stagehand/internal/config"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
[chat]
username = "livehost"

[[products]]
name = "Cosmic Glow Lamp"
scene = "Product_Lamp"
`)
	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to be reported as existing")
	}
	if resolved != path {
		t.Fatalf("resolved path = %q, want %q", resolved, path)
	}
	if cfg.Engine.ConfidenceThreshold != 0.6 {
		t.Fatalf("confidence threshold default = %v", cfg.Engine.ConfidenceThreshold)
	}
	if cfg.Engine.RateLimitMax != 2 || cfg.Engine.RateLimitWindowSeconds != 60 {
		t.Fatalf("rate limit defaults = %d/%ds", cfg.Engine.RateLimitMax, cfg.Engine.RateLimitWindowSeconds)
	}
	if cfg.Engine.QueueOverflowPolicy != config.OverflowDropNewest {
		t.Fatalf("overflow policy default = %q", cfg.Engine.QueueOverflowPolicy)
	}
	if cfg.Classifier.Model != "deepseek-chat" {
		t.Fatalf("classifier model default = %q", cfg.Classifier.Model)
	}
	if !strings.HasPrefix(cfg.HistoryDBPath(), cfg.Paths.DataDir) {
		t.Fatalf("history db path %q not under data dir %q", cfg.HistoryDBPath(), cfg.Paths.DataDir)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.toml")
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if exists {
		t.Fatal("expected missing config to be reported as absent")
	}
	if cfg.Paths.APIBind == "" {
		t.Fatal("expected default api bind")
	}
}

func TestValidateRejectsDuplicateProducts(t *testing.T) {
	path := writeConfig(t, `
[[products]]
name = "Lamp"
scene = "A"

[[products]]
name = "lamp"
scene = "B"
`)
	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected duplicate product name to fail validation")
	}
}

func TestValidateRejectsMissingScene(t *testing.T) {
	path := writeConfig(t, `
[[products]]
name = "Lamp"
`)
	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected empty scene to fail validation")
	}
}

func TestValidateRejectsBadOverflowPolicy(t *testing.T) {
	path := writeConfig(t, `
[engine]
queue_overflow_policy = "reject"
`)
	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected unknown overflow policy to fail validation")
	}
}

func TestWarningsFlagDefaultSceneCollision(t *testing.T) {
	path := writeConfig(t, `
[display]
default_scene = "Main"

[chat]
username = "livehost"

[classifier]
api_key = "sk-test"

[[products]]
name = "Lamp"
scene = "Main"
`)
	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	warnings := cfg.Warnings()
	found := false
	for _, w := range warnings {
		if strings.Contains(w, "default scene") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected default-scene warning, got %v", warnings)
	}
}
