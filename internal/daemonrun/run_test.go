package daemonrun

import (
	"testing"

	"stagehand/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Paths.LogDir = t.TempDir()
	cfg.Paths.DataDir = t.TempDir()
	cfg.Paths.APIBind = ""
	cfg.Products = []config.Product{
		{Name: "Cosmic Glow Lamp", Scene: "LampScene", Description: "lamp, light"},
		{Name: "Stealth Gaming Mouse", Scene: "MouseScene", Description: "mouse, gaming"},
	}
	return &cfg
}

func TestBuildAssemblesDaemon(t *testing.T) {
	cfg := testConfig(t)
	d, err := Build(cfg, "", nil, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer d.Close()

	if d.Engine() == nil {
		t.Fatal("expected engine to be wired")
	}
}

func TestBuildRejectsNilConfig(t *testing.T) {
	if _, err := Build(nil, "", nil, nil); err == nil {
		t.Fatal("expected error for nil config")
	}
}

func TestBuildClassifierDisabledWithoutKey(t *testing.T) {
	cfg := testConfig(t)
	if c := buildClassifier(cfg); c != nil {
		t.Fatal("expected nil classifier without api key")
	}
	cfg.Classifier.APIKey = "sk-test"
	c := buildClassifier(cfg)
	if c == nil {
		t.Fatal("expected classifier with api key")
	}
	if !c.Enabled() {
		t.Fatal("expected classifier to report enabled")
	}
}

func TestBuildSourceRequiresScriptPath(t *testing.T) {
	cfg := testConfig(t)
	if src := buildSource(cfg); src != nil {
		t.Fatal("expected nil source without script path")
	}
	cfg.Chat.ScriptPath = "/tmp/comments.txt"
	if src := buildSource(cfg); src == nil {
		t.Fatal("expected script source")
	}
}
