package daemon

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"stagehand/internal/catalog"
	"stagehand/internal/config"
	"stagehand/internal/display"
	"stagehand/internal/engine"
	"stagehand/internal/history"
	"stagehand/internal/logging"
)

func buildDaemon(t *testing.T, dataDir string) *Daemon {
	t.Helper()
	cfg := config.Default()
	cfg.Paths.LogDir = t.TempDir()
	cfg.Paths.DataDir = dataDir
	cfg.Paths.APIBind = ""
	cfg.Products = []config.Product{
		{Name: "Cosmic Glow Lamp", Scene: "LampScene", Description: "lamp, light"},
	}

	cat, err := catalog.FromConfig(&cfg)
	if err != nil {
		t.Fatalf("build catalog: %v", err)
	}
	store, err := history.Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("open history: %v", err)
	}
	sim := display.NewSimulator(cfg.Display.DefaultScene, time.Hour)
	eng, err := engine.New(engine.Options{
		Catalog:      catalog.NewStore(cat),
		Display:      sim,
		History:      store,
		DefaultScene: cfg.Display.DefaultScene,
	})
	if err != nil {
		t.Fatalf("build engine: %v", err)
	}

	d, err := New(Options{
		Config:  &cfg,
		Engine:  eng,
		History: store,
		Logger:  logging.NewNop(),
	})
	if err != nil {
		t.Fatalf("build daemon: %v", err)
	}
	t.Cleanup(func() {
		_ = d.Close()
		sim.Close()
	})
	return d
}

func TestNewRequiresCoreDependencies(t *testing.T) {
	cfg := config.Default()
	if _, err := New(Options{Config: &cfg, Logger: logging.NewNop()}); err == nil {
		t.Fatal("expected error when engine missing")
	}
	if _, err := New(Options{Logger: logging.NewNop()}); err == nil {
		t.Fatal("expected error when config missing")
	}
}

func TestDaemonStartStop(t *testing.T) {
	d := buildDaemon(t, t.TempDir())

	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("start daemon: %v", err)
	}
	status := d.Status(context.Background())
	if !status.Running {
		t.Fatal("expected running status after start")
	}
	if status.LockFilePath == "" {
		t.Fatal("expected lock file path in status")
	}

	if err := d.Start(context.Background()); err == nil {
		t.Fatal("expected error on double start")
	}

	d.Stop()
	if d.Status(context.Background()).Running {
		t.Fatal("expected stopped status after stop")
	}
}

func TestDaemonLockRejectsSecondInstance(t *testing.T) {
	dataDir := t.TempDir()
	first := buildDaemon(t, dataDir)
	if err := first.Start(context.Background()); err != nil {
		t.Fatalf("start first daemon: %v", err)
	}

	second := buildDaemon(t, dataDir)
	if err := second.Start(context.Background()); err == nil {
		t.Fatal("expected second instance to fail lock acquisition")
	}

	first.Stop()
	if err := second.Start(context.Background()); err != nil {
		t.Fatalf("expected second instance to start after lock release: %v", err)
	}
}

func TestDaemonStopIsIdempotent(t *testing.T) {
	d := buildDaemon(t, t.TempDir())
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("start daemon: %v", err)
	}
	d.Stop()
	d.Stop()
}
