package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"stagehand/internal/catalog"
	"stagehand/internal/config"
	"stagehand/internal/daemon"
	"stagehand/internal/display"
	"stagehand/internal/engine"
	"stagehand/internal/history"
	"stagehand/internal/ipc"
	"stagehand/internal/logging"
)

type cliTestEnv struct {
	cfg        *config.Config
	daemon     *daemon.Daemon
	server     *ipc.Server
	hub        *logging.StreamHub
	socketPath string
	configPath string
	cancel     context.CancelFunc
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)

	configPath := filepath.Join(homeDir, ".config", "stagehand", "config.toml")
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	content := fmt.Sprintf(`[paths]
log_dir = %q
data_dir = %q

[[products]]
name = "Cosmic Glow Lamp"
scene = "LampScene"
description = "lamp, light"

[[products]]
name = "Stealth Gaming Mouse"
scene = "MouseScene"
description = "mouse, gaming"
`, filepath.Join(base, "logs"), filepath.Join(base, "data"))
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}
	cfg.Paths.APIBind = ""

	cat, err := catalog.FromConfig(cfg)
	if err != nil {
		t.Fatalf("build catalog: %v", err)
	}
	store, err := history.Open(cfg.HistoryDBPath())
	if err != nil {
		t.Fatalf("open history: %v", err)
	}
	hub := logging.NewStreamHub(128)
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

	d, err := daemon.New(daemon.Options{
		Config:     cfg,
		ConfigPath: configPath,
		Engine:     eng,
		History:    store,
		Hub:        hub,
		Logger:     logging.NewNop(),
	})
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	socketPath := filepath.Join(base, "cli.sock")
	srv, err := ipc.NewServer(ctx, socketPath, d, logging.NewNop())
	if err != nil {
		cancel()
		_ = d.Close()
		sim.Close()
		if strings.Contains(err.Error(), "operation not permitted") {
			t.Skipf("skipping CLI test: %v", err)
		}
		t.Fatalf("ipc.NewServer: %v", err)
	}
	srv.Serve()

	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("daemon.Start: %v", err)
	}

	env := &cliTestEnv{
		cfg:        cfg,
		daemon:     d,
		server:     srv,
		hub:        hub,
		socketPath: socketPath,
		configPath: configPath,
		cancel:     cancel,
	}

	t.Cleanup(func() {
		cancel()
		srv.Close()
		_ = d.Close()
		sim.Close()
	})

	return env
}

func runCLI(t *testing.T, args []string, socket, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	flags := []string{"--socket", socket}
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
