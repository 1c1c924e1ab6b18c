package main

import (
	"path/filepath"
	"testing"

	"stagehand/internal/logging"
)

func TestPlayAndQueueCommands(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"play", "Cosmic", "Glow", "Lamp"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("play: %v", err)
	}
	requireContains(t, out, "Playing Cosmic Glow Lamp")

	out, _, err = runCLI(t, []string{"queue"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("queue: %v", err)
	}
	requireContains(t, out, "On screen: Cosmic Glow Lamp (scene LampScene)")
	requireContains(t, out, "Queue is empty")

	if _, _, err := runCLI(t, []string{"play", "nonexistent gadget"}, env.socketPath, env.configPath); err == nil {
		t.Fatal("expected error for unknown product")
	}
}

func TestSkipAndStopShowCommands(t *testing.T) {
	env := setupCLITestEnv(t)

	if _, _, err := runCLI(t, []string{"play", "Stealth Gaming Mouse"}, env.socketPath, env.configPath); err != nil {
		t.Fatalf("play: %v", err)
	}

	out, _, err := runCLI(t, []string{"skip"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("skip: %v", err)
	}
	requireContains(t, out, "Skipped")

	out, _, err = runCLI(t, []string{"stop-show"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("stop-show: %v", err)
	}
	requireContains(t, out, "Show stopped; queue cleared")
}

func TestStatsAndHistoryCommands(t *testing.T) {
	env := setupCLITestEnv(t)

	if _, _, err := runCLI(t, []string{"play", "Cosmic Glow Lamp"}, env.socketPath, env.configPath); err != nil {
		t.Fatalf("play: %v", err)
	}

	out, _, err := runCLI(t, []string{"stats"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	requireContains(t, out, "Switches executed")

	out, _, err = runCLI(t, []string{"stats", "--json"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("stats --json: %v", err)
	}
	requireContains(t, out, "\"switches_executed\": 1")

	out, _, err = runCLI(t, []string{"history"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "Cosmic Glow Lamp")
	requireContains(t, out, "manual")

	out, _, err = runCLI(t, []string{"history", "--summary"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("history --summary: %v", err)
	}
	requireContains(t, out, "Cosmic Glow Lamp")
}

func TestReloadCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"reload"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	requireContains(t, out, "Catalog reloaded (2 products)")
}

func TestLogsCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	env.hub.Publish(logging.LogEvent{Level: "INFO", Component: "engine", Message: "switch executed"})

	out, _, err := runCLI(t, []string{"logs", "--limit", "10"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("logs: %v", err)
	}
	requireContains(t, out, "engine: switch executed")
}

func TestTestNotifyCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"test-notify"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("test-notify: %v", err)
	}
	if out == "" {
		t.Fatal("expected test-notify output")
	}
}

func TestStatusCommandOffline(t *testing.T) {
	base := t.TempDir()
	t.Setenv("HOME", filepath.Join(base, "home"))
	out, _, err := runCLI(t, []string{"status"}, base+"/missing.sock", "")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "Not running")
	requireContains(t, out, "Daemon offline; no show state available")
}
