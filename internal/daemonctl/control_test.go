package daemonctl

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"stagehand/internal/config"
)

func TestDeriveDataDir(t *testing.T) {
	if got := DeriveDataDir("/var/lib/stagehand/stagehandd.lock", nil); got != "/var/lib/stagehand" {
		t.Fatalf("unexpected dir from lock path: %q", got)
	}
	cfg := config.Default()
	cfg.Paths.DataDir = "/srv/stagehand"
	if got := DeriveDataDir("", &cfg); got != "/srv/stagehand" {
		t.Fatalf("unexpected dir from config: %q", got)
	}
	if got := DeriveDataDir("", nil); got != "" {
		t.Fatalf("expected empty dir, got %q", got)
	}
}

func TestLaunchRequiresExecutable(t *testing.T) {
	if err := Launch("  ", LaunchOptions{}); err == nil {
		t.Fatal("expected error for empty executable path")
	}
}

func TestForceKillProcessRefusesSelf(t *testing.T) {
	dir := t.TempDir()
	pidPath := filepath.Join(dir, "stagehandd.pid")
	if err := os.WriteFile(pidPath, []byte(strconv.Itoa(os.Getpid())+"\n"), 0o644); err != nil {
		t.Fatalf("write pid file: %v", err)
	}
	if _, err := ForceKillProcess(pidPath, "", 0); err == nil {
		t.Fatal("expected refusal to kill current process")
	}
}

func TestForceKillProcessWithoutPID(t *testing.T) {
	dir := t.TempDir()
	if _, err := ForceKillProcess(filepath.Join(dir, "missing.pid"), "", 0); err == nil {
		t.Fatal("expected error when pid cannot be determined")
	}
}

func TestStopAndTerminateNotRunning(t *testing.T) {
	socket := filepath.Join(t.TempDir(), "stagehandd.sock")
	_, err := StopAndTerminate(socket, nil, 100*time.Millisecond)
	if !errors.Is(err, ErrDaemonNotRunning) {
		t.Fatalf("expected ErrDaemonNotRunning, got %v", err)
	}
}
