// Package daemonrun wires configuration into a running stagehand daemon.
// Both the standalone daemon binary and the CLI's foreground daemon
// subcommand go through Run.
package daemonrun

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"stagehand/internal/catalog"
	"stagehand/internal/chat"
	"stagehand/internal/classifier"
	"stagehand/internal/config"
	"stagehand/internal/daemon"
	"stagehand/internal/display"
	"stagehand/internal/engine"
	"stagehand/internal/history"
	"stagehand/internal/ipc"
	"stagehand/internal/logging"
)

// Build assembles the daemon and its collaborators from config. The caller
// owns the returned daemon and must Close it.
func Build(cfg *config.Config, cfgPath string, hub *logging.StreamHub, logger *slog.Logger) (*daemon.Daemon, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	cat, err := catalog.FromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("build catalog: %w", err)
	}

	store, err := history.Open(cfg.HistoryDBPath())
	if err != nil {
		return nil, fmt.Errorf("open history store: %w", err)
	}

	eng, err := engine.New(engine.Options{
		Catalog:             catalog.NewStore(cat),
		Display:             buildDisplay(cfg),
		Classifier:          buildClassifier(cfg),
		Source:              buildSource(cfg),
		History:             store,
		Logger:              logger.With(logging.String(logging.FieldComponent, "engine")),
		ConfidenceThreshold: cfg.Engine.ConfidenceThreshold,
		DisablePrefilter:    !cfg.Classifier.Prefilter,
		CacheTTL:            time.Duration(cfg.Engine.CacheTTLSeconds) * time.Second,
		RateLimitWindow:     time.Duration(cfg.Engine.RateLimitWindowSeconds) * time.Second,
		RateLimitMax:        cfg.Engine.RateLimitMax,
		QueueBound:          cfg.Engine.QueueBound,
		DropOldest:          cfg.Engine.QueueOverflowPolicy == config.OverflowDropOldest,
		DefaultScene:        cfg.Display.DefaultScene,
		ReconnectDelay:      time.Duration(cfg.Chat.ReconnectDelay) * time.Second,
	})
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("build engine: %w", err)
	}

	d, err := daemon.New(daemon.Options{
		Config:     cfg,
		ConfigPath: cfgPath,
		Engine:     eng,
		History:    store,
		Hub:        hub,
		Logger:     logger,
	})
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("create daemon: %w", err)
	}
	return d, nil
}

// Run starts the stagehand daemon runtime loop and blocks until the context
// is canceled or a termination signal arrives.
func Run(cmdCtx context.Context, cfg *config.Config, cfgPath string) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	hub := logging.NewStreamHub(4096)
	logger, err := logging.NewFromConfig(cfg, hub)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	pidPath := filepath.Join(cfg.Paths.DataDir, "stagehandd.pid")
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	d, err := Build(cfg, cfgPath, hub, logger)
	if err != nil {
		return err
	}
	defer d.Close()

	ipcServer, err := ipc.NewServer(signalCtx, cfg.SocketPath(), d, logger)
	if err != nil {
		return fmt.Errorf("start ipc server: %w", err)
	}
	defer ipcServer.Close()
	ipcServer.Serve()

	if err := d.Start(signalCtx); err != nil {
		logger.Warn("daemon start failed", logging.Error(err))
	}

	<-signalCtx.Done()
	logger.Info("stagehand daemon shutting down")
	return nil
}

func buildDisplay(cfg *config.Config) display.Controller {
	playback := time.Duration(cfg.Display.PlaybackSeconds) * time.Second
	return display.NewSimulator(cfg.Display.DefaultScene, playback)
}

func buildClassifier(cfg *config.Config) engine.Classifier {
	if cfg.Classifier.APIKey == "" {
		return nil
	}
	opts := []classifier.Option{}
	if cfg.Classifier.BaseURL != "" {
		opts = append(opts, classifier.WithBaseURL(cfg.Classifier.BaseURL))
	}
	if cfg.Classifier.Model != "" {
		opts = append(opts, classifier.WithModel(cfg.Classifier.Model))
	}
	if cfg.Classifier.TimeoutSeconds > 0 {
		opts = append(opts, classifier.WithTimeout(time.Duration(cfg.Classifier.TimeoutSeconds)*time.Second))
	}
	return classifier.NewClient(cfg.Classifier.APIKey, opts...)
}

func buildSource(cfg *config.Config) chat.Source {
	if cfg.Chat.ScriptPath == "" {
		return nil
	}
	interval := time.Duration(cfg.Chat.ScriptInterval) * time.Millisecond
	return chat.NewScriptSource(cfg.Chat.ScriptPath, interval)
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}
