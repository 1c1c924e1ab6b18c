package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/gofrs/flock"

	"stagehand/internal/catalog"
	"stagehand/internal/config"
	"stagehand/internal/engine"
	"stagehand/internal/history"
	"stagehand/internal/logging"
	"stagehand/internal/notifications"
)

// Daemon coordinates the show engine, admin surfaces, and
// single-instance enforcement.
type Daemon struct {
	cfg     *config.Config
	cfgPath string
	logger  *slog.Logger
	engine   *engine.Engine
	store    *history.Store
	notifier notifications.Service
	hub      *logging.StreamHub
	logPath  string

	lockPath string
	lock     *flock.Flock

	api *apiServer

	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running       bool
	PID           int
	LockFilePath  string
	HistoryDBPath string
	Engine        engine.Status
}

// Options wires the daemon's collaborators.
type Options struct {
	Config *config.Config
	// ConfigPath is the file the config was loaded from; catalog reloads
	// re-read it.
	ConfigPath string
	Engine     *engine.Engine
	History    *history.Store
	Notifier   notifications.Service
	Hub        *logging.StreamHub
	Logger     *slog.Logger
}

// New constructs a daemon with initialized dependencies.
func New(opts Options) (*Daemon, error) {
	if opts.Config == nil || opts.Engine == nil || opts.Logger == nil {
		return nil, errors.New("daemon requires config, engine, and logger")
	}
	notifier := opts.Notifier
	if notifier == nil {
		notifier = notifications.NewService(opts.Config)
	}
	lockPath := filepath.Join(opts.Config.Paths.DataDir, "stagehandd.lock")
	d := &Daemon{
		cfg:      opts.Config,
		cfgPath:  opts.ConfigPath,
		logger:   opts.Logger,
		engine:   opts.Engine,
		store:    opts.History,
		notifier: notifier,
		hub:      opts.Hub,
		logPath:  filepath.Join(opts.Config.Paths.LogDir, "stagehand.log"),
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}
	api, err := newAPIServer(opts.Config, d, opts.Logger)
	if err != nil {
		return nil, err
	}
	d.api = api
	return d, nil
}

// Start acquires the daemon lock and launches the engine and admin API.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another stagehand daemon instance is already running")
	}

	d.ctx, d.cancel = context.WithCancel(ctx)
	if err := d.engine.Start(d.ctx); err != nil {
		_ = d.lock.Unlock()
		d.cancel()
		d.ctx = nil
		d.cancel = nil
		return fmt.Errorf("start engine: %w", err)
	}
	if d.api != nil {
		if err := d.api.start(d.ctx); err != nil {
			d.engine.Close()
			_ = d.lock.Unlock()
			d.cancel()
			d.ctx = nil
			d.cancel = nil
			return err
		}
	}

	d.running.Store(true)
	d.logger.Info("stagehand daemon started", logging.String("lock", d.lockPath))
	if err := d.notifier.NotifyShowStarted(d.ctx, d.ProductCount()); err != nil {
		d.logger.Warn("start notification failed", logging.Error(err))
	}
	for _, warning := range d.cfg.Warnings() {
		d.logger.Warn(warning)
		if err := d.notifier.NotifyConfigWarning(d.ctx, warning); err != nil {
			d.logger.Warn("config warning notification failed", logging.Error(err))
		}
	}
	return nil
}

// Stop shuts down the engine and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}
	switches := d.engine.Stats().SwitchesExecuted

	if d.api != nil {
		d.api.stop()
	}
	d.engine.Close()
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.ctx = nil
	d.running.Store(false)
	d.logger.Info("stagehand daemon stopped")
	if err := d.notifier.NotifyShowStopped(context.Background(), switches); err != nil {
		d.logger.Warn("stop notification failed", logging.Error(err))
	}
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// Engine exposes the show engine to admin surfaces.
func (d *Daemon) Engine() *engine.Engine {
	return d.engine
}

// History returns recent switch entries, newest first.
func (d *Daemon) History(ctx context.Context, limit int) ([]history.Entry, error) {
	if d.store == nil {
		return nil, errors.New("history store unavailable")
	}
	return d.store.Recent(ctx, limit)
}

// HistorySummary aggregates switches per product.
func (d *Daemon) HistorySummary(ctx context.Context) ([]history.ProductCount, error) {
	if d.store == nil {
		return nil, errors.New("history store unavailable")
	}
	return d.store.Summary(ctx)
}

// ReloadCatalog re-reads the product list from the config file on disk
// and swaps it into the running engine.
func (d *Daemon) ReloadCatalog() (int, error) {
	cfg, _, _, err := config.Load(d.cfgPath)
	if err != nil {
		return 0, fmt.Errorf("reload config: %w", err)
	}
	products := make([]catalog.Product, 0, len(cfg.Products))
	for _, p := range cfg.Products {
		products = append(products, catalog.Product{Name: p.Name, Scene: p.Scene, Description: p.Description})
	}
	if err := d.engine.ReloadCatalog(products); err != nil {
		return 0, err
	}
	return len(products), nil
}

// TestNotification triggers a test notification using the current configuration.
func (d *Daemon) TestNotification(ctx context.Context) (bool, string, error) {
	if d.cfg.Notifications.NtfyTopic == "" {
		return false, "ntfy topic not configured", nil
	}
	if err := d.notifier.TestNotification(ctx); err != nil {
		return false, "failed to send notification", err
	}
	return true, "test notification sent", nil
}

// ProductCount reports the size of the live catalog.
func (d *Daemon) ProductCount() int {
	status, err := d.engine.Status(context.Background())
	if err != nil {
		return 0
	}
	return status.Products
}

// LogStream returns the in-memory log feed.
func (d *Daemon) LogStream() *logging.StreamHub {
	return d.hub
}

// LogPath returns the path to the daemon log file.
func (d *Daemon) LogPath() string {
	return d.logPath
}

// Status returns the current daemon status.
func (d *Daemon) Status(ctx context.Context) Status {
	status := Status{
		Running:       d.running.Load(),
		PID:           os.Getpid(),
		LockFilePath:  d.lockPath,
		HistoryDBPath: d.cfg.HistoryDBPath(),
	}
	if engineStatus, err := d.engine.Status(ctx); err == nil {
		status.Engine = engineStatus
	}
	return status
}
