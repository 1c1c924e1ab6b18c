// Package engine orchestrates the show: comments come in, intents are
// classified, and the scene machine decides what ends up on screen. A
// single event loop goroutine owns all mutable show state; classifier
// calls run detached and re-enter the loop tagged with the generation
// they started under.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"stagehand/internal/catalog"
	"stagehand/internal/chat"
	"stagehand/internal/classifier"
	"stagehand/internal/dedup"
	"stagehand/internal/display"
	"stagehand/internal/history"
	"stagehand/internal/logging"
	"stagehand/internal/ratelimit"
	"stagehand/internal/resolver"
	"stagehand/internal/scene"
)

// Classifier is the intent analysis surface the engine depends on.
// *classifier.Client satisfies it; tests substitute stubs.
type Classifier interface {
	Enabled() bool
	Classify(ctx context.Context, comment string, cat *catalog.Catalog) (classifier.Result, error)
}

// Recorder persists executed switches. *history.Store satisfies it.
type Recorder interface {
	Record(ctx context.Context, entry history.Entry) error
}

// Options configures an Engine.
type Options struct {
	Catalog    *catalog.Store
	Display    display.Controller
	Classifier Classifier
	// Source is optional; without one the engine only reacts to admin
	// commands and display events.
	Source chat.Source
	// History is optional; switches are recorded best-effort.
	History Recorder
	Logger  *slog.Logger

	ConfidenceThreshold float64
	// DisablePrefilter sends every comment to the classifier instead of
	// requiring a trigger word or catalog keyword first.
	DisablePrefilter bool
	CacheTTL         time.Duration
	RateLimitWindow  time.Duration
	RateLimitMax     int
	QueueBound       int
	DropOldest       bool
	DefaultScene     string
	ReconnectDelay   time.Duration
}

// event is anything entering the loop. Exactly one field set.
type event struct {
	comment    *chat.Comment
	classified *classifiedEvent
	playback   *display.PlaybackEvent
	command    func(ctx context.Context)
}

type classifiedEvent struct {
	comment       chat.Comment
	cacheKey      string
	generation    uint64
	correlationID string
	result        classifier.Result
	err           error
}

// Engine runs the comment-to-scene pipeline.
type Engine struct {
	store      *catalog.Store
	displayCtl display.Controller
	classifier Classifier
	source     chat.Source
	historyRec Recorder
	logger     *slog.Logger

	machine      *scene.Machine
	cache        *dedup.Cache
	threshold    float64
	prefilter    bool
	defaultScene string

	reconnectDelay time.Duration

	events chan event
	stats  counters

	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
	done    sync.WaitGroup
}

// New builds an engine. Start must be called before it does anything.
func New(opts Options) (*Engine, error) {
	if opts.Catalog == nil {
		return nil, errors.New("engine: catalog required")
	}
	if opts.Display == nil {
		return nil, errors.New("engine: display controller required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	threshold := opts.ConfidenceThreshold
	if threshold <= 0 || threshold > 1 {
		threshold = 0.6
	}
	eng := &Engine{
		store:          opts.Catalog,
		displayCtl:     opts.Display,
		classifier:     opts.Classifier,
		source:         opts.Source,
		historyRec:     opts.History,
		logger:         logger,
		cache:          dedup.New(opts.CacheTTL),
		threshold:      threshold,
		prefilter:      !opts.DisablePrefilter,
		defaultScene:   opts.DefaultScene,
		reconnectDelay: opts.ReconnectDelay,
		events:         make(chan event, 256),
	}
	eng.machine = scene.New(scene.Options{
		Switcher:     opts.Display,
		Catalog:      opts.Catalog,
		Limiter:      ratelimit.New(opts.RateLimitWindow, opts.RateLimitMax),
		DefaultScene: opts.DefaultScene,
		QueueBound:   opts.QueueBound,
		DropOldest:   opts.DropOldest,
		Logger:       logger.With(logging.String(logging.FieldComponent, "scene")),
	})
	return eng, nil
}

// Start launches the event loop and the comment/display feeds.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.started {
		return errors.New("engine: already started")
	}
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	e.cancel = cancel
	e.started = true

	if err := e.displayCtl.SwitchTo(runCtx, e.defaultScene); err != nil {
		e.logger.Warn("initial default scene switch failed", logging.Error(err))
	}

	e.done.Add(2)
	go e.loop(runCtx)
	go e.pumpDisplayEvents(runCtx)

	if e.source != nil {
		runner := chat.NewRunner(chat.RunnerOptions{
			Source:         e.source,
			ReconnectDelay: e.reconnectDelay,
			Logger:         e.logger.With(logging.String(logging.FieldComponent, "chat")),
			OnError:        func(error) { e.stats.errors.Add(1) },
		})
		e.done.Add(1)
		go func() {
			defer e.done.Done()
			if err := runner.Run(runCtx, e.offerComment); err != nil && !errors.Is(err, context.Canceled) {
				e.logger.Error("comment feed terminated", logging.Error(err))
			}
		}()
	}
	e.logger.Info("engine started",
		logging.Int("products", e.store.Snapshot().Len()))
	return nil
}

// Close stops the loop and waits for goroutines to drain.
func (e *Engine) Close() {
	e.mu.Lock()
	if !e.started {
		e.mu.Unlock()
		return
	}
	e.started = false
	cancel := e.cancel
	e.mu.Unlock()

	cancel()
	e.done.Wait()
	e.logger.Info("engine stopped")
}

// offerComment posts a comment into the loop, dropping it if the loop
// is saturated. Live chat floods; losing a comment under pressure is
// better than stalling the feed.
func (e *Engine) offerComment(comment chat.Comment) {
	select {
	case e.events <- event{comment: &comment}:
	default:
		e.stats.dropped.Add(1)
	}
}

func (e *Engine) pumpDisplayEvents(ctx context.Context) {
	defer e.done.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-e.displayCtl.Events():
			if !ok {
				return
			}
			select {
			case e.events <- event{playback: &evt}:
			case <-ctx.Done():
				return
			}
		}
	}
}

func (e *Engine) loop(ctx context.Context) {
	defer e.done.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case evt := <-e.events:
			switch {
			case evt.comment != nil:
				e.handleComment(ctx, *evt.comment)
			case evt.classified != nil:
				e.handleClassified(ctx, *evt.classified)
			case evt.playback != nil:
				e.handlePlayback(ctx, *evt.playback)
			case evt.command != nil:
				evt.command(ctx)
			}
		}
	}
}

func (e *Engine) handleComment(ctx context.Context, comment chat.Comment) {
	e.stats.commentsProcessed.Add(1)
	key := resolver.Normalize(comment.Text)
	if key == "" {
		return
	}
	cat := e.store.Snapshot()
	if cat.Len() == 0 {
		return
	}

	if result, ok := e.cache.Get(key); ok {
		e.stats.cacheHits.Add(1)
		e.applyResult(ctx, comment, result)
		return
	}

	if e.classifier == nil || !e.classifier.Enabled() {
		// No model configured: fuzzy-match the raw comment directly.
		result := e.resolveToResult(comment.Text, cat)
		e.cache.Put(key, result)
		e.applyResult(ctx, comment, result)
		return
	}

	if e.prefilter && !classifier.PassesPrefilter(comment.Text, cat) {
		e.stats.prefilterSkips.Add(1)
		e.cache.Put(key, classifier.Result{Intent: classifier.IntentNone})
		return
	}

	e.stats.classifierCalls.Add(1)
	generation := e.machine.Generation()
	correlationID := uuid.NewString()
	e.logger.Debug("classifying comment",
		logging.String(logging.FieldCorrelationID, correlationID),
		logging.String(logging.FieldAuthor, comment.Author))
	go func() {
		result, err := e.classifier.Classify(ctx, comment.Text, cat)
		classified := classifiedEvent{
			comment:       comment,
			cacheKey:      key,
			generation:    generation,
			correlationID: correlationID,
			result:        result,
			err:           err,
		}
		select {
		case e.events <- event{classified: &classified}:
		case <-ctx.Done():
		}
	}()
}

func (e *Engine) handleClassified(ctx context.Context, evt classifiedEvent) {
	if evt.err != nil {
		e.stats.errors.Add(1)
		e.logger.Error("classification failed",
			logging.String(logging.FieldCorrelationID, evt.correlationID),
			logging.Error(evt.err))
		return
	}
	if evt.generation != e.machine.Generation() {
		e.stats.staleResults.Add(1)
		e.logger.Info("discarding stale classification",
			logging.String(logging.FieldCorrelationID, evt.correlationID),
			logging.Uint64(logging.FieldGeneration, evt.generation))
		return
	}
	e.cache.Put(evt.cacheKey, evt.result)
	e.applyResult(ctx, evt.comment, evt.result)
}

// resolveToResult fuzzy-matches raw comment text against the catalog
// and shapes it like a classifier verdict so the cache and the rest of
// the pipeline see one result type.
func (e *Engine) resolveToResult(text string, cat *catalog.Catalog) classifier.Result {
	res := resolver.Resolve(text, cat, e.threshold)
	if !res.Matched {
		return classifier.Result{Intent: classifier.IntentNone}
	}
	return classifier.Result{
		Intent:        classifier.IntentProductRequest,
		ProductPhrase: res.Product.Name,
	}
}

func (e *Engine) applyResult(ctx context.Context, comment chat.Comment, result classifier.Result) {
	if result.Intent != classifier.IntentProductRequest {
		return
	}
	cat := e.store.Snapshot()
	res := resolver.Resolve(result.ProductPhrase, cat, e.threshold)
	if !res.Matched {
		e.logger.Debug("product phrase did not resolve",
			logging.String("phrase", result.ProductPhrase))
		return
	}
	req := scene.Request{
		Product:    res.Product,
		Author:     comment.Author,
		Comment:    comment.Text,
		Confidence: res.Confidence,
		Method:     res.Method,
		EnqueuedAt: time.Now(),
	}
	e.dispatch(ctx, req)
}

func (e *Engine) dispatch(ctx context.Context, req scene.Request) {
	disposition, err := e.machine.RequestProduct(ctx, req)
	switch disposition {
	case scene.DispositionSwitched:
		e.stats.switchesExecuted.Add(1)
		e.recordSwitch(ctx, req)
	case scene.DispositionQueued:
		e.stats.queued.Add(1)
	case scene.DispositionDuplicate:
		e.stats.duplicates.Add(1)
	case scene.DispositionRateLimited:
		e.stats.rateLimited.Add(1)
	case scene.DispositionOverflowed:
		e.stats.dropped.Add(1)
	case scene.DispositionFailed:
		e.stats.errors.Add(1)
		e.logger.Error("scene switch failed",
			logging.String(logging.FieldProduct, req.Product.Name),
			logging.Error(err))
	}
}

func (e *Engine) handlePlayback(ctx context.Context, evt display.PlaybackEvent) {
	adv, err := e.machine.PlaybackEnded(ctx, evt.SceneRef)
	e.accountAdvance(ctx, adv, err)
}

func (e *Engine) accountAdvance(ctx context.Context, adv scene.Advance, err error) {
	if err != nil {
		e.stats.errors.Add(1)
		e.logger.Error("advance failed", logging.Error(err))
	}
	if adv.RateLimited {
		e.stats.rateLimited.Add(1)
	}
	if adv.DroppedInvalid > 0 {
		e.stats.dropped.Add(uint64(adv.DroppedInvalid))
	}
	if adv.Next != nil {
		e.stats.switchesExecuted.Add(1)
		e.recordSwitch(ctx, *adv.Next)
	}
}

func (e *Engine) recordSwitch(ctx context.Context, req scene.Request) {
	if e.historyRec == nil {
		return
	}
	entry := history.Entry{
		Product:    req.Product.Name,
		Scene:      req.Product.Scene,
		Author:     req.Author,
		Comment:    req.Comment,
		Confidence: req.Confidence,
		Method:     string(req.Method),
		SwitchedAt: time.Now(),
	}
	if err := e.historyRec.Record(ctx, entry); err != nil {
		e.logger.Warn("history record failed", logging.Error(err))
	}
}

// Stats returns the current counter snapshot.
func (e *Engine) Stats() Stats {
	return e.stats.snapshot()
}

// QueuedRequest is a queue entry in a Status snapshot.
type QueuedRequest struct {
	Product    string    `json:"product"`
	Author     string    `json:"author"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

// Status is a point-in-time view of the show.
type Status struct {
	Phase         scene.Phase     `json:"phase"`
	ActiveProduct string          `json:"active_product,omitempty"`
	ActiveScene   string          `json:"active_scene,omitempty"`
	Queue         []QueuedRequest `json:"queue"`
	Generation    uint64          `json:"generation"`
	Products      int             `json:"products"`
	Stats         Stats           `json:"stats"`
}

// Status reports the machine state via the event loop.
func (e *Engine) Status(ctx context.Context) (Status, error) {
	var status Status
	err := e.run(ctx, func(context.Context) {
		snap := e.machine.Snapshot()
		status = Status{
			Phase:      snap.Phase,
			Generation: snap.Generation,
			Products:   e.store.Snapshot().Len(),
			Stats:      e.stats.snapshot(),
			Queue:      make([]QueuedRequest, 0, len(snap.Queue)),
		}
		if snap.Active != nil {
			status.ActiveProduct = snap.Active.Product.Name
			status.ActiveScene = snap.Active.Product.Scene
		}
		for _, queued := range snap.Queue {
			status.Queue = append(status.Queue, QueuedRequest{
				Product:    queued.Product.Name,
				Author:     queued.Author,
				EnqueuedAt: queued.EnqueuedAt,
			})
		}
	})
	return status, err
}

// Skip force-ends the active product scene.
func (e *Engine) Skip(ctx context.Context) error {
	return e.run(ctx, func(loopCtx context.Context) {
		adv, err := e.machine.Skip(loopCtx)
		e.accountAdvance(loopCtx, adv, err)
	})
}

// StopShow clears the queue, returns to the default scene, and bumps
// the generation so in-flight classifications are discarded.
func (e *Engine) StopShow(ctx context.Context) error {
	return e.run(ctx, func(loopCtx context.Context) {
		if err := e.machine.Stop(loopCtx); err != nil {
			e.stats.errors.Add(1)
		}
	})
}

// Play manually triggers a product by name, bypassing classification
// and the confidence threshold (not the rate limiter).
func (e *Engine) Play(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("engine: product name required")
	}
	product, ok := e.store.Snapshot().Lookup(name)
	if !ok {
		return fmt.Errorf("engine: unknown product %q", name)
	}
	return e.run(ctx, func(loopCtx context.Context) {
		e.dispatch(loopCtx, scene.Request{
			Product:    product,
			Author:     "host",
			Comment:    "manual trigger",
			Confidence: 1,
			Method:     resolver.MethodManual,
			EnqueuedAt: time.Now(),
		})
	})
}

// ReloadCatalog atomically replaces the product catalog and flushes the
// dedup cache, since cached verdicts may reference retired products.
// In-flight work is untouched; queued requests are revalidated when
// they reach the front.
func (e *Engine) ReloadCatalog(products []catalog.Product) error {
	if _, err := e.store.Replace(products); err != nil {
		return err
	}
	e.cache.Flush()
	e.logger.Info("catalog reloaded", logging.Int("products", len(products)))
	return nil
}

// run executes fn inside the event loop and waits for it.
func (e *Engine) run(ctx context.Context, fn func(context.Context)) error {
	e.mu.Lock()
	started := e.started
	e.mu.Unlock()
	if !started {
		return errors.New("engine: not running")
	}
	doneCh := make(chan struct{})
	cmd := event{command: func(loopCtx context.Context) {
		defer close(doneCh)
		fn(loopCtx)
	}}
	select {
	case e.events <- cmd:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-doneCh:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
