// Package scene holds the switching state machine: which product scene
// is on screen, which requests are waiting, and how playback-ended
// signals advance the show. The machine is single-owner state; the
// engine's event loop is the only caller, so there is no locking here.
package scene

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"stagehand/internal/catalog"
	"stagehand/internal/logging"
	"stagehand/internal/ratelimit"
	"stagehand/internal/resolver"
)

// Switcher performs the actual scene cut on the display surface.
type Switcher interface {
	SwitchTo(ctx context.Context, sceneRef string) error
}

// Phase is the machine's coarse state.
type Phase string

const (
	// PhaseIdle means the default scene is (nominally) on screen.
	PhaseIdle Phase = "idle"
	// PhaseShowing means a product scene is on screen.
	PhaseShowing Phase = "showing"
)

// Request is one viewer-attributed ask for a product scene.
type Request struct {
	Product    catalog.Product
	Author     string
	Comment    string
	Confidence float64
	Method     resolver.Method
	EnqueuedAt time.Time
}

// Disposition reports what RequestProduct did with a request.
type Disposition string

const (
	DispositionSwitched    Disposition = "switched"
	DispositionQueued      Disposition = "queued"
	DispositionDuplicate   Disposition = "duplicate"
	DispositionRateLimited Disposition = "rate_limited"
	DispositionOverflowed  Disposition = "overflowed"
	DispositionFailed      Disposition = "failed"
)

// Advance reports what PlaybackEnded or Skip did.
type Advance struct {
	// Ignored means the signal did not match the machine's state and
	// nothing changed.
	Ignored bool
	// Next is the request now on screen, nil if none.
	Next *Request
	// ReturnedToDefault means the machine fell back to the idle scene.
	ReturnedToDefault bool
	// RateLimited means a queued request was dropped because the
	// limiter denied it at dequeue.
	RateLimited bool
	// DroppedInvalid counts queued requests discarded because their
	// product left the catalog or duplicated the product just shown.
	DroppedInvalid int
}

// Snapshot is a point-in-time copy of the machine state for status
// surfaces.
type Snapshot struct {
	Phase      Phase
	Active     *Request
	Queue      []Request
	Generation uint64
}

// Options configures a Machine.
type Options struct {
	Switcher     Switcher
	Catalog      *catalog.Store
	Limiter      *ratelimit.Limiter
	DefaultScene string
	QueueBound   int
	// DropOldest selects the overflow policy: evict the front of the
	// queue instead of rejecting the newcomer.
	DropOldest bool
	Logger     *slog.Logger
}

// Machine is the scene switching state machine. Not safe for concurrent
// use; callers must serialize access (the engine's event loop does).
type Machine struct {
	switcher     Switcher
	store        *catalog.Store
	limiter      *ratelimit.Limiter
	defaultScene string
	queueBound   int
	dropOldest   bool
	logger       *slog.Logger

	phase      Phase
	active     *Request
	queue      []Request
	generation uint64
}

// New builds a machine starting in the idle phase.
func New(opts Options) *Machine {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	bound := opts.QueueBound
	if bound <= 0 {
		bound = 10
	}
	return &Machine{
		switcher:     opts.Switcher,
		store:        opts.Catalog,
		limiter:      opts.Limiter,
		defaultScene: opts.DefaultScene,
		queueBound:   bound,
		dropOldest:   opts.DropOldest,
		logger:       logger,
		phase:        PhaseIdle,
	}
}

// Generation returns the current stop generation. Classification results
// started under an older generation must be discarded.
func (m *Machine) Generation() uint64 {
	return m.generation
}

// Snapshot copies the machine state.
func (m *Machine) Snapshot() Snapshot {
	snap := Snapshot{
		Phase:      m.phase,
		Generation: m.generation,
		Queue:      make([]Request, len(m.queue)),
	}
	copy(snap.Queue, m.queue)
	if m.active != nil {
		active := *m.active
		snap.Active = &active
	}
	return snap
}

// RequestProduct handles a resolved product request. Idle machines switch
// immediately (subject to the rate limiter); showing machines queue the
// request unless it duplicates the active product or an existing queue
// entry.
func (m *Machine) RequestProduct(ctx context.Context, req Request) (Disposition, error) {
	if req.EnqueuedAt.IsZero() {
		req.EnqueuedAt = time.Now()
	}

	if m.phase == PhaseShowing {
		if m.active != nil && sameProduct(m.active.Product.Name, req.Product.Name) {
			m.logger.Debug("request duplicates active product",
				logging.String(logging.FieldProduct, req.Product.Name))
			return DispositionDuplicate, nil
		}
		for _, queued := range m.queue {
			if sameProduct(queued.Product.Name, req.Product.Name) {
				m.logger.Debug("request already queued",
					logging.String(logging.FieldProduct, req.Product.Name))
				return DispositionDuplicate, nil
			}
		}
		if len(m.queue) >= m.queueBound {
			if !m.dropOldest {
				m.logger.Warn("queue full, dropping request",
					logging.String(logging.FieldProduct, req.Product.Name),
					logging.Int("queue_bound", m.queueBound))
				return DispositionOverflowed, nil
			}
			evicted := m.queue[0]
			m.queue = append(m.queue[:0], m.queue[1:]...)
			m.logger.Warn("queue full, evicting oldest request",
				logging.String(logging.FieldProduct, evicted.Product.Name))
		}
		m.queue = append(m.queue, req)
		m.logger.Info("request queued",
			logging.String(logging.FieldProduct, req.Product.Name),
			logging.String(logging.FieldAuthor, req.Author),
			logging.Int("queue_depth", len(m.queue)))
		return DispositionQueued, nil
	}

	// Idle: rejected requests are dropped outright, never queued.
	if m.limiter != nil && !m.limiter.WouldAllow() {
		m.logger.Info("request rate limited",
			logging.String(logging.FieldProduct, req.Product.Name),
			logging.String(logging.FieldAuthor, req.Author))
		return DispositionRateLimited, nil
	}
	if err := m.switchWithRetry(ctx, req.Product.Scene); err != nil {
		return DispositionFailed, err
	}
	if m.limiter != nil {
		m.limiter.Allow()
	}
	active := req
	m.active = &active
	m.phase = PhaseShowing
	m.logger.Info("switched to product scene",
		logging.String(logging.FieldProduct, req.Product.Name),
		logging.String(logging.FieldScene, req.Product.Scene),
		logging.String(logging.FieldAuthor, req.Author))
	return DispositionSwitched, nil
}

// PlaybackEnded advances the show after the active product's scene
// finished playing. Signals for other scenes, or while idle, are logged
// and ignored.
func (m *Machine) PlaybackEnded(ctx context.Context, sceneRef string) (Advance, error) {
	if m.phase != PhaseShowing || m.active == nil {
		m.logger.Debug("playback ended while idle, ignoring",
			logging.String(logging.FieldScene, sceneRef))
		return Advance{Ignored: true}, nil
	}
	if !strings.EqualFold(strings.TrimSpace(sceneRef), strings.TrimSpace(m.active.Product.Scene)) {
		m.logger.Debug("playback ended for inactive scene, ignoring",
			logging.String(logging.FieldScene, sceneRef),
			logging.String("active_scene", m.active.Product.Scene))
		return Advance{Ignored: true}, nil
	}
	return m.advance(ctx)
}

// Skip force-ends the active product as if its playback finished.
func (m *Machine) Skip(ctx context.Context) (Advance, error) {
	if m.phase != PhaseShowing || m.active == nil {
		return Advance{Ignored: true}, nil
	}
	m.logger.Info("skipping active product",
		logging.String(logging.FieldProduct, m.active.Product.Name))
	return m.advance(ctx)
}

// Stop clears everything: queue emptied, default scene restored, and the
// generation bumped so in-flight classification results are discarded.
func (m *Machine) Stop(ctx context.Context) error {
	m.generation++
	m.queue = nil
	m.active = nil
	m.phase = PhaseIdle
	m.logger.Info("show stopped",
		logging.Uint64(logging.FieldGeneration, m.generation))
	if err := m.switchWithRetry(ctx, m.defaultScene); err != nil {
		m.logger.Error("default scene switch failed during stop",
			logging.Error(err))
		return err
	}
	return nil
}

// advance pops queued requests until one survives catalog revalidation
// and the rate limiter, or the queue runs dry.
func (m *Machine) advance(ctx context.Context) (Advance, error) {
	endedProduct := ""
	if m.active != nil {
		endedProduct = m.active.Product.Name
	}
	m.active = nil

	var result Advance
	for len(m.queue) > 0 {
		req := m.queue[0]
		m.queue = append(m.queue[:0], m.queue[1:]...)

		// Revalidate against the live catalog: the product may have
		// been removed or its scene renamed since it was queued.
		current, ok := m.lookup(req.Product.Name)
		if !ok {
			m.logger.Warn("dropping queued request for removed product",
				logging.String(logging.FieldProduct, req.Product.Name))
			result.DroppedInvalid++
			continue
		}
		if sameProduct(current.Name, endedProduct) {
			m.logger.Debug("dropping queued request matching just-ended product",
				logging.String(logging.FieldProduct, current.Name))
			result.DroppedInvalid++
			continue
		}
		if m.limiter != nil && !m.limiter.WouldAllow() {
			m.logger.Info("dropping queued request, rate limited",
				logging.String(logging.FieldProduct, current.Name))
			result.RateLimited = true
			break
		}
		req.Product = current
		if err := m.switchWithRetry(ctx, current.Scene); err != nil {
			m.phase = PhaseIdle
			if derr := m.switchWithRetry(ctx, m.defaultScene); derr != nil {
				m.logger.Error("default scene switch failed after advance failure",
					logging.Error(derr))
			}
			result.ReturnedToDefault = true
			return result, err
		}
		if m.limiter != nil {
			m.limiter.Allow()
		}
		active := req
		m.active = &active
		m.phase = PhaseShowing
		m.logger.Info("advanced to queued product",
			logging.String(logging.FieldProduct, current.Name),
			logging.String(logging.FieldScene, current.Scene),
			logging.Int("queue_depth", len(m.queue)))
		result.Next = &active
		return result, nil
	}

	m.phase = PhaseIdle
	result.ReturnedToDefault = true
	if err := m.switchWithRetry(ctx, m.defaultScene); err != nil {
		m.logger.Error("default scene switch failed", logging.Error(err))
		return result, err
	}
	m.logger.Info("returned to default scene",
		logging.String(logging.FieldScene, m.defaultScene))
	return result, nil
}

func (m *Machine) lookup(name string) (catalog.Product, bool) {
	if m.store == nil {
		return catalog.Product{}, false
	}
	return m.store.Snapshot().Lookup(name)
}

// switchWithRetry attempts the cut twice before giving up. Display
// surfaces drop connections briefly; a single immediate retry covers
// the common blip without stalling the loop.
func (m *Machine) switchWithRetry(ctx context.Context, sceneRef string) error {
	err := m.switcher.SwitchTo(ctx, sceneRef)
	if err == nil {
		return nil
	}
	m.logger.Warn("scene switch failed, retrying",
		logging.String(logging.FieldScene, sceneRef),
		logging.Error(err))
	return m.switcher.SwitchTo(ctx, sceneRef)
}

func sameProduct(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
