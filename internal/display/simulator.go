package display

import (
	"context"
	"sync"
	"time"
)

// Simulator is an in-process display surface. Switching to any scene
// other than the default "plays" it for a fixed duration and then emits
// a playback-ended event, which is enough to drive the engine in demo
// mode and in tests without a real streaming rig attached.
type Simulator struct {
	defaultScene string
	playback     time.Duration
	events       chan PlaybackEvent

	mu      sync.Mutex
	current string
	timer   *time.Timer
	closed  bool
}

// NewSimulator builds a simulator sitting on the default scene.
func NewSimulator(defaultScene string, playback time.Duration) *Simulator {
	if playback <= 0 {
		playback = 10 * time.Second
	}
	return &Simulator{
		defaultScene: defaultScene,
		playback:     playback,
		events:       make(chan PlaybackEvent, 8),
		current:      defaultScene,
	}
}

// SwitchTo cuts to the scene. Product scenes arm a playback timer; the
// default scene just cancels any pending one.
func (s *Simulator) SwitchTo(_ context.Context, sceneRef string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.current = sceneRef
	if sceneRef == s.defaultScene {
		return nil
	}
	s.timer = time.AfterFunc(s.playback, func() {
		s.emit(sceneRef)
	})
	return nil
}

// CurrentScene reports the scene on program output.
func (s *Simulator) CurrentScene(context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current, nil
}

// Events delivers playback-ended signals.
func (s *Simulator) Events() <-chan PlaybackEvent {
	return s.events
}

// Close stops the simulator and closes the event channel.
func (s *Simulator) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	close(s.events)
}

// emit publishes the playback-ended event if the scene is still live.
// A cut that happened while the timer fired makes the event stale, and
// a full channel drops it rather than blocking the timer goroutine.
func (s *Simulator) emit(sceneRef string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.current != sceneRef {
		return
	}
	select {
	case s.events <- PlaybackEvent{SceneRef: sceneRef, SourceName: "simulated-media", At: time.Now()}:
	default:
	}
}
