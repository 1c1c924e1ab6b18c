// Package display abstracts the scene surface the show runs on. The
// engine only needs to cut between scenes and hear when a product
// scene's media finished playing; anything that can do those two things
// can drive the show.
package display

import (
	"context"
	"time"
)

// PlaybackEvent signals that media in a scene finished playing.
type PlaybackEvent struct {
	SceneRef   string
	SourceName string
	At         time.Time
}

// Controller is a scene surface the engine can drive.
type Controller interface {
	// SwitchTo cuts the program output to the named scene.
	SwitchTo(ctx context.Context, sceneRef string) error
	// CurrentScene reports the scene currently on program output.
	CurrentScene(ctx context.Context) (string, error)
	// Events delivers playback-ended signals. The channel closes when
	// the controller shuts down.
	Events() <-chan PlaybackEvent
}
