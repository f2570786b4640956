package engine

import (
	"time"

	"github.com/klyja/geco/engine/camera"
	"github.com/klyja/geco/engine/renderer"
	"github.com/klyja/geco/engine/store"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithProfiling enables or disables performance profiling output during Play.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
	}
}

// WithPlaybackRate sets the Play rate in frames per second.
// Values <= 0 will be treated as the default (30 fps).
//
// Parameters:
//   - fps: target frames per second (default 30)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithPlaybackRate(fps float64) EngineBuilderOption {
	return func(e *engine) {
		if fps <= 0 {
			fps = defaultPlaybackRate
		}
		e.playbackRate = time.Duration(float64(time.Second) / fps)
	}
}

// WithStore sets a pre-built store for the engine to use rather than creating one internally.
// WithStoreOptions is ignored when a store is supplied.
//
// Parameters:
//   - s: a pre-configured Store instance
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithStore(s store.Store) EngineBuilderOption {
	return func(e *engine) {
		e.store = s
	}
}

// WithStoreOptions passes options to the internally created store, e.g. a keyframe policy or id allocator.
//
// Parameters:
//   - options: the store options
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithStoreOptions(options ...store.StoreBuilderOption) EngineBuilderOption {
	return func(e *engine) {
		e.storeOptions = append(e.storeOptions, options...)
	}
}

// WithRenderer sets a custom configured renderer, typically one with a GPU backend attached.
//
// Parameters:
//   - r: a pre-configured Renderer instance
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderer(r renderer.Renderer) EngineBuilderOption {
	return func(e *engine) {
		e.renderer = r
	}
}

// WithCamera sets the camera used for the view-projection matrix uploaded during Play.
//
// Parameters:
//   - c: a pre-configured Camera instance
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithCamera(c camera.Camera) EngineBuilderOption {
	return func(e *engine) {
		e.camera = c
	}
}
