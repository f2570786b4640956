package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/klyja/geco/common"
	"github.com/klyja/geco/engine/camera"
	"github.com/klyja/geco/engine/codec"
	"github.com/klyja/geco/engine/interpolation"
	"github.com/klyja/geco/engine/model"
	"github.com/klyja/geco/engine/profiler"
	"github.com/klyja/geco/engine/renderer"
	"github.com/klyja/geco/engine/store"
)

// defaultPlaybackRate is the Play rate in frames per second when none is configured.
const defaultPlaybackRate = 30

// engine implements the Engine interface.
// Routes the command surface to the store, interpolation, renderer and codec.
type engine struct {
	store    store.Store
	renderer renderer.Renderer
	camera   camera.Camera

	storeOptions []store.StoreBuilderOption

	profiler         *profiler.Profiler
	profilingEnabled bool

	playbackRate time.Duration
}

// Engine is the main entry point for the engine.
// It owns one animation and exposes every editing, query, render and persistence operation on it.
//
// An Engine is not safe for concurrent use. Every call runs to completion on the caller's goroutine and
// either succeeds or leaves the animation untouched.
type Engine interface {
	// ID returns the animation id.
	ID() string

	// Name returns the animation name.
	Name() string

	// SetName renames the animation.
	//
	// Parameters:
	//   - name: the new name
	//
	// Returns:
	//   - error: InvalidRange if name is not valid UTF-8
	SetName(name string) error

	// TotalFrames returns the timeline length.
	TotalFrames() int32

	// SetTotalFrames sets the timeline length.
	//
	// Parameters:
	//   - frames: the new length, must be non-negative
	//
	// Returns:
	//   - error: an InvalidRange error if frames is negative
	SetTotalFrames(frames int32) error

	// CreateFeature inserts a new feature and makes it active.
	//
	// Parameters:
	//   - name: display name of the feature
	//   - kind: model.KindPolygon or model.KindPolyline
	//   - appearance: first visible frame
	//   - disappearance: last visible frame
	//
	// Returns:
	//   - string: the new feature id
	//   - error: an InvalidRange error if appearance > disappearance or kind is unknown
	CreateFeature(name string, kind model.Kind, appearance, disappearance int32) (string, error)

	// AddPoint creates a point on a feature with one keyframe and adds it to the feature structure from frame on.
	//
	// Parameters:
	//   - featureID: the owning feature
	//   - pointID: the new point id, or "" to allocate one
	//   - frame: the frame of the initial keyframe
	//   - x, y, z: the initial position
	//
	// Returns:
	//   - string: the point id
	//   - error: NotFound or DuplicatePointID
	AddPoint(featureID, pointID string, frame int32, x, y, z float32) (string, error)

	// AddPointToActiveFeature is AddPoint on the active feature.
	//
	// Returns:
	//   - string: the point id
	//   - error: NoActiveFeature if no feature is active, otherwise as AddPoint
	AddPointToActiveFeature(pointID string, frame int32, x, y, z float32) (string, error)

	// AddKeyframe records a position for an existing point.
	//
	// Parameters:
	//   - featureID: the owning feature
	//   - pointID: the point to animate
	//   - frame: the keyframe frame
	//   - x, y, z: the position at frame
	//
	// Returns:
	//   - error: NotFound, or InvalidRange under the reject keyframe policy
	AddKeyframe(featureID, pointID string, frame int32, x, y, z float32) error

	// SetActiveFeature marks a feature as the editing target. An empty id clears it.
	//
	// Returns:
	//   - error: NotFound if featureID is non-empty and unknown
	SetActiveFeature(featureID string) error

	// ActiveFeatureID returns the active feature id, if any.
	ActiveFeatureID() (string, bool)

	// Features summarizes every feature in creation order.
	Features() []store.FeatureInfo

	// Points lists every point of a feature in insertion order.
	//
	// Returns:
	//   - []string: point ids
	//   - error: NotFound if the feature is unknown
	Points(featureID string) ([]string, error)

	// ResolveStructure returns the ordered point ids composing a feature at frame.
	//
	// Returns:
	//   - []string: the ordered ids
	//   - error: NotFound if the feature is unknown
	ResolveStructure(featureID string, frame int32) ([]string, error)

	// InterpolatedPosition returns the position of a point at frame.
	//
	// Parameters:
	//   - featureID: the owning feature
	//   - pointID: the point
	//   - frame: the query frame
	//
	// Returns:
	//   - common.Vec3: the position
	//   - bool: false if the point has no keyframes and so no defined position
	//   - error: NotFound for an unknown feature or point
	InterpolatedPosition(featureID, pointID string, frame int32) (common.Vec3, bool, error)

	// BuildSegments renders frame into the engine's segment buffer.
	//
	// Parameters:
	//   - frame: the frame to render
	//   - activeFeatureID: the feature to highlight; "" or an unknown id highlights nothing
	//
	// Returns:
	//   - *renderer.SegmentBuffer: the buffer, valid until the next build
	BuildSegments(frame int32, activeFeatureID string) *renderer.SegmentBuffer

	// Renderables resolves every feature visible at frame into a serializable view.
	//
	// Returns:
	//   - []renderer.RenderableFeature: visible features in creation order
	Renderables(frame int32) []renderer.RenderableFeature

	// Encode serializes the animation to its wire form.
	//
	// Returns:
	//   - []byte: the encoded animation
	Encode() []byte

	// Decode replaces the animation with the one encoded in data. On failure the current animation is kept.
	// The last decoded feature becomes active.
	//
	// Parameters:
	//   - data: an encoded animation
	//
	// Returns:
	//   - error: a DecodeError if data is malformed
	Decode(data []byte) error

	// Animation returns the owned animation for read-only use.
	Animation() *model.Animation

	// Renderer returns the renderer used by BuildSegments and Play.
	Renderer() renderer.Renderer

	// Camera returns the camera whose view-projection matrix Play uploads alongside each frame.
	Camera() camera.Camera

	// Play renders frames from through to at the playback rate, highlighting the active feature.
	// Each frame and the camera matrix are uploaded to the renderer backend, if any, and then handed to callback.
	// Play blocks until the last frame or until ctx is done.
	//
	// Parameters:
	//   - ctx: cancels playback between frames
	//   - from: the first frame
	//   - to: the last frame, inclusive
	//   - callback: receives each frame and its buffer; may be nil
	//
	// Returns:
	//   - error: InvalidRange if from > to, the upload error, or ctx.Err()
	Play(ctx context.Context, from, to int32, callback func(frame int32, buf *renderer.SegmentBuffer)) error

	// SetPlaybackRate sets the Play rate in frames per second.
	//
	// Parameters:
	//   - fps: target frames per second (defaults to 30 if <= 0)
	SetPlaybackRate(fps float64)

	// EnableProfiler enables performance profiling output to the log during Play.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()
}

// Ensure engine implements Engine interface.
var _ Engine = &engine{}

// NewEngine creates a new Engine instance with the provided options.
// Without WithStore the engine starts with a fresh "Untitled Animation" of 100 frames.
//
// Parameters:
//   - options: functional options for engine configuration (store, renderer, camera, profiling, playback rate)
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		profiler:         profiler.NewProfiler(profiler.WithLabel("playback")),
		profilingEnabled: false,
		playbackRate:     time.Second / defaultPlaybackRate,
	}

	for _, opt := range options {
		opt(e)
	}

	if e.store == nil {
		e.store = store.NewStore(e.storeOptions...)
	}
	if e.renderer == nil {
		e.renderer = renderer.NewRenderer()
	}
	if e.camera == nil {
		e.camera = camera.NewCamera()
	}

	return e
}

// SetLogger installs the logger used by every engine package. Pass nil to silence logging again.
//
// Parameters:
//   - l: the logger to use
func SetLogger(l *slog.Logger) {
	common.SetLogger(l)
}

func (e *engine) ID() string {
	return e.store.ID()
}

func (e *engine) Name() string {
	return e.store.Name()
}

func (e *engine) SetName(name string) error {
	return e.store.SetName(name)
}

func (e *engine) TotalFrames() int32 {
	return e.store.TotalFrames()
}

func (e *engine) SetTotalFrames(frames int32) error {
	return e.store.SetTotalFrames(frames)
}

func (e *engine) CreateFeature(name string, kind model.Kind, appearance, disappearance int32) (string, error) {
	return e.store.CreateFeature(name, kind, appearance, disappearance)
}

func (e *engine) AddPoint(featureID, pointID string, frame int32, x, y, z float32) (string, error) {
	return e.store.AddPoint(featureID, pointID, frame, x, y, z)
}

func (e *engine) AddPointToActiveFeature(pointID string, frame int32, x, y, z float32) (string, error) {
	return e.store.AddPointToActiveFeature(pointID, frame, x, y, z)
}

func (e *engine) AddKeyframe(featureID, pointID string, frame int32, x, y, z float32) error {
	return e.store.AddKeyframe(featureID, pointID, frame, x, y, z)
}

func (e *engine) SetActiveFeature(featureID string) error {
	return e.store.SetActiveFeature(featureID)
}

func (e *engine) ActiveFeatureID() (string, bool) {
	return e.store.ActiveFeatureID()
}

func (e *engine) Features() []store.FeatureInfo {
	return e.store.Features()
}

func (e *engine) Points(featureID string) ([]string, error) {
	return e.store.Points(featureID)
}

func (e *engine) ResolveStructure(featureID string, frame int32) ([]string, error) {
	return e.store.ResolveStructure(featureID, frame)
}

func (e *engine) InterpolatedPosition(featureID, pointID string, frame int32) (common.Vec3, bool, error) {
	p, err := e.store.Point(featureID, pointID)
	if err != nil {
		return common.Vec3{}, false, err
	}
	pos, ok := interpolation.PositionAt(p, frame)
	return pos, ok, nil
}

func (e *engine) BuildSegments(frame int32, activeFeatureID string) *renderer.SegmentBuffer {
	return e.renderer.BuildSegments(e.store.Animation(), frame, activeFeatureID)
}

func (e *engine) Renderables(frame int32) []renderer.RenderableFeature {
	return renderer.Renderables(e.store.Animation(), frame)
}

func (e *engine) Encode() []byte {
	data := codec.Encode(e.store.Animation())
	common.Logger().Info("animation encoded", "animation", e.store.ID(), "bytes", len(data))
	return data
}

func (e *engine) Decode(data []byte) error {
	a, err := codec.Decode(data)
	if err != nil {
		common.Logger().Warn("decode rejected", "bytes", len(data), "error", err)
		return err
	}
	if err := e.store.Replace(a); err != nil {
		return &common.DecodeError{Reason: "invalid animation", Err: err}
	}
	common.Logger().Info("animation decoded", "animation", a.ID, "features", len(a.Features), "bytes", len(data))
	return nil
}

func (e *engine) Animation() *model.Animation {
	return e.store.Animation()
}

func (e *engine) Renderer() renderer.Renderer {
	return e.renderer
}

func (e *engine) Camera() camera.Camera {
	return e.camera
}

func (e *engine) Play(ctx context.Context, from, to int32, callback func(frame int32, buf *renderer.SegmentBuffer)) error {
	if from > to {
		return &common.InvalidRangeError{
			Field:  "playback range",
			Reason: fmt.Sprintf("first frame %d is after last frame %d", from, to),
		}
	}

	ticker := time.NewTicker(e.playbackRate)
	defer ticker.Stop()

	for frame := from; ; frame++ {
		active, _ := e.store.ActiveFeatureID()
		buf := e.BuildSegments(frame, active)
		if e.renderer.Backend() != nil {
			e.camera.Update()
			e.renderer.UploadGlobals(renderer.NewSegmentGlobals(e.camera.ViewProjectionMatrix()))
		}
		if err := e.renderer.Upload(); err != nil {
			return fmt.Errorf("upload frame %d: %w", frame, err)
		}
		if callback != nil {
			callback(frame, buf)
		}
		if e.profilingEnabled && e.profiler != nil {
			e.profiler.Tick()
		}

		if frame == to {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// SetPlaybackRate sets the Play rate in frames per second.
// Takes effect on the next call to Play.
func (e *engine) SetPlaybackRate(fps float64) {
	if fps <= 0 {
		fps = defaultPlaybackRate
	}
	e.playbackRate = time.Duration(float64(time.Second) / fps)
}

// EnableProfiler enables performance profiling output to the log.
func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

// DisableProfiler disables performance profiling output.
func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}
