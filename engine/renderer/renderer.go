package renderer

import (
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/klyja/geco/common"
	"github.com/klyja/geco/engine/interpolation"
	"github.com/klyja/geco/engine/model"
)

// renderer is the implementation of the Renderer interface.
type renderer struct {
	buffer  *SegmentBuffer
	dropped int
	backend RendererBackend
}

// Renderer turns the animation state at one frame into a capacity-bounded segment buffer and optionally
// pushes it to a GPU backend.
//
// The Renderer owns a single SegmentBuffer that is rewritten in place by every build, so the buffer returned
// from BuildSegments is only valid until the next call.
type Renderer interface {
	// BuildSegments fills the owned buffer with every drawable segment at frame.
	// Unknown or empty activeFeatureID values are allowed and simply mark nothing as active.
	//
	// Parameters:
	//   - a: the animation to read; it is not modified
	//   - frame: the frame to render
	//   - activeFeatureID: the feature whose vertices get an active flag of 1
	//
	// Returns:
	//   - *SegmentBuffer: the owned buffer, valid until the next build
	BuildSegments(a *model.Animation, frame int32, activeFeatureID string) *SegmentBuffer

	// Buffer returns the owned buffer as left by the last build.
	//
	// Returns:
	//   - *SegmentBuffer: the owned buffer
	Buffer() *SegmentBuffer

	// Dropped returns how many eligible segments the last build discarded because the buffer was full.
	//
	// Returns:
	//   - int: the number of dropped segments
	Dropped() int

	// Upload writes the used part of the owned buffer to the backend. Without a backend it does nothing.
	//
	// Returns:
	//   - error: an error if the backend write fails
	Upload() error

	// UploadGlobals writes the camera matrix and colors to the backend. Without a backend it does nothing.
	//
	// Parameters:
	//   - globals: the uniform block for the segment shader
	UploadGlobals(globals GPUSegmentGlobals)

	// Draw records the uploaded segments into pass. Without a backend it does nothing.
	Draw(pass *wgpu.RenderPassEncoder)

	// Backend returns the configured backend, or nil.
	//
	// Returns:
	//   - RendererBackend: the backend
	Backend() RendererBackend

	// Release frees backend resources.
	Release()
}

// Ensure renderer implements Renderer interface.
var _ Renderer = &renderer{}

// NewRenderer creates a Renderer with an empty buffer.
//
// Parameters:
//   - options: functional options (backend)
//
// Returns:
//   - Renderer: the newly created renderer
func NewRenderer(options ...RendererBuilderOption) Renderer {
	r := &renderer{
		buffer: NewSegmentBuffer(),
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

func (r *renderer) BuildSegments(a *model.Animation, frame int32, activeFeatureID string) *SegmentBuffer {
	r.dropped = BuildSegments(r.buffer, a, frame, activeFeatureID)
	if r.dropped > 0 {
		common.Logger().Warn("segment buffer full", "frame", frame, "capacity", MaxSegments, "dropped", r.dropped)
	}
	common.Logger().Debug("segments built", "frame", frame, "segments", r.buffer.SegmentCount)
	return r.buffer
}

func (r *renderer) Buffer() *SegmentBuffer {
	return r.buffer
}

func (r *renderer) Dropped() int {
	return r.dropped
}

func (r *renderer) Upload() error {
	if r.backend == nil {
		return nil
	}
	return r.backend.WriteSegments(r.buffer)
}

func (r *renderer) UploadGlobals(globals GPUSegmentGlobals) {
	if r.backend == nil {
		return
	}
	r.backend.WriteGlobals(globals)
}

func (r *renderer) Draw(pass *wgpu.RenderPassEncoder) {
	if r.backend == nil {
		return
	}
	r.backend.Draw(pass)
}

func (r *renderer) Backend() RendererBackend {
	return r.backend
}

func (r *renderer) Release() {
	if r.backend != nil {
		r.backend.Release()
	}
}

// BuildSegments rewrites buf with the segments of every feature visible at frame, in feature then structure order.
// Polylines connect consecutive points; polygons also close from the last point back to the first when at
// least two points are present. A segment whose endpoint has no defined position is skipped.
// Segments past MaxSegments are counted but not stored.
//
// Parameters:
//   - buf: the buffer to fill; its previous contents are cleared
//   - a: the animation to read
//   - frame: the frame to render
//   - activeFeatureID: the feature whose vertices get an active flag of 1
//
// Returns:
//   - int: the number of eligible segments that did not fit
func BuildSegments(buf *SegmentBuffer, a *model.Animation, frame int32, activeFeatureID string) int {
	buf.reset()
	if a == nil {
		return 0
	}

	dropped := 0
	emit := func(f *model.Feature, fromID, toID string, active float32) {
		from, ok := positionOf(f, fromID, frame)
		if !ok {
			return
		}
		to, ok := positionOf(f, toID, frame)
		if !ok {
			return
		}
		if !buf.push(from, to, active) {
			dropped++
		}
	}

	for _, f := range a.Features {
		if !f.VisibleAt(frame) {
			continue
		}
		ids := f.StructureAt(frame)
		if len(ids) < 2 {
			continue
		}

		var active float32
		if activeFeatureID != "" && f.ID == activeFeatureID {
			active = 1
		}

		for i := 0; i+1 < len(ids); i++ {
			emit(f, ids[i], ids[i+1], active)
		}
		if f.Kind == model.KindPolygon {
			emit(f, ids[len(ids)-1], ids[0], active)
		}
	}
	return dropped
}

func positionOf(f *model.Feature, id string, frame int32) (common.Vec3, bool) {
	p, ok := f.Point(id)
	if !ok {
		return common.Vec3{}, false
	}
	return interpolation.PositionAt(p, frame)
}
