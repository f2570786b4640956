// Package bake renders ranges of frames concurrently for export.
package bake

import (
	"fmt"
	"runtime"
	"slices"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/klyja/geco/common"
	"github.com/klyja/geco/engine/model"
	"github.com/klyja/geco/engine/profiler"
	"github.com/klyja/geco/engine/renderer"
)

// Frame is the baked segment data of one frame.
type Frame struct {
	Frame        int32
	Vertices     []float32 // SegmentCount*renderer.FloatsPerSegment floats
	SegmentCount int
	Dropped      int
}

// Bytes returns the vertices as little-endian bytes, ready for a vertex buffer.
func (f Frame) Bytes() []byte {
	return common.SliceToBytes(f.Vertices)
}

// SegmentBuffer copies the frame into a full-capacity buffer.
func (f Frame) SegmentBuffer() *renderer.SegmentBuffer {
	buf := renderer.NewSegmentBuffer()
	copy(buf.Vertices, f.Vertices)
	buf.SegmentCount = f.SegmentCount
	return buf
}

// baker implements the Baker interface.
type baker struct {
	workers   int
	queueSize int
	active    string
	profiler  *profiler.Profiler

	pool    worker.DynamicWorkerPool
	buffers sync.Pool
}

// Baker renders many frames of one animation at once.
//
// A bake only reads the animation. Callers must not mutate it until Bake returns.
type Baker interface {
	// Bake renders every frame in [from, to].
	//
	// Parameters:
	//   - a: the animation to render
	//   - from: the first frame
	//   - to: the last frame, inclusive
	//
	// Returns:
	//   - []Frame: one entry per frame, ordered by frame
	//   - error: an InvalidRange error if from > to
	Bake(a *model.Animation, from, to int32) ([]Frame, error)

	// Close stops the worker pool. The Baker must not be used afterwards.
	Close()
}

// Ensure baker implements Baker interface.
var _ Baker = &baker{}

// NewBaker creates a Baker backed by a worker pool.
// Workers default to one less than the number of CPUs, minimum 1.
//
// Parameters:
//   - options: functional options (workers, queue size, active feature, profiler)
//
// Returns:
//   - Baker: the newly created baker
func NewBaker(options ...BakerBuilderOption) Baker {
	b := &baker{
		workers:   max(runtime.NumCPU()-1, 1),
		queueSize: 256,
	}
	for _, opt := range options {
		opt(b)
	}

	b.buffers.New = func() any {
		return renderer.NewSegmentBuffer()
	}
	b.pool = worker.NewDynamicWorkerPool(b.workers, b.queueSize, 1*time.Second)
	return b
}

// Frames is a one-shot bake with a fresh Baker.
//
// Parameters:
//   - a: the animation to render
//   - from: the first frame
//   - to: the last frame, inclusive
//   - options: functional options for the Baker
//
// Returns:
//   - []Frame: one entry per frame, ordered by frame
//   - error: an InvalidRange error if from > to
func Frames(a *model.Animation, from, to int32, options ...BakerBuilderOption) ([]Frame, error) {
	b := NewBaker(options...)
	defer b.Close()
	return b.Bake(a, from, to)
}

func (b *baker) Bake(a *model.Animation, from, to int32) ([]Frame, error) {
	if from > to {
		return nil, &common.InvalidRangeError{
			Field:  "bake range",
			Reason: fmt.Sprintf("first frame %d is after last frame %d", from, to),
		}
	}

	count := int(int64(to) - int64(from) + 1)
	frames := make([]Frame, count)
	start := time.Now()

	// The pool's own Wait only returns once workers idle out, so a WaitGroup is the barrier.
	var wg sync.WaitGroup
	for i := range count {
		wg.Add(1)
		frame := from + int32(i)
		b.pool.SubmitTask(worker.Task{
			ID: i,
			Do: func() (any, error) {
				defer wg.Done()

				buf := b.buffers.Get().(*renderer.SegmentBuffer)
				defer b.buffers.Put(buf)

				dropped := renderer.BuildSegments(buf, a, frame, b.active)
				frames[i] = Frame{
					Frame:        frame,
					Vertices:     slices.Clone(buf.Used()),
					SegmentCount: buf.SegmentCount,
					Dropped:      dropped,
				}
				if b.profiler != nil {
					b.profiler.Tick()
				}
				return nil, nil
			},
		})
	}
	wg.Wait()

	truncated := 0
	for _, f := range frames {
		if f.Dropped > 0 {
			truncated++
		}
	}
	if truncated > 0 {
		common.Logger().Warn("segment buffer full during bake", "frames", truncated, "capacity", renderer.MaxSegments)
	}
	common.Logger().Info("bake finished", "from", from, "to", to, "frames", count,
		"workers", b.workers, "elapsed", time.Since(start))
	return frames, nil
}

func (b *baker) Close() {
	b.pool.Stop()
}
