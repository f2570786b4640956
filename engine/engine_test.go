package engine

import (
	"context"
	"testing"
	"time"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/klyja/geco/common"
	"github.com/klyja/geco/engine/camera"
	"github.com/klyja/geco/engine/identifier"
	"github.com/klyja/geco/engine/model"
	"github.com/klyja/geco/engine/renderer"
	"github.com/klyja/geco/engine/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEngineDefaults(t *testing.T) {
	e := NewEngine()
	assert.Equal(t, "Untitled Animation", e.Name())
	assert.Equal(t, int32(100), e.TotalFrames())
	assert.NotEmpty(t, e.ID())
	assert.NotNil(t, e.Renderer())
	assert.NotNil(t, e.Camera())

	require.NoError(t, e.SetName("Europe"))
	assert.Equal(t, "Europe", e.Name())
	require.NoError(t, e.SetTotalFrames(48))
	assert.Equal(t, int32(48), e.TotalFrames())
	assert.ErrorIs(t, e.SetTotalFrames(-3), common.ErrInvalidRange)
}

func TestQuarterTurn(t *testing.T) {
	e := NewEngine()
	f, err := e.CreateFeature("F", model.KindPolyline, 0, 100)
	require.NoError(t, err)
	_, err = e.AddPoint(f, "P", 0, 1, 0, 0)
	require.NoError(t, err)
	require.NoError(t, e.AddKeyframe(f, "P", 100, 0, 1, 0))

	pos, ok, err := e.InterpolatedPosition(f, "P", 50)
	require.NoError(t, err)
	require.True(t, ok)
	assert.InDelta(t, 0.7071, pos.X, 1e-4)
	assert.InDelta(t, 0.7071, pos.Y, 1e-4)
	assert.InDelta(t, 0, pos.Z, 1e-4)

	pos, _, _ = e.InterpolatedPosition(f, "P", 100)
	assert.Equal(t, common.NewVec3(0, 1, 0), pos)

	_, _, err = e.InterpolatedPosition(f, "missing", 50)
	assert.ErrorIs(t, err, common.ErrNotFound)
	_, _, err = e.InterpolatedPosition("missing", "P", 50)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestStructureOverTime(t *testing.T) {
	e := NewEngine()
	f, _ := e.CreateFeature("F", model.KindPolyline, 0, 100)
	_, _ = e.AddPoint(f, "A", 0, 1, 0, 0)
	_, _ = e.AddPoint(f, "B", 0, 0, 1, 0)
	_, _ = e.AddPoint(f, "C", 10, 0, 0, 1)

	ids, err := e.ResolveStructure(f, 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, ids)
	ids, err = e.ResolveStructure(f, 15)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, ids)

	points, err := e.Points(f)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, points)

	assert.Equal(t, 1, e.BuildSegments(5, "").SegmentCount)
	assert.Equal(t, 2, e.BuildSegments(15, "").SegmentCount)
}

func TestUnknownActiveFeature(t *testing.T) {
	e := NewEngine()
	f, _ := e.CreateFeature("F", model.KindPolygon, 0, 100)
	_, _ = e.AddPoint(f, "A", 0, 1, 0, 0)
	_, _ = e.AddPoint(f, "B", 0, 0, 1, 0)
	_, _ = e.AddPoint(f, "C", 0, 0, 0, 1)

	buf := e.BuildSegments(50, "nonexistent-feature-id")
	require.Equal(t, 3, buf.SegmentCount)
	for i := 0; i < 2*buf.SegmentCount; i++ {
		assert.Zero(t, buf.Vertex(i).Active)
	}
}

func TestDecodeFailureKeepsState(t *testing.T) {
	e := NewEngine()
	f, _ := e.CreateFeature("Coast", model.KindPolyline, 0, 100)
	_, _ = e.AddPoint(f, "A", 0, 1, 0, 0)
	_, _ = e.AddPoint(f, "B", 0, 0, 1, 0)
	data := e.Encode()

	other := NewEngine()
	g, _ := other.CreateFeature("Keep", model.KindPolygon, 0, 10)
	before := other.Encode()

	for _, bad := range [][]byte{data[:3], data[:len(data)-3]} {
		err := other.Decode(bad)
		assert.ErrorIs(t, err, common.ErrDecode)
		var de *common.DecodeError
		assert.ErrorAs(t, err, &de)

		assert.Equal(t, before, other.Encode())
		active, ok := other.ActiveFeatureID()
		assert.True(t, ok)
		assert.Equal(t, g, active)
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	e := NewEngine(WithStoreOptions(store.WithIDAllocator(&identifier.Sequence{Prefix: "x"})))
	require.NoError(t, e.SetName("Round"))
	f, _ := e.CreateFeature("A", model.KindPolygon, 0, 50)
	_, _ = e.AddPoint(f, "", 0, 1, 0, 0)
	g, _ := e.CreateFeature("B", model.KindPolyline, 10, 20)
	p, _ := e.AddPoint(g, "", 10, 0, 1, 0)
	require.NoError(t, e.AddKeyframe(g, p, 20, 0, 0, 1))
	require.NoError(t, e.SetActiveFeature(f))

	loaded := NewEngine()
	require.NoError(t, loaded.Decode(e.Encode()))
	assert.Equal(t, e.Animation(), loaded.Animation())
	assert.Equal(t, e.Features(), loaded.Features())

	active, ok := loaded.ActiveFeatureID()
	require.True(t, ok)
	assert.Equal(t, g, active)
}

func TestInvalidUTF8NeverReachesEncode(t *testing.T) {
	e := NewEngine()
	_, err := e.CreateFeature("bad\xff", model.KindPolygon, 0, 10)
	assert.ErrorIs(t, err, common.ErrInvalidRange)
	assert.ErrorIs(t, e.SetName("bad\xff"), common.ErrInvalidRange)

	f, err := e.CreateFeature("Grenzen", model.KindPolygon, 0, 10)
	require.NoError(t, err)
	_, err = e.AddPoint(f, "p\xff", 0, 1, 0, 0)
	assert.ErrorIs(t, err, common.ErrInvalidRange)
	_, err = e.AddPoint(f, "", 0, 1, 0, 0)
	require.NoError(t, err)

	loaded := NewEngine()
	require.NoError(t, loaded.Decode(e.Encode()))
	assert.Equal(t, e.Features(), loaded.Features())
}

func TestAddPointToActiveFeature(t *testing.T) {
	e := NewEngine()
	_, err := e.AddPointToActiveFeature("A", 0, 1, 0, 0)
	assert.ErrorIs(t, err, common.ErrNoActiveFeature)

	f, _ := e.CreateFeature("F", model.KindPolyline, 0, 10)
	_, err = e.AddPointToActiveFeature("A", 0, 1, 0, 0)
	require.NoError(t, err)
	ids, _ := e.Points(f)
	assert.Equal(t, []string{"A"}, ids)

	require.NoError(t, e.SetActiveFeature(""))
	_, ok := e.ActiveFeatureID()
	assert.False(t, ok)
	assert.ErrorIs(t, e.SetActiveFeature("nope"), common.ErrNotFound)
}

func TestKeyframeRejectPolicy(t *testing.T) {
	e := NewEngine(WithStoreOptions(store.WithKeyframePolicy(store.KeyframeReject)))
	f, _ := e.CreateFeature("F", model.KindPolyline, 0, 10)
	_, _ = e.AddPoint(f, "A", 0, 1, 0, 0)
	assert.ErrorIs(t, e.AddKeyframe(f, "A", 0, 0, 1, 0), common.ErrInvalidRange)
}

func TestRenderables(t *testing.T) {
	e := NewEngine()
	f, _ := e.CreateFeature("Lake", model.KindPolygon, 0, 10)
	_, _ = e.AddPoint(f, "A", 0, 1, 0, 0)

	got := e.Renderables(5)
	require.Len(t, got, 1)
	assert.Equal(t, f, got[0].ID)
	assert.Empty(t, e.Renderables(11))
}

func TestPlay(t *testing.T) {
	e := NewEngine(WithPlaybackRate(1000), WithProfiling(true))
	f, _ := e.CreateFeature("F", model.KindPolyline, 0, 10)
	_, _ = e.AddPoint(f, "A", 0, 1, 0, 0)
	_, _ = e.AddPoint(f, "B", 0, 0, 1, 0)

	var frames []int32
	err := e.Play(context.Background(), 3, 7, func(frame int32, buf *renderer.SegmentBuffer) {
		frames = append(frames, frame)
		assert.Equal(t, 1, buf.SegmentCount)
		assert.Equal(t, float32(1), buf.Vertex(0).Active)
	})
	require.NoError(t, err)
	assert.Equal(t, []int32{3, 4, 5, 6, 7}, frames)

	assert.ErrorIs(t, e.Play(context.Background(), 7, 3, nil), common.ErrInvalidRange)
}

func TestPlaybackRateDefault(t *testing.T) {
	e := NewEngine().(*engine)
	assert.Equal(t, time.Second/30, e.playbackRate)

	e.SetPlaybackRate(60)
	assert.Equal(t, time.Second/60, e.playbackRate)
	e.SetPlaybackRate(0)
	assert.Equal(t, time.Second/30, e.playbackRate)

	e = NewEngine(WithPlaybackRate(-1)).(*engine)
	assert.Equal(t, time.Second/30, e.playbackRate)
}

func TestPlayCancel(t *testing.T) {
	e := NewEngine(WithPlaybackRate(1000))
	ctx, cancel := context.WithCancel(context.Background())

	var frames int
	err := e.Play(ctx, 0, 100, func(int32, *renderer.SegmentBuffer) {
		frames++
		if frames == 2 {
			cancel()
		}
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 2, frames)
}

type countingBackend struct {
	segments int
	globals  int
}

func (b *countingBackend) Type() renderer.RendererBackendType { return renderer.BackendTypeWGPU }
func (b *countingBackend) WriteSegments(*renderer.SegmentBuffer) error {
	b.segments++
	return nil
}
func (b *countingBackend) WriteGlobals(renderer.GPUSegmentGlobals) { b.globals++ }
func (b *countingBackend) VertexCount() uint32                     { return 0 }
func (b *countingBackend) Draw(*wgpu.RenderPassEncoder)            {}
func (b *countingBackend) Release()                                {}

func TestPlayUploadsToBackend(t *testing.T) {
	backend := &countingBackend{}
	cam := camera.NewCamera(camera.WithAspect(16.0 / 9.0))
	e := NewEngine(
		WithPlaybackRate(1000),
		WithRenderer(renderer.NewRenderer(renderer.WithBackend(backend))),
		WithCamera(cam),
	)
	assert.Same(t, cam, e.Camera())

	require.NoError(t, e.Play(context.Background(), 0, 2, nil))
	assert.Equal(t, 3, backend.segments)
	assert.Equal(t, 3, backend.globals)
}
