package renderer

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/klyja/geco/common"
	"github.com/klyja/geco/engine/model"
	"github.com/klyja/geco/engine/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newFeature creates a feature in s holding n points spread along the equator, all present from appearance.
func newFeature(t *testing.T, s store.Store, kind model.Kind, appearance, disappearance int32, n int) string {
	t.Helper()
	f, err := s.CreateFeature("F", kind, appearance, disappearance)
	require.NoError(t, err)
	for i := 0; i < n; i++ {
		angle := float64(i) * 2 * math.Pi / float64(n+1)
		_, err := s.AddPoint(f, "", appearance, float32(math.Cos(angle)), float32(math.Sin(angle)), 0)
		require.NoError(t, err)
	}
	return f
}

func TestVisibilityBoundary(t *testing.T) {
	s := store.NewStore()
	newFeature(t, s, model.KindPolyline, 10, 20, 2)
	r := NewRenderer()

	for _, frame := range []int32{9, 21} {
		assert.Zero(t, r.BuildSegments(s.Animation(), frame, "").SegmentCount, "frame %d", frame)
	}
	for frame := int32(10); frame <= 20; frame++ {
		assert.Equal(t, 1, r.BuildSegments(s.Animation(), frame, "").SegmentCount, "frame %d", frame)
	}
}

func TestSegmentsPerKind(t *testing.T) {
	tests := []struct {
		name   string
		kind   model.Kind
		points int
		want   int
	}{
		{"polyline of three", model.KindPolyline, 3, 2},
		{"polygon of three", model.KindPolygon, 3, 3},
		{"polygon of two closes", model.KindPolygon, 2, 2},
		{"single point", model.KindPolygon, 1, 0},
		{"empty", model.KindPolyline, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := store.NewStore()
			newFeature(t, s, tt.kind, 0, 100, tt.points)
			buf := NewRenderer().BuildSegments(s.Animation(), 50, "")
			assert.Equal(t, tt.want, buf.SegmentCount)
		})
	}
}

func TestPolygonClosingSegment(t *testing.T) {
	s := store.NewStore()
	f, _ := s.CreateFeature("Tri", model.KindPolygon, 0, 10)
	_, _ = s.AddPoint(f, "a", 0, 1, 0, 0)
	_, _ = s.AddPoint(f, "b", 0, 0, 1, 0)
	_, _ = s.AddPoint(f, "c", 0, 0, 0, 1)

	buf := NewRenderer().BuildSegments(s.Animation(), 0, "")
	require.Equal(t, 3, buf.SegmentCount)
	from, to := buf.Segment(2)
	assert.Equal(t, [3]float32{0, 0, 1}, from.Position)
	assert.Equal(t, [3]float32{1, 0, 0}, to.Position)
}

func TestCapacity(t *testing.T) {
	s := store.NewStore()
	newFeature(t, s, model.KindPolyline, 0, 100, MaxSegments+52)
	r := NewRenderer()

	buf := r.BuildSegments(s.Animation(), 0, "")
	assert.Equal(t, MaxSegments, buf.SegmentCount)
	assert.True(t, buf.Full())
	assert.Equal(t, 51, r.Dropped())
	assert.Len(t, buf.Vertices, BufferFloats)
}

func TestCapacityExact(t *testing.T) {
	s := store.NewStore()
	newFeature(t, s, model.KindPolyline, 0, 100, MaxSegments+1)
	r := NewRenderer()
	assert.Equal(t, MaxSegments, r.BuildSegments(s.Animation(), 0, "").SegmentCount)
	assert.Zero(t, r.Dropped())
}

func TestBuildIsIdempotent(t *testing.T) {
	s := store.NewStore()
	newFeature(t, s, model.KindPolygon, 0, 100, 5)
	r := NewRenderer()

	first := append([]float32(nil), r.BuildSegments(s.Animation(), 30, "").Vertices...)
	second := r.BuildSegments(s.Animation(), 30, "")
	assert.Equal(t, first, second.Vertices)
	assert.Equal(t, 5, second.SegmentCount)
}

func TestBuildClearsStaleTail(t *testing.T) {
	s := store.NewStore()
	newFeature(t, s, model.KindPolygon, 0, 10, 4)
	r := NewRenderer()

	require.Equal(t, 4, r.BuildSegments(s.Animation(), 5, "").SegmentCount)
	buf := r.BuildSegments(s.Animation(), 50, "")
	assert.Zero(t, buf.SegmentCount)
	for i, v := range buf.Vertices[:4*FloatsPerSegment] {
		assert.Zero(t, v, "float %d", i)
	}
}

func TestActiveFlag(t *testing.T) {
	s := store.NewStore()
	first := newFeature(t, s, model.KindPolyline, 0, 100, 2)
	newFeature(t, s, model.KindPolyline, 0, 100, 2)
	r := NewRenderer()

	buf := r.BuildSegments(s.Animation(), 50, "nonexistent-feature-id")
	require.Equal(t, 2, buf.SegmentCount)
	for i := 0; i < 2*buf.SegmentCount; i++ {
		assert.Zero(t, buf.Vertex(i).Active)
	}

	buf = r.BuildSegments(s.Animation(), 50, first)
	a, b := buf.Segment(0)
	assert.Equal(t, float32(1), a.Active)
	assert.Equal(t, float32(1), b.Active)
	a, b = buf.Segment(1)
	assert.Zero(t, a.Active)
	assert.Zero(t, b.Active)
}

func TestSkipsUndefinedEndpoint(t *testing.T) {
	a := model.NewAnimation("a", "A", 10)
	f := model.NewFeature("f", "F", model.KindPolyline, 0, 10)
	f.AppendPoint(model.NewPoint("p1", model.NewKeyframe(0, 1, 0, 0)))
	f.AppendPoint(&model.Point{ID: "ghost"})
	f.AppendPoint(model.NewPoint("p3", model.NewKeyframe(0, 0, 1, 0)))
	f.AppendPoint(model.NewPoint("p4", model.NewKeyframe(0, 0, 0, 1)))
	f.Snapshots[0].OrderedPointIDs = []string{"p1", "ghost", "p3", "p4"}
	a.AppendFeature(f)

	buf := NewRenderer().BuildSegments(a, 0, "")
	require.Equal(t, 1, buf.SegmentCount)
	from, to := buf.Segment(0)
	assert.Equal(t, [3]float32{0, 1, 0}, from.Position)
	assert.Equal(t, [3]float32{0, 0, 1}, to.Position)
}

func TestSegmentsFollowInterpolation(t *testing.T) {
	s := store.NewStore()
	f, _ := s.CreateFeature("Arc", model.KindPolyline, 0, 100)
	_, _ = s.AddPoint(f, "P", 0, 1, 0, 0)
	_, _ = s.AddPoint(f, "Q", 0, 0, 0, 1)
	require.NoError(t, s.AddKeyframe(f, "P", 100, 0, 1, 0))

	buf := NewRenderer().BuildSegments(s.Animation(), 50, "")
	require.Equal(t, 1, buf.SegmentCount)
	from, _ := buf.Segment(0)
	got := common.NewVec3(from.Position[0], from.Position[1], from.Position[2])
	assert.True(t, got.ApproxEqual(common.NewVec3(0.70710677, 0.70710677, 0), 1e-4), "got %v", got)
}

func TestNilAnimation(t *testing.T) {
	assert.Zero(t, NewRenderer().BuildSegments(nil, 0, "").SegmentCount)
	assert.Empty(t, Renderables(nil, 0))
}

func TestUploadWithoutBackend(t *testing.T) {
	r := NewRenderer()
	assert.NoError(t, r.Upload())
	r.UploadGlobals(GPUSegmentGlobals{})
	r.Draw(nil)
	assert.Nil(t, r.Backend())
	r.Release()
}

type recordingBackend struct {
	writes   [][]byte
	globals  []GPUSegmentGlobals
	released bool
}

func (b *recordingBackend) Type() RendererBackendType { return BackendTypeWGPU }
func (b *recordingBackend) WriteSegments(buf *SegmentBuffer) error {
	b.writes = append(b.writes, buf.Bytes())
	return nil
}
func (b *recordingBackend) WriteGlobals(g GPUSegmentGlobals) { b.globals = append(b.globals, g) }
func (b *recordingBackend) VertexCount() uint32              { return 0 }
func (b *recordingBackend) Draw(*wgpu.RenderPassEncoder)     {}
func (b *recordingBackend) Release()                         { b.released = true }

func TestUploadWritesUsedBytes(t *testing.T) {
	s := store.NewStore()
	newFeature(t, s, model.KindPolygon, 0, 10, 3)
	backend := &recordingBackend{}
	r := NewRenderer(WithBackend(backend))

	r.BuildSegments(s.Animation(), 0, "")
	require.NoError(t, r.Upload())
	require.Len(t, backend.writes, 1)
	assert.Len(t, backend.writes[0], 3*FloatsPerSegment*4)

	var viewProj [16]float32
	viewProj[0] = 2
	r.UploadGlobals(NewSegmentGlobals(viewProj))
	require.Len(t, backend.globals, 1)
	assert.Equal(t, float32(2), backend.globals[0].ViewProj[0])
	assert.Equal(t, DefaultActiveSegmentColor, backend.globals[0].ActiveColor)

	r.Release()
	assert.True(t, backend.released)
}

func TestGPUSegmentVertexMarshal(t *testing.T) {
	v := GPUSegmentVertex{Position: [3]float32{1, 2, 3}, Active: 1}
	assert.Equal(t, 16, v.Size())
	data := v.Marshal()
	require.Len(t, data, 16)
	assert.Equal(t, float32(3), math.Float32frombits(binary.LittleEndian.Uint32(data[8:])))
	assert.Equal(t, float32(1), math.Float32frombits(binary.LittleEndian.Uint32(data[12:])))

	g := GPUSegmentGlobals{}
	assert.Equal(t, 96, g.Size())
	assert.Len(t, g.Marshal(), 96)
	assert.Contains(t, GPUSegmentShaderSource, "position_active")
}

func TestSegmentVertexLayout(t *testing.T) {
	layout := SegmentVertexLayout()
	assert.Equal(t, uint64(16), layout.ArrayStride)
	require.Len(t, layout.Attributes, 1)
	assert.Equal(t, wgpu.VertexFormatFloat32x4, layout.Attributes[0].Format)
}

func TestRenderables(t *testing.T) {
	s := store.NewStore()
	f, _ := s.CreateFeature("Lake", model.KindPolygon, 0, 10)
	_, _ = s.AddPoint(f, "a", 0, 1, 0, 0)
	_, _ = s.AddPoint(f, "b", 0, 0, 1, 0)
	_, _ = s.CreateFeature("Later", model.KindPolyline, 20, 30)

	got := Renderables(s.Animation(), 5)
	require.Len(t, got, 1)
	assert.Equal(t, "Lake", got[0].Name)
	assert.Equal(t, "polygon", got[0].Kind)
	assert.Equal(t, []RenderablePoint{{ID: "a", X: 1}, {ID: "b", Y: 1}}, got[0].Points)
}
