package renderer

import "github.com/klyja/geco/common"

const (
	// MaxSegments is the fixed capacity of a SegmentBuffer. Segments past it are dropped.
	MaxSegments = 2048

	// FloatsPerVertex is x, y, z and the active flag.
	FloatsPerVertex = 4

	// VerticesPerSegment is the number of vertices stored per segment.
	VerticesPerSegment = 2

	// FloatsPerSegment is the stride of one segment in SegmentBuffer.Vertices.
	FloatsPerSegment = FloatsPerVertex * VerticesPerSegment

	// BufferFloats is the length of SegmentBuffer.Vertices.
	BufferFloats = MaxSegments * FloatsPerSegment

	// BufferBytes is the size of the GPU vertex buffer backing a SegmentBuffer.
	BufferBytes = BufferFloats * 4
)

// SegmentBuffer is the flat render output for one frame.
// Vertices always has BufferFloats entries; only the first SegmentCount*FloatsPerSegment are meaningful.
type SegmentBuffer struct {
	Vertices     []float32
	SegmentCount int
}

// NewSegmentBuffer allocates an empty buffer at full capacity.
func NewSegmentBuffer() *SegmentBuffer {
	return &SegmentBuffer{Vertices: make([]float32, BufferFloats)}
}

// Used returns the meaningful prefix of Vertices.
func (b *SegmentBuffer) Used() []float32 {
	return b.Vertices[:b.SegmentCount*FloatsPerSegment]
}

// Bytes returns the meaningful prefix of Vertices as little-endian bytes for GPU upload.
func (b *SegmentBuffer) Bytes() []byte {
	return common.SliceToBytes(b.Used())
}

// Vertex returns vertex i, where vertex 2k and 2k+1 are the endpoints of segment k.
//
// Parameters:
//   - i: the vertex index, must be below 2*SegmentCount
//
// Returns:
//   - GPUSegmentVertex: the vertex
func (b *SegmentBuffer) Vertex(i int) GPUSegmentVertex {
	o := i * FloatsPerVertex
	return GPUSegmentVertex{
		Position: [3]float32{b.Vertices[o], b.Vertices[o+1], b.Vertices[o+2]},
		Active:   b.Vertices[o+3],
	}
}

// Segment returns both endpoints of segment i.
func (b *SegmentBuffer) Segment(i int) (GPUSegmentVertex, GPUSegmentVertex) {
	return b.Vertex(2 * i), b.Vertex(2*i + 1)
}

// Full reports whether the buffer has reached MaxSegments.
func (b *SegmentBuffer) Full() bool {
	return b.SegmentCount >= MaxSegments
}

// reset zeroes the previously used prefix and empties the buffer.
func (b *SegmentBuffer) reset() {
	clear(b.Used())
	b.SegmentCount = 0
}

// push appends one segment. It reports false once the buffer is full.
func (b *SegmentBuffer) push(a, c common.Vec3, active float32) bool {
	if b.Full() {
		return false
	}
	o := b.SegmentCount * FloatsPerSegment
	v := b.Vertices[o : o+FloatsPerSegment]
	v[0], v[1], v[2], v[3] = a.X, a.Y, a.Z, active
	v[4], v[5], v[6], v[7] = c.X, c.Y, c.Z, active
	b.SegmentCount++
	return true
}
