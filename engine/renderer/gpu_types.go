package renderer

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/cogentcore/webgpu/wgpu"
)

// GPUSegmentShaderSource is the WGSL line shader that consumes the segment vertex buffer.
// Its SegmentVertex and SegmentGlobals structs match GPUSegmentVertex and GPUSegmentGlobals exactly.
//
//go:embed assets/segment_vertex.wgsl
var GPUSegmentShaderSource string

// GPUSegmentVertex is one endpoint of a segment as laid out in the render buffer.
// Size: 16 bytes (one vec4<f32>).
type GPUSegmentVertex struct {
	Position [3]float32 // offset 0: x, y, z
	Active   float32    // offset 12: 1 if the owning feature is the active feature, else 0
}

// Size returns the size of the GPUSegmentVertex struct in bytes.
//
// Returns:
//   - int: The size of the struct in bytes.
func (g *GPUSegmentVertex) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUSegmentVertex struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 16-byte buffer ready for GPU upload.
func (g *GPUSegmentVertex) Marshal() []byte {
	buf := make([]byte, 16)
	for i := range 3 {
		binary.LittleEndian.PutUint32(buf[i*4:(i+1)*4], math.Float32bits(g.Position[i]))
	}
	binary.LittleEndian.PutUint32(buf[12:16], math.Float32bits(g.Active))
	return buf
}

// Default segment colors, RGBA.
var (
	DefaultSegmentColor       = [4]float32{0.55, 0.6, 0.65, 1}
	DefaultActiveSegmentColor = [4]float32{1, 0.62, 0.1, 1}
)

// NewSegmentGlobals builds the uniform block for a view-projection matrix with the default colors.
//
// Parameters:
//   - viewProj: column-major view-projection matrix
//
// Returns:
//   - GPUSegmentGlobals: the uniform block
func NewSegmentGlobals(viewProj [16]float32) GPUSegmentGlobals {
	return GPUSegmentGlobals{
		ViewProj:    viewProj,
		Color:       DefaultSegmentColor,
		ActiveColor: DefaultActiveSegmentColor,
	}
}

// GPUSegmentGlobals is the uniform block read by the segment shader.
// Size: 96 bytes (std140 aligned).
type GPUSegmentGlobals struct {
	ViewProj    [16]float32 // offset 0: column-major view-projection matrix
	Color       [4]float32  // offset 64: RGBA for inactive features
	ActiveColor [4]float32  // offset 80: RGBA for the active feature
}

// Size returns the size of the GPUSegmentGlobals struct in bytes.
//
// Returns:
//   - int: The size of the struct in bytes.
func (g *GPUSegmentGlobals) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUSegmentGlobals struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 96-byte buffer ready for GPU upload.
func (g *GPUSegmentGlobals) Marshal() []byte {
	buf := make([]byte, 96)
	for i := range 16 {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(g.ViewProj[i]))
	}
	for i := range 4 {
		binary.LittleEndian.PutUint32(buf[64+i*4:], math.Float32bits(g.Color[i]))
		binary.LittleEndian.PutUint32(buf[80+i*4:], math.Float32bits(g.ActiveColor[i]))
	}
	return buf
}

// SegmentVertexLayout describes the render buffer to a WebGPU pipeline: one vec4<f32> per vertex at location 0,
// with the active flag in the w component.
//
// Returns:
//   - wgpu.VertexBufferLayout: the layout for the segment vertex buffer
func SegmentVertexLayout() wgpu.VertexBufferLayout {
	return wgpu.VertexBufferLayout{
		ArrayStride: FloatsPerVertex * 4,
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes: []wgpu.VertexAttribute{
			{
				Format:         wgpu.VertexFormatFloat32x4,
				Offset:         0,
				ShaderLocation: 0,
			},
		},
	}
}
