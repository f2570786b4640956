package renderer

import "github.com/cogentcore/webgpu/wgpu"

// RendererBackendType identifies the GPU backend implementation behind a RendererBackend.
type RendererBackendType int

const (
	// BackendTypeWGPU selects the WebGPU backend.
	BackendTypeWGPU RendererBackendType = iota
)

// RendererBackend receives segment buffers and keeps them resident on a device.
type RendererBackend interface {
	// Type returns the backend implementation type.
	Type() RendererBackendType

	// WriteSegments copies the used part of buf into the device vertex buffer.
	//
	// Parameters:
	//   - buf: the segment buffer to upload
	//
	// Returns:
	//   - error: an error if the write fails
	WriteSegments(buf *SegmentBuffer) error

	// WriteGlobals updates the uniform block read by the segment shader.
	//
	// Parameters:
	//   - globals: the camera matrix and colors
	WriteGlobals(globals GPUSegmentGlobals)

	// VertexCount returns the number of vertices written by the last WriteSegments, for draw calls.
	VertexCount() uint32

	// Draw records the line draw for the last written segments into an open render pass. It does nothing
	// before the first non-empty WriteSegments.
	//
	// Parameters:
	//   - pass: the render pass to record into
	Draw(pass *wgpu.RenderPassEncoder)

	// Release frees every device resource owned by the backend.
	Release()
}
