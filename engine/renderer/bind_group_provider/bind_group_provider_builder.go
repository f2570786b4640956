package bind_group_provider

import "github.com/cogentcore/webgpu/wgpu"

// BindGroupProviderOption is a functional option used to configure a BindGroupProvider during construction.
type BindGroupProviderOption func(*bindGroupProvider)

// WithUniform declares a uniform buffer binding.
//
// Parameters:
//   - binding: the binding index within the group
//   - size: the buffer size in bytes, also used as the minimum binding size
//   - visibility: the shader stages that read the buffer
//
// Returns:
//   - BindGroupProviderOption: a function that declares the binding on this provider
func WithUniform(binding int, size uint64, visibility wgpu.ShaderStage) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		entry := wgpu.BindGroupLayoutEntry{
			Binding:    uint32(binding),
			Visibility: visibility,
		}
		entry.Buffer.Type = wgpu.BufferBindingTypeUniform
		entry.Buffer.MinBindingSize = size
		p.entries[binding] = entry
	}
}

// WithBuffer sets an already created buffer for a binding.
//
// Parameters:
//   - binding: the binding index for this buffer
//   - buf: the buffer to associate with this binding
//
// Returns:
//   - BindGroupProviderOption: a function that sets the buffer for the specified binding
func WithBuffer(binding int, buf *wgpu.Buffer) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.buffers[binding] = buf
	}
}
