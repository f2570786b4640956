package bind_group_provider

import (
	"fmt"
	"sort"

	"github.com/cogentcore/webgpu/wgpu"
)

// bindGroupProvider is the unexported implementation of BindGroupProvider.
type bindGroupProvider struct {
	// label is a debug label added for convenience.
	label string

	// entries describes the uniform bindings, keyed by binding index.
	entries map[int]wgpu.BindGroupLayoutEntry

	// The following fields are GPU allocated resources and must be released when no longer needed. They are populated by the backend during initialization.

	// bindGroup is the GPU bind group created for this provider, or nil if not initialized.
	bindGroup *wgpu.BindGroup
	// bindGroupLayout is the GPU bind group layout created from LayoutDescriptor, or nil if not initialized.
	bindGroupLayout *wgpu.BindGroupLayout
	// buffers holds the GPU buffers created for this provider, keyed by binding index.
	buffers map[int]*wgpu.Buffer
}

// BindGroupProvider describes one bind group of uniform buffers and owns the GPU objects created for it.
//
// Usage pattern:
//  1. Create a provider with one WithUniform option per binding
//  2. Create a buffer per binding of BufferSize bytes and store it with SetBuffer
//  3. Create the layout from LayoutDescriptor and the bind group from BindGroupEntries
//  4. Write uniform data with BufferWrite values and bind BindGroup() in the render pass
type BindGroupProvider interface {
	// Release releases every GPU resource held by this provider.
	Release()

	// Label returns the debug label for this provider.
	//
	// Returns:
	//   - string: the debug label
	Label() string

	// Bindings returns the declared binding indices in ascending order.
	Bindings() []int

	// BufferSize returns the byte size declared for a binding, or 0 if it is not declared.
	//
	// Parameters:
	//   - binding: the binding index
	//
	// Returns:
	//   - uint64: the buffer size in bytes
	BufferSize(binding int) uint64

	// LayoutDescriptor returns the bind group layout descriptor for the declared bindings.
	//
	// Returns:
	//   - wgpu.BindGroupLayoutDescriptor: entries sorted by binding
	LayoutDescriptor() wgpu.BindGroupLayoutDescriptor

	// BindGroupEntries returns one whole-buffer entry per declared binding.
	//
	// Returns:
	//   - []wgpu.BindGroupEntry: entries sorted by binding
	//   - error: an error if a declared binding has no buffer yet
	BindGroupEntries() ([]wgpu.BindGroupEntry, error)

	// BindGroup returns the created bind group for shader binding.
	// Returns nil if GPU resources have not been initialized.
	//
	// Returns:
	//   - *wgpu.BindGroup: the bind group or nil
	BindGroup() *wgpu.BindGroup

	// BindGroupLayout returns the created bind group layout, or nil.
	BindGroupLayout() *wgpu.BindGroupLayout

	// Buffer returns the buffer for a binding, or nil if it has not been created.
	//
	// Parameters:
	//   - binding: the binding index
	//
	// Returns:
	//   - *wgpu.Buffer: the buffer or nil
	Buffer(binding int) *wgpu.Buffer

	// SetBindGroup stores the created bind group.
	SetBindGroup(bg *wgpu.BindGroup)

	// SetBindGroupLayout stores the created bind group layout.
	SetBindGroupLayout(bgl *wgpu.BindGroupLayout)

	// SetBuffer stores the buffer created for a binding.
	//
	// Parameters:
	//   - binding: the binding index
	//   - buf: the buffer
	SetBuffer(binding int, buf *wgpu.Buffer)
}

// Compile-time check that bindGroupProvider implements BindGroupProvider
var _ BindGroupProvider = &bindGroupProvider{}

// NewBindGroupProvider creates a new BindGroupProvider with the provided options.
//
// Parameters:
//   - label: the debug label used for the created GPU objects
//   - options: a variadic list of options to configure the provider
//
// Returns:
//   - BindGroupProvider: a new instance of BindGroupProvider configured with the provided options
func NewBindGroupProvider(label string, options ...BindGroupProviderOption) BindGroupProvider {
	p := &bindGroupProvider{
		label:   label,
		entries: make(map[int]wgpu.BindGroupLayoutEntry),
		buffers: make(map[int]*wgpu.Buffer),
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

func (p *bindGroupProvider) Label() string {
	return p.label
}

func (p *bindGroupProvider) Bindings() []int {
	bindings := make([]int, 0, len(p.entries))
	for b := range p.entries {
		bindings = append(bindings, b)
	}
	sort.Ints(bindings)
	return bindings
}

func (p *bindGroupProvider) BufferSize(binding int) uint64 {
	return p.entries[binding].Buffer.MinBindingSize
}

func (p *bindGroupProvider) LayoutDescriptor() wgpu.BindGroupLayoutDescriptor {
	bindings := p.Bindings()
	entries := make([]wgpu.BindGroupLayoutEntry, 0, len(bindings))
	for _, b := range bindings {
		entries = append(entries, p.entries[b])
	}
	return wgpu.BindGroupLayoutDescriptor{
		Label:   p.label + " Bind Group Layout",
		Entries: entries,
	}
}

func (p *bindGroupProvider) BindGroupEntries() ([]wgpu.BindGroupEntry, error) {
	bindings := p.Bindings()
	entries := make([]wgpu.BindGroupEntry, 0, len(bindings))
	for _, b := range bindings {
		buf := p.buffers[b]
		if buf == nil {
			return nil, fmt.Errorf("%s: no buffer for binding %d", p.label, b)
		}
		entries = append(entries, wgpu.BindGroupEntry{
			Binding: uint32(b),
			Buffer:  buf,
			Offset:  0,
			Size:    wgpu.WholeSize,
		})
	}
	return entries, nil
}

func (p *bindGroupProvider) BindGroup() *wgpu.BindGroup {
	return p.bindGroup
}

func (p *bindGroupProvider) BindGroupLayout() *wgpu.BindGroupLayout {
	return p.bindGroupLayout
}

func (p *bindGroupProvider) Buffer(binding int) *wgpu.Buffer {
	return p.buffers[binding]
}

func (p *bindGroupProvider) SetBindGroup(bg *wgpu.BindGroup) {
	p.bindGroup = bg
}

func (p *bindGroupProvider) SetBindGroupLayout(bgl *wgpu.BindGroupLayout) {
	p.bindGroupLayout = bgl
}

func (p *bindGroupProvider) SetBuffer(binding int, buf *wgpu.Buffer) {
	p.buffers[binding] = buf
}

func (p *bindGroupProvider) Release() {
	if p.bindGroup != nil {
		p.bindGroup.Release()
		p.bindGroup = nil
	}
	for i, buf := range p.buffers {
		if buf != nil {
			buf.Release()
		}
		delete(p.buffers, i)
	}
	if p.bindGroupLayout != nil {
		p.bindGroupLayout.Release()
		p.bindGroupLayout = nil
	}
}
