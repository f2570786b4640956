package bind_group_provider

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayoutDescriptor(t *testing.T) {
	p := NewBindGroupProvider("Globals",
		WithUniform(2, 32, wgpu.ShaderStageFragment),
		WithUniform(0, 96, wgpu.ShaderStageVertex|wgpu.ShaderStageFragment),
	)

	assert.Equal(t, "Globals", p.Label())
	assert.Equal(t, []int{0, 2}, p.Bindings())
	assert.Equal(t, uint64(96), p.BufferSize(0))
	assert.Zero(t, p.BufferSize(1))

	desc := p.LayoutDescriptor()
	assert.Equal(t, "Globals Bind Group Layout", desc.Label)
	require.Len(t, desc.Entries, 2)
	assert.Equal(t, uint32(0), desc.Entries[0].Binding)
	assert.Equal(t, wgpu.BufferBindingTypeUniform, desc.Entries[0].Buffer.Type)
	assert.Equal(t, wgpu.ShaderStageVertex|wgpu.ShaderStageFragment, desc.Entries[0].Visibility)
	assert.Equal(t, uint32(2), desc.Entries[1].Binding)
}

func TestBindGroupEntriesRequireBuffers(t *testing.T) {
	p := NewBindGroupProvider("Globals", WithUniform(0, 96, wgpu.ShaderStageVertex))

	_, err := p.BindGroupEntries()
	assert.ErrorContains(t, err, "binding 0")
	assert.Nil(t, p.Buffer(0))
}

func TestBindGroupEntries(t *testing.T) {
	buf := &wgpu.Buffer{}
	p := NewBindGroupProvider("Globals", WithUniform(0, 96, wgpu.ShaderStageVertex), WithBuffer(0, buf))

	entries, err := p.BindGroupEntries()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Same(t, buf, entries[0].Buffer)
	assert.Equal(t, uint64(wgpu.WholeSize), entries[0].Size)
}

func TestReleaseEmpty(t *testing.T) {
	p := NewBindGroupProvider("Globals", WithUniform(0, 96, wgpu.ShaderStageVertex))
	assert.NotPanics(t, p.Release)
	assert.Nil(t, p.BindGroup())
	assert.Nil(t, p.BindGroupLayout())
}
