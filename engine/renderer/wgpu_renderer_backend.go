package renderer

import (
	"fmt"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/klyja/geco/engine/renderer/bind_group_provider"
	"github.com/klyja/geco/engine/renderer/pipeline"
)

type wgpuRendererBackendImpl struct {
	mu     *sync.Mutex
	device *wgpu.Device
	queue  *wgpu.Queue

	// instance and adapter are only set when the backend created its own device.
	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	ownsDev  bool

	vertexBuffer   *wgpu.Buffer
	globals        bind_group_provider.BindGroupProvider
	shaderModule   *wgpu.ShaderModule
	pipelineLayout *wgpu.PipelineLayout
	pipeline       pipeline.Pipeline

	vertexCount uint32
}

// Ensure wgpuRendererBackendImpl implements RendererBackend interface.
var _ RendererBackend = &wgpuRendererBackendImpl{}

// NewWGPURendererBackend creates a backend on an existing device. The vertex buffer is allocated at full
// capacity once, so WriteSegments never reallocates.
//
// Parameters:
//   - device: the device to allocate on; the backend does not take ownership of it
//   - label: a label prefix for the created resources
//   - opts: options for the line pipeline, typically pipeline.WithTargetFormat with the surface format
//
// Returns:
//   - RendererBackend: the newly created backend
//   - error: an error if buffer, shader or pipeline creation fails
func NewWGPURendererBackend(device *wgpu.Device, label string, opts ...pipeline.PipelineBuilderOption) (RendererBackend, error) {
	b := &wgpuRendererBackendImpl{
		mu:       &sync.Mutex{},
		device:   device,
		queue:    device.GetQueue(),
		pipeline: pipeline.NewPipeline(label, opts...),
	}
	if err := b.init(label); err != nil {
		b.Release()
		return nil, err
	}
	return b, nil
}

// NewHeadlessWGPURendererBackend requests an adapter and device with no surface and creates a backend on it.
// Used by batch tools that only need the vertex data resident on a GPU.
//
// Parameters:
//   - forceFallbackAdapter: true to request the software adapter
//
// Returns:
//   - RendererBackend: the newly created backend, owning its device
//   - error: an error if no adapter or device is available
func NewHeadlessWGPURendererBackend(forceFallbackAdapter bool) (RendererBackend, error) {
	instance := wgpu.CreateInstance(nil)
	adapter, err := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: forceFallbackAdapter,
	})
	if err != nil {
		instance.Release()
		return nil, fmt.Errorf("request adapter: %w", err)
	}
	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Segment Device",
	})
	if err != nil {
		adapter.Release()
		instance.Release()
		return nil, fmt.Errorf("request device: %w", err)
	}

	b := &wgpuRendererBackendImpl{
		mu:       &sync.Mutex{},
		device:   device,
		queue:    device.GetQueue(),
		instance: instance,
		adapter:  adapter,
		ownsDev:  true,
		pipeline: pipeline.NewPipeline("Segments"),
	}
	if err := b.init("Segments"); err != nil {
		b.Release()
		return nil, err
	}
	return b, nil
}

func (b *wgpuRendererBackendImpl) init(label string) error {
	var err error
	b.vertexBuffer, err = b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            label + " Vertex Buffer",
		Size:             BufferBytes,
		Usage:            wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
		MappedAtCreation: false,
	})
	if err != nil {
		return fmt.Errorf("create vertex buffer: %w", err)
	}

	globals := GPUSegmentGlobals{}
	b.globals = bind_group_provider.NewBindGroupProvider(label+" Globals",
		bind_group_provider.WithUniform(0, uint64(globals.Size()), wgpu.ShaderStageVertex|wgpu.ShaderStageFragment),
	)
	if err := b.initBindGroup(b.globals); err != nil {
		return fmt.Errorf("create globals bind group: %w", err)
	}

	b.shaderModule, err = b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: label + " Shader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: GPUSegmentShaderSource,
		},
	})
	if err != nil {
		return fmt.Errorf("create shader module: %w", err)
	}

	b.pipelineLayout, err = b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            b.pipeline.PipelineKey(),
		BindGroupLayouts: []*wgpu.BindGroupLayout{b.globals.BindGroupLayout()},
	})
	if err != nil {
		return fmt.Errorf("create pipeline layout: %w", err)
	}

	rp, err := b.device.CreateRenderPipeline(b.pipeline.Descriptor(
		b.shaderModule, b.pipelineLayout, []wgpu.VertexBufferLayout{SegmentVertexLayout()},
	))
	if err != nil {
		return fmt.Errorf("create render pipeline: %w", err)
	}
	b.pipeline.SetRenderPipeline(rp)
	return nil
}

// initBindGroup creates the buffers, layout and bind group declared by provider.
func (b *wgpuRendererBackendImpl) initBindGroup(provider bind_group_provider.BindGroupProvider) error {
	for _, binding := range provider.Bindings() {
		buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: provider.Label() + " Buffer",
			Size:  provider.BufferSize(binding),
			Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			return err
		}
		provider.SetBuffer(binding, buf)
	}

	desc := provider.LayoutDescriptor()
	layout, err := b.device.CreateBindGroupLayout(&desc)
	if err != nil {
		return err
	}
	provider.SetBindGroupLayout(layout)

	entries, err := provider.BindGroupEntries()
	if err != nil {
		return err
	}
	bindGroup, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   provider.Label() + " Bind Group",
		Layout:  layout,
		Entries: entries,
	})
	if err != nil {
		return err
	}
	provider.SetBindGroup(bindGroup)
	return nil
}

func (b *wgpuRendererBackendImpl) Type() RendererBackendType {
	return BackendTypeWGPU
}

func (b *wgpuRendererBackendImpl) WriteSegments(buf *SegmentBuffer) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.vertexBuffer == nil {
		return fmt.Errorf("segment backend released")
	}
	b.vertexCount = uint32(buf.SegmentCount * VerticesPerSegment)
	if buf.SegmentCount == 0 {
		return nil
	}
	b.queue.WriteBuffer(b.vertexBuffer, 0, buf.Bytes())
	return nil
}

func (b *wgpuRendererBackendImpl) WriteGlobals(globals GPUSegmentGlobals) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.globals == nil {
		return
	}
	b.writeBuffer(bind_group_provider.BufferWrite{
		Provider: b.globals,
		Binding:  0,
		Data:     globals.Marshal(),
	})
}

func (b *wgpuRendererBackendImpl) writeBuffer(w bind_group_provider.BufferWrite) {
	buf := w.Provider.Buffer(w.Binding)
	if buf == nil {
		return
	}
	b.queue.WriteBuffer(buf, w.Offset, w.Data)
}

func (b *wgpuRendererBackendImpl) Draw(pass *wgpu.RenderPassEncoder) {
	b.mu.Lock()
	defer b.mu.Unlock()

	rp := b.pipeline.RenderPipeline()
	if rp == nil || b.vertexCount == 0 {
		return
	}
	pass.SetPipeline(rp)
	pass.SetBindGroup(0, b.globals.BindGroup(), nil)
	pass.SetVertexBuffer(0, b.vertexBuffer, 0, wgpu.WholeSize)
	pass.Draw(b.vertexCount, 1, 0, 0)
}

func (b *wgpuRendererBackendImpl) VertexCount() uint32 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.vertexCount
}

func (b *wgpuRendererBackendImpl) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.pipeline.Release()
	if b.pipelineLayout != nil {
		b.pipelineLayout.Release()
		b.pipelineLayout = nil
	}
	if b.shaderModule != nil {
		b.shaderModule.Release()
		b.shaderModule = nil
	}
	if b.globals != nil {
		b.globals.Release()
		b.globals = nil
	}
	if b.vertexBuffer != nil {
		b.vertexBuffer.Release()
		b.vertexBuffer = nil
	}
	if b.ownsDev {
		if b.device != nil {
			b.device.Release()
			b.device = nil
		}
		if b.adapter != nil {
			b.adapter.Release()
			b.adapter = nil
		}
		if b.instance != nil {
			b.instance.Release()
			b.instance = nil
		}
	}
}
