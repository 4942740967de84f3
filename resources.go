package gfxcore

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"

	"github.com/gogpu/gfxcore/core"
	"github.com/gogpu/gfxcore/hal"
)

// BufferDesc describes a buffer. Creation does not allocate memory; bind
// a block with BindBufferToMemory before first use.
type BufferDesc struct {
	Label string
	Size  uint64
	Usage gputypes.BufferUsage
}

// CreateBuffer creates the driver buffer and registers it in the buffer
// pool.
func (d *Device) CreateBuffer(desc *BufferDesc) (BufferHandle, error) {
	raw, err := d.hal.CreateBuffer(desc.Size, desc.Usage, desc.Label)
	if err != nil {
		return 0, err
	}
	return d.buffers.New(bufferHot{raw: raw}, bufferCold{desc: *desc}), nil
}

// BufferInfo is the resolved cold state of a live buffer.
type BufferInfo struct {
	Desc BufferDesc
	// HostPtr is non-nil once a host-visible block is bound.
	HostPtr []byte
	Memory  *core.Allocation
}

// GetBuffer resolves a buffer handle; a stale handle returns false.
func (d *Device) GetBuffer(h BufferHandle) (BufferInfo, bool) {
	cold, ok := d.buffers.Resolve(h)
	if !ok {
		return BufferInfo{}, false
	}
	return BufferInfo{Desc: cold.desc, HostPtr: cold.hostPtr, Memory: cold.binding}, true
}

// BufferMemoryRequirements queries the driver's size/alignment/type-filter
// for a buffer, the inputs a caller-side allocator needs.
func (d *Device) BufferMemoryRequirements(h BufferHandle) (size, alignment uint64, typeFilter uint32, err error) {
	hot, ok := d.buffers.ResolveHot(h)
	if !ok {
		return 0, 0, 0, ErrStaleHandle
	}
	size, alignment, typeFilter = d.hal.BufferMemoryRequirements(hot.raw)
	return size, alignment, typeFilter, nil
}

// QueueBufferForDeletion bumps the handle's generation immediately and
// queues the driver buffer and its memory block on the current frame's
// garbage list.
func (d *Device) QueueBufferForDeletion(h BufferHandle) {
	hot, cold, ok := d.buffers.QueueFree(h)
	if !ok {
		return
	}
	g := d.garbage()
	raw := hot.raw
	g.QueueDestroy("buffer:"+cold.desc.Label, func() { d.hal.DestroyBuffer(raw) })
	if cold.binding != nil {
		g.QueueAllocation(*cold.binding)
	}
}

// TextureDesc describes a texture. Creation does not allocate memory.
type TextureDesc struct {
	Label     string
	Width     uint32
	Height    uint32
	MipLevels uint32
	Layers    uint32
	Kind      hal.TextureKind
	Format    gputypes.TextureFormat
	Usage     gputypes.TextureUsage
	// InitialUsage is the layout the first barrier transitions from.
	InitialUsage core.TextureUsage
}

// CreateTexture creates the driver image plus its primary view and
// registers both under one handle.
func (d *Device) CreateTexture(desc *TextureDesc) (TextureHandle, error) {
	image, err := d.hal.CreateTexture(&hal.TextureDesc{
		Label:     desc.Label,
		Width:     desc.Width,
		Height:    desc.Height,
		MipLevels: desc.MipLevels,
		Layers:    desc.Layers,
		Kind:      desc.Kind,
		Format:    desc.Format,
		Usage:     desc.Usage,
	})
	if err != nil {
		return 0, err
	}
	// The primary view spans all mips and layers; it can only be created
	// once memory is bound on some drivers, but every driver this layer
	// targets allows view creation on unbound images.
	view, err := d.hal.CreateTextureView(image, &hal.TextureViewDesc{
		Format:     desc.Format,
		MipCount:   maxU32(desc.MipLevels, 1),
		LayerCount: maxU32(desc.Layers, 1),
	})
	if err != nil {
		d.hal.DestroyTexture(image)
		return 0, err
	}
	return d.textures.New(
		textureHot{image: image, view: view},
		textureCold{desc: *desc, original: true},
	), nil
}

// TextureViewDesc selects a sub-range of an existing texture.
type TextureViewDesc struct {
	Label      string
	Format     gputypes.TextureFormat
	BaseMip    uint32
	MipCount   uint32
	BaseLayer  uint32
	LayerCount uint32
}

// CreateTextureView allocates a new texture handle aliasing an existing
// texture's driver image. Destroying the view never destroys the image.
func (d *Device) CreateTextureView(texture TextureHandle, desc *TextureViewDesc) (TextureHandle, error) {
	hot, ok := d.textures.ResolveHot(texture)
	if !ok {
		return 0, ErrStaleHandle
	}
	cold, _ := d.textures.Resolve(texture)

	format := desc.Format
	if format == gputypes.TextureFormatUndefined {
		format = cold.desc.Format
	}
	view, err := d.hal.CreateTextureView(hot.image, &hal.TextureViewDesc{
		Format:     format,
		BaseMip:    desc.BaseMip,
		MipCount:   maxU32(desc.MipCount, 1),
		BaseLayer:  desc.BaseLayer,
		LayerCount: maxU32(desc.LayerCount, 1),
	})
	if err != nil {
		return 0, err
	}

	viewDesc := cold.desc
	viewDesc.Label = desc.Label
	viewDesc.Format = format
	return d.textures.New(
		textureHot{image: hot.image, view: view},
		textureCold{desc: viewDesc, original: false},
	), nil
}

// TextureInfo is the resolved cold state of a live texture.
type TextureInfo struct {
	Desc   TextureDesc
	Memory *core.Allocation
	// OriginalView is false for views aliasing another texture's image.
	OriginalView bool
}

// GetTexture resolves a texture handle; a stale handle returns false.
func (d *Device) GetTexture(h TextureHandle) (TextureInfo, bool) {
	cold, ok := d.textures.Resolve(h)
	if !ok {
		return TextureInfo{}, false
	}
	return TextureInfo{Desc: cold.desc, Memory: cold.binding, OriginalView: cold.original}, true
}

// TextureMemoryRequirements queries the driver's requirements for a
// texture.
func (d *Device) TextureMemoryRequirements(h TextureHandle) (size, alignment uint64, typeFilter uint32, err error) {
	hot, ok := d.textures.ResolveHot(h)
	if !ok {
		return 0, 0, 0, ErrStaleHandle
	}
	size, alignment, typeFilter = d.hal.TextureMemoryRequirements(hot.image)
	return size, alignment, typeFilter, nil
}

// QueueTextureForDeletion queues the view (and, for original textures,
// the image and its memory) on the current frame's garbage list.
func (d *Device) QueueTextureForDeletion(h TextureHandle) {
	hot, cold, ok := d.textures.QueueFree(h)
	if !ok {
		return
	}
	g := d.garbage()
	view, image, original := hot.view, hot.image, cold.original
	g.QueueDestroy("texture:"+cold.desc.Label, func() {
		d.hal.DestroyTextureView(view)
		if original {
			d.hal.DestroyTexture(image)
		}
	})
	if cold.binding != nil {
		g.QueueAllocation(*cold.binding)
	}
}

// CreateSampler creates an immutable sampler.
func (d *Device) CreateSampler(desc *hal.SamplerDesc) (SamplerHandle, error) {
	raw, err := d.hal.CreateSampler(desc)
	if err != nil {
		return 0, err
	}
	return d.samplers.New(samplerHot{raw: raw}, samplerCold{desc: *desc}), nil
}

// GetSampler resolves a sampler handle.
func (d *Device) GetSampler(h SamplerHandle) (hal.SamplerDesc, bool) {
	cold, ok := d.samplers.Resolve(h)
	if !ok {
		return hal.SamplerDesc{}, false
	}
	return cold.desc, true
}

// QueueSamplerForDeletion queues the sampler on the garbage list.
func (d *Device) QueueSamplerForDeletion(h SamplerHandle) {
	hot, _, ok := d.samplers.QueueFree(h)
	if !ok {
		return
	}
	raw := hot.raw
	d.garbage().QueueDestroy("sampler", func() { d.hal.DestroySampler(raw) })
}

// CreateBindGroupLayout interns a bind-group layout. Layouts are
// referenced by shaders and bind groups and usually live for the device
// lifetime.
func (d *Device) CreateBindGroupLayout(bindings []hal.LayoutBinding) (BindGroupLayoutHandle, error) {
	raw, err := d.hal.CreateBindGroupLayout(bindings)
	if err != nil {
		return 0, err
	}
	return d.bindGroupLayouts.New(bglHot{raw: raw}, bglCold{bindings: bindings}), nil
}

// QueueBindGroupLayoutForDeletion invalidates the handle and returns its
// slot to the free-index stack immediately, and queues the driver layout
// on the current frame's garbage list.
func (d *Device) QueueBindGroupLayoutForDeletion(h BindGroupLayoutHandle) {
	hot, _, ok := d.bindGroupLayouts.QueueFree(h)
	if !ok {
		return
	}
	raw := hot.raw
	d.garbage().QueueDestroy("bind-group-layout", func() { d.hal.DestroyBindGroupLayout(raw) })
}

// BindGroupDesc describes a bind group: its layout, its lifetime, and the
// resources written into each slot.
type BindGroupDesc struct {
	Label    string
	Layout   BindGroupLayoutHandle
	Lifetime core.BindGroupLifetime
	Buffers  []BindGroupBufferEntry
	Textures []BindGroupTextureEntry
	Samplers []BindGroupSamplerEntry
}

type BindGroupBufferEntry struct {
	Slot   uint32
	Type   hal.BindingType
	Buffer BufferHandle
	Offset uint64
	Range  uint64
}

type BindGroupTextureEntry struct {
	Slot    uint32
	Type    hal.BindingType
	Texture TextureHandle
	Usage   core.TextureUsage
}

type BindGroupSamplerEntry struct {
	Slot    uint32
	Sampler SamplerHandle
}

// CreateBindGroup allocates a descriptor set from the persistent pool or,
// for Transient lifetime, from the current frame's pool, in which case
// the handle is only valid until that frame context's next begin_frame.
func (d *Device) CreateBindGroup(desc *BindGroupDesc) (BindGroupHandle, error) {
	layoutHot, ok := d.bindGroupLayouts.ResolveHot(desc.Layout)
	if !ok {
		return 0, ErrStaleHandle
	}

	pool := d.persistentPool
	if desc.Lifetime == core.BindGroupTransient {
		pool = d.currentFrameDriver().descriptorPool
	}
	set, err := d.hal.AllocateDescriptorSet(pool, layoutHot.raw)
	if err != nil {
		return 0, err
	}

	writes := make([]hal.DescriptorWrite, 0, len(desc.Buffers)+len(desc.Textures)+len(desc.Samplers))
	for _, e := range desc.Buffers {
		hot, ok := d.buffers.ResolveHot(e.Buffer)
		if !ok {
			return 0, fmt.Errorf("gfxcore: bind group %q slot %d: %w", desc.Label, e.Slot, ErrStaleHandle)
		}
		writes = append(writes, hal.DescriptorWrite{
			Slot: e.Slot, Type: e.Type, Buffer: hot.raw, Offset: e.Offset, Range: e.Range,
		})
	}
	for _, e := range desc.Textures {
		hot, ok := d.textures.ResolveHot(e.Texture)
		if !ok {
			return 0, fmt.Errorf("gfxcore: bind group %q slot %d: %w", desc.Label, e.Slot, ErrStaleHandle)
		}
		writes = append(writes, hal.DescriptorWrite{
			Slot: e.Slot, Type: e.Type, View: hot.view, Layout: e.Usage,
		})
	}
	for _, e := range desc.Samplers {
		hot, ok := d.samplers.ResolveHot(e.Sampler)
		if !ok {
			return 0, fmt.Errorf("gfxcore: bind group %q slot %d: %w", desc.Label, e.Slot, ErrStaleHandle)
		}
		writes = append(writes, hal.DescriptorWrite{
			Slot: e.Slot, Type: hal.BindingSampler, Sampler: hot.raw,
		})
	}
	d.hal.UpdateDescriptorSet(set, writes)

	cold := bindGroupCold{layout: desc.Layout, lifetime: desc.Lifetime}
	h := d.bindGroups.New(bindGroupHot{set: set}, cold)
	if desc.Lifetime == core.BindGroupTransient {
		resolved, _ := d.bindGroups.Resolve(h)
		resolved.transient = core.NewTransientBindGroup(h, d.frames.Current())
	}
	return h, nil
}

// GetTemporaryBindGroup creates a Transient-lifetime bind group from the
// current frame's descriptor pool; it is reclaimed wholesale at that
// frame's next begin_frame.
func (d *Device) GetTemporaryBindGroup(desc *BindGroupDesc) (BindGroupHandle, error) {
	copied := *desc
	copied.Lifetime = core.BindGroupTransient
	return d.CreateBindGroup(&copied)
}

// QueueBindGroupForDeletion frees a Persistent bind group. Transient
// groups need no explicit free; their pool is reset at frame begin and
// their handle goes stale with the frame generation.
func (d *Device) QueueBindGroupForDeletion(h BindGroupHandle) {
	_, _, _ = d.bindGroups.QueueFree(h)
}

// validateBindGroup resolves a bind-group handle and rejects transient
// groups whose frame generation has moved on.
func (d *Device) validateBindGroup(h BindGroupHandle) (uint64, error) {
	hot, ok := d.bindGroups.ResolveHot(h)
	if !ok {
		return 0, ErrStaleHandle
	}
	cold, _ := d.bindGroups.Resolve(h)
	if cold.lifetime == core.BindGroupTransient {
		if err := cold.transient.Validate(d.frames.Current()); err != nil {
			return 0, err
		}
	}
	return hot.set, nil
}

// compileShaderSource accepts pre-compiled SPIR-V or WGSL source; WGSL is
// translated with naga.
func compileShaderSource(spirv []byte, wgsl string) ([]byte, error) {
	if len(spirv) != 0 {
		return spirv, nil
	}
	if wgsl == "" {
		return nil, fmt.Errorf("gfxcore: shader has neither SPIR-V nor WGSL source")
	}
	compiled, err := naga.Compile(wgsl)
	if err != nil {
		return nil, fmt.Errorf("gfxcore: WGSL translation: %w", err)
	}
	return compiled, nil
}

// ShaderDesc describes a graphics shader: its modules, fixed-function
// state, bind-group layouts, and the render-pass layout + subpass the
// pipeline is compiled against.
type ShaderDesc struct {
	Label string

	VertexSPIRV   []byte
	VertexWGSL    string
	VertexEntry   string
	FragmentSPIRV []byte
	FragmentWGSL  string
	FragmentEntry string

	Topology     gputypes.PrimitiveTopology
	CullMode     gputypes.CullMode
	FrontFace    gputypes.FrontFace
	DepthTest    bool
	DepthWrite   bool
	DepthCompare gputypes.CompareFunction
	Stencil      hal.StencilDesc
	Blend        []hal.BlendTargetDesc
	VertexLayout []hal.VertexLayoutDesc

	BindGroupLayouts []BindGroupLayoutHandle
	RenderPassLayout RenderPassLayoutHandle
	Subpass          uint32

	Constants      []core.SpecConstant
	ConstantValues [][]byte
}

// CreateShader builds the pipeline layout and graphics pipeline. On
// translation or pipeline failure it returns the null handle and
// ErrShaderCompilationFailed (wrapping the cause).
func (d *Device) CreateShader(desc *ShaderDesc) (ShaderHandle, error) {
	vertSPIRV, err := compileShaderSource(desc.VertexSPIRV, desc.VertexWGSL)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrShaderCompilationFailed, err)
	}
	fragSPIRV, err := compileShaderSource(desc.FragmentSPIRV, desc.FragmentWGSL)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrShaderCompilationFailed, err)
	}

	passLayout, ok := d.renderPassLayouts.ResolveHot(desc.RenderPassLayout)
	if !ok {
		return 0, ErrStaleHandle
	}

	layouts := make([]uint64, len(desc.BindGroupLayouts))
	for i, lh := range desc.BindGroupLayouts {
		hot, ok := d.bindGroupLayouts.ResolveHot(lh)
		if !ok {
			return 0, ErrStaleHandle
		}
		layouts[i] = hot.raw
	}
	pipelineLayout, err := d.hal.CreatePipelineLayout(layouts)
	if err != nil {
		return 0, err
	}

	vertModule, err := d.hal.CreateShaderModule(vertSPIRV, desc.Label+":vert")
	if err != nil {
		d.hal.DestroyPipelineLayout(pipelineLayout)
		return 0, fmt.Errorf("%w: %w", ErrShaderCompilationFailed, err)
	}
	fragModule, err := d.hal.CreateShaderModule(fragSPIRV, desc.Label+":frag")
	if err != nil {
		d.hal.DestroyShaderModule(vertModule)
		d.hal.DestroyPipelineLayout(pipelineLayout)
		return 0, fmt.Errorf("%w: %w", ErrShaderCompilationFailed, err)
	}

	specEntries, specData, err := packConstants(desc.Constants, desc.ConstantValues)
	if err != nil {
		d.hal.DestroyShaderModule(vertModule)
		d.hal.DestroyShaderModule(fragModule)
		d.hal.DestroyPipelineLayout(pipelineLayout)
		return 0, err
	}

	pipeline, err := d.hal.CreateGraphicsPipeline(&hal.GraphicsPipelineDesc{
		Label:          desc.Label,
		VertexModule:   vertModule,
		VertexEntry:    desc.VertexEntry,
		FragmentModule: fragModule,
		FragmentEntry:  desc.FragmentEntry,
		PipelineLayout: pipelineLayout,
		RenderPass:     passLayout.raw,
		Subpass:        desc.Subpass,
		Topology:       desc.Topology,
		CullMode:       desc.CullMode,
		FrontFace:      desc.FrontFace,
		DepthTest:      desc.DepthTest,
		DepthWrite:     desc.DepthWrite,
		DepthCompare:   desc.DepthCompare,
		Stencil:        desc.Stencil,
		Blend:          desc.Blend,
		VertexLayout:   desc.VertexLayout,
		SpecEntries:    specEntries,
		SpecData:       specData,
	})
	if err != nil {
		d.hal.DestroyShaderModule(vertModule)
		d.hal.DestroyShaderModule(fragModule)
		d.hal.DestroyPipelineLayout(pipelineLayout)
		return 0, fmt.Errorf("%w: %w", ErrShaderCompilationFailed, err)
	}

	return d.shaders.New(
		shaderHot{pipeline: pipeline, pipelineLayout: pipelineLayout},
		shaderCold{desc: *desc, modules: [2]uint64{vertModule, fragModule}},
	), nil
}

// packConstants compiles the std140-style layout and packs values into
// the driver's specialization map.
func packConstants(constants []core.SpecConstant, values [][]byte) ([]hal.SpecEntry, []byte, error) {
	if len(constants) == 0 {
		return nil, nil, nil
	}
	layout := core.CompileSpecConstantLayout(constants)
	data, err := core.PackSpecConstants(constants, layout, values)
	if err != nil {
		return nil, nil, err
	}
	entries := make([]hal.SpecEntry, len(constants))
	for i := range constants {
		end := layout.Size
		if i+1 < len(layout.Offsets) {
			end = layout.Offsets[i+1]
		}
		entries[i] = hal.SpecEntry{
			ConstantID: uint32(i),
			Offset:     layout.Offsets[i],
			Size:       end - layout.Offsets[i],
		}
	}
	return entries, data, nil
}

// GetShader resolves a shader handle.
func (d *Device) GetShader(h ShaderHandle) (ShaderDesc, bool) {
	cold, ok := d.shaders.Resolve(h)
	if !ok {
		return ShaderDesc{}, false
	}
	return cold.desc, true
}

// QueueShaderForDeletion queues the pipeline and modules on the garbage
// list.
func (d *Device) QueueShaderForDeletion(h ShaderHandle) {
	hot, cold, ok := d.shaders.QueueFree(h)
	if !ok {
		return
	}
	pipeline, layout, modules := hot.pipeline, hot.pipelineLayout, cold.modules
	d.garbage().QueueDestroy("shader:"+cold.desc.Label, func() {
		d.hal.DestroyPipeline(pipeline)
		d.hal.DestroyPipelineLayout(layout)
		for _, m := range modules {
			if m != 0 {
				d.hal.DestroyShaderModule(m)
			}
		}
	})
}

// ComputeShaderDesc describes a compute shader.
type ComputeShaderDesc struct {
	Label string

	SPIRV []byte
	WGSL  string
	Entry string

	BindGroupLayouts []BindGroupLayoutHandle

	Constants      []core.SpecConstant
	ConstantValues [][]byte
}

// CreateComputeShader builds the pipeline layout and compute pipeline.
func (d *Device) CreateComputeShader(desc *ComputeShaderDesc) (ComputeShaderHandle, error) {
	spirv, err := compileShaderSource(desc.SPIRV, desc.WGSL)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrShaderCompilationFailed, err)
	}

	layouts := make([]uint64, len(desc.BindGroupLayouts))
	for i, lh := range desc.BindGroupLayouts {
		hot, ok := d.bindGroupLayouts.ResolveHot(lh)
		if !ok {
			return 0, ErrStaleHandle
		}
		layouts[i] = hot.raw
	}
	pipelineLayout, err := d.hal.CreatePipelineLayout(layouts)
	if err != nil {
		return 0, err
	}
	module, err := d.hal.CreateShaderModule(spirv, desc.Label)
	if err != nil {
		d.hal.DestroyPipelineLayout(pipelineLayout)
		return 0, fmt.Errorf("%w: %w", ErrShaderCompilationFailed, err)
	}

	specEntries, specData, err := packConstants(desc.Constants, desc.ConstantValues)
	if err != nil {
		d.hal.DestroyShaderModule(module)
		d.hal.DestroyPipelineLayout(pipelineLayout)
		return 0, err
	}

	pipeline, err := d.hal.CreateComputePipeline(&hal.ComputePipelineDesc{
		Label:          desc.Label,
		Module:         module,
		Entry:          desc.Entry,
		PipelineLayout: pipelineLayout,
		SpecEntries:    specEntries,
		SpecData:       specData,
	})
	if err != nil {
		d.hal.DestroyShaderModule(module)
		d.hal.DestroyPipelineLayout(pipelineLayout)
		return 0, fmt.Errorf("%w: %w", ErrShaderCompilationFailed, err)
	}

	return d.computeShaders.New(
		computeShaderHot{pipeline: pipeline, pipelineLayout: pipelineLayout},
		computeShaderCold{desc: *desc, module: module},
	), nil
}

// QueueComputeShaderForDeletion queues the pipeline and module on the
// garbage list.
func (d *Device) QueueComputeShaderForDeletion(h ComputeShaderHandle) {
	hot, cold, ok := d.computeShaders.QueueFree(h)
	if !ok {
		return
	}
	pipeline, layout, module := hot.pipeline, hot.pipelineLayout, cold.module
	d.garbage().QueueDestroy("compute-shader:"+cold.desc.Label, func() {
		d.hal.DestroyPipeline(pipeline)
		d.hal.DestroyPipelineLayout(layout)
		d.hal.DestroyShaderModule(module)
	})
}

// CreateRenderPassLayout compiles a declarative layout into the driver's
// render pass.
func (d *Device) CreateRenderPassLayout(desc core.RenderPassLayoutDesc) (RenderPassLayoutHandle, error) {
	layout := core.CompileRenderPassLayout(desc)
	raw, err := d.hal.CreateRenderPass(&layout, nil)
	if err != nil {
		return 0, err
	}
	return d.renderPassLayouts.New(rplHot{raw: raw}, rplCold{layout: layout}), nil
}

// GetRenderPassLayout resolves a render-pass-layout handle.
func (d *Device) GetRenderPassLayout(h RenderPassLayoutHandle) (core.RenderPassLayout, bool) {
	cold, ok := d.renderPassLayouts.Resolve(h)
	if !ok {
		return core.RenderPassLayout{}, false
	}
	return cold.layout, true
}

// QueueRenderPassLayoutForDeletion queues the driver render pass on the
// garbage list.
func (d *Device) QueueRenderPassLayoutForDeletion(h RenderPassLayoutHandle) {
	hot, _, ok := d.renderPassLayouts.QueueFree(h)
	if !ok {
		return
	}
	raw := hot.raw
	d.garbage().QueueDestroy("render-pass-layout", func() { d.hal.DestroyRenderPass(raw) })
}

// RenderPassDesc derives a runtime render pass from a compiled layout:
// per-attachment ops and clear values, dimensions, and the attachment
// views per framebuffer slot (one slot per frame in flight, or one per
// swapchain image for presentation passes).
type RenderPassDesc struct {
	Label        string
	Layout       RenderPassLayoutHandle
	Ops          []core.AttachmentOps
	Width        uint32
	Height       uint32
	ViewsPerSlot [][]TextureHandle
	// Swapchain marks this pass as presenting: the current framebuffer is
	// selected by swapchain image index rather than frame index.
	Swapchain bool
}

// CreateRenderPass realizes the pass and builds one framebuffer per slot.
func (d *Device) CreateRenderPass(desc *RenderPassDesc) (RenderPassHandle, error) {
	layoutCold, ok := d.renderPassLayouts.Resolve(desc.Layout)
	if !ok {
		return 0, ErrStaleHandle
	}

	raw, err := d.hal.CreateRenderPass(&layoutCold.layout, desc.Ops)
	if err != nil {
		return 0, err
	}

	pass := &core.RenderPass{
		Layout: layoutCold.layout,
		Ops:    desc.Ops,
		Width:  desc.Width,
		Height: desc.Height,
	}
	if desc.Swapchain {
		pass.Swapchain = d.swapchain
	}

	clears := make([]hal.ClearValue, len(desc.Ops))
	for i, op := range desc.Ops {
		clears[i] = hal.ClearValue{
			Color:   [4]float32{float32(op.ClearValue.R), float32(op.ClearValue.G), float32(op.ClearValue.B), float32(op.ClearValue.A)},
			Depth:   float32(op.ClearValue.R),
			IsDepth: layoutCold.layout.RenderTargets[i].IsDepth(),
		}
	}

	for _, views := range desc.ViewsPerSlot {
		fb, err := d.buildFramebuffer(raw, desc.Width, desc.Height, views)
		if err != nil {
			for _, built := range pass.Framebuffers {
				d.hal.DestroyFramebuffer(built.Driver)
			}
			d.hal.DestroyRenderPass(raw)
			return 0, err
		}
		pass.Framebuffers = append(pass.Framebuffers, fb)
	}

	return d.renderPasses.New(rpHot{raw: raw}, rpCold{pass: pass, clears: clears}), nil
}

func (d *Device) buildFramebuffer(pass uint64, width, height uint32, views []TextureHandle) (*core.Framebuffer, error) {
	driverViews := make([]uint64, len(views))
	for i, vh := range views {
		hot, ok := d.textures.ResolveHot(vh)
		if !ok {
			return nil, ErrStaleHandle
		}
		driverViews[i] = hot.view
	}
	fb, err := d.hal.CreateFramebuffer(pass, driverViews, width, height)
	if err != nil {
		return nil, err
	}
	return &core.Framebuffer{Driver: fb, Views: views}, nil
}

// UpdateAttachments rebuilds a pass's framebuffers for new dimensions and
// views; the old framebuffers are destroyed only after the frame delay.
func (d *Device) UpdateAttachments(h RenderPassHandle, width, height uint32, viewsPerSlot [][]TextureHandle) error {
	hot, ok := d.renderPasses.ResolveHot(h)
	if !ok {
		return ErrStaleHandle
	}
	cold, _ := d.renderPasses.Resolve(h)

	raw := hot.raw
	return core.UpdateAttachments(cold.pass, d.garbage(), width, height, viewsPerSlot,
		func(w, hh uint32, views []TextureHandle) (*core.Framebuffer, error) {
			return d.buildFramebuffer(raw, w, hh, views)
		},
		func(fb *core.Framebuffer) { d.hal.DestroyFramebuffer(fb.Driver) },
	)
}

// QueueRenderPassForDeletion queues the driver pass and its framebuffers
// on the garbage list.
func (d *Device) QueueRenderPassForDeletion(h RenderPassHandle) {
	hot, cold, ok := d.renderPasses.QueueFree(h)
	if !ok {
		return
	}
	raw := hot.raw
	pass := cold.pass
	d.garbage().QueueDestroy("render-pass", func() {
		for _, fb := range pass.Framebuffers {
			d.hal.DestroyFramebuffer(fb.Driver)
		}
		d.hal.DestroyRenderPass(raw)
	})
}

func maxU32(a, b uint32) uint32 {
	if a > b {
		return a
	}
	return b
}
