package hal

import (
	"github.com/gogpu/gputypes"

	"github.com/gogpu/gfxcore/core"
)

// TextureKind distinguishes the view topologies a texture can be created
// with.
type TextureKind int

const (
	Texture2D TextureKind = iota
	Texture2DArray
	TextureCube
)

// TextureDesc describes a texture creation. Memory is NOT allocated by
// CreateTexture; the device binds a memory block separately.
type TextureDesc struct {
	Label     string
	Width     uint32
	Height    uint32
	Depth     uint32
	MipLevels uint32
	Layers    uint32
	Samples   uint32
	Kind      TextureKind
	Format    gputypes.TextureFormat
	Usage     gputypes.TextureUsage
}

// TextureViewDesc describes a view over an existing texture's image.
type TextureViewDesc struct {
	Label      string
	Format     gputypes.TextureFormat
	Aspect     gputypes.TextureAspect
	BaseMip    uint32
	MipCount   uint32
	BaseLayer  uint32
	LayerCount uint32
}

// SamplerDesc describes an immutable sampler.
type SamplerDesc struct {
	Label         string
	MagFilter     gputypes.FilterMode
	MinFilter     gputypes.FilterMode
	MipmapFilter  gputypes.FilterMode
	AddressU      gputypes.AddressMode
	AddressV      gputypes.AddressMode
	AddressW      gputypes.AddressMode
	Compare       gputypes.CompareFunction
	LodMin        float32
	LodMax        float32
	MaxAnisotropy float32
}

// BindingType enumerates the descriptor types a bind-group layout slot can
// hold.
type BindingType int

const (
	BindingUniformBuffer BindingType = iota
	BindingUniformBufferDynamic
	BindingStorageBuffer
	BindingSampledTexture
	BindingStorageTexture
	BindingSampler
	BindingInputAttachment
)

// LayoutBinding is one slot of a bind-group layout.
type LayoutBinding struct {
	Slot          uint32
	Stages        gputypes.ShaderStages
	Count         uint32
	Type          BindingType
	VariableCount bool
}

// DescriptorWrite updates one slot of a descriptor set. Which handle
// fields are read depends on Type.
type DescriptorWrite struct {
	Slot    uint32
	Type    BindingType
	Buffer  uint64
	Offset  uint64
	Range   uint64
	View    uint64
	Layout  core.TextureUsage
	Sampler uint64
}

// VertexAttributeDesc is one attribute of a vertex buffer layout.
type VertexAttributeDesc struct {
	Location uint32
	Format   gputypes.VertexFormat
	Offset   uint32
}

// VertexLayoutDesc is one bound vertex buffer's stride and attributes.
type VertexLayoutDesc struct {
	Stride     uint32
	StepMode   gputypes.VertexStepMode
	Attributes []VertexAttributeDesc
}

// BlendTargetDesc is the per-color-target blend state.
type BlendTargetDesc struct {
	Enabled   bool
	SrcColor  gputypes.BlendFactor
	DstColor  gputypes.BlendFactor
	ColorOp   gputypes.BlendOperation
	SrcAlpha  gputypes.BlendFactor
	DstAlpha  gputypes.BlendFactor
	AlphaOp   gputypes.BlendOperation
	WriteMask gputypes.ColorWriteMask
}

// StencilDesc is the two-sided stencil state.
type StencilDesc struct {
	Enabled   bool
	Compare   gputypes.CompareFunction
	ReadMask  uint32
	WriteMask uint32
	Reference uint32
}

// SpecEntry maps one specialization constant ID to its byte range inside
// the packed constant data (see core.CompileSpecConstantLayout).
type SpecEntry struct {
	ConstantID uint32
	Offset     uint32
	Size       uint32
}

// GraphicsPipelineDesc describes a graphics pipeline. RenderPass and
// Subpass pin the pipeline to one subpass of a compiled render pass;
// viewport, scissor, and depth bias are dynamic state set at record time.
type GraphicsPipelineDesc struct {
	Label          string
	VertexModule   uint64
	VertexEntry    string
	FragmentModule uint64
	FragmentEntry  string
	PipelineLayout uint64
	RenderPass     uint64
	Subpass        uint32

	Topology     gputypes.PrimitiveTopology
	CullMode     gputypes.CullMode
	FrontFace    gputypes.FrontFace
	DepthTest    bool
	DepthWrite   bool
	DepthCompare gputypes.CompareFunction
	Stencil      StencilDesc
	Blend        []BlendTargetDesc
	VertexLayout []VertexLayoutDesc

	SpecEntries []SpecEntry
	SpecData    []byte
}

// ComputePipelineDesc describes a compute pipeline.
type ComputePipelineDesc struct {
	Label          string
	Module         uint64
	Entry          string
	PipelineLayout uint64

	SpecEntries []SpecEntry
	SpecData    []byte
}

// SemaphoreOp is one wait or signal attached to a queue submit. Binary
// semaphores ignore Value.
type SemaphoreOp struct {
	Semaphore uint64
	Value     uint64
	Timeline  bool
}

// ClearValue is one attachment's clear value; IsDepth selects which half
// is meaningful.
type ClearValue struct {
	Color   [4]float32
	Depth   float32
	Stencil uint32
	IsDepth bool
}

// BufferCopy is one buffer-to-buffer copy region.
type BufferCopy struct {
	SrcOffset uint64
	DstOffset uint64
	Size      uint64
}

// BufferTextureCopy is one buffer<->texture copy region (both directions).
type BufferTextureCopy struct {
	BufferOffset uint64
	BytesPerRow  uint32
	MipLevel     uint32
	BaseLayer    uint32
	LayerCount   uint32
	OriginX      uint32
	OriginY      uint32
	Width        uint32
	Height       uint32
	Depth        uint32
}

// TextureBlit is one scaled mip-to-mip copy within or between textures.
type TextureBlit struct {
	SrcMip    uint32
	DstMip    uint32
	SrcWidth  uint32
	SrcHeight uint32
	DstWidth  uint32
	DstHeight uint32
	Layer     uint32
}

// SwapchainDesc carries the choices the core's swapchain bootstrap already
// made (format, present mode, extent, image count) down to the driver.
type SwapchainDesc struct {
	Surface     uint64
	Format      gputypes.TextureFormat
	PresentMode core.PresentMode
	Width       uint32
	Height      uint32
	ImageCount  uint32
}

// Device is the per-logical-device driver trait. All handles are opaque
// driver objects; zero is never a valid handle. Methods are not safe for
// concurrent use: the device above is single-threaded, and this trait
// inherits that model.
type Device interface {
	// --- sync ---
	CreateFence(signaled bool) (uint64, error)
	DestroyFence(fence uint64)
	WaitFence(fence uint64) error
	ResetFence(fence uint64) error
	CreateBinarySemaphore() (uint64, error)
	CreateTimelineSemaphore(initialValue uint64) (uint64, error)
	DestroySemaphore(semaphore uint64)
	SignalSemaphore(semaphore, value uint64) error
	WaitSemaphore(semaphore, value uint64) error
	SemaphoreValue(semaphore uint64) (uint64, error)

	// --- memory (the built-in dynamic-staging allocator forwards here) ---
	AllocateDriverMemory(typeFilter uint32, size, alignment uint64, mode core.MemoryMode, tag string) (handle uint64, hostPtr []byte, memoryType uint32, err error)
	FreeDriverMemory(handle uint64)

	// --- resources (creation does not allocate memory) ---
	CreateBuffer(size uint64, usage gputypes.BufferUsage, label string) (uint64, error)
	DestroyBuffer(buffer uint64)
	BufferMemoryRequirements(buffer uint64) (size, alignment uint64, typeFilter uint32)
	BindBufferMemory(buffer, memory uint64, offset uint64) error
	CreateTexture(desc *TextureDesc) (uint64, error)
	DestroyTexture(texture uint64)
	TextureMemoryRequirements(texture uint64) (size, alignment uint64, typeFilter uint32)
	BindTextureMemory(texture, memory uint64, offset uint64) error
	CreateTextureView(texture uint64, desc *TextureViewDesc) (uint64, error)
	DestroyTextureView(view uint64)
	CreateSampler(desc *SamplerDesc) (uint64, error)
	DestroySampler(sampler uint64)
	CreateShaderModule(spirv []byte, label string) (uint64, error)
	DestroyShaderModule(module uint64)

	// --- render passes / framebuffers ---
	// CreateRenderPass realizes a compiled layout, with ops overriding the
	// layout's per-attachment init/final state when non-nil.
	CreateRenderPass(layout *core.RenderPassLayout, ops []core.AttachmentOps) (uint64, error)
	DestroyRenderPass(pass uint64)
	CreateFramebuffer(pass uint64, views []uint64, width, height uint32) (uint64, error)
	DestroyFramebuffer(framebuffer uint64)

	// --- descriptors / pipelines ---
	CreateBindGroupLayout(bindings []LayoutBinding) (uint64, error)
	DestroyBindGroupLayout(layout uint64)
	CreatePipelineLayout(bindGroupLayouts []uint64) (uint64, error)
	DestroyPipelineLayout(layout uint64)
	CreateDescriptorPool(maxSets uint32, transient bool) (uint64, error)
	ResetDescriptorPool(pool uint64) error
	DestroyDescriptorPool(pool uint64)
	AllocateDescriptorSet(pool, layout uint64) (uint64, error)
	UpdateDescriptorSet(set uint64, writes []DescriptorWrite)
	CreateGraphicsPipeline(desc *GraphicsPipelineDesc) (uint64, error)
	CreateComputePipeline(desc *ComputePipelineDesc) (uint64, error)
	DestroyPipeline(pipeline uint64)

	// --- command pools / buffers ---
	CreateCommandPool() (uint64, error)
	ResetCommandPool(pool uint64) error
	DestroyCommandPool(pool uint64)
	AllocateCommandBuffer(pool uint64) (uint64, error)
	BeginCommandBuffer(cb uint64, oneTimeSubmit bool) error
	EndCommandBuffer(cb uint64) error
	ResetCommandBuffer(cb uint64) error

	// Submit submits cbs in order; fence (may be 0) signals when the batch
	// completes.
	Submit(cbs []uint64, waits, signals []SemaphoreOp, fence uint64) error
	WaitIdle() error

	// --- recording ---
	CmdBeginRenderPass(cb, pass, framebuffer uint64, width, height uint32, clears []ClearValue)
	CmdNextSubpass(cb uint64)
	CmdEndRenderPass(cb uint64)
	CmdSetViewport(cb uint64, x, y, width, height, minDepth, maxDepth float32)
	CmdSetScissor(cb uint64, x, y int32, width, height uint32)
	CmdSetDepthBias(cb uint64, constantFactor, clamp, slopeFactor float32)
	CmdBindPipeline(cb, pipeline uint64, compute bool)
	CmdBindVertexBuffer(cb uint64, slot uint32, buffer, offset uint64)
	CmdBindIndexBuffer(cb, buffer, offset uint64, format gputypes.IndexFormat)
	CmdBindDescriptorSet(cb, pipelineLayout uint64, slot uint32, set uint64, dynamicOffsets []uint32, compute bool)
	CmdDraw(cb uint64, vertexCount, instanceCount, firstVertex, firstInstance uint32)
	CmdDrawIndexed(cb uint64, indexCount, instanceCount, firstIndex uint32, vertexOffset int32, firstInstance uint32)
	CmdDispatch(cb uint64, x, y, z uint32)
	CmdCopyBuffer(cb, src, dst uint64, regions []BufferCopy)
	CmdCopyBufferToTexture(cb, src, dst uint64, regions []BufferTextureCopy)
	CmdCopyTextureToBuffer(cb, src, dst uint64, regions []BufferTextureCopy)
	CmdBlitTexture(cb, src, dst uint64, blit *TextureBlit)
	CmdPipelineBarrier(cb uint64, src, dst core.PipelineStage, srcAccess, dstAccess core.AccessMask)

	// --- swapchain ---
	SurfaceCaps(surface uint64) (core.SurfaceCaps, error)
	// CreateSwapchain builds the swapchain plus one view per image;
	// oldSwapchain (may be 0) is handed to the driver for seamless
	// recreation and remains the caller's to destroy.
	CreateSwapchain(desc *SwapchainDesc, oldSwapchain uint64) (swapchain uint64, imageViews []uint64, err error)
	DestroySwapchain(swapchain uint64)
	// AcquireImage blocks for the next presentable image, signaling
	// imageAvailable when it is ready. outdated reports that the caller
	// must recreate the swapchain and skip the frame.
	AcquireImage(swapchain, imageAvailable uint64) (imageIndex uint32, outdated bool, err error)
	// Present queues the image for presentation after renderFinished.
	Present(swapchain uint64, imageIndex uint32, renderFinished uint64) (outdated bool, err error)

	Destroy()
}
