package vk

// C ABI struct mirrors for the entry points this backend calls, laid out
// for LP64 targets (every handle and pointer is 8 bytes). Handles are
// plain uint64: dispatchable handles hold the driver pointer value,
// non-dispatchable handles are 64-bit by definition.

// StructureType is VkStructureType; only the values this backend emits.
type StructureType uint32

const (
	StructureTypeApplicationInfo                      StructureType = 0
	StructureTypeInstanceCreateInfo                   StructureType = 1
	StructureTypeDeviceQueueCreateInfo                StructureType = 2
	StructureTypeDeviceCreateInfo                     StructureType = 3
	StructureTypeSubmitInfo                           StructureType = 4
	StructureTypeMemoryAllocateInfo                   StructureType = 5
	StructureTypeFenceCreateInfo                      StructureType = 8
	StructureTypeSemaphoreCreateInfo                  StructureType = 9
	StructureTypeBufferCreateInfo                     StructureType = 12
	StructureTypeImageCreateInfo                      StructureType = 14
	StructureTypeImageViewCreateInfo                  StructureType = 15
	StructureTypeShaderModuleCreateInfo               StructureType = 16
	StructureTypePipelineShaderStageCreateInfo        StructureType = 18
	StructureTypePipelineVertexInputStateCreateInfo   StructureType = 19
	StructureTypePipelineInputAssemblyStateCreateInfo StructureType = 20
	StructureTypePipelineViewportStateCreateInfo      StructureType = 22
	StructureTypePipelineRasterizationStateCreateInfo StructureType = 23
	StructureTypePipelineMultisampleStateCreateInfo   StructureType = 24
	StructureTypePipelineDepthStencilStateCreateInfo  StructureType = 25
	StructureTypePipelineColorBlendStateCreateInfo    StructureType = 26
	StructureTypePipelineDynamicStateCreateInfo       StructureType = 27
	StructureTypeGraphicsPipelineCreateInfo           StructureType = 28
	StructureTypeComputePipelineCreateInfo            StructureType = 29
	StructureTypePipelineLayoutCreateInfo             StructureType = 30
	StructureTypeSamplerCreateInfo                    StructureType = 31
	StructureTypeDescriptorSetLayoutCreateInfo        StructureType = 32
	StructureTypeDescriptorPoolCreateInfo             StructureType = 33
	StructureTypeDescriptorSetAllocateInfo            StructureType = 34
	StructureTypeWriteDescriptorSet                   StructureType = 35
	StructureTypeFramebufferCreateInfo                StructureType = 37
	StructureTypeRenderPassCreateInfo                 StructureType = 38
	StructureTypeCommandPoolCreateInfo                StructureType = 39
	StructureTypeCommandBufferAllocateInfo            StructureType = 40
	StructureTypeCommandBufferBeginInfo               StructureType = 42
	StructureTypeRenderPassBeginInfo                  StructureType = 43
	StructureTypeBufferMemoryBarrier                  StructureType = 44
	StructureTypeImageMemoryBarrier                   StructureType = 45
	StructureTypeMemoryBarrier                        StructureType = 46
	StructureTypeSwapchainCreateInfoKHR               StructureType = 1000001000
	StructureTypePresentInfoKHR                       StructureType = 1000001001
	StructureTypeXlibSurfaceCreateInfoKHR             StructureType = 1000004000
	StructureTypeWin32SurfaceCreateInfoKHR            StructureType = 1000009000
	StructureTypePhysicalDeviceTimelineFeatures       StructureType = 1000207000
	StructureTypeSemaphoreTypeCreateInfo              StructureType = 1000207002
	StructureTypeTimelineSemaphoreSubmitInfo          StructureType = 1000207003
	StructureTypeSemaphoreWaitInfo                    StructureType = 1000207004
	StructureTypeSemaphoreSignalInfo                  StructureType = 1000207005
)

// Selected enum/flag values, named as in the C headers minus the VK_
// prefix.
const (
	// VkImageLayout
	ImageLayoutUndefined              = 0
	ImageLayoutGeneral                = 1
	ImageLayoutColorAttachment        = 2
	ImageLayoutDepthStencilAttachment = 3
	ImageLayoutShaderReadOnly         = 5
	ImageLayoutTransferSrc            = 6
	ImageLayoutTransferDst            = 7
	ImageLayoutPresentSrcKHR          = 1000001002

	// VkImageAspectFlags
	ImageAspectColor   = 0x1
	ImageAspectDepth   = 0x2
	ImageAspectStencil = 0x4

	// VkDescriptorType
	DescriptorTypeSampler              = 0
	DescriptorTypeSampledImage         = 2
	DescriptorTypeStorageImage         = 3
	DescriptorTypeUniformBuffer        = 6
	DescriptorTypeStorageBuffer        = 7
	DescriptorTypeUniformBufferDynamic = 8
	DescriptorTypeInputAttachment      = 10

	// VkCommandBufferUsageFlags
	CommandBufferUsageOneTimeSubmit = 0x1

	// VkCommandPoolCreateFlags
	CommandPoolCreateResetCommandBuffer = 0x2

	// VkDescriptorPoolCreateFlags
	DescriptorPoolCreateFreeDescriptorSet = 0x1

	// VkFenceCreateFlags
	FenceCreateSignaled = 0x1

	// VkSemaphoreType
	SemaphoreTypeBinary   = 0
	SemaphoreTypeTimeline = 1

	// VkPipelineBindPoint
	PipelineBindPointGraphics = 0
	PipelineBindPointCompute  = 1

	// VkSampleCountFlagBits
	SampleCount1 = 0x1

	// VkSharingMode
	SharingModeExclusive = 0

	// VkImageType / VkImageViewType
	ImageType2D          = 1
	ImageViewType2D      = 1
	ImageViewTypeCube    = 3
	ImageViewType2DArray = 5

	// VkImageTiling
	ImageTilingOptimal = 0

	// VkImageCreateFlags
	ImageCreateCubeCompatible = 0x10

	// VkMemoryPropertyFlags
	MemoryPropertyDeviceLocal  = 0x1
	MemoryPropertyHostVisible  = 0x2
	MemoryPropertyHostCoherent = 0x4

	// VkBufferUsageFlags
	BufferUsageTransferSrc   = 0x001
	BufferUsageTransferDst   = 0x002
	BufferUsageUniformBuffer = 0x010
	BufferUsageStorageBuffer = 0x020
	BufferUsageIndexBuffer   = 0x040
	BufferUsageVertexBuffer  = 0x080
	BufferUsageIndirect      = 0x100

	// VkImageUsageFlags
	ImageUsageTransferSrc     = 0x01
	ImageUsageTransferDst     = 0x02
	ImageUsageSampled         = 0x04
	ImageUsageStorage         = 0x08
	ImageUsageColorAttachment = 0x10
	ImageUsageDepthAttachment = 0x20
	ImageUsageInputAttachment = 0x80

	// VkAttachmentLoadOp / VkAttachmentStoreOp
	AttachmentLoadOpLoad      = 0
	AttachmentLoadOpClear     = 1
	AttachmentLoadOpDontCare  = 2
	AttachmentStoreOpStore    = 0
	AttachmentStoreOpDontCare = 1

	// VkFilter / VkSamplerMipmapMode / VkSamplerAddressMode
	FilterNearest            = 0
	FilterLinear             = 1
	SamplerMipmapModeNearest = 0
	SamplerMipmapModeLinear  = 1
	SamplerAddressRepeat     = 0
	SamplerAddressMirror     = 1
	SamplerAddressClamp      = 2

	// VkDynamicState
	DynamicStateViewport  = 0
	DynamicStateScissor   = 1
	DynamicStateDepthBias = 3

	// VkCommandBufferLevel
	CommandBufferLevelPrimary = 0

	// VkIndexType
	IndexTypeUint16 = 0
	IndexTypeUint32 = 1

	// VkPresentModeKHR
	PresentModeImmediateKHR = 0
	PresentModeMailboxKHR   = 1
	PresentModeFIFOKHR      = 2

	// VkColorSpaceKHR
	ColorSpaceSRGBNonlinearKHR = 0

	// VkCompositeAlphaFlagBitsKHR / VkSurfaceTransformFlagBitsKHR
	CompositeAlphaOpaqueKHR     = 0x1
	SurfaceTransformIdentityKHR = 0x1

	// VkQueueFlagBits
	QueueGraphics = 0x1
	QueueCompute  = 0x2
	QueueTransfer = 0x4

	// Special values
	SubpassExternal    = 0xFFFFFFFF
	QueueFamilyIgnored = 0xFFFFFFFF
	WholeSize          = ^uint64(0)
	MaxTimeout         = ^uint64(0)
)

// APIVersion12 is VK_API_VERSION_1_2, the floor this backend requests
// (timeline semaphores are core in 1.2).
const APIVersion12 = 1<<22 | 2<<12

type Extent2D struct {
	Width  uint32
	Height uint32
}

type Extent3D struct {
	Width  uint32
	Height uint32
	Depth  uint32
}

type Offset2D struct {
	X int32
	Y int32
}

type Offset3D struct {
	X int32
	Y int32
	Z int32
}

type Rect2D struct {
	Offset Offset2D
	Extent Extent2D
}

type Viewport struct {
	X        float32
	Y        float32
	Width    float32
	Height   float32
	MinDepth float32
	MaxDepth float32
}

type ApplicationInfo struct {
	SType              StructureType
	_                  uint32
	PNext              uint64
	PApplicationName   uint64
	ApplicationVersion uint32
	_                  uint32
	PEngineName        uint64
	EngineVersion      uint32
	APIVersion         uint32
}

type InstanceCreateInfo struct {
	SType                   StructureType
	_                       uint32
	PNext                   uint64
	Flags                   uint32
	_                       uint32
	PApplicationInfo        uint64
	EnabledLayerCount       uint32
	_                       uint32
	PPEnabledLayerNames     uint64
	EnabledExtensionCount   uint32
	_                       uint32
	PPEnabledExtensionNames uint64
}

type DeviceQueueCreateInfo struct {
	SType            StructureType
	_                uint32
	PNext            uint64
	Flags            uint32
	QueueFamilyIndex uint32
	QueueCount       uint32
	_                uint32
	PQueuePriorities uint64
}

type DeviceCreateInfo struct {
	SType                   StructureType
	_                       uint32
	PNext                   uint64
	Flags                   uint32
	QueueCreateInfoCount    uint32
	PQueueCreateInfos       uint64
	EnabledLayerCount       uint32
	_                       uint32
	PPEnabledLayerNames     uint64
	EnabledExtensionCount   uint32
	_                       uint32
	PPEnabledExtensionNames uint64
	PEnabledFeatures        uint64
}

// PhysicalDeviceTimelineSemaphoreFeatures enables timeline semaphores at
// device creation through DeviceCreateInfo.PNext.
type PhysicalDeviceTimelineSemaphoreFeatures struct {
	SType             StructureType
	_                 uint32
	PNext             uint64
	TimelineSemaphore uint32
	_                 uint32
}

type SubmitInfo struct {
	SType                StructureType
	_                    uint32
	PNext                uint64
	WaitSemaphoreCount   uint32
	_                    uint32
	PWaitSemaphores      uint64
	PWaitDstStageMask    uint64
	CommandBufferCount   uint32
	_                    uint32
	PCommandBuffers      uint64
	SignalSemaphoreCount uint32
	_                    uint32
	PSignalSemaphores    uint64
}

type TimelineSemaphoreSubmitInfo struct {
	SType                     StructureType
	_                         uint32
	PNext                     uint64
	WaitSemaphoreValueCount   uint32
	_                         uint32
	PWaitSemaphoreValues      uint64
	SignalSemaphoreValueCount uint32
	_                         uint32
	PSignalSemaphoreValues    uint64
}

type MemoryAllocateInfo struct {
	SType           StructureType
	_               uint32
	PNext           uint64
	AllocationSize  uint64
	MemoryTypeIndex uint32
	_               uint32
}

type MemoryRequirements struct {
	Size           uint64
	Alignment      uint64
	MemoryTypeBits uint32
	_              uint32
}

type FenceCreateInfo struct {
	SType StructureType
	_     uint32
	PNext uint64
	Flags uint32
	_     uint32
}

type SemaphoreCreateInfo struct {
	SType StructureType
	_     uint32
	PNext uint64
	Flags uint32
	_     uint32
}

type SemaphoreTypeCreateInfo struct {
	SType         StructureType
	_             uint32
	PNext         uint64
	SemaphoreType uint32
	_             uint32
	InitialValue  uint64
}

type SemaphoreWaitInfo struct {
	SType          StructureType
	_              uint32
	PNext          uint64
	Flags          uint32
	SemaphoreCount uint32
	PSemaphores    uint64
	PValues        uint64
}

type SemaphoreSignalInfo struct {
	SType     StructureType
	_         uint32
	PNext     uint64
	Semaphore uint64
	Value     uint64
}

type BufferCreateInfo struct {
	SType                 StructureType
	_                     uint32
	PNext                 uint64
	Flags                 uint32
	_                     uint32
	Size                  uint64
	Usage                 uint32
	SharingMode           uint32
	QueueFamilyIndexCount uint32
	_                     uint32
	PQueueFamilyIndices   uint64
}

type ImageCreateInfo struct {
	SType                 StructureType
	_                     uint32
	PNext                 uint64
	Flags                 uint32
	ImageType             uint32
	Format                uint32
	Extent                Extent3D
	MipLevels             uint32
	ArrayLayers           uint32
	Samples               uint32
	Tiling                uint32
	Usage                 uint32
	SharingMode           uint32
	QueueFamilyIndexCount uint32
	_                     uint32
	PQueueFamilyIndices   uint64
	InitialLayout         uint32
	_                     uint32
}

type ImageSubresourceRange struct {
	AspectMask     uint32
	BaseMipLevel   uint32
	LevelCount     uint32
	BaseArrayLayer uint32
	LayerCount     uint32
}

type ImageViewCreateInfo struct {
	SType            StructureType
	_                uint32
	PNext            uint64
	Flags            uint32
	_                uint32
	Image            uint64
	ViewType         uint32
	Format           uint32
	ComponentR       uint32
	ComponentG       uint32
	ComponentB       uint32
	ComponentA       uint32
	SubresourceRange ImageSubresourceRange
	_                uint32
}

type SamplerCreateInfo struct {
	SType            StructureType
	_                uint32
	PNext            uint64
	Flags            uint32
	MagFilter        uint32
	MinFilter        uint32
	MipmapMode       uint32
	AddressModeU     uint32
	AddressModeV     uint32
	AddressModeW     uint32
	MipLodBias       float32
	AnisotropyEnable uint32
	MaxAnisotropy    float32
	CompareEnable    uint32
	CompareOp        uint32
	MinLod           float32
	MaxLod           float32
	BorderColor      uint32
	Unnormalized     uint32
}

type ShaderModuleCreateInfo struct {
	SType    StructureType
	_        uint32
	PNext    uint64
	Flags    uint32
	_        uint32
	CodeSize uintptr
	PCode    uint64
}

type AttachmentDescription struct {
	Flags          uint32
	Format         uint32
	Samples        uint32
	LoadOp         uint32
	StoreOp        uint32
	StencilLoadOp  uint32
	StencilStoreOp uint32
	InitialLayout  uint32
	FinalLayout    uint32
}

type AttachmentReference struct {
	Attachment uint32
	Layout     uint32
}

type SubpassDescription struct {
	Flags                   uint32
	PipelineBindPoint       uint32
	InputAttachmentCount    uint32
	_                       uint32
	PInputAttachments       uint64
	ColorAttachmentCount    uint32
	_                       uint32
	PColorAttachments       uint64
	PResolveAttachments     uint64
	PDepthStencilAttachment uint64
	PreserveAttachmentCount uint32
	_                       uint32
	PPreserveAttachments    uint64
}

type SubpassDependency struct {
	SrcSubpass      uint32
	DstSubpass      uint32
	SrcStageMask    uint32
	DstStageMask    uint32
	SrcAccessMask   uint32
	DstAccessMask   uint32
	DependencyFlags uint32
}

type RenderPassCreateInfo struct {
	SType           StructureType
	_               uint32
	PNext           uint64
	Flags           uint32
	AttachmentCount uint32
	PAttachments    uint64
	SubpassCount    uint32
	_               uint32
	PSubpasses      uint64
	DependencyCount uint32
	_               uint32
	PDependencies   uint64
}

type FramebufferCreateInfo struct {
	SType           StructureType
	_               uint32
	PNext           uint64
	Flags           uint32
	_               uint32
	RenderPass      uint64
	AttachmentCount uint32
	_               uint32
	PAttachments    uint64
	Width           uint32
	Height          uint32
	Layers          uint32
	_               uint32
}

type PipelineLayoutCreateInfo struct {
	SType                  StructureType
	_                      uint32
	PNext                  uint64
	Flags                  uint32
	SetLayoutCount         uint32
	PSetLayouts            uint64
	PushConstantRangeCount uint32
	_                      uint32
	PPushConstantRanges    uint64
}

type DescriptorSetLayoutBinding struct {
	Binding            uint32
	DescriptorType     uint32
	DescriptorCount    uint32
	StageFlags         uint32
	PImmutableSamplers uint64
}

type DescriptorSetLayoutCreateInfo struct {
	SType        StructureType
	_            uint32
	PNext        uint64
	Flags        uint32
	BindingCount uint32
	PBindings    uint64
}

type DescriptorPoolSize struct {
	Type            uint32
	DescriptorCount uint32
}

type DescriptorPoolCreateInfo struct {
	SType         StructureType
	_             uint32
	PNext         uint64
	Flags         uint32
	MaxSets       uint32
	PoolSizeCount uint32
	_             uint32
	PPoolSizes    uint64
}

type DescriptorSetAllocateInfo struct {
	SType              StructureType
	_                  uint32
	PNext              uint64
	DescriptorPool     uint64
	DescriptorSetCount uint32
	_                  uint32
	PSetLayouts        uint64
}

type DescriptorBufferInfo struct {
	Buffer uint64
	Offset uint64
	Range  uint64
}

type DescriptorImageInfo struct {
	Sampler     uint64
	ImageView   uint64
	ImageLayout uint32
	_           uint32
}

type WriteDescriptorSet struct {
	SType            StructureType
	_                uint32
	PNext            uint64
	DstSet           uint64
	DstBinding       uint32
	DstArrayElement  uint32
	DescriptorCount  uint32
	DescriptorType   uint32
	PImageInfo       uint64
	PBufferInfo      uint64
	PTexelBufferView uint64
}

type SpecializationMapEntry struct {
	ConstantID uint32
	Offset     uint32
	Size       uintptr
}

type SpecializationInfo struct {
	MapEntryCount uint32
	_             uint32
	PMapEntries   uint64
	DataSize      uintptr
	PData         uint64
}

type PipelineShaderStageCreateInfo struct {
	SType               StructureType
	_                   uint32
	PNext               uint64
	Flags               uint32
	Stage               uint32
	Module              uint64
	PName               uint64
	PSpecializationInfo uint64
}

type VertexInputBindingDescription struct {
	Binding   uint32
	Stride    uint32
	InputRate uint32
}

type VertexInputAttributeDescription struct {
	Location uint32
	Binding  uint32
	Format   uint32
	Offset   uint32
}

type PipelineVertexInputStateCreateInfo struct {
	SType                           StructureType
	_                               uint32
	PNext                           uint64
	Flags                           uint32
	VertexBindingDescriptionCount   uint32
	PVertexBindingDescriptions      uint64
	VertexAttributeDescriptionCount uint32
	_                               uint32
	PVertexAttributeDescriptions    uint64
}

type PipelineInputAssemblyStateCreateInfo struct {
	SType                  StructureType
	_                      uint32
	PNext                  uint64
	Flags                  uint32
	Topology               uint32
	PrimitiveRestartEnable uint32
	_                      uint32
}

type PipelineViewportStateCreateInfo struct {
	SType         StructureType
	_             uint32
	PNext         uint64
	Flags         uint32
	ViewportCount uint32
	PViewports    uint64
	ScissorCount  uint32
	_             uint32
	PScissors     uint64
}

type PipelineRasterizationStateCreateInfo struct {
	SType                   StructureType
	_                       uint32
	PNext                   uint64
	Flags                   uint32
	DepthClampEnable        uint32
	RasterizerDiscardEnable uint32
	PolygonMode             uint32
	CullMode                uint32
	FrontFace               uint32
	DepthBiasEnable         uint32
	DepthBiasConstantFactor float32
	DepthBiasClamp          float32
	DepthBiasSlopeFactor    float32
	LineWidth               float32
	_                       uint32
}

type PipelineMultisampleStateCreateInfo struct {
	SType                 StructureType
	_                     uint32
	PNext                 uint64
	Flags                 uint32
	RasterizationSamples  uint32
	SampleShadingEnable   uint32
	MinSampleShading      float32
	PSampleMask           uint64
	AlphaToCoverageEnable uint32
	AlphaToOneEnable      uint32
}

type StencilOpState struct {
	FailOp      uint32
	PassOp      uint32
	DepthFailOp uint32
	CompareOp   uint32
	CompareMask uint32
	WriteMask   uint32
	Reference   uint32
}

type PipelineDepthStencilStateCreateInfo struct {
	SType                 StructureType
	_                     uint32
	PNext                 uint64
	Flags                 uint32
	DepthTestEnable       uint32
	DepthWriteEnable      uint32
	DepthCompareOp        uint32
	DepthBoundsTestEnable uint32
	StencilTestEnable     uint32
	Front                 StencilOpState
	Back                  StencilOpState
	MinDepthBounds        float32
	MaxDepthBounds        float32
}

type PipelineColorBlendAttachmentState struct {
	BlendEnable         uint32
	SrcColorBlendFactor uint32
	DstColorBlendFactor uint32
	ColorBlendOp        uint32
	SrcAlphaBlendFactor uint32
	DstAlphaBlendFactor uint32
	AlphaBlendOp        uint32
	ColorWriteMask      uint32
}

type PipelineColorBlendStateCreateInfo struct {
	SType           StructureType
	_               uint32
	PNext           uint64
	Flags           uint32
	LogicOpEnable   uint32
	LogicOp         uint32
	AttachmentCount uint32
	PAttachments    uint64
	BlendConstants  [4]float32
}

type PipelineDynamicStateCreateInfo struct {
	SType             StructureType
	_                 uint32
	PNext             uint64
	Flags             uint32
	DynamicStateCount uint32
	PDynamicStates    uint64
}

type GraphicsPipelineCreateInfo struct {
	SType               StructureType
	_                   uint32
	PNext               uint64
	Flags               uint32
	StageCount          uint32
	PStages             uint64
	PVertexInputState   uint64
	PInputAssemblyState uint64
	PTessellationState  uint64
	PViewportState      uint64
	PRasterizationState uint64
	PMultisampleState   uint64
	PDepthStencilState  uint64
	PColorBlendState    uint64
	PDynamicState       uint64
	Layout              uint64
	RenderPass          uint64
	Subpass             uint32
	_                   uint32
	BasePipelineHandle  uint64
	BasePipelineIndex   int32
	_                   uint32
}

type ComputePipelineCreateInfo struct {
	SType              StructureType
	_                  uint32
	PNext              uint64
	Flags              uint32
	_                  uint32
	Stage              PipelineShaderStageCreateInfo
	Layout             uint64
	BasePipelineHandle uint64
	BasePipelineIndex  int32
	_                  uint32
}

type CommandPoolCreateInfo struct {
	SType            StructureType
	_                uint32
	PNext            uint64
	Flags            uint32
	QueueFamilyIndex uint32
}

type CommandBufferAllocateInfo struct {
	SType              StructureType
	_                  uint32
	PNext              uint64
	CommandPool        uint64
	Level              uint32
	CommandBufferCount uint32
}

type CommandBufferBeginInfo struct {
	SType            StructureType
	_                uint32
	PNext            uint64
	Flags            uint32
	_                uint32
	PInheritanceInfo uint64
}

// ClearValue is the VkClearValue union: 16 bytes interpreted as four
// float32 color channels or {float32 depth, uint32 stencil}.
type ClearValue [4]uint32

type RenderPassBeginInfo struct {
	SType           StructureType
	_               uint32
	PNext           uint64
	RenderPass      uint64
	Framebuffer     uint64
	RenderArea      Rect2D
	ClearValueCount uint32
	_               uint32
	PClearValues    uint64
}

type BufferCopy struct {
	SrcOffset uint64
	DstOffset uint64
	Size      uint64
}

type ImageSubresourceLayers struct {
	AspectMask     uint32
	MipLevel       uint32
	BaseArrayLayer uint32
	LayerCount     uint32
}

type BufferImageCopy struct {
	BufferOffset      uint64
	BufferRowLength   uint32
	BufferImageHeight uint32
	ImageSubresource  ImageSubresourceLayers
	ImageOffset       Offset3D
	ImageExtent       Extent3D
}

type ImageBlit struct {
	SrcSubresource ImageSubresourceLayers
	SrcOffsets     [2]Offset3D
	DstSubresource ImageSubresourceLayers
	DstOffsets     [2]Offset3D
}

type MemoryBarrier struct {
	SType         StructureType
	_             uint32
	PNext         uint64
	SrcAccessMask uint32
	DstAccessMask uint32
}

type ImageMemoryBarrier struct {
	SType               StructureType
	_                   uint32
	PNext               uint64
	SrcAccessMask       uint32
	DstAccessMask       uint32
	OldLayout           uint32
	NewLayout           uint32
	SrcQueueFamilyIndex uint32
	DstQueueFamilyIndex uint32
	Image               uint64
	SubresourceRange    ImageSubresourceRange
	_                   uint32
}

type SwapchainCreateInfoKHR struct {
	SType                 StructureType
	_                     uint32
	PNext                 uint64
	Flags                 uint32
	_                     uint32
	Surface               uint64
	MinImageCount         uint32
	ImageFormat           uint32
	ImageColorSpace       uint32
	ImageExtent           Extent2D
	ImageArrayLayers      uint32
	ImageUsage            uint32
	ImageSharingMode      uint32
	QueueFamilyIndexCount uint32
	_                     uint32
	PQueueFamilyIndices   uint64
	PreTransform          uint32
	CompositeAlpha        uint32
	PresentMode           uint32
	Clipped               uint32
	OldSwapchain          uint64
}

type PresentInfoKHR struct {
	SType              StructureType
	_                  uint32
	PNext              uint64
	WaitSemaphoreCount uint32
	_                  uint32
	PWaitSemaphores    uint64
	SwapchainCount     uint32
	_                  uint32
	PSwapchains        uint64
	PImageIndices      uint64
	PResults           uint64
}

type SurfaceCapabilitiesKHR struct {
	MinImageCount           uint32
	MaxImageCount           uint32
	CurrentExtent           Extent2D
	MinImageExtent          Extent2D
	MaxImageExtent          Extent2D
	MaxImageArrayLayers     uint32
	SupportedTransforms     uint32
	CurrentTransform        uint32
	SupportedCompositeAlpha uint32
	SupportedUsageFlags     uint32
}

type SurfaceFormatKHR struct {
	Format     uint32
	ColorSpace uint32
}

type QueueFamilyProperties struct {
	QueueFlags                  uint32
	QueueCount                  uint32
	TimestampValidBits          uint32
	MinImageTransferGranularity Extent3D
}

type MemoryType struct {
	PropertyFlags uint32
	HeapIndex     uint32
}

type MemoryHeap struct {
	Size  uint64
	Flags uint32
	_     uint32
}

type PhysicalDeviceMemoryProperties struct {
	MemoryTypeCount uint32
	MemoryTypes     [32]MemoryType
	MemoryHeapCount uint32
	MemoryHeaps     [16]MemoryHeap
}

// PhysicalDeviceProperties is read only through its header fields; the
// limits and sparse-properties tails are padded generously rather than
// mirrored field-by-field.
type PhysicalDeviceProperties struct {
	APIVersion        uint32
	DriverVersion     uint32
	VendorID          uint32
	DeviceID          uint32
	DeviceType        uint32
	DeviceName        [256]byte
	PipelineCacheUUID [16]byte
	_                 [560]byte
}

type XlibSurfaceCreateInfoKHR struct {
	SType  StructureType
	_      uint32
	PNext  uint64
	Flags  uint32
	_      uint32
	Dpy    uint64
	Window uint64
}

type Win32SurfaceCreateInfoKHR struct {
	SType     StructureType
	_         uint32
	PNext     uint64
	Flags     uint32
	_         uint32
	HInstance uint64
	HWnd      uint64
}
