package vulkan

import (
	"github.com/gogpu/gputypes"

	"github.com/gogpu/gfxcore/core"
	"github.com/gogpu/gfxcore/hal"
)

// VkFormat values for the formats this layer routes.
const (
	formatR8Unorm       = 9
	formatRG8Unorm      = 16
	formatRGBA8Unorm    = 37
	formatRGBA8Srgb     = 43
	formatBGRA8Unorm    = 44
	formatBGRA8Srgb     = 50
	formatR16Float      = 76
	formatRG16Float     = 83
	formatRGBA16Float   = 97
	formatR32Uint       = 98
	formatR32Float      = 100
	formatRG32Float     = 103
	formatRGB32Float    = 106
	formatRGBA32Float   = 109
	formatD16Unorm      = 124
	formatX8D24Unorm    = 125
	formatD32Float      = 126
	formatS8Uint        = 127
	formatD24UnormS8    = 129
	formatD32FloatS8    = 130
)

func formatToVk(f gputypes.TextureFormat) uint32 {
	switch f {
	case gputypes.TextureFormatR8Unorm:
		return formatR8Unorm
	case gputypes.TextureFormatRG8Unorm:
		return formatRG8Unorm
	case gputypes.TextureFormatRGBA8Unorm:
		return formatRGBA8Unorm
	case gputypes.TextureFormatRGBA8UnormSrgb:
		return formatRGBA8Srgb
	case gputypes.TextureFormatBGRA8Unorm:
		return formatBGRA8Unorm
	case gputypes.TextureFormatBGRA8UnormSrgb:
		return formatBGRA8Srgb
	case gputypes.TextureFormatR16Float:
		return formatR16Float
	case gputypes.TextureFormatRG16Float:
		return formatRG16Float
	case gputypes.TextureFormatRGBA16Float:
		return formatRGBA16Float
	case gputypes.TextureFormatR32Uint:
		return formatR32Uint
	case gputypes.TextureFormatR32Float:
		return formatR32Float
	case gputypes.TextureFormatRG32Float:
		return formatRG32Float
	case gputypes.TextureFormatRGBA32Float:
		return formatRGBA32Float
	case gputypes.TextureFormatDepth16Unorm:
		return formatD16Unorm
	case gputypes.TextureFormatDepth24Plus:
		return formatX8D24Unorm
	case gputypes.TextureFormatDepth24PlusStencil8:
		return formatD24UnormS8
	case gputypes.TextureFormatDepth32Float:
		return formatD32Float
	case gputypes.TextureFormatDepth32FloatStencil8:
		return formatD32FloatS8
	case gputypes.TextureFormatStencil8:
		return formatS8Uint
	default:
		return formatRGBA8Unorm
	}
}

func isDepthFormat(f gputypes.TextureFormat) bool {
	switch f {
	case gputypes.TextureFormatDepth16Unorm,
		gputypes.TextureFormatDepth24Plus,
		gputypes.TextureFormatDepth24PlusStencil8,
		gputypes.TextureFormatDepth32Float,
		gputypes.TextureFormatDepth32FloatStencil8,
		gputypes.TextureFormatStencil8:
		return true
	default:
		return false
	}
}

func aspectForFormat(f gputypes.TextureFormat) uint32 {
	switch f {
	case gputypes.TextureFormatStencil8:
		return 4 // VK_IMAGE_ASPECT_STENCIL_BIT
	case gputypes.TextureFormatDepth24PlusStencil8, gputypes.TextureFormatDepth32FloatStencil8:
		return 2 | 4
	case gputypes.TextureFormatDepth16Unorm, gputypes.TextureFormatDepth24Plus, gputypes.TextureFormatDepth32Float:
		return 2
	default:
		return 1 // VK_IMAGE_ASPECT_COLOR_BIT
	}
}

func bufferUsageToVk(u gputypes.BufferUsage) uint32 {
	var out uint32
	if u&gputypes.BufferUsageCopySrc != 0 {
		out |= 0x001
	}
	if u&gputypes.BufferUsageCopyDst != 0 {
		out |= 0x002
	}
	if u&gputypes.BufferUsageUniform != 0 {
		out |= 0x010
	}
	if u&gputypes.BufferUsageStorage != 0 {
		out |= 0x020
	}
	if u&gputypes.BufferUsageIndex != 0 {
		out |= 0x040
	}
	if u&gputypes.BufferUsageVertex != 0 {
		out |= 0x080
	}
	if u&gputypes.BufferUsageIndirect != 0 {
		out |= 0x100
	}
	// Host-mapped buffers still need a transfer role for staging copies.
	if out == 0 {
		out = 0x002
	}
	return out
}

func textureUsageToVk(u gputypes.TextureUsage, f gputypes.TextureFormat) uint32 {
	var out uint32
	if u&gputypes.TextureUsageCopySrc != 0 {
		out |= 0x01
	}
	if u&gputypes.TextureUsageCopyDst != 0 {
		out |= 0x02
	}
	if u&gputypes.TextureUsageTextureBinding != 0 {
		out |= 0x04
	}
	if u&gputypes.TextureUsageStorageBinding != 0 {
		out |= 0x08
	}
	if u&gputypes.TextureUsageRenderAttachment != 0 {
		if isDepthFormat(f) {
			out |= 0x20
		} else {
			out |= 0x10
		}
	}
	return out
}

// layoutToVk maps the attachment-usage vocabulary onto VkImageLayout.
func layoutToVk(u core.TextureUsage) uint32 {
	switch u {
	case core.UsageColorAttachment:
		return 2
	case core.UsageDepthStencilAttachment:
		return 3
	case core.UsageShaderReadOnly:
		return 5
	case core.UsagePresentSrc:
		return 1000001002
	default:
		return 0 // VK_IMAGE_LAYOUT_UNDEFINED
	}
}

// VkPipelineStageFlags bits.
const (
	stageVertexShader    = 0x8
	stageFragmentShader  = 0x80
	stageEarlyFragment   = 0x100
	stageLateFragment    = 0x200
	stageColorAttachment = 0x400
	stageComputeShader   = 0x800
	stageTransfer        = 0x1000
)

func stagesToVk(s core.PipelineStage) uint32 {
	var out uint32
	if s&core.StageColorAttachmentOutput != 0 {
		out |= stageColorAttachment
	}
	if s&core.StageEarlyFragmentTests != 0 {
		out |= stageEarlyFragment
	}
	if s&core.StageLateFragmentTests != 0 {
		out |= stageLateFragment
	}
	if s&core.StageFragment != 0 {
		out |= stageFragmentShader
	}
	if s&core.StageVertex != 0 {
		out |= stageVertexShader
	}
	if s&core.StageCompute != 0 {
		out |= stageComputeShader
	}
	if s&core.StageTransfer != 0 {
		out |= stageTransfer
	}
	if out == 0 {
		out = 0x1 // VK_PIPELINE_STAGE_TOP_OF_PIPE_BIT
	}
	return out
}

// VkAccessFlags bits.
const (
	accessInputAttachmentRead = 0x10
	accessShaderRead          = 0x20
	accessShaderWrite         = 0x40
	accessColorRead           = 0x80
	accessColorWrite          = 0x100
	accessDepthStencilRead    = 0x200
	accessDepthStencilWrite   = 0x400
	accessTransferRead        = 0x800
	accessTransferWrite       = 0x1000
)

func accessToVk(a core.AccessMask) uint32 {
	var out uint32
	if a&core.AccessColorAttachmentRead != 0 {
		out |= accessColorRead
	}
	if a&core.AccessColorAttachmentWrite != 0 {
		out |= accessColorWrite
	}
	if a&core.AccessDepthStencilAttachmentRead != 0 {
		out |= accessDepthStencilRead
	}
	if a&core.AccessDepthStencilAttachmentWrite != 0 {
		out |= accessDepthStencilWrite
	}
	if a&core.AccessInputAttachmentRead != 0 {
		out |= accessInputAttachmentRead
	}
	if a&core.AccessShaderRead != 0 {
		out |= accessShaderRead
	}
	if a&core.AccessShaderWrite != 0 {
		out |= accessShaderWrite
	}
	if a&core.AccessTransferRead != 0 {
		out |= accessTransferRead
	}
	if a&core.AccessTransferWrite != 0 {
		out |= accessTransferWrite
	}
	return out
}

func loadOpToVk(op gputypes.LoadOp) uint32 {
	if op == gputypes.LoadOpClear {
		return 1
	}
	return 0 // VK_ATTACHMENT_LOAD_OP_LOAD
}

func storeOpToVk(op gputypes.StoreOp) uint32 {
	if op == gputypes.StoreOpDiscard {
		return 1
	}
	return 0 // VK_ATTACHMENT_STORE_OP_STORE
}

func filterToVk(f gputypes.FilterMode) uint32 {
	if f == gputypes.FilterModeLinear {
		return 1
	}
	return 0
}

func addressToVk(m gputypes.AddressMode) uint32 {
	switch m {
	case gputypes.AddressModeRepeat:
		return 0
	case gputypes.AddressModeMirrorRepeat:
		return 1
	default:
		return 2 // VK_SAMPLER_ADDRESS_MODE_CLAMP_TO_EDGE
	}
}

func compareToVk(c gputypes.CompareFunction) (enabled uint32, op uint32) {
	switch c {
	case gputypes.CompareFunctionNever:
		return 1, 0
	case gputypes.CompareFunctionLess:
		return 1, 1
	case gputypes.CompareFunctionEqual:
		return 1, 2
	case gputypes.CompareFunctionLessEqual:
		return 1, 3
	case gputypes.CompareFunctionGreater:
		return 1, 4
	case gputypes.CompareFunctionNotEqual:
		return 1, 5
	case gputypes.CompareFunctionGreaterEqual:
		return 1, 6
	case gputypes.CompareFunctionAlways:
		return 1, 7
	default:
		return 0, 7
	}
}

func topologyToVk(t gputypes.PrimitiveTopology) uint32 {
	switch t {
	case gputypes.PrimitiveTopologyPointList:
		return 0
	case gputypes.PrimitiveTopologyLineList:
		return 1
	case gputypes.PrimitiveTopologyLineStrip:
		return 2
	case gputypes.PrimitiveTopologyTriangleStrip:
		return 4
	default:
		return 3 // VK_PRIMITIVE_TOPOLOGY_TRIANGLE_LIST
	}
}

func cullToVk(c gputypes.CullMode) uint32 {
	switch c {
	case gputypes.CullModeFront:
		return 1
	case gputypes.CullModeBack:
		return 2
	default:
		return 0
	}
}

func frontFaceToVk(f gputypes.FrontFace) uint32 {
	if f == gputypes.FrontFaceCW {
		return 1
	}
	return 0 // VK_FRONT_FACE_COUNTER_CLOCKWISE
}

func blendFactorToVk(f gputypes.BlendFactor) uint32 {
	switch f {
	case gputypes.BlendFactorZero:
		return 0
	case gputypes.BlendFactorOne:
		return 1
	case gputypes.BlendFactorSrc:
		return 2
	case gputypes.BlendFactorOneMinusSrc:
		return 3
	case gputypes.BlendFactorDst:
		return 4
	case gputypes.BlendFactorOneMinusDst:
		return 5
	case gputypes.BlendFactorSrcAlpha:
		return 6
	case gputypes.BlendFactorOneMinusSrcAlpha:
		return 7
	case gputypes.BlendFactorDstAlpha:
		return 8
	case gputypes.BlendFactorOneMinusDstAlpha:
		return 9
	case gputypes.BlendFactorConstant:
		return 10
	case gputypes.BlendFactorOneMinusConstant:
		return 11
	case gputypes.BlendFactorSrcAlphaSaturated:
		return 14
	default:
		return 1
	}
}

func blendOpToVk(op gputypes.BlendOperation) uint32 {
	switch op {
	case gputypes.BlendOperationSubtract:
		return 1
	case gputypes.BlendOperationReverseSubtract:
		return 2
	case gputypes.BlendOperationMin:
		return 3
	case gputypes.BlendOperationMax:
		return 4
	default:
		return 0 // VK_BLEND_OP_ADD
	}
}

func vertexFormatToVk(f gputypes.VertexFormat) uint32 {
	switch f {
	case gputypes.VertexFormatFloat32:
		return formatR32Float
	case gputypes.VertexFormatFloat32x2:
		return formatRG32Float
	case gputypes.VertexFormatFloat32x3:
		return formatRGB32Float
	case gputypes.VertexFormatFloat32x4:
		return formatRGBA32Float
	case gputypes.VertexFormatUint32:
		return formatR32Uint
	case gputypes.VertexFormatUnorm8x4:
		return formatRGBA8Unorm
	default:
		return formatRGBA32Float
	}
}

func bindingTypeToVk(t hal.BindingType) uint32 {
	switch t {
	case hal.BindingUniformBuffer:
		return 6
	case hal.BindingUniformBufferDynamic:
		return 8
	case hal.BindingStorageBuffer:
		return 7
	case hal.BindingSampledTexture:
		return 2
	case hal.BindingStorageTexture:
		return 3
	case hal.BindingSampler:
		return 0
	case hal.BindingInputAttachment:
		return 10
	default:
		return 6
	}
}

func shaderStagesToVk(s gputypes.ShaderStages) uint32 {
	var out uint32
	if s&gputypes.ShaderStageVertex != 0 {
		out |= 0x1
	}
	if s&gputypes.ShaderStageFragment != 0 {
		out |= 0x10
	}
	if s&gputypes.ShaderStageCompute != 0 {
		out |= 0x20
	}
	if out == 0 {
		out = 0x7FFFFFFF // VK_SHADER_STAGE_ALL
	}
	return out
}
