package core

import "github.com/gogpu/gputypes"

// PipelineStage and AccessMask mirror the Vulkan-class stage/access
// bits. They're defined here rather than pulled
// from a driver package so the render-pass compiler stays backend-agnostic;
// a backend translates them to its native bit values when building the
// actual driver render pass.
type PipelineStage uint32

const (
	StageColorAttachmentOutput PipelineStage = 1 << iota
	StageEarlyFragmentTests
	StageLateFragmentTests
	StageFragment
	StageVertex
	StageCompute
	StageTransfer
)

type AccessMask uint32

const (
	AccessColorAttachmentRead AccessMask = 1 << iota
	AccessColorAttachmentWrite
	AccessDepthStencilAttachmentRead
	AccessDepthStencilAttachmentWrite
	AccessInputAttachmentRead
	AccessShaderRead
	AccessShaderWrite
	AccessTransferRead
	AccessTransferWrite
)

// SubpassExternal is the sentinel subpass index meaning "outside the
// render pass", used for the two always-present dependencies.
const SubpassExternal = ^uint32(0)

// RenderTargetDesc is one ordered render-target entry of a
// RenderPassLayoutDesc. Depth/stencil targets are identified by format
// class, not by a separate field.
type RenderTargetDesc struct {
	Format gputypes.TextureFormat
}

// IsDepth reports whether this render target is a depth/stencil format.
func (r RenderTargetDesc) IsDepth() bool {
	return isDepthFormat(r.Format)
}

func isDepthFormat(f gputypes.TextureFormat) bool {
	switch f {
	case gputypes.TextureFormatDepth16Unorm,
		gputypes.TextureFormatDepth24Plus,
		gputypes.TextureFormatDepth24PlusStencil8,
		gputypes.TextureFormatDepth32Float,
		gputypes.TextureFormatDepth32FloatStencil8:
		return true
	default:
		return false
	}
}

// Subpass lists which render-target indices a subpass writes and which it
// reads as input attachments.
type Subpass struct {
	// RenderTargets indexes RenderPassLayoutDesc.RenderTargets; at most one
	// of these may be a depth target.
	RenderTargets []uint32
	// InputAttachments indexes RenderPassLayoutDesc.RenderTargets as
	// input-attachment reads.
	InputAttachments []uint32
}

// RenderPassLayoutDesc is the declarative input to CompileRenderPassLayout.
type RenderPassLayoutDesc struct {
	RenderTargets []RenderTargetDesc
	Subpasses     []Subpass
}

// AttachmentRef is a compiled attachment reference: an index into the
// render-pass's attachment array. Whether it is written as color or depth
// or read as input is given by which CompiledSubpass field holds it.
type AttachmentRef struct {
	AttachmentIndex uint32
}

// SubpassDependency is one compiled VkSubpassDependency-equivalent.
type SubpassDependency struct {
	SrcSubpass    uint32 // SubpassExternal for "outside the pass"
	DstSubpass    uint32
	SrcStageMask  PipelineStage
	DstStageMask  PipelineStage
	SrcAccessMask AccessMask
	DstAccessMask AccessMask
	ByRegion      bool
}

// CompiledSubpass is one subpass's compiled attachment references.
type CompiledSubpass struct {
	ColorRefs []AttachmentRef
	DepthRef  *AttachmentRef
	HasDepth  bool
	InputRefs []AttachmentRef
}

// RenderPassLayout is the immutable compiled layout: attachment formats in
// order, compiled subpasses, and the derived dependency list. Only the
// driver render-pass handle needs to be retained by a backend; everything
// else here is kept so RenderPass (the runtime wrapper, see
// renderpass_runtime.go) can recompute load/store ops and framebuffers
// without re-running the compiler.
type RenderPassLayout struct {
	RenderTargets []RenderTargetDesc
	Subpasses     []CompiledSubpass
	Dependencies  []SubpassDependency

	// AttachmentCount is len(RenderTargets), precomputed for backends
	// sizing their attachment arrays.
	AttachmentCount int
}

// CompileRenderPassLayout translates a
// declarative RenderPassLayoutDesc into attachment references per subpass
// and the exact subpass-dependency list (K subpasses -> K+2 dependencies).
func CompileRenderPassLayout(desc RenderPassLayoutDesc) RenderPassLayout {
	layout := RenderPassLayout{
		RenderTargets:   desc.RenderTargets,
		AttachmentCount: len(desc.RenderTargets),
	}

	for _, sp := range desc.Subpasses {
		compiled := CompiledSubpass{}
		for _, rt := range sp.RenderTargets {
			ref := AttachmentRef{AttachmentIndex: rt}
			if desc.RenderTargets[rt].IsDepth() {
				d := ref
				compiled.DepthRef = &d
				compiled.HasDepth = true
			} else {
				compiled.ColorRefs = append(compiled.ColorRefs, ref)
			}
		}
		for _, ia := range sp.InputAttachments {
			compiled.InputRefs = append(compiled.InputRefs, AttachmentRef{AttachmentIndex: ia})
		}
		layout.Subpasses = append(layout.Subpasses, compiled)
	}

	layout.Dependencies = compileSubpassDependencies(len(layout.Subpasses))
	return layout
}

// compileSubpassDependencies emits exactly K+2 dependencies for K
// subpasses: EXTERNAL->0, (K-1) consecutive-pair dependencies, and
// last->EXTERNAL.
func compileSubpassDependencies(subpassCount int) []SubpassDependency {
	deps := make([]SubpassDependency, 0, subpassCount+2)

	// EXTERNAL -> 0
	deps = append(deps, SubpassDependency{
		SrcSubpass:    SubpassExternal,
		DstSubpass:    0,
		SrcStageMask:  StageColorAttachmentOutput | StageEarlyFragmentTests | StageLateFragmentTests,
		DstStageMask:  StageColorAttachmentOutput | StageEarlyFragmentTests | StageLateFragmentTests,
		SrcAccessMask: AccessColorAttachmentWrite | AccessDepthStencilAttachmentWrite,
		DstAccessMask: AccessColorAttachmentWrite | AccessDepthStencilAttachmentWrite,
		ByRegion:      false,
	})

	// i-1 -> i for each consecutive pair
	for i := 1; i < subpassCount; i++ {
		deps = append(deps, SubpassDependency{
			SrcSubpass:    uint32(i - 1),
			DstSubpass:    uint32(i),
			SrcStageMask:  StageColorAttachmentOutput | StageEarlyFragmentTests | StageLateFragmentTests,
			DstStageMask:  StageFragment | StageColorAttachmentOutput | StageEarlyFragmentTests | StageLateFragmentTests,
			SrcAccessMask: AccessColorAttachmentWrite | AccessDepthStencilAttachmentWrite,
			DstAccessMask: AccessInputAttachmentRead | AccessColorAttachmentWrite | AccessDepthStencilAttachmentWrite,
			ByRegion:      true,
		})
	}

	// last -> EXTERNAL
	last := uint32(0)
	if subpassCount > 0 {
		last = uint32(subpassCount - 1)
	}
	deps = append(deps, SubpassDependency{
		SrcSubpass:    last,
		DstSubpass:    SubpassExternal,
		SrcStageMask:  StageFragment | StageColorAttachmentOutput | StageEarlyFragmentTests | StageLateFragmentTests,
		DstStageMask:  StageFragment | StageColorAttachmentOutput | StageEarlyFragmentTests | StageLateFragmentTests,
		SrcAccessMask: AccessColorAttachmentWrite | AccessDepthStencilAttachmentWrite | AccessInputAttachmentRead,
		DstAccessMask: AccessColorAttachmentWrite | AccessDepthStencilAttachmentWrite | AccessInputAttachmentRead,
		ByRegion:      true,
	})

	return deps
}
