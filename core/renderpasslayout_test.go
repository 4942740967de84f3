package core

import (
	"testing"

	"github.com/gogpu/gputypes"
)

// A 2-subpass pass (subpass 0 writes color+depth, subpass 1 reads color
// as an input attachment) must compile to exactly 3 subpass dependencies.
func TestCompileRenderPassLayout_TwoSubpassesThreeDependencies(t *testing.T) {
	desc := RenderPassLayoutDesc{
		RenderTargets: []RenderTargetDesc{
			{Format: gputypes.TextureFormatRGBA8Unorm},
			{Format: gputypes.TextureFormatDepth32Float},
		},
		Subpasses: []Subpass{
			{RenderTargets: []uint32{0, 1}},
			{InputAttachments: []uint32{0}},
		},
	}

	layout := CompileRenderPassLayout(desc)

	if len(layout.Dependencies) != 3 {
		t.Fatalf("len(Dependencies) = %d, want 3", len(layout.Dependencies))
	}

	d0 := layout.Dependencies[0]
	if d0.SrcSubpass != SubpassExternal || d0.DstSubpass != 0 {
		t.Errorf("dependency 0 = %+v, want EXTERNAL -> 0", d0)
	}

	d1 := layout.Dependencies[1]
	if d1.SrcSubpass != 0 || d1.DstSubpass != 1 {
		t.Errorf("dependency 1 = %+v, want 0 -> 1", d1)
	}
	if d1.DstAccessMask&AccessInputAttachmentRead == 0 {
		t.Error("dependency 0 -> 1 must include INPUT_ATTACHMENT_READ in its dst access mask")
	}

	d2 := layout.Dependencies[2]
	if d2.SrcSubpass != 1 || d2.DstSubpass != SubpassExternal {
		t.Errorf("dependency 2 = %+v, want 1 -> EXTERNAL", d2)
	}

	sp0 := layout.Subpasses[0]
	if len(sp0.ColorRefs) != 1 || !sp0.HasDepth {
		t.Errorf("subpass 0 = %+v, want 1 color ref and a depth ref", sp0)
	}
	sp1 := layout.Subpasses[1]
	if len(sp1.InputRefs) != 1 {
		t.Errorf("subpass 1 = %+v, want 1 input ref", sp1)
	}
}

func TestCompileRenderPassLayout_SingleSubpassTwoDependencies(t *testing.T) {
	desc := RenderPassLayoutDesc{
		RenderTargets: []RenderTargetDesc{{Format: gputypes.TextureFormatBGRA8Unorm}},
		Subpasses:     []Subpass{{RenderTargets: []uint32{0}}},
	}

	layout := CompileRenderPassLayout(desc)
	if len(layout.Dependencies) != 2 {
		t.Fatalf("len(Dependencies) = %d, want 2 (EXTERNAL->0, 0->EXTERNAL)", len(layout.Dependencies))
	}
}

func TestRenderTargetDesc_IsDepth(t *testing.T) {
	color := RenderTargetDesc{Format: gputypes.TextureFormatRGBA8Unorm}
	depth := RenderTargetDesc{Format: gputypes.TextureFormatDepth24PlusStencil8}

	if color.IsDepth() {
		t.Error("RGBA8Unorm must not be classified as depth")
	}
	if !depth.IsDepth() {
		t.Error("Depth24PlusStencil8 must be classified as depth")
	}
}
