package core

import "github.com/gogpu/gputypes"

// TextureUsage mirrors the small set of image-layout-relevant usages a
// render-pass attachment transitions through. It intentionally only
// covers the initial/final usage of an attachment, not the full
// texture usage bitmask the rest of the module works with.
type TextureUsage uint32

const (
	UsageUndefined TextureUsage = iota
	UsageColorAttachment
	UsageDepthStencilAttachment
	UsagePresentSrc
	UsageShaderReadOnly
)

// AttachmentOps is the per-attachment load/store/initial/final state a
// RenderPass overlays on top of its RenderPassLayout, overriding the
// layout's attachment init/final fields when the driver pass is built.
type AttachmentOps struct {
	LoadOp       gputypes.LoadOp
	StoreOp      gputypes.StoreOp
	ClearValue   gputypes.Color
	InitialUsage TextureUsage
	FinalUsage   TextureUsage
}

// Framebuffer is an opaque, backend-owned framebuffer handle plus the
// views it was built from, kept so UpdateAttachments can queue the old one
// for deletion.
type Framebuffer struct {
	Driver uint64
	Views  []Handle[TextureMarker]
}

// RenderPass is the compiled layout plus its runtime state: per-target
// load/store/initial/final usage, clear values, an
// optional swapchain pointer, current dimensions, and one framebuffer per
// frame-in-flight (or per swapchain image, for swapchain-backed passes).
type RenderPass struct {
	Layout       RenderPassLayout
	Ops          []AttachmentOps
	Width        uint32
	Height       uint32
	Swapchain    *Swapchain // nil unless this pass targets a swapchain image
	Framebuffers []*Framebuffer
}

// CurrentFramebuffer picks this pass's framebuffer for the frame/image
// currently in flight: by swapchain image index if this pass targets a
// swapchain, otherwise by the ring's current frame index.
func (rp *RenderPass) CurrentFramebuffer(frameIndex uint32) *Framebuffer {
	if len(rp.Framebuffers) == 0 {
		return nil
	}
	if rp.Swapchain != nil {
		idx := rp.Swapchain.CurrentImageIndex
		if int(idx) >= len(rp.Framebuffers) {
			idx = 0
		}
		return rp.Framebuffers[idx]
	}
	if int(frameIndex) >= len(rp.Framebuffers) {
		frameIndex = 0
	}
	return rp.Framebuffers[frameIndex]
}

// FramebufferFactory builds one backend framebuffer from a render pass's
// driver handle, dimensions, and the view list for one frame/image slot.
type FramebufferFactory func(width, height uint32, views []Handle[TextureMarker]) (*Framebuffer, error)

// UpdateAttachments rebuilds rp's framebuffers for new dimensions/views.
// The rebuild itself is synchronous (CompileRenderPassLayout already ran
// once at creation and is not re-run here), but the *old* framebuffers are
// only destroyed after the deletion ring proves no in-flight frame can
// reference them, so the caller's garbage list is where they actually go,
// not here.
func UpdateAttachments(rp *RenderPass, garbage *GarbageList, width, height uint32, newViewsPerSlot [][]Handle[TextureMarker], build FramebufferFactory, destroy func(*Framebuffer)) error {
	oldFramebuffers := rp.Framebuffers
	newFramebuffers := make([]*Framebuffer, len(newViewsPerSlot))

	for i, views := range newViewsPerSlot {
		fb, err := build(width, height, views)
		if err != nil {
			return err
		}
		newFramebuffers[i] = fb
	}

	rp.Width = width
	rp.Height = height
	rp.Framebuffers = newFramebuffers

	for _, old := range oldFramebuffers {
		old := old
		garbage.QueueDestroy("framebuffer", func() { destroy(old) })
	}

	return nil
}
