package core

import (
	"fmt"

	"github.com/gogpu/gputypes"
)

// PresentMode mirrors the Vulkan-class present modes relevant to
// swapchain selection.
type PresentMode int

const (
	PresentModeFIFO PresentMode = iota
	PresentModeMailbox
	PresentModeImmediate
)

// SurfaceCaps is the subset of surface capabilities the swapchain
// bootstrap needs: the formats/present-modes the surface actually
// supports, and the min/max extent and image count the presentation
// engine allows.
type SurfaceCaps struct {
	Formats        []gputypes.TextureFormat
	PresentModes   []PresentMode
	MinImageCount  uint32
	MaxImageCount  uint32 // 0 means unbounded
	MinExtentW     uint32
	MinExtentH     uint32
	MaxExtentW     uint32
	MaxExtentH     uint32
	CurrentExtentW uint32
	CurrentExtentH uint32
}

// preferredSwapchainFormats is the fixed preference order: the first of
// these the surface reports support for wins.
var preferredSwapchainFormats = []gputypes.TextureFormat{
	gputypes.TextureFormatRGBA8Unorm,
	gputypes.TextureFormatBGRA8Unorm,
	gputypes.TextureFormatRGBA8UnormSrgb,
	gputypes.TextureFormatBGRA8UnormSrgb,
}

// ChooseSwapchainFormat picks the first preferred format the surface
// supports, or the surface's first reported format if none of the
// preferred ones match.
func ChooseSwapchainFormat(caps SurfaceCaps) (gputypes.TextureFormat, error) {
	if len(caps.Formats) == 0 {
		return 0, fmt.Errorf("core: surface reports no supported formats")
	}
	for _, want := range preferredSwapchainFormats {
		for _, have := range caps.Formats {
			if have == want {
				return want, nil
			}
		}
	}
	return caps.Formats[0], nil
}

// ChoosePresentMode picks MAILBOX or IMMEDIATE when vsync is disabled
// and the surface supports one of them (MAILBOX preferred), else FIFO
// (which every Vulkan-class surface must support).
func ChoosePresentMode(caps SurfaceCaps, vsync bool) PresentMode {
	if vsync {
		return PresentModeFIFO
	}
	hasMode := func(m PresentMode) bool {
		for _, pm := range caps.PresentModes {
			if pm == m {
				return true
			}
		}
		return false
	}
	if hasMode(PresentModeMailbox) {
		return PresentModeMailbox
	}
	if hasMode(PresentModeImmediate) {
		return PresentModeImmediate
	}
	return PresentModeFIFO
}

// ChooseExtent clamps the caller's requested width/height into the
// surface's [min,max] extent range, falling back to the surface's current
// extent when the requested size is zero (e.g. minimized window).
func ChooseExtent(caps SurfaceCaps, requestedW, requestedH uint32) (uint32, uint32) {
	w, h := requestedW, requestedH
	if w == 0 || h == 0 {
		w, h = caps.CurrentExtentW, caps.CurrentExtentH
	}
	if w < caps.MinExtentW {
		w = caps.MinExtentW
	}
	if caps.MaxExtentW != 0 && w > caps.MaxExtentW {
		w = caps.MaxExtentW
	}
	if h < caps.MinExtentH {
		h = caps.MinExtentH
	}
	if caps.MaxExtentH != 0 && h > caps.MaxExtentH {
		h = caps.MaxExtentH
	}
	return w, h
}

// ChooseImageCount requests one more image than the surface minimum (to
// avoid stalling on the driver while it owns an image), clamped to the
// surface maximum when one is reported.
func ChooseImageCount(caps SurfaceCaps) uint32 {
	count := caps.MinImageCount + 1
	if caps.MaxImageCount != 0 && count > caps.MaxImageCount {
		count = caps.MaxImageCount
	}
	return count
}

// Swapchain is the bootstrap result: the chosen format/present-mode/extent,
// the per-image texture views, and the main render pass built against
// them. CurrentImageIndex is updated by AcquireNextImage and consumed by
// RenderPass.CurrentFramebuffer.
type Swapchain struct {
	Format      gputypes.TextureFormat
	PresentMode PresentMode
	Width       uint32
	Height      uint32
	ImageViews  []Handle[TextureMarker]

	CurrentImageIndex uint32

	// MainPass is the lazily-created single-subpass, single-color-target
	// render pass layout used for the main swapchain-backed pass; a
	// recreate that keeps the same format reuses the previous swapchain's
	// layout instead of the freshly built one.
	MainPass *RenderPassLayout
}

// BuildSwapchainImageViews creates one texture view per swapchain image.
// It is a function type rather than a direct call so the core stays
// backend-agnostic.
type BuildSwapchainImageViews func(format gputypes.TextureFormat, width, height, imageCount uint32) ([]Handle[TextureMarker], error)

// DestroySwapchainResources releases a swapchain's image views (and any
// backend state tied to them). Queued through the garbage list on
// recreate, called directly on final teardown.
type DestroySwapchainResources func(views []Handle[TextureMarker])

// mainRenderPassLayout returns the lazily-built single-color-attachment,
// single-subpass layout used by the main pass, returning existing when it
// is non-nil. The layout records only the attachment format and subpass
// topology; the present-src final usage is set by the RenderPass's
// AttachmentOps built over it.
func mainRenderPassLayout(existing *RenderPassLayout, format gputypes.TextureFormat) *RenderPassLayout {
	if existing != nil {
		return existing
	}
	layout := CompileRenderPassLayout(RenderPassLayoutDesc{
		RenderTargets: []RenderTargetDesc{{Format: format}},
		Subpasses: []Subpass{
			{RenderTargets: []uint32{0}},
		},
	})
	return &layout
}

// CreateSwapchain bootstraps a presentation swapchain: choose format,
// present mode, and extent, build the requested number of images and
// their views, and lazily build the main render pass layout.
func CreateSwapchain(caps SurfaceCaps, requestedW, requestedH uint32, vsync bool, build BuildSwapchainImageViews) (*Swapchain, error) {
	format, err := ChooseSwapchainFormat(caps)
	if err != nil {
		return nil, err
	}
	mode := ChoosePresentMode(caps, vsync)
	w, h := ChooseExtent(caps, requestedW, requestedH)
	imageCount := ChooseImageCount(caps)

	views, err := build(format, w, h, imageCount)
	if err != nil {
		return nil, fmt.Errorf("core: create_swapchain: %w", err)
	}

	sc := &Swapchain{
		Format:      format,
		PresentMode: mode,
		Width:       w,
		Height:      h,
		ImageViews:  views,
	}
	sc.MainPass = mainRenderPassLayout(nil, format)
	return sc, nil
}

// RecreateSwapchain rebuilds the swapchain after a resize: the old
// swapchain's image views are queued for deletion on the current frame's
// garbage list (never destroyed synchronously; an in-flight frame may
// still be presenting through them), and a new swapchain is built in its
// place. When the new swapchain has the same format as the old one, the
// old main render pass layout is carried over; otherwise the new
// swapchain keeps the layout built for its own format.
func RecreateSwapchain(old *Swapchain, garbage *GarbageList, caps SurfaceCaps, requestedW, requestedH uint32, vsync bool, build BuildSwapchainImageViews, destroy DestroySwapchainResources) (*Swapchain, error) {
	next, err := CreateSwapchain(caps, requestedW, requestedH, vsync, build)
	if err != nil {
		return nil, err
	}
	if old != nil {
		oldViews := old.ImageViews
		garbage.QueueDestroy("swapchain-views", func() { destroy(oldViews) })
		if old.Format == next.Format {
			next.MainPass = old.MainPass
		}
	}
	return next, nil
}

// AcquireNextImage records which swapchain image the next present will
// target. The actual driver acquire (vkAcquireNextImageKHR-equivalent,
// including the out-of-date/suboptimal result that should trigger
// RecreateSwapchain) is the caller's responsibility; this just threads the
// result through.
func (s *Swapchain) AcquireNextImage(index uint32) {
	s.CurrentImageIndex = index
}
