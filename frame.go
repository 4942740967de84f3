package gfxcore

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/gfxcore/core"
	"github.com/gogpu/gfxcore/hal"
)

// BeginFrame advances the frame ring: it waits on the new frame's
// in-flight fence (proving its previous GPU work finished), runs that
// frame's garbage collector, resets its command and transient descriptor
// pools, and recycles its command buffers. It returns the ring index of
// the frame now open for recording.
func (d *Device) BeginFrame() (uint32, error) {
	_, err := d.frames.BeginFrame(func(fence uint64) error {
		if err := d.hal.WaitFence(fence); err != nil {
			return err
		}
		return d.hal.ResetFence(fence)
	})
	if err != nil {
		return 0, err
	}

	fs := d.currentFrameDriver()
	if err := d.hal.ResetCommandPool(fs.commandPool); err != nil {
		return 0, err
	}
	if err := d.hal.ResetDescriptorPool(fs.descriptorPool); err != nil {
		return 0, err
	}

	d.insideFrame = true
	return d.frames.CurrentFrameIndex(), nil
}

// GetCurrentFrameIndex returns the ring index of the frame being
// recorded.
func (d *Device) GetCurrentFrameIndex() uint32 {
	return d.frames.CurrentFrameIndex()
}

// GetFramesInFlight returns the ring depth N.
func (d *Device) GetFramesInFlight() int {
	return d.frames.FramesInFlight()
}

// --- swapchain --------------------------------------------------------

// CreateSwapchain builds the presentation swapchain against the device's
// surface: the core bootstrap chooses format, present mode, extent, and
// image count from the surface caps, and each swapchain image view is
// registered as a texture handle. The canonical main render pass layout
// is compiled lazily on first creation.
func (d *Device) CreateSwapchain(width, height uint32) error {
	if d.surface == 0 {
		return fmt.Errorf("gfxcore: device has no surface (create it with a Surface to present)")
	}
	caps, err := d.hal.SurfaceCaps(d.surface)
	if err != nil {
		return err
	}

	sc, err := core.CreateSwapchain(caps, width, height, d.g.vsync, d.buildSwapchainViews(caps, 0))
	if err != nil {
		return err
	}
	d.swapchain = sc

	if d.mainPass.IsNull() {
		if err := d.createMainPass(); err != nil {
			return err
		}
	}
	return nil
}

// buildSwapchainViews returns the bootstrap hook that creates the driver
// swapchain (chaining oldSwapchain for seamless recreation) and registers
// each image view as a texture handle.
func (d *Device) buildSwapchainViews(caps core.SurfaceCaps, oldSwapchain uint64) core.BuildSwapchainImageViews {
	return func(format gputypes.TextureFormat, width, height, imageCount uint32) ([]TextureHandle, error) {
		raw, views, err := d.hal.CreateSwapchain(&hal.SwapchainDesc{
			Surface:     d.surface,
			Format:      format,
			PresentMode: core.ChoosePresentMode(caps, d.g.vsync),
			Width:       width,
			Height:      height,
			ImageCount:  imageCount,
		}, oldSwapchain)
		if err != nil {
			return nil, err
		}
		d.swapchainRaw = raw

		handles := make([]TextureHandle, len(views))
		for i, view := range views {
			handles[i] = d.textures.New(
				textureHot{view: view},
				textureCold{
					desc: TextureDesc{
						Label:  fmt.Sprintf("swapchain-image-%d", i),
						Width:  width,
						Height: height,
						Format: format,
						Usage:  gputypes.TextureUsageRenderAttachment,
					},
					original: false, // the swapchain owns the images
				},
			)
		}
		return handles, nil
	}
}

// createMainPass compiles the single-color-target main render pass over
// the swapchain's image views, presenting on completion.
func (d *Device) createMainPass() error {
	sc := d.swapchain
	layoutHandle, err := d.CreateRenderPassLayout(core.RenderPassLayoutDesc{
		RenderTargets: []core.RenderTargetDesc{{Format: sc.Format}},
		Subpasses:     []core.Subpass{{RenderTargets: []uint32{0}}},
	})
	if err != nil {
		return err
	}

	viewsPerSlot := make([][]TextureHandle, len(sc.ImageViews))
	for i, view := range sc.ImageViews {
		viewsPerSlot[i] = []TextureHandle{view}
	}
	d.mainPass, err = d.CreateRenderPass(&RenderPassDesc{
		Label:  "main",
		Layout: layoutHandle,
		Ops: []core.AttachmentOps{{
			LoadOp:     gputypes.LoadOpClear,
			StoreOp:    gputypes.StoreOpStore,
			FinalUsage: core.UsagePresentSrc,
		}},
		Width:        sc.Width,
		Height:       sc.Height,
		ViewsPerSlot: viewsPerSlot,
		Swapchain:    true,
	})
	return err
}

// MainRenderPass returns the canonical swapchain-backed render pass, null
// until the first CreateSwapchain.
func (d *Device) MainRenderPass() RenderPassHandle {
	return d.mainPass
}

// RecreateSwapchain rebuilds the swapchain after a resize or out-of-date
// report. The old image-view handles go stale immediately; the old driver
// objects are destroyed only after the frame delay.
func (d *Device) RecreateSwapchain(width, height uint32) error {
	caps, err := d.hal.SurfaceCaps(d.surface)
	if err != nil {
		return err
	}

	old := d.swapchain
	oldRaw := d.swapchainRaw

	// Bump the old view handles' generations now, collecting the driver
	// views for deferred destruction.
	var oldViews []uint64
	if old != nil {
		for _, vh := range old.ImageViews {
			if hot, _, ok := d.textures.QueueFree(vh); ok {
				oldViews = append(oldViews, hot.view)
			}
		}
	}

	next, err := core.RecreateSwapchain(old, d.garbage(), caps, width, height, d.g.vsync,
		d.buildSwapchainViews(caps, oldRaw),
		func(_ []TextureHandle) {
			for _, v := range oldViews {
				d.hal.DestroyTextureView(v)
			}
			if oldRaw != 0 {
				d.hal.DestroySwapchain(oldRaw)
			}
		})
	if err != nil {
		return err
	}
	d.swapchain = next

	// Rebuild the main pass's framebuffers against the fresh views.
	if !d.mainPass.IsNull() {
		if cold, ok := d.renderPasses.Resolve(d.mainPass); ok {
			cold.pass.Swapchain = next
		}
		viewsPerSlot := make([][]TextureHandle, len(next.ImageViews))
		for i, view := range next.ImageViews {
			viewsPerSlot[i] = []TextureHandle{view}
		}
		if err := d.UpdateAttachments(d.mainPass, next.Width, next.Height, viewsPerSlot); err != nil {
			return err
		}
	}
	return nil
}

// AcquireSwapchainImage blocks for the next presentable image. It returns
// false, after recreating the swapchain, when the surface is out of
// date, in which case the caller should skip the frame.
func (d *Device) AcquireSwapchainImage() (bool, error) {
	if d.swapchain == nil {
		return false, fmt.Errorf("gfxcore: no swapchain (call CreateSwapchain first)")
	}
	f := d.frames.Current()
	index, outdated, err := d.hal.AcquireImage(d.swapchainRaw, f.ImageAvailable)
	if err != nil {
		if errors.Is(err, ErrSwapchainOutOfDate) {
			outdated = true
		} else {
			return false, err
		}
	}
	if outdated {
		if err := d.RecreateSwapchain(d.swapchain.Width, d.swapchain.Height); err != nil {
			return false, err
		}
		return false, nil
	}
	d.swapchain.AcquireNextImage(index)
	return true, nil
}

// SubmitInfo carries the caller's timeline-semaphore waits and signals
// for one submission.
type SubmitInfo struct {
	WaitSemaphores   []SemaphoreOp
	SignalSemaphores []SemaphoreOp
}

// SemaphoreOp pairs a timeline semaphore with the value to wait for or
// signal.
type SemaphoreOp struct {
	Semaphore SemaphoreHandle
	Value     uint64
}

func (d *Device) timelineOps(ops []SemaphoreOp) ([]hal.SemaphoreOp, error) {
	out := make([]hal.SemaphoreOp, 0, len(ops))
	for _, op := range ops {
		hot, ok := d.semaphores.ResolveHot(op.Semaphore)
		if !ok {
			return nil, ErrStaleHandle
		}
		out = append(out, hal.SemaphoreOp{Semaphore: hot.raw, Value: op.Value, Timeline: true})
	}
	return out, nil
}

// Present submits cmd with the frame's in-flight fence, waiting on the
// image-available semaphore plus any caller waits, signaling
// render-finished plus any caller signals, then queues the present. It
// returns false, after recreating the swapchain, when the surface is out
// of date.
func (d *Device) Present(cmd *CommandBuffer, info *SubmitInfo) (bool, error) {
	if d.swapchain == nil {
		return false, fmt.Errorf("gfxcore: no swapchain to present to")
	}
	f := d.frames.Current()

	waits := []hal.SemaphoreOp{{Semaphore: f.ImageAvailable}}
	signals := []hal.SemaphoreOp{{Semaphore: f.RenderFinished}}
	if info != nil {
		extraWaits, err := d.timelineOps(info.WaitSemaphores)
		if err != nil {
			return false, err
		}
		extraSignals, err := d.timelineOps(info.SignalSemaphores)
		if err != nil {
			return false, err
		}
		waits = append(waits, extraWaits...)
		signals = append(signals, extraSignals...)
	}

	if err := d.hal.Submit([]uint64{cmd.raw}, waits, signals, f.InFlightFence); err != nil {
		return false, err
	}
	core.SubmitCommandBuffer(f, cmd.rec, func() {})
	d.insideFrame = false

	outdated, err := d.hal.Present(d.swapchainRaw, d.swapchain.CurrentImageIndex, f.RenderFinished)
	if err != nil && !errors.Is(err, ErrSwapchainOutOfDate) {
		return false, err
	}
	if outdated || errors.Is(err, ErrSwapchainOutOfDate) {
		if err := d.RecreateSwapchain(d.swapchain.Width, d.swapchain.Height); err != nil {
			return false, err
		}
		return false, nil
	}
	return true, nil
}

// --- dynamic uniform ring ---------------------------------------------

// DynamicAllocation is a transient per-draw uniform range: the block
// index selects the descriptor set, ByteOffset is the dynamic offset, and
// HostPtr is the mapped bytes to write into.
type DynamicAllocation = core.DynamicAllocation

// AllocateDynamicData returns size bytes of transient uniform data in the
// current frame's dynamic-uniform ring, growing the block list on demand.
// size must not exceed the configured per-allocation maximum.
func (d *Device) AllocateDynamicData(size uint64) (DynamicAllocation, error) {
	return core.AllocateDynamicData(d.dynCfg, d.frames.Current(), size, d.newDynamicBlock)
}

// newDynamicBlock creates one dynamic-uniform block: a host-visible
// uniform buffer plus its own descriptor set bound with a single
// dynamic-offset binding, so any allocation in the block is addressed by
// descriptor + offset.
func (d *Device) newDynamicBlock(bufferIndex int, size uint64) (*core.DynamicUniformBlock, error) {
	label := fmt.Sprintf("dynamic-uniform-%d", bufferIndex)
	buf, err := d.hal.CreateBuffer(size, gputypes.BufferUsageUniform|gputypes.BufferUsageCopySrc, label)
	if err != nil {
		return nil, err
	}

	alloc, err := d.AllocateMemory(size, MemoryModeCPU, 0, label)
	if err != nil {
		d.hal.DestroyBuffer(buf)
		return nil, err
	}
	if err := d.hal.BindBufferMemory(buf, alloc.DriverHandle, 0); err != nil {
		d.FreeMemory(alloc)
		d.hal.DestroyBuffer(buf)
		return nil, err
	}
	d.dynAllocations = append(d.dynAllocations, alloc)

	set, err := d.hal.AllocateDescriptorSet(d.persistentPool, d.dynLayout)
	if err != nil {
		d.hal.DestroyBuffer(buf)
		return nil, err
	}
	d.hal.UpdateDescriptorSet(set, []hal.DescriptorWrite{{
		Slot:   0,
		Type:   hal.BindingUniformBufferDynamic,
		Buffer: buf,
		Range:  d.dynCfg.MaxAllocationSize,
	}})

	return &core.DynamicUniformBlock{
		BufferIndex:   bufferIndex,
		DriverBuffer:  buf,
		HostPtr:       alloc.HostPtr,
		Capacity:      size,
		DescriptorSet: set,
	}, nil
}

// --- timeline semaphores ----------------------------------------------

// CreateSemaphore creates a timeline semaphore starting at zero.
func (d *Device) CreateSemaphore() (SemaphoreHandle, error) {
	raw, err := d.hal.CreateTimelineSemaphore(0)
	if err != nil {
		return 0, err
	}
	return d.semaphores.New(semaphoreHot{raw: raw}, semaphoreCold{}), nil
}

// QueueSemaphoreForDeletion queues the semaphore on the garbage list.
func (d *Device) QueueSemaphoreForDeletion(h SemaphoreHandle) {
	hot, _, ok := d.semaphores.QueueFree(h)
	if !ok {
		return
	}
	raw := hot.raw
	d.garbage().QueueDestroy("semaphore", func() { d.hal.DestroySemaphore(raw) })
}

// SignalSemaphore signals the semaphore to value from the host. Values
// must be monotonically increasing.
func (d *Device) SignalSemaphore(h SemaphoreHandle, value uint64) error {
	hot, ok := d.semaphores.ResolveHot(h)
	if !ok {
		return ErrStaleHandle
	}
	cold, _ := d.semaphores.Resolve(h)
	if value <= cold.lastKnown {
		return fmt.Errorf("gfxcore: semaphore signal value %d is not greater than %d", value, cold.lastKnown)
	}
	if err := d.hal.SignalSemaphore(hot.raw, value); err != nil {
		return err
	}
	cold.lastKnown = value
	return nil
}

// WaitSemaphore blocks on the host until the semaphore reaches value.
func (d *Device) WaitSemaphore(h SemaphoreHandle, value uint64) error {
	hot, ok := d.semaphores.ResolveHot(h)
	if !ok {
		return ErrStaleHandle
	}
	if err := d.hal.WaitSemaphore(hot.raw, value); err != nil {
		return err
	}
	cold, _ := d.semaphores.Resolve(h)
	if value > cold.lastKnown {
		cold.lastKnown = value
	}
	return nil
}

// GetSemaphoreValue returns the semaphore's last completed value.
func (d *Device) GetSemaphoreValue(h SemaphoreHandle) (uint64, error) {
	hot, ok := d.semaphores.ResolveHot(h)
	if !ok {
		return 0, ErrStaleHandle
	}
	value, err := d.hal.SemaphoreValue(hot.raw)
	if err != nil {
		return 0, err
	}
	cold, _ := d.semaphores.Resolve(h)
	if value > cold.lastKnown {
		cold.lastKnown = value
	}
	return value, nil
}
