// Package noop is the conformance-sink backend: an immediate-mode,
// in-memory implementation of the hal trait. Buffers and memory blocks
// are real byte slices and copy commands execute eagerly on the host, so
// the frame scheduler, deletion ring, and copy paths can be driven
// end-to-end without a GPU. It is not a rendering path: draws and
// dispatches do nothing.
package noop

import (
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/gfxcore/core"
	"github.com/gogpu/gfxcore/hal"
)

func init() {
	hal.Register(&backend{})
}

type backend struct{}

var (
	_ hal.Backend = (*backend)(nil)
	_ hal.Device  = (*device)(nil)
)

func (*backend) Name() string { return "noop" }

func (*backend) Enumerate() ([]hal.AdapterInfo, error) {
	return []hal.AdapterInfo{{Name: "noop conformance device", Backend: "noop"}}, nil
}

func (*backend) CreateSurface(_, _ uintptr) (uint64, error) { return 1, nil }

func (*backend) DestroySurface(uint64) {}

func (*backend) Open(adapterIndex int, _ uint64) (hal.Device, error) {
	if adapterIndex != 0 {
		return nil, fmt.Errorf("noop: adapter index %d out of range", adapterIndex)
	}
	return newDevice(), nil
}

type buffer struct {
	size uint64
	// data aliases the bound memory block, nil until BindBufferMemory.
	data []byte
}

type texture struct {
	desc hal.TextureDesc
	// mips holds RGBA8 pixel bytes per mip level, allocated on bind.
	mips [][]byte
}

type semaphore struct {
	timeline bool
	value    uint64
}

type commandBuffer struct {
	recording bool
	// inRenderPass mirrors the driver-side render-pass scope so misuse
	// (recording a draw outside a pass) surfaces in conformance runs.
	inRenderPass bool
}

type swapchain struct {
	desc  hal.SwapchainDesc
	views []uint64
	next  uint32
}

// device is the immediate-mode conformance device. Handles come from one
// shared monotonic counter. Buffers, textures, views, memory, semaphores,
// fences, command buffers and swapchains each have their own map, so a
// handle of another kind does not resolve in them; the remaining opaque
// kinds share the descriptors set.
type device struct {
	nextHandle uint64

	buffers     map[uint64]*buffer
	textures    map[uint64]*texture
	views       map[uint64]uint64 // view handle -> texture handle
	memory      map[uint64][]byte
	semaphores  map[uint64]*semaphore
	fences      map[uint64]bool
	cmdBuffers  map[uint64]*commandBuffer
	swapchains  map[uint64]*swapchain
	descriptors map[uint64]struct{} // layouts, pools, sets, pipelines, passes, framebuffers

	allocatedMemory int
}

func newDevice() *device {
	return &device{
		buffers:     map[uint64]*buffer{},
		textures:    map[uint64]*texture{},
		views:       map[uint64]uint64{},
		memory:      map[uint64][]byte{},
		semaphores:  map[uint64]*semaphore{},
		fences:      map[uint64]bool{},
		cmdBuffers:  map[uint64]*commandBuffer{},
		swapchains:  map[uint64]*swapchain{},
		descriptors: map[uint64]struct{}{},
	}
}

func (d *device) handle() uint64 {
	d.nextHandle++
	return d.nextHandle
}

func (d *device) opaque() uint64 {
	h := d.handle()
	d.descriptors[h] = struct{}{}
	return h
}

// LiveMemoryBlocks reports how many driver memory blocks are currently
// allocated. Conformance tests use it to assert the deletion ring frees
// exactly once.
func (d *device) LiveMemoryBlocks() int { return d.allocatedMemory }

// --- sync -------------------------------------------------------------

func (d *device) CreateFence(signaled bool) (uint64, error) {
	h := d.handle()
	d.fences[h] = signaled
	return h, nil
}

func (d *device) DestroyFence(fence uint64) { delete(d.fences, fence) }

// WaitFence returns immediately: all noop GPU work completes at submit.
func (d *device) WaitFence(fence uint64) error {
	if _, ok := d.fences[fence]; !ok {
		return fmt.Errorf("noop: wait on unknown fence %d", fence)
	}
	return nil
}

func (d *device) ResetFence(fence uint64) error {
	if _, ok := d.fences[fence]; !ok {
		return fmt.Errorf("noop: reset of unknown fence %d", fence)
	}
	d.fences[fence] = false
	return nil
}

func (d *device) CreateBinarySemaphore() (uint64, error) {
	h := d.handle()
	d.semaphores[h] = &semaphore{}
	return h, nil
}

func (d *device) CreateTimelineSemaphore(initialValue uint64) (uint64, error) {
	h := d.handle()
	d.semaphores[h] = &semaphore{timeline: true, value: initialValue}
	return h, nil
}

func (d *device) DestroySemaphore(sem uint64) { delete(d.semaphores, sem) }

func (d *device) SignalSemaphore(sem, value uint64) error {
	s, ok := d.semaphores[sem]
	if !ok || !s.timeline {
		return fmt.Errorf("noop: signal on unknown or non-timeline semaphore %d", sem)
	}
	if value > s.value {
		s.value = value
	}
	return nil
}

// WaitSemaphore returns once the value is reached; since signals apply
// eagerly, an unreached value is a deadlock in the caller's schedule and
// reported as an error instead of blocking forever.
func (d *device) WaitSemaphore(sem, value uint64) error {
	s, ok := d.semaphores[sem]
	if !ok || !s.timeline {
		return fmt.Errorf("noop: wait on unknown or non-timeline semaphore %d", sem)
	}
	if s.value < value {
		return fmt.Errorf("noop: wait for %d on semaphore at %d would never complete", value, s.value)
	}
	return nil
}

func (d *device) SemaphoreValue(sem uint64) (uint64, error) {
	s, ok := d.semaphores[sem]
	if !ok {
		return 0, fmt.Errorf("noop: value of unknown semaphore %d", sem)
	}
	return s.value, nil
}

// --- memory -----------------------------------------------------------

func (d *device) AllocateDriverMemory(_ uint32, size, _ uint64, mode core.MemoryMode, _ string) (uint64, []byte, uint32, error) {
	h := d.handle()
	block := make([]byte, size)
	d.memory[h] = block
	d.allocatedMemory++
	if mode == core.MemoryGPU {
		// Device-local only: no host pointer, but the bytes still back
		// bound resources so copies work.
		return h, nil, 0, nil
	}
	return h, block, 0, nil
}

func (d *device) FreeDriverMemory(handle uint64) {
	if _, ok := d.memory[handle]; ok {
		delete(d.memory, handle)
		d.allocatedMemory--
	}
}

// --- resources --------------------------------------------------------

func (d *device) CreateBuffer(size uint64, _ gputypes.BufferUsage, _ string) (uint64, error) {
	h := d.handle()
	d.buffers[h] = &buffer{size: size}
	return h, nil
}

func (d *device) DestroyBuffer(buf uint64) { delete(d.buffers, buf) }

func (d *device) BufferMemoryRequirements(buf uint64) (uint64, uint64, uint32) {
	b, ok := d.buffers[buf]
	if !ok {
		return 0, 0, 0
	}
	return b.size, 16, ^uint32(0)
}

func (d *device) BindBufferMemory(buf, memory uint64, offset uint64) error {
	b, ok := d.buffers[buf]
	if !ok {
		return fmt.Errorf("noop: bind to unknown buffer %d", buf)
	}
	block, ok := d.memory[memory]
	if !ok {
		return fmt.Errorf("noop: bind of unknown memory %d", memory)
	}
	if offset+b.size > uint64(len(block)) {
		return fmt.Errorf("noop: binding %d bytes at offset %d exceeds block of %d", b.size, offset, len(block))
	}
	b.data = block[offset : offset+b.size]
	return nil
}

func (d *device) CreateTexture(desc *hal.TextureDesc) (uint64, error) {
	h := d.handle()
	d.textures[h] = &texture{desc: *desc}
	return h, nil
}

func (d *device) DestroyTexture(tex uint64) { delete(d.textures, tex) }

func (d *device) TextureMemoryRequirements(tex uint64) (uint64, uint64, uint32) {
	t, ok := d.textures[tex]
	if !ok {
		return 0, 0, 0
	}
	var total uint64
	w, h := t.desc.Width, t.desc.Height
	for mip := uint32(0); mip < max32(t.desc.MipLevels, 1); mip++ {
		total += uint64(w) * uint64(h) * 4
		w, h = halve(w), halve(h)
	}
	return total, 16, ^uint32(0)
}

func (d *device) BindTextureMemory(tex, memory uint64, _ uint64) error {
	t, ok := d.textures[tex]
	if !ok {
		return fmt.Errorf("noop: bind to unknown texture %d", tex)
	}
	if _, ok := d.memory[memory]; !ok {
		return fmt.Errorf("noop: bind of unknown memory %d", memory)
	}
	t.allocateMips()
	return nil
}

// allocateMips sizes one RGBA8 pixel array per mip level.
func (t *texture) allocateMips() {
	levels := max32(t.desc.MipLevels, 1)
	t.mips = make([][]byte, levels)
	w, h := t.desc.Width, t.desc.Height
	for mip := uint32(0); mip < levels; mip++ {
		t.mips[mip] = make([]byte, w*h*4)
		w, h = halve(w), halve(h)
	}
}

func (d *device) CreateTextureView(tex uint64, _ *hal.TextureViewDesc) (uint64, error) {
	if _, ok := d.textures[tex]; !ok {
		return 0, fmt.Errorf("noop: view of unknown texture %d", tex)
	}
	h := d.handle()
	d.views[h] = tex
	return h, nil
}

func (d *device) DestroyTextureView(view uint64) { delete(d.views, view) }

func (d *device) CreateSampler(_ *hal.SamplerDesc) (uint64, error) { return d.opaque(), nil }
func (d *device) DestroySampler(sampler uint64)                    { delete(d.descriptors, sampler) }

func (d *device) CreateShaderModule(spirv []byte, _ string) (uint64, error) {
	if len(spirv) == 0 || len(spirv)%4 != 0 {
		return 0, fmt.Errorf("noop: shader bytecode must be non-empty and word-aligned, got %d bytes", len(spirv))
	}
	return d.opaque(), nil
}

func (d *device) DestroyShaderModule(module uint64) { delete(d.descriptors, module) }

// --- render passes / framebuffers -------------------------------------

func (d *device) CreateRenderPass(layout *core.RenderPassLayout, ops []core.AttachmentOps) (uint64, error) {
	if ops != nil && len(ops) != layout.AttachmentCount {
		return 0, fmt.Errorf("noop: %d attachment ops for %d attachments", len(ops), layout.AttachmentCount)
	}
	return d.opaque(), nil
}

func (d *device) DestroyRenderPass(pass uint64) { delete(d.descriptors, pass) }

func (d *device) CreateFramebuffer(_ uint64, _ []uint64, _, _ uint32) (uint64, error) {
	return d.opaque(), nil
}

func (d *device) DestroyFramebuffer(fb uint64) { delete(d.descriptors, fb) }

// --- descriptors / pipelines ------------------------------------------

func (d *device) CreateBindGroupLayout(_ []hal.LayoutBinding) (uint64, error) { return d.opaque(), nil }
func (d *device) DestroyBindGroupLayout(layout uint64)                        { delete(d.descriptors, layout) }
func (d *device) CreatePipelineLayout(_ []uint64) (uint64, error)             { return d.opaque(), nil }
func (d *device) DestroyPipelineLayout(layout uint64)                         { delete(d.descriptors, layout) }

func (d *device) CreateDescriptorPool(_ uint32, _ bool) (uint64, error) { return d.opaque(), nil }
func (d *device) ResetDescriptorPool(pool uint64) error {
	if _, ok := d.descriptors[pool]; !ok {
		return fmt.Errorf("noop: reset of unknown descriptor pool %d", pool)
	}
	return nil
}
func (d *device) DestroyDescriptorPool(pool uint64) { delete(d.descriptors, pool) }

func (d *device) AllocateDescriptorSet(pool, _ uint64) (uint64, error) {
	if _, ok := d.descriptors[pool]; !ok {
		return 0, fmt.Errorf("noop: allocation from unknown descriptor pool %d", pool)
	}
	return d.opaque(), nil
}

func (d *device) UpdateDescriptorSet(_ uint64, _ []hal.DescriptorWrite) {}

func (d *device) CreateGraphicsPipeline(desc *hal.GraphicsPipelineDesc) (uint64, error) {
	if desc.VertexModule == 0 {
		return 0, fmt.Errorf("noop: graphics pipeline requires a vertex module")
	}
	return d.opaque(), nil
}

func (d *device) CreateComputePipeline(desc *hal.ComputePipelineDesc) (uint64, error) {
	if desc.Module == 0 {
		return 0, fmt.Errorf("noop: compute pipeline requires a module")
	}
	return d.opaque(), nil
}

func (d *device) DestroyPipeline(pipeline uint64) { delete(d.descriptors, pipeline) }

// --- command pools / buffers ------------------------------------------

func (d *device) CreateCommandPool() (uint64, error) { return d.opaque(), nil }
func (d *device) ResetCommandPool(pool uint64) error {
	if _, ok := d.descriptors[pool]; !ok {
		return fmt.Errorf("noop: reset of unknown command pool %d", pool)
	}
	return nil
}
func (d *device) DestroyCommandPool(pool uint64) { delete(d.descriptors, pool) }

func (d *device) AllocateCommandBuffer(pool uint64) (uint64, error) {
	if _, ok := d.descriptors[pool]; !ok {
		return 0, fmt.Errorf("noop: allocation from unknown command pool %d", pool)
	}
	h := d.handle()
	d.cmdBuffers[h] = &commandBuffer{}
	return h, nil
}

func (d *device) BeginCommandBuffer(cb uint64, _ bool) error {
	c, ok := d.cmdBuffers[cb]
	if !ok {
		return fmt.Errorf("noop: begin of unknown command buffer %d", cb)
	}
	c.recording = true
	return nil
}

func (d *device) EndCommandBuffer(cb uint64) error {
	c, ok := d.cmdBuffers[cb]
	if !ok || !c.recording {
		return fmt.Errorf("noop: end of command buffer %d that is not recording", cb)
	}
	if c.inRenderPass {
		return fmt.Errorf("noop: command buffer %d ended with a render pass still open", cb)
	}
	c.recording = false
	return nil
}

func (d *device) ResetCommandBuffer(cb uint64) error {
	c, ok := d.cmdBuffers[cb]
	if !ok {
		return fmt.Errorf("noop: reset of unknown command buffer %d", cb)
	}
	c.recording = false
	c.inRenderPass = false
	return nil
}

func (d *device) Submit(_ []uint64, _, signals []hal.SemaphoreOp, fence uint64) error {
	// Everything already executed at record time; completing the
	// submission means signaling.
	for _, s := range signals {
		if s.Timeline {
			if err := d.SignalSemaphore(s.Semaphore, s.Value); err != nil {
				return err
			}
		}
	}
	if fence != 0 {
		d.fences[fence] = true
	}
	return nil
}

func (d *device) WaitIdle() error { return nil }

// --- recording (immediate-mode) ---------------------------------------

func (d *device) cmd(cb uint64) *commandBuffer {
	return d.cmdBuffers[cb]
}

func (d *device) CmdBeginRenderPass(cb, _, _ uint64, _, _ uint32, _ []hal.ClearValue) {
	if c := d.cmd(cb); c != nil {
		c.inRenderPass = true
	}
}

func (d *device) CmdNextSubpass(_ uint64) {}

func (d *device) CmdEndRenderPass(cb uint64) {
	if c := d.cmd(cb); c != nil {
		c.inRenderPass = false
	}
}

func (d *device) CmdSetViewport(_ uint64, _, _, _, _, _, _ float32)  {}
func (d *device) CmdSetScissor(_ uint64, _, _ int32, _, _ uint32)    {}
func (d *device) CmdSetDepthBias(_ uint64, _, _, _ float32)          {}
func (d *device) CmdBindPipeline(_, _ uint64, _ bool)                {}
func (d *device) CmdBindVertexBuffer(_ uint64, _ uint32, _, _ uint64) {}

func (d *device) CmdBindIndexBuffer(_, _, _ uint64, _ gputypes.IndexFormat) {}

func (d *device) CmdBindDescriptorSet(_, _ uint64, _ uint32, _ uint64, _ []uint32, _ bool) {}

func (d *device) CmdDraw(_ uint64, _, _, _, _ uint32)                   {}
func (d *device) CmdDrawIndexed(_ uint64, _, _, _ uint32, _ int32, _ uint32) {}
func (d *device) CmdDispatch(_ uint64, _, _, _ uint32)                  {}

func (d *device) CmdCopyBuffer(_, src, dst uint64, regions []hal.BufferCopy) {
	s, sok := d.buffers[src]
	t, tok := d.buffers[dst]
	if !sok || !tok || s.data == nil || t.data == nil {
		return
	}
	for _, r := range regions {
		copy(t.data[r.DstOffset:r.DstOffset+r.Size], s.data[r.SrcOffset:r.SrcOffset+r.Size])
	}
}

func (d *device) CmdCopyBufferToTexture(_, src, dst uint64, regions []hal.BufferTextureCopy) {
	s, sok := d.buffers[src]
	t, tok := d.textures[dst]
	if !sok || !tok || s.data == nil || t.mips == nil {
		return
	}
	for _, r := range regions {
		if int(r.MipLevel) >= len(t.mips) {
			continue
		}
		size := uint64(r.Width) * uint64(r.Height) * 4
		copy(t.mips[r.MipLevel], s.data[r.BufferOffset:r.BufferOffset+size])
	}
}

func (d *device) CmdCopyTextureToBuffer(_, src, dst uint64, regions []hal.BufferTextureCopy) {
	s, sok := d.textures[src]
	t, tok := d.buffers[dst]
	if !sok || !tok || s.mips == nil || t.data == nil {
		return
	}
	for _, r := range regions {
		if int(r.MipLevel) >= len(s.mips) {
			continue
		}
		size := uint64(r.Width) * uint64(r.Height) * 4
		copy(t.data[r.BufferOffset:r.BufferOffset+size], s.mips[r.MipLevel][:size])
	}
}

// CmdBlitTexture box-filters a full 2x-downsample from SrcMip into DstMip,
// the operation generate_mipmaps chains per level.
func (d *device) CmdBlitTexture(_, src, dst uint64, blit *hal.TextureBlit) {
	s, sok := d.textures[src]
	t, tok := d.textures[dst]
	if !sok || !tok || s.mips == nil || t.mips == nil {
		return
	}
	if int(blit.SrcMip) >= len(s.mips) || int(blit.DstMip) >= len(t.mips) {
		return
	}
	srcPix := s.mips[blit.SrcMip]
	dstPix := t.mips[blit.DstMip]
	sw := blit.SrcWidth
	for y := uint32(0); y < blit.DstHeight; y++ {
		for x := uint32(0); x < blit.DstWidth; x++ {
			for ch := uint32(0); ch < 4; ch++ {
				sum := uint32(0)
				for dy := uint32(0); dy < 2; dy++ {
					for dx := uint32(0); dx < 2; dx++ {
						sx := min32(2*x+dx, blit.SrcWidth-1)
						sy := min32(2*y+dy, blit.SrcHeight-1)
						sum += uint32(srcPix[(sy*sw+sx)*4+ch])
					}
				}
				dstPix[(y*blit.DstWidth+x)*4+ch] = byte(sum / 4)
			}
		}
	}
}

func (d *device) CmdPipelineBarrier(_ uint64, _, _ core.PipelineStage, _, _ core.AccessMask) {}

// --- swapchain --------------------------------------------------------

func (d *device) SurfaceCaps(_ uint64) (core.SurfaceCaps, error) {
	return core.SurfaceCaps{
		Formats:        []gputypes.TextureFormat{gputypes.TextureFormatRGBA8Unorm, gputypes.TextureFormatBGRA8Unorm},
		PresentModes:   []core.PresentMode{core.PresentModeFIFO, core.PresentModeMailbox},
		MinImageCount:  2,
		MaxImageCount:  4,
		MinExtentW:     1,
		MinExtentH:     1,
		MaxExtentW:     16384,
		MaxExtentH:     16384,
		CurrentExtentW: 1280,
		CurrentExtentH: 720,
	}, nil
}

func (d *device) CreateSwapchain(desc *hal.SwapchainDesc, _ uint64) (uint64, []uint64, error) {
	sc := &swapchain{desc: *desc}
	for i := uint32(0); i < desc.ImageCount; i++ {
		tex, err := d.CreateTexture(&hal.TextureDesc{
			Width: desc.Width, Height: desc.Height, MipLevels: 1, Layers: 1,
			Format: desc.Format, Usage: gputypes.TextureUsageRenderAttachment,
		})
		if err != nil {
			return 0, nil, err
		}
		view, err := d.CreateTextureView(tex, &hal.TextureViewDesc{Format: desc.Format, MipCount: 1, LayerCount: 1})
		if err != nil {
			return 0, nil, err
		}
		sc.views = append(sc.views, view)
	}
	h := d.handle()
	d.swapchains[h] = sc
	return h, sc.views, nil
}

func (d *device) DestroySwapchain(sc uint64) { delete(d.swapchains, sc) }

func (d *device) AcquireImage(sc, _ uint64) (uint32, bool, error) {
	s, ok := d.swapchains[sc]
	if !ok {
		return 0, false, fmt.Errorf("noop: acquire on unknown swapchain %d", sc)
	}
	idx := s.next
	s.next = (s.next + 1) % uint32(len(s.views))
	return idx, false, nil
}

func (d *device) Present(sc uint64, _ uint32, _ uint64) (bool, error) {
	if _, ok := d.swapchains[sc]; !ok {
		return false, fmt.Errorf("noop: present on unknown swapchain %d", sc)
	}
	return false, nil
}

func (d *device) Destroy() {}

func halve(v uint32) uint32 {
	if v <= 1 {
		return 1
	}
	return v / 2
}

func max32(a, b uint32) uint32 {
	if a > b {
		return a
	}
	return b
}

func min32(a, b uint32) uint32 {
	if a < b {
		return a
	}
	return b
}
