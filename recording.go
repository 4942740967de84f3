package gfxcore

import (
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/gfxcore/core"
	"github.com/gogpu/gfxcore/hal"
)

// CommandBuffer is one in-progress or submitted command buffer. It is
// owned by the frame context it was allocated under and recycled through
// that frame's ready list.
type CommandBuffer struct {
	dev   *Device
	rec   *core.CommandRecording
	raw   uint64
	frame *core.FrameContext
}

// Handle returns the command buffer's pool handle; recycled buffers keep
// their handle across reuse.
func (cb *CommandBuffer) Handle() core.CommandBufferHandle {
	return cb.rec.Handle
}

// BeginCommandRecording pops a reusable command buffer from the current
// frame's ready list (or allocates a fresh one from its command pool)
// and begins recording. Outside a begin_frame/present span the buffer is
// marked one-time-submit.
func (d *Device) BeginCommandRecording() (*CommandBuffer, error) {
	f := d.frames.Current()
	rec, err := core.BeginCommandRecording(f, d.insideFrame, func() (core.CommandBufferHandle, error) {
		raw, err := d.hal.AllocateCommandBuffer(d.currentFrameDriver().commandPool)
		if err != nil {
			return 0, err
		}
		return d.commandBuffers.New(cmdHot{raw: raw}, cmdCold{frame: d.frames.CurrentFrameIndex()}), nil
	})
	if err != nil {
		return nil, err
	}

	hot, ok := d.commandBuffers.ResolveHot(rec.Handle)
	if !ok {
		return nil, ErrStaleHandle
	}
	cmd := &CommandBuffer{dev: d, rec: rec, raw: hot.raw, frame: f}
	if err := d.hal.BeginCommandBuffer(cmd.raw, !rec.InsideFrame()); err != nil {
		return nil, err
	}
	return cmd, nil
}

// EndCommandRecording closes the driver command buffer. It fails if a
// pass is still open.
func (d *Device) EndCommandRecording(cmd *CommandBuffer) error {
	var halErr error
	if err := core.EndCommandRecording(cmd.rec, func() {
		halErr = d.hal.EndCommandBuffer(cmd.raw)
	}); err != nil {
		return err
	}
	return halErr
}

// SubmitCommandBuffer submits with no fence and moves the buffer to the
// frame's pending list. Ordering within a frame is submission order.
func (d *Device) SubmitCommandBuffer(cmd *CommandBuffer, info *SubmitInfo) error {
	var waits, signals []hal.SemaphoreOp
	var err error
	if info != nil {
		if waits, err = d.timelineOps(info.WaitSemaphores); err != nil {
			return err
		}
		if signals, err = d.timelineOps(info.SignalSemaphores); err != nil {
			return err
		}
	}
	if err := d.hal.Submit([]uint64{cmd.raw}, waits, signals, 0); err != nil {
		return err
	}
	core.SubmitCommandBuffer(cmd.frame, cmd.rec, func() {})
	return nil
}

// WaitOnCommandBuffer blocks until the submitted buffer's GPU work has
// completed, then recycles it onto the ready list. Submission carries no
// per-buffer fence, so the wait is a queue idle.
func (d *Device) WaitOnCommandBuffer(cmd *CommandBuffer) error {
	return core.WaitOnCommandBuffer(cmd.frame, cmd.rec, d.hal.WaitIdle)
}

// ReturnCommandBuffer hands a recorded-but-unsubmitted buffer back to its
// frame's ready list.
func (d *Device) ReturnCommandBuffer(cmd *CommandBuffer) error {
	return core.ReturnCommandBuffer(cmd.frame, cmd.rec)
}

// ResetCommandBuffer resets the buffer for re-recording.
func (d *Device) ResetCommandBuffer(cmd *CommandBuffer) error {
	return core.ResetCommandBuffer(cmd.rec, func() error {
		return d.hal.ResetCommandBuffer(cmd.raw)
	})
}

// PipelineBarrier records an explicit barrier between the given stage and
// access scopes, for callers sequencing work outside the typed passes'
// automatic barriers.
func (d *Device) PipelineBarrier(cmd *CommandBuffer, src, dst core.PipelineStage, srcAccess, dstAccess core.AccessMask) {
	d.hal.CmdPipelineBarrier(cmd.raw, src, dst, srcAccess, dstAccess)
}

// --- render pass ------------------------------------------------------

// RenderEncoder records draw commands inside an open render pass.
type RenderEncoder struct {
	cmd *CommandBuffer
	enc *core.RenderEncoder
	// pipelineLayout of the currently bound shader, needed to bind
	// descriptor sets.
	pipelineLayout uint64
}

// BeginRenderPass opens a render pass at subpass 0, setting viewport and
// scissor to the pass dimensions and issuing the clear values recorded at
// pass creation. The framebuffer is chosen by swapchain image for
// presentation passes and by frame index otherwise.
func (d *Device) BeginRenderPass(cmd *CommandBuffer, h RenderPassHandle) (*RenderEncoder, error) {
	hot, ok := d.renderPasses.ResolveHot(h)
	if !ok {
		return nil, ErrStaleHandle
	}
	cold, _ := d.renderPasses.Resolve(h)

	fb := cold.pass.CurrentFramebuffer(d.frames.CurrentFrameIndex())
	if fb == nil {
		return nil, fmt.Errorf("gfxcore: render pass has no framebuffers")
	}

	enc, err := core.BeginRenderPass(cmd.rec, cold.pass,
		func(width, height uint32) {
			d.hal.CmdSetViewport(cmd.raw, 0, 0, float32(width), float32(height), 0, 1)
			d.hal.CmdSetScissor(cmd.raw, 0, 0, width, height)
		},
		func() {
			d.hal.CmdBeginRenderPass(cmd.raw, hot.raw, fb.Driver, cold.pass.Width, cold.pass.Height, cold.clears)
		})
	if err != nil {
		return nil, err
	}
	return &RenderEncoder{cmd: cmd, enc: enc}, nil
}

// NextSubpass advances to the next declared subpass.
func (d *Device) NextSubpass(re *RenderEncoder) error {
	return core.NextSubpass(re.enc, func() { d.hal.CmdNextSubpass(re.cmd.raw) })
}

// EndRenderPass auto-advances through any remaining declared subpasses so
// the driver sees exactly the declared count, then ends the pass.
func (d *Device) EndRenderPass(re *RenderEncoder) error {
	return core.EndRenderPass(re.enc,
		func() { d.hal.CmdNextSubpass(re.cmd.raw) },
		func() { d.hal.CmdEndRenderPass(re.cmd.raw) })
}

// BindShader binds a graphics shader's pipeline.
func (re *RenderEncoder) BindShader(h ShaderHandle) error {
	hot, ok := re.cmd.dev.shaders.ResolveHot(h)
	if !ok {
		return ErrStaleHandle
	}
	re.cmd.dev.hal.CmdBindPipeline(re.cmd.raw, hot.pipeline, false)
	re.pipelineLayout = hot.pipelineLayout
	return nil
}

// BindVertexBuffer binds a vertex buffer to a slot.
func (re *RenderEncoder) BindVertexBuffer(slot uint32, h BufferHandle, offset uint64) error {
	hot, ok := re.cmd.dev.buffers.ResolveHot(h)
	if !ok {
		return ErrStaleHandle
	}
	re.cmd.dev.hal.CmdBindVertexBuffer(re.cmd.raw, slot, hot.raw, offset)
	return nil
}

// BindIndexBuffer binds the index buffer.
func (re *RenderEncoder) BindIndexBuffer(h BufferHandle, offset uint64, format gputypes.IndexFormat) error {
	hot, ok := re.cmd.dev.buffers.ResolveHot(h)
	if !ok {
		return ErrStaleHandle
	}
	re.cmd.dev.hal.CmdBindIndexBuffer(re.cmd.raw, hot.raw, offset, format)
	return nil
}

// BindGraphicsBindGroups binds groups to consecutive slots starting at
// first. All of dynamicOffsets are passed with the last group in groups;
// the earlier groups are bound without dynamic offsets.
func (re *RenderEncoder) BindGraphicsBindGroups(first uint32, groups []BindGroupHandle, dynamicOffsets []uint32) error {
	return re.cmd.dev.bindDescriptorSets(re.cmd, re.pipelineLayout, first, groups, dynamicOffsets, false)
}

// BindDynamicData binds a dynamic-uniform allocation's descriptor set at
// the given slot with its byte offset as the dynamic offset.
func (re *RenderEncoder) BindDynamicData(slot uint32, alloc DynamicAllocation) error {
	f := re.cmd.frame
	if alloc.BufferIndex >= len(f.DynamicBlocks) {
		return fmt.Errorf("gfxcore: dynamic allocation references block %d of %d", alloc.BufferIndex, len(f.DynamicBlocks))
	}
	set := f.DynamicBlocks[alloc.BufferIndex].DescriptorSet
	re.cmd.dev.hal.CmdBindDescriptorSet(re.cmd.raw, re.pipelineLayout, slot, set, []uint32{uint32(alloc.ByteOffset)}, false)
	return nil
}

// SetViewport sets the viewport transformation.
func (re *RenderEncoder) SetViewport(x, y, width, height, minDepth, maxDepth float32) {
	re.cmd.dev.hal.CmdSetViewport(re.cmd.raw, x, y, width, height, minDepth, maxDepth)
}

// SetScissorRegion sets the scissor rectangle.
func (re *RenderEncoder) SetScissorRegion(x, y int32, width, height uint32) {
	re.cmd.dev.hal.CmdSetScissor(re.cmd.raw, x, y, width, height)
}

// SetDepthBias sets the depth bias applied to fragment depth values.
func (re *RenderEncoder) SetDepthBias(constantFactor, clamp, slopeFactor float32) {
	re.cmd.dev.hal.CmdSetDepthBias(re.cmd.raw, constantFactor, clamp, slopeFactor)
}

// Draw draws non-indexed primitives.
func (re *RenderEncoder) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	re.cmd.dev.hal.CmdDraw(re.cmd.raw, vertexCount, instanceCount, firstVertex, firstInstance)
}

// DrawIndexed draws indexed primitives.
func (re *RenderEncoder) DrawIndexed(indexCount, instanceCount, firstIndex uint32, vertexOffset int32, firstInstance uint32) {
	re.cmd.dev.hal.CmdDrawIndexed(re.cmd.raw, indexCount, instanceCount, firstIndex, vertexOffset, firstInstance)
}

// bindDescriptorSets validates and binds bind groups to consecutive
// descriptor slots.
func (d *Device) bindDescriptorSets(cmd *CommandBuffer, pipelineLayout uint64, first uint32, groups []BindGroupHandle, dynamicOffsets []uint32, compute bool) error {
	for i, gh := range groups {
		set, err := d.validateBindGroup(gh)
		if err != nil {
			return err
		}
		var offsets []uint32
		if i == len(groups)-1 {
			offsets = dynamicOffsets
		}
		d.hal.CmdBindDescriptorSet(cmd.raw, pipelineLayout, first+uint32(i), set, offsets, compute)
	}
	return nil
}

// --- draw stream ------------------------------------------------------

// DrawStreamTables resolve the u32 ids a draw stream carries into live
// handles: each stream field indexes its table.
type DrawStreamTables struct {
	Shaders       []ShaderHandle
	BindGroups    []BindGroupHandle
	VertexBuffers []BufferHandle
	IndexBuffers  []BufferHandle
}

// drawStreamExecutor bridges the decoded stream onto the render encoder.
type drawStreamExecutor struct {
	re     *RenderEncoder
	tables *DrawStreamTables
	err    error
}

func (e *drawStreamExecutor) fail(err error) {
	if e.err == nil {
		e.err = err
	}
}

func (e *drawStreamExecutor) BindShader(shader uint32) {
	if int(shader) >= len(e.tables.Shaders) {
		e.fail(fmt.Errorf("gfxcore: draw stream shader id %d out of range", shader))
		return
	}
	if err := e.re.BindShader(e.tables.Shaders[shader]); err != nil {
		e.fail(err)
	}
}

func (e *drawStreamExecutor) BindDynamicBuffer(buffer, offset uint32) {
	if err := e.re.BindDynamicData(dynamicDataSlot, DynamicAllocation{BufferIndex: int(buffer), ByteOffset: uint64(offset)}); err != nil {
		e.fail(err)
	}
}

func (e *drawStreamExecutor) BindBindGroup(slot int, group uint32) {
	if int(group) >= len(e.tables.BindGroups) {
		e.fail(fmt.Errorf("gfxcore: draw stream bind group id %d out of range", group))
		return
	}
	if err := e.re.BindGraphicsBindGroups(uint32(slot), []BindGroupHandle{e.tables.BindGroups[group]}, nil); err != nil {
		e.fail(err)
	}
}

func (e *drawStreamExecutor) BindIndexBuffer(buffer uint32) {
	if int(buffer) >= len(e.tables.IndexBuffers) {
		e.fail(fmt.Errorf("gfxcore: draw stream index buffer id %d out of range", buffer))
		return
	}
	if err := e.re.BindIndexBuffer(e.tables.IndexBuffers[buffer], 0, gputypes.IndexFormatUint32); err != nil {
		e.fail(err)
	}
}

func (e *drawStreamExecutor) BindVertexBuffer(buffer uint32) {
	if int(buffer) >= len(e.tables.VertexBuffers) {
		e.fail(fmt.Errorf("gfxcore: draw stream vertex buffer id %d out of range", buffer))
		return
	}
	if err := e.re.BindVertexBuffer(0, e.tables.VertexBuffers[buffer], 0); err != nil {
		e.fail(err)
	}
}

func (e *drawStreamExecutor) Draw(dc core.DrawCall) {
	if e.err != nil {
		return
	}
	indexCount := dc.Triangles * 3
	if dc.IndexBuffer != core.NonIndexed {
		e.re.DrawIndexed(indexCount, dc.InstanceCount, dc.IndexOffset, int32(dc.VertexOffset), dc.InstanceStart)
	} else {
		e.re.Draw(indexCount, dc.InstanceCount, dc.VertexOffset, dc.InstanceStart)
	}
}

// dynamicDataSlot is the descriptor slot the dynamic-uniform descriptor
// set binds at: the slot after the three regular bind groups.
const dynamicDataSlot = 3

// DrawStream replays an encoded draw stream onto the open render pass,
// binding only the fields each draw re-emits. It returns the number of
// draws issued.
func (re *RenderEncoder) DrawStream(tokens []uint32, tables *DrawStreamTables) (int, error) {
	exec := &drawStreamExecutor{re: re, tables: tables}
	draws := core.ExecuteDrawStream(tokens, exec)
	return draws, exec.err
}

// --- compute pass -----------------------------------------------------

// ComputeEncoder records dispatches inside an open compute pass.
type ComputeEncoder struct {
	cmd            *CommandBuffer
	enc            *core.ComputeEncoder
	pipelineLayout uint64
}

// BeginComputePass opens a compute pass, issuing the entry barrier that
// makes prior vertex/compute reads visible to compute writes.
func (d *Device) BeginComputePass(cmd *CommandBuffer) (*ComputeEncoder, error) {
	enc, err := core.BeginComputePass(cmd.rec, d.barrierFunc(cmd))
	if err != nil {
		return nil, err
	}
	return &ComputeEncoder{cmd: cmd, enc: enc}, nil
}

// EndComputePass issues the inverse barrier and closes the pass.
func (d *Device) EndComputePass(ce *ComputeEncoder) error {
	return core.EndComputePass(ce.enc, d.barrierFunc(ce.cmd))
}

func (d *Device) barrierFunc(cmd *CommandBuffer) core.BarrierFunc {
	return func(src, dst core.PipelineStage, srcAccess, dstAccess core.AccessMask) {
		d.hal.CmdPipelineBarrier(cmd.raw, src, dst, srcAccess, dstAccess)
	}
}

// BindComputeShader binds a compute shader's pipeline.
func (ce *ComputeEncoder) BindComputeShader(h ComputeShaderHandle) error {
	hot, ok := ce.cmd.dev.computeShaders.ResolveHot(h)
	if !ok {
		return ErrStaleHandle
	}
	ce.cmd.dev.hal.CmdBindPipeline(ce.cmd.raw, hot.pipeline, true)
	ce.pipelineLayout = hot.pipelineLayout
	return nil
}

// BindComputeBindGroups binds groups to consecutive slots starting at
// first.
func (ce *ComputeEncoder) BindComputeBindGroups(first uint32, groups []BindGroupHandle, dynamicOffsets []uint32) error {
	return ce.cmd.dev.bindDescriptorSets(ce.cmd, ce.pipelineLayout, first, groups, dynamicOffsets, true)
}

// Dispatch records a compute dispatch.
func (ce *ComputeEncoder) Dispatch(x, y, z uint32) {
	ce.cmd.dev.hal.CmdDispatch(ce.cmd.raw, x, y, z)
}

// --- blit pass --------------------------------------------------------

// BlitEncoder records copies inside an open blit pass.
type BlitEncoder struct {
	cmd *CommandBuffer
	enc *core.BlitEncoder
}

// BeginBlitPass opens a blit pass, issuing the transfer entry barrier.
func (d *Device) BeginBlitPass(cmd *CommandBuffer) (*BlitEncoder, error) {
	enc, err := core.BeginBlitPass(cmd.rec, d.barrierFunc(cmd))
	if err != nil {
		return nil, err
	}
	return &BlitEncoder{cmd: cmd, enc: enc}, nil
}

// EndBlitPass issues the inverse barrier and closes the pass.
func (d *Device) EndBlitPass(be *BlitEncoder) error {
	return core.EndBlitPass(be.enc, d.barrierFunc(be.cmd))
}

// CopyBuffer copies regions between buffers.
func (be *BlitEncoder) CopyBuffer(src, dst BufferHandle, regions []hal.BufferCopy) error {
	srcHot, ok := be.cmd.dev.buffers.ResolveHot(src)
	if !ok {
		return ErrStaleHandle
	}
	dstHot, ok := be.cmd.dev.buffers.ResolveHot(dst)
	if !ok {
		return ErrStaleHandle
	}
	be.cmd.dev.hal.CmdCopyBuffer(be.cmd.raw, srcHot.raw, dstHot.raw, regions)
	return nil
}

// CopyBufferToTexture copies buffer bytes into a texture region.
func (be *BlitEncoder) CopyBufferToTexture(src BufferHandle, dst TextureHandle, regions []hal.BufferTextureCopy) error {
	srcHot, ok := be.cmd.dev.buffers.ResolveHot(src)
	if !ok {
		return ErrStaleHandle
	}
	dstHot, ok := be.cmd.dev.textures.ResolveHot(dst)
	if !ok {
		return ErrStaleHandle
	}
	be.cmd.dev.hal.CmdCopyBufferToTexture(be.cmd.raw, srcHot.raw, dstHot.image, regions)
	return nil
}

// CopyTextureToBuffer copies a texture region back into a buffer,
// typically for host readback.
func (be *BlitEncoder) CopyTextureToBuffer(src TextureHandle, dst BufferHandle, regions []hal.BufferTextureCopy) error {
	srcHot, ok := be.cmd.dev.textures.ResolveHot(src)
	if !ok {
		return ErrStaleHandle
	}
	dstHot, ok := be.cmd.dev.buffers.ResolveHot(dst)
	if !ok {
		return ErrStaleHandle
	}
	be.cmd.dev.hal.CmdCopyTextureToBuffer(be.cmd.raw, srcHot.image, dstHot.raw, regions)
	return nil
}

// GenerateMipmaps records the chained box-downsample blits filling every
// mip level of the texture from the level above it.
func (be *BlitEncoder) GenerateMipmaps(h TextureHandle) error {
	hot, ok := be.cmd.dev.textures.ResolveHot(h)
	if !ok {
		return ErrStaleHandle
	}
	cold, _ := be.cmd.dev.textures.Resolve(h)

	image := hot.image
	return core.GenerateMipmaps(be.enc, cold.desc.Width, cold.desc.Height, int(maxU32(cold.desc.MipLevels, 1)),
		func(srcLevel int, srcW, srcH uint32, dstLevel int, dstW, dstH uint32) {
			be.cmd.dev.hal.CmdBlitTexture(be.cmd.raw, image, image, &hal.TextureBlit{
				SrcMip:    uint32(srcLevel),
				DstMip:    uint32(dstLevel),
				SrcWidth:  srcW,
				SrcHeight: srcH,
				DstWidth:  dstW,
				DstHeight: dstH,
			})
		})
}
