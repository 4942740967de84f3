package vulkan

import (
	"math"
	"runtime"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/gfxcore/core"
	"github.com/gogpu/gfxcore/hal"
	"github.com/gogpu/gfxcore/hal/vulkan/vk"
)

func (d *device_) CreateCommandPool() (uint64, error) {
	info := vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		Flags:            vk.CommandPoolCreateResetCommandBuffer,
		QueueFamilyIndex: d.family,
	}
	var pool uint64
	if err := d.check("vkCreateCommandPool", d.raw, vk.Ptr(&info), 0, vk.Ptr(&pool)); err != nil {
		return 0, err
	}
	return pool, nil
}

func (d *device_) ResetCommandPool(pool uint64) error {
	return d.check("vkResetCommandPool", d.raw, pool, 0)
}

func (d *device_) DestroyCommandPool(pool uint64) {
	_, _ = d.vk.Call("vkDestroyCommandPool", d.raw, pool, 0)
}

func (d *device_) AllocateCommandBuffer(pool uint64) (uint64, error) {
	info := vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        pool,
		Level:              vk.CommandBufferLevelPrimary,
		CommandBufferCount: 1,
	}
	var cb uint64
	if err := d.check("vkAllocateCommandBuffers", d.raw, vk.Ptr(&info), vk.Ptr(&cb)); err != nil {
		return 0, err
	}
	return cb, nil
}

func (d *device_) BeginCommandBuffer(cb uint64, oneTimeSubmit bool) error {
	info := vk.CommandBufferBeginInfo{SType: vk.StructureTypeCommandBufferBeginInfo}
	if oneTimeSubmit {
		info.Flags = vk.CommandBufferUsageOneTimeSubmit
	}
	return d.check("vkBeginCommandBuffer", cb, vk.Ptr(&info))
}

func (d *device_) EndCommandBuffer(cb uint64) error {
	return d.check("vkEndCommandBuffer", cb)
}

func (d *device_) ResetCommandBuffer(cb uint64) error {
	return d.check("vkResetCommandBuffer", cb, 0)
}

// Submit batches cbs into one vkQueueSubmit. Timeline semaphore values
// ride in through a TimelineSemaphoreSubmitInfo chained on pNext; binary
// semaphores contribute zero entries in the value arrays, which the
// driver ignores.
func (d *device_) Submit(cbs []uint64, waits, signals []hal.SemaphoreOp, fence uint64) error {
	waitSems := make([]uint64, len(waits))
	waitValues := make([]uint64, len(waits))
	waitStages := make([]uint32, len(waits))
	for i, w := range waits {
		waitSems[i] = w.Semaphore
		waitValues[i] = w.Value
		waitStages[i] = stageColorAttachment | stageComputeShader | stageTransfer
	}
	signalSems := make([]uint64, len(signals))
	signalValues := make([]uint64, len(signals))
	for i, s := range signals {
		signalSems[i] = s.Semaphore
		signalValues[i] = s.Value
	}

	timeline := vk.TimelineSemaphoreSubmitInfo{
		SType:                     vk.StructureTypeTimelineSemaphoreSubmitInfo,
		WaitSemaphoreValueCount:   uint32(len(waitValues)),
		PWaitSemaphoreValues:      vk.SlicePtr(waitValues),
		SignalSemaphoreValueCount: uint32(len(signalValues)),
		PSignalSemaphoreValues:    vk.SlicePtr(signalValues),
	}

	info := vk.SubmitInfo{
		SType:                vk.StructureTypeSubmitInfo,
		PNext:                vk.Ptr(&timeline),
		WaitSemaphoreCount:   uint32(len(waitSems)),
		PWaitSemaphores:      vk.SlicePtr(waitSems),
		PWaitDstStageMask:    vk.SlicePtr(waitStages),
		CommandBufferCount:   uint32(len(cbs)),
		PCommandBuffers:      vk.SlicePtr(cbs),
		SignalSemaphoreCount: uint32(len(signalSems)),
		PSignalSemaphores:    vk.SlicePtr(signalSems),
	}

	err := d.check("vkQueueSubmit", d.queue, 1, vk.Ptr(&info), fence)
	runtime.KeepAlive(waitSems)
	runtime.KeepAlive(waitValues)
	runtime.KeepAlive(waitStages)
	runtime.KeepAlive(signalSems)
	runtime.KeepAlive(signalValues)
	runtime.KeepAlive(cbs)
	runtime.KeepAlive(&timeline)
	return err
}

// --- recording --------------------------------------------------------

func (d *device_) CmdBeginRenderPass(cb, pass, framebuffer uint64, width, height uint32, clears []hal.ClearValue) {
	vkClears := make([]vk.ClearValue, len(clears))
	for i, c := range clears {
		if c.IsDepth {
			vkClears[i] = vk.ClearValue{math.Float32bits(c.Depth), c.Stencil, 0, 0}
		} else {
			vkClears[i] = vk.ClearValue{
				math.Float32bits(c.Color[0]),
				math.Float32bits(c.Color[1]),
				math.Float32bits(c.Color[2]),
				math.Float32bits(c.Color[3]),
			}
		}
	}
	info := vk.RenderPassBeginInfo{
		SType:           vk.StructureTypeRenderPassBeginInfo,
		RenderPass:      pass,
		Framebuffer:     framebuffer,
		RenderArea:      vk.Rect2D{Extent: vk.Extent2D{Width: width, Height: height}},
		ClearValueCount: uint32(len(vkClears)),
		PClearValues:    vk.SlicePtr(vkClears),
	}
	const subpassContentsInline = 0
	_, _ = d.vk.Call("vkCmdBeginRenderPass", cb, vk.Ptr(&info), subpassContentsInline)
	runtime.KeepAlive(vkClears)
}

func (d *device_) CmdNextSubpass(cb uint64) {
	const subpassContentsInline = 0
	_, _ = d.vk.Call("vkCmdNextSubpass", cb, subpassContentsInline)
}

func (d *device_) CmdEndRenderPass(cb uint64) {
	_, _ = d.vk.Call("vkCmdEndRenderPass", cb)
}

func (d *device_) CmdSetViewport(cb uint64, x, y, width, height, minDepth, maxDepth float32) {
	viewport := vk.Viewport{X: x, Y: y, Width: width, Height: height, MinDepth: minDepth, MaxDepth: maxDepth}
	_, _ = d.vk.Call("vkCmdSetViewport", cb, 0, 1, vk.Ptr(&viewport))
}

func (d *device_) CmdSetScissor(cb uint64, x, y int32, width, height uint32) {
	scissor := vk.Rect2D{
		Offset: vk.Offset2D{X: x, Y: y},
		Extent: vk.Extent2D{Width: width, Height: height},
	}
	_, _ = d.vk.Call("vkCmdSetScissor", cb, 0, 1, vk.Ptr(&scissor))
}

func (d *device_) CmdSetDepthBias(cb uint64, constantFactor, clamp, slopeFactor float32) {
	if err := d.vk.CmdSetDepthBias(cb, constantFactor, clamp, slopeFactor); err != nil {
		d.log.Errorf("vulkan: vkCmdSetDepthBias: %v", err)
	}
}

func (d *device_) CmdBindPipeline(cb, pipeline uint64, compute bool) {
	bindPoint := uint64(vk.PipelineBindPointGraphics)
	if compute {
		bindPoint = vk.PipelineBindPointCompute
	}
	_, _ = d.vk.Call("vkCmdBindPipeline", cb, bindPoint, pipeline)
}

func (d *device_) CmdBindVertexBuffer(cb uint64, slot uint32, buffer, offset uint64) {
	buffers := []uint64{buffer}
	offsets := []uint64{offset}
	_, _ = d.vk.Call("vkCmdBindVertexBuffers", cb, uint64(slot), 1, vk.SlicePtr(buffers), vk.SlicePtr(offsets))
	runtime.KeepAlive(buffers)
	runtime.KeepAlive(offsets)
}

func (d *device_) CmdBindIndexBuffer(cb, buffer, offset uint64, format gputypes.IndexFormat) {
	indexType := uint64(vk.IndexTypeUint16)
	if format == gputypes.IndexFormatUint32 {
		indexType = vk.IndexTypeUint32
	}
	_, _ = d.vk.Call("vkCmdBindIndexBuffer", cb, buffer, offset, indexType)
}

func (d *device_) CmdBindDescriptorSet(cb, pipelineLayout uint64, slot uint32, set uint64, dynamicOffsets []uint32, compute bool) {
	bindPoint := uint64(vk.PipelineBindPointGraphics)
	if compute {
		bindPoint = vk.PipelineBindPointCompute
	}
	sets := []uint64{set}
	_, _ = d.vk.Call("vkCmdBindDescriptorSets",
		cb, bindPoint, pipelineLayout, uint64(slot), 1, vk.SlicePtr(sets),
		uint64(len(dynamicOffsets)), vk.SlicePtr(dynamicOffsets))
	runtime.KeepAlive(sets)
	runtime.KeepAlive(dynamicOffsets)
}

func (d *device_) CmdDraw(cb uint64, vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	_, _ = d.vk.Call("vkCmdDraw", cb, uint64(vertexCount), uint64(instanceCount), uint64(firstVertex), uint64(firstInstance))
}

func (d *device_) CmdDrawIndexed(cb uint64, indexCount, instanceCount, firstIndex uint32, vertexOffset int32, firstInstance uint32) {
	_, _ = d.vk.Call("vkCmdDrawIndexed",
		cb, uint64(indexCount), uint64(instanceCount), uint64(firstIndex),
		uint64(uint32(vertexOffset)), uint64(firstInstance))
}

func (d *device_) CmdDispatch(cb uint64, x, y, z uint32) {
	_, _ = d.vk.Call("vkCmdDispatch", cb, uint64(x), uint64(y), uint64(z))
}

func (d *device_) CmdCopyBuffer(cb, src, dst uint64, regions []hal.BufferCopy) {
	vkRegions := make([]vk.BufferCopy, len(regions))
	for i, r := range regions {
		vkRegions[i] = vk.BufferCopy{SrcOffset: r.SrcOffset, DstOffset: r.DstOffset, Size: r.Size}
	}
	_, _ = d.vk.Call("vkCmdCopyBuffer", cb, src, dst, uint64(len(vkRegions)), vk.SlicePtr(vkRegions))
	runtime.KeepAlive(vkRegions)
}

func bufferImageRegions(regions []hal.BufferTextureCopy) []vk.BufferImageCopy {
	out := make([]vk.BufferImageCopy, len(regions))
	for i, r := range regions {
		layers := r.LayerCount
		if layers == 0 {
			layers = 1
		}
		depth := r.Depth
		if depth == 0 {
			depth = 1
		}
		out[i] = vk.BufferImageCopy{
			BufferOffset:    r.BufferOffset,
			BufferRowLength: r.BytesPerRow / 4,
			ImageSubresource: vk.ImageSubresourceLayers{
				AspectMask:     vk.ImageAspectColor,
				MipLevel:       r.MipLevel,
				BaseArrayLayer: r.BaseLayer,
				LayerCount:     layers,
			},
			ImageOffset: vk.Offset3D{X: int32(r.OriginX), Y: int32(r.OriginY)},
			ImageExtent: vk.Extent3D{Width: r.Width, Height: r.Height, Depth: depth},
		}
	}
	return out
}

func (d *device_) CmdCopyBufferToTexture(cb, src, dst uint64, regions []hal.BufferTextureCopy) {
	vkRegions := bufferImageRegions(regions)
	_, _ = d.vk.Call("vkCmdCopyBufferToImage", cb, src, dst, vk.ImageLayoutTransferDst, uint64(len(vkRegions)), vk.SlicePtr(vkRegions))
	runtime.KeepAlive(vkRegions)
}

func (d *device_) CmdCopyTextureToBuffer(cb, src, dst uint64, regions []hal.BufferTextureCopy) {
	vkRegions := bufferImageRegions(regions)
	_, _ = d.vk.Call("vkCmdCopyImageToBuffer", cb, src, vk.ImageLayoutTransferSrc, dst, uint64(len(vkRegions)), vk.SlicePtr(vkRegions))
	runtime.KeepAlive(vkRegions)
}

func (d *device_) CmdBlitTexture(cb, src, dst uint64, blit *hal.TextureBlit) {
	region := vk.ImageBlit{
		SrcSubresource: vk.ImageSubresourceLayers{
			AspectMask: vk.ImageAspectColor, MipLevel: blit.SrcMip, BaseArrayLayer: blit.Layer, LayerCount: 1,
		},
		DstSubresource: vk.ImageSubresourceLayers{
			AspectMask: vk.ImageAspectColor, MipLevel: blit.DstMip, BaseArrayLayer: blit.Layer, LayerCount: 1,
		},
	}
	region.SrcOffsets[1] = vk.Offset3D{X: int32(blit.SrcWidth), Y: int32(blit.SrcHeight), Z: 1}
	region.DstOffsets[1] = vk.Offset3D{X: int32(blit.DstWidth), Y: int32(blit.DstHeight), Z: 1}

	_, _ = d.vk.Call("vkCmdBlitImage",
		cb, src, vk.ImageLayoutTransferSrc, dst, vk.ImageLayoutTransferDst,
		1, vk.Ptr(&region), uint64(vk.FilterLinear))
}

// CmdPipelineBarrier issues a global memory barrier with the given masks,
// which is exactly what the pass-boundary barriers need: they gate
// whole-stage visibility, not per-resource layout transitions.
func (d *device_) CmdPipelineBarrier(cb uint64, src, dst core.PipelineStage, srcAccess, dstAccess core.AccessMask) {
	barrier := vk.MemoryBarrier{
		SType:         vk.StructureTypeMemoryBarrier,
		SrcAccessMask: accessToVk(srcAccess),
		DstAccessMask: accessToVk(dstAccess),
	}
	_, _ = d.vk.Call("vkCmdPipelineBarrier",
		cb, uint64(stagesToVk(src)), uint64(stagesToVk(dst)), 0,
		1, vk.Ptr(&barrier), 0, 0, 0, 0)
}
