package vulkan

import (
	"fmt"
	"runtime"
	"unsafe"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/gfxcore/core"
	"github.com/gogpu/gfxcore/hal"
	"github.com/gogpu/gfxcore/hal/vulkan/vk"
)

// --- sync -------------------------------------------------------------

func (d *device_) CreateFence(signaled bool) (uint64, error) {
	info := vk.FenceCreateInfo{SType: vk.StructureTypeFenceCreateInfo}
	if signaled {
		info.Flags = vk.FenceCreateSignaled
	}
	var fence uint64
	if err := d.check("vkCreateFence", d.raw, vk.Ptr(&info), 0, vk.Ptr(&fence)); err != nil {
		return 0, err
	}
	return fence, nil
}

func (d *device_) DestroyFence(fence uint64) {
	_, _ = d.vk.Call("vkDestroyFence", d.raw, fence, 0)
}

func (d *device_) WaitFence(fence uint64) error {
	fences := []uint64{fence}
	if err := d.check("vkWaitForFences", d.raw, 1, vk.SlicePtr(fences), 1, vk.MaxTimeout); err != nil {
		return err
	}
	runtime.KeepAlive(fences)
	return nil
}

func (d *device_) ResetFence(fence uint64) error {
	fences := []uint64{fence}
	err := d.check("vkResetFences", d.raw, 1, vk.SlicePtr(fences))
	runtime.KeepAlive(fences)
	return err
}

func (d *device_) CreateBinarySemaphore() (uint64, error) {
	info := vk.SemaphoreCreateInfo{SType: vk.StructureTypeSemaphoreCreateInfo}
	var sem uint64
	if err := d.check("vkCreateSemaphore", d.raw, vk.Ptr(&info), 0, vk.Ptr(&sem)); err != nil {
		return 0, err
	}
	return sem, nil
}

func (d *device_) CreateTimelineSemaphore(initialValue uint64) (uint64, error) {
	typeInfo := vk.SemaphoreTypeCreateInfo{
		SType:         vk.StructureTypeSemaphoreTypeCreateInfo,
		SemaphoreType: vk.SemaphoreTypeTimeline,
		InitialValue:  initialValue,
	}
	info := vk.SemaphoreCreateInfo{
		SType: vk.StructureTypeSemaphoreCreateInfo,
		PNext: vk.Ptr(&typeInfo),
	}
	var sem uint64
	if err := d.check("vkCreateSemaphore", d.raw, vk.Ptr(&info), 0, vk.Ptr(&sem)); err != nil {
		return 0, err
	}
	runtime.KeepAlive(&typeInfo)
	return sem, nil
}

func (d *device_) DestroySemaphore(sem uint64) {
	_, _ = d.vk.Call("vkDestroySemaphore", d.raw, sem, 0)
}

func (d *device_) SignalSemaphore(sem, value uint64) error {
	info := vk.SemaphoreSignalInfo{
		SType:     vk.StructureTypeSemaphoreSignalInfo,
		Semaphore: sem,
		Value:     value,
	}
	return d.check("vkSignalSemaphore", d.raw, vk.Ptr(&info))
}

func (d *device_) WaitSemaphore(sem, value uint64) error {
	sems := []uint64{sem}
	values := []uint64{value}
	info := vk.SemaphoreWaitInfo{
		SType:          vk.StructureTypeSemaphoreWaitInfo,
		SemaphoreCount: 1,
		PSemaphores:    vk.SlicePtr(sems),
		PValues:        vk.SlicePtr(values),
	}
	err := d.check("vkWaitSemaphores", d.raw, vk.Ptr(&info), vk.MaxTimeout)
	runtime.KeepAlive(sems)
	runtime.KeepAlive(values)
	return err
}

func (d *device_) SemaphoreValue(sem uint64) (uint64, error) {
	var value uint64
	if err := d.check("vkGetSemaphoreCounterValue", d.raw, sem, vk.Ptr(&value)); err != nil {
		return 0, err
	}
	return value, nil
}

// --- memory -----------------------------------------------------------

// memoryTypeIndex picks the first memory type allowed by typeFilter whose
// property flags cover what the mode needs.
func (d *device_) memoryTypeIndex(typeFilter uint32, mode core.MemoryMode) (uint32, error) {
	var want uint32
	switch mode {
	case core.MemoryGPU:
		want = vk.MemoryPropertyDeviceLocal
	case core.MemoryGPUCPU:
		want = vk.MemoryPropertyDeviceLocal | vk.MemoryPropertyHostVisible | vk.MemoryPropertyHostCoherent
	default:
		want = vk.MemoryPropertyHostVisible | vk.MemoryPropertyHostCoherent
	}
	if typeFilter == 0 {
		typeFilter = ^uint32(0)
	}
	for i := uint32(0); i < d.memProps.MemoryTypeCount; i++ {
		if typeFilter&(1<<i) == 0 {
			continue
		}
		if d.memProps.MemoryTypes[i].PropertyFlags&want == want {
			return i, nil
		}
	}
	return 0, fmt.Errorf("vulkan: no memory type for mode %s in filter %#x: %w", mode, typeFilter, hal.ErrOutOfMemory)
}

func (d *device_) AllocateDriverMemory(typeFilter uint32, size, _ uint64, mode core.MemoryMode, _ string) (uint64, []byte, uint32, error) {
	typeIndex, err := d.memoryTypeIndex(typeFilter, mode)
	if err != nil {
		return 0, nil, 0, err
	}

	info := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  size,
		MemoryTypeIndex: typeIndex,
	}
	var memory uint64
	if err := d.check("vkAllocateMemory", d.raw, vk.Ptr(&info), 0, vk.Ptr(&memory)); err != nil {
		return 0, nil, 0, err
	}

	var host []byte
	if mode != core.MemoryGPU {
		var ptr uint64
		if err := d.check("vkMapMemory", d.raw, memory, 0, vk.WholeSize, 0, vk.Ptr(&ptr)); err != nil {
			_, _ = d.vk.Call("vkFreeMemory", d.raw, memory, 0)
			return 0, nil, 0, err
		}
		host = unsafe.Slice((*byte)(unsafe.Pointer(uintptr(ptr))), size)
		d.mapped[memory] = host
	}
	return memory, host, typeIndex, nil
}

func (d *device_) FreeDriverMemory(memory uint64) {
	if _, ok := d.mapped[memory]; ok {
		_, _ = d.vk.Call("vkUnmapMemory", d.raw, memory)
		delete(d.mapped, memory)
	}
	_, _ = d.vk.Call("vkFreeMemory", d.raw, memory, 0)
}

// --- buffers / textures / samplers / shaders --------------------------

func (d *device_) CreateBuffer(size uint64, usage gputypes.BufferUsage, _ string) (uint64, error) {
	info := vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        size,
		Usage:       bufferUsageToVk(usage),
		SharingMode: vk.SharingModeExclusive,
	}
	var buf uint64
	if err := d.check("vkCreateBuffer", d.raw, vk.Ptr(&info), 0, vk.Ptr(&buf)); err != nil {
		return 0, err
	}
	return buf, nil
}

func (d *device_) DestroyBuffer(buf uint64) {
	_, _ = d.vk.Call("vkDestroyBuffer", d.raw, buf, 0)
}

func (d *device_) BufferMemoryRequirements(buf uint64) (uint64, uint64, uint32) {
	var reqs vk.MemoryRequirements
	_, _ = d.vk.Call("vkGetBufferMemoryRequirements", d.raw, buf, vk.Ptr(&reqs))
	return reqs.Size, reqs.Alignment, reqs.MemoryTypeBits
}

func (d *device_) BindBufferMemory(buf, memory uint64, offset uint64) error {
	return d.check("vkBindBufferMemory", d.raw, buf, memory, offset)
}

func (d *device_) CreateTexture(desc *hal.TextureDesc) (uint64, error) {
	layers := desc.Layers
	if layers == 0 {
		layers = 1
	}
	var flags uint32
	if desc.Kind == hal.TextureCube {
		flags = vk.ImageCreateCubeCompatible
		if layers < 6 {
			layers = 6
		}
	}
	depth := desc.Depth
	if depth == 0 {
		depth = 1
	}
	mips := desc.MipLevels
	if mips == 0 {
		mips = 1
	}
	samples := desc.Samples
	if samples == 0 {
		samples = vk.SampleCount1
	}

	info := vk.ImageCreateInfo{
		SType:         vk.StructureTypeImageCreateInfo,
		Flags:         flags,
		ImageType:     vk.ImageType2D,
		Format:        formatToVk(desc.Format),
		Extent:        vk.Extent3D{Width: desc.Width, Height: desc.Height, Depth: depth},
		MipLevels:     mips,
		ArrayLayers:   layers,
		Samples:       samples,
		Tiling:        vk.ImageTilingOptimal,
		Usage:         textureUsageToVk(desc.Usage, desc.Format),
		SharingMode:   vk.SharingModeExclusive,
		InitialLayout: vk.ImageLayoutUndefined,
	}
	var image uint64
	if err := d.check("vkCreateImage", d.raw, vk.Ptr(&info), 0, vk.Ptr(&image)); err != nil {
		return 0, err
	}
	return image, nil
}

func (d *device_) DestroyTexture(image uint64) {
	_, _ = d.vk.Call("vkDestroyImage", d.raw, image, 0)
}

func (d *device_) TextureMemoryRequirements(image uint64) (uint64, uint64, uint32) {
	var reqs vk.MemoryRequirements
	_, _ = d.vk.Call("vkGetImageMemoryRequirements", d.raw, image, vk.Ptr(&reqs))
	return reqs.Size, reqs.Alignment, reqs.MemoryTypeBits
}

func (d *device_) BindTextureMemory(image, memory uint64, offset uint64) error {
	return d.check("vkBindImageMemory", d.raw, image, memory, offset)
}

func (d *device_) CreateTextureView(image uint64, desc *hal.TextureViewDesc) (uint64, error) {
	mipCount := desc.MipCount
	if mipCount == 0 {
		mipCount = 1
	}
	layerCount := desc.LayerCount
	if layerCount == 0 {
		layerCount = 1
	}
	viewType := uint32(vk.ImageViewType2D)
	switch {
	case layerCount == 6:
		viewType = vk.ImageViewTypeCube
	case layerCount > 1:
		viewType = vk.ImageViewType2DArray
	}

	info := vk.ImageViewCreateInfo{
		SType:    vk.StructureTypeImageViewCreateInfo,
		Image:    image,
		ViewType: viewType,
		Format:   formatToVk(desc.Format),
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask:     aspectForFormat(desc.Format),
			BaseMipLevel:   desc.BaseMip,
			LevelCount:     mipCount,
			BaseArrayLayer: desc.BaseLayer,
			LayerCount:     layerCount,
		},
	}
	var view uint64
	if err := d.check("vkCreateImageView", d.raw, vk.Ptr(&info), 0, vk.Ptr(&view)); err != nil {
		return 0, err
	}
	return view, nil
}

func (d *device_) DestroyTextureView(view uint64) {
	_, _ = d.vk.Call("vkDestroyImageView", d.raw, view, 0)
}

func (d *device_) CreateSampler(desc *hal.SamplerDesc) (uint64, error) {
	compareEnable, compareOp := compareToVk(desc.Compare)
	info := vk.SamplerCreateInfo{
		SType:         vk.StructureTypeSamplerCreateInfo,
		MagFilter:     filterToVk(desc.MagFilter),
		MinFilter:     filterToVk(desc.MinFilter),
		MipmapMode:    filterToVk(desc.MipmapFilter),
		AddressModeU:  addressToVk(desc.AddressU),
		AddressModeV:  addressToVk(desc.AddressV),
		AddressModeW:  addressToVk(desc.AddressW),
		CompareEnable: compareEnable,
		CompareOp:     compareOp,
		MinLod:        desc.LodMin,
		MaxLod:        desc.LodMax,
	}
	if desc.MaxAnisotropy > 1 {
		info.AnisotropyEnable = 1
		info.MaxAnisotropy = desc.MaxAnisotropy
	}
	var sampler uint64
	if err := d.check("vkCreateSampler", d.raw, vk.Ptr(&info), 0, vk.Ptr(&sampler)); err != nil {
		return 0, err
	}
	return sampler, nil
}

func (d *device_) DestroySampler(sampler uint64) {
	_, _ = d.vk.Call("vkDestroySampler", d.raw, sampler, 0)
}

func (d *device_) CreateShaderModule(spirv []byte, _ string) (uint64, error) {
	if len(spirv) == 0 || len(spirv)%4 != 0 {
		return 0, fmt.Errorf("vulkan: SPIR-V must be non-empty and word-aligned, got %d bytes", len(spirv))
	}
	info := vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uintptr(len(spirv)),
		PCode:    vk.SlicePtr(spirv),
	}
	var module uint64
	err := d.check("vkCreateShaderModule", d.raw, vk.Ptr(&info), 0, vk.Ptr(&module))
	runtime.KeepAlive(spirv)
	if err != nil {
		return 0, err
	}
	return module, nil
}

func (d *device_) DestroyShaderModule(module uint64) {
	_, _ = d.vk.Call("vkDestroyShaderModule", d.raw, module, 0)
}

// --- render passes / framebuffers -------------------------------------

// CreateRenderPass realizes a compiled layout. The compiled dependencies
// are emitted verbatim; ops overrides the per-attachment load/store and
// initial/final layouts when present.
func (d *device_) CreateRenderPass(layout *core.RenderPassLayout, ops []core.AttachmentOps) (uint64, error) {
	attachments := make([]vk.AttachmentDescription, layout.AttachmentCount)
	for i, rt := range layout.RenderTargets {
		a := vk.AttachmentDescription{
			Format:         formatToVk(rt.Format),
			Samples:        vk.SampleCount1,
			LoadOp:         vk.AttachmentLoadOpDontCare,
			StoreOp:        vk.AttachmentStoreOpStore,
			StencilLoadOp:  vk.AttachmentLoadOpDontCare,
			StencilStoreOp: vk.AttachmentStoreOpDontCare,
			InitialLayout:  vk.ImageLayoutUndefined,
		}
		if rt.IsDepth() {
			a.FinalLayout = vk.ImageLayoutDepthStencilAttachment
		} else {
			a.FinalLayout = vk.ImageLayoutColorAttachment
		}
		if i < len(ops) {
			a.LoadOp = loadOpToVk(ops[i].LoadOp)
			a.StoreOp = storeOpToVk(ops[i].StoreOp)
			a.InitialLayout = layoutToVk(ops[i].InitialUsage)
			a.FinalLayout = layoutToVk(ops[i].FinalUsage)
		}
		attachments[i] = a
	}

	// Reference arrays are gathered per subpass; the backing slices must
	// outlive the create call.
	var colorRefs [][]vk.AttachmentReference
	var inputRefs [][]vk.AttachmentReference
	var depthRefs []*vk.AttachmentReference
	subpasses := make([]vk.SubpassDescription, len(layout.Subpasses))
	for i, sp := range layout.Subpasses {
		colors := make([]vk.AttachmentReference, len(sp.ColorRefs))
		for j, ref := range sp.ColorRefs {
			colors[j] = vk.AttachmentReference{Attachment: ref.AttachmentIndex, Layout: vk.ImageLayoutColorAttachment}
		}
		inputs := make([]vk.AttachmentReference, len(sp.InputRefs))
		for j, ref := range sp.InputRefs {
			inputs[j] = vk.AttachmentReference{Attachment: ref.AttachmentIndex, Layout: vk.ImageLayoutShaderReadOnly}
		}
		var depth *vk.AttachmentReference
		if sp.HasDepth {
			depth = &vk.AttachmentReference{Attachment: sp.DepthRef.AttachmentIndex, Layout: vk.ImageLayoutDepthStencilAttachment}
		}
		colorRefs = append(colorRefs, colors)
		inputRefs = append(inputRefs, inputs)
		depthRefs = append(depthRefs, depth)

		desc := vk.SubpassDescription{
			PipelineBindPoint:    vk.PipelineBindPointGraphics,
			ColorAttachmentCount: uint32(len(colors)),
			PColorAttachments:    vk.SlicePtr(colors),
			InputAttachmentCount: uint32(len(inputs)),
			PInputAttachments:    vk.SlicePtr(inputs),
		}
		if depth != nil {
			desc.PDepthStencilAttachment = vk.Ptr(depth)
		}
		subpasses[i] = desc
	}

	const dependencyByRegion = 0x1
	deps := make([]vk.SubpassDependency, len(layout.Dependencies))
	for i, dep := range layout.Dependencies {
		v := vk.SubpassDependency{
			SrcSubpass:    dep.SrcSubpass,
			DstSubpass:    dep.DstSubpass,
			SrcStageMask:  stagesToVk(dep.SrcStageMask),
			DstStageMask:  stagesToVk(dep.DstStageMask),
			SrcAccessMask: accessToVk(dep.SrcAccessMask),
			DstAccessMask: accessToVk(dep.DstAccessMask),
		}
		if dep.ByRegion {
			v.DependencyFlags = dependencyByRegion
		}
		deps[i] = v
	}

	info := vk.RenderPassCreateInfo{
		SType:           vk.StructureTypeRenderPassCreateInfo,
		AttachmentCount: uint32(len(attachments)),
		PAttachments:    vk.SlicePtr(attachments),
		SubpassCount:    uint32(len(subpasses)),
		PSubpasses:      vk.SlicePtr(subpasses),
		DependencyCount: uint32(len(deps)),
		PDependencies:   vk.SlicePtr(deps),
	}
	var pass uint64
	err := d.check("vkCreateRenderPass", d.raw, vk.Ptr(&info), 0, vk.Ptr(&pass))
	runtime.KeepAlive(attachments)
	runtime.KeepAlive(subpasses)
	runtime.KeepAlive(deps)
	runtime.KeepAlive(colorRefs)
	runtime.KeepAlive(inputRefs)
	runtime.KeepAlive(depthRefs)
	if err != nil {
		return 0, err
	}
	return pass, nil
}

func (d *device_) DestroyRenderPass(pass uint64) {
	_, _ = d.vk.Call("vkDestroyRenderPass", d.raw, pass, 0)
}

func (d *device_) CreateFramebuffer(pass uint64, views []uint64, width, height uint32) (uint64, error) {
	info := vk.FramebufferCreateInfo{
		SType:           vk.StructureTypeFramebufferCreateInfo,
		RenderPass:      pass,
		AttachmentCount: uint32(len(views)),
		PAttachments:    vk.SlicePtr(views),
		Width:           width,
		Height:          height,
		Layers:          1,
	}
	var fb uint64
	err := d.check("vkCreateFramebuffer", d.raw, vk.Ptr(&info), 0, vk.Ptr(&fb))
	runtime.KeepAlive(views)
	if err != nil {
		return 0, err
	}
	return fb, nil
}

func (d *device_) DestroyFramebuffer(fb uint64) {
	_, _ = d.vk.Call("vkDestroyFramebuffer", d.raw, fb, 0)
}

// --- descriptors ------------------------------------------------------

func (d *device_) CreateBindGroupLayout(bindings []hal.LayoutBinding) (uint64, error) {
	vkBindings := make([]vk.DescriptorSetLayoutBinding, len(bindings))
	for i, b := range bindings {
		count := b.Count
		if count == 0 {
			count = 1
		}
		vkBindings[i] = vk.DescriptorSetLayoutBinding{
			Binding:         b.Slot,
			DescriptorType:  bindingTypeToVk(b.Type),
			DescriptorCount: count,
			StageFlags:      shaderStagesToVk(b.Stages),
		}
	}
	info := vk.DescriptorSetLayoutCreateInfo{
		SType:        vk.StructureTypeDescriptorSetLayoutCreateInfo,
		BindingCount: uint32(len(vkBindings)),
		PBindings:    vk.SlicePtr(vkBindings),
	}
	var layout uint64
	err := d.check("vkCreateDescriptorSetLayout", d.raw, vk.Ptr(&info), 0, vk.Ptr(&layout))
	runtime.KeepAlive(vkBindings)
	if err != nil {
		return 0, err
	}
	return layout, nil
}

func (d *device_) DestroyBindGroupLayout(layout uint64) {
	_, _ = d.vk.Call("vkDestroyDescriptorSetLayout", d.raw, layout, 0)
}

func (d *device_) CreatePipelineLayout(bindGroupLayouts []uint64) (uint64, error) {
	info := vk.PipelineLayoutCreateInfo{
		SType:          vk.StructureTypePipelineLayoutCreateInfo,
		SetLayoutCount: uint32(len(bindGroupLayouts)),
		PSetLayouts:    vk.SlicePtr(bindGroupLayouts),
	}
	var layout uint64
	err := d.check("vkCreatePipelineLayout", d.raw, vk.Ptr(&info), 0, vk.Ptr(&layout))
	runtime.KeepAlive(bindGroupLayouts)
	if err != nil {
		return 0, err
	}
	return layout, nil
}

func (d *device_) DestroyPipelineLayout(layout uint64) {
	_, _ = d.vk.Call("vkDestroyPipelineLayout", d.raw, layout, 0)
}

// CreateDescriptorPool sizes one pool generously across the descriptor
// types the layer hands out. Transient pools are reset wholesale at frame
// begin; persistent pools free individual sets.
func (d *device_) CreateDescriptorPool(maxSets uint32, transient bool) (uint64, error) {
	sizes := []vk.DescriptorPoolSize{
		{Type: vk.DescriptorTypeUniformBuffer, DescriptorCount: maxSets * 4},
		{Type: vk.DescriptorTypeUniformBufferDynamic, DescriptorCount: maxSets},
		{Type: vk.DescriptorTypeStorageBuffer, DescriptorCount: maxSets * 4},
		{Type: vk.DescriptorTypeSampledImage, DescriptorCount: maxSets * 8},
		{Type: vk.DescriptorTypeStorageImage, DescriptorCount: maxSets * 2},
		{Type: vk.DescriptorTypeSampler, DescriptorCount: maxSets * 2},
		{Type: vk.DescriptorTypeInputAttachment, DescriptorCount: maxSets},
	}
	info := vk.DescriptorPoolCreateInfo{
		SType:         vk.StructureTypeDescriptorPoolCreateInfo,
		MaxSets:       maxSets,
		PoolSizeCount: uint32(len(sizes)),
		PPoolSizes:    vk.SlicePtr(sizes),
	}
	if !transient {
		info.Flags = vk.DescriptorPoolCreateFreeDescriptorSet
	}
	var pool uint64
	err := d.check("vkCreateDescriptorPool", d.raw, vk.Ptr(&info), 0, vk.Ptr(&pool))
	runtime.KeepAlive(sizes)
	if err != nil {
		return 0, err
	}
	return pool, nil
}

func (d *device_) ResetDescriptorPool(pool uint64) error {
	return d.check("vkResetDescriptorPool", d.raw, pool, 0)
}

func (d *device_) DestroyDescriptorPool(pool uint64) {
	_, _ = d.vk.Call("vkDestroyDescriptorPool", d.raw, pool, 0)
}

func (d *device_) AllocateDescriptorSet(pool, layout uint64) (uint64, error) {
	layouts := []uint64{layout}
	info := vk.DescriptorSetAllocateInfo{
		SType:              vk.StructureTypeDescriptorSetAllocateInfo,
		DescriptorPool:     pool,
		DescriptorSetCount: 1,
		PSetLayouts:        vk.SlicePtr(layouts),
	}
	var set uint64
	err := d.check("vkAllocateDescriptorSets", d.raw, vk.Ptr(&info), vk.Ptr(&set))
	runtime.KeepAlive(layouts)
	if err != nil {
		return 0, err
	}
	return set, nil
}

func (d *device_) UpdateDescriptorSet(set uint64, writes []hal.DescriptorWrite) {
	if len(writes) == 0 {
		return
	}
	bufferInfos := make([]vk.DescriptorBufferInfo, 0, len(writes))
	imageInfos := make([]vk.DescriptorImageInfo, 0, len(writes))
	vkWrites := make([]vk.WriteDescriptorSet, len(writes))
	for i, w := range writes {
		write := vk.WriteDescriptorSet{
			SType:           vk.StructureTypeWriteDescriptorSet,
			DstSet:          set,
			DstBinding:      w.Slot,
			DescriptorCount: 1,
			DescriptorType:  bindingTypeToVk(w.Type),
		}
		switch w.Type {
		case hal.BindingUniformBuffer, hal.BindingUniformBufferDynamic, hal.BindingStorageBuffer:
			rng := w.Range
			if rng == 0 {
				rng = vk.WholeSize
			}
			bufferInfos = append(bufferInfos, vk.DescriptorBufferInfo{Buffer: w.Buffer, Offset: w.Offset, Range: rng})
			write.PBufferInfo = vk.Ptr(&bufferInfos[len(bufferInfos)-1])
		default:
			layout := layoutToVk(w.Layout)
			if layout == vk.ImageLayoutUndefined {
				layout = vk.ImageLayoutShaderReadOnly
			}
			imageInfos = append(imageInfos, vk.DescriptorImageInfo{Sampler: w.Sampler, ImageView: w.View, ImageLayout: layout})
			write.PImageInfo = vk.Ptr(&imageInfos[len(imageInfos)-1])
		}
		vkWrites[i] = write
	}
	_, _ = d.vk.Call("vkUpdateDescriptorSets", d.raw, uint64(len(vkWrites)), vk.SlicePtr(vkWrites), 0, 0)
	runtime.KeepAlive(bufferInfos)
	runtime.KeepAlive(imageInfos)
	runtime.KeepAlive(vkWrites)
}

// --- pipelines --------------------------------------------------------

func specInfo(entries []hal.SpecEntry, data []byte) (*vk.SpecializationInfo, []vk.SpecializationMapEntry) {
	if len(entries) == 0 {
		return nil, nil
	}
	mapEntries := make([]vk.SpecializationMapEntry, len(entries))
	for i, e := range entries {
		mapEntries[i] = vk.SpecializationMapEntry{ConstantID: e.ConstantID, Offset: e.Offset, Size: uintptr(e.Size)}
	}
	return &vk.SpecializationInfo{
		MapEntryCount: uint32(len(mapEntries)),
		PMapEntries:   vk.SlicePtr(mapEntries),
		DataSize:      uintptr(len(data)),
		PData:         vk.SlicePtr(data),
	}, mapEntries
}

func (d *device_) CreateGraphicsPipeline(desc *hal.GraphicsPipelineDesc) (uint64, error) {
	const (
		shaderStageVertex   = 0x1
		shaderStageFragment = 0x10
	)

	vertEntry := vk.CString(entryOr(desc.VertexEntry))
	fragEntry := vk.CString(entryOr(desc.FragmentEntry))
	spec, specEntries := specInfo(desc.SpecEntries, desc.SpecData)

	stages := []vk.PipelineShaderStageCreateInfo{{
		SType:  vk.StructureTypePipelineShaderStageCreateInfo,
		Stage:  shaderStageVertex,
		Module: desc.VertexModule,
		PName:  vk.SlicePtr(vertEntry),
	}}
	if desc.FragmentModule != 0 {
		stages = append(stages, vk.PipelineShaderStageCreateInfo{
			SType:  vk.StructureTypePipelineShaderStageCreateInfo,
			Stage:  shaderStageFragment,
			Module: desc.FragmentModule,
			PName:  vk.SlicePtr(fragEntry),
		})
	}
	if spec != nil {
		for i := range stages {
			stages[i].PSpecializationInfo = vk.Ptr(spec)
		}
	}

	var vertexBindings []vk.VertexInputBindingDescription
	var vertexAttrs []vk.VertexInputAttributeDescription
	for slot, layout := range desc.VertexLayout {
		rate := uint32(0)
		if layout.StepMode == gputypes.VertexStepModeInstance {
			rate = 1
		}
		vertexBindings = append(vertexBindings, vk.VertexInputBindingDescription{
			Binding:   uint32(slot),
			Stride:    layout.Stride,
			InputRate: rate,
		})
		for _, attr := range layout.Attributes {
			vertexAttrs = append(vertexAttrs, vk.VertexInputAttributeDescription{
				Location: attr.Location,
				Binding:  uint32(slot),
				Format:   vertexFormatToVk(attr.Format),
				Offset:   attr.Offset,
			})
		}
	}
	vertexInput := vk.PipelineVertexInputStateCreateInfo{
		SType:                           vk.StructureTypePipelineVertexInputStateCreateInfo,
		VertexBindingDescriptionCount:   uint32(len(vertexBindings)),
		PVertexBindingDescriptions:      vk.SlicePtr(vertexBindings),
		VertexAttributeDescriptionCount: uint32(len(vertexAttrs)),
		PVertexAttributeDescriptions:    vk.SlicePtr(vertexAttrs),
	}

	inputAssembly := vk.PipelineInputAssemblyStateCreateInfo{
		SType:    vk.StructureTypePipelineInputAssemblyStateCreateInfo,
		Topology: topologyToVk(desc.Topology),
	}

	// Viewport and scissor are dynamic; the counts still must be declared.
	viewportState := vk.PipelineViewportStateCreateInfo{
		SType:         vk.StructureTypePipelineViewportStateCreateInfo,
		ViewportCount: 1,
		ScissorCount:  1,
	}

	raster := vk.PipelineRasterizationStateCreateInfo{
		SType:           vk.StructureTypePipelineRasterizationStateCreateInfo,
		PolygonMode:     0, // VK_POLYGON_MODE_FILL
		CullMode:        cullToVk(desc.CullMode),
		FrontFace:       frontFaceToVk(desc.FrontFace),
		DepthBiasEnable: 1,
		LineWidth:       1,
	}

	multisample := vk.PipelineMultisampleStateCreateInfo{
		SType:                vk.StructureTypePipelineMultisampleStateCreateInfo,
		RasterizationSamples: vk.SampleCount1,
	}

	_, depthOp := compareToVk(desc.DepthCompare)
	depthStencil := vk.PipelineDepthStencilStateCreateInfo{
		SType:             vk.StructureTypePipelineDepthStencilStateCreateInfo,
		DepthTestEnable:   boolToU32(desc.DepthTest),
		DepthWriteEnable:  boolToU32(desc.DepthWrite),
		DepthCompareOp:    depthOp,
		StencilTestEnable: boolToU32(desc.Stencil.Enabled),
		MaxDepthBounds:    1,
	}
	if desc.Stencil.Enabled {
		_, stencilOp := compareToVk(desc.Stencil.Compare)
		side := vk.StencilOpState{
			CompareOp:   stencilOp,
			CompareMask: desc.Stencil.ReadMask,
			WriteMask:   desc.Stencil.WriteMask,
			Reference:   desc.Stencil.Reference,
		}
		depthStencil.Front = side
		depthStencil.Back = side
	}

	blendTargets := make([]vk.PipelineColorBlendAttachmentState, len(desc.Blend))
	for i, b := range desc.Blend {
		mask := uint32(b.WriteMask)
		if mask == 0 {
			mask = 0xF
		}
		blendTargets[i] = vk.PipelineColorBlendAttachmentState{
			BlendEnable:         boolToU32(b.Enabled),
			SrcColorBlendFactor: blendFactorToVk(b.SrcColor),
			DstColorBlendFactor: blendFactorToVk(b.DstColor),
			ColorBlendOp:        blendOpToVk(b.ColorOp),
			SrcAlphaBlendFactor: blendFactorToVk(b.SrcAlpha),
			DstAlphaBlendFactor: blendFactorToVk(b.DstAlpha),
			AlphaBlendOp:        blendOpToVk(b.AlphaOp),
			ColorWriteMask:      mask,
		}
	}
	blendState := vk.PipelineColorBlendStateCreateInfo{
		SType:           vk.StructureTypePipelineColorBlendStateCreateInfo,
		AttachmentCount: uint32(len(blendTargets)),
		PAttachments:    vk.SlicePtr(blendTargets),
	}

	dynamicStates := []uint32{vk.DynamicStateViewport, vk.DynamicStateScissor, vk.DynamicStateDepthBias}
	dynamicState := vk.PipelineDynamicStateCreateInfo{
		SType:             vk.StructureTypePipelineDynamicStateCreateInfo,
		DynamicStateCount: uint32(len(dynamicStates)),
		PDynamicStates:    vk.SlicePtr(dynamicStates),
	}

	info := vk.GraphicsPipelineCreateInfo{
		SType:               vk.StructureTypeGraphicsPipelineCreateInfo,
		StageCount:          uint32(len(stages)),
		PStages:             vk.SlicePtr(stages),
		PVertexInputState:   vk.Ptr(&vertexInput),
		PInputAssemblyState: vk.Ptr(&inputAssembly),
		PViewportState:      vk.Ptr(&viewportState),
		PRasterizationState: vk.Ptr(&raster),
		PMultisampleState:   vk.Ptr(&multisample),
		PDepthStencilState:  vk.Ptr(&depthStencil),
		PColorBlendState:    vk.Ptr(&blendState),
		PDynamicState:       vk.Ptr(&dynamicState),
		Layout:              desc.PipelineLayout,
		RenderPass:          desc.RenderPass,
		Subpass:             desc.Subpass,
		BasePipelineIndex:   -1,
	}

	var pipeline uint64
	err := d.check("vkCreateGraphicsPipelines", d.raw, 0, 1, vk.Ptr(&info), 0, vk.Ptr(&pipeline))
	runtime.KeepAlive(stages)
	runtime.KeepAlive(vertEntry)
	runtime.KeepAlive(fragEntry)
	runtime.KeepAlive(spec)
	runtime.KeepAlive(specEntries)
	runtime.KeepAlive(desc.SpecData)
	runtime.KeepAlive(vertexBindings)
	runtime.KeepAlive(vertexAttrs)
	runtime.KeepAlive(blendTargets)
	runtime.KeepAlive(dynamicStates)
	if err != nil {
		return 0, err
	}
	if pipeline == 0 {
		// Some drivers report success with a null pipeline on internal
		// compiler failure; surface it instead of handing out a dead handle.
		return 0, fmt.Errorf("vulkan: driver returned a null graphics pipeline")
	}
	return pipeline, nil
}

func entryOr(entry string) string {
	if entry == "" {
		return "main"
	}
	return entry
}

func (d *device_) CreateComputePipeline(desc *hal.ComputePipelineDesc) (uint64, error) {
	const shaderStageCompute = 0x20

	entry := vk.CString(entryOr(desc.Entry))
	spec, specEntries := specInfo(desc.SpecEntries, desc.SpecData)

	info := vk.ComputePipelineCreateInfo{
		SType: vk.StructureTypeComputePipelineCreateInfo,
		Stage: vk.PipelineShaderStageCreateInfo{
			SType:  vk.StructureTypePipelineShaderStageCreateInfo,
			Stage:  shaderStageCompute,
			Module: desc.Module,
			PName:  vk.SlicePtr(entry),
		},
		Layout:            desc.PipelineLayout,
		BasePipelineIndex: -1,
	}
	if spec != nil {
		info.Stage.PSpecializationInfo = vk.Ptr(spec)
	}

	var pipeline uint64
	err := d.check("vkCreateComputePipelines", d.raw, 0, 1, vk.Ptr(&info), 0, vk.Ptr(&pipeline))
	runtime.KeepAlive(entry)
	runtime.KeepAlive(spec)
	runtime.KeepAlive(specEntries)
	runtime.KeepAlive(desc.SpecData)
	if err != nil {
		return 0, err
	}
	return pipeline, nil
}

func (d *device_) DestroyPipeline(pipeline uint64) {
	_, _ = d.vk.Call("vkDestroyPipeline", d.raw, pipeline, 0)
}
