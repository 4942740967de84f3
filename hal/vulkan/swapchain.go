package vulkan

import (
	"fmt"
	"runtime"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/gfxcore/core"
	"github.com/gogpu/gfxcore/hal"
	"github.com/gogpu/gfxcore/hal/vulkan/vk"
)

func vkFormatToGputypes(f uint32) gputypes.TextureFormat {
	switch f {
	case formatRGBA8Unorm:
		return gputypes.TextureFormatRGBA8Unorm
	case formatRGBA8Srgb:
		return gputypes.TextureFormatRGBA8UnormSrgb
	case formatBGRA8Unorm:
		return gputypes.TextureFormatBGRA8Unorm
	case formatBGRA8Srgb:
		return gputypes.TextureFormatBGRA8UnormSrgb
	default:
		return gputypes.TextureFormatUndefined
	}
}

func presentModeToVk(m core.PresentMode) uint32 {
	switch m {
	case core.PresentModeMailbox:
		return vk.PresentModeMailboxKHR
	case core.PresentModeImmediate:
		return vk.PresentModeImmediateKHR
	default:
		return vk.PresentModeFIFOKHR
	}
}

// SurfaceCaps translates the driver's surface query into the vocabulary
// the core's swapchain bootstrap selects from. Formats the core has no
// name for are dropped; modes likewise.
func (d *device_) SurfaceCaps(surface uint64) (core.SurfaceCaps, error) {
	var vkCaps vk.SurfaceCapabilitiesKHR
	if err := d.check("vkGetPhysicalDeviceSurfaceCapabilitiesKHR", d.physical, surface, vk.Ptr(&vkCaps)); err != nil {
		return core.SurfaceCaps{}, err
	}

	var formatCount uint32
	if err := d.check("vkGetPhysicalDeviceSurfaceFormatsKHR", d.physical, surface, vk.Ptr(&formatCount), 0); err != nil {
		return core.SurfaceCaps{}, err
	}
	vkFormats := make([]vk.SurfaceFormatKHR, formatCount)
	if formatCount > 0 {
		if err := d.check("vkGetPhysicalDeviceSurfaceFormatsKHR", d.physical, surface, vk.Ptr(&formatCount), vk.SlicePtr(vkFormats)); err != nil {
			return core.SurfaceCaps{}, err
		}
	}

	var modeCount uint32
	if err := d.check("vkGetPhysicalDeviceSurfacePresentModesKHR", d.physical, surface, vk.Ptr(&modeCount), 0); err != nil {
		return core.SurfaceCaps{}, err
	}
	vkModes := make([]uint32, modeCount)
	if modeCount > 0 {
		if err := d.check("vkGetPhysicalDeviceSurfacePresentModesKHR", d.physical, surface, vk.Ptr(&modeCount), vk.SlicePtr(vkModes)); err != nil {
			return core.SurfaceCaps{}, err
		}
	}

	caps := core.SurfaceCaps{
		MinImageCount:  vkCaps.MinImageCount,
		MaxImageCount:  vkCaps.MaxImageCount,
		MinExtentW:     vkCaps.MinImageExtent.Width,
		MinExtentH:     vkCaps.MinImageExtent.Height,
		MaxExtentW:     vkCaps.MaxImageExtent.Width,
		MaxExtentH:     vkCaps.MaxImageExtent.Height,
		CurrentExtentW: vkCaps.CurrentExtent.Width,
		CurrentExtentH: vkCaps.CurrentExtent.Height,
	}
	for _, f := range vkFormats[:formatCount] {
		// The swapchain renders through the SRGB-nonlinear color space;
		// other color spaces are out of scope.
		if f.ColorSpace != vk.ColorSpaceSRGBNonlinearKHR {
			continue
		}
		if g := vkFormatToGputypes(f.Format); g != gputypes.TextureFormatUndefined {
			caps.Formats = append(caps.Formats, g)
		}
	}
	for _, m := range vkModes[:modeCount] {
		switch m {
		case vk.PresentModeFIFOKHR:
			caps.PresentModes = append(caps.PresentModes, core.PresentModeFIFO)
		case vk.PresentModeMailboxKHR:
			caps.PresentModes = append(caps.PresentModes, core.PresentModeMailbox)
		case vk.PresentModeImmediateKHR:
			caps.PresentModes = append(caps.PresentModes, core.PresentModeImmediate)
		}
	}
	return caps, nil
}

func (d *device_) CreateSwapchain(desc *hal.SwapchainDesc, oldSwapchain uint64) (uint64, []uint64, error) {
	info := vk.SwapchainCreateInfoKHR{
		SType:            vk.StructureTypeSwapchainCreateInfoKHR,
		Surface:          desc.Surface,
		MinImageCount:    desc.ImageCount,
		ImageFormat:      formatToVk(desc.Format),
		ImageColorSpace:  vk.ColorSpaceSRGBNonlinearKHR,
		ImageExtent:      vk.Extent2D{Width: desc.Width, Height: desc.Height},
		ImageArrayLayers: 1,
		ImageUsage:       vk.ImageUsageColorAttachment | vk.ImageUsageTransferDst,
		ImageSharingMode: vk.SharingModeExclusive,
		PreTransform:     vk.SurfaceTransformIdentityKHR,
		CompositeAlpha:   vk.CompositeAlphaOpaqueKHR,
		PresentMode:      presentModeToVk(desc.PresentMode),
		Clipped:          1,
		OldSwapchain:     oldSwapchain,
	}
	var swapchain uint64
	if err := d.check("vkCreateSwapchainKHR", d.raw, vk.Ptr(&info), 0, vk.Ptr(&swapchain)); err != nil {
		return 0, nil, err
	}

	var imageCount uint32
	if err := d.check("vkGetSwapchainImagesKHR", d.raw, swapchain, vk.Ptr(&imageCount), 0); err != nil {
		return 0, nil, err
	}
	images := make([]uint64, imageCount)
	if err := d.check("vkGetSwapchainImagesKHR", d.raw, swapchain, vk.Ptr(&imageCount), vk.SlicePtr(images)); err != nil {
		return 0, nil, err
	}

	views := make([]uint64, 0, imageCount)
	for _, image := range images[:imageCount] {
		view, err := d.CreateTextureView(image, &hal.TextureViewDesc{
			Format:     desc.Format,
			MipCount:   1,
			LayerCount: 1,
		})
		if err != nil {
			for _, v := range views {
				d.DestroyTextureView(v)
			}
			_, _ = d.vk.Call("vkDestroySwapchainKHR", d.raw, swapchain, 0)
			return 0, nil, fmt.Errorf("vulkan: swapchain image view: %w", err)
		}
		views = append(views, view)
	}
	runtime.KeepAlive(images)
	return swapchain, views, nil
}

func (d *device_) DestroySwapchain(swapchain uint64) {
	_, _ = d.vk.Call("vkDestroySwapchainKHR", d.raw, swapchain, 0)
}

func (d *device_) AcquireImage(swapchain, imageAvailable uint64) (uint32, bool, error) {
	var index uint32
	res, err := d.vk.Check("vkAcquireNextImageKHR", d.raw, swapchain, vk.MaxTimeout, imageAvailable, 0, vk.Ptr(&index))
	if err != nil {
		return 0, false, err
	}
	switch res {
	case vk.Success:
		return index, false, nil
	case vk.SuboptimalKHR, vk.ErrorOutOfDateKHR:
		return index, true, nil
	default:
		return 0, false, vkError("vkAcquireNextImageKHR", res)
	}
}

func (d *device_) Present(swapchain uint64, imageIndex uint32, renderFinished uint64) (bool, error) {
	waits := []uint64{renderFinished}
	swapchains := []uint64{swapchain}
	indices := []uint32{imageIndex}
	info := vk.PresentInfoKHR{
		SType:              vk.StructureTypePresentInfoKHR,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    vk.SlicePtr(waits),
		SwapchainCount:     1,
		PSwapchains:        vk.SlicePtr(swapchains),
		PImageIndices:      vk.SlicePtr(indices),
	}
	res, err := d.vk.Check("vkQueuePresentKHR", d.queue, vk.Ptr(&info))
	runtime.KeepAlive(waits)
	runtime.KeepAlive(swapchains)
	runtime.KeepAlive(indices)
	if err != nil {
		return false, err
	}
	switch res {
	case vk.Success:
		return false, nil
	case vk.SuboptimalKHR, vk.ErrorOutOfDateKHR:
		return true, nil
	default:
		return false, vkError("vkQueuePresentKHR", res)
	}
}
