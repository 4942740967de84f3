// Package vulkan implements the hal trait over the Vulkan 1.2 API,
// loaded at runtime through goffi. Importing the package registers the
// backend:
//
//	import _ "github.com/gogpu/gfxcore/hal/vulkan"
package vulkan

import (
	"fmt"
	"runtime"

	"github.com/gogpu/gfxcore/hal"
	"github.com/gogpu/gfxcore/hal/vulkan/vk"
)

func init() {
	hal.Register(&backend{})
}

var _ hal.Backend = (*backend)(nil)

type backend struct {
	loader   *vk.Loader
	instance uint64
	physical []uint64
	log      *hal.Logger
}

func (*backend) Name() string { return "vulkan" }

// ensureInstance lazily loads the driver and creates the VkInstance with
// the platform surface extensions enabled.
func (b *backend) ensureInstance() error {
	if b.instance != 0 {
		return nil
	}
	if b.log == nil {
		b.log = hal.DefaultLogger()
	}

	loader, err := vk.Load()
	if err != nil {
		return err
	}
	b.loader = loader

	appName := vk.CString("gfxcore")
	appInfo := vk.ApplicationInfo{
		SType:            vk.StructureTypeApplicationInfo,
		PApplicationName: vk.SlicePtr(appName),
		APIVersion:       vk.APIVersion12,
	}

	extNames := []string{"VK_KHR_surface", platformSurfaceExtension()}
	extBufs := make([][]byte, len(extNames))
	extPtrs := make([]uint64, len(extNames))
	for i, name := range extNames {
		extBufs[i] = vk.CString(name)
		extPtrs[i] = vk.SlicePtr(extBufs[i])
	}

	createInfo := vk.InstanceCreateInfo{
		SType:                   vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo:        vk.Ptr(&appInfo),
		EnabledExtensionCount:   uint32(len(extPtrs)),
		PPEnabledExtensionNames: vk.SlicePtr(extPtrs),
	}

	var instance uint64
	res, err := loader.Check("vkCreateInstance", vk.Ptr(&createInfo), 0, vk.Ptr(&instance))
	if err != nil {
		return err
	}
	if res != vk.Success {
		// Presentation extensions may be absent on headless nodes; retry
		// without them so compute-only devices still open.
		createInfo.EnabledExtensionCount = 0
		createInfo.PPEnabledExtensionNames = 0
		res, err = loader.Check("vkCreateInstance", vk.Ptr(&createInfo), 0, vk.Ptr(&instance))
		if err != nil {
			return err
		}
		if res != vk.Success {
			return fmt.Errorf("vulkan: vkCreateInstance: %s", res)
		}
		b.log.Warnf("vulkan: surface extensions unavailable, instance is headless")
	}
	runtime.KeepAlive(appName)
	runtime.KeepAlive(extBufs)

	b.instance = instance
	loader.SetInstance(instance)
	return nil
}

func platformSurfaceExtension() string {
	switch runtime.GOOS {
	case "windows":
		return "VK_KHR_win32_surface"
	case "darwin":
		return "VK_EXT_metal_surface"
	default:
		return "VK_KHR_xlib_surface"
	}
}

func (b *backend) physicalDevices() ([]uint64, error) {
	if err := b.ensureInstance(); err != nil {
		return nil, err
	}
	if b.physical != nil {
		return b.physical, nil
	}

	var count uint32
	res, err := b.loader.Check("vkEnumeratePhysicalDevices", b.instance, vk.Ptr(&count), 0)
	if err != nil {
		return nil, err
	}
	if res != vk.Success || count == 0 {
		return nil, fmt.Errorf("vulkan: no physical devices (%s)", res)
	}

	devices := make([]uint64, count)
	res, err = b.loader.Check("vkEnumeratePhysicalDevices", b.instance, vk.Ptr(&count), vk.SlicePtr(devices))
	if err != nil {
		return nil, err
	}
	if res != vk.Success && res != vk.Incomplete {
		return nil, fmt.Errorf("vulkan: vkEnumeratePhysicalDevices: %s", res)
	}
	b.physical = devices[:count]
	return b.physical, nil
}

func (b *backend) Enumerate() ([]hal.AdapterInfo, error) {
	devices, err := b.physicalDevices()
	if err != nil {
		return nil, err
	}

	infos := make([]hal.AdapterInfo, 0, len(devices))
	for _, pd := range devices {
		var props vk.PhysicalDeviceProperties
		if _, err := b.loader.Call("vkGetPhysicalDeviceProperties", pd, vk.Ptr(&props)); err != nil {
			return nil, err
		}
		name := props.DeviceName[:]
		n := 0
		for n < len(name) && name[n] != 0 {
			n++
		}
		const deviceTypeDiscrete = 2
		infos = append(infos, hal.AdapterInfo{
			Name:     string(name[:n]),
			Backend:  "vulkan",
			Discrete: props.DeviceType == deviceTypeDiscrete,
		})
	}
	return infos, nil
}

func (b *backend) CreateSurface(displayHandle, windowHandle uintptr) (uint64, error) {
	if err := b.ensureInstance(); err != nil {
		return 0, err
	}

	var surface uint64
	var res vk.Result
	var err error
	switch runtime.GOOS {
	case "windows":
		if displayHandle == 0 {
			displayHandle = defaultDisplayHandle()
		}
		info := vk.Win32SurfaceCreateInfoKHR{
			SType:     vk.StructureTypeWin32SurfaceCreateInfoKHR,
			HInstance: uint64(displayHandle),
			HWnd:      uint64(windowHandle),
		}
		res, err = b.loader.Check("vkCreateWin32SurfaceKHR", b.instance, vk.Ptr(&info), 0, vk.Ptr(&surface))
	default:
		info := vk.XlibSurfaceCreateInfoKHR{
			SType:  vk.StructureTypeXlibSurfaceCreateInfoKHR,
			Dpy:    uint64(displayHandle),
			Window: uint64(windowHandle),
		}
		res, err = b.loader.Check("vkCreateXlibSurfaceKHR", b.instance, vk.Ptr(&info), 0, vk.Ptr(&surface))
	}
	if err != nil {
		return 0, err
	}
	if res != vk.Success {
		return 0, fmt.Errorf("vulkan: surface creation: %s", res)
	}
	return surface, nil
}

func (b *backend) DestroySurface(surface uint64) {
	if b.instance == 0 || surface == 0 {
		return
	}
	_, _ = b.loader.Call("vkDestroySurfaceKHR", b.instance, surface, 0)
}

// Open creates the logical device with one graphics+compute queue and
// timeline semaphores enabled.
func (b *backend) Open(adapterIndex int, surface uint64) (hal.Device, error) {
	devices, err := b.physicalDevices()
	if err != nil {
		return nil, err
	}
	if adapterIndex < 0 || adapterIndex >= len(devices) {
		return nil, fmt.Errorf("vulkan: adapter index %d out of range (%d adapters)", adapterIndex, len(devices))
	}
	physical := devices[adapterIndex]

	family, err := b.pickQueueFamily(physical, surface)
	if err != nil {
		return nil, err
	}

	priority := []float32{1.0}
	queueInfo := vk.DeviceQueueCreateInfo{
		SType:            vk.StructureTypeDeviceQueueCreateInfo,
		QueueFamilyIndex: family,
		QueueCount:       1,
		PQueuePriorities: vk.SlicePtr(priority),
	}

	timelineFeature := vk.PhysicalDeviceTimelineSemaphoreFeatures{
		SType:             vk.StructureTypePhysicalDeviceTimelineFeatures,
		TimelineSemaphore: 1,
	}

	swapExt := vk.CString("VK_KHR_swapchain")
	extPtrs := []uint64{vk.SlicePtr(swapExt)}
	deviceInfo := vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		PNext:                   vk.Ptr(&timelineFeature),
		QueueCreateInfoCount:    1,
		PQueueCreateInfos:       vk.Ptr(&queueInfo),
		EnabledExtensionCount:   1,
		PPEnabledExtensionNames: vk.SlicePtr(extPtrs),
	}
	if surface == 0 {
		deviceInfo.EnabledExtensionCount = 0
		deviceInfo.PPEnabledExtensionNames = 0
	}

	var device uint64
	res, err := b.loader.Check("vkCreateDevice", physical, vk.Ptr(&deviceInfo), 0, vk.Ptr(&device))
	if err != nil {
		return nil, err
	}
	if res != vk.Success {
		return nil, fmt.Errorf("vulkan: vkCreateDevice: %s", res)
	}
	runtime.KeepAlive(priority)
	runtime.KeepAlive(swapExt)
	b.loader.SetDevice(device)

	var queue uint64
	if _, err := b.loader.Call("vkGetDeviceQueue", device, uint64(family), 0, vk.Ptr(&queue)); err != nil {
		return nil, err
	}

	var memProps vk.PhysicalDeviceMemoryProperties
	if _, err := b.loader.Call("vkGetPhysicalDeviceMemoryProperties", physical, vk.Ptr(&memProps)); err != nil {
		return nil, err
	}

	return &device_{
		vk:       b.loader,
		physical: physical,
		raw:      device,
		queue:    queue,
		family:   family,
		memProps: memProps,
		mapped:   map[uint64][]byte{},
		log:      b.log,
	}, nil
}

// pickQueueFamily returns the first family with graphics+compute support
// (presentation support is universal for such families on the platforms
// this backend targets; a mismatch surfaces as a swapchain creation
// error).
func (b *backend) pickQueueFamily(physical, _ uint64) (uint32, error) {
	var count uint32
	if _, err := b.loader.Call("vkGetPhysicalDeviceQueueFamilyProperties", physical, vk.Ptr(&count), 0); err != nil {
		return 0, err
	}
	if count == 0 {
		return 0, fmt.Errorf("vulkan: device reports no queue families")
	}
	families := make([]vk.QueueFamilyProperties, count)
	if _, err := b.loader.Call("vkGetPhysicalDeviceQueueFamilyProperties", physical, vk.Ptr(&count), vk.SlicePtr(families)); err != nil {
		return 0, err
	}
	for i, f := range families[:count] {
		if f.QueueFlags&vk.QueueGraphics != 0 && f.QueueFlags&vk.QueueCompute != 0 {
			return uint32(i), nil
		}
	}
	return 0, fmt.Errorf("vulkan: no graphics+compute queue family")
}

var _ hal.Device = (*device_)(nil)

// device_ implements hal.Device. The trailing underscore avoids clashing
// with the vkDevice handle field names throughout.
type device_ struct {
	vk       *vk.Loader
	physical uint64
	raw      uint64
	queue    uint64
	family   uint32
	memProps vk.PhysicalDeviceMemoryProperties
	// mapped remembers persistent host mappings per VkDeviceMemory so
	// FreeDriverMemory can drop them.
	mapped map[uint64][]byte
	log    *hal.Logger
}

func (d *device_) check(name string, args ...uint64) error {
	res, err := d.vk.Check(name, args...)
	if err != nil {
		return err
	}
	return vkError(name, res)
}

// vkError folds a VkResult into the hal error taxonomy.
func vkError(name string, res vk.Result) error {
	switch res {
	case vk.Success, vk.SuboptimalKHR:
		return nil
	case vk.ErrorDeviceLost:
		return fmt.Errorf("%s: %w", name, hal.ErrDeviceLost)
	case vk.ErrorOutOfHost, vk.ErrorOutOfDevice:
		return fmt.Errorf("%s: %w", name, hal.ErrOutOfMemory)
	case vk.ErrorOutOfDateKHR:
		return fmt.Errorf("%s: %w", name, hal.ErrSwapchainOutOfDate)
	default:
		return fmt.Errorf("%s: unexpected %s", name, res)
	}
}

func (d *device_) WaitIdle() error {
	return d.check("vkDeviceWaitIdle", d.raw)
}

func (d *device_) Destroy() {
	_, _ = d.vk.Call("vkDestroyDevice", d.raw, 0)
	d.raw = 0
}

func boolToU32(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}
