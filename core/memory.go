package core

import "fmt"

// MemoryMode classifies where a memory block lives and how the host can
// reach it.
type MemoryMode int

const (
	// MemoryGPU is device-local memory with no host visibility.
	MemoryGPU MemoryMode = iota
	// MemoryGPUCPU is device-local memory that is also host-visible
	// (resizable BAR / unified memory).
	MemoryGPUCPU
	// MemoryCPU is host-visible memory, typically used for staging.
	MemoryCPU
)

func (m MemoryMode) String() string {
	switch m {
	case MemoryGPU:
		return "GPU"
	case MemoryGPUCPU:
		return "GPU_CPU"
	case MemoryCPU:
		return "CPU"
	default:
		return "unknown"
	}
}

// Allocation is a single memory block bound to at most one live resource at
// a time. It carries everything needed to release it back to the allocator
// that produced it, which is why every Allocation keeps a reference to its
// owning Allocator rather than requiring the caller to remember it.
type Allocation struct {
	// DriverHandle is an opaque, backend-specific memory handle (e.g. a
	// VkDeviceMemory wrapped as a uintptr-sized value).
	DriverHandle uint64
	Size         uint64
	MemoryType   uint32
	Mode         MemoryMode
	// HostPtr is non-nil only when Mode != MemoryGPU.
	HostPtr []byte
	Owner   Allocator
	Tag     string
}

// Allocator is the memory-allocation capability consumed (never owned)
// by the core. The core composes with whichever allocator the caller
// supplies instead of implementing allocation policy itself.
type Allocator interface {
	Allocate(typeFilter uint32, size, alignment uint64, tag string) (Allocation, error)
	Free(a Allocation)
}

// ErrAllocatorOutOfMemory is returned by an Allocator when it cannot
// satisfy a request.
var ErrAllocatorOutOfMemory = fmt.Errorf("core: allocator out of memory")

// DriverForwarder is the minimal capability a backend must expose for
// DynamicStagingAllocator to forward allocation requests to the driver.
// Backends implement this with whatever native memory-allocate/free call
// they have (e.g. vkAllocateMemory/vkFreeMemory); the core never calls the
// driver directly.
type DriverForwarder interface {
	AllocateDriverMemory(typeFilter uint32, size, alignment uint64, mode MemoryMode, tag string) (driverHandle uint64, hostPtr []byte, memoryType uint32, err error)
	FreeDriverMemory(driverHandle uint64)
}

// DynamicStagingAllocator is the core's one built-in allocator capability:
// it implements no pooling or sub-allocation policy of its own and simply
// forwards every request to the driver. It always requests
// MemoryCPU-mode (host-visible) memory, since its purpose is
// staging/upload buffers and the dynamic-uniform ring.
type DynamicStagingAllocator struct {
	driver DriverForwarder
}

// NewDynamicStagingAllocator wraps a backend's DriverForwarder.
func NewDynamicStagingAllocator(driver DriverForwarder) *DynamicStagingAllocator {
	return &DynamicStagingAllocator{driver: driver}
}

// Allocate forwards directly to the driver with MemoryCPU mode.
func (a *DynamicStagingAllocator) Allocate(typeFilter uint32, size, alignment uint64, tag string) (Allocation, error) {
	handle, host, memType, err := a.driver.AllocateDriverMemory(typeFilter, size, alignment, MemoryCPU, tag)
	if err != nil {
		return Allocation{}, err
	}
	return Allocation{
		DriverHandle: handle,
		Size:         size,
		MemoryType:   memType,
		Mode:         MemoryCPU,
		HostPtr:      host,
		Owner:        a,
		Tag:          tag,
	}, nil
}

// Free forwards directly to the driver.
func (a *DynamicStagingAllocator) Free(alloc Allocation) {
	a.driver.FreeDriverMemory(alloc.DriverHandle)
}

// ErrAlreadyBound is returned when a second memory binding is attempted on
// a resource that already holds one. Every live resource holds at most one
// memory block.
var ErrAlreadyBound = fmt.Errorf("core: resource already has a memory binding")

// MemoryUsage tracks how many bytes of device-local and host-visible
// memory are currently allocated through a MeteredAllocator. A GPU_CPU
// block counts toward both, since it occupies device-local memory and is
// host-visible at the same time.
type MemoryUsage struct {
	local uint64
	host  uint64
}

func (u *MemoryUsage) add(a Allocation) {
	if a.Mode == MemoryGPU || a.Mode == MemoryGPUCPU {
		u.local += a.Size
	}
	if a.Mode == MemoryCPU || a.Mode == MemoryGPUCPU {
		u.host += a.Size
	}
}

func (u *MemoryUsage) remove(a Allocation) {
	if a.Mode == MemoryGPU || a.Mode == MemoryGPUCPU {
		u.local -= a.Size
	}
	if a.Mode == MemoryCPU || a.Mode == MemoryGPUCPU {
		u.host -= a.Size
	}
}

// LocalInUse returns the bytes of device-local memory currently allocated.
func (u *MemoryUsage) LocalInUse() uint64 { return u.local }

// HostInUse returns the bytes of host-visible memory currently allocated.
func (u *MemoryUsage) HostInUse() uint64 { return u.host }

// MeteredAllocator decorates another Allocator with MemoryUsage
// accounting. Allocations it returns name it as their Owner, so a block
// freed through the garbage list decrements the meter no matter which
// code path releases it.
type MeteredAllocator struct {
	inner Allocator
	usage *MemoryUsage
}

// NewMeteredAllocator wraps inner so every allocation and free updates
// usage.
func NewMeteredAllocator(inner Allocator, usage *MemoryUsage) *MeteredAllocator {
	return &MeteredAllocator{inner: inner, usage: usage}
}

// Allocate forwards to the wrapped allocator and records the block.
func (m *MeteredAllocator) Allocate(typeFilter uint32, size, alignment uint64, tag string) (Allocation, error) {
	a, err := m.inner.Allocate(typeFilter, size, alignment, tag)
	if err != nil {
		return Allocation{}, err
	}
	a.Owner = m
	m.usage.add(a)
	return a, nil
}

// Free un-records the block and forwards to the wrapped allocator.
func (m *MeteredAllocator) Free(a Allocation) {
	m.usage.remove(a)
	m.inner.Free(a)
}
