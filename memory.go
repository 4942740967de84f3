package gfxcore

import (
	"fmt"

	"github.com/gogpu/gfxcore/core"
)

// Allocation is a single GPU memory block produced by an Allocator.
type Allocation = core.Allocation

// Allocator is the pluggable memory-allocation capability a device
// composes with; the device never implements allocation policy itself.
// The built-in dynamic-staging allocator (registered for MemoryModeCPU at
// device creation) simply forwards to the driver.
type Allocator = core.Allocator

// MemoryMode classifies where a memory block lives and how the host can
// reach it.
type MemoryMode = core.MemoryMode

const (
	// MemoryModeGPU is device-local memory with no host visibility.
	MemoryModeGPU = core.MemoryGPU
	// MemoryModeGPUCPU is device-local memory that is also host-visible.
	MemoryModeGPUCPU = core.MemoryGPUCPU
	// MemoryModeCPU is host-visible memory, typically used for staging.
	MemoryModeCPU = core.MemoryCPU
)

// SetMemoryAllocator registers the allocator serving one memory mode,
// wrapped with usage metering so LocalMemoryInUse/HostMemoryInUse reflect
// every block it hands out until the block is freed, including blocks
// released late through the frame garbage list.
func (d *Device) SetMemoryAllocator(mode MemoryMode, a Allocator) {
	d.allocators[mode] = core.NewMeteredAllocator(a, &d.memUsage)
}

// AllocateMemory requests a memory block of the given size and mode from
// the allocator registered for that mode. typeFilter restricts which
// driver memory types may satisfy the request (0 means any); tag is a
// debug label carried on the block.
func (d *Device) AllocateMemory(size uint64, mode MemoryMode, typeFilter uint32, tag string) (Allocation, error) {
	a := d.allocators[mode]
	if a == nil {
		return Allocation{}, fmt.Errorf("gfxcore: no allocator registered for memory mode %s", mode)
	}
	return a.Allocate(typeFilter, size, 0, tag)
}

// FreeMemory returns an unbound block to the allocator that produced it.
// Blocks bound to a resource must not be freed directly; destroying the
// resource queues them through the frame garbage list instead.
func (d *Device) FreeMemory(a Allocation) {
	if a.Owner != nil {
		a.Owner.Free(a)
	}
}

// BindBufferToMemory attaches a memory block to a buffer created without
// backing. A buffer holds at most one block; host-visible blocks expose
// their mapped bytes through GetBuffer.
func (d *Device) BindBufferToMemory(h BufferHandle, alloc Allocation) error {
	hot, ok := d.buffers.ResolveHot(h)
	if !ok {
		return ErrStaleHandle
	}
	cold, _ := d.buffers.Resolve(h)
	if cold.binding != nil {
		return ErrAlreadyBound
	}

	if err := d.hal.BindBufferMemory(hot.raw, alloc.DriverHandle, 0); err != nil {
		return err
	}
	a := alloc
	cold.binding = &a
	if len(alloc.HostPtr) >= int(cold.desc.Size) {
		cold.hostPtr = alloc.HostPtr[:cold.desc.Size]
	}
	return nil
}

// BindTextureToMemory attaches a memory block to a texture created
// without backing.
func (d *Device) BindTextureToMemory(h TextureHandle, alloc Allocation) error {
	hot, ok := d.textures.ResolveHot(h)
	if !ok {
		return ErrStaleHandle
	}
	cold, _ := d.textures.Resolve(h)
	if cold.binding != nil {
		return ErrAlreadyBound
	}

	if err := d.hal.BindTextureMemory(hot.image, alloc.DriverHandle, 0); err != nil {
		return err
	}
	a := alloc
	cold.binding = &a
	return nil
}

// LocalMemoryInUse returns the bytes of device-local memory currently
// allocated through this device's registered allocators.
func (d *Device) LocalMemoryInUse() uint64 {
	return d.memUsage.LocalInUse()
}

// HostMemoryInUse returns the bytes of host-visible memory currently
// allocated through this device's registered allocators.
func (d *Device) HostMemoryInUse() uint64 {
	return d.memUsage.HostInUse()
}
