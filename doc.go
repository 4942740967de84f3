// Package gfxcore is a device-resource manager and frame scheduler that
// sits above an explicit, Vulkan-class graphics API and below a renderer.
//
// Every GPU object is referenced through a generation-checked handle
// resolved inside the device's pools; a stale handle fails to resolve
// instead of touching freed driver state. Per-frame work is scheduled
// across a bounded ring of in-flight frames, command recording goes
// through typed render/compute/blit encoders with automatic
// pipeline-barrier insertion, and no driver object is destroyed while an
// in-flight frame may still reference it.
//
// # Quick start
//
// Import the package and a backend:
//
//	import (
//	    "github.com/gogpu/gfxcore"
//	    _ "github.com/gogpu/gfxcore/hal/vulkan"
//	)
//
//	gfx, err := gfxcore.Initialize(gfxcore.InitOptions{FramesInFlight: 2})
//	device, err := gfx.CreateDevice(0, nil)
//
//	buf, _ := device.CreateBuffer(&gfxcore.BufferDesc{Size: 256, Usage: gputypes.BufferUsageUniform})
//	mem, _ := device.AllocateMemory(256, gfxcore.MemoryModeCPU, 0, "uniforms")
//	device.BindBufferToMemory(buf, mem)
//
//	frame, _ := device.BeginFrame()
//	cmd, _ := device.BeginCommandRecording()
//	...
//	device.SubmitCommandBuffer(cmd, nil)
//
// All calls on one Device must come from a single goroutine or be
// externally serialized; independent devices may be driven independently.
package gfxcore
