package gfxcore

import (
	"fmt"

	"github.com/gogpu/gfxcore/core"
	"github.com/gogpu/gfxcore/hal"
)

// Handle aliases, one per pool-managed resource kind. A handle is a
// 64-bit (index, generation) value; the zero handle never resolves.
type (
	BufferHandle           = core.Handle[core.BufferMarker]
	TextureHandle          = core.Handle[core.TextureMarker]
	SamplerHandle          = core.Handle[core.SamplerMarker]
	BindGroupLayoutHandle  = core.Handle[core.BindGroupLayoutMarker]
	BindGroupHandle        = core.Handle[core.BindGroupMarker]
	ShaderHandle           = core.Handle[core.ShaderMarker]
	ComputeShaderHandle    = core.Handle[core.ComputeShaderMarker]
	RenderPassLayoutHandle = core.Handle[core.RenderPassLayoutMarker]
	RenderPassHandle       = core.Handle[core.RenderPassMarker]
	SemaphoreHandle        = core.Handle[core.SemaphoreMarker]
)

// Hot/cold pool payloads. Hot halves carry only what command recording
// touches; descriptors and memory bindings live in the cold halves.
type (
	bufferHot  struct{ raw uint64 }
	bufferCold struct {
		desc    BufferDesc
		binding *core.Allocation
		hostPtr []byte
	}

	textureHot  struct{ image, view uint64 }
	textureCold struct {
		desc     TextureDesc
		binding  *core.Allocation
		original bool // false for views aliasing another texture's image
	}

	samplerHot  struct{ raw uint64 }
	samplerCold struct{ desc hal.SamplerDesc }

	bglHot  struct{ raw uint64 }
	bglCold struct{ bindings []hal.LayoutBinding }

	bindGroupHot  struct{ set uint64 }
	bindGroupCold struct {
		layout    BindGroupLayoutHandle
		lifetime  core.BindGroupLifetime
		transient core.TransientBindGroup
	}

	shaderHot  struct{ pipeline, pipelineLayout uint64 }
	shaderCold struct {
		desc    ShaderDesc
		modules [2]uint64
	}

	computeShaderHot  struct{ pipeline, pipelineLayout uint64 }
	computeShaderCold struct {
		desc   ComputeShaderDesc
		module uint64
	}

	rplHot  struct{ raw uint64 }
	rplCold struct{ layout core.RenderPassLayout }

	rpHot  struct{ raw uint64 }
	rpCold struct {
		pass   *core.RenderPass
		clears []hal.ClearValue
	}

	semaphoreHot  struct{ raw uint64 }
	semaphoreCold struct{ lastKnown uint64 }

	cmdHot  struct{ raw uint64 }
	cmdCold struct{ frame uint32 }
)

// frameDriverState is the driver half of one frame context: its command
// pool and its transient descriptor pool, reset wholesale at frame begin.
type frameDriverState struct {
	commandPool    uint64
	descriptorPool uint64
}

// Device owns the resource pools, the frame-context ring, and the driver
// device underneath. All methods must be called from one goroutine, or be
// externally serialized.
type Device struct {
	g       *Graphics
	hal     hal.Device
	surface uint64

	frames      *core.FrameRing
	frameDriver []frameDriverState
	insideFrame bool

	swapchain    *core.Swapchain
	swapchainRaw uint64
	mainPass     RenderPassHandle

	persistentPool uint64
	dynLayout      uint64

	buffers           *core.GenPool[bufferHot, bufferCold, core.BufferMarker]
	textures          *core.GenPool[textureHot, textureCold, core.TextureMarker]
	samplers          *core.GenPool[samplerHot, samplerCold, core.SamplerMarker]
	bindGroupLayouts  *core.GenPool[bglHot, bglCold, core.BindGroupLayoutMarker]
	bindGroups        *core.GenPool[bindGroupHot, bindGroupCold, core.BindGroupMarker]
	shaders           *core.GenPool[shaderHot, shaderCold, core.ShaderMarker]
	computeShaders    *core.GenPool[computeShaderHot, computeShaderCold, core.ComputeShaderMarker]
	renderPassLayouts *core.GenPool[rplHot, rplCold, core.RenderPassLayoutMarker]
	renderPasses      *core.GenPool[rpHot, rpCold, core.RenderPassMarker]
	semaphores        *core.GenPool[semaphoreHot, semaphoreCold, core.SemaphoreMarker]
	commandBuffers    *core.GenPool[cmdHot, cmdCold, core.CommandBufferMarker]

	allocators map[MemoryMode]Allocator
	memUsage   core.MemoryUsage
	dynCfg     core.DynamicUniformConfig

	// dynAllocations backs the dynamic-uniform blocks; blocks live for the
	// device lifetime, so their memory is released only at cleanup.
	dynAllocations []core.Allocation
}

func newDevice(g *Graphics, driver hal.Device, surface uint64) (*Device, error) {
	frames, err := core.NewFrameRing(g.framesInFlight)
	if err != nil {
		return nil, err
	}

	d := &Device{
		g:       g,
		hal:     driver,
		surface: surface,
		frames:  frames,
		dynCfg:  core.DefaultDynamicUniformConfig(),

		buffers:           core.NewGenPool[bufferHot, bufferCold, core.BufferMarker](),
		textures:          core.NewGenPool[textureHot, textureCold, core.TextureMarker](),
		samplers:          core.NewGenPool[samplerHot, samplerCold, core.SamplerMarker](),
		bindGroupLayouts:  core.NewGenPool[bglHot, bglCold, core.BindGroupLayoutMarker](),
		bindGroups:        core.NewGenPool[bindGroupHot, bindGroupCold, core.BindGroupMarker](),
		shaders:           core.NewGenPool[shaderHot, shaderCold, core.ShaderMarker](),
		computeShaders:    core.NewGenPool[computeShaderHot, computeShaderCold, core.ComputeShaderMarker](),
		renderPassLayouts: core.NewGenPool[rplHot, rplCold, core.RenderPassLayoutMarker](),
		renderPasses:      core.NewGenPool[rpHot, rpCold, core.RenderPassMarker](),
		semaphores:        core.NewGenPool[semaphoreHot, semaphoreCold, core.SemaphoreMarker](),
		commandBuffers:    core.NewGenPool[cmdHot, cmdCold, core.CommandBufferMarker](),
	}

	// Built-in staging allocator: forwards to the driver, host-visible,
	// metered like every registered allocator.
	d.allocators = map[MemoryMode]Allocator{}
	d.SetMemoryAllocator(MemoryModeCPU, core.NewDynamicStagingAllocator(driver))

	for i := 0; i < frames.FramesInFlight(); i++ {
		fs := frameDriverState{}
		if fs.commandPool, err = driver.CreateCommandPool(); err != nil {
			return nil, fmt.Errorf("gfxcore: frame %d command pool: %w", i, err)
		}
		if fs.descriptorPool, err = driver.CreateDescriptorPool(256, true); err != nil {
			return nil, fmt.Errorf("gfxcore: frame %d descriptor pool: %w", i, err)
		}
		d.frameDriver = append(d.frameDriver, fs)
	}

	// Sync primitives per frame. The in-flight fence starts signaled so
	// the first begin_frame on each slot does not block.
	for i := 0; i < frames.FramesInFlight(); i++ {
		f, err := frames.BeginFrame(nil)
		if err != nil {
			return nil, err
		}
		if f.ImageAvailable, err = driver.CreateBinarySemaphore(); err != nil {
			return nil, err
		}
		if f.RenderFinished, err = driver.CreateBinarySemaphore(); err != nil {
			return nil, err
		}
		if f.InFlightFence, err = driver.CreateFence(true); err != nil {
			return nil, err
		}
	}

	if d.persistentPool, err = driver.CreateDescriptorPool(1024, false); err != nil {
		return nil, err
	}
	if d.dynLayout, err = driver.CreateBindGroupLayout([]hal.LayoutBinding{{
		Slot: 0, Type: hal.BindingUniformBufferDynamic, Count: 1,
	}}); err != nil {
		return nil, err
	}

	return d, nil
}

// currentFrameDriver returns the driver state of the current frame.
func (d *Device) currentFrameDriver() *frameDriverState {
	return &d.frameDriver[d.frames.CurrentFrameIndex()]
}

// garbage returns the current frame's garbage list, the destination for
// every queue_X_for_deletion.
func (d *Device) garbage() *core.GarbageList {
	return &d.frames.Current().Garbage
}

// FlushDevice blocks until the GPU is idle.
func (d *Device) FlushDevice() error {
	return d.hal.WaitIdle()
}

// cleanup tears the device down: idle the queue, drain every frame's
// garbage, then destroy all still-live pool contents and the per-frame
// driver state.
func (d *Device) cleanup() {
	_ = d.hal.WaitIdle()
	d.frames.Drain()

	d.buffers.ForEach(func(_ BufferHandle, hot *bufferHot, cold *bufferCold) bool {
		d.hal.DestroyBuffer(hot.raw)
		if cold.binding != nil && cold.binding.Owner != nil {
			cold.binding.Owner.Free(*cold.binding)
		}
		return true
	})
	d.textures.ForEach(func(_ TextureHandle, hot *textureHot, cold *textureCold) bool {
		d.hal.DestroyTextureView(hot.view)
		if cold.original {
			d.hal.DestroyTexture(hot.image)
		}
		if cold.binding != nil && cold.binding.Owner != nil {
			cold.binding.Owner.Free(*cold.binding)
		}
		return true
	})
	d.samplers.ForEach(func(_ SamplerHandle, hot *samplerHot, _ *samplerCold) bool {
		d.hal.DestroySampler(hot.raw)
		return true
	})
	d.shaders.ForEach(func(_ ShaderHandle, hot *shaderHot, cold *shaderCold) bool {
		d.hal.DestroyPipeline(hot.pipeline)
		d.hal.DestroyPipelineLayout(hot.pipelineLayout)
		for _, m := range cold.modules {
			if m != 0 {
				d.hal.DestroyShaderModule(m)
			}
		}
		return true
	})
	d.computeShaders.ForEach(func(_ ComputeShaderHandle, hot *computeShaderHot, cold *computeShaderCold) bool {
		d.hal.DestroyPipeline(hot.pipeline)
		d.hal.DestroyPipelineLayout(hot.pipelineLayout)
		if cold.module != 0 {
			d.hal.DestroyShaderModule(cold.module)
		}
		return true
	})
	d.renderPasses.ForEach(func(_ RenderPassHandle, hot *rpHot, cold *rpCold) bool {
		for _, fb := range cold.pass.Framebuffers {
			d.hal.DestroyFramebuffer(fb.Driver)
		}
		d.hal.DestroyRenderPass(hot.raw)
		return true
	})
	d.renderPassLayouts.ForEach(func(_ RenderPassLayoutHandle, hot *rplHot, _ *rplCold) bool {
		d.hal.DestroyRenderPass(hot.raw)
		return true
	})
	d.bindGroupLayouts.ForEach(func(_ BindGroupLayoutHandle, hot *bglHot, _ *bglCold) bool {
		d.hal.DestroyBindGroupLayout(hot.raw)
		return true
	})
	d.semaphores.ForEach(func(_ SemaphoreHandle, hot *semaphoreHot, _ *semaphoreCold) bool {
		d.hal.DestroySemaphore(hot.raw)
		return true
	})

	for i := 0; i < d.frames.FramesInFlight(); i++ {
		f, _ := d.frames.BeginFrame(nil)
		d.hal.DestroySemaphore(f.ImageAvailable)
		d.hal.DestroySemaphore(f.RenderFinished)
		d.hal.DestroyFence(f.InFlightFence)
		for _, block := range f.DynamicBlocks {
			d.hal.DestroyBuffer(block.DriverBuffer)
		}
	}
	for _, fs := range d.frameDriver {
		d.hal.DestroyCommandPool(fs.commandPool)
		d.hal.DestroyDescriptorPool(fs.descriptorPool)
	}
	for _, a := range d.dynAllocations {
		if a.Owner != nil {
			a.Owner.Free(a)
		}
	}
	d.hal.DestroyDescriptorPool(d.persistentPool)
	d.hal.DestroyBindGroupLayout(d.dynLayout)
	if d.swapchainRaw != 0 {
		d.hal.DestroySwapchain(d.swapchainRaw)
	}
	d.hal.Destroy()
}
