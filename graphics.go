package gfxcore

import (
	"fmt"

	"github.com/gogpu/gfxcore/core"
	"github.com/gogpu/gfxcore/hal"
)

// InitOptions configures Initialize.
type InitOptions struct {
	// Backend selects a registered hal backend by name; empty picks the
	// best available (a real driver over the conformance sink).
	Backend string

	// FramesInFlight is the frame-ring depth, 2 or 3. Zero means the
	// default.
	FramesInFlight int

	// VSync selects FIFO presentation; when false, MAILBOX or IMMEDIATE
	// is used if the surface supports one.
	VSync bool
}

// Graphics is the per-process entry point: it owns the chosen backend and
// the options devices are created with. It holds no GPU state of its own.
type Graphics struct {
	backend        hal.Backend
	framesInFlight int
	vsync          bool
}

// Initialize picks a backend and validates options.
func Initialize(opts InitOptions) (*Graphics, error) {
	var backend hal.Backend
	var err error
	if opts.Backend != "" {
		backend, err = hal.Get(opts.Backend)
	} else {
		backend, err = hal.Default()
	}
	if err != nil {
		return nil, err
	}

	frames := opts.FramesInFlight
	if frames == 0 {
		frames = core.DefaultFramesInFlight
	}
	if frames < core.MinFramesInFlight || frames > core.MaxFramesInFlight {
		return nil, fmt.Errorf("gfxcore: frames-in-flight must be 2 or 3, got %d", frames)
	}

	return &Graphics{backend: backend, framesInFlight: frames, vsync: opts.VSync}, nil
}

// EnumerateDevices lists the physical devices the backend can open.
func (g *Graphics) EnumerateDevices() ([]hal.AdapterInfo, error) {
	return g.backend.Enumerate()
}

// Surface wraps an OS window's driver surface.
type Surface struct {
	raw uint64
	g   *Graphics
}

// CreateSurface wraps platform window handles in a driver surface.
func (g *Graphics) CreateSurface(displayHandle, windowHandle uintptr) (*Surface, error) {
	raw, err := g.backend.CreateSurface(displayHandle, windowHandle)
	if err != nil {
		return nil, err
	}
	return &Surface{raw: raw, g: g}, nil
}

// Destroy releases the surface. The caller must destroy any swapchain
// created against it first.
func (s *Surface) Destroy() {
	if s.raw != 0 {
		s.g.backend.DestroySurface(s.raw)
		s.raw = 0
	}
}

// CreateDevice opens the adapterIndex-th adapter and builds the frame
// ring, per-frame pools, and sync primitives. surface may be nil for a
// headless device.
func (g *Graphics) CreateDevice(adapterIndex int, surface *Surface) (*Device, error) {
	var surfaceRaw uint64
	if surface != nil {
		surfaceRaw = surface.raw
	}
	driver, err := g.backend.Open(adapterIndex, surfaceRaw)
	if err != nil {
		return nil, err
	}

	d, err := newDevice(g, driver, surfaceRaw)
	if err != nil {
		driver.Destroy()
		return nil, err
	}
	return d, nil
}

// CleanupDevice flushes and tears down a device and everything it still
// owns. Handles into the device are invalid afterwards.
func (g *Graphics) CleanupDevice(d *Device) {
	d.cleanup()
}
