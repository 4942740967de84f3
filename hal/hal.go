// Package hal is the driver seam: an abstract core operating on handles
// above, and a backend implementing the driver-specific create/destroy/
// record primitives below. Every driver object crosses this boundary as
// an opaque uint64; the resource descriptors, barrier masks, and compiled
// render-pass layouts come from the core and gputypes vocabularies, so a
// backend never defines its own copy of those.
//
// Backends register themselves from an init function:
//
//	import _ "github.com/gogpu/gfxcore/hal/vulkan"
//
// and the top-level package picks one at Initialize time.
package hal

import (
	"errors"
	"fmt"
	"sort"
)

// Error taxonomy. Driver return codes not covered here are treated as
// programming errors by the layer above.
var (
	// ErrDeviceLost reports a fatal driver status; subsequent calls on the
	// device are unsafe.
	ErrDeviceLost = errors.New("hal: device lost")

	// ErrOutOfMemory reports a failed driver allocation.
	ErrOutOfMemory = errors.New("hal: out of device memory")

	// ErrSwapchainOutOfDate reports that the surface changed (resize,
	// minimize) and the swapchain must be recreated before presenting.
	ErrSwapchainOutOfDate = errors.New("hal: swapchain out of date")

	// ErrNotSupported reports a capability the backend cannot provide.
	ErrNotSupported = errors.New("hal: not supported")
)

// AdapterInfo describes one enumerated physical device.
type AdapterInfo struct {
	Name     string
	Backend  string
	Discrete bool
}

// Backend is the entry point one driver implementation registers.
type Backend interface {
	// Name identifies the backend ("vulkan", "noop").
	Name() string

	// Enumerate lists the physical devices this backend can open.
	Enumerate() ([]AdapterInfo, error)

	// CreateSurface wraps an OS window in a driver surface. The two
	// handles are platform-dependent (HINSTANCE/HWND on Windows, Display*/
	// Window on X11); backends without presentation accept zeros.
	CreateSurface(displayHandle, windowHandle uintptr) (uint64, error)

	// DestroySurface releases a surface created by CreateSurface.
	DestroySurface(surface uint64)

	// Open creates a logical device on the adapterIndex-th enumerated
	// adapter. surface may be 0 for headless devices; when non-zero the
	// device's queue is chosen to support presenting to it.
	Open(adapterIndex int, surface uint64) (Device, error)
}

var registry = map[string]Backend{}

// Register adds a backend under its name. Called from backend package
// init functions; later registrations of the same name win, so a test can
// shadow a real backend.
func Register(b Backend) {
	registry[b.Name()] = b
}

// Get returns a registered backend by name.
func Get(name string) (Backend, error) {
	b, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("hal: backend %q is not registered (missing import?)", name)
	}
	return b, nil
}

// Registered returns the registered backend names, sorted.
func Registered() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Default returns the first registered backend by a fixed preference
// order: a real driver wins over the conformance sink.
func Default() (Backend, error) {
	for _, name := range []string{"vulkan", "noop"} {
		if b, ok := registry[name]; ok {
			return b, nil
		}
	}
	for _, b := range registry {
		return b, nil
	}
	return nil, errors.New("hal: no backends registered (import a backend package)")
}
