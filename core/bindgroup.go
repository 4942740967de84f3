package core

import "fmt"

// BindGroupLifetime selects which descriptor pool a bind group allocates
// from: the device-lifetime persistent pool, or the current frame's
// transient pool that is reset in full at frame begin. The caller picks
// the lifetime explicitly at creation.
type BindGroupLifetime int

const (
	// BindGroupPersistent groups allocate from the device-lifetime pool
	// and must be explicitly queued for deletion.
	BindGroupPersistent BindGroupLifetime = iota
	// BindGroupTransient groups allocate from the current frame's
	// descriptor pool and are implicitly invalidated the next time that
	// frame's BeginFrame runs; no explicit free needed.
	BindGroupTransient
)

func (l BindGroupLifetime) String() string {
	if l == BindGroupTransient {
		return "transient"
	}
	return "persistent"
}

// TransientBindGroup tags a bind-group handle with the frame generation it
// was allocated under, so IsStale can detect that the owning frame has
// moved on and the group's descriptor-pool storage has been reclaimed.
type TransientBindGroup struct {
	Handle     Handle[BindGroupMarker]
	FrameIndex uint32
	Generation uint64
}

// ErrBindGroupStale is returned when a transient bind group is used after
// its owning frame generation has moved on.
var ErrBindGroupStale = fmt.Errorf("core: transient bind group is stale (frame generation has advanced)")

// NewTransientBindGroup tags handle with the frame's current generation at
// allocation time.
func NewTransientBindGroup(handle Handle[BindGroupMarker], f *FrameContext) TransientBindGroup {
	return TransientBindGroup{Handle: handle, FrameIndex: f.Index, Generation: f.TransientGeneration}
}

// Validate returns ErrBindGroupStale if f's generation has moved past the
// generation this bind group was allocated under.
func (t TransientBindGroup) Validate(f *FrameContext) error {
	if f.Index == t.FrameIndex && f.TransientGeneration != t.Generation {
		return ErrBindGroupStale
	}
	return nil
}
