package core

import "fmt"

// DefaultFramesInFlight is the number of frame contexts kept in the ring
// when the caller doesn't pick one; NewFrameRing accepts 2 or 3.
const DefaultFramesInFlight = 2

// MinFramesInFlight and MaxFramesInFlight bound the frames-in-flight count
// accepted by NewFrameRing.
const (
	MinFramesInFlight = 2
	MaxFramesInFlight = 3
)

// GarbageEntry is one deferred-destroy action queued by queue_X_for_deletion.
// It is a thunk rather than a tagged union because the concrete driver type
// behind each resource kind is backend-specific; the frame garbage
// collector only needs to know how to release it, not what it is.
type GarbageEntry struct {
	Label   string
	Release func()
}

// GarbageList is the per-frame queue of driver-destroy thunks and memory
// allocations awaiting safe release after the frame's fence signals.
type GarbageList struct {
	entries     []GarbageEntry
	allocations []Allocation
}

// QueueDestroy appends a driver-destroy thunk to the garbage list.
func (g *GarbageList) QueueDestroy(label string, release func()) {
	g.entries = append(g.entries, GarbageEntry{Label: label, Release: release})
}

// QueueAllocation appends a memory allocation to be returned to its owning
// allocator capability.
func (g *GarbageList) QueueAllocation(a Allocation) {
	g.allocations = append(g.allocations, a)
}

// collect runs every queued destroy thunk and returns memory blocks to
// their originating allocators, then empties the list.
func (g *GarbageList) collect() {
	for _, e := range g.entries {
		if e.Release != nil {
			e.Release()
		}
	}
	g.entries = g.entries[:0]

	for _, a := range g.allocations {
		if a.Owner != nil {
			a.Owner.Free(a)
		}
	}
	g.allocations = g.allocations[:0]
}

// DynamicUniformBlock is a large uniform buffer used as a bump allocator
// for transient per-draw data. HostPtr and DriverBuffer are
// backend-specific payloads stashed as opaque handles/byte slices; Cursor
// is the next free byte offset within the block.
type DynamicUniformBlock struct {
	BufferIndex  int
	DriverBuffer uint64
	HostPtr      []byte
	Cursor       uint64
	Capacity     uint64
	// DescriptorSet is the backend's dynamic-offset descriptor set bound to
	// this block's single UNIFORM_BUFFER_DYNAMIC binding.
	DescriptorSet uint64
}

// FrameContext owns everything one in-flight frame needs: its command
// pool's reusable buffers, a transient descriptor pool (modeled here as a
// counter the backend resets), the dynamic-uniform block list, the garbage
// list, and its sync primitives.
type FrameContext struct {
	Index uint32

	// Ready holds command buffers previously submitted and now known safe
	// to re-record (their fence has signaled). Pending holds command
	// buffers submitted this frame, not yet known safe.
	Ready   []CommandBufferHandle
	Pending []CommandBufferHandle

	// DynamicBlocks is this frame's dynamic-uniform ring. CurrentBlock is
	// reset to 0 at BeginFrame.
	DynamicBlocks []*DynamicUniformBlock
	CurrentBlock  int

	Garbage GarbageList

	// ImageAvailable and RenderFinished are binary semaphores; InFlight is
	// the frame's fence. These are opaque driver handles; the core only
	// threads them through Submit/Present calls.
	ImageAvailable uint64
	RenderFinished uint64
	InFlightFence  uint64

	// TransientGeneration increments every BeginFrame; transient bind
	// groups tagged with this value become invalid once it moves on,
	// which is how Transient-lifetime bind groups are
	// implicitly reclaimed without an explicit free.
	TransientGeneration uint64
}

// CommandBufferHandle identifies a recorded or in-flight command buffer
// owned by exactly one FrameContext at a time.
type CommandBufferHandle = Handle[CommandBufferMarker]

// resetForNewFrame clears per-frame state that must not survive across
// begin_frame boundaries: the dynamic-uniform cursor and the transient
// descriptor generation. Ready/Pending are handled by the caller because
// moving pending->ready requires knowing which command buffers the
// just-waited fence covers.
func (f *FrameContext) resetForNewFrame() {
	f.CurrentBlock = 0
	for _, b := range f.DynamicBlocks {
		b.Cursor = 0
	}
	f.TransientGeneration++
}

// FrameRing is the ring of N in-flight frame contexts.
// Exactly one device owns a FrameRing; it is not safe for concurrent use
// from multiple goroutines, matching the single-threaded-per-device
// scheduling model.
type FrameRing struct {
	frames  []*FrameContext
	current uint32
}

// NewFrameRing allocates N frame contexts. N must be 2 or 3.
func NewFrameRing(framesInFlight int) (*FrameRing, error) {
	if framesInFlight < MinFramesInFlight || framesInFlight > MaxFramesInFlight {
		return nil, fmt.Errorf("core: frames-in-flight must be 2 or 3, got %d", framesInFlight)
	}
	r := &FrameRing{frames: make([]*FrameContext, framesInFlight)}
	for i := range r.frames {
		r.frames[i] = &FrameContext{Index: uint32(i)}
	}
	return r, nil
}

// FramesInFlight returns N.
func (r *FrameRing) FramesInFlight() int {
	return len(r.frames)
}

// CurrentFrameIndex returns the ring index of the frame currently being
// recorded into.
func (r *FrameRing) CurrentFrameIndex() uint32 {
	return r.current
}

// Current returns the currently-selected FrameContext.
func (r *FrameRing) Current() *FrameContext {
	return r.frames[r.current]
}

// WaitFence is supplied by the caller so FrameRing stays backend-agnostic:
// it must block until the frame context's in-flight fence is signaled.
type WaitFence func(fence uint64) error

// BeginFrame advances to the next frame context, waits on its in-flight
// fence (it was last used N frames ago, so this proves that frame's GPU
// work is complete), runs the garbage collector for it, and resets its
// per-frame state. It returns the context now ready for recording.
func (r *FrameRing) BeginFrame(wait WaitFence) (*FrameContext, error) {
	r.current = (r.current + 1) % uint32(len(r.frames))
	f := r.frames[r.current]

	if f.InFlightFence != 0 && wait != nil {
		if err := wait(f.InFlightFence); err != nil {
			return nil, fmt.Errorf("core: begin_frame: %w", err)
		}
	}

	// The fence just proved this frame's GPU work is complete, so any
	// command buffer it submitted can move from pending to ready, and any
	// resource queued for deletion during this frame N-in-the-past is now
	// safe to destroy (destruction happens no
	// earlier than frame F+N).
	f.Ready = append(f.Ready, f.Pending...)
	f.Pending = f.Pending[:0]

	f.Garbage.collect()
	f.resetForNewFrame()

	return f, nil
}

// Drain runs every frame's garbage collector immediately and recycles
// all pending command buffers. Only valid once the device has been idled
// (no in-flight work can reference the queued objects); used at teardown.
func (r *FrameRing) Drain() {
	for _, f := range r.frames {
		f.Ready = append(f.Ready, f.Pending...)
		f.Pending = f.Pending[:0]
		f.Garbage.collect()
	}
}

// PopReadyOrNil pops a reusable command buffer from the frame's ready
// list, or returns the zero handle + false if none is available (the
// caller should then allocate a fresh one from the frame's command pool).
func (f *FrameContext) PopReadyOrNil() (CommandBufferHandle, bool) {
	n := len(f.Ready)
	if n == 0 {
		return 0, false
	}
	h := f.Ready[n-1]
	f.Ready = f.Ready[:n-1]
	return h, true
}

// MarkPending records that a command buffer was submitted this frame and
// is not yet known safe to reuse.
func (f *FrameContext) MarkPending(h CommandBufferHandle) {
	f.Pending = append(f.Pending, h)
}
