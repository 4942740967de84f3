package core

import "testing"

func TestNewFrameRing_RejectsOutOfRangeCount(t *testing.T) {
	if _, err := NewFrameRing(1); err == nil {
		t.Error("expected an error for framesInFlight=1")
	}
	if _, err := NewFrameRing(4); err == nil {
		t.Error("expected an error for framesInFlight=4")
	}
	if _, err := NewFrameRing(2); err != nil {
		t.Errorf("framesInFlight=2 should be valid: %v", err)
	}
}

func TestFrameRing_BeginFrame_WaitsAndCollectsGarbage(t *testing.T) {
	r, err := NewFrameRing(2)
	if err != nil {
		t.Fatal(err)
	}

	released := false
	r.frames[1].InFlightFence = 42
	r.frames[1].Garbage.QueueDestroy("x", func() { released = true })

	waited := uint64(0)
	wait := func(fence uint64) error {
		waited = fence
		return nil
	}

	f, err := r.BeginFrame(wait)
	if err != nil {
		t.Fatal(err)
	}
	if waited != 42 {
		t.Errorf("waited on fence %d, want 42", waited)
	}
	if !released {
		t.Error("garbage queued on the frame should be collected by BeginFrame")
	}
	if f != r.frames[1] {
		t.Error("BeginFrame should return the newly-selected frame context")
	}
}

func TestFrameRing_BeginFrame_MovesPendingToReady(t *testing.T) {
	r, err := NewFrameRing(2)
	if err != nil {
		t.Fatal(err)
	}

	h := NewHandle[CommandBufferMarker](1, 1)
	r.frames[1].Pending = append(r.frames[1].Pending, h)

	f, err := r.BeginFrame(nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(f.Pending) != 0 {
		t.Errorf("Pending should be drained, len = %d", len(f.Pending))
	}
	if len(f.Ready) != 1 || f.Ready[0] != h {
		t.Errorf("Ready = %v, want [%v]", f.Ready, h)
	}
}

func TestFrameContext_PopReadyOrNil(t *testing.T) {
	f := &FrameContext{}
	if _, ok := f.PopReadyOrNil(); ok {
		t.Error("PopReadyOrNil on an empty list should return false")
	}

	h := NewHandle[CommandBufferMarker](3, 1)
	f.Ready = append(f.Ready, h)

	got, ok := f.PopReadyOrNil()
	if !ok || got != h {
		t.Errorf("PopReadyOrNil() = %v, %v; want %v, true", got, ok, h)
	}
	if len(f.Ready) != 0 {
		t.Error("popped handle should be removed from Ready")
	}
}

func TestGarbageList_CollectReturnsAllocationsToOwner(t *testing.T) {
	var freed []Allocation
	owner := &recordingAllocator{onFree: func(a Allocation) { freed = append(freed, a) }}

	g := &GarbageList{}
	g.QueueAllocation(Allocation{Tag: "a", Owner: owner})
	g.QueueAllocation(Allocation{Tag: "b", Owner: owner})

	g.collect()

	if len(freed) != 2 {
		t.Fatalf("freed %d allocations, want 2", len(freed))
	}
}

type recordingAllocator struct {
	onFree func(Allocation)
}

func (r *recordingAllocator) Allocate(typeFilter uint32, size, alignment uint64, tag string) (Allocation, error) {
	return Allocation{Tag: tag, Owner: r}, nil
}

func (r *recordingAllocator) Free(a Allocation) {
	r.onFree(a)
}
