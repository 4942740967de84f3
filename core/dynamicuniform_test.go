package core

import "testing"

// Five allocations of DynamicDataMaxSize in a block of capacity 4x that
// size must yield the buffer-index sequence 0,0,0,0,1.
func TestAllocateDynamicData_FiveAllocationsSpanTwoBlocks(t *testing.T) {
	cfg := DynamicUniformConfig{
		BlockSize:          4 * DefaultDynamicDataMaxSize,
		MaxAllocationSize:  DefaultDynamicDataMaxSize,
		MinOffsetAlignment: DefaultDynamicDataMaxSize, // slot == max size exactly
	}

	f := &FrameContext{}
	newBlock := func(index int, size uint64) (*DynamicUniformBlock, error) {
		return &DynamicUniformBlock{BufferIndex: index, HostPtr: make([]byte, size)}, nil
	}

	var gotIndices []int
	for i := 0; i < 5; i++ {
		alloc, err := AllocateDynamicData(cfg, f, cfg.MaxAllocationSize, newBlock)
		if err != nil {
			t.Fatalf("allocation %d: %v", i, err)
		}
		gotIndices = append(gotIndices, alloc.BufferIndex)
	}

	want := []int{0, 0, 0, 0, 1}
	for i, w := range want {
		if gotIndices[i] != w {
			t.Errorf("allocation %d: buffer_index = %d, want %d (full sequence: %v)", i, gotIndices[i], w, gotIndices)
		}
	}
}

func TestAllocateDynamicData_RejectsOversizedRequest(t *testing.T) {
	cfg := DefaultDynamicUniformConfig()
	f := &FrameContext{}
	newBlock := func(index int, size uint64) (*DynamicUniformBlock, error) {
		return &DynamicUniformBlock{BufferIndex: index, HostPtr: make([]byte, size)}, nil
	}

	_, err := AllocateDynamicData(cfg, f, cfg.MaxAllocationSize+1, newBlock)
	if err == nil {
		t.Fatal("expected an error allocating more than MaxAllocationSize")
	}
}

func TestAllocateDynamicData_NoOverlappingRanges(t *testing.T) {
	cfg := DefaultDynamicUniformConfig()
	f := &FrameContext{}
	newBlock := func(index int, size uint64) (*DynamicUniformBlock, error) {
		return &DynamicUniformBlock{BufferIndex: index, HostPtr: make([]byte, size)}, nil
	}

	a, err := AllocateDynamicData(cfg, f, 16, newBlock)
	if err != nil {
		t.Fatal(err)
	}
	b, err := AllocateDynamicData(cfg, f, 16, newBlock)
	if err != nil {
		t.Fatal(err)
	}

	if a.BufferIndex != b.BufferIndex {
		t.Fatalf("expected both allocations in the same block, got %d and %d", a.BufferIndex, b.BufferIndex)
	}
	if b.ByteOffset < a.ByteOffset+cfg.slotSize() {
		t.Errorf("second allocation at offset %d overlaps the first's slot (slot size %d)", b.ByteOffset, cfg.slotSize())
	}
}

func TestResetForNewFrame_RewindsCursor(t *testing.T) {
	cfg := DefaultDynamicUniformConfig()
	f := &FrameContext{}
	newBlock := func(index int, size uint64) (*DynamicUniformBlock, error) {
		return &DynamicUniformBlock{BufferIndex: index, HostPtr: make([]byte, size)}, nil
	}

	if _, err := AllocateDynamicData(cfg, f, 16, newBlock); err != nil {
		t.Fatal(err)
	}
	f.resetForNewFrame()

	if f.CurrentBlock != 0 {
		t.Errorf("CurrentBlock after reset = %d, want 0", f.CurrentBlock)
	}
	if f.DynamicBlocks[0].Cursor != 0 {
		t.Errorf("block cursor after reset = %d, want 0", f.DynamicBlocks[0].Cursor)
	}
}
