package core

import "fmt"

// Defaults for the dynamic-uniform ring. Callers may override via
// DynamicUniformConfig; these match typical desktop-GPU
// UNIFORM_BUFFER_DYNAMIC limits.
const (
	DefaultDynamicBufferBlockSize          uint64 = 4 * 1024 * 1024
	DefaultDynamicDataMaxSize              uint64 = 65536
	DefaultMinUniformBufferOffsetAlignment uint64 = 256
)

// DynamicUniformConfig holds the dynamic-uniform ring's three tunables.
type DynamicUniformConfig struct {
	BlockSize          uint64
	MaxAllocationSize  uint64
	MinOffsetAlignment uint64
}

// DefaultDynamicUniformConfig returns the package defaults.
func DefaultDynamicUniformConfig() DynamicUniformConfig {
	return DynamicUniformConfig{
		BlockSize:          DefaultDynamicBufferBlockSize,
		MaxAllocationSize:  DefaultDynamicDataMaxSize,
		MinOffsetAlignment: DefaultMinUniformBufferOffsetAlignment,
	}
}

// slotSize is the fixed per-allocation stride: every allocation is padded
// to MaxAllocationSize (so one dynamic-offset descriptor can address any
// allocation in the block) and that stride is itself aligned up to
// MinOffsetAlignment.
func (c DynamicUniformConfig) slotSize() uint64 {
	return alignUp(c.MaxAllocationSize, c.MinOffsetAlignment)
}

func alignUp(v, align uint64) uint64 {
	if align == 0 {
		return v
	}
	return (v + align - 1) / align * align
}

// DynamicAllocation is returned by AllocateDynamicData.
type DynamicAllocation struct {
	BufferIndex int
	ByteOffset  uint64
	HostPtr     []byte
}

// DynamicBlockFactory creates a new dynamic-uniform block: a buffer of the
// given size, bound to its own descriptor set with a single
// UNIFORM_BUFFER_DYNAMIC binding against the shared dynamic-uniform layout.
// It is backend-specific, so the core never constructs a block directly.
type DynamicBlockFactory func(bufferIndex int, size uint64) (*DynamicUniformBlock, error)

// AllocateDynamicData returns a {buffer_index, byte_offset, host_ptr}
// triple for size bytes of transient per-draw data, reusing the current frame's blocks and growing
// the block list on demand. It returns an error (callers may choose to
// panic per their own policy) if size exceeds MaxAllocationSize.
//
// Two allocations in the same block share BufferIndex; crossing a block
// boundary advances it by exactly 1, and successive allocations never
// return overlapping byte ranges because every allocation consumes a full,
// aligned slotSize() stride regardless of the requested size.
func AllocateDynamicData(cfg DynamicUniformConfig, f *FrameContext, size uint64, newBlock DynamicBlockFactory) (DynamicAllocation, error) {
	if size > cfg.MaxAllocationSize {
		return DynamicAllocation{}, fmt.Errorf("core: dynamic allocation of %d bytes exceeds DynamicDataMaxSize %d", size, cfg.MaxAllocationSize)
	}

	slot := cfg.slotSize()

	block, err := currentOrNextBlock(cfg, f, slot, newBlock)
	if err != nil {
		return DynamicAllocation{}, err
	}

	offset := block.Cursor
	block.Cursor += slot

	return DynamicAllocation{
		BufferIndex: f.CurrentBlock,
		ByteOffset:  offset,
		HostPtr:     block.HostPtr[offset : offset+size],
	}, nil
}

// currentOrNextBlock returns a block in f with at least `slot` bytes of
// room at its cursor, advancing f.CurrentBlock to an existing block or
// growing the list with a freshly-allocated one.
func currentOrNextBlock(cfg DynamicUniformConfig, f *FrameContext, slot uint64, newBlock DynamicBlockFactory) (*DynamicUniformBlock, error) {
	if len(f.DynamicBlocks) > 0 {
		cur := f.DynamicBlocks[f.CurrentBlock]
		if cur.Cursor+slot <= cur.Capacity {
			return cur, nil
		}
		if f.CurrentBlock+1 < len(f.DynamicBlocks) {
			f.CurrentBlock++
			return f.DynamicBlocks[f.CurrentBlock], nil
		}
	}

	size := cfg.BlockSize
	if slot > size {
		size = slot
	}
	block, err := newBlock(len(f.DynamicBlocks), size)
	if err != nil {
		return nil, fmt.Errorf("core: allocating dynamic-uniform block: %w", err)
	}
	block.Capacity = size
	block.BufferIndex = len(f.DynamicBlocks)
	f.DynamicBlocks = append(f.DynamicBlocks, block)
	f.CurrentBlock = block.BufferIndex
	return block, nil
}
