package noop

import (
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/gfxcore/core"
	"github.com/gogpu/gfxcore/hal"
)

func openDevice(t *testing.T) *device {
	t.Helper()
	b := &backend{}
	dev, err := b.Open(0, 0)
	if err != nil {
		t.Fatal(err)
	}
	return dev.(*device)
}

func TestCopyBufferMovesBytes(t *testing.T) {
	d := openDevice(t)

	src, _ := d.CreateBuffer(64, gputypes.BufferUsageCopySrc, "src")
	dst, _ := d.CreateBuffer(64, gputypes.BufferUsageCopyDst, "dst")
	srcMem, srcHost, _, err := d.AllocateDriverMemory(0, 64, 0, core.MemoryCPU, "src")
	if err != nil {
		t.Fatal(err)
	}
	dstMem, dstHost, _, err := d.AllocateDriverMemory(0, 64, 0, core.MemoryCPU, "dst")
	if err != nil {
		t.Fatal(err)
	}
	if err := d.BindBufferMemory(src, srcMem, 0); err != nil {
		t.Fatal(err)
	}
	if err := d.BindBufferMemory(dst, dstMem, 0); err != nil {
		t.Fatal(err)
	}

	for i := range srcHost {
		srcHost[i] = byte(i)
	}
	d.CmdCopyBuffer(0, src, dst, []hal.BufferCopy{{Size: 64}})

	for i := range dstHost {
		if dstHost[i] != byte(i) {
			t.Fatalf("dst[%d] = %d, want %d", i, dstHost[i], i)
		}
	}
}

func TestLiveMemoryBlocksTracksAllocateAndFree(t *testing.T) {
	d := openDevice(t)

	mem, _, _, err := d.AllocateDriverMemory(0, 128, 0, core.MemoryGPU, "block")
	if err != nil {
		t.Fatal(err)
	}
	if d.LiveMemoryBlocks() != 1 {
		t.Fatalf("LiveMemoryBlocks = %d, want 1", d.LiveMemoryBlocks())
	}
	d.FreeDriverMemory(mem)
	if d.LiveMemoryBlocks() != 0 {
		t.Fatalf("LiveMemoryBlocks after free = %d, want 0", d.LiveMemoryBlocks())
	}
	// Double free must not go negative.
	d.FreeDriverMemory(mem)
	if d.LiveMemoryBlocks() != 0 {
		t.Fatalf("LiveMemoryBlocks after double free = %d, want 0", d.LiveMemoryBlocks())
	}
}

func TestSubmitSignalsFenceAndTimeline(t *testing.T) {
	d := openDevice(t)

	fence, _ := d.CreateFence(false)
	sem, _ := d.CreateTimelineSemaphore(0)

	err := d.Submit(nil, nil, []hal.SemaphoreOp{{Semaphore: sem, Value: 3, Timeline: true}}, fence)
	if err != nil {
		t.Fatal(err)
	}
	if !d.fences[fence] {
		t.Error("fence should be signaled after submit")
	}
	v, err := d.SemaphoreValue(sem)
	if err != nil {
		t.Fatal(err)
	}
	if v != 3 {
		t.Errorf("semaphore value = %d, want 3", v)
	}
}

func TestWaitSemaphoreRejectsUnreachableValue(t *testing.T) {
	d := openDevice(t)

	sem, _ := d.CreateTimelineSemaphore(1)
	if err := d.WaitSemaphore(sem, 1); err != nil {
		t.Fatalf("wait at current value: %v", err)
	}
	if err := d.WaitSemaphore(sem, 2); err == nil {
		t.Error("waiting past the last signal must fail instead of hanging")
	}
}

func TestEndCommandBufferRejectsOpenRenderPass(t *testing.T) {
	d := openDevice(t)

	pool, _ := d.CreateCommandPool()
	cb, _ := d.AllocateCommandBuffer(pool)
	if err := d.BeginCommandBuffer(cb, true); err != nil {
		t.Fatal(err)
	}
	d.CmdBeginRenderPass(cb, 0, 0, 64, 64, nil)
	if err := d.EndCommandBuffer(cb); err == nil {
		t.Error("ending with an open render pass must fail")
	}
	d.CmdEndRenderPass(cb)
	if err := d.EndCommandBuffer(cb); err != nil {
		t.Fatal(err)
	}
}
