package gfxcore_test

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/gfxcore"
	"github.com/gogpu/gfxcore/core"
	"github.com/gogpu/gfxcore/hal"
	_ "github.com/gogpu/gfxcore/hal/noop"
)

func newTestDevice(t *testing.T) (*gfxcore.Graphics, *gfxcore.Device) {
	t.Helper()
	gfx, err := gfxcore.Initialize(gfxcore.InitOptions{Backend: "noop", FramesInFlight: 2})
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	device, err := gfx.CreateDevice(0, nil)
	if err != nil {
		t.Fatalf("CreateDevice: %v", err)
	}
	t.Cleanup(func() { gfx.CleanupDevice(device) })
	return gfx, device
}

func newBoundBuffer(t *testing.T, d *gfxcore.Device, size uint64, label string) gfxcore.BufferHandle {
	t.Helper()
	h, err := d.CreateBuffer(&gfxcore.BufferDesc{Label: label, Size: size, Usage: gputypes.BufferUsageStorage | gputypes.BufferUsageCopySrc | gputypes.BufferUsageCopyDst})
	if err != nil {
		t.Fatalf("CreateBuffer(%s): %v", label, err)
	}
	mem, err := d.AllocateMemory(size, gfxcore.MemoryModeCPU, 0, label)
	if err != nil {
		t.Fatalf("AllocateMemory(%s): %v", label, err)
	}
	if err := d.BindBufferToMemory(h, mem); err != nil {
		t.Fatalf("BindBufferToMemory(%s): %v", label, err)
	}
	return h
}

func TestHandleLifecycle(t *testing.T) {
	_, device := newTestDevice(t)

	h, err := device.CreateBuffer(&gfxcore.BufferDesc{Label: "a", Size: 64, Usage: gputypes.BufferUsageUniform})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := device.GetBuffer(h); !ok {
		t.Fatal("GetBuffer should succeed for a live handle")
	}

	device.QueueBufferForDeletion(h)
	if _, ok := device.GetBuffer(h); ok {
		t.Error("GetBuffer must fail immediately after queueing deletion")
	}

	// The recycled slot must mint a strictly larger generation.
	h2, err := device.CreateBuffer(&gfxcore.BufferDesc{Label: "b", Size: 64, Usage: gputypes.BufferUsageUniform})
	if err != nil {
		t.Fatal(err)
	}
	if h2.Index() != h.Index() {
		t.Fatalf("expected slot reuse, got index %d then %d", h.Index(), h2.Index())
	}
	if h2.Generation() <= h.Generation() {
		t.Errorf("generation must strictly increase: %d then %d", h.Generation(), h2.Generation())
	}
	if _, ok := device.GetBuffer(h); ok {
		t.Error("the old handle must not resolve to the recycled slot")
	}
}

func TestDeletionRing_FreesMemoryAfterFrameDelay(t *testing.T) {
	_, device := newTestDevice(t)

	h := newBoundBuffer(t, device, 512, "short-lived")
	if device.HostMemoryInUse() != 512 {
		t.Fatalf("HostMemoryInUse = %d, want 512", device.HostMemoryInUse())
	}

	device.QueueBufferForDeletion(h)
	if device.HostMemoryInUse() != 512 {
		t.Errorf("memory must not be freed at queue time, in use = %d", device.HostMemoryInUse())
	}

	for i := 0; i < device.GetFramesInFlight()+1; i++ {
		if _, err := device.BeginFrame(); err != nil {
			t.Fatal(err)
		}
	}
	if device.HostMemoryInUse() != 0 {
		t.Errorf("HostMemoryInUse after the frame delay = %d, want 0", device.HostMemoryInUse())
	}
}

func TestBindBufferToMemory_RejectsDoubleBind(t *testing.T) {
	_, device := newTestDevice(t)

	h := newBoundBuffer(t, device, 64, "bound")
	extra, err := device.AllocateMemory(64, gfxcore.MemoryModeCPU, 0, "extra")
	if err != nil {
		t.Fatal(err)
	}
	if err := device.BindBufferToMemory(h, extra); !errors.Is(err, gfxcore.ErrAlreadyBound) {
		t.Errorf("second bind = %v, want ErrAlreadyBound", err)
	}
	device.FreeMemory(extra)
}

func TestBlitPass_BufferCopyRoundTrip(t *testing.T) {
	_, device := newTestDevice(t)

	src := newBoundBuffer(t, device, 256, "src")
	dst := newBoundBuffer(t, device, 256, "dst")

	srcInfo, _ := device.GetBuffer(src)
	for i := 0; i < 64; i++ {
		binary.LittleEndian.PutUint32(srcInfo.HostPtr[i*4:], uint32(i+1))
	}

	cmd, err := device.BeginCommandRecording()
	if err != nil {
		t.Fatal(err)
	}
	blit, err := device.BeginBlitPass(cmd)
	if err != nil {
		t.Fatal(err)
	}
	if err := blit.CopyBuffer(src, dst, []hal.BufferCopy{{Size: 256}}); err != nil {
		t.Fatal(err)
	}
	if err := device.EndBlitPass(blit); err != nil {
		t.Fatal(err)
	}
	if err := device.EndCommandRecording(cmd); err != nil {
		t.Fatal(err)
	}
	if err := device.SubmitCommandBuffer(cmd, nil); err != nil {
		t.Fatal(err)
	}
	if err := device.WaitOnCommandBuffer(cmd); err != nil {
		t.Fatal(err)
	}

	dstInfo, _ := device.GetBuffer(dst)
	for i := 0; i < 64; i++ {
		got := binary.LittleEndian.Uint32(dstInfo.HostPtr[i*4:])
		if got != uint32(i+1) {
			t.Fatalf("dst[%d] = %d, want %d", i, got, i+1)
		}
	}
}

func TestGenerateMipmaps_DeepestMipIsSourceAverage(t *testing.T) {
	_, device := newTestDevice(t)

	tex, err := device.CreateTexture(&gfxcore.TextureDesc{
		Label: "mips", Width: 4, Height: 4, MipLevels: 3,
		Format: gputypes.TextureFormatRGBA8Unorm,
		Usage:  gputypes.TextureUsageCopySrc | gputypes.TextureUsageCopyDst | gputypes.TextureUsageTextureBinding,
	})
	if err != nil {
		t.Fatal(err)
	}
	size, _, filter, err := device.TextureMemoryRequirements(tex)
	if err != nil {
		t.Fatal(err)
	}
	mem, err := device.AllocateMemory(size, gfxcore.MemoryModeCPU, filter, "mips")
	if err != nil {
		t.Fatal(err)
	}
	if err := device.BindTextureToMemory(tex, mem); err != nil {
		t.Fatal(err)
	}

	// Red/blue checkerboard: the full-chain average is half red, half blue.
	upload := newBoundBuffer(t, device, 4*4*4, "upload")
	uploadInfo, _ := device.GetBuffer(upload)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			px := uploadInfo.HostPtr[(y*4+x)*4:]
			if (x+y)%2 == 0 {
				px[0], px[3] = 255, 255
			} else {
				px[2], px[3] = 255, 255
			}
		}
	}

	readback := newBoundBuffer(t, device, 4, "readback")

	cmd, err := device.BeginCommandRecording()
	if err != nil {
		t.Fatal(err)
	}
	blit, err := device.BeginBlitPass(cmd)
	if err != nil {
		t.Fatal(err)
	}
	if err := blit.CopyBufferToTexture(upload, tex, []hal.BufferTextureCopy{{Width: 4, Height: 4, BytesPerRow: 16}}); err != nil {
		t.Fatal(err)
	}
	if err := blit.GenerateMipmaps(tex); err != nil {
		t.Fatal(err)
	}
	if err := blit.CopyTextureToBuffer(tex, readback, []hal.BufferTextureCopy{{MipLevel: 2, Width: 1, Height: 1, BytesPerRow: 4}}); err != nil {
		t.Fatal(err)
	}
	if err := device.EndBlitPass(blit); err != nil {
		t.Fatal(err)
	}
	if err := device.EndCommandRecording(cmd); err != nil {
		t.Fatal(err)
	}
	if err := device.SubmitCommandBuffer(cmd, nil); err != nil {
		t.Fatal(err)
	}

	got, _ := device.GetBuffer(readback)
	r, g, b := got.HostPtr[0], got.HostPtr[1], got.HostPtr[2]
	if r != 127 || g != 0 || b != 127 {
		t.Errorf("mip 2 texel = (%d,%d,%d), want the checkerboard average (127,0,127)", r, g, b)
	}
}

func TestTimelineSemaphore_SignalWaitQuery(t *testing.T) {
	_, device := newTestDevice(t)

	sem, err := device.CreateSemaphore()
	if err != nil {
		t.Fatal(err)
	}
	if err := device.SignalSemaphore(sem, 5); err != nil {
		t.Fatal(err)
	}
	if err := device.SignalSemaphore(sem, 5); err == nil {
		t.Error("signaling a non-increasing value should fail")
	}
	if err := device.WaitSemaphore(sem, 5); err != nil {
		t.Fatalf("WaitSemaphore(5) after signal: %v", err)
	}
	v, err := device.GetSemaphoreValue(sem)
	if err != nil {
		t.Fatal(err)
	}
	if v < 5 {
		t.Errorf("GetSemaphoreValue = %d, want >= 5", v)
	}

	device.QueueSemaphoreForDeletion(sem)
	if _, err := device.GetSemaphoreValue(sem); !errors.Is(err, gfxcore.ErrStaleHandle) {
		t.Errorf("GetSemaphoreValue on a queued-for-deletion handle = %v, want ErrStaleHandle", err)
	}
}

func TestSubmitSignalsTimelineSemaphore(t *testing.T) {
	_, device := newTestDevice(t)

	sem, err := device.CreateSemaphore()
	if err != nil {
		t.Fatal(err)
	}

	cmd, err := device.BeginCommandRecording()
	if err != nil {
		t.Fatal(err)
	}
	if err := device.EndCommandRecording(cmd); err != nil {
		t.Fatal(err)
	}
	if err := device.SubmitCommandBuffer(cmd, &gfxcore.SubmitInfo{
		SignalSemaphores: []gfxcore.SemaphoreOp{{Semaphore: sem, Value: 7}},
	}); err != nil {
		t.Fatal(err)
	}
	if err := device.WaitSemaphore(sem, 7); err != nil {
		t.Fatalf("host wait for submitted signal: %v", err)
	}
	v, _ := device.GetSemaphoreValue(sem)
	if v < 7 {
		t.Errorf("GetSemaphoreValue = %d, want >= 7", v)
	}
}

func TestFrameLoop_PresentCycle(t *testing.T) {
	gfx, err := gfxcore.Initialize(gfxcore.InitOptions{Backend: "noop", FramesInFlight: 2})
	if err != nil {
		t.Fatal(err)
	}
	surface, err := gfx.CreateSurface(0, 0)
	if err != nil {
		t.Fatal(err)
	}
	device, err := gfx.CreateDevice(0, surface)
	if err != nil {
		t.Fatal(err)
	}
	defer gfx.CleanupDevice(device)

	if err := device.CreateSwapchain(1280, 720); err != nil {
		t.Fatal(err)
	}
	if device.MainRenderPass().IsNull() {
		t.Fatal("CreateSwapchain must build the main render pass")
	}

	for frame := 0; frame < 3; frame++ {
		if _, err := device.BeginFrame(); err != nil {
			t.Fatalf("frame %d BeginFrame: %v", frame, err)
		}
		ok, err := device.AcquireSwapchainImage()
		if err != nil {
			t.Fatalf("frame %d acquire: %v", frame, err)
		}
		if !ok {
			t.Fatalf("frame %d acquire reported out-of-date on a stable surface", frame)
		}

		cmd, err := device.BeginCommandRecording()
		if err != nil {
			t.Fatal(err)
		}
		re, err := device.BeginRenderPass(cmd, device.MainRenderPass())
		if err != nil {
			t.Fatalf("frame %d BeginRenderPass: %v", frame, err)
		}
		if err := device.EndRenderPass(re); err != nil {
			t.Fatal(err)
		}
		if err := device.EndCommandRecording(cmd); err != nil {
			t.Fatal(err)
		}

		presented, err := device.Present(cmd, nil)
		if err != nil {
			t.Fatalf("frame %d Present: %v", frame, err)
		}
		if !presented {
			t.Fatalf("frame %d Present reported out-of-date on a stable surface", frame)
		}
	}
}

func TestRenderPass_RejectsNestedPass(t *testing.T) {
	_, device := newTestDevice(t)

	cmd, err := device.BeginCommandRecording()
	if err != nil {
		t.Fatal(err)
	}
	blit, err := device.BeginBlitPass(cmd)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := device.BeginComputePass(cmd); !errors.Is(err, core.ErrPassAlreadyOpen) {
		t.Errorf("nested pass = %v, want ErrPassAlreadyOpen", err)
	}
	if err := device.EndBlitPass(blit); err != nil {
		t.Fatal(err)
	}
	if err := device.EndCommandRecording(cmd); err != nil {
		t.Fatal(err)
	}
	if err := device.ReturnCommandBuffer(cmd); err != nil {
		t.Fatal(err)
	}
}

func TestCommandBufferRecycling(t *testing.T) {
	_, device := newTestDevice(t)

	cmd, err := device.BeginCommandRecording()
	if err != nil {
		t.Fatal(err)
	}
	if err := device.EndCommandRecording(cmd); err != nil {
		t.Fatal(err)
	}
	if err := device.SubmitCommandBuffer(cmd, nil); err != nil {
		t.Fatal(err)
	}

	// After the ring wraps back to this frame, the pending buffer has
	// moved to ready and is reused instead of a fresh allocation.
	for i := 0; i < device.GetFramesInFlight(); i++ {
		if _, err := device.BeginFrame(); err != nil {
			t.Fatal(err)
		}
	}
	cmd2, err := device.BeginCommandRecording()
	if err != nil {
		t.Fatal(err)
	}
	if cmd2.Handle() != cmd.Handle() {
		t.Errorf("expected the recycled command buffer, got %v then %v", cmd.Handle(), cmd2.Handle())
	}
}
