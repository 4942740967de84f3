package core

import "testing"

func newTestCommandRecording() *CommandRecording {
	f := &FrameContext{}
	alloc := func() (CommandBufferHandle, error) {
		return NewHandle[CommandBufferMarker](1, 1), nil
	}
	c, err := BeginCommandRecording(f, true, alloc)
	if err != nil {
		panic(err)
	}
	return c
}

func TestBeginCommandRecording_ReusesReadyBuffer(t *testing.T) {
	f := &FrameContext{}
	readyHandle := NewHandle[CommandBufferMarker](7, 2)
	f.Ready = append(f.Ready, readyHandle)

	allocCalled := false
	alloc := func() (CommandBufferHandle, error) {
		allocCalled = true
		return NewHandle[CommandBufferMarker](99, 1), nil
	}

	c, err := BeginCommandRecording(f, false, alloc)
	if err != nil {
		t.Fatal(err)
	}
	if allocCalled {
		t.Error("should reuse the ready buffer instead of allocating")
	}
	if c.Handle != readyHandle {
		t.Errorf("Handle = %v, want %v", c.Handle, readyHandle)
	}
	if len(f.Ready) != 0 {
		t.Errorf("Ready should be drained, len = %d", len(f.Ready))
	}
}

func TestEndCommandRecording_RejectsOpenPass(t *testing.T) {
	c := newTestCommandRecording()
	c.OpenPass = PassRender

	err := EndCommandRecording(c, func() {})
	if err == nil {
		t.Fatal("expected an error ending a recording with an open pass")
	}
}

func TestSubmitCommandBuffer_MovesToPending(t *testing.T) {
	f := &FrameContext{}
	c := &CommandRecording{Handle: NewHandle[CommandBufferMarker](1, 1)}

	submitted := false
	SubmitCommandBuffer(f, c, func() { submitted = true })

	if !submitted {
		t.Error("submit hook was not called")
	}
	if len(f.Pending) != 1 || f.Pending[0] != c.Handle {
		t.Errorf("Pending = %v, want [%v]", f.Pending, c.Handle)
	}
}

func TestRenderPassEncoder_RejectsNestedBegin(t *testing.T) {
	c := newTestCommandRecording()
	pass := &RenderPass{Layout: RenderPassLayout{Subpasses: make([]CompiledSubpass, 1)}}

	if _, err := BeginRenderPass(c, pass, func(uint32, uint32) {}, func() {}); err != nil {
		t.Fatal(err)
	}
	if _, err := BeginRenderPass(c, pass, func(uint32, uint32) {}, func() {}); err != ErrPassAlreadyOpen {
		t.Errorf("second BeginRenderPass = %v, want ErrPassAlreadyOpen", err)
	}
}

func TestEndRenderPass_AutoAdvancesRemainingSubpasses(t *testing.T) {
	c := newTestCommandRecording()
	pass := &RenderPass{Layout: RenderPassLayout{Subpasses: make([]CompiledSubpass, 3)}}

	re, err := BeginRenderPass(c, pass, func(uint32, uint32) {}, func() {})
	if err != nil {
		t.Fatal(err)
	}

	advances := 0
	err = EndRenderPass(re, func() { advances++ }, func() {})
	if err != nil {
		t.Fatal(err)
	}
	if advances != 2 {
		t.Errorf("auto-advanced %d times, want 2 (to cover subpasses 1 and 2)", advances)
	}
	if c.OpenPass != PassNone {
		t.Error("OpenPass should be PassNone after EndRenderPass")
	}
}

func TestComputePass_BarriersFireInOrder(t *testing.T) {
	c := newTestCommandRecording()

	var calls []string
	barrier := func(src, dst PipelineStage, sa, da AccessMask) {
		calls = append(calls, "barrier")
	}

	ce, err := BeginComputePass(c, barrier)
	if err != nil {
		t.Fatal(err)
	}
	if c.OpenPass != PassCompute {
		t.Error("OpenPass should be PassCompute")
	}
	if err := EndComputePass(ce, barrier); err != nil {
		t.Fatal(err)
	}
	if len(calls) != 2 {
		t.Errorf("expected 2 barrier calls (entry+exit), got %d", len(calls))
	}
	if c.OpenPass != PassNone {
		t.Error("OpenPass should be PassNone after EndComputePass")
	}
}

func TestBlitPass_RejectsEndWithoutBegin(t *testing.T) {
	c := newTestCommandRecording()
	be := &BlitEncoder{cmd: c}

	err := EndBlitPass(be, func(PipelineStage, PipelineStage, AccessMask, AccessMask) {})
	if err != ErrNoPassOpen {
		t.Errorf("EndBlitPass without Begin = %v, want ErrNoPassOpen", err)
	}
}

func TestWaitOnCommandBuffer_MovesPendingToReady(t *testing.T) {
	f := &FrameContext{}
	c := &CommandRecording{Handle: NewHandle[CommandBufferMarker](3, 1)}
	SubmitCommandBuffer(f, c, func() {})

	waited := false
	if err := WaitOnCommandBuffer(f, c, func() error { waited = true; return nil }); err != nil {
		t.Fatal(err)
	}
	if !waited {
		t.Error("wait hook was not called")
	}
	if len(f.Pending) != 0 {
		t.Errorf("Pending = %v, want empty", f.Pending)
	}
	if len(f.Ready) != 1 || f.Ready[0] != c.Handle {
		t.Errorf("Ready = %v, want [%v]", f.Ready, c.Handle)
	}
}

func TestReturnCommandBuffer_RejectsOpenPass(t *testing.T) {
	f := &FrameContext{}
	c := &CommandRecording{Handle: NewHandle[CommandBufferMarker](4, 1), OpenPass: PassBlit}

	if err := ReturnCommandBuffer(f, c); err == nil {
		t.Fatal("expected an error returning a recording with an open pass")
	}

	c.OpenPass = PassNone
	if err := ReturnCommandBuffer(f, c); err != nil {
		t.Fatal(err)
	}
	if len(f.Ready) != 1 || f.Ready[0] != c.Handle {
		t.Errorf("Ready = %v, want [%v]", f.Ready, c.Handle)
	}
}

func TestResetCommandBuffer_ClearsOpenPass(t *testing.T) {
	c := &CommandRecording{Handle: NewHandle[CommandBufferMarker](5, 1), OpenPass: PassCompute}

	if err := ResetCommandBuffer(c, func() error { return nil }); err != nil {
		t.Fatal(err)
	}
	if c.OpenPass != PassNone {
		t.Errorf("OpenPass after reset = %v, want PassNone", c.OpenPass)
	}
}
