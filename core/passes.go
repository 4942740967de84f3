package core

import "fmt"

// PassKind identifies which typed pass (if any) is currently open on a
// command buffer. Exactly zero or one is open at a time.
type PassKind int

const (
	PassNone PassKind = iota
	PassRender
	PassCompute
	PassBlit
)

func (k PassKind) String() string {
	switch k {
	case PassRender:
		return "render"
	case PassCompute:
		return "compute"
	case PassBlit:
		return "blit"
	default:
		return "none"
	}
}

// ErrPassAlreadyOpen is returned when a Begin*Pass call is made while
// another pass is still open on the same command buffer.
var ErrPassAlreadyOpen = fmt.Errorf("core: a pass is already open on this command buffer")

// ErrNoPassOpen is returned when a pass-scoped operation is attempted
// outside any open pass.
var ErrNoPassOpen = fmt.Errorf("core: no pass is open on this command buffer")

// CommandRecording tracks one in-progress command buffer: which handle it
// is, and which typed pass (if any) is currently open on it.
type CommandRecording struct {
	Handle     CommandBufferHandle
	OpenPass   PassKind
	insideFrame bool
}

// CommandBufferAllocator creates a brand-new command buffer from a frame's
// command pool, used when the frame's Ready list is empty.
type CommandBufferAllocator func() (CommandBufferHandle, error)

// BeginCommandRecording pops a reusable command buffer from the frame's
// Ready list, or allocates a new one.
// insideFrame controls the begin-flags policy the backend should use:
// ONE_TIME_SUBMIT outside a frame, 0 (resubmittable) inside one.
func BeginCommandRecording(f *FrameContext, insideFrame bool, alloc CommandBufferAllocator) (*CommandRecording, error) {
	if h, ok := f.PopReadyOrNil(); ok {
		return &CommandRecording{Handle: h, insideFrame: insideFrame}, nil
	}
	h, err := alloc()
	if err != nil {
		return nil, fmt.Errorf("core: begin_command_recording: %w", err)
	}
	return &CommandRecording{Handle: h, insideFrame: insideFrame}, nil
}

// InsideFrame reports whether this recording began inside a frame's
// begin_frame/present span, which decides the begin-flags policy above.
func (c *CommandRecording) InsideFrame() bool { return c.insideFrame }

// EndCommandRecording validates that no pass is left open and closes the
// driver command buffer via the supplied hook.
func EndCommandRecording(c *CommandRecording, cmdEnd func()) error {
	if c.OpenPass != PassNone {
		return fmt.Errorf("core: end_command_recording: %w: %s pass still open", ErrPassAlreadyOpen, c.OpenPass)
	}
	cmdEnd()
	return nil
}

// SubmitCommandBuffer moves a recorded command buffer from "recording" to
// "pending" on its owning frame. The submit hook issues the queue submit
// with no fence; the per-frame fence is only used by Present.
func SubmitCommandBuffer(f *FrameContext, c *CommandRecording, submit func()) {
	submit()
	f.MarkPending(c.Handle)
}

// WaitOnCommandBuffer blocks until the GPU has finished executing a
// submitted command buffer, then moves it straight from the frame's
// Pending list back to Ready. wait must block until the frame's in-flight
// fence (or an equivalent per-submission fence) has signaled.
func WaitOnCommandBuffer(f *FrameContext, c *CommandRecording, wait func() error) error {
	if err := wait(); err != nil {
		return fmt.Errorf("core: wait_on_command_buffer: %w", err)
	}
	for i, h := range f.Pending {
		if h == c.Handle {
			f.Pending = append(f.Pending[:i], f.Pending[i+1:]...)
			f.Ready = append(f.Ready, h)
			break
		}
	}
	return nil
}

// ReturnCommandBuffer hands a recorded-but-never-submitted command buffer
// back to its frame's Ready list so a later BeginCommandRecording can
// reuse it without going through submission.
func ReturnCommandBuffer(f *FrameContext, c *CommandRecording) error {
	if c.OpenPass != PassNone {
		return fmt.Errorf("core: return_command_buffer: %w: %s pass still open", ErrPassAlreadyOpen, c.OpenPass)
	}
	f.Ready = append(f.Ready, c.Handle)
	return nil
}

// ResetCommandBuffer resets a command buffer so it can be re-recorded
// without being returned to the pool first. The reset hook issues the
// driver's reset call; any open pass state is discarded with it.
func ResetCommandBuffer(c *CommandRecording, reset func() error) error {
	if err := reset(); err != nil {
		return fmt.Errorf("core: reset_command_buffer: %w", err)
	}
	c.OpenPass = PassNone
	return nil
}

// --- Render pass / encoder -------------------------------------------------

// RenderEncoder is the typed recording session for a render pass, carrying
// the pass handle and current subpass index.
type RenderEncoder struct {
	cmd          *CommandRecording
	Pass         *RenderPass
	SubpassIndex int
}

// BeginRenderPass sets viewport/scissor to the pass dimensions, issues the
// driver's begin-render-pass call, and returns a RenderEncoder at subpass
// 0.
func BeginRenderPass(c *CommandRecording, pass *RenderPass, setViewportScissor func(width, height uint32), cmdBegin func()) (*RenderEncoder, error) {
	if c.OpenPass != PassNone {
		return nil, ErrPassAlreadyOpen
	}
	c.OpenPass = PassRender
	setViewportScissor(pass.Width, pass.Height)
	cmdBegin()
	return &RenderEncoder{cmd: c, Pass: pass, SubpassIndex: 0}, nil
}

// NextSubpass increments the subpass index and issues CmdNextSubpass.
func NextSubpass(re *RenderEncoder, cmdNextSubpass func()) error {
	if re.cmd.OpenPass != PassRender {
		return ErrNoPassOpen
	}
	cmdNextSubpass()
	re.SubpassIndex++
	return nil
}

// EndRenderPass advances through any remaining declared subpasses
// (inserting CmdNextSubpass for each), guaranteeing the driver sees
// exactly the declared subpass count even if the caller didn't issue
// next_subpass for all of them, then issues CmdEndRenderPass.
func EndRenderPass(re *RenderEncoder, cmdNextSubpass, cmdEnd func()) error {
	if re.cmd.OpenPass != PassRender {
		return ErrNoPassOpen
	}
	declared := len(re.Pass.Layout.Subpasses)
	for re.SubpassIndex+1 < declared {
		cmdNextSubpass()
		re.SubpassIndex++
	}
	cmdEnd()
	re.cmd.OpenPass = PassNone
	return nil
}

// --- Compute pass / encoder -------------------------------------------------

// ComputeEncoder is the typed recording session for a compute pass.
type ComputeEncoder struct {
	cmd *CommandRecording
}

// BarrierFunc issues a single pipeline barrier with the given stage/access
// masks. Backends implement this with their native barrier call.
type BarrierFunc func(src, dst PipelineStage, srcAccess, dstAccess AccessMask)

// BeginComputePass wraps the pass body in an entry barrier
// (VERTEX|COMPUTE -> COMPUTE, SHADER_READ -> SHADER_WRITE) so callers can
// mix passes without tracking prior stage usage themselves.
func BeginComputePass(c *CommandRecording, barrier BarrierFunc) (*ComputeEncoder, error) {
	if c.OpenPass != PassNone {
		return nil, ErrPassAlreadyOpen
	}
	barrier(StageVertex|StageCompute, StageCompute, AccessShaderRead, AccessShaderWrite)
	c.OpenPass = PassCompute
	return &ComputeEncoder{cmd: c}, nil
}

// EndComputePass issues the inverse barrier and closes the pass.
func EndComputePass(ce *ComputeEncoder, barrier BarrierFunc) error {
	if ce.cmd.OpenPass != PassCompute {
		return ErrNoPassOpen
	}
	barrier(StageCompute, StageVertex|StageCompute, AccessShaderWrite, AccessShaderRead)
	ce.cmd.OpenPass = PassNone
	return nil
}

// --- Blit pass / encoder -------------------------------------------------

// BlitEncoder is the typed recording session for a blit (copy) pass.
type BlitEncoder struct {
	cmd *CommandRecording
}

// BeginBlitPass wraps the pass body in an entry barrier
// (VERTEX|COMPUTE|TRANSFER -> TRANSFER, SHADER_READ|TRANSFER_READ ->
// TRANSFER_WRITE).
func BeginBlitPass(c *CommandRecording, barrier BarrierFunc) (*BlitEncoder, error) {
	if c.OpenPass != PassNone {
		return nil, ErrPassAlreadyOpen
	}
	barrier(StageVertex|StageCompute|StageTransfer, StageTransfer, AccessShaderRead|AccessTransferRead, AccessTransferWrite)
	c.OpenPass = PassBlit
	return &BlitEncoder{cmd: c}, nil
}

// EndBlitPass issues the inverse barrier and closes the pass.
func EndBlitPass(be *BlitEncoder, barrier BarrierFunc) error {
	if be.cmd.OpenPass != PassBlit {
		return ErrNoPassOpen
	}
	barrier(StageTransfer, StageVertex|StageCompute|StageTransfer, AccessTransferWrite, AccessShaderRead|AccessTransferRead)
	be.cmd.OpenPass = PassNone
	return nil
}
