package gfxcore

import (
	"errors"

	"github.com/gogpu/gfxcore/core"
	"github.com/gogpu/gfxcore/hal"
)

// Driver-originated errors, re-exported from the hal taxonomy.
var (
	ErrDeviceLost         = hal.ErrDeviceLost
	ErrOutOfMemory        = hal.ErrOutOfMemory
	ErrSwapchainOutOfDate = hal.ErrSwapchainOutOfDate
)

// Validation errors.
var (
	// ErrStaleHandle is returned when an operation receives a handle whose
	// generation no longer matches its pool slot.
	ErrStaleHandle = errors.New("gfxcore: stale handle")

	// ErrAlreadyBound is returned when a second memory binding is
	// attempted on a resource that already holds one.
	ErrAlreadyBound = core.ErrAlreadyBound

	// ErrShaderCompilationFailed is returned alongside a null handle when
	// shader translation or pipeline creation fails.
	ErrShaderCompilationFailed = errors.New("gfxcore: shader compilation failed")
)
