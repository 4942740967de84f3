package core

import (
	"image"
	"image/color"
	"testing"
)

func TestGenerateMipmaps_EmitsChainedHalvingBlits(t *testing.T) {
	f := &FrameContext{}
	alloc := func() (CommandBufferHandle, error) { return NewHandle[CommandBufferMarker](1, 1), nil }
	cmd, err := BeginCommandRecording(f, true, alloc)
	if err != nil {
		t.Fatal(err)
	}
	be, err := BeginBlitPass(cmd, func(PipelineStage, PipelineStage, AccessMask, AccessMask) {})
	if err != nil {
		t.Fatal(err)
	}

	type step struct {
		srcLevel       int
		srcW, srcH     uint32
		dstLevel       int
		dstW, dstH     uint32
	}
	var steps []step
	blit := func(srcLevel int, srcW, srcH uint32, dstLevel int, dstW, dstH uint32) {
		steps = append(steps, step{srcLevel, srcW, srcH, dstLevel, dstW, dstH})
	}

	if err := GenerateMipmaps(be, 4, 4, 3, blit); err != nil {
		t.Fatal(err)
	}

	if len(steps) != 2 {
		t.Fatalf("mips=3 should emit 2 blits, got %d", len(steps))
	}
	if steps[0] != (step{0, 4, 4, 1, 2, 2}) {
		t.Errorf("step 0 = %+v, want 4x4 -> 2x2 (level 0 -> 1)", steps[0])
	}
	if steps[1] != (step{1, 2, 2, 2, 1, 1}) {
		t.Errorf("step 1 = %+v, want 2x2 -> 1x1 (level 1 -> 2)", steps[1])
	}
}

func TestGenerateMipmaps_RequiresOpenBlitPass(t *testing.T) {
	f := &FrameContext{}
	cmd := &CommandRecording{Handle: NewHandle[CommandBufferMarker](1, 1)}
	be := &BlitEncoder{cmd: cmd}
	_ = f

	err := GenerateMipmaps(be, 4, 4, 3, func(int, uint32, uint32, int, uint32, uint32) {})
	if err != ErrNoPassOpen {
		t.Errorf("GenerateMipmaps without an open blit pass = %v, want ErrNoPassOpen", err)
	}
}

func TestGenerateMipmapsCPU_AverageColorAtDeepestMip(t *testing.T) {
	// A 4x4 RGBA8 texture with mips=3: mip 2 is a single texel holding the
	// average color of the source.
	src := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			// Checkerboard of pure red and pure blue -> average is a 50/50 mix.
			if (x+y)%2 == 0 {
				src.Set(x, y, color.RGBA{R: 255, A: 255})
			} else {
				src.Set(x, y, color.RGBA{B: 255, A: 255})
			}
		}
	}

	levels := GenerateMipmapsCPU(src, 3)
	if len(levels) != 3 {
		t.Fatalf("len(levels) = %d, want 3", len(levels))
	}
	if levels[2].Bounds().Dx() != 1 || levels[2].Bounds().Dy() != 1 {
		t.Fatalf("mip 2 should be 1x1, got %v", levels[2].Bounds())
	}

	c := levels[2].RGBAAt(0, 0)
	if c.R == 0 && c.B == 0 {
		t.Errorf("mip 2 texel should reflect a red/blue average, got %+v", c)
	}
}
