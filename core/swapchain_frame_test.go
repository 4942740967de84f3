package core

import (
	"testing"

	"github.com/gogpu/gputypes"
)

func testSurfaceCaps() SurfaceCaps {
	return SurfaceCaps{
		Formats:        []gputypes.TextureFormat{gputypes.TextureFormatBGRA8Unorm, gputypes.TextureFormatRGBA8Unorm},
		PresentModes:   []PresentMode{PresentModeFIFO, PresentModeMailbox},
		MinImageCount:  2,
		MaxImageCount:  4,
		CurrentExtentW: 1920,
		CurrentExtentH: 1080,
		MaxExtentW:     4096,
		MaxExtentH:     4096,
	}
}

func TestChooseSwapchainFormat_PrefersRGBA8UnormFirst(t *testing.T) {
	got, err := ChooseSwapchainFormat(testSurfaceCaps())
	if err != nil {
		t.Fatal(err)
	}
	if got != gputypes.TextureFormatRGBA8Unorm {
		t.Errorf("got %v, want RGBA8Unorm (first in preference order present on the surface)", got)
	}
}

func TestChooseSwapchainFormat_FallsBackToFirstSupported(t *testing.T) {
	caps := SurfaceCaps{Formats: []gputypes.TextureFormat{gputypes.TextureFormatRGBA16Float}}
	got, err := ChooseSwapchainFormat(caps)
	if err != nil {
		t.Fatal(err)
	}
	if got != gputypes.TextureFormatRGBA16Float {
		t.Errorf("got %v, want the surface's only reported format", got)
	}
}

func TestChoosePresentMode_VsyncAlwaysFIFO(t *testing.T) {
	if got := ChoosePresentMode(testSurfaceCaps(), true); got != PresentModeFIFO {
		t.Errorf("vsync=true got %v, want FIFO", got)
	}
}

func TestChoosePresentMode_NoVsyncPrefersMailbox(t *testing.T) {
	if got := ChoosePresentMode(testSurfaceCaps(), false); got != PresentModeMailbox {
		t.Errorf("vsync=false got %v, want Mailbox", got)
	}
}

func TestChooseExtent_ClampsToMax(t *testing.T) {
	caps := testSurfaceCaps()
	caps.MaxExtentW, caps.MaxExtentH = 1024, 768
	w, h := ChooseExtent(caps, 1920, 1080)
	if w != 1024 || h != 768 {
		t.Errorf("ChooseExtent = (%d,%d), want (1024,768)", w, h)
	}
}

func TestChooseExtent_FallsBackToCurrentExtentWhenZero(t *testing.T) {
	caps := testSurfaceCaps()
	w, h := ChooseExtent(caps, 0, 0)
	if w != caps.CurrentExtentW || h != caps.CurrentExtentH {
		t.Errorf("ChooseExtent(0,0) = (%d,%d), want surface current extent", w, h)
	}
}

func TestChooseImageCount_OneMoreThanMinimumClampedToMax(t *testing.T) {
	caps := testSurfaceCaps()
	if got := ChooseImageCount(caps); got != 3 {
		t.Errorf("ChooseImageCount = %d, want 3 (min 2 + 1)", got)
	}

	caps.MaxImageCount = 2
	if got := ChooseImageCount(caps); got != 2 {
		t.Errorf("ChooseImageCount with max=2 = %d, want 2", got)
	}
}

func TestCreateSwapchain_BuildsMainPassOnce(t *testing.T) {
	caps := testSurfaceCaps()
	build := func(format gputypes.TextureFormat, w, h, count uint32) ([]Handle[TextureMarker], error) {
		views := make([]Handle[TextureMarker], count)
		for i := range views {
			views[i] = NewHandle[TextureMarker](uint32(i), 1)
		}
		return views, nil
	}

	sc, err := CreateSwapchain(caps, 1920, 1080, false, build)
	if err != nil {
		t.Fatal(err)
	}
	if sc.MainPass == nil {
		t.Fatal("MainPass should be built")
	}
	if len(sc.MainPass.RenderTargets) != 1 {
		t.Errorf("main pass should have exactly 1 color attachment, got %d", len(sc.MainPass.RenderTargets))
	}
	if len(sc.ImageViews) != len(sc.ImageViews) || len(sc.ImageViews) == 0 {
		t.Error("swapchain should have built image views")
	}
}

func TestRecreateSwapchain_QueuesOldViewsForDeletion(t *testing.T) {
	caps := testSurfaceCaps()
	build := func(format gputypes.TextureFormat, w, h, count uint32) ([]Handle[TextureMarker], error) {
		return make([]Handle[TextureMarker], count), nil
	}

	old, err := CreateSwapchain(caps, 1920, 1080, false, build)
	if err != nil {
		t.Fatal(err)
	}

	var destroyedCount int
	destroy := func(views []Handle[TextureMarker]) { destroyedCount = len(views) }

	garbage := &GarbageList{}
	next, err := RecreateSwapchain(old, garbage, caps, 1280, 720, false, build, destroy)
	if err != nil {
		t.Fatal(err)
	}
	if next.MainPass != old.MainPass {
		t.Error("MainPass should be carried over when format is unchanged")
	}

	garbage.collect()
	if destroyedCount != len(old.ImageViews) {
		t.Errorf("destroyed %d views, want %d (old image view count)", destroyedCount, len(old.ImageViews))
	}
}
