package core

import "testing"

func TestRenderPass_CurrentFramebuffer_BySwapchainImage(t *testing.T) {
	sc := &Swapchain{CurrentImageIndex: 1}
	fb0 := &Framebuffer{Driver: 100}
	fb1 := &Framebuffer{Driver: 200}

	rp := &RenderPass{Swapchain: sc, Framebuffers: []*Framebuffer{fb0, fb1}}

	got := rp.CurrentFramebuffer(0)
	if got != fb1 {
		t.Errorf("CurrentFramebuffer should pick by swapchain image index, got %+v", got)
	}
}

func TestRenderPass_CurrentFramebuffer_ByFrameIndexWhenNoSwapchain(t *testing.T) {
	fb0 := &Framebuffer{Driver: 1}
	fb1 := &Framebuffer{Driver: 2}
	rp := &RenderPass{Framebuffers: []*Framebuffer{fb0, fb1}}

	if got := rp.CurrentFramebuffer(1); got != fb1 {
		t.Errorf("CurrentFramebuffer(1) = %+v, want fb1", got)
	}
}

func TestUpdateAttachments_QueuesOldFramebuffersForDeletion(t *testing.T) {
	oldFB := &Framebuffer{Driver: 1}
	rp := &RenderPass{Framebuffers: []*Framebuffer{oldFB}}
	garbage := &GarbageList{}

	newFB := &Framebuffer{Driver: 2}
	build := func(w, h uint32, views []Handle[TextureMarker]) (*Framebuffer, error) {
		return newFB, nil
	}

	var destroyed []*Framebuffer
	destroy := func(fb *Framebuffer) { destroyed = append(destroyed, fb) }

	err := UpdateAttachments(rp, garbage, 640, 480, [][]Handle[TextureMarker]{{}}, build, destroy)
	if err != nil {
		t.Fatal(err)
	}
	if rp.Width != 640 || rp.Height != 480 {
		t.Errorf("dimensions = (%d,%d), want (640,480)", rp.Width, rp.Height)
	}
	if len(rp.Framebuffers) != 1 || rp.Framebuffers[0] != newFB {
		t.Error("RenderPass.Framebuffers should hold the newly built framebuffer")
	}

	garbage.collect()
	if len(destroyed) != 1 || destroyed[0] != oldFB {
		t.Errorf("destroyed = %v, want [oldFB]: old framebuffers must be destroyed only via the garbage list", destroyed)
	}
}
