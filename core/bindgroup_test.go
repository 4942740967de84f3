package core

import "testing"

func TestTransientBindGroup_ValidAtSameGeneration(t *testing.T) {
	f := &FrameContext{Index: 0, TransientGeneration: 3}
	tbg := NewTransientBindGroup(NewHandle[BindGroupMarker](1, 1), f)

	if err := tbg.Validate(f); err != nil {
		t.Errorf("should be valid at the same generation: %v", err)
	}
}

func TestTransientBindGroup_StaleAfterGenerationAdvances(t *testing.T) {
	f := &FrameContext{Index: 0, TransientGeneration: 3}
	tbg := NewTransientBindGroup(NewHandle[BindGroupMarker](1, 1), f)

	f.resetForNewFrame() // advances TransientGeneration

	if err := tbg.Validate(f); err != ErrBindGroupStale {
		t.Errorf("Validate() = %v, want ErrBindGroupStale", err)
	}
}

func TestBindGroupLifetime_String(t *testing.T) {
	if BindGroupPersistent.String() != "persistent" {
		t.Errorf("Persistent.String() = %q", BindGroupPersistent.String())
	}
	if BindGroupTransient.String() != "transient" {
		t.Errorf("Transient.String() = %q", BindGroupTransient.String())
	}
}
