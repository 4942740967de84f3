package core

import "testing"

type poolTestMarker struct{}

func TestGenPool_NewAndResolve(t *testing.T) {
	p := NewGenPool[int, string, poolTestMarker]()

	id := p.New(42, "hello")

	hot, ok := p.ResolveHot(id)
	if !ok {
		t.Fatal("ResolveHot should succeed for a live handle")
	}
	if *hot != 42 {
		t.Errorf("hot = %d, want 42", *hot)
	}

	cold, ok := p.Resolve(id)
	if !ok {
		t.Fatal("Resolve should succeed for a live handle")
	}
	if *cold != "hello" {
		t.Errorf("cold = %q, want %q", *cold, "hello")
	}

	if p.Len() != 1 {
		t.Errorf("Len() = %d, want 1", p.Len())
	}
}

func TestGenPool_QueueFreeInvalidatesHandle(t *testing.T) {
	p := NewGenPool[int, string, poolTestMarker]()
	id := p.New(1, "a")

	_, cold, ok := p.QueueFree(id)
	if !ok {
		t.Fatal("QueueFree should succeed once for a live handle")
	}
	if cold != "a" {
		t.Errorf("QueueFree returned cold = %q, want %q", cold, "a")
	}

	if _, ok := p.Resolve(id); ok {
		t.Error("Resolve should fail after QueueFree bumps the generation")
	}
	if _, _, ok := p.QueueFree(id); ok {
		t.Error("QueueFree should fail on an already-freed handle")
	}
	if p.Len() != 0 {
		t.Errorf("Len() = %d after free, want 0", p.Len())
	}
}

func TestGenPool_RecyclesSlotWithNewGeneration(t *testing.T) {
	p := NewGenPool[int, string, poolTestMarker]()
	first := p.New(1, "a")
	p.QueueFree(first)

	second := p.New(2, "b")

	if second.Index() != first.Index() {
		t.Errorf("expected slot reuse: first index %d, second index %d", first.Index(), second.Index())
	}
	if second.Generation() == first.Generation() {
		t.Error("recycled slot must get a new, different generation")
	}

	if _, ok := p.Resolve(first); ok {
		t.Error("the old handle must not resolve to the recycled slot")
	}
	cold, ok := p.Resolve(second)
	if !ok || *cold != "b" {
		t.Errorf("Resolve(second) = %v, %v; want \"b\", true", cold, ok)
	}
}

func TestGenPool_ForEachSkipsDeadSlots(t *testing.T) {
	p := NewGenPool[int, string, poolTestMarker]()
	a := p.New(1, "a")
	p.New(2, "b")
	p.QueueFree(a)

	seen := 0
	p.ForEach(func(id Handle[poolTestMarker], hot *int, cold *string) bool {
		seen++
		if *cold == "a" {
			t.Error("ForEach must not visit a freed slot")
		}
		return true
	})
	if seen != 1 {
		t.Errorf("ForEach visited %d slots, want 1", seen)
	}
}
