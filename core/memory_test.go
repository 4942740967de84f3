package core

import "testing"

type mockDriverForwarder struct {
	allocated []uint64
	freed     []uint64
	next      uint64
}

func (m *mockDriverForwarder) AllocateDriverMemory(typeFilter uint32, size, alignment uint64, mode MemoryMode, tag string) (uint64, []byte, uint32, error) {
	m.next++
	m.allocated = append(m.allocated, m.next)
	return m.next, make([]byte, size), 1, nil
}

func (m *mockDriverForwarder) FreeDriverMemory(driverHandle uint64) {
	m.freed = append(m.freed, driverHandle)
}

func TestDynamicStagingAllocator_AllocateUsesCPUMode(t *testing.T) {
	driver := &mockDriverForwarder{}
	a := NewDynamicStagingAllocator(driver)

	alloc, err := a.Allocate(0xFF, 1024, 256, "staging")
	if err != nil {
		t.Fatal(err)
	}
	if alloc.Mode != MemoryCPU {
		t.Errorf("Mode = %v, want MemoryCPU", alloc.Mode)
	}
	if len(alloc.HostPtr) != 1024 {
		t.Errorf("HostPtr len = %d, want 1024", len(alloc.HostPtr))
	}
	if alloc.Owner != a {
		t.Error("Allocation.Owner should be the allocator that produced it")
	}
}

func TestDynamicStagingAllocator_FreeForwardsToDriver(t *testing.T) {
	driver := &mockDriverForwarder{}
	a := NewDynamicStagingAllocator(driver)

	alloc, err := a.Allocate(0, 64, 16, "x")
	if err != nil {
		t.Fatal(err)
	}
	a.Free(alloc)

	if len(driver.freed) != 1 || driver.freed[0] != alloc.DriverHandle {
		t.Errorf("freed = %v, want [%d]", driver.freed, alloc.DriverHandle)
	}
}

func TestMeteredAllocator_TracksUsageByMode(t *testing.T) {
	driver := &mockDriverForwarder{}
	var usage MemoryUsage
	m := NewMeteredAllocator(NewDynamicStagingAllocator(driver), &usage)

	a, err := m.Allocate(0, 4096, 256, "staging")
	if err != nil {
		t.Fatal(err)
	}
	if usage.HostInUse() != 4096 {
		t.Errorf("HostInUse = %d, want 4096", usage.HostInUse())
	}
	if usage.LocalInUse() != 0 {
		t.Errorf("LocalInUse = %d, want 0 for a CPU-mode block", usage.LocalInUse())
	}
	if a.Owner != m {
		t.Error("Allocation.Owner should be the metered wrapper, so garbage-list frees decrement the meter")
	}

	m.Free(a)
	if usage.HostInUse() != 0 {
		t.Errorf("HostInUse after free = %d, want 0", usage.HostInUse())
	}
}

func TestMeteredAllocator_FreeThroughGarbageListDecrements(t *testing.T) {
	driver := &mockDriverForwarder{}
	var usage MemoryUsage
	m := NewMeteredAllocator(NewDynamicStagingAllocator(driver), &usage)

	a, err := m.Allocate(0, 512, 0, "transient")
	if err != nil {
		t.Fatal(err)
	}

	var g GarbageList
	g.QueueAllocation(a)
	g.collect()

	if usage.HostInUse() != 0 {
		t.Errorf("HostInUse after garbage collect = %d, want 0", usage.HostInUse())
	}
	if len(driver.freed) != 1 {
		t.Errorf("driver frees = %d, want 1", len(driver.freed))
	}
}

func TestMemoryUsage_GPUCPUCountsTowardBoth(t *testing.T) {
	var usage MemoryUsage
	a := Allocation{Size: 1024, Mode: MemoryGPUCPU}
	usage.add(a)
	if usage.LocalInUse() != 1024 || usage.HostInUse() != 1024 {
		t.Errorf("LocalInUse = %d, HostInUse = %d, want 1024 for both", usage.LocalInUse(), usage.HostInUse())
	}
	usage.remove(a)
	if usage.LocalInUse() != 0 || usage.HostInUse() != 0 {
		t.Errorf("usage after remove = (%d, %d), want zero", usage.LocalInUse(), usage.HostInUse())
	}
}
