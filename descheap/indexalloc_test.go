package descheap

import "testing"

func TestBindlessIndexAllocatorReusesFreedIndicesLIFO(t *testing.T) {
	a := newBindlessIndexAllocator(4)

	i0, ok := a.alloc()
	if !ok || i0 != 0 {
		t.Fatalf("first alloc = %d, %v, want 0, true", i0, ok)
	}
	i1, ok := a.alloc()
	if !ok || i1 != 1 {
		t.Fatalf("second alloc = %d, %v, want 1, true", i1, ok)
	}

	a.free(i0)
	reused, ok := a.alloc()
	if !ok || reused != i0 {
		t.Errorf("alloc after free = %d, %v, want %d, true (LIFO reuse)", reused, ok, i0)
	}
}

func TestBindlessIndexAllocatorExhaustion(t *testing.T) {
	a := newBindlessIndexAllocator(2)
	a.alloc()
	a.alloc()
	if _, ok := a.alloc(); ok {
		t.Error("expected allocation to fail once capacity is exhausted")
	}
}

func TestBindlessIndexAllocatorSizeAndFreeCount(t *testing.T) {
	a := newBindlessIndexAllocator(10)
	a.alloc()
	a.alloc()
	if got := a.size(); got != 2 {
		t.Errorf("size() = %d, want 2", got)
	}
	if got := a.freeCount(); got != 8 {
		t.Errorf("freeCount() = %d, want 8", got)
	}
}
