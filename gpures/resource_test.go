package gpures

import (
	"sync"
	"testing"

	"github.com/gogpu/framegraph/descheap"
	"github.com/gogpu/framegraph/gpu"
	"github.com/gogpu/framegraph/gpu/fake"
	"github.com/gogpu/framegraph/tlsf"
)

func TestResourceStateRoundTrip(t *testing.T) {
	r := NewResource(fake.NewResource("color", true), gpu.StateCommon)
	if r.State() != gpu.StateCommon {
		t.Fatalf("initial state = %v, want StateCommon", r.State())
	}
	r.SetState(gpu.StateRenderTarget)
	if r.State() != gpu.StateRenderTarget {
		t.Errorf("State() = %v, want StateRenderTarget", r.State())
	}
}

func TestResourceTransientBinding(t *testing.T) {
	r := NewResource(fake.NewResource("scratch", false), gpu.StateCommon)
	if _, _, ok := r.TransientBlock(); ok {
		t.Error("resource should have no transient binding before BindTransient")
	}

	heap, _ := tlsf.NewHeap(1 << 16)
	block, err := heap.Allocate(1024, 256)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	r.BindTransient(heap, block)

	gotHeap, gotBlock, ok := r.TransientBlock()
	if !ok || gotHeap != heap || gotBlock != block {
		t.Error("TransientBlock did not return the bound heap/block")
	}
}

func TestResourceBindlessBinding(t *testing.T) {
	r := NewResource(fake.NewResource("tex", true), gpu.StateCommon)
	if _, ok := r.BindlessAllocation(); ok {
		t.Error("resource should have no bindless allocation before BindBindless")
	}
	r.BindBindless(descheap.BindlessAllocation{Index: 42})
	alloc, ok := r.BindlessAllocation()
	if !ok || alloc.Index != 42 {
		t.Errorf("BindlessAllocation() = %+v, %v, want {42}, true", alloc, ok)
	}
}

func TestTouchFrameIsMonotonic(t *testing.T) {
	r := NewResource(fake.NewResource("buf", false), gpu.StateCommon)
	r.TouchFrame(5)
	r.TouchFrame(3)
	if got := r.LastUseFrame(); got != 5 {
		t.Errorf("LastUseFrame() = %d, want 5 (must not regress)", got)
	}
}

func TestTouchFrameConcurrentUpdatesConverge(t *testing.T) {
	r := NewResource(fake.NewResource("buf", false), gpu.StateCommon)
	var wg sync.WaitGroup
	for i := uint64(0); i < 100; i++ {
		wg.Add(1)
		go func(frame uint64) {
			defer wg.Done()
			r.TouchFrame(frame)
		}(i)
	}
	wg.Wait()
	if got := r.LastUseFrame(); got != 99 {
		t.Errorf("LastUseFrame() = %d, want 99", got)
	}
}

func TestEventManagerPartition(t *testing.T) {
	r := NewResource(fake.NewResource("tex", true), gpu.StateCommon)
	events := []Event{
		{Resource: r, Before: gpu.StateCommon, After: gpu.StateCopyDest, Queue: gpu.Copy},
		{Resource: r, Before: gpu.StateCopyDest, After: gpu.StateRenderTarget, Queue: gpu.Copy},
	}

	var mgr EventManager
	dispatchable, impossible := mgr.Partition(events)
	if len(dispatchable) != 1 || len(impossible) != 1 {
		t.Fatalf("Partition() = %d dispatchable, %d impossible, want 1, 1", len(dispatchable), len(impossible))
	}
	if dispatchable[0].After != gpu.StateCopyDest {
		t.Errorf("dispatchable event = %+v, want the copy-dest transition", dispatchable[0])
	}
	if impossible[0].After != gpu.StateRenderTarget {
		t.Errorf("impossible event = %+v, want the render-target transition", impossible[0])
	}
}

func TestRetargetRebindsQueue(t *testing.T) {
	r := NewResource(fake.NewResource("tex", true), gpu.StateCommon)
	events := []Event{{Resource: r, Before: gpu.StateCopyDest, After: gpu.StateRenderTarget, Queue: gpu.Copy}}

	retargeted := Retarget(events, gpu.Direct)
	if retargeted[0].Queue != gpu.Direct {
		t.Errorf("Retarget did not rebind queue, got %v", retargeted[0].Queue)
	}
	if events[0].Queue != gpu.Copy {
		t.Error("Retarget should not mutate the input slice")
	}
}
