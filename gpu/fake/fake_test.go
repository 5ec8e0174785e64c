package fake

import (
	"testing"

	"github.com/gogpu/framegraph/gpu"
)

func TestRecordAndExecuteCommandList(t *testing.T) {
	dev := NewDevice()
	alloc, err := dev.CreateCommandAllocator(gpu.Direct)
	if err != nil {
		t.Fatalf("CreateCommandAllocator: %v", err)
	}
	list, err := dev.CreateCommandList(gpu.Direct, alloc)
	if err != nil {
		t.Fatalf("CreateCommandList: %v", err)
	}

	res := NewResource("color-target", true)
	if err := list.RecordTransitionBarrier(res, gpu.StateCommon, gpu.StateRenderTarget, gpu.AllSubresources); err != nil {
		t.Fatalf("RecordTransitionBarrier: %v", err)
	}
	if err := list.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	q := dev.CommandQueue(gpu.Direct)
	if err := q.ExecuteCommandLists([]gpu.CommandList{list}); err != nil {
		t.Fatalf("ExecuteCommandLists: %v", err)
	}

	if got := list.(*CommandList).Ops(); got != 1 {
		t.Errorf("recorded %d ops, want 1", got)
	}
}

func TestExecuteRejectsUnclosedList(t *testing.T) {
	dev := NewDevice()
	alloc, _ := dev.CreateCommandAllocator(gpu.Copy)
	list, _ := dev.CreateCommandList(gpu.Copy, alloc)

	q := dev.CommandQueue(gpu.Copy)
	if err := q.ExecuteCommandLists([]gpu.CommandList{list}); err == nil {
		t.Error("expected error executing an unclosed list")
	}
}

func TestExecuteRejectsQueueMismatch(t *testing.T) {
	dev := NewDevice()
	alloc, _ := dev.CreateCommandAllocator(gpu.Direct)
	list, _ := dev.CreateCommandList(gpu.Direct, alloc)
	list.Close()

	q := dev.CommandQueue(gpu.Compute)
	if err := q.ExecuteCommandLists([]gpu.CommandList{list}); err == nil {
		t.Error("expected error executing a direct list on the compute queue")
	}
}

func TestFenceSignalAndWait(t *testing.T) {
	dev := NewDevice()
	fence, err := dev.CreateFence()
	if err != nil {
		t.Fatalf("CreateFence: %v", err)
	}
	q := dev.CommandQueue(gpu.Direct)

	if err := fence.Wait(1); err == nil {
		t.Error("expected Wait to fail before Signal")
	}
	if err := q.Signal(fence, 1); err != nil {
		t.Fatalf("Signal: %v", err)
	}
	if err := fence.Wait(1); err != nil {
		t.Errorf("Wait after Signal: %v", err)
	}
	if got := fence.CompletedValue(); got != 1 {
		t.Errorf("CompletedValue() = %d, want 1", got)
	}
}

func TestFenceSignalIsMonotonic(t *testing.T) {
	dev := NewDevice()
	fence, _ := dev.CreateFence()
	q := dev.CommandQueue(gpu.Direct)

	q.Signal(fence, 5)
	q.Signal(fence, 3)
	if got := fence.CompletedValue(); got != 5 {
		t.Errorf("CompletedValue() = %d, want 5 (signal must not regress)", got)
	}
}

func TestDescriptorHeapCreateAndCopy(t *testing.T) {
	dev := NewDevice()
	heap, err := dev.CreateDescriptorHeap(gpu.DescriptorHeapDescriptor{Capacity: 8})
	if err != nil {
		t.Fatalf("CreateDescriptorHeap: %v", err)
	}
	res := NewResource("tex", true)
	desc, _ := res.CreateSRVDescription()

	if err := heap.CreateShaderResourceView(2, res, desc); err != nil {
		t.Fatalf("CreateShaderResourceView: %v", err)
	}
	fh := heap.(*DescriptorHeap)
	if !fh.SlotOccupied(2) {
		t.Error("slot 2 should be occupied")
	}

	if err := heap.CopyDescriptors(1, heap.CPUHandle(5), heap.CPUHandle(2)); err != nil {
		t.Fatalf("CopyDescriptors: %v", err)
	}
	if !fh.SlotOccupied(5) {
		t.Error("slot 5 should be occupied after copy")
	}
}

func TestDescriptorHeapOutOfRange(t *testing.T) {
	dev := NewDevice()
	heap, _ := dev.CreateDescriptorHeap(gpu.DescriptorHeapDescriptor{Capacity: 4})
	res := NewResource("tex", true)
	desc, _ := res.CreateSRVDescription()

	if err := heap.CreateShaderResourceView(10, res, desc); err == nil {
		t.Error("expected out-of-range error")
	}
}

func TestResourceSRVability(t *testing.T) {
	depthOnly := NewResource("depth", false)
	if _, ok := depthOnly.CreateSRVDescription(); ok {
		t.Error("depth-only resource should not report SRV support")
	}
}
