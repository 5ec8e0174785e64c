// Package descheap manages the single shader-visible descriptor heap this
// module partitions into a persistent bindless region and two per-frame
// bump-allocated regions, one per frame parity.
package descheap

import (
	"fmt"
	"sync/atomic"

	"github.com/gogpu/framegraph/engineconfig"
	"github.com/gogpu/framegraph/gpu"
)

// BindlessAllocation is a long-lived shader-visible slot reclaimed
// explicitly by the caller when the underlying resource is destroyed.
type BindlessAllocation struct {
	Index uint32
}

// PerFrameDescriptorTable is a contiguous run of slots bump-allocated
// from one frame parity's partition. It is implicitly invalidated the
// next time that parity's partition is reset.
type PerFrameDescriptorTable struct {
	BaseIndex uint32
	Count     uint32
}

// GPUHandle returns the GPU-visible handle for the slot at offset within
// the table.
func (t PerFrameDescriptorTable) GPUHandle(heap *Heap, offset uint32) gpu.GPUDescriptorHandle {
	return heap.native.GPUHandle(t.BaseIndex + offset)
}

// Heap partitions a single native shader-visible descriptor heap into:
//
//   - [0, BindlessSRVPartitionSize): persistent bindless SRVs, managed by
//     a free-index stack so reclaimed slots are reused.
//   - [BindlessSRVPartitionSize, capacity): two equal per-frame-parity
//     partitions, each bump-allocated from zero and reset wholesale once
//     the GPU has finished consuming that parity's frame.
type Heap struct {
	cfg    engineconfig.Config
	native gpu.DescriptorHeap

	bindless *bindlessIndexAllocator

	perFrameBase  [2]uint32
	perFrameCount [2]atomic.Uint32
}

// NewHeap creates the native descriptor heap and partitions it per cfg.
func NewHeap(dev gpu.Device, cfg engineconfig.Config) (*Heap, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	native, err := dev.CreateDescriptorHeap(gpu.DescriptorHeapDescriptor{Capacity: cfg.ResourceDescriptorHeapSize})
	if err != nil {
		return nil, fmt.Errorf("descheap: create native heap: %w", err)
	}

	h := &Heap{cfg: cfg, native: native, bindless: newBindlessIndexAllocator(cfg.BindlessSRVPartitionSize)}

	parity := cfg.PerFrameParitySize()
	h.perFrameBase[0] = cfg.BindlessSRVPartitionSize
	h.perFrameBase[1] = cfg.BindlessSRVPartitionSize + parity

	return h, nil
}

// NativeHeap exposes the underlying native heap, e.g. for binding it to
// the GPU command list at frame start.
func (h *Heap) NativeHeap() gpu.DescriptorHeap {
	return h.native
}

// CreateBindlessSRV pops a free bindless index, writes an SRV for
// resource into it, and returns the allocation. The caller must later
// call ReclaimBindlessSRV when the resource is destroyed.
func (h *Heap) CreateBindlessSRV(resource gpu.Resource) (BindlessAllocation, error) {
	desc, ok := resource.CreateSRVDescription()
	if !ok {
		return BindlessAllocation{}, fmt.Errorf("descheap: resource %q does not support shader resource views", resource.Name())
	}

	index, ok := h.bindless.alloc()
	if !ok {
		return BindlessAllocation{}, fmt.Errorf("descheap: bindless SRV partition (%d slots) exhausted", h.cfg.BindlessSRVPartitionSize)
	}

	if err := h.native.CreateShaderResourceView(index, resource, desc); err != nil {
		h.bindless.free(index)
		return BindlessAllocation{}, fmt.Errorf("descheap: create bindless SRV: %w", err)
	}

	return BindlessAllocation{Index: index}, nil
}

// ReclaimBindlessSRV returns a previously allocated bindless slot to the
// free pool. It is the caller's responsibility to ensure the GPU is no
// longer reading through this slot.
func (h *Heap) ReclaimBindlessSRV(alloc BindlessAllocation) {
	h.bindless.free(alloc.Index)
}

// BindlessFreeSlots returns the number of unallocated bindless slots,
// mainly for test assertions and diagnostics.
func (h *Heap) BindlessFreeSlots() int {
	return h.bindless.freeCount()
}

// CreatePerFrameDescriptorTable bump-allocates count contiguous slots
// from the partition belonging to the given frame parity (frame % 2).
func (h *Heap) CreatePerFrameDescriptorTable(frameParity uint32, count uint32) (PerFrameDescriptorTable, error) {
	parity := frameParity % 2
	limit := h.cfg.PerFrameParitySize()

	offset := h.perFrameCount[parity].Add(count) - count
	if offset+count > limit {
		return PerFrameDescriptorTable{}, fmt.Errorf(
			"descheap: per-frame partition %d exhausted: requested [%d,%d), capacity %d",
			parity, offset, offset+count, limit)
	}

	return PerFrameDescriptorTable{BaseIndex: h.perFrameBase[parity] + offset, Count: count}, nil
}

// ResetPerFrameDescriptorHeapIndex rewinds a frame parity's partition
// back to empty. The caller must only do this once the GPU has finished
// executing every frame that read through this parity's tables.
func (h *Heap) ResetPerFrameDescriptorHeapIndex(frameParity uint32) {
	h.perFrameCount[frameParity%2].Store(0)
}

// PerFrameUsed returns how many slots of the given parity's partition are
// currently bump-allocated, for diagnostics and tests.
func (h *Heap) PerFrameUsed(frameParity uint32) uint32 {
	return h.perFrameCount[frameParity%2].Load()
}
