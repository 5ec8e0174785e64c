// Package gpures wraps a native gpu.Resource with the bookkeeping the
// frame graph core needs to schedule state transitions safely: its
// current state, an optional transient-memory placement, an optional
// persistent bindless descriptor, and the last frame it was used on,
// which a caller can pass to lifetime.Tracker.DeferDestroy to delay
// teardown until the GPU has caught up.
package gpures

import (
	"sync"
	"sync/atomic"

	"github.com/gogpu/framegraph/descheap"
	"github.com/gogpu/framegraph/gpu"
	"github.com/gogpu/framegraph/tlsf"
)

// Resource is a tracked GPU resource. The zero value is not valid; use
// NewResource.
type Resource struct {
	native gpu.Resource

	mu    sync.Mutex
	state gpu.ResourceState

	// heapBlock and heap describe the resource's placement in a transient
	// tlsf arena, when it is aliased memory rather than a dedicated
	// allocation. heap is nil for dedicated (non-transient) resources.
	heap      *tlsf.Heap
	heapBlock tlsf.BlockHandle
	transient bool

	// bindless is set once the resource has a persistent shader-visible
	// SRV; hasBindless distinguishes "allocated at index 0" from "never
	// allocated".
	bindless    descheap.BindlessAllocation
	hasBindless bool

	lastUseFrame atomic.Uint64
}

// NewResource wraps native with an initial tracked state.
func NewResource(native gpu.Resource, initial gpu.ResourceState) *Resource {
	return &Resource{native: native, state: initial}
}

// Native returns the underlying native resource.
func (r *Resource) Native() gpu.Resource { return r.native }

// State returns the resource's last-known tracked state.
func (r *Resource) State() gpu.ResourceState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// SetState updates the tracked state, e.g. after a render pass's
// transition has been recorded.
func (r *Resource) SetState(s gpu.ResourceState) {
	r.mu.Lock()
	r.state = s
	r.mu.Unlock()
}

// BindTransient records the resource's placement within a transient
// memory arena.
func (r *Resource) BindTransient(heap *tlsf.Heap, block tlsf.BlockHandle) {
	r.mu.Lock()
	r.heap, r.heapBlock, r.transient = heap, block, true
	r.mu.Unlock()
}

// TransientBlock returns the resource's transient placement, and whether
// it has one at all.
func (r *Resource) TransientBlock() (heap *tlsf.Heap, block tlsf.BlockHandle, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.heap, r.heapBlock, r.transient
}

// BindBindless records the resource's persistent bindless SRV
// allocation.
func (r *Resource) BindBindless(alloc descheap.BindlessAllocation) {
	r.mu.Lock()
	r.bindless, r.hasBindless = alloc, true
	r.mu.Unlock()
}

// BindlessAllocation returns the resource's bindless slot, and whether it
// has been allocated one.
func (r *Resource) BindlessAllocation() (descheap.BindlessAllocation, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.bindless, r.hasBindless
}

// TouchFrame records that the resource was referenced by frame. Callers
// use the highest recorded value to decide when it is safe to reclaim
// the resource's memory and descriptors.
func (r *Resource) TouchFrame(frame uint64) {
	for {
		cur := r.lastUseFrame.Load()
		if frame <= cur {
			return
		}
		if r.lastUseFrame.CompareAndSwap(cur, frame) {
			return
		}
	}
}

// LastUseFrame returns the highest frame index passed to TouchFrame.
func (r *Resource) LastUseFrame() uint64 {
	return r.lastUseFrame.Load()
}
