// Package fake is an in-process, deterministic implementation of the gpu
// interfaces. It executes command lists synchronously and signals fences
// immediately, so tests can drive the frame graph core without a native
// graphics driver.
package fake

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gogpu/framegraph/gpu"
)

// Device is a fake gpu.Device. All queues execute work synchronously on
// the calling goroutine, so CompletedValue is always caught up by the time
// ExecuteCommandLists returns.
type Device struct {
	queues [3]*Queue
}

// NewDevice constructs a fake device with one queue per gpu.QueueType.
func NewDevice() *Device {
	d := &Device{}
	for i := range d.queues {
		d.queues[i] = &Queue{typ: gpu.QueueType(i)}
	}
	return d
}

func (d *Device) CommandQueue(q gpu.QueueType) gpu.CommandQueue {
	return d.queues[q]
}

func (d *Device) CreateCommandAllocator(q gpu.QueueType) (gpu.CommandAllocator, error) {
	return &Allocator{typ: q}, nil
}

func (d *Device) CreateCommandList(q gpu.QueueType, alloc gpu.CommandAllocator) (gpu.CommandList, error) {
	a, ok := alloc.(*Allocator)
	if !ok {
		return nil, fmt.Errorf("gpu/fake: CreateCommandList: allocator not created by this device")
	}
	if a.typ != q {
		return nil, fmt.Errorf("gpu/fake: CreateCommandList: allocator is %s, want %s", a.typ, q)
	}
	return &CommandList{typ: q, alloc: a}, nil
}

func (d *Device) CreateFence() (gpu.Fence, error) {
	return &Fence{}, nil
}

func (d *Device) CreateDescriptorHeap(desc gpu.DescriptorHeapDescriptor) (gpu.DescriptorHeap, error) {
	return &DescriptorHeap{slots: make([]slot, desc.Capacity)}, nil
}

// Allocator is a fake gpu.CommandAllocator. Reset is a no-op beyond
// bumping a generation counter, which nothing reads.
type Allocator struct {
	typ        gpu.QueueType
	generation atomic.Uint64
}

func (a *Allocator) Reset() error {
	a.generation.Add(1)
	return nil
}

// recordedOp is one entry in a CommandList's command stream, retained so
// tests can assert on exactly what a recorder produced.
type recordedOp struct {
	kind      string
	resource  gpu.Resource
	other     gpu.Resource
	before    gpu.ResourceState
	after     gpu.ResourceState
	subresrc  uint32
}

// CommandList is a fake gpu.CommandList. Recording appends to an
// in-memory op list; Close freezes it.
type CommandList struct {
	typ    gpu.QueueType
	alloc  *Allocator
	closed bool
	ops    []recordedOp
}

func (l *CommandList) QueueType() gpu.QueueType { return l.typ }

func (l *CommandList) Reset(alloc gpu.CommandAllocator) error {
	a, ok := alloc.(*Allocator)
	if !ok || a.typ != l.typ {
		return fmt.Errorf("gpu/fake: CommandList.Reset: allocator type mismatch")
	}
	l.alloc = a
	l.closed = false
	l.ops = l.ops[:0]
	return nil
}

func (l *CommandList) Close() error {
	l.closed = true
	return nil
}

func (l *CommandList) RecordTransitionBarrier(r gpu.Resource, before, after gpu.ResourceState, subresource uint32) error {
	if l.closed {
		return fmt.Errorf("gpu/fake: CommandList.RecordTransitionBarrier: list already closed")
	}
	l.ops = append(l.ops, recordedOp{kind: "transition", resource: r, before: before, after: after, subresrc: subresource})
	return nil
}

func (l *CommandList) RecordAliasingBarrier(before, after gpu.Resource) error {
	if l.closed {
		return fmt.Errorf("gpu/fake: CommandList.RecordAliasingBarrier: list already closed")
	}
	l.ops = append(l.ops, recordedOp{kind: "aliasing", resource: before, other: after})
	return nil
}

// Ops returns how many commands have been recorded, for test assertions.
func (l *CommandList) Ops() int { return len(l.ops) }

// Fence is a fake gpu.Fence backed by an atomic counter, matching
// hal/noop's atomic-counter fence.
type Fence struct {
	completed atomic.Uint64
}

func (f *Fence) CompletedValue() uint64 { return f.completed.Load() }

func (f *Fence) Wait(value uint64) error {
	// Signal is synchronous in this backend, so by the time Wait is
	// reachable the value has already been posted (or never will be).
	if f.completed.Load() < value {
		return fmt.Errorf("gpu/fake: Fence.Wait: value %d was never signaled (have %d)", value, f.completed.Load())
	}
	return nil
}

func (f *Fence) signal(value uint64) {
	for {
		cur := f.completed.Load()
		if value <= cur {
			return
		}
		if f.completed.CompareAndSwap(cur, value) {
			return
		}
	}
}

// Queue is a fake gpu.CommandQueue. ExecuteCommandLists validates queue
// affinity and closed state but otherwise performs no real GPU work.
type Queue struct {
	mu  sync.Mutex
	typ gpu.QueueType
}

func (q *Queue) Type() gpu.QueueType { return q.typ }

func (q *Queue) ExecuteCommandLists(lists []gpu.CommandList) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, l := range lists {
		cl, ok := l.(*CommandList)
		if !ok {
			return fmt.Errorf("gpu/fake: ExecuteCommandLists: list not created by this backend")
		}
		if cl.typ != q.typ {
			return fmt.Errorf("gpu/fake: ExecuteCommandLists: list is %s, queue is %s", cl.typ, q.typ)
		}
		if !cl.closed {
			return fmt.Errorf("gpu/fake: ExecuteCommandLists: list was never closed")
		}
	}
	return nil
}

func (q *Queue) Signal(fence gpu.Fence, value uint64) error {
	f, ok := fence.(*Fence)
	if !ok {
		return fmt.Errorf("gpu/fake: Signal: fence not created by this backend")
	}
	f.signal(value)
	return nil
}

type slot struct {
	resource gpu.Resource
	desc     gpu.ShaderResourceViewDesc
	valid    bool
}

// DescriptorHeap is a fake gpu.DescriptorHeap backed by an in-memory slot
// array; CPU and GPU handles are just the slot index, which is sufficient
// for a single-process test double.
type DescriptorHeap struct {
	mu    sync.Mutex
	slots []slot
}

func (h *DescriptorHeap) CPUHandle(index uint32) gpu.CPUDescriptorHandle {
	return gpu.CPUDescriptorHandle(index)
}

func (h *DescriptorHeap) GPUHandle(index uint32) gpu.GPUDescriptorHandle {
	return gpu.GPUDescriptorHandle(index)
}

func (h *DescriptorHeap) CreateShaderResourceView(index uint32, resource gpu.Resource, desc gpu.ShaderResourceViewDesc) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if int(index) >= len(h.slots) {
		return fmt.Errorf("gpu/fake: CreateShaderResourceView: index %d out of range [0,%d)", index, len(h.slots))
	}
	h.slots[index] = slot{resource: resource, desc: desc, valid: true}
	return nil
}

func (h *DescriptorHeap) CopyDescriptors(count uint32, dst, src gpu.CPUDescriptorHandle) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	d, s := int(dst), int(src)
	if d+int(count) > len(h.slots) || s+int(count) > len(h.slots) {
		return fmt.Errorf("gpu/fake: CopyDescriptors: range out of bounds")
	}
	copy(h.slots[d:d+int(count)], h.slots[s:s+int(count)])
	return nil
}

// SlotOccupied reports whether index holds a valid descriptor; exposed for
// test assertions.
func (h *DescriptorHeap) SlotOccupied(index uint32) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return int(index) < len(h.slots) && h.slots[index].valid
}

// Resource is a fake gpu.Resource: an in-memory named buffer or texture
// stand-in.
type Resource struct {
	name    string
	srvable bool
	srv     gpu.ShaderResourceViewDesc
}

// NewResource creates a fake resource. When srvable is false,
// CreateSRVDescription reports no SRV support, matching non-SRV-able
// native resources such as depth-only textures.
func NewResource(name string, srvable bool) *Resource {
	return &Resource{name: name, srvable: srvable, srv: gpu.ShaderResourceViewDesc{Format: "R8G8B8A8_UNORM", MipLevels: 1}}
}

func (r *Resource) Name() string { return r.name }

func (r *Resource) CreateSRVDescription() (gpu.ShaderResourceViewDesc, bool) {
	return r.srv, r.srvable
}
