// Package gpu is the narrow programmatic boundary between the frame graph
// execution core and a real graphics driver. It intentionally does not
// implement a native backend (see gpu/fake for the in-process test double);
// wiring a real D3D12/Vulkan/Metal implementation behind these interfaces
// is explicitly out of scope for this module.
package gpu

import "fmt"

// QueueType identifies one of the three GPU command queues this module
// schedules work onto.
type QueueType int

const (
	Direct QueueType = iota
	Compute
	Copy

	numQueueTypes = int(Copy) + 1
)

// String returns a human-readable queue name.
func (q QueueType) String() string {
	switch q {
	case Direct:
		return "direct"
	case Compute:
		return "compute"
	case Copy:
		return "copy"
	default:
		return fmt.Sprintf("QueueType(%d)", int(q))
	}
}

// QueueSet is a bitmask of queue types, used where a module or resource
// touches more than one queue (e.g. Module.UsedQueues).
type QueueSet uint8

// Add returns the set with q included.
func (s QueueSet) Add(q QueueType) QueueSet {
	return s | (1 << uint(q))
}

// Has reports whether q is a member of the set.
func (s QueueSet) Has(q QueueType) bool {
	return s&(1<<uint(q)) != 0
}

// Empty reports whether the set has no members.
func (s QueueSet) Empty() bool {
	return s == 0
}

// ResourceState is a native resource state/usage flag. Values mirror the
// D3D12 resource-state vocabulary this module's domain is modeled on.
type ResourceState uint32

const (
	StateCommon ResourceState = iota
	StateRenderTarget
	StateUnorderedAccess
	StateDepthWrite
	StateDepthRead
	StateNonPixelShaderResource
	StatePixelShaderResource
	StateCopyDest
	StateCopySource
	StatePresent
)

// String returns a human-readable state name.
func (s ResourceState) String() string {
	switch s {
	case StateCommon:
		return "common"
	case StateRenderTarget:
		return "render-target"
	case StateUnorderedAccess:
		return "unordered-access"
	case StateDepthWrite:
		return "depth-write"
	case StateDepthRead:
		return "depth-read"
	case StateNonPixelShaderResource:
		return "non-pixel-shader-resource"
	case StatePixelShaderResource:
		return "pixel-shader-resource"
	case StateCopyDest:
		return "copy-dest"
	case StateCopySource:
		return "copy-source"
	case StatePresent:
		return "present"
	default:
		return fmt.Sprintf("ResourceState(%d)", uint32(s))
	}
}

// queueSupport enumerates, per queue type, which states a queue may
// transition a resource into directly. A copy queue cannot originate or
// land on shader-visible or render states; this is the source of
// "impossible" transitions in the resource-event manager.
var queueSupport = [numQueueTypes]map[ResourceState]bool{
	Direct: {
		StateCommon: true, StateRenderTarget: true, StateUnorderedAccess: true,
		StateDepthWrite: true, StateDepthRead: true, StateNonPixelShaderResource: true,
		StatePixelShaderResource: true, StateCopyDest: true, StateCopySource: true,
		StatePresent: true,
	},
	Compute: {
		StateCommon: true, StateUnorderedAccess: true, StateNonPixelShaderResource: true,
		StateCopyDest: true, StateCopySource: true,
	},
	Copy: {
		StateCommon: true, StateCopyDest: true, StateCopySource: true,
	},
}

// QueueSupportsTransition reports whether q can execute a transition of a
// resource from before to after directly. Both states must be legal on q.
func QueueSupportsTransition(q QueueType, before, after ResourceState) bool {
	support := queueSupport[q]
	return support[before] && support[after]
}

// CPUDescriptorHandle and GPUDescriptorHandle are opaque native descriptor
// handles, represented as heap-relative offsets so that arithmetic (used
// by descheap to compute per-slot handles) stays in this package.
type CPUDescriptorHandle uint64
type GPUDescriptorHandle uint64

// ShaderResourceViewDesc is the minimal information needed to create a
// shader resource view for a bindless allocation.
type ShaderResourceViewDesc struct {
	Format        string
	MostDetailedMip uint32
	MipLevels     uint32
}

// Resource is a native GPU resource: a buffer or texture whose lifetime
// and state are tracked across frames.
type Resource interface {
	// Name returns a debug label for the resource.
	Name() string

	// CreateSRVDescription returns the description needed to create a
	// shader resource view for this resource, and whether one is
	// supported (some resources, e.g. depth-only textures, may not be
	// SRV-able).
	CreateSRVDescription() (ShaderResourceViewDesc, bool)
}

// CommandAllocator backs the recording of one command list. It must be
// reset before reuse once the GPU has finished executing the command
// lists recorded from it.
type CommandAllocator interface {
	Reset() error
}

// CommandList records GPU commands for a single queue type.
type CommandList interface {
	QueueType() QueueType

	// Reset begins recording using alloc as backing storage.
	Reset(alloc CommandAllocator) error

	// Close ends recording, making the list ready for submission.
	Close() error

	// RecordTransitionBarrier records a resource-state transition for the
	// given subresource (or all subresources if subresource is the
	// sentinel value AllSubresources).
	RecordTransitionBarrier(r Resource, before, after ResourceState, subresource uint32) error

	// RecordAliasingBarrier records an aliasing barrier between two
	// resources that share a transient memory region.
	RecordAliasingBarrier(before, after Resource) error
}

// AllSubresources is the sentinel subresource index meaning "every
// subresource of this resource".
const AllSubresources = ^uint32(0)

// Fence is a GPU/CPU synchronization primitive with a monotonically
// increasing completion value.
type Fence interface {
	// CompletedValue returns the highest value the GPU has signaled.
	CompletedValue() uint64

	// Wait blocks until the fence reaches value. There is no timeout: the
	// specification assumes GPU forward progress.
	Wait(value uint64) error
}

// CommandQueue submits recorded command lists and signals fences.
type CommandQueue interface {
	Type() QueueType

	// ExecuteCommandLists submits lists to the GPU in the given order.
	ExecuteCommandLists(lists []CommandList) error

	// Signal schedules fence to be signaled with value once all
	// previously submitted work on this queue has completed.
	Signal(fence Fence, value uint64) error
}

// DescriptorHeapDescriptor configures a shader-visible descriptor heap.
type DescriptorHeapDescriptor struct {
	Capacity uint32
}

// DescriptorHeap is a native shader-visible descriptor heap capable of
// hosting shader resource views at caller-chosen slot indices.
type DescriptorHeap interface {
	CPUHandle(index uint32) CPUDescriptorHandle
	GPUHandle(index uint32) GPUDescriptorHandle

	// CreateShaderResourceView writes an SRV for resource at index.
	CreateShaderResourceView(index uint32, resource Resource, desc ShaderResourceViewDesc) error

	// CopyDescriptors copies count descriptors starting at src (in a
	// non-shader-visible staging heap) to dst (in this heap).
	CopyDescriptors(count uint32, dst, src CPUDescriptorHandle) error
}

// Device creates the native objects the frame graph core orchestrates.
type Device interface {
	CommandQueue(q QueueType) CommandQueue
	CreateCommandAllocator(q QueueType) (CommandAllocator, error)
	CreateCommandList(q QueueType, alloc CommandAllocator) (CommandList, error)
	CreateFence() (Fence, error)
	CreateDescriptorHeap(desc DescriptorHeapDescriptor) (DescriptorHeap, error)
}
