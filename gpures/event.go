package gpures

import "github.com/gogpu/framegraph/gpu"

// Event describes a single resource-state transition a render pass
// requires before it runs, on the queue that pass was scheduled to.
type Event struct {
	Resource   *Resource
	Before     gpu.ResourceState
	After      gpu.ResourceState
	Subresource uint32
	Queue      gpu.QueueType
}

// dispatchable reports whether the owning queue can execute this
// transition directly, i.e. both states are legal on Queue.
func (e Event) dispatchable() bool {
	return gpu.QueueSupportsTransition(e.Queue, e.Before, e.After)
}

// EventManager separates a batch of resource events into those each
// originating queue can execute directly and those that are impossible
// there (e.g. a copy queue cannot transition a resource into
// StateRenderTarget) and therefore must be re-targeted at the direct
// queue as a prologue, mirroring the reference execution module's
// "prepare GPU resource events" step.
type EventManager struct{}

// Partition splits events into dispatchable (left on their original
// queue) and impossible (need a direct-queue prologue).
func (EventManager) Partition(events []Event) (dispatchable, impossible []Event) {
	for _, e := range events {
		if e.dispatchable() {
			dispatchable = append(dispatchable, e)
		} else {
			impossible = append(impossible, e)
		}
	}
	return dispatchable, impossible
}

// Retarget returns copies of events rebound to queue, e.g. gpu.Direct for
// scheduling into a prologue command list recorded ahead of every other
// queue's work in a frame.
func Retarget(events []Event, queue gpu.QueueType) []Event {
	out := make([]Event, len(events))
	for i, e := range events {
		e.Queue = queue
		out[i] = e
	}
	return out
}
