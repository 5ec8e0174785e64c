// Package gpuevent tracks completion of one or more queued GPU
// submissions as a single waitable handle, and provides the
// compare-and-swap protocol used to chain submissions into a strict
// FIFO order across racing submitter goroutines.
package gpuevent

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gogpu/framegraph/gpu"
)

// fenceWait pairs a fence with the value it must reach.
type fenceWait struct {
	fence gpu.Fence
	value uint64
}

// Handle represents the completion of every submission that contributed
// a fence/value pair to it. A render pass or resource may depend on more
// than one queue's work finishing, so a Handle can track several fences
// at once.
type Handle struct {
	mu    sync.Mutex
	waits []fenceWait
}

// New returns an empty, already-complete handle.
func New() *Handle {
	return &Handle{}
}

// AddFence records that this handle is not complete until fence reaches
// value.
func (h *Handle) AddFence(fence gpu.Fence, value uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.waits = append(h.waits, fenceWait{fence: fence, value: value})
}

// IsComplete reports whether every fence this handle tracks has already
// reached its target value, without blocking.
func (h *Handle) IsComplete() bool {
	h.mu.Lock()
	waits := append([]fenceWait(nil), h.waits...)
	h.mu.Unlock()

	for _, w := range waits {
		if w.fence.CompletedValue() < w.value {
			return false
		}
	}
	return true
}

// Wait blocks until every fence this handle tracks has reached its
// target value.
func (h *Handle) Wait() error {
	h.mu.Lock()
	waits := append([]fenceWait(nil), h.waits...)
	h.mu.Unlock()

	for _, w := range waits {
		if err := w.fence.Wait(w.value); err != nil {
			return fmt.Errorf("gpuevent: wait: %w", err)
		}
	}
	return nil
}

// Merge returns a new Handle that is complete only once every argument
// handle is complete, used to combine the events of independent queue
// submissions that a later pass depends on jointly.
func Merge(handles ...*Handle) *Handle {
	merged := New()
	for _, h := range handles {
		if h == nil {
			continue
		}
		h.mu.Lock()
		merged.waits = append(merged.waits, h.waits...)
		h.mu.Unlock()
	}
	return merged
}

// Tracker holds the single "current" event handle for a submission
// stream (e.g. one per queue type), exchanged atomically so that
// concurrent submitters can establish a strict FIFO hand-off: each
// submitter must observe and wait on the handle it displaces before its
// own work is allowed to be considered the new current handle.
type Tracker struct {
	current atomic.Pointer[Handle]
}

// NewTracker returns a Tracker whose initial current handle is already
// complete.
func NewTracker() *Tracker {
	t := &Tracker{}
	t.current.Store(New())
	return t
}

// ExchangeCurrent installs next as the new current handle and returns the
// handle it replaced. Callers needing strict ordering must finish
// observing (and waiting on, if required) the returned previous handle
// before any dependent work tied to next is allowed to proceed — this
// mirrors the reference submission point's CAS loop, where a racing
// submitter retries the exchange against whatever handle is current at
// the time, rather than assuming the handle it last observed still is.
func (t *Tracker) ExchangeCurrent(next *Handle) *Handle {
	for {
		prev := t.current.Load()
		if t.current.CompareAndSwap(prev, next) {
			return prev
		}
	}
}

// Current returns the tracker's current handle without displacing it.
func (t *Tracker) Current() *Handle {
	return t.current.Load()
}

// TryExchange installs next as the current handle only if the tracker's
// current handle is still observed, returning whether the swap took
// effect. Callers that lose the race are expected to re-read Current,
// wait on it, and retry with a fresh observed value.
func (t *Tracker) TryExchange(observed, next *Handle) bool {
	return t.current.CompareAndSwap(observed, next)
}
