// Package framegraph assembles render passes into modules, splits their
// resource-state requirements across the direct, compute, and copy
// queues, records them in parallel, and submits them in frame order.
package framegraph

import (
	"github.com/gogpu/framegraph/gpu"
	"github.com/gogpu/framegraph/gpures"
)

// renderPass is the type-erased view of a RenderPass[T] that a Module
// operates on, since a module holds passes of many different payload
// types side by side.
type renderPass interface {
	Name() string
	QueueType() gpu.QueueType
	Events() []gpures.Event
	Execute(list gpu.CommandList) error
}

// RenderPass is one unit of GPU work: a callback that records commands
// against a queue, parameterized over whatever payload T the caller's
// pass needs (e.g. a struct of resource handles captured at pass-setup
// time), plus the resource-state transitions that must be recorded
// immediately before it runs.
type RenderPass[T any] struct {
	name     string
	queue    gpu.QueueType
	data     T
	events   []gpures.Event
	callback func(list gpu.CommandList, data T) error
}

// NewRenderPass creates a render pass scheduled on queue, carrying data
// through to callback when the pass executes.
func NewRenderPass[T any](name string, queue gpu.QueueType, data T, callback func(gpu.CommandList, T) error) *RenderPass[T] {
	return &RenderPass[T]{name: name, queue: queue, data: data, callback: callback}
}

// AddResourceEvent records a state transition this pass requires before
// it executes, returning the pass for chaining.
func (p *RenderPass[T]) AddResourceEvent(e gpures.Event) *RenderPass[T] {
	e.Queue = p.queue
	p.events = append(p.events, e)
	return p
}

// Name returns the pass's debug label.
func (p *RenderPass[T]) Name() string { return p.name }

// QueueType returns the queue this pass is scheduled on.
func (p *RenderPass[T]) QueueType() gpu.QueueType { return p.queue }

// Events returns the resource transitions this pass requires.
func (p *RenderPass[T]) Events() []gpures.Event { return p.events }

// Execute runs the pass's callback against a recording command list.
func (p *RenderPass[T]) Execute(list gpu.CommandList) error {
	return p.callback(list, p.data)
}
