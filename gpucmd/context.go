// Package gpucmd implements command-list recording and ordered,
// fence-gated submission across the direct, compute, and copy queues.
package gpucmd

import (
	"fmt"

	"github.com/gogpu/framegraph/gpu"
)

// Context bundles one command allocator and the command list recorded
// from it, plus the fence value that must be reached before the
// allocator may be reset and reused.
type Context struct {
	queue   gpu.QueueType
	alloc   gpu.CommandAllocator
	list    gpu.CommandList
	retired uint64 // fence value at which this context's work completes; 0 until submitted
}

func newContext(dev gpu.Device, q gpu.QueueType) (*Context, error) {
	alloc, err := dev.CreateCommandAllocator(q)
	if err != nil {
		return nil, fmt.Errorf("gpucmd: create command allocator: %w", err)
	}
	list, err := dev.CreateCommandList(q, alloc)
	if err != nil {
		return nil, fmt.Errorf("gpucmd: create command list: %w", err)
	}
	return &Context{queue: q, alloc: alloc, list: list}, nil
}

// reset prepares a reused context for fresh recording.
func (c *Context) reset() error {
	if err := c.alloc.Reset(); err != nil {
		return fmt.Errorf("gpucmd: reset allocator: %w", err)
	}
	if err := c.list.Reset(c.alloc); err != nil {
		return fmt.Errorf("gpucmd: reset command list: %w", err)
	}
	c.retired = 0
	return nil
}

// QueueType returns the queue this context's list records for.
func (c *Context) QueueType() gpu.QueueType { return c.queue }

// List exposes the native command list for recording.
func (c *Context) List() gpu.CommandList { return c.list }
