// Package engine wires together the descriptor heap, command submission
// pipeline, and frame graph builders behind a single explicitly
// constructed Core. Unlike a lazily initialized process-wide singleton,
// Core is created and torn down by the caller, so its lifetime is never
// implicit and tests can run several independent instances side by side.
package engine

import (
	"fmt"

	"github.com/gogpu/framegraph/descheap"
	"github.com/gogpu/framegraph/engineconfig"
	"github.com/gogpu/framegraph/framegraph"
	"github.com/gogpu/framegraph/gpu"
	"github.com/gogpu/framegraph/gpucmd"
	"github.com/gogpu/framegraph/lifetime"

	"sync/atomic"
)

// Core owns the per-process state the frame graph needs across frames:
// the partitioned descriptor heap, the vault of reusable command
// contexts, the ordered submission pipeline, and the module-ID counter
// that gives every submitted module its place in frame order.
type Core struct {
	dev gpu.Device
	cfg engineconfig.Config

	descHeap   *descheap.Heap
	vault      *gpucmd.Vault
	manager    *gpucmd.Manager
	submission *gpucmd.SubmissionPoint
	lifetime   *lifetime.Tracker

	moduleIDs atomic.Uint64
	frame     atomic.Uint64
}

// NewCore constructs every piece of state the frame graph core needs
// against dev, using cfg's tunables. Call Shutdown when done with it.
func NewCore(dev gpu.Device, cfg engineconfig.Config) (*Core, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("engine: invalid config: %w", err)
	}

	descHeap, err := descheap.NewHeap(dev, cfg)
	if err != nil {
		return nil, fmt.Errorf("engine: create descriptor heap: %w", err)
	}
	vault, err := gpucmd.NewVault(dev)
	if err != nil {
		return nil, fmt.Errorf("engine: create command vault: %w", err)
	}
	manager := gpucmd.NewManager(dev, vault)

	return &Core{
		dev:        dev,
		cfg:        cfg,
		descHeap:   descHeap,
		vault:      vault,
		manager:    manager,
		submission: gpucmd.NewSubmissionPoint(manager),
		lifetime:   lifetime.NewTracker(cfg.MaxFramesInFlight),
	}, nil
}

// Shutdown stops the dedicated submission thread. The Core must not be
// used afterward.
func (c *Core) Shutdown() {
	c.submission.Stop()
}

// DescriptorHeap returns the shared partitioned descriptor heap.
func (c *Core) DescriptorHeap() *descheap.Heap {
	return c.descHeap
}

// Vault returns the shared command-context vault.
func (c *Core) Vault() *gpucmd.Vault {
	return c.vault
}

// SubmissionPoint returns the shared ordered submission pipeline.
func (c *Core) SubmissionPoint() *gpucmd.SubmissionPoint {
	return c.submission
}

// Lifetime returns the delayed-teardown tracker gating resource
// destruction on frames-in-flight.
func (c *Core) Lifetime() *lifetime.Tracker {
	return c.lifetime
}

// NewFrameGraphBuilder creates a builder with its own transient memory
// arena, drawing module IDs from the Core's shared counter so every
// builder created from this Core submits under a distinct, increasing
// module ID.
func (c *Core) NewFrameGraphBuilder(transientArenaSize uint64) (*framegraph.Builder, error) {
	return framegraph.NewBuilder(c.cfg, c.vault, transientArenaSize, &c.moduleIDs)
}

// BeginFrame advances the frame counter, resets the per-frame descriptor
// partition belonging to the new frame's parity, and retires any
// lifetime-deferred teardowns whose delay has elapsed. It returns the new
// frame index.
func (c *Core) BeginFrame() uint64 {
	frame := c.frame.Add(1)
	c.descHeap.ResetPerFrameDescriptorHeapIndex(uint32(frame % 2))
	c.lifetime.Retire(frame)
	return frame
}
