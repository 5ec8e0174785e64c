package framegraph

import (
	"fmt"
	"sync/atomic"

	"github.com/gogpu/framegraph/engineconfig"
	"github.com/gogpu/framegraph/gpu"
	"github.com/gogpu/framegraph/gpucmd"
	"github.com/gogpu/framegraph/gpures"
	"github.com/gogpu/framegraph/tlsf"
)

// Builder accumulates render-pass bundles and transient resource
// allocations for one module, then finalizes them into a Module ready
// for submission. A Builder may be handed to a parallel worker and later
// folded back into its parent with MergeFrameGraphBuilder, matching how
// sub-graphs recorded on separate goroutines are reconciled into one
// frame's module.
type Builder struct {
	cfg           engineconfig.Config
	vault         *gpucmd.Vault
	transientHeap *tlsf.Heap
	moduleIDs     *atomic.Uint64

	bundles    []*Bundle
	transients []*gpures.Resource
}

// NewBuilder creates a builder backed by a transient memory arena of
// transientArenaSize bytes and a shared module-ID counter (so concurrent
// builders across a frame never collide on IDs).
func NewBuilder(cfg engineconfig.Config, vault *gpucmd.Vault, transientArenaSize uint64, moduleIDs *atomic.Uint64) (*Builder, error) {
	heap, err := tlsf.NewHeap(transientArenaSize)
	if err != nil {
		return nil, fmt.Errorf("framegraph: create transient heap: %w", err)
	}
	return &Builder{cfg: cfg, vault: vault, transientHeap: heap, moduleIDs: moduleIDs}, nil
}

// CreateTransientResource allocates size bytes (aligned to align) from
// the builder's transient arena and returns a tracked resource bound to
// that placement. native must already exist as a native resource created
// to alias that memory; this only tracks the placement, it does not
// create the native object.
func (b *Builder) CreateTransientResource(native gpu.Resource, size, align uint64) (*gpures.Resource, error) {
	block, err := b.transientHeap.Allocate(size, align)
	if err != nil {
		return nil, fmt.Errorf("framegraph: allocate transient resource %q: %w", native.Name(), err)
	}
	res := gpures.NewResource(native, gpu.StateCommon)
	res.BindTransient(b.transientHeap, block)
	b.transients = append(b.transients, res)
	return res, nil
}

// AddRenderPassBundle appends bundle to the builder's accumulated module.
func (b *Builder) AddRenderPassBundle(bundle *Bundle) {
	b.bundles = append(b.bundles, bundle)
}

// MergeFrameGraphBuilder folds other's bundles and transient resources
// into b. other must not be used afterward.
func (b *Builder) MergeFrameGraphBuilder(other *Builder) {
	b.bundles = append(b.bundles, other.bundles...)
	b.transients = append(b.transients, other.transients...)
}

// TransientResources returns every resource allocated from this builder's
// arena so far.
func (b *Builder) TransientResources() []*gpures.Resource {
	return b.transients
}

// Build finalizes the accumulated bundles into a Module with a freshly
// assigned ID.
func (b *Builder) Build() *Module {
	id := b.moduleIDs.Add(1) - 1
	module := NewModule(id, b.vault, b.cfg.MaxRenderPassesPerCommandList)
	for _, bundle := range b.bundles {
		module.AddRenderPassBundle(bundle)
	}
	return module
}
