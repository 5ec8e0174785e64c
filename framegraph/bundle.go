package framegraph

import (
	"fmt"

	"github.com/gogpu/framegraph/gpu"
)

// Bundle groups one or more render passes that must be recorded together
// (e.g. because a later pass in the group reads a resource an earlier
// one writes without an intervening submission boundary). Every pass in
// a bundle must target the same queue.
type Bundle struct {
	passes []renderPass
	queue  renderPass // holds the first pass purely to read its QueueType
}

// NewBundle groups passes, which must all share one queue type.
func NewBundle(passes ...renderPass) (*Bundle, error) {
	if len(passes) == 0 {
		return nil, fmt.Errorf("framegraph: a bundle needs at least one render pass")
	}
	q := passes[0].QueueType()
	for _, p := range passes[1:] {
		if p.QueueType() != q {
			return nil, fmt.Errorf("framegraph: bundle passes must share a queue type, got %s and %s", q, p.QueueType())
		}
	}
	return &Bundle{passes: passes, queue: passes[0]}, nil
}

// Passes returns the bundle's render passes in recording order.
func (b *Bundle) Passes() []renderPass { return b.passes }

// QueueType returns the queue every pass in this bundle targets.
func (b *Bundle) QueueType() gpu.QueueType {
	return b.queue.QueueType()
}
