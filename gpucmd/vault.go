package gpucmd

import (
	"fmt"
	"sync"

	"github.com/gogpu/framegraph/gpu"
)

// queueSlots indexes per-queue-type state by gpu.QueueType's int value.
const queueSlots = 3

// Vault pools command-list contexts per queue type, reusing a context's
// allocator only once the GPU has finished the submission it was last
// used in. A caller acquires a context, records into it, and returns it
// through Retire with the fence value its submission will signal; the
// context becomes eligible for reuse once that value is reached.
type Vault struct {
	dev gpu.Device

	mu     sync.Mutex
	fences [queueSlots]gpu.Fence
	free   [queueSlots][]*Context
	active [queueSlots][]*Context
}

// NewVault creates a vault with one fence per queue type, used to gate
// context reuse.
func NewVault(dev gpu.Device) (*Vault, error) {
	v := &Vault{dev: dev}
	for i := 0; i < queueSlots; i++ {
		f, err := dev.CreateFence()
		if err != nil {
			return nil, fmt.Errorf("gpucmd: create vault fence for queue %d: %w", i, err)
		}
		v.fences[i] = f
	}
	return v, nil
}

// Fence returns the fence the vault uses to gate reuse for queue type q;
// Manager signals this same fence on submission.
func (v *Vault) Fence(q gpu.QueueType) gpu.Fence {
	return v.fences[q]
}

// maintain moves every active context whose retirement value has been
// reached back into the free list. Callers must hold v.mu.
func (v *Vault) maintain(q gpu.QueueType) {
	completed := v.fences[q].CompletedValue()
	active := v.active[q]
	remaining := active[:0]
	for _, ctx := range active {
		if ctx.retired != 0 && ctx.retired <= completed {
			v.free[q] = append(v.free[q], ctx)
		} else {
			remaining = append(remaining, ctx)
		}
	}
	v.active[q] = remaining
}

// Acquire returns a ready-to-record context for queue type q, reusing a
// retired one if available.
func (v *Vault) Acquire(q gpu.QueueType) (*Context, error) {
	v.mu.Lock()
	v.maintain(q)
	var ctx *Context
	if n := len(v.free[q]); n > 0 {
		ctx = v.free[q][n-1]
		v.free[q] = v.free[q][:n-1]
	}
	v.mu.Unlock()

	if ctx != nil {
		if err := ctx.reset(); err != nil {
			return nil, err
		}
		return ctx, nil
	}
	return newContext(v.dev, q)
}

// Retire hands a submitted context back to the vault, recording the
// fence value at which its allocator becomes safe to reuse.
func (v *Vault) Retire(ctx *Context, retiredAtValue uint64) {
	ctx.retired = retiredAtValue
	v.mu.Lock()
	v.active[ctx.queue] = append(v.active[ctx.queue], ctx)
	v.mu.Unlock()
}

// ActiveCount reports how many contexts for q are awaiting GPU
// completion, for diagnostics and tests.
func (v *Vault) ActiveCount(q gpu.QueueType) int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.active[q])
}

// FreeCount reports how many contexts for q are ready for reuse, for
// diagnostics and tests.
func (v *Vault) FreeCount(q gpu.QueueType) int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.free[q])
}
