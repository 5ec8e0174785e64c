package gpucmd

import (
	"fmt"
	"sync/atomic"

	"github.com/gogpu/framegraph/gpu"
	"github.com/gogpu/framegraph/gpuevent"
)

// ContextGroup holds the command-list contexts recorded for one frame,
// bucketed by queue type.
type ContextGroup struct {
	Direct  []*Context
	Compute []*Context
	Copy    []*Context
}

func (g ContextGroup) byQueue(q gpu.QueueType) []*Context {
	switch q {
	case gpu.Direct:
		return g.Direct
	case gpu.Compute:
		return g.Compute
	case gpu.Copy:
		return g.Copy
	default:
		return nil
	}
}

// Manager submits recorded ContextGroups to the GPU in a fixed
// direct→compute→copy order and returns a single event marking when
// every queue's submitted work has completed.
type Manager struct {
	dev    gpu.Device
	vault  *Vault
	fences [queueSlots]gpu.Fence

	nextValue [queueSlots]atomic.Uint64
	trackers  [queueSlots]*gpuevent.Tracker
}

// NewManager creates a submission manager. vault's per-queue fences are
// reused as the manager's own submission fences, since both need to
// observe the same completion signal.
func NewManager(dev gpu.Device, vault *Vault) *Manager {
	m := &Manager{dev: dev, vault: vault}
	for i := 0; i < queueSlots; i++ {
		m.fences[i] = vault.Fence(gpu.QueueType(i))
		m.trackers[i] = gpuevent.NewTracker()
	}
	return m
}

// SubmitJobGroup submits every non-empty queue bucket in group, in
// direct, then compute, then copy order, retiring each context's
// allocator back to the vault once its fence value is known. It returns
// a handle complete once every submitted queue's work has finished.
func (m *Manager) SubmitJobGroup(group ContextGroup) (*gpuevent.Handle, error) {
	order := [queueSlots]gpu.QueueType{gpu.Direct, gpu.Compute, gpu.Copy}

	var handles []*gpuevent.Handle
	for _, q := range order {
		contexts := group.byQueue(q)
		if len(contexts) == 0 {
			continue
		}
		handle, err := m.submitQueue(q, contexts)
		if err != nil {
			return nil, fmt.Errorf("gpucmd: submit %s queue: %w", q, err)
		}
		handles = append(handles, handle)
	}
	return gpuevent.Merge(handles...), nil
}

// submitQueue executes contexts on queue type q and signals the next
// fence value. Concurrent callers submitting to the same queue establish
// their ordering by racing to install their own event handle as the
// tracker's current one: a loser waits for the winner's GPU work to
// finish before retrying, so the order submissions win the race in is
// also the order their command lists reach the hardware queue.
func (m *Manager) submitQueue(q gpu.QueueType, contexts []*Context) (*gpuevent.Handle, error) {
	queue := m.dev.CommandQueue(q)
	lists := make([]gpu.CommandList, len(contexts))
	for i, c := range contexts {
		lists[i] = c.List()
	}

	tracker := m.trackers[q]
	observed := tracker.Current()
	for {
		next := gpuevent.New()
		if tracker.TryExchange(observed, next) {
			if err := queue.ExecuteCommandLists(lists); err != nil {
				return nil, fmt.Errorf("execute command lists: %w", err)
			}
			value := m.nextValue[q].Add(1)
			if err := queue.Signal(m.fences[q], value); err != nil {
				return nil, fmt.Errorf("signal fence: %w", err)
			}
			next.AddFence(m.fences[q], value)
			for _, c := range contexts {
				m.vault.Retire(c, value)
			}
			return next, nil
		}

		observed = tracker.Current()
		if err := observed.Wait(); err != nil {
			return nil, fmt.Errorf("wait for preceding submission: %w", err)
		}
	}
}
