package framegraph

import (
	"context"

	"github.com/gogpu/framegraph/gpu"
	"github.com/gogpu/framegraph/gpucmd"
	"github.com/gogpu/framegraph/gpures"
	"github.com/gogpu/framegraph/jobsys"
)

// Module is one frame graph execution unit: a batch of render-pass
// bundles recorded and submitted together, in direct→compute→copy queue
// order, as a single unit of GPU work with one module ID establishing its
// place in the overall submission sequence.
type Module struct {
	id        uint64
	vault     *gpucmd.Vault
	maxPasses int
	bundles   []*Bundle
}

// NewModule creates an empty module. maxPasses bounds how many render
// passes a single command-list recorder accepts before a fresh one is
// started for the same queue.
func NewModule(id uint64, vault *gpucmd.Vault, maxPasses int) *Module {
	return &Module{id: id, vault: vault, maxPasses: maxPasses}
}

// ID returns the module's submission-order identifier.
func (m *Module) ID() uint64 { return m.id }

// AddRenderPassBundle appends bundle to the module.
func (m *Module) AddRenderPassBundle(bundle *Bundle) {
	m.bundles = append(m.bundles, bundle)
}

// RenderPassCount returns the total number of render passes across every
// bundle in the module.
func (m *Module) RenderPassCount() int {
	n := 0
	for _, b := range m.bundles {
		n += len(b.Passes())
	}
	return n
}

// UsedQueues returns the set of queue types this module schedules work
// onto.
func (m *Module) UsedQueues() gpu.QueueSet {
	var set gpu.QueueSet
	for _, b := range m.bundles {
		set = set.Add(b.QueueType())
	}
	return set
}

// ResourceDependencies returns every resource-state transition this
// module's passes require, across all queues.
func (m *Module) ResourceDependencies() []gpures.Event {
	var events []gpures.Event
	for _, b := range m.bundles {
		for _, p := range b.Passes() {
			events = append(events, p.Events()...)
		}
	}
	return events
}

// passesByQueue flattens the module's bundles into per-queue pass lists,
// preserving bundle order within each queue.
func (m *Module) passesByQueue() (direct, compute, copyPasses []renderPass) {
	for _, b := range m.bundles {
		switch b.QueueType() {
		case gpu.Direct:
			direct = append(direct, b.Passes()...)
		case gpu.Compute:
			compute = append(compute, b.Passes()...)
		case gpu.Copy:
			copyPasses = append(copyPasses, b.Passes()...)
		}
	}
	return direct, compute, copyPasses
}

// Submit runs the module's six-step pipeline: partition resource events
// into what each owning queue can execute directly versus what is
// impossible there, synthesize the impossible ones into a direct-queue
// prologue, record every queue's passes in parallel chunks bounded by
// maxPasses, extract the recorded contexts, and hand the resulting
// ContextGroup to sp under this module's ID.
func (m *Module) Submit(sp *gpucmd.SubmissionPoint) (<-chan gpucmd.SubmissionResult, error) {
	direct, compute, copyPasses := m.passesByQueue()

	var allEvents []gpures.Event
	for _, p := range direct {
		allEvents = append(allEvents, p.Events()...)
	}
	for _, p := range compute {
		allEvents = append(allEvents, p.Events()...)
	}
	for _, p := range copyPasses {
		allEvents = append(allEvents, p.Events()...)
	}

	// Partition is called only here, on the goroutine running Submit,
	// never from inside a jobsys worker.
	var eventMgr gpures.EventManager
	_, impossible := eventMgr.Partition(allEvents)

	group := gpucmd.ContextGroup{}

	if len(impossible) > 0 {
		ctx, err := m.vault.Acquire(gpu.Direct)
		if err != nil {
			return nil, err
		}
		rec := gpucmd.NewRecorder(ctx, len(impossible))
		if err := rec.RecordPass(gpures.Retarget(impossible, gpu.Direct)); err != nil {
			return nil, err
		}
		prologue, err := rec.Close()
		if err != nil {
			return nil, err
		}
		group.Direct = append(group.Direct, prologue)
	}

	directCtxs, err := m.recordQueue(gpu.Direct, direct)
	if err != nil {
		return nil, err
	}
	group.Direct = append(group.Direct, directCtxs...)

	if group.Compute, err = m.recordQueue(gpu.Compute, compute); err != nil {
		return nil, err
	}
	if group.Copy, err = m.recordQueue(gpu.Copy, copyPasses); err != nil {
		return nil, err
	}

	return sp.Submit(m.id, group), nil
}

// recordQueue chunks passes into groups of at most m.maxPasses, then
// records each chunk into its own command-list context on a separate
// worker, joining once every chunk has finished.
func (m *Module) recordQueue(q gpu.QueueType, passes []renderPass) ([]*gpucmd.Context, error) {
	if len(passes) == 0 {
		return nil, nil
	}

	chunks := chunkPasses(passes, m.maxPasses)
	contexts := make([]*gpucmd.Context, len(chunks))

	jobs := jobsys.NewGroup(context.Background(), 0)
	jobs.Reserve(len(chunks))
	for i, chunk := range chunks {
		i, chunk := i, chunk
		jobs.AddJob(func() error {
			ctx, err := m.vault.Acquire(q)
			if err != nil {
				return err
			}
			rec := gpucmd.NewRecorder(ctx, len(chunk))
			for _, p := range chunk {
				// Events impossible on q were already recorded in Submit's
				// direct-queue prologue; only the dispatchable ones go here.
				var events []gpures.Event
				for _, e := range p.Events() {
					if gpu.QueueSupportsTransition(e.Queue, e.Before, e.After) {
						events = append(events, e)
					}
				}
				if err := rec.RecordPass(events); err != nil {
					return err
				}
				if err := p.Execute(rec.List()); err != nil {
					return err
				}
			}
			extracted, err := rec.Close()
			if err != nil {
				return err
			}
			contexts[i] = extracted
			return nil
		})
	}
	if err := jobs.Execute(); err != nil {
		return nil, err
	}
	return contexts, nil
}

func chunkPasses(passes []renderPass, max int) [][]renderPass {
	if max <= 0 {
		max = len(passes)
	}
	var chunks [][]renderPass
	for len(passes) > 0 {
		n := max
		if n > len(passes) {
			n = len(passes)
		}
		chunks = append(chunks, passes[:n])
		passes = passes[n:]
	}
	return chunks
}
