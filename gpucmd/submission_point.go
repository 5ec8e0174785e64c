package gpucmd

import (
	"sync"

	"github.com/gogpu/framegraph/gpuevent"
	"github.com/gogpu/framegraph/internal/thread"
)

// SubmissionResult carries the outcome of one module's submission.
type SubmissionResult struct {
	Handle *gpuevent.Handle
	Err    error
}

// SubmissionPoint accepts ContextGroups from however many frame-graph
// modules are being recorded concurrently and hands them to a Manager one
// at a time, in increasing module-ID order, on a single dedicated thread.
// Modules finish recording (and therefore call Submit) in whatever order
// their worker goroutines happen to complete; SubmissionPoint buffers
// early arrivals until every lower module ID has been drained, so the
// actual order command lists reach the GPU always matches the order
// modules were created in, regardless of recording speed.
type SubmissionPoint struct {
	mgr *Manager
	th  *thread.Thread

	mu           sync.Mutex
	nextModuleID uint64
	pending      map[uint64]pendingSubmission
}

type pendingSubmission struct {
	group  ContextGroup
	result chan SubmissionResult
}

// NewSubmissionPoint creates a submission point draining into mgr,
// starting from module ID 0.
func NewSubmissionPoint(mgr *Manager) *SubmissionPoint {
	return &SubmissionPoint{
		mgr:     mgr,
		th:      thread.New(),
		pending: make(map[uint64]pendingSubmission),
	}
}

// Submit registers group as moduleID's submission and returns a channel
// that receives exactly one SubmissionResult once the module's turn has
// been drained and executed. moduleID must be unique per call.
func (sp *SubmissionPoint) Submit(moduleID uint64, group ContextGroup) <-chan SubmissionResult {
	result := make(chan SubmissionResult, 1)

	sp.mu.Lock()
	defer sp.mu.Unlock()
	sp.pending[moduleID] = pendingSubmission{group: group, result: result}

	// Executing while still holding sp.mu keeps two concurrent callers
	// from handing their drained entries to the thread out of order.
	for _, entry := range sp.drainLocked() {
		sp.execute(entry)
	}
	return result
}

// drainLocked pops every contiguous pending submission starting at
// nextModuleID, advancing nextModuleID past them. Callers must hold
// sp.mu and execute the returned entries before releasing it.
func (sp *SubmissionPoint) drainLocked() []pendingSubmission {
	var ready []pendingSubmission
	for {
		entry, ok := sp.pending[sp.nextModuleID]
		if !ok {
			break
		}
		delete(sp.pending, sp.nextModuleID)
		ready = append(ready, entry)
		sp.nextModuleID++
	}
	return ready
}

// execute runs one submission on the dedicated thread and publishes its
// result.
func (sp *SubmissionPoint) execute(entry pendingSubmission) {
	sp.th.CallVoid(func() {
		handle, err := sp.mgr.SubmitJobGroup(entry.group)
		entry.result <- SubmissionResult{Handle: handle, Err: err}
	})
}

// Stop terminates the dedicated submission thread. Any submissions still
// buffered waiting for an earlier module ID are abandoned.
func (sp *SubmissionPoint) Stop() {
	sp.th.Stop()
}
