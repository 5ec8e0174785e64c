package gpucmd

import (
	"fmt"

	"github.com/gogpu/framegraph/gpu"
	"github.com/gogpu/framegraph/gpures"
)

// Recorder accumulates render passes into a single Context's command
// list, up to a caller-chosen pass limit. Once full, the frame graph
// builder starts a fresh Recorder sharing the same queue type, so a
// queue's work for one frame may span several command lists.
type Recorder struct {
	ctx       *Context
	maxPasses int
	passes    int
}

// NewRecorder begins recording into ctx, accepting at most maxPasses
// render passes.
func NewRecorder(ctx *Context, maxPasses int) *Recorder {
	return &Recorder{ctx: ctx, maxPasses: maxPasses}
}

// CanAcceptPass reports whether another render pass may still be
// recorded into this Recorder.
func (r *Recorder) CanAcceptPass() bool {
	return r.passes < r.maxPasses
}

// RecordPass records the barriers events describes, then counts the pass
// against this Recorder's limit. Callers are expected to have already
// issued the pass's own draw/dispatch/copy commands through r.List()
// before or after calling RecordPass, as the barriers and the pass body
// interleave according to each event's place in the pass.
func (r *Recorder) RecordPass(events []gpures.Event) error {
	if !r.CanAcceptPass() {
		return fmt.Errorf("gpucmd: recorder already holds the maximum %d render passes", r.maxPasses)
	}
	list := r.ctx.List()
	for _, e := range events {
		if err := list.RecordTransitionBarrier(e.Resource.Native(), e.Before, e.After, e.Subresource); err != nil {
			return fmt.Errorf("gpucmd: record transition barrier: %w", err)
		}
		e.Resource.SetState(e.After)
	}
	r.passes++
	return nil
}

// List exposes the underlying native command list, for recording a pass's
// draw/dispatch/copy commands directly.
func (r *Recorder) List() gpu.CommandList {
	return r.ctx.List()
}

// PassCount returns how many render passes have been recorded so far.
func (r *Recorder) PassCount() int { return r.passes }

// Close ends recording and returns the extracted context, ready for
// submission.
func (r *Recorder) Close() (*Context, error) {
	if err := r.ctx.list.Close(); err != nil {
		return nil, fmt.Errorf("gpucmd: close command list: %w", err)
	}
	return r.ctx, nil
}
