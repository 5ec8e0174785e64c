package gpucmd

import (
	"testing"

	"github.com/gogpu/framegraph/gpu"
	"github.com/gogpu/framegraph/gpu/fake"
	"github.com/gogpu/framegraph/gpures"
)

func TestRecorderAcceptsUpToMaxPasses(t *testing.T) {
	dev := fake.NewDevice()
	v, _ := NewVault(dev)
	ctx, err := v.Acquire(gpu.Direct)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}

	rec := NewRecorder(ctx, 2)
	res := gpures.NewResource(fake.NewResource("rt", true), gpu.StateCommon)
	events := []gpures.Event{{Resource: res, Before: gpu.StateCommon, After: gpu.StateRenderTarget, Queue: gpu.Direct}}

	if !rec.CanAcceptPass() {
		t.Fatal("expected recorder to accept its first pass")
	}
	if err := rec.RecordPass(events); err != nil {
		t.Fatalf("RecordPass 1: %v", err)
	}
	if err := rec.RecordPass(events); err != nil {
		t.Fatalf("RecordPass 2: %v", err)
	}
	if rec.CanAcceptPass() {
		t.Error("recorder should be full after 2 passes with maxPasses=2")
	}
	if err := rec.RecordPass(events); err == nil {
		t.Error("expected error recording a 3rd pass past the limit")
	}
	if got := rec.PassCount(); got != 2 {
		t.Errorf("PassCount() = %d, want 2", got)
	}
}

func TestRecorderUpdatesResourceState(t *testing.T) {
	dev := fake.NewDevice()
	v, _ := NewVault(dev)
	ctx, _ := v.Acquire(gpu.Direct)
	rec := NewRecorder(ctx, 10)

	res := gpures.NewResource(fake.NewResource("rt", true), gpu.StateCommon)
	events := []gpures.Event{{Resource: res, Before: gpu.StateCommon, After: gpu.StateRenderTarget, Queue: gpu.Direct}}
	if err := rec.RecordPass(events); err != nil {
		t.Fatalf("RecordPass: %v", err)
	}
	if got := res.State(); got != gpu.StateRenderTarget {
		t.Errorf("resource state = %v, want StateRenderTarget", got)
	}
}

func TestRecorderCloseExtractsContext(t *testing.T) {
	dev := fake.NewDevice()
	v, _ := NewVault(dev)
	ctx, _ := v.Acquire(gpu.Copy)
	rec := NewRecorder(ctx, 1)

	extracted, err := rec.Close()
	if err != nil {
		t.Fatalf("Close: %v", err)
	}
	if extracted != ctx {
		t.Error("Close should return the same context the recorder was built from")
	}
}
