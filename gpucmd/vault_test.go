package gpucmd

import (
	"testing"

	"github.com/gogpu/framegraph/gpu"
	"github.com/gogpu/framegraph/gpu/fake"
)

func TestVaultAcquireCreatesFreshContext(t *testing.T) {
	dev := fake.NewDevice()
	v, err := NewVault(dev)
	if err != nil {
		t.Fatalf("NewVault: %v", err)
	}

	ctx, err := v.Acquire(gpu.Direct)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if ctx.QueueType() != gpu.Direct {
		t.Errorf("QueueType() = %v, want Direct", ctx.QueueType())
	}
}

func TestVaultReusesRetiredContextOnceFenceReached(t *testing.T) {
	dev := fake.NewDevice()
	v, _ := NewVault(dev)

	ctx, _ := v.Acquire(gpu.Copy)
	ctx.List().Close()
	v.Retire(ctx, 5)

	if got := v.ActiveCount(gpu.Copy); got != 1 {
		t.Fatalf("ActiveCount = %d, want 1 before the fence is signaled", got)
	}

	reused, err := v.Acquire(gpu.Copy)
	if err != nil {
		t.Fatalf("Acquire before fence signal: %v", err)
	}
	if reused == ctx {
		t.Error("Acquire should not reuse a context whose fence value has not been reached")
	}

	dev.CommandQueue(gpu.Copy).Signal(v.Fence(gpu.Copy), 5)

	again, err := v.Acquire(gpu.Copy)
	if err != nil {
		t.Fatalf("Acquire after fence signal: %v", err)
	}
	if again != ctx && again != reused {
		t.Error("Acquire after fence completion should reuse a retired context")
	}
	if got := v.ActiveCount(gpu.Copy); got != 0 {
		t.Errorf("ActiveCount after maintain = %d, want 0", got)
	}
}
