package jobsys

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
)

func TestGroupExecuteRunsAllJobs(t *testing.T) {
	g := NewGroup(context.Background(), 4)
	g.Reserve(10)

	var count atomic.Int32
	for i := 0; i < 10; i++ {
		g.AddJob(func() error {
			count.Add(1)
			return nil
		})
	}

	if err := g.Execute(); err != nil {
		t.Fatalf("Execute() = %v, want nil", err)
	}
	if got := count.Load(); got != 10 {
		t.Errorf("executed %d jobs, want 10", got)
	}
}

func TestGroupExecutePropagatesFirstError(t *testing.T) {
	g := NewGroup(context.Background(), 2)
	wantErr := errors.New("boom")

	g.AddJob(func() error { return wantErr })
	g.AddJob(func() error { return nil })

	if err := g.Execute(); !errors.Is(err, wantErr) {
		t.Errorf("Execute() = %v, want %v", err, wantErr)
	}
}

func TestGroupExecuteAsync(t *testing.T) {
	g := NewGroup(context.Background(), 1)
	done := make(chan struct{})
	g.AddJob(func() error {
		<-done
		return nil
	})

	resultCh := g.ExecuteAsync()
	close(done)

	if err := <-resultCh; err != nil {
		t.Errorf("ExecuteAsync result = %v, want nil", err)
	}
}

func TestNewGroupDefaultsLimitToGOMAXPROCS(t *testing.T) {
	g := NewGroup(context.Background(), 0)
	if g.limit <= 0 {
		t.Errorf("expected positive default limit, got %d", g.limit)
	}
}
