package triage

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"
)

type fakePendingLister struct {
	pending   []PendingPedido
	olderThan time.Time
	limit     int
}

func (f *fakePendingLister) ListPendingTriage(_ context.Context, olderThan time.Time, limit int) ([]PendingPedido, error) {
	f.olderThan = olderThan
	f.limit = limit
	return f.pending, nil
}

func TestSweepResubmitsUntilQueueFull(t *testing.T) {
	lister := &fakePendingLister{pending: []PendingPedido{
		{ID: 1, Features: validFeatures()},
		{ID: 2, Features: validFeatures()},
		{ID: 3, Features: validFeatures()},
	}}

	// Consumer not started: the queue fills and stays full.
	p := testPipeline(t, newFakeStore(), 2)
	s := NewSweeper(p, lister, time.Minute, 50, zap.NewNop())

	s.Sweep()

	if got := p.queue.Len(); got != 2 {
		t.Errorf("queue holds %d jobs after sweep, want 2 (capacity)", got)
	}
	if lister.limit != 50 {
		t.Errorf("sweep batch = %d, want 50", lister.limit)
	}
	if !lister.olderThan.Before(time.Now()) {
		t.Error("sweep cutoff is not in the past")
	}
}

func TestSweepSkipsInvalidPending(t *testing.T) {
	lister := &fakePendingLister{pending: []PendingPedido{
		{ID: 1, Features: FeatureVector{TipoAjudaID: 0}}, // no longer valid
		{ID: 2, Features: validFeatures()},
	}}

	p := testPipeline(t, newFakeStore(), 8)
	s := NewSweeper(p, lister, time.Minute, 10, zap.NewNop())

	s.Sweep()

	if got := p.queue.Len(); got != 1 {
		t.Errorf("queue holds %d jobs, want 1 (invalid pedido skipped)", got)
	}
}
