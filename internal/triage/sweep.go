package triage

import (
	"context"
	"errors"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// PendingPedido is one pedido awaiting (re)submission to the pipeline.
type PendingPedido struct {
	ID       int64
	Features FeatureVector
}

// PendingLister lists pedidos whose triage is still pending, oldest first.
type PendingLister interface {
	ListPendingTriage(ctx context.Context, olderThan time.Time, limit int) ([]PendingPedido, error)
}

// Sweeper periodically resubmits pending pedidos to the pipeline. It covers
// the two gaps of the non-blocking intake: submissions rejected on a full
// queue and jobs abandoned when a shutdown grace period expired.
type Sweeper struct {
	pipeline *Pipeline
	store    PendingLister
	logger   *zap.Logger
	minAge   time.Duration
	batch    int
	cron     *cron.Cron
}

// NewSweeper creates a sweeper that resubmits at most batch pedidos per run,
// skipping pedidos younger than minAge (those are likely still in the queue).
func NewSweeper(pipeline *Pipeline, store PendingLister, minAge time.Duration, batch int, logger *zap.Logger) *Sweeper {
	return &Sweeper{
		pipeline: pipeline,
		store:    store,
		logger:   logger,
		minAge:   minAge,
		batch:    batch,
	}
}

// Start schedules the sweep on the given cron spec (e.g. "@every 5m").
func (s *Sweeper) Start(schedule string) error {
	s.cron = cron.New()
	if _, err := s.cron.AddFunc(schedule, s.Sweep); err != nil {
		return err
	}
	s.cron.Start()
	s.logger.Info("pending-triage sweep scheduled", zap.String("schedule", schedule))
	return nil
}

// Stop stops the scheduler and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
}

// Sweep resubmits pending pedidos until the batch is exhausted or the queue
// fills up again.
func (s *Sweeper) Sweep() {
	ctx := context.Background()
	cutoff := time.Now().Add(-s.minAge)

	pending, err := s.store.ListPendingTriage(ctx, cutoff, s.batch)
	if err != nil {
		s.logger.Error("listing pending pedidos failed", zap.Error(err))
		return
	}
	if len(pending) == 0 {
		return
	}

	resubmitted := 0
	for _, pedido := range pending {
		err := s.pipeline.Submit(pedido.ID, pedido.Features)
		if errors.Is(err, ErrQueueFull) {
			break
		}
		if err != nil {
			// Stored features no longer pass validation. Leave the pedido
			// pending and let an operator fix the record.
			s.logger.Warn("pending pedido skipped by sweep",
				zap.Int64("pedido_id", pedido.ID), zap.Error(err))
			continue
		}
		resubmitted++
	}

	s.logger.Info("pending-triage sweep finished",
		zap.Int("pending", len(pending)), zap.Int("resubmitted", resubmitted))
}
