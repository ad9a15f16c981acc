package triage

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// Options configures the triage pipeline.
type Options struct {
	ModelPath     string
	QueueCapacity int
	// MaxRetries is the number of extra attempts after the first failure of
	// a classification or persistence call.
	MaxRetries   int
	RetryBackoff time.Duration
}

// Pipeline decouples pedido ingestion from urgency classification: HTTP
// handlers Submit jobs without blocking, and a single background consumer
// drains the queue, classifies each pedido and persists the result.
type Pipeline struct {
	queue   *Queue
	store   Store
	logger  *zap.Logger
	clf     *Classifier
	opts    Options
	done    chan struct{}
	started bool
}

// NewPipeline creates a pipeline. The model is not loaded until Start.
func NewPipeline(opts Options, store Store, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		queue:  NewQueue(opts.QueueCapacity),
		store:  store,
		logger: logger,
		opts:   opts,
		done:   make(chan struct{}),
	}
}

// Start loads the model artifact and launches the consumer goroutine. A model
// that cannot be loaded is a startup fault: the pipeline never starts and the
// caller decides whether to keep serving (pedidos then stay pending).
func (p *Pipeline) Start() error {
	clf, err := LoadClassifier(p.opts.ModelPath)
	if err != nil {
		return err
	}
	p.clf = clf
	p.started = true

	go p.run()
	p.logger.Info("triage pipeline started",
		zap.String("model", p.opts.ModelPath),
		zap.Strings("labels", clf.Labels()),
		zap.Int("queue_capacity", p.opts.QueueCapacity))
	return nil
}

// Submit validates the features and enqueues a triage job for the pedido.
// It never blocks: a full queue yields ErrQueueFull and the caller degrades
// gracefully (the pedido stays pending until the sweep resubmits it).
func (p *Pipeline) Submit(pedidoID int64, features FeatureVector) error {
	if err := features.Validate(); err != nil {
		return err
	}

	job := Job{RequestID: pedidoID, Features: features, EnqueuedAt: time.Now()}
	if !p.queue.TryEnqueue(job) {
		return ErrQueueFull
	}
	return nil
}

// Shutdown closes the queue and waits up to grace for the consumer to drain
// already-queued jobs. Jobs still unprocessed when the grace period expires
// are left pending for the next startup.
func (p *Pipeline) Shutdown(grace time.Duration) {
	p.queue.Close()
	if !p.started {
		return
	}

	select {
	case <-p.done:
		p.logger.Info("triage pipeline drained")
	case <-time.After(grace):
		p.logger.Warn("triage shutdown grace period elapsed, leaving queued pedidos pending",
			zap.Int("remaining", p.queue.Len()))
	}
}

// run is the consumer loop: the only place that blocks on the queue, and the
// only place a job's failure handling lives. A single job never stops the loop.
func (p *Pipeline) run() {
	defer close(p.done)

	for {
		job, ok := p.queue.Dequeue()
		if !ok {
			p.logger.Info("triage queue closed, consumer stopping")
			return
		}
		p.process(job)
	}
}

func (p *Pipeline) process(job Job) {
	ctx := context.Background()

	result := job.result
	if result == nil {
		features, err := p.fetchFeatures(ctx, job.RequestID)
		if errors.Is(err, ErrNotFound) {
			// Deleted between enqueue and triage. Terminal, nothing to mark.
			p.logger.Warn("pedido removed before triage, dropping job",
				zap.Int64("pedido_id", job.RequestID))
			return
		}
		if err != nil {
			p.logger.Error("could not fetch pedido features, marking triage failed",
				zap.Int64("pedido_id", job.RequestID), zap.Error(err))
			p.markFailed(ctx, job.RequestID)
			return
		}

		r, err := p.classify(job.RequestID, features)
		if err != nil {
			p.logger.Error("classification failed after retries, marking triage failed",
				zap.Int64("pedido_id", job.RequestID), zap.Error(err))
			p.markFailed(ctx, job.RequestID)
			return
		}
		result = &r
	}

	err := p.persist(ctx, job.RequestID, *result)
	if err == nil {
		return
	}
	if errors.Is(err, ErrNotFound) {
		p.logger.Warn("pedido removed before urgency update, dropping job",
			zap.Int64("pedido_id", job.RequestID))
		return
	}

	// Persistence kept failing after a successful classification. Re-enqueue
	// once at the tail so the computed result is not discarded.
	if !job.requeued {
		job.requeued = true
		job.result = result
		if p.queue.TryEnqueue(job) {
			p.logger.Warn("urgency update failed, job re-enqueued",
				zap.Int64("pedido_id", job.RequestID), zap.Error(err))
			return
		}
	}

	p.logger.Error("urgency update failed after retries and re-enqueue, marking triage failed",
		zap.Int64("pedido_id", job.RequestID), zap.Error(err))
	p.markFailed(ctx, job.RequestID)
}

// fetchFeatures reads the pedido's current features, retrying transient store
// errors. ErrNotFound is returned immediately.
func (p *Pipeline) fetchFeatures(ctx context.Context, pedidoID int64) (FeatureVector, error) {
	var lastErr error
	for attempt := 0; attempt <= p.opts.MaxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(p.opts.RetryBackoff)
		}
		features, err := p.store.GetFeatures(ctx, pedidoID)
		if err == nil || errors.Is(err, ErrNotFound) {
			return features, err
		}
		lastErr = err
		p.logger.Warn("fetching pedido features failed",
			zap.Int64("pedido_id", pedidoID), zap.Int("attempt", attempt+1), zap.Error(err))
	}
	return FeatureVector{}, lastErr
}

func (p *Pipeline) classify(pedidoID int64, features FeatureVector) (UrgencyResult, error) {
	var lastErr error
	for attempt := 0; attempt <= p.opts.MaxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(p.opts.RetryBackoff)
		}
		result, err := p.clf.Predict(features)
		if err == nil {
			return result, nil
		}
		lastErr = err
		p.logger.Warn("classification attempt failed",
			zap.Int64("pedido_id", pedidoID), zap.Int("attempt", attempt+1), zap.Error(err))
	}
	return UrgencyResult{}, lastErr
}

// persist writes the urgency result, retrying transient store errors.
// ErrNotFound is returned immediately.
func (p *Pipeline) persist(ctx context.Context, pedidoID int64, result UrgencyResult) error {
	var lastErr error
	for attempt := 0; attempt <= p.opts.MaxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(p.opts.RetryBackoff)
		}
		err := p.store.UpdateUrgency(ctx, pedidoID, result)
		if err == nil || errors.Is(err, ErrNotFound) {
			return err
		}
		lastErr = err
		p.logger.Warn("urgency update attempt failed",
			zap.Int64("pedido_id", pedidoID), zap.Int("attempt", attempt+1), zap.Error(err))
	}
	return lastErr
}

func (p *Pipeline) markFailed(ctx context.Context, pedidoID int64) {
	err := p.store.MarkTriageFailed(ctx, pedidoID)
	if err == nil {
		return
	}
	if errors.Is(err, ErrNotFound) {
		p.logger.Debug("pedido removed before failure mark", zap.Int64("pedido_id", pedidoID))
		return
	}
	p.logger.Error("could not mark pedido triage as failed",
		zap.Int64("pedido_id", pedidoID), zap.Error(err))
}
