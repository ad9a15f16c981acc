package triage

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrQueueFull is returned by Submit when the intake queue is at capacity.
	ErrQueueFull = errors.New("triage queue is full")
	// ErrInvalidFeatures is returned by Submit when a feature vector fails validation.
	ErrInvalidFeatures = errors.New("invalid feature vector")
	// ErrNotFound is returned by Store implementations when the pedido no
	// longer exists (deleted between enqueue and triage).
	ErrNotFound = errors.New("pedido not found")
)

// FeatureVector holds the model inputs for one pedido, in the fixed order the
// model artifact expects: tipo_ajuda_id, criancas_no_local, pessoas_no_local,
// dias_sem_ajuda, voluntarios_proximos.
type FeatureVector struct {
	TipoAjudaID         int `json:"tipo_ajuda_id"`
	CriancasNoLocal     int `json:"criancas_no_local"` // 0 = no, 1 = yes
	PessoasNoLocal      int `json:"pessoas_no_local"`
	DiasSemAjuda        int `json:"dias_sem_ajuda"`
	VoluntariosProximos int `json:"voluntarios_proximos"`
}

// Validate checks the invariants required before a vector may be enqueued.
func (f FeatureVector) Validate() error {
	if f.TipoAjudaID <= 0 {
		return fmt.Errorf("%w: tipo_ajuda_id must be positive", ErrInvalidFeatures)
	}
	if f.CriancasNoLocal != 0 && f.CriancasNoLocal != 1 {
		return fmt.Errorf("%w: criancas_no_local must be 0 or 1", ErrInvalidFeatures)
	}
	if f.PessoasNoLocal < 0 {
		return fmt.Errorf("%w: pessoas_no_local must be non-negative", ErrInvalidFeatures)
	}
	if f.DiasSemAjuda < 0 {
		return fmt.Errorf("%w: dias_sem_ajuda must be non-negative", ErrInvalidFeatures)
	}
	if f.VoluntariosProximos < 0 {
		return fmt.Errorf("%w: voluntarios_proximos must be non-negative", ErrInvalidFeatures)
	}
	return nil
}

// values returns the vector in model input order.
func (f FeatureVector) values() []float64 {
	return []float64{
		float64(f.TipoAjudaID),
		float64(f.CriancasNoLocal),
		float64(f.PessoasNoLocal),
		float64(f.DiasSemAjuda),
		float64(f.VoluntariosProximos),
	}
}

// Score is one (label, confidence) pair of an UrgencyResult.
type Score struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"score"`
}

// UrgencyResult is the classifier output for one pedido: the predicted label
// plus the per-class confidence distribution (sums to ~1.0, ordered as in the
// model artifact). Never mutated after creation.
type UrgencyResult struct {
	Label  string
	Scores []Score
}

// Job is one unit of triage work. Created by the producer at enqueue time and
// owned by the queue until the consumer dequeues it.
type Job struct {
	RequestID  int64
	Features   FeatureVector
	EnqueuedAt time.Time

	// requeued marks a job that already got its single post-classification
	// re-enqueue after a persistence failure.
	requeued bool
	// result carries an already-computed classification across a re-enqueue
	// so it is not recomputed.
	result *UrgencyResult
}

// Store is the narrow persistence facade the consumer writes through.
// Implementations return ErrNotFound when the pedido has been deleted;
// any other error is treated as transient and retried.
type Store interface {
	GetFeatures(ctx context.Context, pedidoID int64) (FeatureVector, error)
	UpdateUrgency(ctx context.Context, pedidoID int64, result UrgencyResult) error
	MarkTriageFailed(ctx context.Context, pedidoID int64) error
}
