package triage

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
)

// supportedModelVersion is the artifact schema this build understands.
// Deploying a new model means replacing the artifact file and restarting.
const supportedModelVersion = 1

// featureOrder is the input layout the model was trained with. Reordering is
// a compatibility break and is rejected at load time.
var featureOrder = []string{
	"tipo_ajuda_id",
	"criancas_no_local",
	"pessoas_no_local",
	"dias_sem_ajuda",
	"voluntarios_proximos",
}

// modelArtifact is the on-disk representation of a trained urgency model:
// one weight row and bias per label, applied to the fixed feature order.
type modelArtifact struct {
	Version  int         `json:"version"`
	Features []string    `json:"features"`
	Labels   []string    `json:"labels"`
	Weights  [][]float64 `json:"weights"`
	Bias     []float64   `json:"bias"`
}

// Classifier scores a feature vector against the loaded urgency model.
// It holds no mutable state after construction, so calls are safe without
// locking from any number of goroutines.
type Classifier struct {
	version int
	labels  []string
	weights [][]float64
	bias    []float64
}

// LoadClassifier reads and validates a model artifact. Any schema problem
// (missing file, unsupported version, wrong feature count or order) is a
// startup fault.
func LoadClassifier(path string) (*Classifier, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model artifact: %w", err)
	}

	var artifact modelArtifact
	if err := json.Unmarshal(raw, &artifact); err != nil {
		return nil, fmt.Errorf("failed to decode model artifact %s: %w", path, err)
	}

	if artifact.Version != supportedModelVersion {
		return nil, fmt.Errorf("model artifact %s has version %d, supported version is %d", path, artifact.Version, supportedModelVersion)
	}
	if len(artifact.Features) != len(featureOrder) {
		return nil, fmt.Errorf("model artifact %s has %d features, expected %d", path, len(artifact.Features), len(featureOrder))
	}
	for i, name := range featureOrder {
		if artifact.Features[i] != name {
			return nil, fmt.Errorf("model artifact %s feature %d is %q, expected %q", path, i, artifact.Features[i], name)
		}
	}
	if len(artifact.Labels) == 0 {
		return nil, fmt.Errorf("model artifact %s declares no labels", path)
	}
	if len(artifact.Weights) != len(artifact.Labels) || len(artifact.Bias) != len(artifact.Labels) {
		return nil, fmt.Errorf("model artifact %s weight/bias rows do not match %d labels", path, len(artifact.Labels))
	}
	for i, row := range artifact.Weights {
		if len(row) != len(featureOrder) {
			return nil, fmt.Errorf("model artifact %s weight row %d has %d values, expected %d", path, i, len(row), len(featureOrder))
		}
	}

	return &Classifier{
		version: artifact.Version,
		labels:  artifact.Labels,
		weights: artifact.Weights,
		bias:    artifact.Bias,
	}, nil
}

// Predict returns the urgency label and per-class confidence for the given
// features. Deterministic: the same vector against the same loaded model
// always yields the same result.
func (c *Classifier) Predict(features FeatureVector) (UrgencyResult, error) {
	if err := features.Validate(); err != nil {
		return UrgencyResult{}, err
	}

	input := features.values()
	logits := make([]float64, len(c.labels))
	for i := range c.labels {
		z := c.bias[i]
		for j, x := range input {
			z += c.weights[i][j] * x
		}
		logits[i] = z
	}

	scores := softmax(logits)

	best := 0
	for i := 1; i < len(scores); i++ {
		if scores[i] > scores[best] {
			best = i
		}
	}

	result := UrgencyResult{
		Label:  c.labels[best],
		Scores: make([]Score, len(c.labels)),
	}
	for i, label := range c.labels {
		result.Scores[i] = Score{Label: label, Confidence: scores[i]}
	}
	return result, nil
}

// Labels returns the label set of the loaded model, in artifact order.
func (c *Classifier) Labels() []string {
	out := make([]string, len(c.labels))
	copy(out, c.labels)
	return out
}

func softmax(logits []float64) []float64 {
	max := logits[0]
	for _, z := range logits[1:] {
		if z > max {
			max = z
		}
	}

	out := make([]float64, len(logits))
	var sum float64
	for i, z := range logits {
		out[i] = math.Exp(z - max)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}
