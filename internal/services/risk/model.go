package risk

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/j-veylop/screentime-dashboard-tui/internal/models"
)

// Classifier is a trained model producing one probability per risk level.
type Classifier interface {
	PredictProba(features []float64) ([]float64, error)
}

// Node is one node of a regression tree. Leaves have Left == -1.
type Node struct {
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold"`
	Left      int     `json:"left"`
	Right     int     `json:"right"`
	Value     float64 `json:"value"`
}

// Tree is a flattened regression tree rooted at index 0.
type Tree struct {
	Nodes []Node `json:"nodes"`
}

// Scaler standardizes inputs as (x - mean) / scale.
type Scaler struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

// Ensemble is a multi-class gradient-boosted tree model. Stages holds one tree
// per class for every boosting round.
type Ensemble struct {
	Version      int       `json:"version"`
	Features     []string  `json:"features"`
	LearningRate float64   `json:"learning_rate"`
	BaseScores   []float64 `json:"base_scores"`
	Scaler       *Scaler   `json:"scaler,omitempty"`
	Stages       [][]Tree  `json:"stages"`
}

// LoadEnsemble reads and validates a model file.
func LoadEnsemble(path string) (*Ensemble, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model: %w", err)
	}
	return ParseEnsemble(data)
}

// ParseEnsemble decodes and validates a JSON model.
func ParseEnsemble(data []byte) (*Ensemble, error) {
	var e Ensemble
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("failed to decode model: %w", err)
	}
	if err := e.validate(); err != nil {
		return nil, fmt.Errorf("invalid model: %w", err)
	}
	return &e, nil
}

func (e *Ensemble) validate() error {
	nFeatures := len(models.FeatureNames)
	if len(e.Features) != 0 && len(e.Features) != nFeatures {
		return fmt.Errorf("expected %d features, got %d", nFeatures, len(e.Features))
	}
	if len(e.BaseScores) != models.RiskLevelCount {
		return fmt.Errorf("expected %d base scores, got %d", models.RiskLevelCount, len(e.BaseScores))
	}
	if len(e.Stages) == 0 {
		return errors.New("model has no boosting stages")
	}
	if e.Scaler != nil {
		if len(e.Scaler.Mean) != nFeatures || len(e.Scaler.Scale) != nFeatures {
			return errors.New("scaler size does not match features")
		}
	}
	for i, stage := range e.Stages {
		if len(stage) != models.RiskLevelCount {
			return fmt.Errorf("stage %d: expected %d trees, got %d", i, models.RiskLevelCount, len(stage))
		}
		for k, tree := range stage {
			if err := tree.validate(nFeatures); err != nil {
				return fmt.Errorf("stage %d class %d: %w", i, k, err)
			}
		}
	}
	return nil
}

func (t Tree) validate(nFeatures int) error {
	if len(t.Nodes) == 0 {
		return errors.New("empty tree")
	}
	for i, n := range t.Nodes {
		if n.Left == -1 {
			continue
		}
		if n.Feature < 0 || n.Feature >= nFeatures {
			return fmt.Errorf("node %d: feature %d out of range", i, n.Feature)
		}
		// Children must point forward so evaluation always terminates.
		if n.Left <= i || n.Right <= i || n.Left >= len(t.Nodes) || n.Right >= len(t.Nodes) {
			return fmt.Errorf("node %d: invalid children %d/%d", i, n.Left, n.Right)
		}
	}
	return nil
}

func (t Tree) eval(x []float64) float64 {
	i := 0
	for {
		n := t.Nodes[i]
		if n.Left == -1 {
			return n.Value
		}
		if x[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}

// PredictProba implements Classifier.
func (e *Ensemble) PredictProba(features []float64) ([]float64, error) {
	if len(features) != len(models.FeatureNames) {
		return nil, fmt.Errorf("expected %d features, got %d", len(models.FeatureNames), len(features))
	}

	x := make([]float64, len(features))
	copy(x, features)
	if e.Scaler != nil {
		for i := range x {
			scale := e.Scaler.Scale[i]
			if scale == 0 {
				scale = 1
			}
			x[i] = (x[i] - e.Scaler.Mean[i]) / scale
		}
	}

	raw := make([]float64, len(e.BaseScores))
	copy(raw, e.BaseScores)
	for _, stage := range e.Stages {
		for k, tree := range stage {
			raw[k] += e.LearningRate * tree.eval(x)
		}
	}
	return softmax(raw), nil
}

func softmax(raw []float64) []float64 {
	peak := math.Inf(-1)
	for _, v := range raw {
		peak = math.Max(peak, v)
	}
	out := make([]float64, len(raw))
	var sum float64
	for i, v := range raw {
		out[i] = math.Exp(v - peak)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}
