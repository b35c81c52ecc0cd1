package risk

import (
	"errors"
	"fmt"
	"math"
	"sync/atomic"

	"github.com/j-veylop/screentime-dashboard-tui/internal/config"
	"github.com/j-veylop/screentime-dashboard-tui/internal/logger"
	"github.com/j-veylop/screentime-dashboard-tui/internal/models"
)

var (
	// ErrModelUnavailable means the trained model could not produce a prediction.
	ErrModelUnavailable = errors.New("risk model unavailable")
	// ErrLowConfidence means the model's best class was below the confidence floor.
	ErrLowConfidence = errors.New("risk model confidence too low")
)

// modelHandle is swapped as a whole, never mutated.
type modelHandle struct {
	classifier Classifier
	source     string
}

// ModelStatus describes the currently installed model.
type ModelStatus struct {
	Loaded        bool
	Source        string
	MinConfidence float64
}

// Service scores with the trained model when it is installed and confident,
// otherwise with the rule scorer. It never fails to produce an assessment.
type Service struct {
	rules         *RuleScorer
	minConfidence float64
	model         atomic.Pointer[modelHandle]
}

// New creates a risk service. model may be nil.
func New(t config.Thresholds, model Classifier, minConfidence float64) *Service {
	s := &Service{
		rules:         NewRuleScorer(t),
		minConfidence: minConfidence,
	}
	if model != nil {
		s.SetModel(model, "injected")
	}
	return s
}

// SetModel installs a classifier. Passing nil removes the current model.
func (s *Service) SetModel(c Classifier, source string) {
	if c == nil {
		s.model.Store(nil)
		return
	}
	s.model.Store(&modelHandle{classifier: c, source: source})
}

// LoadModel reads an ensemble from path and installs it.
func (s *Service) LoadModel(path string) error {
	e, err := LoadEnsemble(path)
	if err != nil {
		return err
	}
	s.SetModel(e, path)
	return nil
}

// Status reports the installed model.
func (s *Service) Status() ModelStatus {
	st := ModelStatus{MinConfidence: s.minConfidence}
	if h := s.model.Load(); h != nil {
		st.Loaded = true
		st.Source = h.source
	}
	return st
}

// Rules returns the rule scorer backing the service.
func (s *Service) Rules() *RuleScorer {
	return s.rules
}

// Score implements Scorer. The returned error is always nil.
func (s *Service) Score(fv models.FeatureVector) (models.RiskAssessment, error) {
	ruled, _ := s.rules.Score(fv)

	h := s.model.Load()
	if h == nil {
		return ruled, nil
	}

	assessment, err := s.predict(h.classifier, fv)
	if err != nil {
		logger.Debug("falling back to rule-based scoring", "model", h.source, "error", err)
		return ruled, nil
	}
	assessment.Score = ruled.Score
	return assessment, nil
}

// predict runs the classifier, turning panics and malformed output into errors.
func (s *Service) predict(c Classifier, fv models.FeatureVector) (a models.RiskAssessment, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: panic: %v", ErrModelUnavailable, r)
		}
	}()

	probs, err := c.PredictProba(fv.Numeric())
	if err != nil {
		return a, fmt.Errorf("%w: %w", ErrModelUnavailable, err)
	}
	if len(probs) != models.RiskLevelCount {
		return a, fmt.Errorf("%w: expected %d probabilities, got %d",
			ErrModelUnavailable, models.RiskLevelCount, len(probs))
	}

	best := 0
	for i, p := range probs {
		if math.IsNaN(p) || p < 0 || p > 1 {
			return a, fmt.Errorf("%w: invalid probability %v", ErrModelUnavailable, p)
		}
		if p > probs[best] {
			best = i
		}
	}

	if probs[best] < s.minConfidence {
		return a, fmt.Errorf("%w: %.2f < %.2f", ErrLowConfidence, probs[best], s.minConfidence)
	}

	level := models.RiskLevel(best)
	return models.RiskAssessment{
		RiskLevel:   level,
		RiskLabel:   level.String(),
		Probability: probs[best],
		Method:      models.MethodML,
	}, nil
}
