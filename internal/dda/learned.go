package dda

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vovakirdan/lane-runner/internal/config"
	"github.com/vovakirdan/lane-runner/internal/metrics"
	"github.com/vovakirdan/lane-runner/internal/profiler"
)

// ModelStateVersion is bumped whenever ModelState changes shape.
const ModelStateVersion = 1

// ModelState is the persisted form of a LearnedPolicy.
type ModelState struct {
	Version  int               `json:"version"`
	Trained  bool              `json:"trained"`
	Scaler   Scaler            `json:"scaler"`
	Weights  Regressor         `json:"weights"`
	Examples []TrainingExample `json:"examples"`
}

// fittedModel is immutable once published.
type fittedModel struct {
	scaler   Scaler
	reg      Regressor
	examples int // training set size at fit time
}

// LearnedPolicy predicts parameters with a ridge regressor fitted on past
// sessions and answers with the heuristic until it has enough data.
// Predict and AddTrainingExample may be called from different goroutines.
type LearnedPolicy struct {
	heuristic *Heuristic
	cfg       config.LearnedConfig
	opts      options

	mu       sync.Mutex
	examples []TrainingExample

	model   atomic.Pointer[fittedModel]
	trainMu sync.Mutex
	wg      sync.WaitGroup
}

// NewLearnedPolicy creates an untrained policy falling back to h.
func NewLearnedPolicy(h *Heuristic, cfg config.LearnedConfig, opts ...Option) *LearnedPolicy {
	if h == nil {
		h = NewHeuristic()
	}
	return &LearnedPolicy{
		heuristic: h,
		cfg:       cfg,
		opts:      buildOptions(opts),
	}
}

// Predict implements Predictor. Any model failure yields the heuristic's answer.
func (l *LearnedPolicy) Predict(s profiler.Snapshot) Params {
	p, err := l.predictModel(s)
	if err != nil {
		reason := "error"
		switch {
		case errors.Is(err, ErrUntrained):
			reason = "untrained"
		case errors.Is(err, ErrNotEnoughExamples):
			reason = "not_enough_examples"
		default:
			l.opts.logger.Warn("learned prediction failed, using heuristic", "error", err)
		}
		l.opts.metrics.IncFallback(reason)
		l.opts.metrics.IncDecision(metrics.PolicyHeuristic)
		return l.heuristic.Predict(s)
	}
	l.opts.metrics.IncDecision(metrics.PolicyLearned)
	return p
}

func (l *LearnedPolicy) predictModel(s profiler.Snapshot) (p Params, err error) {
	m := l.model.Load()
	if m == nil {
		return Params{}, ErrUntrained
	}
	if l.Examples() < l.cfg.MinExamples {
		return Params{}, ErrNotEnoughExamples
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("dda: prediction panicked: %v", r)
		}
	}()

	f := FeaturesFrom(s)
	for _, v := range f {
		if !finite(v) {
			return Params{}, ErrNonFinite
		}
	}
	out, err := m.reg.Predict(m.scaler.Transform(f))
	if err != nil {
		return Params{}, err
	}

	p = Params{
		Speed:             out[0],
		ObstacleFrequency: int(math.Round(out[1])),
		PatternComplexity: out[2],
		CoinValue:         l.heuristic.coinValue(s),
	}
	return p.Clamp(), nil
}

// AddTrainingExample records a finished session. Once RetrainMinExamples
// exist, every RetrainEvery-th example triggers a retrain on the whole set.
// Failures are logged and never reach the caller.
func (l *LearnedPolicy) AddTrainingExample(s profiler.Snapshot, used Params, successRating float64) {
	ex := NewTrainingExample(s, used, successRating)
	if !ex.finite() {
		l.opts.logger.Warn("dropping non-finite training example", "features", ex.Features, "targets", ex.Targets)
		return
	}

	l.mu.Lock()
	l.examples = append(l.examples, ex)
	n := len(l.examples)
	var batch []TrainingExample
	if n >= l.cfg.RetrainMinExamples && l.cfg.RetrainEvery > 0 && n%l.cfg.RetrainEvery == 0 {
		batch = make([]TrainingExample, n)
		copy(batch, l.examples)
	}
	l.mu.Unlock()

	l.opts.metrics.SetExamples(n)
	if batch == nil {
		return
	}

	if l.cfg.AsyncRetrain {
		l.wg.Add(1)
		go func() {
			defer l.wg.Done()
			l.retrain(batch)
		}()
		return
	}
	l.retrain(batch)
}

// retrain fits a new model on batch and publishes it unless a model fitted
// on at least as many examples is already live. A failed fit keeps the
// previous model.
func (l *LearnedPolicy) retrain(batch []TrainingExample) {
	l.trainMu.Lock()
	defer l.trainMu.Unlock()

	start := time.Now()
	m, err := fit(batch, l.cfg.RidgeLambda)
	l.opts.metrics.ObserveRetrain(time.Since(start), err)
	if err != nil {
		l.opts.logger.Warn("retrain failed, keeping previous model", "examples", len(batch), "error", err)
		return
	}

	if cur := l.model.Load(); cur != nil && cur.examples >= m.examples {
		return
	}
	l.model.Store(m)
	l.opts.logger.Debug("model retrained", "examples", m.examples, "took", time.Since(start))
}

func fit(batch []TrainingExample, lambda float64) (*fittedModel, error) {
	x := make([]Features, len(batch))
	y := make([]Targets, len(batch))
	for i, ex := range batch {
		x[i] = ex.Features
		y[i] = ex.Targets
	}

	sc, err := FitScaler(x)
	if err != nil {
		return nil, err
	}
	for i := range x {
		x[i] = sc.Transform(x[i])
	}
	reg, err := FitRegressor(x, y, lambda)
	if err != nil {
		return nil, err
	}
	return &fittedModel{scaler: sc, reg: reg, examples: len(batch)}, nil
}

// Wait blocks until background retrains have finished.
func (l *LearnedPolicy) Wait() {
	l.wg.Wait()
}

// Trained reports whether a fitted model is live.
func (l *LearnedPolicy) Trained() bool {
	return l.model.Load() != nil
}

// Examples returns the number of accumulated training examples.
func (l *LearnedPolicy) Examples() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.examples)
}

// Export returns the persistable state. Only the most recent
// MaxPersistedExamples examples are included.
func (l *LearnedPolicy) Export() ModelState {
	l.mu.Lock()
	keep := l.examples
	if limit := l.cfg.MaxPersistedExamples; limit > 0 && len(keep) > limit {
		keep = keep[len(keep)-limit:]
	}
	examples := make([]TrainingExample, len(keep))
	copy(examples, keep)
	l.mu.Unlock()

	state := ModelState{Version: ModelStateVersion, Examples: examples}
	if m := l.model.Load(); m != nil {
		state.Trained = true
		state.Scaler = m.scaler
		state.Weights = m.reg
	}
	return state
}

// Import replaces the policy's state with a persisted one. Invalid state is
// rejected and leaves the policy untouched.
func (l *LearnedPolicy) Import(state ModelState) error {
	if state.Version != ModelStateVersion {
		return fmt.Errorf("%w: model version %d, expected %d", ErrDimension, state.Version, ModelStateVersion)
	}
	for _, ex := range state.Examples {
		if !ex.finite() {
			return fmt.Errorf("%w: persisted training example", ErrNonFinite)
		}
	}

	var m *fittedModel
	if state.Trained {
		for j := 0; j < NumFeatures; j++ {
			if !finite(state.Scaler.Mean[j]) || !finite(state.Scaler.Scale[j]) || state.Scaler.Scale[j] <= 0 {
				return fmt.Errorf("%w: persisted scaler", ErrNonFinite)
			}
		}
		for _, row := range state.Weights.Weights {
			for _, v := range row {
				if !finite(v) {
					return fmt.Errorf("%w: persisted weights", ErrNonFinite)
				}
			}
		}
		m = &fittedModel{scaler: state.Scaler, reg: state.Weights, examples: len(state.Examples)}
	}

	l.Wait()
	l.trainMu.Lock()
	defer l.trainMu.Unlock()

	l.mu.Lock()
	l.examples = append([]TrainingExample(nil), state.Examples...)
	n := len(l.examples)
	l.mu.Unlock()

	l.model.Store(m)
	l.opts.metrics.SetExamples(n)
	return nil
}
