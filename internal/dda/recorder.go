package dda

import (
	"errors"
	"io/fs"

	"github.com/vovakirdan/lane-runner/internal/profiler"
)

// Store persists sessions and model state. Implemented by storage.DataStore.
type Store interface {
	History
	UpdateSessionData(playTime float64, score int) error
	AddDifficultyRecord(metrics profiler.Snapshot, params Params, score int, duration float64) error
	AddPerformanceRecord(score int, duration, successRating float64, tier string) error
	SaveModel(state ModelState) error
	LoadModel() (ModelState, error)
}

// ScoreLog receives final scores. Implemented by storage.ScoreLog.
type ScoreLog interface {
	AddScore(score int, tier string, duration float64) error
}

// Recorder writes finished sessions to storage and feeds them to the
// learned policy. Storage failures are logged and swallowed, so a Recorder
// with a nil Store still keeps the game playable.
type Recorder struct {
	store   Store
	scores  ScoreLog
	learned *LearnedPolicy
	opts    options
}

// NewRecorder creates a recorder. Any collaborator may be nil.
func NewRecorder(store Store, scores ScoreLog, learned *LearnedPolicy, opts ...Option) *Recorder {
	return &Recorder{
		store:   store,
		scores:  scores,
		learned: learned,
		opts:    buildOptions(opts),
	}
}

// LastMetrics implements History.
func (r *Recorder) LastMetrics() (profiler.Snapshot, bool) {
	if r.store == nil {
		return profiler.Snapshot{}, false
	}
	return r.store.LastMetrics()
}

// Restore loads a saved model into the learned policy. A missing model is
// not an error; the policy stays untrained.
func (r *Recorder) Restore() {
	if r.store == nil || r.learned == nil {
		return
	}
	state, err := r.store.LoadModel()
	if errors.Is(err, fs.ErrNotExist) {
		r.opts.logger.Debug("no saved model, starting untrained")
		return
	}
	if err != nil {
		r.fail("load_model", "cannot load model", err)
		return
	}
	if err := r.learned.Import(state); err != nil {
		r.fail("load_model", "discarding saved model", err)
		return
	}
	r.opts.logger.Info("model restored", "examples", len(state.Examples), "trained", state.Trained)
}

// RecordSession implements SessionSink.
func (r *Recorder) RecordSession(o SessionOutcome) {
	r.opts.metrics.ObserveSession(o.SuccessRating)

	if r.store != nil {
		if err := r.store.UpdateSessionData(o.Duration, o.Score); err != nil {
			r.fail("profile", "cannot update session data", err)
		}
		if err := r.store.AddDifficultyRecord(o.Metrics, o.Params, o.Score, o.Duration); err != nil {
			r.fail("difficulty_history", "cannot add difficulty record", err)
		}
		if err := r.store.AddPerformanceRecord(o.Score, o.Duration, o.SuccessRating, string(o.Tier)); err != nil {
			r.fail("performance_history", "cannot add performance record", err)
		}
	}
	if r.scores != nil {
		if err := r.scores.AddScore(o.Score, string(o.Tier), o.Duration); err != nil {
			r.fail("scores", "cannot log score", err)
		}
	}

	if r.learned != nil {
		r.learned.AddTrainingExample(o.Metrics, o.Params, o.SuccessRating)
		r.saveModel()
	}
}

// Flush waits for background retrains and persists the final model.
func (r *Recorder) Flush() {
	if r.learned == nil {
		return
	}
	r.learned.Wait()
	r.saveModel()
}

func (r *Recorder) saveModel() {
	if r.store == nil {
		return
	}
	if err := r.store.SaveModel(r.learned.Export()); err != nil {
		r.fail("model", "cannot save model", err)
	}
}

func (r *Recorder) fail(op, msg string, err error) {
	r.opts.metrics.IncPersistenceError(op)
	r.opts.logger.Warn(msg, "error", err)
}
