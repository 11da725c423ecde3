package storage

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/vovakirdan/lane-runner/internal/dda"
	"github.com/vovakirdan/lane-runner/internal/logging"
	"github.com/vovakirdan/lane-runner/internal/profiler"
)

// File names inside the data directory.
const (
	ProfileFile = "player_data.json"
	ModelFile   = "difficulty_model.json.zst"
)

// DefaultHistoryLimit caps both history lists.
const DefaultHistoryLimit = 20

// ErrNoModel is returned by LoadModel when nothing has been saved yet.
// It matches fs.ErrNotExist.
var ErrNoModel = fmt.Errorf("storage: no saved model: %w", fs.ErrNotExist)

//go:embed schema/profile.schema.json
var profileSchemaJSON string

var profileSchema = jsonschema.MustCompileString("profile.schema.json", profileSchemaJSON)

// DataStore persists the player profile and the learned model in a directory.
// Every mutation is written to disk before returning. When a write fails the
// in-memory profile keeps the change, so the game continues without storage.
type DataStore struct {
	dir          string
	historyLimit int
	logger       *log.Logger
	now          func() time.Time

	mu      sync.Mutex
	profile PlayerProfile
}

// Option configures a DataStore.
type Option func(*DataStore)

// WithHistoryLimit sets the cap of both history lists.
func WithHistoryLimit(n int) Option {
	return func(d *DataStore) {
		if n > 0 {
			d.historyLimit = n
		}
	}
}

// WithLogger sets the logger used for recovered errors.
func WithLogger(l *log.Logger) Option {
	return func(d *DataStore) {
		d.logger = logging.OrDiscard(l)
	}
}

// WithClock replaces the clock used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(d *DataStore) {
		if now != nil {
			d.now = now
		}
	}
}

// Open creates the data directory if needed and loads the profile.
// A missing or corrupt profile yields a fresh one; only an unusable
// directory is an error.
func Open(dir string, opts ...Option) (*DataStore, error) {
	dir, err := ExpandHome(dir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	d := &DataStore{
		dir:          dir,
		historyLimit: DefaultHistoryLimit,
		logger:       logging.Discard(),
		now:          time.Now,
		profile:      newProfile(),
	}
	for _, opt := range opts {
		opt(d)
	}

	profile, err := d.loadProfile()
	switch {
	case errors.Is(err, fs.ErrNotExist):
		d.logger.Debug("no profile yet, starting fresh", "dir", dir)
	case err != nil:
		d.logger.Warn("discarding unreadable profile", "path", d.profilePath(), "error", err)
	default:
		d.profile = profile
	}
	return d, nil
}

// Dir returns the data directory.
func (d *DataStore) Dir() string {
	return d.dir
}

func (d *DataStore) profilePath() string {
	return filepath.Join(d.dir, ProfileFile)
}

func (d *DataStore) modelPath() string {
	return filepath.Join(d.dir, ModelFile)
}

func (d *DataStore) loadProfile() (PlayerProfile, error) {
	data, err := os.ReadFile(d.profilePath())
	if err != nil {
		return PlayerProfile{}, err
	}

	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return PlayerProfile{}, fmt.Errorf("storage: corrupt profile: %w", err)
	}
	if err := profileSchema.Validate(raw); err != nil {
		return PlayerProfile{}, fmt.Errorf("storage: invalid profile: %w", err)
	}

	p := newProfile()
	if err := json.Unmarshal(data, &p); err != nil {
		return PlayerProfile{}, fmt.Errorf("storage: corrupt profile: %w", err)
	}
	if p.DifficultyHistory == nil {
		p.DifficultyHistory = []SessionRecord{}
	}
	if p.PerformanceHistory == nil {
		p.PerformanceHistory = []PerformanceRecord{}
	}
	return p, nil
}

// saveLocked writes the profile atomically. Caller holds d.mu.
func (d *DataStore) saveLocked() error {
	data, err := json.MarshalIndent(d.profile, "", "  ")
	if err != nil {
		return fmt.Errorf("storage: cannot encode profile: %w", err)
	}
	return writeFileAtomic(d.profilePath(), data)
}

// Profile returns a copy of the current profile.
func (d *DataStore) Profile() PlayerProfile {
	d.mu.Lock()
	defer d.mu.Unlock()

	p := d.profile
	p.DifficultyHistory = append([]SessionRecord(nil), d.profile.DifficultyHistory...)
	p.PerformanceHistory = append([]PerformanceRecord(nil), d.profile.PerformanceHistory...)
	if d.profile.LastSession != nil {
		ts := *d.profile.LastSession
		p.LastSession = &ts
	}
	return p
}

// UpdateSessionData adds a finished session's play time and score.
func (d *DataStore) UpdateSessionData(playTime float64, score int) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if playTime > 0 {
		d.profile.TotalPlayTime += playTime
	}
	d.profile.GamesPlayed++
	ts := unixSeconds(d.now())
	d.profile.LastSession = &ts
	if score > d.profile.HighScore {
		d.profile.HighScore = score
	}
	return d.saveLocked()
}

// AddDifficultyRecord appends a session to the difficulty history, dropping
// the oldest entries beyond the history limit.
func (d *DataStore) AddDifficultyRecord(metrics profiler.Snapshot, params dda.Params, score int, duration float64) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	rec := SessionRecord{
		ID:        uuid.NewString(),
		Timestamp: unixSeconds(d.now()),
		Metrics:   metrics,
		Params:    params,
		Score:     score,
		Duration:  duration,
	}
	d.profile.DifficultyHistory = appendCapped(d.profile.DifficultyHistory, rec, d.historyLimit)
	return d.saveLocked()
}

// AddPerformanceRecord appends to the performance history.
func (d *DataStore) AddPerformanceRecord(score int, duration, successRating float64, tier string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	rec := PerformanceRecord{
		ID:            uuid.NewString(),
		Timestamp:     unixSeconds(d.now()),
		Score:         score,
		Duration:      duration,
		SuccessRating: successRating,
		Tier:          tier,
	}
	d.profile.PerformanceHistory = appendCapped(d.profile.PerformanceHistory, rec, d.historyLimit)
	return d.saveLocked()
}

// LastMetrics returns the metrics of the newest difficulty record.
func (d *DataStore) LastMetrics() (profiler.Snapshot, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	h := d.profile.DifficultyHistory
	if len(h) == 0 {
		return profiler.Snapshot{}, false
	}
	return h[len(h)-1].Metrics, true
}

// History returns the difficulty history, oldest first.
func (d *DataStore) History() []SessionRecord {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]SessionRecord(nil), d.profile.DifficultyHistory...)
}

// Stats summarizes the profile.
func (d *DataStore) Stats() Stats {
	d.mu.Lock()
	defer d.mu.Unlock()

	s := Stats{
		TotalPlayTime: time.Duration(d.profile.TotalPlayTime * float64(time.Second)),
		HighScore:     d.profile.HighScore,
		GamesPlayed:   d.profile.GamesPlayed,
		HistoryLen:    len(d.profile.DifficultyHistory),
	}
	if d.profile.LastSession != nil {
		s.LastSession = unixTime(*d.profile.LastSession)
	}
	return s
}

// Reset replaces the profile with a fresh one and removes the saved model.
func (d *DataStore) Reset() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.profile = newProfile()
	if err := os.Remove(d.modelPath()); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("storage: cannot remove model: %w", err)
	}
	return d.saveLocked()
}

// writeFileAtomic writes data to a temp file in the same directory and
// renames it over path.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("storage: cannot create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("storage: cannot write %s: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("storage: cannot sync %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: cannot close %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("storage: cannot replace %s: %w", path, err)
	}
	return nil
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) (string, error) {
	if path == "" || path[0] != '~' {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("storage: cannot expand home directory: %w", err)
	}
	return filepath.Join(home, path[1:]), nil
}

var _ dda.Store = (*DataStore)(nil)
