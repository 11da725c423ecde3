package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/klauspost/compress/zstd"

	"github.com/vovakirdan/lane-runner/internal/dda"
)

// SaveModel writes the learned policy state as zstd-compressed JSON.
func (d *DataStore) SaveModel(state dda.ModelState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("storage: cannot encode model: %w", err)
	}

	var buf bytes.Buffer
	enc, err := zstd.NewWriter(&buf, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return fmt.Errorf("storage: cannot create encoder: %w", err)
	}
	if _, err := enc.Write(raw); err != nil {
		enc.Close()
		return fmt.Errorf("storage: cannot compress model: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("storage: cannot compress model: %w", err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	return writeFileAtomic(d.modelPath(), buf.Bytes())
}

// LoadModel reads the saved model. It returns ErrNoModel when none exists.
func (d *DataStore) LoadModel() (dda.ModelState, error) {
	var state dda.ModelState

	f, err := os.Open(d.modelPath())
	if errors.Is(err, fs.ErrNotExist) {
		return state, ErrNoModel
	}
	if err != nil {
		return state, fmt.Errorf("storage: cannot open model: %w", err)
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return state, fmt.Errorf("storage: cannot create decoder: %w", err)
	}
	defer dec.Close()

	if err := json.NewDecoder(dec).Decode(&state); err != nil {
		return state, fmt.Errorf("storage: corrupt model: %w", err)
	}
	return state, nil
}
