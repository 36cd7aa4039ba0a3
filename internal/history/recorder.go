// Package history keeps the append-only JSON log of published posts.
package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/gofrs/flock"
)

// ErrCorrupt means the existing history file could not be parsed. Prior
// history is never silently dropped: a corrupt log is fatal, not empty.
var ErrCorrupt = errors.New("posting history corrupt")

// Record is one published post. Append-only; existing entries are never
// rewritten.
type Record struct {
	PostedAt      time.Time `json:"posted_at"`
	ASIN          string    `json:"asin"`
	Product       string    `json:"product"`
	AffiliateLink string    `json:"affiliate_link"`
}

// Recorder persists Records to a shared JSON array file. A file lock guards
// the read-append-write cycle against overlapping runs.
type Recorder struct {
	path string
	lock *flock.Flock
}

func NewRecorder(path string) *Recorder {
	return &Recorder{
		path: path,
		lock: flock.New(path + ".lock"),
	}
}

// Append loads the existing history, adds one record, and writes the file
// back. A missing file starts an empty history; a malformed one is ErrCorrupt.
func (r *Recorder) Append(record Record) error {
	if err := r.lock.Lock(); err != nil {
		return fmt.Errorf("lock history: %w", err)
	}
	defer func() {
		if err := r.lock.Unlock(); err != nil {
			slog.Warn("failed to release history lock", "error", err)
		}
	}()

	records, err := r.load()
	if err != nil {
		return err
	}

	records = append(records, record)

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}
	if err := os.WriteFile(r.path, data, 0644); err != nil {
		return fmt.Errorf("write history: %w", err)
	}

	slog.Info("posting history updated", "path", r.path, "entries", len(records))
	return nil
}

// Load returns all recorded posts, oldest first.
func (r *Recorder) Load() ([]Record, error) {
	if err := r.lock.RLock(); err != nil {
		return nil, fmt.Errorf("lock history: %w", err)
	}
	defer func() {
		_ = r.lock.Unlock()
	}()
	return r.load()
}

func (r *Recorder) load() ([]Record, error) {
	data, err := os.ReadFile(r.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}

	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return records, nil
}
