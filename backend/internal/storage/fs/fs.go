// Package fs keeps the site mode in a single JSON file.
package fs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/mahalaxmi-group/site-api/backend/internal/service"
	"github.com/mahalaxmi-group/site-api/shared/domain"
)

// legacyTimeLayout is how older deployments stamped updated_at.
const legacyTimeLayout = "2006-01-02 15:04:05 MST"

type Storage struct {
	path string
	mu   sync.Mutex // serializes writers; readers never block
	now  func() time.Time
}

// Ensure Storage struct implements the interface at compile time.
var _ service.ModeStore = (*Storage)(nil)

func New(path string) *Storage {
	return &Storage{path: filepath.Clean(path), now: time.Now}
}

type fileRecord struct {
	Mode      domain.Mode `json:"mode"`
	UpdatedAt string      `json:"updated_at"`
	UpdatedBy string      `json:"updated_by"`
}

// Get returns the default record when the file does not exist yet.
// A file that cannot be parsed is reported as an error.
func (s *Storage) Get(_ context.Context) (domain.SiteModeRecord, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return domain.DefaultSiteMode(), nil
	}
	if err != nil {
		return domain.SiteModeRecord{}, fmt.Errorf("read site mode file: %w", err)
	}

	var rec fileRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return domain.SiteModeRecord{}, fmt.Errorf("parse site mode file: %w", err)
	}
	if rec.Mode == "" {
		rec.Mode = domain.DefaultMode
	}
	return domain.SiteModeRecord{
		Mode:      rec.Mode,
		UpdatedAt: parseTime(rec.UpdatedAt),
		UpdatedBy: rec.UpdatedBy,
	}, nil
}

func parseTime(s string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, legacyTimeLayout} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// Set replaces the file atomically: a concurrent reader sees either the old or the new record.
func (s *Storage) Set(_ context.Context, mode domain.Mode, actor string) (domain.SiteModeRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record := domain.SiteModeRecord{Mode: mode, UpdatedAt: s.now().UTC().Truncate(time.Second), UpdatedBy: actor}
	data, err := json.MarshalIndent(fileRecord{
		Mode:      record.Mode,
		UpdatedAt: record.UpdatedAt.Format(time.RFC3339),
		UpdatedBy: record.UpdatedBy,
	}, "", "    ")
	if err != nil {
		return domain.SiteModeRecord{}, err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return domain.SiteModeRecord{}, fmt.Errorf("create site mode directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".site-mode-*.json")
	if err != nil {
		return domain.SiteModeRecord{}, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	_, writeErr := tmp.Write(append(data, '\n'))
	closeErr := tmp.Close()
	if writeErr != nil || closeErr != nil {
		os.Remove(tmpPath)
		return domain.SiteModeRecord{}, fmt.Errorf("write temp file: %w", errors.Join(writeErr, closeErr))
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		os.Remove(tmpPath)
		return domain.SiteModeRecord{}, fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return domain.SiteModeRecord{}, fmt.Errorf("replace site mode file: %w", err)
	}
	return record, nil
}

// Ping fails only when the file exists but cannot be read.
func (s *Storage) Ping(_ context.Context) error {
	f, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	return f.Close()
}
