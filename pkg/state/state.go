// Package state persists the replication watermark for each report stream:
// the most recent last_modified value successfully processed.
package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"assocfeed/pkg/logger"
	"assocfeed/pkg/models"
)

const stateFileName = "state.json"

// File is the on-disk shape of the replication state.
type File struct {
	Watermarks map[models.ReportType]string `json:"watermarks"`
	UpdatedAt  time.Time                    `json:"updated_at"`
	Version    int                          `json:"version"`
}

// Store loads and persists per-stream watermarks under a state directory.
type Store struct {
	path   string
	file   File
	logger logger.Logger
}

// NewStore opens the state file under dir, creating the directory if needed.
// A missing state file starts an empty store.
func NewStore(dir string, log logger.Logger) (*Store, error) {
	if log == nil {
		log = logger.GetLogger()
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}

	s := &Store{
		path:   filepath.Join(dir, stateFileName),
		file:   File{Watermarks: make(map[models.ReportType]string), Version: 1},
		logger: log,
	}

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}
	if err := json.Unmarshal(data, &s.file); err != nil {
		return nil, fmt.Errorf("failed to decode state file: %w", err)
	}
	if s.file.Watermarks == nil {
		s.file.Watermarks = make(map[models.ReportType]string)
	}

	return s, nil
}

// Watermark returns the persisted watermark for a stream, if any.
func (s *Store) Watermark(rt models.ReportType) (string, bool) {
	value, ok := s.file.Watermarks[rt]
	return value, ok
}

// Advance moves the stream's watermark forward to value if value is newer
// than the current watermark. The change is persisted immediately.
func (s *Store) Advance(rt models.ReportType, value string) error {
	next, err := models.ParseReportTime(value)
	if err != nil {
		return err
	}

	if current, ok := s.file.Watermarks[rt]; ok {
		currentTime, err := models.ParseReportTime(current)
		if err != nil {
			return fmt.Errorf("corrupt watermark for %s: %w", rt, err)
		}
		if !next.After(currentTime) {
			return nil
		}
	}

	s.file.Watermarks[rt] = value
	s.logger.InfoWithFields("watermark advanced", map[string]interface{}{
		"stream":    string(rt),
		"watermark": value,
	})
	return s.save()
}

// Seed fills in a watermark for every stream that has none, giving first
// runs a sync floor. Streams with an existing watermark are untouched.
func (s *Store) Seed(rts []models.ReportType, value string) error {
	if value == "" {
		return nil
	}
	if _, err := models.ParseReportTime(value); err != nil {
		return fmt.Errorf("invalid start date: %w", err)
	}

	seeded := false
	for _, rt := range rts {
		if _, ok := s.file.Watermarks[rt]; !ok {
			s.file.Watermarks[rt] = value
			seeded = true
		}
	}
	if !seeded {
		return nil
	}
	return s.save()
}

func (s *Store) save() error {
	s.file.UpdatedAt = time.Now().UTC()
	data, err := json.MarshalIndent(&s.file, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace state file: %w", err)
	}
	return nil
}
