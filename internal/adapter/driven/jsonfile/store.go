// Package jsonfile persists alert thresholds in the JSON settings file shared
// with the rest of the restaurant tooling.
package jsonfile

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/natefinch/atomic"

	"github.com/ericfisherdev/kitchenwatch/internal/domain/model"
	"github.com/ericfisherdev/kitchenwatch/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.ThresholdStore = (*Store)(nil)

// document holds the keys this store owns. Other keys in the file belong to
// other tools and are carried through Save untouched.
type document struct {
	DelayMinutes     *int `json:"tiempo_umbral_minutos,omitempty"`
	LowStockQuantity *int `json:"umbral_stock_bajo,omitempty"`
}

// Store keeps thresholds in a JSON file. Writes go through a temp file and
// rename so a crash never leaves a half-written file behind.
type Store struct {
	mu   sync.Mutex
	path string
}

// NewStore creates a Store for the file at path. The file and its directory
// are created on first Load.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the settings file location.
func (s *Store) Path() string {
	return s.path
}

// Load reads the thresholds. A missing file is created with the defaults; a
// missing key takes its default value. A file that is not valid JSON is an
// error and is left untouched.
func (s *Store) Load(_ context.Context) (model.Thresholds, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		defaults := model.DefaultThresholds()
		if err := s.write(defaults, nil); err != nil {
			return defaults, err
		}
		return defaults, nil
	}
	if err != nil {
		return model.DefaultThresholds(), fmt.Errorf("read %s: %w", s.path, err)
	}

	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return model.DefaultThresholds(), fmt.Errorf("decode %s: %w", s.path, err)
	}

	thresholds := model.DefaultThresholds()
	if doc.DelayMinutes != nil {
		thresholds.DelayMinutes = *doc.DelayMinutes
	}
	if doc.LowStockQuantity != nil {
		thresholds.LowStockQuantity = *doc.LowStockQuantity
	}
	return thresholds, nil
}

// Save writes both thresholds, keeping any other keys already in the file.
func (s *Store) Save(_ context.Context, thresholds model.Thresholds) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var extra map[string]json.RawMessage
	if raw, err := os.ReadFile(s.path); err == nil {
		// A corrupt file is replaced wholesale.
		_ = json.Unmarshal(raw, &extra)
	}
	return s.write(thresholds, extra)
}

func (s *Store) write(thresholds model.Thresholds, extra map[string]json.RawMessage) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create settings directory: %w", err)
	}

	out := make(map[string]any, len(extra)+2)
	for k, v := range extra {
		out[k] = v
	}
	out["tiempo_umbral_minutos"] = thresholds.DelayMinutes
	out["umbral_stock_bajo"] = thresholds.LowStockQuantity

	data, err := json.MarshalIndent(out, "", "    ")
	if err != nil {
		return fmt.Errorf("encode thresholds: %w", err)
	}
	data = append(data, '\n')

	if err := atomic.WriteFile(s.path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	return nil
}
