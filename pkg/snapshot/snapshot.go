// Package snapshot reads and watches host snapshot files: serialized walks
// of a rendered page, one StyleSample per element.
package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/gnana997/stylelens/pkg/aggregate"
)

// Snapshot is one page capture.
type Snapshot struct {
	URL      string                  `json:"url,omitempty"`
	Title    string                  `json:"title,omitempty"`
	Viewport aggregate.Viewport      `json:"viewport"`
	Samples  []aggregate.StyleSample `json:"samples"`
}

// ErrInvalidSnapshot reports a structurally unusable snapshot file.
var ErrInvalidSnapshot = errors.New("invalid snapshot")

// Decode parses and validates snapshot JSON.
func Decode(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	if s.Viewport.Width <= 0 || s.Viewport.Height <= 0 {
		return nil, fmt.Errorf("%w: viewport must be positive, got %gx%g",
			ErrInvalidSnapshot, s.Viewport.Width, s.Viewport.Height)
	}
	return &s, nil
}

// WriteFile stores s as indented JSON.
func (s *Snapshot) WriteFile(path string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return nil
}

// Find returns the first sample whose selector label equals label. A bare
// "#id" label also matches by id alone.
func (s *Snapshot) Find(label string) (aggregate.StyleSample, bool) {
	for _, sample := range s.Samples {
		if sample.Label() == label || (sample.ID != "" && "#"+sample.ID == label) {
			return sample, true
		}
	}
	return aggregate.StyleSample{}, false
}
