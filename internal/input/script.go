package input

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Segment holds one set of directives for a duration in seconds.
type Segment struct {
	Duration float64 `yaml:"duration"`
	Forward  bool    `yaml:"forward"`
	Backward bool    `yaml:"backward"`
	Left     bool    `yaml:"left"`
	Right    bool    `yaml:"right"`
	Brake    bool    `yaml:"brake"`
}

// Script replays a timeline of directive segments at the fixed physics rate.
// It makes headless runs deterministic: the same script and fixed dt always
// produce the same directive sequence.
type Script struct {
	segments []Segment
	fixedDt  float64
	index    int
	elapsed  float64
}

func NewScript(segments []Segment, fixedDt float64) *Script {
	return &Script{segments: segments, fixedDt: fixedDt}
}

// LoadScript reads a segment timeline from a YAML file.
func LoadScript(path string, fixedDt float64) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var segments []Segment
	if err := yaml.Unmarshal(data, &segments); err != nil {
		return nil, fmt.Errorf("parse script %s: %w", path, err)
	}
	return NewScript(segments, fixedDt), nil
}

// Sample returns the active segment's directives and advances the timeline
// by one fixed step. Past the final segment it returns coasting (all false).
func (s *Script) Sample() Directives {
	for s.index < len(s.segments) && s.elapsed >= s.segments[s.index].Duration {
		s.elapsed -= s.segments[s.index].Duration
		s.index++
	}
	if s.index >= len(s.segments) {
		return Directives{}
	}
	seg := s.segments[s.index]
	s.elapsed += s.fixedDt
	return Directives{
		Forward:  seg.Forward,
		Backward: seg.Backward,
		Left:     seg.Left,
		Right:    seg.Right,
		Brake:    seg.Brake,
	}
}

// Done reports whether the timeline is exhausted.
func (s *Script) Done() bool {
	return s.index >= len(s.segments)
}
