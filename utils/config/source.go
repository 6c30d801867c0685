package config

import (
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"
)

var log = logrus.WithField("module", "config")

// kphToMS converts km/h to m/s (spec.md §6, OpkrLaneChangeSpeed).
const kphToMS = 1000.0 / 3600.0

// autoDelayTable maps OpkrAutoLaneChangeDelay (0..5) to seconds
// (spec.md §4.2).
var autoDelayTable = [6]float64{0.0, 0.2, 0.5, 1.0, 1.5, 2.0}

// Source is the "ConfigSource" abstraction called for in spec.md §9: it
// is injected at planner construction and polled explicitly, driven by
// the planner's own accumulated frame time — there is no process-wide
// singleton and no background goroutine.
type Source interface {
	// Poll re-reads the underlying store. A read failure leaves the
	// previously observed values in place (spec.md §7.3); it never
	// returns an error the caller must handle.
	Poll()

	UseLanelines() bool
	LanelessMode() int
	MinSpeedMS() float64
	AutoDelaySeconds() float64
}

// FileSource is a YAML-file-backed Source. Poll re-reads the file from
// disk and updates every key except AutoLaneChangeDelay, which keeps
// its construction-time value. A missing or malformed file is logged on
// each failed poll and otherwise ignored, keeping the last-known-good
// values.
type FileSource struct {
	path string

	useLanelines bool
	lanelessMode int
	minSpeedMS   float64
	autoDelayS   float64
}

// NewFileSource builds a FileSource from an initial Control block (the
// values read once at construction per spec.md §6) and the path to poll
// thereafter.
func NewFileSource(path string, initial Control) *FileSource {
	s := &FileSource{path: path}
	s.apply(initial)
	return s
}

func (s *FileSource) apply(c Control) {
	s.useLanelines = !c.EndToEndToggle
	s.lanelessMode = c.LanelessMode
	s.minSpeedMS = float64(c.LaneChangeSpeedKph) * kphToMS
	idx := c.AutoLaneChangeDelay
	if idx < 0 || idx >= len(autoDelayTable) {
		idx = 0
	}
	s.autoDelayS = autoDelayTable[idx]
}

func (s *FileSource) Poll() {
	if s.path == "" {
		return
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		log.Debugf("config: poll %s failed, keeping last values: %v", s.path, err)
		return
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		log.Warnf("config: poll %s unparsable, keeping last values: %v", s.path, err)
		return
	}
	autoDelayS := s.autoDelayS
	s.apply(cfg.Control)
	s.autoDelayS = autoDelayS
}

func (s *FileSource) UseLanelines() bool     { return s.useLanelines }
func (s *FileSource) LanelessMode() int      { return s.lanelessMode }
func (s *FileSource) MinSpeedMS() float64    { return s.minSpeedMS }
func (s *FileSource) AutoDelaySeconds() float64 { return s.autoDelayS }
