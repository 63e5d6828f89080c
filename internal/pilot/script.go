package pilot

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/navuxneeth/NASA-Challenge/model"
	"github.com/navuxneeth/NASA-Challenge/timectrl"
)

// ErrEmptyScript is returned when a script has no steps.
var ErrEmptyScript = errors.New("script has no steps")

// Step holds a set of commands for a span of simulation time.
type Step struct {
	Duration time.Duration
	Input    model.ControlInput
}

type stepYAML struct {
	Duration string `yaml:"duration"`
	Thrust   bool   `yaml:"thrust"`
	Left     bool   `yaml:"left"`
	Right    bool   `yaml:"right"`
}

type scriptYAML struct {
	Name  string     `yaml:"name"`
	Steps []stepYAML `yaml:"steps"`
}

// Script replays a fixed timeline of held commands, measured in simulation
// time from the moment it is attached. After the last step nothing is held.
type Script struct {
	Name  string
	Steps []Step

	clock timectrl.SimClock

	mu       sync.Mutex
	attached bool
	start    time.Time
}

// NewScript builds a script driven by clock.
func NewScript(clock timectrl.SimClock, steps ...Step) *Script {
	return &Script{Steps: steps, clock: clock}
}

// ParseScript decodes a YAML script:
//
//	name: straight-in
//	steps:
//	  - duration: 1.5s
//	    thrust: true
//	  - duration: 10s
func ParseScript(r io.Reader, clock timectrl.SimClock) (*Script, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	var doc scriptYAML
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode script: %w", err)
	}
	if len(doc.Steps) == 0 {
		return nil, ErrEmptyScript
	}

	s := &Script{Name: doc.Name, clock: clock, Steps: make([]Step, 0, len(doc.Steps))}
	for i, st := range doc.Steps {
		d, err := time.ParseDuration(st.Duration)
		if err != nil {
			return nil, fmt.Errorf("step %d: duration %q: %w", i, st.Duration, err)
		}
		if d <= 0 {
			return nil, fmt.Errorf("step %d: duration must be positive, got %s", i, d)
		}
		s.Steps = append(s.Steps, Step{
			Duration: d,
			Input: model.ControlInput{
				Thrust:      st.Thrust,
				RotateLeft:  st.Left,
				RotateRight: st.Right,
			},
		})
	}
	return s, nil
}

// LoadScript reads a YAML script from path.
func LoadScript(path string, clock timectrl.SimClock) (*Script, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open script %q: %w", path, err)
	}
	defer f.Close()
	return ParseScript(f, clock)
}

// Total returns the summed duration of all steps.
func (s *Script) Total() time.Duration {
	var total time.Duration
	for _, st := range s.Steps {
		total += st.Duration
	}
	return total
}

// Attach starts the timeline at the clock's current time.
func (s *Script) Attach() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attached = true
	s.start = s.clock.Now()
}

// Detach stops the timeline.
func (s *Script) Detach() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attached = false
}

// Sample returns the commands of the step active at the clock's time. A step
// covers [start, start+duration).
func (s *Script) Sample() model.ControlInput {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.attached {
		return model.ControlInput{}
	}
	return s.At(s.clock.Now().Sub(s.start))
}

// At returns the commands held at offset into the timeline.
func (s *Script) At(offset time.Duration) model.ControlInput {
	if offset < 0 {
		return model.ControlInput{}
	}
	var end time.Duration
	for _, st := range s.Steps {
		end += st.Duration
		if offset < end {
			return st.Input
		}
	}
	return model.ControlInput{}
}
