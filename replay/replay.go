// Package replay records docking frames and stores them as msgpack so a
// flight can be inspected after the fact.
package replay

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/navuxneeth/NASA-Challenge/model"
)

// FormatVersion is written into every recording.
const FormatVersion = 1

// ErrUnsupportedVersion is returned when decoding a recording from a newer
// format.
var ErrUnsupportedVersion = errors.New("unsupported recording version")

// Recording is the on-disk document.
type Recording struct {
	Version  int           `msgpack:"version"`
	Recorded time.Time     `msgpack:"recorded"`
	Frames   []model.Frame `msgpack:"frames"`
}

// Recorder is a renderer that keeps every frame it is given. Frames with
// Seq 1 open a new session.
type Recorder struct {
	mu     sync.Mutex
	frames []model.Frame
	limit  int
}

// NewRecorder returns a recorder keeping at most limit frames; limit <= 0
// means unbounded. When full, the oldest frames are dropped.
func NewRecorder(limit int) *Recorder {
	return &Recorder{limit: limit}
}

// Render implements core.Renderer.
func (r *Recorder) Render(_ context.Context, f model.Frame) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames = append(r.frames, f)
	if r.limit > 0 && len(r.frames) > r.limit {
		r.frames = append(r.frames[:0:0], r.frames[len(r.frames)-r.limit:]...)
	}
	return nil
}

// Len returns the number of frames held.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.frames)
}

// Frames returns a copy of the recorded frames.
func (r *Recorder) Frames() []model.Frame {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.Frame(nil), r.frames...)
}

// Sessions splits the recorded frames into one slice per session.
func (r *Recorder) Sessions() [][]model.Frame {
	return SplitSessions(r.Frames())
}

// Recording snapshots the recorder.
func (r *Recorder) Recording(now time.Time) Recording {
	return Recording{Version: FormatVersion, Recorded: now.UTC(), Frames: r.Frames()}
}

// SplitSessions cuts frames wherever the sequence restarts at 1.
func SplitSessions(frames []model.Frame) [][]model.Frame {
	var out [][]model.Frame
	start := 0
	for i, f := range frames {
		if f.Seq == 1 && i > start {
			out = append(out, frames[start:i])
			start = i
		}
	}
	if start < len(frames) {
		out = append(out, frames[start:])
	}
	return out
}

// Encode writes rec as msgpack.
func Encode(w io.Writer, rec Recording) error {
	if rec.Version == 0 {
		rec.Version = FormatVersion
	}
	if err := msgpack.NewEncoder(w).Encode(&rec); err != nil {
		return fmt.Errorf("encode recording: %w", err)
	}
	return nil
}

// Decode reads a recording written by Encode.
func Decode(r io.Reader) (Recording, error) {
	var rec Recording
	if err := msgpack.NewDecoder(r).Decode(&rec); err != nil {
		return Recording{}, fmt.Errorf("decode recording: %w", err)
	}
	if rec.Version > FormatVersion {
		return Recording{}, fmt.Errorf("%w: %d", ErrUnsupportedVersion, rec.Version)
	}
	return rec, nil
}

// WriteFile encodes rec to path.
func WriteFile(path string, rec Recording) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create recording: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("close recording: %w", cerr)
		}
	}()

	bw := bufio.NewWriter(f)
	if err := Encode(bw, rec); err != nil {
		return err
	}
	return bw.Flush()
}

// ReadFile decodes the recording at path.
func ReadFile(path string) (Recording, error) {
	f, err := os.Open(path)
	if err != nil {
		return Recording{}, fmt.Errorf("open recording: %w", err)
	}
	defer f.Close()
	return Decode(bufio.NewReader(f))
}

// Summary condenses one session.
type Summary struct {
	Frames        int
	Duration      time.Duration
	Outcome       model.SessionState
	FinalAdvisory model.Advisory
	MinDistance   float64
	MaxSpeed      float64
	ThrustFrames  int
}

// Summarize reports on frames, which should belong to a single session.
func Summarize(frames []model.Frame) Summary {
	if len(frames) == 0 {
		return Summary{}
	}
	s := Summary{MinDistance: math.Inf(1)}
	for _, f := range frames {
		s.MinDistance = math.Min(s.MinDistance, f.Distance)
		s.MaxSpeed = math.Max(s.MaxSpeed, f.Speed)
		if f.Input.Thrust {
			s.ThrustFrames++
		}
	}
	last := frames[len(frames)-1]
	s.Frames = len(frames)
	s.Duration = last.Elapsed
	s.Outcome = last.State
	s.FinalAdvisory = last.Advisory
	return s
}
