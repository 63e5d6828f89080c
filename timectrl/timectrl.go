package timectrl

import (
	"context"
	"sort"
	"sync"
	"time"
)

// SimClock is an interface for accessing simulation time. Pilots and other
// collaborators depend on it rather than on a concrete FrameDriver.
type SimClock interface {
	// Now returns the current simulation time.
	Now() time.Time
	// After returns a channel that receives the simulation time once d has
	// elapsed in simulation time.
	After(d time.Duration) <-chan time.Time
}

// Mode describes how the FrameDriver advances simulation time.
type Mode int

const (
	// RealTime advances according to wall-clock time, one frame per interval,
	// with each frame's delta measured rather than assumed.
	RealTime Mode = iota
	// Accelerated steps by FrameInterval as quickly as the loop can run.
	Accelerated
)

func (m Mode) String() string {
	if m == Accelerated {
		return "accelerated"
	}
	return "realtime"
}

type timer struct {
	id  uint64
	due time.Time
	fn  func()
}

// FrameDriver plays the role of the host's display-refresh callback: it owns
// simulation time and invokes registered listeners once per frame. Timers
// registered with AfterFunc fire only as frames advance simulation time.
// It implements SimClock.
type FrameDriver struct {
	mu            sync.Mutex
	StartTime     time.Time
	FrameInterval time.Duration
	Mode          Mode

	currentTime time.Time
	frames      uint64

	nextID    uint64
	listeners map[uint64]func(time.Duration)
	order     []uint64
	timers    map[uint64]*timer
}

// NewFrameDriver constructs a driver. A non-positive interval defaults to
// 60 frames per second.
func NewFrameDriver(start time.Time, interval time.Duration, mode Mode) *FrameDriver {
	if interval <= 0 {
		interval = time.Second / 60
	}
	return &FrameDriver{
		StartTime:     start,
		FrameInterval: interval,
		Mode:          mode,
		currentTime:   start,
		listeners:     make(map[uint64]func(time.Duration)),
		timers:        make(map[uint64]*timer),
	}
}

// Now returns the current simulation time. Implements SimClock.
func (d *FrameDriver) Now() time.Time {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.currentTime
}

// SetTime moves simulation time without running a frame.
func (d *FrameDriver) SetTime(t time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.currentTime = t
}

// Elapsed returns simulation time since StartTime.
func (d *FrameDriver) Elapsed() time.Duration {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.currentTime.Sub(d.StartTime)
}

// Frames returns the number of frames stepped so far.
func (d *FrameDriver) Frames() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.frames
}

// ListenerCount returns the number of registered frame listeners.
func (d *FrameDriver) ListenerCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.listeners)
}

// PendingTimers returns the number of timers that have not fired yet.
func (d *FrameDriver) PendingTimers() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.timers)
}

// AddListener registers fn to run on every frame and returns a function that
// deregisters it. A listener removed mid-frame is not invoked for the rest of
// that frame. The returned function is idempotent.
func (d *FrameDriver) AddListener(fn func(delta time.Duration)) (remove func()) {
	d.mu.Lock()
	d.nextID++
	id := d.nextID
	d.listeners[id] = fn
	d.order = append(d.order, id)
	d.mu.Unlock()

	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		if _, ok := d.listeners[id]; !ok {
			return
		}
		delete(d.listeners, id)
		for i, v := range d.order {
			if v == id {
				d.order = append(d.order[:i], d.order[i+1:]...)
				break
			}
		}
	}
}

// AfterFunc schedules fn to run on the first frame at which delay has elapsed
// in simulation time. It never runs fn synchronously. The returned function
// cancels the timer if it has not fired.
func (d *FrameDriver) AfterFunc(delay time.Duration, fn func()) (cancel func()) {
	if delay < 0 {
		delay = 0
	}
	d.mu.Lock()
	d.nextID++
	t := &timer{id: d.nextID, due: d.currentTime.Add(delay), fn: fn}
	d.timers[t.id] = t
	d.mu.Unlock()

	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		delete(d.timers, t.id)
	}
}

// After returns a channel that receives the simulation time once d has
// elapsed. Implements SimClock.
func (d *FrameDriver) After(delay time.Duration) <-chan time.Time {
	ch := make(chan time.Time, 1)
	d.AfterFunc(delay, func() {
		ch <- d.Now()
	})
	return ch
}

// Step advances simulation time by delta and runs one frame: listeners in
// registration order, then any timers that have come due. Callbacks run
// outside the driver lock so they may register or remove others.
func (d *FrameDriver) Step(delta time.Duration) {
	if delta < 0 {
		delta = 0
	}

	d.mu.Lock()
	d.currentTime = d.currentTime.Add(delta)
	d.frames++
	now := d.currentTime
	ids := append([]uint64(nil), d.order...)
	d.mu.Unlock()

	for _, id := range ids {
		d.mu.Lock()
		fn, ok := d.listeners[id]
		d.mu.Unlock()
		if ok {
			fn(delta)
		}
	}

	for _, t := range d.dueTimers(now) {
		t.fn()
	}
}

func (d *FrameDriver) dueTimers(now time.Time) []*timer {
	d.mu.Lock()
	defer d.mu.Unlock()

	var due []*timer
	for id, t := range d.timers {
		if !t.due.After(now) {
			due = append(due, t)
			delete(d.timers, id)
		}
	}
	sort.Slice(due, func(i, j int) bool {
		if due[i].due.Equal(due[j].due) {
			return due[i].id < due[j].id
		}
		return due[i].due.Before(due[j].due)
	})
	return due
}

// StepFrames runs n frames of FrameInterval each.
func (d *FrameDriver) StepFrames(n int) {
	for i := 0; i < n; i++ {
		d.Step(d.FrameInterval)
	}
}

// Start runs the driver in a separate goroutine until duration of simulation
// time has elapsed (forever when duration <= 0) or ctx is cancelled. It
// returns a channel that is closed when the driver stops.
func (d *FrameDriver) Start(ctx context.Context, duration time.Duration) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)

		elapsed := time.Duration(0)
		if d.Mode == Accelerated {
			for duration <= 0 || elapsed < duration {
				if ctx.Err() != nil {
					return
				}
				d.Step(d.FrameInterval)
				elapsed += d.FrameInterval
			}
			return
		}

		ticker := time.NewTicker(d.FrameInterval)
		defer ticker.Stop()

		last := time.Now()
		for duration <= 0 || elapsed < duration {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				delta := now.Sub(last)
				last = now
				d.Step(delta)
				elapsed += delta
			}
		}
	}()
	return done
}
