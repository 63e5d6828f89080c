// Package cupola runs citizen-science photo missions from the ISS Cupola:
// a ground target becomes photographable while the station passes within
// range of it.
package cupola

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/navuxneeth/NASA-Challenge/internal/logging"
	"github.com/navuxneeth/NASA-Challenge/orbit"
)

const (
	// DefaultRange is the ground distance at which capture is enabled.
	DefaultRange = 500.0 // km
	// EarthRadius is the mean radius used for ground distances.
	EarthRadius = 6371.0 // km
)

var (
	// ErrNoMission is returned when no mission is active or none can be picked.
	ErrNoMission = errors.New("no cupola mission")
	// ErrOutOfRange is returned when capturing while the target is too far.
	ErrOutOfRange = errors.New("target out of range")
)

// PositionSource gives the ISS ground position. *orbit.Tracker satisfies it.
type PositionSource interface {
	At(t time.Time) (orbit.Position, error)
}

// GroundDistance is the haversine distance in km between two points given
// in degrees.
func GroundDistance(lat1, lon1, lat2, lon2 float64) float64 {
	rad := func(d float64) float64 { return d * math.Pi / 180 }
	dLat := rad(lat2 - lat1)
	dLon := rad(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rad(lat1))*math.Cos(rad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return EarthRadius * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// Status is a proximity check of the active mission.
type Status struct {
	Mission  Mission
	ISS      orbit.Position
	Distance float64
	InRange  bool
}

// Capture is a successful photograph.
type Capture struct {
	Mission  Mission
	Photo    Photo
	Distance float64
	Time     time.Time
	Next     Mission
}

// Option customises a Manager.
type Option func(*Manager)

// WithMissions replaces the mission pool.
func WithMissions(ms []Mission) Option {
	return func(m *Manager) { m.missions = append([]Mission(nil), ms...) }
}

// WithRange sets the capture range in km.
func WithRange(km float64) Option {
	return func(m *Manager) {
		if km > 0 {
			m.rangeKm = km
		}
	}
}

// WithRand sets the random source used to pick missions.
func WithRand(r *rand.Rand) Option {
	return func(m *Manager) {
		if r != nil {
			m.rng = r
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.log = l
		}
	}
}

// WithCaptureObserver registers fn to be called after every capture.
func WithCaptureObserver(fn func(Capture)) Option {
	return func(m *Manager) { m.observe = fn }
}

// Manager holds the active mission and checks it against the ISS position.
// It is safe for concurrent use.
type Manager struct {
	source   PositionSource
	missions []Mission
	rangeKm  float64
	rng      *rand.Rand
	log      logging.Logger
	observe  func(Capture)

	mu      sync.Mutex
	current *Mission
}

// NewManager returns a manager with no active mission. Call Start to pick one.
func NewManager(source PositionSource, opts ...Option) *Manager {
	m := &Manager{
		source:   source,
		missions: FallbackMissions(),
		rangeKm:  DefaultRange,
		rng:      rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		log:      logging.Noop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Range returns the capture range in km.
func (m *Manager) Range() float64 { return m.rangeKm }

// Start picks a random mission and makes it active.
func (m *Manager) Start(ctx context.Context) (Mission, error) {
	m.mu.Lock()
	mission, err := m.pickLocked()
	m.mu.Unlock()
	if err != nil {
		return Mission{}, err
	}
	m.log.Info(ctx, "cupola mission started",
		logging.String("mission", mission.ID),
		logging.String("category", mission.Category),
	)
	return mission, nil
}

// Select makes the mission with id active.
func (m *Manager) Select(id string) (Mission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ms := range m.missions {
		if ms.ID == id {
			picked := ms
			m.current = &picked
			return picked, nil
		}
	}
	return Mission{}, fmt.Errorf("%w: %q", ErrNoMission, id)
}

// pickLocked must be called with m.mu held.
func (m *Manager) pickLocked() (Mission, error) {
	if len(m.missions) == 0 {
		return Mission{}, ErrNoMission
	}
	picked := m.missions[m.rng.IntN(len(m.missions))]
	m.current = &picked
	return picked, nil
}

// Current returns the active mission.
func (m *Manager) Current() (Mission, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return Mission{}, false
	}
	return *m.current, true
}

// Check measures the ground distance from the ISS at t to the target.
func (m *Manager) Check(t time.Time) (Status, error) {
	mission, ok := m.Current()
	if !ok {
		return Status{}, ErrNoMission
	}
	pos, err := m.source.At(t)
	if err != nil {
		return Status{}, fmt.Errorf("locate iss: %w", err)
	}
	d := GroundDistance(pos.Latitude, pos.Longitude, mission.Latitude, mission.Longitude)
	return Status{Mission: mission, ISS: pos, Distance: d, InRange: d <= m.rangeKm}, nil
}

// Capture photographs the target if it is in range at t, then starts the
// next mission.
func (m *Manager) Capture(ctx context.Context, t time.Time) (Capture, error) {
	st, err := m.Check(t)
	if err != nil {
		return Capture{}, err
	}
	if !st.InRange {
		return Capture{}, fmt.Errorf("%w: %.0f km, need %.0f", ErrOutOfRange, st.Distance, m.rangeKm)
	}

	m.mu.Lock()
	if m.current == nil || m.current.ID != st.Mission.ID {
		m.mu.Unlock()
		return Capture{}, ErrNoMission
	}
	next, err := m.pickLocked()
	m.mu.Unlock()
	if err != nil {
		return Capture{}, err
	}

	c := Capture{
		Mission:  st.Mission,
		Photo:    PhotoFor(st.Mission.Category),
		Distance: st.Distance,
		Time:     t,
		Next:     next,
	}
	if m.observe != nil {
		m.observe(c)
	}
	m.log.Info(ctx, "cupola photo captured",
		logging.String("mission", c.Mission.ID),
		logging.Float("distance_km", c.Distance),
		logging.String("next", next.ID),
	)
	return c, nil
}

// NextPass scans from start in steps until the target is in range or within
// has elapsed. It returns the first in-range status, or the closest approach
// and false.
func (m *Manager) NextPass(ctx context.Context, start time.Time, within, step time.Duration) (Status, bool, error) {
	if step <= 0 {
		return Status{}, false, fmt.Errorf("scan step must be positive, got %v", step)
	}
	var closest Status
	for off := time.Duration(0); off <= within; off += step {
		if err := ctx.Err(); err != nil {
			return closest, false, err
		}
		st, err := m.Check(start.Add(off))
		if err != nil {
			return closest, false, err
		}
		if st.InRange {
			return st, true, nil
		}
		if off == 0 || st.Distance < closest.Distance {
			closest = st
		}
	}
	return closest, false, nil
}
