package pilot

import (
	"math"

	"github.com/navuxneeth/NASA-Challenge/core"
	"github.com/navuxneeth/NASA-Challenge/model"
)

// Autopilot flies toward the docking port: it turns to the port bearing (or
// the docking heading once inside the approach ring) and thrusts while the
// speed is below a target proportional to the remaining distance.
type Autopilot struct {
	state   func() model.Spacecraft
	station model.Station
	cfg     core.Config

	// Gain converts remaining distance into a target speed (1/s).
	Gain float64
	// MinSpeed and MaxSpeed bound the target speed.
	MinSpeed float64
	MaxSpeed float64
	// HeadingTolerance is the heading error tolerated before rotating.
	HeadingTolerance float64
}

// NewAutopilot returns an autopilot reading the spacecraft through state.
func NewAutopilot(state func() model.Spacecraft, station model.Station, cfg core.Config) *Autopilot {
	return &Autopilot{
		state:            state,
		station:          station,
		cfg:              cfg,
		Gain:             0.2,
		MinSpeed:         4,
		MaxSpeed:         30,
		HeadingTolerance: 0.05,
	}
}

// Attach is a no-op; the autopilot has no listeners.
func (a *Autopilot) Attach() {}

// Detach is a no-op.
func (a *Autopilot) Detach() {}

// Sample decides this frame's commands from the current spacecraft state.
func (a *Autopilot) Sample() model.ControlInput {
	s := a.state()
	port := a.station.Port()
	dist := core.Distance(s.Position, port)

	target := a.station.BearingFrom(s.Position)
	if dist < a.cfg.ApproachRadius {
		target = a.station.DockingHeading
	}
	headingErr := core.WrapAngle(target - s.Heading)

	var in model.ControlInput
	switch {
	case headingErr > a.HeadingTolerance:
		in.RotateRight = true
	case headingErr < -a.HeadingTolerance:
		in.RotateLeft = true
	}

	wantSpeed := math.Max(a.MinSpeed, math.Min(a.MaxSpeed, a.Gain*dist))
	if math.Abs(headingErr) <= 4*a.HeadingTolerance && s.Speed() < wantSpeed {
		in.Thrust = true
	}
	return in
}
