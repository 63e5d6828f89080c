package model

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Vec2 is a playfield coordinate or vector in distance units.
type Vec2 = r2.Vec

// Spacecraft is the controllable vehicle of a docking session.
// Heading is in radians, measured from +X towards +Y (screen down).
type Spacecraft struct {
	Position        Vec2    `msgpack:"pos"`
	Velocity        Vec2    `msgpack:"vel"`
	Heading         float64 `msgpack:"hdg"`
	AngularVelocity float64 `msgpack:"omega"`
}

// Speed returns the magnitude of the velocity vector.
func (s Spacecraft) Speed() float64 {
	return r2.Norm(s.Velocity)
}

// Station is the docking target. It does not move during a session.
type Station struct {
	Position Vec2 `msgpack:"pos"`
	// PortOffset locates the docking port relative to Position.
	PortOffset Vec2 `msgpack:"port_offset"`
	// PortRadius is the drawn size of the port. Capture uses
	// Config.CaptureRadius only.
	PortRadius float64 `msgpack:"port_radius"`
	// DockingHeading is the spacecraft heading required to dock.
	DockingHeading float64 `msgpack:"docking_heading"`
}

// Port returns the docking-port point in playfield coordinates.
func (s Station) Port() Vec2 {
	return r2.Add(s.Position, s.PortOffset)
}

// BearingFrom returns the heading that points from p at the docking port.
func (s Station) BearingFrom(p Vec2) float64 {
	d := r2.Sub(s.Port(), p)
	if d.X == 0 && d.Y == 0 {
		return s.DockingHeading
	}
	return math.Atan2(d.Y, d.X)
}

// ControlInput is a snapshot of the commands held during one frame.
type ControlInput struct {
	Thrust      bool `msgpack:"thrust"`
	RotateLeft  bool `msgpack:"left"`
	RotateRight bool `msgpack:"right"`
}

// Idle reports whether no command is held.
func (c ControlInput) Idle() bool {
	return !c.Thrust && !c.RotateLeft && !c.RotateRight
}
