package core

import (
	"time"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/navuxneeth/NASA-Challenge/model"
)

// Integrate advances the spacecraft by dt seconds under the given controls.
//
// Thrust accelerates along the current heading, rotation is a direct rate
// assignment, and drag is applied once per call after the Euler step. The
// position is clamped to the playfield; velocity is kept when the wall is hit.
func Integrate(s model.Spacecraft, in model.ControlInput, dt float64, cfg Config) model.Spacecraft {
	if dt <= 0 {
		return s
	}
	if limit := cfg.MaxFrameDelta.Seconds(); limit > 0 && dt > limit {
		dt = limit
	}

	if in.Thrust {
		s.Velocity = r2.Add(s.Velocity, r2.Scale(cfg.ThrustPower*dt, HeadingVector(s.Heading)))
	}

	switch {
	case in.RotateLeft:
		s.AngularVelocity = -cfg.RotationSpeed
	case in.RotateRight:
		s.AngularVelocity = cfg.RotationSpeed
	default:
		s.AngularVelocity = 0
	}

	s.Heading += s.AngularVelocity * dt
	s.Position = r2.Add(s.Position, r2.Scale(dt, s.Velocity))

	s.Velocity = r2.Scale(cfg.Drag, s.Velocity)
	s.Position = cfg.Playfield.Clamp(s.Position)
	return s
}

// IntegrateDuration is Integrate with a time.Duration step.
func IntegrateDuration(s model.Spacecraft, in model.ControlInput, dt time.Duration, cfg Config) model.Spacecraft {
	return Integrate(s, in, dt.Seconds(), cfg)
}

// InitialSpacecraft returns a spacecraft at rest at the configured start
// position, pointing at the station's docking port.
func InitialSpacecraft(cfg Config, st model.Station) model.Spacecraft {
	return model.Spacecraft{
		Position: cfg.StartPosition,
		Heading:  st.BearingFrom(cfg.StartPosition),
	}
}
