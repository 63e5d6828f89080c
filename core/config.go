package core

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/navuxneeth/NASA-Challenge/model"
)

// Canonical tuning for the docking game. Tests target these exact values.
const (
	DefaultPlayfieldWidth  = 400.0
	DefaultPlayfieldHeight = 400.0
	DefaultPlayfieldMargin = 20.0

	DefaultThrustPower   = 50.0 // units/s²
	DefaultRotationSpeed = 2.0  // rad/s
	DefaultDrag          = 0.99 // per frame

	DefaultCaptureRadius  = 30.0
	DefaultApproachRadius = 80.0
	DefaultSpeedThreshold = 10.0 // units/s
	DefaultAngleThreshold = 0.3  // rad

	DefaultResetDelay    = 2 * time.Second
	DefaultMaxFrameDelta = 100 * time.Millisecond

	DefaultFirstDockingPoints  = 100
	DefaultRepeatDockingPoints = 50
	DockingBadge               = "Docking Specialist"
	DockingBadgeIcon           = "🎯"
	DockingTask                = "docking"
)

// ErrInvalidConfig is returned when a Config fails validation.
var ErrInvalidConfig = errors.New("invalid docking config")

// Playfield is the rectangle the spacecraft is confined to.
type Playfield struct {
	Width  float64 `mapstructure:"width" yaml:"width"`
	Height float64 `mapstructure:"height" yaml:"height"`
	Margin float64 `mapstructure:"margin" yaml:"margin"`
}

// Clamp returns p limited to the playfield's inner margin.
func (pf Playfield) Clamp(p model.Vec2) model.Vec2 {
	return model.Vec2{
		X: clamp(p.X, pf.Margin, pf.Width-pf.Margin),
		Y: clamp(p.Y, pf.Margin, pf.Height-pf.Margin),
	}
}

// Contains reports whether p lies inside the inner margin.
func (pf Playfield) Contains(p model.Vec2) bool {
	return p.X >= pf.Margin && p.X <= pf.Width-pf.Margin &&
		p.Y >= pf.Margin && p.Y <= pf.Height-pf.Margin
}

// Config is the single parameter set for integrator, evaluator and controller.
type Config struct {
	Playfield Playfield `mapstructure:"playfield" yaml:"playfield"`

	ThrustPower   float64 `mapstructure:"thrust_power" yaml:"thrust_power"`
	RotationSpeed float64 `mapstructure:"rotation_speed" yaml:"rotation_speed"`
	Drag          float64 `mapstructure:"drag" yaml:"drag"`

	CaptureRadius  float64 `mapstructure:"capture_radius" yaml:"capture_radius"`
	ApproachRadius float64 `mapstructure:"approach_radius" yaml:"approach_radius"`
	SpeedThreshold float64 `mapstructure:"speed_threshold" yaml:"speed_threshold"`
	AngleThreshold float64 `mapstructure:"angle_threshold" yaml:"angle_threshold"`

	ResetDelay    time.Duration `mapstructure:"reset_delay" yaml:"reset_delay"`
	MaxFrameDelta time.Duration `mapstructure:"max_frame_delta" yaml:"max_frame_delta"`

	StartPosition model.Vec2 `mapstructure:"start_position" yaml:"start_position"`

	FirstDockingPoints  int `mapstructure:"first_docking_points" yaml:"first_docking_points"`
	RepeatDockingPoints int `mapstructure:"repeat_docking_points" yaml:"repeat_docking_points"`
}

// DefaultConfig returns the canonical tuning.
func DefaultConfig() Config {
	return Config{
		Playfield: Playfield{
			Width:  DefaultPlayfieldWidth,
			Height: DefaultPlayfieldHeight,
			Margin: DefaultPlayfieldMargin,
		},
		ThrustPower:         DefaultThrustPower,
		RotationSpeed:       DefaultRotationSpeed,
		Drag:                DefaultDrag,
		CaptureRadius:       DefaultCaptureRadius,
		ApproachRadius:      DefaultApproachRadius,
		SpeedThreshold:      DefaultSpeedThreshold,
		AngleThreshold:      DefaultAngleThreshold,
		ResetDelay:          DefaultResetDelay,
		MaxFrameDelta:       DefaultMaxFrameDelta,
		StartPosition:       model.Vec2{X: 200, Y: 350},
		FirstDockingPoints:  DefaultFirstDockingPoints,
		RepeatDockingPoints: DefaultRepeatDockingPoints,
	}
}

// DefaultStation returns the station used by the canonical game: docking port
// on the underside, approached with the spacecraft pointing up.
func DefaultStation() model.Station {
	return model.Station{
		Position:       model.Vec2{X: 200, Y: 50},
		PortOffset:     model.Vec2{X: 0, Y: 35},
		PortRadius:     15,
		DockingHeading: -math.Pi / 2,
	}
}

// Validate checks that the configuration can drive a session.
func (c Config) Validate() error {
	switch {
	case c.Playfield.Margin < 0:
		return fmt.Errorf("%w: negative playfield margin", ErrInvalidConfig)
	case c.Playfield.Width <= 2*c.Playfield.Margin || c.Playfield.Height <= 2*c.Playfield.Margin:
		return fmt.Errorf("%w: playfield %vx%v too small for margin %v",
			ErrInvalidConfig, c.Playfield.Width, c.Playfield.Height, c.Playfield.Margin)
	case c.ThrustPower <= 0:
		return fmt.Errorf("%w: thrust_power must be positive", ErrInvalidConfig)
	case c.RotationSpeed <= 0:
		return fmt.Errorf("%w: rotation_speed must be positive", ErrInvalidConfig)
	case c.Drag <= 0 || c.Drag > 1:
		return fmt.Errorf("%w: drag %v outside (0, 1]", ErrInvalidConfig, c.Drag)
	case c.CaptureRadius <= 0:
		return fmt.Errorf("%w: capture_radius must be positive", ErrInvalidConfig)
	case c.ApproachRadius < c.CaptureRadius:
		return fmt.Errorf("%w: approach_radius %v below capture_radius %v",
			ErrInvalidConfig, c.ApproachRadius, c.CaptureRadius)
	case c.SpeedThreshold <= 0:
		return fmt.Errorf("%w: speed_threshold must be positive", ErrInvalidConfig)
	case c.AngleThreshold <= 0 || c.AngleThreshold > math.Pi:
		return fmt.Errorf("%w: angle_threshold %v outside (0, π]", ErrInvalidConfig, c.AngleThreshold)
	case c.ResetDelay < 0:
		return fmt.Errorf("%w: negative reset_delay", ErrInvalidConfig)
	case c.MaxFrameDelta < 0:
		return fmt.Errorf("%w: negative max_frame_delta", ErrInvalidConfig)
	case c.FirstDockingPoints < 0 || c.RepeatDockingPoints < 0:
		return fmt.Errorf("%w: negative reward points", ErrInvalidConfig)
	case !c.Playfield.Contains(c.StartPosition):
		return fmt.Errorf("%w: start position (%v, %v) outside playfield",
			ErrInvalidConfig, c.StartPosition.X, c.StartPosition.Y)
	}
	return nil
}

// FrameStep is the simulated time a frame of length delta accounts for:
// never negative and at most MaxFrameDelta when a cap is set.
func (c Config) FrameStep(delta time.Duration) time.Duration {
	if delta < 0 {
		return 0
	}
	if c.MaxFrameDelta > 0 && delta > c.MaxFrameDelta {
		return c.MaxFrameDelta
	}
	return delta
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
