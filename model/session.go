package model

import "time"

// SessionState is the lifecycle state of a docking session.
type SessionState int

const (
	SessionIdle SessionState = iota
	SessionRunning
	SessionSucceeded
	SessionFailed
)

func (s SessionState) String() string {
	switch s {
	case SessionIdle:
		return "idle"
	case SessionRunning:
		return "running"
	case SessionSucceeded:
		return "succeeded"
	case SessionFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether the session has reached an outcome.
func (s SessionState) Terminal() bool {
	return s == SessionSucceeded || s == SessionFailed
}

// Advisory classifies the spacecraft relative to the docking port for one frame.
type Advisory int

const (
	AdvisoryNone Advisory = iota
	AdvisoryApproaching
	AdvisoryMisaligned
	AdvisorySuccess
	AdvisoryCollision
)

func (a Advisory) String() string {
	switch a {
	case AdvisoryNone:
		return "none"
	case AdvisoryApproaching:
		return "approaching"
	case AdvisoryMisaligned:
		return "misaligned"
	case AdvisorySuccess:
		return "success"
	case AdvisoryCollision:
		return "collision"
	default:
		return "unknown"
	}
}

// Terminal reports whether the advisory ends the session.
func (a Advisory) Terminal() bool {
	return a == AdvisorySuccess || a == AdvisoryCollision
}

// Severity is the coarse tag shown alongside a status line.
type Severity int

const (
	SeverityNeutral Severity = iota
	SeverityAdvisory
	SeveritySuccess
	SeverityFailure
)

func (s Severity) String() string {
	switch s {
	case SeverityNeutral:
		return "neutral"
	case SeverityAdvisory:
		return "advisory"
	case SeveritySuccess:
		return "success"
	case SeverityFailure:
		return "failure"
	default:
		return "unknown"
	}
}

// Status is the one-line text displayed to the player.
type Status struct {
	Text     string   `msgpack:"text"`
	Severity Severity `msgpack:"severity"`
}

// Frame is everything a renderer needs to draw one tick.
type Frame struct {
	Seq        uint64        `msgpack:"seq"`
	Elapsed    time.Duration `msgpack:"elapsed"`
	Spacecraft Spacecraft    `msgpack:"ship"`
	Station    Station       `msgpack:"station"`
	Input      ControlInput  `msgpack:"input"`
	Advisory   Advisory      `msgpack:"advisory"`
	Status     Status        `msgpack:"status"`
	State      SessionState  `msgpack:"state"`
	Distance   float64       `msgpack:"distance"`
	Speed      float64       `msgpack:"speed"`
}
