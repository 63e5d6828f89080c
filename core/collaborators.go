package core

import (
	"context"
	"time"

	"github.com/navuxneeth/NASA-Challenge/model"
)

// InputSource exposes the commands currently held by the player. The
// controller polls it once per frame between Attach and Detach.
type InputSource interface {
	Sample() model.ControlInput
	// Attach starts collecting input (e.g. installs key listeners).
	Attach()
	// Detach stops collecting input. It must be safe to call repeatedly.
	Detach()
}

// Renderer draws one frame. It owns every pixel decision.
type Renderer interface {
	Render(ctx context.Context, f model.Frame) error
}

// StatusDisplay shows the status line.
type StatusDisplay interface {
	SetStatus(s model.Status) error
}

// RewardSink receives points and badges on a successful docking.
type RewardSink interface {
	Award(points int) error
	// GrantBadgeOnce grants the badge unless alreadyGranted is set and
	// reports whether it was granted by this call.
	GrantBadgeOnce(name string, alreadyGranted bool) bool
}

// Achievements tracks task completion across sessions.
type Achievements interface {
	Achieved(task string) bool
	MarkAchieved(task string)
}

// Scheduler is the host frame driver seen from the controller.
type Scheduler interface {
	AddListener(fn func(delta time.Duration)) (remove func())
	AfterFunc(delay time.Duration, fn func()) (cancel func())
}

// MetricsRecorder is satisfied by the observability collector so the
// controller can report without depending on Prometheus.
type MetricsRecorder interface {
	SessionStarted()
	SessionFinished(outcome string, elapsed time.Duration)
	FrameProcessed(d time.Duration)
	AdvisoryChanged(advisory string)
}

type nopInput struct{}

func (nopInput) Sample() model.ControlInput { return model.ControlInput{} }
func (nopInput) Attach()                    {}
func (nopInput) Detach()                    {}

type nopMetrics struct{}

func (nopMetrics) SessionStarted()                       {}
func (nopMetrics) SessionFinished(string, time.Duration) {}
func (nopMetrics) FrameProcessed(time.Duration)          {}
func (nopMetrics) AdvisoryChanged(string)                {}
