package core

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/navuxneeth/NASA-Challenge/internal/logging"
	"github.com/navuxneeth/NASA-Challenge/model"
)

const tracerName = "github.com/navuxneeth/NASA-Challenge/core"

// Span attribute keys set on every docking.session span.
const (
	AttemptKey  = attribute.Key("docking.attempt")
	AdvisoryKey = attribute.Key("docking.advisory")
	DistanceKey = attribute.Key("docking.distance")
	SpeedKey    = attribute.Key("docking.speed")
	OutcomeKey  = attribute.Key("docking.outcome")
)

// Option customises a Controller.
type Option func(*Controller)

// WithInput sets the input collaborator. Without one the spacecraft drifts.
func WithInput(in InputSource) Option {
	return func(c *Controller) {
		if in != nil {
			c.input = in
		}
	}
}

// WithRenderer adds a renderer. Several renderers may be registered.
func WithRenderer(r Renderer) Option {
	return func(c *Controller) {
		if r != nil {
			c.renderers = append(c.renderers, r)
		}
	}
}

// WithStatusDisplay sets the status line collaborator.
func WithStatusDisplay(d StatusDisplay) Option {
	return func(c *Controller) { c.display = d }
}

// WithRewards sets the reward collaborator.
func WithRewards(r RewardSink) Option {
	return func(c *Controller) { c.rewards = r }
}

// WithAchievements sets the store holding the "already docked once" flag.
// Without one the flag lives only as long as the controller.
func WithAchievements(a Achievements) Option {
	return func(c *Controller) {
		if a != nil {
			c.achievements = a
		}
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m MetricsRecorder) Option {
	return func(c *Controller) {
		if m != nil {
			c.metrics = m
		}
	}
}

// WithLogger sets the base logger.
func WithLogger(l logging.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.log = l
		}
	}
}

// WithTracer overrides the tracer used for session spans.
func WithTracer(t trace.Tracer) Option {
	return func(c *Controller) {
		if t != nil {
			c.tracer = t
		}
	}
}

// Controller owns one spacecraft and runs docking sessions on a Scheduler.
//
// It is not safe for concurrent use: every method must be called from the
// scheduler's goroutine, or while the scheduler is not running.
type Controller struct {
	cfg     Config
	station model.Station
	sched   Scheduler

	input        InputSource
	renderers    []Renderer
	display      StatusDisplay
	rewards      RewardSink
	achievements Achievements
	metrics      MetricsRecorder
	log          logging.Logger
	tracer       trace.Tracer

	state    model.SessionState
	ship     model.Spacecraft
	last     Evaluation
	status   model.Status
	attempts int
	seq      uint64
	elapsed  time.Duration

	ctx         context.Context
	sessionLog  logging.Logger
	span        trace.Span
	stopFrames  func()
	cancelReset func()
	attached    bool
}

// NewController validates cfg and returns an Idle controller.
func NewController(cfg Config, station model.Station, sched Scheduler, opts ...Option) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if sched == nil {
		return nil, fmt.Errorf("new controller: scheduler is nil")
	}
	c := &Controller{
		cfg:          cfg,
		station:      station,
		sched:        sched,
		input:        nopInput{},
		achievements: newMemoryAchievements(),
		metrics:      nopMetrics{},
		log:          logging.Noop(),
		tracer:       otel.Tracer(tracerName),
		state:        model.SessionIdle,
		ctx:          context.Background(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.ship = InitialSpacecraft(cfg, station)
	c.last = Evaluate(c.ship, station, cfg)
	c.sessionLog = c.log
	return c, nil
}

// Config returns the controller's configuration.
func (c *Controller) Config() Config { return c.cfg }

// Station returns the docking target.
func (c *Controller) Station() model.Station { return c.station }

// State returns the session state.
func (c *Controller) State() model.SessionState { return c.state }

// Spacecraft returns a copy of the current spacecraft state.
func (c *Controller) Spacecraft() model.Spacecraft { return c.ship }

// Status returns the current status line.
func (c *Controller) Status() model.Status { return c.status }

// Advisory returns the advisory from the latest frame.
func (c *Controller) Advisory() model.Advisory { return c.last.Advisory }

// LastEvaluation returns the evaluator output from the latest frame.
func (c *Controller) LastEvaluation() Evaluation { return c.last }

// Attempts returns how many sessions have been started.
func (c *Controller) Attempts() int { return c.attempts }

// Elapsed returns the simulated time of the current or last session.
func (c *Controller) Elapsed() time.Duration { return c.elapsed }

// Start begins a session. It is ignored while a session is running and
// reports whether a new session started. Starting from a terminal state
// resets first.
func (c *Controller) Start(ctx context.Context) bool {
	if ctx == nil {
		ctx = context.Background()
	}
	if c.state == model.SessionRunning {
		c.sessionLog.Debug(ctx, "start ignored; session already running")
		return false
	}
	if c.state.Terminal() {
		c.Reset()
	}

	c.attempts++
	ctx, log := logging.WithSessionLogger(ctx, c.log)
	log = log.With(logging.Int("attempt", c.attempts))
	ctx, span := c.tracer.Start(ctx, "docking.session",
		trace.WithAttributes(AttemptKey.Int(c.attempts)))

	c.ctx = logging.ContextWithLogger(ctx, log)
	c.sessionLog = log
	c.span = span
	c.ship = InitialSpacecraft(c.cfg, c.station)
	c.last = Evaluate(c.ship, c.station, c.cfg)
	c.seq = 0
	c.elapsed = 0
	c.setStatus(model.Status{})

	c.input.Attach()
	c.attached = true
	c.stopFrames = c.sched.AddListener(c.Tick)
	c.state = model.SessionRunning

	c.metrics.SessionStarted()
	log.Info(c.ctx, "docking session started",
		logging.Float("x", c.ship.Position.X),
		logging.Float("y", c.ship.Position.Y),
		logging.Float("heading", c.ship.Heading),
	)
	return true
}

// Tick advances the running session by one frame of length delta. It is the
// listener registered with the Scheduler and does nothing unless Running.
func (c *Controller) Tick(delta time.Duration) {
	if c.state != model.SessionRunning {
		return
	}
	began := time.Now()

	step := c.cfg.FrameStep(delta)
	in := c.input.Sample()
	c.ship = IntegrateDuration(c.ship, in, step, c.cfg)
	c.elapsed += step

	ev := Evaluate(c.ship, c.station, c.cfg)
	if ev.Advisory != c.last.Advisory {
		c.metrics.AdvisoryChanged(ev.Advisory.String())
		c.span.AddEvent("advisory", trace.WithAttributes(
			AdvisoryKey.String(ev.Advisory.String()),
			DistanceKey.Float64(ev.Distance),
			SpeedKey.Float64(ev.Speed),
		))
		c.sessionLog.Debug(c.ctx, "advisory changed",
			logging.String("from", c.last.Advisory.String()),
			logging.String("to", ev.Advisory.String()),
			logging.Float("distance", ev.Distance),
			logging.Float("speed", ev.Speed),
		)
	}
	c.last = ev

	switch ev.Advisory {
	case model.AdvisorySuccess:
		c.state = model.SessionSucceeded
	case model.AdvisoryCollision:
		c.state = model.SessionFailed
	}
	c.setStatus(StatusFor(ev.Advisory))

	c.seq++
	c.render(model.Frame{
		Seq:        c.seq,
		Elapsed:    c.elapsed,
		Spacecraft: c.ship,
		Station:    c.station,
		Input:      in,
		Advisory:   ev.Advisory,
		Status:     c.status,
		State:      c.state,
		Distance:   ev.Distance,
		Speed:      ev.Speed,
	})

	if c.state.Terminal() {
		c.finish(ev)
	}
	c.metrics.FrameProcessed(time.Since(began))
}

// Reset returns the controller to Idle with a fresh spacecraft. Any running
// session is abandoned and every registration with the host is released.
func (c *Controller) Reset() {
	c.teardown()
	c.state = model.SessionIdle
	c.ship = InitialSpacecraft(c.cfg, c.station)
	c.last = Evaluate(c.ship, c.station, c.cfg)
	c.setStatus(model.Status{})
}

// Stop tears the controller down for a closing view: the frame listener,
// input attachment and pending reset are released and the state becomes
// Idle. It may be called any number of times.
func (c *Controller) Stop() {
	c.teardown()
	c.state = model.SessionIdle
}

func (c *Controller) teardown() {
	c.stopLoop()
	if c.cancelReset != nil {
		c.cancelReset()
		c.cancelReset = nil
	}
	if c.state == model.SessionRunning {
		c.metrics.SessionFinished("aborted", c.elapsed)
		c.sessionLog.Info(c.ctx, "docking session aborted", logging.Duration("elapsed", c.elapsed))
		c.endSpan("aborted")
	}
}

func (c *Controller) stopLoop() {
	if c.stopFrames != nil {
		c.stopFrames()
		c.stopFrames = nil
	}
	if c.attached {
		c.input.Detach()
		c.attached = false
	}
}

func (c *Controller) finish(ev Evaluation) {
	c.stopLoop()

	outcome := c.state.String()
	if c.state == model.SessionSucceeded {
		c.reward()
	}
	c.metrics.SessionFinished(outcome, c.elapsed)
	c.sessionLog.Info(c.ctx, "docking session finished",
		logging.String("outcome", outcome),
		logging.Duration("elapsed", c.elapsed),
		logging.Float("distance", ev.Distance),
		logging.Float("speed", ev.Speed),
		logging.Float("alignment_error", ev.AlignmentError),
	)
	c.endSpan(outcome)

	c.cancelReset = c.sched.AfterFunc(c.cfg.ResetDelay, func() {
		c.cancelReset = nil
		c.Reset()
	})
}

func (c *Controller) reward() {
	first := !c.achievements.Achieved(DockingTask)
	points := c.cfg.RepeatDockingPoints
	if first {
		points = c.cfg.FirstDockingPoints
	}
	c.achievements.MarkAchieved(DockingTask)

	if c.rewards == nil {
		return
	}
	c.guard("award points", func() error {
		return c.rewards.Award(points)
	}, logging.Int("points", points))
	granted := false
	c.guard("grant badge", func() error {
		granted = c.rewards.GrantBadgeOnce(DockingBadge, !first)
		return nil
	}, logging.String("badge", DockingBadge))
	c.sessionLog.Info(c.ctx, "docking reward issued",
		logging.Int("points", points),
		logging.Bool("first", first),
		logging.Bool("badge_granted", granted),
	)
}

func (c *Controller) render(f model.Frame) {
	for _, r := range c.renderers {
		c.guard("render", func() error {
			return r.Render(c.ctx, f)
		}, logging.Int("seq", int(f.Seq)))
	}
}

func (c *Controller) setStatus(s model.Status) {
	c.status = s
	if c.display == nil {
		return
	}
	c.guard("status display", func() error {
		return c.display.SetStatus(s)
	})
}

// guard calls a collaborator. Errors and panics are logged and swallowed so
// a broken view never stops the frame loop.
func (c *Controller) guard(what string, fn func() error, fields ...logging.Field) {
	defer func() {
		if r := recover(); r != nil {
			c.sessionLog.Warn(c.ctx, what+" panicked", append(fields, logging.Any("panic", r))...)
		}
	}()
	if err := fn(); err != nil {
		c.sessionLog.Warn(c.ctx, what+" failed", append(fields, logging.Err(err))...)
	}
}

func (c *Controller) endSpan(outcome string) {
	if c.span == nil {
		return
	}
	c.span.SetAttributes(OutcomeKey.String(outcome))
	if outcome == model.SessionFailed.String() {
		c.span.SetStatus(codes.Error, "collision")
	}
	c.span.End()
	c.span = nil
}

type memoryAchievements map[string]bool

func newMemoryAchievements() memoryAchievements { return make(memoryAchievements) }

func (m memoryAchievements) Achieved(task string) bool { return m[task] }
func (m memoryAchievements) MarkAchieved(task string)  { m[task] = true }
