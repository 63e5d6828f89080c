package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/navuxneeth/NASA-Challenge/model"
	"github.com/navuxneeth/NASA-Challenge/timectrl"
)

const frame = time.Second / 60

type fakeInput struct {
	held     model.ControlInput
	attached int
	detached int
	samples  int
}

func (f *fakeInput) Sample() model.ControlInput {
	f.samples++
	return f.held
}

func (f *fakeInput) Attach() { f.attached++ }
func (f *fakeInput) Detach() { f.detached++ }

type fakeRewards struct {
	points []int
	badges []string
	owned  map[string]bool
}

func (f *fakeRewards) Award(points int) error {
	f.points = append(f.points, points)
	return nil
}

func (f *fakeRewards) GrantBadgeOnce(name string, alreadyGranted bool) bool {
	if alreadyGranted || f.owned[name] {
		return false
	}
	if f.owned == nil {
		f.owned = make(map[string]bool)
	}
	f.owned[name] = true
	f.badges = append(f.badges, name)
	return true
}

type recordingRenderer struct {
	frames []model.Frame
	err    error
}

func (r *recordingRenderer) Render(_ context.Context, f model.Frame) error {
	r.frames = append(r.frames, f)
	return r.err
}

type panickingRenderer struct{ calls int }

func (r *panickingRenderer) Render(context.Context, model.Frame) error {
	r.calls++
	panic("canvas detached")
}

type panickingDisplay struct{}

func (panickingDisplay) SetStatus(model.Status) error { panic("status element missing") }

type panickingRewards struct{ calls int }

func (r *panickingRewards) Award(int) error {
	r.calls++
	panic("storage quota exceeded")
}

func (r *panickingRewards) GrantBadgeOnce(string, bool) bool {
	r.calls++
	panic("storage quota exceeded")
}

type recordingDisplay struct {
	statuses []model.Status
}

func (d *recordingDisplay) SetStatus(s model.Status) error {
	d.statuses = append(d.statuses, s)
	return nil
}

type countingMetrics struct {
	started  int
	outcomes []string
	frames   int
}

func (m *countingMetrics) SessionStarted() { m.started++ }

func (m *countingMetrics) SessionFinished(outcome string, _ time.Duration) {
	m.outcomes = append(m.outcomes, outcome)
}

func (m *countingMetrics) FrameProcessed(time.Duration) { m.frames++ }
func (m *countingMetrics) AdvisoryChanged(string)       {}

// nearPortConfig starts the spacecraft at rest inside the capture radius,
// pointing at the port, so the first frame docks.
func nearPortConfig() Config {
	cfg := DefaultConfig()
	cfg.StartPosition = model.Vec2{X: 200, Y: 100}
	return cfg
}

func newTestController(t *testing.T, cfg Config, opts ...Option) (*Controller, *timectrl.FrameDriver) {
	t.Helper()
	driver := timectrl.NewFrameDriver(time.Unix(0, 0), frame, timectrl.Accelerated)
	c, err := NewController(cfg, DefaultStation(), driver, opts...)
	require.NoError(t, err)
	return c, driver
}

func TestNewControllerRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Drag = 1.5
	driver := timectrl.NewFrameDriver(time.Unix(0, 0), frame, timectrl.Accelerated)

	_, err := NewController(cfg, DefaultStation(), driver)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidConfig))

	_, err = NewController(DefaultConfig(), DefaultStation(), nil)
	require.Error(t, err)
}

func TestControllerStartsIdle(t *testing.T) {
	c, driver := newTestController(t, DefaultConfig())

	assert.Equal(t, model.SessionIdle, c.State())
	driver.StepFrames(10)
	assert.Equal(t, model.SessionIdle, c.State())
	assert.Equal(t, DefaultConfig().StartPosition, c.Spacecraft().Position)
	assert.Zero(t, driver.ListenerCount())
}

func TestControllerStartRegistersAndRuns(t *testing.T) {
	in := &fakeInput{}
	c, driver := newTestController(t, DefaultConfig(), WithInput(in))

	require.True(t, c.Start(context.Background()))
	assert.Equal(t, model.SessionRunning, c.State())
	assert.Equal(t, 1, driver.ListenerCount())
	assert.Equal(t, 1, in.attached)

	driver.StepFrames(30)
	assert.Equal(t, 30, in.samples)
	assert.Equal(t, model.SessionRunning, c.State())
	assert.Equal(t, model.AdvisoryNone, c.Advisory())
	assert.Equal(t, model.SeverityNeutral, c.Status().Severity)
	assert.Equal(t, 30*frame, c.Elapsed())
}

func TestControllerStartWhileRunningIsNoop(t *testing.T) {
	in := &fakeInput{held: model.ControlInput{Thrust: true}}
	c, driver := newTestController(t, DefaultConfig(), WithInput(in))

	require.True(t, c.Start(context.Background()))
	driver.StepFrames(20)
	before := c.Spacecraft()

	assert.False(t, c.Start(context.Background()))
	assert.Equal(t, model.SessionRunning, c.State())
	assert.Equal(t, before, c.Spacecraft())
	assert.Equal(t, 1, c.Attempts())
	assert.Equal(t, 1, driver.ListenerCount())
	assert.Equal(t, 1, in.attached)
}

func TestControllerTickIgnoredWhenIdle(t *testing.T) {
	in := &fakeInput{held: model.ControlInput{Thrust: true}}
	c, _ := newTestController(t, DefaultConfig(), WithInput(in))

	c.Tick(frame)
	assert.Zero(t, in.samples)
	assert.Equal(t, DefaultConfig().StartPosition, c.Spacecraft().Position)
}

func TestControllerDocksAndRewardsOnce(t *testing.T) {
	rewards := &fakeRewards{}
	display := &recordingDisplay{}
	c, driver := newTestController(t, nearPortConfig(),
		WithRewards(rewards), WithStatusDisplay(display))

	require.True(t, c.Start(context.Background()))
	driver.Step(frame)

	assert.Equal(t, model.SessionSucceeded, c.State())
	assert.Equal(t, model.SeveritySuccess, c.Status().Severity)
	assert.Equal(t, []int{DefaultFirstDockingPoints}, rewards.points)
	assert.Equal(t, []string{DockingBadge}, rewards.badges)
	assert.Zero(t, driver.ListenerCount(), "terminal state must stop the frame loop")

	pos := c.Spacecraft().Position
	driver.StepFrames(30)
	assert.Equal(t, pos, c.Spacecraft().Position, "integrator must not advance after docking")
	assert.Equal(t, []int{DefaultFirstDockingPoints}, rewards.points, "reward issued exactly once")

	last := display.statuses[len(display.statuses)-1]
	assert.Equal(t, model.SeveritySuccess, last.Severity)
}

func TestControllerRepeatSuccessGivesReducedReward(t *testing.T) {
	rewards := &fakeRewards{}
	c, driver := newTestController(t, nearPortConfig(), WithRewards(rewards))

	require.True(t, c.Start(context.Background()))
	driver.Step(frame)
	require.Equal(t, model.SessionSucceeded, c.State())

	driver.Step(DefaultResetDelay)
	require.Equal(t, model.SessionIdle, c.State())

	require.True(t, c.Start(context.Background()))
	driver.Step(frame)
	require.Equal(t, model.SessionSucceeded, c.State())

	assert.Equal(t, []int{DefaultFirstDockingPoints, DefaultRepeatDockingPoints}, rewards.points)
	assert.Equal(t, []string{DockingBadge}, rewards.badges)
}

func TestControllerSharedAchievementsAcrossControllers(t *testing.T) {
	ach := newMemoryAchievements()
	first := &fakeRewards{}
	second := &fakeRewards{}

	c1, d1 := newTestController(t, nearPortConfig(), WithRewards(first), WithAchievements(ach))
	require.True(t, c1.Start(context.Background()))
	d1.Step(frame)

	c2, d2 := newTestController(t, nearPortConfig(), WithRewards(second), WithAchievements(ach))
	require.True(t, c2.Start(context.Background()))
	d2.Step(frame)

	assert.Equal(t, []int{DefaultFirstDockingPoints}, first.points)
	assert.Equal(t, []int{DefaultRepeatDockingPoints}, second.points)
	assert.Empty(t, second.badges)
}

func TestControllerCollisionFailsWithoutReward(t *testing.T) {
	cfg := DefaultConfig()
	cfg.StartPosition = model.Vec2{X: 200, Y: 110}
	cfg.ThrustPower = 500
	in := &fakeInput{held: model.ControlInput{Thrust: true}}
	rewards := &fakeRewards{}
	c, driver := newTestController(t, cfg, WithInput(in), WithRewards(rewards))

	require.True(t, c.Start(context.Background()))
	driver.Step(50 * time.Millisecond)

	assert.Equal(t, model.SessionFailed, c.State())
	assert.Equal(t, model.AdvisoryCollision, c.Advisory())
	assert.Equal(t, model.SeverityFailure, c.Status().Severity)
	assert.Empty(t, rewards.points)
	assert.Empty(t, rewards.badges)
	assert.Zero(t, driver.ListenerCount())
	assert.Equal(t, 1, in.detached)
}

func TestControllerMisalignedIsNotTerminal(t *testing.T) {
	cfg := nearPortConfig()
	st := DefaultStation()
	st.DockingHeading = 0
	driver := timectrl.NewFrameDriver(time.Unix(0, 0), frame, timectrl.Accelerated)
	c, err := NewController(cfg, st, driver)
	require.NoError(t, err)

	require.True(t, c.Start(context.Background()))
	driver.StepFrames(5)

	assert.Equal(t, model.SessionRunning, c.State())
	assert.Equal(t, model.AdvisoryMisaligned, c.Advisory())
	assert.Equal(t, model.SeverityAdvisory, c.Status().Severity)
}

func TestControllerResetsAfterDelay(t *testing.T) {
	c, driver := newTestController(t, nearPortConfig())

	require.True(t, c.Start(context.Background()))
	driver.Step(frame)
	require.Equal(t, model.SessionSucceeded, c.State())
	assert.Equal(t, 1, driver.PendingTimers())

	driver.Step(DefaultResetDelay - time.Millisecond)
	assert.Equal(t, model.SessionSucceeded, c.State())

	driver.Step(time.Millisecond)
	assert.Equal(t, model.SessionIdle, c.State())
	assert.Empty(t, c.Status().Text)
	assert.Equal(t, nearPortConfig().StartPosition, c.Spacecraft().Position)

	require.True(t, c.Start(context.Background()))
	assert.Equal(t, model.SessionRunning, c.State())
	assert.Equal(t, 2, c.Attempts())
	assert.Zero(t, c.Spacecraft().Speed())
}

func TestControllerStartFromTerminalResetsFirst(t *testing.T) {
	cfg := DefaultConfig()
	cfg.StartPosition = model.Vec2{X: 200, Y: 110}
	cfg.ThrustPower = 500
	in := &fakeInput{held: model.ControlInput{Thrust: true}}
	c, driver := newTestController(t, cfg, WithInput(in))

	require.True(t, c.Start(context.Background()))
	driver.Step(50 * time.Millisecond)
	require.Equal(t, model.SessionFailed, c.State())

	in.held = model.ControlInput{}
	require.True(t, c.Start(context.Background()))
	assert.Equal(t, model.SessionRunning, c.State())
	assert.Equal(t, cfg.StartPosition, c.Spacecraft().Position)
	assert.Zero(t, driver.PendingTimers(), "pending reset must be cancelled")
	assert.Equal(t, 1, driver.ListenerCount())
	assert.Equal(t, 2, in.attached)
}

func TestControllerStopDeregistersEverything(t *testing.T) {
	in := &fakeInput{held: model.ControlInput{Thrust: true}}
	metrics := &countingMetrics{}
	c, driver := newTestController(t, DefaultConfig(), WithInput(in), WithMetrics(metrics))

	require.True(t, c.Start(context.Background()))
	driver.StepFrames(3)
	c.Stop()
	c.Stop()

	assert.Equal(t, model.SessionIdle, c.State())
	assert.Zero(t, driver.ListenerCount())
	assert.Equal(t, 1, in.detached)

	samples := in.samples
	pos := c.Spacecraft().Position
	driver.StepFrames(60)
	assert.Equal(t, samples, in.samples, "stale tick ran after teardown")
	assert.Equal(t, pos, c.Spacecraft().Position)
	assert.Equal(t, []string{"aborted"}, metrics.outcomes)
}

func TestControllerStopCancelsPendingReset(t *testing.T) {
	c, driver := newTestController(t, nearPortConfig())

	require.True(t, c.Start(context.Background()))
	driver.Step(frame)
	require.Equal(t, 1, driver.PendingTimers())

	c.Stop()
	assert.Zero(t, driver.PendingTimers())
}

func TestControllerRenderErrorsDoNotStopTicks(t *testing.T) {
	r := &recordingRenderer{err: errors.New("canvas gone")}
	c, driver := newTestController(t, DefaultConfig(), WithRenderer(r))

	require.True(t, c.Start(context.Background()))
	driver.StepFrames(10)

	assert.Equal(t, model.SessionRunning, c.State())
	require.Len(t, r.frames, 10)
	assert.Equal(t, uint64(10), r.frames[9].Seq)
	assert.Equal(t, model.SessionRunning, r.frames[9].State)
}

func TestControllerRendersTerminalFrame(t *testing.T) {
	r := &recordingRenderer{}
	metrics := &countingMetrics{}
	c, driver := newTestController(t, nearPortConfig(), WithRenderer(r), WithMetrics(metrics))

	require.True(t, c.Start(context.Background()))
	driver.StepFrames(5)

	require.Len(t, r.frames, 1)
	assert.Equal(t, model.SessionSucceeded, r.frames[0].State)
	assert.Equal(t, model.AdvisorySuccess, r.frames[0].Advisory)
	assert.Equal(t, 1, metrics.started)
	assert.Equal(t, []string{"succeeded"}, metrics.outcomes)
	assert.Equal(t, 1, metrics.frames)
	assert.Equal(t, model.SessionSucceeded, c.State())
}

func TestControllerVariableFrameRate(t *testing.T) {
	in := &fakeInput{held: model.ControlInput{Thrust: true}}
	c, driver := newTestController(t, DefaultConfig(), WithInput(in))

	require.True(t, c.Start(context.Background()))
	for _, d := range []time.Duration{8 * time.Millisecond, 33 * time.Millisecond, 16 * time.Millisecond} {
		driver.Step(d)
	}

	assert.Equal(t, 57*time.Millisecond, c.Elapsed())
	assert.Less(t, c.Spacecraft().Position.Y, DefaultConfig().StartPosition.Y)
}

func TestControllerElapsedUsesCappedDelta(t *testing.T) {
	cfg := DefaultConfig()
	metrics := &durationMetrics{}
	r := &recordingRenderer{}
	c, driver := newTestController(t, cfg, WithRenderer(r), WithMetrics(metrics))

	require.True(t, c.Start(context.Background()))
	driver.Step(2 * time.Second)
	driver.Step(10 * time.Millisecond)

	want := cfg.MaxFrameDelta + 10*time.Millisecond
	assert.Equal(t, want, c.Elapsed())
	require.Len(t, r.frames, 2)
	assert.Equal(t, cfg.MaxFrameDelta, r.frames[0].Elapsed)

	c.Stop()
	assert.Equal(t, []time.Duration{want}, metrics.durations)
}

func TestFrameStep(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 16*time.Millisecond, cfg.FrameStep(16*time.Millisecond))
	assert.Equal(t, cfg.MaxFrameDelta, cfg.FrameStep(time.Minute))
	assert.Zero(t, cfg.FrameStep(-time.Second))

	cfg.MaxFrameDelta = 0
	assert.Equal(t, time.Minute, cfg.FrameStep(time.Minute))
}

func TestControllerSurvivesPanickingCollaborators(t *testing.T) {
	r := &panickingRenderer{}
	rewards := &panickingRewards{}
	c, driver := newTestController(t, nearPortConfig(),
		WithRenderer(r),
		WithStatusDisplay(panickingDisplay{}),
		WithRewards(rewards),
	)

	require.True(t, c.Start(context.Background()))
	require.NotPanics(t, func() { driver.StepFrames(1) })

	assert.Equal(t, model.SessionSucceeded, c.State())
	assert.Equal(t, 1, r.calls)
	assert.Equal(t, 2, rewards.calls)
	assert.Equal(t, 0, driver.ListenerCount())

	// the reset still fires after the delay
	driver.StepFrames(int(DefaultResetDelay/frame) + 1)
	assert.Equal(t, model.SessionIdle, c.State())
}

func TestControllerPanickingRendererDoesNotStarveOthers(t *testing.T) {
	bad := &panickingRenderer{}
	good := &recordingRenderer{}
	c, driver := newTestController(t, DefaultConfig(), WithRenderer(bad), WithRenderer(good))

	require.True(t, c.Start(context.Background()))
	driver.StepFrames(3)

	assert.Equal(t, 3, bad.calls)
	assert.Len(t, good.frames, 3)
	assert.Equal(t, model.SessionRunning, c.State())
}

type durationMetrics struct {
	countingMetrics
	durations []time.Duration
}

func (m *durationMetrics) SessionFinished(outcome string, elapsed time.Duration) {
	m.countingMetrics.SessionFinished(outcome, elapsed)
	m.durations = append(m.durations, elapsed)
}
