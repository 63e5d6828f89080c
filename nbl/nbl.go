// Package nbl simulates Neutral Buoyancy Laboratory training: weigh out to
// neutral buoyancy, then complete a task in the pool.
package nbl

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/navuxneeth/NASA-Challenge/internal/logging"
	"github.com/navuxneeth/NASA-Challenge/model"
)

// Weight limits for the buoyancy setup.
const (
	MaxWeights = 10
	NeutralMin = 4
	NeutralMax = 6
)

// Point values for a completed task.
const (
	FirstCompletionPoints  = 100
	RepeatCompletionPoints = 50
)

var (
	ErrNoTask       = errors.New("no nbl task")
	ErrTaskActive   = errors.New("task already in progress")
	ErrNotInSetup   = errors.New("buoyancy setup not open")
	ErrNotNeutral   = errors.New("astronaut is not neutrally buoyant")
	ErrNotActive    = errors.New("no task in progress")
	ErrOutOfReach   = errors.New("target out of reach")
	ErrNotClickable = errors.New("task has nothing to use")
)

// Buoyancy is the balance reading for a weight count.
type Buoyancy int

const (
	TooLight Buoyancy = iota
	Neutral
	TooHeavy
)

// ClassifyWeights maps a weight count to a balance reading.
func ClassifyWeights(n int) Buoyancy {
	switch {
	case n < NeutralMin:
		return TooLight
	case n > NeutralMax:
		return TooHeavy
	}
	return Neutral
}

func (b Buoyancy) String() string {
	switch b {
	case TooLight:
		return "Too Light ↑"
	case TooHeavy:
		return "Too Heavy ↓"
	}
	return "Neutrally Buoyant ✓"
}

// Phase is where the trainer is in a task's lifecycle.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseSetup
	PhaseActive
)

func (p Phase) String() string {
	switch p {
	case PhaseSetup:
		return "setup"
	case PhaseActive:
		return "active"
	}
	return "idle"
}

// Rewarder receives completion rewards. *rewards.Ledger satisfies it.
type Rewarder interface {
	Award(points int) error
	GrantBadgeOnce(name string, alreadyGranted bool) bool
	Achieved(task string) bool
	MarkAchieved(task string)
}

// Progress describes the astronaut after a move.
type Progress struct {
	Position model.Vec2
	// Target is the index of the next target; Touched counts those reached.
	Target   int
	Touched  int
	Distance float64
	InReach  bool
	// Completion is set when the move finished the task.
	Completion *Completion
}

// Completion is the outcome of a finished task.
type Completion struct {
	Task         Task
	Points       int
	BadgeGranted bool
	Next         Task
}

// Option customises a Trainer.
type Option func(*Trainer)

// WithTasks replaces the task cycle.
func WithTasks(ts []Task) Option {
	return func(t *Trainer) { t.tasks = append([]Task(nil), ts...) }
}

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(t *Trainer) {
		if l != nil {
			t.log = l
		}
	}
}

// WithCompletionObserver registers fn to be called after each completion.
func WithCompletionObserver(fn func(Completion)) Option {
	return func(t *Trainer) { t.observe = fn }
}

// Trainer cycles through the NBL tasks. It is safe for concurrent use.
type Trainer struct {
	tasks   []Task
	rewards Rewarder
	log     logging.Logger
	observe func(Completion)

	mu        sync.Mutex
	index     int
	phase     Phase
	weights   int
	astronaut model.Vec2
	target    int
}

// New returns a trainer on the first task. A nil rewarder disables scoring.
func New(rewarder Rewarder, opts ...Option) *Trainer {
	t := &Trainer{
		tasks:   DefaultTasks(),
		rewards: rewarder,
		log:     logging.Noop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Current returns the task that Begin will set up.
func (t *Trainer) Current() (Task, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.currentLocked()
}

func (t *Trainer) currentLocked() (Task, error) {
	if len(t.tasks) == 0 {
		return Task{}, ErrNoTask
	}
	return t.tasks[t.index], nil
}

// Phase returns the lifecycle phase.
func (t *Trainer) Phase() Phase {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.phase
}

// Position returns the astronaut's position.
func (t *Trainer) Position() model.Vec2 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.astronaut
}

// Begin opens the buoyancy setup for the current task with no weights.
// It may be called again during setup to start over.
func (t *Trainer) Begin() (Task, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	task, err := t.currentLocked()
	if err != nil {
		return Task{}, err
	}
	if t.phase == PhaseActive {
		return Task{}, fmt.Errorf("begin %s: %w", task.ID, ErrTaskActive)
	}
	t.phase = PhaseSetup
	t.weights = 0
	return task, nil
}

// AddWeight adds one weight, up to MaxWeights.
func (t *Trainer) AddWeight() (int, Buoyancy, error) { return t.adjust(1) }

// RemoveWeight removes one weight, down to zero.
func (t *Trainer) RemoveWeight() (int, Buoyancy, error) { return t.adjust(-1) }

func (t *Trainer) adjust(d int) (int, Buoyancy, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.phase != PhaseSetup {
		return t.weights, ClassifyWeights(t.weights), ErrNotInSetup
	}
	t.weights = max(0, min(MaxWeights, t.weights+d))
	return t.weights, ClassifyWeights(t.weights), nil
}

// Start closes the setup and puts the astronaut in the pool. It requires
// neutral buoyancy.
func (t *Trainer) Start(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.phase != PhaseSetup {
		return ErrNotInSetup
	}
	if b := ClassifyWeights(t.weights); b != Neutral {
		return fmt.Errorf("%w: %d weights (%s)", ErrNotNeutral, t.weights, b)
	}
	task := t.tasks[t.index]
	t.phase = PhaseActive
	t.astronaut = model.Vec2{}
	t.target = 0
	t.log.Info(ctx, "nbl task started",
		logging.String("task", task.ID),
		logging.Int("weights", t.weights),
	)
	return nil
}

// Abort abandons the task in progress or the open setup.
func (t *Trainer) Abort() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.phase = PhaseIdle
}

// Move translates the astronaut by (dx, dy).
func (t *Trainer) Move(ctx context.Context, dx, dy float64) (Progress, error) {
	t.mu.Lock()
	to := r2.Add(t.astronaut, model.Vec2{X: dx, Y: dy})
	t.mu.Unlock()
	return t.MoveTo(ctx, to)
}

// MoveTo places the astronaut at p, clamped to the pool. Reaching the last
// handrail of a translation task completes it.
func (t *Trainer) MoveTo(ctx context.Context, p model.Vec2) (Progress, error) {
	t.mu.Lock()
	if t.phase != PhaseActive {
		t.mu.Unlock()
		return Progress{}, ErrNotActive
	}
	task := t.tasks[t.index]
	t.astronaut = model.Vec2{
		X: math.Max(0, math.Min(PoolWidth, p.X)),
		Y: math.Max(0, math.Min(PoolHeight, p.Y)),
	}
	prog := t.progressLocked(task)
	if task.Kind == KindTranslation && prog.InReach {
		t.target++
		prog.Touched = t.target
		if t.target < len(task.Targets) {
			prog.Target = t.target
			prog.Distance = r2.Norm(r2.Sub(task.Targets[t.target], t.astronaut))
			prog.InReach = false
		} else {
			t.mu.Unlock()
			c, err := t.complete(ctx, task)
			if err != nil {
				return prog, err
			}
			prog.Completion = &c
			return prog, nil
		}
	}
	t.mu.Unlock()
	return prog, nil
}

// progressLocked must be called with t.mu held.
func (t *Trainer) progressLocked(task Task) Progress {
	prog := Progress{Position: t.astronaut, Target: t.target, Touched: t.target}
	if t.target < len(task.Targets) {
		prog.Distance = r2.Norm(r2.Sub(task.Targets[t.target], t.astronaut))
		prog.InReach = prog.Distance < task.Reach
	}
	return prog
}

// Interact uses the tool on the target. It completes repair and lunar tasks
// when the astronaut is within reach.
func (t *Trainer) Interact(ctx context.Context) (Completion, error) {
	t.mu.Lock()
	if t.phase != PhaseActive {
		t.mu.Unlock()
		return Completion{}, ErrNotActive
	}
	task := t.tasks[t.index]
	if !task.Interactive() {
		t.mu.Unlock()
		return Completion{}, fmt.Errorf("%s: %w", task.ID, ErrNotClickable)
	}
	prog := t.progressLocked(task)
	t.mu.Unlock()
	if !prog.InReach {
		return Completion{}, fmt.Errorf("%w: %.0f away, need under %.0f", ErrOutOfReach, prog.Distance, task.Reach)
	}
	return t.complete(ctx, task)
}

// complete finishes task and advances the cycle. It is called without the
// lock; a concurrent completion of the same task loses.
func (t *Trainer) complete(ctx context.Context, task Task) (Completion, error) {
	t.mu.Lock()
	if t.phase != PhaseActive || t.tasks[t.index].ID != task.ID {
		t.mu.Unlock()
		return Completion{}, ErrNotActive
	}
	t.phase = PhaseIdle
	t.index = (t.index + 1) % len(t.tasks)
	c := Completion{Task: task, Next: t.tasks[t.index]}
	t.mu.Unlock()

	if t.rewards != nil {
		key := task.CompletionKey()
		first := !t.rewards.Achieved(key)
		c.Points = RepeatCompletionPoints
		if first {
			c.Points = FirstCompletionPoints
		}
		if err := t.rewards.Award(c.Points); err != nil {
			return c, fmt.Errorf("award nbl points: %w", err)
		}
		c.BadgeGranted = t.rewards.GrantBadgeOnce(task.Badge(), !first)
		t.rewards.MarkAchieved(key)
	}

	if t.observe != nil {
		t.observe(c)
	}
	t.log.Info(ctx, "nbl task completed",
		logging.String("task", task.ID),
		logging.Int("points", c.Points),
		logging.Bool("badge_granted", c.BadgeGranted),
		logging.String("next", c.Next.ID),
	)
	return c, nil
}
