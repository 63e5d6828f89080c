// Package quiz implements the Earth Observer photo quiz.
package quiz

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/navuxneeth/NASA-Challenge/internal/logging"
	"github.com/navuxneeth/NASA-Challenge/rewards"
)

// Task is the completed-task key recorded after the first correct answer.
const Task = "earthObserver"

// Point values for correct answers.
const (
	FirstCorrectPoints  = 50
	RepeatCorrectPoints = 25
)

var (
	// ErrNoQuestion is returned when there is no question to ask or answer.
	ErrNoQuestion = errors.New("no question")
	// ErrAnswerOutOfRange is returned for an option index the question lacks.
	ErrAnswerOutOfRange = errors.New("answer out of range")
)

// Rewarder receives the quiz rewards. *rewards.Ledger satisfies it.
type Rewarder interface {
	Award(points int) error
	GrantBadgeOnce(name string, alreadyGranted bool) bool
	Achieved(task string) bool
	MarkAchieved(task string)
}

// Result describes the outcome of answering the current question.
type Result struct {
	Correct       bool
	Selected      int
	CorrectIndex  int
	CorrectOption string
	Fact          string
	Points        int
	BadgeGranted  bool
}

// Option customises a Game.
type Option func(*Game)

// WithQuestions replaces the question bank.
func WithQuestions(qs []Question) Option {
	return func(g *Game) { g.questions = append([]Question(nil), qs...) }
}

// WithRand sets the random source used to pick questions.
func WithRand(r *rand.Rand) Option {
	return func(g *Game) {
		if r != nil {
			g.rng = r
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(g *Game) {
		if l != nil {
			g.log = l
		}
	}
}

// WithAnswerObserver registers fn to be called after every answer.
func WithAnswerObserver(fn func(correct bool)) Option {
	return func(g *Game) { g.observe = fn }
}

// Game serves random questions and scores answers. It is safe for
// concurrent use.
type Game struct {
	questions []Question
	rewards   Rewarder
	rng       *rand.Rand
	log       logging.Logger
	observe   func(correct bool)

	mu      sync.Mutex
	current int
	asked   int
}

// New returns a game backed by rewarder. A nil rewarder disables scoring.
func New(rewarder Rewarder, opts ...Option) *Game {
	g := &Game{
		questions: DefaultQuestions(),
		rewards:   rewarder,
		rng:       rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		log:       logging.Noop(),
		current:   -1,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Len returns the size of the question bank.
func (g *Game) Len() int { return len(g.questions) }

// Next picks a random question and makes it current. Repeats are allowed.
func (g *Game) Next() (Question, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.questions) == 0 {
		return Question{}, ErrNoQuestion
	}
	g.current = g.rng.IntN(len(g.questions))
	g.asked++
	return g.questions[g.current], nil
}

// Current returns the question awaiting an answer.
func (g *Game) Current() (Question, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.current < 0 {
		return Question{}, false
	}
	return g.questions[g.current], true
}

// Answer scores selected against the current question. A question can be
// answered once; call Next for another.
func (g *Game) Answer(ctx context.Context, selected int) (Result, error) {
	g.mu.Lock()
	if g.current < 0 {
		g.mu.Unlock()
		return Result{}, ErrNoQuestion
	}
	q := g.questions[g.current]
	if selected < 0 || selected >= len(q.Options) {
		g.mu.Unlock()
		return Result{}, fmt.Errorf("%w: %d not in [0,%d)", ErrAnswerOutOfRange, selected, len(q.Options))
	}
	g.current = -1
	g.mu.Unlock()

	res := Result{
		Correct:       selected == q.Correct,
		Selected:      selected,
		CorrectIndex:  q.Correct,
		CorrectOption: q.CorrectOption(),
		Fact:          q.Fact,
	}
	if res.Correct && g.rewards != nil {
		first := !g.rewards.Achieved(Task)
		res.Points = RepeatCorrectPoints
		if first {
			res.Points = FirstCorrectPoints
		}
		if err := g.rewards.Award(res.Points); err != nil {
			return res, fmt.Errorf("award quiz points: %w", err)
		}
		res.BadgeGranted = g.rewards.GrantBadgeOnce(rewards.BadgeEarthObserver, !first)
		g.rewards.MarkAchieved(Task)
	}

	if g.observe != nil {
		g.observe(res.Correct)
	}
	g.log.Info(ctx, "quiz answered",
		logging.Bool("correct", res.Correct),
		logging.Int("selected", selected),
		logging.Int("points", res.Points),
	)
	return res, nil
}
