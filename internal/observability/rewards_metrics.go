package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// RewardsCollector exposes player-progress metrics: points, badges, quiz
// answers, NBL tasks and Cupola photographs.
type RewardsCollector struct {
	PointsAwarded  prometheus.Counter
	Score          prometheus.Gauge
	BadgesGranted  *prometheus.CounterVec
	QuizAnswers    *prometheus.CounterVec
	NBLCompletions *prometheus.CounterVec
	CupolaCaptures *prometheus.CounterVec
}

// NewRewardsCollector registers reward metrics against the provided registerer.
func NewRewardsCollector(reg prometheus.Registerer) (*RewardsCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	points, err := register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rewards_points_awarded_total",
		Help: "Cumulative points awarded to the player.",
	}), "rewards_points_awarded_total")
	if err != nil {
		return nil, err
	}

	score, err := register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "rewards_score",
		Help: "Current player score.",
	}), "rewards_score")
	if err != nil {
		return nil, err
	}

	badges, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rewards_badges_granted_total",
		Help: "Badges granted, labeled by badge name.",
	}, []string{"badge"}), "rewards_badges_granted_total")
	if err != nil {
		return nil, err
	}

	answers, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "quiz_answers_total",
		Help: "Earth Observer quiz answers, labeled by result.",
	}, []string{"result"}), "quiz_answers_total")
	if err != nil {
		return nil, err
	}

	nbl, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "nbl_tasks_completed_total",
		Help: "Completed NBL training tasks, labeled by task.",
	}, []string{"task"}), "nbl_tasks_completed_total")
	if err != nil {
		return nil, err
	}

	captures, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cupola_photos_captured_total",
		Help: "Cupola mission photographs, labeled by event category.",
	}, []string{"category"}), "cupola_photos_captured_total")
	if err != nil {
		return nil, err
	}

	return &RewardsCollector{
		PointsAwarded:  points,
		Score:          score,
		BadgesGranted:  badges,
		QuizAnswers:    answers,
		NBLCompletions: nbl,
		CupolaCaptures: captures,
	}, nil
}

// ObservePoints records an award and the resulting score.
func (c *RewardsCollector) ObservePoints(points, score int) {
	if c == nil {
		return
	}
	c.PointsAwarded.Add(float64(points))
	c.Score.Set(float64(score))
}

// ObserveBadge records a granted badge.
func (c *RewardsCollector) ObserveBadge(name string) {
	if c == nil {
		return
	}
	c.BadgesGranted.WithLabelValues(name).Inc()
}

// ObserveQuizAnswer records a quiz answer.
func (c *RewardsCollector) ObserveQuizAnswer(correct bool) {
	if c == nil {
		return
	}
	result := "incorrect"
	if correct {
		result = "correct"
	}
	c.QuizAnswers.WithLabelValues(result).Inc()
}

// ObserveNBLCompletion records a completed NBL task.
func (c *RewardsCollector) ObserveNBLCompletion(task string) {
	if c == nil {
		return
	}
	c.NBLCompletions.WithLabelValues(task).Inc()
}

// ObserveCupolaCapture records a Cupola photograph.
func (c *RewardsCollector) ObserveCupolaCapture(category string) {
	if c == nil {
		return
	}
	c.CupolaCaptures.WithLabelValues(category).Inc()
}
