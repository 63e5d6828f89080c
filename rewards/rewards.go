package rewards

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Well-known badges and their icons.
const (
	BadgeDockingSpecialist    = "Docking Specialist"
	BadgeEarthObserver        = "Earth Observer"
	BadgeRepairSpecialist     = "Repair Mission Specialist"
	BadgePathfinderSpecialist = "Pathfinder Translation Specialist"
	BadgeLunarSpecialist      = "Lunar Analog Mission Specialist"
)

var defaultIcons = map[string]string{
	BadgeDockingSpecialist:    "🎯",
	BadgeEarthObserver:        "🌍",
	BadgeRepairSpecialist:     "🔩",
	BadgePathfinderSpecialist: "🔩",
	BadgeLunarSpecialist:      "🔩",
}

// ErrNegativePoints is returned when an award would reduce the score.
var ErrNegativePoints = errors.New("points must not be negative")

// EventType indicates what kind of change happened in the ledger.
type EventType int

const (
	EventPointsAwarded EventType = iota
	EventBadgeGranted
	EventTaskCompleted
)

// Badge is an earned achievement.
type Badge struct {
	Name string `json:"name" yaml:"name"`
	Icon string `json:"icon" yaml:"icon"`
}

// Event is emitted to subscribers when the profile changes.
type Event struct {
	Type   EventType
	Points int
	Score  int
	Badge  Badge
	Task   string
}

// Profile is a snapshot of the player's progress.
type Profile struct {
	Score          int             `json:"score" yaml:"score"`
	Badges         []Badge         `json:"badges" yaml:"badges"`
	CompletedTasks map[string]bool `json:"completed_tasks" yaml:"completed_tasks"`
}

// Ledger is an in-memory, thread-safe player profile: score, badges and
// completed-task flags. It satisfies the docking controller's reward and
// achievement collaborators.
type Ledger struct {
	mu sync.RWMutex

	score     int
	badges    []Badge
	completed map[string]bool
	icons     map[string]string

	nextSub uint64
	subs    map[uint64]func(Event)
}

// NewLedger constructs an empty ledger with the default badge icons.
func NewLedger() *Ledger {
	icons := make(map[string]string, len(defaultIcons))
	for k, v := range defaultIcons {
		icons[k] = v
	}
	return &Ledger{
		completed: make(map[string]bool),
		icons:     icons,
		subs:      make(map[uint64]func(Event)),
	}
}

// SetBadgeIcon registers the icon used when name is granted.
func (l *Ledger) SetBadgeIcon(name, icon string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.icons[name] = icon
}

// Award adds points to the score and notifies subscribers.
func (l *Ledger) Award(points int) error {
	if points < 0 {
		return fmt.Errorf("award %d: %w", points, ErrNegativePoints)
	}
	l.mu.Lock()
	l.score += points
	ev := Event{Type: EventPointsAwarded, Points: points, Score: l.score}
	subs := l.subscribers()
	l.mu.Unlock()

	notify(subs, ev)
	return nil
}

// AddBadge grants a badge unless one with the same name is already held.
// It reports whether the badge was added.
func (l *Ledger) AddBadge(name, icon string) bool {
	l.mu.Lock()
	for _, b := range l.badges {
		if b.Name == name {
			l.mu.Unlock()
			return false
		}
	}
	badge := Badge{Name: name, Icon: icon}
	l.badges = append(l.badges, badge)
	ev := Event{Type: EventBadgeGranted, Badge: badge, Score: l.score}
	subs := l.subscribers()
	l.mu.Unlock()

	notify(subs, ev)
	return true
}

// GrantBadgeOnce grants the named badge with its registered icon unless the
// caller already knows it was granted. It reports whether a badge was added.
func (l *Ledger) GrantBadgeOnce(name string, alreadyGranted bool) bool {
	if alreadyGranted {
		return false
	}
	l.mu.RLock()
	icon := l.icons[name]
	l.mu.RUnlock()
	return l.AddBadge(name, icon)
}

// HasBadge reports whether the named badge is held.
func (l *Ledger) HasBadge(name string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, b := range l.badges {
		if b.Name == name {
			return true
		}
	}
	return false
}

// Achieved reports whether task has been completed at least once.
func (l *Ledger) Achieved(task string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.completed[task]
}

// MarkAchieved records task as completed. Repeated calls notify once.
func (l *Ledger) MarkAchieved(task string) {
	l.mu.Lock()
	if l.completed[task] {
		l.mu.Unlock()
		return
	}
	l.completed[task] = true
	ev := Event{Type: EventTaskCompleted, Task: task, Score: l.score}
	subs := l.subscribers()
	l.mu.Unlock()

	notify(subs, ev)
}

// Score returns the current score.
func (l *Ledger) Score() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.score
}

// Badges returns the badges in the order they were earned.
func (l *Ledger) Badges() []Badge {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]Badge(nil), l.badges...)
}

// Profile returns a snapshot of the ledger.
func (l *Ledger) Profile() Profile {
	l.mu.RLock()
	defer l.mu.RUnlock()

	tasks := make(map[string]bool, len(l.completed))
	for k, v := range l.completed {
		tasks[k] = v
	}
	return Profile{
		Score:          l.score,
		Badges:         append([]Badge(nil), l.badges...),
		CompletedTasks: tasks,
	}
}

// CompletedTasks returns the sorted names of completed tasks.
func (l *Ledger) CompletedTasks() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	res := make([]string, 0, len(l.completed))
	for k, ok := range l.completed {
		if ok {
			res = append(res, k)
		}
	}
	sort.Strings(res)
	return res
}

// Subscribe registers a callback for ledger events. It returns an
// unsubscribe function.
func (l *Ledger) Subscribe(fn func(Event)) (unsubscribe func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.nextSub++
	id := l.nextSub
	l.subs[id] = fn

	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.subs, id)
	}
}

// subscribers must be called with l.mu held.
func (l *Ledger) subscribers() []func(Event) {
	ids := make([]uint64, 0, len(l.subs))
	for id := range l.subs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	res := make([]func(Event), 0, len(ids))
	for _, id := range ids {
		res = append(res, l.subs[id])
	}
	return res
}

// notify runs outside the lock so subscribers may call back into the ledger.
func notify(subs []func(Event), ev Event) {
	for _, sub := range subs {
		sub(ev)
	}
}
