package nbl

import "github.com/navuxneeth/NASA-Challenge/model"

// Pool dimensions. The astronaut is confined to this rectangle.
const (
	PoolWidth  = 600.0
	PoolHeight = 400.0
)

// Kind selects how a task is completed.
type Kind string

const (
	// KindRepair and KindLunar complete with Interact once the astronaut is
	// within reach of the single target.
	KindRepair Kind = "repair"
	KindLunar  Kind = "lunar"
	// KindTranslation completes by touching every handrail in order.
	KindTranslation Kind = "translation"
)

// Task is one training scenario in the pool.
type Task struct {
	ID             string
	Name           string
	Description    string
	SetupText      string
	CompletionFact string
	Kind           Kind
	// Targets are visited in order. Repair and lunar tasks have one.
	Targets []model.Vec2
	// Reach is the distance at which a target counts as touched.
	Reach float64
}

// CompletionKey is the completed-task key in the reward ledger.
func (t Task) CompletionKey() string { return "nbl_" + t.ID }

// Badge is the badge awarded the first time the task is completed.
func (t Task) Badge() string { return t.Name + " Specialist" }

// Interactive reports whether the task ends with an explicit tool use.
func (t Task) Interactive() bool { return t.Kind != KindTranslation }

// DefaultTasks returns the three NBL tasks in the order they cycle.
func DefaultTasks() []Task {
	return []Task{
		{
			ID:             "repair",
			Name:           "Repair Mission",
			Description:    "Move to the repair panel and use your wrench to complete the repair",
			SetupText:      "Astronauts and divers work together to achieve perfect neutral buoyancy for each individual.",
			CompletionFact: "The Pistol Grip Tool is a self-contained, battery-powered tool used by astronauts on spacewalks.",
			Kind:           KindRepair,
			Targets:        []model.Vec2{{X: 480, Y: 120}},
			Reach:          80,
		},
		{
			ID:             "pathfinder",
			Name:           "Pathfinder Translation",
			Description:    "Follow the highlighted handrails in sequence to practice station translation",
			SetupText:      "EVA astronauts use handrails to move across the exterior of the ISS, maintaining three points of contact.",
			CompletionFact: "During spacewalks, astronauts translate (move) using over 160 handrails installed on the ISS exterior.",
			Kind:           KindTranslation,
			// 20/30%, 40/40%, 60/50%, 75/35% and 80/60% of the pool.
			Targets: []model.Vec2{
				{X: 120, Y: 120},
				{X: 240, Y: 160},
				{X: 360, Y: 200},
				{X: 450, Y: 140},
				{X: 480, Y: 240},
			},
			Reach: 60,
		},
		{
			ID:             "lunar",
			Name:           "Lunar Analog Mission",
			Description:    "Descend to the pool floor and collect a rock sample",
			SetupText:      "The NBL can simulate lunar gravity by adjusting buoyancy to be slightly negative.",
			CompletionFact: "NASA uses the NBL to prepare astronauts for lunar missions, simulating reduced gravity environments.",
			Kind:           KindLunar,
			Targets:        []model.Vec2{{X: 300, Y: 360}},
			Reach:          70,
		},
	}
}
