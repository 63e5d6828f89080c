// Package pilot provides input sources for the docking controller: a
// keyboard-state map, a scripted timeline and a simple autopilot.
package pilot

import (
	"strings"
	"sync"

	"github.com/navuxneeth/NASA-Challenge/model"
)

// Key names understood by Keyboard.
const (
	KeyThrust = "ArrowUp"
	KeyLeft   = "ArrowLeft"
	KeyRight  = "ArrowRight"
)

// Keyboard tracks which keys are held. Key events are only recorded while
// attached, and detaching forgets every held key.
type Keyboard struct {
	mu       sync.Mutex
	attached bool
	held     map[string]bool
}

// NewKeyboard returns a detached keyboard.
func NewKeyboard() *Keyboard {
	return &Keyboard{held: make(map[string]bool)}
}

// Attach starts recording key events.
func (k *Keyboard) Attach() {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.attached = true
}

// Detach stops recording key events and releases every key.
func (k *Keyboard) Detach() {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.attached = false
	k.held = make(map[string]bool)
}

// Attached reports whether key events are being recorded.
func (k *Keyboard) Attached() bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.attached
}

// Press records key as held.
func (k *Keyboard) Press(key string) { k.set(key, true) }

// Release records key as released.
func (k *Keyboard) Release(key string) { k.set(key, false) }

func (k *Keyboard) set(key string, down bool) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if !k.attached {
		return
	}
	k.held[key] = down
}

// Sample returns the held commands.
func (k *Keyboard) Sample() model.ControlInput {
	k.mu.Lock()
	defer k.mu.Unlock()
	return model.ControlInput{
		Thrust:      k.held[KeyThrust],
		RotateLeft:  k.held[KeyLeft],
		RotateRight: k.held[KeyRight],
	}
}

// ParseCommand maps a terminal command to a key, accepting both key names and
// the w/a/d shorthand. It returns "" for unknown input.
func ParseCommand(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "w", "up", "thrust", strings.ToLower(KeyThrust):
		return KeyThrust
	case "a", "left", strings.ToLower(KeyLeft):
		return KeyLeft
	case "d", "right", strings.ToLower(KeyRight):
		return KeyRight
	default:
		return ""
	}
}
