// Package prefs persists the client-local theme flag, the only state the
// application keeps between runs.
package prefs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
)

// Theme is the colour scheme.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// ErrInvalidTheme is returned for a theme other than light or dark.
var ErrInvalidTheme = errors.New("invalid theme")

// ParseTheme accepts "light" or "dark" in any case.
func ParseTheme(s string) (Theme, error) {
	switch Theme(strings.ToLower(strings.TrimSpace(s))) {
	case ThemeLight:
		return ThemeLight, nil
	case ThemeDark:
		return ThemeDark, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidTheme, s)
}

// Toggle returns the other theme.
func (t Theme) Toggle() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

// Preferences is the persisted document.
type Preferences struct {
	Theme Theme `yaml:"theme"`
}

// Defaults returns the preferences used before anything is saved.
func Defaults() Preferences { return Preferences{Theme: ThemeLight} }

// Store reads and writes preferences at a file path.
type Store struct {
	path string
}

// NewStore returns a store for path.
func NewStore(path string) *Store { return &Store{path: path} }

// DefaultPath returns prefs.yaml under the user's config directory.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}
	return filepath.Join(dir, "dockingsim", "prefs.yaml"), nil
}

// Path returns the backing file.
func (s *Store) Path() string { return s.path }

// Load reads the preferences. A missing file yields Defaults.
func (s *Store) Load() (Preferences, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return Defaults(), nil
	}
	if err != nil {
		return Preferences{}, fmt.Errorf("read prefs %q: %w", s.path, err)
	}

	p := Defaults()
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Preferences{}, fmt.Errorf("decode prefs %q: %w", s.path, err)
	}
	if p.Theme == "" {
		p.Theme = ThemeLight
	}
	theme, err := ParseTheme(string(p.Theme))
	if err != nil {
		return Preferences{}, err
	}
	p.Theme = theme
	return p, nil
}

// Save writes p atomically, creating the parent directory if needed. The
// theme is stored in its canonical lower-case form.
func (s *Store) Save(p Preferences) error {
	theme, err := ParseTheme(string(p.Theme))
	if err != nil {
		return err
	}
	p.Theme = theme
	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode prefs: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace prefs: %w", err)
	}
	return nil
}

// SetTheme persists t.
func (s *Store) SetTheme(t Theme) error {
	p, err := s.Load()
	if err != nil {
		return err
	}
	p.Theme = t
	return s.Save(p)
}

// Toggle flips and persists the theme, returning the new value.
func (s *Store) Toggle() (Theme, error) {
	p, err := s.Load()
	if err != nil {
		return "", err
	}
	p.Theme = p.Theme.Toggle()
	if err := s.Save(p); err != nil {
		return "", err
	}
	return p.Theme, nil
}
