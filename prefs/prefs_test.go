package prefs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTheme(t *testing.T) {
	got, err := ParseTheme(" Dark ")
	require.NoError(t, err)
	assert.Equal(t, ThemeDark, got)

	_, err = ParseTheme("sepia")
	assert.ErrorIs(t, err, ErrInvalidTheme)
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "nope", "prefs.yaml"))
	p, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, ThemeLight, p.Theme)
}

func TestToggleRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg", "prefs.yaml")
	s := NewStore(path)

	got, err := s.Toggle()
	require.NoError(t, err)
	assert.Equal(t, ThemeDark, got)

	p, err := NewStore(path).Load()
	require.NoError(t, err)
	assert.Equal(t, ThemeDark, p.Theme)

	got, err = s.Toggle()
	require.NoError(t, err)
	assert.Equal(t, ThemeLight, got)
}

func TestToggleFromMixedCaseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.yaml")
	require.NoError(t, os.WriteFile(path, []byte("theme: Dark\n"), 0o644))
	s := NewStore(path)

	p, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, ThemeDark, p.Theme)

	got, err := s.Toggle()
	require.NoError(t, err)
	assert.Equal(t, ThemeLight, got)
}

func TestSetThemeStoresCanonicalCase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.yaml")
	require.NoError(t, NewStore(path).SetTheme("DARK"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "theme: dark")
}

func TestLoadRejectsUnknownTheme(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.yaml")
	require.NoError(t, os.WriteFile(path, []byte("theme: neon\n"), 0o644))

	_, err := NewStore(path).Load()
	assert.ErrorIs(t, err, ErrInvalidTheme)
}

func TestSaveRejectsUnknownTheme(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "prefs.yaml"))
	assert.ErrorIs(t, s.SetTheme("neon"), ErrInvalidTheme)
	_, err := os.Stat(s.Path())
	assert.True(t, os.IsNotExist(err))
}
