// Package prefs handles offerwatch user preferences persistence.
// Preferences are stored in ~/.config/offerwatch/prefs.toml.
package prefs

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/five82/offerwatch/internal/offerapi"
)

// Prefs holds user preferences for offerwatch.
type Prefs struct {
	Theme  string      `toml:"theme"`
	Filter SavedFilter `toml:"filter"`
}

// SavedFilter is the last list filter, in a form that round-trips through TOML.
type SavedFilter struct {
	Status  string `toml:"status,omitempty"`
	Read    string `toml:"read,omitempty"` // "", "read" or "unread"
	Keyword string `toml:"keyword,omitempty"`
}

const (
	defaultPrefsPath = "~/.config/offerwatch/prefs.toml"
	defaultTheme     = "Nightfox"
)

// DefaultPath returns the default preferences file path.
func DefaultPath() string {
	return defaultPrefsPath
}

// Load reads preferences from the given path, falling back to defaults if missing.
func Load(path string) (Prefs, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Prefs{Theme: defaultTheme}, nil
	}

	prefs := Prefs{Theme: defaultTheme}

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return prefs, nil
		}
		return prefs, nil // Graceful degradation
	}
	defer func() { _ = file.Close() }()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return prefs, nil // Graceful degradation
	}

	if err := toml.Unmarshal(bytes, &prefs); err != nil {
		return Prefs{Theme: defaultTheme}, nil // Graceful degradation
	}

	if strings.TrimSpace(prefs.Theme) == "" {
		prefs.Theme = defaultTheme
	}

	return prefs, nil
}

// Save writes preferences to the given path, creating directories as needed.
func Save(path string, p Prefs) error {
	resolved, err := resolvePath(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	dir := filepath.Dir(resolved)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}

	bytes, err := toml.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal prefs: %w", err)
	}

	if err := os.WriteFile(resolved, bytes, 0o644); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}

	return nil
}

// Saved converts a list filter for storage.
func Saved(f offerapi.Filter) SavedFilter {
	saved := SavedFilter{
		Status:  string(f.Status),
		Keyword: strings.TrimSpace(f.Keyword),
	}
	if f.Read != nil {
		if *f.Read {
			saved.Read = "read"
		} else {
			saved.Read = "unread"
		}
	}
	return saved
}

// ListFilter converts a stored filter back. Unknown statuses and read
// values are dropped.
func (s SavedFilter) ListFilter() offerapi.Filter {
	f := offerapi.Filter{Keyword: strings.TrimSpace(s.Keyword)}
	for _, st := range offerapi.Statuses {
		if strings.EqualFold(s.Status, string(st)) {
			f.Status = st
		}
	}
	switch strings.ToLower(strings.TrimSpace(s.Read)) {
	case "read":
		read := true
		f.Read = &read
	case "unread":
		read := false
		f.Read = &read
	}
	return f
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultPrefsPath)
	}
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
