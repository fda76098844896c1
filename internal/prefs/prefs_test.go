package prefs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/five82/offerwatch/internal/offerapi"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	p, err := Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if p.Theme != defaultTheme {
		t.Fatalf("Theme = %q, want %q", p.Theme, defaultTheme)
	}
	if !p.Filter.ListFilter().IsZero() {
		t.Fatalf("Filter = %#v, want empty", p.Filter)
	}
}

func TestLoad_ReadsExistingFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	prefsDir := filepath.Join(home, ".config", "offerwatch")
	if err := os.MkdirAll(prefsDir, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}

	prefsFile := filepath.Join(prefsDir, "prefs.toml")
	content := "theme = \"Slate\"\n\n[filter]\nstatus = \"QNA\"\nread = \"unread\"\n"
	if err := os.WriteFile(prefsFile, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	p, err := Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if p.Theme != "Slate" {
		t.Fatalf("Theme = %q, want %q", p.Theme, "Slate")
	}
	f := p.Filter.ListFilter()
	if f.Status != offerapi.StatusQnA || f.Read == nil || *f.Read {
		t.Fatalf("Filter = %#v, want QNA unread", f)
	}
}

func TestSave_CreatesFileAndDirs(t *testing.T) {
	tmp := t.TempDir()
	prefsFile := filepath.Join(tmp, "subdir", "prefs.toml")

	read := true
	p := Prefs{Theme: "Slate", Filter: Saved(offerapi.Filter{Status: offerapi.StatusClosed, Read: &read, Keyword: " acme "})}
	if err := Save(prefsFile, p); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	loaded, err := Load(prefsFile)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if loaded.Theme != "Slate" {
		t.Fatalf("Theme = %q, want %q", loaded.Theme, "Slate")
	}
	want := offerapi.Filter{Status: offerapi.StatusClosed, Read: &read, Keyword: "acme"}
	if got := loaded.Filter.ListFilter(); !got.Equal(want) {
		t.Fatalf("Filter = %#v, want %#v", got, want)
	}
}

func TestSavedFilter_DropsUnknownValues(t *testing.T) {
	f := SavedFilter{Status: "ARCHIVED", Read: "maybe", Keyword: "  "}.ListFilter()
	if !f.IsZero() {
		t.Fatalf("ListFilter = %#v, want zero", f)
	}
	if got := (SavedFilter{Status: "reviewed"}).ListFilter().Status; got != offerapi.StatusReviewed {
		t.Fatalf("Status = %q, want case-insensitive match", got)
	}
}

func TestLoad_EmptyThemeFallsBackToDefault(t *testing.T) {
	tmp := t.TempDir()
	prefsFile := filepath.Join(tmp, "prefs.toml")
	if err := os.WriteFile(prefsFile, []byte("theme = \"\"\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	p, err := Load(prefsFile)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if p.Theme != defaultTheme {
		t.Fatalf("Theme = %q, want %q", p.Theme, defaultTheme)
	}
}

func TestLoad_InvalidTOMLFallsBackToDefault(t *testing.T) {
	tmp := t.TempDir()
	prefsFile := filepath.Join(tmp, "prefs.toml")
	if err := os.WriteFile(prefsFile, []byte("not valid toml {{{\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	p, err := Load(prefsFile)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if p.Theme != defaultTheme {
		t.Fatalf("Theme = %q, want %q", p.Theme, defaultTheme)
	}
}
