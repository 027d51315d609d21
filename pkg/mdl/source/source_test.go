package source

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"p3a-hq/manifest/pkg/mdl/tree"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.yaml", "cadence: typical\n")
	writeFile(t, dir, "a.yaml", "cadence: slow\n")
	writeFile(t, dir, "c.yml", "cadence: slow\n")
	writeFile(t, dir, "notes.txt", "ignored\n")
	writeFile(t, dir, ".hidden.yaml", "ignored: true\n")
	writeFile(t, dir, "broken.yaml", "cadence: [\n")
	if err := os.Mkdir(filepath.Join(dir, "nested.yaml"), 0o755); err != nil {
		t.Fatal(err)
	}

	entries, err := NewLoader().LoadDir(dir)
	if err != nil {
		t.Fatalf("LoadDir() error = %v", err)
	}

	var names []string
	for _, e := range entries {
		names = append(names, e.Name)
	}
	want := []string{"a", "b", "broken"}
	if len(names) != len(want) {
		t.Fatalf("names = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("names[%d] = %s, want %s", i, names[i], want[i])
		}
	}

	if entries[0].Err != nil || entries[0].Tree == nil || len(entries[0].Source) == 0 {
		t.Errorf("entry a = %+v", entries[0])
	}

	var syntaxErr *tree.SyntaxError
	if !errors.As(entries[2].Err, &syntaxErr) {
		t.Errorf("broken entry error = %v, want *tree.SyntaxError", entries[2].Err)
	}
}

func TestLoadDir_WithYml(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.yaml", "cadence: slow\n")
	writeFile(t, dir, "a.yml", "cadence: slow\n")
	writeFile(t, dir, "b.YML", "cadence: slow\n")

	entries, err := NewLoader(".yaml", "yml").LoadDir(dir)
	if err != nil {
		t.Fatalf("LoadDir() error = %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("entries = %d, want 3", len(entries))
	}
	if entries[0].Name != "a" || entries[1].Name != "a" {
		t.Errorf("colliding names should both be loaded: %s, %s", entries[0].Name, entries[1].Name)
	}
}

func TestLoadDir_Missing(t *testing.T) {
	if _, err := NewLoader().LoadDir(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("LoadDir() expected error for missing directory")
	}
}

func TestLoadFile_Unreadable(t *testing.T) {
	e := NewLoader().LoadFile(filepath.Join(t.TempDir(), "gone.yaml"))
	if e.Err == nil || e.Name != "gone" {
		t.Errorf("entry = %+v", e)
	}
}

func TestNameOf(t *testing.T) {
	tests := map[string]string{
		"metrics/Brave.Core.Foo.yaml": "Brave.Core.Foo",
		"x.yml":                       "x",
		"/abs/path/name.yaml":         "name",
	}
	for in, want := range tests {
		if got := NameOf(in); got != want {
			t.Errorf("NameOf(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestMatches(t *testing.T) {
	l := NewLoader("yaml")
	if !l.Matches("a.YAML") || l.Matches("a.yml") || l.Matches("yaml") {
		t.Errorf("Matches() misbehaves for %v", l.Extensions())
	}
}
