package source

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"p3a-hq/manifest/pkg/mdl/compiler"
	"p3a-hq/manifest/pkg/mdl/tree"
)

// DefaultExtensions are the declaration file extensions read by default.
var DefaultExtensions = []string{".yaml"}

// Loader reads declaration files from a directory.
type Loader struct {
	extensions []string
}

// NewLoader creates a loader for files with the given extensions. With no
// extensions, DefaultExtensions apply.
func NewLoader(extensions ...string) *Loader {
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}
	normalized := make([]string, 0, len(extensions))
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		normalized = append(normalized, ext)
	}
	return &Loader{extensions: normalized}
}

// Extensions returns the accepted file extensions.
func (l *Loader) Extensions() []string {
	return append([]string(nil), l.extensions...)
}

// Matches reports whether path has an accepted extension.
func (l *Loader) Matches(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range l.extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// LoadDir reads every matching regular file directly inside dir, sorted by
// file name. A file that cannot be read or decoded still yields an entry,
// with Err set, so the compiler reports it alongside everything else.
// Only a failure to list dir is returned as an error.
func (l *Loader) LoadDir(dir string) ([]compiler.Entry, error) {
	items, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read metrics directory: %w", err)
	}

	var files []string
	for _, item := range items {
		if item.IsDir() || strings.HasPrefix(item.Name(), ".") {
			continue
		}
		if !l.Matches(item.Name()) {
			continue
		}
		files = append(files, item.Name())
	}
	sort.Strings(files)

	entries := make([]compiler.Entry, 0, len(files))
	for _, name := range files {
		entries = append(entries, l.LoadFile(filepath.Join(dir, name)))
	}
	return entries, nil
}

// LoadFile reads and decodes one declaration file.
func (l *Loader) LoadFile(path string) compiler.Entry {
	e := compiler.Entry{
		Name: NameOf(path),
		Path: path,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		e.Err = fmt.Errorf("failed to read %s: %w", path, err)
		return e
	}
	e.Source = data

	v, err := tree.Parse(data, path)
	if err != nil {
		e.Err = err
		return e
	}
	e.Tree = v
	return e
}

// NameOf derives a metric name from a file path: the base name without
// its extension.
func NameOf(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
