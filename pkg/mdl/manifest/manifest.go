package manifest

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"p3a-hq/manifest/pkg/mdl/schema"
	"p3a-hq/manifest/pkg/mdl/tree"
)

// DefaultFileName is the name the manifest is written under.
const DefaultFileName = "p3a_manifest.json"

// Manifest is the assembled output of a successful run. It is immutable.
type Manifest struct {
	names   []string
	metrics map[string]*tree.Mapping
}

// Assemble wraps validated declarations into a manifest. Each declaration
// is emitted exactly as it was written.
func Assemble(decls map[string]*schema.Declaration) *Manifest {
	m := &Manifest{
		names:   make([]string, 0, len(decls)),
		metrics: make(map[string]*tree.Mapping, len(decls)),
	}
	for name, d := range decls {
		m.names = append(m.names, name)
		m.metrics[name] = d.Raw
	}
	sort.Strings(m.names)
	return m
}

// Names returns the metric names in ascending order.
func (m *Manifest) Names() []string {
	return append([]string(nil), m.names...)
}

// Len returns the number of metrics.
func (m *Manifest) Len() int {
	return len(m.names)
}

// Get returns the declaration of one metric as written.
func (m *Manifest) Get(name string) (*tree.Mapping, bool) {
	d, ok := m.metrics[name]
	return d, ok
}

// MarshalJSON encodes {"metrics": {...}} compactly. Metric names are
// sorted, so equal inputs always give identical bytes.
func (m *Manifest) MarshalJSON() ([]byte, error) {
	buf := []byte(`{"metrics":{`)
	for i, name := range m.names {
		if i > 0 {
			buf = append(buf, ',')
		}
		var err error
		if buf, err = tree.AppendJSON(buf, tree.Str(name)); err != nil {
			return nil, err
		}
		buf = append(buf, ':')
		if buf, err = tree.AppendJSON(buf, m.metrics[name]); err != nil {
			return nil, fmt.Errorf("metric %s: %w", name, err)
		}
	}
	return append(buf, "}}"...), nil
}

// Digest returns the hex SHA-256 of the serialised manifest.
func (m *Manifest) Digest() (string, error) {
	data, err := m.MarshalJSON()
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// WriteFile writes the manifest to path, creating the parent directory if
// needed. The file is replaced atomically.
func (m *Manifest) WriteFile(path string) error {
	data, err := m.MarshalJSON()
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".p3a_manifest-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		// Already renamed on success; removes leftovers on failure.
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("failed to set manifest permissions: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to replace manifest: %w", err)
	}
	return nil
}
