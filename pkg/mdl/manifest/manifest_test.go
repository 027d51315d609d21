package manifest

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"p3a-hq/manifest/pkg/mdl/schema"
	"p3a-hq/manifest/pkg/mdl/tree"
)

func decls() map[string]*schema.Declaration {
	return map[string]*schema.Declaration{
		"zeta": {Raw: tree.Map("cadence", tree.Str("slow"), "ephemeral", tree.Boolean(true))},
		"alpha": {Raw: tree.Map(
			"definition", tree.Map("type", tree.Str("probe"), "histogram_name", tree.Str("A<B>")),
			"cadence", tree.Str("typical"),
		)},
		"empty": {Raw: tree.Map()},
	}
}

func TestMarshalJSON(t *testing.T) {
	m := Assemble(decls())

	got, err := m.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON() error = %v", err)
	}

	want := `{"metrics":{"alpha":{"definition":{"type":"probe","histogram_name":"A<B>"},"cadence":"typical"},"empty":{},"zeta":{"cadence":"slow","ephemeral":true}}}`
	if string(got) != want {
		t.Errorf("MarshalJSON() =\n%s\nwant\n%s", got, want)
	}

	var decoded map[string]map[string]any
	if err := json.Unmarshal(got, &decoded); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if len(decoded) != 1 || len(decoded["metrics"]) != 3 {
		t.Errorf("decoded = %v", decoded)
	}
}

func TestMarshalJSON_Empty(t *testing.T) {
	got, err := Assemble(nil).MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON() error = %v", err)
	}
	if string(got) != `{"metrics":{}}` {
		t.Errorf("MarshalJSON() = %s", got)
	}
}

func TestDigest_Deterministic(t *testing.T) {
	a, err := Assemble(decls()).Digest()
	if err != nil {
		t.Fatalf("Digest() error = %v", err)
	}
	for i := 0; i < 10; i++ {
		b, _ := Assemble(decls()).Digest()
		if a != b {
			t.Fatalf("Digest() changed between runs: %s vs %s", a, b)
		}
	}
	if len(a) != 64 {
		t.Errorf("Digest() length = %d", len(a))
	}
}

func TestAccessors(t *testing.T) {
	m := Assemble(decls())
	if m.Len() != 3 {
		t.Errorf("Len() = %d", m.Len())
	}
	names := m.Names()
	if names[0] != "alpha" || names[2] != "zeta" {
		t.Errorf("Names() = %v", names)
	}
	if _, ok := m.Get("empty"); !ok {
		t.Error("Get(empty) missing")
	}
	if _, ok := m.Get("nope"); ok {
		t.Error("Get(nope) found")
	}
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dist", DefaultFileName)

	m := Assemble(decls())
	if err := m.WriteFile(path); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	want, _ := m.MarshalJSON()
	if string(got) != string(want) {
		t.Errorf("file contents differ from MarshalJSON()")
	}

	// Rewriting replaces the file and leaves no temporary files behind.
	if err := Assemble(nil).WriteFile(path); err != nil {
		t.Fatalf("second WriteFile() error = %v", err)
	}
	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("output directory has %d entries, want 1", len(entries))
	}
	got, _ = os.ReadFile(path)
	if string(got) != `{"metrics":{}}` {
		t.Errorf("rewritten contents = %s", got)
	}
}
