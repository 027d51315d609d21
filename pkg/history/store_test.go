package history

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func openTempStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(Config{Path: filepath.Join(t.TempDir(), "nested", "history.db")})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestOpen(t *testing.T) {
	store := openTempStore(t)

	if _, err := os.Stat(store.Path()); err != nil {
		t.Errorf("database file was not created: %v", err)
	}

	if _, err := Open(Config{}); err == nil {
		t.Error("Open() with empty path should fail")
	}
}

func TestOpen_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	first, err := Open(Config{Path: path})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := first.Record(context.Background(), &Build{Outcome: OutcomeSuccess, Generation: "v2"}); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	first.Close()

	second, err := Open(Config{Path: path})
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer second.Close()

	n, err := second.Count(context.Background())
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if n != 1 {
		t.Errorf("Count() = %d after reopen, want 1", n)
	}
}

func TestStore_RecordAndGet(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()

	started := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	build := &Build{
		StartedAt:  started,
		Duration:   42 * time.Millisecond,
		Generation: "v2",
		Outcome:    OutcomeFailure,
		Total:      5,
		Failed:     2,
		Violations: 3,
		Commit:     "0123abcd",
		Dirty:      true,
		Failures: []Failure{
			{Metric: "Brave.B", Path: "metrics/Brave.B.yaml", Violations: 1},
			{Metric: "Brave.A", Path: "metrics/Brave.A.yaml", Violations: 2},
		},
	}

	if err := store.Record(ctx, build); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if build.ID == "" {
		t.Fatal("Record() did not assign an ID")
	}

	got, err := store.Get(ctx, build.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	if !got.StartedAt.Equal(started) {
		t.Errorf("StartedAt = %v, want %v", got.StartedAt, started)
	}
	if got.Duration != build.Duration {
		t.Errorf("Duration = %v, want %v", got.Duration, build.Duration)
	}
	if got.Outcome != OutcomeFailure || got.OK() {
		t.Errorf("Outcome = %q, want failure", got.Outcome)
	}
	if got.Total != 5 || got.Failed != 2 || got.Violations != 3 {
		t.Errorf("counts = %d/%d/%d, want 5/2/3", got.Total, got.Failed, got.Violations)
	}
	if got.Digest != "" {
		t.Errorf("Digest = %q, want empty", got.Digest)
	}
	if got.Commit != "0123abcd" || !got.Dirty {
		t.Errorf("provenance = %q dirty=%v, want 0123abcd dirty", got.Commit, got.Dirty)
	}
	if len(got.Failures) != 2 || got.Failures[0].Metric != "Brave.A" {
		t.Errorf("Failures = %+v, want two sorted by metric", got.Failures)
	}
}

func TestStore_GetUnknown(t *testing.T) {
	store := openTempStore(t)

	_, err := store.Get(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
	_, err = store.LastSuccess(context.Background())
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("LastSuccess() error = %v, want ErrNotFound", err)
	}
}

func TestStore_ListAndLastSuccess(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	builds := []*Build{
		{StartedAt: base, Outcome: OutcomeSuccess, Generation: "v2", Digest: "d1"},
		{StartedAt: base.Add(time.Hour), Outcome: OutcomeSuccess, Generation: "v2", Digest: "d2"},
		{StartedAt: base.Add(2 * time.Hour), Outcome: OutcomeFailure, Generation: "v2",
			Failures: []Failure{{Metric: "Brave.X", Path: "x.yaml", Violations: 1}}},
	}
	for _, b := range builds {
		if err := store.Record(ctx, b); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}

	tests := []struct {
		name  string
		limit int
		want  int
	}{
		{"all", 0, 3},
		{"limited", 2, 2},
		{"limit above count", 10, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.List(ctx, tt.limit)
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			if len(got) != tt.want {
				t.Fatalf("List(%d) returned %d builds, want %d", tt.limit, len(got), tt.want)
			}
			if got[0].ID != builds[2].ID {
				t.Errorf("List() first = %s, want newest %s", got[0].ID, builds[2].ID)
			}
			if len(got[0].Failures) != 1 {
				t.Errorf("List() did not load failures: %+v", got[0])
			}
		})
	}

	last, err := store.LastSuccess(ctx)
	if err != nil {
		t.Fatalf("LastSuccess() error = %v", err)
	}
	if last.Digest != "d2" {
		t.Errorf("LastSuccess().Digest = %q, want d2", last.Digest)
	}
}

func TestStore_DeleteBefore(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()
	now := time.Now()

	old := &Build{StartedAt: now.AddDate(0, 0, -40), Outcome: OutcomeFailure, Generation: "v2",
		Failures: []Failure{{Metric: "Brave.Old", Path: "old.yaml", Violations: 1}}}
	recent := &Build{StartedAt: now.AddDate(0, 0, -1), Outcome: OutcomeSuccess, Generation: "v2"}
	for _, b := range []*Build{old, recent} {
		if err := store.Record(ctx, b); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}

	deleted, err := store.DeleteBefore(ctx, now.AddDate(0, 0, -30))
	if err != nil {
		t.Fatalf("DeleteBefore() error = %v", err)
	}
	if deleted != 1 {
		t.Errorf("DeleteBefore() = %d, want 1", deleted)
	}

	if _, err := store.Get(ctx, old.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("old build still present: %v", err)
	}
	if _, err := store.Get(ctx, recent.ID); err != nil {
		t.Errorf("recent build missing: %v", err)
	}

	var orphans int
	if err := store.db.QueryRow("SELECT COUNT(*) FROM build_failures;").Scan(&orphans); err != nil {
		t.Fatalf("count failures: %v", err)
	}
	if orphans != 0 {
		t.Errorf("%d failure rows left after deletion", orphans)
	}
}

func TestNewBuildID(t *testing.T) {
	a, b := NewBuildID(), NewBuildID()
	if a == b {
		t.Error("NewBuildID() returned the same ID twice")
	}
	if len(a) != 36 {
		t.Errorf("NewBuildID() = %q, want a UUID string", a)
	}
}
