package main

import (
	"errors"
	"strings"
	"testing"
	"time"

	"p3a-hq/manifest/pkg/cli"
	"p3a-hq/manifest/pkg/history"
)

func TestHistory_Disabled(t *testing.T) {
	ws := newWorkspace(t, nil, "")

	_, _, err := execute(t, "history", "--config", ws.config)
	var ce *cli.ConfigError
	if !errors.As(err, &ce) || ce.Field != "history.enabled" {
		t.Errorf("history error = %v, want config error on history.enabled", err)
	}
}

func TestHistory_Empty(t *testing.T) {
	ws := newWorkspace(t, nil, "  enabled: true\n")

	stdout, _, err := execute(t, "history", "--config", ws.config)
	if err != nil {
		t.Fatalf("history error = %v", err)
	}
	if stdout != "No builds recorded\n" {
		t.Errorf("stdout = %q", stdout)
	}
}

func TestHistory_InvalidLimit(t *testing.T) {
	if _, _, err := execute(t, "history", "--limit", "0"); err == nil {
		t.Error("history --limit 0 expected error")
	}
}

func TestWriteBuilds(t *testing.T) {
	builds := []*history.Build{
		{
			ID:         "b2",
			StartedAt:  time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC),
			Generation: "v2",
			Outcome:    history.OutcomeFailure,
			Total:      3,
			Failed:     1,
		},
		{
			ID:         "b1",
			StartedAt:  time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
			Generation: "v2",
			Outcome:    history.OutcomeSuccess,
			Total:      3,
			Commit:     "0123456789abcdef0123",
		},
	}

	var sb strings.Builder
	if err := writeBuilds(&sb, builds); err != nil {
		t.Fatalf("writeBuilds() error = %v", err)
	}

	lines := strings.Split(strings.TrimRight(sb.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want header plus 2:\n%s", len(lines), sb.String())
	}
	if !strings.HasPrefix(lines[0], "STARTED") {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.Contains(lines[1], "b2") || !strings.Contains(lines[1], "failure") {
		t.Errorf("first row = %q, want newest build first", lines[1])
	}
	if !strings.Contains(lines[2], "0123456789ab ") && !strings.HasSuffix(lines[2], "0123456789ab") {
		t.Errorf("commit not shortened: %q", lines[2])
	}
}
