package main

import (
	"strings"
	"testing"
)

func TestVersionCommandExists(t *testing.T) {
	if versionCmd == nil {
		t.Fatal("versionCmd is nil")
	}
	if versionCmd.Use != "version" {
		t.Errorf("versionCmd.Use = %q, want %q", versionCmd.Use, "version")
	}
	if versionCmd.Short == "" {
		t.Error("versionCmd.Short should not be empty")
	}
	if versionCmd.Run == nil {
		t.Error("versionCmd.Run should not be nil")
	}
}

func TestVersionOutput(t *testing.T) {
	origVersion, origCommit := Version, GitCommit
	Version, GitCommit = "0.1.0-test", "abc123"
	defer func() { Version, GitCommit = origVersion, origCommit }()

	stdout, _, err := execute(t, "version")
	if err != nil {
		t.Fatalf("version error = %v", err)
	}

	for _, want := range []string{
		"p3ac 0.1.0-test",
		"Git Commit: abc123",
		"Grammar: v1 flat",
		"Grammar: v2 compositional (default)",
	} {
		if !strings.Contains(stdout, want) {
			t.Errorf("output missing %q:\n%s", want, stdout)
		}
	}
}

func TestCompletion(t *testing.T) {
	tests := []struct {
		shell   string
		want    string
		wantErr bool
	}{
		{shell: "bash", want: "bash completion"},
		{shell: "zsh", want: "#compdef p3ac"},
		{shell: "fish", want: "complete -c p3ac"},
		{shell: "powershell", want: "Register-ArgumentCompleter"},
		{shell: "tcsh", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.shell, func(t *testing.T) {
			stdout, _, err := execute(t, "completion", tt.shell)
			if (err != nil) != tt.wantErr {
				t.Fatalf("completion error = %v, wantErr %v", err, tt.wantErr)
			}
			if !strings.Contains(stdout, tt.want) {
				t.Errorf("completion output missing %q", tt.want)
			}
		})
	}
}
