package main

import (
	"os"
	"strings"
	"testing"

	"p3a-hq/manifest/pkg/cli"
)

func TestLint(t *testing.T) {
	tests := []struct {
		name       string
		files      map[string]string
		args       []string
		wantErr    bool
		wantStdout string
		wantStderr string
	}{
		{
			name:       "valid declarations",
			files:      map[string]string{"Brave.Core.Enabled.yaml": validPref, "Brave.Core.Count.yaml": validBucket},
			wantStdout: "Validated 2 declarations\n",
		},
		{
			name:       "empty directory",
			files:      nil,
			wantStdout: "Validated 0 declarations\n",
		},
		{
			name:       "invalid declaration",
			files:      map[string]string{"Brave.Core.Other.yaml": missingCadence},
			wantErr:    true,
			wantStderr: "Validation errors in Brave.Core.Other.yaml:",
		},
		{
			name:       "syntax error",
			files:      map[string]string{"Brave.Core.Broken.yaml": "cadence: [typical\n"},
			wantErr:    true,
			wantStderr: "Validation errors in Brave.Core.Broken.yaml:",
		},
		{
			name:       "json output",
			files:      map[string]string{"Brave.Core.Enabled.yaml": validPref},
			args:       []string{"--format", "json"},
			wantStdout: `"ok": true`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ws := newWorkspace(t, tt.files, "")

			args := append([]string{"lint", "--config", ws.config}, tt.args...)
			stdout, stderr, err := execute(t, args...)

			if (err != nil) != tt.wantErr {
				t.Fatalf("lint error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !cli.IsReported(err) {
				t.Errorf("lint error should be reported, got %v", err)
			}
			if tt.wantStdout != "" && !strings.Contains(stdout, tt.wantStdout) {
				t.Errorf("stdout = %q, want it to contain %q", stdout, tt.wantStdout)
			}
			if tt.wantStderr != "" && !strings.Contains(stderr, tt.wantStderr) {
				t.Errorf("stderr = %q, want it to contain %q", stderr, tt.wantStderr)
			}
			if _, err := os.Stat(ws.manifest); !os.IsNotExist(err) {
				t.Errorf("lint must not write the manifest, stat error = %v", err)
			}
		})
	}
}
