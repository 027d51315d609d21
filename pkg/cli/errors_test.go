package cli

import (
	"errors"
	"fmt"
	"testing"

	"p3a-hq/manifest/pkg/config"
)

func TestConfigError(t *testing.T) {
	tests := []struct {
		name string
		err  *ConfigError
		want string
	}{
		{
			name: "with field",
			err:  NewConfigError("schema.generation", "unknown schema generation \"v9\""),
			want: `config error in schema.generation: unknown schema generation "v9"`,
		},
		{
			name: "without field",
			err:  NewConfigError("", "failed to read config file"),
			want: "config error: failed to read config file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestConfigErrors(t *testing.T) {
	verr := config.ValidationError{Errors: []config.FieldError{
		{Field: "compiler.workers", Message: "must be at least 1"},
		{Field: "output.path", Message: "cannot be empty"},
	}}

	got := ConfigErrors(fmt.Errorf("load: %w", verr))
	if len(got) != 2 {
		t.Fatalf("ConfigErrors() returned %d errors, want 2", len(got))
	}
	if got[0].Field != "compiler.workers" || got[1].Field != "output.path" {
		t.Errorf("fields = %q, %q", got[0].Field, got[1].Field)
	}

	plain := ConfigErrors(errors.New("permission denied"))
	if len(plain) != 1 || plain[0].Field != "" {
		t.Errorf("ConfigErrors(plain) = %v", plain)
	}

	if ConfigErrors(nil) != nil {
		t.Error("ConfigErrors(nil) should be nil")
	}
}

func TestCommandError(t *testing.T) {
	underlyingErr := errors.New("underlying error")
	err := NewCommandError("build", underlyingErr)

	expected := "command build failed: underlying error"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
	if !errors.Is(err, underlyingErr) {
		t.Error("errors.Is() should work with CommandError.Unwrap()")
	}
}

func TestReported(t *testing.T) {
	if Reported(nil) != nil {
		t.Error("Reported(nil) should be nil")
	}

	cause := errors.New("validation failed")
	err := fmt.Errorf("build: %w", Reported(cause))

	if !IsReported(err) {
		t.Error("IsReported() = false for a wrapped ReportedError")
	}
	if !errors.Is(err, cause) {
		t.Error("ReportedError should unwrap to its cause")
	}
	if IsReported(cause) {
		t.Error("IsReported() = true for a plain error")
	}
}
