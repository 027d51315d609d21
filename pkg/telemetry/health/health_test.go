package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		timeout time.Duration
		want    time.Duration
	}{
		{"default timeout", 0, 5 * time.Second},
		{"negative timeout", -time.Second, 5 * time.Second},
		{"custom timeout", 2 * time.Second, 2 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := New(tt.timeout).timeout; got != tt.want {
				t.Errorf("timeout = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestChecker_Checks(t *testing.T) {
	c := New(time.Second)
	c.RegisterCheck("manifest", func(context.Context) error { return nil })
	c.RegisterCheck("history", func(context.Context) error { return nil })
	c.RegisterCheck("manifest", func(context.Context) error { return nil })

	if got := strings.Join(c.Checks(), ","); got != "history,manifest" {
		t.Errorf("Checks() = %s, want history,manifest", got)
	}
}

func TestChecker_Readiness(t *testing.T) {
	tests := []struct {
		name       string
		checks     map[string]CheckFunc
		wantStatus string
		wantFailed []string
	}{
		{
			name:       "no checks",
			wantStatus: StatusReady,
		},
		{
			name: "all healthy",
			checks: map[string]CheckFunc{
				"history":  PingCheck(fakePinger{}),
				"manifest": func(context.Context) error { return nil },
			},
			wantStatus: StatusReady,
		},
		{
			name: "one failing",
			checks: map[string]CheckFunc{
				"history":  PingCheck(fakePinger{err: errors.New("database is locked")}),
				"manifest": func(context.Context) error { return nil },
			},
			wantStatus: StatusNotReady,
			wantFailed: []string{"history"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(time.Second)
			for name, check := range tt.checks {
				c.RegisterCheck(name, check)
			}

			status := c.Readiness(context.Background())
			if status.Status != tt.wantStatus {
				t.Errorf("Status = %q, want %q", status.Status, tt.wantStatus)
			}
			if len(status.Checks) != len(tt.checks) {
				t.Errorf("got %d results, want %d", len(status.Checks), len(tt.checks))
			}
			for _, name := range tt.wantFailed {
				if status.Checks[name].Status != StatusUnhealthy {
					t.Errorf("check %q = %+v, want unhealthy", name, status.Checks[name])
				}
			}
		})
	}
}

func TestChecker_Timeout(t *testing.T) {
	c := New(20 * time.Millisecond)
	block := make(chan struct{})
	defer close(block)
	c.RegisterCheck("stuck", func(context.Context) error {
		<-block
		return nil
	})

	status := c.Readiness(context.Background())
	result := status.Checks["stuck"]
	if result.Status != StatusUnhealthy || result.Message != ErrCheckTimeout.Error() {
		t.Errorf("stuck check = %+v, want timeout", result)
	}
}

func TestBuildCheck(t *testing.T) {
	tests := []struct {
		name    string
		state   BuildState
		wantErr string
	}{
		{"not yet built", BuildState{}, "no build has completed yet"},
		{"last build ok", BuildState{Ran: true, OK: true}, ""},
		{"last build failed", BuildState{Ran: true, Err: errors.New("validation failed for 1 of 3 declarations")}, "validation failed"},
		{"failed without error", BuildState{Ran: true}, "latest build failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := BuildCheck(func() BuildState { return tt.state })(context.Background())
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("error = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestLivenessHandler(t *testing.T) {
	c := New(time.Second)
	c.RegisterCheck("failing", func(context.Context) error { return errors.New("down") })

	rec := httptest.NewRecorder()
	c.LivenessHandler()(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	var got Status
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if got.Status != StatusOK {
		t.Errorf("Status = %q, want ok", got.Status)
	}
}

func TestReadinessHandler(t *testing.T) {
	c := New(time.Second)
	c.RegisterCheck("manifest", BuildCheck(func() BuildState { return BuildState{} }))

	rec := httptest.NewRecorder()
	c.ReadinessHandler()(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}

	rec = httptest.NewRecorder()
	c.ReadinessHandler()(rec, httptest.NewRequest(http.MethodHead, "/ready", nil))
	if rec.Body.Len() != 0 {
		t.Errorf("HEAD response has a body: %q", rec.Body.String())
	}
}

func TestVersionHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	VersionHandler("1.2.3")(rec, httptest.NewRequest(http.MethodGet, "/version", nil))

	var got VersionInfo
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if got.Version != "1.2.3" || got.GoVersion == "" {
		t.Errorf("VersionInfo = %+v", got)
	}
}
