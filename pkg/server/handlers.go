package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"p3a-hq/manifest/pkg/history"
)

const (
	defaultBuildsLimit = 20
	maxBuildsLimit     = 500
)

// BuildView is the JSON form of a recorded build, as served on /builds.
type BuildView struct {
	ID         string        `json:"id"`
	StartedAt  time.Time     `json:"started_at"`
	DurationMS float64       `json:"duration_ms"`
	Generation string        `json:"generation"`
	Outcome    string        `json:"outcome"`
	Total      int           `json:"declarations"`
	Failed     int           `json:"failed"`
	Violations int           `json:"violations"`
	Digest     string        `json:"digest,omitempty"`
	OutputPath string        `json:"output_path,omitempty"`
	Commit     string        `json:"commit,omitempty"`
	Dirty      bool          `json:"dirty,omitempty"`
	Failures   []FailureView `json:"failures,omitempty"`
}

// FailureView is a rejected declaration of a BuildView.
type FailureView struct {
	Metric     string `json:"metric"`
	Path       string `json:"path,omitempty"`
	Violations int    `json:"violations"`
}

// NewBuildView converts a recorded build to its JSON form.
func NewBuildView(b *history.Build) BuildView {
	v := BuildView{
		ID:         b.ID,
		StartedAt:  b.StartedAt.UTC(),
		DurationMS: float64(b.Duration.Microseconds()) / 1000,
		Generation: b.Generation,
		Outcome:    b.Outcome,
		Total:      b.Total,
		Failed:     b.Failed,
		Violations: b.Violations,
		Digest:     b.Digest,
		OutputPath: b.OutputPath,
		Commit:     b.Commit,
		Dirty:      b.Dirty,
	}
	for _, f := range b.Failures {
		v.Failures = append(v.Failures, FailureView(f))
	}
	return v
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if s.opts.Status == nil {
		writeError(w, http.StatusNotFound, "build status is not available")
		return
	}
	report := s.opts.Status.Last()
	if report == nil {
		writeError(w, http.StatusNotFound, "no build has completed yet")
		return
	}
	writeJSON(w, http.StatusOK, report.Summary())
}

func (s *Server) handleListBuilds(w http.ResponseWriter, r *http.Request) {
	limit := defaultBuildsLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxBuildsLimit)
	}

	builds, err := s.opts.History.List(r.Context(), limit)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "failed to list builds", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list builds")
		return
	}

	views := make([]BuildView, 0, len(builds))
	for _, b := range builds {
		views = append(views, NewBuildView(b))
	}
	writeJSON(w, http.StatusOK, map[string]any{"builds": views})
}

func (s *Server) handleGetBuild(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	b, err := s.opts.History.Get(r.Context(), id)
	if errors.Is(err, history.ErrNotFound) {
		writeError(w, http.StatusNotFound, "build not found")
		return
	}
	if err != nil {
		s.logger.ErrorContext(r.Context(), "failed to get build", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get build")
		return
	}
	writeJSON(w, http.StatusOK, NewBuildView(b))
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, map[string]string{"error": message})
}
