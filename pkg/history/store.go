package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// ErrNotFound is returned when a build ID is unknown.
var ErrNotFound = errors.New("build not found")

// Config contains configuration for the history store.
type Config struct {
	// Path is the database file path. Its directory is created if missing.
	Path string

	// BusyTimeout is how long to wait for locks before failing.
	// Default: 5 seconds
	BusyTimeout time.Duration

	// Logger receives store diagnostics. Default: discard.
	Logger *slog.Logger
}

// Store persists builds in SQLite.
type Store struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

// Open opens or creates the history database at cfg.Path.
func Open(cfg Config) (*Store, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("history path cannot be empty")
	}
	if cfg.BusyTimeout == 0 {
		cfg.BusyTimeout = 5 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	logger = logger.With("component", "history.store")

	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	// SQLite only supports a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	s := &Store{db: db, path: cfg.Path, logger: logger}
	if err := s.initialize(cfg.BusyTimeout); err != nil {
		db.Close()
		return nil, err
	}

	logger.Debug("history store opened", "path", cfg.Path)
	return s, nil
}

// initialize sets pragmas, creates the schema and checks its version.
func (s *Store) initialize(busyTimeout time.Duration) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		fmt.Sprintf("PRAGMA busy_timeout=%d;", busyTimeout.Milliseconds()),
		"PRAGMA foreign_keys=ON;",
	}
	for _, p := range pragmas {
		if _, err := s.db.Exec(p); err != nil {
			return fmt.Errorf("failed to apply %q: %w", p, err)
		}
	}

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create history schema: %w", err)
	}
	if _, err := s.db.Exec(insertSchemaVersion, SchemaVersion, time.Now().UnixNano()); err != nil {
		return fmt.Errorf("failed to record schema version: %w", err)
	}

	var version int
	if err := s.db.QueryRow(getSchemaVersion).Scan(&version); err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if version != SchemaVersion {
		return fmt.Errorf("history schema version mismatch: expected %d, got %d", SchemaVersion, version)
	}
	return nil
}

// Record stores b and its failures in one transaction. An empty ID is
// replaced by a fresh one, and a zero StartedAt by the current time.
func (s *Store) Record(ctx context.Context, b *Build) error {
	if b.ID == "" {
		b.ID = NewBuildID()
	}
	if b.StartedAt.IsZero() {
		b.StartedAt = time.Now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, insertBuild,
		b.ID, b.StartedAt.UnixNano(), int64(b.Duration), b.Generation, b.Outcome,
		b.Total, b.Failed, b.Violations,
		nullString(b.Digest), nullString(b.OutputPath), nullString(b.Commit), b.Dirty,
	)
	if err != nil {
		return fmt.Errorf("failed to insert build %s: %w", b.ID, err)
	}

	for _, f := range b.Failures {
		if _, err := tx.ExecContext(ctx, insertFailure, b.ID, f.Metric, f.Path, f.Violations); err != nil {
			return fmt.Errorf("failed to insert failure for %s: %w", f.Metric, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit build %s: %w", b.ID, err)
	}

	s.logger.Debug("build recorded", "build_id", b.ID, "outcome", b.Outcome)
	return nil
}

// Get returns the build with the given ID, including its failures.
func (s *Store) Get(ctx context.Context, id string) (*Build, error) {
	row := s.db.QueryRowContext(ctx, selectBuilds+"WHERE id = ?;", id)
	b, err := scanBuild(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	if err := s.loadFailures(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// List returns up to limit builds, newest first. A limit of 0 or less
// returns every build. Failures are loaded for each build.
func (s *Store) List(ctx context.Context, limit int) ([]*Build, error) {
	query := selectBuilds + "ORDER BY started_at DESC, id"
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query+";", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list builds: %w", err)
	}
	defer rows.Close()

	var builds []*Build
	for rows.Next() {
		b, err := scanBuild(rows)
		if err != nil {
			return nil, err
		}
		builds = append(builds, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list builds: %w", err)
	}
	// Failures are read after the cursor is closed: the pool holds a single
	// connection.
	rows.Close()

	for _, b := range builds {
		if err := s.loadFailures(ctx, b); err != nil {
			return nil, err
		}
	}
	return builds, nil
}

// LastSuccess returns the newest successful build, or ErrNotFound.
func (s *Store) LastSuccess(ctx context.Context) (*Build, error) {
	row := s.db.QueryRowContext(ctx,
		selectBuilds+"WHERE outcome = ? ORDER BY started_at DESC LIMIT 1;", OutcomeSuccess)
	b, err := scanBuild(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return b, err
}

// Count returns the number of stored builds.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM builds;").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count builds: %w", err)
	}
	return n, nil
}

// DeleteBefore removes builds started before t and returns how many were
// removed.
func (s *Store) DeleteBefore(ctx context.Context, t time.Time) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	cutoff := t.UnixNano()
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM build_failures WHERE build_id IN (SELECT id FROM builds WHERE started_at < ?);", cutoff); err != nil {
		return 0, fmt.Errorf("failed to delete build failures: %w", err)
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM builds WHERE started_at < ?;", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete builds: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted builds: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit deletion: %w", err)
	}
	return n, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) loadFailures(ctx context.Context, b *Build) error {
	rows, err := s.db.QueryContext(ctx, selectFailures, b.ID)
	if err != nil {
		return fmt.Errorf("failed to load failures of %s: %w", b.ID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var f Failure
		if err := rows.Scan(&f.Metric, &f.Path, &f.Violations); err != nil {
			return fmt.Errorf("failed to scan failure: %w", err)
		}
		b.Failures = append(b.Failures, f)
	}
	return rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBuild(row rowScanner) (*Build, error) {
	var (
		b                      Build
		startedAt, duration    int64
		digest, output, commit sql.NullString
	)
	err := row.Scan(
		&b.ID, &startedAt, &duration, &b.Generation, &b.Outcome,
		&b.Total, &b.Failed, &b.Violations, &digest, &output, &commit, &b.Dirty,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan build: %w", err)
	}
	b.StartedAt = time.Unix(0, startedAt)
	b.Duration = time.Duration(duration)
	b.Digest = digest.String
	b.OutputPath = output.String
	b.Commit = commit.String
	return &b, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
