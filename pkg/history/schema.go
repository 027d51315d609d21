package history

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

// schema creates the history tables. Times are stored as Unix nanoseconds.
const schema = `
CREATE TABLE IF NOT EXISTS builds (
    id TEXT PRIMARY KEY,
    started_at INTEGER NOT NULL,
    duration_ns INTEGER NOT NULL,
    generation TEXT NOT NULL,
    outcome TEXT NOT NULL,
    total INTEGER NOT NULL,
    failed INTEGER NOT NULL,
    violations INTEGER NOT NULL,
    digest TEXT,
    output_path TEXT,
    git_commit TEXT,
    git_dirty BOOLEAN NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS build_failures (
    build_id TEXT NOT NULL REFERENCES builds(id) ON DELETE CASCADE,
    metric TEXT NOT NULL,
    path TEXT NOT NULL,
    violations INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_builds_started_at ON builds(started_at);
CREATE INDEX IF NOT EXISTS idx_build_failures_build_id ON build_failures(build_id);
`

const insertSchemaVersion = `
INSERT INTO schema_version (version, applied_at)
VALUES (?, ?)
ON CONFLICT(version) DO NOTHING;
`

const getSchemaVersion = `
SELECT version FROM schema_version ORDER BY version DESC LIMIT 1;
`

const insertBuild = `
INSERT INTO builds (
    id, started_at, duration_ns, generation, outcome,
    total, failed, violations, digest, output_path, git_commit, git_dirty
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
`

const insertFailure = `
INSERT INTO build_failures (build_id, metric, path, violations)
VALUES (?, ?, ?, ?);
`

const selectBuilds = `
SELECT id, started_at, duration_ns, generation, outcome,
       total, failed, violations, digest, output_path, git_commit, git_dirty
FROM builds
`

const selectFailures = `
SELECT metric, path, violations FROM build_failures
WHERE build_id = ?
ORDER BY metric, path;
`
