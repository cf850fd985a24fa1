package db

// Schema version for migrations
const SchemaVersion = 2

// Collection tables, in snapshot order. Names are fixed; they are
// interpolated into SQL and must never come from input.
const (
	tableIssues      = "issues"
	tableSprints     = "sprints"
	tableProjects    = "projects"
	tableUsers       = "users"
	tableEpics       = "epics"
	tableReleases    = "releases"
	tableAutomations = "automations"
	tableLabels      = "labels"
	tableWorkspaces  = "workspaces"
)

var collectionTables = []string{
	tableIssues,
	tableSprints,
	tableProjects,
	tableUsers,
	tableEpics,
	tableReleases,
	tableAutomations,
	tableLabels,
	tableWorkspaces,
}

// Schema contains the database schema
const Schema = `
-- Schema version
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- ═══════════════════════════════════════════════════════════════
-- COLLECTIONS
-- One row per entity. position keeps the in-memory order, data holds
-- the entity as JSON.
-- ═══════════════════════════════════════════════════════════════

CREATE TABLE IF NOT EXISTS issues (
    id          TEXT PRIMARY KEY,
    position    INTEGER NOT NULL,
    data        TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS sprints (
    id          TEXT PRIMARY KEY,
    position    INTEGER NOT NULL,
    data        TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS projects (
    id          TEXT PRIMARY KEY,
    position    INTEGER NOT NULL,
    data        TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS users (
    id          TEXT PRIMARY KEY,
    position    INTEGER NOT NULL,
    data        TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS epics (
    id          TEXT PRIMARY KEY,
    position    INTEGER NOT NULL,
    data        TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS releases (
    id          TEXT PRIMARY KEY,
    position    INTEGER NOT NULL,
    data        TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS automations (
    id          TEXT PRIMARY KEY,
    position    INTEGER NOT NULL,
    data        TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS labels (
    id          TEXT PRIMARY KEY,
    position    INTEGER NOT NULL,
    data        TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS workspaces (
    id          TEXT PRIMARY KEY,
    position    INTEGER NOT NULL,
    data        TEXT NOT NULL
);

-- ═══════════════════════════════════════════════════════════════
-- SESSION
-- current_project, current_user, selected_issues (JSON values)
-- ═══════════════════════════════════════════════════════════════

CREATE TABLE IF NOT EXISTS session (
    key         TEXT PRIMARY KEY,
    value       TEXT NOT NULL
);

-- ═══════════════════════════════════════════════════════════════
-- HISTORY
-- ═══════════════════════════════════════════════════════════════

CREATE TABLE IF NOT EXISTS snapshot_history (
    id          TEXT PRIMARY KEY,
    saved_at    TEXT NOT NULL,
    issues      INTEGER NOT NULL DEFAULT 0,
    sprints     INTEGER NOT NULL DEFAULT 0,
    projects    INTEGER NOT NULL DEFAULT 0
);

-- ═══════════════════════════════════════════════════════════════
-- CUMULATIVE FLOW
-- Issue counts per status, one set per project per day
-- ═══════════════════════════════════════════════════════════════

CREATE TABLE IF NOT EXISTS cfd_snapshots (
    date        TEXT NOT NULL,
    project_id  TEXT NOT NULL,
    status      TEXT NOT NULL,
    count       INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (date, project_id, status)
);

CREATE INDEX IF NOT EXISTS idx_cfd_project_date ON cfd_snapshots(project_id, date);
CREATE INDEX IF NOT EXISTS idx_issues_position ON issues(position);
CREATE INDEX IF NOT EXISTS idx_sprints_position ON sprints(position);
`

// Views for reporting
const Views = `
-- Issue counts per status, read straight from the stored JSON
CREATE VIEW IF NOT EXISTS v_issue_status AS
SELECT
    json_extract(data, '$.status') AS status,
    COUNT(*) AS count
FROM issues
GROUP BY json_extract(data, '$.status');
`
