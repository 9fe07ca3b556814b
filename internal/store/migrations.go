package store

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS issue_cache (
	jira_key  TEXT PRIMARY KEY,
	summary   TEXT NOT NULL DEFAULT '',
	status    TEXT NOT NULL DEFAULT '',
	last_sync DATETIME NOT NULL,
	raw_data  TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_issue_cache_status ON issue_cache(status);
CREATE INDEX IF NOT EXISTS idx_issue_cache_last_sync ON issue_cache(last_sync);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
}
