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

CREATE TABLE IF NOT EXISTS comments (
	id             TEXT PRIMARY KEY,
	account_id     TEXT NOT NULL,
	claim_id       TEXT NOT NULL,
	claim_name     TEXT NOT NULL,
	commenter_id   TEXT NOT NULL,
	commenter_name TEXT NOT NULL,
	commenter_url  TEXT NOT NULL,
	comment        TEXT NOT NULL,
	is_hidden      INTEGER NOT NULL DEFAULT 0,
	timestamp      DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_comments_claim_id ON comments(claim_id);
CREATE INDEX IF NOT EXISTS idx_comments_account_id ON comments(account_id);
CREATE INDEX IF NOT EXISTS idx_comments_timestamp ON comments(timestamp);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
}
