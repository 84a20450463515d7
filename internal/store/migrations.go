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

CREATE TABLE IF NOT EXISTS audit_records (
	message_id            TEXT PRIMARY KEY,
	sender                TEXT NOT NULL DEFAULT '',
	subject               TEXT NOT NULL DEFAULT '',
	body                  TEXT NOT NULL DEFAULT '',
	received_at           DATETIME NOT NULL,
	is_recruiter          INTEGER NOT NULL DEFAULT 0 CHECK(is_recruiter IN (0, 1)),
	mentions_topics       INTEGER NOT NULL DEFAULT 0 CHECK(mentions_topics IN (0, 1)),
	is_followup           INTEGER NOT NULL DEFAULT 0 CHECK(is_followup IN (0, 1)),
	recruiter_explanation TEXT NOT NULL DEFAULT '',
	topic_explanation     TEXT NOT NULL DEFAULT '',
	details               TEXT,
	created_at            DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_audit_is_recruiter ON audit_records(is_recruiter);
CREATE INDEX IF NOT EXISTS idx_audit_received_at ON audit_records(received_at);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
}
