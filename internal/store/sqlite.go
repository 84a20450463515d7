package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/hnguyen/mailtriage/internal/model"
)

// SQLiteStore implements the Store interface using a local SQLite database.
type SQLiteStore struct {
	db *sqlx.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath,
// enables WAL mode, and runs any pending schema migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (s *SQLiteStore) runMigrations() error {
	currentVersion := 0

	var tableCount int
	err := s.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = s.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// auditRow is the flat database representation of an AuditRecord.
type auditRow struct {
	MessageID            string         `db:"message_id"`
	Sender               string         `db:"sender"`
	Subject              string         `db:"subject"`
	Body                 string         `db:"body"`
	ReceivedAt           time.Time      `db:"received_at"`
	IsRecruiter          bool           `db:"is_recruiter"`
	MentionsTopics       bool           `db:"mentions_topics"`
	IsFollowup           bool           `db:"is_followup"`
	RecruiterExplanation string         `db:"recruiter_explanation"`
	TopicExplanation     string         `db:"topic_explanation"`
	Details              sql.NullString `db:"details"`
	CreatedAt            time.Time      `db:"created_at"`
}

// GetRecord returns the stored record for messageID, or nil when absent.
func (s *SQLiteStore) GetRecord(
	ctx context.Context, messageID string,
) (*model.AuditRecord, error) {
	var row auditRow
	err := s.db.GetContext(ctx, &row,
		"SELECT * FROM audit_records WHERE message_id = ?", messageID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying audit record %s: %w", messageID, err)
	}

	rec, err := row.toRecord()
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// PutRecord inserts or replaces the record keyed by its MessageID.
func (s *SQLiteStore) PutRecord(
	ctx context.Context, rec model.AuditRecord,
) error {
	var details interface{}
	if rec.Details != nil {
		encoded, err := json.Marshal(rec.Details)
		if err != nil {
			return fmt.Errorf(
				"marshaling details for record %s: %w", rec.MessageID, err,
			)
		}
		details = string(encoded)
	}

	const query = `
		INSERT OR REPLACE INTO audit_records (
			message_id, sender, subject, body, received_at,
			is_recruiter, mentions_topics, is_followup,
			recruiter_explanation, topic_explanation,
			details, created_at
		) VALUES (
			?, ?, ?, ?, ?,
			?, ?, ?,
			?, ?,
			?, ?
		)`

	_, err := s.db.ExecContext(ctx, query,
		rec.MessageID, rec.Sender, rec.Subject, rec.Body, rec.ReceivedAt.UTC(),
		rec.Verdict.IsRecruiter, rec.Verdict.MentionsTopics, rec.Verdict.IsFollowup,
		rec.Verdict.RecruiterExplanation, rec.Verdict.TopicExplanation,
		details, rec.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("upserting audit record %s: %w", rec.MessageID, err)
	}
	return nil
}

// ListRecruiterRecords returns all recruiter records, newest received first.
func (s *SQLiteStore) ListRecruiterRecords(
	ctx context.Context,
) ([]model.AuditRecord, error) {
	var rows []auditRow
	err := s.db.SelectContext(ctx, &rows,
		"SELECT * FROM audit_records WHERE is_recruiter = 1 ORDER BY received_at DESC")
	if err != nil {
		return nil, fmt.Errorf("querying recruiter records: %w", err)
	}

	records := make([]model.AuditRecord, 0, len(rows))
	for _, row := range rows {
		rec, err := row.toRecord()
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func (r auditRow) toRecord() (model.AuditRecord, error) {
	rec := model.AuditRecord{
		MessageID:  r.MessageID,
		Sender:     r.Sender,
		Subject:    r.Subject,
		Body:       r.Body,
		ReceivedAt: r.ReceivedAt,
		Verdict: model.Verdict{
			IsRecruiter:          r.IsRecruiter,
			MentionsTopics:       r.MentionsTopics,
			IsFollowup:           r.IsFollowup,
			RecruiterExplanation: r.RecruiterExplanation,
			TopicExplanation:     r.TopicExplanation,
		},
		CreatedAt: r.CreatedAt,
	}

	if r.Details.Valid && r.Details.String != "" {
		var details model.JobDetails
		if err := json.Unmarshal([]byte(r.Details.String), &details); err != nil {
			return model.AuditRecord{}, fmt.Errorf(
				"unmarshaling details for record %s: %w", r.MessageID, err,
			)
		}
		rec.Details = &details
	}

	return rec, nil
}
