// Package store persists the audit trail: one record per processed message,
// keyed by the provider's message identifier. The record's presence is also
// the pipeline's idempotency check.
package store

import (
	"context"

	"github.com/hnguyen/mailtriage/internal/model"
)

// Store defines the persistence interface for audit records.
type Store interface {
	// GetRecord returns the record for the given message ID, or nil when
	// no record exists.
	GetRecord(ctx context.Context, messageID string) (*model.AuditRecord, error)

	// PutRecord inserts or replaces the record, keyed by its MessageID.
	PutRecord(ctx context.Context, rec model.AuditRecord) error

	// ListRecruiterRecords returns all records classified as recruiter
	// outreach, newest received first.
	ListRecruiterRecords(ctx context.Context) ([]model.AuditRecord, error)

	// Close releases the underlying database handle.
	Close() error
}
