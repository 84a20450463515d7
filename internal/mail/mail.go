// Package mail is the transport layer: it connects to the mailbox, lists
// and fetches unread messages, flips read flags, and stores drafts. The
// triage pipeline only sees the Handler interface, so tests can swap in an
// in-memory mailbox.
package mail

import (
	"context"
	"errors"
	"fmt"

	"github.com/hnguyen/mailtriage/internal/model"
)

// Handler is the mailbox surface the pipeline runs against.
type Handler interface {
	// Connect establishes the session and selects the inbox. It must be
	// called before any other operation.
	Connect(ctx context.Context) error

	// Disconnect tears the session down. Safe to call once after a
	// successful Connect.
	Disconnect() error

	// ListUnread returns the UIDs of unread inbox messages, oldest first,
	// capped at limit when limit > 0.
	ListUnread(ctx context.Context, limit int) ([]uint32, error)

	// Fetch retrieves one message without marking it read.
	Fetch(ctx context.Context, uid uint32) (model.Message, error)

	// MarkRead and MarkUnread flip the seen flag.
	MarkRead(ctx context.Context, uid uint32) error
	MarkUnread(ctx context.Context, uid uint32) error

	// CreateDraft stores a raw message in the drafts mailbox with the
	// draft flag set.
	CreateDraft(ctx context.Context, raw []byte) error
}

// ConnectionError indicates that the mailbox session could not be
// established or was lost. Unlike per-message failures, it aborts the scan.
type ConnectionError struct {
	Op  string
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("mailbox connection failed (%s): %v", e.Op, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// IsConnectionError reports whether err (or any error in its chain) is a
// ConnectionError.
func IsConnectionError(err error) bool {
	var cerr *ConnectionError
	return errors.As(err, &cerr)
}
