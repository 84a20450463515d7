// Package triage runs the scan pipeline: list unread mail, classify each
// message, write the audit record, and leave a decline draft for off-topic
// recruiter outreach.
package triage

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/hnguyen/mailtriage/internal/classify"
	"github.com/hnguyen/mailtriage/internal/draft"
	"github.com/hnguyen/mailtriage/internal/mail"
	"github.com/hnguyen/mailtriage/internal/model"
	"github.com/hnguyen/mailtriage/internal/respond"
	"github.com/hnguyen/mailtriage/internal/store"
)

// Report summarizes one scan pass.
type Report struct {
	// Scanned counts the unread messages the scan attempted.
	Scanned int

	// Drafted counts decline drafts stored this pass.
	Drafted int

	// Audited counts audit records written this pass.
	Audited int

	// SkippedSeen counts messages skipped because an audit record already
	// existed for their message ID.
	SkippedSeen int

	// SkippedFollowup counts messages set aside as thread follow-ups.
	SkippedFollowup int

	// Failed counts messages that hit an error: those without an audit
	// record stay unread and are retried next pass, while a draft append
	// that fails after its record was written is counted but not retried.
	Failed int
}

// Runner wires the mailbox, the classifier, the reply generator and the
// audit store into a single scan pass.
type Runner struct {
	handler    mail.Handler
	classifier *classify.Classifier
	generator  *respond.Generator
	records    store.Store
	logger     *zap.Logger

	fromAddr   string
	batchLimit int
	now        func() time.Time
}

// NewRunner creates a Runner. fromAddr is the account address used for the
// From header of composed drafts.
func NewRunner(
	handler mail.Handler,
	classifier *classify.Classifier,
	generator *respond.Generator,
	records store.Store,
	logger *zap.Logger,
	fromAddr string,
	batchLimit int,
) *Runner {
	return &Runner{
		handler:    handler,
		classifier: classifier,
		generator:  generator,
		records:    records,
		logger:     logger,
		fromAddr:   fromAddr,
		batchLimit: batchLimit,
		now:        time.Now,
	}
}

// Scan performs one pass over the unread inbox. Connection failures abort
// the pass; per-message failures are logged, counted, and leave the message
// unread so the next pass retries it. The mailbox session is closed exactly
// once on every path after a successful connect.
func (r *Runner) Scan(ctx context.Context) (Report, error) {
	var report Report

	if err := r.handler.Connect(ctx); err != nil {
		return report, err
	}
	defer func() {
		if err := r.handler.Disconnect(); err != nil {
			r.logger.Warn("disconnect failed", zap.Error(err))
		}
	}()

	uids, err := r.handler.ListUnread(ctx, r.batchLimit)
	if err != nil {
		return report, fmt.Errorf("listing unread messages: %w", err)
	}

	for _, uid := range uids {
		if ctx.Err() != nil {
			return report, ctx.Err()
		}

		report.Scanned++
		if err := r.processOne(ctx, uid, &report); err != nil {
			report.Failed++
			r.logger.Warn("message left unread after failure",
				zap.Uint32("uid", uid),
				zap.Error(err),
			)
		}
	}

	return report, nil
}

// processOne runs the full pipeline for a single message. A returned error
// means the message was left unread for the next pass.
func (r *Runner) processOne(
	ctx context.Context, uid uint32, report *Report,
) error {
	msg, err := r.handler.Fetch(ctx, uid)
	if err != nil {
		return fmt.Errorf("fetching UID %d: %w", uid, err)
	}

	// A message already in the audit store was fully handled by an earlier
	// pass; only its read flag needs repair.
	if msg.MessageID != "" {
		existing, err := r.records.GetRecord(ctx, msg.MessageID)
		if err != nil {
			return fmt.Errorf("checking audit store: %w", err)
		}
		if existing != nil {
			report.SkippedSeen++
			r.logger.Debug("already processed",
				zap.String("message_id", msg.MessageID))
			return r.handler.MarkRead(ctx, uid)
		}
	}

	verdict, err := r.classifier.Classify(ctx, msg.Subject, msg.Sender, msg.Body)
	if err != nil {
		return err
	}

	r.logger.Info("classified",
		zap.String("message_id", msg.MessageID),
		zap.String("subject", msg.Subject),
		zap.Bool("is_recruiter", verdict.IsRecruiter),
		zap.Bool("mentions_topics", verdict.MentionsTopics),
		zap.Bool("is_followup", verdict.IsFollowup),
	)

	// Follow-ups belong to conversations the operator already owns; they
	// are set aside without an audit record or a draft.
	if verdict.IsFollowup {
		report.SkippedFollowup++
		return r.handler.MarkRead(ctx, uid)
	}

	rec := model.AuditRecord{
		MessageID:  msg.MessageID,
		Sender:     msg.Sender,
		Subject:    msg.Subject,
		Body:       msg.Body,
		ReceivedAt: msg.ReceivedAt,
		Verdict:    verdict,
		CreatedAt:  r.now().UTC(),
	}

	if verdict.IsRecruiter {
		details, err := r.classifier.ExtractJobDetails(ctx, msg.Subject, msg.Body)
		if err != nil {
			// Extraction is best effort; the record is still written.
			r.logger.Warn("job detail extraction failed",
				zap.String("message_id", msg.MessageID),
				zap.Error(err),
			)
		} else {
			rec.Details = &details
		}
	}

	var rawDraft []byte
	var draftTo string
	if verdict.IsRecruiter && !verdict.MentionsTopics {
		spec, ok, err := r.composeDecline(ctx, msg)
		if err != nil {
			return err
		}
		if ok {
			rawDraft = draft.Render(spec, r.fromAddr, r.now())
			draftTo = spec.To
		}
	}

	// The record is written before the draft is appended: once it exists
	// the dedup check above keeps this message from ever being reprocessed,
	// so no fault ordering can produce a second draft. The cost is that an
	// append failure below loses the draft instead of retrying it.
	if err := r.records.PutRecord(ctx, rec); err != nil {
		return fmt.Errorf("writing audit record: %w", err)
	}
	report.Audited++

	if rawDraft != nil {
		if err := r.handler.CreateDraft(ctx, rawDraft); err != nil {
			report.Failed++
			r.logger.Warn("decline draft lost",
				zap.String("message_id", msg.MessageID),
				zap.Error(err),
			)
		} else {
			report.Drafted++
			r.logger.Info("decline draft stored",
				zap.String("message_id", msg.MessageID),
				zap.String("to", draftTo),
			)
		}
	}

	return r.handler.MarkRead(ctx, uid)
}

// composeDecline generates the reply text and composes the threaded draft.
// Generation failures leave the message unread for retry. A composition
// failure is terminal for this message (the sender can never be resolved),
// so it is logged and reported as no draft rather than as an error.
func (r *Runner) composeDecline(
	ctx context.Context, msg model.Message,
) (model.DraftSpec, bool, error) {
	reply, err := r.generator.Reply(ctx, msg)
	if err != nil {
		return model.DraftSpec{}, false, err
	}

	spec, err := draft.Compose(msg, reply)
	if err != nil {
		if draft.IsCompositionError(err) {
			r.logger.Warn("skipping draft",
				zap.String("message_id", msg.MessageID),
				zap.Error(err),
			)
			return model.DraftSpec{}, false, nil
		}
		return model.DraftSpec{}, false, err
	}

	return spec, true, nil
}
