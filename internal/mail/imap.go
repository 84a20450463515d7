package mail

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"

	"github.com/hnguyen/mailtriage/internal/model"
)

// IMAPHandler implements Handler against a live IMAP server using a single
// long-lived session per scan.
type IMAPHandler struct {
	host          string
	port          string
	username      string
	password      string
	tls           bool
	draftsMailbox string

	client *imapclient.Client
}

// NewIMAPHandler creates a handler for the given account. No network
// activity happens until Connect.
func NewIMAPHandler(
	cfg model.IMAPConfig, password string,
) *IMAPHandler {
	return &IMAPHandler{
		host:          cfg.Host,
		port:          cfg.Port,
		username:      cfg.Username,
		password:      password,
		tls:           cfg.TLS,
		draftsMailbox: cfg.DraftsMailbox,
	}
}

// Connect dials the server, authenticates, and selects INBOX.
func (h *IMAPHandler) Connect(_ context.Context) error {
	addr := h.host + ":" + h.port

	var client *imapclient.Client
	var err error

	if h.tls {
		client, err = imapclient.DialTLS(addr, nil)
	} else {
		client, err = imapclient.DialStartTLS(addr, nil)
	}
	if err != nil {
		return &ConnectionError{
			Op:  "dial",
			Err: fmt.Errorf("connecting to %s: %w", addr, err),
		}
	}

	if err := client.Login(h.username, h.password).Wait(); err != nil {
		_ = client.Logout().Wait()
		return &ConnectionError{
			Op:  "login",
			Err: fmt.Errorf("authentication failed for %s: %w", h.username, err),
		}
	}

	if _, err := client.Select("INBOX", nil).Wait(); err != nil {
		_ = client.Logout().Wait()
		return &ConnectionError{
			Op:  "select",
			Err: fmt.Errorf("selecting INBOX: %w", err),
		}
	}

	h.client = client
	return nil
}

// ensureConnected rejects operations issued before Connect (or after
// Disconnect) with a ConnectionError instead of a nil dereference.
func (h *IMAPHandler) ensureConnected(op string) error {
	if h.client == nil {
		return &ConnectionError{Op: op, Err: errors.New("not connected")}
	}
	return nil
}

// Disconnect logs out and drops the session.
func (h *IMAPHandler) Disconnect() error {
	if h.client == nil {
		return nil
	}

	err := h.client.Logout().Wait()
	h.client = nil
	if err != nil {
		return fmt.Errorf("logging out: %w", err)
	}
	return nil
}

// ListUnread searches INBOX for messages without the seen flag.
func (h *IMAPHandler) ListUnread(
	_ context.Context, limit int,
) ([]uint32, error) {
	if err := h.ensureConnected("list unread"); err != nil {
		return nil, err
	}

	criteria := &imap.SearchCriteria{
		NotFlag: []imap.Flag{imap.FlagSeen},
	}

	searchData, err := h.client.UIDSearch(criteria, nil).Wait()
	if err != nil {
		return nil, fmt.Errorf("searching unread messages: %w", err)
	}

	uids := searchData.AllUIDs()
	if limit > 0 && len(uids) > limit {
		uids = uids[:limit]
	}

	out := make([]uint32, 0, len(uids))
	for _, uid := range uids {
		out = append(out, uint32(uid))
	}
	return out, nil
}

// Fetch retrieves one message's envelope and body. The body section is
// fetched with Peek so the read flag is untouched.
func (h *IMAPHandler) Fetch(
	_ context.Context, uid uint32,
) (model.Message, error) {
	if err := h.ensureConnected("fetch"); err != nil {
		return model.Message{}, err
	}

	uidSet := imap.UIDSetNum(imap.UID(uid))

	bodySection := &imap.FetchItemBodySection{Peek: true}
	fetchOpts := &imap.FetchOptions{
		Envelope:    true,
		UID:         true,
		BodySection: []*imap.FetchItemBodySection{bodySection},
	}

	fetchCmd := h.client.Fetch(uidSet, fetchOpts)
	defer fetchCmd.Close()

	msgData := fetchCmd.Next()
	if msgData == nil {
		return model.Message{}, fmt.Errorf("message UID %d not found", uid)
	}

	buf, err := msgData.Collect()
	if err != nil {
		return model.Message{}, fmt.Errorf("collecting message data: %w", err)
	}

	msg := messageFromEnvelope(buf.Envelope)
	if raw := buf.FindBodySection(bodySection); raw != nil {
		msg.Body = extractTextBody(raw)
	}

	if err := fetchCmd.Close(); err != nil {
		return msg, fmt.Errorf("closing fetch: %w", err)
	}
	return msg, nil
}

// MarkRead adds the seen flag.
func (h *IMAPHandler) MarkRead(ctx context.Context, uid uint32) error {
	return h.setSeen(ctx, uid, true)
}

// MarkUnread removes the seen flag.
func (h *IMAPHandler) MarkUnread(ctx context.Context, uid uint32) error {
	return h.setSeen(ctx, uid, false)
}

func (h *IMAPHandler) setSeen(
	_ context.Context, uid uint32, seen bool,
) error {
	if err := h.ensureConnected("store flags"); err != nil {
		return err
	}

	op := imap.StoreFlagsAdd
	if !seen {
		op = imap.StoreFlagsDel
	}

	storeCmd := h.client.Store(imap.UIDSetNum(imap.UID(uid)), &imap.StoreFlags{
		Op:     op,
		Silent: true,
		Flags:  []imap.Flag{imap.FlagSeen},
	}, nil)

	if err := storeCmd.Close(); err != nil {
		return fmt.Errorf("storing seen flag for UID %d: %w", uid, err)
	}
	return nil
}

// CreateDraft appends the raw message to the drafts mailbox with the draft
// flag set.
func (h *IMAPHandler) CreateDraft(_ context.Context, raw []byte) error {
	if err := h.ensureConnected("append draft"); err != nil {
		return err
	}

	appendCmd := h.client.Append(
		h.draftsMailbox, int64(len(raw)), &imap.AppendOptions{
			Flags: []imap.Flag{imap.FlagDraft},
			Time:  time.Now(),
		},
	)

	if _, err := appendCmd.Write(raw); err != nil {
		return fmt.Errorf("writing draft to %s: %w", h.draftsMailbox, err)
	}
	if err := appendCmd.Close(); err != nil {
		return fmt.Errorf("closing draft append: %w", err)
	}
	if _, err := appendCmd.Wait(); err != nil {
		return fmt.Errorf("appending draft to %s: %w", h.draftsMailbox, err)
	}
	return nil
}

// messageFromEnvelope maps the IMAP envelope to the pipeline's message
// form. A missing date falls back to the current time so downstream
// formatting never sees a zero value.
func messageFromEnvelope(env *imap.Envelope) model.Message {
	msg := model.Message{ReceivedAt: time.Now()}
	if env == nil {
		return msg
	}

	msg.MessageID = env.MessageID
	msg.Subject = env.Subject
	if !env.Date.IsZero() {
		msg.ReceivedAt = env.Date
	}

	if len(env.From) > 0 {
		from := env.From[0]
		if from.Name != "" {
			msg.Sender = fmt.Sprintf("%s <%s>", from.Name, from.Addr())
		} else {
			msg.Sender = from.Addr()
		}
	}

	return msg
}
