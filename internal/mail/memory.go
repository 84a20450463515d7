package mail

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/hnguyen/mailtriage/internal/model"
)

// MemoryMessage is one mailbox entry in a MemoryHandler.
type MemoryMessage struct {
	Message model.Message
	Seen    bool
}

// MemoryHandler is an in-memory Handler for tests. It tracks read flags
// and stored drafts and can be told to fail specific operations.
type MemoryHandler struct {
	messages map[uint32]*MemoryMessage

	// Drafts collects every raw draft passed to CreateDraft.
	Drafts [][]byte

	// ConnectErr, FetchErr and DraftErr inject failures into the
	// corresponding operations.
	ConnectErr error
	FetchErr   error
	DraftErr   error

	connected   bool
	Connects    int
	Disconnects int
}

// NewMemoryHandler creates an empty in-memory mailbox.
func NewMemoryHandler() *MemoryHandler {
	return &MemoryHandler{messages: make(map[uint32]*MemoryMessage)}
}

// Add places an unread message in the mailbox under the given UID.
func (h *MemoryHandler) Add(uid uint32, msg model.Message) {
	h.messages[uid] = &MemoryMessage{Message: msg}
}

// Seen reports whether the message carries the seen flag.
func (h *MemoryHandler) Seen(uid uint32) bool {
	entry, ok := h.messages[uid]
	return ok && entry.Seen
}

func (h *MemoryHandler) Connect(_ context.Context) error {
	if h.ConnectErr != nil {
		return &ConnectionError{Op: "dial", Err: h.ConnectErr}
	}
	h.connected = true
	h.Connects++
	return nil
}

func (h *MemoryHandler) Disconnect() error {
	if !h.connected {
		return errors.New("not connected")
	}
	h.connected = false
	h.Disconnects++
	return nil
}

// ensureConnected mirrors the live handler's contract: every operation
// besides Connect and Disconnect fails with a ConnectionError while no
// session is open.
func (h *MemoryHandler) ensureConnected(op string) error {
	if !h.connected {
		return &ConnectionError{Op: op, Err: errors.New("not connected")}
	}
	return nil
}

func (h *MemoryHandler) ListUnread(
	_ context.Context, limit int,
) ([]uint32, error) {
	if err := h.ensureConnected("list unread"); err != nil {
		return nil, err
	}

	var uids []uint32
	for uid, entry := range h.messages {
		if !entry.Seen {
			uids = append(uids, uid)
		}
	}
	sort.Slice(uids, func(i, j int) bool { return uids[i] < uids[j] })

	if limit > 0 && len(uids) > limit {
		uids = uids[:limit]
	}
	return uids, nil
}

func (h *MemoryHandler) Fetch(
	_ context.Context, uid uint32,
) (model.Message, error) {
	if err := h.ensureConnected("fetch"); err != nil {
		return model.Message{}, err
	}
	if h.FetchErr != nil {
		return model.Message{}, h.FetchErr
	}

	entry, ok := h.messages[uid]
	if !ok {
		return model.Message{}, fmt.Errorf("message UID %d not found", uid)
	}
	return entry.Message, nil
}

func (h *MemoryHandler) MarkRead(_ context.Context, uid uint32) error {
	if err := h.ensureConnected("store flags"); err != nil {
		return err
	}
	return h.setSeen(uid, true)
}

func (h *MemoryHandler) MarkUnread(_ context.Context, uid uint32) error {
	if err := h.ensureConnected("store flags"); err != nil {
		return err
	}
	return h.setSeen(uid, false)
}

func (h *MemoryHandler) setSeen(uid uint32, seen bool) error {
	entry, ok := h.messages[uid]
	if !ok {
		return fmt.Errorf("message UID %d not found", uid)
	}
	entry.Seen = seen
	return nil
}

func (h *MemoryHandler) CreateDraft(_ context.Context, raw []byte) error {
	if err := h.ensureConnected("append draft"); err != nil {
		return err
	}
	if h.DraftErr != nil {
		return h.DraftErr
	}
	h.Drafts = append(h.Drafts, raw)
	return nil
}
