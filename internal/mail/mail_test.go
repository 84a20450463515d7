package mail

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hnguyen/mailtriage/internal/model"
)

func TestExtractTextBodyPlainPart(t *testing.T) {
	raw := []byte("From: r@agency.example\r\n" +
		"To: quinn@mail.example\r\n" +
		"Subject: hello\r\n" +
		"Content-Type: text/plain; charset=\"UTF-8\"\r\n" +
		"\r\n" +
		"Just the text.\r\n")

	body := extractTextBody(raw)
	assert.Contains(t, body, "Just the text.")
}

func TestExtractTextBodyHTMLFallback(t *testing.T) {
	raw := []byte("From: r@agency.example\r\n" +
		"To: quinn@mail.example\r\n" +
		"Subject: hello\r\n" +
		"Content-Type: text/html; charset=\"UTF-8\"\r\n" +
		"\r\n" +
		"<p>Hello &amp; welcome</p><p>Second line</p>\r\n")

	body := extractTextBody(raw)
	assert.Contains(t, body, "Hello & welcome")
	assert.Contains(t, body, "Second line")
	assert.NotContains(t, body, "<p>")
}

func TestExtractTextBodyUnparseableInput(t *testing.T) {
	body := extractTextBody([]byte("no headers at all"))
	assert.Equal(t, "no headers at all", body)
}

func TestStripHTMLEntities(t *testing.T) {
	got := stripHTML(`<div>a &lt;b&gt; &quot;c&quot;</div>`)
	assert.Equal(t, `a <b> "c"`, got)
}

func TestConnectionErrorDetection(t *testing.T) {
	err := &ConnectionError{Op: "login", Err: errors.New("bad credentials")}

	assert.True(t, IsConnectionError(err))
	assert.True(t, IsConnectionError(errors.Join(errors.New("outer"), err)))
	assert.False(t, IsConnectionError(errors.New("plain")))
	assert.Contains(t, err.Error(), "login")
}

func TestMemoryHandlerFlagsAndDrafts(t *testing.T) {
	ctx := context.Background()
	h := NewMemoryHandler()
	h.Add(1, model.Message{
		MessageID:  "<a@x>",
		Subject:    "first",
		ReceivedAt: time.Now(),
	})
	h.Add(2, model.Message{MessageID: "<b@x>", Subject: "second"})

	require.NoError(t, h.Connect(ctx))

	uids, err := h.ListUnread(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, []uint32{1, 2}, uids)

	require.NoError(t, h.MarkRead(ctx, 1))
	uids, err = h.ListUnread(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, []uint32{2}, uids)
	assert.True(t, h.Seen(1))

	require.NoError(t, h.MarkUnread(ctx, 1))
	assert.False(t, h.Seen(1))

	require.NoError(t, h.CreateDraft(ctx, []byte("raw draft")))
	require.Len(t, h.Drafts, 1)

	require.NoError(t, h.Disconnect())
	assert.Equal(t, 1, h.Disconnects)
}

func TestMemoryHandlerListUnreadLimit(t *testing.T) {
	ctx := context.Background()
	h := NewMemoryHandler()
	for uid := uint32(1); uid <= 5; uid++ {
		h.Add(uid, model.Message{Subject: "m"})
	}
	require.NoError(t, h.Connect(ctx))

	uids, err := h.ListUnread(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, []uint32{1, 2, 3}, uids)
}

func TestIMAPHandlerRejectsOpsWhileDisconnected(t *testing.T) {
	ctx := context.Background()
	h := NewIMAPHandler(model.IMAPConfig{
		Host:          "imap.example.com",
		Port:          "993",
		Username:      "quinn@mail.example",
		TLS:           true,
		DraftsMailbox: "Drafts",
	}, "secret")

	_, err := h.ListUnread(ctx, 10)
	assert.True(t, IsConnectionError(err))

	_, err = h.Fetch(ctx, 1)
	assert.True(t, IsConnectionError(err))

	assert.True(t, IsConnectionError(h.MarkRead(ctx, 1)))
	assert.True(t, IsConnectionError(h.MarkUnread(ctx, 1)))
	assert.True(t, IsConnectionError(h.CreateDraft(ctx, []byte("raw"))))

	// Disconnect without a session is a no-op, not an error.
	assert.NoError(t, h.Disconnect())
}

func TestMemoryHandlerRejectsOpsWhileDisconnected(t *testing.T) {
	ctx := context.Background()
	h := NewMemoryHandler()
	h.Add(1, model.Message{Subject: "m"})

	_, err := h.ListUnread(ctx, 0)
	assert.True(t, IsConnectionError(err))

	_, err = h.Fetch(ctx, 1)
	assert.True(t, IsConnectionError(err))

	assert.True(t, IsConnectionError(h.MarkRead(ctx, 1)))
	assert.True(t, IsConnectionError(h.MarkUnread(ctx, 1)))
	assert.True(t, IsConnectionError(h.CreateDraft(ctx, []byte("raw"))))

	// The same ops succeed once a session is open, and fail again after
	// it is closed.
	require.NoError(t, h.Connect(ctx))
	_, err = h.ListUnread(ctx, 0)
	assert.NoError(t, err)
	require.NoError(t, h.Disconnect())

	_, err = h.ListUnread(ctx, 0)
	assert.True(t, IsConnectionError(err))
}
