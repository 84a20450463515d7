package draft

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hnguyen/mailtriage/internal/model"
)

func originalMessage() model.Message {
	return model.Message{
		MessageID:  "<orig-123@mail.example>",
		Subject:    "Staff Engineer at Acme",
		Sender:     "Riley Recruiter <riley@agency.example>",
		Body:       "We have an exciting role.\nInterested?",
		ReceivedAt: time.Date(2025, 1, 6, 15, 4, 0, 0, time.UTC),
	}
}

func TestComposeExtractsBracketedRecipient(t *testing.T) {
	spec, err := Compose(originalMessage(), "No thanks.")
	require.NoError(t, err)
	assert.Equal(t, "riley@agency.example", spec.To)
}

func TestComposeBareAddressFallback(t *testing.T) {
	msg := originalMessage()
	msg.Sender = "  riley@agency.example  "

	spec, err := Compose(msg, "No thanks.")
	require.NoError(t, err)
	assert.Equal(t, "riley@agency.example", spec.To)
}

func TestComposeEmptySender(t *testing.T) {
	msg := originalMessage()
	msg.Sender = "   "

	_, err := Compose(msg, "No thanks.")
	require.Error(t, err)
	assert.True(t, IsCompositionError(err))
}

func TestComposeSubjectGainsReplyPrefixOnce(t *testing.T) {
	tests := []struct {
		subject string
		want    string
	}{
		{"Staff Engineer at Acme", "Re: Staff Engineer at Acme"},
		{"Re: Staff Engineer at Acme", "Re: Staff Engineer at Acme"},
		{"RE: Staff Engineer at Acme", "RE: Staff Engineer at Acme"},
		{"re: ping", "re: ping"},
	}

	for _, tt := range tests {
		msg := originalMessage()
		msg.Subject = tt.subject

		spec, err := Compose(msg, "No thanks.")
		require.NoError(t, err)
		assert.Equal(t, tt.want, spec.Subject)
	}
}

func TestComposeThreadingHeaders(t *testing.T) {
	spec, err := Compose(originalMessage(), "No thanks.")
	require.NoError(t, err)

	assert.Equal(t, "<orig-123@mail.example>", spec.InReplyTo)
	assert.Equal(t, "<orig-123@mail.example>", spec.References)
}

func TestComposeQuotesOriginal(t *testing.T) {
	spec, err := Compose(originalMessage(), "No thanks.")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(spec.Body, "No thanks.\n\n"))
	assert.Contains(t, spec.Body,
		"On Monday, January 6, 2025 at 3:04 PM, Riley Recruiter <riley@agency.example> wrote:")
	assert.Contains(t, spec.Body, "> We have an exciting role.")
	assert.Contains(t, spec.Body, "> Interested?")
}

func TestRenderHeadersAndBody(t *testing.T) {
	spec, err := Compose(originalMessage(), "No thanks.")
	require.NoError(t, err)

	raw := string(Render(spec, "quinn@mail.example",
		time.Date(2025, 1, 7, 8, 0, 0, 0, time.UTC)))

	header, _, found := strings.Cut(raw, "\r\n\r\n")
	require.True(t, found, "rendered draft must separate header and body")

	assert.Contains(t, header, "From: quinn@mail.example\r\n")
	assert.Contains(t, header, "To: riley@agency.example\r\n")
	assert.Contains(t, header, "Subject: Re: Staff Engineer at Acme\r\n")
	assert.Contains(t, header, "In-Reply-To: <orig-123@mail.example>\r\n")
	assert.Contains(t, header, "References: <orig-123@mail.example>\r\n")
	assert.Contains(t, header, `Content-Type: text/plain; charset="UTF-8"`)
	assert.Contains(t, header, "Message-ID: <")
	assert.Contains(t, header, "@mail.example>")

	// Body lines arrive CRLF-terminated.
	assert.Contains(t, raw, "No thanks.\r\n")
	assert.Contains(t, raw, "> Interested?")
}
