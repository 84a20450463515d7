package draft

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hnguyen/mailtriage/internal/model"
)

// Render serializes the draft as a raw RFC 5322 message for an IMAP APPEND.
// The from address becomes both the From header and the domain-less part of
// the generated Message-ID; now stamps the Date header.
func Render(spec model.DraftSpec, from string, now time.Time) []byte {
	var sb strings.Builder

	writeHeader := func(name, value string) {
		sb.WriteString(name)
		sb.WriteString(": ")
		sb.WriteString(value)
		sb.WriteString("\r\n")
	}

	writeHeader("From", from)
	writeHeader("To", spec.To)
	writeHeader("Subject", spec.Subject)
	writeHeader("Date", now.Format(time.RFC1123Z))
	writeHeader("Message-ID", fmt.Sprintf("<%s@%s>", uuid.NewString(), messageIDDomain(from)))
	if spec.InReplyTo != "" {
		writeHeader("In-Reply-To", spec.InReplyTo)
	}
	if spec.References != "" {
		writeHeader("References", spec.References)
	}
	writeHeader("MIME-Version", "1.0")
	writeHeader("Content-Type", `text/plain; charset="UTF-8"`)
	sb.WriteString("\r\n")

	// Header section uses CRLF; the body keeps its LF line endings
	// normalized to CRLF for the wire.
	body := strings.ReplaceAll(spec.Body, "\r\n", "\n")
	sb.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))
	sb.WriteString("\r\n")

	return []byte(sb.String())
}

// messageIDDomain derives the Message-ID domain from the composing account's
// address, falling back to a local placeholder for malformed addresses.
func messageIDDomain(from string) string {
	if at := strings.LastIndex(from, "@"); at >= 0 && at+1 < len(from) {
		return strings.TrimRight(from[at+1:], ">")
	}
	return "localhost"
}
