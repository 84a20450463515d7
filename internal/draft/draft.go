// Package draft turns a generated reply into a correctly threaded draft
// message: recipient extraction, subject normalization, threading headers,
// and a quoted rendition of the original.
package draft

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/hnguyen/mailtriage/internal/model"
)

// CompositionError indicates that no valid recipient could be derived from
// the original message's sender data.
type CompositionError struct {
	Reason string
}

func (e *CompositionError) Error() string {
	return fmt.Sprintf("draft composition failed: %s", e.Reason)
}

// IsCompositionError reports whether err (or any error in its chain) is a
// CompositionError.
func IsCompositionError(err error) bool {
	var cerr *CompositionError
	return errors.As(err, &cerr)
}

// addrPattern extracts the bracketed address from a
// "Display Name <addr>" sender.
var addrPattern = regexp.MustCompile(`<([^<>\s]+)>`)

// quoteDateLayout renders the original message's date in the attribution
// line: weekday, month, day, year, 12-hour time.
const quoteDateLayout = "Monday, January 2, 2006 at 3:04 PM"

// Compose builds the DraftSpec for a reply to the original message. It is
// pure and deterministic: no backend calls, no clock reads. It fails with a
// CompositionError when the original carries neither a parseable address
// nor a non-empty sender string.
func Compose(original model.Message, replyBody string) (model.DraftSpec, error) {
	to, err := recipient(original.Sender)
	if err != nil {
		return model.DraftSpec{}, err
	}

	return model.DraftSpec{
		To:         to,
		Subject:    replySubject(original.Subject),
		Body:       replyWithQuote(original, replyBody),
		InReplyTo:  original.MessageID,
		References: original.MessageID,
	}, nil
}

// recipient returns the bracketed address when the sender is in
// "Display Name <addr>" form, otherwise the trimmed sender string.
func recipient(sender string) (string, error) {
	if m := addrPattern.FindStringSubmatch(sender); m != nil {
		return m[1], nil
	}

	trimmed := strings.TrimSpace(sender)
	if trimmed == "" {
		return "", &CompositionError{Reason: "original message has no sender address"}
	}
	return trimmed, nil
}

// replySubject prefixes "Re: " unless the subject already starts with a
// case-insensitive reply marker.
func replySubject(subject string) string {
	if strings.HasPrefix(strings.ToLower(subject), "re:") {
		return subject
	}
	return "Re: " + subject
}

// replyWithQuote renders the reply text followed by an attribution line and
// the quoted original, each original line prefixed with "> ".
func replyWithQuote(original model.Message, replyBody string) string {
	var sb strings.Builder

	sb.WriteString(replyBody)
	sb.WriteString("\n\n")
	sb.WriteString(fmt.Sprintf(
		"On %s, %s wrote:\n",
		original.ReceivedAt.Format(quoteDateLayout),
		original.Sender,
	))

	for _, line := range strings.Split(original.Body, "\n") {
		sb.WriteString("> ")
		sb.WriteString(line)
		sb.WriteString("\n")
	}

	return strings.TrimRight(sb.String(), "\n")
}
