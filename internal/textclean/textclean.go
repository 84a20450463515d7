// Package textclean strips email noise (URLs, HTML tags, disclaimers,
// quoted reply chains) so that classification and prompting see only the
// content the sender actually wrote. Cleaned text is never stored as the
// canonical body.
package textclean

import (
	"regexp"
	"strings"
)

var (
	blankLinePattern = regexp.MustCompile(`\n\s*\n`)
	urlPattern       = regexp.MustCompile(`[a-zA-Z][a-zA-Z0-9+.-]*://\S+`)
	htmlTagPattern   = regexp.MustCompile(`<[^>]+>`)

	// Quoted replies start with an attribution line ("On ... wrote:");
	// forwarded mail repeats the original header block.
	quotedReplyPattern = regexp.MustCompile(`\bOn\b[^\n]*wrote:`)
	forwardPattern     = regexp.MustCompile(`(?s)From:.*?Sent:.*?To:.*?Subject:`)

	whitespacePattern = regexp.MustCompile(`\s+`)
)

// disclaimerMarkers introduce boilerplate appended after real content.
// Everything from the marker's line onward is dropped.
var disclaimerMarkers = []string{
	"CONFIDENTIAL",
	"DISCLAIMER",
	"Privileged/Confidential Information",
}

// Normalize cleans email text for LLM analysis. It is pure, total, and
// idempotent: malformed input degrades to an empty or partially cleaned
// string rather than failing. The rule pipeline runs until it reaches a
// fixpoint, since collapsing whitespace can join lines and expose a
// truncation match that a single pass would miss.
func Normalize(content string) string {
	for {
		next := normalizeOnce(content)
		if next == content {
			return content
		}
		content = next
	}
}

// normalizeOnce applies the cleaning rules in a fixed order; later rules
// assume earlier ones already ran.
func normalizeOnce(content string) string {
	// Collapse runs of blank lines to a single newline.
	content = blankLinePattern.ReplaceAllString(content, "\n")

	// Strip URLs and HTML tag spans.
	content = urlPattern.ReplaceAllString(content, "")
	content = htmlTagPattern.ReplaceAllString(content, "")

	// Truncate at the first disclaimer marker, from the start of its line.
	for _, marker := range disclaimerMarkers {
		content = truncateAtMarker(content, marker)
	}

	// Truncate quoted reply chains and forwarded header blocks.
	if loc := quotedReplyPattern.FindStringIndex(content); loc != nil {
		content = content[:loc[0]]
	}
	if loc := forwardPattern.FindStringIndex(content); loc != nil {
		content = content[:loc[0]]
	}

	// Collapse all remaining whitespace to single spaces and trim.
	content = whitespacePattern.ReplaceAllString(content, " ")
	return strings.TrimSpace(content)
}

// truncateAtMarker drops everything from the line containing the first
// case-insensitive occurrence of marker to the end of the text.
func truncateAtMarker(content, marker string) string {
	idx := strings.Index(
		strings.ToUpper(content), strings.ToUpper(marker),
	)
	if idx < 0 {
		return content
	}

	// Cut from the beginning of the marker's line so the partial line
	// does not survive.
	lineStart := strings.LastIndexByte(content[:idx], '\n')
	if lineStart < 0 {
		lineStart = 0
	}
	return content[:lineStart]
}
