package textclean

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeStripsURLs(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{
			name:  "https link",
			input: "Check out https://example.com/jobs for details",
		},
		{
			name:  "http link",
			input: "See http://example.com now",
		},
		{
			name:  "link with query",
			input: "Apply at https://jobs.example.com/apply?id=42&src=email today",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.input)
			assert.NotContains(t, got, "http")
		})
	}
}

func TestNormalizeStripsHTMLTags(t *testing.T) {
	got := Normalize("<p>Hello <b>there</b></p>")
	assert.Equal(t, "Hello there", got)
}

func TestNormalizeTruncatesDisclaimers(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "confidential marker",
			input: "Important message.\n\nCONFIDENTIAL: do not distribute.\nMore boilerplate.",
			want:  "Important message.",
		},
		{
			name:  "disclaimer marker lowercase",
			input: "Real content here.\ndisclaimer: this email is intended only for...",
			want:  "Real content here.",
		},
		{
			name:  "privileged marker",
			input: "Hi.\nPrivileged/Confidential Information may be contained herein.",
			want:  "Hi.",
		},
		{
			name:  "marker at start removes everything",
			input: "CONFIDENTIAL NOTICE: whole email is boilerplate",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.input))
		})
	}
}

func TestNormalizeTruncatesQuotedReplies(t *testing.T) {
	input := "Thanks, sounds good!\nOn Mon, Jan 6, 2025 at 9:00 AM Pat Doe <pat@example.com> wrote:\n> earlier text\n> more earlier text"
	assert.Equal(t, "Thanks, sounds good!", Normalize(input))
}

func TestNormalizeTruncatesForwardedHeaders(t *testing.T) {
	input := "FYI see below.\nFrom: Sam <sam@example.com> Sent: Monday To: you Subject: old thread\nold body"
	assert.Equal(t, "FYI see below.", Normalize(input))
}

func TestNormalizeCollapsesWhitespace(t *testing.T) {
	input := "line one\n\n\n\nline   two\t\tend"
	assert.Equal(t, "line one line two end", Normalize(input))
}

func TestNormalizeEmptyAndDegenerateInput(t *testing.T) {
	assert.Equal(t, "", Normalize(""))
	assert.Equal(t, "", Normalize("   \n\t\n  "))
	assert.Equal(t, "", Normalize("<div><span></span></div>"))
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"",
		"plain text with no noise",
		"Check https://example.com\n\nCONFIDENTIAL: legal text follows",
		"Thanks!\nOn Tue, someone wrote:\n> quoted",
		"<p>html</p> and   spaces\n\n\neverywhere",
		// Whitespace collapse joins these two lines, so a second pass
		// would see "On Monday ... wrote:" without the fixpoint loop.
		"On Monday I will ship it.\nAs I wrote: tests pass.",
		strings.Repeat("word ", 100),
	}

	for _, input := range inputs {
		once := Normalize(input)
		twice := Normalize(once)
		assert.Equal(t, once, twice, "input %q", input)
	}
}
