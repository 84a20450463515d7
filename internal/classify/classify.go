// Package classify answers the triage questions about one email using a
// structured language-model call: is it recruiter outreach, does it mention
// the operator's topics of interest, and is it a follow-up.
package classify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/hnguyen/mailtriage/internal/llm"
	"github.com/hnguyen/mailtriage/internal/model"
	"github.com/hnguyen/mailtriage/internal/textclean"
)

// ClassificationError indicates that the backend call failed or returned a
// structure that does not conform to the verdict schema.
type ClassificationError struct {
	Stage string
	Err   error
}

func (e *ClassificationError) Error() string {
	return fmt.Sprintf("classification failed (%s): %v", e.Stage, e.Err)
}

func (e *ClassificationError) Unwrap() error {
	return e.Err
}

// IsClassificationError reports whether err (or any error in its chain) is
// a ClassificationError.
func IsClassificationError(err error) bool {
	var cerr *ClassificationError
	return errors.As(err, &cerr)
}

const classifySystem = "You are a helpful assistant that analyzes emails. " +
	"Record your analysis with the tool provided."

// verdictSchema constrains the structured classification output. All five
// fields are required; the backend rejecting or ignoring the schema is
// surfaced as a ClassificationError by the decode step.
var verdictSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"is_recruiter": {
			"type": "boolean",
			"description": "True when the email is from a recruiter or about a job opportunity and is the first email they have sent"
		},
		"mentions_topics": {
			"type": "boolean",
			"description": "True when the email meaningfully references one of the listed topics"
		},
		"is_followup": {
			"type": "boolean",
			"description": "True when the email is a reply or repeat contact within an existing thread"
		},
		"recruiter_explanation": {
			"type": "string",
			"description": "Brief justification for the recruiter answer"
		},
		"topic_explanation": {
			"type": "string",
			"description": "Brief justification for the topic answer"
		}
	},
	"required": ["is_recruiter", "mentions_topics", "is_followup", "recruiter_explanation", "topic_explanation"]
}`)

// Classifier issues structured-analysis calls for a fixed interest profile.
type Classifier struct {
	backend   llm.Backend
	profile   model.InterestProfile
	modelName string
	maxTokens int
}

// New creates a Classifier using the given backend and profile.
func New(
	backend llm.Backend,
	profile model.InterestProfile,
	modelName string,
	maxTokens int,
) *Classifier {
	return &Classifier{
		backend:   backend,
		profile:   profile,
		modelName: modelName,
		maxTokens: maxTokens,
	}
}

// Classify normalizes the subject and body, asks the backend the three
// triage questions, and decodes the answer into a Verdict. Exactly one
// outbound call is made; a failed call or malformed answer surfaces as a
// ClassificationError with no retry.
func (c *Classifier) Classify(
	ctx context.Context,
	subject, sender, body string,
) (model.Verdict, error) {
	cleanSubject := textclean.Normalize(subject)
	cleanBody := textclean.Normalize(body)

	prompt := c.buildPrompt(cleanSubject, sender, cleanBody)

	raw, err := c.backend.CallTool(ctx, llm.ToolRequest{
		Model:     c.modelName,
		System:    classifySystem,
		Prompt:    prompt,
		MaxTokens: c.maxTokens,
		Tool: llm.Tool{
			Name:        "record_verdict",
			Description: "Record the structured analysis of the email.",
			InputSchema: verdictSchema,
		},
	})
	if err != nil {
		return model.Verdict{}, &ClassificationError{Stage: "call", Err: err}
	}

	verdict, err := decodeVerdict(raw)
	if err != nil {
		return model.Verdict{}, &ClassificationError{Stage: "decode", Err: err}
	}

	return verdict, nil
}

// buildPrompt lays out the three yes/no questions with the profile's topic
// phrases spliced in.
func (c *Classifier) buildPrompt(subject, sender, body string) string {
	var sb strings.Builder

	sb.WriteString("Analyze this email and answer the following questions:\n")
	sb.WriteString("1. Is this from a recruiter or about a job opportunity, ")
	sb.WriteString("and is it the first email they have sent ")
	sb.WriteString("(false if this is a follow up or reply)?\n")
	sb.WriteString("2. Does it mention any of these topics in a meaningful way ")
	sb.WriteString("(be strict; incidental mentions do not count): ")
	sb.WriteString(strings.Join(c.profile.Topics, "; "))
	sb.WriteString("?\n")
	sb.WriteString("3. Is this a follow-up to an earlier conversation? ")
	sb.WriteString("A subject starting with a reply marker like \"Re:\" is a strong hint.\n\n")
	sb.WriteString("For the recruiter and topic questions, also provide a brief ")
	sb.WriteString("explanation of why you made that determination.\n\n")

	sb.WriteString("Subject: ")
	sb.WriteString(subject)
	sb.WriteString("\nFrom: ")
	sb.WriteString(sender)
	sb.WriteString("\nBody: ")
	sb.WriteString(body)

	return sb.String()
}

// decodeVerdict parses the raw tool input, treating missing fields and
// empty explanations as schema violations rather than silent defaults.
func decodeVerdict(raw json.RawMessage) (model.Verdict, error) {
	var out struct {
		IsRecruiter          *bool   `json:"is_recruiter"`
		MentionsTopics       *bool   `json:"mentions_topics"`
		IsFollowup           *bool   `json:"is_followup"`
		RecruiterExplanation *string `json:"recruiter_explanation"`
		TopicExplanation     *string `json:"topic_explanation"`
	}

	if err := json.Unmarshal(raw, &out); err != nil {
		return model.Verdict{}, fmt.Errorf("unmarshaling verdict: %w", err)
	}

	switch {
	case out.IsRecruiter == nil:
		return model.Verdict{}, fmt.Errorf("verdict missing is_recruiter")
	case out.MentionsTopics == nil:
		return model.Verdict{}, fmt.Errorf("verdict missing mentions_topics")
	case out.IsFollowup == nil:
		return model.Verdict{}, fmt.Errorf("verdict missing is_followup")
	case out.RecruiterExplanation == nil || strings.TrimSpace(*out.RecruiterExplanation) == "":
		return model.Verdict{}, fmt.Errorf("verdict missing recruiter_explanation")
	case out.TopicExplanation == nil || strings.TrimSpace(*out.TopicExplanation) == "":
		return model.Verdict{}, fmt.Errorf("verdict missing topic_explanation")
	}

	return model.Verdict{
		IsRecruiter:          *out.IsRecruiter,
		MentionsTopics:       *out.MentionsTopics,
		IsFollowup:           *out.IsFollowup,
		RecruiterExplanation: *out.RecruiterExplanation,
		TopicExplanation:     *out.TopicExplanation,
	}, nil
}
