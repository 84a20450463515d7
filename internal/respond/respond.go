// Package respond generates the personalized decline reply for recruiter
// emails that fall outside the operator's topics of interest.
package respond

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hnguyen/mailtriage/internal/llm"
	"github.com/hnguyen/mailtriage/internal/model"
)

// GenerationError indicates that the reply-generation backend call failed.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("reply generation failed: %v", e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// IsGenerationError reports whether err (or any error in its chain) is a
// GenerationError.
func IsGenerationError(err error) bool {
	var gerr *GenerationError
	return errors.As(err, &gerr)
}

const generateSystem = "You are a helpful assistant that drafts polite, " +
	"casual email responses."

// replyTemperature trades determinism for stylistic variety; callers must
// not depend on exact wording.
const replyTemperature = 1.0

// Generator produces reply prose for a fixed interest profile.
type Generator struct {
	backend   llm.Backend
	profile   model.InterestProfile
	modelName string
	maxTokens int
}

// New creates a Generator using the given backend and profile.
func New(
	backend llm.Backend,
	profile model.InterestProfile,
	modelName string,
	maxTokens int,
) *Generator {
	return &Generator{
		backend:   backend,
		profile:   profile,
		modelName: modelName,
		maxTokens: maxTokens,
	}
}

// Reply generates a decline response to the original message: thanks the
// sender, acknowledges the specific role and company when the email names
// them, states the operator's looking-status and topic focus, and signs
// with the operator's name. The returned text is trimmed of surrounding
// whitespace.
func (g *Generator) Reply(
	ctx context.Context,
	msg model.Message,
) (string, error) {
	text, err := g.backend.Generate(ctx, llm.GenerateRequest{
		Model:       g.modelName,
		System:      generateSystem,
		Prompt:      g.buildPrompt(msg),
		MaxTokens:   g.maxTokens,
		Temperature: replyTemperature,
	})
	if err != nil {
		return "", &GenerationError{Err: err}
	}

	return strings.TrimSpace(text), nil
}

// buildPrompt assembles the generation instructions from the profile and
// the original message.
func (g *Generator) buildPrompt(msg model.Message) string {
	looking := "not currently looking for new opportunities"
	if g.profile.CurrentlyLooking {
		looking = "currently open to new opportunities"
	}

	var sb strings.Builder

	sb.WriteString("Generate a polite and personalized response to this recruiter email.\n")
	sb.WriteString("The response should:\n")
	sb.WriteString("1. Thank them for reaching out\n")
	sb.WriteString("2. Acknowledge the specific role and company they mentioned, if any\n")
	sb.WriteString("3. Explain that the recipient is ")
	sb.WriteString(looking)
	sb.WriteString("\n4. Mention a focus on ")
	sb.WriteString(g.profile.TopicDescription)
	sb.WriteString(", and that only roles aligned with this are of interest\n")
	sb.WriteString("5. Sign off as ")
	sb.WriteString(g.profile.Name)
	sb.WriteString("\n\nOriginal email:\nSubject: ")
	sb.WriteString(msg.Subject)
	sb.WriteString("\nFrom: ")
	sb.WriteString(msg.Sender)
	sb.WriteString("\nBody: ")
	sb.WriteString(msg.Body)

	return sb.String()
}
