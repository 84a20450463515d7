package classify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hnguyen/mailtriage/internal/llm"
	"github.com/hnguyen/mailtriage/internal/model"
)

const extractSystem = "You are a helpful assistant that extracts structured " +
	"job information from emails. Record it with the tool provided, using " +
	"empty values for information the email does not contain."

var jobDetailsSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"company_name": {"type": "string", "description": "The name of the company"},
		"role_title": {"type": "string", "description": "The specific job title or role mentioned"},
		"job_type": {"type": "string", "description": "The type of role (full-time, contract, etc.)"},
		"location": {"type": "string", "description": "Work location or remote status"},
		"salary_range": {"type": "string", "description": "Any mentioned salary range"},
		"required_experience": {"type": "string", "description": "Years or level of experience required"},
		"technologies": {
			"type": "array",
			"items": {"type": "string"},
			"description": "Specific technologies or skills mentioned"
		},
		"recruiter_name": {"type": "string", "description": "Name of the recruiter"},
		"application_deadline": {"type": "string", "description": "Any mentioned deadline"}
	}
}`)

// ExtractJobDetails pulls structured job metadata (company, role, salary and
// the rest) out of a recruiter email. Failures leave the audit record's
// details empty; the caller decides whether that matters.
func (c *Classifier) ExtractJobDetails(
	ctx context.Context,
	subject, body string,
) (model.JobDetails, error) {
	prompt := fmt.Sprintf(
		"Extract the job details from this email.\n\nSubject: %s\nBody: %s",
		subject, body,
	)

	raw, err := c.backend.CallTool(ctx, llm.ToolRequest{
		Model:     c.modelName,
		System:    extractSystem,
		Prompt:    prompt,
		MaxTokens: c.maxTokens,
		Tool: llm.Tool{
			Name:        "record_job_details",
			Description: "Record the structured job information from the email.",
			InputSchema: jobDetailsSchema,
		},
	})
	if err != nil {
		return model.JobDetails{}, &ClassificationError{Stage: "extract", Err: err}
	}

	var details model.JobDetails
	if err := json.Unmarshal(raw, &details); err != nil {
		return model.JobDetails{}, &ClassificationError{
			Stage: "extract decode",
			Err:   fmt.Errorf("unmarshaling job details: %w", err),
		}
	}

	return details, nil
}
