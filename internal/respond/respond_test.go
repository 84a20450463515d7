package respond

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hnguyen/mailtriage/internal/llm"
	"github.com/hnguyen/mailtriage/internal/model"
)

type fakeBackend struct {
	text     string
	err      error
	requests []llm.GenerateRequest
}

func (f *fakeBackend) Generate(
	_ context.Context, req llm.GenerateRequest,
) (string, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

func (f *fakeBackend) CallTool(
	_ context.Context, _ llm.ToolRequest,
) (json.RawMessage, error) {
	return nil, errors.New("not implemented")
}

func testMessage() model.Message {
	return model.Message{
		MessageID:  "<abc@mail.example>",
		Subject:    "Staff Engineer at Acme",
		Sender:     "Recruiter <r@agency.example>",
		Body:       "We think you'd be a great fit for our Staff Engineer role at Acme.",
		ReceivedAt: time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC),
	}
}

func TestReplyPromptCarriesProfileAndOriginal(t *testing.T) {
	backend := &fakeBackend{text: "Thanks for reaching out!\n"}
	g := New(backend, model.InterestProfile{
		Topics:           []string{"climate change"},
		TopicDescription: "roles focused on climate change and environmental impact",
		CurrentlyLooking: false,
		Name:             "Quinn Harper",
	}, "test-model", 1024)

	got, err := g.Reply(context.Background(), testMessage())
	require.NoError(t, err)

	// Output is passed through trimmed, never rewritten.
	assert.Equal(t, "Thanks for reaching out!", got)

	require.Len(t, backend.requests, 1)
	req := backend.requests[0]

	assert.Contains(t, req.Prompt, "Thank them")
	assert.Contains(t, req.Prompt, "not currently looking")
	assert.Contains(t, req.Prompt, "roles focused on climate change and environmental impact")
	assert.Contains(t, req.Prompt, "Quinn Harper")
	assert.Contains(t, req.Prompt, "Staff Engineer at Acme")
	assert.InDelta(t, 1.0, req.Temperature, 0.001)
}

func TestReplyCurrentlyLookingChangesStatusLine(t *testing.T) {
	backend := &fakeBackend{text: "ok"}
	g := New(backend, model.InterestProfile{
		Topics:           []string{"distributed systems"},
		TopicDescription: "distributed systems work",
		CurrentlyLooking: true,
		Name:             "Quinn Harper",
	}, "test-model", 1024)

	_, err := g.Reply(context.Background(), testMessage())
	require.NoError(t, err)

	require.Len(t, backend.requests, 1)
	assert.Contains(t, backend.requests[0].Prompt, "open to new opportunities")
}

func TestReplyBackendFailure(t *testing.T) {
	backend := &fakeBackend{err: errors.New("overloaded")}
	g := New(backend, model.InterestProfile{Name: "Q"}, "test-model", 1024)

	_, err := g.Reply(context.Background(), testMessage())
	require.Error(t, err)
	assert.True(t, IsGenerationError(err))
	assert.ErrorContains(t, err, "overloaded")
}
