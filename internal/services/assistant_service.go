package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/glucolog/glucolog/internal/apperrors"
)

// assistantPrompt scopes the model to general diabetes self-management
// questions and keeps it away from dosing advice.
const assistantPrompt = `You are a diabetes self-management assistant inside a glucose tracking app.

REQUIREMENTS:
- Answer questions about glucose readings, diet, exercise and daily routine
- Keep answers short and practical
- Never prescribe or adjust medication or insulin doses; for those, tell the user to ask their care team
- If the question is not related to diabetes self-management, say so briefly`

// AssistantService answers free-form user questions through Gemini.
// Optional: the app runs fine without an API key, the chat screen is
// simply absent.
type AssistantService struct {
	client *genai.Client
	model  string
}

// NewAssistantService creates the Gemini-backed assistant.
func NewAssistantService(ctx context.Context, apiKey string) (*AssistantService, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &AssistantService{
		client: client,
		model:  "gemini-1.5-flash",
	}, nil
}

// Ask sends one question and returns the model's answer.
func (s *AssistantService) Ask(ctx context.Context, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", apperrors.NewValidationError("question is empty")
	}

	model := s.client.GenerativeModel(s.model)
	resp, err := model.GenerateContent(ctx,
		genai.Text(assistantPrompt),
		genai.Text(question),
	)
	if err != nil {
		return "", apperrors.NewExternalAPIError(err, "Gemini")
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", apperrors.NewExternalAPIError(fmt.Errorf("empty response"), "Gemini")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}

	answer := strings.TrimSpace(sb.String())
	if answer == "" {
		return "", apperrors.NewExternalAPIError(fmt.Errorf("no text in response"), "Gemini")
	}
	return answer, nil
}

// Close releases the underlying client.
func (s *AssistantService) Close() error {
	return s.client.Close()
}
