// internal/quiz/quiz.go
// Package quiz builds the question-generation and answer-grading prompts,
// dispatches them through the chat router, and validates what the model
// returns.
package quiz

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mwiater/recall/internal/chat"
	"github.com/mwiater/recall/internal/logging"
	"github.com/mwiater/recall/internal/providers"
	"github.com/mwiater/recall/internal/schema"
)

// gradingSystemPrompt fixes the strict grading contract: three required
// fields, verdict is PASS or FAIL.
const gradingSystemPrompt = "You are a strict technical interviewer. Evaluate the user's answer.\n" +
	"Your output must be a valid JSON object with three fields:\n" +
	"1. 'result': 'PASS' or 'FAIL'\n" +
	"2. 'explanation': A concise explanation of why it passed or failed.\n" +
	"3. 'answer': The correct answer to the question, independent of the user's response."

// Service orchestrates question generation and answer evaluation against the
// active provider.
type Service struct {
	router *chat.Router
}

// New builds a Service over the given router.
func New(router *chat.Router) *Service {
	return &Service{router: router}
}

// GenerateQuestion asks the active provider for one conceptual question about
// the article text. Failures to parse the response are returned as errors for
// display; they are non-fatal to the session.
func (s *Service) GenerateQuestion(ctx context.Context, articleText string) (string, error) {
	prompt := fmt.Sprintf(
		"Read the following text:\n\n%s\n\n"+
			"Ask a single conceptual question based on this text to test understanding. "+
			"Never ask for code examples or implementation details. "+
			`Return JSON format: {"question": "..."}`,
		articleText,
	)

	raw, err := s.router.Chat(ctx, providers.ChatRequest{
		Messages: []providers.ChatMessage{{Role: "user", Content: prompt}},
		Format:   providers.FormatJSON,
	})
	if err != nil {
		logging.LogEvent("quiz: question generation failed: %v", err)
		return "", err
	}

	var payload struct {
		Question string `json:"question"`
	}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return "", fmt.Errorf("question response is not valid JSON: %w", err)
	}
	if strings.TrimSpace(payload.Question) == "" {
		return "", errors.New("question response is missing the question field")
	}
	return payload.Question, nil
}

// EvaluateAnswer grades the user's answer against the article and question.
// The format directive is chosen per active provider: schema-constrained
// decoding for the local backend, free-form JSON for the cloud one. Either
// way the response is validated client-side; a verdict is only produced when
// the full contract is met.
func (s *Service) EvaluateAnswer(ctx context.Context, articleText, question, userAnswer string) (schema.Verdict, error) {
	userPrompt := fmt.Sprintf("Context: %s\nQuestion: %s\nUser Answer: %s\n", articleText, question, userAnswer)

	req := providers.ChatRequest{
		Messages: []providers.ChatMessage{
			{Role: "system", Content: gradingSystemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Format: providers.FormatJSON,
	}
	if s.router.Active() == providers.Ollama {
		req.Format = providers.FormatSchema
		req.Schema = schema.JSONSchema()
	}

	raw, err := s.router.Chat(ctx, req)
	if err != nil {
		logging.LogEvent("quiz: evaluation failed: %v", err)
		return schema.Verdict{}, err
	}
	return schema.ParseVerdict(raw)
}
