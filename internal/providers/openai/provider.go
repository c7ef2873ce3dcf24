// internal/providers/openai/provider.go
// Package openai provides a ChatClient backed by the OpenAI chat completion
// API.
package openai

import (
	"context"
	"fmt"
	"strings"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/mwiater/recall/internal/appconfig"
	"github.com/mwiater/recall/internal/logging"
	"github.com/mwiater/recall/internal/providers"
)

// Client talks to the OpenAI API. It implements providers.ChatClient.
//
// Unlike the local backend, OpenAI offers no schema-constrained decoding
// through this endpoint: the strongest available directive is "respond as a
// JSON object", so FormatSchema is downgraded to that and the caller's own
// validation carries the contract.
type Client struct {
	client *goopenai.Client
	model  string
	debug  bool
}

// New constructs a Client from the configured credential and model name.
// OpenAIBaseURL, when set, redirects requests (proxies, compatible servers).
func New(cfg *appconfig.Config) *Client {
	clientConfig := goopenai.DefaultConfig(cfg.OpenAIAPIKey)
	if strings.TrimSpace(cfg.OpenAIBaseURL) != "" {
		clientConfig.BaseURL = strings.TrimRight(cfg.OpenAIBaseURL, "/")
	}
	return &Client{
		client: goopenai.NewClientWithConfig(clientConfig),
		model:  cfg.OpenAIModelName,
		debug:  cfg.Debug,
	}
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.model
}

// Chat sends the conversation as a chat completion request and returns the
// first choice's content.
func (c *Client) Chat(ctx context.Context, req providers.ChatRequest) (string, error) {
	messages := make([]goopenai.ChatCompletionMessage, 0, len(req.Messages))
	for _, msg := range req.Messages {
		messages = append(messages, goopenai.ChatCompletionMessage{
			Role:    chatRole(msg.Role),
			Content: msg.Content,
		})
	}

	request := goopenai.ChatCompletionRequest{
		Model:    c.model,
		Messages: messages,
	}
	if req.Format != providers.FormatNone {
		request.ResponseFormat = &goopenai.ChatCompletionResponseFormat{
			Type: goopenai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	if c.debug {
		logging.LogRequest("RECALL->LLM", string(providers.OpenAI), c.model, request)
	}

	resp, err := c.client.CreateChatCompletion(ctx, request)
	if err != nil {
		return "", &providers.BackendError{Provider: providers.OpenAI, Op: "chat", Err: err}
	}
	if len(resp.Choices) == 0 {
		return "", &providers.BackendError{Provider: providers.OpenAI, Op: "chat", Err: fmt.Errorf("no choices returned")}
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if c.debug {
		logging.LogRequest("LLM->RECALL", string(providers.OpenAI), c.model, content)
	}
	return content, nil
}

// chatRole maps our role strings onto the SDK's constants, defaulting to user.
func chatRole(role string) string {
	switch strings.ToLower(role) {
	case "system":
		return goopenai.ChatMessageRoleSystem
	case "assistant":
		return goopenai.ChatMessageRoleAssistant
	default:
		return goopenai.ChatMessageRoleUser
	}
}
