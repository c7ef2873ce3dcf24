// internal/providers/ollama/provider.go
// Package ollama provides a ChatClient backed by a local Ollama server, plus
// the model lifecycle operations the readiness prober needs.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mwiater/recall/internal/appconfig"
	"github.com/mwiater/recall/internal/logging"
	"github.com/mwiater/recall/internal/providers"
)

// Client talks to an Ollama server over its HTTP API. It implements
// providers.ChatClient and exposes the list/pull operations used at startup.
type Client struct {
	baseURL string
	model   string
	client  *http.Client
	timeout time.Duration
	debug   bool
}

// New constructs a Client configured with the application's Ollama URL, model
// name, and request timeout.
func New(cfg *appconfig.Config) *Client {
	timeout := cfg.RequestTimeout()
	return &Client{
		baseURL: cfg.OllamaURL,
		model:   cfg.ModelName,
		client: &http.Client{
			Timeout:   timeout,
			Transport: &http.Transport{ForceAttemptHTTP2: false},
		},
		timeout: timeout,
		debug:   cfg.Debug,
	}
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.model
}

// chatResponse defines the structure of a non-streaming /api/chat response.
type chatResponse struct {
	Model   string `json:"model"`
	Message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"message"`
	Done bool `json:"done"`
}

// tagsResponse defines the structure of the /api/tags response.
type tagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// Chat sends the conversation to /api/chat with streaming disabled and
// returns the assistant message content verbatim. FormatSchema is honored
// literally: the request carries the JSON Schema and the server constrains
// decoding to it.
func (c *Client) Chat(ctx context.Context, req providers.ChatRequest) (string, error) {
	messages := make([]map[string]string, 0, len(req.Messages))
	for _, msg := range req.Messages {
		messages = append(messages, map[string]string{"role": msg.Role, "content": msg.Content})
	}

	payload := map[string]any{
		"model":    c.model,
		"messages": messages,
		"stream":   false,
	}
	switch req.Format {
	case providers.FormatJSON:
		payload["format"] = "json"
	case providers.FormatSchema:
		payload["format"] = req.Schema
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", &providers.BackendError{Provider: providers.Ollama, Op: "chat", Err: err}
	}
	if c.debug {
		logging.LogRequest("RECALL->LLM", string(providers.Ollama), c.model, body)
	}

	respBody, err := c.post(ctx, "/api/chat", body)
	if err != nil {
		return "", &providers.BackendError{Provider: providers.Ollama, Op: "chat", Err: err}
	}
	if c.debug {
		logging.LogRequest("LLM->RECALL", string(providers.Ollama), c.model, respBody)
	}

	var result chatResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", &providers.BackendError{Provider: providers.Ollama, Op: "chat", Err: fmt.Errorf("decode response: %w", err)}
	}
	return result.Message.Content, nil
}

// Ping issues a lightweight request to determine whether the server is
// reachable. A connection error means the server is not running.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.get(ctx, "/api/tags")
	if err != nil {
		return &providers.BackendError{Provider: providers.Ollama, Op: "ping", Err: err}
	}
	return nil
}

// ListModels returns the names of the models installed on the server.
func (c *Client) ListModels(ctx context.Context) ([]string, error) {
	body, err := c.get(ctx, "/api/tags")
	if err != nil {
		return nil, &providers.BackendError{Provider: providers.Ollama, Op: "list models", Err: err}
	}

	var tags tagsResponse
	if err := json.Unmarshal(body, &tags); err != nil {
		return nil, &providers.BackendError{Provider: providers.Ollama, Op: "list models", Err: fmt.Errorf("decode response: %w", err)}
	}

	names := make([]string, len(tags.Models))
	for i, m := range tags.Models {
		names[i] = m.Name
	}
	return names, nil
}

// PullModel downloads the named model via /api/pull. The call blocks until
// the download completes; there is no way to interrupt it mid-flight.
func (c *Client) PullModel(ctx context.Context, name string) error {
	payload, err := json.Marshal(map[string]any{"name": name, "stream": false})
	if err != nil {
		return &providers.BackendError{Provider: providers.Ollama, Op: "pull model", Err: err}
	}
	logging.LogEvent("ollama: pulling model %s", name)

	body, err := c.post(ctx, "/api/pull", payload)
	if err != nil {
		return &providers.BackendError{Provider: providers.Ollama, Op: "pull model", Err: err}
	}

	var status struct {
		Status string `json:"status"`
		Error  string `json:"error"`
	}
	if err := json.Unmarshal(body, &status); err == nil && status.Error != "" {
		return &providers.BackendError{Provider: providers.Ollama, Op: "pull model", Err: fmt.Errorf("%s", status.Error)}
	}
	logging.LogEvent("ollama: pull of %s complete", name)
	return nil
}

// get issues a GET request against the Ollama API and returns the body of a
// 200 response.
func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	return c.do(req, path)
}

// post issues a POST request against the Ollama API and returns the body of a
// 200 response.
func (c *Client) post(ctx context.Context, path string, body []byte) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, path)
}

func (c *Client) do(req *http.Request, path string) ([]byte, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ollama: %s returned %s: %s", path, resp.Status, strings.TrimSpace(string(body)))
	}
	return body, nil
}
