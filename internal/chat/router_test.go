// internal/chat/router_test.go
package chat

import (
	"context"
	"errors"
	"testing"

	"github.com/mwiater/recall/internal/providers"
)

// recordingClient is a ChatClient that records every request it receives.
type recordingClient struct {
	response string
	err      error
	calls    []providers.ChatRequest
}

func (c *recordingClient) Chat(ctx context.Context, req providers.ChatRequest) (string, error) {
	c.calls = append(c.calls, req)
	return c.response, c.err
}

func newTestRouter(t *testing.T, active providers.Identity) (*Router, *recordingClient, *recordingClient) {
	t.Helper()
	local := &recordingClient{response: "local"}
	cloud := &recordingClient{response: "cloud"}
	router, err := NewRouter(active, map[providers.Identity]providers.ChatClient{
		providers.Ollama: local,
		providers.OpenAI: cloud,
	})
	if err != nil {
		t.Fatalf("NewRouter returned error: %v", err)
	}
	return router, local, cloud
}

func TestNewRouterRejectsUnregisteredActive(t *testing.T) {
	_, err := NewRouter(providers.OpenAI, map[providers.Identity]providers.ChatClient{
		providers.Ollama: &recordingClient{},
	})
	if err == nil {
		t.Fatal("expected error for active identity without a client")
	}
}

func TestChatDispatchesToActiveClientOnly(t *testing.T) {
	router, local, cloud := newTestRouter(t, providers.Ollama)

	out, err := router.Chat(context.Background(), providers.ChatRequest{
		Messages: []providers.ChatMessage{{Role: "user", Content: "hi"}},
	})
	if err != nil {
		t.Fatalf("Chat returned error: %v", err)
	}
	if out != "local" {
		t.Errorf("Chat = %q, want local", out)
	}
	if len(local.calls) != 1 || len(cloud.calls) != 0 {
		t.Fatalf("expected only the local client invoked; local=%d cloud=%d", len(local.calls), len(cloud.calls))
	}

	if err := router.Use(providers.OpenAI); err != nil {
		t.Fatalf("Use returned error: %v", err)
	}
	out, err = router.Chat(context.Background(), providers.ChatRequest{})
	if err != nil {
		t.Fatalf("Chat returned error: %v", err)
	}
	if out != "cloud" {
		t.Errorf("Chat = %q, want cloud", out)
	}
	if len(local.calls) != 1 || len(cloud.calls) != 1 {
		t.Fatalf("expected only the cloud client invoked after switch; local=%d cloud=%d", len(local.calls), len(cloud.calls))
	}
}

func TestChatForwardsRequestUnchanged(t *testing.T) {
	router, local, _ := newTestRouter(t, providers.Ollama)

	req := providers.ChatRequest{
		Messages: []providers.ChatMessage{
			{Role: "system", Content: "grade strictly"},
			{Role: "user", Content: "the answer"},
		},
		Format: providers.FormatSchema,
		Schema: map[string]any{"type": "object"},
	}
	if _, err := router.Chat(context.Background(), req); err != nil {
		t.Fatalf("Chat returned error: %v", err)
	}

	got := local.calls[0]
	if len(got.Messages) != 2 || got.Messages[0].Content != "grade strictly" {
		t.Errorf("messages not forwarded unchanged: %+v", got.Messages)
	}
	if got.Format != providers.FormatSchema || got.Schema == nil {
		t.Errorf("format directive not forwarded unchanged: %+v", got)
	}
}

func TestChatPropagatesBackendError(t *testing.T) {
	router, local, _ := newTestRouter(t, providers.Ollama)
	wantErr := &providers.BackendError{Provider: providers.Ollama, Op: "chat", Err: errors.New("connection refused")}
	local.err = wantErr

	_, err := router.Chat(context.Background(), providers.ChatRequest{})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected the backend error propagated untouched, got %v", err)
	}
}

func TestUseRejectsUnknownProvider(t *testing.T) {
	router, err := NewRouter(providers.Ollama, map[providers.Identity]providers.ChatClient{
		providers.Ollama: &recordingClient{},
	})
	if err != nil {
		t.Fatalf("NewRouter returned error: %v", err)
	}

	if err := router.Use(providers.OpenAI); err == nil {
		t.Fatal("expected error switching to an unregistered provider")
	}
	if router.Active() != providers.Ollama {
		t.Errorf("Active = %q, want ollama after failed switch", router.Active())
	}
}

func TestVerifiedFlags(t *testing.T) {
	router, _, _ := newTestRouter(t, providers.Ollama)

	if router.Verified(providers.Ollama) {
		t.Error("expected ollama unverified at start")
	}
	router.MarkVerified(providers.Ollama)
	if !router.Verified(providers.Ollama) {
		t.Error("expected ollama verified after MarkVerified")
	}
	if router.Verified(providers.OpenAI) {
		t.Error("expected openai flag unaffected")
	}
}
