// internal/providers/ollama/provider_test.go
package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mwiater/recall/internal/appconfig"
	"github.com/mwiater/recall/internal/providers"
)

func newTestClient(url string) *Client {
	cfg := &appconfig.Config{
		OllamaURL:      url,
		ModelName:      "gemma2:2b",
		TimeoutSeconds: 5,
	}
	return New(cfg)
}

func TestChatSendsNonStreamingRequest(t *testing.T) {
	t.Parallel()

	var capturedBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Fatalf("read body: %v", err)
		}
		capturedBody = body
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"model":"gemma2:2b","message":{"role":"assistant","content":"{\"question\":\"What is the GIL?\"}"},"done":true}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	out, err := client.Chat(context.Background(), providers.ChatRequest{
		Messages: []providers.ChatMessage{{Role: "user", Content: "ask me something"}},
		Format:   providers.FormatJSON,
	})
	if err != nil {
		t.Fatalf("Chat returned error: %v", err)
	}
	if out != `{"question":"What is the GIL?"}` {
		t.Errorf("unexpected content: %q", out)
	}

	var payload map[string]any
	if err := json.Unmarshal(capturedBody, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if payload["model"] != "gemma2:2b" {
		t.Errorf("model = %v, want gemma2:2b", payload["model"])
	}
	if stream, ok := payload["stream"].(bool); !ok || stream {
		t.Errorf("expected stream=false, got %v", payload["stream"])
	}
	if payload["format"] != "json" {
		t.Errorf("format = %v, want json", payload["format"])
	}
	messages, ok := payload["messages"].([]any)
	if !ok || len(messages) != 1 {
		t.Fatalf("expected one message, got %v", payload["messages"])
	}
}

func TestChatSendsSchemaFormat(t *testing.T) {
	t.Parallel()

	var capturedBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedBody, _ = io.ReadAll(r.Body)
		_, _ = w.Write([]byte(`{"message":{"role":"assistant","content":"{}"},"done":true}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	schema := map[string]any{
		"type":     "object",
		"required": []string{"result"},
	}
	_, err := client.Chat(context.Background(), providers.ChatRequest{
		Messages: []providers.ChatMessage{{Role: "user", Content: "grade"}},
		Format:   providers.FormatSchema,
		Schema:   schema,
	})
	if err != nil {
		t.Fatalf("Chat returned error: %v", err)
	}

	var payload map[string]any
	if err := json.Unmarshal(capturedBody, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	format, ok := payload["format"].(map[string]any)
	if !ok {
		t.Fatalf("expected format to carry the schema object, got %T", payload["format"])
	}
	if format["type"] != "object" {
		t.Errorf("schema not forwarded literally: %v", format)
	}
}

func TestChatHTTPErrorReturnsBackendError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"model 'gemma2:2b' not found"}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.Chat(context.Background(), providers.ChatRequest{
		Messages: []providers.ChatMessage{{Role: "user", Content: "hi"}},
	})
	if err == nil {
		t.Fatal("expected error for non-200 response")
	}
	var backendErr *providers.BackendError
	if !errors.As(err, &backendErr) {
		t.Fatalf("expected *BackendError, got %T: %v", err, err)
	}
	if backendErr.Provider != providers.Ollama {
		t.Errorf("Provider = %q, want ollama", backendErr.Provider)
	}
}

func TestChatConnectionRefusedIsUnreachable(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // nothing listening any more

	client := newTestClient(server.URL)
	_, err := client.Chat(context.Background(), providers.ChatRequest{
		Messages: []providers.ChatMessage{{Role: "user", Content: "hi"}},
	})
	if err == nil {
		t.Fatal("expected error against a closed server")
	}
	if !providers.IsUnreachable(err) {
		t.Errorf("expected IsUnreachable to classify the error, got: %v", err)
	}
}

func TestPing(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"models":[]}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	if err := client.Ping(context.Background()); err != nil {
		t.Fatalf("Ping returned error: %v", err)
	}
}

func TestListModels(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"models":[{"name":"gemma2:2b"},{"name":"llama3:8b"}]}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	names, err := client.ListModels(context.Background())
	if err != nil {
		t.Fatalf("ListModels returned error: %v", err)
	}
	if len(names) != 2 || names[0] != "gemma2:2b" || names[1] != "llama3:8b" {
		t.Errorf("unexpected names: %v", names)
	}
}

func TestPullModel(t *testing.T) {
	t.Parallel()

	var capturedBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/pull" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		capturedBody, _ = io.ReadAll(r.Body)
		_, _ = w.Write([]byte(`{"status":"success"}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	if err := client.PullModel(context.Background(), "gemma2:2b"); err != nil {
		t.Fatalf("PullModel returned error: %v", err)
	}

	var payload map[string]any
	if err := json.Unmarshal(capturedBody, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if payload["name"] != "gemma2:2b" {
		t.Errorf("name = %v, want gemma2:2b", payload["name"])
	}
	if stream, ok := payload["stream"].(bool); !ok || stream {
		t.Errorf("expected stream=false, got %v", payload["stream"])
	}
}

func TestPullModelVendorError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error":"pull model manifest: file does not exist"}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	err := client.PullModel(context.Background(), "no-such-model")
	if err == nil {
		t.Fatal("expected error for vendor error payload")
	}
	var backendErr *providers.BackendError
	if !errors.As(err, &backendErr) {
		t.Fatalf("expected *BackendError, got %T: %v", err, err)
	}
}
