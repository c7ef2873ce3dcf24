// internal/providers/provider.go

// Package providers defines the chat contract shared by the interchangeable
// LLM backends. It provides a common abstraction for sending a conversation
// and receiving raw text, regardless of the underlying implementation
// (Ollama, OpenAI).
package providers

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"
)

// Identity names one of the interchangeable chat backends.
type Identity string

const (
	// Ollama is the locally hosted model server.
	Ollama Identity = "ollama"
	// OpenAI is the cloud API.
	OpenAI Identity = "openai"
)

// ChatMessage represents a single message in a chat conversation.
// It contains the role of the message sender (e.g., "system", "user") and the
// message content.
type ChatMessage struct {
	Role    string
	Content string
}

// FormatDirective hints how the backend should shape its output. The strength
// of the guarantee varies by backend, so callers must always validate the
// returned text regardless of the directive used.
type FormatDirective int

const (
	// FormatNone leaves the response shape entirely up to the model.
	FormatNone FormatDirective = iota
	// FormatJSON requests a free-form JSON object.
	FormatJSON
	// FormatSchema requests decoding constrained to ChatRequest.Schema.
	// Backends without constrained decoding treat this as FormatJSON.
	FormatSchema
)

// ChatRequest encapsulates one conversation handed to a backend. It is
// constructed fresh per request and never mutated after dispatch.
type ChatRequest struct {
	Messages []ChatMessage
	Format   FormatDirective
	// Schema is the JSON Schema shape used when Format is FormatSchema.
	Schema map[string]any
}

// ChatClient is the capability every backend implements: send a conversation,
// get raw text back.
type ChatClient interface {
	Chat(ctx context.Context, req ChatRequest) (string, error)
}

// BackendError reports a failure talking to a backend, carrying the
// underlying cause (connection refused, timeout, HTTP error, vendor error
// payload).
type BackendError struct {
	Provider Identity
	Op       string
	Err      error
}

// Error implements the error interface.
func (e *BackendError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Provider, e.Op, e.Err)
}

// Unwrap exposes the underlying cause for errors.Is / errors.As.
func (e *BackendError) Unwrap() error {
	return e.Err
}

// IsUnreachable reports whether err stems from a connection-level failure,
// meaning the backend process is likely not running.
func IsUnreachable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr)
}
