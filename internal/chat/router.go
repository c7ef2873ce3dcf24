// internal/chat/router.go
// Package chat routes conversations to the currently selected provider
// backend. It is the single call site the rest of the application uses for
// any LLM interaction.
package chat

import (
	"context"
	"fmt"

	"github.com/mwiater/recall/internal/providers"
)

// Router holds the active provider identity and dispatches chat requests to
// the matching client. Dispatch is pure: the request is forwarded unchanged
// and the raw text or error comes back as-is, with no retries at this layer.
//
// Router state is owned by the UI goroutine; it is mutated only from there,
// after background work has reported back, so no locking is needed.
type Router struct {
	active   providers.Identity
	clients  map[providers.Identity]providers.ChatClient
	verified map[providers.Identity]bool
}

// NewRouter builds a Router over the given clients with the initial active
// identity. The active identity must have a registered client.
func NewRouter(active providers.Identity, clients map[providers.Identity]providers.ChatClient) (*Router, error) {
	if _, ok := clients[active]; !ok {
		return nil, fmt.Errorf("no client registered for provider %q", active)
	}
	return &Router{
		active:   active,
		clients:  clients,
		verified: make(map[providers.Identity]bool),
	}, nil
}

// Active returns the currently selected provider identity.
func (r *Router) Active() providers.Identity {
	return r.active
}

// Has reports whether a client is registered for the given identity.
func (r *Router) Has(id providers.Identity) bool {
	_, ok := r.clients[id]
	return ok
}

// Use switches the active provider. Readiness gating happens at the caller:
// switching into the local provider requires a successful probe first unless
// it was already verified this session.
func (r *Router) Use(id providers.Identity) error {
	if !r.Has(id) {
		return fmt.Errorf("no client registered for provider %q", id)
	}
	r.active = id
	return nil
}

// Chat dispatches the request to the active provider's client. The client is
// resolved at call time, so switching identity afterwards does not affect a
// conversation already in flight.
func (r *Router) Chat(ctx context.Context, req providers.ChatRequest) (string, error) {
	return r.clients[r.active].Chat(ctx, req)
}

// MarkVerified records that a provider passed a readiness check this session.
func (r *Router) MarkVerified(id providers.Identity) {
	r.verified[id] = true
}

// Verified reports whether a provider has passed a readiness check this
// session.
func (r *Router) Verified(id providers.Identity) bool {
	return r.verified[id]
}
