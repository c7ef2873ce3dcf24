// internal/providerfactory/factory.go
package providerfactory

import (
	"fmt"

	"github.com/mwiater/recall/internal/appconfig"
	"github.com/mwiater/recall/internal/chat"
	"github.com/mwiater/recall/internal/providers"
	"github.com/mwiater/recall/internal/providers/ollama"
	"github.com/mwiater/recall/internal/providers/openai"
)

// NewRouter builds the provider clients the configuration allows and wires
// them into a chat router with the configured default active. The Ollama
// client is returned separately because the readiness prober drives its
// list/pull operations directly.
//
// The OpenAI client is only registered when a credential is present; with the
// default provider set to openai, configuration validation has already
// guaranteed that.
func NewRouter(cfg *appconfig.Config) (*chat.Router, *ollama.Client, error) {
	if cfg == nil {
		return nil, nil, fmt.Errorf("nil config provided to provider factory")
	}

	local := ollama.New(cfg)
	clients := map[providers.Identity]providers.ChatClient{
		providers.Ollama: local,
	}
	if cfg.OpenAIAPIKey != "" {
		clients[providers.OpenAI] = openai.New(cfg)
	}

	router, err := chat.NewRouter(providers.Identity(cfg.DefaultProvider), clients)
	if err != nil {
		return nil, nil, err
	}
	return router, local, nil
}
