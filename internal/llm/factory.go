package llm

import (
	"context"
	"fmt"

	"github.com/abhisek/skillforge/internal/store"
)

// NewProvider creates a Provider from configuration.
// The result is wrapped with retry and, when eventRepo is non-nil, request logging.
func NewProvider(ctx context.Context, cfg Config, eventRepo store.EventRepo) (Provider, error) {
	var base Provider
	var err error

	switch cfg.Provider {
	case "anthropic":
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case "openai":
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case "openrouter":
		base, err = NewOpenRouterProvider(cfg.OpenRouter)
	case "gemini":
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case "mock":
		return NewMockProvider(), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	// caller → retry → logging → base
	if eventRepo != nil {
		base = WithLogging(base, eventRepo)
	}
	return WithRetry(base, cfg.Retry), nil
}

// NewProviderFromConfig resolves cfg (falling back to API-key discovery when
// no provider is set) and builds a provider. It returns (nil, nil) when no
// provider could be found, so callers run in rule-based mode.
func NewProviderFromConfig(ctx context.Context, cfg Config, eventRepo store.EventRepo) (Provider, error) {
	if !cfg.Configured() {
		discovered, ok := DiscoverConfig()
		if !ok {
			return nil, nil
		}
		discovered.Retry = cfg.Retry
		if cfg.Timeout > 0 {
			discovered.Timeout = cfg.Timeout
		}
		cfg = discovered
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return NewProvider(ctx, cfg, eventRepo)
}
