package llm

import (
	"context"
	"fmt"

	"github.com/hyperjump/surveyrag/internal/config"
)

// NewCompleter returns the completer for the configured provider.
func NewCompleter(ctx context.Context, cfg config.GenerationConfig) (Completer, error) {
	switch cfg.Provider {
	case config.ProviderAzureOpenAI:
		if cfg.Endpoint == "" {
			return nil, fmt.Errorf("generation endpoint is required for %s", cfg.Provider)
		}
		return NewAzureOpenAI(cfg.Endpoint, cfg.APIKey, cfg.APIVersion, cfg.Model, cfg.Deployment, cfg.Timeout), nil
	case config.ProviderOpenAI:
		return NewOpenAI(cfg.Endpoint, cfg.APIKey, cfg.Model, cfg.Timeout), nil
	case config.ProviderAnthropic:
		return NewAnthropic(cfg.APIKey, cfg.Endpoint, cfg.Model, cfg.Timeout), nil
	case config.ProviderGemini:
		g, err := NewGemini(ctx, cfg.APIKey, cfg.Endpoint, cfg.Model, cfg.Timeout)
		if err != nil {
			return nil, err
		}
		return g, nil
	default:
		return nil, fmt.Errorf("unknown generation provider %q", cfg.Provider)
	}
}

// ParamsFromConfig returns the fixed generation settings from cfg.
func ParamsFromConfig(cfg config.GenerationConfig) Params {
	p := DefaultParams()
	if cfg.MaxTokens > 0 {
		p.MaxTokens = cfg.MaxTokens
	}
	if cfg.Temperature != nil {
		p.Temperature = *cfg.Temperature
	}
	if cfg.Candidates > 0 {
		p.Candidates = cfg.Candidates
	}
	if cfg.Timeout > 0 {
		p.Timeout = cfg.Timeout
	}
	return p
}
