package gateway

import (
	"fmt"

	"supergit/internal/config"
	"supergit/internal/logging"
)

// NewClient builds the provider client selected by config. Config values
// override provider defaults field by field.
func NewClient(cfg *config.Config) (Client, error) {
	switch cfg.LLM.Provider {
	case "anthropic", "":
		acfg := DefaultAnthropicConfig(cfg.LLM.APIKey)
		if cfg.LLM.Model != "" {
			acfg.Model = cfg.LLM.Model
		}
		if cfg.LLM.BaseURL != "" {
			acfg.BaseURL = cfg.LLM.BaseURL
		}
		if cfg.LLM.MaxTokens > 0 {
			acfg.MaxTokens = cfg.LLM.MaxTokens
		}
		acfg.Timeout = cfg.GetLLMTimeout()
		logging.Boot("LLM gateway: anthropic model=%s base=%s", acfg.Model, acfg.BaseURL)
		return NewAnthropicClientWithConfig(acfg), nil

	case "openai":
		ocfg := DefaultOpenAIConfig(cfg.LLM.APIKey)
		if cfg.LLM.Model != "" {
			ocfg.Model = cfg.LLM.Model
		}
		if cfg.LLM.BaseURL != "" {
			ocfg.BaseURL = cfg.LLM.BaseURL
		}
		if cfg.LLM.MaxTokens > 0 {
			ocfg.MaxTokens = cfg.LLM.MaxTokens
		}
		ocfg.Timeout = cfg.GetLLMTimeout()
		logging.Boot("LLM gateway: openai model=%s base=%s", ocfg.Model, ocfg.BaseURL)
		return NewOpenAIClientWithConfig(ocfg), nil

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.LLM.Provider)
	}
}
