// Package llm wraps the generation collaborator behind one Client interface.
// Calls pick a model tier rather than a model name, so the provider and its
// model lineup can change without touching the CV pipeline.
package llm

import (
	"fmt"
	"maps"
)

// ModelTier represents the capability level a call needs
type ModelTier string

const (
	// TierLite answers free-form questions about a record
	TierLite ModelTier = "lite"
	// TierStandard drafts and reviews CVs
	TierStandard ModelTier = "standard"
	// TierAdvanced refines a CV against review issues and feedback
	TierAdvanced ModelTier = "advanced"
)

// Tiers lists every tier, cheapest first
var Tiers = []ModelTier{TierLite, TierStandard, TierAdvanced}

// ParseTier validates a tier name from configuration
func ParseTier(name string) (ModelTier, error) {
	for _, tier := range Tiers {
		if string(tier) == name {
			return tier, nil
		}
	}
	return "", fmt.Errorf("unknown model tier %q", name)
}

// Provider names a generation backend
type Provider string

const (
	// ProviderGemini is Google Gemini through the genai SDK
	ProviderGemini Provider = "gemini"
	// ProviderOpenAI is any OpenAI-compatible chat completions endpoint
	ProviderOpenAI Provider = "openai"
)

// Config selects the provider and the model serving each tier
type Config struct {
	Provider    Provider
	Models      map[ModelTier]string
	BaseURL     string
	Temperature float32
}

// DefaultConfig returns the Gemini lineup
func DefaultConfig() *Config {
	return DefaultGeminiConfig()
}

// DefaultGeminiConfig returns the Gemini lineup
func DefaultGeminiConfig() *Config {
	return &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierLite:     "gemini-2.5-flash-lite",
			TierStandard: "gemini-2.5-flash",
			TierAdvanced: "gemini-2.5-pro",
		},
		Temperature: 0.1,
	}
}

// DefaultOpenAIConfig returns the lineup for the public OpenAI endpoint
func DefaultOpenAIConfig() *Config {
	return &Config{
		Provider: ProviderOpenAI,
		Models: map[ModelTier]string{
			TierLite:     "gpt-4o-mini",
			TierStandard: "gpt-4o",
			TierAdvanced: "gpt-4o",
		},
		BaseURL:     "https://api.openai.com/v1",
		Temperature: 0.1,
	}
}

// ConfigFor returns the default lineup for a provider name. Unknown names
// are rejected rather than silently served by Gemini.
func ConfigFor(provider string) (*Config, error) {
	switch Provider(provider) {
	case ProviderGemini, "":
		return DefaultGeminiConfig(), nil
	case ProviderOpenAI:
		return DefaultOpenAIConfig(), nil
	}
	return nil, fmt.Errorf("unknown llm provider %q", provider)
}

// GetModel returns the model serving tier. A tier with no model of its own
// borrows the standard model, then the lite one; "" means nothing is set.
func (c *Config) GetModel(tier ModelTier) string {
	for _, t := range []ModelTier{tier, TierStandard, TierLite} {
		if model, ok := c.Models[t]; ok {
			return model
		}
	}
	return ""
}

// WithModel returns a copy of c with tier served by model
func (c *Config) WithModel(tier ModelTier, model string) *Config {
	out := *c
	out.Models = maps.Clone(c.Models)
	if out.Models == nil {
		out.Models = make(map[ModelTier]string, 1)
	}
	out.Models[tier] = model
	return &out
}

// WithModels applies per-tier overrides keyed by tier name. Blank model
// names keep the default for that tier.
func (c *Config) WithModels(overrides map[string]string) (*Config, error) {
	out := c
	for name, model := range overrides {
		tier, err := ParseTier(name)
		if err != nil {
			return nil, err
		}
		if model == "" {
			continue
		}
		out = out.WithModel(tier, model)
	}
	return out, nil
}
