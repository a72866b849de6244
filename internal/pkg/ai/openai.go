package ai

import (
	"context"

	"github.com/commitpilot/commitpilot/internal/pkg/config"
)

// OpenAIProvider implements Provider for the OpenAI API. A custom endpoint
// turns it into a client for any OpenAI-compatible service.
type OpenAIProvider struct {
	*chatProvider
}

// NewOpenAIProvider creates an OpenAI provider. A missing token is reported
// by GenerateCommitMessage, not here.
func NewOpenAIProvider(cfg ProviderConfig) *OpenAIProvider {
	cfg = applyDefaults(cfg, config.DefaultOpenAIModel, "")
	return &OpenAIProvider{chatProvider: newChatProvider(config.ProviderOpenAI, cfg)}
}

// Name returns the provider name.
func (p *OpenAIProvider) Name() string {
	return config.ProviderOpenAI
}

// ValidateConfig validates the provider configuration.
func (p *OpenAIProvider) ValidateConfig(cfg ProviderConfig) error {
	return validateProviderConfig(p.Name(), cfg)
}

// GenerateCommitMessage generates a commit message using OpenAI.
func (p *OpenAIProvider) GenerateCommitMessage(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error) {
	return p.generate(ctx, req)
}
