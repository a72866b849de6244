package ai

import (
	"context"

	"github.com/commitpilot/commitpilot/internal/pkg/config"
)

// AITunnelProvider implements Provider for AITUNNEL, an OpenAI-compatible
// gateway. It is the default provider.
type AITunnelProvider struct {
	*chatProvider
}

// NewAITunnelProvider creates an AITUNNEL provider. A missing token is
// reported by GenerateCommitMessage, not here.
func NewAITunnelProvider(cfg ProviderConfig) *AITunnelProvider {
	cfg = applyDefaults(cfg, config.DefaultAITunnelModel, config.DefaultAITunnelBaseURL)
	return &AITunnelProvider{chatProvider: newChatProvider(config.ProviderAITunnel, cfg)}
}

// Name returns the provider name.
func (p *AITunnelProvider) Name() string {
	return config.ProviderAITunnel
}

// ValidateConfig validates the provider configuration.
func (p *AITunnelProvider) ValidateConfig(cfg ProviderConfig) error {
	return validateProviderConfig(p.Name(), cfg)
}

// GenerateCommitMessage generates a commit message using AITUNNEL.
func (p *AITunnelProvider) GenerateCommitMessage(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error) {
	return p.generate(ctx, req)
}
