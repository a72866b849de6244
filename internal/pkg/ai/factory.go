package ai

import (
	"fmt"

	"github.com/commitpilot/commitpilot/internal/pkg/config"
	apperrors "github.com/commitpilot/commitpilot/internal/pkg/errors"
)

// NewProvider creates the provider named in ps. The set is closed: an
// unknown name is a configuration error.
func NewProvider(ps config.ProviderSettings) (Provider, error) {
	aiConfig := ProviderConfig{
		APIKey:   ps.Token,
		Model:    ps.Model,
		Endpoint: ps.BaseURL,
	}

	var provider Provider
	switch ps.Name {
	case config.ProviderAITunnel:
		provider = NewAITunnelProvider(aiConfig)
	case config.ProviderOpenAI:
		provider = NewOpenAIProvider(aiConfig)
	case config.ProviderHuggingFace:
		provider = NewHuggingFaceProvider(aiConfig)
	default:
		return nil, apperrors.NewInvalidConfigError(fmt.Sprintf("unknown provider: %q", ps.Name))
	}

	// A missing token degrades to the fallback message at generation time.
	if err := provider.ValidateConfig(aiConfig); err != nil {
		if !apperrors.HasCode(err, apperrors.ErrMissingAPIKey) {
			return nil, err
		}
		apperrors.Debug("%s: %s", ps.Name, err.Error())
	}
	return provider, nil
}
