// Package ai provides the text-generation providers used to write commit messages.
package ai

import (
	"context"
	"time"
)

const (
	// DefaultTemperature is the sampling temperature for chat providers.
	DefaultTemperature = 0.3

	// DefaultMaxTokens bounds the completion length. A commit line is short.
	DefaultMaxTokens = 100

	// DefaultTimeout is the HTTP timeout for one provider call.
	DefaultTimeout = 30 * time.Second
)

// GenerateRequest carries a rendered prompt to a provider.
type GenerateRequest struct {
	Prompt       string
	SystemPrompt string
	MaxTokens    int
}

// GenerateResponse is a complete provider answer. Subject holds the
// extracted commit line; RawText is the unprocessed completion.
type GenerateResponse struct {
	Subject string
	Body    string
	Footer  string
	RawText string
}

// Message returns the commit message text.
func (r *GenerateResponse) Message() string {
	msg := r.Subject
	if r.Body != "" {
		msg += "\n\n" + r.Body
	}
	if r.Footer != "" {
		msg += "\n\n" + r.Footer
	}
	return msg
}

// ProviderConfig contains connection settings for a provider.
type ProviderConfig struct {
	APIKey      string
	Model       string
	Endpoint    string
	Temperature float32
	MaxTokens   int
	Timeout     time.Duration
}

// Provider is a text-generation backend. Each call is a single attempt.
type Provider interface {
	GenerateCommitMessage(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error)
	Name() string
	ValidateConfig(config ProviderConfig) error
}

// applyDefaults fills zero-valued fields shared by all providers.
func applyDefaults(config ProviderConfig, model, endpoint string) ProviderConfig {
	if config.Model == "" {
		config.Model = model
	}
	if config.Endpoint == "" {
		config.Endpoint = endpoint
	}
	if config.Temperature == 0 {
		config.Temperature = DefaultTemperature
	}
	if config.MaxTokens == 0 {
		config.MaxTokens = DefaultMaxTokens
	}
	if config.Timeout == 0 {
		config.Timeout = DefaultTimeout
	}
	return config
}
