package ai

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	apperrors "github.com/commitpilot/commitpilot/internal/pkg/errors"
)

// chatProvider talks to an OpenAI-compatible chat completions API through
// go-openai. AITunnelProvider and OpenAIProvider are thin wrappers around it.
type chatProvider struct {
	name   string
	client *openai.Client
	config ProviderConfig
}

func newChatProvider(name string, config ProviderConfig) *chatProvider {
	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.Endpoint != "" {
		clientConfig.BaseURL = strings.TrimRight(config.Endpoint, "/")
	}
	clientConfig.HTTPClient = newHTTPClient(config.Timeout)

	return &chatProvider{
		name:   name,
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
	}
}

// newHTTPClient creates an HTTP client with a timeout and small connection pool.
func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        10,
			MaxIdleConnsPerHost: 5,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}

func validateTokenConfig(name string, config ProviderConfig) error {
	if strings.TrimSpace(config.APIKey) == "" {
		return apperrors.NewMissingAPIKeyError(name)
	}
	return nil
}

// validateProviderConfig checks the token and, when set, the endpoint scheme.
func validateProviderConfig(name string, config ProviderConfig) error {
	if err := validateTokenConfig(name, config); err != nil {
		return err
	}
	if config.Endpoint != "" && !strings.HasPrefix(config.Endpoint, "http://") && !strings.HasPrefix(config.Endpoint, "https://") {
		return apperrors.NewInvalidConfigError(fmt.Sprintf("%s_base_url must start with http:// or https://", name))
	}
	return nil
}

func (p *chatProvider) generate(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error) {
	if req == nil {
		return nil, errors.New("request cannot be nil")
	}
	if err := validateTokenConfig(p.name, p.config); err != nil {
		return nil, err
	}

	maxTokens := p.config.MaxTokens
	if req.MaxTokens > 0 {
		maxTokens = req.MaxTokens
	}

	var messages []openai.ChatCompletionMessage
	if req.SystemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.SystemPrompt,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Prompt,
	})

	chatReq := openai.ChatCompletionRequest{
		Model:       p.config.Model,
		Messages:    messages,
		Temperature: p.config.Temperature,
		MaxTokens:   maxTokens,
	}

	apperrors.LogAPIRequest(p.name, p.config.Endpoint, p.config.Model, len(req.Prompt))
	startTime := time.Now()

	resp, err := p.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return nil, wrapAPIError(p.name, err)
	}

	rawText := ""
	if len(resp.Choices) > 0 {
		rawText = resp.Choices[0].Message.Content
	}
	apperrors.LogAPIResponse(p.name, http.StatusOK, len(rawText), time.Since(startTime))

	return buildResponse(p.name, rawText)
}

// buildResponse extracts the commit line from a completion. An answer with
// no usable line is an error, never a partial message.
func buildResponse(provider, rawText string) (*GenerateResponse, error) {
	line := ExtractCommitLine(rawText)
	if line == "" {
		return nil, apperrors.NewEmptyResponseError(provider)
	}
	return &GenerateResponse{
		Subject: line,
		RawText: rawText,
	}, nil
}

// wrapAPIError maps transport and API failures onto the error taxonomy.
func wrapAPIError(provider string, err error) error {
	if err == nil {
		return nil
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return statusError(provider, apiErr.HTTPStatusCode, apiErr.Message, err)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return statusError(provider, reqErr.HTTPStatusCode, string(reqErr.Body), err)
	}

	return transportError(provider, err)
}

// statusError maps a non-2xx HTTP status to an AppError.
func statusError(provider string, status int, detail string, cause error) error {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		appErr := apperrors.NewAuthenticationError(provider)
		appErr.Cause = cause
		return appErr
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return apperrors.NewTimeoutError(cause)
	}

	detail = strings.TrimSpace(detail)
	if len(detail) > 200 {
		detail = detail[:200] + "..."
	}
	msg := fmt.Sprintf("%s API error (status %d)", provider, status)
	if detail != "" {
		msg += ": " + detail
	}
	return apperrors.Wrap(cause, apperrors.ErrAIProviderFailed, msg)
}

// transportError classifies failures that happened before a response arrived.
func transportError(provider string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.NewTimeoutError(err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return apperrors.NewTimeoutError(err)
		}
		return apperrors.NewNetworkError(err)
	}
	return apperrors.NewAIProviderError(provider, err)
}
