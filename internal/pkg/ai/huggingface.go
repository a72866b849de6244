package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/commitpilot/commitpilot/internal/pkg/config"
	apperrors "github.com/commitpilot/commitpilot/internal/pkg/errors"
)

const (
	huggingFaceTemperature = 0.2
	huggingFaceTopP        = 0.95
)

// HuggingFaceProvider implements Provider for the legacy Hugging Face
// inference endpoint, which takes a single instruction-formatted input
// instead of chat messages.
type HuggingFaceProvider struct {
	httpClient *http.Client
	config     ProviderConfig
}

// HuggingFaceRequest is the inference API request body.
type HuggingFaceRequest struct {
	Inputs     string                `json:"inputs"`
	Parameters HuggingFaceParameters `json:"parameters"`
}

// HuggingFaceParameters are the text-generation parameters.
type HuggingFaceParameters struct {
	MaxNewTokens   int     `json:"max_new_tokens"`
	Temperature    float32 `json:"temperature"`
	TopP           float32 `json:"top_p"`
	ReturnFullText bool    `json:"return_full_text"`
}

// HuggingFaceGeneration is one element of the inference API response.
type HuggingFaceGeneration struct {
	GeneratedText string `json:"generated_text"`
}

// HuggingFaceAPIError represents a non-2xx answer from the inference API.
type HuggingFaceAPIError struct {
	StatusCode int
	Message    string
}

func (e *HuggingFaceAPIError) Error() string {
	return fmt.Sprintf("huggingface API error (status %d): %s", e.StatusCode, e.Message)
}

// NewHuggingFaceProvider creates a Hugging Face provider. A missing token is
// reported by GenerateCommitMessage, not here.
func NewHuggingFaceProvider(cfg ProviderConfig) *HuggingFaceProvider {
	if cfg.Temperature == 0 {
		cfg.Temperature = huggingFaceTemperature
	}
	cfg = applyDefaults(cfg, config.DefaultHuggingFaceModel, config.DefaultHuggingFaceBaseURL)

	return &HuggingFaceProvider{
		httpClient: newHTTPClient(cfg.Timeout),
		config:     cfg,
	}
}

// Name returns the provider name.
func (p *HuggingFaceProvider) Name() string {
	return config.ProviderHuggingFace
}

// ValidateConfig validates the provider configuration.
func (p *HuggingFaceProvider) ValidateConfig(cfg ProviderConfig) error {
	return validateProviderConfig(p.Name(), cfg)
}

// URL returns the inference URL for the configured model.
func (p *HuggingFaceProvider) URL() string {
	return strings.TrimRight(p.config.Endpoint, "/") + "/" + strings.TrimLeft(p.config.Model, "/")
}

// FormatInstruction wraps the prompts in the Mistral instruction format.
func FormatInstruction(systemPrompt, prompt string) string {
	if systemPrompt == "" {
		return fmt.Sprintf("<s>[INST] %s [/INST]", prompt)
	}
	return fmt.Sprintf("<s>[INST] %s [/INST]</s>\n<s>[INST] %s [/INST]", systemPrompt, prompt)
}

// GenerateCommitMessage generates a commit message using Hugging Face.
func (p *HuggingFaceProvider) GenerateCommitMessage(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error) {
	if req == nil {
		return nil, errors.New("request cannot be nil")
	}
	if err := validateTokenConfig(p.Name(), p.config); err != nil {
		return nil, err
	}

	maxTokens := p.config.MaxTokens
	if req.MaxTokens > 0 {
		maxTokens = req.MaxTokens
	}

	body := HuggingFaceRequest{
		Inputs: FormatInstruction(req.SystemPrompt, req.Prompt),
		Parameters: HuggingFaceParameters{
			MaxNewTokens:   maxTokens,
			Temperature:    p.config.Temperature,
			TopP:           huggingFaceTopP,
			ReturnFullText: false,
		},
	}

	url := p.URL()
	apperrors.LogAPIRequest(p.Name(), url, p.config.Model, len(req.Prompt))
	startTime := time.Now()

	status, rawText, err := p.doRequest(ctx, url, body)
	if err != nil {
		var apiErr *HuggingFaceAPIError
		if errors.As(err, &apiErr) {
			return nil, statusError(p.Name(), apiErr.StatusCode, apiErr.Message, err)
		}
		return nil, transportError(p.Name(), err)
	}
	apperrors.LogAPIResponse(p.Name(), status, len(rawText), time.Since(startTime))

	return buildResponse(p.Name(), rawText)
}

// doRequest performs the HTTP request and returns the generated text.
func (p *HuggingFaceProvider) doRequest(ctx context.Context, url string, payload HuggingFaceRequest) (int, string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.config.APIKey)

	httpResp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return 0, "", err
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return httpResp.StatusCode, "", fmt.Errorf("failed to read response: %w", err)
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return httpResp.StatusCode, "", &HuggingFaceAPIError{
			StatusCode: httpResp.StatusCode,
			Message:    string(respBody),
		}
	}

	text, err := parseGeneratedText(respBody)
	if err != nil {
		return httpResp.StatusCode, "", apperrors.Wrap(err, apperrors.ErrAIProviderFailed, "failed to parse huggingface response")
	}
	return httpResp.StatusCode, text, nil
}

// parseGeneratedText accepts both the list form [{"generated_text": ...}]
// and a single object.
func parseGeneratedText(body []byte) (string, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return "", nil
	}

	if trimmed[0] == '[' {
		var generations []HuggingFaceGeneration
		if err := json.Unmarshal(trimmed, &generations); err != nil {
			return "", err
		}
		if len(generations) == 0 {
			return "", nil
		}
		return generations[0].GeneratedText, nil
	}

	var generation HuggingFaceGeneration
	if err := json.Unmarshal(trimmed, &generation); err != nil {
		return "", err
	}
	return generation.GeneratedText, nil
}
