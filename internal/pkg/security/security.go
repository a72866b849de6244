// Package security masks secrets and checks token formats.
package security

import (
	"fmt"
	"regexp"
	"strings"
)

// APIKeyFormat holds the expected token shape per provider. A mismatch is
// reported as a warning; gateways sometimes issue other formats.
var APIKeyFormat = map[string]*regexp.Regexp{
	"aitunnel":    regexp.MustCompile(`^sk-[a-zA-Z0-9_-]{16,}$`),
	"openai":      regexp.MustCompile(`^sk-[a-zA-Z0-9_-]{20,}$`),
	"huggingface": regexp.MustCompile(`^hf_[a-zA-Z0-9]{16,}$`),
}

var expectedPrefix = map[string]string{
	"aitunnel":    "sk-",
	"openai":      "sk-",
	"huggingface": "hf_",
}

// MaskAPIKey masks an API key, showing only the last 4 characters.
func MaskAPIKey(key string) string {
	if len(key) <= 4 {
		return "****"
	}
	return strings.Repeat("*", len(key)-4) + key[len(key)-4:]
}

// TokenState describes a token for display without revealing it.
func TokenState(token string) string {
	if strings.TrimSpace(token) == "" {
		return "not set"
	}
	return "set (" + MaskAPIKey(token) + ")"
}

// ValidateAPIKeyFormat checks the shape of a token for a provider.
func ValidateAPIKeyFormat(provider, apiKey string) error {
	if apiKey == "" {
		return fmt.Errorf("API key is required for %s provider", provider)
	}
	if strings.TrimSpace(apiKey) != apiKey {
		return fmt.Errorf("API key for %s has leading or trailing whitespace", provider)
	}
	if len(apiKey) < 16 {
		return fmt.Errorf("API key appears to be invalid (too short)")
	}

	if pattern, ok := APIKeyFormat[provider]; ok && !pattern.MatchString(apiKey) {
		return fmt.Errorf("API key format appears invalid for %s provider (expected format: %s...)", provider, expectedPrefix[provider])
	}
	return nil
}

var sensitivePatterns = []struct {
	regex       *regexp.Regexp
	replacement string
}{
	{regexp.MustCompile(`sk-[a-zA-Z0-9_-]{16,}`), "sk-****"},
	{regexp.MustCompile(`hf_[a-zA-Z0-9]{16,}`), "hf_****"},
	{regexp.MustCompile(`Bearer\s+[a-zA-Z0-9._-]+`), "Bearer ****"},
	{regexp.MustCompile(`(?i)(api[_-]?key|apikey|api_secret|secret[_-]?key|[a-z]+_token)\s*[:=]\s*["']?[a-zA-Z0-9._-]+["']?`), "$1=****"},
	{regexp.MustCompile(`(?i)(password|passwd|pwd)\s*[:=]\s*["']?[^\s"']+["']?`), "$1=****"},
}

// SanitizeForLogging masks tokens, bearer headers and password assignments.
func SanitizeForLogging(s string) string {
	for _, p := range sensitivePatterns {
		s = p.regex.ReplaceAllString(s, p.replacement)
	}
	return s
}

// DataNotice is shown during setup.
const DataNotice = `CommitPilot sends your git diff and status to the configured text-generation
service (AITUNNEL, OpenAI or Hugging Face) to write commit messages.

- Do not stage secrets such as API keys or passwords.
- Review your changes before committing.
- Use -m to commit without contacting any service.`
