// Package config resolves CommitPilot settings from defaults, config.ini,
// the environment (including .env) and command-line overrides.
package config

import (
	"fmt"
	"strings"

	apperrors "github.com/commitpilot/commitpilot/internal/pkg/errors"
)

// Provider names.
const (
	ProviderAITunnel    = "aitunnel"
	ProviderOpenAI      = "openai"
	ProviderHuggingFace = "huggingface"
)

// KnownProviders lists the supported providers in display order.
var KnownProviders = []string{ProviderAITunnel, ProviderOpenAI, ProviderHuggingFace}

// Config keys. Provider-specific keys are built with ProviderKey.
const (
	KeyProvider          = "api_provider"
	KeyBranch            = "branch"
	KeyMaxDiffSize       = "max_diff_size"
	KeyPushFailureFatal  = "push_failure_fatal"
	KeyHistoryEnabled    = "history_enabled"
	KeyHistoryFile       = "history_file"
	KeyHistoryMaxEntries = "history_max_entries"
	KeyColor             = "color"
)

// ProviderKey returns the config key for a provider field such as "token".
func ProviderKey(provider, field string) string {
	return provider + "_" + field
}

// Settings is the effective configuration for one invocation.
type Settings struct {
	ProviderName      string `mapstructure:"api_provider"`
	Branch            string `mapstructure:"branch"`
	MaxDiffSize       int    `mapstructure:"max_diff_size"`
	PushFailureFatal  bool   `mapstructure:"push_failure_fatal"`
	HistoryEnabled    bool   `mapstructure:"history_enabled"`
	HistoryFile       string `mapstructure:"history_file"`
	HistoryMaxEntries int    `mapstructure:"history_max_entries"`
	Color             bool   `mapstructure:"color"`

	Providers map[string]ProviderSettings `mapstructure:"-"`
}

// ProviderSettings holds connection settings for one provider.
type ProviderSettings struct {
	Name    string
	Token   string
	BaseURL string
	Model   string
}

// HasToken reports whether a token is configured.
func (p ProviderSettings) HasToken() bool {
	return strings.TrimSpace(p.Token) != ""
}

// Provider returns the settings of the selected provider.
func (s *Settings) Provider() ProviderSettings {
	if p, ok := s.Providers[s.ProviderName]; ok {
		return p
	}
	return ProviderSettings{Name: s.ProviderName}
}

// IsKnownProvider reports whether name is a supported provider.
func IsKnownProvider(name string) bool {
	for _, p := range KnownProviders {
		if p == name {
			return true
		}
	}
	return false
}

// Validate checks invariants that must hold before any work is done.
// A missing token is not an error here; it fails the provider call instead.
func (s *Settings) Validate() error {
	if !IsKnownProvider(s.ProviderName) {
		return apperrors.NewInvalidConfigError(fmt.Sprintf(
			"unknown provider %q (expected one of: %s)",
			s.ProviderName, strings.Join(KnownProviders, ", "),
		))
	}
	if s.MaxDiffSize <= 0 {
		return apperrors.NewInvalidConfigError(fmt.Sprintf("max_diff_size must be positive, got %d", s.MaxDiffSize))
	}
	if strings.TrimSpace(s.Branch) == "" {
		return apperrors.NewInvalidConfigError("branch must not be empty")
	}
	if s.HistoryMaxEntries < 0 {
		return apperrors.NewInvalidConfigError("history_max_entries must not be negative")
	}
	return nil
}

// Manager defines the interface for configuration management.
type Manager interface {
	Load() (*Settings, error)
	Init() error
	Set(key, value string) error
	Get(key string) (string, error)
	List() (map[string]interface{}, error)
	GetConfigPath() string
	SetOverride(key string, value interface{})
}
