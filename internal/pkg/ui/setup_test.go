package ui

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/commitpilot/commitpilot/internal/pkg/config"
)

func newSetupManager(t *testing.T) *config.ViperManager {
	t.Helper()
	mgr, err := config.NewManager(filepath.Join(t.TempDir(), "config.ini"))
	require.NoError(t, err)
	mgr.SetEnvFile(filepath.Join(t.TempDir(), ".env"))
	return mgr
}

func TestDefaultAnswers(t *testing.T) {
	a := DefaultAnswers(config.ProviderAITunnel)
	assert.Equal(t, config.DefaultAITunnelModel, a.Model)
	assert.Equal(t, config.DefaultAITunnelBaseURL, a.BaseURL)
	assert.Equal(t, config.DefaultBranch, a.Branch)

	a = DefaultAnswers(config.ProviderOpenAI)
	assert.Equal(t, config.DefaultOpenAIModel, a.Model)
	assert.Empty(t, a.BaseURL)

	a = DefaultAnswers(config.ProviderHuggingFace)
	assert.Equal(t, config.DefaultHuggingFaceModel, a.Model)
}

func TestApplySetup(t *testing.T) {
	mgr := newSetupManager(t)

	answers := DefaultAnswers(config.ProviderOpenAI)
	answers.Token = "sk-setup-token-1234"
	answers.Branch = "main"
	answers.HistoryEnabled = true
	require.NoError(t, ApplySetup(mgr, answers))

	for key, want := range map[string]string{
		"api_provider":    "openai",
		"openai_token":    "sk-setup-token-1234",
		"openai_model":    config.DefaultOpenAIModel,
		"branch":          "main",
		"history_enabled": "true",
	} {
		got, err := mgr.Get(key)
		require.NoError(t, err, key)
		assert.Equal(t, want, got, key)
	}
}

func TestApplySetup_UnknownProvider(t *testing.T) {
	mgr := newSetupManager(t)
	assert.Error(t, ApplySetup(mgr, SetupAnswers{Provider: "ollama"}))
}

func TestValidateToken(t *testing.T) {
	assert.Error(t, validateToken(""))
	assert.Error(t, validateToken("   "))
	assert.Error(t, validateToken("short"))
	assert.NoError(t, validateToken("sk-longer-token"))
}

func TestValidateNotEmpty(t *testing.T) {
	v := validateNotEmpty("model")
	assert.EqualError(t, v(" "), "model cannot be empty")
	assert.NoError(t, v("gpt-4.1"))
}
