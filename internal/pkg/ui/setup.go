package ui

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/commitpilot/commitpilot/internal/pkg/config"
	"github.com/commitpilot/commitpilot/internal/pkg/security"
)

// ErrSetupCancelled is returned when the user declines to save.
var ErrSetupCancelled = errors.New("setup cancelled")

// SetupAnswers holds the values collected by the setup form.
type SetupAnswers struct {
	Provider       string
	Token          string
	BaseURL        string
	Model          string
	Branch         string
	HistoryEnabled bool
}

// DefaultAnswers returns the suggested values for a provider.
func DefaultAnswers(provider string) SetupAnswers {
	a := SetupAnswers{Provider: provider, Branch: config.DefaultBranch}
	switch provider {
	case config.ProviderAITunnel:
		a.Model = config.DefaultAITunnelModel
		a.BaseURL = config.DefaultAITunnelBaseURL
	case config.ProviderOpenAI:
		a.Model = config.DefaultOpenAIModel
	case config.ProviderHuggingFace:
		a.Model = config.DefaultHuggingFaceModel
		a.BaseURL = config.DefaultHuggingFaceBaseURL
	}
	return a
}

// RunSetup runs the interactive setup form and saves the answers through mgr.
func RunSetup(mgr config.Manager, out io.Writer) error {
	fmt.Fprintln(out, "Let's set up CommitPilot.")
	fmt.Fprintln(out)

	provider := config.ProviderAITunnel
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Before you start").
				Description(security.DataNotice),
			huh.NewSelect[string]().
				Title("Select AI provider").
				Options(
					huh.NewOption("AITUNNEL (default)", config.ProviderAITunnel),
					huh.NewOption("OpenAI", config.ProviderOpenAI),
					huh.NewOption("Hugging Face (legacy)", config.ProviderHuggingFace),
				).
				Value(&provider),
		),
	).Run()
	if err != nil {
		return err
	}

	answers := DefaultAnswers(provider)
	confirmed := true
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("API token").
				Description("Stored in "+mgr.GetConfigPath()).
				EchoMode(huh.EchoModePassword).
				Value(&answers.Token).
				Validate(validateToken),
			huh.NewInput().
				Title("Model").
				Value(&answers.Model).
				Validate(validateNotEmpty("model")),
			huh.NewInput().
				Title("Base URL").
				Description("Leave empty for the provider default").
				Value(&answers.BaseURL),
			huh.NewInput().
				Title("Branch to push").
				Value(&answers.Branch).
				Validate(validateNotEmpty("branch")),
			huh.NewConfirm().
				Title("Keep a local history of generated messages?").
				Value(&answers.HistoryEnabled),
		),
		huh.NewGroup(
			huh.NewConfirm().
				Title("Save configuration?").
				Affirmative("Save").
				Negative("Cancel").
				Value(&confirmed),
		),
	).Run()
	if err != nil {
		return err
	}
	if !confirmed {
		return ErrSetupCancelled
	}

	if err := ApplySetup(mgr, answers); err != nil {
		return err
	}
	fmt.Fprintf(out, "Configuration saved to %s\n", mgr.GetConfigPath())
	return nil
}

// ApplySetup writes answers to the config file. Empty optional values
// leave the existing entries alone.
func ApplySetup(mgr config.Manager, a SetupAnswers) error {
	provider := strings.ToLower(strings.TrimSpace(a.Provider))
	if !config.IsKnownProvider(provider) {
		return fmt.Errorf("unknown provider %q", a.Provider)
	}

	values := []struct {
		key   string
		value string
	}{
		{config.KeyProvider, provider},
		{config.ProviderKey(provider, "token"), strings.TrimSpace(a.Token)},
		{config.ProviderKey(provider, "model"), strings.TrimSpace(a.Model)},
		{config.ProviderKey(provider, "base_url"), strings.TrimSpace(a.BaseURL)},
		{config.KeyBranch, strings.TrimSpace(a.Branch)},
	}
	for _, kv := range values {
		if kv.value == "" {
			continue
		}
		if err := mgr.Set(kv.key, kv.value); err != nil {
			return err
		}
	}
	return mgr.Set(config.KeyHistoryEnabled, strconv.FormatBool(a.HistoryEnabled))
}

// validateToken rejects empty or truncated tokens. The format is not
// checked here; --test reports format mismatches as warnings.
func validateToken(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return fmt.Errorf("token cannot be empty")
	}
	if len(s) < 8 {
		return fmt.Errorf("token too short")
	}
	return nil
}

func validateNotEmpty(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s cannot be empty", field)
		}
		return nil
	}
}

// Confirm asks a yes/no question.
func Confirm(title string, def bool) (bool, error) {
	answer := def
	err := huh.NewConfirm().
		Title(title).
		Value(&answer).
		Run()
	return answer, err
}
