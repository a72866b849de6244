package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	apperrors "github.com/commitpilot/commitpilot/internal/pkg/errors"
	"github.com/commitpilot/commitpilot/internal/pkg/ui"
)

// runSetup creates or updates the config file, offers to install the hook
// and runs a test generation.
func runSetup(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()
	mgr, err := newConfigManager(cmd)
	if err != nil {
		return err
	}

	if !ui.IsTerminal(os.Stdin) || !ui.IsTerminal(out) {
		return runNonInteractiveSetup(cmd)
	}

	if err := ui.RunSetup(mgr, out); err != nil {
		if errors.Is(err, ui.ErrSetupCancelled) {
			fmt.Fprintln(out, "Setup cancelled, nothing was saved.")
			return nil
		}
		return apperrors.Wrap(err, apperrors.ErrInvalidConfig, "setup failed")
	}

	install, err := ui.Confirm("Install the git hook for automatic commit messages?", false)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrInvalidConfig, "setup failed")
	}
	if install {
		if err := runHooksInstall(cmd); err != nil {
			ui.NewConsoleReporter(out, cmd.ErrOrStderr(), true).ShowError(err)
		}
	}

	fmt.Fprintln(out)
	if err := runTest(cmd, nil); err != nil {
		return err
	}
	fmt.Fprintln(out, "Setup completed")
	return nil
}

// runNonInteractiveSetup writes a default config file and prints where to
// put the token.
func runNonInteractiveSetup(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()
	mgr, err := newConfigManager(cmd)
	if err != nil {
		return err
	}

	if !mgr.ConfigExists() {
		if err := mgr.Init(); err != nil {
			return err
		}
		fmt.Fprintln(out, "Configuration file created")
	}
	fmt.Fprintf(out, "Edit %s and add your API token\n", mgr.GetConfigPath())
	fmt.Fprintln(out, "Or create a .env file in the project root:")
	fmt.Fprintln(out, "  AI_TUNNEL=sk-aitunnel-your_token")
	fmt.Fprintln(out, "Get an AITUNNEL token: https://aitunnel.ru/")
	fmt.Fprintln(out, "Get a Hugging Face token: https://huggingface.co/settings/tokens")
	fmt.Fprintln(out, "Get an OpenAI token: https://platform.openai.com/api-keys")
	return nil
}
