package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/commitpilot/commitpilot/internal/app"
	"github.com/commitpilot/commitpilot/internal/pkg/ai"
	"github.com/commitpilot/commitpilot/internal/pkg/config"
	apperrors "github.com/commitpilot/commitpilot/internal/pkg/errors"
	"github.com/commitpilot/commitpilot/internal/pkg/git"
	"github.com/commitpilot/commitpilot/internal/pkg/history"
	"github.com/commitpilot/commitpilot/internal/pkg/security"
	"github.com/commitpilot/commitpilot/internal/pkg/ui"
)

// runTimeout bounds one invocation: git calls plus a single provider call.
const runTimeout = 5 * time.Minute

// newConfigManager creates the config manager for the --config flag.
func newConfigManager(cmd *cobra.Command) (*config.ViperManager, error) {
	configPath, _ := cmd.Flags().GetString("config")
	mgr, err := config.NewManager(configPath)
	if err != nil {
		return nil, err
	}
	if configPath != "" {
		apperrors.Debug("Using custom config path: %s", configPath)
	}
	return mgr, nil
}

// loadSettings resolves settings with flag overrides applied on top.
// Overrides are not persisted.
func loadSettings(cmd *cobra.Command, flags *rootFlags) (*config.Settings, error) {
	mgr, err := newConfigManager(cmd)
	if err != nil {
		return nil, err
	}
	if flags != nil && flags.Provider != "" {
		mgr.SetOverride(config.KeyProvider, strings.ToLower(flags.Provider))
		apperrors.Debug("Provider overridden via flag: %s", flags.Provider)
	}
	if flags != nil && flags.Branch != "" {
		mgr.SetOverride(config.KeyBranch, flags.Branch)
	}
	return mgr.Load()
}

// newService wires the git client, provider, reporter and history store.
func newService(settings *config.Settings, reporter ui.Reporter) (*app.CommitService, error) {
	ps := settings.Provider()
	provider, err := ai.NewProvider(ps)
	if err != nil {
		return nil, err
	}

	apperrors.Debug("Using provider: %s", provider.Name())
	if ps.Model != "" {
		apperrors.Debug("Using model: %s", ps.Model)
	}
	apperrors.Debug("Token: %s", security.TokenState(ps.Token))

	var historyMgr history.Manager
	if settings.HistoryEnabled {
		mgr, err := newHistoryManager(settings)
		if err != nil {
			apperrors.Warn("history disabled: %s", err.Error())
		} else {
			historyMgr = mgr
		}
	}

	return app.NewCommitService(git.NewClient(), provider, reporter, historyMgr, settings), nil
}

func newHistoryManager(settings *config.Settings) (*history.FileManager, error) {
	path := settings.HistoryFile
	if path == "" {
		p, err := history.DefaultFilePath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	return history.NewFileManager(path, settings.HistoryMaxEntries), nil
}

func newReporter(cmd *cobra.Command, settings *config.Settings) *ui.ConsoleReporter {
	reporter := ui.NewConsoleReporter(cmd.OutOrStdout(), cmd.ErrOrStderr(), settings.Color)
	reporter.SetVerbose(apperrors.IsVerbose())
	return reporter
}

// runCommit executes the default stage, generate, commit and push flow.
func runCommit(cmd *cobra.Command, flags *rootFlags) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), runTimeout)
	defer cancel()

	settings, err := loadSettings(cmd, flags)
	if err != nil {
		return err
	}

	service, err := newService(settings, newReporter(cmd, settings))
	if err != nil {
		return err
	}

	_, err = service.Run(ctx, &app.CommitOptions{
		Message:    flags.Message,
		Branch:     flags.Branch,
		CommitOnly: flags.CommitOnly,
	})
	return err
}

// runGetMessage prints only the message on stdout so the hook can use it.
func runGetMessage(cmd *cobra.Command, flags *rootFlags) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), runTimeout)
	defer cancel()

	settings, err := loadSettings(cmd, flags)
	if err != nil {
		return err
	}

	service, err := newService(settings, ui.QuietReporter{})
	if err != nil {
		return err
	}

	msg, err := service.GetMessage(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), msg)
	return nil
}

// runTest reports settings and performs a dry generation.
func runTest(cmd *cobra.Command, flags *rootFlags) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), runTimeout)
	defer cancel()

	settings, err := loadSettings(cmd, flags)
	if err != nil {
		return err
	}

	reporter := newReporter(cmd, settings)
	service, err := newService(settings, reporter)
	if err != nil {
		return err
	}

	if err := service.Test(ctx); err != nil {
		return err
	}
	reporter.ShowSuccess("Test completed")
	return nil
}
