package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	apperrors "github.com/commitpilot/commitpilot/internal/pkg/errors"
	"github.com/commitpilot/commitpilot/internal/pkg/git"
	"github.com/commitpilot/commitpilot/internal/pkg/hooks"
)

// NewHooksCmd creates the hooks command and its subcommands.
func NewHooksCmd() *cobra.Command {
	hooksCmd := &cobra.Command{
		Use:   "hooks",
		Short: "Manage the CommitPilot git hook",
		Long: `Manage the prepare-commit-msg hook.

The hook fills an empty commit message with 'commitpilot --get-message'
and does nothing when commitpilot is not on PATH.`,
	}

	hooksCmd.AddCommand(&cobra.Command{
		Use:   "install",
		Short: "Install the prepare-commit-msg hook into the current repository",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHooksInstall(cmd)
		},
	})

	return hooksCmd
}

// runHooksInstall writes the hook into the repository's git directory.
func runHooksInstall(cmd *cobra.Command) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), git.GitCommandTimeout)
	defer cancel()

	gitDir, err := git.NewClient().GitDir(ctx)
	if err != nil {
		return err
	}

	path, err := hooks.Install(gitDir)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Git hook installed: %s\n", path)

	execDir, err := hooks.ExecutableDir()
	if err != nil {
		apperrors.Debug("cannot locate executable: %v", err)
		return nil
	}
	if status := hooks.CheckPath(execDir); !status.Found {
		fmt.Fprintf(cmd.ErrOrStderr(), "[WARN] %s is not on PATH; the hook does nothing until it is. Add it with:\n  %s\n",
			hooks.CLIName, status.Hint)
	}
	return nil
}
