// Package cmd contains the CLI command definitions for CommitPilot.
package cmd

import (
	"github.com/spf13/cobra"

	apperrors "github.com/commitpilot/commitpilot/internal/pkg/errors"
)

// rootFlags holds the flags of the default commit action.
type rootFlags struct {
	Branch     string
	CommitOnly bool
	Message    string
	Provider   string
	Test       bool
	GetMessage bool
	Setup      bool
	SetupHooks bool
}

// NewRootCmd creates the root command for the CommitPilot CLI.
func NewRootCmd(version, commitHash, date string) *cobra.Command {
	flags := &rootFlags{}

	rootCmd := &cobra.Command{
		Use:   "commitpilot",
		Short: "Commit with AI-generated Conventional Commits messages",
		Long: `CommitPilot stages your changes, asks a text-generation provider
(AITUNNEL, OpenAI or Hugging Face) for a Conventional Commits message,
commits and pushes.

When the provider is unavailable a message is derived from git status,
so a commit is never blocked on the API.

Examples:
  commitpilot                    # stage, generate, commit and push
  commitpilot -c                 # commit without pushing
  commitpilot -m "fix: typo"     # use this message, skip generation
  commitpilot -p openai -b main  # other provider, push to main
  commitpilot --get-message      # print a message only (used by the git hook)
  commitpilot --test             # check settings with a dry generation`,
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			verbose, _ := cmd.Flags().GetBool("verbose")
			apperrors.SetVerbose(verbose)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRoot(cmd, flags)
		},
	}

	rootCmd.SetVersionTemplate(`CommitPilot {{.Version}}
Commit: ` + commitHash + `
Built:  ` + date + "\n")

	// Global flags
	rootCmd.PersistentFlags().Bool("verbose", false, "Enable verbose logging")
	rootCmd.PersistentFlags().String("config", "", "Config file path (default: config.ini next to the binary)")

	rootCmd.Flags().StringVarP(&flags.Branch, "branch", "b", "", "Branch to push to (default from config)")
	rootCmd.Flags().BoolVarP(&flags.CommitOnly, "commit-only", "c", false, "Commit without pushing")
	rootCmd.Flags().StringVarP(&flags.Message, "message", "m", "", "Use this commit message instead of generating one")
	rootCmd.Flags().StringVarP(&flags.Provider, "provider", "p", "", "Provider to use (aitunnel, openai, huggingface)")
	rootCmd.Flags().BoolVar(&flags.Test, "test", false, "Show settings and generate a test message without committing")
	rootCmd.Flags().BoolVar(&flags.GetMessage, "get-message", false, "Print a generated message and exit without committing")
	rootCmd.Flags().BoolVar(&flags.Setup, "setup", false, "Run interactive setup")
	rootCmd.Flags().BoolVar(&flags.SetupHooks, "setup-hooks", false, "Install the prepare-commit-msg git hook")
	rootCmd.Flags().BoolP("version", "v", false, "Print version information")
	rootCmd.MarkFlagsMutuallyExclusive("test", "get-message", "setup", "setup-hooks", "message")

	rootCmd.AddCommand(NewConfigCmd())
	rootCmd.AddCommand(NewHooksCmd())
	rootCmd.AddCommand(NewHistoryCmd())

	return rootCmd
}

// runRoot dispatches the default action on the mode flags.
func runRoot(cmd *cobra.Command, flags *rootFlags) error {
	switch {
	case flags.Setup:
		return runSetup(cmd)
	case flags.SetupHooks:
		return runHooksInstall(cmd)
	case flags.GetMessage:
		return runGetMessage(cmd, flags)
	case flags.Test:
		return runTest(cmd, flags)
	default:
		return runCommit(cmd, flags)
	}
}
