package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/commitpilot/commitpilot/internal/pkg/config"
	"github.com/commitpilot/commitpilot/internal/pkg/security"
)

// NewConfigCmd creates the config command and its subcommands.
func NewConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CommitPilot configuration",
		Long: `Manage CommitPilot configuration settings.

Settings live in the [DEFAULT] section of config.ini next to the binary
unless --config or COMMITPILOT_CONFIG points elsewhere. Environment
variables and a .env file in the working directory take precedence.`,
	}

	configCmd.AddCommand(newConfigInitCmd())
	configCmd.AddCommand(newConfigSetCmd())
	configCmd.AddCommand(newConfigGetCmd())
	configCmd.AddCommand(newConfigListCmd())
	configCmd.AddCommand(newConfigPathCmd())

	return configCmd
}

// newConfigInitCmd creates the 'config init' subcommand.
func newConfigInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize configuration file",
		Long: `Create a configuration file with default values.

The file is created with permissions 0600 (user read/write only)
because it may contain API tokens.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := newConfigManager(cmd)
			if err != nil {
				return err
			}
			if err := mgr.Init(); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Configuration file created at %s\n", mgr.GetConfigPath())
			fmt.Fprintln(cmd.OutOrStdout(), "Edit this file to set your API token.")
			return nil
		},
	}
}

// newConfigSetCmd creates the 'config set' subcommand.
func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Long: `Set a configuration value in the config file.

Examples:
  commitpilot config set api_provider openai
  commitpilot config set openai_token sk-xxx
  commitpilot config set branch main
  commitpilot config set push_failure_fatal true`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, value := args[0], args[1]

			mgr, err := newConfigManager(cmd)
			if err != nil {
				return err
			}
			if err := mgr.Set(key, value); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", key, displayValue(key, value))
			return nil
		},
	}
}

// newConfigGetCmd creates the 'config get' subcommand.
func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Print the effective value of a configuration key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := newConfigManager(cmd)
			if err != nil {
				return err
			}
			value, err := mgr.Get(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), displayValue(args[0], value))
			return nil
		},
	}
}

// newConfigListCmd creates the 'config list' subcommand.
func newConfigListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all configuration values",
		Long: `Display all effective configuration values.

Tokens are masked, showing only the last 4 characters.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := newConfigManager(cmd)
			if err != nil {
				return err
			}

			values, err := mgr.List()
			if err != nil {
				return err
			}
			for _, key := range config.SortedKeys(values) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s = %v\n", key, values[key])
			}
			return nil
		},
	}
}

// newConfigPathCmd creates the 'config path' subcommand.
func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the configuration file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := newConfigManager(cmd)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), mgr.GetConfigPath())
			return nil
		},
	}
}

// displayValue masks token values.
func displayValue(key, value string) string {
	if strings.HasSuffix(strings.ToLower(key), "_token") && value != "" {
		return security.MaskAPIKey(value)
	}
	return value
}
