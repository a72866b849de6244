package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/commitpilot/commitpilot/internal/pkg/history"
)

const (
	// DefaultHistoryLimit is the default number of history entries to display.
	DefaultHistoryLimit = 20
)

// NewHistoryCmd creates the history command and its subcommands.
func NewHistoryCmd() *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "View commit message history",
		Long: `View the history of generated commit messages.

History is off by default. Enable it with:
  commitpilot config set history_enabled true

Examples:
  commitpilot history           # Show last 20 entries
  commitpilot history --limit 5 # Show last 5 entries
  commitpilot history clear     # Clear all history`,
		Args: cobra.NoArgs,
		RunE: runHistoryList,
	}

	historyCmd.Flags().IntP("limit", "l", DefaultHistoryLimit, "Number of entries to display")
	historyCmd.AddCommand(newHistoryClearCmd())

	return historyCmd
}

// runHistoryList displays the history entries, most recent first.
func runHistoryList(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	out := cmd.OutOrStdout()

	settings, err := loadSettings(cmd, nil)
	if err != nil {
		return err
	}
	if !settings.HistoryEnabled {
		fmt.Fprintln(out, "History is disabled. Enable it with: commitpilot config set history_enabled true")
		return nil
	}

	historyMgr, err := newHistoryManager(settings)
	if err != nil {
		return err
	}
	entries, err := historyMgr.List(limit)
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		fmt.Fprintln(out, "No history entries found.")
		return nil
	}

	fmt.Fprintf(out, "Showing %d most recent entries:\n\n", len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		printHistoryEntry(out, entries[i], len(entries)-i)
	}
	return nil
}

// printHistoryEntry formats and prints a single history entry.
func printHistoryEntry(out io.Writer, entry *history.Entry, index int) {
	status := "not committed"
	switch {
	case entry.Pushed:
		status = "pushed to " + entry.Branch
	case entry.Committed:
		status = "committed"
	}

	fmt.Fprintf(out, "[%d] %s (%s, %s)\n", index, entry.Timestamp.Format(time.RFC3339), status, entry.Source)

	if entry.Provider != "" {
		fmt.Fprintf(out, "    Provider: %s", entry.Provider)
		if entry.Model != "" {
			fmt.Fprintf(out, " (%s)", entry.Model)
		}
		fmt.Fprintln(out)
	}
	if entry.Files > 0 {
		fmt.Fprintf(out, "    Files: %d\n", entry.Files)
	}

	fmt.Fprintln(out, "    Message:")
	for _, line := range strings.Split(entry.Message, "\n") {
		fmt.Fprintf(out, "      %s\n", line)
	}
	fmt.Fprintln(out)
}

// newHistoryClearCmd creates the 'history clear' subcommand.
func newHistoryClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear all history entries",
		Long: `Delete all entries from the history file.

This action cannot be undone.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadSettings(cmd, nil)
			if err != nil {
				return err
			}
			historyMgr, err := newHistoryManager(settings)
			if err != nil {
				return err
			}
			if err := historyMgr.Clear(); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "History cleared successfully.")
			return nil
		},
	}
}
