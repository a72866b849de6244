// Package main is the entry point for the CommitPilot CLI application.
// CommitPilot stages changes, generates a Conventional Commits message
// with a text-generation provider, commits and pushes.
package main

import (
	"fmt"
	"os"

	"github.com/commitpilot/commitpilot/internal/cmd"
	apperrors "github.com/commitpilot/commitpilot/internal/pkg/errors"
)

// Version information - set via ldflags during build
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := cmd.NewRootCmd(version, commit, date)
	err := rootCmd.Execute()
	apperrors.Sync()
	if err != nil {
		if apperrors.IsVerbose() {
			fmt.Fprint(os.Stderr, apperrors.FormatErrorVerbose(err))
		} else {
			fmt.Fprintln(os.Stderr, apperrors.FormatError(err))
		}
		os.Exit(apperrors.GetExitCode(err))
	}
}
