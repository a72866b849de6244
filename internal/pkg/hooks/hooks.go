// Package hooks installs the prepare-commit-msg git hook.
package hooks

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	apperrors "github.com/commitpilot/commitpilot/internal/pkg/errors"
)

// HookName is the git hook CommitPilot installs.
const HookName = "prepare-commit-msg"

// hookMode makes the hook executable for git.
const hookMode = 0o755

//go:embed prepare-commit-msg
var script []byte

// Script returns the hook script contents.
func Script() []byte {
	out := make([]byte, len(script))
	copy(out, script)
	return out
}

// Install writes the hook into gitDir/hooks, replacing any existing one,
// and returns the hook path.
func Install(gitDir string) (string, error) {
	info, err := os.Stat(gitDir)
	if err != nil || !info.IsDir() {
		return "", apperrors.New(apperrors.ErrGitCommandFailed,
			fmt.Sprintf("git directory not found: %s", gitDir)).
			WithSuggestion("Run this command inside a git repository")
	}

	hooksDir := filepath.Join(gitDir, "hooks")
	if err := os.MkdirAll(hooksDir, 0o755); err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrFileSystemError, "failed to create hooks directory")
	}

	path := filepath.Join(hooksDir, HookName)
	if err := os.WriteFile(path, Script(), hookMode); err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrFileSystemError, "failed to write hook")
	}
	// WriteFile keeps the mode of an existing file.
	if err := os.Chmod(path, hookMode); err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrFileSystemError, "failed to make hook executable")
	}
	return path, nil
}
