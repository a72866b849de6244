package hooks

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// CLIName is the binary the hook shells out to.
const CLIName = "commitpilot"

// PathStatus tells whether the hook will find the CLI.
type PathStatus struct {
	Found bool
	// Path is the resolved binary when Found.
	Path string
	// Hint is a command that puts execDir on PATH when not Found.
	Hint string
}

// CheckPath looks up the CLI on PATH. execDir is the directory of the
// running binary, used to build the hint.
func CheckPath(execDir string) PathStatus {
	if p, err := exec.LookPath(CLIName); err == nil {
		return PathStatus{Found: true, Path: p}
	}
	return PathStatus{Hint: pathHint(runtime.GOOS, os.Getenv("SHELL"), execDir)}
}

// ExecutableDir returns the directory of the running binary.
func ExecutableDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(exe), nil
}

func pathHint(goos, shell, dir string) string {
	if goos == "windows" {
		return fmt.Sprintf(`setx PATH "%%PATH%%;%s"`, dir)
	}
	switch {
	case strings.HasSuffix(shell, "/fish"):
		return fmt.Sprintf("fish_add_path %s", dir)
	case strings.HasSuffix(shell, "/zsh"):
		return fmt.Sprintf(`echo 'export PATH="$PATH:%s"' >> ~/.zshrc`, dir)
	default:
		return fmt.Sprintf(`echo 'export PATH="$PATH:%s"' >> ~/.bashrc`, dir)
	}
}
