package ai

import (
	"strings"

	"github.com/commitpilot/commitpilot/internal/pkg/message"
)

// ExtractCommitLine reduces a raw completion to a single commit line.
// End-of-sequence markers, code fences and surrounding quotes are removed.
// The first line starting with a Conventional Commits type wins; otherwise
// the first non-empty line is used. Returns "" if nothing usable remains.
func ExtractCommitLine(rawText string) string {
	text := strings.ReplaceAll(rawText, "</s>", "")
	text = strings.ReplaceAll(text, "<s>", "")

	var candidates []string
	for _, line := range strings.Split(text, "\n") {
		line = message.StripFence(line)
		if line == "" {
			continue
		}
		line = cleanLine(line)
		if line == "" {
			continue
		}
		candidates = append(candidates, line)
	}

	for _, line := range candidates {
		if hasCommitPrefix(line) {
			return line
		}
	}
	if len(candidates) > 0 {
		return candidates[0]
	}
	return ""
}

// cleanLine strips list markers, labels and quoting a model tends to add.
func cleanLine(line string) string {
	line = strings.TrimPrefix(line, "- ")
	line = strings.TrimPrefix(line, "* ")
	for _, label := range []string{"Commit message:", "commit message:", "Message:"} {
		line = strings.TrimSpace(strings.TrimPrefix(line, label))
	}
	return message.Sanitize(line)
}

// hasCommitPrefix reports whether line starts with a known commit type
// followed by a scope or colon.
func hasCommitPrefix(line string) bool {
	for _, t := range message.ValidCommitTypes {
		if !strings.HasPrefix(line, t) {
			continue
		}
		rest := line[len(t):]
		if strings.HasPrefix(rest, ":") || strings.HasPrefix(rest, "(") || strings.HasPrefix(rest, "!:") {
			return true
		}
	}
	return false
}
