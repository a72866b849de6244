// Package message parses, cleans and validates Conventional Commits messages.
package message

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"
)

// ValidCommitTypes contains all valid Conventional Commits types.
var ValidCommitTypes = []string{
	"feat", "fix", "docs", "style", "refactor",
	"test", "chore", "perf", "ci", "build", "revert",
}

// MaxSubjectLength is the recommended maximum length for commit subject lines.
const MaxSubjectLength = 72

// conventionalCommitRegex matches <type>(<scope>)!: <subject>, scope and ! optional.
var conventionalCommitRegex = regexp.MustCompile(`^(feat|fix|docs|style|refactor|test|chore|perf|ci|build|revert)(\([^)]+\))?(!)?:\s*(.+)$`)

// quotePairs are wrappers a model may put around the whole message.
var quotePairs = [][2]string{
	{`"`, `"`}, {"'", "'"}, {"`", "`"}, {"“", "”"}, {"«", "»"},
}

// ValidationError represents a commit message validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationResult contains the result of commit message validation.
type ValidationResult struct {
	IsValid  bool
	Errors   []ValidationError
	Warnings []string
}

// CommitMessage is a structured Conventional Commits message.
type CommitMessage struct {
	Type     string
	Scope    string
	Breaking bool
	Subject  string
	Body     string
	Footer   string
}

// Sanitize removes code fences, surrounding quotes and backticks, and outer
// whitespace. Text inside the message is left alone.
func Sanitize(text string) string {
	for {
		next := sanitizeOnce(text)
		if next == text {
			return text
		}
		text = next
	}
}

const fence = "```"

// StripFence removes code fence markers from a single line and returns what
// is left. A bare opening fence, with or without a language tag, yields "".
// "```feat: add login```" yields "feat: add login".
func StripFence(line string) string {
	line = strings.TrimSpace(line)
	if strings.HasPrefix(line, fence) {
		rest := strings.TrimPrefix(line, fence)
		if strings.HasSuffix(rest, fence) {
			return strings.TrimSpace(strings.TrimSuffix(rest, fence))
		}
		if isFenceInfo(rest) {
			return ""
		}
		return strings.TrimSpace(rest)
	}
	return strings.TrimSpace(strings.TrimSuffix(line, fence))
}

// isFenceInfo reports whether s looks like the language tag of an opening fence.
func isFenceInfo(s string) bool {
	for _, r := range s {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || strings.ContainsRune("_+.#-", r)) {
			return false
		}
	}
	return true
}

func sanitizeOnce(text string) string {
	text = strings.TrimSpace(text)

	if strings.Contains(text, fence) {
		var kept []string
		for _, line := range strings.Split(text, "\n") {
			if strings.Contains(line, fence) {
				line = StripFence(line)
				if line == "" {
					continue
				}
			}
			kept = append(kept, line)
		}
		text = strings.TrimSpace(strings.Join(kept, "\n"))
	}

	for {
		stripped := false
		for _, q := range quotePairs {
			if len(text) >= len(q[0])+len(q[1]) && strings.HasPrefix(text, q[0]) && strings.HasSuffix(text, q[1]) {
				text = strings.TrimSpace(text[len(q[0]) : len(text)-len(q[1])])
				stripped = true
			}
		}
		if !stripped {
			return text
		}
	}
}

// NewCommitMessage creates a new CommitMessage from raw text.
func NewCommitMessage(rawText string) *CommitMessage {
	cm := &CommitMessage{}
	cm.Parse(rawText)
	return cm
}

// Parse parses raw text into the CommitMessage structure.
func (cm *CommitMessage) Parse(rawText string) {
	rawText = strings.TrimSpace(rawText)
	if rawText == "" {
		return
	}

	lines := strings.Split(rawText, "\n")
	cm.parseSubject(strings.TrimSpace(lines[0]))
	if len(lines) > 1 {
		cm.parseBodyAndFooter(lines[1:])
	}
}

func (cm *CommitMessage) parseSubject(subject string) {
	matches := conventionalCommitRegex.FindStringSubmatch(subject)
	if matches == nil {
		cm.Subject = subject
		return
	}
	cm.Type = matches[1]
	if matches[2] != "" {
		cm.Scope = strings.Trim(matches[2], "()")
	}
	cm.Breaking = matches[3] == "!"
	cm.Subject = strings.TrimSpace(matches[4])
}

func (cm *CommitMessage) parseBodyAndFooter(lines []string) {
	var bodyLines, footerLines []string
	inFooter := false

	for _, line := range lines {
		if isFooterLine(strings.TrimSpace(line)) {
			inFooter = true
		}
		if inFooter {
			footerLines = append(footerLines, line)
		} else {
			bodyLines = append(bodyLines, line)
		}
	}

	cm.Body = strings.TrimSpace(strings.Join(bodyLines, "\n"))
	cm.Footer = strings.TrimSpace(strings.Join(footerLines, "\n"))
	if strings.Contains(strings.ToUpper(cm.Footer), "BREAKING") {
		cm.Breaking = true
	}
}

var footerPrefixes = []string{
	"BREAKING CHANGE:",
	"BREAKING-CHANGE:",
	"Refs:",
	"Closes:",
	"Fixes:",
	"Resolves:",
	"See:",
	"Co-authored-by:",
	"Signed-off-by:",
	"Reviewed-by:",
	"Acked-by:",
}

// isFooterLine checks if a line starts a trailer block.
func isFooterLine(line string) bool {
	upperLine := strings.ToUpper(line)
	for _, prefix := range footerPrefixes {
		if strings.HasPrefix(upperLine, strings.ToUpper(prefix)) {
			return true
		}
	}
	return false
}

// Format returns the full formatted commit message.
func (cm *CommitMessage) Format() string {
	parts := []string{cm.FormatSubject()}
	if cm.Body != "" {
		parts = append(parts, "", cm.Body)
	}
	if cm.Footer != "" {
		parts = append(parts, "", cm.Footer)
	}
	return strings.Join(parts, "\n")
}

// FormatSubject formats the subject line in Conventional Commits format.
func (cm *CommitMessage) FormatSubject() string {
	if cm.Type == "" {
		return cm.Subject
	}

	header := cm.Type
	if cm.Scope != "" {
		header += "(" + cm.Scope + ")"
	}
	if cm.Breaking && !strings.Contains(strings.ToUpper(cm.Footer), "BREAKING") {
		header += "!"
	}
	return header + ": " + cm.Subject
}

// Validate returns an error if the message is not a Conventional Commit.
func (cm *CommitMessage) Validate() error {
	result := cm.ValidateWithWarnings()
	if !result.IsValid {
		var errMsgs []string
		for _, e := range result.Errors {
			errMsgs = append(errMsgs, e.Error())
		}
		return errors.New(strings.Join(errMsgs, "; "))
	}
	return nil
}

// ValidateWithWarnings validates the message. An overlong subject is a
// warning, not an error.
func (cm *CommitMessage) ValidateWithWarnings() *ValidationResult {
	result := &ValidationResult{
		IsValid:  true,
		Errors:   []ValidationError{},
		Warnings: []string{},
	}

	if cm.Type == "" {
		result.IsValid = false
		result.Errors = append(result.Errors, ValidationError{
			Field:   "type",
			Message: "missing commit type",
		})
	} else if !IsValidCommitType(cm.Type) {
		result.IsValid = false
		result.Errors = append(result.Errors, ValidationError{
			Field:   "type",
			Message: fmt.Sprintf("invalid commit type: %s (valid types: %s)", cm.Type, strings.Join(ValidCommitTypes, ", ")),
		})
	}

	if cm.Subject == "" {
		result.IsValid = false
		result.Errors = append(result.Errors, ValidationError{
			Field:   "subject",
			Message: "missing commit subject",
		})
	}

	if cm.SubjectExceedsLength() {
		result.Warnings = append(result.Warnings, fmt.Sprintf(
			"subject line exceeds %d characters (%d chars)",
			MaxSubjectLength, utf8.RuneCountInString(cm.FormatSubject()),
		))
	}

	return result
}

// IsValidCommitType checks if the given type is a valid Conventional Commits type.
func IsValidCommitType(commitType string) bool {
	return slices.Contains(ValidCommitTypes, commitType)
}

// SubjectExceedsLength checks if the formatted subject line exceeds the max length.
func (cm *CommitMessage) SubjectExceedsLength() bool {
	return utf8.RuneCountInString(cm.FormatSubject()) > MaxSubjectLength
}

// IsMultiLine returns true if the commit message has body or footer sections.
func (cm *CommitMessage) IsMultiLine() bool {
	return cm.Body != "" || cm.Footer != ""
}
