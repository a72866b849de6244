// Package composer turns a captured change set into a commit message. It
// asks one provider once and substitutes a templated message on failure.
package composer

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/commitpilot/commitpilot/internal/pkg/ai"
	apperrors "github.com/commitpilot/commitpilot/internal/pkg/errors"
	"github.com/commitpilot/commitpilot/internal/pkg/git"
	"github.com/commitpilot/commitpilot/internal/pkg/message"
	"github.com/commitpilot/commitpilot/internal/pkg/processor"
)

// DefaultMessage is used when there is nothing to describe.
const DefaultMessage = "chore: automatic changes commit"

// Source tells where a composed message came from.
type Source int

const (
	SourceProvider Source = iota
	SourceFallback
)

func (s Source) String() string {
	if s == SourceProvider {
		return "provider"
	}
	return "fallback"
}

// Result is the outcome of Compose. Err holds the provider failure that
// caused a fallback, if any.
type Result struct {
	Message string
	Source  Source
	Err     error
}

// Composer builds prompts and calls a provider.
type Composer struct {
	provider  ai.Provider
	prompt    *ai.PromptTemplate
	processor *processor.Processor
}

// New creates a Composer. A nil provider always yields the fallback message.
func New(provider ai.Provider, maxDiffSize int) *Composer {
	return &Composer{
		provider:  provider,
		prompt:    ai.NewPromptTemplate(),
		processor: processor.NewProcessor(maxDiffSize),
	}
}

// BuildPrompt renders the user prompt for a change set. The diff is
// truncated to the composer's maximum size first.
func (c *Composer) BuildPrompt(cs *git.ChangeSet) (string, error) {
	processed := c.processor.Process(cs.Diff)
	if processed.Truncated {
		apperrors.Debug("diff truncated from %d to %d characters", processed.OriginalSize, c.processor.MaxSize())
	}
	if len(processed.SkippedLockFiles) > 0 {
		apperrors.Debug("lock files left out of the prompt: %s", strings.Join(processed.SkippedLockFiles, ", "))
	}
	apperrors.Debug("diff summary:\n%s", processed.Summary())

	return c.prompt.RenderUserPrompt(&ai.PromptData{
		Status: cs.StatusText(),
		Diff:   processed.Text,
	})
}

// BuildRequest prepares the provider request for a change set.
func (c *Composer) BuildRequest(cs *git.ChangeSet) (*ai.GenerateRequest, error) {
	prompt, err := c.BuildPrompt(cs)
	if err != nil {
		return nil, err
	}
	return &ai.GenerateRequest{
		Prompt:       prompt,
		SystemPrompt: c.prompt.GetSystemPrompt(),
		MaxTokens:    ai.DefaultMaxTokens,
	}, nil
}

// Compose returns a commit message for cs. The message is never empty.
func (c *Composer) Compose(ctx context.Context, cs *git.ChangeSet) Result {
	var status []git.StatusEntry
	if cs != nil {
		status = cs.Status
	}
	fallback := func(err error) Result {
		if err != nil && c.provider != nil {
			if appErr := apperrors.GetAppError(err); appErr == nil || !appErr.IsProviderFailure() {
				err = apperrors.NewAIProviderError(c.provider.Name(), err)
			}
			apperrors.Warn("%s: %v; using fallback message", c.provider.Name(), err)
		}
		return Result{Message: Fallback(status), Source: SourceFallback, Err: err}
	}

	if c.provider == nil || cs == nil {
		return fallback(nil)
	}

	req, err := c.BuildRequest(cs)
	if err != nil {
		return fallback(err)
	}

	resp, err := c.provider.GenerateCommitMessage(ctx, req)
	if err != nil {
		return fallback(err)
	}

	msg := message.Sanitize(resp.Message())
	if msg == "" {
		return fallback(apperrors.NewEmptyResponseError(c.provider.Name()))
	}
	return Result{Message: msg, Source: SourceProvider}
}

// Fallback derives a single-line Conventional Commits message from status
// entries. It is deterministic and never empty.
func Fallback(status []git.StatusEntry) string {
	if len(status) == 0 {
		return DefaultMessage
	}

	commitType := fallbackType(status)
	if len(status) == 1 {
		return singleLine(fmt.Sprintf("%s: %s", commitType, describeEntry(status[0])))
	}

	var added, modified, deleted, renamed int
	for _, e := range status {
		switch e.ChangeType() {
		case git.ChangeTypeAdded, git.ChangeTypeUntracked:
			added++
		case git.ChangeTypeDeleted:
			deleted++
		case git.ChangeTypeRenamed:
			renamed++
		default:
			modified++
		}
	}

	var counts []string
	for _, c := range []struct {
		n    int
		verb string
	}{{added, "added"}, {modified, "modified"}, {deleted, "deleted"}, {renamed, "renamed"}} {
		if c.n > 0 {
			counts = append(counts, fmt.Sprintf("%d %s", c.n, c.verb))
		}
	}
	return fmt.Sprintf("%s: update %d files (%s)", commitType, len(status), strings.Join(counts, ", "))
}

func describeEntry(e git.StatusEntry) string {
	name := displayName(e.Path)
	switch e.ChangeType() {
	case git.ChangeTypeAdded, git.ChangeTypeUntracked:
		return "add " + name
	case git.ChangeTypeDeleted:
		return "remove " + name
	case git.ChangeTypeRenamed:
		if e.OrigPath != "" {
			return fmt.Sprintf("rename %s to %s", displayName(e.OrigPath), name)
		}
		return "rename " + name
	default:
		return "update " + name
	}
}

func displayName(p string) string {
	p = strings.TrimSuffix(p, "/")
	if p == "" {
		return "files"
	}
	return path.Base(p)
}

func singleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// fallbackType picks the commit type shared by all entries.
func fallbackType(status []git.StatusEntry) string {
	allDocs, allTests, allNew := true, true, true
	for _, e := range status {
		allDocs = allDocs && isDocPath(e.Path)
		allTests = allTests && isTestPath(e.Path)
		allNew = allNew && e.IsNew()
	}
	switch {
	case allDocs:
		return "docs"
	case allTests:
		return "test"
	case allNew:
		return "feat"
	default:
		return "chore"
	}
}

var docExtensions = []string{".md", ".rst", ".txt", ".adoc"}

func isDocPath(p string) bool {
	lower := strings.ToLower(p)
	if strings.HasPrefix(lower, "docs/") || strings.Contains(lower, "/docs/") {
		return true
	}
	for _, ext := range docExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

func isTestPath(p string) bool {
	lower := strings.ToLower(p)
	base := path.Base(lower)
	switch {
	case strings.HasPrefix(lower, "test/"), strings.HasPrefix(lower, "tests/"),
		strings.Contains(lower, "/test/"), strings.Contains(lower, "/tests/"):
		return true
	case strings.HasSuffix(base, "_test.go"), strings.HasPrefix(base, "test_"),
		strings.Contains(base, ".test."), strings.Contains(base, ".spec."):
		return true
	}
	return strings.HasSuffix(strings.TrimSuffix(base, path.Ext(base)), "_test")
}
