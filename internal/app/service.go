// Package app contains the application layer with business orchestration logic.
package app

import (
	"context"
	"fmt"

	"github.com/commitpilot/commitpilot/internal/pkg/ai"
	"github.com/commitpilot/commitpilot/internal/pkg/composer"
	"github.com/commitpilot/commitpilot/internal/pkg/config"
	apperrors "github.com/commitpilot/commitpilot/internal/pkg/errors"
	"github.com/commitpilot/commitpilot/internal/pkg/git"
	"github.com/commitpilot/commitpilot/internal/pkg/history"
	"github.com/commitpilot/commitpilot/internal/pkg/message"
	"github.com/commitpilot/commitpilot/internal/pkg/security"
	"github.com/commitpilot/commitpilot/internal/pkg/ui"
)

// CommitOptions contains options for the commit workflow.
type CommitOptions struct {
	// Message bypasses generation when set.
	Message    string
	Branch     string
	CommitOnly bool
}

// CommitResult describes a finished run.
type CommitResult struct {
	Message   string
	Source    string
	Branch    string
	Committed bool
	Pushed    bool
	PushErr   error
}

// CommitService orchestrates one CommitPilot invocation.
type CommitService struct {
	gitClient  git.Client
	aiProvider ai.Provider
	composer   *composer.Composer
	reporter   ui.Reporter
	historyMgr history.Manager
	settings   *config.Settings
}

// NewCommitService creates a new CommitService with the given dependencies.
// historyMgr may be nil when history is disabled.
func NewCommitService(
	gitClient git.Client,
	aiProvider ai.Provider,
	reporter ui.Reporter,
	historyMgr history.Manager,
	settings *config.Settings,
) *CommitService {
	if reporter == nil {
		reporter = ui.QuietReporter{}
	}
	return &CommitService{
		gitClient:  gitClient,
		aiProvider: aiProvider,
		composer:   composer.New(aiProvider, settings.MaxDiffSize),
		reporter:   reporter,
		historyMgr: historyMgr,
		settings:   settings,
	}
}

// Run captures changes, composes a message unless one was given, stages
// everything, commits and pushes unless CommitOnly is set.
// A push failure is returned only when the settings make it fatal.
func (s *CommitService) Run(ctx context.Context, opts *CommitOptions) (*CommitResult, error) {
	if opts == nil {
		opts = &CommitOptions{}
	}

	cs, err := git.Capture(ctx, s.gitClient)
	if err != nil {
		return nil, err
	}
	if cs.IsEmpty() {
		return nil, apperrors.NewNoChangesError()
	}

	if err := s.gitClient.AddAll(ctx); err != nil {
		return nil, err
	}

	result := &CommitResult{Branch: s.branch(opts)}
	if opts.Message != "" {
		result.Message = opts.Message
		result.Source = "custom"
	} else {
		// The index now holds untracked files too.
		staged, err := s.gitClient.StagedDiff(ctx)
		if err != nil {
			return nil, err
		}
		if staged != "" {
			cs = &git.ChangeSet{Diff: staged, Status: cs.Status}
		}
		composed := s.compose(ctx, cs)
		result.Message = composed.Message
		result.Source = s.sourceLabel(composed)
	}

	s.reporter.ShowMessage(result.Message, result.Source)

	if err := s.gitClient.Commit(ctx, result.Message); err != nil {
		return nil, err
	}
	result.Committed = true
	s.reporter.ShowSuccess("Changes committed")

	if !opts.CommitOnly {
		if err := s.gitClient.Push(ctx, result.Branch); err != nil {
			result.PushErr = err
			if s.settings.PushFailureFatal {
				s.record(result, len(cs.Status))
				return result, err
			}
			s.reporter.ShowWarning(fmt.Sprintf("push to %s failed; the commit is kept locally", result.Branch))
			s.reporter.ShowError(err)
		} else {
			result.Pushed = true
			s.reporter.ShowSuccess(fmt.Sprintf("Pushed to %s", result.Branch))
		}
	}

	s.record(result, len(cs.Status))
	return result, nil
}

// GetMessage composes a message for the current changes without touching
// the index or the repository.
func (s *CommitService) GetMessage(ctx context.Context) (string, error) {
	cs, err := git.Capture(ctx, s.gitClient)
	if err != nil {
		return "", err
	}
	if cs.IsEmpty() {
		return "", apperrors.NewNoChangesError()
	}
	return s.compose(ctx, cs).Message, nil
}

// Test reports the effective configuration and performs one dry
// generation. It never stages, commits or pushes.
func (s *CommitService) Test(ctx context.Context) error {
	ps := s.settings.Provider()
	s.reporter.ShowInfo("Testing CommitPilot settings...")
	s.reporter.ShowInfo(fmt.Sprintf("Provider: %s", s.settings.ProviderName))
	s.reporter.ShowInfo(fmt.Sprintf("Token: %s", security.TokenState(ps.Token)))
	if ps.HasToken() {
		if err := security.ValidateAPIKeyFormat(s.settings.ProviderName, ps.Token); err != nil {
			s.reporter.ShowWarning(err.Error())
		}
	}
	if ps.Model != "" {
		s.reporter.ShowInfo(fmt.Sprintf("Model: %s", ps.Model))
	}
	s.reporter.ShowInfo(fmt.Sprintf("Default branch: %s", s.settings.Branch))

	cs, err := git.Capture(ctx, s.gitClient)
	if err != nil {
		return err
	}
	if cs.IsEmpty() {
		s.reporter.ShowWarning("no changes to analyze; make a change to test message generation")
		return nil
	}

	composed := s.compose(ctx, cs)
	if composed.Source == composer.SourceProvider {
		s.reporter.ShowSuccess(fmt.Sprintf("Test message: %q", composed.Message))
		return nil
	}
	if composed.Err != nil && !isCredentialError(composed.Err) {
		s.reporter.ShowError(composed.Err)
	}
	s.reporter.ShowWarning(fmt.Sprintf("failed to generate test message; fallback would be %q", composed.Message))
	return nil
}

func (s *CommitService) compose(ctx context.Context, cs *git.ChangeSet) composer.Result {
	spinner := s.reporter.StartSpinner("Generating commit message...")
	composed := s.composer.Compose(ctx, cs)
	spinner.Stop()

	if composed.Source == composer.SourceProvider {
		s.validateAndWarn(composed.Message)
	} else if isCredentialError(composed.Err) {
		s.reporter.ShowError(composed.Err)
	}
	return composed
}

// isCredentialError reports failures the user has to fix in the config.
func isCredentialError(err error) bool {
	return apperrors.HasCode(err, apperrors.ErrAuthenticationFailed) ||
		apperrors.HasCode(err, apperrors.ErrMissingAPIKey)
}

// validateAndWarn shows format warnings for a generated message.
func (s *CommitService) validateAndWarn(msg string) {
	result := message.NewCommitMessage(msg).ValidateWithWarnings()
	if !result.IsValid {
		s.reporter.ShowWarning("generated message does not follow Conventional Commits")
	}
	for _, warning := range result.Warnings {
		s.reporter.ShowWarning(warning)
	}
}

func (s *CommitService) sourceLabel(r composer.Result) string {
	if r.Source == composer.SourceProvider && s.aiProvider != nil {
		return s.aiProvider.Name()
	}
	return r.Source.String()
}

func (s *CommitService) branch(opts *CommitOptions) string {
	if opts.Branch != "" {
		return opts.Branch
	}
	return s.settings.Branch
}

// record saves the run to history. Failures are only logged.
func (s *CommitService) record(result *CommitResult, files int) {
	if s.historyMgr == nil || !s.settings.HistoryEnabled {
		return
	}
	entry := &history.Entry{
		Message:   result.Message,
		Source:    result.Source,
		Branch:    result.Branch,
		Files:     files,
		Committed: result.Committed,
		Pushed:    result.Pushed,
	}
	if result.Source != "custom" {
		ps := s.settings.Provider()
		entry.Provider = ps.Name
		entry.Model = ps.Model
	}
	if err := s.historyMgr.Save(entry); err != nil {
		apperrors.Warn("failed to save history: %v", err)
	}
}
