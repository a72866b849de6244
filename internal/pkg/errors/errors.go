// Package errors provides the error taxonomy, exit codes and logging for CommitPilot.
package errors

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/commitpilot/commitpilot/internal/pkg/security"
)

// ErrorCode represents the category of an error.
type ErrorCode int

// User errors (exit code 1).
const (
	ErrNoChanges ErrorCode = iota + 100
	ErrInvalidConfig
	ErrMissingAPIKey
	ErrInvalidArguments
)

// System errors (exit code 2).
const (
	ErrGitCommandFailed ErrorCode = iota + 200
	ErrPushFailed
	ErrFileSystemError
)

// External errors (exit code 3).
const (
	ErrAIProviderFailed ErrorCode = iota + 300
	ErrNetworkError
	ErrTimeout
	ErrAuthenticationFailed
	ErrEmptyResponse
)

// ExitCode returns the process exit code for an error code.
func (c ErrorCode) ExitCode() int {
	switch {
	case c >= 100 && c < 200:
		return 1
	case c >= 200 && c < 300:
		return 2
	case c >= 300:
		return 3
	default:
		return 1
	}
}

// String returns a human-readable name for the error code.
func (c ErrorCode) String() string {
	switch c {
	case ErrNoChanges:
		return "NoChanges"
	case ErrInvalidConfig:
		return "ConfigurationError"
	case ErrMissingAPIKey:
		return "MissingAPIKey"
	case ErrInvalidArguments:
		return "InvalidArguments"
	case ErrGitCommandFailed:
		return "GitOperationError"
	case ErrPushFailed:
		return "PushError"
	case ErrFileSystemError:
		return "FileSystemError"
	case ErrAIProviderFailed:
		return "ProviderError"
	case ErrNetworkError:
		return "NetworkError"
	case ErrTimeout:
		return "TimeoutError"
	case ErrAuthenticationFailed:
		return "AuthenticationError"
	case ErrEmptyResponse:
		return "EmptyResponse"
	default:
		return "Unknown"
	}
}

// AppError represents an application error with context.
type AppError struct {
	Code       ErrorCode
	Message    string
	Cause      error
	Context    map[string]interface{}
	Suggestion string
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// IsProviderFailure reports whether the error came from a text-generation
// provider. Such failures degrade to the fallback message instead of aborting.
func (e *AppError) IsProviderFailure() bool {
	switch e.Code {
	case ErrAIProviderFailed, ErrNetworkError, ErrTimeout,
		ErrAuthenticationFailed, ErrMissingAPIKey, ErrEmptyResponse:
		return true
	default:
		return false
	}
}

// WithContext adds context to the error.
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithSuggestion adds a suggestion to the error.
func (e *AppError) WithSuggestion(suggestion string) *AppError {
	e.Suggestion = suggestion
	return e
}

// New creates a new AppError.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with a code and message.
func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// IsAppError checks if an error is an AppError.
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError extracts an AppError from an error chain.
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// HasCode reports whether err carries the given code anywhere in its chain.
func HasCode(err error, code ErrorCode) bool {
	for err != nil {
		var appErr *AppError
		if !errors.As(err, &appErr) {
			return false
		}
		if appErr.Code == code {
			return true
		}
		err = appErr.Cause
	}
	return false
}

// GetExitCode returns the appropriate exit code for an error.
func GetExitCode(err error) int {
	if err == nil {
		return 0
	}
	if appErr := GetAppError(err); appErr != nil {
		return appErr.Code.ExitCode()
	}
	return 1
}

// NewNoChangesError is returned when there is nothing to commit.
func NewNoChangesError() *AppError {
	return &AppError{
		Code:       ErrNoChanges,
		Message:    "nothing to commit",
		Suggestion: "Modify some files or check 'git status' before running CommitPilot",
	}
}

// NewMissingAPIKeyError creates an error for a missing provider token.
func NewMissingAPIKeyError(provider string) *AppError {
	return &AppError{
		Code:       ErrMissingAPIKey,
		Message:    fmt.Sprintf("API token is not configured for %s provider", provider),
		Suggestion: fmt.Sprintf("Set %s_token in config.ini or the matching variable in .env", provider),
	}
}

// NewInvalidConfigError creates a configuration error.
func NewInvalidConfigError(message string) *AppError {
	return &AppError{
		Code:       ErrInvalidConfig,
		Message:    message,
		Suggestion: "Run 'commitpilot config init' to create a valid configuration file",
	}
}

// NewGitError creates an error for git command failures.
func NewGitError(err error, output string) *AppError {
	appErr := &AppError{
		Code:    ErrGitCommandFailed,
		Message: "git command failed",
		Cause:   err,
	}
	if output != "" {
		appErr.Context = map[string]interface{}{
			"output": strings.TrimSpace(output),
		}
	}
	return appErr
}

// NewPushError creates an error for a failed push. The commit is kept.
func NewPushError(branch string, err error, output string) *AppError {
	appErr := &AppError{
		Code:       ErrPushFailed,
		Message:    fmt.Sprintf("failed to push to branch %s", branch),
		Cause:      err,
		Suggestion: "The commit was created locally; push it manually once the remote is reachable",
	}
	if output != "" {
		appErr.Context = map[string]interface{}{
			"output": strings.TrimSpace(output),
		}
	}
	return appErr
}

// NewNetworkError creates an error for network failures.
func NewNetworkError(err error) *AppError {
	return &AppError{
		Code:       ErrNetworkError,
		Message:    "network error occurred",
		Cause:      err,
		Suggestion: "Please check your network connection and try again",
	}
}

// NewTimeoutError creates an error for timeouts.
func NewTimeoutError(err error) *AppError {
	return &AppError{
		Code:       ErrTimeout,
		Message:    "request timed out",
		Cause:      err,
		Suggestion: "Please check your network connection or try again later",
	}
}

// NewAuthenticationError creates an error for rejected tokens.
func NewAuthenticationError(provider string) *AppError {
	return &AppError{
		Code:       ErrAuthenticationFailed,
		Message:    fmt.Sprintf("authentication failed with %s", provider),
		Suggestion: "Please check your API token is valid and has not expired",
	}
}

// NewAIProviderError creates an error for provider failures.
func NewAIProviderError(provider string, err error) *AppError {
	return &AppError{
		Code:       ErrAIProviderFailed,
		Message:    fmt.Sprintf("%s provider error", provider),
		Cause:      err,
		Suggestion: "Please check your API token and network connectivity",
	}
}

// NewEmptyResponseError is returned when a provider answers without text.
func NewEmptyResponseError(provider string) *AppError {
	return &AppError{
		Code:    ErrEmptyResponse,
		Message: fmt.Sprintf("%s returned an empty completion", provider),
	}
}

// FormatError formats an error for user display.
// API tokens are masked.
func FormatError(err error) string {
	if err == nil {
		return ""
	}

	var sb strings.Builder

	appErr := GetAppError(err)
	if appErr != nil {
		sb.WriteString("Error: ")
		sb.WriteString(SanitizeErrorMessage(appErr.Message))

		if appErr.Cause != nil {
			sb.WriteString("\n  Cause: ")
			sb.WriteString(SanitizeErrorMessage(appErr.Cause.Error()))
		}

		if output, ok := appErr.Context["output"]; ok {
			sb.WriteString("\n  Output: ")
			sb.WriteString(SanitizeErrorMessage(fmt.Sprintf("%v", output)))
		}

		if appErr.Suggestion != "" {
			sb.WriteString("\n  Suggestion: ")
			sb.WriteString(appErr.Suggestion)
		}
	} else {
		sb.WriteString("Error: ")
		sb.WriteString(SanitizeErrorMessage(err.Error()))
	}

	return sb.String()
}

// FormatErrorVerbose formats an error with its full chain for verbose mode.
func FormatErrorVerbose(err error) string {
	if err == nil {
		return ""
	}

	var sb strings.Builder

	appErr := GetAppError(err)
	if appErr != nil {
		sb.WriteString(fmt.Sprintf("Error [%s]: %s\n", appErr.Code.String(), SanitizeErrorMessage(appErr.Message)))

		if appErr.Cause != nil {
			sb.WriteString("  Error chain:\n")
			printErrorChain(&sb, appErr.Cause, 2)
		}

		for k, v := range appErr.Context {
			sb.WriteString(fmt.Sprintf("  %s: %v\n", k, SanitizeErrorMessage(fmt.Sprintf("%v", v))))
		}

		if appErr.Suggestion != "" {
			sb.WriteString(fmt.Sprintf("  Suggestion: %s\n", appErr.Suggestion))
		}
	} else {
		sb.WriteString(fmt.Sprintf("Error: %v\n", SanitizeErrorMessage(err.Error())))
		sb.WriteString("  Error chain:\n")
		printErrorChain(&sb, err, 2)
	}

	return sb.String()
}

func printErrorChain(sb *strings.Builder, err error, indent int) {
	if err == nil {
		return
	}

	prefix := strings.Repeat("  ", indent)
	sb.WriteString(fmt.Sprintf("%s- %T: %v\n", prefix, err, SanitizeErrorMessage(err.Error())))

	if unwrapped := errors.Unwrap(err); unwrapped != nil {
		printErrorChain(sb, unwrapped, indent+1)
	}
}

// SanitizeErrorMessage masks API tokens in error messages, keeping their
// last four characters, then applies security.SanitizeForLogging for bearer
// headers and secret assignments.
func SanitizeErrorMessage(msg string) string {
	return security.SanitizeForLogging(apiKeyPattern.ReplaceAllStringFunc(msg, security.MaskAPIKey))
}

// apiKeyPattern matches sk-… (OpenAI, AITUNNEL) and hf_… (Hugging Face) tokens.
var apiKeyPattern = regexp.MustCompile(`(sk-[a-zA-Z0-9_-]{16,}|hf_[a-zA-Z0-9]{16,})`)
