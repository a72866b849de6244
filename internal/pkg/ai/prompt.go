package ai

import (
	"bytes"
	"strings"
	"text/template"
)

// DefaultSystemPrompt is the system prompt sent with every generation.
const DefaultSystemPrompt = "You are an expert at creating high-quality commit messages in Conventional Commits format. " +
	"Your messages must be informative, specific, and understandable for both developers and AI systems. " +
	"Always use the format type(scope): description with specific details of changes."

// DefaultUserPromptTemplate is the user prompt. It embeds the status lines
// and the already truncated diff.
const DefaultUserPromptTemplate = `Analyze the git changes and create a brief but informative commit message in Conventional Commits format.

Git Status:
{{.Status}}

Git Diff:
{{.Diff}}

Message Requirements:
1. Format: type(scope): brief description
2. Type: {{.Types}}
3. Scope: module/component that changed (optional but recommended)
4. Description: what exactly changed and why (max 50 characters)

Good Examples:
- feat(auth): add OAuth2 authentication flow
- fix(api): resolve timeout error in user endpoint
- docs(readme): update installation instructions
- refactor(core): optimize database query performance
- style(ui): improve button spacing and colors

Important:
- Be specific: what changed, not just "update code"
- Use scope for grouping related changes
- Write in English
- Avoid generic phrases like "update", "fix", "change"
- Specify the exact functionality or issue

Return only the commit message, without additional explanations.`

// promptTypes are the commit types offered to the model.
var promptTypes = []string{"feat", "fix", "docs", "style", "refactor", "test", "chore"}

// PromptTemplate renders prompts for providers.
type PromptTemplate struct {
	SystemPrompt string
	UserPrompt   string
	tmpl         *template.Template
}

// PromptData is the input of the user prompt template.
type PromptData struct {
	Status string
	Diff   string
}

// NewPromptTemplate creates a PromptTemplate with the default prompts.
func NewPromptTemplate() *PromptTemplate {
	return &PromptTemplate{
		SystemPrompt: DefaultSystemPrompt,
		UserPrompt:   DefaultUserPromptTemplate,
	}
}

// RenderUserPrompt renders the user prompt template with the given data.
func (pt *PromptTemplate) RenderUserPrompt(data *PromptData) (string, error) {
	if pt.tmpl == nil {
		tmpl, err := template.New("userPrompt").Option("missingkey=error").Parse(pt.UserPrompt)
		if err != nil {
			return "", err
		}
		pt.tmpl = tmpl
	}

	view := struct {
		PromptData
		Types string
	}{
		PromptData: *data,
		Types:      strings.Join(promptTypes, ", "),
	}

	var buf bytes.Buffer
	if err := pt.tmpl.Execute(&buf, view); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// GetSystemPrompt returns the system prompt.
func (pt *PromptTemplate) GetSystemPrompt() string {
	return pt.SystemPrompt
}
