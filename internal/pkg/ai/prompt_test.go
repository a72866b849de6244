package ai

import (
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPromptTemplate(t *testing.T) {
	pt := NewPromptTemplate()
	assert.Equal(t, DefaultSystemPrompt, pt.GetSystemPrompt())
	assert.Equal(t, DefaultUserPromptTemplate, pt.UserPrompt)
}

func TestDefaultSystemPrompt(t *testing.T) {
	assert.Contains(t, DefaultSystemPrompt, "Conventional Commits")
	assert.Contains(t, DefaultSystemPrompt, "type(scope): description")
}

func TestPromptTemplate_RenderUserPrompt(t *testing.T) {
	pt := NewPromptTemplate()
	out, err := pt.RenderUserPrompt(&PromptData{
		Status: "M  main.go\n?? notes.md",
		Diff:   "diff --git a/main.go b/main.go\n+fmt.Println(\"hi\")",
	})
	require.NoError(t, err)

	assert.Contains(t, out, "Git Status:\nM  main.go\n?? notes.md\n")
	assert.Contains(t, out, "Git Diff:\ndiff --git a/main.go b/main.go\n+fmt.Println(\"hi\")\n")
	assert.Contains(t, out, "2. Type: feat, fix, docs, style, refactor, test, chore")
	assert.True(t, strings.HasSuffix(out, "Return only the commit message, without additional explanations."))
}

func TestPromptTemplate_RenderIsReusable(t *testing.T) {
	pt := NewPromptTemplate()
	first, err := pt.RenderUserPrompt(&PromptData{Status: "A  a", Diff: "one"})
	require.NoError(t, err)
	second, err := pt.RenderUserPrompt(&PromptData{Status: "A  b", Diff: "two"})
	require.NoError(t, err)

	assert.Contains(t, first, "one")
	assert.Contains(t, second, "two")
	assert.NotContains(t, second, "one")
}

func TestPromptTemplate_InvalidTemplate(t *testing.T) {
	pt := &PromptTemplate{UserPrompt: "{{.Status"}
	_, err := pt.RenderUserPrompt(&PromptData{})
	assert.Error(t, err)
}

func TestPromptTemplate_DoesNotEscape(t *testing.T) {
	pt := NewPromptTemplate()
	out, err := pt.RenderUserPrompt(&PromptData{Diff: `+if a < b && c > "d" {`})
	require.NoError(t, err)
	assert.Contains(t, out, `+if a < b && c > "d" {`)
}

func TestProperty_PromptEmbedsInputs(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("status and diff appear verbatim", prop.ForAll(
		func(status, diff string) bool {
			out, err := NewPromptTemplate().RenderUserPrompt(&PromptData{Status: status, Diff: diff})
			return err == nil && strings.Contains(out, status) && strings.Contains(out, diff)
		},
		gen.AnyString(),
		gen.AnyString(),
	))

	properties.TestingRun(t)
}
