package ai

import (
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"

	"github.com/commitpilot/commitpilot/internal/pkg/message"
)

func TestExtractCommitLine(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "plain", raw: "feat: add x", want: "feat: add x"},
		{name: "prefers typed line", raw: "Sure!\nrefactor(core): split parser\nbody text", want: "refactor(core): split parser"},
		{name: "breaking marker", raw: "feat!: drop python 2", want: "feat!: drop python 2"},
		{name: "first line when untyped", raw: "\n\nUpdate the docs\nMore", want: "Update the docs"},
		{name: "fence only lines skipped", raw: "```\n```", want: ""},
		{name: "inline fence", raw: "```feat: add login```", want: "feat: add login"},
		{name: "inline fence with quotes", raw: "```\"feat: add login\"```", want: "feat: add login"},
		{name: "fence before message on one line", raw: "```fix(api): guard nil\n```", want: "fix(api): guard nil"},
		{name: "eos tokens", raw: "<s>chore: bump deps</s>", want: "chore: bump deps"},
		{name: "quoted", raw: "'test(api): cover errors'", want: "test(api): cover errors"},
		{name: "bullet", raw: "* style: reformat", want: "style: reformat"},
		{name: "type word inside text is not a prefix", raw: "feature flags added\nfix: guard nil", want: "fix: guard nil"},
		{name: "empty", raw: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractCommitLine(tt.raw))
		})
	}
}

func TestHasCommitPrefix(t *testing.T) {
	assert.True(t, hasCommitPrefix("feat: x"))
	assert.True(t, hasCommitPrefix("fix(api): x"))
	assert.True(t, hasCommitPrefix("perf!: x"))
	assert.False(t, hasCommitPrefix("feature: x"))
	assert.False(t, hasCommitPrefix("Fix: x"))
	assert.False(t, hasCommitPrefix(""))
}

func genCommitLine() gopter.Gen {
	return gopter.CombineGens(
		gen.OneConstOf("feat", "fix", "docs", "chore", "refactor"),
		gen.Identifier(),
		gen.Identifier(),
	).Map(func(v []interface{}) string {
		return v[0].(string) + "(" + v[1].(string) + "): " + v[2].(string)
	})
}

func TestExtractCommitLine_Properties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	wrappers := []func(string) string{
		func(s string) string { return s },
		func(s string) string { return "```\n" + s + "\n```" },
		func(s string) string { return "```text\n" + s + "\n```" },
		func(s string) string { return "```" + s + "```" },
		func(s string) string { return "```\"" + s + "\"```" },
		func(s string) string { return `"` + s + `"` },
		func(s string) string { return "`" + s + "`" },
		func(s string) string { return "  " + s + "</s>\n" },
		func(s string) string { return "Here you go:\n\n\"" + s + "\"\n" },
	}

	properties.Property("fences and quotes are stripped", prop.ForAll(
		func(line string, w int) bool {
			return ExtractCommitLine(wrappers[w](line)) == line
		},
		genCommitLine(),
		gen.IntRange(0, len(wrappers)-1),
	))

	properties.Property("result is a single clean line", prop.ForAll(
		func(raw string) bool {
			out := ExtractCommitLine(raw)
			return !strings.Contains(out, "\n") && out == message.Sanitize(out)
		},
		gen.AnyString(),
	))

	properties.TestingRun(t)
}
