package cmd

import (
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestProperty_ShortAndLongFlagsAgree checks that each short flag sets the
// same value as its long form.
func TestProperty_ShortAndLongFlagsAgree(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	parse := func(args ...string) (branch, message, provider string, commitOnly bool, ok bool) {
		root := NewRootCmd("test", "none", "unknown")
		if err := root.ParseFlags(args); err != nil {
			return "", "", "", false, false
		}
		branch, _ = root.Flags().GetString("branch")
		message, _ = root.Flags().GetString("message")
		provider, _ = root.Flags().GetString("provider")
		commitOnly, _ = root.Flags().GetBool("commit-only")
		return branch, message, provider, commitOnly, true
	}

	properties.Property("short and long forms parse identically", prop.ForAll(
		func(branch, message string, commitOnly bool) bool {
			short := []string{"-b", branch, "-m", message, "-p", "openai"}
			long := []string{"--branch", branch, "--message", message, "--provider", "openai"}
			if commitOnly {
				short = append(short, "-c")
				long = append(long, "--commit-only")
			}

			b1, m1, p1, c1, ok1 := parse(short...)
			b2, m2, p2, c2, ok2 := parse(long...)
			return ok1 && ok2 &&
				b1 == branch && b2 == branch &&
				m1 == message && m2 == message &&
				p1 == "openai" && p2 == "openai" &&
				c1 == commitOnly && c2 == commitOnly
		},
		gen.Identifier(),
		gen.AlphaString().SuchThat(func(s string) bool { return s != "" }),
		gen.Bool(),
	))

	properties.Property("token values are never displayed in full", prop.ForAll(
		func(secret string) bool {
			token := "sk-" + secret
			shown := displayValue("openai_token", token)
			return shown != token &&
				strings.HasSuffix(shown, token[len(token)-4:]) &&
				len(shown) == len(token)
		},
		gen.AlphaString().SuchThat(func(s string) bool { return len(s) >= 2 }),
	))

	properties.TestingRun(t)
}
