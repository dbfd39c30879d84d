package sieveparse

import (
	"testing"

	"github.com/migadu/sievefilter/sieverule"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustAction(t *testing.T, kind sieverule.ActionKind, args ...sieverule.Arg) *sieverule.ActionCommand {
	t.Helper()
	a, err := sieverule.NewActionCommand(kind, args...)
	require.NoError(t, err)
	return a
}

func TestLint(t *testing.T) {
	always := sieverule.MustTest(sieverule.True, nil)
	ic, err := sieverule.NewIfCommand(sieverule.If, always,
		mustAction(t, sieverule.Redirect, sieverule.String("not an address")),
		mustAction(t, sieverule.Redirect, sieverule.String("${forward}")),
		mustAction(t, sieverule.AddFlag, sieverule.String(`\Seen \Bogus $Label`)),
		mustAction(t, sieverule.Keep, sieverule.Tag("flags"), sieverule.StringList(`\flagged`)),
	)
	require.NoError(t, err)

	active := sieverule.NewRule(ic)
	active.Comment = &sieverule.RuleComment{Name: "Forward", UniqueID: 7, Line: 3}

	away := sieverule.NewRule(mustAction(t, sieverule.Vacation,
		sieverule.Tag("from"), sieverule.String("Bob <bob@example.com>"),
		sieverule.Tag("addresses"), sieverule.StringList("alice@example.com", "alice at example"),
		sieverule.String("Away")))
	away.Lines.Start = 10

	disabled := sieverule.NewRule(mustAction(t, sieverule.Redirect, sieverule.String("broken")))
	disabled.CommentedOut = true

	warnings := Lint(sieverule.NewRuleSet(active, away, disabled))
	require.Len(t, warnings, 3)

	assert.Equal(t, 3, warnings[0].Line)
	assert.Equal(t, 7, warnings[0].RuleID)
	assert.Equal(t, "Forward", warnings[0].RuleName)
	assert.Equal(t, "redirect", warnings[0].Command)
	assert.Contains(t, warnings[0].Message, "not an address")

	assert.Equal(t, "addflag", warnings[1].Command)
	assert.Contains(t, warnings[1].Message, `\Bogus`)

	assert.Equal(t, 10, warnings[2].Line)
	assert.Equal(t, "vacation", warnings[2].Command)
	assert.Contains(t, warnings[2].Message, "alice at example")
	assert.Contains(t, warnings[2].String(), "line 10: vacation:")
}

func TestLintCleanRules(t *testing.T) {
	r := sieverule.NewRule(
		mustAction(t, sieverule.Redirect, sieverule.String("postmaster@example.com")),
		mustAction(t, sieverule.FileInto, sieverule.Tag("flags"), sieverule.String(`\Answered \Draft \Deleted`), sieverule.String("Done")),
	)
	assert.Empty(t, Lint(sieverule.NewRuleSet(r)))
}

func TestLintMailboxesAndKeywords(t *testing.T) {
	r := sieverule.NewRule(
		mustAction(t, sieverule.FileInto, sieverule.String("junk")),
		mustAction(t, sieverule.FileInto, sieverule.String("Lists//golang")),
		mustAction(t, sieverule.FileInto, sieverule.String("Lists/${list}")),
		mustAction(t, sieverule.AddFlag, sieverule.String("$NIL $Label")),
	)
	r.Comment = &sieverule.RuleComment{Name: "Bad\xffname", UniqueID: 1, Line: 1}

	warnings := Lint(sieverule.NewRuleSet(r))
	require.Len(t, warnings, 4)
	assert.Equal(t, "rule", warnings[0].Command)
	assert.Contains(t, warnings[1].Message, `differs from "Junk" only in case`)
	assert.Contains(t, warnings[2].Message, "empty level")
	assert.Equal(t, "addflag", warnings[3].Command)
	assert.Contains(t, warnings[3].Message, `"$NIL"`)
}
