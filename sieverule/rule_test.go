package sieverule

import (
	"testing"

	"github.com/migadu/sievefilter/consts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func keepOnTrue(t *testing.T) *IfCommand {
	t.Helper()
	keep, err := NewActionCommand(Keep)
	require.NoError(t, err)
	ic, err := NewIfCommand(If, MustTest(True, nil), keep)
	require.NoError(t, err)
	return ic
}

func TestRuleAccessors(t *testing.T) {
	req := NewRequireCommand("fileinto")
	rule := NewRule(req, keepOnTrue(t))

	got, ok := rule.RequireCommand()
	require.True(t, ok)
	assert.Same(t, req, got)

	ic, ok := rule.IfCommand()
	require.True(t, ok)
	test, ok := ic.TestCommand()
	require.True(t, ok)
	assert.Equal(t, True, test.Kind())

	test2, ok := rule.TestCommand()
	require.True(t, ok)
	assert.Same(t, test, test2)

	assert.Empty(t, rule.Required().Sorted())
	assert.Equal(t, UnsetID, rule.UniqueID())
	assert.True(t, rule.Enabled())
}

func TestRequireMustBeFirst(t *testing.T) {
	rule := NewRule(keepOnTrue(t), NewRequireCommand("fileinto"))
	_, ok := rule.RequireCommand()
	assert.False(t, ok)

	_, ok = NewRule().RequireCommand()
	assert.False(t, ok)
}

func TestEmptyRule(t *testing.T) {
	rule := &Rule{}
	assert.NotNil(t, rule.Commands())
	assert.Empty(t, rule.Commands())
	_, ok := rule.IfCommand()
	assert.False(t, ok)
	_, ok = rule.TestCommand()
	assert.False(t, ok)
	_, ok = rule.FirstAction()
	assert.False(t, ok)

	rule.Add(NewRequireCommand("vacation"))
	rule.Add(nil)
	assert.Len(t, rule.Commands(), 1)
}

func TestIfCommandActionsNeverNil(t *testing.T) {
	ic, err := NewIfCommand(If, MustTest(False, nil))
	require.NoError(t, err)
	assert.NotNil(t, ic.Actions())
	_, ok := ic.FirstAction()
	assert.False(t, ok)

	_, err = NewIfCommand(If, nil)
	assert.ErrorIs(t, err, consts.ErrMissingGuard)
	_, err = NewIfCommand(Else, MustTest(True, nil))
	assert.ErrorIs(t, err, consts.ErrMissingGuard)

	el, err := NewIfCommand(Else, nil)
	require.NoError(t, err)
	_, ok = el.TestCommand()
	assert.False(t, ok)
}

func TestFirstAction(t *testing.T) {
	move, err := NewActionCommand(FileInto, String("Work"))
	require.NoError(t, err)
	stop, err := NewActionCommand(Stop)
	require.NoError(t, err)
	ic, err := NewIfCommand(If, MustTest(True, nil), move, stop)
	require.NoError(t, err)

	kind, ok := ic.FirstAction()
	require.True(t, ok)
	assert.Equal(t, FileInto, kind)
	assert.Equal(t, "move", kind.JSONName())

	kind, ok = NewRule(ic).FirstAction()
	require.True(t, ok)
	assert.Equal(t, FileInto, kind)
}

func TestRuleRequiredUnionsBranches(t *testing.T) {
	guard := MustTest(AnyOf, nil,
		MustTest(HeaderTest, []Arg{Tag(":regex"), StringList("subject"), StringList("^\\[list\\]")}),
		MustTest(Address, []Arg{Tag(":user"), StringList("to"), StringList("me")}),
	)
	move, err := NewActionCommand(FileInto, Tag(":copy"), String("Lists"))
	require.NoError(t, err)
	ifc, err := NewIfCommand(If, guard, move)
	require.NoError(t, err)

	flag, err := NewActionCommand(AddFlag, StringList("\\Flagged"))
	require.NoError(t, err)
	elsc, err := NewIfCommand(Else, nil, flag)
	require.NoError(t, err)

	rule := NewRule(NewRequireCommand("fileinto"), ifc, elsc)
	want := []string{"copy", "fileinto", "imap4flags", "regex", "subaddress"}
	assert.Equal(t, want, rule.Required().Sorted())
	assert.Equal(t, want, rule.Required().Sorted(), "aggregation must be repeatable")
}

func TestParseRuleComment(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    *RuleComment
		wantErr bool
	}{
		{
			name: "full",
			line: "## Flag: vacation,autoforward|UniqueId:3|Rulename: Out of office",
			want: &RuleComment{Flags: []string{"vacation", "autoforward"}, UniqueID: 3, Name: "Out of office", Line: 7},
		},
		{
			name: "no flags",
			line: "## Flag: |UniqueId:0|Rulename: Spam",
			want: &RuleComment{UniqueID: 0, Name: "Spam", Line: 7},
		},
		{
			name: "name with separator",
			line: "## Flag: |UniqueId:12|Rulename: a|b",
			want: &RuleComment{UniqueID: 12, Name: "a|b", Line: 7},
		},
		{
			name: "no id",
			line: "## Flag: |Rulename: plain",
			want: &RuleComment{UniqueID: UnsetID, Name: "plain", Line: 7},
		},
		{name: "not a marker", line: "# just a comment", wantErr: true},
		{name: "bad id", line: "## Flag: |UniqueId:x|Rulename: n", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRuleComment(tt.line, 7)
			if tt.wantErr {
				assert.ErrorIs(t, err, consts.ErrMalformedRuleComment)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRuleMetadata(t *testing.T) {
	rule := NewRule(keepOnTrue(t))
	rule.Comment = &RuleComment{Flags: []string{"vacation"}, Name: "Away", UniqueID: 4, Line: 10}
	rule.Lines = LineRange{Start: 11, End: 14}

	assert.Equal(t, 4, rule.UniqueID())
	assert.Equal(t, "Away", rule.Name())
	assert.Equal(t, []string{"vacation"}, rule.Flags())
	assert.True(t, rule.Comment.HasFlag("VACATION"))
	assert.Equal(t, 10, rule.Line())
	assert.True(t, rule.Lines.Contains(12))

	rule.CommentedOut = true
	assert.False(t, rule.Enabled())
}
