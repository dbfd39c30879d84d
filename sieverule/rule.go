package sieverule

import (
	"cmp"
	"fmt"
	"strconv"
	"strings"

	"github.com/migadu/sievefilter/consts"
)

// UnsetID is the unique id of a rule without metadata.
const UnsetID = -1

// RuleCommentPrefix starts the metadata line written above every rule.
const RuleCommentPrefix = "## Flag:"

// RuleComment is the metadata kept in the comment line above a rule.
type RuleComment struct {
	Flags    []string
	Name     string
	UniqueID int
	Line     int
}

// NewRuleComment returns metadata with an unset id.
func NewRuleComment(name string, flags ...string) *RuleComment {
	return &RuleComment{Name: name, Flags: append([]string(nil), flags...), UniqueID: UnsetID}
}

// ParseRuleComment reads a metadata line of the form
//
//	## Flag: vacation,autoforward|UniqueId:3|Rulename: Out of office
//
// Everything after "Rulename:" belongs to the name, so names may contain '|'.
func ParseRuleComment(line string, lineNo int) (*RuleComment, error) {
	text := strings.TrimSpace(line)
	rest, ok := strings.CutPrefix(text, RuleCommentPrefix)
	if !ok {
		return nil, fmt.Errorf("%w: line %d does not start with %q", consts.ErrMalformedRuleComment, lineNo, RuleCommentPrefix)
	}

	c := &RuleComment{UniqueID: UnsetID, Line: lineNo}
	if i := strings.Index(rest, "|Rulename:"); i >= 0 {
		c.Name = strings.TrimSpace(rest[i+len("|Rulename:"):])
		rest = rest[:i]
	}

	parts := strings.Split(rest, "|")
	for _, f := range strings.Split(parts[0], ",") {
		if f = strings.TrimSpace(f); f != "" {
			c.Flags = append(c.Flags, f)
		}
	}
	for _, p := range parts[1:] {
		key, value, found := strings.Cut(p, ":")
		if !found {
			return nil, fmt.Errorf("%w: line %d: field %q has no value", consts.ErrMalformedRuleComment, lineNo, p)
		}
		switch strings.TrimSpace(key) {
		case "UniqueId":
			id, err := strconv.Atoi(strings.TrimSpace(value))
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: unique id %q: %v", consts.ErrMalformedRuleComment, lineNo, value, err)
			}
			c.UniqueID = id
		default:
			// Unknown fields from newer writers are ignored.
		}
	}
	return c, nil
}

func (c *RuleComment) HasFlag(flag string) bool {
	for _, f := range c.Flags {
		if strings.EqualFold(f, flag) {
			return true
		}
	}
	return false
}

// LineRange is the inclusive span of source lines a rule occupies.
type LineRange struct {
	Start int
	End   int
}

func (r LineRange) Contains(line int) bool { return line >= r.Start && line <= r.End }

// Rule is one filter rule: its commands plus authoring metadata. A rule that
// failed to parse is still held, with ErrorText set and its commands
// incomplete, so it can be shown to the user.
type Rule struct {
	commands []Command

	Comment      *RuleComment
	Lines        LineRange
	CommentedOut bool
	ErrorText    string
}

func NewRule(commands ...Command) *Rule {
	r := &Rule{commands: make([]Command, 0, len(commands))}
	for _, c := range commands {
		r.Add(c)
	}
	return r
}

// Add appends a command. Nil commands are ignored.
func (r *Rule) Add(c Command) {
	if c == nil {
		return
	}
	if r.commands == nil {
		r.commands = []Command{}
	}
	r.commands = append(r.commands, c)
}

// Commands returns the command list; it is never nil.
func (r *Rule) Commands() []Command {
	return append([]Command{}, r.commands...)
}

// RequireCommand returns the first command when it is a require statement.
// A require anywhere else is not reported.
func (r *Rule) RequireCommand() (*RequireCommand, bool) {
	if len(r.commands) == 0 {
		return nil, false
	}
	req, ok := r.commands[0].(*RequireCommand)
	return req, ok
}

// IfCommand returns the first top-level if branch.
func (r *Rule) IfCommand() (*IfCommand, bool) {
	for _, c := range r.commands {
		if ic, ok := c.(*IfCommand); ok && ic.kind == If {
			return ic, true
		}
	}
	return nil, false
}

// TestCommand returns the guard of the rule's if command.
func (r *Rule) TestCommand() (*TestCommand, bool) {
	ic, ok := r.IfCommand()
	if !ok {
		return nil, false
	}
	return ic.TestCommand()
}

func (r *Rule) UniqueID() int {
	if r.Comment == nil {
		return UnsetID
	}
	return r.Comment.UniqueID
}

func (r *Rule) Name() string {
	if r.Comment == nil {
		return ""
	}
	return r.Comment.Name
}

func (r *Rule) Flags() []string {
	if r.Comment == nil {
		return nil
	}
	return append([]string(nil), r.Comment.Flags...)
}

// Enabled reports whether the rule takes part in filtering.
func (r *Rule) Enabled() bool { return !r.CommentedOut && r.ErrorText == "" }

// Line is the line the rule starts on: the comment line when there is one.
func (r *Rule) Line() int {
	if r.Comment != nil && r.Comment.Line > 0 {
		return r.Comment.Line
	}
	return r.Lines.Start
}

// Compare orders rules by source position.
func (r *Rule) Compare(other *Rule) int {
	return cmp.Compare(r.Line(), other.Line())
}

// Required unions the capabilities of every command in the rule.
func (r *Rule) Required() CapabilitySet {
	set := NewCapabilitySet()
	for _, c := range r.commands {
		set.Union(c.Required())
	}
	return set
}

// FirstAction classifies the rule by the first action of its if command.
func (r *Rule) FirstAction() (ActionKind, bool) {
	ic, ok := r.IfCommand()
	if !ok {
		return 0, false
	}
	return ic.FirstAction()
}
