package sieverule

import (
	"fmt"
	"strings"

	"github.com/migadu/sievefilter/consts"
)

// Command is any top-level statement a Rule can hold.
type Command interface {
	CommandName() string
	Required() CapabilitySet
}

var (
	_ Command = (*ActionCommand)(nil)
	_ Command = (*TestCommand)(nil)
	_ Command = (*RequireCommand)(nil)
	_ Command = (*IfCommand)(nil)
)

// RequireCommand declares the capabilities a script uses. It requires nothing
// itself.
type RequireCommand struct {
	capabilities []string
}

func NewRequireCommand(capabilities ...string) *RequireCommand {
	caps := make([]string, 0, len(capabilities))
	for _, c := range capabilities {
		if c = strings.TrimSpace(c); c != "" {
			caps = append(caps, c)
		}
	}
	return &RequireCommand{capabilities: caps}
}

func (r *RequireCommand) CommandName() string { return "require" }

func (r *RequireCommand) Required() CapabilitySet { return NewCapabilitySet() }

// Capabilities returns the declared capability list in source order.
func (r *RequireCommand) Capabilities() []string {
	return append([]string(nil), r.capabilities...)
}

// Declared returns the declared capabilities as a set.
func (r *RequireCommand) Declared() CapabilitySet {
	return NewCapabilitySet(r.capabilities...)
}

// ControlKind distinguishes the branches of an if structure.
type ControlKind int

const (
	If ControlKind = iota
	ElsIf
	Else
)

func (k ControlKind) String() string {
	switch k {
	case If:
		return "if"
	case ElsIf:
		return "elsif"
	case Else:
		return "else"
	default:
		return fmt.Sprintf("ControlKind(%d)", int(k))
	}
}

// ControlKindByName maps "if", "elsif" and "else".
func ControlKindByName(name string) (ControlKind, bool) {
	switch strings.ToLower(name) {
	case "if":
		return If, true
	case "elsif":
		return ElsIf, true
	case "else":
		return Else, true
	}
	return 0, false
}

// IfCommand is one branch of an if/elsif/else structure: a guarding test and
// the actions run when it holds. Else branches have no guard.
type IfCommand struct {
	kind    ControlKind
	guard   *TestCommand
	actions []*ActionCommand
}

func NewIfCommand(kind ControlKind, guard *TestCommand, actions ...*ActionCommand) (*IfCommand, error) {
	switch {
	case kind < If || kind > Else:
		return nil, fmt.Errorf("%w: unknown control kind %d", consts.ErrMissingGuard, int(kind))
	case kind == Else && guard != nil:
		return nil, fmt.Errorf("%w: else takes no test", consts.ErrMissingGuard)
	case kind != Else && guard == nil:
		return nil, fmt.Errorf("%w: %s needs a test", consts.ErrMissingGuard, kind)
	}
	acts := make([]*ActionCommand, 0, len(actions))
	for i, a := range actions {
		if a == nil {
			return nil, fmt.Errorf("%w: action %d of %s is nil", consts.ErrMissingGuard, i, kind)
		}
		acts = append(acts, a)
	}
	return &IfCommand{kind: kind, guard: guard, actions: acts}, nil
}

func (c *IfCommand) Kind() ControlKind { return c.kind }

func (c *IfCommand) CommandName() string { return c.kind.String() }

// TestCommand returns the guard; else branches report false.
func (c *IfCommand) TestCommand() (*TestCommand, bool) {
	return c.guard, c.guard != nil
}

// Actions never returns nil.
func (c *IfCommand) Actions() []*ActionCommand {
	return append([]*ActionCommand{}, c.actions...)
}

// FirstAction classifies the branch by its first action without walking the
// capability tree.
func (c *IfCommand) FirstAction() (ActionKind, bool) {
	if len(c.actions) == 0 {
		return 0, false
	}
	return c.actions[0].kind, true
}

func (c *IfCommand) Required() CapabilitySet {
	set := NewCapabilitySet()
	if c.guard != nil {
		c.guard.addRequired(set)
	}
	for _, a := range c.actions {
		addRequired(a.Descriptor(), a.tags, set)
	}
	return set
}
