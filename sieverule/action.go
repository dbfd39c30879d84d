package sieverule

import (
	"fmt"
	"strings"
)

// ActionKind enumerates the action commands understood by the rule model.
type ActionKind int

const (
	Keep ActionKind = iota
	Discard
	Redirect
	FileInto
	Reject
	Stop
	Vacation
	Notify
	AddFlag
	PGPEncrypt
	AddHeader
	DeleteHeader
	Set
	numActionKinds
)

var actionDescriptors = [numActionKinds]*Descriptor{
	Keep: newDescriptor(FamilyAction, "keep", "keep", 0, 0, "",
		withTag(":flags", 1, "imap4flags")),
	Discard: newDescriptor(FamilyAction, "discard", "discard", 0, 0, ""),
	Redirect: newDescriptor(FamilyAction, "redirect", "redirect", 1, 1, "",
		withTag(":copy", 0, "copy")),
	FileInto: newDescriptor(FamilyAction, "fileinto", "move", 1, 1, "fileinto",
		withTag(":copy", 0, "copy"),
		withTag(":create", 0, "mailbox"),
		withTag(":flags", 1, "imap4flags")),
	Reject: newDescriptor(FamilyAction, "reject", "reject", 1, 1, "reject"),
	Stop:   newDescriptor(FamilyAction, "stop", "stop", 0, 0, ""),
	Vacation: newDescriptor(FamilyAction, "vacation", "vacation", 1, 1, "vacation",
		withGroupTag(":days", 1, GroupPeriod, ""),
		withGroupTag(":seconds", 1, GroupPeriod, "vacation-seconds"),
		withTag(":addresses", 1, ""),
		withTag(":subject", 1, ""),
		withTag(":from", 1, ""),
		withTag(":mime", 0, ""),
		withTag(":handle", 1, "")),
	Notify: newDescriptor(FamilyAction, "notify", "notify", 1, 1, "enotify",
		withTag(":from", 1, ""),
		withTag(":importance", 1, ""),
		withTag(":options", 1, ""),
		withTag(":message", 1, "")),
	AddFlag: newDescriptor(FamilyAction, "addflag", "addflags", 1, 2, "imap4flags"),
	PGPEncrypt: newDescriptor(FamilyAction, "pgp_encrypt", "pgp", 0, 0, "vnd.dovecot.pgp-encrypt",
		withTag(":keys", 1, "")),
	AddHeader: newDescriptor(FamilyAction, "addheader", "addheader", 2, 2, "editheader",
		withTag(":last", 0, "")),
	DeleteHeader: newDescriptor(FamilyAction, "deleteheader", "deleteheader", 1, 2, "editheader",
		withTag(":index", 1, ""),
		withTag(":last", 0, ""),
		withMatchTypes(standardMatchTypes...),
		withComparators()),
	Set: newDescriptor(FamilyAction, "set", "set", 2, 2, "variables",
		withTag(":lower", 0, ""),
		withTag(":upper", 0, ""),
		withTag(":lowerfirst", 0, ""),
		withTag(":upperfirst", 0, ""),
		withTag(":quotewildcard", 0, ""),
		withTag(":length", 0, "")),
}

func (k ActionKind) valid() bool { return k >= 0 && k < numActionKinds }

// Descriptor returns the immutable descriptor of the kind, nil for an
// out-of-range value.
func (k ActionKind) Descriptor() *Descriptor {
	if !k.valid() {
		return nil
	}
	return actionDescriptors[k]
}

func (k ActionKind) String() string {
	if !k.valid() {
		return fmt.Sprintf("ActionKind(%d)", int(k))
	}
	return actionDescriptors[k].name
}

func (k ActionKind) JSONName() string {
	if !k.valid() {
		return ""
	}
	return actionDescriptors[k].jsonName
}

// ActionKinds returns every action kind in declaration order.
func ActionKinds() []ActionKind {
	out := make([]ActionKind, 0, numActionKinds)
	for k := ActionKind(0); k < numActionKinds; k++ {
		out = append(out, k)
	}
	return out
}

func ActionKindByName(name string) (ActionKind, bool) {
	name = strings.ToLower(name)
	for k, d := range actionDescriptors {
		if d.name == name {
			return ActionKind(k), true
		}
	}
	return 0, false
}

func ActionKindByJSONName(name string) (ActionKind, bool) {
	for k, d := range actionDescriptors {
		if d.jsonName == name {
			return ActionKind(k), true
		}
	}
	return 0, false
}

// ActionCommand is a validated action command. It is immutable once built.
type ActionCommand struct {
	kind ActionKind
	tags map[string][]string
	args []Arg
	raw  []Arg
}

// NewActionCommand binds args to the descriptor of kind. Tags come first and
// the positional arguments form the trailing block.
func NewActionCommand(kind ActionKind, args ...Arg) (*ActionCommand, error) {
	d := kind.Descriptor()
	if d == nil {
		return nil, fmt.Errorf("unknown action kind %d", int(kind))
	}
	b, err := bind(d, args, true)
	if err != nil {
		return nil, err
	}
	return &ActionCommand{
		kind: kind,
		tags: b.tags,
		args: b.positional,
		raw:  append([]Arg(nil), args...),
	}, nil
}

func (c *ActionCommand) Kind() ActionKind { return c.kind }

func (c *ActionCommand) Descriptor() *Descriptor { return c.kind.Descriptor() }

func (c *ActionCommand) CommandName() string { return c.kind.String() }

func (c *ActionCommand) HasTag(tag string) bool {
	_, ok := c.tags[strings.ToLower(tag)]
	return ok
}

// TagValues returns a copy of the values that followed tag.
func (c *ActionCommand) TagValues(tag string) ([]string, bool) {
	v, ok := c.tags[strings.ToLower(tag)]
	if !ok {
		return nil, false
	}
	return append([]string{}, v...), true
}

func (c *ActionCommand) Tags() map[string][]string { return copyTags(c.tags) }

func (c *ActionCommand) TagNames() []string { return sortedKeys(c.tags) }

func (c *ActionCommand) Arguments() []Arg { return append([]Arg(nil), c.args...) }

// MainArgument returns the values of the last positional argument, e.g. the
// folder of fileinto or the reason of vacation.
func (c *ActionCommand) MainArgument() ([]string, bool) {
	if len(c.args) == 0 {
		return nil, false
	}
	return c.args[len(c.args)-1].Values(), true
}

func (c *ActionCommand) Required() CapabilitySet {
	set := NewCapabilitySet()
	addRequired(c.Descriptor(), c.tags, set)
	return set
}

func (c *ActionCommand) String() string {
	return c.kind.String() + " " + dumpArgs(c.raw)
}
