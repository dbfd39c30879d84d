package sieverule

import (
	"fmt"
	"strings"

	"github.com/migadu/sievefilter/consts"
)

// MaxNestingDepth bounds the depth of not/allof/anyof test trees.
const MaxNestingDepth = 64

// TestKind enumerates the test commands understood by the rule model.
type TestKind int

const (
	Address TestKind = iota
	Envelope
	Exists
	False
	True
	Not
	Size
	HeaderTest
	AllOf
	AnyOf
	Body
	CurrentDate
	numTestKinds
)

var testDescriptors = [numTestKinds]*Descriptor{
	Address: newDescriptor(FamilyTest, "address", "address", 2, 2, "",
		withAddressParts(),
		withMatchTypes(standardMatchTypes...),
		withComparators()),
	Envelope: newDescriptor(FamilyTest, "envelope", "envelope", 2, 2, "envelope",
		withAddressParts(),
		withMatchTypes(standardMatchTypes...),
		withComparators()),
	Exists: newDescriptor(FamilyTest, "exists", "exists", 1, 1, ""),
	False:  newDescriptor(FamilyTest, "false", "false", 0, 0, ""),
	True:   newDescriptor(FamilyTest, "true", "true", 0, 0, ""),
	Not: newDescriptor(FamilyTest, "not", "not", 0, 0, "",
		withTests(1, 1)),
	Size: newDescriptor(FamilyTest, "size", "size", 1, 1, "",
		withMatchTypes("over", "under"),
		withRequiredGroup(GroupMatchType)),
	HeaderTest: newDescriptor(FamilyTest, "header", "header", 2, 2, "",
		withMatchTypes(standardMatchTypes...),
		withComparators()),
	AllOf: newDescriptor(FamilyTest, "allof", "allof", 0, 0, "",
		withTests(1, Unbounded)),
	AnyOf: newDescriptor(FamilyTest, "anyof", "anyof", 0, 0, "",
		withTests(1, Unbounded)),
	Body: newDescriptor(FamilyTest, "body", "body", 1, 1, "body",
		withGroupTag(":raw", 0, GroupBodyTransform, ""),
		withGroupTag(":content", 1, GroupBodyTransform, ""),
		withGroupTag(":text", 0, GroupBodyTransform, ""),
		withMatchTypes(standardMatchTypes...),
		withComparators()),
	CurrentDate: newDescriptor(FamilyTest, "currentdate", "currentdate", 2, 2, "date",
		withTag(":zone", 1, ""),
		withMatchTypes(standardMatchTypes...),
		withComparators()),
}

func (k TestKind) valid() bool { return k >= 0 && k < numTestKinds }

func (k TestKind) Descriptor() *Descriptor {
	if !k.valid() {
		return nil
	}
	return testDescriptors[k]
}

func (k TestKind) String() string {
	if !k.valid() {
		return fmt.Sprintf("TestKind(%d)", int(k))
	}
	return testDescriptors[k].name
}

func (k TestKind) JSONName() string {
	if !k.valid() {
		return ""
	}
	return testDescriptors[k].jsonName
}

func TestKinds() []TestKind {
	out := make([]TestKind, 0, numTestKinds)
	for k := TestKind(0); k < numTestKinds; k++ {
		out = append(out, k)
	}
	return out
}

func TestKindByName(name string) (TestKind, bool) {
	name = strings.ToLower(name)
	for k, d := range testDescriptors {
		if d.name == name {
			return TestKind(k), true
		}
	}
	return 0, false
}

func TestKindByJSONName(name string) (TestKind, bool) {
	for k, d := range testDescriptors {
		if d.jsonName == name {
			return TestKind(k), true
		}
	}
	return 0, false
}

// TestCommand is a validated test, possibly with nested tests for not, allof
// and anyof. It is immutable once built.
type TestCommand struct {
	kind   TestKind
	tags   map[string][]string
	args   []Arg
	raw    []Arg
	nested []*TestCommand
	depth  int
}

// NewTestCommand binds args to the descriptor of kind. Positional arguments
// may appear anywhere between the tags.
func NewTestCommand(kind TestKind, args []Arg, nested ...*TestCommand) (*TestCommand, error) {
	d := kind.Descriptor()
	if d == nil {
		return nil, fmt.Errorf("unknown test kind %d", int(kind))
	}
	b, err := bind(d, args, false)
	if err != nil {
		return nil, err
	}

	n := len(nested)
	if n < d.minTests || (d.maxTests != Unbounded && n > d.maxTests) {
		return nil, fmt.Errorf("%w for command %s: got %d, want %s",
			consts.ErrTestCount, d.name, n, boundsString(d.minTests, d.maxTests))
	}

	depth := 1
	for i, t := range nested {
		if t == nil {
			return nil, fmt.Errorf("%w for command %s: nested test %d is nil", consts.ErrTestCount, d.name, i)
		}
		if t.depth+1 > depth {
			depth = t.depth + 1
		}
	}
	if depth > MaxNestingDepth {
		return nil, fmt.Errorf("%w: command %s reaches depth %d, limit is %d",
			consts.ErrNestingTooDeep, d.name, depth, MaxNestingDepth)
	}

	return &TestCommand{
		kind:   kind,
		tags:   b.tags,
		args:   b.positional,
		raw:    append([]Arg(nil), args...),
		nested: append([]*TestCommand(nil), nested...),
		depth:  depth,
	}, nil
}

// MustTest is NewTestCommand for statically known arguments; it panics on error.
func MustTest(kind TestKind, args []Arg, nested ...*TestCommand) *TestCommand {
	t, err := NewTestCommand(kind, args, nested...)
	if err != nil {
		panic(err)
	}
	return t
}

func (t *TestCommand) Kind() TestKind { return t.kind }

func (t *TestCommand) Descriptor() *Descriptor { return t.kind.Descriptor() }

func (t *TestCommand) CommandName() string { return t.kind.String() }

// Depth is 1 for a leaf test and grows by one per nesting level.
func (t *TestCommand) Depth() int { return t.depth }

func (t *TestCommand) HasTag(tag string) bool {
	_, ok := t.tags[strings.ToLower(tag)]
	return ok
}

func (t *TestCommand) TagValues(tag string) ([]string, bool) {
	v, ok := t.tags[strings.ToLower(tag)]
	if !ok {
		return nil, false
	}
	return append([]string{}, v...), true
}

func (t *TestCommand) Tags() map[string][]string { return copyTags(t.tags) }

func (t *TestCommand) TagNames() []string { return sortedKeys(t.tags) }

func (t *TestCommand) Arguments() []Arg { return append([]Arg(nil), t.args...) }

func (t *TestCommand) Tests() []*TestCommand { return append([]*TestCommand(nil), t.nested...) }

// MatchType returns the match type in use, resolving ":value" with its
// operator. Tests without a match-type tag report false.
func (t *TestCommand) MatchType() (MatchType, bool) {
	d := t.Descriptor()
	for tag, values := range t.tags {
		spec := d.tags[tag]
		if spec.Group != GroupMatchType {
			continue
		}
		op := ""
		if len(values) == 1 {
			op = strings.ToLower(values[0])
		}
		return MatchTypeByTag(tag, op)
	}
	return MatchType{}, false
}

// Required walks the test tree with an explicit stack and collects every
// capability it uses.
func (t *TestCommand) Required() CapabilitySet {
	set := NewCapabilitySet()
	t.addRequired(set)
	return set
}

func (t *TestCommand) addRequired(set CapabilitySet) {
	stack := []*TestCommand{t}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		addRequired(cur.Descriptor(), cur.tags, set)
		stack = append(stack, cur.nested...)
	}
}

func (t *TestCommand) String() string {
	var sb strings.Builder
	sb.WriteString(t.kind.String())
	if len(t.raw) > 0 {
		sb.WriteString(" ")
		sb.WriteString(dumpArgs(t.raw))
	}
	if len(t.nested) > 0 {
		parts := make([]string, len(t.nested))
		for i, n := range t.nested {
			parts[i] = n.String()
		}
		sb.WriteString(" (" + strings.Join(parts, ", ") + ")")
	}
	return sb.String()
}
