package sieverule

import (
	"slices"
	"strings"
)

// Unbounded marks a descriptor bound without an upper limit.
const Unbounded = -1

// Family separates action commands from test commands.
type Family int

const (
	FamilyAction Family = iota
	FamilyTest
)

func (f Family) String() string {
	if f == FamilyTest {
		return "test"
	}
	return "action"
}

// TagGroup marks tags that exclude each other on a single command.
type TagGroup int

const (
	GroupNone TagGroup = iota
	GroupMatchType
	GroupAddressPart
	GroupComparator
	GroupBodyTransform
	GroupPeriod
)

func (g TagGroup) String() string {
	switch g {
	case GroupMatchType:
		return "match-type"
	case GroupAddressPart:
		return "address-part"
	case GroupComparator:
		return "comparator"
	case GroupBodyTransform:
		return "body-transform"
	case GroupPeriod:
		return "period"
	default:
		return "none"
	}
}

// TagSpec describes one tagged argument a command accepts.
type TagSpec struct {
	// Arity is the number of values that follow the tag (0 or 1).
	Arity      int
	Group      TagGroup
	Capability string
}

// Descriptor is the immutable shape of one command kind.
type Descriptor struct {
	family     Family
	name       string
	jsonName   string
	minArgs    int
	maxArgs    int
	minTests   int
	maxTests   int
	capability string
	// requiredGroup names a tag group of which one tag must be present.
	requiredGroup TagGroup

	tags         map[string]TagSpec
	addressParts map[string]string
	comparators  map[string]string
	matchTypes   map[string]string
}

type descriptorOption func(*Descriptor)

func newDescriptor(family Family, name, jsonName string, minArgs, maxArgs int, capability string, opts ...descriptorOption) *Descriptor {
	d := &Descriptor{
		family:       family,
		name:         name,
		jsonName:     jsonName,
		minArgs:      minArgs,
		maxArgs:      maxArgs,
		capability:   capability,
		tags:         make(map[string]TagSpec),
		addressParts: make(map[string]string),
		comparators:  make(map[string]string),
		matchTypes:   make(map[string]string),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func withTag(tag string, arity int, capability string) descriptorOption {
	return withGroupTag(tag, arity, GroupNone, capability)
}

func withGroupTag(tag string, arity int, group TagGroup, capability string) descriptorOption {
	return func(d *Descriptor) {
		d.tags[tag] = TagSpec{Arity: arity, Group: group, Capability: capability}
	}
}

// withMatchTypes registers the match-type tags of the named vocabulary entries.
// The tag capability comes from the vocabulary so both can never disagree.
func withMatchTypes(names ...string) descriptorOption {
	return func(d *Descriptor) {
		for _, name := range names {
			m, _, ok := MatchTypeByName(name)
			if !ok {
				panic("sieverule: unknown match type " + name)
			}
			arity := 0
			if m.Tag == ":value" || m.Tag == ":count" {
				arity = 1
			}
			d.matchTypes[m.Tag] = m.Capability
			d.tags[m.Tag] = TagSpec{Arity: arity, Group: GroupMatchType, Capability: m.Capability}
		}
	}
}

func withAddressParts() descriptorOption {
	return func(d *Descriptor) {
		for _, p := range addressParts {
			d.addressParts[p.Tag] = p.Capability
			d.tags[p.Tag] = TagSpec{Group: GroupAddressPart, Capability: p.Capability}
		}
	}
}

func withComparators() descriptorOption {
	return func(d *Descriptor) {
		for _, c := range comparators {
			d.comparators[c.Name] = c.Capability
		}
		d.tags[comparatorTag] = TagSpec{Arity: 1, Group: GroupComparator}
	}
}

func withTests(minTests, maxTests int) descriptorOption {
	return func(d *Descriptor) {
		d.minTests, d.maxTests = minTests, maxTests
	}
}

func withRequiredGroup(g TagGroup) descriptorOption {
	return func(d *Descriptor) {
		d.requiredGroup = g
	}
}

const comparatorTag = ":comparator"

var standardMatchTypes = []string{"is", "contains", "matches", "regex", "value", "count"}

func (d *Descriptor) Family() Family     { return d.family }
func (d *Descriptor) Name() string       { return d.name }
func (d *Descriptor) JSONName() string   { return d.jsonName }
func (d *Descriptor) MinArgs() int       { return d.minArgs }
func (d *Descriptor) MaxArgs() int       { return d.maxArgs }
func (d *Descriptor) MinTests() int      { return d.minTests }
func (d *Descriptor) MaxTests() int      { return d.maxTests }
func (d *Descriptor) Capability() string { return d.capability }

// Tag looks up the spec of a tag keyword such as ":days".
func (d *Descriptor) Tag(tag string) (TagSpec, bool) {
	spec, ok := d.tags[strings.ToLower(tag)]
	return spec, ok
}

// Tags returns the accepted tag keywords in sorted order.
func (d *Descriptor) Tags() []string {
	return sortedKeys(d.tags)
}

func (d *Descriptor) AddressParts() map[string]string { return cloneMap(d.addressParts) }
func (d *Descriptor) Comparators() map[string]string  { return cloneMap(d.comparators) }
func (d *Descriptor) MatchTypes() map[string]string   { return cloneMap(d.matchTypes) }

// TagCapability is the single capability lookup shared by both command
// families: the capability a tag of the given command requires.
func TagCapability(d *Descriptor, tag string) (string, bool) {
	spec, ok := d.Tag(tag)
	if !ok {
		return "", false
	}
	return spec.Capability, true
}

// KnownCapabilities lists every capability a command, tag or vocabulary entry
// can require, sorted.
func KnownCapabilities() []string {
	set := NewCapabilitySet()
	collect := func(d *Descriptor) {
		set.Add(d.capability)
		for _, spec := range d.tags {
			set.Add(spec.Capability)
		}
		for _, c := range d.comparators {
			set.Add(c)
		}
	}
	for _, d := range actionDescriptors {
		collect(d)
	}
	for _, d := range testDescriptors {
		collect(d)
	}
	return set.Sorted()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func cloneMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
