package sieverule

import (
	"slices"
	"strings"
)

// CapabilitySet is a set of Sieve capability names as they appear in a
// require statement. The empty string is never a member.
type CapabilitySet map[string]struct{}

func NewCapabilitySet(names ...string) CapabilitySet {
	s := make(CapabilitySet, len(names))
	for _, n := range names {
		s.Add(n)
	}
	return s
}

func (s CapabilitySet) Add(name string) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return
	}
	s[name] = struct{}{}
}

func (s CapabilitySet) Union(other CapabilitySet) {
	for n := range other {
		s[n] = struct{}{}
	}
}

func (s CapabilitySet) Has(name string) bool {
	_, ok := s[strings.ToLower(name)]
	return ok
}

func (s CapabilitySet) Len() int { return len(s) }

// Sorted returns the members in lexical order, the form used when a require
// list is rendered.
func (s CapabilitySet) Sorted() []string {
	out := make([]string, 0, len(s))
	for n := range s {
		out = append(out, n)
	}
	slices.Sort(out)
	return out
}

// Difference returns the members of s missing from other, sorted.
func (s CapabilitySet) Difference(other CapabilitySet) []string {
	var out []string
	for n := range s {
		if _, ok := other[n]; !ok {
			out = append(out, n)
		}
	}
	slices.Sort(out)
	return out
}

func (s CapabilitySet) Equal(other CapabilitySet) bool {
	if len(s) != len(other) {
		return false
	}
	for n := range s {
		if _, ok := other[n]; !ok {
			return false
		}
	}
	return true
}
