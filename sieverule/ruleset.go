package sieverule

import (
	"fmt"
	"slices"
)

// RuleSet is the ordered list of rules of one script.
type RuleSet struct {
	rules []*Rule
}

func NewRuleSet(rules ...*Rule) *RuleSet {
	rs := &RuleSet{}
	for _, r := range rules {
		if r != nil {
			rs.rules = append(rs.rules, r)
		}
	}
	return rs
}

func (rs *RuleSet) Add(r *Rule) {
	if r != nil {
		rs.rules = append(rs.rules, r)
	}
}

func (rs *RuleSet) Rules() []*Rule { return append([]*Rule(nil), rs.rules...) }

func (rs *RuleSet) Len() int { return len(rs.rules) }

// Sort orders the rules by source line, keeping the relative order of rules
// on the same line.
func (rs *RuleSet) Sort() {
	slices.SortStableFunc(rs.rules, func(a, b *Rule) int { return a.Compare(b) })
}

func (rs *RuleSet) ByUniqueID(id int) (*Rule, bool) {
	if id == UnsetID {
		return nil, false
	}
	for _, r := range rs.rules {
		if r.UniqueID() == id {
			return r, true
		}
	}
	return nil, false
}

// NextUniqueID returns one more than the highest id in use.
func (rs *RuleSet) NextUniqueID() int {
	next := 0
	for _, r := range rs.rules {
		if id := r.UniqueID(); id >= next {
			next = id + 1
		}
	}
	return next
}

// Reorder moves the rules with the given ids to the front, in the order
// given. The remaining rules keep their relative order after them. Rules
// holding a require statement always stay first, even when listed in ids.
func (rs *RuleSet) Reorder(ids []int) error {
	seen := make(map[int]bool, len(ids))
	moved := make([]*Rule, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			return fmt.Errorf("rule id %d listed twice", id)
		}
		seen[id] = true
		r, ok := rs.ByUniqueID(id)
		if !ok {
			return fmt.Errorf("no rule with id %d", id)
		}
		if _, ok := r.RequireCommand(); !ok {
			moved = append(moved, r)
		}
	}

	var head, tail []*Rule
	for _, r := range rs.rules {
		if _, ok := r.RequireCommand(); ok {
			head = append(head, r)
			continue
		}
		if !seen[r.UniqueID()] {
			tail = append(tail, r)
		}
	}
	rs.rules = append(append(append([]*Rule(nil), head...), moved...), tail...)
	return nil
}

// Required unions the capabilities of every enabled rule.
func (rs *RuleSet) Required() CapabilitySet {
	set := NewCapabilitySet()
	for _, r := range rs.rules {
		if r.CommentedOut {
			continue
		}
		set.Union(r.Required())
	}
	return set
}

// Declared unions the capabilities listed by require commands in the set.
func (rs *RuleSet) Declared() CapabilitySet {
	set := NewCapabilitySet()
	for _, r := range rs.rules {
		if r.CommentedOut {
			continue
		}
		for _, c := range r.commands {
			if req, ok := c.(*RequireCommand); ok {
				set.Union(req.Declared())
			}
		}
	}
	return set
}

// MissingRequires lists the capabilities used by enabled rules but not
// declared by any require command, sorted.
func (rs *RuleSet) MissingRequires() []string {
	return rs.Required().Difference(rs.Declared())
}
