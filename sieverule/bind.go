package sieverule

import (
	"fmt"
	"slices"
	"strings"

	"github.com/migadu/sievefilter/consts"
)

// binding is the result of partitioning a raw argument list into tag values
// and positional arguments.
type binding struct {
	tags       map[string][]string
	positional []Arg
}

// bind partitions args against d and validates the result. When
// trailingPositional is set, positional values must follow every tag, which is
// the shape of action commands.
func bind(d *Descriptor, args []Arg, trailingPositional bool) (*binding, error) {
	b := &binding{tags: make(map[string][]string)}

	var unknown, duplicates []string
	var misplaced string
	for i := 0; i < len(args); i++ {
		a := args[i]
		if !a.IsTag() {
			b.positional = append(b.positional, a)
			continue
		}

		tag := a.TagName()
		if trailingPositional && len(b.positional) > 0 && misplaced == "" {
			misplaced = fmt.Sprintf("%s before %s", b.positional[len(b.positional)-1], tag)
		}
		// Duplicates are reported after unknown tags and :comparator.
		_, dup := b.tags[tag]
		if dup && !slices.Contains(duplicates, tag) {
			duplicates = append(duplicates, tag)
		}

		spec, ok := d.tags[tag]
		if !ok {
			if !dup {
				unknown = append(unknown, tag)
			}
			b.tags[tag] = []string{}
			continue
		}
		if spec.Arity == 0 {
			b.tags[tag] = []string{}
			continue
		}
		if i+1 >= len(args) {
			return nil, fmt.Errorf("%w: %s of command %s expects a value", consts.ErrInvalidTagValue, tag, d.name)
		}
		next := args[i+1]
		if next.IsTag() {
			return nil, fmt.Errorf("%w: %s of command %s expects a value, got %s", consts.ErrInvalidTagValue, tag, d.name, next.TagName())
		}
		if !dup {
			b.tags[tag] = next.Values()
		}
		i++
	}

	if len(unknown) > 0 {
		if slices.Contains(unknown, comparatorTag) {
			return nil, fmt.Errorf("%w: %w: %s for command %s", consts.ErrComparatorUnsupported, consts.ErrUnknownTag, strings.Join(unknown, ", "), d.name)
		}
		return nil, fmt.Errorf("%w: %s for command %s", consts.ErrUnknownTag, strings.Join(unknown, ", "), d.name)
	}
	if _, ok := b.tags[comparatorTag]; ok {
		return nil, fmt.Errorf("%w: command %s", consts.ErrComparatorUnsupported, d.name)
	}
	if len(duplicates) > 0 {
		return nil, fmt.Errorf("%w: %s given twice for command %s", consts.ErrDuplicateTag, strings.Join(duplicates, ", "), d.name)
	}
	if misplaced != "" {
		return nil, fmt.Errorf("%w: command %s has %s", consts.ErrArgumentOrder, d.name, misplaced)
	}
	if err := b.checkGroups(d); err != nil {
		return nil, err
	}
	if err := b.checkValues(d); err != nil {
		return nil, err
	}

	realArgs := len(b.positional)
	if realArgs < d.minArgs || (d.maxArgs != Unbounded && realArgs > d.maxArgs) {
		return nil, fmt.Errorf("%w for command %s: got %d, want %s: %s",
			consts.ErrArgumentCount, d.name, realArgs, boundsString(d.minArgs, d.maxArgs), dumpArgs(args))
	}
	return b, nil
}

func (b *binding) checkGroups(d *Descriptor) error {
	used := make(map[TagGroup]string)
	for _, tag := range sortedKeys(b.tags) {
		spec := d.tags[tag]
		if spec.Group == GroupNone {
			continue
		}
		if prev, ok := used[spec.Group]; ok {
			return fmt.Errorf("%w: %s and %s are both %s tags for command %s",
				consts.ErrConflictingTags, prev, tag, spec.Group, d.name)
		}
		used[spec.Group] = tag
	}
	if d.requiredGroup != GroupNone {
		if _, ok := used[d.requiredGroup]; !ok {
			return fmt.Errorf("%w: command %s needs a %s tag", consts.ErrMissingTag, d.name, d.requiredGroup)
		}
	}
	return nil
}

func (b *binding) checkValues(d *Descriptor) error {
	for _, tag := range sortedKeys(b.tags) {
		values, spec := b.tags[tag], d.tags[tag]
		if spec.Arity == 0 {
			continue
		}
		if len(values) == 0 {
			return fmt.Errorf("%w: %s of command %s has an empty value", consts.ErrInvalidTagValue, tag, d.name)
		}
		if spec.Group == GroupMatchType {
			if len(values) != 1 || !IsRelationalOperator(values[0]) {
				return fmt.Errorf("%w: %s of command %s needs a relational operator, got %v",
					consts.ErrInvalidTagValue, tag, d.name, values)
			}
		}
	}
	return nil
}

// addRequired adds the capabilities of the command kind and of every tag in
// use to set.
func addRequired(d *Descriptor, tags map[string][]string, set CapabilitySet) {
	set.Add(d.capability)
	for tag := range tags {
		if c, ok := TagCapability(d, tag); ok {
			set.Add(c)
		}
	}
}

func boundsString(lo, hi int) string {
	switch {
	case hi == Unbounded:
		return fmt.Sprintf("at least %d", lo)
	case lo == hi:
		return fmt.Sprintf("%d", lo)
	default:
		return fmt.Sprintf("%d to %d", lo, hi)
	}
}

func copyTags(tags map[string][]string) map[string][]string {
	out := make(map[string][]string, len(tags))
	for k, v := range tags {
		vv := make([]string, len(v))
		copy(vv, v)
		out[k] = vv
	}
	return out
}
