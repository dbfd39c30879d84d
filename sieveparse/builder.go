package sieveparse

import (
	"fmt"
	"strings"

	"github.com/foxcpp/go-sieve/parser"
	"github.com/migadu/sievefilter/consts"
	"github.com/migadu/sievefilter/sieverule"
)

// ruleBuilder groups top-level commands into rules. A require is held until
// the next rule starts, elsif and else extend the current if rule, and
// consecutive top-level actions share one rule.
type ruleBuilder struct {
	conv        *converter
	rules       []*sieverule.Rule
	current     *sieverule.Rule
	pending     *sieverule.RequireCommand
	pendingLine int
}

type builderState struct {
	rules       int
	current     *sieverule.Rule
	pending     *sieverule.RequireCommand
	pendingLine int
}

func (b *ruleBuilder) save() builderState {
	return builderState{rules: len(b.rules), current: b.current, pending: b.pending, pendingLine: b.pendingLine}
}

func (b *ruleBuilder) restore(s builderState) {
	b.rules = b.rules[:s.rules]
	b.current = s.current
	b.pending = s.pending
	b.pendingLine = s.pendingLine
}

// take returns the rules built so far. The next command starts a new rule.
func (b *ruleBuilder) take() []*sieverule.Rule {
	out := b.rules
	b.rules = nil
	b.current = nil
	return out
}

// flush turns a require not followed by any rule into a rule of its own.
func (b *ruleBuilder) flush() []*sieverule.Rule {
	if b.pending != nil {
		r := sieverule.NewRule(b.pending)
		r.Lines = sieverule.LineRange{Start: b.pendingLine, End: b.pendingLine}
		b.rules = append(b.rules, r)
		b.pending = nil
	}
	return b.take()
}

func (b *ruleBuilder) start(line int) *sieverule.Rule {
	r := sieverule.NewRule()
	r.Lines.Start = line
	if b.pending != nil {
		r.Add(b.pending)
		r.Lines.Start = b.pendingLine
		b.pending = nil
	}
	b.rules = append(b.rules, r)
	b.current = r
	return r
}

func (b *ruleBuilder) add(cmd parser.Cmd) error {
	name := strings.ToLower(cmd.Id)
	line := cmd.Position.Line

	if name == "require" {
		req, err := convertRequire(cmd)
		if err != nil {
			return err
		}
		if b.pending != nil {
			req = sieverule.NewRequireCommand(append(b.pending.Capabilities(), req.Capabilities()...)...)
		} else {
			b.pendingLine = line
		}
		b.pending = req
		b.current = nil
		return nil
	}

	if kind, ok := sieverule.ControlKindByName(name); ok {
		ic, err := b.conv.control(kind, cmd)
		if err != nil {
			return err
		}
		if kind == sieverule.If {
			b.start(line).Add(ic)
			return nil
		}
		if b.current == nil {
			return errorAt(cmd.Position, fmt.Errorf("%w: %s without if", consts.ErrUnsupportedStructure, name))
		}
		if _, hasIf := b.current.IfCommand(); !hasIf {
			return errorAt(cmd.Position, fmt.Errorf("%w: %s without if", consts.ErrUnsupportedStructure, name))
		}
		b.current.Add(ic)
		return nil
	}

	a, err := b.conv.action(cmd)
	if err != nil {
		return err
	}
	if b.current == nil {
		b.start(line)
	} else if _, hasIf := b.current.IfCommand(); hasIf {
		b.start(line)
	}
	b.current.Add(a)
	return nil
}
