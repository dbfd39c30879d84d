package sieveparse

import (
	"fmt"
	"strings"

	"github.com/foxcpp/go-sieve/lexer"
	"github.com/foxcpp/go-sieve/parser"
	"github.com/migadu/sievefilter/consts"
	"github.com/migadu/sievefilter/sieverule"
)

// converter turns go-sieve syntax trees into rule model commands.
type converter struct {
	maxDepth int
}

func errorAt(pos lexer.Position, err error) error {
	return fmt.Errorf("line %d: %w", pos.Line, err)
}

func convertArgs(args []parser.Arg) ([]sieverule.Arg, error) {
	out := make([]sieverule.Arg, 0, len(args))
	for _, a := range args {
		switch v := a.(type) {
		case parser.TagArg:
			out = append(out, sieverule.Tag(v.Value))
		case parser.StringArg:
			out = append(out, sieverule.String(v.Value))
		case parser.StringListArg:
			out = append(out, sieverule.StringList(v.Value...))
		case parser.NumberArg:
			out = append(out, sieverule.Number(v.Value))
		default:
			return nil, fmt.Errorf("%w: argument of type %T", consts.ErrUnsupportedStructure, a)
		}
	}
	return out, nil
}

func convertRequire(cmd parser.Cmd) (*sieverule.RequireCommand, error) {
	if len(cmd.Args) != 1 || len(cmd.Tests) != 0 || len(cmd.Block) != 0 {
		return nil, errorAt(cmd.Position, fmt.Errorf("%w: require takes a single string or string list", consts.ErrUnsupportedStructure))
	}
	switch v := cmd.Args[0].(type) {
	case parser.StringArg:
		return sieverule.NewRequireCommand(v.Value), nil
	case parser.StringListArg:
		return sieverule.NewRequireCommand(v.Value...), nil
	}
	return nil, errorAt(cmd.Position, fmt.Errorf("%w: require takes a single string or string list", consts.ErrUnsupportedStructure))
}

func (c *converter) control(kind sieverule.ControlKind, cmd parser.Cmd) (*sieverule.IfCommand, error) {
	if len(cmd.Args) != 0 {
		return nil, errorAt(cmd.Position, fmt.Errorf("%w: %s takes no arguments", consts.ErrUnsupportedStructure, kind))
	}

	var guard *sieverule.TestCommand
	switch {
	case kind == sieverule.Else && len(cmd.Tests) != 0:
		return nil, errorAt(cmd.Position, fmt.Errorf("%w: else takes no test", consts.ErrMissingGuard))
	case kind != sieverule.Else && len(cmd.Tests) != 1:
		return nil, errorAt(cmd.Position, fmt.Errorf("%w: %s needs exactly one test, got %d", consts.ErrMissingGuard, kind, len(cmd.Tests)))
	case kind != sieverule.Else:
		t, err := c.test(cmd.Tests[0], 1)
		if err != nil {
			return nil, err
		}
		guard = t
	}

	actions := make([]*sieverule.ActionCommand, 0, len(cmd.Block))
	for _, b := range cmd.Block {
		a, err := c.action(b)
		if err != nil {
			return nil, err
		}
		actions = append(actions, a)
	}

	ic, err := sieverule.NewIfCommand(kind, guard, actions...)
	if err != nil {
		return nil, errorAt(cmd.Position, err)
	}
	return ic, nil
}

func (c *converter) action(cmd parser.Cmd) (*sieverule.ActionCommand, error) {
	name := strings.ToLower(cmd.Id)
	kind, ok := sieverule.ActionKindByName(name)
	if !ok {
		if _, isControl := sieverule.ControlKindByName(name); isControl || name == "require" {
			return nil, errorAt(cmd.Position, fmt.Errorf("%w: %s inside a block", consts.ErrUnsupportedStructure, name))
		}
		return nil, errorAt(cmd.Position, fmt.Errorf("%w: %q", consts.ErrUnknownCommand, cmd.Id))
	}
	if len(cmd.Tests) != 0 || len(cmd.Block) != 0 {
		return nil, errorAt(cmd.Position, fmt.Errorf("%w: %s takes no tests or block", consts.ErrUnsupportedStructure, name))
	}

	args, err := convertArgs(cmd.Args)
	if err != nil {
		return nil, errorAt(cmd.Position, err)
	}
	a, err := sieverule.NewActionCommand(kind, args...)
	if err != nil {
		return nil, errorAt(cmd.Position, err)
	}
	return a, nil
}

func (c *converter) test(t parser.Test, depth int) (*sieverule.TestCommand, error) {
	if depth > c.maxDepth {
		return nil, errorAt(t.Position, fmt.Errorf("%w: more than %d levels", consts.ErrNestingTooDeep, c.maxDepth))
	}
	kind, ok := sieverule.TestKindByName(strings.ToLower(t.Id))
	if !ok {
		return nil, errorAt(t.Position, fmt.Errorf("%w: test %q", consts.ErrUnknownCommand, t.Id))
	}

	args, err := convertArgs(t.Args)
	if err != nil {
		return nil, errorAt(t.Position, err)
	}
	nested := make([]*sieverule.TestCommand, 0, len(t.Tests))
	for _, n := range t.Tests {
		tc, err := c.test(n, depth+1)
		if err != nil {
			return nil, err
		}
		nested = append(nested, tc)
	}

	tc, err := sieverule.NewTestCommand(kind, args, nested...)
	if err != nil {
		return nil, errorAt(t.Position, err)
	}
	return tc, nil
}
