package sieverule

import (
	"fmt"
	"strconv"
	"strings"
)

// ArgKind identifies the lexical class of a raw command argument.
type ArgKind int

const (
	ArgString ArgKind = iota
	ArgStringList
	ArgNumber
	ArgTag
)

func (k ArgKind) String() string {
	switch k {
	case ArgString:
		return "string"
	case ArgStringList:
		return "string-list"
	case ArgNumber:
		return "number"
	case ArgTag:
		return "tag"
	default:
		return "unknown"
	}
}

// Arg is one raw argument of a command occurrence as produced by a tokenizer:
// a tag marker, a string, a string list or a number.
type Arg struct {
	kind ArgKind
	str  string
	list []string
	num  int
}

// Tag returns a tag marker argument. The leading colon is added when missing.
func Tag(name string) Arg {
	if !strings.HasPrefix(name, ":") {
		name = ":" + name
	}
	return Arg{kind: ArgTag, str: strings.ToLower(name)}
}

func String(s string) Arg {
	return Arg{kind: ArgString, str: s}
}

func StringList(values ...string) Arg {
	list := make([]string, len(values))
	copy(list, values)
	return Arg{kind: ArgStringList, list: list}
}

func Number(n int) Arg {
	return Arg{kind: ArgNumber, num: n}
}

func (a Arg) Kind() ArgKind { return a.kind }

func (a Arg) IsTag() bool { return a.kind == ArgTag }

// Values returns the argument as a string list. Strings and numbers become
// one-element lists, tags return nil.
func (a Arg) Values() []string {
	switch a.kind {
	case ArgString:
		return []string{a.str}
	case ArgStringList:
		out := make([]string, len(a.list))
		copy(out, a.list)
		return out
	case ArgNumber:
		return []string{strconv.Itoa(a.num)}
	default:
		return nil
	}
}

// TagName returns the tag keyword including its colon, or "" for non-tags.
func (a Arg) TagName() string {
	if a.kind != ArgTag {
		return ""
	}
	return a.str
}

// Number returns the numeric value and whether the argument is a number.
func (a Arg) Number() (int, bool) {
	return a.num, a.kind == ArgNumber
}

func (a Arg) String() string {
	switch a.kind {
	case ArgTag:
		return a.str
	case ArgString:
		return strconv.Quote(a.str)
	case ArgNumber:
		return strconv.Itoa(a.num)
	case ArgStringList:
		quoted := make([]string, len(a.list))
		for i, s := range a.list {
			quoted[i] = strconv.Quote(s)
		}
		return "[" + strings.Join(quoted, ", ") + "]"
	default:
		return fmt.Sprintf("<%v>", a.kind)
	}
}

func dumpArgs(args []Arg) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.String()
	}
	return "[" + strings.Join(parts, " ") + "]"
}
