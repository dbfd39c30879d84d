package sieveparse

import (
	"fmt"
	"strings"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-message/mail"
	"github.com/migadu/sievefilter/helpers"
	"github.com/migadu/sievefilter/sieverule"
)

// Warning is a problem that does not stop a rule from loading but will
// likely make it misbehave at delivery time.
type Warning struct {
	Line     int
	RuleID   int
	RuleName string
	Command  string
	Message  string
}

func (w Warning) String() string {
	return fmt.Sprintf("line %d: %s: %s", w.Line, w.Command, w.Message)
}

var systemFlags = map[string]imap.Flag{}

func init() {
	for _, f := range []imap.Flag{imap.FlagSeen, imap.FlagAnswered, imap.FlagFlagged, imap.FlagDeleted, imap.FlagDraft} {
		systemFlags[strings.ToLower(string(f))] = f
	}
}

// Lint checks the address, mailbox and flag arguments of the enabled rules
// in rs. Values containing variable references are skipped.
func Lint(rs *sieverule.RuleSet) []Warning {
	var out []Warning
	for _, r := range rs.Rules() {
		if !r.Enabled() {
			continue
		}
		if name := r.Name(); name != helpers.SanitizeUTF8(name) {
			out = append(out, Warning{
				Line:     r.Line(),
				RuleID:   r.UniqueID(),
				RuleName: name,
				Command:  "rule",
				Message:  "name contains invalid UTF-8 or NUL bytes",
			})
		}
		for _, a := range ruleActions(r) {
			for _, msg := range lintAction(a) {
				out = append(out, Warning{
					Line:     r.Line(),
					RuleID:   r.UniqueID(),
					RuleName: r.Name(),
					Command:  a.CommandName(),
					Message:  msg,
				})
			}
		}
	}
	return out
}

func ruleActions(r *sieverule.Rule) []*sieverule.ActionCommand {
	var out []*sieverule.ActionCommand
	for _, c := range r.Commands() {
		switch v := c.(type) {
		case *sieverule.ActionCommand:
			out = append(out, v)
		case *sieverule.IfCommand:
			out = append(out, v.Actions()...)
		}
	}
	return out
}

func lintAction(a *sieverule.ActionCommand) []string {
	var msgs []string
	switch a.Kind() {
	case sieverule.Redirect:
		if v, ok := a.MainArgument(); ok {
			msgs = append(msgs, checkAddresses("redirect target", v)...)
		}
	case sieverule.Vacation:
		if v, ok := a.TagValues(":from"); ok {
			msgs = append(msgs, checkAddresses(":from", v)...)
		}
		if v, ok := a.TagValues(":addresses"); ok {
			msgs = append(msgs, checkAddresses(":addresses", v)...)
		}
	case sieverule.FileInto:
		if v, ok := a.MainArgument(); ok {
			msgs = append(msgs, checkMailboxes(v)...)
		}
	case sieverule.AddFlag:
		if v, ok := a.MainArgument(); ok {
			msgs = append(msgs, checkFlags(v)...)
		}
	}
	if v, ok := a.TagValues(":flags"); ok {
		msgs = append(msgs, checkFlags(v)...)
	}
	return msgs
}

func hasVariable(s string) bool {
	return strings.Contains(s, "${")
}

func checkAddresses(what string, values []string) []string {
	var msgs []string
	for _, v := range values {
		if hasVariable(v) {
			continue
		}
		if _, err := mail.ParseAddress(v); err != nil {
			msgs = append(msgs, fmt.Sprintf("invalid %s address %q: %v", what, v, err))
		}
	}
	return msgs
}

func checkMailboxes(values []string) []string {
	var msgs []string
	for _, v := range values {
		if hasVariable(v) {
			continue
		}
		if err := helpers.ValidateMailboxName(v); err != nil {
			msgs = append(msgs, err.Error())
			continue
		}
		if want, ok := helpers.MisspelledDefault(v); ok {
			msgs = append(msgs, fmt.Sprintf("mailbox %q differs from %q only in case", v, want))
		}
	}
	return msgs
}

// checkFlags reports backslash flags that are not IMAP system flags and
// keywords the mail store drops. Each value may hold several space separated
// flags.
func checkFlags(values []string) []string {
	var msgs []string
	for _, v := range values {
		if hasVariable(v) {
			continue
		}
		var keywords []imap.Flag
		for _, f := range strings.Fields(v) {
			if !strings.HasPrefix(f, `\`) {
				keywords = append(keywords, imap.Flag(f))
				continue
			}
			if _, ok := systemFlags[strings.ToLower(f)]; !ok {
				msgs = append(msgs, fmt.Sprintf("unknown system flag %q", f))
			}
		}
		for _, f := range helpers.RejectedFlags(keywords) {
			msgs = append(msgs, fmt.Sprintf("keyword %q is dropped on delivery", f))
		}
	}
	return msgs
}
