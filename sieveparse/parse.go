// Package sieveparse reads Sieve scripts written by the filter editor into
// the rule model.
//
// A script is a sequence of rules, each introduced by a metadata comment:
//
//	require ["fileinto"];
//	## Flag: |UniqueId:0|Rulename: Lists
//	if header :contains "list-id" "golang" {
//	    fileinto "Lists";
//	}
//	## Flag: |UniqueId:1|Rulename: Disabled
//	#if true {
//	#    discard;
//	#}
//
// go-sieve tokenizes and parses each rule; the resulting commands are bound
// and validated by the sieverule package. A rule that fails is kept with its
// error text so the rest of the script stays usable.
package sieveparse

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/foxcpp/go-sieve"
	"github.com/foxcpp/go-sieve/lexer"
	"github.com/foxcpp/go-sieve/parser"
	"github.com/migadu/sievefilter/config"
	"github.com/migadu/sievefilter/consts"
	"github.com/migadu/sievefilter/logger"
	"github.com/migadu/sievefilter/pkg/metrics"
	"github.com/migadu/sievefilter/sieverule"
)

// Parser converts scripts into rule sets. It is safe for concurrent use.
type Parser struct {
	cfg     config.SieveConfig
	enabled []string
	conv    converter
}

// New validates the configured extensions and returns a Parser.
func New(cfg config.SieveConfig) (*Parser, error) {
	if err := ValidateExtensions(cfg.SupportedExtensions); err != nil {
		return nil, fmt.Errorf("%w: %v", consts.ErrInvalidConfiguration, err)
	}
	depth := cfg.MaxNestingDepth
	if depth <= 0 || depth > sieverule.MaxNestingDepth {
		depth = sieverule.MaxNestingDepth
	}
	return &Parser{
		cfg:     cfg,
		enabled: EnabledExtensions(cfg.SupportedExtensions),
		conv:    converter{maxDepth: depth},
	}, nil
}

// Extensions returns the extensions scripts may use.
func (p *Parser) Extensions() []string {
	out := make([]string, len(p.enabled))
	copy(out, p.enabled)
	return out
}

// Script is the result of parsing one script.
type Script struct {
	Rules *sieverule.RuleSet
	// Required lists the capabilities used by enabled rules.
	Required []string
	// Missing lists capabilities used but never declared by require.
	Missing []string
	// Unsupported lists capabilities used or declared that are not enabled.
	Unsupported []string
	// LoadError is set when the go-sieve interpreter rejects the script.
	LoadError error
}

// Errors returns the rules that could not be parsed.
func (s *Script) Errors() []*sieverule.Rule {
	var out []*sieverule.Rule
	for _, r := range s.Rules.Rules() {
		if r.ErrorText != "" {
			out = append(out, r)
		}
	}
	return out
}

// Valid reports whether every rule parsed, all used capabilities are
// declared and enabled, and the interpreter accepted the script.
func (s *Script) Valid() bool {
	return len(s.Errors()) == 0 && len(s.Missing) == 0 && len(s.Unsupported) == 0 && s.LoadError == nil
}

// Parse splits script into rules. Only an oversized script is an error;
// problems inside a rule are reported through Rule.ErrorText.
func (p *Parser) Parse(script string) (*Script, error) {
	start := time.Now()
	defer func() {
		metrics.ParseDuration.Observe(time.Since(start).Seconds())
	}()

	if p.cfg.MaxScriptSize > 0 && len(script) > p.cfg.MaxScriptSize {
		metrics.ScriptsParsed.WithLabelValues("rejected").Inc()
		return nil, fmt.Errorf("%w: %d bytes exceeds the limit of %d", consts.ErrScriptTooLarge, len(script), p.cfg.MaxScriptSize)
	}

	var rules []*sieverule.Rule
	active := &ruleBuilder{conv: &p.conv}
	for _, seg := range splitSegments(script) {
		rules = append(rules, p.buildSegment(seg, active)...)
	}
	rules = append(rules, active.flush()...)

	rs := sieverule.NewRuleSet(rules...)
	rs.Sort()

	used := rs.Required()
	all := rs.Required()
	all.Union(rs.Declared())
	s := &Script{
		Rules:       rs,
		Required:    used.Sorted(),
		Missing:     rs.MissingRequires(),
		Unsupported: Unsupported(all, p.enabled),
	}
	if p.cfg.CheckExecutable {
		s.LoadError = p.Check(script)
	}

	p.record(s)
	return s, nil
}

// Check loads script with the go-sieve interpreter under the enabled
// extensions.
func (p *Parser) Check(script string) error {
	opts := sieve.DefaultOptions()
	opts.EnabledExtensions = p.Extensions()
	if _, err := sieve.Load(strings.NewReader(script), opts); err != nil {
		return fmt.Errorf("%w: %v", consts.ErrScriptNotExecutable, err)
	}
	return nil
}

func (p *Parser) parseSegment(text string) ([]parser.Cmd, error) {
	opts := sieve.DefaultOptions()
	toks, err := lexer.Lex(strings.NewReader(text), &opts.Lexer)
	if err != nil {
		return nil, err
	}
	return parser.Parse(lexer.NewStream(toks), &opts.Parser)
}

// buildSegment converts one segment. Enabled segments share the active
// builder so a require before a marker joins the rule after it. A segment
// that fails becomes a single rule carrying the error.
func (p *Parser) buildSegment(seg *segment, active *ruleBuilder) []*sieverule.Rule {
	if seg.commentErr != nil {
		return []*sieverule.Rule{errorRule(seg, seg.commentErr)}
	}

	b := active
	if seg.commented {
		b = &ruleBuilder{conv: &p.conv}
	}
	saved := b.save()

	cmds, err := p.parseSegment(seg.text())
	if err == nil {
		for _, cmd := range cmds {
			if err = b.add(cmd); err != nil {
				break
			}
		}
	}
	if err != nil {
		b.restore(saved)
		p.recordBindFailure(err)
		return []*sieverule.Rule{errorRule(seg, err)}
	}

	rules := b.take()
	if seg.commented {
		rules = append(rules, b.flush()...)
	}
	if seg.comment != nil {
		if len(rules) == 0 {
			r := sieverule.NewRule()
			r.Lines = sieverule.LineRange{Start: seg.commentLine, End: seg.commentLine}
			rules = append(rules, r)
		}
		rules[0].Comment = seg.comment
		rules[0].Lines.Start = min(rules[0].Lines.Start, seg.commentLine)
	}

	for i, r := range rules {
		if i+1 < len(rules) {
			r.Lines.End = rules[i+1].Lines.Start - 1
		} else {
			r.Lines.End = max(seg.lastLine(), r.Lines.Start)
		}
		r.CommentedOut = seg.commented
	}
	return rules
}

func errorRule(seg *segment, err error) *sieverule.Rule {
	r := sieverule.NewRule()
	r.Comment = seg.comment
	if r.Comment == nil && seg.commentLine > 0 {
		r.Comment = &sieverule.RuleComment{UniqueID: sieverule.UnsetID, Line: seg.commentLine}
	}
	r.Lines = sieverule.LineRange{Start: seg.firstLine(), End: seg.lastLine()}
	r.CommentedOut = seg.commented
	r.ErrorText = err.Error()
	return r
}

func (p *Parser) record(s *Script) {
	errCount := 0
	for _, r := range s.Rules.Rules() {
		switch {
		case r.ErrorText != "":
			errCount++
			metrics.RulesParsed.WithLabelValues("error").Inc()
			logger.Warn("Sieve rule rejected", "line", r.Line(), "rule", r.Name(), "error", r.ErrorText)
		case r.CommentedOut:
			metrics.RulesParsed.WithLabelValues("disabled").Inc()
		default:
			metrics.RulesParsed.WithLabelValues("active").Inc()
		}
	}

	result := "valid"
	if !s.Valid() {
		result = "invalid"
	}
	metrics.ScriptsParsed.WithLabelValues(result).Inc()
	logger.Debug("Sieve script parsed", "rules", s.Rules.Len(), "errors", errCount,
		"missing", s.Missing, "unsupported", s.Unsupported)
}

func (p *Parser) recordBindFailure(err error) {
	metrics.CommandBindFailures.WithLabelValues(failureReason(err)).Inc()
}

var failureReasons = []struct {
	err    error
	reason string
}{
	{consts.ErrComparatorUnsupported, "comparator"},
	{consts.ErrUnknownTag, "unknown_tag"},
	{consts.ErrArgumentCount, "argument_count"},
	{consts.ErrArgumentOrder, "argument_order"},
	{consts.ErrInvalidTagValue, "tag_value"},
	{consts.ErrDuplicateTag, "duplicate_tag"},
	{consts.ErrConflictingTags, "conflicting_tags"},
	{consts.ErrMissingTag, "missing_tag"},
	{consts.ErrTestCount, "test_count"},
	{consts.ErrNestingTooDeep, "nesting"},
	{consts.ErrMissingGuard, "guard"},
	{consts.ErrUnknownCommand, "unknown_command"},
	{consts.ErrUnsupportedStructure, "structure"},
}

// failureReason maps an error to the reason label of the bind failure
// counter. Errors from the go-sieve parser itself are "syntax".
func failureReason(err error) string {
	for _, fr := range failureReasons {
		if errors.Is(err, fr.err) {
			return fr.reason
		}
	}
	return "syntax"
}
