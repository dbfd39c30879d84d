package sieveparse

import (
	"strings"

	"github.com/migadu/sievefilter/sieverule"
)

// segment is the text between two rule comment markers. The text before the
// first marker is a segment without a comment.
type segment struct {
	comment     *sieverule.RuleComment
	commentErr  error
	commentLine int
	start       int // first body line, 1-based
	lines       []string
	commented   bool
}

func splitSegments(script string) []*segment {
	lines := strings.Split(script, "\n")
	cur := &segment{start: 1}
	segs := []*segment{cur}

	for i, line := range lines {
		line = strings.TrimSuffix(line, "\r")
		if strings.HasPrefix(strings.TrimSpace(line), sieverule.RuleCommentPrefix) {
			c, err := sieverule.ParseRuleComment(line, i+1)
			cur = &segment{comment: c, commentErr: err, commentLine: i + 1, start: i + 2}
			segs = append(segs, cur)
			continue
		}
		cur.lines = append(cur.lines, line)
	}

	if segs[0].blank() {
		segs = segs[1:]
	}
	for _, s := range segs {
		if s.commentLine > 0 {
			s.uncomment()
		}
	}
	return segs
}

func (s *segment) blank() bool {
	for _, l := range s.lines {
		if strings.TrimSpace(l) != "" {
			return false
		}
	}
	return true
}

// uncomment detects a disabled rule: a body whose every non-blank line is a
// '#' comment. The leading '#' is stripped so the rule can still be parsed.
func (s *segment) uncomment() {
	nonBlank := 0
	for _, l := range s.lines {
		t := strings.TrimSpace(l)
		if t == "" {
			continue
		}
		if !strings.HasPrefix(t, "#") {
			return
		}
		nonBlank++
	}
	if nonBlank == 0 {
		return
	}

	s.commented = true
	for i, l := range s.lines {
		t := strings.TrimLeft(l, " \t")
		s.lines[i] = strings.TrimPrefix(t, "#")
	}
}

// text returns the body padded with newlines so positions reported by the
// parser are lines of the whole script.
func (s *segment) text() string {
	return strings.Repeat("\n", s.start-1) + strings.Join(s.lines, "\n")
}

// firstLine is the comment line, or the first body line without a comment.
func (s *segment) firstLine() int {
	if s.commentLine > 0 {
		return s.commentLine
	}
	return s.start
}

// lastLine is the last non-blank line of the segment.
func (s *segment) lastLine() int {
	for i := len(s.lines) - 1; i >= 0; i-- {
		if strings.TrimSpace(s.lines[i]) != "" {
			return s.start + i
		}
	}
	return s.firstLine()
}
