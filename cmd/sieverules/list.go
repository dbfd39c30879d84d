package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/migadu/sievefilter/sieveparse"
	"github.com/migadu/sievefilter/sieverule"
)

type ruleSummary struct {
	ID       int      `json:"id"`
	Name     string   `json:"name"`
	Line     int      `json:"line"`
	Enabled  bool     `json:"enabled"`
	Flags    []string `json:"flags,omitempty"`
	Action   string   `json:"action,omitempty"`
	Test     string   `json:"test,omitempty"`
	Requires []string `json:"requires,omitempty"`
	Error    string   `json:"error,omitempty"`
}

func summarize(r *sieverule.Rule) ruleSummary {
	s := ruleSummary{
		ID:       r.UniqueID(),
		Name:     r.Name(),
		Line:     r.Line(),
		Enabled:  r.Enabled(),
		Flags:    r.Flags(),
		Requires: r.Required().Sorted(),
		Error:    r.ErrorText,
	}
	if kind, ok := r.FirstAction(); ok {
		s.Action = kind.JSONName()
	}
	if t, ok := r.TestCommand(); ok {
		s.Test = t.Descriptor().JSONName()
	}
	return s
}

func runList(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to TOML configuration file")
	asJSON := fs.Bool("json", false, "Print rules as JSON")

	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), `List the rules of a Sieve script

Usage:
  sieverules list [options] <script>

Options:
  --config string  Path to TOML configuration file
  --json           Print rules as JSON

Examples:
  sieverules list user.sieve
  sieverules list --json - < user.sieve
`)
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return fmt.Errorf("exactly one script is required")
	}

	cfg, done, err := setup(*configPath)
	if err != nil {
		return err
	}
	defer done()

	p, err := sieveparse.New(cfg.Sieve)
	if err != nil {
		return err
	}
	text, err := readScript(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", fs.Arg(0), err)
	}
	s, err := p.Parse(text)
	if err != nil {
		return err
	}

	rules := s.Rules.Rules()
	summaries := make([]ruleSummary, 0, len(rules))
	for _, r := range rules {
		summaries = append(summaries, summarize(r))
	}

	if *asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(summaries)
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tLINE\tSTATE\tNAME\tTEST\tACTION\tREQUIRES")
	for _, rs := range summaries {
		state := "enabled"
		switch {
		case rs.Error != "":
			state = "error"
		case !rs.Enabled:
			state = "disabled"
		}
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%s\t%s\t%s\n",
			rs.ID, rs.Line, state, rs.Name, rs.Test, rs.Action, strings.Join(rs.Requires, ","))
	}
	return tw.Flush()
}
