package main

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/migadu/sievefilter/logger"
	"github.com/migadu/sievefilter/sieveparse"
)

func runCheck(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to TOML configuration file")
	strict := fs.Bool("strict", false, "Treat lint warnings as errors")

	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), `Validate Sieve scripts

Usage:
  sieverules check [options] <script>...

Options:
  --config string  Path to TOML configuration file
  --strict         Treat lint warnings as errors

A script of "-" is read from standard input. The exit status is 2 when
any script is invalid.

Examples:
  sieverules check user.sieve
  sieverules check --strict --config sieverules.toml a.sieve b.sieve
`)
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return fmt.Errorf("at least one script is required")
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
	ttl, _ := cfg.Cache.GetTTL()
	cache := sieveparse.NewScriptCache(p, cfg.Cache.MaxEntries, ttl)

	failed := 0
	for _, path := range fs.Args() {
		text, err := readScript(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		s, err := cache.GetOrParse(text)
		if err != nil {
			fmt.Fprintf(out, "%s: %v\n", path, err)
			failed++
			continue
		}
		if !report(out, path, s, *strict) {
			failed++
		}
	}

	logger.Info("Checked sieve scripts", "scripts", fs.NArg(), "failed", failed)
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d scripts failed", errInvalidScript, failed, fs.NArg())
	}
	return nil
}

// report prints the problems of one script and reports whether it passed.
func report(out io.Writer, path string, s *sieveparse.Script, strict bool) bool {
	ok := s.Valid()
	for _, r := range s.Errors() {
		fmt.Fprintf(out, "%s:%d: rule %q: %s\n", path, r.Line(), r.Name(), r.ErrorText)
	}
	if len(s.Missing) > 0 {
		fmt.Fprintf(out, "%s: missing require: %s\n", path, strings.Join(s.Missing, ", "))
	}
	if len(s.Unsupported) > 0 {
		fmt.Fprintf(out, "%s: extensions not enabled: %s\n", path, strings.Join(s.Unsupported, ", "))
	}
	if s.LoadError != nil {
		fmt.Fprintf(out, "%s: %v\n", path, s.LoadError)
	}

	warnings := sieveparse.Lint(s.Rules)
	for _, w := range warnings {
		fmt.Fprintf(out, "%s:%s (warning)\n", path, w)
	}
	if strict && len(warnings) > 0 {
		ok = false
	}

	if ok {
		fmt.Fprintf(out, "%s: OK (%d rules)\n", path, s.Rules.Len())
	}
	return ok
}
