package main

import (
	"flag"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/migadu/sievefilter/sieveparse"
	"github.com/migadu/sievefilter/sieverule"
)

func runCapabilities(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("capabilities", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to TOML configuration file")
	all := fs.Bool("all", false, "List every capability known to the rule model")

	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), `Show Sieve capabilities

Usage:
  sieverules capabilities [options]

Options:
  --config string  Path to TOML configuration file
  --all            List every capability known to the rule model, with the
                   go-sieve support and enabled state of each
`)
	}
	if err := fs.Parse(args); err != nil {
		return err
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
	enabled := sieverule.NewCapabilitySet(p.Extensions()...)

	if !*all {
		for _, ext := range enabled.Sorted() {
			fmt.Fprintln(out, ext)
		}
		return nil
	}

	supported := sieverule.NewCapabilitySet(sieveparse.GoSieveSupportedExtensions...)
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CAPABILITY\tGO-SIEVE\tENABLED")
	for _, c := range sieverule.KnownCapabilities() {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", c, yesNo(supported.Has(c)), yesNo(enabled.Has(c)))
	}
	return tw.Flush()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
