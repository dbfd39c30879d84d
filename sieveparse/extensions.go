package sieveparse

import (
	"fmt"
	"strings"

	"github.com/migadu/sievefilter/sieverule"
)

// GoSieveSupportedExtensions lists the extensions the pinned go-sieve
// interpreter accepts in require (interp/load.go supportedRequires). Core
// commands (require, if/elsif/else, stop, redirect, keep, discard) are always
// available. Rules may still use capabilities outside this list, such as
// subaddress or editheader; those are reported as unsupported.
var GoSieveSupportedExtensions = []string{
	"fileinto",
	"envelope",
	"encoded-character",

	"comparator-i;octet",
	"comparator-i;ascii-casemap",
	"comparator-i;ascii-numeric",
	"comparator-i;unicode-casemap",

	"imap4flags", // RFC 5232
	"variables",  // RFC 5229
	"relational", // RFC 5231
	"vacation",   // RFC 5230
	"copy",       // RFC 3894
	"regex",
}

// CommonlyUsedExtensions is the default supported_extensions list.
var CommonlyUsedExtensions = []string{
	"fileinto",
	"vacation",
	"envelope",
	"imap4flags",
	"variables",
	"relational",
	"copy",
	"regex",
}

// ValidateExtensions checks that every configured extension can be loaded
// by go-sieve.
func ValidateExtensions(extensions []string) error {
	if len(extensions) == 0 {
		return nil
	}

	supported := sieverule.NewCapabilitySet(GoSieveSupportedExtensions...)
	var invalid []string
	for _, ext := range extensions {
		if !supported.Has(ext) {
			invalid = append(invalid, ext)
		}
	}

	if len(invalid) > 0 {
		return fmt.Errorf("invalid SIEVE extensions: %s (go-sieve supports: %s)",
			strings.Join(invalid, ", "),
			strings.Join(GoSieveSupportedExtensions, ", "))
	}
	return nil
}

// EnabledExtensions returns the configured extensions, or every extension
// go-sieve supports when none are configured. The result is a copy.
func EnabledExtensions(configured []string) []string {
	src := configured
	if len(src) == 0 {
		src = GoSieveSupportedExtensions
	}
	out := make([]string, len(src))
	copy(out, src)
	return out
}

// Unsupported returns the required capabilities that are not enabled,
// sorted.
func Unsupported(required sieverule.CapabilitySet, enabled []string) []string {
	return required.Difference(sieverule.NewCapabilitySet(enabled...))
}
