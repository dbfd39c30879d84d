package helpers

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/migadu/sievefilter/consts"
)

var errInvalidMailbox = errors.New("invalid mailbox name")

// ValidateMailboxName checks a fileinto target. Names are hierarchical,
// separated by consts.MailboxDelimiter, and may not contain the IMAP LIST
// wildcards.
func ValidateMailboxName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return fmt.Errorf("%w: empty name", errInvalidMailbox)
	case !utf8.ValidString(name) || strings.ContainsRune(name, '\x00'):
		return fmt.Errorf("%w: %q is not valid UTF-8", errInvalidMailbox, name)
	case strings.ContainsAny(name, "*%"):
		return fmt.Errorf("%w: %q contains a wildcard", errInvalidMailbox, name)
	}

	for i, part := range strings.Split(name, string(consts.MailboxDelimiter)) {
		if part == "" {
			return fmt.Errorf("%w: %q has an empty level at position %d", errInvalidMailbox, name, i)
		}
		if part != strings.TrimSpace(part) {
			return fmt.Errorf("%w: level %q has surrounding spaces", errInvalidMailbox, part)
		}
	}
	return nil
}

// MisspelledDefault returns the default mailbox that name differs from only
// in case. INBOX is case-insensitive and never reported.
func MisspelledDefault(name string) (string, bool) {
	for _, mb := range consts.DefaultMailboxes {
		if mb == "INBOX" || name == mb {
			continue
		}
		if strings.EqualFold(name, mb) {
			return mb, true
		}
	}
	return "", false
}
