package helpers

import (
	"strings"
	"unicode/utf8"

	"github.com/emersion/go-imap/v2"
)

// SanitizeUTF8 removes invalid UTF-8 sequences and NULL bytes from a string.
func SanitizeUTF8(s string) string {
	// Quick check: if string is valid UTF-8 and has no NULL bytes, return as-is
	if utf8.ValidString(s) && !strings.ContainsRune(s, '\x00') {
		return s
	}

	buf := make([]rune, 0, len(s))
	for i, r := range s {
		if r == '\x00' {
			continue
		}
		if r == utf8.RuneError {
			_, size := utf8.DecodeRuneInString(s[i:])
			if size == 1 {
				continue // skip invalid byte
			}
		}
		buf = append(buf, r)
	}
	return string(buf)
}

// RejectedFlags returns the flags the mail store drops when a message is
// delivered: empty flags and keywords containing NIL or NULL, which IMAP
// clients misread as the NIL atom.
func RejectedFlags(flags []imap.Flag) []imap.Flag {
	var rejected []imap.Flag
	for _, flag := range flags {
		flagStr := string(flag)
		flagUpper := strings.ToUpper(flagStr)

		if strings.TrimSpace(flagStr) == "" ||
			strings.Contains(flagUpper, "NIL") ||
			strings.Contains(flagUpper, "NULL") {
			rejected = append(rejected, flag)
		}
	}
	return rejected
}
