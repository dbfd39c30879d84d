package helpers

import (
	"strings"
	"testing"

	"github.com/emersion/go-imap/v2"
)

func TestRejectedFlags(t *testing.T) {
	tests := []struct {
		name     string
		input    []imap.Flag
		expected []imap.Flag
	}{
		{"Valid flags only", []imap.Flag{"$Valid", "$Important", "\\Seen"}, nil},
		{"NIL keyword", []imap.Flag{"$Valid", "nil", "$NIL"}, []imap.Flag{"nil", "$NIL"}},
		{"NULL keyword", []imap.Flag{"$null", "$Another"}, []imap.Flag{"$null"}},
		{"Blank flags", []imap.Flag{"", "   ", "$Ok"}, []imap.Flag{"", "   "}},
		{"Nil input", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := RejectedFlags(tt.input)
			if len(result) != len(tt.expected) {
				t.Fatalf("Expected %v, got %v", tt.expected, result)
			}
			for i := range result {
				if result[i] != tt.expected[i] {
					t.Errorf("Index %d: expected %q, got %q", i, tt.expected[i], result[i])
				}
			}
		})
	}
}

func TestSanitizeUTF8(t *testing.T) {
	tests := map[string]string{
		"Hello, World!":          "Hello, World!",
		"Grüße":                  "Grüße",
		"":                       "",
		"\x00Hello\x00":          "Hello",
		"Hello\xFFWorld":         "HelloWorld",
		"Hello\x00\xFFWorld\x00": "HelloWorld",
	}

	for input, expected := range tests {
		result := SanitizeUTF8(input)
		if result != expected {
			t.Errorf("SanitizeUTF8(%q): expected %q, got %q", input, expected, result)
		}
		if strings.ContainsRune(result, '\x00') {
			t.Errorf("Result still contains NULL bytes: %q", result)
		}
	}
}
