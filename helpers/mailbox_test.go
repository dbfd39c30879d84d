package helpers

import (
	"testing"
)

func TestValidateMailboxName(t *testing.T) {
	valid := []string{"INBOX", "Lists/golang", "Archive/2024/Q1", "Entwürfe"}
	for _, name := range valid {
		if err := ValidateMailboxName(name); err != nil {
			t.Errorf("ValidateMailboxName(%q) returned unexpected error: %v", name, err)
		}
	}

	invalid := []string{"", "  ", "Lists//golang", "/Lists", "Lists/", "Lists/*", "100%", "Bad\xff", " Lists/x"}
	for _, name := range invalid {
		if err := ValidateMailboxName(name); err == nil {
			t.Errorf("ValidateMailboxName(%q) should fail", name)
		}
	}
}

func TestMisspelledDefault(t *testing.T) {
	tests := []struct {
		name     string
		expected string
		found    bool
	}{
		{"junk", "Junk", true},
		{"TRASH", "Trash", true},
		{"Junk", "", false},
		{"inbox", "", false},
		{"Lists", "", false},
	}
	for _, tt := range tests {
		got, found := MisspelledDefault(tt.name)
		if got != tt.expected || found != tt.found {
			t.Errorf("MisspelledDefault(%q) = %q, %v; want %q, %v", tt.name, got, found, tt.expected, tt.found)
		}
	}
}
