package normalize

import (
	"reflect"
	"testing"
)

func TestEmail(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"user@example.com", "user@example.com"},
		{"  User@Example.Com  ", "user@example.com"},
		{"", ""},
		{"   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := Email(tt.input); got != tt.want {
				t.Errorf("Email(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Ana Lopez", "Ana Lopez"},
		{"  Ana   Lopez ", "Ana Lopez"},
		{"\tAna\nLopez", "Ana Lopez"},
		{"", ""},
		{"UPPER case", "UPPER case"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := Name(tt.input); got != tt.want {
				t.Errorf("Name(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestIDs(t *testing.T) {
	got := IDs([]string{" u1", "u2", "", "u1", "  "})
	if !reflect.DeepEqual(got, []string{"u1", "u2"}) {
		t.Errorf("IDs() = %v", got)
	}
	if got := IDs(nil); got == nil || len(got) != 0 {
		t.Errorf("IDs(nil) = %#v, want empty non-nil", got)
	}
}
