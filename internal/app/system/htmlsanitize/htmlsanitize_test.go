package htmlsanitize_test

import (
	"testing"

	"github.com/dalemusser/hidapi/internal/app/system/htmlsanitize"
)

func TestStrip(t *testing.T) {
	tests := []struct {
		name, in, want string
	}{
		{"empty", "", ""},
		{"plain", "Ana Lopez", "Ana Lopez"},
		{"tags", "<b>Ana</b> <i>Lopez</i>", "Ana Lopez"},
		{"script", "Ana<script>alert(1)</script>", "Ana"},
		{"entities", "Tom &amp; Jerry", "Tom & Jerry"},
		{"accents", "Médecins Sans Frontières", "Médecins Sans Frontières"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := htmlsanitize.Strip(tt.in); got != tt.want {
				t.Errorf("Strip(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
