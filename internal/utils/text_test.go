package utils

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestNormalizeField(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain", "Dune", "Dune"},
		{"surrounding spaces", "  Dune  ", "Dune"},
		{"carriage return", "Dune\r", "Dune"},
		{"inner tabs", "Frank\tHerbert", "Frank Herbert"},
		{"collapse spaces", "The   Left  Hand", "The Left Hand"},
		{"empty", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeField(tt.input); got != tt.expected {
				t.Errorf("NormalizeField(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("short", 10); got != "short" {
		t.Errorf("Truncate kept = %q", got)
	}

	long := strings.Repeat("a", 20)
	got := Truncate(long, 10)
	if len(got) != 10 || !strings.HasSuffix(got, "...") {
		t.Errorf("Truncate(long, 10) = %q", got)
	}

	if got := Truncate("abcdef", 2); got != "ab" {
		t.Errorf("Truncate tiny = %q", got)
	}
}

func TestTruncate_MultiByte(t *testing.T) {
	title := "Мастер и Маргарита"
	for maxLen := 0; maxLen <= len(title); maxLen++ {
		got := Truncate(title, maxLen)
		if !utf8.ValidString(got) {
			t.Fatalf("Truncate(%q, %d) = %q is not valid UTF-8", title, maxLen, got)
		}
		if len(got) > maxLen {
			t.Fatalf("Truncate(%q, %d) = %q is longer than the limit", title, maxLen, got)
		}
	}

	if got := Truncate("日本語の本", 8); got != "日..." {
		t.Errorf("Truncate cut inside a rune: %q", got)
	}
}
