package engine

import (
	"strings"
	"testing"
	"unicode"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "plain text", "plain text"},
		{"bold unwrapped", "a **bold** word", "a bold word"},
		{"several spans", "**x** and **y**", "x and y"},
		{"nested markers", "****deep****", "deep"},
		{"newline runs", "a\n\n\nb\n\nc", "a\nb\nc"},
		{"non-ascii dropped", "caf\u00e9 \u2713 ok", "caf  ok"},
		{"emoji between markers", "*\U0001F600*bold**", "bold"},
		{"unclosed marker kept", "a **b", "a **b"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeProperties(t *testing.T) {
	inputs := []string{
		"## **Heading**\n\n\n- **item** \u2022 one\n\n- two",
		"**a** **b**\n\n\n\n**c**",
		"***triple***",
		"\u00e9**\u00e9x\u00e9**\u00e9",
		"\n\n\nleading and trailing\n\n",
		"**1. What is a process?**\n\n\n2. Define deadlock. \u2713",
	}
	for _, in := range inputs {
		got := Normalize(in)
		if strings.Contains(got, "\n\n") {
			t.Errorf("Normalize(%q) = %q has consecutive newlines", in, got)
		}
		for _, r := range got {
			if r > unicode.MaxASCII {
				t.Errorf("Normalize(%q) = %q has non-ASCII rune %q", in, got, r)
				break
			}
		}
		if again := Normalize(got); again != got {
			t.Errorf("Normalize not idempotent on %q: %q then %q", in, got, again)
		}
	}
}

func TestCleanHTML(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"<b>hi</b> there", "hi there"},
		{"it&amp;#39;s", "it's"},
		{"a &lt; b", "a < b"},
		{"  padded  ", "padded"},
	}
	for _, tt := range tests {
		if got := CleanHTML(tt.in); got != tt.want {
			t.Errorf("CleanHTML(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTruncateRunes(t *testing.T) {
	if got := TruncateRunes("héllo wörld", 0, ""); got != "héllo wörld" {
		t.Errorf("limit 0 should disable truncation, got %q", got)
	}
	if got := TruncateRunes("héllo", 2, ""); got != "hé" {
		t.Errorf("TruncateRunes = %q, want %q", got, "hé")
	}
	if got := TruncateRunes("short", 10, "..."); got != "short" {
		t.Errorf("TruncateRunes = %q, want unchanged", got)
	}
}
