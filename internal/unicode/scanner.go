// Package unicode detects characters used to smuggle shell syntax past
// string-based command inspection: invisible characters, bidirectional
// overrides, and non-ASCII look-alikes of shell metacharacters and
// whitespace separators.
package unicode

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Threat is one detected smuggling indicator.
type Threat struct {
	Category    string // "zero-width", "bidi-override", "tag-char", "control-char", "lookalike", "invalid-utf8"
	Description string
	Position    int    // byte offset in the input
	Codepoint   string // e.g. "U+FF5C"
}

// ScanResult holds the output of a scan.
type ScanResult struct {
	Clean   bool
	Threats []Threat
}

// Scan inspects a command string for unicode smuggling indicators.
func Scan(input string) ScanResult {
	result := ScanResult{Clean: true}

	i := 0
	for i < len(input) {
		r, size := utf8.DecodeRuneInString(input[i:])

		if r == utf8.RuneError && size == 1 {
			result.add(Threat{
				Category:    "invalid-utf8",
				Description: "invalid UTF-8 byte sequence",
				Position:    i,
				Codepoint:   fmt.Sprintf("0x%02X", input[i]),
			})
			i++
			continue
		}

		if threat, found := classifyRune(r, i); found {
			result.add(threat)
		}
		i += size
	}

	return result
}

func (s *ScanResult) add(t Threat) {
	s.Clean = false
	s.Threats = append(s.Threats, t)
}

func classifyRune(r rune, pos int) (Threat, bool) {
	cp := fmt.Sprintf("U+%04X", r)

	if isZeroWidth(r) {
		return Threat{
			Category:    "zero-width",
			Description: fmt.Sprintf("zero-width character %s can hide content from display", cp),
			Position:    pos,
			Codepoint:   cp,
		}, true
	}

	if isBidiOverride(r) {
		return Threat{
			Category:    "bidi-override",
			Description: fmt.Sprintf("bidirectional override %s can make displayed text differ from executed text", cp),
			Position:    pos,
			Codepoint:   cp,
		}, true
	}

	// Unicode tag characters (U+E0001-U+E007F) smuggle hidden metadata.
	if r >= 0xE0001 && r <= 0xE007F {
		return Threat{
			Category:    "tag-char",
			Description: fmt.Sprintf("unicode tag character %s can smuggle hidden instructions", cp),
			Position:    pos,
			Codepoint:   cp,
		}, true
	}

	if isUnsafeControl(r) {
		return Threat{
			Category:    "control-char",
			Description: fmt.Sprintf("control character %s should not appear in commands", cp),
			Position:    pos,
			Codepoint:   cp,
		}, true
	}

	if ascii, ok := metacharLookalikes[r]; ok {
		return Threat{
			Category:    "lookalike",
			Description: fmt.Sprintf("character %s looks like shell metacharacter %q", cp, ascii),
			Position:    pos,
			Codepoint:   cp,
		}, true
	}

	if isSeparatorLookalike(r) {
		return Threat{
			Category:    "lookalike",
			Description: fmt.Sprintf("non-ASCII whitespace %s can disguise a command separator", cp),
			Position:    pos,
			Codepoint:   cp,
		}, true
	}

	return Threat{}, false
}

func isZeroWidth(r rune) bool {
	switch r {
	case '\u200B', // ZERO WIDTH SPACE
		'\u200C', // ZERO WIDTH NON-JOINER
		'\u200D', // ZERO WIDTH JOINER
		'\uFEFF', // ZERO WIDTH NO-BREAK SPACE (BOM)
		'\u2060', // WORD JOINER
		'\u180E', // MONGOLIAN VOWEL SEPARATOR
		'\u200E', // LEFT-TO-RIGHT MARK
		'\u200F': // RIGHT-TO-LEFT MARK
		return true
	}
	return false
}

func isBidiOverride(r rune) bool {
	switch r {
	case '\u202A', // LEFT-TO-RIGHT EMBEDDING
		'\u202B', // RIGHT-TO-LEFT EMBEDDING
		'\u202C', // POP DIRECTIONAL FORMATTING
		'\u202D', // LEFT-TO-RIGHT OVERRIDE
		'\u202E', // RIGHT-TO-LEFT OVERRIDE
		'\u2066', // LEFT-TO-RIGHT ISOLATE
		'\u2067', // RIGHT-TO-LEFT ISOLATE
		'\u2068', // FIRST STRONG ISOLATE
		'\u2069': // POP DIRECTIONAL ISOLATE
		return true
	}
	return false
}

func isUnsafeControl(r rune) bool {
	if r == '\t' || r == '\n' || r == '\r' {
		return false
	}
	if r <= 0x1F || r == 0x7F {
		return true
	}
	// C1 control characters
	return r >= 0x80 && r <= 0x9F
}

// Non-ASCII characters visually confusable with shell metacharacters.
// Fullwidth forms, small forms, and a few notorious confusables (the
// Greek question mark renders identically to a semicolon).
var metacharLookalikes = map[rune]string{
	'\u037E': ";", // GREEK QUESTION MARK
	'\uFF1B': ";", // FULLWIDTH SEMICOLON
	'\uFE54': ";", // SMALL SEMICOLON
	'\uFF5C': "|", // FULLWIDTH VERTICAL LINE
	'\u2223': "|", // DIVIDES
	'\u01C0': "|", // LATIN LETTER DENTAL CLICK
	'\uFF06': "&", // FULLWIDTH AMPERSAND
	'\uFE60': "&", // SMALL AMPERSAND
	'\uFF1E': ">", // FULLWIDTH GREATER-THAN SIGN
	'\uFE65': ">", // SMALL GREATER-THAN SIGN
	'\u203A': ">", // SINGLE RIGHT-POINTING ANGLE QUOTATION MARK
	'\uFF04': "$", // FULLWIDTH DOLLAR SIGN
	'\uFE69': "$", // SMALL DOLLAR SIGN
	'\uFF40': "`", // FULLWIDTH GRAVE ACCENT
	'\u2035': "`", // REVERSED PRIME
	'\uFF08': "(", // FULLWIDTH LEFT PARENTHESIS
	'\u2044': "/", // FRACTION SLASH
	'\u2215': "/", // DIVISION SLASH
}

// isSeparatorLookalike flags unicode whitespace that a renderer shows as
// an ordinary space; an attacker can hide a second command behind it.
func isSeparatorLookalike(r rune) bool {
	switch r {
	case '\u00A0', // NO-BREAK SPACE
		'\u1680', // OGHAM SPACE MARK
		'\u202F', // NARROW NO-BREAK SPACE
		'\u205F', // MEDIUM MATHEMATICAL SPACE
		'\u3000', // IDEOGRAPHIC SPACE
		'\u2028', // LINE SEPARATOR
		'\u2029': // PARAGRAPH SEPARATOR
		return true
	}
	// EN QUAD through HAIR SPACE
	return r >= '\u2000' && r <= '\u200A'
}

// Describe joins threat descriptions for a human-readable reason string.
func Describe(threats []Threat) string {
	parts := make([]string, 0, len(threats))
	for _, t := range threats {
		parts = append(parts, t.Description)
	}
	return strings.Join(parts, "; ")
}
