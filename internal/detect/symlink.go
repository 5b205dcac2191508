package detect

import (
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

// symlinkChain recognizes the symlink-chaining attack shape: one command
// that creates a symlink (ln -s) and, via a chaining operator, reads
// through it. Either half alone is handled by other checks; the chained
// pair is flagged with its own reason because it defeats path-based
// review of the read.
func symlinkChain(command string) (Finding, bool) {
	segments := splitSegments(command)
	if len(segments) < 2 {
		return Finding{}, false
	}

	linkAt := -1
	for i, seg := range segments {
		if len(seg) >= 2 && seg[0] == "ln" && hasFlag(seg[1:], 's') {
			linkAt = i
			break
		}
	}
	if linkAt < 0 {
		return Finding{}, false
	}

	for _, seg := range segments[linkAt+1:] {
		if len(seg) > 0 && readThroughCommands[seg[0]] {
			return Finding{
				Category: "symlink-chain",
				Reason:   "command creates a symlink and reads through it in the same invocation",
			}, true
		}
	}
	return Finding{}, false
}

func hasFlag(args []string, flag byte) bool {
	for _, arg := range args {
		if len(arg) > 1 && arg[0] == '-' && arg[1] != '-' && strings.IndexByte(arg, flag) > 0 {
			return true
		}
	}
	return false
}

// splitSegments parses the command with a bash-dialect shell parser and
// flattens it into per-command argument vectors, in execution order.
// Parse failures fall back to a single whitespace-split segment: the
// detector must never error on adversarial input.
func splitSegments(command string) [][]string {
	parser := syntax.NewParser(syntax.KeepComments(false), syntax.Variant(syntax.LangBash))
	file, err := parser.Parse(strings.NewReader(command), "")
	if err != nil {
		fields := strings.Fields(command)
		if len(fields) == 0 {
			return nil
		}
		return [][]string{fields}
	}

	var segments [][]string
	for _, stmt := range file.Stmts {
		collectSegments(&segments, stmt)
	}
	return segments
}

func collectSegments(segments *[][]string, stmt *syntax.Stmt) {
	if stmt == nil || stmt.Cmd == nil {
		return
	}
	switch cmd := stmt.Cmd.(type) {
	case *syntax.CallExpr:
		var argv []string
		for _, word := range cmd.Args {
			argv = append(argv, wordToString(word))
		}
		if len(argv) > 0 {
			*segments = append(*segments, argv)
		}
	case *syntax.BinaryCmd:
		collectSegments(segments, cmd.X)
		collectSegments(segments, cmd.Y)
	case *syntax.Block:
		for _, inner := range cmd.Stmts {
			collectSegments(segments, inner)
		}
	case *syntax.Subshell:
		for _, inner := range cmd.Stmts {
			collectSegments(segments, inner)
		}
	}
}

func wordToString(word *syntax.Word) string {
	var sb strings.Builder
	for _, part := range word.Parts {
		appendWordPart(&sb, part)
	}
	return sb.String()
}

func appendWordPart(sb *strings.Builder, part syntax.WordPart) {
	switch p := part.(type) {
	case *syntax.Lit:
		sb.WriteString(p.Value)
	case *syntax.SglQuoted:
		sb.WriteString(p.Value)
	case *syntax.DblQuoted:
		for _, inner := range p.Parts {
			appendWordPart(sb, inner)
		}
	}
}
