// Package detect recognizes adversarial command construction independent
// of any policy-supplied pattern list: shell metacharacter abuse, path
// traversal, symlink chaining, null-byte smuggling, unicode look-alikes,
// and known destructive command signatures. These checks run before the
// policy's own blocked_patterns so a thin or empty policy still blocks
// the most dangerous shapes.
package detect

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/gzhole/shellgate/internal/unicode"
)

// Finding is one fired heuristic. Reason names the offending category or
// literal token so an operator can tell which check fired.
type Finding struct {
	Category string
	Reason   string
}

var (
	// Canonical fork bomb plus the generic self-invoking function shape
	// (a function whose body pipes into itself and backgrounds).
	forkBombCanonical = regexp.MustCompile(`:\(\)\s*\{\s*:\s*\|\s*:\s*&\s*\}\s*;\s*:`)
	forkBombGeneric   = regexp.MustCompile(`(\w+)\(\)\s*\{[^}]*\b` + "`?" + `\w*\s*\|\s*(\w+)[^}]*&[^}]*\}`)

	rmRecursiveForce = regexp.MustCompile(`\brm\s+(-[a-zA-Z]*r[a-zA-Z]*f[a-zA-Z]*|-[a-zA-Z]*f[a-zA-Z]*r[a-zA-Z]*)\b|\brm\s+(-[a-zA-Z]+\s+)*--recursive\b.*--force\b`)
	sudoUse          = regexp.MustCompile(`(^|[\s;&|])sudo\b`)
	chmodWorldAll    = regexp.MustCompile(`\bchmod\s+(-[a-zA-Z]+\s+)*777\b`)
	ddRawDevice      = regexp.MustCompile(`\bdd\b[^;|&]*\b(if|of)=/dev/`)
	rawDeviceWrite   = regexp.MustCompile(`>{1,2}\s*/dev/(sd[a-z]|hd[a-z]|nvme\d+n\d+|disk\d+)`)
	forcePush        = regexp.MustCompile(`\bgit\s+push\b[^;|&]*(\s--force\b|\s-f\b)`)

	readThroughCommands = map[string]bool{
		"cat": true, "less": true, "more": true, "head": true,
		"tail": true, "grep": true, "xxd": true, "od": true,
	}
)

// Scan runs every heuristic against the raw command and returns the first
// finding, in a fixed order chosen so the most specific reason wins (a
// raw-device redirection reports the device, not just the ">" operator).
func Scan(command string) (Finding, bool) {
	if strings.ContainsRune(command, 0) {
		return Finding{
			Category: "null-byte",
			Reason:   "null byte embedded in command",
		}, true
	}

	if scan := unicode.Scan(command); !scan.Clean {
		return Finding{
			Category: "unicode-smuggling",
			Reason:   "unicode smuggling: " + unicode.Describe(scan.Threats),
		}, true
	}

	if forkBombCanonical.MatchString(command) || forkBombGeneric.MatchString(command) {
		return Finding{
			Category: "fork-bomb",
			Reason:   "fork bomb signature detected",
		}, true
	}

	if f, ok := destructiveSignature(command); ok {
		return f, true
	}

	if f, ok := symlinkChain(command); ok {
		return f, true
	}

	if f, ok := metacharacter(command); ok {
		return f, true
	}

	if strings.Contains(command, "..") {
		return Finding{
			Category: "path-traversal",
			Reason:   `path traversal sequence ".." detected`,
		}, true
	}

	return Finding{}, false
}

// destructiveSignature checks commands that are dangerous on their own,
// without any chaining operator.
func destructiveSignature(command string) (Finding, bool) {
	switch {
	case rmRecursiveForce.MatchString(command):
		return Finding{
			Category: "destructive",
			Reason:   `destructive command signature "rm -rf" detected`,
		}, true
	case sudoUse.MatchString(command):
		return Finding{
			Category: "destructive",
			Reason:   `privilege escalation via "sudo" detected`,
		}, true
	case chmodWorldAll.MatchString(command):
		return Finding{
			Category: "destructive",
			Reason:   `permission blast "chmod 777" detected`,
		}, true
	case ddRawDevice.MatchString(command):
		return Finding{
			Category: "destructive",
			Reason:   `"dd" targeting a raw device path detected`,
		}, true
	case rawDeviceWrite.MatchString(command):
		return Finding{
			Category: "destructive",
			Reason:   "write redirection onto a raw block device detected",
		}, true
	case forcePush.MatchString(command):
		return Finding{
			Category: "destructive",
			Reason:   `history rewrite via "git push --force" detected`,
		}, true
	}
	return Finding{}, false
}

// metacharacter flags shell chaining and substitution syntax. Order puts
// the two-character operators before their single-character prefixes so
// the reported token is exact.
func metacharacter(command string) (Finding, bool) {
	for _, token := range []string{"&&", "||", ";", "|", "`", "$(", ">>", ">"} {
		if strings.Contains(command, token) {
			return Finding{
				Category: "shell-metacharacter",
				Reason:   fmt.Sprintf("shell metacharacter %q permits command chaining or substitution", token),
			}, true
		}
	}
	return Finding{}, false
}
