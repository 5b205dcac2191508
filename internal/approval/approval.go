// Package approval prompts a human to approve or deny a command that
// classified as NEEDS_APPROVAL. Non-interactive sessions always deny.
package approval

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"
)

type Result struct {
	Approved   bool
	UserAction string
}

type Prompt struct {
	Command string
	Reason  string
	Profile string
}

func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

func Ask(p Prompt) Result {
	if !IsInteractive() {
		return Result{Approved: false, UserAction: "auto_deny_non_interactive"}
	}

	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "=== APPROVAL REQUIRED ===")
	fmt.Fprintf(os.Stderr, "Command: %s\n", p.Command)
	fmt.Fprintf(os.Stderr, "Profile: %s\n", p.Profile)
	if p.Reason != "" {
		fmt.Fprintf(os.Stderr, "Reason:  %s\n", p.Reason)
	}
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "  [a] Approve once - permit this command")
	fmt.Fprintln(os.Stderr, "  [d] Deny - refuse this command")
	fmt.Fprintln(os.Stderr, "")

	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Fprint(os.Stderr, "Your choice [a/d]: ")
		input, err := reader.ReadString('\n')
		if err != nil {
			return Result{Approved: false, UserAction: "error_reading_input"}
		}

		switch strings.TrimSpace(strings.ToLower(input)) {
		case "a", "approve", "yes", "y":
			return Result{Approved: true, UserAction: "approve_once"}
		case "d", "deny", "no", "n":
			return Result{Approved: false, UserAction: "deny"}
		default:
			fmt.Fprintln(os.Stderr, "Invalid input. Enter 'a' to approve or 'd' to deny.")
		}
	}
}
