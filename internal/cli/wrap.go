package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/gzhole/shellgate/internal/enforcer"
	"github.com/gzhole/shellgate/internal/sandbox"
	"github.com/spf13/cobra"
)

var (
	wrapReadOnly  []string
	wrapReadWrite []string
	wrapNetwork   bool
)

var wrapCmd = &cobra.Command{
	Use:   "wrap <command...>",
	Short: "Build the sandbox argument vector for a command",
	Long: `Classifies the command; if it is not BLOCKED, prints the argument
vector (one token per line) for running it under the host's sandbox
mechanism with the given boundaries. On hosts without bwrap or
sandbox-exec the command is printed shell-word split, unmodified.`,
	Args: cobra.MinimumNArgs(1),
	RunE: wrapCommand,
}

func init() {
	wrapCmd.Flags().StringArrayVar(&wrapReadOnly, "ro", nil, "Read-only bind path (repeatable)")
	wrapCmd.Flags().StringArrayVar(&wrapReadWrite, "rw", nil, "Read-write bind path (repeatable)")
	wrapCmd.Flags().BoolVar(&wrapNetwork, "network", false, "Permit network access")
	rootCmd.AddCommand(wrapCmd)
}

func wrapCommand(cmd *cobra.Command, args []string) error {
	enf, cleanup, err := newEnforcer()
	if err != nil {
		return err
	}
	defer cleanup()

	command := strings.Join(args, " ")
	result := enf.Classify(command)
	if result.Classification == enforcer.Blocked {
		fmt.Fprintf(os.Stderr, "BLOCKED: %s\n", result.Reason)
		os.Exit(2)
	}

	argv, err := enf.Wrap(command, sandbox.Boundaries{
		ReadOnly:  wrapReadOnly,
		ReadWrite: wrapReadWrite,
		Network:   wrapNetwork,
	})
	if err != nil {
		return err
	}

	for _, token := range argv {
		fmt.Println(token)
	}
	return nil
}
