package cli

import (
	"fmt"
	"os"

	"github.com/gzhole/shellgate/internal/policy"
	"github.com/spf13/cobra"
)

var lintCmd = &cobra.Command{
	Use:   "lint <policy.json>",
	Short: "Validate a candidate policy document",
	Long: `Checks that a policy file has the required schema before it is
installed: a "profiles" object whose every profile carries
safe_commands, blocked_patterns, and sandbox_enabled.`,
	Args: cobra.ExactArgs(1),
	RunE: lintCommand,
}

func init() {
	rootCmd.AddCommand(lintCmd)
}

func lintCommand(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}

	if !policy.Validate(data) {
		fmt.Fprintf(os.Stderr, "INVALID: %s\n", args[0])
		os.Exit(1)
	}

	fmt.Printf("OK: %s\n", args[0])
	return nil
}
