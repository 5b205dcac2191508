package cli

import (
	"github.com/spf13/cobra"
)

var (
	policyPath  string
	profileName string
	logPath     string
)

var rootCmd = &cobra.Command{
	Use:   "shellgate",
	Short: "shellgate - policy gatekeeper for shell commands",
	Long: `shellgate classifies shell commands as SAFE, BLOCKED, or NEEDS_APPROVAL
against a layered JSON policy, and builds the OS-appropriate sandbox
wrapper (bwrap on Linux, sandbox-exec on macOS) for commands permitted
to run. It never executes commands itself.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&policyPath, "policy", "", "Path to policy JSON file (default: cascade under .claude/)")
	rootCmd.PersistentFlags().StringVar(&profileName, "profile", "", "Policy profile to use (default: $SANDBOX_PROFILE or \"development\")")
	rootCmd.PersistentFlags().StringVar(&logPath, "log", "", "Path to JSONL audit log (default: no audit file)")
}

func Execute() error {
	return rootCmd.Execute()
}
