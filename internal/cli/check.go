package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/gzhole/shellgate/internal/approval"
	"github.com/gzhole/shellgate/internal/audit"
	"github.com/gzhole/shellgate/internal/enforcer"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check <command...>",
	Short: "Classify a command against the active policy",
	Long: `Classifies the given command string and prints the verdict.

Exit codes:
  0  SAFE (or NEEDS_APPROVAL approved interactively)
  2  BLOCKED (or NEEDS_APPROVAL denied)`,
	Args: cobra.MinimumNArgs(1),
	RunE: checkCommand,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func newEnforcer() (*enforcer.Enforcer, func(), error) {
	opts := []enforcer.Option{
		enforcer.WithPolicyPath(policyPath),
		enforcer.WithProfile(profileName),
	}

	cleanup := func() {}
	if logPath != "" {
		sink, err := audit.NewFileSink(logPath)
		if err != nil {
			return nil, nil, fmt.Errorf("opening audit log: %w", err)
		}
		opts = append(opts, enforcer.WithSink(sink))
		cleanup = func() { _ = sink.Close() }
	}

	enf, err := enforcer.New(opts...)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return enf, cleanup, nil
}

func checkCommand(cmd *cobra.Command, args []string) error {
	enf, cleanup, err := newEnforcer()
	if err != nil {
		return err
	}
	defer cleanup()

	command := strings.Join(args, " ")
	result := enf.Classify(command)

	switch result.Classification {
	case enforcer.Safe:
		fmt.Printf("SAFE: %s\n", command)
		return nil

	case enforcer.Blocked:
		fmt.Fprintf(os.Stderr, "BLOCKED: %s\n", result.Reason)
		os.Exit(2)
		return nil

	default:
		outcome := approval.Ask(approval.Prompt{
			Command: command,
			Profile: enf.ProfileName(),
		})
		if outcome.Approved {
			fmt.Printf("APPROVED: %s\n", command)
			return nil
		}
		fmt.Fprintf(os.Stderr, "DENIED (%s): %s\n", outcome.UserAction, command)
		os.Exit(2)
		return nil
	}
}
