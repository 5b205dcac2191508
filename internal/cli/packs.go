package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gzhole/shellgate/internal/policy"
	"github.com/spf13/cobra"
)

var packsCmd = &cobra.Command{
	Use:   "packs",
	Short: "List pattern packs discovered under .claude/sandbox_packs",
	RunE:  packsCommand,
}

func init() {
	rootCmd.AddCommand(packsCmd)
}

func packsCommand(cmd *cobra.Command, args []string) error {
	root, err := os.Getwd()
	if err != nil {
		return err
	}

	_, infos, err := policy.MergePacks(filepath.Join(root, policy.PacksDir), policy.DefaultPolicy())
	if err != nil {
		return fmt.Errorf("reading packs: %w", err)
	}

	if len(infos) == 0 {
		fmt.Println("No packs found.")
		return nil
	}

	for _, info := range infos {
		state := "enabled"
		if !info.Enabled {
			state = "disabled"
		}
		fmt.Printf("%-20s %-8s %s\n", info.Name, state, info.Path)
		if info.Description != "" {
			fmt.Printf("%-20s %-8s %s\n", "", "", info.Description)
		}
	}
	return nil
}
