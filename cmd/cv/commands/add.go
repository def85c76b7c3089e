package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var addCmd = &cobra.Command{
	Use:   "add [path...]",
	Short: "Add file contents to the staging area",
	Long:  `Read the given files (or directories, recursively) into the object store and record them in the staging area. Ignored paths are skipped.`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if CV == nil {
			return fmt.Errorf("app not initialized")
		}

		start := time.Now()
		res, err := CV.Vault.Stage(cmd.Context(), args)
		if err != nil {
			return fmt.Errorf("add failed: %w", err)
		}

		for _, path := range res.Staged {
			fmt.Printf("  staged: %s\n", path)
		}
		for path, reason := range res.Skipped {
			fmt.Printf("⚠️  skipped %s: %s\n", path, reason)
		}

		if len(res.Staged) > 0 {
			fmt.Printf("✅ Added %d files (%d bytes) in %s\n", len(res.Staged), res.TotalSize, time.Since(start))
		} else {
			fmt.Println("⚠️  No files added.")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(addCmd)
}
