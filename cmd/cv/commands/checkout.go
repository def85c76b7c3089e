package commands

import (
	"fmt"
	"time"

	"contextvault/pkg/types"

	"github.com/spf13/cobra"
)

var checkoutCmd = &cobra.Command{
	Use:   "checkout <commit-id>",
	Short: "Restore working tree files from a commit",
	Long:  `Overwrite the working tree with the content of the given commit and rebuild the staging area to match. Short commit ids are accepted. Uncommitted changes are overwritten without warning.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if CV == nil {
			return fmt.Errorf("app not initialized")
		}

		start := time.Now()
		res, err := CV.Vault.Checkout(cmd.Context(), types.IDPrefix(args[0]))
		if err != nil {
			return fmt.Errorf("checkout failed: %w", err)
		}

		fmt.Printf("✅ Restored %d files from commit %s in %s\n",
			res.Restored, types.ShortID(res.Commit.ID), time.Since(start))
		fmt.Printf("   Author: %s | %s\n", res.Commit.Author, res.Commit.Message)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkoutCmd)
}
