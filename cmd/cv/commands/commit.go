package commands

import (
	"errors"
	"fmt"
	"time"

	"contextvault/pkg/repository"
	"contextvault/pkg/types"
	"contextvault/pkg/vault"

	"github.com/spf13/cobra"
)

var commitMsg string

var commitCmd = &cobra.Command{
	Use:   "commit",
	Short: "Record staged changes to the repository",
	Long:  `Create a new commit from the current staging area. If no message is given, a summary is generated from the staged file types.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if CV == nil {
			return fmt.Errorf("application not initialized")
		}

		start := time.Now()
		res, err := CV.Vault.Commit(cmd.Context(), vault.CommitOptions{Message: commitMsg})
		if errors.Is(err, repository.ErrNothingStaged) {
			fmt.Println("nothing to commit, staging area is empty")
			return nil
		}
		if err != nil {
			return fmt.Errorf("commit failed: %w", err)
		}

		c := res.Commit
		fmt.Printf("✅ [%s] %s\n", types.ShortID(c.ID), c.Message)
		fmt.Printf("   Branch: %s | Tree: %s | Files: %d\n", res.Branch, types.ShortID(string(res.TreeID)), c.Metadata.FilesChanged)
		fmt.Printf("   Time: %s | Author: %s\n", time.Since(start), c.Author)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(commitCmd)

	commitCmd.Flags().StringVarP(&commitMsg, "message", "m", "", "commit message")
}
