package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the working tree status",
	Long:  `List staged, modified and untracked files relative to the staging area.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if CV == nil {
			return fmt.Errorf("app not initialized")
		}

		res, err := CV.Vault.Status(cmd.Context())
		if err != nil {
			return fmt.Errorf("status failed: %w", err)
		}

		fmt.Printf("On branch %s\n", res.Branch)

		if len(res.Staged) > 0 {
			fmt.Println("\nChanges to be committed:")
			for _, p := range res.Staged {
				fmt.Printf("  \033[32mstaged:    %s\033[0m\n", p)
			}
		}
		if len(res.Unstaged) > 0 {
			fmt.Println("\nChanges not staged for commit:")
			for _, p := range res.Unstaged {
				fmt.Printf("  \033[31mmodified:  %s\033[0m\n", p)
			}
		}
		if len(res.Untracked) > 0 {
			fmt.Println("\nUntracked files:")
			for _, p := range res.Untracked {
				fmt.Printf("  \033[31m%s\033[0m\n", p)
			}
		}

		if len(res.Staged) == 0 && len(res.Unstaged) == 0 && len(res.Untracked) == 0 {
			fmt.Println("nothing to commit, working tree clean")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
