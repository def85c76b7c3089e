package commands

import (
	"errors"
	"fmt"
	"time"

	"contextvault/pkg/repository"
	"contextvault/pkg/types"

	"github.com/spf13/cobra"
)

var pullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Fetch from the remote and update the current branch",
	Long:  `Run a fetch, then compare the current branch against the remote value. If they differ the local branch pointer is moved to the remote commit. The working tree is not modified; use 'cv checkout' to materialize it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if CV == nil {
			return fmt.Errorf("app not initialized")
		}

		start := time.Now()
		res, err := CV.Vault.Pull(cmd.Context())
		if errors.Is(err, repository.ErrNotLinked) {
			return fmt.Errorf("no remote configured (set remote.url in config or run 'cv remote link <url>')")
		}
		if err != nil {
			return fmt.Errorf("pull failed: %w", err)
		}

		if !res.Updated {
			fmt.Printf("Already up to date (branch %s).\n", res.Branch)
			return nil
		}
		fmt.Printf("✅ Branch %s moved to %s in %s\n", res.Branch, types.ShortID(res.CommitID), time.Since(start))
		fmt.Println("   Run 'cv checkout " + types.ShortID(res.CommitID) + "' to update the working tree.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pullCmd)
}
