package commands

import (
	"errors"
	"fmt"
	"time"

	"contextvault/pkg/repository"

	"github.com/spf13/cobra"
)

var pushCmd = &cobra.Command{
	Use:   "push",
	Short: "Upload local commits and objects to the remote",
	Long:  `Push everything the remote has not seen yet: objects first, then commits in parent order. If the repository is not linked yet, it is created on the remote automatically.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if CV == nil {
			return fmt.Errorf("app not initialized")
		}

		start := time.Now()
		res, err := CV.Vault.Push(cmd.Context())
		if errors.Is(err, repository.ErrNotLinked) {
			return fmt.Errorf("no remote configured (set remote.url in config or run 'cv remote link <url>')")
		}
		if err != nil {
			return fmt.Errorf("push failed: %w", err)
		}

		if res.Created {
			fmt.Printf("🔗 Created remote repository %s\n", CV.Repo.RemoteID)
		}
		if res.Commits == 0 && res.Objects == 0 {
			fmt.Println("Everything up-to-date.")
			return nil
		}
		fmt.Printf("✅ Pushed %d commits, %d objects in %s\n", res.Commits, res.Objects, time.Since(start))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pushCmd)
}
