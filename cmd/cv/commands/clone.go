package commands

import (
	"fmt"
	"path/filepath"
	"time"

	"contextvault/pkg/remote"
	"contextvault/pkg/sync"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cloneCmd = &cobra.Command{
	Use:   "clone <remote-url> <repo-id> [dir]",
	Short: "Clone a repository from a remote server",
	Long:  `Create a local repository linked to the given remote repository, fetch its full history and point HEAD at the remote default branch.`,
	Args:  cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		remoteURL := args[0]
		remoteID := args[1]

		targetDir := remoteID
		if len(args) > 2 {
			targetDir = args[2]
		}
		targetDir, err := filepath.Abs(targetDir)
		if err != nil {
			return err
		}

		client := remote.NewHTTPClient(remoteURL, remote.WithToken(viper.GetString("remote.token")))

		start := time.Now()
		fmt.Printf("🔄 Cloning %s from %s...\n", remoteID, remoteURL)

		res, err := sync.Clone(cmd.Context(), client, remoteURL, remoteID, targetDir)
		if err != nil {
			return fmt.Errorf("clone failed: %w", err)
		}

		fmt.Printf("✅ Cloned %q into %s in %s\n", res.Repo.Name, targetDir, time.Since(start))
		fmt.Printf("   %d commits, %d objects, %d trees | HEAD -> %s\n",
			res.Fetch.Commits, res.Fetch.Objects, res.Fetch.Trees, res.Branch)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cloneCmd)
}
