package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var linkRepoID string

var remoteCmd = &cobra.Command{
	Use:   "remote",
	Short: "Manage the remote link",
}

var remoteLinkCmd = &cobra.Command{
	Use:   "link <remote-url>",
	Short: "Link this repository to a remote server",
	Long:  `Record the remote URL in the repository config. Without --id a new repository is created on the remote and its id is stored.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if CV == nil {
			return fmt.Errorf("app not initialized")
		}

		if err := CV.Vault.Link(cmd.Context(), args[0], linkRepoID); err != nil {
			return fmt.Errorf("link failed: %w", err)
		}

		fmt.Printf("🔗 Linked to %s (repo id: %s)\n", CV.Repo.RemoteURL, CV.Repo.RemoteID)
		return nil
	},
}

var remoteStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the sync state of the current branch",
	RunE: func(cmd *cobra.Command, args []string) error {
		if CV == nil {
			return fmt.Errorf("app not initialized")
		}

		state, err := CV.Vault.SyncState(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to query sync state: %w", err)
		}
		fmt.Printf("Sync state: %s\n", state)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(remoteCmd)
	remoteCmd.AddCommand(remoteLinkCmd)
	remoteCmd.AddCommand(remoteStatusCmd)

	remoteLinkCmd.Flags().StringVar(&linkRepoID, "id", "", "existing remote repository id (created if omitted)")
}
