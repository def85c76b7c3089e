package commands

import (
	"errors"
	"fmt"
	"os"

	"contextvault/pkg/repository"
	"contextvault/pkg/vault"

	"github.com/spf13/cobra"
)

var (
	initName string
	initDesc string
)

var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Initialize a ContextVault repository",
	Long:  `Create an empty ContextVault repository with a default branch, HEAD and an empty staging area.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root := "."
		if len(args) > 0 {
			root = args[0]
		}
		abs, err := absPath(root)
		if err != nil {
			return err
		}

		repo, err := vault.InitRepository(cmd.Context(), abs, repository.InitOptions{
			Name:        initName,
			Description: initDesc,
		})
		if errors.Is(err, repository.ErrAlreadyExists) {
			fmt.Printf("⚠️  ContextVault repository already exists in %s\n", abs)
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to initialize repository: %w", err)
		}

		fmt.Printf("✅ Initialized empty ContextVault repository %q in %s\n", repo.Name, abs)
		fmt.Printf("   Default branch: %s\n", repo.DefaultBranch)
		return nil
	},
}

func absPath(p string) (string, error) {
	if p == "." {
		return os.Getwd()
	}
	if err := os.MkdirAll(p, 0755); err != nil {
		return "", err
	}
	return p, nil
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().StringVar(&initName, "name", "", "repository name (defaults to directory name)")
	initCmd.Flags().StringVar(&initDesc, "description", "", "repository description")
}
