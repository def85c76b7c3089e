package commands

import (
	"fmt"
	"os"

	"contextvault/pkg/exporter"

	"github.com/spf13/cobra"
)

var catCmd = &cobra.Command{
	Use:   "cat <object-id>",
	Short: "Show an object by id",
	Long:  `Pretty-print a commit or tree, or write raw blob content to stdout. The id is probed against commits, trees and blobs in that order.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if CV == nil {
			return fmt.Errorf("app not initialized")
		}

		exp := exporter.NewExporter(CV.Objects)
		if err := exp.PrintObject(cmd.Context(), args[0], os.Stdout); err != nil {
			return fmt.Errorf("cat failed: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(catCmd)
}
