package commands

import (
	"errors"
	"fmt"
	"time"

	"contextvault/pkg/core"
	"contextvault/pkg/refs"
	"contextvault/pkg/types"

	"github.com/spf13/cobra"
)

var (
	logAuthor string
	logLimit  int
)

var logCmd = &cobra.Command{
	Use:   "log [commit-id]",
	Short: "Show commit logs",
	Long:  `Display the commit history starting from the specified commit (or the current branch head if not specified). Short commit ids are accepted.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if CV == nil {
			return fmt.Errorf("app not initialized")
		}
		ctx := cmd.Context()

		// --author 走历史投影库 (gorm)，而不是遍历对象链
		if logAuthor != "" {
			return logByAuthor(cmd, logAuthor)
		}

		var currentID string

		// 1. 确定起始点
		if len(args) > 0 {
			// 用户指定了 id (支持短 id)
			full, err := CV.Objects.ExpandCommitID(ctx, types.IDPrefix(args[0]))
			if err != nil {
				return fmt.Errorf("invalid commit argument '%s': %w", args[0], err)
			}
			currentID = full
		} else {
			branch, err := CV.Refs.CurrentBranch(ctx)
			if errors.Is(err, refs.ErrNoHead) {
				fmt.Println("No commits yet.")
				return nil
			}
			if err != nil {
				return fmt.Errorf("failed to read HEAD: %w", err)
			}
			if branch.CommitID == "" {
				fmt.Println("No commits yet.")
				return nil
			}
			currentID = branch.CommitID
		}

		// 2. 沿 parent 链回溯 (线性历史)
		printed := 0
		for currentID != "" {
			commit, err := CV.Objects.GetCommit(ctx, currentID)
			if err != nil {
				return fmt.Errorf("failed to retrieve commit %s: %w", currentID, err)
			}

			printCommitLog(commit)
			printed++
			if logLimit > 0 && printed >= logLimit {
				break
			}

			currentID = commit.ParentID
		}

		return nil
	},
}

// logByAuthor 从历史投影库按作者过滤
func logByAuthor(cmd *cobra.Command, author string) error {
	if CV.History == nil {
		return fmt.Errorf("history database unavailable")
	}
	limit := logLimit
	if limit <= 0 {
		limit = 50
	}
	records, err := CV.History.FindByAuthor(cmd.Context(), CV.Repo.ID, author, limit)
	if err != nil {
		return fmt.Errorf("history query failed: %w", err)
	}
	for i := range records {
		rec := &records[i]
		fmt.Printf("\033[33mcommit %s\033[0m\n", rec.ID)
		fmt.Printf("Author: %s\n", rec.Author)
		fmt.Printf("Date:   %s\n", time.Unix(rec.Timestamp, 0).Format(time.RFC1123))
		fmt.Printf("\n    %s\n\n", rec.Message)
	}
	return nil
}

// printCommitLog 格式化输出 (仿 Git)
func printCommitLog(c *core.ContextCommit) {
	const (
		colorYellow = "\033[33m"
		colorReset  = "\033[0m"
	)

	fmt.Printf("%scommit %s%s\n", colorYellow, c.ID, colorReset)
	fmt.Printf("Author: %s\n", c.Author)
	fmt.Printf("Date:   %s\n", time.Unix(c.Timestamp, 0).Format(time.RFC1123))
	fmt.Printf("\n    %s\n", c.Message)
	fmt.Printf("    (%d files, +%d bytes)\n\n", c.Metadata.FilesChanged, c.Metadata.Additions)
}

func init() {
	rootCmd.AddCommand(logCmd)

	logCmd.Flags().StringVar(&logAuthor, "author", "", "filter commits by author (uses the local history database)")
	logCmd.Flags().IntVarP(&logLimit, "limit", "n", 0, "limit the number of commits shown")
}
