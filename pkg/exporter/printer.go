package exporter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"contextvault/pkg/core"
	"contextvault/pkg/storage"
	"contextvault/pkg/types"
)

// PrintObject 探测 id 属于哪个命名空间并格式化输出
// 查找顺序: commit -> tree -> blob (三个命名空间的 id 互不保证唯一，
// 按最常被 cat 的类型优先)
func (e *Exporter) PrintObject(ctx context.Context, id string, w io.Writer) error {
	if commit, err := e.objects.GetCommit(ctx, id); err == nil {
		printCommit(commit, w)
		return nil
	} else if !errors.Is(err, storage.ErrNotFound) {
		return err
	}

	if tree, err := e.objects.GetTree(ctx, types.Hash(id)); err == nil {
		printTree(tree, w)
		return nil
	} else if !errors.Is(err, storage.ErrNotFound) {
		return err
	}

	obj, err := e.objects.GetObject(ctx, types.Hash(id))
	if err != nil {
		return err
	}
	printBlob(obj, w)
	return nil
}

func printCommit(c *core.ContextCommit, w io.Writer) {
	fmt.Fprintf(w, "Type:    Commit\n")
	fmt.Fprintf(w, "Tree:    %s\n", c.TreeID)
	if c.ParentID != "" {
		fmt.Fprintf(w, "Parent:  %s\n", c.ParentID)
	}
	fmt.Fprintf(w, "Author:  %s\n", c.Author)
	fmt.Fprintf(w, "Time:    %s\n", time.Unix(c.Timestamp, 0).Format(time.RFC3339))
	fmt.Fprintf(w, "Files:   %d (+%d bytes)\n", c.Metadata.FilesChanged, c.Metadata.Additions)
	fmt.Fprintf(w, "\n%s\n", c.Message)
}

func printTree(t *core.ContextTree, w io.Writer) {
	fmt.Fprintf(w, "Type: Tree\n\n")

	// 使用 tabwriter 对齐输出 (像 git ls-tree)
	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	for _, entry := range t.Entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", entry.Mode, entry.ObjectID[:8], entry.Type, entry.Name)
	}
	tw.Flush()
}

func printBlob(obj *core.ContentObject, w io.Writer) {
	fmt.Fprintf(w, "Type:     %s\n", obj.Type)
	fmt.Fprintf(w, "Encoding: %s\n", obj.Encoding)
	fmt.Fprintf(w, "Size:     %d bytes\n", obj.Size)
	if obj.MimeType != "" {
		fmt.Fprintf(w, "Mime:     %s\n", obj.MimeType)
	}
	if len(obj.Embedding) > 0 {
		fmt.Fprintf(w, "Vector:   %d dims\n", len(obj.Embedding))
		return
	}
	if obj.Encoding == core.EncodingUTF8 {
		fmt.Fprintf(w, "\n%s\n", obj.Content)
		return
	}
	// 二进制内容不直接往终端倒
	fmt.Fprintf(w, "(binary content not shown)\n")
}
