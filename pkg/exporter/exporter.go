package exporter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"contextvault/pkg/core"
	"contextvault/pkg/objectstore"
	"contextvault/pkg/types"
)

// Exporter 负责把对象库里的快照还原到工作区
type Exporter struct {
	objects *objectstore.Store
}

func NewExporter(objects *objectstore.Store) *Exporter {
	return &Exporter{objects: objects}
}

// RestoreCallback 每还原一个文件回调一次 (上层用来重建 Index)
type RestoreCallback func(path string, id types.Hash, size int64)

// RestoreTree 把树快照写到 targetDir
// 树是扁平的 path -> object 映射，路径里的目录按需创建
func (e *Exporter) RestoreTree(ctx context.Context, treeID types.Hash, targetDir string, onRestore RestoreCallback) error {
	tree, err := e.objects.GetTree(ctx, treeID)
	if err != nil {
		return fmt.Errorf("failed to get tree %s: %w", treeID, err)
	}

	for _, entry := range tree.Entries {
		obj, err := e.objects.GetObject(ctx, entry.ObjectID)
		if err != nil {
			return fmt.Errorf("failed to get object %s for %s: %w", entry.ObjectID, entry.Name, err)
		}

		fullPath := filepath.Join(targetDir, filepath.FromSlash(entry.Name))
		if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
			return fmt.Errorf("failed to create dir for %s: %w", entry.Name, err)
		}
		if err := os.WriteFile(fullPath, obj.Content, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", entry.Name, err)
		}

		if onRestore != nil {
			onRestore(entry.Name, obj.ID, obj.Size)
		}
	}

	return nil
}

// RestoreCommit 还原指定提交的整棵树
func (e *Exporter) RestoreCommit(ctx context.Context, commitID, targetDir string, onRestore RestoreCallback) (*core.ContextCommit, error) {
	commit, err := e.objects.GetCommit(ctx, commitID)
	if err != nil {
		return nil, fmt.Errorf("failed to get commit %s: %w", commitID, err)
	}
	if err := e.RestoreTree(ctx, commit.TreeID, targetDir, onRestore); err != nil {
		return nil, err
	}
	return commit, nil
}
