package treebuilder

import (
	"context"
	"fmt"

	"contextvault/pkg/core"
	"contextvault/pkg/index"
	"contextvault/pkg/objectstore"
	"contextvault/pkg/types"
)

// Builder 负责把暂存区转换为树快照
type Builder struct {
	objects *objectstore.Store
}

func NewBuilder(objects *objectstore.Store) *Builder {
	return &Builder{objects: objects}
}

// Build 从暂存条目构建树并持久化，返回树的内容地址
// 树是扁平的 path -> object_id 映射；条目顺序严格等于暂存顺序，
// 顺序参与 Hash 计算，所以构建是确定性的
func (b *Builder) Build(ctx context.Context, staged []index.Entry) (types.Hash, error) {
	entries := make([]core.TreeEntry, 0, len(staged))
	for _, e := range staged {
		entries = append(entries, core.TreeEntry{
			Mode:     e.Mode,
			Name:     e.Path,
			ObjectID: e.ObjectID,
			Type:     core.TypeFile,
		})
	}

	tree := core.NewTree(entries)
	if _, err := b.objects.SaveTree(ctx, tree); err != nil {
		return "", fmt.Errorf("failed to store tree: %w", err)
	}
	return tree.ID, nil
}
