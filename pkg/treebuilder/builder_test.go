package treebuilder

import (
	"context"
	"testing"
	"time"

	"contextvault/pkg/core"
	"contextvault/pkg/index"
	"contextvault/pkg/objectstore"
	"contextvault/pkg/storage/disk"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newObjects(t *testing.T) *objectstore.Store {
	t.Helper()
	kv, err := disk.NewAdapter(t.TempDir())
	require.NoError(t, err)
	return objectstore.New(kv)
}

func entry(path string, content string) index.Entry {
	return index.Entry{
		Path:         path,
		ObjectID:     core.HashBytes([]byte(content)),
		Mode:         core.ModeFile,
		Size:         int64(len(content)),
		ModifiedTime: time.Now(),
		Staged:       true,
	}
}

func TestBuild(t *testing.T) {
	objects := newObjects(t)
	ctx := context.Background()

	staged := []index.Entry{
		entry("README.md", "readme"),
		entry("notes/design.md", "design"),
	}

	builder := NewBuilder(objects)
	treeID, err := builder.Build(ctx, staged)
	require.NoError(t, err)

	// 树被持久化，条目是平铺的完整路径，保持暂存顺序
	tree, err := objects.GetTree(ctx, treeID)
	require.NoError(t, err)
	require.Len(t, tree.Entries, 2)
	assert.Equal(t, "README.md", tree.Entries[0].Name)
	assert.Equal(t, "notes/design.md", tree.Entries[1].Name)
	assert.Equal(t, staged[0].ObjectID, tree.Entries[0].ObjectID)
}

func TestBuild_Deterministic(t *testing.T) {
	objects := newObjects(t)
	ctx := context.Background()

	staged := []index.Entry{entry("a.txt", "a"), entry("b.txt", "b")}
	builder := NewBuilder(objects)

	// 同样的条目同样的顺序 -> 同一棵树
	id1, err := builder.Build(ctx, staged)
	require.NoError(t, err)
	id2, err := builder.Build(ctx, staged)
	require.NoError(t, err)
	assert.Equal(t, id1, id2)

	// 顺序不同 -> 不同的树
	id3, err := builder.Build(ctx, []index.Entry{staged[1], staged[0]})
	require.NoError(t, err)
	assert.NotEqual(t, id1, id3)
}

func TestBuild_Empty(t *testing.T) {
	objects := newObjects(t)

	// 空条目也能建树 (调用方负责在提交前拦截空暂存区)
	treeID, err := NewBuilder(objects).Build(context.Background(), nil)
	require.NoError(t, err)
	assert.True(t, treeID.IsValid())
}
