package exporter

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"contextvault/pkg/core"
	"contextvault/pkg/objectstore"
	"contextvault/pkg/storage/disk"
	"contextvault/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newObjects(t *testing.T) *objectstore.Store {
	t.Helper()
	kv, err := disk.NewAdapter(t.TempDir())
	require.NoError(t, err)
	return objectstore.New(kv)
}

// saveSnapshot 存一个 blob + 树，返回树 ID
func saveSnapshot(t *testing.T, objects *objectstore.Store, files map[string]string) types.Hash {
	t.Helper()
	ctx := context.Background()

	var entries []core.TreeEntry
	for path, content := range files {
		obj := core.NewContentObject(core.TypeFile, []byte(content), core.EncodingUTF8, "")
		_, err := objects.SaveObject(ctx, obj)
		require.NoError(t, err)
		entries = append(entries, core.TreeEntry{
			Mode: core.ModeFile, Name: path, ObjectID: obj.ID, Type: core.TypeFile,
		})
	}

	tree := core.NewTree(entries)
	_, err := objects.SaveTree(ctx, tree)
	require.NoError(t, err)
	return tree.ID
}

func TestRestoreTree(t *testing.T) {
	objects := newObjects(t)
	treeID := saveSnapshot(t, objects, map[string]string{
		"README.md":       "readme",
		"notes/design.md": "design",
	})

	target := t.TempDir()
	var restored []string
	exp := NewExporter(objects)
	err := exp.RestoreTree(context.Background(), treeID, target, func(path string, id types.Hash, size int64) {
		restored = append(restored, path)
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"README.md", "notes/design.md"}, restored)

	// 嵌套目录按需创建，内容字节精确还原
	data, err := os.ReadFile(filepath.Join(target, "notes", "design.md"))
	require.NoError(t, err)
	assert.Equal(t, "design", string(data))
}

func TestRestoreCommit(t *testing.T) {
	objects := newObjects(t)
	ctx := context.Background()

	treeID := saveSnapshot(t, objects, map[string]string{"a.txt": "content"})
	commit := core.NewCommit("repo-1", treeID, "", "alice", "snap", core.CommitMetadata{})
	_, err := objects.SaveCommit(ctx, commit)
	require.NoError(t, err)

	target := t.TempDir()
	got, err := NewExporter(objects).RestoreCommit(ctx, commit.ID, target, nil)
	require.NoError(t, err)
	assert.Equal(t, commit.ID, got.ID)

	data, err := os.ReadFile(filepath.Join(target, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "content", string(data))
}

func TestRestoreCommit_Missing(t *testing.T) {
	objects := newObjects(t)
	_, err := NewExporter(objects).RestoreCommit(context.Background(), "no-such-commit", t.TempDir(), nil)
	assert.Error(t, err)
}

func TestPrintObject(t *testing.T) {
	objects := newObjects(t)
	ctx := context.Background()
	exp := NewExporter(objects)

	obj := core.NewContentObject(core.TypeFile, []byte("hello world"), core.EncodingUTF8, "text/plain")
	_, err := objects.SaveObject(ctx, obj)
	require.NoError(t, err)

	tree := core.NewTree([]core.TreeEntry{
		{Mode: core.ModeFile, Name: "hello.txt", ObjectID: obj.ID, Type: core.TypeFile},
	})
	_, err = objects.SaveTree(ctx, tree)
	require.NoError(t, err)

	commit := core.NewCommit("r", tree.ID, "", "alice", "hello", core.CommitMetadata{FilesChanged: 1})
	_, err = objects.SaveCommit(ctx, commit)
	require.NoError(t, err)

	// commit
	var buf bytes.Buffer
	require.NoError(t, exp.PrintObject(ctx, commit.ID, &buf))
	assert.Contains(t, buf.String(), "Type:    Commit")
	assert.Contains(t, buf.String(), "alice")

	// tree
	buf.Reset()
	require.NoError(t, exp.PrintObject(ctx, string(tree.ID), &buf))
	assert.Contains(t, buf.String(), "hello.txt")

	// blob (UTF-8 内容直接输出)
	buf.Reset()
	require.NoError(t, exp.PrintObject(ctx, string(obj.ID), &buf))
	assert.Contains(t, buf.String(), "hello world")

	// 不存在的 id
	assert.Error(t, exp.PrintObject(ctx, "ffffffffffffffffffffffffffffffffffffffff", &buf))
}
