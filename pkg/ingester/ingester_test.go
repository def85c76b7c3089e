package ingester

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"contextvault/pkg/core"
	"contextvault/pkg/ignore"
	"contextvault/pkg/index"
	"contextvault/pkg/objectstore"
	"contextvault/pkg/storage/disk"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*Ingester, *index.Index, *objectstore.Store, string) {
	t.Helper()
	root := t.TempDir()

	kv, err := disk.NewAdapter(filepath.Join(root, ".cv", "objects"))
	require.NoError(t, err)
	objects := objectstore.New(kv)

	idx, err := index.NewIndex(filepath.Join(root, ".cv", "index.json"))
	require.NoError(t, err)

	matcher, err := ignore.NewMatcher(root, ignore.DefaultPatterns)
	require.NoError(t, err)

	return NewIngester(objects, idx, matcher, root), idx, objects, root
}

func write(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestStage_SingleFile(t *testing.T) {
	ing, idx, objects, root := setup(t)
	write(t, root, "README.md", "# hello")

	res, err := ing.Stage(context.Background(), []string{"README.md"})
	require.NoError(t, err)
	assert.Equal(t, []string{"README.md"}, res.Staged)
	assert.Empty(t, res.Skipped)
	assert.Equal(t, int64(7), res.TotalSize)

	// 内容进了对象库
	e, ok := idx.Get("README.md")
	require.True(t, ok)
	assert.Equal(t, core.HashBytes([]byte("# hello")), e.ObjectID)

	obj, err := objects.GetObject(context.Background(), e.ObjectID)
	require.NoError(t, err)
	assert.Equal(t, []byte("# hello"), obj.Content)
	assert.Equal(t, core.EncodingUTF8, obj.Encoding)
}

func TestStage_Directory(t *testing.T) {
	ing, idx, _, root := setup(t)
	write(t, root, "src/main.go", "package main")
	write(t, root, "src/util/helper.go", "package util")
	write(t, root, "node_modules/dep.js", "junk") // 默认忽略

	res, err := ing.Stage(context.Background(), []string{"src"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"src/main.go", "src/util/helper.go"}, res.Staged)

	_, ok := idx.Get("node_modules/dep.js")
	assert.False(t, ok)
}

func TestStage_MissingPath(t *testing.T) {
	ing, _, _, _ := setup(t)

	// stat 不到的路径是调用方错误，整批失败
	_, err := ing.Stage(context.Background(), []string{"no-such-file.txt"})
	assert.Error(t, err)
}

func TestStage_Idempotent(t *testing.T) {
	ing, idx, _, root := setup(t)
	write(t, root, "a.txt", "same content")

	_, err := ing.Stage(context.Background(), []string{"a.txt"})
	require.NoError(t, err)
	e1, _ := idx.Get("a.txt")

	// 未变化的文件重复 stage：同样的对象 ID，条目不翻倍
	_, err = ing.Stage(context.Background(), []string{"a.txt"})
	require.NoError(t, err)
	e2, _ := idx.Get("a.txt")

	assert.Equal(t, e1.ObjectID, e2.ObjectID)
	assert.Len(t, idx.Snapshot(), 1)
}

func TestStage_BinaryContent(t *testing.T) {
	ing, idx, objects, root := setup(t)

	raw := []byte{0xff, 0xfe, 0x00, 0x01}
	path := filepath.Join(root, "blob.bin")
	require.NoError(t, os.WriteFile(path, raw, 0644))

	_, err := ing.Stage(context.Background(), []string{"blob.bin"})
	require.NoError(t, err)

	e, ok := idx.Get("blob.bin")
	require.True(t, ok)
	obj, err := objects.GetObject(context.Background(), e.ObjectID)
	require.NoError(t, err)
	assert.Equal(t, core.EncodingBinary, obj.Encoding)
}
