package disk

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"contextvault/pkg/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdapter_PutGet(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewAdapter(tmpDir)
	require.NoError(t, err)

	ctx := context.Background()
	key := "aabbccddeeff00112233445566778899aabbccdd"

	require.NoError(t, store.Put(ctx, storage.NSBlobs, key, []byte("data")))

	// 分片布局：前 2 字符做子目录
	_, err = os.Stat(filepath.Join(tmpDir, "blobs", "aa", key[2:]))
	assert.NoError(t, err)

	data, err := store.Get(ctx, storage.NSBlobs, key)
	require.NoError(t, err)
	assert.Equal(t, []byte("data"), data)

	ok, err := store.Has(ctx, storage.NSBlobs, key)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestAdapter_GetNotFound(t *testing.T) {
	store, err := NewAdapter(t.TempDir())
	require.NoError(t, err)

	_, err = store.Get(context.Background(), storage.NSBlobs, "deadbeefdeadbeefdeadbeefdeadbeefdeadbeef")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestAdapter_PutIdempotent(t *testing.T) {
	store, err := NewAdapter(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()
	key := "aabbccddeeff00112233445566778899aabbccdd"

	require.NoError(t, store.Put(ctx, storage.NSBlobs, key, []byte("v1")))
	// CAS：重复写同一个 key 是 no-op，内容不变
	require.NoError(t, store.Put(ctx, storage.NSBlobs, key, []byte("v2")))

	data, err := store.Get(ctx, storage.NSBlobs, key)
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), data)
}

func TestAdapter_RefsOverwrite(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewAdapter(tmpDir)
	require.NoError(t, err)
	ctx := context.Background()

	// refs 是可变指针：必须允许覆盖，且不做分片
	require.NoError(t, store.Put(ctx, storage.NSRefs, "main", []byte("commit-1")))
	require.NoError(t, store.Put(ctx, storage.NSRefs, "main", []byte("commit-2")))

	_, err = os.Stat(filepath.Join(tmpDir, "refs", "main"))
	assert.NoError(t, err)

	data, err := store.Get(ctx, storage.NSRefs, "main")
	require.NoError(t, err)
	assert.Equal(t, []byte("commit-2"), data)
}

func TestAdapter_List(t *testing.T) {
	store, err := NewAdapter(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	keys := []string{
		"aabbccddeeff00112233445566778899aabbccdd",
		"aa11223344556677889900112233445566778899",
		"ffeeddccbbaa00112233445566778899aabbccdd",
	}
	for _, k := range keys {
		require.NoError(t, store.Put(ctx, storage.NSCommits, k, []byte("x")))
	}

	listed, err := store.List(ctx, storage.NSCommits)
	require.NoError(t, err)
	assert.ElementsMatch(t, keys, listed)

	// 空命名空间不算错误
	empty, err := store.List(ctx, storage.NSTrees)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestAdapter_ExpandKey(t *testing.T) {
	store, err := NewAdapter(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	// 两个 key 共享前 6 字符，第 7 字符开始分叉
	k1 := "aabbccdd00112233445566778899aabbccddeeff"
	k2 := "aabbccff00112233445566778899aabbccddeeff"
	require.NoError(t, store.Put(ctx, storage.NSCommits, k1, []byte("x")))
	require.NoError(t, store.Put(ctx, storage.NSCommits, k2, []byte("y")))

	// 唯一前缀 -> 展开成功
	got, err := store.ExpandKey(ctx, storage.NSCommits, "aabbccdd")
	require.NoError(t, err)
	assert.Equal(t, k1, got)

	// 歧义前缀
	_, err = store.ExpandKey(ctx, storage.NSCommits, "aabbcc")
	assert.ErrorIs(t, err, storage.ErrAmbiguousKey)

	// 过短的前缀直接拒绝
	_, err = store.ExpandKey(ctx, storage.NSCommits, "aa")
	assert.Error(t, err)

	// 无匹配
	_, err = store.ExpandKey(ctx, storage.NSCommits, "dead")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
