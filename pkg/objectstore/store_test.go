package objectstore

import (
	"context"
	"testing"

	"contextvault/pkg/core"
	"contextvault/pkg/storage"
	"contextvault/pkg/storage/disk"
	"contextvault/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	kv, err := disk.NewAdapter(t.TempDir())
	require.NoError(t, err)
	return New(kv)
}

func TestStore_ObjectRoundtrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	obj := core.NewContentObject(core.TypeFile, []byte("hello"), core.EncodingUTF8, "text/plain")
	id, err := store.SaveObject(ctx, obj)
	require.NoError(t, err)
	assert.Equal(t, obj.ID, id)

	got, err := store.GetObject(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, obj.Content, got.Content)
	assert.Equal(t, obj.Type, got.Type)

	ok, err := store.HasObject(ctx, id)
	require.NoError(t, err)
	assert.True(t, ok)

	ids, err := store.ListObjects(ctx)
	require.NoError(t, err)
	assert.Contains(t, ids, id)
}

func TestStore_GetObjectNotFound(t *testing.T) {
	store := newTestStore(t)
	_, err := store.GetObject(context.Background(), core.HashBytes([]byte("missing")))
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestStore_TreeRoundtrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	tree := core.NewTree([]core.TreeEntry{
		{Mode: core.ModeFile, Name: "a.txt", ObjectID: core.HashBytes([]byte("a")), Type: core.TypeFile},
	})
	id, err := store.SaveTree(ctx, tree)
	require.NoError(t, err)

	got, err := store.GetTree(ctx, id)
	require.NoError(t, err)
	require.Len(t, got.Entries, 1)
	assert.Equal(t, "a.txt", got.Entries[0].Name)
}

func TestStore_CommitRoundtripAndExpand(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	commit := core.NewCommit("repo-1", core.HashBytes([]byte("tree")), "", "alice", "initial", core.CommitMetadata{})
	id, err := store.SaveCommit(ctx, commit)
	require.NoError(t, err)
	assert.Equal(t, commit.ID, id)

	got, err := store.GetCommit(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Author)

	// 短 ID 展开 (uuid 的前 8 个字符足够唯一)
	full, err := store.ExpandCommitID(ctx, types.IDPrefix(id[:8]))
	require.NoError(t, err)
	assert.Equal(t, id, full)
}

func TestStore_BranchOverwrite(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	branch := core.NewBranch("repo-1", "main")
	require.NoError(t, store.SaveBranch(ctx, branch))

	// 推进指针后重新保存：读回来必须是新值 (缓存不能脏)
	branch.Advance("commit-42")
	require.NoError(t, store.SaveBranch(ctx, branch))

	got, err := store.GetBranch(ctx, "main")
	require.NoError(t, err)
	assert.Equal(t, "commit-42", got.CommitID)

	names, err := store.ListBranches(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"main"}, names)
}
