package e2e

import (
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"contextvault/pkg/ignore"
	"contextvault/pkg/index"
	"contextvault/pkg/objectstore"
	"contextvault/pkg/refs"
	"contextvault/pkg/remote"
	"contextvault/pkg/repository"
	"contextvault/pkg/storage/disk"
	"contextvault/pkg/sync"
	"contextvault/pkg/types"
	"contextvault/pkg/vault"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openVault 打开 (或初始化后打开) 一个仓库并组装 Vault
func openVault(t *testing.T, root string, client remote.Client) *vault.Vault {
	t.Helper()
	ctx := context.Background()

	if !repository.IsRepository(root) {
		_, err := vault.InitRepository(ctx, root, repository.InitOptions{})
		require.NoError(t, err)
	}
	repo, err := repository.LoadConfig(root)
	require.NoError(t, err)

	kv, err := disk.NewAdapter(repository.ObjectsPath(root))
	require.NoError(t, err)
	objects := objectstore.New(kv)

	idx, err := index.NewIndex(filepath.Join(repository.MetaPath(root), repository.IndexFile))
	require.NoError(t, err)

	matcher, err := ignore.NewMatcher(root, repo.Settings.IgnorePatterns)
	require.NoError(t, err)

	return vault.New(vault.Deps{
		Root:    root,
		Repo:    repo,
		Objects: objects,
		Index:   idx,
		Refs:    refs.NewManager(repository.MetaPath(root), objects),
		Matcher: matcher,
		Remote:  client,
		Author:  "e2e",
	})
}

func write(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

// TestWorkflow 验证完整的协作流：
// A 仓库 init -> add -> commit -> push (HTTP)
// B 仓库 clone -> checkout -> 看到 A 的内容
// A 再提交并 push，B pull 之后追上
func TestWorkflow(t *testing.T) {
	// 真实 HTTP 往返：server 端是 Handler + MemoryStore
	srv := httptest.NewServer(remote.NewHandler(remote.NewMemoryStore()))
	defer srv.Close()
	client := remote.NewHTTPClient(srv.URL)

	ctx := context.Background()

	// -------------------------------------------------------------
	// Phase 1: A 仓库的本地工作流
	// -------------------------------------------------------------
	rootA := t.TempDir()
	vaultA := openVault(t, rootA, client)

	write(t, rootA, "README.md", "# shared project")
	write(t, rootA, "prompts/system.md", "You are a helpful assistant.")
	write(t, rootA, ".env", "SECRET=x") // 默认忽略

	stageRes, err := vaultA.Stage(ctx, []string{"."})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"README.md", "prompts/system.md"}, stageRes.Staged)

	commit1, err := vaultA.Commit(ctx, vault.CommitOptions{Message: "initial import"})
	require.NoError(t, err)

	// push 自动建远端仓库
	pushRes, err := vaultA.Push(ctx)
	require.NoError(t, err)
	assert.True(t, pushRes.Created)
	assert.Equal(t, 1, pushRes.Commits)

	repoA, err := repository.LoadConfig(rootA)
	require.NoError(t, err)
	require.True(t, repoA.Linked())

	// -------------------------------------------------------------
	// Phase 2: B clone 并还原工作区
	// -------------------------------------------------------------
	rootB := filepath.Join(t.TempDir(), "clone")
	cloneRes, err := sync.Clone(ctx, client, srv.URL, repoA.RemoteID, rootB)
	require.NoError(t, err)
	assert.Equal(t, 1, cloneRes.Fetch.Commits)

	vaultB := openVault(t, rootB, client)
	_, err = vaultB.Checkout(ctx, types.IDPrefix(commit1.Commit.ID[:8]))
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(rootB, "prompts", "system.md"))
	require.NoError(t, err)
	assert.Equal(t, "You are a helpful assistant.", string(data))

	// 忽略的文件没有跟着同步过来
	_, err = os.Stat(filepath.Join(rootB, ".env"))
	assert.True(t, os.IsNotExist(err))

	// -------------------------------------------------------------
	// Phase 3: A 再提交，B pull 追上
	// -------------------------------------------------------------
	write(t, rootA, "prompts/system.md", "You are an expert Go engineer.")
	_, err = vaultA.Stage(ctx, []string{"prompts/system.md"})
	require.NoError(t, err)
	commit2, err := vaultA.Commit(ctx, vault.CommitOptions{Message: "sharpen prompt"})
	require.NoError(t, err)

	pushRes, err = vaultA.Push(ctx)
	require.NoError(t, err)
	assert.False(t, pushRes.Created)
	assert.Equal(t, 1, pushRes.Commits)

	pullRes, err := vaultB.Pull(ctx)
	require.NoError(t, err)
	assert.True(t, pullRes.Updated)
	assert.Equal(t, commit2.Commit.ID, pullRes.CommitID)

	// pull 只动引用；工作区通过 checkout 物化
	_, err = vaultB.Checkout(ctx, types.IDPrefix(commit2.Commit.ID[:8]))
	require.NoError(t, err)

	data, err = os.ReadFile(filepath.Join(rootB, "prompts", "system.md"))
	require.NoError(t, err)
	assert.Equal(t, "You are an expert Go engineer.", string(data))

	// 双方一致后，B 再 pull 是 no-op
	pullRes, err = vaultB.Pull(ctx)
	require.NoError(t, err)
	assert.False(t, pullRes.Updated)
}

// TestWorkflow_RepushIsNoop 重复 push 不重复送内容
func TestWorkflow_RepushIsNoop(t *testing.T) {
	srv := httptest.NewServer(remote.NewHandler(remote.NewMemoryStore()))
	defer srv.Close()
	client := remote.NewHTTPClient(srv.URL)
	ctx := context.Background()

	root := t.TempDir()
	v := openVault(t, root, client)

	write(t, root, "a.txt", "content")
	_, err := v.Stage(ctx, []string{"a.txt"})
	require.NoError(t, err)
	_, err = v.Commit(ctx, vault.CommitOptions{Message: "c1"})
	require.NoError(t, err)

	first, err := v.Push(ctx)
	require.NoError(t, err)
	assert.NotZero(t, first.Commits)

	second, err := v.Push(ctx)
	require.NoError(t, err)
	assert.Zero(t, second.Commits)
	assert.Zero(t, second.Objects)
}
