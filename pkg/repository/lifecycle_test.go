package repository

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit(t *testing.T) {
	tmpDir := t.TempDir()

	repo, err := Init(tmpDir, InitOptions{Name: "my-context", Description: "test repo"})
	require.NoError(t, err)
	assert.Equal(t, "my-context", repo.Name)
	assert.Equal(t, DefaultBranch, repo.DefaultBranch)
	assert.NotEmpty(t, repo.ID)

	// 目录骨架：对象命名空间 + sync
	for _, dir := range []string{"objects/blobs", "objects/trees", "objects/commits", "objects/refs", "sync"} {
		info, err := os.Stat(filepath.Join(tmpDir, MetaDir, dir))
		require.NoError(t, err, "missing %s", dir)
		assert.True(t, info.IsDir())
	}

	// HEAD 指向默认分支
	head, err := os.ReadFile(filepath.Join(tmpDir, MetaDir, HeadFile))
	require.NoError(t, err)
	assert.Equal(t, DefaultBranch, string(head))

	assert.True(t, IsRepository(tmpDir))
}

func TestInit_AlreadyExists(t *testing.T) {
	tmpDir := t.TempDir()

	_, err := Init(tmpDir, InitOptions{})
	require.NoError(t, err)

	// 重复 init 必须失败且不破坏现有仓库
	_, err = Init(tmpDir, InitOptions{})
	assert.ErrorIs(t, err, ErrAlreadyExists)
	assert.True(t, IsRepository(tmpDir))
}

func TestInit_DefaultName(t *testing.T) {
	tmpDir := t.TempDir()

	// 不给名字时用目录名
	repo, err := Init(tmpDir, InitOptions{})
	require.NoError(t, err)
	assert.Equal(t, filepath.Base(tmpDir), repo.Name)
}

func TestLoadConfig(t *testing.T) {
	tmpDir := t.TempDir()

	created, err := Init(tmpDir, InitOptions{Name: "cfg-test"})
	require.NoError(t, err)

	loaded, err := LoadConfig(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, created.ID, loaded.ID)
	assert.Equal(t, "cfg-test", loaded.Name)

	// 默认忽略规则随仓库落盘
	assert.Contains(t, loaded.Settings.IgnorePatterns, ".cv")
	assert.Contains(t, loaded.Settings.IgnorePatterns, "node_modules")
}

func TestLoadConfig_NotARepository(t *testing.T) {
	_, err := LoadConfig(t.TempDir())
	assert.ErrorIs(t, err, ErrNotARepository)
}

func TestFindRepository(t *testing.T) {
	tmpDir := t.TempDir()
	_, err := Init(tmpDir, InitOptions{})
	require.NoError(t, err)

	// 从子目录向上找
	sub := filepath.Join(tmpDir, "a", "b")
	require.NoError(t, os.MkdirAll(sub, 0755))

	root, err := FindRepository(sub)
	require.NoError(t, err)
	assert.Equal(t, tmpDir, root)
}

func TestFindRepository_NotFound(t *testing.T) {
	_, err := FindRepository(t.TempDir())
	assert.ErrorIs(t, err, ErrNotARepository)
}

func TestRepository_Linked(t *testing.T) {
	repo := NewRepository("r", "", "")
	assert.False(t, repo.Linked())

	repo.RemoteURL = "http://localhost:8080"
	repo.RemoteID = "abc"
	assert.True(t, repo.Linked())
}
