package sync

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackingSet_Roundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pushed_commits.json")

	// 文件不存在 -> 空集合，不报错
	set, err := loadTrackingSet(path)
	require.NoError(t, err)
	assert.False(t, set.Has("a"))

	set.Add("a", "b")
	require.NoError(t, set.Save())

	// 重新加载
	set2, err := loadTrackingSet(path)
	require.NoError(t, err)
	assert.True(t, set2.Has("a"))
	assert.True(t, set2.Has("b"))
	assert.False(t, set2.Has("c"))
}

func TestTrackingSet_Corrupted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pushed_commits.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	// 损坏的记账文件必须显式报错，不能静默清零 (否则会整仓重推)
	_, err := loadTrackingSet(path)
	assert.Error(t, err)
}

func TestLastFetch(t *testing.T) {
	dir := t.TempDir()

	// 没有标记 -> 0 (全量 fetch)
	assert.Zero(t, readLastFetch(dir))

	now := time.Now()
	require.NoError(t, writeLastFetch(dir, now))
	assert.Equal(t, now.Unix(), readLastFetch(dir))

	// 写坏的标记按 0 处理
	require.NoError(t, os.WriteFile(filepath.Join(dir, "last_fetch"), []byte("garbage"), 0644))
	assert.Zero(t, readLastFetch(dir))
}
