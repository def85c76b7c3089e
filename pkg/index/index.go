// pkg/index/index.go
package index

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"contextvault/pkg/types"
)

// Entry 代表暂存区中的一条记录
// Staged 为 true 表示该路径会进入下一次提交；
// 提交后所有条目保持存在但 Staged 置回 false (路径仍被跟踪)
type Entry struct {
	Path         string     `json:"path"`          // 相对路径 (如 "notes/design.md")
	ObjectID     types.Hash `json:"object_id"`     // 内容对象的 Hash
	Mode         string     `json:"mode"`          // 文件 mode (如 "100644")
	Size         int64      `json:"size"`          // 文件大小
	ModifiedTime time.Time  `json:"modified_time"` // 修改时间
	Staged       bool       `json:"staged"`        // 是否进入下一次提交
}

// Index 管理暂存区状态
// 内部用有序切片保存条目：条目顺序决定树条目的顺序
type Index struct {
	path    string  // 物理文件路径 (.cv/index.json)
	Entries []Entry `json:"entries"`
	mu      sync.RWMutex
}

// NewIndex 加载或创建一个新的 Index
func NewIndex(indexPath string) (*Index, error) {
	idx := &Index{path: indexPath}

	// 尝试加载现有文件
	if _, err := os.Stat(indexPath); err == nil {
		data, err := os.ReadFile(indexPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read index: %w", err)
		}
		if err := json.Unmarshal(data, idx); err != nil {
			return nil, fmt.Errorf("corrupted index file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	return idx, nil
}

// Add 更新或插入一条记录 (按 Path 匹配)
// 幂等：同一个未变化的文件重复 Add 得到同样的条目
func (i *Index) Add(path string, objectID types.Hash, mode string, size int64, modTime time.Time) {
	key := CleanPath(path)
	i.mu.Lock()
	defer i.mu.Unlock()

	entry := Entry{
		Path:         key,
		ObjectID:     objectID,
		Mode:         mode,
		Size:         size,
		ModifiedTime: modTime,
		Staged:       true,
	}

	for n, e := range i.Entries {
		if e.Path == key {
			i.Entries[n] = entry
			return
		}
	}
	i.Entries = append(i.Entries, entry)
}

// Save 将暂存区持久化到磁盘 (整体替换写)
func (i *Index) Save() error {
	i.mu.RLock()
	defer i.mu.RUnlock()

	// 格式化输出 (Indented)，方便人眼排查
	data, err := json.MarshalIndent(i, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(i.path, data, 0644)
}

// Snapshot 返回当前条目的副本，用于并发安全的读取
func (i *Index) Snapshot() []Entry {
	i.mu.RLock()
	defer i.mu.RUnlock()

	snap := make([]Entry, len(i.Entries))
	copy(snap, i.Entries)
	return snap
}

// Staged 返回所有待提交的条目 (保持顺序)
func (i *Index) Staged() []Entry {
	i.mu.RLock()
	defer i.mu.RUnlock()

	var staged []Entry
	for _, e := range i.Entries {
		if e.Staged {
			staged = append(staged, e)
		}
	}
	return staged
}

// HasStaged 检查是否有待提交内容
func (i *Index) HasStaged() bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	for _, e := range i.Entries {
		if e.Staged {
			return true
		}
	}
	return false
}

// ClearStaged 提交后调用：所有条目 Staged 置 false，路径保持被跟踪
func (i *Index) ClearStaged() {
	i.mu.Lock()
	defer i.mu.Unlock()
	for n := range i.Entries {
		i.Entries[n].Staged = false
	}
}

// Get 按路径查找条目
func (i *Index) Get(path string) (Entry, bool) {
	key := CleanPath(path)
	i.mu.RLock()
	defer i.mu.RUnlock()
	for _, e := range i.Entries {
		if e.Path == key {
			return e, true
		}
	}
	return Entry{}, false
}

// Remove 删除一条记录 (幂等)
func (i *Index) Remove(path string) {
	key := CleanPath(path)
	i.mu.Lock()
	defer i.mu.Unlock()
	for n, e := range i.Entries {
		if e.Path == key {
			i.Entries = append(i.Entries[:n], i.Entries[n+1:]...)
			return
		}
	}
}

// Reset 清空暂存区 (checkout 重建时使用)
func (i *Index) Reset() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.Entries = nil
}

// IsEmpty 检查暂存区是否有内容
func (i *Index) IsEmpty() bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.Entries) == 0
}

// CleanPath 统一清洗路径分隔符
func CleanPath(p string) string {
	return filepath.ToSlash(filepath.Clean(p))
}
