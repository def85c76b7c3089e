package refs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"contextvault/pkg/core"
	"contextvault/pkg/objectstore"
	"contextvault/pkg/repository"
	"contextvault/pkg/storage"
)

var ErrNoHead = errors.New("HEAD not found")

// Manager 负责管理 HEAD 指针 (当前分支名) 和分支解析
// 分支对象本身存在对象库的 refs 命名空间里，HEAD 只是一个指向分支名的文件
type Manager struct {
	metaPath string // .cv 目录
	objects  *objectstore.Store
}

func NewManager(metaPath string, objects *objectstore.Store) *Manager {
	return &Manager{metaPath: metaPath, objects: objects}
}

// headPath 返回 .cv/HEAD 的物理路径
func (m *Manager) headPath() string {
	return filepath.Join(m.metaPath, repository.HeadFile)
}

// Head 读取当前分支名
func (m *Manager) Head() (string, error) {
	data, err := os.ReadFile(m.headPath())
	if os.IsNotExist(err) {
		return "", ErrNoHead
	}
	if err != nil {
		return "", fmt.Errorf("failed to read HEAD: %w", err)
	}

	// 清理换行符 (手工编辑时可能会带 \n)
	return strings.TrimSpace(string(data)), nil
}

// SetHead 把 HEAD 指向一个分支名
func (m *Manager) SetHead(branchName string) error {
	return os.WriteFile(m.headPath(), []byte(branchName), 0644)
}

// CurrentBranch 解析 HEAD 指向的分支对象
func (m *Manager) CurrentBranch(ctx context.Context) (*core.ContextBranch, error) {
	name, err := m.Head()
	if err != nil {
		return nil, err
	}
	branch, err := m.objects.GetBranch(ctx, name)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("HEAD points to missing branch %q: %w", name, err)
	}
	return branch, err
}

// Advance 快进当前分支到新的提交并持久化
func (m *Manager) Advance(ctx context.Context, commitID string) error {
	branch, err := m.CurrentBranch(ctx)
	if err != nil {
		return err
	}
	branch.Advance(commitID)
	return m.objects.SaveBranch(ctx, branch)
}
