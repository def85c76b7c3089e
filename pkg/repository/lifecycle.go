package repository

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// 仓库内的固定文件/目录布局
const (
	ConfigFile = "config.json"
	HeadFile   = "HEAD"
	IndexFile  = "index.json"
	ObjectsDir = "objects"
	SyncDir    = "sync"
)

// IsRepository 判断 path 是否是一个仓库根
// 判据：保留元数据目录存在且是目录
func IsRepository(path string) bool {
	info, err := os.Stat(filepath.Join(path, MetaDir))
	return err == nil && info.IsDir()
}

// FindRepository 从 start 向上逐级查找仓库根
// 走到文件系统根还没找到就返回 ErrNotARepository
func FindRepository(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", err
	}

	for {
		if IsRepository(dir) {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			// 到达文件系统根
			return "", ErrNotARepository
		}
		dir = parent
	}
}

// InitOptions 控制 init 行为
type InitOptions struct {
	Name        string
	Description string
	OwnerID     string
}

// Init 在 root 下创建一个全新的仓库
//  1. 已经是仓库 -> ErrAlreadyExists
//  2. 先建完整目录骨架 (对象命名空间 + sync)
//  3. 写 config、默认分支名 HEAD、空 Index
//
// 骨架建在 MetaDir 之下，所以半途失败的残骸会让 IsRepository 提前为 true；
// 恢复方式是删掉 MetaDir 后重跑 init (检测只看元数据目录本身)。
// 成功后仓库立即可查询，提交数为零。
func Init(root string, opts InitOptions) (*Repository, error) {
	if IsRepository(root) {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyExists, root)
	}

	metaPath := filepath.Join(root, MetaDir)

	// 目录骨架：objects 下的命名空间目录 + sync
	skeleton := []string{
		filepath.Join(metaPath, ObjectsDir, "blobs"),
		filepath.Join(metaPath, ObjectsDir, "trees"),
		filepath.Join(metaPath, ObjectsDir, "commits"),
		filepath.Join(metaPath, ObjectsDir, "refs"),
		filepath.Join(metaPath, SyncDir),
	}
	for _, dir := range skeleton {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create repo skeleton: %w", err)
		}
	}

	// 仓库元数据
	name := opts.Name
	if name == "" {
		name = filepath.Base(root)
	}
	repo := NewRepository(name, opts.Description, opts.OwnerID)

	if err := SaveConfig(root, repo); err != nil {
		return nil, err
	}

	// HEAD 指向默认分支 (分支对象本身由调用方通过对象库创建)
	if err := os.WriteFile(filepath.Join(metaPath, HeadFile), []byte(repo.DefaultBranch), 0644); err != nil {
		return nil, fmt.Errorf("failed to write HEAD: %w", err)
	}

	// 空 Index
	if err := os.WriteFile(filepath.Join(metaPath, IndexFile), []byte(`{"entries":null}`), 0644); err != nil {
		return nil, fmt.Errorf("failed to write index: %w", err)
	}

	return repo, nil
}

// LoadConfig 读取仓库元数据
func LoadConfig(root string) (*Repository, error) {
	data, err := os.ReadFile(filepath.Join(root, MetaDir, ConfigFile))
	if os.IsNotExist(err) {
		return nil, ErrNotARepository
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read repo config: %w", err)
	}

	var repo Repository
	if err := json.Unmarshal(data, &repo); err != nil {
		return nil, fmt.Errorf("corrupted repo config: %w", err)
	}
	return &repo, nil
}

// SaveConfig 整体写回仓库元数据
func SaveConfig(root string, repo *Repository) error {
	data, err := json.MarshalIndent(repo, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(root, MetaDir, ConfigFile), data, 0644); err != nil {
		return fmt.Errorf("failed to write repo config: %w", err)
	}
	return nil
}

// ObjectsPath 返回对象库的物理根目录
func ObjectsPath(root string) string {
	return filepath.Join(root, MetaDir, ObjectsDir)
}

// MetaPath 返回元数据目录
func MetaPath(root string) string {
	return filepath.Join(root, MetaDir)
}
