package disk

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"contextvault/pkg/storage"
)

// Adapter 实现了 storage.Store 接口
type Adapter struct {
	rootPath string // 比如: /project/.cv/objects
}

// NewAdapter 创建一个新的磁盘存储适配器
func NewAdapter(root string) (*Adapter, error) {
	// 确保根目录存在
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create root storage dir: %w", err)
	}
	return &Adapter{rootPath: root}, nil
}

// layout 返回 key 对应的物理路径
// 对象命名空间使用前 2 个字符作为子目录 (Sharding)
// Example: blobs + "aabbcc..." -> root/blobs/aa/bbcc...
// refs 是小而平的键空间 (分支名)，不分片
func (s *Adapter) layout(ns storage.Namespace, key string) string {
	if ns == storage.NSRefs || len(key) < 2 {
		return filepath.Join(s.rootPath, string(ns), key)
	}
	return filepath.Join(s.rootPath, string(ns), key[:2], key[2:])
}

func (s *Adapter) Put(ctx context.Context, ns storage.Namespace, key string, data []byte) error {
	targetPath := s.layout(ns, key)

	// 1. 检查是否存在 (幂等性)
	// refs 例外：分支指针会被覆盖推进，必须真正写入
	if ns != storage.NSRefs {
		if _, err := os.Stat(targetPath); err == nil {
			return nil // 已经存在，直接跳过 (CAS 的好处)
		}
	}

	// 2. 准备目录
	dir := filepath.Dir(targetPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	// 3. 原子写入 (Atomic Write)
	// 先写到临时文件，然后 Rename。
	// 这样保证要么文件不存在，要么文件是完整的。
	tempFile, err := os.CreateTemp(dir, "temp-*")
	if err != nil {
		return err
	}
	// 确保临时文件会被清理（Rename 成功后这个删除无害）
	defer os.Remove(tempFile.Name())

	if _, err := tempFile.Write(data); err != nil {
		tempFile.Close()
		return err
	}
	tempFile.Close() // 必须先关闭才能 Rename

	// 4. 移动到最终位置
	if err := os.Rename(tempFile.Name(), targetPath); err != nil {
		return err
	}

	return nil
}

func (s *Adapter) Get(ctx context.Context, ns storage.Namespace, key string) ([]byte, error) {
	data, err := os.ReadFile(s.layout(ns, key))
	if os.IsNotExist(err) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (s *Adapter) Has(ctx context.Context, ns storage.Namespace, key string) (bool, error) {
	_, err := os.Stat(s.layout(ns, key))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// List 枚举命名空间下的所有 key
// 遍历分片目录并把 "aa/bbcc" 还原为 "aabbcc"
func (s *Adapter) List(ctx context.Context, ns storage.Namespace) ([]string, error) {
	nsRoot := filepath.Join(s.rootPath, string(ns))
	if _, err := os.Stat(nsRoot); os.IsNotExist(err) {
		return nil, nil // 空命名空间不算错误
	}

	var keys []string
	err := filepath.WalkDir(nsRoot, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(nsRoot, path)
		if err != nil {
			return err
		}
		// "aa/bbcc..." -> "aabbcc..."，refs 下本来就是单层文件名
		keys = append(keys, strings.ReplaceAll(filepath.ToSlash(rel), "/", ""))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list namespace %s: %w", ns, err)
	}
	return keys, nil
}

// ExpandKey 利用分片目录结构扩展短 ID
func (s *Adapter) ExpandKey(ctx context.Context, ns storage.Namespace, prefix string) (string, error) {
	if len(prefix) < 4 {
		return "", fmt.Errorf("key prefix too short")
	}

	shardDir := filepath.Join(s.rootPath, string(ns), prefix[:2])
	entries, err := os.ReadDir(shardDir)
	if os.IsNotExist(err) {
		return "", storage.ErrNotFound
	}
	if err != nil {
		return "", err
	}

	rest := prefix[2:]
	var match string
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), rest) {
			if match != "" {
				return "", storage.ErrAmbiguousKey
			}
			match = e.Name()
		}
	}
	if match == "" {
		return "", storage.ErrNotFound
	}
	return prefix[:2] + match, nil
}
