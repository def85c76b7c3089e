package storage

import (
	"context"
	"errors"
)

var (
	// ErrNotFound 表示对象/引用不存在
	// 这是一个“预期中的缺席”，调用方应当用 errors.Is 分支，而不是当作致命错误
	ErrNotFound = errors.New("object not found")

	// ErrAmbiguousKey 短 ID 前缀匹配到了多个对象
	ErrAmbiguousKey = errors.New("ambiguous key prefix")
)

// Namespace 划分存储键空间
// blobs/trees/commits 的 ID 并不保证跨命名空间唯一，所以必须物理隔离
type Namespace string

const (
	NSBlobs   Namespace = "blobs"
	NSTrees   Namespace = "trees"
	NSCommits Namespace = "commits"
	NSRefs    Namespace = "refs"
)

// Store defines the interface for a storage backend.
// Implementations can be local disk, cloud storage, or in-memory storage.
type Store interface {
	// Put 持久化一条记录 (整体覆盖写)
	// 同一个 key 写入相同字节是安全的 no-op (内容寻址的幂等性)
	Put(ctx context.Context, ns Namespace, key string, data []byte) error

	// Get 根据 key 读取原始数据
	// 不存在时返回 ErrNotFound，而不是异常式的失败
	Get(ctx context.Context, ns Namespace, key string) ([]byte, error)

	// Has 检查记录是否存在 (用于去重逻辑)
	Has(ctx context.Context, ns Namespace, key string) (bool, error)

	// List 枚举命名空间下的所有 key
	List(ctx context.Context, ns Namespace) ([]string, error)

	// ExpandKey 利用前缀把短 ID 扩展为完整 key
	// 0 个匹配返回 ErrNotFound，多个匹配返回 ErrAmbiguousKey
	ExpandKey(ctx context.Context, ns Namespace, prefix string) (string, error)
}
