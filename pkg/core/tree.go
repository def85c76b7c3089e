package core

import "contextvault/pkg/types"

// 文件条目统一使用 Git 风格的 mode 字符串
const (
	ModeFile = "100644"
	ModeDir  = "040000"
)

// TreeEntry 是树中的一条记录 (path -> 内容对象)
type TreeEntry struct {
	Mode     string     `cbor:"m" json:"mode"`
	Name     string     `cbor:"n" json:"name"`
	ObjectID types.Hash `cbor:"h" json:"object_id"`
	Type     ObjectType `cbor:"t" json:"type"`
}

// ContextTree 是某次提交时的路径快照
// ID 由 entries 的规范化序列化 (mode name object_id，按提供顺序) 决定。
// 树是不可变的：构建新树永远不会修改已有的树
type ContextTree struct {
	ID      types.Hash  `cbor:"id" json:"id"`
	Entries []TreeEntry `cbor:"e" json:"entries"`
}

// NewTree 创建一个新的树对象
// 条目顺序即调用方提供的顺序，参与 Hash 计算
func NewTree(entries []TreeEntry) *ContextTree {
	return &ContextTree{
		ID:      HashTreeEntries(entries),
		Entries: entries,
	}
}
