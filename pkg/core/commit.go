package core

import (
	"time"

	"contextvault/pkg/types"

	"github.com/google/uuid"
)

// CommitMetadata 记录这次提交的统计信息
// Deletions 目前恒为 0：暂存区不追踪删除，这是源行为的已知空白
type CommitMetadata struct {
	FilesChanged    int    `cbor:"fc" json:"files_changed"`
	Additions       int64  `cbor:"add" json:"additions"`
	Deletions       int64  `cbor:"del" json:"deletions"`
	EmbeddingsCount int    `cbor:"ec,omitempty" json:"embeddings_count,omitempty"`
	AISummary       string `cbor:"ai,omitempty" json:"ai_summary,omitempty"`
}

// ContextCommit 将一棵树快照链接到父提交，构成版本历史
// 注意：Commit ID 是随机生成的 (uuid)，不是内容地址——
// 同样的内容重新提交会得到不同的 ID (时间戳/作者本身就有变化)
type ContextCommit struct {
	ID       string         `cbor:"id" json:"id"`
	RepoID   string         `cbor:"rid" json:"repo_id"`
	Message  string         `cbor:"m" json:"message"`
	ParentID string         `cbor:"p,omitempty" json:"parent_id,omitempty"`
	TreeID   types.Hash     `cbor:"th" json:"tree_id"`
	Author   string         `cbor:"a" json:"author"`
	// Unix 时间戳，CBOR 里保持纯整数
	Timestamp int64          `cbor:"ts" json:"timestamp"`
	Metadata  CommitMetadata `cbor:"meta" json:"metadata"`
}

// NewCommit 创建一个提交对象
// parentID 为空表示初始提交 (Initial Commit)
func NewCommit(repoID string, treeID types.Hash, parentID, author, message string, meta CommitMetadata) *ContextCommit {
	return &ContextCommit{
		ID:        uuid.NewString(),
		RepoID:    repoID,
		Message:   message,
		ParentID:  parentID,
		TreeID:    treeID,
		Author:    author,
		Timestamp: time.Now().Unix(),
		Metadata:  meta,
	}
}
