package core

import (
	"time"

	"github.com/google/uuid"
)

// ContextBranch 是指向最新提交的可移动指针
// CommitID 为空仅出现在第一次提交之前。
// 推进只有 fast-forward 一种形式：本地提交或 pull 直接覆盖 CommitID
type ContextBranch struct {
	ID        string `cbor:"id" json:"id"`
	RepoID    string `cbor:"rid" json:"repo_id"`
	Name      string `cbor:"n" json:"name"`
	CommitID  string `cbor:"c" json:"commit_id"`
	CreatedAt int64  `cbor:"ca" json:"created_at"`
	UpdatedAt int64  `cbor:"ua" json:"updated_at"`
}

// NewBranch 创建分支，CommitID 为空 (还没有提交)
func NewBranch(repoID, name string) *ContextBranch {
	now := time.Now().Unix()
	return &ContextBranch{
		ID:        uuid.NewString(),
		RepoID:    repoID,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Advance 把分支指针覆盖到新的提交 (fast-forward by fiat)
func (b *ContextBranch) Advance(commitID string) {
	b.CommitID = commitID
	b.UpdatedAt = time.Now().Unix()
}
