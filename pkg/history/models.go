package history

import (
	"time"

	"gorm.io/datatypes"
)

// CommitRecord 是 core.ContextCommit 在关系型数据库中的投影 (索引)
// 用于快速查询历史 (cv log)，支持按作者、时间搜索
// 注意：权威数据永远在对象库里，这张表丢了可以整体重建
type CommitRecord struct {
	// ID 是主键 (commit 的 uuid)
	ID string `gorm:"primaryKey;type:char(36)"`

	RepoID string `gorm:"index;type:char(36)"`

	// 基础元数据 (B-Tree 索引，适合排序和精确查找)
	Author    string `gorm:"index;type:varchar(100)"`
	Message   string `gorm:"type:text"`
	Timestamp int64  `gorm:"index"` // int64 时间戳，方便范围查询

	// 树结构指针
	TreeID   string `gorm:"type:char(40);not null"`
	ParentID string `gorm:"type:char(36)"`

	// Meta: files_changed/additions 等统计，以及未来的 AI 摘要
	Meta datatypes.JSON

	CreatedAt time.Time
}

// TableName 强制指定表名
func (CommitRecord) TableName() string {
	return "commits"
}
