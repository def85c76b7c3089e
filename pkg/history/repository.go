package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"contextvault/pkg/core"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrCommitNotFound = errors.New("commit not found in history")

// Repository 封装所有对历史投影库的操作
type Repository struct {
	db *DB
}

func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

// IndexCommit 把 core.ContextCommit “投影”到 SQL 数据库中
// 幂等写入：id 已存在时什么都不做
func (r *Repository) IndexCommit(ctx context.Context, c *core.ContextCommit) error {
	metaJSON, err := json.Marshal(c.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal commit metadata: %w", err)
	}

	rec := CommitRecord{
		ID:        c.ID,
		RepoID:    c.RepoID,
		Author:    c.Author,
		Message:   c.Message,
		Timestamp: c.Timestamp,
		TreeID:    string(c.TreeID),
		ParentID:  c.ParentID,
		Meta:      datatypes.JSON(metaJSON),
		CreatedAt: time.Unix(c.Timestamp, 0),
	}

	err = r.db.GetConn().WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoNothing: true,
		}).
		Create(&rec).Error
	if err != nil {
		return fmt.Errorf("failed to index commit: %w", err)
	}
	return nil
}

// GetCommit 按主键查询
func (r *Repository) GetCommit(ctx context.Context, id string) (*CommitRecord, error) {
	var rec CommitRecord
	err := r.db.GetConn().WithContext(ctx).
		Where("id = ?", id).
		First(&rec).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCommitNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// List 按时间倒序列出提交
func (r *Repository) List(ctx context.Context, repoID string, limit int) ([]CommitRecord, error) {
	var recs []CommitRecord
	err := r.db.GetConn().WithContext(ctx).
		Where("repo_id = ?", repoID).
		Order("timestamp DESC").
		Limit(limit).
		Find(&recs).Error
	return recs, err
}

// FindByAuthor 利用 SQL 能力按作者过滤
func (r *Repository) FindByAuthor(ctx context.Context, repoID, author string, limit int) ([]CommitRecord, error) {
	var recs []CommitRecord
	err := r.db.GetConn().WithContext(ctx).
		Where("repo_id = ? AND author = ?", repoID, author).
		Order("timestamp DESC").
		Limit(limit).
		Find(&recs).Error
	return recs, err
}
