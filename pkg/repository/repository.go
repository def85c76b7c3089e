package repository

import (
	"time"

	"contextvault/pkg/ignore"

	"github.com/google/uuid"
)

// MetaDir 是仓库的保留元数据目录名
// 它的存在与否就是“这里是不是一个仓库”的判据
const MetaDir = ".cv"

const DefaultBranch = "main"

// Settings 是仓库级配置，init 时写入默认值
type Settings struct {
	AutoEmbed      bool     `json:"auto_embed"`
	MaxFileSize    int64    `json:"max_file_size"`
	IgnorePatterns []string `json:"ignore_patterns"`
	AIIntegration  bool     `json:"ai_integration"`
}

// DefaultSettings 返回 init 时的默认配置
func DefaultSettings() Settings {
	patterns := make([]string, len(ignore.DefaultPatterns))
	copy(patterns, ignore.DefaultPatterns)
	return Settings{
		AutoEmbed:      false,
		MaxFileSize:    10 * 1024 * 1024, // 10MB
		IgnorePatterns: patterns,
		AIIntegration:  false,
	}
}

// Repository 是仓库的元数据记录，每个工作目录根只有一份
// 由 init/clone 创建一次；remote link 和配置修改会更新它；从不隐式删除
type Repository struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Description   string   `json:"description,omitempty"`
	OwnerID       string   `json:"owner_id"`
	RemoteURL     string   `json:"remote_url,omitempty"`
	RemoteID      string   `json:"remote_id,omitempty"` // 远端仓库 ID，push 时记录
	DefaultBranch string   `json:"default_branch"`
	CreatedAt     int64    `json:"created_at"`
	UpdatedAt     int64    `json:"updated_at"`
	Settings      Settings `json:"settings"`
}

// NewRepository 构造仓库元数据
func NewRepository(name, description, ownerID string) *Repository {
	now := time.Now().Unix()
	return &Repository{
		ID:            uuid.NewString(),
		Name:          name,
		Description:   description,
		OwnerID:       ownerID,
		DefaultBranch: DefaultBranch,
		CreatedAt:     now,
		UpdatedAt:     now,
		Settings:      DefaultSettings(),
	}
}

// Linked 报告仓库是否已经关联了远端
func (r *Repository) Linked() bool {
	return r.RemoteID != ""
}

// Touch 更新修改时间
func (r *Repository) Touch() {
	r.UpdatedAt = time.Now().Unix()
}
