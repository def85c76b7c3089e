package remote

import (
	"context"
	"errors"

	"contextvault/pkg/core"
	"contextvault/pkg/repository"
)

// ErrRemote 是所有远端调用失败的统一哨兵
// 任何一次协作方调用失败都会让当前命令整体失败 (不做内部重试，
// 重试/退避是传输层自己的职责)
var ErrRemote = errors.New("remote operation failed")

// ErrRepoNotFound 远端不认识这个仓库 ID
var ErrRepoNotFound = errors.New("remote repository not found")

// Client 是同步引擎消费的远端协作方接口
// 固定为这七个操作；具体实现是可注入的 HTTP 适配器，
// 测试用内存实现 (MemoryStore) 替换
//
// since 是 Unix 秒时间戳，0 表示不限定时间范围
type Client interface {
	CreateRepository(ctx context.Context, repo *repository.Repository) (*repository.Repository, error)
	GetRepository(ctx context.Context, id string) (*repository.Repository, error)
	PushCommits(ctx context.Context, repoID string, commits []*core.ContextCommit) error
	PushObjects(ctx context.Context, repoID string, objects []*core.ContentObject) error
	FetchCommits(ctx context.Context, repoID string, since int64) ([]*core.ContextCommit, error)
	FetchObjects(ctx context.Context, repoID string, since int64) ([]*core.ContentObject, error)
	FetchBranches(ctx context.Context, repoID string) ([]*core.ContextBranch, error)
}
