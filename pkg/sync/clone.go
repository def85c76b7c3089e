package sync

import (
	"context"
	"errors"
	"fmt"

	"contextvault/pkg/core"
	"contextvault/pkg/objectstore"
	"contextvault/pkg/refs"
	"contextvault/pkg/remote"
	"contextvault/pkg/repository"
	"contextvault/pkg/storage"
	"contextvault/pkg/storage/disk"
)

// CloneResult 汇报 clone 的结果
type CloneResult struct {
	Repo   *repository.Repository
	Fetch  *FetchResult
	Branch string // clone 后 HEAD 指向的分支
}

// Clone 从远端克隆一个仓库到 targetDir
//  1. 目标已是仓库 -> ErrAlreadyExists
//  2. init 本地仓库 (沿用远端的名字/描述/默认分支)
//  3. 记录远端关联，跑一次完整 Fetch
//  4. HEAD 指向远端汇报的默认分支 (如果有)
func Clone(ctx context.Context, client remote.Client, remoteURL, remoteID, targetDir string) (*CloneResult, error) {
	if repository.IsRepository(targetDir) {
		return nil, fmt.Errorf("%w: %s", repository.ErrAlreadyExists, targetDir)
	}

	// 先问远端要仓库元数据，拿不到就什么都不碰
	remoteRepo, err := client.GetRepository(ctx, remoteID)
	if err != nil {
		return nil, err
	}

	repo, err := repository.Init(targetDir, repository.InitOptions{
		Name:        remoteRepo.Name,
		Description: remoteRepo.Description,
		OwnerID:     remoteRepo.OwnerID,
	})
	if err != nil {
		return nil, err
	}
	repo.DefaultBranch = remoteRepo.DefaultBranch

	kv, err := disk.NewAdapter(repository.ObjectsPath(targetDir))
	if err != nil {
		return nil, err
	}
	objects := objectstore.New(kv)
	refsMgr := refs.NewManager(repository.MetaPath(targetDir), objects)

	engine := NewEngine(targetDir, repo, objects, refsMgr, client)
	if err := engine.Link(ctx, remoteURL, remoteID); err != nil {
		return nil, err
	}

	fetchRes, err := engine.Fetch(ctx, 0)
	if err != nil {
		return nil, err
	}

	// HEAD 指向远端默认分支；远端没有分支时本地建一个空指针
	head := remoteRepo.DefaultBranch
	if head == "" {
		head = repository.DefaultBranch
	}
	if _, err := objects.GetBranch(ctx, head); errors.Is(err, storage.ErrNotFound) {
		if err := objects.SaveBranch(ctx, core.NewBranch(repo.ID, head)); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}
	if err := refsMgr.SetHead(head); err != nil {
		return nil, err
	}

	return &CloneResult{Repo: repo, Fetch: fetchRes, Branch: head}, nil
}
