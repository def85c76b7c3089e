package sync

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"contextvault/pkg/core"
	"contextvault/pkg/objectstore"
	"contextvault/pkg/refs"
	"contextvault/pkg/remote"
	"contextvault/pkg/repository"
	"contextvault/pkg/storage"

	"golang.org/x/sync/errgroup"
)

// State 是仓库相对远端的同步状态
type State string

const (
	StateUnlinked State = "unlinked" // 未配置远端
	StateLinked   State = "linked"   // 已关联，未比较
	StateSynced   State = "synced"   // 当前分支与远端一致
	StateDiverged State = "diverged" // 当前分支与远端不一致
)

// Engine 实现 push/fetch/pull/clone 同步协议
// 远端调用失败直接作为整条命令的致命错误，不做内部重试；
// 多步操作 (先 objects 后 commits) 失败后重跑 push 即可恢复，
// 因为增量计算天然跳过已记账的 id
type Engine struct {
	root    string
	repo    *repository.Repository
	objects *objectstore.Store
	refs    *refs.Manager
	client  remote.Client
}

func NewEngine(root string, repo *repository.Repository, objects *objectstore.Store, refsMgr *refs.Manager, client remote.Client) *Engine {
	return &Engine{
		root:    root,
		repo:    repo,
		objects: objects,
		refs:    refsMgr,
		client:  client,
	}
}

func (e *Engine) syncDir() string {
	return filepath.Join(repository.MetaPath(e.root), repository.SyncDir)
}

// Link 记录远端仓库，完成 Unlinked -> Linked 迁移
// remoteID 为空时在远端新建仓库
func (e *Engine) Link(ctx context.Context, remoteURL, remoteID string) error {
	if remoteID == "" {
		created, err := e.client.CreateRepository(ctx, e.repo)
		if err != nil {
			return err
		}
		remoteID = created.ID
	}

	e.repo.RemoteURL = remoteURL
	e.repo.RemoteID = remoteID
	e.repo.Touch()
	return repository.SaveConfig(e.root, e.repo)
}

// -----------------------------------------------------------------------------
// Fetch
// -----------------------------------------------------------------------------

// FetchResult 汇报一次 fetch 拉回了什么
type FetchResult struct {
	Commits  int
	Objects  int
	Trees    int
	Branches int
}

// Fetch 从远端拉取 commits/objects/branches
// 三路请求并发发出，各自返回后立刻本地持久化；
// last-fetch 时间戳只在三路全部成功后才推进。
// 分支引用被远端汇报的值整体覆盖 (不与本地同名分支合并)
func (e *Engine) Fetch(ctx context.Context, since int64) (*FetchResult, error) {
	if !e.repo.Linked() {
		return nil, repository.ErrNotLinked
	}
	if since == 0 {
		since = readLastFetch(e.syncDir())
	}

	startedAt := time.Now()
	res := &FetchResult{}

	// 拉回来的 id 也进记账集合：远端已经有它们了，之后的 push 不用再送
	pushedCommits, pushedObjects, err := e.loadTracking()
	if err != nil {
		return nil, err
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		commits, err := e.client.FetchCommits(gctx, e.repo.RemoteID, since)
		if err != nil {
			return err
		}
		for _, c := range commits {
			// 重复保存已有 id 是 no-op
			if _, err := e.objects.SaveCommit(gctx, c); err != nil {
				return err
			}
			pushedCommits.Add(c.ID)
		}
		res.Commits = len(commits)
		return nil
	})

	g.Go(func() error {
		objects, err := e.client.FetchObjects(gctx, e.repo.RemoteID, since)
		if err != nil {
			return err
		}
		for _, o := range objects {
			if err := e.persistFetched(gctx, o, res); err != nil {
				return err
			}
			pushedObjects.Add(string(o.ID))
		}
		return nil
	})

	g.Go(func() error {
		branches, err := e.client.FetchBranches(gctx, e.repo.RemoteID)
		if err != nil {
			return err
		}
		for _, b := range branches {
			// 整体覆盖本地同名分支
			if err := e.objects.SaveBranch(gctx, b); err != nil {
				return err
			}
		}
		res.Branches = len(branches)
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := pushedCommits.Save(); err != nil {
		return nil, err
	}
	if err := pushedObjects.Save(); err != nil {
		return nil, err
	}
	if err := writeLastFetch(e.syncDir(), startedAt); err != nil {
		return nil, fmt.Errorf("failed to update last-fetch marker: %w", err)
	}
	return res, nil
}

// persistFetched 把远端对象落到正确的命名空间
// directory 类型的对象是树的传输包装，解开后进 trees 命名空间
func (e *Engine) persistFetched(ctx context.Context, obj *core.ContentObject, res *FetchResult) error {
	if obj.Type == core.TypeDirectory {
		var tree core.ContextTree
		if err := core.DecodeObject(obj.Content, &tree); err != nil {
			return fmt.Errorf("fetched tree %s is corrupted: %w", obj.ID, err)
		}
		if _, err := e.objects.SaveTree(ctx, &tree); err != nil {
			return err
		}
		res.Trees++
		return nil
	}

	if _, err := e.objects.SaveObject(ctx, obj); err != nil {
		return err
	}
	res.Objects++
	return nil
}

// -----------------------------------------------------------------------------
// Pull
// -----------------------------------------------------------------------------

// PullResult 汇报 pull 的结果
type PullResult struct {
	Fetch    *FetchResult
	Branch   string
	CommitID string
	Updated  bool
}

// Pull 先 fetch，再比较当前分支本地/远端的 commit id
// 相等 -> no-op；不等 -> 本地分支被强制设为远端值
// (fast-forward by fiat：不做祖先检查，也不动工作区)
func (e *Engine) Pull(ctx context.Context) (*PullResult, error) {
	if !e.repo.Linked() {
		return nil, repository.ErrNotLinked
	}

	branchName, err := e.refs.Head()
	if err != nil {
		return nil, err
	}

	// fetch 会整体覆盖分支引用，所以先记下本地的指向
	var before string
	if b, err := e.objects.GetBranch(ctx, branchName); err == nil {
		before = b.CommitID
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	fetchRes, err := e.Fetch(ctx, 0)
	if err != nil {
		return nil, err
	}

	after := before
	if b, err := e.objects.GetBranch(ctx, branchName); err == nil {
		after = b.CommitID
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	return &PullResult{
		Fetch:    fetchRes,
		Branch:   branchName,
		CommitID: after,
		Updated:  before != after,
	}, nil
}

// -----------------------------------------------------------------------------
// Push
// -----------------------------------------------------------------------------

// PushResult 汇报 push 送出了什么
type PushResult struct {
	Commits int
	Objects int
	Created bool // 这次 push 是否顺带在远端新建了仓库
}

// Push 把本地未送出的 objects 和 commits 推到远端
// 增量 = 本地所有 id 减去记账集合里的 id (不询问远端)。
// objects 先于 commits 送出；commits 按 parent-before-child 排序。
// 没有可送内容时返回零计数的成功
func (e *Engine) Push(ctx context.Context) (*PushResult, error) {
	res := &PushResult{}

	// Unlinked 时先在远端建仓库并记录 id
	if !e.repo.Linked() {
		if err := e.Link(ctx, e.repo.RemoteURL, ""); err != nil {
			return nil, err
		}
		res.Created = true
	}

	pushedCommits, pushedObjects, err := e.loadTracking()
	if err != nil {
		return nil, err
	}

	// 1. 计算未送出的内容对象 (blobs + 打包成 directory 对象的 trees)
	objects, err := e.collectUnpushedObjects(ctx, pushedObjects)
	if err != nil {
		return nil, err
	}

	// 2. 计算未送出的提交并按依赖排序
	commits, err := e.collectUnpushedCommits(ctx, pushedCommits)
	if err != nil {
		return nil, err
	}

	// 3. objects 先行：远端要求提交引用的对象必须已经存在
	if len(objects) > 0 {
		if err := e.client.PushObjects(ctx, e.repo.RemoteID, objects); err != nil {
			return nil, err
		}
		for _, o := range objects {
			pushedObjects.Add(string(o.ID))
		}
		// objects 推成功就立刻记账：后续 commits 失败时重跑 push 不会重复送
		if err := pushedObjects.Save(); err != nil {
			return nil, err
		}
	}

	if len(commits) > 0 {
		if err := e.client.PushCommits(ctx, e.repo.RemoteID, commits); err != nil {
			return nil, err
		}
		for _, c := range commits {
			pushedCommits.Add(c.ID)
		}
		if err := pushedCommits.Save(); err != nil {
			return nil, err
		}
	}

	res.Commits = len(commits)
	res.Objects = len(objects)
	return res, nil
}

// collectUnpushedObjects 汇集记账集合之外的 blobs 和 trees
// trees 打包为 directory 类型的内容对象随 objects 通道传输
func (e *Engine) collectUnpushedObjects(ctx context.Context, pushed *trackingSet) ([]*core.ContentObject, error) {
	var out []*core.ContentObject

	blobIDs, err := e.objects.ListObjects(ctx)
	if err != nil {
		return nil, err
	}
	for _, id := range blobIDs {
		if pushed.Has(string(id)) {
			continue
		}
		obj, err := e.objects.GetObject(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, obj)
	}

	treeIDs, err := e.objects.ListTrees(ctx)
	if err != nil {
		return nil, err
	}
	for _, id := range treeIDs {
		if pushed.Has(string(id)) {
			continue
		}
		tree, err := e.objects.GetTree(ctx, id)
		if err != nil {
			return nil, err
		}
		wrapped, err := wrapTree(tree)
		if err != nil {
			return nil, err
		}
		out = append(out, wrapped)
	}

	return out, nil
}

// collectUnpushedCommits 汇集未送出的提交并按 parent-before-child 排序
func (e *Engine) collectUnpushedCommits(ctx context.Context, pushed *trackingSet) ([]*core.ContextCommit, error) {
	ids, err := e.objects.ListCommits(ctx)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*core.ContextCommit)
	for _, id := range ids {
		if pushed.Has(id) {
			continue
		}
		c, err := e.objects.GetCommit(ctx, id)
		if err != nil {
			return nil, err
		}
		byID[id] = c
	}

	return sortParentsFirst(byID), nil
}

// sortParentsFirst 沿 ParentID 做依赖遍历
// 父提交可能已经推过 (不在 byID 里)，那就当作已满足的依赖
func sortParentsFirst(byID map[string]*core.ContextCommit) []*core.ContextCommit {
	var ordered []*core.ContextCommit
	visited := make(map[string]bool)

	var visit func(id string)
	visit = func(id string) {
		c, pending := byID[id]
		if !pending || visited[id] {
			return
		}
		visited[id] = true
		if c.ParentID != "" {
			visit(c.ParentID)
		}
		ordered = append(ordered, c)
	}

	for id := range byID {
		visit(id)
	}
	return ordered
}

// wrapTree 把树打包为 directory 类型的内容对象
// ID 保留树自己的内容地址 (树的 id 定义在条目序列化上，不在包装字节上)
func wrapTree(tree *core.ContextTree) (*core.ContentObject, error) {
	data, err := core.EncodeObject(tree)
	if err != nil {
		return nil, err
	}
	return &core.ContentObject{
		ID:        tree.ID,
		Type:      core.TypeDirectory,
		Content:   data,
		Encoding:  core.EncodingBinary,
		Size:      int64(len(data)),
		CreatedAt: time.Now().Unix(),
	}, nil
}

func (e *Engine) loadTracking() (commits, objects *trackingSet, err error) {
	commits, err = loadTrackingSet(filepath.Join(e.syncDir(), "pushed_commits.json"))
	if err != nil {
		return nil, nil, err
	}
	objects, err = loadTrackingSet(filepath.Join(e.syncDir(), "pushed_objects.json"))
	if err != nil {
		return nil, nil, err
	}
	return commits, objects, nil
}

// -----------------------------------------------------------------------------
// State
// -----------------------------------------------------------------------------

// State 查询当前分支相对远端的同步状态 (发一次 branches 请求)
func (e *Engine) State(ctx context.Context) (State, error) {
	if !e.repo.Linked() {
		return StateUnlinked, nil
	}

	branchName, err := e.refs.Head()
	if err != nil {
		return StateLinked, err
	}

	var local string
	if b, err := e.objects.GetBranch(ctx, branchName); err == nil {
		local = b.CommitID
	}

	branches, err := e.client.FetchBranches(ctx, e.repo.RemoteID)
	if err != nil {
		return StateLinked, err
	}
	for _, b := range branches {
		if b.Name == branchName {
			if b.CommitID == local {
				return StateSynced, nil
			}
			return StateDiverged, nil
		}
	}
	// 远端没有这个分支：有本地提交算分歧，否则视为一致
	if local != "" {
		return StateDiverged, nil
	}
	return StateSynced, nil
}
