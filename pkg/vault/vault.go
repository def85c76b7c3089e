package vault

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"contextvault/pkg/core"
	"contextvault/pkg/exporter"
	"contextvault/pkg/history"
	"contextvault/pkg/ignore"
	"contextvault/pkg/index"
	"contextvault/pkg/ingester"
	"contextvault/pkg/objectstore"
	"contextvault/pkg/refs"
	"contextvault/pkg/remote"
	"contextvault/pkg/repository"
	"contextvault/pkg/storage/disk"
	"contextvault/pkg/sync"
	"contextvault/pkg/treebuilder"
	"contextvault/pkg/types"
	"contextvault/pkg/walker"
)

// Vault 是仓库管理器的门面：命令层只跟它说话
// 每个方法要么返回结构化结果，要么返回带哨兵的错误
type Vault struct {
	root    string
	repo    *repository.Repository
	objects *objectstore.Store
	index   *index.Index
	refs    *refs.Manager
	matcher *ignore.Matcher
	remote  remote.Client
	history *history.Repository // 可为 nil
	author  string
}

// Deps 是显式注入的依赖集合
type Deps struct {
	Root    string
	Repo    *repository.Repository
	Objects *objectstore.Store
	Index   *index.Index
	Refs    *refs.Manager
	Matcher *ignore.Matcher
	Remote  remote.Client
	History *history.Repository
	Author  string
}

func New(d Deps) *Vault {
	return &Vault{
		root:    d.Root,
		repo:    d.Repo,
		objects: d.Objects,
		index:   d.Index,
		refs:    d.Refs,
		matcher: d.Matcher,
		remote:  d.Remote,
		history: d.History,
		author:  d.Author,
	}
}

func (v *Vault) Repo() *repository.Repository { return v.repo }

// engine 组装同步引擎；没配置远端客户端直接报 ErrNotLinked
func (v *Vault) engine() (*sync.Engine, error) {
	if v.remote == nil {
		return nil, repository.ErrNotLinked
	}
	return sync.NewEngine(v.root, v.repo, v.objects, v.refs, v.remote), nil
}

// -----------------------------------------------------------------------------
// Init
// -----------------------------------------------------------------------------

// InitRepository 在 root 下初始化仓库：目录骨架 + 默认分支 (空指针) + HEAD + 空暂存区
// 已是仓库时返回 ErrAlreadyExists，且不改动磁盘
func InitRepository(ctx context.Context, root string, opts repository.InitOptions) (*repository.Repository, error) {
	repo, err := repository.Init(root, opts)
	if err != nil {
		return nil, err
	}

	kv, err := disk.NewAdapter(repository.ObjectsPath(root))
	if err != nil {
		return nil, err
	}
	objects := objectstore.New(kv)

	// 默认分支：commit_id 为空，等第一次提交来推进
	branch := core.NewBranch(repo.ID, repo.DefaultBranch)
	if err := objects.SaveBranch(ctx, branch); err != nil {
		return nil, err
	}

	return repo, nil
}

// -----------------------------------------------------------------------------
// Stage
// -----------------------------------------------------------------------------

// Stage 把 paths 读入对象库并登记到暂存区
// 单文件失败只是跳过 (best-effort)，整批结束后统一落盘暂存区
func (v *Vault) Stage(ctx context.Context, paths []string) (*ingester.Result, error) {
	ing := ingester.NewIngester(v.objects, v.index, v.matcher, v.root)
	res, err := ing.Stage(ctx, paths)
	if err != nil {
		return nil, err
	}
	if err := v.index.Save(); err != nil {
		return nil, fmt.Errorf("failed to save index: %w", err)
	}
	return res, nil
}

// -----------------------------------------------------------------------------
// Commit
// -----------------------------------------------------------------------------

type CommitOptions struct {
	Message string
	Author  string
}

type CommitResult struct {
	Commit *core.ContextCommit
	TreeID types.Hash
	Branch string
}

// Commit 把暂存区变成一次提交
//  1. 没有 staged 条目 -> ErrNothingStaged
//  2. 树条目 = 全部 staged 条目，保持暂存顺序
//  3. parent = 当前分支指针 (第一次提交为空)
//  4. 持久化提交、快进分支、清掉 staged 标记 (路径保持被跟踪)
func (v *Vault) Commit(ctx context.Context, opts CommitOptions) (*CommitResult, error) {
	staged := v.index.Staged()
	if len(staged) == 0 {
		return nil, repository.ErrNothingStaged
	}

	branch, err := v.refs.CurrentBranch(ctx)
	if err != nil {
		return nil, err
	}

	treeID, err := treebuilder.NewBuilder(v.objects).Build(ctx, staged)
	if err != nil {
		return nil, fmt.Errorf("failed to build tree: %w", err)
	}

	meta := core.CommitMetadata{
		FilesChanged: len(staged),
		// Deletions 恒为 0：暂存区不追踪删除
	}
	for _, e := range staged {
		meta.Additions += e.Size
		if obj, err := v.objects.GetObject(ctx, e.ObjectID); err == nil && obj.Type == core.TypeEmbedding {
			meta.EmbeddingsCount++
		}
	}

	author := opts.Author
	if author == "" {
		author = v.author
	}
	if author == "" {
		author = "ContextVault User"
	}

	message := opts.Message
	if message == "" {
		message = summarizeStaged(staged)
	}

	commit := core.NewCommit(v.repo.ID, treeID, branch.CommitID, author, message, meta)
	if _, err := v.objects.SaveCommit(ctx, commit); err != nil {
		return nil, fmt.Errorf("failed to store commit: %w", err)
	}

	// 快进分支指针
	branch.Advance(commit.ID)
	if err := v.objects.SaveBranch(ctx, branch); err != nil {
		return nil, fmt.Errorf("failed to advance branch: %w", err)
	}

	// 清掉 staged 标记，路径保持被跟踪
	v.index.ClearStaged()
	if err := v.index.Save(); err != nil {
		// 提交已经成功，这里只能警告
		fmt.Printf("Warning: failed to clear index: %v\n", err)
	}

	// 投影到历史库 (best-effort，投影丢了可以重建)
	if v.history != nil {
		if err := v.history.IndexCommit(ctx, commit); err != nil {
			fmt.Printf("Warning: failed to index commit in history: %v\n", err)
		}
	}

	return &CommitResult{Commit: commit, TreeID: treeID, Branch: branch.Name}, nil
}

// summarizeStaged 按扩展名生成默认提交信息
func summarizeStaged(staged []index.Entry) string {
	exts := make(map[string]int)
	for _, e := range staged {
		ext := filepath.Ext(e.Path)
		if ext == "" {
			ext = "(no ext)"
		}
		exts[ext]++
	}

	keys := make([]string, 0, len(exts))
	for k := range exts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%d %s", exts[k], k))
	}
	return fmt.Sprintf("Update %d files (%s)", len(staged), strings.Join(parts, ", "))
}

// -----------------------------------------------------------------------------
// Status
// -----------------------------------------------------------------------------

type StatusResult struct {
	Branch    string
	Staged    []string
	Unstaged  []string // 被跟踪但内容已变化或磁盘上缺失
	Untracked []string
}

// Status 对比暂存区和工作区
// unstaged 的判据是内容地址：文件重新哈希后与 Index 记录不一致
func (v *Vault) Status(ctx context.Context) (*StatusResult, error) {
	branchName, err := v.refs.Head()
	if err != nil {
		return nil, err
	}

	res := &StatusResult{Branch: branchName}

	tracked := make(map[string]index.Entry)
	for _, e := range v.index.Snapshot() {
		tracked[e.Path] = e
		if e.Staged {
			res.Staged = append(res.Staged, e.Path)
		}
	}

	files, err := listWorkingFiles(v.root, v.matcher)
	if err != nil {
		return nil, err
	}

	onDisk := make(map[string]bool, len(files))
	for _, rel := range files {
		onDisk[rel] = true
		entry, ok := tracked[rel]
		if !ok {
			res.Untracked = append(res.Untracked, rel)
			continue
		}
		content, err := os.ReadFile(filepath.Join(v.root, filepath.FromSlash(rel)))
		if err != nil {
			res.Unstaged = append(res.Unstaged, rel)
			continue
		}
		if core.HashBytes(content) != entry.ObjectID {
			res.Unstaged = append(res.Unstaged, rel)
		}
	}

	// 被跟踪但磁盘上没了
	for path := range tracked {
		if !onDisk[path] {
			res.Unstaged = append(res.Unstaged, path)
		}
	}

	sort.Strings(res.Staged)
	sort.Strings(res.Unstaged)
	sort.Strings(res.Untracked)
	return res, nil
}

// -----------------------------------------------------------------------------
// Sync operations
// -----------------------------------------------------------------------------

func (v *Vault) Push(ctx context.Context) (*sync.PushResult, error) {
	eng, err := v.engine()
	if err != nil {
		return nil, err
	}
	return eng.Push(ctx)
}

func (v *Vault) Fetch(ctx context.Context, since int64) (*sync.FetchResult, error) {
	eng, err := v.engine()
	if err != nil {
		return nil, err
	}
	return eng.Fetch(ctx, since)
}

func (v *Vault) Pull(ctx context.Context) (*sync.PullResult, error) {
	eng, err := v.engine()
	if err != nil {
		return nil, err
	}
	return eng.Pull(ctx)
}

// Link 关联远端仓库 (remoteID 为空时在远端新建)
func (v *Vault) Link(ctx context.Context, remoteURL, remoteID string) error {
	if v.remote == nil {
		v.remote = remote.NewHTTPClient(remoteURL)
	}
	eng, err := v.engine()
	if err != nil {
		return err
	}
	return eng.Link(ctx, remoteURL, remoteID)
}

// SyncState 查询当前分支的同步状态
func (v *Vault) SyncState(ctx context.Context) (sync.State, error) {
	if v.remote == nil {
		return sync.StateUnlinked, nil
	}
	eng, err := v.engine()
	if err != nil {
		return sync.StateUnlinked, err
	}
	return eng.State(ctx)
}

// -----------------------------------------------------------------------------
// Checkout (restore)
// -----------------------------------------------------------------------------

type CheckoutResult struct {
	Commit   *core.ContextCommit
	Restored int
}

// Checkout 把指定提交的树还原到工作区并重建 Index
// 接受短 id；直接覆盖工作区，不做 dirty 检查
func (v *Vault) Checkout(ctx context.Context, prefix types.IDPrefix) (*CheckoutResult, error) {
	commitID, err := v.objects.ExpandCommitID(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("invalid commit %q: %w", prefix, err)
	}

	v.index.Reset()

	restored := 0
	exp := exporter.NewExporter(v.objects)
	commit, err := exp.RestoreCommit(ctx, commitID, v.root, func(path string, id types.Hash, size int64) {
		modTime := time.Now()
		if info, statErr := os.Stat(filepath.Join(v.root, filepath.FromSlash(path))); statErr == nil {
			modTime = info.ModTime()
		}
		v.index.Add(path, id, core.ModeFile, size, modTime)
		restored++
	})
	if err != nil {
		return nil, err
	}

	// checkout 之后一切都是已跟踪未暂存状态
	v.index.ClearStaged()
	if err := v.index.Save(); err != nil {
		return nil, fmt.Errorf("failed to rebuild index: %w", err)
	}

	return &CheckoutResult{Commit: commit, Restored: restored}, nil
}

// listWorkingFiles 枚举工作区文件 (应用忽略规则)
func listWorkingFiles(root string, matcher *ignore.Matcher) ([]string, error) {
	return walker.ListFiles(root, matcher)
}
