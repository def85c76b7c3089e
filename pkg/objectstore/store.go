package objectstore

import (
	"context"
	"fmt"
	"time"

	"contextvault/pkg/core"
	"contextvault/pkg/storage"
	"contextvault/pkg/types"

	gocache "github.com/patrickmn/go-cache"
)

// Store 是带类型的对象库，建立在字节级 storage.Store 之上
// 它负责三个对象命名空间 (blobs/trees/commits) 和 refs 命名空间 (分支指针)。
// 解码后的对象会进入进程内缓存：对象不可变，缓存永远不会脏
type Store struct {
	kv    storage.Store
	cache *gocache.Cache
}

// New 创建对象库
// cache 是显式注入的进程内缓存，生命周期跟随进程
func New(kv storage.Store) *Store {
	return &Store{
		kv:    kv,
		cache: gocache.New(10*time.Minute, 30*time.Minute),
	}
}

// -----------------------------------------------------------------------------
// Blobs (ContentObject)
// -----------------------------------------------------------------------------

// SaveObject 持久化内容对象，返回其内容地址
// 相同内容重复写入是 no-op
func (s *Store) SaveObject(ctx context.Context, obj *core.ContentObject) (types.Hash, error) {
	data, err := core.EncodeObject(obj)
	if err != nil {
		return "", err
	}
	if err := s.kv.Put(ctx, storage.NSBlobs, string(obj.ID), data); err != nil {
		return "", fmt.Errorf("failed to store object %s: %w", obj.ID, err)
	}
	s.cache.SetDefault(cacheKey(storage.NSBlobs, string(obj.ID)), obj)
	return obj.ID, nil
}

// GetObject 读取内容对象
// 不存在时返回 storage.ErrNotFound
func (s *Store) GetObject(ctx context.Context, id types.Hash) (*core.ContentObject, error) {
	ck := cacheKey(storage.NSBlobs, string(id))
	if v, ok := s.cache.Get(ck); ok {
		return v.(*core.ContentObject), nil
	}

	data, err := s.kv.Get(ctx, storage.NSBlobs, string(id))
	if err != nil {
		return nil, err
	}
	var obj core.ContentObject
	if err := core.DecodeObject(data, &obj); err != nil {
		return nil, fmt.Errorf("object %s is corrupted: %w", id, err)
	}
	s.cache.SetDefault(ck, &obj)
	return &obj, nil
}

// HasObject 存在性检查 (push 去重用)
func (s *Store) HasObject(ctx context.Context, id types.Hash) (bool, error) {
	if _, ok := s.cache.Get(cacheKey(storage.NSBlobs, string(id))); ok {
		return true, nil
	}
	return s.kv.Has(ctx, storage.NSBlobs, string(id))
}

// ListObjects 枚举所有 blob 的 ID
func (s *Store) ListObjects(ctx context.Context) ([]types.Hash, error) {
	keys, err := s.kv.List(ctx, storage.NSBlobs)
	if err != nil {
		return nil, err
	}
	ids := make([]types.Hash, len(keys))
	for i, k := range keys {
		ids[i] = types.Hash(k)
	}
	return ids, nil
}

// -----------------------------------------------------------------------------
// Trees
// -----------------------------------------------------------------------------

func (s *Store) SaveTree(ctx context.Context, tree *core.ContextTree) (types.Hash, error) {
	data, err := core.EncodeObject(tree)
	if err != nil {
		return "", err
	}
	if err := s.kv.Put(ctx, storage.NSTrees, string(tree.ID), data); err != nil {
		return "", fmt.Errorf("failed to store tree %s: %w", tree.ID, err)
	}
	s.cache.SetDefault(cacheKey(storage.NSTrees, string(tree.ID)), tree)
	return tree.ID, nil
}

func (s *Store) GetTree(ctx context.Context, id types.Hash) (*core.ContextTree, error) {
	ck := cacheKey(storage.NSTrees, string(id))
	if v, ok := s.cache.Get(ck); ok {
		return v.(*core.ContextTree), nil
	}

	data, err := s.kv.Get(ctx, storage.NSTrees, string(id))
	if err != nil {
		return nil, err
	}
	var tree core.ContextTree
	if err := core.DecodeObject(data, &tree); err != nil {
		return nil, fmt.Errorf("tree %s is corrupted: %w", id, err)
	}
	s.cache.SetDefault(ck, &tree)
	return &tree, nil
}

// ListTrees 枚举所有树的 ID
func (s *Store) ListTrees(ctx context.Context) ([]types.Hash, error) {
	keys, err := s.kv.List(ctx, storage.NSTrees)
	if err != nil {
		return nil, err
	}
	ids := make([]types.Hash, len(keys))
	for i, k := range keys {
		ids[i] = types.Hash(k)
	}
	return ids, nil
}

// -----------------------------------------------------------------------------
// Commits
// -----------------------------------------------------------------------------

func (s *Store) SaveCommit(ctx context.Context, commit *core.ContextCommit) (string, error) {
	data, err := core.EncodeObject(commit)
	if err != nil {
		return "", err
	}
	if err := s.kv.Put(ctx, storage.NSCommits, commit.ID, data); err != nil {
		return "", fmt.Errorf("failed to store commit %s: %w", commit.ID, err)
	}
	s.cache.SetDefault(cacheKey(storage.NSCommits, commit.ID), commit)
	return commit.ID, nil
}

func (s *Store) GetCommit(ctx context.Context, id string) (*core.ContextCommit, error) {
	ck := cacheKey(storage.NSCommits, id)
	if v, ok := s.cache.Get(ck); ok {
		return v.(*core.ContextCommit), nil
	}

	data, err := s.kv.Get(ctx, storage.NSCommits, id)
	if err != nil {
		return nil, err
	}
	var commit core.ContextCommit
	if err := core.DecodeObject(data, &commit); err != nil {
		return nil, fmt.Errorf("commit %s is corrupted: %w", id, err)
	}
	s.cache.SetDefault(ck, &commit)
	return &commit, nil
}

func (s *Store) HasCommit(ctx context.Context, id string) (bool, error) {
	if _, ok := s.cache.Get(cacheKey(storage.NSCommits, id)); ok {
		return true, nil
	}
	return s.kv.Has(ctx, storage.NSCommits, id)
}

func (s *Store) ListCommits(ctx context.Context) ([]string, error) {
	return s.kv.List(ctx, storage.NSCommits)
}

// ExpandCommitID 把用户输入的短 ID 扩展为完整的 Commit ID
func (s *Store) ExpandCommitID(ctx context.Context, prefix types.IDPrefix) (string, error) {
	return s.kv.ExpandKey(ctx, storage.NSCommits, string(prefix))
}

// -----------------------------------------------------------------------------
// Refs (Branches)
// -----------------------------------------------------------------------------

// SaveBranch 覆盖写分支指针 (refs 不走幂等跳过逻辑)
func (s *Store) SaveBranch(ctx context.Context, branch *core.ContextBranch) error {
	data, err := core.EncodeObject(branch)
	if err != nil {
		return err
	}
	if err := s.kv.Put(ctx, storage.NSRefs, branch.Name, data); err != nil {
		return fmt.Errorf("failed to store branch %s: %w", branch.Name, err)
	}
	// 分支是可变的，直接失效而不是回填
	s.cache.Delete(cacheKey(storage.NSRefs, branch.Name))
	return nil
}

func (s *Store) GetBranch(ctx context.Context, name string) (*core.ContextBranch, error) {
	data, err := s.kv.Get(ctx, storage.NSRefs, name)
	if err != nil {
		return nil, err
	}
	var branch core.ContextBranch
	if err := core.DecodeObject(data, &branch); err != nil {
		return nil, fmt.Errorf("branch %s is corrupted: %w", name, err)
	}
	return &branch, nil
}

func (s *Store) ListBranches(ctx context.Context) ([]string, error) {
	return s.kv.List(ctx, storage.NSRefs)
}

func cacheKey(ns storage.Namespace, key string) string {
	return string(ns) + ":" + key
}
