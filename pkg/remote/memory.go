package remote

import (
	"context"
	"sync"
	"time"

	"contextvault/pkg/core"
	"contextvault/pkg/repository"
)

// MemoryStore 是 Client 的内存实现
// 两个用途：单元测试里的假远端，以及 cv-server 的存储后端
type MemoryStore struct {
	mu       sync.RWMutex
	repos    map[string]*repository.Repository
	commits  map[string]map[string]*core.ContextCommit // repoID -> commitID -> commit
	objects  map[string]map[string]*core.ContentObject // repoID -> objectID -> object
	branches map[string]map[string]*core.ContextBranch // repoID -> name -> branch
	received map[string]map[string]int64               // repoID -> id -> 接收时间 (since 过滤用)
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		repos:    make(map[string]*repository.Repository),
		commits:  make(map[string]map[string]*core.ContextCommit),
		objects:  make(map[string]map[string]*core.ContentObject),
		branches: make(map[string]map[string]*core.ContextBranch),
		received: make(map[string]map[string]int64),
	}
}

func (m *MemoryStore) ensureRepo(repoID string) {
	if _, ok := m.commits[repoID]; !ok {
		m.commits[repoID] = make(map[string]*core.ContextCommit)
		m.objects[repoID] = make(map[string]*core.ContentObject)
		m.branches[repoID] = make(map[string]*core.ContextBranch)
		m.received[repoID] = make(map[string]int64)
	}
}

func (m *MemoryStore) CreateRepository(ctx context.Context, repo *repository.Repository) (*repository.Repository, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := *repo
	m.repos[stored.ID] = &stored
	m.ensureRepo(stored.ID)

	// 远端立即建好默认分支 (空指针)
	b := core.NewBranch(stored.ID, stored.DefaultBranch)
	m.branches[stored.ID][b.Name] = b

	return &stored, nil
}

func (m *MemoryStore) GetRepository(ctx context.Context, id string) (*repository.Repository, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	repo, ok := m.repos[id]
	if !ok {
		return nil, ErrRepoNotFound
	}
	cp := *repo
	return &cp, nil
}

// PushCommits 接收提交，并把仓库默认分支快进到批次里最新的提交
// 客户端保证 parent-before-child 顺序，所以最后一个就是最新的
func (m *MemoryStore) PushCommits(ctx context.Context, repoID string, commits []*core.ContextCommit) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	repo, ok := m.repos[repoID]
	if !ok {
		return ErrRepoNotFound
	}
	m.ensureRepo(repoID)

	now := time.Now().Unix()
	for _, c := range commits {
		m.commits[repoID][c.ID] = c
		m.received[repoID][c.ID] = now
	}

	if len(commits) > 0 {
		name := repo.DefaultBranch
		branch, ok := m.branches[repoID][name]
		if !ok {
			branch = core.NewBranch(repoID, name)
			m.branches[repoID][name] = branch
		}
		branch.Advance(commits[len(commits)-1].ID)
	}
	return nil
}

func (m *MemoryStore) PushObjects(ctx context.Context, repoID string, objects []*core.ContentObject) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.repos[repoID]; !ok {
		return ErrRepoNotFound
	}
	m.ensureRepo(repoID)

	now := time.Now().Unix()
	for _, o := range objects {
		m.objects[repoID][string(o.ID)] = o
		m.received[repoID][string(o.ID)] = now
	}
	return nil
}

func (m *MemoryStore) FetchCommits(ctx context.Context, repoID string, since int64) ([]*core.ContextCommit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if _, ok := m.repos[repoID]; !ok {
		return nil, ErrRepoNotFound
	}

	var out []*core.ContextCommit
	for id, c := range m.commits[repoID] {
		if since > 0 && m.received[repoID][id] < since {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (m *MemoryStore) FetchObjects(ctx context.Context, repoID string, since int64) ([]*core.ContentObject, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if _, ok := m.repos[repoID]; !ok {
		return nil, ErrRepoNotFound
	}

	var out []*core.ContentObject
	for id, o := range m.objects[repoID] {
		if since > 0 && m.received[repoID][id] < since {
			continue
		}
		out = append(out, o)
	}
	return out, nil
}

func (m *MemoryStore) FetchBranches(ctx context.Context, repoID string) ([]*core.ContextBranch, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if _, ok := m.repos[repoID]; !ok {
		return nil, ErrRepoNotFound
	}

	var out []*core.ContextBranch
	for _, b := range m.branches[repoID] {
		cp := *b
		out = append(out, &cp)
	}
	return out, nil
}
