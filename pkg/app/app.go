// pkg/app/app.go
package app

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"contextvault/pkg/history"
	"contextvault/pkg/ignore"
	"contextvault/pkg/index"
	"contextvault/pkg/objectstore"
	"contextvault/pkg/refs"
	"contextvault/pkg/remote"
	"contextvault/pkg/repository"
	"contextvault/pkg/storage"
	"contextvault/pkg/storage/cache"
	"contextvault/pkg/storage/disk"
	"contextvault/pkg/storage/s3"
	"contextvault/pkg/vault"

	"github.com/spf13/viper"
)

// App 是整个应用程序的依赖容器 (Dependency Container)
// 所有“单例”服务都显式构造并持有在这里，生命周期跟随进程，
// 不使用包级全局状态
type App struct {
	Root    string
	Repo    *repository.Repository
	Objects *objectstore.Store
	Index   *index.Index
	Refs    *refs.Manager
	Vault   *vault.Vault
	History *history.Repository // 可能为 nil (打开失败时降级)
}

// New 是工厂函数，负责组装整台机器
// 它从工作目录向上定位仓库根；找不到仓库返回 ErrNotARepository
func New(ctx context.Context, workDir string) (*App, error) {
	root, err := repository.FindRepository(workDir)
	if err != nil {
		return nil, err
	}

	repo, err := repository.LoadConfig(root)
	if err != nil {
		return nil, err
	}

	// 1. 存储后端 (disk 默认，可切 s3，可叠加 redis 缓存)
	kv, err := buildStore(ctx, root)
	if err != nil {
		return nil, fmt.Errorf("failed to init storage: %w", err)
	}
	objects := objectstore.New(kv)

	// 2. 暂存区
	idx, err := index.NewIndex(filepath.Join(repository.MetaPath(root), repository.IndexFile))
	if err != nil {
		return nil, fmt.Errorf("failed to load index: %w", err)
	}

	// 3. 引用管理
	refsMgr := refs.NewManager(repository.MetaPath(root), objects)

	// 4. 忽略规则 (Settings 模式 + 用户 .cvignore 叠加)
	matcher, err := ignore.NewMatcher(root, repo.Settings.IgnorePatterns)
	if err != nil {
		return nil, fmt.Errorf("failed to compile ignore patterns: %w", err)
	}

	// 5. 历史投影库 (打不开不阻塞主流程，log 会退化为对象链遍历)
	var hist *history.Repository
	if db, err := openHistory(root); err == nil {
		hist = history.NewRepository(db)
	}

	// 6. 远端客户端 (可能未配置)
	client := buildRemote(repo)

	v := vault.New(vault.Deps{
		Root:    root,
		Repo:    repo,
		Objects: objects,
		Index:   idx,
		Refs:    refsMgr,
		Matcher: matcher,
		Remote:  client,
		History: hist,
		Author:  viper.GetString("user.name"),
	})

	return &App{
		Root:    root,
		Repo:    repo,
		Objects: objects,
		Index:   idx,
		Refs:    refsMgr,
		Vault:   v,
		History: hist,
	}, nil
}

// buildStore 按配置组装存储后端
func buildStore(ctx context.Context, root string) (storage.Store, error) {
	var backend storage.Store
	var err error

	switch viper.GetString("storage.type") {
	case "s3":
		backend, err = s3.NewAdapter(ctx, s3.Config{
			Endpoint:        viper.GetString("storage.s3.endpoint"),
			Region:          viper.GetString("storage.s3.region"),
			Bucket:          viper.GetString("storage.s3.bucket"),
			AccessKeyID:     viper.GetString("storage.s3.access_key_id"),
			SecretAccessKey: viper.GetString("storage.s3.secret_access_key"),
		})
	default:
		backend, err = disk.NewAdapter(repository.ObjectsPath(root))
	}
	if err != nil {
		return nil, err
	}

	// 可选的 Redis 存在性缓存装饰器
	if redisURL := viper.GetString("cache.redis_url"); redisURL != "" {
		ttl := viper.GetDuration("cache.ttl")
		if ttl <= 0 {
			ttl = 24 * time.Hour
		}
		cached, err := cache.NewCachedStore(backend, cache.Config{RedisURL: redisURL, TTL: ttl})
		if err != nil {
			// 缓存不可用就降级为裸后端
			fmt.Printf("WARN: redis cache disabled: %v\n", err)
			return backend, nil
		}
		return cached, nil
	}

	return backend, nil
}

func openHistory(root string) (*history.DB, error) {
	cfg := history.Config{
		Driver: viper.GetString("history.driver"),
		DSN:    viper.GetString("history.dsn"),
	}
	if cfg.DSN == "" {
		cfg.DSN = filepath.Join(repository.MetaPath(root), "history.db")
	}
	return history.NewDB(cfg)
}

func buildRemote(repo *repository.Repository) remote.Client {
	url := repo.RemoteURL
	if url == "" {
		url = viper.GetString("remote.url")
	}
	if url == "" {
		return nil // Unlinked：sync 操作会报 ErrNotLinked
	}

	var opts []remote.HTTPOption
	if token := viper.GetString("remote.token"); token != "" {
		opts = append(opts, remote.WithToken(token))
	}
	return remote.NewHTTPClient(url, opts...)
}
