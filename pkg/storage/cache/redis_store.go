package cache

import (
	"context"
	"fmt"
	"time"

	"contextvault/pkg/storage"

	"github.com/redis/go-redis/v9"
)

// CachedStore 是一个装饰器，它为底层的 storage.Store 添加 Redis 存在性缓存
// 典型场景：对象后端是 S3 时，push 前的去重检查可以省掉一次网络往返
type CachedStore struct {
	backend storage.Store // 被装饰的底层存储
	client  *redis.Client
	ttl     time.Duration
}

type Config struct {
	RedisURL string        // 标准连接字符串: redis://<user>:<password>@<host>:<port>/<db>
	TTL      time.Duration // 过期时间
}

func NewCachedStore(backend storage.Store, cfg Config) (*CachedStore, error) {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	client := redis.NewClient(opts)

	// Fail-fast 连接检查
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &CachedStore{
		backend: backend,
		client:  client,
		ttl:     cfg.TTL,
	}, nil
}

// cacheKey 生成 Redis Key，带前缀防止冲突
func (s *CachedStore) cacheKey(ns storage.Namespace, key string) string {
	return "cv:" + string(ns) + ":" + key
}

// Has 优先查 Redis，实现毫秒级去重
// refs 会被覆盖推进，不参与缓存
func (s *CachedStore) Has(ctx context.Context, ns storage.Namespace, key string) (bool, error) {
	if ns == storage.NSRefs {
		return s.backend.Has(ctx, ns, key)
	}

	ck := s.cacheKey(ns, key)

	// 1. 查 Redis
	val, err := s.client.Exists(ctx, ck).Result()
	if err != nil {
		// 缓存故障降级 (Cache Failure Fallback)
		// Redis 挂了不应该让整个命令失败，退化为无缓存模式直接查后端
		fmt.Printf("WARN: Redis error: %v\n", err)
	} else if val > 0 {
		// Cache Hit，省掉一次后端请求
		return true, nil
	}

	// 2. 缓存未命中 (Cache Miss)，查底层存储
	found, err := s.backend.Has(ctx, ns, key)
	if err != nil {
		return false, err
	}

	// 3. 缓存回填 (Cache Fill)
	if found {
		// 异步写入 Redis，不阻塞主流程
		// 使用 context.Background() 确保即使上层 ctx 取消，回填也能完成
		go func() {
			fillCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			s.client.Set(fillCtx, ck, "1", s.ttl)
		}()
	}

	return found, nil
}

// Put 写入对象。利用 Has 的缓存能力进行预检。
func (s *CachedStore) Put(ctx context.Context, ns storage.Namespace, key string, data []byte) error {
	if ns != storage.NSRefs {
		exists, err := s.Has(ctx, ns, key)
		if err != nil {
			return err
		}
		if exists {
			return nil // 幂等性：已存在
		}
	}

	// 穿透到底层存储
	if err := s.backend.Put(ctx, ns, key, data); err != nil {
		return err
	}

	// 只有后端写成功了才写 Redis，Set 失败可以忽略
	if ns != storage.NSRefs {
		s.client.Set(ctx, s.cacheKey(ns, key), "1", s.ttl)
	}
	return nil
}

// Get 透传 - 不缓存对象本体
// 原因：blob 可能很大，Redis 内存宝贵，只存 Existence 性价比最高
func (s *CachedStore) Get(ctx context.Context, ns storage.Namespace, key string) ([]byte, error) {
	return s.backend.Get(ctx, ns, key)
}

// List 透传
func (s *CachedStore) List(ctx context.Context, ns storage.Namespace) ([]string, error) {
	return s.backend.List(ctx, ns)
}

// ExpandKey 透传
func (s *CachedStore) ExpandKey(ctx context.Context, ns storage.Namespace, prefix string) (string, error) {
	return s.backend.ExpandKey(ctx, ns, prefix)
}
