package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"contextvault/pkg/storage"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// Adapter 实现了 storage.Store 接口
// 用于把对象库放到 S3/MinIO 上 (团队共享的对象后端)
type Adapter struct {
	client *s3.Client
	bucket string
}

// Config 用于初始化 Adapter
type Config struct {
	Endpoint        string
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
}

// NewAdapter 初始化 S3 客户端 (适配 AWS SDK v2 最新规范)
func NewAdapter(ctx context.Context, cfg Config) (*Adapter, error) {
	// 1. 加载基础配置 (仅包含 Region 和 Credentials)
	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID, cfg.SecretAccessKey, "",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}

	// 2. 创建 S3 客户端时，注入特定于 S3 的配置
	// 新版 SDK 推荐做法：使用 BaseEndpoint 而不是全局 Resolver
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		// 如果指定了 Endpoint (比如 MinIO 的 localhost:9000)，则覆盖默认值
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}

		// MinIO 必须强制使用 Path Style
		// 即: http://host:9000/bucket/key
		o.UsePathStyle = true
	})

	// 3. 自动创建 Bucket (生产环境建议手动管理)
	_, err = client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: &cfg.Bucket})
	if err != nil {
		_, err = client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: &cfg.Bucket})
		if err != nil {
			// 可能因为并发创建或权限问题报错，先继续
			fmt.Printf("Warning: failed to ensure bucket exists: %v\n", err)
		}
	}

	return &Adapter{
		client: client,
		bucket: cfg.Bucket,
	}, nil
}

// transformKey 将 namespace + key 转换为 S3 Key (Sharding)
// Logic: blobs + "aabbcc..." -> "blobs/aa/bbcc..."
func (s *Adapter) transformKey(ns storage.Namespace, key string) string {
	if ns == storage.NSRefs || len(key) < 2 {
		return string(ns) + "/" + key
	}
	return string(ns) + "/" + key[:2] + "/" + key[2:]
}

// restoreKey 把 S3 Key 还原为逻辑 key
func restoreKey(s3key string, ns storage.Namespace) string {
	rest := strings.TrimPrefix(s3key, string(ns)+"/")
	return strings.ReplaceAll(rest, "/", "")
}

// Put 上传对象
func (s *Adapter) Put(ctx context.Context, ns storage.Namespace, key string, data []byte) error {
	// 幂等性检查 (去重)
	// 对于 S3，Head 请求比 Put 请求便宜且快。refs 要被覆盖推进，跳过检查。
	if ns != storage.NSRefs {
		exists, err := s.Has(ctx, ns, key)
		if err != nil {
			return fmt.Errorf("s3 put existence check failed: %w", err)
		}
		if exists {
			return nil
		}
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.transformKey(ns, key)),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/cbor"),
	})
	if err != nil {
		return fmt.Errorf("s3 put failed: %w", err)
	}
	return nil
}

// Get 下载对象
func (s *Adapter) Get(ctx context.Context, ns storage.Namespace, key string) ([]byte, error) {
	resp, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.transformKey(ns, key)),
	})
	if err != nil {
		// 将 AWS 的 NoSuchKey 错误映射为我们自己的 ErrNotFound
		var noKey *s3types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("s3 get failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("s3 read failed: %w", err)
	}
	return data, nil
}

// Has 检查对象是否存在
func (s *Adapter) Has(ctx context.Context, ns storage.Namespace, key string) (bool, error) {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.transformKey(ns, key)),
	})
	if err == nil {
		return true, nil
	}

	var notFound *s3types.NotFound
	var noKey *s3types.NoSuchKey
	if errors.As(err, &notFound) || errors.As(err, &noKey) {
		return false, nil
	}
	// 兼容性：某些 S3 实现可能返回 generic 404 error string
	if strings.Contains(err.Error(), "404") {
		return false, nil
	}

	return false, err
}

// List 枚举命名空间下的所有 key (分页遍历)
func (s *Adapter) List(ctx context.Context, ns storage.Namespace) ([]string, error) {
	var keys []string
	prefix := string(ns) + "/"

	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("s3 list failed: %w", err)
		}
		for _, obj := range page.Contents {
			keys = append(keys, restoreKey(*obj.Key, ns))
		}
	}
	return keys, nil
}

// ExpandKey 利用 Prefix 查询扩展短 ID
func (s *Adapter) ExpandKey(ctx context.Context, ns storage.Namespace, prefix string) (string, error) {
	if len(prefix) < 4 {
		return "", fmt.Errorf("key prefix too short")
	}

	// 构造前缀: blobs + "a8fd" -> "blobs/a8/fd"
	s3prefix := string(ns) + "/" + prefix[:2] + "/" + prefix[2:]

	// MaxKeys=2 是关键：我们只需要区分 0 个、1 个(唯一) 或 >1 个(歧义)
	resp, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:  aws.String(s.bucket),
		Prefix:  aws.String(s3prefix),
		MaxKeys: aws.Int32(2),
	})
	if err != nil {
		return "", fmt.Errorf("s3 list failed: %w", err)
	}

	if *resp.KeyCount == 0 {
		return "", storage.ErrNotFound
	}
	if *resp.KeyCount > 1 {
		return "", storage.ErrAmbiguousKey
	}

	return restoreKey(*resp.Contents[0].Key, ns), nil
}
