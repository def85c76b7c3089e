package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"contextvault/pkg/core"
	"contextvault/pkg/repository"
)

// HTTPClient 是 Client 接口的 HTTP/JSON 适配器
// 认证、重试、退避都由上层传输配置或服务端负责，这里只做一次调用
type HTTPClient struct {
	baseURL string
	http    *http.Client
	token   string // 可选的 Bearer Token
}

type HTTPOption func(*HTTPClient)

// WithToken 设置认证 Token
func WithToken(token string) HTTPOption {
	return func(c *HTTPClient) { c.token = token }
}

// WithHTTPClient 注入自定义 http.Client (超时、代理等)
func WithHTTPClient(h *http.Client) HTTPOption {
	return func(c *HTTPClient) { c.http = h }
}

// NewHTTPClient 创建 HTTP 适配器
func NewHTTPClient(baseURL string, opts ...HTTPOption) *HTTPClient {
	c := &HTTPClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 60 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// do 执行一次请求并把响应解码到 out (可为 nil)
func (c *HTTPClient) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%w: encode request: %v", ErrRemote, err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRemote, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRemote, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrRepoNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// 错误响应体截断读取，避免被恶意服务端撑爆
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%w: %s %s: status %d: %s", ErrRemote, method, path, resp.StatusCode, msg)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("%w: decode response: %v", ErrRemote, err)
		}
	}
	return nil
}

func (c *HTTPClient) CreateRepository(ctx context.Context, repo *repository.Repository) (*repository.Repository, error) {
	var created repository.Repository
	if err := c.do(ctx, http.MethodPost, "/v1/repositories", repo, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *HTTPClient) GetRepository(ctx context.Context, id string) (*repository.Repository, error) {
	var repo repository.Repository
	if err := c.do(ctx, http.MethodGet, "/v1/repositories/"+url.PathEscape(id), nil, &repo); err != nil {
		return nil, err
	}
	return &repo, nil
}

func (c *HTTPClient) PushCommits(ctx context.Context, repoID string, commits []*core.ContextCommit) error {
	return c.do(ctx, http.MethodPost, "/v1/repositories/"+url.PathEscape(repoID)+"/commits", commits, nil)
}

func (c *HTTPClient) PushObjects(ctx context.Context, repoID string, objects []*core.ContentObject) error {
	return c.do(ctx, http.MethodPost, "/v1/repositories/"+url.PathEscape(repoID)+"/objects", objects, nil)
}

func (c *HTTPClient) FetchCommits(ctx context.Context, repoID string, since int64) ([]*core.ContextCommit, error) {
	var commits []*core.ContextCommit
	path := "/v1/repositories/" + url.PathEscape(repoID) + "/commits" + sinceQuery(since)
	if err := c.do(ctx, http.MethodGet, path, nil, &commits); err != nil {
		return nil, err
	}
	return commits, nil
}

func (c *HTTPClient) FetchObjects(ctx context.Context, repoID string, since int64) ([]*core.ContentObject, error) {
	var objects []*core.ContentObject
	path := "/v1/repositories/" + url.PathEscape(repoID) + "/objects" + sinceQuery(since)
	if err := c.do(ctx, http.MethodGet, path, nil, &objects); err != nil {
		return nil, err
	}
	return objects, nil
}

func (c *HTTPClient) FetchBranches(ctx context.Context, repoID string) ([]*core.ContextBranch, error) {
	var branches []*core.ContextBranch
	if err := c.do(ctx, http.MethodGet, "/v1/repositories/"+url.PathEscape(repoID)+"/branches", nil, &branches); err != nil {
		return nil, err
	}
	return branches, nil
}

func sinceQuery(since int64) string {
	if since <= 0 {
		return ""
	}
	return "?since=" + strconv.FormatInt(since, 10)
}
