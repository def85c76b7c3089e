package ingester

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"unicode/utf8"

	"contextvault/pkg/core"
	"contextvault/pkg/ignore"
	"contextvault/pkg/index"
	"contextvault/pkg/objectstore"
	"contextvault/pkg/walker"
)

// Ingester 负责把工作区文件变成内容对象并登记到暂存区
type Ingester struct {
	objects *objectstore.Store
	index   *index.Index
	matcher *ignore.Matcher
	root    string // 仓库根目录
}

func NewIngester(objects *objectstore.Store, idx *index.Index, matcher *ignore.Matcher, root string) *Ingester {
	return &Ingester{
		objects: objects,
		index:   idx,
		matcher: matcher,
		root:    root,
	}
}

// Result 汇报一次 stage 的结果
// 单个文件读不动不会让整批失败：失败的文件进 Skipped，继续处理其余文件
type Result struct {
	Staged    []string          // 成功暂存的相对路径
	Skipped   map[string]string // 相对路径 -> 失败原因
	TotalSize int64
}

// Stage 解析 paths (文件或目录)，逐个读取、哈希、持久化并更新暂存区
// 暂存是逐文件 best-effort 的，不是全有或全无；
// 调用方负责在结束后 Save 暂存区
func (ing *Ingester) Stage(ctx context.Context, paths []string) (*Result, error) {
	res := &Result{Skipped: make(map[string]string)}

	files, err := ing.resolve(paths)
	if err != nil {
		return nil, err
	}

	for _, rel := range files {
		if err := ing.stageFile(ctx, rel); err != nil {
			// 记录并跳过，不中止整批
			res.Skipped[rel] = err.Error()
			continue
		}
		entry, _ := ing.index.Get(rel)
		res.Staged = append(res.Staged, rel)
		res.TotalSize += entry.Size
	}

	return res, nil
}

// resolve 把用户输入的路径展开为仓库相对的文件列表
// 目录通过 walker 枚举 (应用忽略规则)；单个文件直接透传
func (ing *Ingester) resolve(paths []string) ([]string, error) {
	var files []string
	for _, p := range paths {
		abs := p
		if !filepath.IsAbs(abs) {
			abs = filepath.Join(ing.root, p)
		}

		info, err := os.Stat(abs)
		if err != nil {
			return nil, fmt.Errorf("cannot stat %s: %w", p, err)
		}

		if info.IsDir() {
			listed, err := walker.ListFiles(abs, ing.matcher)
			if err != nil {
				return nil, err
			}
			base, err := filepath.Rel(ing.root, abs)
			if err != nil {
				return nil, err
			}
			for _, f := range listed {
				files = append(files, index.CleanPath(filepath.Join(base, f)))
			}
			continue
		}

		rel, err := filepath.Rel(ing.root, abs)
		if err != nil {
			return nil, err
		}
		files = append(files, index.CleanPath(rel))
	}
	return files, nil
}

// stageFile 处理单个文件：读取 -> 内容寻址 -> 持久化 -> upsert 暂存条目
func (ing *Ingester) stageFile(ctx context.Context, rel string) error {
	abs := filepath.Join(ing.root, filepath.FromSlash(rel))

	info, err := os.Stat(abs)
	if err != nil {
		return fmt.Errorf("unreadable: %w", err)
	}

	content, err := os.ReadFile(abs)
	if err != nil {
		return fmt.Errorf("unreadable: %w", err)
	}

	obj := core.NewContentObject(core.TypeFile, content, detectEncoding(content), detectMime(rel))
	if _, err := ing.objects.SaveObject(ctx, obj); err != nil {
		return err
	}

	ing.index.Add(rel, obj.ID, core.ModeFile, obj.Size, info.ModTime())
	return nil
}

// detectEncoding 粗略判断内容编码
func detectEncoding(content []byte) core.Encoding {
	if utf8.Valid(content) {
		return core.EncodingUTF8
	}
	return core.EncodingBinary
}

// detectMime 根据扩展名推断 MIME 类型，推不出来就留空
func detectMime(path string) string {
	return mime.TypeByExtension(filepath.Ext(path))
}
