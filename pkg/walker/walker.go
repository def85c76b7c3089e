package walker

import (
	"fmt"
	"io/fs"
	"path/filepath"

	"contextvault/pkg/ignore"
)

// ListFiles 枚举 root 下的所有文件，返回相对路径 (slash 分隔)
// 命中忽略规则的目录整体跳过，不再下降。
// 只读遍历，无副作用；目录读取错误会中止整个枚举 (不提供部分结果)
func ListFiles(root string, matcher *ignore.Matcher) ([]string, error) {
	var files []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err // 权限错误等，整体失败
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if matcher != nil && matcher.Matches(rel) {
			if d.IsDir() {
				// 目录段本身命中，下面的一切一起排除
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			return nil
		}

		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk failed: %w", err)
	}

	return files, nil
}
