package ignore

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	gitignore "github.com/sabhiram/go-gitignore"
)

// DefaultPatterns 是系统级默认忽略规则 (Hardcoded Defaults)
// 这些规则强制生效，防止用户误操作导致严重问题
var DefaultPatterns = []string{
	// --- 关键元数据目录 ---
	".cv",  // 绝对禁止索引仓库元数据目录，否则会导致无限递归！
	".git", // 忽略 Git 仓库数据
	".svn",

	// --- 依赖目录 ---
	"node_modules",
	"vendor",
	"__pycache__",

	// --- 安全与配置 ---
	".env", // 防止环境变量文件泄露

	// --- 构建产物 ---
	"dist",
	"build",
	"*.pyc",

	// --- 常见垃圾文件 ---
	".DS_Store", // macOS
	"Thumbs.db", // Windows
}

// Matcher 封装了忽略逻辑
// 它负责判断一个路径是否应该被 ContextVault 忽略
//
// 匹配策略是刻意粗粒度的：
//   - 含 `*` 的 pattern 按 `*` -> `.*` 替换后做正则匹配
//   - 不含 `*` 的 pattern 按子串包含判断
//
// 目录型 pattern (如 "node_modules") 因此会连同目录下的一切一起排除。
type Matcher struct {
	patterns []compiledPattern
	overlay  *gitignore.GitIgnore // 用户 .cvignore (可选)
}

type compiledPattern struct {
	raw string
	re  *regexp.Regexp // 仅当 raw 含 `*` 时非空
}

// NewMatcher 编译忽略规则
// patterns: 仓库 Settings 里的 ignore_patterns (已包含默认集)
// rootPath: 仓库根目录，用于查找用户的 .cvignore 文件
func NewMatcher(rootPath string, patterns []string) (*Matcher, error) {
	m := &Matcher{}

	for _, p := range patterns {
		cp := compiledPattern{raw: p}
		if strings.Contains(p, "*") {
			// `*` -> `.*`，其余字符按字面量处理
			expr := strings.ReplaceAll(regexp.QuoteMeta(p), `\*`, ".*")
			re, err := regexp.Compile(expr)
			if err != nil {
				return nil, err
			}
			cp.re = re
		}
		m.patterns = append(m.patterns, cp)
	}

	// 用户可以用 .cvignore 叠加完整的 gitignore 语义规则
	if rootPath != "" {
		ignoreFilePath := filepath.Join(rootPath, ".cvignore")
		if _, err := os.Stat(ignoreFilePath); err == nil {
			overlay, err := gitignore.CompileIgnoreFile(ignoreFilePath)
			if err != nil {
				return nil, err
			}
			m.overlay = overlay
		}
	}

	return m, nil
}

// Matches 检查给定的路径是否匹配忽略规则
// path: 相对于仓库根目录的相对路径 (例如 "notes/design.md")
// 返回: true 表示应该忽略 (Skip)
func (m *Matcher) Matches(path string) bool {
	path = filepath.ToSlash(path)

	for _, p := range m.patterns {
		if p.re != nil {
			if p.re.MatchString(path) {
				return true
			}
			continue
		}
		// 无通配符：子串包含即命中
		// "node_modules" 会命中 "node_modules/package.js" 的目录段
		if strings.Contains(path, p.raw) {
			return true
		}
	}

	if m.overlay != nil && m.overlay.MatchesPath(path) {
		return true
	}
	return false
}
